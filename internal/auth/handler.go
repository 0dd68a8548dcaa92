package auth

import (
	"net/http"

	"github.com/adeputra/pharmacy-inventory/internal"
	"github.com/adeputra/pharmacy-inventory/internal/transport"
)

type Handler struct {
	*transport.BaseHandler
	service *Service
}

func NewHandler(base *transport.BaseHandler, service *Service) *Handler {
	return &Handler{BaseHandler: base, service: service}
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if appErr := h.DecodeBody(r, &req); appErr != nil {
		h.WriteAppError(w, appErr)
		return
	}

	resp, err := h.service.Login(r.Context(), &req)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteSuccess(w, resp, "Login success")
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	user, ok := UserFromContext(r.Context())
	if !ok {
		h.WriteAppError(w, internal.NewUnauthorizedError())
		return
	}

	if err := h.service.Logout(r.Context(), user.TokenID); err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteSuccess(w, nil, "Logout success")
}

func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	user, ok := UserFromContext(r.Context())
	if !ok {
		h.WriteAppError(w, internal.NewUnauthorizedError())
		return
	}
	h.WriteSuccess(w, user, "")
}

func (h *Handler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req ForgotPasswordRequest
	if appErr := h.DecodeBody(r, &req); appErr != nil {
		h.WriteAppError(w, appErr)
		return
	}

	if err := h.service.ForgotPassword(r.Context(), &req); err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteSuccess(w, nil, "If the email is registered, a reset token has been sent")
}

func (h *Handler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req ResetPasswordRequest
	if appErr := h.DecodeBody(r, &req); appErr != nil {
		h.WriteAppError(w, appErr)
		return
	}

	if err := h.service.ResetPassword(r.Context(), &req); err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteSuccess(w, nil, "Password has been reset")
}

// Middleware authenticates the bearer token and attaches the current user
// to the request context.
func (h *Handler) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := h.ExtractTokenFromHeader(r)
		if token == "" {
			h.WriteAppError(w, internal.NewUnauthorizedError())
			return
		}

		user, err := h.service.Authenticate(r.Context(), token)
		if err != nil {
			h.HandleServiceError(w, err)
			return
		}

		next.ServeHTTP(w, r.WithContext(ContextWithUser(r.Context(), user)))
	})
}

package user

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi"

	"github.com/adeputra/pharmacy-inventory/internal"
	"github.com/adeputra/pharmacy-inventory/internal/auth"
	"github.com/adeputra/pharmacy-inventory/internal/pagination"
	"github.com/adeputra/pharmacy-inventory/internal/transport"
)

type Handler struct {
	*transport.BaseHandler
	service *Service
}

func NewHandler(base *transport.BaseHandler, service *Service) *Handler {
	return &Handler{BaseHandler: base, service: service}
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateRequest
	if appErr := h.DecodeBody(r, &req); appErr != nil {
		h.WriteAppError(w, appErr)
		return
	}

	resp, err := h.service.Create(r.Context(), &req)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteSuccess(w, resp, "User created")
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, appErr := idParam(r)
	if appErr != nil {
		h.WriteAppError(w, appErr)
		return
	}

	var req UpdateRequest
	if appErr := h.DecodeBody(r, &req); appErr != nil {
		h.WriteAppError(w, appErr)
		return
	}

	resp, err := h.service.Update(r.Context(), id, &req)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteSuccess(w, resp, "User updated")
}

func (h *Handler) UpdateRole(w http.ResponseWriter, r *http.Request) {
	id, appErr := idParam(r)
	if appErr != nil {
		h.WriteAppError(w, appErr)
		return
	}

	var req UpdateRoleRequest
	if appErr := h.DecodeBody(r, &req); appErr != nil {
		h.WriteAppError(w, appErr)
		return
	}

	resp, err := h.service.UpdateRole(r.Context(), id, &req)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteSuccess(w, resp, "User role updated")
}

func (h *Handler) UpdatePassword(w http.ResponseWriter, r *http.Request) {
	id, appErr := idParam(r)
	if appErr != nil {
		h.WriteAppError(w, appErr)
		return
	}

	var req UpdatePasswordRequest
	if appErr := h.DecodeBody(r, &req); appErr != nil {
		h.WriteAppError(w, appErr)
		return
	}

	if err := h.service.UpdatePassword(r.Context(), id, &req); err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteSuccess(w, nil, "User password updated")
}

func (h *Handler) ChangeOwnPassword(w http.ResponseWriter, r *http.Request) {
	current, ok := auth.UserFromContext(r.Context())
	if !ok {
		h.WriteAppError(w, internal.NewUnauthorizedError())
		return
	}

	var req ChangeOwnPasswordRequest
	if appErr := h.DecodeBody(r, &req); appErr != nil {
		h.WriteAppError(w, appErr)
		return
	}

	if err := h.service.ChangeOwnPassword(r.Context(), current.ID, &req); err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteSuccess(w, nil, "Password changed")
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, appErr := idParam(r)
	if appErr != nil {
		h.WriteAppError(w, appErr)
		return
	}

	current, ok := auth.UserFromContext(r.Context())
	if !ok {
		h.WriteAppError(w, internal.NewUnauthorizedError())
		return
	}

	if err := h.service.Delete(r.Context(), id, current.ID); err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteSuccess(w, nil, "User deleted")
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, appErr := idParam(r)
	if appErr != nil {
		h.WriteAppError(w, appErr)
		return
	}

	resp, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteSuccess(w, resp, "")
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	page, err := h.service.List(r.Context(), r.URL.Query().Get("search"), pagination.FromRequest(r))
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteSuccess(w, page, "")
}

func idParam(r *http.Request) (int64, *internal.AppError) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, internal.NewBadRequestError("id must be a positive integer")
	}
	return id, nil
}

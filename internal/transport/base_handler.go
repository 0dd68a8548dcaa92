package transport

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/adeputra/pharmacy-inventory/internal"
	"github.com/adeputra/pharmacy-inventory/pkg/logger"
)

// BaseHandler provides the envelope writers and request decoding shared by
// all HTTP handlers.
type BaseHandler struct {
	Logger *slog.Logger
	Debug  bool
}

func NewBaseHandler(lg *slog.Logger) *BaseHandler {
	if lg == nil {
		lg = logger.LoggerWrapper()
		if lg == nil {
			lg = slog.Default()
		}
	}
	return &BaseHandler{Logger: lg}
}

// WriteSuccess wraps data in the standard envelope with the success code.
func (h *BaseHandler) WriteSuccess(w http.ResponseWriter, data any, message string) {
	if message == "" {
		message = "Success"
	}
	env := Envelope{
		ResponseHeader: ResponseHeader{
			Code:    internal.CodeSuccess,
			Success: true,
			Message: message,
			Error:   []string{},
		},
		Data: data,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(env); err != nil {
		h.Logger.Error("failed to encode JSON response", "error", err)
	}
}

// WriteAppError renders a typed failure into the envelope. Internal errors
// only expose their cause in debug mode.
func (h *BaseHandler) WriteAppError(w http.ResponseWriter, appErr *internal.AppError) {
	errs := appErr.ErrorList()
	if appErr.Code == internal.CodeInternal {
		if h.Debug && appErr.Cause != nil {
			errs = append(errs, appErr.Cause.Error())
		}
		h.Logger.Error("internal error", "error", appErr.Cause)
	}

	env := Envelope{
		ResponseHeader: ResponseHeader{
			Code:    appErr.Code,
			Success: false,
			Message: appErr.Message,
			Error:   errs,
		},
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(appErr.StatusCode)
	if err := json.NewEncoder(w).Encode(env); err != nil {
		h.Logger.Error("failed to encode error response", "error", err)
	}
}

// HandleServiceError maps any service failure onto the envelope. Errors that
// are not AppErrors default to the internal-error code with a generic
// message.
func (h *BaseHandler) HandleServiceError(w http.ResponseWriter, err error) {
	if appErr, ok := internal.IsAppError(err); ok {
		h.WriteAppError(w, appErr)
		return
	}
	h.WriteAppError(w, internal.NewInternalError(err))
}

// DecodeBody decodes a JSON request body and validates its embedded request
// header through the HeaderCarrier interface.
func (h *BaseHandler) DecodeBody(r *http.Request, dto HeaderCarrier) *internal.AppError {
	if err := json.NewDecoder(r.Body).Decode(dto); err != nil {
		return internal.NewBadRequestError("invalid request body")
	}
	return dto.Header().Validate()
}

// HeaderCarrier is implemented by request DTOs that embed a request_header.
type HeaderCarrier interface {
	Header() RequestHeader
}

// RequestHeaderMiddleware enforces the request header on bodyless methods.
// GET and DELETE requests carry source/usecase/userId as query parameters;
// the synthesized header is validated and stored on the context. Bodied
// requests embed the header in their JSON payload and are validated when the
// body is decoded.
func (h *BaseHandler) RequestHeaderMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet || r.Method == http.MethodDelete {
			header := HeaderFromQuery(r)
			if appErr := header.Validate(); appErr != nil {
				h.WriteAppError(w, appErr)
				return
			}
			r = r.WithContext(ContextWithHeader(r.Context(), header))
		}
		next.ServeHTTP(w, r)
	})
}

// ExtractTokenFromHeader extracts the Bearer token from the Authorization
// header.
func (h *BaseHandler) ExtractTokenFromHeader(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}

	if len(authHeader) < 7 || authHeader[:7] != "Bearer " {
		return ""
	}

	return authHeader[7:]
}

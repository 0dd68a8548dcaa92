package transport

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/adeputra/pharmacy-inventory/internal"
)

// ResponseHeader is the uniform header wrapped around every API response.
type ResponseHeader struct {
	Code    string   `json:"code"`
	Success bool     `json:"success"`
	Message string   `json:"message"`
	Error   []string `json:"error"`
}

// Envelope is the top-level response shape: a response_header plus optional
// data payload.
type Envelope struct {
	ResponseHeader ResponseHeader `json:"response_header"`
	Data           any            `json:"data,omitempty"`
}

// RequestHeader is the client telemetry block every request must carry:
// in the JSON body for mutating requests, synthesized from query parameters
// for GETs. Source and usecase are required but free-form.
type RequestHeader struct {
	Source  string `json:"source"`
	Usecase string `json:"usecase"`
	UserID  string `json:"user_id,omitempty"`
}

func (h RequestHeader) Validate() *internal.AppError {
	var missing []string
	if h.Source == "" {
		missing = append(missing, "request_header.source is required")
	}
	if h.Usecase == "" {
		missing = append(missing, "request_header.usecase is required")
	}
	if len(missing) > 0 {
		return internal.NewBadRequestError(missing...)
	}
	return nil
}

// HeaderFromQuery builds the request header for GET requests from the
// source/usecase/userId query parameters.
func HeaderFromQuery(r *http.Request) RequestHeader {
	q := r.URL.Query()
	return RequestHeader{
		Source:  q.Get("source"),
		Usecase: q.Get("usecase"),
		UserID:  q.Get("userId"),
	}
}

// ContextWithHeader stores the validated request header for downstream
// handlers.
func ContextWithHeader(ctx context.Context, header RequestHeader) context.Context {
	return context.WithValue(ctx, internal.ContextRequestHeaderKey, header)
}

func HeaderFromContext(ctx context.Context) (RequestHeader, bool) {
	header, ok := ctx.Value(internal.ContextRequestHeaderKey).(RequestHeader)
	return header, ok
}

// HeaderFromForm reads a request_header form field carrying the header as a
// JSON string, the shape multipart uploads use.
func HeaderFromForm(r *http.Request) RequestHeader {
	var header RequestHeader
	if raw := r.FormValue("request_header"); raw != "" {
		_ = json.Unmarshal([]byte(raw), &header)
	}
	return header
}

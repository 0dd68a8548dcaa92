package medicine

import (
	"fmt"
	"net/http"
	"path"
	"strconv"
	"time"

	"github.com/go-chi/chi"

	"github.com/adeputra/pharmacy-inventory/internal"
	"github.com/adeputra/pharmacy-inventory/internal/auth"
	"github.com/adeputra/pharmacy-inventory/internal/pagination"
	"github.com/adeputra/pharmacy-inventory/internal/transport"
)

// Uploads above this size spill to disk while parsing.
const maxUploadMemory = 32 << 20

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

	resp, err := h.service.Create(r.Context(), &req, actingUserID(r))
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteSuccess(w, resp, "Medicine created")
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, appErr := idParam(r, "id")
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
	h.WriteSuccess(w, resp, "Medicine updated")
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, appErr := idParam(r, "id")
	if appErr != nil {
		h.WriteAppError(w, appErr)
		return
	}

	if err := h.service.Delete(r.Context(), id, actingUserID(r)); err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteSuccess(w, nil, "Medicine deleted")
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, appErr := idParam(r, "id")
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
	q := r.URL.Query()
	filter := ListFilter{Name: q.Get("name"), Unit: q.Get("unit")}

	page, err := h.service.List(r.Context(), filter, pagination.FromRequest(r))
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteSuccess(w, page, "")
}

func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", h.service.ExportFilename()))

	if err := h.service.ExportCSV(r.Context(), w); err != nil {
		h.Logger.Error("medicine export failed", "error", err)
	}
}

func (h *Handler) UploadImages(w http.ResponseWriter, r *http.Request) {
	id, appErr := idParam(r, "id")
	if appErr != nil {
		h.WriteAppError(w, appErr)
		return
	}

	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		h.WriteAppError(w, internal.NewBadRequestError("invalid multipart form"))
		return
	}
	if appErr := transport.HeaderFromForm(r).Validate(); appErr != nil {
		h.WriteAppError(w, appErr)
		return
	}

	var files []UploadedFile
	var closers []interface{ Close() error }
	defer func() {
		for _, c := range closers {
			c.Close()
		}
	}()

	for _, fh := range r.MultipartForm.File["images"] {
		f, err := fh.Open()
		if err != nil {
			h.WriteAppError(w, internal.NewBadRequestError("unreadable image file"))
			return
		}
		closers = append(closers, f)
		files = append(files, UploadedFile{Name: fh.Filename, Reader: f})
	}

	images, err := h.service.AttachImages(r.Context(), id, files)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteSuccess(w, images, "Images uploaded")
}

func (h *Handler) ViewImage(w http.ResponseWriter, r *http.Request) {
	medicineID, appErr := idParam(r, "id")
	if appErr != nil {
		h.WriteAppError(w, appErr)
		return
	}
	imageID, appErr := idParam(r, "imageID")
	if appErr != nil {
		h.WriteAppError(w, appErr)
		return
	}

	f, img, err := h.service.ViewImage(r.Context(), medicineID, imageID)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	defer f.Close()

	modTime := time.Now()
	if info, err := f.Stat(); err == nil {
		modTime = info.ModTime()
	}
	http.ServeContent(w, r, path.Base(img.FilePath), modTime, f)
}

func (h *Handler) DeleteImage(w http.ResponseWriter, r *http.Request) {
	medicineID, appErr := idParam(r, "id")
	if appErr != nil {
		h.WriteAppError(w, appErr)
		return
	}
	imageID, appErr := idParam(r, "imageID")
	if appErr != nil {
		h.WriteAppError(w, appErr)
		return
	}

	if err := h.service.DetachImage(r.Context(), medicineID, imageID); err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteSuccess(w, nil, "Image deleted")
}

func actingUserID(r *http.Request) *int64 {
	if user, ok := auth.UserFromContext(r.Context()); ok {
		return &user.ID
	}
	return nil
}

func idParam(r *http.Request, name string) (int64, *internal.AppError) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		return 0, internal.NewBadRequestError(name + " must be a positive integer")
	}
	return id, nil
}

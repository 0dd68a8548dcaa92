package stock

import (
	"fmt"
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

func (h *Handler) StockIn(w http.ResponseWriter, r *http.Request) {
	h.adjust(w, r, TypeIn)
}

func (h *Handler) StockOut(w http.ResponseWriter, r *http.Request) {
	h.adjust(w, r, TypeOut)
}

func (h *Handler) adjust(w http.ResponseWriter, r *http.Request, direction string) {
	medicineID, appErr := idParam(r)
	if appErr != nil {
		h.WriteAppError(w, appErr)
		return
	}

	var req AdjustRequest
	if appErr := h.DecodeBody(r, &req); appErr != nil {
		h.WriteAppError(w, appErr)
		return
	}

	var actingUserID *int64
	if user, ok := auth.UserFromContext(r.Context()); ok {
		actingUserID = &user.ID
	}

	resp, err := h.service.Adjust(r.Context(), medicineID, direction, req.Amount, req.Note, actingUserID)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteSuccess(w, resp, fmt.Sprintf("Stock %s success", direction))
}

func (h *Handler) HistoryByMedicine(w http.ResponseWriter, r *http.Request) {
	medicineID, appErr := idParam(r)
	if appErr != nil {
		h.WriteAppError(w, appErr)
		return
	}

	filter, err := h.filterFromQuery(r)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	page, err := h.service.HistoryByMedicine(r.Context(), medicineID, filter, pagination.FromRequest(r))
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteSuccess(w, page, "")
}

func (h *Handler) AllHistories(w http.ResponseWriter, r *http.Request) {
	filter, err := h.filterFromQuery(r)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	page, err := h.service.AllHistories(r.Context(), filter, pagination.FromRequest(r))
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteSuccess(w, page, "")
}

func (h *Handler) ExportByMedicine(w http.ResponseWriter, r *http.Request) {
	medicineID, appErr := idParam(r)
	if appErr != nil {
		h.WriteAppError(w, appErr)
		return
	}
	h.export(w, r, medicineID)
}

func (h *Handler) ExportAll(w http.ResponseWriter, r *http.Request) {
	h.export(w, r, 0)
}

func (h *Handler) export(w http.ResponseWriter, r *http.Request, medicineID int64) {
	filter, err := h.filterFromQuery(r)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", h.service.ExportFilename(medicineID == 0)))

	if err := h.service.ExportCSV(r.Context(), w, medicineID, filter); err != nil {
		// Headers are already out; log instead of writing an envelope
		// into the CSV stream.
		header, _ := transport.HeaderFromContext(r.Context())
		h.Logger.Error("stock history export failed",
			"error", err, "medicine_id", medicineID, "source", header.Source)
	}
}

func (h *Handler) filterFromQuery(r *http.Request) (HistoryFilter, error) {
	q := r.URL.Query()

	start, end, err := h.service.ParseDateRange(q.Get("start_date"), q.Get("end_date"))
	if err != nil {
		return HistoryFilter{}, err
	}

	typ := q.Get("type")
	if typ != "" && typ != TypeIn && typ != TypeOut {
		return HistoryFilter{}, internal.NewBadRequestError("type must be one of [in out]")
	}

	return HistoryFilter{
		MedicineName: q.Get("medicine_name"),
		Type:         typ,
		Start:        start,
		End:          end,
	}, nil
}

func idParam(r *http.Request) (int64, *internal.AppError) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, internal.NewBadRequestError("id must be a positive integer")
	}
	return id, nil
}

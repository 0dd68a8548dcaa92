package dashboard

import (
	"fmt"
	"net/http"
	"time"

	"github.com/adeputra/pharmacy-inventory/internal/stock"
	"github.com/adeputra/pharmacy-inventory/internal/transport"
)

type Handler struct {
	*transport.BaseHandler
	service  *Service
	location *time.Location
}

func NewHandler(base *transport.BaseHandler, service *Service, location *time.Location) *Handler {
	if location == nil {
		location = time.UTC
	}
	return &Handler{BaseHandler: base, service: service, location: location}
}

func (h *Handler) Summary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.service.Summary(r.Context())
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteSuccess(w, summary, "")
}

func (h *Handler) StockChart(w http.ResponseWriter, r *http.Request) {
	start, end, err := h.dateRange(r)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	points, err := h.service.StockChart(r.Context(), start, end)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteSuccess(w, points, "")
}

func (h *Handler) ExportChart(w http.ResponseWriter, r *http.Request) {
	start, end, err := h.dateRange(r)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", h.service.ChartExportFilename()))

	if err := h.service.ExportChartCSV(r.Context(), w, start, end); err != nil {
		h.Logger.Error("stock chart export failed", "error", err)
	}
}

func (h *Handler) dateRange(r *http.Request) (*time.Time, *time.Time, error) {
	q := r.URL.Query()
	return stock.ParseDateRange(h.location, q.Get("start_date"), q.Get("end_date"))
}

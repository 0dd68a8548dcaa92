package stock

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/adeputra/pharmacy-inventory/internal"
	"github.com/adeputra/pharmacy-inventory/internal/pagination"
	"github.com/adeputra/pharmacy-inventory/pkg/logger"
)

const exportBatchSize = 100

const displayTimeLayout = "2006-01-02 15:04:05"

type Service struct {
	repo     RepositoryAPI
	location *time.Location
}

func NewService(repo RepositoryAPI, location *time.Location) *Service {
	if location == nil {
		location = time.UTC
	}
	return &Service{repo: repo, location: location}
}

// Adjust validates and applies one stock movement. direction is in or out;
// amount must be a positive integer.
func (s *Service) Adjust(ctx context.Context, medicineID int64, direction string, amount int64, note *string, actingUserID *int64) (*AdjustResponse, error) {
	if direction != TypeIn && direction != TypeOut {
		return nil, internal.NewBadRequestError("type must be one of [in out]")
	}
	if amount <= 0 {
		return nil, internal.NewBadRequestError("amount must be a positive integer")
	}

	newStock, historyID, err := s.repo.Adjust(ctx, medicineID, direction, amount, note, actingUserID)
	if err != nil {
		return nil, err
	}

	logger.From(ctx).Info("stock adjusted",
		"medicine_id", medicineID,
		"type", direction,
		"amount", amount,
		"new_stock", newStock,
	)

	return &AdjustResponse{MedicineID: medicineID, Stock: newStock, HistoryID: historyID}, nil
}

// HistoryByMedicine lists the ledger for one medicine, newest first.
func (s *Service) HistoryByMedicine(ctx context.Context, medicineID int64, filter HistoryFilter, p pagination.Pagination) (*pagination.CountedPage, error) {
	rows, total, err := s.repo.ListByMedicine(medicineID, filter, p)
	if err != nil {
		return nil, err
	}
	page := p.BuildCounted(s.toItems(rows, false), total)
	return &page, nil
}

// AllHistories lists the ledger across all medicines.
func (s *Service) AllHistories(ctx context.Context, filter HistoryFilter, p pagination.Pagination) (*pagination.CountedPage, error) {
	rows, total, err := s.repo.ListAll(filter, p)
	if err != nil {
		return nil, err
	}
	page := p.BuildCounted(s.toItems(rows, true), total)
	return &page, nil
}

// ExportCSV streams the ledger as CSV. A zero medicineID exports all
// medicines and adds a Medicine column.
func (s *Service) ExportCSV(ctx context.Context, w io.Writer, medicineID int64, filter HistoryFilter) error {
	cw := csv.NewWriter(w)
	all := medicineID == 0

	header := []string{"Date", "Type", "Amount", "Note", "User"}
	if all {
		header = append(header, "Medicine")
	}
	if err := cw.Write(header); err != nil {
		return internal.NewInternalError(err)
	}

	err := s.repo.Export(medicineID, filter, exportBatchSize, func(rows []HistoryRow) error {
		for _, row := range rows {
			record := []string{
				row.CreatedAt.In(s.location).Format(displayTimeLayout),
				strings.ToUpper(row.Type),
				strconv.FormatInt(row.Amount, 10),
				orDash(row.Note),
				orDash(row.UserName),
			}
			if all {
				record = append(record, orDash(row.MedicineName))
			}
			if err := cw.Write(record); err != nil {
				return err
			}
		}
		cw.Flush()
		return cw.Error()
	})
	if err != nil {
		if _, ok := internal.IsAppError(err); ok {
			return err
		}
		return internal.NewInternalError(err)
	}

	cw.Flush()
	return cw.Error()
}

// ExportFilename builds the attachment name with the current timestamp in
// the display timezone.
func (s *Service) ExportFilename(all bool) string {
	ts := time.Now().In(s.location).Format("20060102_150405")
	if all {
		return fmt.Sprintf("stock_history_all_%s.csv", ts)
	}
	return fmt.Sprintf("stock_history_%s.csv", ts)
}

func (s *Service) ParseDateRange(startDate, endDate string) (*time.Time, *time.Time, error) {
	return ParseDateRange(s.location, startDate, endDate)
}

// ParseDateRange converts Y-m-d display-timezone dates into UTC bounds,
// end exclusive at the following midnight.
func ParseDateRange(location *time.Location, startDate, endDate string) (*time.Time, *time.Time, error) {
	var start, end *time.Time
	if startDate != "" {
		t, err := time.ParseInLocation("2006-01-02", startDate, location)
		if err != nil {
			return nil, nil, internal.NewBadRequestError("start_date must be a date in YYYY-MM-DD format")
		}
		utc := t.UTC()
		start = &utc
	}
	if endDate != "" {
		t, err := time.ParseInLocation("2006-01-02", endDate, location)
		if err != nil {
			return nil, nil, internal.NewBadRequestError("end_date must be a date in YYYY-MM-DD format")
		}
		utc := t.AddDate(0, 0, 1).UTC()
		end = &utc
	}
	return start, end, nil
}

func (s *Service) toItems(rows []HistoryRow, withMedicine bool) []HistoryItem {
	items := make([]HistoryItem, 0, len(rows))
	for _, row := range rows {
		item := HistoryItem{
			ID:        row.ID,
			Type:      row.Type,
			Amount:    row.Amount,
			Note:      row.Note,
			User:      orDash(row.UserName),
			CreatedAt: row.CreatedAt.In(s.location).Format(displayTimeLayout),
		}
		if withMedicine {
			item.MedicineName = row.MedicineName
		}
		items = append(items, item)
	}
	return items
}

func orDash(s *string) string {
	if s == nil || *s == "" {
		return "-"
	}
	return *s
}

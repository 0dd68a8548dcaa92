package stock

import (
	"context"
	"time"

	"github.com/adeputra/pharmacy-inventory/internal/pagination"
	"github.com/adeputra/pharmacy-inventory/internal/transport"
)

const (
	TypeIn  = "in"
	TypeOut = "out"
)

// History is the append-only stock ledger. Rows are only ever inserted, in
// the same transaction as the stock column change they record.
type History struct {
	ID         int64     `gorm:"primaryKey" json:"id"`
	MedicineID int64     `gorm:"column:medicine_id;not null" json:"medicine_id"`
	UserID     *int64    `gorm:"column:user_id" json:"user_id,omitempty"`
	Type       string    `gorm:"column:type;not null" json:"type"`
	Amount     int64     `gorm:"column:amount;not null" json:"amount"`
	Note       *string   `gorm:"column:note" json:"note,omitempty"`
	CreatedAt  time.Time `gorm:"column:created_at" json:"created_at"`
}

func (History) TableName() string {
	return "stock_histories"
}

// HistoryRow is the read-side projection joined with user and medicine
// names for listings and exports.
type HistoryRow struct {
	ID           int64     `json:"id"`
	MedicineID   int64     `json:"medicine_id"`
	MedicineName *string   `json:"medicine_name,omitempty"`
	Type         string    `json:"type"`
	Amount       int64     `json:"amount"`
	Note         *string   `json:"note"`
	UserName     *string   `json:"user,omitempty"`
	CreatedAt    time.Time `json:"-"`
}

// HistoryFilter narrows history listings and exports. Date bounds are UTC
// instants; the handler converts display-timezone dates before they get
// here. End is exclusive.
type HistoryFilter struct {
	MedicineName string
	Type         string
	Start        *time.Time
	End          *time.Time
}

type RepositoryAPI interface {
	// Adjust applies a stock movement and its history row atomically.
	// Returns the stock level after the movement. A failed decrement
	// reports the current stock and writes nothing.
	Adjust(ctx context.Context, medicineID int64, movementType string, amount int64, note *string, userID *int64) (newStock int64, historyID int64, err error)

	ListByMedicine(medicineID int64, filter HistoryFilter, p pagination.Pagination) ([]HistoryRow, int64, error)
	ListAll(filter HistoryFilter, p pagination.Pagination) ([]HistoryRow, int64, error)

	// Export streams matching rows oldest-first to fn in fixed-size
	// batches. A zero medicineID means all medicines.
	Export(medicineID int64, filter HistoryFilter, batchSize int, fn func(rows []HistoryRow) error) error
}

type AdjustRequest struct {
	RequestHeader transport.RequestHeader `json:"request_header"`
	Amount        int64                   `json:"amount"`
	Note          *string                 `json:"note"`
}

func (r *AdjustRequest) Header() transport.RequestHeader {
	return r.RequestHeader
}

type AdjustResponse struct {
	MedicineID int64 `json:"medicine_id"`
	Stock      int64 `json:"stock"`
	HistoryID  int64 `json:"history_id"`
}

type HistoryItem struct {
	ID           int64   `json:"id"`
	MedicineName *string `json:"medicine_name,omitempty"`
	Type         string  `json:"type"`
	Amount       int64   `json:"amount"`
	Note         *string `json:"note"`
	User         string  `json:"user"`
	CreatedAt    string  `json:"created_at"`
}

package dashboard

import (
	"time"
)

type Activity struct {
	ID           int64     `json:"id"`
	MedicineName string    `json:"medicine_name"`
	Type         string    `json:"type"`
	Amount       int64     `json:"amount"`
	UserName     *string   `json:"user,omitempty"`
	CreatedAt    time.Time `json:"-"`
}

type TopMedicine struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Unit  string `json:"unit"`
	Stock int64  `json:"stock"`
}

// Movement is one ledger row reduced to what the chart needs.
type Movement struct {
	Type      string
	Amount    int64
	CreatedAt time.Time
}

type Summary struct {
	TotalMedicine    int64          `json:"total_medicine"`
	TotalStock       int64          `json:"total_stock"`
	TotalStockIn     int64          `json:"total_stock_in"`
	TotalStockOut    int64          `json:"total_stock_out"`
	RecentActivities []ActivityItem `json:"recent_activities"`
	TopMedicines     []TopMedicine  `json:"top_medicines"`
}

type ActivityItem struct {
	ID           int64   `json:"id"`
	MedicineName string  `json:"medicine_name"`
	Type         string  `json:"type"`
	Amount       int64   `json:"amount"`
	User         string  `json:"user"`
	CreatedAt    string  `json:"created_at"`
}

// ChartPoint is one day of net stock movement, bucketed in the display
// timezone.
type ChartPoint struct {
	Date        string `json:"date"`
	TotalChange int64  `json:"total_change"`
}

type RepositoryAPI interface {
	CountMedicines() (int64, error)
	SumStock() (int64, error)
	SumMovements(movementType string) (int64, error)
	RecentActivities(limit int) ([]Activity, error)
	TopMedicinesByStock(limit int) ([]TopMedicine, error)
	MovementsBetween(start, end *time.Time) ([]Movement, error)
}

package postgres

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/adeputra/pharmacy-inventory/internal"
	"github.com/adeputra/pharmacy-inventory/internal/pagination"
	"github.com/adeputra/pharmacy-inventory/internal/stock"
)

// medicineStock is the write-side projection of the medicines table this
// repository touches. DeletedAt keeps soft-deleted rows out of scope.
type medicineStock struct {
	ID        int64
	Stock     int64
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt
}

func (medicineStock) TableName() string {
	return "medicines"
}

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Adjust changes the stock column and inserts the paired history row in one
// transaction. The decrement is conditional so concurrent stock-outs can
// never drive stock negative.
func (r *Repository) Adjust(ctx context.Context, medicineID int64, movementType string, amount int64, note *string, userID *int64) (int64, int64, error) {
	var newStock int64
	var historyID int64

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if movementType == stock.TypeOut {
			res := tx.Model(&medicineStock{}).
				Where("id = ? AND stock >= ?", medicineID, amount).
				Update("stock", gorm.Expr("stock - ?", amount))
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				var current medicineStock
				if err := tx.Select("id", "stock").First(&current, medicineID).Error; err != nil {
					if errors.Is(err, gorm.ErrRecordNotFound) {
						return internal.NewNotFoundError()
					}
					return err
				}
				return internal.NewInsufficientStockError(current.Stock)
			}
		} else {
			res := tx.Model(&medicineStock{}).
				Where("id = ?", medicineID).
				Update("stock", gorm.Expr("stock + ?", amount))
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return internal.NewNotFoundError()
			}
		}

		var after medicineStock
		if err := tx.Select("id", "stock").First(&after, medicineID).Error; err != nil {
			return err
		}
		newStock = after.Stock

		history := stock.History{
			MedicineID: medicineID,
			UserID:     userID,
			Type:       movementType,
			Amount:     amount,
			Note:       note,
		}
		if err := tx.Create(&history).Error; err != nil {
			return err
		}
		historyID = history.ID
		return nil
	})
	if err != nil {
		return 0, 0, err
	}
	return newStock, historyID, nil
}

func (r *Repository) ListByMedicine(medicineID int64, filter stock.HistoryFilter, p pagination.Pagination) ([]stock.HistoryRow, int64, error) {
	q := r.baseQuery(filter).Where("sh.medicine_id = ?", medicineID)
	return r.page(q, p)
}

func (r *Repository) ListAll(filter stock.HistoryFilter, p pagination.Pagination) ([]stock.HistoryRow, int64, error) {
	return r.page(r.baseQuery(filter), p)
}

// Export walks matching rows oldest-first in fixed-size batches so exports
// never materialize the full ledger.
func (r *Repository) Export(medicineID int64, filter stock.HistoryFilter, batchSize int, fn func(rows []stock.HistoryRow) error) error {
	offset := 0
	for {
		q := r.baseQuery(filter)
		if medicineID != 0 {
			q = q.Where("sh.medicine_id = ?", medicineID)
		}

		var rows []stock.HistoryRow
		err := q.Order("sh.id ASC").Limit(batchSize).Offset(offset).Scan(&rows).Error
		if err != nil {
			return err
		}
		if len(rows) == 0 {
			return nil
		}
		if err := fn(rows); err != nil {
			return err
		}
		if len(rows) < batchSize {
			return nil
		}
		offset += batchSize
	}
}

func (r *Repository) baseQuery(filter stock.HistoryFilter) *gorm.DB {
	q := r.db.Table("stock_histories AS sh").
		Select("sh.id, sh.medicine_id, sh.type, sh.amount, sh.note, sh.created_at, u.name AS user_name, m.name AS medicine_name").
		Joins("JOIN medicines m ON m.id = sh.medicine_id").
		Joins("LEFT JOIN users u ON u.id = sh.user_id")

	if filter.MedicineName != "" {
		q = q.Where("LOWER(m.name) LIKE LOWER(?)", "%"+filter.MedicineName+"%")
	}
	if filter.Type != "" {
		q = q.Where("sh.type = ?", filter.Type)
	}
	if filter.Start != nil {
		q = q.Where("sh.created_at >= ?", *filter.Start)
	}
	if filter.End != nil {
		q = q.Where("sh.created_at < ?", *filter.End)
	}
	return q
}

func (r *Repository) page(q *gorm.DB, p pagination.Pagination) ([]stock.HistoryRow, int64, error) {
	var total int64
	if err := q.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []stock.HistoryRow
	err := q.Order("sh.created_at DESC, sh.id DESC").
		Limit(p.Limit()).Offset(p.Offset()).
		Scan(&rows).Error
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

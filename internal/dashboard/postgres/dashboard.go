package postgres

import (
	"time"

	"gorm.io/gorm"

	"github.com/adeputra/pharmacy-inventory/internal/dashboard"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) CountMedicines() (int64, error) {
	var n int64
	err := r.db.Table("medicines").Where("deleted_at IS NULL").Count(&n).Error
	return n, err
}

func (r *Repository) SumStock() (int64, error) {
	var total *int64
	err := r.db.Table("medicines").Where("deleted_at IS NULL").
		Select("SUM(stock)").Scan(&total).Error
	if err != nil || total == nil {
		return 0, err
	}
	return *total, nil
}

func (r *Repository) SumMovements(movementType string) (int64, error) {
	var total *int64
	err := r.db.Table("stock_histories").Where("type = ?", movementType).
		Select("SUM(amount)").Scan(&total).Error
	if err != nil || total == nil {
		return 0, err
	}
	return *total, nil
}

func (r *Repository) RecentActivities(limit int) ([]dashboard.Activity, error) {
	var activities []dashboard.Activity
	err := r.db.Table("stock_histories AS sh").
		Select("sh.id, sh.type, sh.amount, sh.created_at, m.name AS medicine_name, u.name AS user_name").
		Joins("JOIN medicines m ON m.id = sh.medicine_id").
		Joins("LEFT JOIN users u ON u.id = sh.user_id").
		Order("sh.created_at DESC, sh.id DESC").
		Limit(limit).
		Scan(&activities).Error
	return activities, err
}

func (r *Repository) TopMedicinesByStock(limit int) ([]dashboard.TopMedicine, error) {
	var top []dashboard.TopMedicine
	err := r.db.Table("medicines").
		Select("id, name, unit, stock").
		Where("deleted_at IS NULL").
		Order("stock DESC, name ASC").
		Limit(limit).
		Scan(&top).Error
	return top, err
}

func (r *Repository) MovementsBetween(start, end *time.Time) ([]dashboard.Movement, error) {
	q := r.db.Table("stock_histories").Select("type, amount, created_at")
	if start != nil {
		q = q.Where("created_at >= ?", *start)
	}
	if end != nil {
		q = q.Where("created_at < ?", *end)
	}

	var movements []dashboard.Movement
	err := q.Order("created_at ASC").Scan(&movements).Error
	return movements, err
}

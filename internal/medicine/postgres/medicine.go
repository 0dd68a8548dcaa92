package postgres

import (
	"errors"

	"gorm.io/gorm"

	"github.com/adeputra/pharmacy-inventory/internal/medicine"
	"github.com/adeputra/pharmacy-inventory/internal/pagination"
	"github.com/adeputra/pharmacy-inventory/internal/stock"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts the medicine and, when it starts with stock, the init
// ledger row in one transaction.
func (r *Repository) Create(m *medicine.Medicine, actingUserID *int64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(m).Error; err != nil {
			return err
		}
		if m.Stock > 0 {
			note := medicine.NoteInitStock
			history := stock.History{
				MedicineID: m.ID,
				UserID:     actingUserID,
				Type:       stock.TypeIn,
				Amount:     m.Stock,
				Note:       &note,
			}
			if err := tx.Create(&history).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *Repository) Update(id int64, updates map[string]any) error {
	res := r.db.Model(&medicine.Medicine{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return medicine.ErrMedicineNotFound
	}
	return nil
}

// SoftDelete hides the medicine and books its remaining stock out in the
// same transaction, so the ledger still sums to the visible stock.
func (r *Repository) SoftDelete(id int64, actingUserID *int64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var m medicine.Medicine
		if err := tx.First(&m, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return medicine.ErrMedicineNotFound
			}
			return err
		}

		if m.Stock > 0 {
			note := medicine.NoteDeleted
			history := stock.History{
				MedicineID: m.ID,
				UserID:     actingUserID,
				Type:       stock.TypeOut,
				Amount:     m.Stock,
				Note:       &note,
			}
			if err := tx.Create(&history).Error; err != nil {
				return err
			}
			if err := tx.Model(&m).Update("stock", 0).Error; err != nil {
				return err
			}
		}

		return tx.Delete(&m).Error
	})
}

func (r *Repository) GetByID(id int64) (*medicine.Medicine, error) {
	var m medicine.Medicine
	err := r.db.Preload("Images").First(&m, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, medicine.ErrMedicineNotFound
		}
		return nil, err
	}
	return &m, nil
}

func (r *Repository) List(filter medicine.ListFilter, p pagination.Pagination) ([]medicine.Medicine, int64, error) {
	q := r.db.Model(&medicine.Medicine{})
	if filter.Name != "" {
		q = q.Where("LOWER(name) LIKE LOWER(?)", "%"+filter.Name+"%")
	}
	if filter.Unit != "" {
		q = q.Where("unit = ?", filter.Unit)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var medicines []medicine.Medicine
	err := q.Order("name ASC").Limit(p.Limit()).Offset(p.Offset()).Find(&medicines).Error
	if err != nil {
		return nil, 0, err
	}
	return medicines, total, nil
}

func (r *Repository) AddImages(images []medicine.Image) error {
	return r.db.Create(&images).Error
}

func (r *Repository) GetImage(medicineID, imageID int64) (*medicine.Image, error) {
	var img medicine.Image
	err := r.db.Where("id = ? AND medicine_id = ?", imageID, medicineID).First(&img).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, medicine.ErrImageNotFound
		}
		return nil, err
	}
	return &img, nil
}

func (r *Repository) DeleteImage(medicineID, imageID int64) error {
	res := r.db.Where("id = ? AND medicine_id = ?", imageID, medicineID).Delete(&medicine.Image{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return medicine.ErrImageNotFound
	}
	return nil
}

// ExportBatches walks the catalogue ordered by id so exports never load the
// full table.
func (r *Repository) ExportBatches(batchSize int, fn func(medicines []medicine.Medicine) error) error {
	var batch []medicine.Medicine
	res := r.db.Model(&medicine.Medicine{}).Order("id ASC").FindInBatches(&batch, batchSize, func(_ *gorm.DB, _ int) error {
		return fn(batch)
	})
	return res.Error
}

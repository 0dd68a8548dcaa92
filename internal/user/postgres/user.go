package postgres

import (
	"errors"

	"gorm.io/gorm"

	"github.com/adeputra/pharmacy-inventory/internal/pagination"
	"github.com/adeputra/pharmacy-inventory/internal/user"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Create(u *user.User) error {
	return r.db.Create(u).Error
}

func (r *Repository) GetByID(id int64) (*user.User, error) {
	var u user.User
	err := r.db.First(&u, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, user.ErrUserNotFound
		}
		return nil, err
	}
	return &u, nil
}

// FindAnyByNIKOrEmail searches soft-deleted rows too; registration decides
// whether a match blocks the create or gets restored.
func (r *Repository) FindAnyByNIKOrEmail(nik string, email *string) (*user.User, error) {
	q := r.db.Unscoped()
	if email != nil {
		q = q.Where("nik = ? OR email = ?", nik, *email)
	} else {
		q = q.Where("nik = ?", nik)
	}

	var u user.User
	err := q.First(&u).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, user.ErrUserNotFound
		}
		return nil, err
	}
	return &u, nil
}

func (r *Repository) Restore(id int64, updates map[string]any) error {
	updates["deleted_at"] = nil
	res := r.db.Unscoped().Model(&user.User{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return user.ErrUserNotFound
	}
	return nil
}

func (r *Repository) Update(id int64, updates map[string]any) error {
	res := r.db.Model(&user.User{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return user.ErrUserNotFound
	}
	return nil
}

func (r *Repository) SoftDelete(id int64) error {
	res := r.db.Delete(&user.User{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return user.ErrUserNotFound
	}
	return nil
}

func (r *Repository) List(search string, p pagination.Pagination) ([]user.User, int64, error) {
	q := r.db.Model(&user.User{})
	if search != "" {
		q = q.Where("LOWER(name) LIKE LOWER(?)", "%"+search+"%")
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var users []user.User
	err := q.Order("name ASC").Limit(p.Limit()).Offset(p.Offset()).Find(&users).Error
	if err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

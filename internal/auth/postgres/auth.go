package postgres

import (
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/adeputra/pharmacy-inventory/internal/auth"
)

// userRow is the auth-side projection of the users table. Soft-deleted rows
// are invisible here.
type userRow struct {
	ID           int64   `gorm:"primaryKey"`
	Name         string  `gorm:"column:name"`
	Email        *string `gorm:"column:email"`
	NIK          string  `gorm:"column:nik"`
	PasswordHash string  `gorm:"column:password"`
	Position     *string `gorm:"column:position"`
	Role         string  `gorm:"column:role"`
	IsActive     bool    `gorm:"column:is_active"`
	DeletedAt    gorm.DeletedAt
}

func (userRow) TableName() string {
	return "users"
}

func (row *userRow) toRecord() *auth.UserRecord {
	return &auth.UserRecord{
		ID:           row.ID,
		Name:         row.Name,
		Email:        row.Email,
		NIK:          row.NIK,
		PasswordHash: row.PasswordHash,
		Position:     row.Position,
		Role:         row.Role,
		IsActive:     row.IsActive,
	}
}

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) GetUserByIdentifier(identifier string) (*auth.UserRecord, error) {
	var row userRow
	err := r.db.Where("email = ? OR nik = ?", identifier, identifier).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, auth.ErrRecordNotFound
		}
		return nil, err
	}
	return row.toRecord(), nil
}

func (r *Repository) GetUserByID(id int64) (*auth.UserRecord, error) {
	var row userRow
	err := r.db.First(&row, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, auth.ErrRecordNotFound
		}
		return nil, err
	}
	return row.toRecord(), nil
}

func (r *Repository) GetUserByEmail(email string) (*auth.UserRecord, error) {
	var row userRow
	err := r.db.Where("email = ?", email).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, auth.ErrRecordNotFound
		}
		return nil, err
	}
	return row.toRecord(), nil
}

func (r *Repository) UpdatePasswordHash(userID int64, hash string) error {
	return r.db.Model(&userRow{}).Where("id = ?", userID).Update("password", hash).Error
}

func (r *Repository) CreateAccessToken(token *auth.AccessToken) error {
	return r.db.Create(token).Error
}

func (r *Repository) DeleteAccessToken(jti string) error {
	return r.db.Delete(&auth.AccessToken{}, "jti = ?", jti).Error
}

func (r *Repository) AccessTokenExists(jti string) (bool, error) {
	var count int64
	err := r.db.Model(&auth.AccessToken{}).Where("jti = ?", jti).Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// UpsertResetToken replaces any previous token for the email so only the
// latest issued token is redeemable.
func (r *Repository) UpsertResetToken(token *auth.PasswordResetToken) error {
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "email"}},
		DoUpdates: clause.AssignmentColumns([]string{"token_hash", "created_at"}),
	}).Create(token).Error
}

func (r *Repository) GetResetToken(email string) (*auth.PasswordResetToken, error) {
	var token auth.PasswordResetToken
	err := r.db.Where("email = ?", email).First(&token).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, auth.ErrRecordNotFound
		}
		return nil, err
	}
	return &token, nil
}

func (r *Repository) DeleteResetToken(email string) error {
	return r.db.Delete(&auth.PasswordResetToken{}, "email = ?", email).Error
}

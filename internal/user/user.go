package user

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/adeputra/pharmacy-inventory/internal/pagination"
	"github.com/adeputra/pharmacy-inventory/internal/transport"
)

var ErrUserNotFound = errors.New("user not found")

type User struct {
	ID        int64          `gorm:"primaryKey" json:"id"`
	Name      string         `gorm:"not null" json:"name"`
	Email     *string        `gorm:"uniqueIndex" json:"email"`
	NIK       string         `gorm:"column:nik;uniqueIndex;not null" json:"nik"`
	Password  string         `gorm:"column:password;not null" json:"-"`
	Position  *string        `json:"position"`
	Role      string         `gorm:"not null" json:"role"`
	IsActive  bool           `gorm:"column:is_active;default:true" json:"is_active"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (User) TableName() string {
	return "users"
}

type RepositoryAPI interface {
	Create(u *User) error
	GetByID(id int64) (*User, error)
	// FindAnyByNIKOrEmail also matches soft-deleted rows so registration
	// can restore them instead of violating the unique indexes.
	FindAnyByNIKOrEmail(nik string, email *string) (*User, error)
	// Restore overwrites a soft-deleted row in place and clears its
	// deletion mark, keeping the original id.
	Restore(id int64, updates map[string]any) error
	Update(id int64, updates map[string]any) error
	SoftDelete(id int64) error
	List(search string, p pagination.Pagination) ([]User, int64, error)
}

type CreateRequest struct {
	RequestHeader transport.RequestHeader `json:"request_header"`
	Name          string                  `json:"name"`
	Email         *string                 `json:"email"`
	NIK           string                  `json:"nik"`
	Password      string                  `json:"password"`
	Position      *string                 `json:"position"`
	Role          string                  `json:"role"`
}

func (r *CreateRequest) Header() transport.RequestHeader {
	return r.RequestHeader
}

type UpdateRequest struct {
	RequestHeader transport.RequestHeader `json:"request_header"`
	Name          *string                 `json:"name"`
	Email         *string                 `json:"email"`
	Position      *string                 `json:"position"`
	IsActive      *bool                   `json:"is_active"`
}

func (r *UpdateRequest) Header() transport.RequestHeader {
	return r.RequestHeader
}

type UpdateRoleRequest struct {
	RequestHeader transport.RequestHeader `json:"request_header"`
	Role          string                  `json:"role"`
}

func (r *UpdateRoleRequest) Header() transport.RequestHeader {
	return r.RequestHeader
}

type UpdatePasswordRequest struct {
	RequestHeader   transport.RequestHeader `json:"request_header"`
	Password        string                  `json:"password"`
	ConfirmPassword string                  `json:"confirm_password"`
}

func (r *UpdatePasswordRequest) Header() transport.RequestHeader {
	return r.RequestHeader
}

type ChangeOwnPasswordRequest struct {
	RequestHeader   transport.RequestHeader `json:"request_header"`
	CurrentPassword string                  `json:"current_password"`
	Password        string                  `json:"password"`
	ConfirmPassword string                  `json:"confirm_password"`
}

func (r *ChangeOwnPasswordRequest) Header() transport.RequestHeader {
	return r.RequestHeader
}

type Response struct {
	ID          int64    `json:"id"`
	Name        string   `json:"name"`
	Email       *string  `json:"email"`
	NIK         string   `json:"nik"`
	Position    *string  `json:"position"`
	Role        string   `json:"role"`
	Permissions []string `json:"permissions,omitempty"`
	IsActive    bool     `json:"is_active"`
	CreatedAt   string   `json:"created_at"`
}

package auth

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/adeputra/pharmacy-inventory/internal"
)

const (
	RoleSuperAdmin = "SuperAdmin"
	RoleAdmin      = "Admin"
)

const (
	PermUserView       = "user.view"
	PermUserCreate     = "user.create"
	PermUserUpdate     = "user.update"
	PermUserDelete     = "user.delete"
	PermMedicineView   = "medicine.view"
	PermMedicineCreate = "medicine.create"
	PermMedicineUpdate = "medicine.update"
	PermMedicineDelete = "medicine.delete"
	PermMedicineExport = "medicine.export"
	PermStockIn        = "stock.in"
	PermStockOut       = "stock.out"
)

// rolePermissions is the authorization policy: each role maps to the fixed
// permission set it grants. Permissions are derived, never stored.
var rolePermissions = map[string][]string{
	RoleSuperAdmin: {
		PermUserView, PermUserCreate, PermUserUpdate, PermUserDelete,
		PermMedicineView, PermMedicineCreate, PermMedicineUpdate, PermMedicineDelete, PermMedicineExport,
		PermStockIn, PermStockOut,
	},
	RoleAdmin: {
		PermMedicineView, PermMedicineCreate, PermMedicineUpdate, PermMedicineDelete, PermMedicineExport,
		PermStockIn, PermStockOut,
	},
}

func ValidRole(name string) bool {
	_, ok := rolePermissions[name]
	return ok
}

func RoleNames() []string {
	return []string{RoleSuperAdmin, RoleAdmin}
}

func PermissionsForRole(role string) []string {
	perms, ok := rolePermissions[role]
	if !ok {
		return []string{}
	}
	out := make([]string, len(perms))
	copy(out, perms)
	return out
}

// CurrentUser is the authenticated principal attached to the request
// context by the auth middleware.
type CurrentUser struct {
	ID          int64    `json:"id"`
	Name        string   `json:"name"`
	Email       *string  `json:"email"`
	NIK         string   `json:"nik"`
	Position    *string  `json:"position"`
	Role        string   `json:"role"`
	IsActive    bool     `json:"is_active"`
	Permissions []string `json:"permissions"`
	// TokenID is the jti of the token this request authenticated with.
	TokenID string `json:"-"`
}

func (u *CurrentUser) HasPermission(permission string) bool {
	for _, p := range u.Permissions {
		if p == permission {
			return true
		}
	}
	return false
}

func (u *CurrentUser) HasRole(role string) bool {
	return u.Role == role
}

func UserFromContext(ctx context.Context) (*CurrentUser, bool) {
	user, ok := ctx.Value(internal.ContextUserKey).(*CurrentUser)
	return user, ok
}

func ContextWithUser(ctx context.Context, user *CurrentUser) context.Context {
	return context.WithValue(ctx, internal.ContextUserKey, user)
}

// UserRecord is the persistence-level view of a user the auth service works
// with; the full user aggregate lives in the user package.
type UserRecord struct {
	ID           int64
	Name         string
	Email        *string
	NIK          string
	PasswordHash string
	Position     *string
	Role         string
	IsActive     bool
}

// AccessToken rows make bearer tokens revocable: a token is live while its
// jti row exists.
type AccessToken struct {
	JTI       string    `gorm:"column:jti;primaryKey"`
	UserID    int64     `gorm:"column:user_id;not null"`
	CreatedAt time.Time `gorm:"column:created_at"`
}

func (AccessToken) TableName() string {
	return "access_tokens"
}

// PasswordResetToken stores the sha256 of an issued reset token, one live
// token per email.
type PasswordResetToken struct {
	Email     string    `gorm:"primaryKey"`
	TokenHash string    `gorm:"column:token_hash;not null"`
	CreatedAt time.Time `gorm:"column:created_at"`
}

func (PasswordResetToken) TableName() string {
	return "password_reset_tokens"
}

type Claims struct {
	UserID int64 `json:"user_id"`
	jwt.RegisteredClaims
}

type RepositoryAPI interface {
	GetUserByIdentifier(identifier string) (*UserRecord, error)
	GetUserByID(id int64) (*UserRecord, error)
	GetUserByEmail(email string) (*UserRecord, error)
	UpdatePasswordHash(userID int64, hash string) error

	CreateAccessToken(token *AccessToken) error
	DeleteAccessToken(jti string) error
	AccessTokenExists(jti string) (bool, error)

	UpsertResetToken(token *PasswordResetToken) error
	GetResetToken(email string) (*PasswordResetToken, error)
	DeleteResetToken(email string) error
}

type TokenGeneratorAPI interface {
	Generate(userID int64) (token string, jti string, err error)
	Parse(tokenString string) (*Claims, error)
}

// Mailer delivers password-reset tokens; delivery is external to this
// service.
type Mailer interface {
	SendPasswordReset(email, token string) error
}

// ErrRecordNotFound is the repository-level sentinel for missing rows.
var ErrRecordNotFound = errors.New("record not found")

func VerifyPassword(hashedPassword, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
}

func HashPassword(password string, cost int) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

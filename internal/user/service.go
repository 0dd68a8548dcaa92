package user

import (
	"context"
	"errors"
	"time"

	"github.com/adeputra/pharmacy-inventory/internal"
	"github.com/adeputra/pharmacy-inventory/internal/auth"
	"github.com/adeputra/pharmacy-inventory/internal/pagination"
	"github.com/adeputra/pharmacy-inventory/internal/validation"
	"github.com/adeputra/pharmacy-inventory/pkg/logger"
)

const displayTimeLayout = "2006-01-02 15:04:05"

type Service struct {
	repo       RepositoryAPI
	bcryptCost int
	location   *time.Location
}

func NewService(repo RepositoryAPI, bcryptCost int, location *time.Location) *Service {
	if location == nil {
		location = time.UTC
	}
	return &Service{repo: repo, bcryptCost: bcryptCost, location: location}
}

// Create registers a user. When the nik or email belongs to a soft-deleted
// account, that row is restored in place with the new attributes so the
// unique indexes never block re-registration.
func (s *Service) Create(ctx context.Context, req *CreateRequest) (*Response, error) {
	v := validation.NewValidator()
	v.Field("name", req.Name).Required().MaxLength(255)
	v.Field("nik", req.NIK).Required().MaxLength(50)
	v.Field("email", req.Email).Email()
	v.Field("role", req.Role).Required().OneOf(auth.RoleNames()...)
	if err := v.Validate(); err != nil {
		return nil, err
	}
	if err := validation.ValidatePassword(req.Password); err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(req.Password, s.bcryptCost)
	if err != nil {
		return nil, internal.NewInternalError(err)
	}

	existing, err := s.repo.FindAnyByNIKOrEmail(req.NIK, req.Email)
	if err != nil && !errors.Is(err, ErrUserNotFound) {
		return nil, internal.NewInternalError(err)
	}

	if existing != nil {
		if !existing.DeletedAt.Valid {
			return nil, internal.NewBadRequestError("nik or email is already registered")
		}

		updates := map[string]any{
			"name":      req.Name,
			"email":     req.Email,
			"nik":       req.NIK,
			"password":  hash,
			"position":  req.Position,
			"role":      req.Role,
			"is_active": true,
		}
		if err := s.repo.Restore(existing.ID, updates); err != nil {
			return nil, internal.NewInternalError(err)
		}

		logger.From(ctx).Info("user restored", "user_id", existing.ID)
		return s.Get(ctx, existing.ID)
	}

	u := &User{
		Name:     req.Name,
		Email:    req.Email,
		NIK:      req.NIK,
		Password: hash,
		Position: req.Position,
		Role:     req.Role,
		IsActive: true,
	}
	if err := s.repo.Create(u); err != nil {
		return nil, internal.NewInternalError(err)
	}

	logger.From(ctx).Info("user created", "user_id", u.ID)
	return s.toResponse(u, true), nil
}

func (s *Service) Update(ctx context.Context, id int64, req *UpdateRequest) (*Response, error) {
	updates := map[string]any{}

	v := validation.NewValidator()
	if req.Name != nil {
		v.Field("name", *req.Name).Required().MaxLength(255)
		updates["name"] = *req.Name
	}
	if req.Email != nil {
		v.Field("email", *req.Email).Email()
		updates["email"] = *req.Email
	}
	if req.Position != nil {
		updates["position"] = *req.Position
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}
	if err := v.Validate(); err != nil {
		return nil, err
	}
	if len(updates) == 0 {
		return nil, internal.NewBadRequestError("at least one field must be provided")
	}

	if err := s.applyUpdate(id, updates); err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

func (s *Service) UpdateRole(ctx context.Context, id int64, req *UpdateRoleRequest) (*Response, error) {
	v := validation.NewValidator()
	v.Field("role", req.Role).Required().OneOf(auth.RoleNames()...)
	if err := v.Validate(); err != nil {
		return nil, err
	}

	if err := s.applyUpdate(id, map[string]any{"role": req.Role}); err != nil {
		return nil, err
	}

	logger.From(ctx).Info("user role updated", "user_id", id, "role", req.Role)
	return s.Get(ctx, id)
}

// UpdatePassword is the admin-initiated reset; it does not require the old
// password.
func (s *Service) UpdatePassword(ctx context.Context, id int64, req *UpdatePasswordRequest) error {
	if req.Password != req.ConfirmPassword {
		return internal.NewBadRequestError("password confirmation does not match")
	}
	if err := validation.ValidatePassword(req.Password); err != nil {
		return err
	}

	hash, err := auth.HashPassword(req.Password, s.bcryptCost)
	if err != nil {
		return internal.NewInternalError(err)
	}
	if err := s.applyUpdate(id, map[string]any{"password": hash}); err != nil {
		return err
	}

	logger.From(ctx).Info("user password updated", "user_id", id)
	return nil
}

// ChangeOwnPassword requires the current password and enforces the policy
// on the new one.
func (s *Service) ChangeOwnPassword(ctx context.Context, userID int64, req *ChangeOwnPasswordRequest) error {
	u, err := s.repo.GetByID(userID)
	if err != nil {
		return s.mapRepoError(err)
	}

	if err := auth.VerifyPassword(u.Password, req.CurrentPassword); err != nil {
		return internal.NewCurrentPasswordInvalidError()
	}
	if req.Password != req.ConfirmPassword {
		return internal.NewBadRequestError("password confirmation does not match")
	}
	if err := validation.ValidatePassword(req.Password); err != nil {
		return err
	}

	hash, err := auth.HashPassword(req.Password, s.bcryptCost)
	if err != nil {
		return internal.NewInternalError(err)
	}
	if err := s.applyUpdate(userID, map[string]any{"password": hash}); err != nil {
		return err
	}

	logger.From(ctx).Info("password changed", "user_id", userID)
	return nil
}

// Delete soft-deletes a user. Deleting the acting account is refused.
func (s *Service) Delete(ctx context.Context, id int64, actingUserID int64) error {
	if id == actingUserID {
		return internal.NewBadRequestError("cannot delete your own account")
	}

	if err := s.repo.SoftDelete(id); err != nil {
		return s.mapRepoError(err)
	}

	logger.From(ctx).Info("user deleted", "user_id", id)
	return nil
}

func (s *Service) Get(ctx context.Context, id int64) (*Response, error) {
	u, err := s.repo.GetByID(id)
	if err != nil {
		return nil, s.mapRepoError(err)
	}
	return s.toResponse(u, true), nil
}

func (s *Service) List(ctx context.Context, search string, p pagination.Pagination) (*pagination.CountedPage, error) {
	users, total, err := s.repo.List(search, p)
	if err != nil {
		return nil, internal.NewInternalError(err)
	}

	items := make([]Response, 0, len(users))
	for i := range users {
		items = append(items, *s.toResponse(&users[i], false))
	}
	page := p.BuildCounted(items, total)
	return &page, nil
}

func (s *Service) applyUpdate(id int64, updates map[string]any) error {
	if err := s.repo.Update(id, updates); err != nil {
		return s.mapRepoError(err)
	}
	return nil
}

func (s *Service) mapRepoError(err error) error {
	if errors.Is(err, ErrUserNotFound) {
		return internal.NewUserNotFoundError()
	}
	if appErr, ok := internal.IsAppError(err); ok {
		return appErr
	}
	return internal.NewInternalError(err)
}

func (s *Service) toResponse(u *User, withPermissions bool) *Response {
	resp := &Response{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		NIK:       u.NIK,
		Position:  u.Position,
		Role:      u.Role,
		IsActive:  u.IsActive,
		CreatedAt: u.CreatedAt.In(s.location).Format(displayTimeLayout),
	}
	if withPermissions {
		resp.Permissions = auth.PermissionsForRole(u.Role)
	}
	return resp
}

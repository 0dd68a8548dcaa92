package auth

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/adeputra/pharmacy-inventory/internal"
	"github.com/adeputra/pharmacy-inventory/internal/validation"
	"github.com/adeputra/pharmacy-inventory/pkg/logger"
)

type Service struct {
	repo       RepositoryAPI
	tokens     TokenGeneratorAPI
	mailer     Mailer
	tokenTTL   time.Duration
	resetTTL   time.Duration
	bcryptCost int
	logger     *slog.Logger
}

func NewService(repo RepositoryAPI, tokens TokenGeneratorAPI, mailer Mailer, tokenTTL, resetTTL time.Duration, bcryptCost int) *Service {
	lg := logger.LoggerWrapper()
	if lg == nil {
		lg = slog.Default()
	}
	if mailer == nil {
		mailer = &logMailer{logger: lg}
	}
	return &Service{
		repo:       repo,
		tokens:     tokens,
		mailer:     mailer,
		tokenTTL:   tokenTTL,
		resetTTL:   resetTTL,
		bcryptCost: bcryptCost,
		logger:     lg,
	}
}

// logMailer stands in when no mail transport is configured. It logs that a
// reset was issued but never the token itself.
type logMailer struct {
	logger *slog.Logger
}

func (m *logMailer) SendPasswordReset(email, _ string) error {
	m.logger.Info("password reset token issued", "email", email)
	return nil
}

// Login authenticates by email or nik. Credential failures and unknown
// identifiers return the same error so the response does not reveal which
// accounts exist.
func (s *Service) Login(ctx context.Context, req *LoginRequest) (*LoginResponse, error) {
	v := validation.NewValidator()
	v.Field("identifier", req.Identifier).Required()
	v.Field("password", req.Password).Required()
	if err := v.Validate(); err != nil {
		return nil, err
	}

	record, err := s.repo.GetUserByIdentifier(req.Identifier)
	if err != nil {
		if errors.Is(err, ErrRecordNotFound) {
			return nil, internal.NewInvalidCredentialsError()
		}
		return nil, internal.NewInternalError(err)
	}

	if err := VerifyPassword(record.PasswordHash, req.Password); err != nil {
		return nil, internal.NewInvalidCredentialsError()
	}

	if !record.IsActive {
		return nil, internal.NewUserNotActiveError()
	}

	token, jti, err := s.tokens.Generate(record.ID)
	if err != nil {
		return nil, internal.NewInternalError(err)
	}

	if err := s.repo.CreateAccessToken(&AccessToken{JTI: jti, UserID: record.ID, CreatedAt: time.Now()}); err != nil {
		return nil, internal.NewInternalError(err)
	}

	logger.From(ctx).Info("user logged in", "user_id", record.ID)

	return &LoginResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   int64(s.tokenTTL.Seconds()),
		User:        s.currentUser(record, jti),
	}, nil
}

// Logout revokes only the presented token; other sessions stay live.
func (s *Service) Logout(ctx context.Context, jti string) error {
	if err := s.repo.DeleteAccessToken(jti); err != nil {
		return internal.NewInternalError(err)
	}
	logger.From(ctx).Info("token revoked", "jti", jti)
	return nil
}

// Authenticate resolves a bearer token into the current user. A token fails
// if the signature is bad, it has expired, or its jti has been revoked.
func (s *Service) Authenticate(ctx context.Context, tokenString string) (*CurrentUser, error) {
	claims, err := s.tokens.Parse(tokenString)
	if err != nil {
		return nil, internal.NewTokenNotValidError()
	}

	live, err := s.repo.AccessTokenExists(claims.ID)
	if err != nil {
		return nil, internal.NewInternalError(err)
	}
	if !live {
		return nil, internal.NewTokenNotValidError()
	}

	record, err := s.repo.GetUserByID(claims.UserID)
	if err != nil {
		if errors.Is(err, ErrRecordNotFound) {
			return nil, internal.NewTokenNotValidError()
		}
		return nil, internal.NewInternalError(err)
	}
	if !record.IsActive {
		return nil, internal.NewUserNotActiveError()
	}

	return s.currentUser(record, claims.ID), nil
}

// ForgotPassword always reports success; whether the email matched an
// account is not observable from the response.
func (s *Service) ForgotPassword(ctx context.Context, req *ForgotPasswordRequest) error {
	v := validation.NewValidator()
	v.Field("email", req.Email).Required().Email()
	if err := v.Validate(); err != nil {
		return err
	}

	record, err := s.repo.GetUserByEmail(req.Email)
	if err != nil {
		if errors.Is(err, ErrRecordNotFound) {
			return nil
		}
		return internal.NewInternalError(err)
	}
	if record.Email == nil || !record.IsActive {
		return nil
	}

	plaintext, hash, err := GenerateResetToken()
	if err != nil {
		return internal.NewInternalError(err)
	}

	if err := s.repo.UpsertResetToken(&PasswordResetToken{
		Email:     *record.Email,
		TokenHash: hash,
		CreatedAt: time.Now(),
	}); err != nil {
		return internal.NewInternalError(err)
	}

	if err := s.mailer.SendPasswordReset(*record.Email, plaintext); err != nil {
		logger.From(ctx).Error("failed to send password reset mail", "error", err)
	}
	return nil
}

// ResetPassword consumes a reset token. The token must hash to the stored
// digest and still be within its TTL; it is deleted on success.
func (s *Service) ResetPassword(ctx context.Context, req *ResetPasswordRequest) error {
	v := validation.NewValidator()
	v.Field("email", req.Email).Required().Email()
	v.Field("token", req.Token).Required()
	v.Field("password", req.Password).Required()
	if err := v.Validate(); err != nil {
		return err
	}
	if req.Password != req.ConfirmPassword {
		return internal.NewBadRequestError("password confirmation does not match")
	}
	if err := validation.ValidatePassword(req.Password); err != nil {
		return err
	}

	stored, err := s.repo.GetResetToken(req.Email)
	if err != nil {
		if errors.Is(err, ErrRecordNotFound) {
			return internal.NewTokenNotValidError()
		}
		return internal.NewInternalError(err)
	}

	if HashResetToken(req.Token) != stored.TokenHash || time.Since(stored.CreatedAt) > s.resetTTL {
		return internal.NewTokenNotValidError()
	}

	record, err := s.repo.GetUserByEmail(req.Email)
	if err != nil {
		if errors.Is(err, ErrRecordNotFound) {
			return internal.NewTokenNotValidError()
		}
		return internal.NewInternalError(err)
	}

	hash, err := HashPassword(req.Password, s.bcryptCost)
	if err != nil {
		return internal.NewInternalError(err)
	}
	if err := s.repo.UpdatePasswordHash(record.ID, hash); err != nil {
		return internal.NewInternalError(err)
	}
	if err := s.repo.DeleteResetToken(req.Email); err != nil {
		logger.From(ctx).Error("failed to delete consumed reset token", "error", err, "email", req.Email)
	}

	logger.From(ctx).Info("password reset", "user_id", record.ID)
	return nil
}

func (s *Service) currentUser(record *UserRecord, jti string) *CurrentUser {
	return &CurrentUser{
		ID:          record.ID,
		Name:        record.Name,
		Email:       record.Email,
		NIK:         record.NIK,
		Position:    record.Position,
		Role:        record.Role,
		IsActive:    record.IsActive,
		Permissions: PermissionsForRole(record.Role),
		TokenID:     jti,
	}
}

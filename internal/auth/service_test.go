package auth_test

import (
	"context"
	"sync"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"golang.org/x/crypto/bcrypt"

	"github.com/adeputra/pharmacy-inventory/internal"
	"github.com/adeputra/pharmacy-inventory/internal/auth"
)

type fakeRepo struct {
	mu          sync.Mutex
	users       map[int64]*auth.UserRecord
	tokens      map[string]int64
	resetTokens map[string]*auth.PasswordResetToken
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		users:       map[int64]*auth.UserRecord{},
		tokens:      map[string]int64{},
		resetTokens: map[string]*auth.PasswordResetToken{},
	}
}

func (f *fakeRepo) addUser(u *auth.UserRecord) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.users[u.ID] = u
}

func (f *fakeRepo) GetUserByIdentifier(identifier string) (*auth.UserRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.NIK == identifier || (u.Email != nil && *u.Email == identifier) {
			return u, nil
		}
	}
	return nil, auth.ErrRecordNotFound
}

func (f *fakeRepo) GetUserByID(id int64) (*auth.UserRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u, ok := f.users[id]; ok {
		return u, nil
	}
	return nil, auth.ErrRecordNotFound
}

func (f *fakeRepo) GetUserByEmail(email string) (*auth.UserRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email != nil && *u.Email == email {
			return u, nil
		}
	}
	return nil, auth.ErrRecordNotFound
}

func (f *fakeRepo) UpdatePasswordHash(userID int64, hash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u, ok := f.users[userID]; ok {
		u.PasswordHash = hash
	}
	return nil
}

func (f *fakeRepo) CreateAccessToken(token *auth.AccessToken) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tokens[token.JTI] = token.UserID
	return nil
}

func (f *fakeRepo) DeleteAccessToken(jti string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.tokens, jti)
	return nil
}

func (f *fakeRepo) AccessTokenExists(jti string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.tokens[jti]
	return ok, nil
}

func (f *fakeRepo) UpsertResetToken(token *auth.PasswordResetToken) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.resetTokens[token.Email] = token
	return nil
}

func (f *fakeRepo) GetResetToken(email string) (*auth.PasswordResetToken, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if t, ok := f.resetTokens[email]; ok {
		return t, nil
	}
	return nil, auth.ErrRecordNotFound
}

func (f *fakeRepo) DeleteResetToken(email string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.resetTokens, email)
	return nil
}

type captureMailer struct {
	email string
	token string
}

func (m *captureMailer) SendPasswordReset(email, token string) error {
	m.email = email
	m.token = token
	return nil
}

var _ = Describe("Auth Service", func() {
	var (
		repo    *fakeRepo
		mailer  *captureMailer
		service *auth.Service
		ctx     context.Context
	)

	mustHash := func(password string) string {
		hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
		Expect(err).NotTo(HaveOccurred())
		return string(hash)
	}

	email := "ade@pharmacy.test"

	BeforeEach(func() {
		ctx = context.Background()
		repo = newFakeRepo()
		mailer = &captureMailer{}
		tokens := auth.NewJWTTokenGenerator("test-secret", time.Hour)
		service = auth.NewService(repo, tokens, mailer, time.Hour, 30*time.Minute, bcrypt.MinCost)

		repo.addUser(&auth.UserRecord{
			ID:           1,
			Name:         "Ade Putra",
			Email:        &email,
			NIK:          "12345678",
			PasswordHash: mustHash("Sup3r@dmin"),
			Role:         auth.RoleSuperAdmin,
			IsActive:     true,
		})
	})

	Describe("Login", func() {
		It("authenticates by email", func() {
			resp, err := service.Login(ctx, &auth.LoginRequest{Identifier: email, Password: "Sup3r@dmin"})
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.AccessToken).NotTo(BeEmpty())
			Expect(resp.TokenType).To(Equal("Bearer"))
			Expect(resp.User.Role).To(Equal(auth.RoleSuperAdmin))
			Expect(resp.User.Permissions).To(ContainElement(auth.PermUserDelete))
		})

		It("authenticates by nik", func() {
			resp, err := service.Login(ctx, &auth.LoginRequest{Identifier: "12345678", Password: "Sup3r@dmin"})
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.User.ID).To(Equal(int64(1)))
		})

		It("rejects a wrong password with the invalid-credentials code", func() {
			_, err := service.Login(ctx, &auth.LoginRequest{Identifier: email, Password: "wrong"})
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.CodeInvalidCredentials))
		})

		It("rejects an unknown identifier with the same code as a wrong password", func() {
			_, err := service.Login(ctx, &auth.LoginRequest{Identifier: "nobody@pharmacy.test", Password: "whatever"})
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.CodeInvalidCredentials))
		})

		It("distinguishes an inactive user from bad credentials", func() {
			inactive := "inactive@pharmacy.test"
			repo.addUser(&auth.UserRecord{
				ID:           2,
				Email:        &inactive,
				NIK:          "87654321",
				PasswordHash: mustHash("Val1d#pass"),
				Role:         auth.RoleAdmin,
				IsActive:     false,
			})

			_, err := service.Login(ctx, &auth.LoginRequest{Identifier: inactive, Password: "Val1d#pass"})
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.CodeUserNotActive))
		})
	})

	Describe("Authenticate", func() {
		It("resolves a live token to the current user", func() {
			resp, err := service.Login(ctx, &auth.LoginRequest{Identifier: email, Password: "Sup3r@dmin"})
			Expect(err).NotTo(HaveOccurred())

			user, err := service.Authenticate(ctx, resp.AccessToken)
			Expect(err).NotTo(HaveOccurred())
			Expect(user.ID).To(Equal(int64(1)))
			Expect(user.TokenID).NotTo(BeEmpty())
		})

		It("rejects a revoked token but keeps other sessions live", func() {
			first, err := service.Login(ctx, &auth.LoginRequest{Identifier: email, Password: "Sup3r@dmin"})
			Expect(err).NotTo(HaveOccurred())
			second, err := service.Login(ctx, &auth.LoginRequest{Identifier: email, Password: "Sup3r@dmin"})
			Expect(err).NotTo(HaveOccurred())

			user, err := service.Authenticate(ctx, first.AccessToken)
			Expect(err).NotTo(HaveOccurred())
			Expect(service.Logout(ctx, user.TokenID)).To(Succeed())

			_, err = service.Authenticate(ctx, first.AccessToken)
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.CodeTokenNotValid))

			_, err = service.Authenticate(ctx, second.AccessToken)
			Expect(err).NotTo(HaveOccurred())
		})

		It("rejects garbage tokens", func() {
			_, err := service.Authenticate(ctx, "not-a-jwt")
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.CodeTokenNotValid))
		})
	})

	Describe("ForgotPassword and ResetPassword", func() {
		It("issues a token and accepts it once within the TTL", func() {
			Expect(service.ForgotPassword(ctx, &auth.ForgotPasswordRequest{Email: email})).To(Succeed())
			Expect(mailer.email).To(Equal(email))
			Expect(mailer.token).NotTo(BeEmpty())

			err := service.ResetPassword(ctx, &auth.ResetPasswordRequest{
				Email:           email,
				Token:           mailer.token,
				Password:        "N3w!passw0rd",
				ConfirmPassword: "N3w!passw0rd",
			})
			Expect(err).NotTo(HaveOccurred())

			_, err = service.Login(ctx, &auth.LoginRequest{Identifier: email, Password: "N3w!passw0rd"})
			Expect(err).NotTo(HaveOccurred())

			err = service.ResetPassword(ctx, &auth.ResetPasswordRequest{
				Email:           email,
				Token:           mailer.token,
				Password:        "An0ther!pass",
				ConfirmPassword: "An0ther!pass",
			})
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.CodeTokenNotValid))
		})

		It("silently succeeds for an unknown email", func() {
			Expect(service.ForgotPassword(ctx, &auth.ForgotPasswordRequest{Email: "ghost@pharmacy.test"})).To(Succeed())
			Expect(mailer.token).To(BeEmpty())
		})

		It("rejects a wrong token", func() {
			Expect(service.ForgotPassword(ctx, &auth.ForgotPasswordRequest{Email: email})).To(Succeed())

			err := service.ResetPassword(ctx, &auth.ResetPasswordRequest{
				Email:           email,
				Token:           "deadbeef",
				Password:        "N3w!passw0rd",
				ConfirmPassword: "N3w!passw0rd",
			})
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.CodeTokenNotValid))
		})

		It("enforces the password policy on reset", func() {
			Expect(service.ForgotPassword(ctx, &auth.ForgotPasswordRequest{Email: email})).To(Succeed())

			err := service.ResetPassword(ctx, &auth.ResetPasswordRequest{
				Email:           email,
				Token:           mailer.token,
				Password:        "weak",
				ConfirmPassword: "weak",
			})
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.CodePasswordNotValid))
		})
	})
})

var _ = Describe("Role policy", func() {
	It("grants SuperAdmin every permission", func() {
		perms := auth.PermissionsForRole(auth.RoleSuperAdmin)
		Expect(perms).To(ConsistOf(
			auth.PermUserView, auth.PermUserCreate, auth.PermUserUpdate, auth.PermUserDelete,
			auth.PermMedicineView, auth.PermMedicineCreate, auth.PermMedicineUpdate,
			auth.PermMedicineDelete, auth.PermMedicineExport,
			auth.PermStockIn, auth.PermStockOut,
		))
	})

	It("denies Admin the user management permissions", func() {
		perms := auth.PermissionsForRole(auth.RoleAdmin)
		Expect(perms).To(ContainElements(auth.PermMedicineView, auth.PermStockIn, auth.PermStockOut))
		Expect(perms).NotTo(ContainElement(auth.PermUserView))
		Expect(perms).NotTo(ContainElement(auth.PermUserDelete))
	})

	It("returns an empty set for an unknown role", func() {
		Expect(auth.PermissionsForRole("Intern")).To(BeEmpty())
		Expect(auth.ValidRole("Intern")).To(BeFalse())
		Expect(auth.ValidRole(auth.RoleAdmin)).To(BeTrue())
	})
})

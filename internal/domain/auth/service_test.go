package auth

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"prodtrack/internal/core/apperror"
	appctx "prodtrack/internal/core/context"
	"prodtrack/internal/core/id"
	"prodtrack/internal/infrastructure/storage/memory"
)

type fakeUsers struct {
	mu    sync.Mutex
	items map[id.ID]*User
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{items: make(map[id.ID]*User)}
}

func (r *fakeUsers) Create(_ context.Context, u *User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *u
	r.items[u.ID] = &cp
	return nil
}

func (r *fakeUsers) Update(ctx context.Context, u *User) error {
	return r.Create(ctx, u)
}

func (r *fakeUsers) GetByID(_ context.Context, userID id.ID) (*User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.items[userID]
	if !ok {
		return nil, apperror.NewNotFound("users", userID.String())
	}
	cp := *u
	return &cp, nil
}

func (r *fakeUsers) GetByEmail(_ context.Context, email string) (*User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.items {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, apperror.NewNotFound("users", email)
}

func (r *fakeUsers) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	_, err := r.GetByEmail(ctx, email)
	if apperror.IsNotFound(err) {
		return false, nil
	}
	return err == nil, err
}

func newAuthService() (*Service, *fakeUsers, *JWTService) {
	users := newFakeUsers()
	jwtSvc := NewJWTService(DefaultJWTConfig("test-secret"))
	cfg := DefaultServiceConfig()
	cfg.BcryptCost = bcrypt.MinCost
	cfg.MaxLoginAttempts = 3
	return NewService(users, memory.NewTxManager(), jwtSvc, cfg), users, jwtSvc
}

func codeOf(t *testing.T, err error) string {
	t.Helper()
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok, "expected AppError, got %v", err)
	return appErr.Code
}

func TestService_Register(t *testing.T) {
	svc, users, _ := newAuthService()
	ctx := context.Background()

	u, err := svc.Register(ctx, RegisterRequest{Email: " Planner@Example.com ", Password: "s3cret-pass"})
	require.NoError(t, err)
	assert.Equal(t, "planner@example.com", u.Email)
	assert.True(t, u.IsActive)
	assert.NotEqual(t, "s3cret-pass", u.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("s3cret-pass")))
	assert.Len(t, users.items, 1)

	tests := []struct {
		name     string
		ctx      context.Context
		req      RegisterRequest
		wantCode string
	}{
		{name: "duplicate email", ctx: ctx, req: RegisterRequest{Email: "planner@example.com", Password: "another-pass"}, wantCode: apperror.CodeConflict},
		{name: "short password", ctx: ctx, req: RegisterRequest{Email: "x@example.com", Password: "short"}, wantCode: apperror.CodeValidation},
		{name: "bad email", ctx: ctx, req: RegisterRequest{Email: "not-an-email", Password: "long-enough"}, wantCode: apperror.CodeValidation},
		{name: "admin by non-admin", ctx: ctx, req: RegisterRequest{Email: "boss@example.com", Password: "long-enough", IsAdmin: true}, wantCode: apperror.CodeForbidden},
		{
			name: "admin by admin",
			ctx:  appctx.WithUser(ctx, &appctx.UserContext{UserID: u.ID.String(), IsAdmin: true}),
			req:  RegisterRequest{Email: "boss@example.com", Password: "long-enough", IsAdmin: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Register(tt.ctx, tt.req)
			if tt.wantCode == "" {
				require.NoError(t, err)
				return
			}
			assert.Equal(t, tt.wantCode, codeOf(t, err))
		})
	}
}

func TestService_Login(t *testing.T) {
	svc, _, jwtSvc := newAuthService()
	ctx := context.Background()

	inactive := false
	_, err := svc.Register(ctx, RegisterRequest{Email: "op@example.com", Password: "correct-horse"})
	require.NoError(t, err)
	_, err = svc.Register(ctx, RegisterRequest{Email: "gone@example.com", Password: "correct-horse", IsActive: &inactive})
	require.NoError(t, err)

	tests := []struct {
		name     string
		creds    Credentials
		wantCode string
	}{
		{name: "ok", creds: Credentials{Username: "OP@example.com", Password: "correct-horse"}},
		{name: "wrong password", creds: Credentials{Username: "op@example.com", Password: "battery-staple"}, wantCode: apperror.CodeUnauthorized},
		{name: "unknown user", creds: Credentials{Username: "nobody@example.com", Password: "correct-horse"}, wantCode: apperror.CodeUnauthorized},
		{name: "inactive", creds: Credentials{Username: "gone@example.com", Password: "correct-horse"}, wantCode: apperror.CodeValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, user, err := svc.Login(ctx, tt.creds)
			if tt.wantCode != "" {
				assert.Equal(t, tt.wantCode, codeOf(t, err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "bearer", token.TokenType)
			uc, err := jwtSvc.ValidateToken(token.AccessToken)
			require.NoError(t, err)
			assert.Equal(t, user.ID.String(), uc.UserID)
			assert.NotNil(t, user.LastLoginAt)
		})
	}
}

func TestService_Login_LocksAfterFailedAttempts(t *testing.T) {
	svc, users, _ := newAuthService()
	ctx := context.Background()
	now := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	u, err := svc.Register(ctx, RegisterRequest{Email: "op@example.com", Password: "correct-horse"})
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		_, _, err := svc.Login(ctx, Credentials{Username: "op@example.com", Password: "wrong"})
		assert.Equal(t, apperror.CodeUnauthorized, codeOf(t, err))
	}

	_, _, err = svc.Login(ctx, Credentials{Username: "op@example.com", Password: "correct-horse"})
	assert.Equal(t, apperror.CodeForbidden, codeOf(t, err))

	now = now.Add(16 * time.Minute)
	_, _, err = svc.Login(ctx, Credentials{Username: "op@example.com", Password: "correct-horse"})
	require.NoError(t, err)
	assert.Zero(t, users.items[u.ID].FailedLoginAttempts)
}

func TestService_CurrentUser(t *testing.T) {
	svc, users, _ := newAuthService()
	ctx := context.Background()

	u, err := svc.Register(ctx, RegisterRequest{Email: "me@example.com", Password: "correct-horse"})
	require.NoError(t, err)

	me, err := svc.CurrentUser(appctx.WithUser(ctx, &appctx.UserContext{UserID: u.ID.String()}))
	require.NoError(t, err)
	assert.Equal(t, "me@example.com", me.Email)

	_, err = svc.CurrentUser(appctx.WithUser(ctx, &appctx.UserContext{UserID: id.New().String()}))
	assert.Equal(t, apperror.CodeUnauthorized, codeOf(t, err))

	_, err = svc.CurrentUser(ctx)
	assert.Equal(t, apperror.CodeUnauthorized, codeOf(t, err))

	users.items[u.ID].IsActive = false
	_, err = svc.CurrentUser(appctx.WithUser(ctx, &appctx.UserContext{UserID: u.ID.String()}))
	assert.Equal(t, apperror.CodeValidation, codeOf(t, err))
}

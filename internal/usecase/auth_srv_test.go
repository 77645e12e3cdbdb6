package usecase

import (
	"context"
	"sync"
	"testing"

	"ticket-booking/internal/data/entity"
	"ticket-booking/internal/dto/request"
	"ticket-booking/pkg/utils"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type memUserRepo struct {
	mu    sync.Mutex
	users map[string]*entity.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: make(map[string]*entity.User)}
}

func (r *memUserRepo) Create(ctx context.Context, user *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *user
	r.users[user.Email] = &copied
	return nil
}

func (r *memUserRepo) FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.users {
		if user.ID == id {
			copied := *user
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *memUserRepo) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[email]
	if !ok {
		return nil, nil
	}
	copied := *user
	return &copied, nil
}

func (r *memUserRepo) Count(ctx context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.users)), nil
}

func newAuthService(users *memUserRepo) AuthService {
	return NewAuthService(users, utils.JWTConfig{Secret: "test-secret", ExpiryHours: 1}, zap.NewNop())
}

func TestRegisterIssuesToken(t *testing.T) {
	users := newMemUserRepo()
	svc := newAuthService(users)

	resp, err := svc.Register(context.Background(), request.RegisterRequest{
		Name:     "Ada",
		Email:    "ada@example.com",
		Password: "hunter22",
	})
	require.NoError(t, err)

	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, entity.UserRoleCustomer, resp.Role)

	claims, err := utils.ParseToken(resp.Token, "test-secret")
	require.NoError(t, err)
	assert.Equal(t, resp.UserID, claims.UserID)
	assert.Equal(t, string(entity.UserRoleCustomer), claims.Role)

	stored, err := users.FindByEmail(context.Background(), "ada@example.com")
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.NotEqual(t, "hunter22", stored.PasswordHash, "password must be stored hashed")
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	users := newMemUserRepo()
	svc := newAuthService(users)

	req := request.RegisterRequest{Name: "Ada", Email: "ada@example.com", Password: "hunter22"}
	_, err := svc.Register(context.Background(), req)
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), req)
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestLoginVerifiesPassword(t *testing.T) {
	users := newMemUserRepo()
	svc := newAuthService(users)

	_, err := svc.Register(context.Background(), request.RegisterRequest{
		Name:     "Ada",
		Email:    "ada@example.com",
		Password: "hunter22",
	})
	require.NoError(t, err)

	resp, err := svc.Login(context.Background(), request.LoginRequest{
		Email:    "ada@example.com",
		Password: "hunter22",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Token)

	_, err = svc.Login(context.Background(), request.LoginRequest{
		Email:    "ada@example.com",
		Password: "wrong-pass",
	})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(context.Background(), request.LoginRequest{
		Email:    "nobody@example.com",
		Password: "hunter22",
	})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

package usecase

import (
	"context"
	"errors"
	"time"

	"ticket-booking/internal/data/entity"
	"ticket-booking/internal/data/repository"
	"ticket-booking/internal/dto/request"
	"ticket-booking/internal/dto/response"
	"ticket-booking/pkg/utils"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
)

type AuthService interface {
	Register(ctx context.Context, req request.RegisterRequest) (*response.AuthResponse, error)
	Login(ctx context.Context, req request.LoginRequest) (*response.AuthResponse, error)
}

type authService struct {
	users repository.UserRepository
	jwt   utils.JWTConfig
	log   *zap.Logger
}

func NewAuthService(users repository.UserRepository, jwt utils.JWTConfig, log *zap.Logger) AuthService {
	return &authService{
		users: users,
		jwt:   jwt,
		log:   log.With(zap.String("service", "auth")),
	}
}

func (s *authService) Register(ctx context.Context, req request.RegisterRequest) (*response.AuthResponse, error) {
	existing, err := s.users.FindByEmail(ctx, req.Email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	user := &entity.User{
		Base: entity.Base{
			ID:        utils.GenerateUUID(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		Email:        req.Email,
		Name:         req.Name,
		PasswordHash: string(hash),
		Role:         entity.UserRoleCustomer,
	}

	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	s.log.Info("User registered",
		zap.String("user_id", user.ID.String()),
		zap.String("email", user.Email),
	)

	return s.issueToken(user)
}

func (s *authService) Login(ctx context.Context, req request.LoginRequest) (*response.AuthResponse, error) {
	user, err := s.users.FindByEmail(ctx, req.Email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	s.log.Info("User logged in", zap.String("user_id", user.ID.String()))

	return s.issueToken(user)
}

func (s *authService) issueToken(user *entity.User) (*response.AuthResponse, error) {
	token, err := utils.GenerateToken(user.ID, string(user.Role), s.jwt.Secret, s.jwt.ExpiryHours)
	if err != nil {
		return nil, err
	}

	return &response.AuthResponse{
		UserID:    user.ID.String(),
		Token:     token,
		ExpiresAt: time.Now().Add(time.Duration(s.jwt.ExpiryHours) * time.Hour),
		Email:     user.Email,
		Name:      user.Name,
		Role:      user.Role,
	}, nil
}

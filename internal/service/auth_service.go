package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"pensario-server/internal/domain"
	"pensario-server/internal/metrics"
	"pensario-server/internal/repository"
	"pensario-server/pkg/hash"
	"pensario-server/pkg/jwt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type AuthConfig struct {
	Secret     string
	Expiration time.Duration
	BcryptCost int
	Timeout    time.Duration
}

type AuthService struct {
	userRepo repository.UserRepository
	cfg      AuthConfig
	log      logrus.FieldLogger

	// dummyHash is compared against when the username is unknown so both
	// failure paths cost one bcrypt comparison.
	dummyHash string
}

func NewAuthService(userRepo repository.UserRepository, cfg AuthConfig, log logrus.FieldLogger) (*AuthService, error) {
	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = hash.DefaultCost
	}
	dummy, err := hash.HashWithCost(uuid.NewString(), cfg.BcryptCost)
	if err != nil {
		return nil, err
	}
	return &AuthService{
		userRepo:  userRepo,
		cfg:       cfg,
		log:       log,
		dummyHash: dummy,
	}, nil
}

func (s *AuthService) Register(ctx context.Context, req *domain.RegisterRequest) (*domain.User, error) {
	if req.Username == "" || req.Password == "" {
		return nil, invalidInput("username and password are required")
	}

	ctx, cancel := withTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	exists, err := s.userRepo.UsernameExists(ctx, req.Username)
	if err != nil {
		return nil, classify(err, "check username")
	}
	if exists {
		return nil, &Error{Kind: KindConflict, Message: "username already taken"}
	}

	hashedPassword, err := hash.HashWithCost(req.Password, s.cfg.BcryptCost)
	if err != nil {
		if errors.Is(err, hash.ErrEmptyPassword) || errors.Is(err, hash.ErrPasswordTooLong) {
			return nil, invalidInput(err.Error())
		}
		return nil, classify(err, "hash password")
	}

	now := time.Now().UTC()
	user := &domain.User{
		ID:           uuid.New().String(),
		Username:     req.Username,
		PasswordHash: hashedPassword,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, &Error{Kind: KindConflict, Message: "username already taken"}
		}
		return nil, classify(err, "create user")
	}

	s.log.WithField("user_id", user.ID).Info("user registered")
	return user, nil
}

// Login fails with ErrInvalidCredentials for unknown usernames and wrong passwords alike.
func (s *AuthService) Login(ctx context.Context, req *domain.LoginRequest) (*domain.LoginResponse, error) {
	if req.Username == "" || req.Password == "" {
		return nil, invalidInput("username and password are required")
	}

	ctx, cancel := withTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	user, err := s.userRepo.FindByUsername(ctx, req.Username)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			return nil, classify(err, "find user")
		}
		hash.Compare(s.dummyHash, req.Password)
		metrics.AuthAttempts.WithLabelValues("failure").Inc()
		return nil, ErrInvalidCredentials
	}

	if err := hash.Compare(user.PasswordHash, req.Password); err != nil {
		metrics.AuthAttempts.WithLabelValues("failure").Inc()
		return nil, ErrInvalidCredentials
	}

	token, err := jwt.GenerateToken(user.ID, s.cfg.Expiration, s.cfg.Secret)
	if err != nil {
		return nil, classify(err, "generate token")
	}

	metrics.AuthAttempts.WithLabelValues("success").Inc()
	return &domain.LoginResponse{
		Message: "login successful",
		Token:   token,
		User:    domain.UserSummary{ID: user.ID, Username: user.Username},
	}, nil
}

// Verify checks the token signature only; it never touches the store.
func (s *AuthService) Verify(token string) (string, error) {
	token = strings.TrimSpace(token)
	claims, err := jwt.ValidateToken(token, s.cfg.Secret)
	if err != nil {
		return "", &Error{Kind: KindUnauthorized, Message: "invalid or expired token", Err: err}
	}
	return claims.UserID, nil
}

package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/linemk/proshop/internal/domain/models"
	security "github.com/linemk/proshop/internal/jwt-new"
	"github.com/linemk/proshop/internal/storage"
	"golang.org/x/crypto/bcrypt"
)

type AuthService struct {
	log       *slog.Logger
	userRepo  storage.UserStorage
	tokens    *security.TokenManager
	blacklist storage.TokenBlacklist
}

func NewAuthService(log *slog.Logger, userRepo storage.UserStorage, tokens *security.TokenManager, blacklist storage.TokenBlacklist) *AuthService {
	return &AuthService{
		log:       log,
		userRepo:  userRepo,
		tokens:    tokens,
		blacklist: blacklist,
	}
}

type AuthServiceInterface interface {
	Register(ctx context.Context, email, username, password string) (*models.User, *security.TokenPair, error)
	Login(ctx context.Context, email, password string) (*models.User, *security.TokenPair, error)
	Logout(ctx context.Context, id models.Identity, refreshToken string) error
	Refresh(ctx context.Context, refreshToken string) (string, error)
	CurrentUser(ctx context.Context, id models.Identity) (*models.User, error)
	ListUsers(ctx context.Context) ([]*models.User, error)
}

var _ AuthServiceInterface = (*AuthService)(nil)

// Register создаёт пользователя. Пароль хэшируется через bcrypt (соль добавляется автоматически).
func (a *AuthService) Register(ctx context.Context, email, username, password string) (*models.User, *security.TokenPair, error) {
	const op = "auth.Register"
	logger := a.log.With(
		slog.String("op", op),
		slog.String("email", email),
	)
	logger.Info("registering user")

	passHash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		logger.Error("failed to hash password", slog.Any("error", err))
		return nil, nil, fmt.Errorf("%s: failed to hash password: %w", op, err)
	}

	user, err := a.userRepo.CreateUser(ctx, &models.User{
		Email:    email,
		Username: username,
		PassHash: passHash,
	})
	if err != nil {
		if errors.Is(err, storage.ErrUserExists) {
			logger.Warn("user already exists")
		} else {
			logger.Error("failed to create user", slog.Any("error", err))
		}
		return nil, nil, fmt.Errorf("%s: %w", op, err)
	}

	pair, err := a.tokens.NewTokenPair(user)
	if err != nil {
		logger.Error("failed to generate tokens", slog.Any("error", err))
		return nil, nil, fmt.Errorf("%s: failed to generate tokens: %w", op, err)
	}

	logger.Info("user registered", slog.Int64("userID", user.ID))
	return user, pair, nil
}

// Login осуществляет аутентификацию по email и паролю.
// Неизвестный email и неверный пароль неразличимы для клиента.
func (a *AuthService) Login(ctx context.Context, email, password string) (*models.User, *security.TokenPair, error) {
	const op = "auth.Login"
	logger := a.log.With(
		slog.String("op", op),
		slog.String("email", email),
	)
	logger.Info("checking user")

	user, err := a.userRepo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			logger.Warn("user not found")
			return nil, nil, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
		}
		logger.Error("failed to get user", slog.Any("error", err))
		return nil, nil, fmt.Errorf("%s: failed to get user: %w", op, err)
	}

	if err := bcrypt.CompareHashAndPassword(user.PassHash, []byte(password)); err != nil {
		logger.Warn("invalid password")
		return nil, nil, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}

	pair, err := a.tokens.NewTokenPair(user)
	if err != nil {
		logger.Error("failed to generate tokens", slog.Any("error", err))
		return nil, nil, fmt.Errorf("%s: failed to generate tokens: %w", op, err)
	}

	logger.Info("user logged in successfully", slog.Int64("userID", user.ID))
	return user, pair, nil
}

// Logout отзывает refresh-токен вызывающего пользователя до истечения его срока.
func (a *AuthService) Logout(ctx context.Context, id models.Identity, refreshToken string) error {
	const op = "auth.Logout"
	logger := a.log.With(slog.String("op", op), slog.Int64("userID", id.UserID))

	claims, err := a.validRefresh(ctx, refreshToken)
	if err != nil {
		logger.Warn("refresh token rejected", slog.Any("error", err))
		return fmt.Errorf("%s: %w", op, err)
	}
	if owner, err := claims.UserID(); err != nil || owner != id.UserID {
		logger.Warn("refresh token belongs to another user")
		return fmt.Errorf("%s: %w", op, ErrInvalidToken)
	}

	if err := a.blacklist.Blacklist(ctx, claims.ID, claims.ExpiresAt.Time); err != nil {
		logger.Error("failed to blacklist token", slog.Any("error", err))
		return fmt.Errorf("%s: %w", op, err)
	}

	logger.Info("user logged out")
	return nil
}

// Refresh выпускает новый access-токен по действующему refresh-токену.
func (a *AuthService) Refresh(ctx context.Context, refreshToken string) (string, error) {
	const op = "auth.Refresh"
	logger := a.log.With(slog.String("op", op))

	claims, err := a.validRefresh(ctx, refreshToken)
	if err != nil {
		logger.Warn("refresh token rejected", slog.Any("error", err))
		return "", fmt.Errorf("%s: %w", op, err)
	}

	access, err := a.tokens.NewAccessToken(claims)
	if err != nil {
		logger.Error("failed to generate access token", slog.Any("error", err))
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return access, nil
}

func (a *AuthService) validRefresh(ctx context.Context, refreshToken string) (*security.Claims, error) {
	claims, err := a.tokens.ParseRefresh(refreshToken)
	if err != nil {
		return nil, ErrInvalidToken
	}
	revoked, err := a.blacklist.IsBlacklisted(ctx, claims.ID)
	if err != nil {
		return nil, err
	}
	if revoked {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

func (a *AuthService) CurrentUser(ctx context.Context, id models.Identity) (*models.User, error) {
	const op = "auth.CurrentUser"
	user, err := a.userRepo.GetUserByID(ctx, id.UserID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return user, nil
}

func (a *AuthService) ListUsers(ctx context.Context) ([]*models.User, error) {
	const op = "auth.ListUsers"
	users, err := a.userRepo.ListUsers(ctx)
	if err != nil {
		a.log.Error("failed to list users", slog.String("op", op), slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return users, nil
}

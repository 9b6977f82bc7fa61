// Package auth реализует регистрацию, вход и работу с профилем пользователя.
package auth

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/text/language"

	"github.com/magabrotheeeer/portfolio-tracker/internal/lib/jwt"
	"github.com/magabrotheeeer/portfolio-tracker/internal/lib/password"
	"github.com/magabrotheeeer/portfolio-tracker/internal/models"
	"github.com/magabrotheeeer/portfolio-tracker/internal/storage"
)

var (
	// ErrInvalidCredentials — неизвестный пользователь или неверный пароль.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrInvalidLocale — локаль не является BCP 47 тегом.
	ErrInvalidLocale = errors.New("invalid locale")
)

// UserRepository описывает контракт для работы с пользователями в базе данных.
type UserRepository interface {
	RegisterUser(ctx context.Context, user models.User) (string, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	GetUser(ctx context.Context, userID string) (*models.User, error)
	UpdateSettings(ctx context.Context, userID string, settings models.Settings) error
}

// Service отвечает за регистрацию, авторизацию и валидацию JWT.
type Service struct {
	users    UserRepository
	jwtMaker jwt.Maker
	defaults models.Settings
}

// New создает Service. defaults — настройки нового пользователя.
func New(users UserRepository, jwtMaker jwt.Maker, defaults models.Settings) *Service {
	return &Service{
		users:    users,
		jwtMaker: jwtMaker,
		defaults: defaults,
	}
}

// Register создает пользователя с ролью по умолчанию и возвращает его ID.
func (s *Service) Register(ctx context.Context, req models.RegisterRequest) (string, error) {
	const op = "auth.Register"
	hashed, err := password.GetHash(req.Password)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	id, err := s.users.RegisterUser(ctx, models.User{
		Email:        req.Email,
		Username:     req.Username,
		PasswordHash: hashed,
		Role:         models.RoleUser,
		Settings:     s.defaults,
	})
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return id, nil
}

// Login проверяет пароль и выпускает токен доступа.
func (s *Service) Login(ctx context.Context, req models.LoginRequest) (token, role string, err error) {
	const op = "auth.Login"
	user, err := s.users.GetUserByUsername(ctx, req.Username)
	if errors.Is(err, storage.ErrNotFound) {
		return "", "", fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}
	if err != nil {
		return "", "", fmt.Errorf("%s: %w", op, err)
	}
	if err := password.CompareHash(user.PasswordHash, req.Password); err != nil {
		return "", "", fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}
	token, err = s.jwtMaker.GenerateToken(user.ID, user.Username, user.Role)
	if err != nil {
		return "", "", fmt.Errorf("%s: %w", op, err)
	}
	return token, user.Role, nil
}

// ValidateToken проверяет токен и возвращает пользователя из его claims.
func (s *Service) ValidateToken(_ context.Context, token string) (*models.User, error) {
	claims, err := s.jwtMaker.ParseToken(token)
	if err != nil {
		return nil, err
	}
	return &models.User{
		ID:       claims.UserID,
		Username: claims.Username,
		Role:     claims.Role,
	}, nil
}

// GetUser возвращает профиль пользователя.
func (s *Service) GetUser(ctx context.Context, userID string) (*models.User, error) {
	const op = "auth.GetUser"
	user, err := s.users.GetUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return user, nil
}

// UpdateSettings сохраняет базовую валюту и локаль пользователя.
// Локаль приводится к каноническому виду BCP 47.
func (s *Service) UpdateSettings(ctx context.Context, userID string, req models.UpdateSettingsRequest) (models.Settings, error) {
	const op = "auth.UpdateSettings"
	tag, err := language.Parse(req.Locale)
	if err != nil {
		return models.Settings{}, fmt.Errorf("%s: %w: %s", op, ErrInvalidLocale, req.Locale)
	}
	settings := models.Settings{BaseCurrency: req.BaseCurrency, Locale: tag.String()}
	if err := s.users.UpdateSettings(ctx, userID, settings); err != nil {
		return models.Settings{}, fmt.Errorf("%s: %w", op, err)
	}
	return settings, nil
}

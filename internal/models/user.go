package models

import "time"

const (
	// RoleAdmin — роль администратора.
	RoleAdmin = "admin"
	// RoleUser — роль по умолчанию.
	RoleUser = "user"
)

// Settings — пользовательские настройки отображения.
type Settings struct {
	BaseCurrency string `json:"base_currency"`
	Locale       string `json:"locale"`
}

// User представляет зарегистрированного пользователя системы.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	Settings     Settings  `json:"settings"`
	CreatedAt    time.Time `json:"created_at"`
}

// RegisterRequest — тело запроса на регистрацию.
type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Username string `json:"username" validate:"required,alphanum,min=3,max=64"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

// LoginRequest — тело запроса на вход.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// UpdateSettingsRequest — тело запроса на изменение настроек.
type UpdateSettingsRequest struct {
	BaseCurrency string `json:"base_currency" validate:"required,currency"`
	Locale       string `json:"locale" validate:"required,max=35"`
}

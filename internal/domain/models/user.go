package models

import "time"

// User представляет зарегистрированного покупателя. Логин по email.
type User struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	Username  string    `json:"username"`
	PassHash  []byte    `json:"-"`
	CreatedAt time.Time `json:"created_at"`
}

// Identity: аутентифицированный пользователь, извлечённый из access-токена.
// Передаётся в сервисы явным аргументом.
type Identity struct {
	UserID int64
	Email  string
}

// Package sl содержит атрибуты slog, общие для всего приложения.
package sl

import "log/slog"

// Err возвращает атрибут "error" с текстом ошибки; для nil значение пустое.
//
//	log.Error("failed to load account", sl.Err(err))
func Err(err error) slog.Attr {
	if err == nil {
		return slog.String("error", "")
	}
	return slog.String("error", err.Error())
}

// UserID возвращает атрибут "user_id".
func UserID(id string) slog.Attr {
	return slog.String("user_id", id)
}

// Op возвращает атрибут "op" с именем операции.
func Op(op string) slog.Attr {
	return slog.String("op", op)
}

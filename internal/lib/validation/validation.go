// Package validation проверяет входящие DTO и возвращает список нарушений
// вместо паники или ошибки при разборе.
//
// Кроме стандартных тегов go-playground/validator регистрируются
// доменные теги: iso8601, currency, datasource, ordertype, accounttype.
package validation

import (
	"fmt"
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/go-playground/validator"
	"github.com/google/uuid"

	"github.com/magabrotheeeer/portfolio-tracker/internal/lib/valuefmt"
	"github.com/magabrotheeeer/portfolio-tracker/internal/models"
)

// Violation описывает одно нарушение правил валидации.
type Violation struct {
	Field   string `json:"field"`
	Tag     string `json:"tag"`
	Message string `json:"message"`
}

// New создаёт валидатор с зарегистрированными доменными тегами.
func New() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("iso8601", isISO8601)
	_ = v.RegisterValidation("currency", isCurrency)
	_ = v.RegisterValidation("datasource", oneOf(
		models.DataSourceAlphaVantage, models.DataSourceGhostfolio, models.DataSourceManual,
		models.DataSourceRakuten, models.DataSourceYahoo,
	))
	_ = v.RegisterValidation("ordertype", oneOf(
		models.OrderBuy, models.OrderSell, models.OrderDividend, models.OrderItem,
	))
	_ = v.RegisterValidation("accounttype", oneOf(
		models.AccountSecurities, models.AccountCash,
	))
	return v
}

// IsID сообщает, похожа ли строка на идентификатор записи (UUID).
func IsID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}

// Check валидирует структуру и возвращает нарушения; пустой результат означает, что данные корректны.
func Check(v *validator.Validate, s any) []Violation {
	err := v.Struct(s)
	if err == nil {
		return nil
	}
	errs, ok := err.(validator.ValidationErrors)
	if !ok {
		return []Violation{{Tag: "invalid", Message: err.Error()}}
	}

	violations := make([]Violation, 0, len(errs))
	for _, fe := range errs {
		violations = append(violations, Violation{
			Field:   fe.Field(),
			Tag:     fe.Tag(),
			Message: message(fe),
		})
	}
	return violations
}

// Join склеивает сообщения нарушений в одну строку.
func Join(violations []Violation) string {
	msgs := make([]string, 0, len(violations))
	for _, v := range violations {
		msgs = append(msgs, v.Message)
	}
	return strings.Join(msgs, ", ")
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("field %s is a required field", fe.Field())
	case "alphanum":
		return fmt.Sprintf("field %s can contain only numbers and letters", fe.Field())
	case "email":
		return fmt.Sprintf("field %s must be a valid email", fe.Field())
	case "uuid":
		return fmt.Sprintf("field %s can contain only uuid", fe.Field())
	case "iso8601":
		return fmt.Sprintf("field %s must be an ISO-8601 date", fe.Field())
	case "currency":
		return fmt.Sprintf("field %s must be an ISO-4217 currency code", fe.Field())
	case "datasource", "ordertype", "accounttype":
		return fmt.Sprintf("field %s has unsupported value %v", fe.Field(), fe.Value())
	case "gte", "min":
		return fmt.Sprintf("field %s must be at least %s", fe.Field(), fe.Param())
	case "max":
		return fmt.Sprintf("field %s must be at most %s", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("field %s is not a valid", fe.Field())
	}
}

func isISO8601(fl validator.FieldLevel) bool {
	_, ok := valuefmt.ParseISO(fl.Field().String())
	return ok
}

func isCurrency(fl validator.FieldLevel) bool {
	code := fl.Field().String()
	return code != "" && code == strings.ToUpper(code) && money.GetCurrency(code) != nil
}

func oneOf[T ~string](allowed ...T) validator.Func {
	return func(fl validator.FieldLevel) bool {
		val := fl.Field().String()
		for _, a := range allowed {
			if val == string(a) {
				return true
			}
		}
		return false
	}
}

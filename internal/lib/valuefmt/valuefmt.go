// Package valuefmt превращает числовое значение или дату в строку для отображения.
//
// Format никогда не возвращает ошибку: если локализовать число не удалось
// (например, передана некорректная локаль), текст остаётся пустым,
// а непарсящаяся дата выводится как есть.
package valuefmt

import (
	"math"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

const (
	// DateLayout — единый формат дат приложения (dd.MM.yyyy).
	DateLayout = "02.01.2006"
	// DefaultLocale используется, когда локаль не задана.
	DefaultLocale = "en"

	fixedDigits = 2
	maxDigits   = 20
	zeroText    = "0.00"
)

// Flags — параметры отображения значения.
type Flags struct {
	ColorizeSign bool   `json:"colorize_sign"`
	IsCurrency   bool   `json:"is_currency"`
	IsPercent    bool   `json:"is_percent"`
	IsAbsolute   bool   `json:"is_absolute"`
	Precision    *int   `json:"precision,omitempty"`
	Locale       string `json:"locale,omitempty"`
	Currency     string `json:"currency,omitempty"`
}

// DisplayValue — результат форматирования, пригодный для вывода.
type DisplayValue struct {
	RawValue         any     `json:"raw_value"`
	AbsoluteValue    float64 `json:"absolute_value"`
	FormattedText    string  `json:"formatted_text"`
	IsNumber         bool    `json:"is_number"`
	IsString         bool    `json:"is_string"`
	UseAbsoluteValue bool    `json:"use_absolute_value"`
}

// Format форматирует value согласно flags.
//
// Поддерживаются все целые и вещественные типы, decimal.Decimal, строки
// (ISO-8601 даты) и time.Time. Указатели разыменовываются; nil, пустая строка
// и NaN считаются отсутствующим значением, в отличие от числового нуля.
func Format(value any, flags Flags) DisplayValue {
	res := DisplayValue{RawValue: value}

	value = deref(value)
	switch v := value.(type) {
	case nil:
	case string:
		if v != "" {
			res.IsString = true
			res.FormattedText = formatDateString(v)
		}
	case bool:
		if v {
			res.IsString = true
			res.FormattedText = formatDateString(strconv.FormatBool(v))
		}
	case time.Time:
		if !v.IsZero() {
			res.FormattedText = v.Format(DateLayout)
		}
	default:
		if f, ok := toFloat(value); ok {
			if !math.IsNaN(f) {
				formatNumber(&res, value, f, flags)
			}
		} else if rv := reflect.ValueOf(value); rv.Kind() == reflect.String && rv.Len() > 0 {
			res.IsString = true
			res.FormattedText = formatDateString(rv.String())
		}
	}

	if res.FormattedText == zeroText {
		res.UseAbsoluteValue = true
	}
	return res
}

func formatNumber(res *DisplayValue, raw any, v float64, flags Flags) {
	res.IsNumber = true
	res.AbsoluteValue = math.Abs(v)

	currency := flags.IsCurrency || flags.Currency != ""
	switch {
	case flags.ColorizeSign && currency:
		res.FormattedText = localized(res.AbsoluteValue, fixedDigits, flags.Locale)
	case flags.ColorizeSign && flags.IsPercent:
		res.FormattedText = localized(res.AbsoluteValue*100, fixedDigits, flags.Locale)
	case flags.ColorizeSign:
		// без валюты и процентов раскрашенное значение не форматируется
	case flags.IsPercent:
		res.FormattedText = localized(v*100, fixedDigits, flags.Locale)
	case currency:
		res.FormattedText = localized(v, fixedDigits, flags.Locale)
	case flags.Precision != nil:
		res.FormattedText = localized(v, *flags.Precision, flags.Locale)
	default:
		res.FormattedText = plainOf(raw, v)
	}

	if flags.IsAbsolute {
		res.FormattedText = strings.TrimPrefix(res.FormattedText, "-")
	}
}

// localized возвращает пустую строку, если Localize не справился.
func localized(v float64, digits int, locale string) string {
	text, _ := Localize(v, digits, locale)
	return text
}

// Localize форматирует v с ровно digits знаками после запятой по правилам локали.
// Второе значение равно false, если локаль некорректна, digits вне 0..20 или число не конечно.
func Localize(v float64, digits int, locale string) (string, bool) {
	if math.IsNaN(v) || math.IsInf(v, 0) || digits < 0 || digits > maxDigits {
		return "", false
	}
	tag, err := parseLocale(locale)
	if err != nil {
		return "", false
	}

	rounded := decimal.NewFromFloat(v).Round(int32(digits)).InexactFloat64()
	p := message.NewPrinter(tag)
	return p.Sprintf("%v", number.Decimal(rounded,
		number.MinFractionDigits(digits),
		number.MaxFractionDigits(digits),
	)), true
}

func parseLocale(locale string) (language.Tag, error) {
	if strings.TrimSpace(locale) == "" {
		locale = DefaultLocale
	}
	return language.Parse(locale)
}

// plainOf печатает целые типы без потери точности, остальное через plain.
func plainOf(raw any, v float64) string {
	rv := reflect.ValueOf(raw)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(rv.Int(), 10)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return strconv.FormatUint(rv.Uint(), 10)
	}
	if d, ok := raw.(decimal.Decimal); ok {
		return d.String()
	}
	return plain(v)
}

// plain возвращает кратчайшее точное представление числа без фиксированной точки.
func plain(v float64) string {
	switch {
	case math.IsNaN(v):
		return "NaN"
	case math.IsInf(v, 1):
		return "Infinity"
	case math.IsInf(v, -1):
		return "-Infinity"
	}

	abs := math.Abs(v)
	if abs == 0 || (abs >= 1e-6 && abs < 1e21) {
		return strconv.FormatFloat(v, 'f', -1, 64)
	}

	s := strconv.FormatFloat(v, 'e', -1, 64)
	// 1e-07 -> 1e-7
	mantissa, exp, _ := strings.Cut(s, "e")
	sign := exp[:1]
	digits := strings.TrimLeft(exp[1:], "0")
	return mantissa + "e" + sign + digits
}

var isoLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04Z07:00",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"20060102",
	"2006-01",
	"2006-002",
	"2006",
}

// ParseISO разбирает строку в одном из вариантов ISO-8601.
func ParseISO(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range isoLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func formatDateString(s string) string {
	t, ok := ParseISO(s)
	if !ok {
		return s
	}
	return t.Format(DateLayout)
}

func deref(value any) any {
	rv := reflect.ValueOf(value)
	for rv.IsValid() && rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil
		}
		rv = rv.Elem()
	}
	if !rv.IsValid() {
		return nil
	}
	return rv.Interface()
}

func toFloat(value any) (float64, bool) {
	if d, ok := value.(decimal.Decimal); ok {
		return d.InexactFloat64(), true
	}

	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return float64(rv.Uint()), true
	case reflect.Float32, reflect.Float64:
		return rv.Float(), true
	default:
		return 0, false
	}
}

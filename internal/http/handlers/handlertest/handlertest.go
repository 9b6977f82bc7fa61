// Package handlertest содержит помощники для тестов HTTP-обработчиков.
package handlertest

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"

	"github.com/magabrotheeeer/portfolio-tracker/internal/http/middlewarectx"
)

// NoopLogger возвращает логгер, который ничего не пишет.
func NoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

// Request описывает тестовый запрос к обработчику.
type Request struct {
	Method    string
	Target    string
	Body      any // string передаётся как есть, остальное кодируется в JSON
	UserID    string
	Role      string
	URLParams map[string]string
}

// Result — ответ обработчика и разобранное JSON-тело.
type Result struct {
	Code   int
	Header http.Header
	Body   map[string]any
}

// Data возвращает поле data ответа как объект.
func (r Result) Data() map[string]any {
	d, _ := r.Body["data"].(map[string]any)
	return d
}

// Do выполняет запрос к h и разбирает ответ.
func Do(t *testing.T, h http.Handler, req Request) Result {
	t.Helper()

	var body io.Reader
	switch v := req.Body.(type) {
	case nil:
	case string:
		body = bytes.NewBufferString(v)
	default:
		b, err := json.Marshal(v)
		if err != nil {
			t.Fatal(err)
		}
		body = bytes.NewReader(b)
	}

	r := httptest.NewRequest(req.Method, req.Target, body)
	ctx := context.WithValue(r.Context(), middleware.RequestIDKey, "reqid123")
	if req.UserID != "" {
		ctx = context.WithValue(ctx, middlewarectx.UserID, req.UserID)
	}
	if req.Role != "" {
		ctx = context.WithValue(ctx, middlewarectx.Role, req.Role)
	}
	if len(req.URLParams) > 0 {
		rctx := chi.NewRouteContext()
		for k, v := range req.URLParams {
			rctx.URLParams.Add(k, v)
		}
		ctx = context.WithValue(ctx, chi.RouteCtxKey, rctx)
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, r.WithContext(ctx))

	res := Result{Code: rec.Code, Header: rec.Header()}
	if rec.Body.Len() > 0 && strings.Contains(rec.Header().Get("Content-Type"), "json") {
		if err := json.Unmarshal(rec.Body.Bytes(), &res.Body); err != nil {
			t.Fatalf("response is not a JSON object: %v: %s", err, rec.Body.String())
		}
	}
	return res
}

package sl_test

import (
	"bytes"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/magabrotheeeer/portfolio-tracker/internal/lib/sl"
)

func TestErr(t *testing.T) {
	attr := sl.Err(errors.New("something went wrong"))

	assert.Equal(t, "error", attr.Key)
	assert.Equal(t, "something went wrong", attr.Value.String())
}

func TestErr_NilError(t *testing.T) {
	assert.NotPanics(t, func() {
		attr := sl.Err(nil)
		assert.Equal(t, "", attr.Value.String())
	})
}

func TestAttrsInHandlerOutput(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(slog.NewTextHandler(&buf, nil))

	log.Info("done", sl.Op("accounts.List"), sl.UserID("u-1"))

	assert.Contains(t, buf.String(), "op=accounts.List")
	assert.Contains(t, buf.String(), "user_id=u-1")
}

func TestNew(t *testing.T) {
	tests := []struct {
		env       string
		wantJSON  bool
		wantDebug bool
	}{
		{env: sl.EnvLocal, wantDebug: true},
		{env: sl.EnvDev, wantJSON: true, wantDebug: true},
		{env: sl.EnvProd, wantJSON: true},
		{env: "staging", wantJSON: true},
	}

	for _, tt := range tests {
		t.Run(tt.env, func(t *testing.T) {
			var buf bytes.Buffer
			log := sl.New(tt.env, &buf)

			log.Debug("debug line")
			assert.Equal(t, tt.wantDebug, buf.Len() > 0)

			buf.Reset()
			log.Info("info line")
			assert.Equal(t, tt.wantJSON, bytes.HasPrefix(buf.Bytes(), []byte("{")))
		})
	}
}

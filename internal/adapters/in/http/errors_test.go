package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"maintenance/internal/pkg/errs"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type stringer string

func (s stringer) String() string { return string(s) }

func TestStatusOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"not found", errs.NewObjectNotFoundError("machine", "x"), http.StatusNotFound},
		{"forbidden", errs.NewForbiddenError("pay debt", "other branch"), http.StatusForbidden},
		{"conflict", errs.NewConflictError("debt", "already paid"), http.StatusConflict},
		{"illegal transition", errs.NewTransitionError("machine", stringer("STANDBY"), stringer("RETURNING")), http.StatusConflict},
		{"required", errs.NewValueIsRequiredError("serial"), http.StatusBadRequest},
		{"invalid", errs.NewValueIsInvalidError("type"), http.StatusBadRequest},
		{"out of range", errs.NewValueIsOutOfRangeError("quantity", 0, 1, 100), http.StatusBadRequest},
		{"precondition", errs.NewPreconditionFailedError("no stock"), http.StatusBadRequest},
		{"wrapped", fmt.Errorf("load: %w", errs.NewObjectNotFoundError("debt", "x")), http.StatusNotFound},
		{"echo", echo.NewHTTPError(http.StatusTooManyRequests), http.StatusTooManyRequests},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, statusOf(tt.err))
		})
	}
}

func TestHTTPErrorHandler(t *testing.T) {
	render := func(handler echo.HTTPErrorHandler, err error) (*httptest.ResponseRecorder, ErrorResponse) {
		e := echo.New()
		rec := httptest.NewRecorder()
		c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
		handler(err, c)

		var body ErrorResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		return rec, body
	}

	t.Run("domain errors keep their message", func(t *testing.T) {
		rec, body := render(NewHTTPErrorHandler(zap.NewNop()), errs.NewConflictError("debt", "already paid"))

		assert.Equal(t, http.StatusConflict, rec.Code)
		assert.Equal(t, http.StatusConflict, body.Code)
		assert.Contains(t, body.Message, "already paid")
	})

	t.Run("unexpected errors are hidden and logged", func(t *testing.T) {
		core, logs := observer.New(zap.ErrorLevel)
		rec, body := render(NewHTTPErrorHandler(zap.New(core)), errors.New("dial tcp: refused"))

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Equal(t, "internal server error", body.Message)
		require.Equal(t, 1, logs.Len())
		assert.Equal(t, "request failed", logs.All()[0].Message)
	})

	t.Run("echo errors use their own message", func(t *testing.T) {
		rec, body := render(NewHTTPErrorHandler(zap.NewNop()), echo.NewHTTPError(http.StatusUnauthorized, "missing bearer token"))

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "missing bearer token", body.Message)
	})
}

package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/taskflow/task-service/internal/core/domain"
)

func TestHTTPErrorHandler_Mapping(t *testing.T) {
	tests := []struct {
		err      error
		wantCode int
		wantMsg  string
	}{
		{domain.ErrTaskNotFound, http.StatusNotFound, "task not found"},
		{fmt.Errorf("load: %w", domain.ErrUserNotFound), http.StatusNotFound, "user not found"},
		{fmt.Errorf("resolve task t1: author %q: %w", "x", domain.ErrReferenceNotFound), http.StatusNotFound, "referenced user not found"},
		{domain.Validationf("name is required"), http.StatusUnprocessableEntity, "validation failed: name is required"},
		{domain.ErrAuthenticationRequired, http.StatusUnauthorized, "authentication required"},
		{domain.ErrInvalidCredentials, http.StatusUnauthorized, "invalid credentials"},
		{domain.ErrAuthorizationDenied, http.StatusForbidden, "access denied"},
		{domain.ErrUserExists, http.StatusConflict, "user already exists"},
		{echo.NewHTTPError(http.StatusBadRequest, "bad body"), http.StatusBadRequest, "bad body"},
		{errors.New("mongo: connection refused"), http.StatusInternalServerError, "internal server error"},
	}

	for _, tt := range tests {
		e := echo.New()
		rec := httptest.NewRecorder()
		c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)

		NewHTTPErrorHandler(zerolog.Nop())(tt.err, c)

		if rec.Code != tt.wantCode {
			t.Fatalf("%v: expected %d, got %d", tt.err, tt.wantCode, rec.Code)
		}
		var body errorResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
			t.Fatalf("invalid json: %v", err)
		}
		if body.Error != tt.wantMsg {
			t.Fatalf("%v: expected message %q, got %q", tt.err, tt.wantMsg, body.Error)
		}
		hasChallenge := rec.Header().Get(echo.HeaderWWWAuthenticate) != ""
		if hasChallenge != (tt.wantCode == http.StatusUnauthorized) {
			t.Fatalf("%v: WWW-Authenticate present=%v for %d", tt.err, hasChallenge, rec.Code)
		}
	}
}

package middleware

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testTokenValidator map[string]uuid.UUID

func (v testTokenValidator) ValidateToken(token string) (SessionIDGetter, error) {
	id, ok := v[token]
	if !ok {
		return nil, fmt.Errorf("invalid token")
	}
	return testClaims(id), nil
}

type testClaims uuid.UUID

func (c testClaims) GetSessionID() uuid.UUID {
	return uuid.UUID(c)
}

func TestSessionMiddleware(t *testing.T) {
	sessionID := uuid.New()
	validator := testTokenValidator{"good-token": sessionID}

	var seen uuid.UUID
	handler := SessionMiddleware(validator)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := GetSessionID(r)
		require.NoError(t, err)
		seen = id
		w.WriteHeader(http.StatusNoContent)
	}))

	tests := []struct {
		name       string
		header     string
		wantStatus int
		wantError  string
	}{
		{name: "valid token", header: "Bearer good-token", wantStatus: http.StatusNoContent},
		{name: "lowercase scheme", header: "bearer good-token", wantStatus: http.StatusNoContent},
		{name: "missing header", wantStatus: http.StatusUnauthorized, wantError: "session token required"},
		{name: "wrong scheme", header: "Basic good-token", wantStatus: http.StatusUnauthorized, wantError: "session token required"},
		{name: "extra parts", header: "Bearer good-token extra", wantStatus: http.StatusUnauthorized, wantError: "session token required"},
		{name: "unknown token", header: "Bearer bad-token", wantStatus: http.StatusUnauthorized, wantError: "invalid session token"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seen = uuid.Nil
			req := httptest.NewRequest(http.MethodGet, "/v1/session", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantError == "" {
				assert.Equal(t, sessionID, seen)
				return
			}
			assert.Equal(t, uuid.Nil, seen)
			var body map[string]string
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, tt.wantError, body["error"])
		})
	}
}

func TestGetSessionID_Missing(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	_, err := GetSessionID(req)
	assert.Error(t, err)

	id := uuid.New()
	req = req.WithContext(WithSessionID(req.Context(), id))
	got, err := GetSessionID(req)
	require.NoError(t, err)
	assert.Equal(t, id, got)
}

package auth

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueAndValidate(t *testing.T) {
	s := NewService("secret")
	res, err := s.Issue("  Ada ")
	require.NoError(t, err)
	assert.Equal(t, "Ada", res.User.DisplayName)
	assert.True(t, strings.HasPrefix(res.User.ID, "user_"))

	user, err := s.ValidateToken(res.Token)
	require.NoError(t, err)
	assert.Equal(t, res.User, user)
}

func TestIssueRejectsBadNames(t *testing.T) {
	s := NewService("secret")
	for _, name := range []string{"", "   ", strings.Repeat("x", 65)} {
		_, err := s.Issue(name)
		assert.ErrorIs(t, err, ErrInvalidName, "%q", name)
	}
}

func TestValidateTokenFailures(t *testing.T) {
	s := NewService("secret")
	res, err := s.Issue("Ada")
	require.NoError(t, err)

	other := NewService("other-secret")
	_, err = other.ValidateToken(res.Token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = s.ValidateToken("not.a.token")
	assert.ErrorIs(t, err, ErrInvalidToken)

	expired := NewService("secret")
	expired.now = func() time.Time { return time.Now().Add(48 * time.Hour) }
	_, err = expired.ValidateToken(res.Token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	none := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "nobody"})
	signed, err := none.SignedString([]byte("secret"))
	require.NoError(t, err)
	_, err = s.ValidateToken(signed)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenHandler(t *testing.T) {
	h := NewHandler(NewService("secret"))

	rec := httptest.NewRecorder()
	h.Token(rec, httptest.NewRequest(http.MethodPost, "/auth/token", strings.NewReader(`{"displayName":"Ada"}`)))
	assert.Equal(t, http.StatusCreated, rec.Code)

	var res AuthResult
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&res))
	assert.NotEmpty(t, res.Token)

	rec = httptest.NewRecorder()
	h.Token(rec, httptest.NewRequest(http.MethodPost, "/auth/token", strings.NewReader(`{}`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	h.Token(rec, httptest.NewRequest(http.MethodPost, "/auth/token", strings.NewReader(`{`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMiddleware(t *testing.T) {
	s := NewService("secret")
	res, err := s.Issue("Ada")
	require.NoError(t, err)

	var got User
	protected := s.AuthMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = UserFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	tests := []struct {
		name   string
		url    string
		header string
		want   int
	}{
		{"bearer", "/x", "Bearer " + res.Token, http.StatusNoContent},
		{"query", "/x?token=" + res.Token, "", http.StatusNoContent},
		{"missing", "/x", "", http.StatusUnauthorized},
		{"bad scheme", "/x", "Basic abc", http.StatusUnauthorized},
		{"bad token", "/x?token=abc", "", http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got = User{}
			req := httptest.NewRequest(http.MethodGet, tt.url, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			protected.ServeHTTP(rec, req)
			assert.Equal(t, tt.want, rec.Code)
			if tt.want == http.StatusNoContent {
				assert.Equal(t, res.User, got)
			}
		})
	}
}

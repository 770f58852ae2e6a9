package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"carereviews/core/audit"
)

var secret = []byte("test-secret-that-is-long-enough!")

func newAuthorizer() (*Authorizer, *audit.MemoryAuditLogger) {
	logs := &audit.MemoryAuditLogger{}
	return &Authorizer{Secret: secret, APIKey: "key-123", AuditLogger: logs}, logs
}

func request(header, value string) *http.Request {
	r := httptest.NewRequest(http.MethodDelete, "/api/v1/reviews/x", nil)
	if header != "" {
		r.Header.Set(header, value)
	}
	return r
}

func TestAuthorize_APIKey(t *testing.T) {
	a, logs := newAuthorizer()
	assert.True(t, a.Authorize(request("X-API-Key", "key-123")).Authorized)
	assert.False(t, a.Authorize(request("X-API-Key", "wrong")).Authorized)

	events := logs.Events()
	require.Len(t, events, 2)
	assert.Equal(t, "success", events[0].Result)
	assert.Equal(t, "failure", events[1].Result)
}

func TestAuthorize_EmptyConfiguredKeyNeverMatches(t *testing.T) {
	a := &Authorizer{Secret: secret}
	assert.False(t, a.Authorize(request("X-API-Key", "")).Authorized)
	assert.False(t, a.Authorize(request("X-API-Key", "anything")).Authorized)
}

func TestAuthorize_Token(t *testing.T) {
	a, _ := newAuthorizer()
	token, err := IssueModeratorToken(secret, "mod-1", time.Hour)
	require.NoError(t, err)

	res := a.Authorize(request("Authorization", "Bearer "+token))
	assert.True(t, res.Authorized)
	assert.Equal(t, "mod-1", res.Subject)
}

func TestAuthorize_TokenRejections(t *testing.T) {
	a, _ := newAuthorizer()

	expired, err := IssueModeratorToken(secret, "mod-1", -time.Minute)
	require.NoError(t, err)
	assert.False(t, a.Authorize(request("Authorization", "Bearer "+expired)).Authorized)

	other, err := IssueModeratorToken([]byte("another-secret-another-secret!!"), "mod-1", time.Hour)
	require.NoError(t, err)
	assert.False(t, a.Authorize(request("Authorization", "Bearer "+other)).Authorized)

	noRole := jwt.NewWithClaims(jwt.SigningMethodHS256, ModeratorClaims{
		Roles:            []string{"patient"},
		RegisteredClaims: jwt.RegisteredClaims{Subject: "p1", ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
	})
	signed, err := noRole.SignedString(secret)
	require.NoError(t, err)
	res := a.Authorize(request("Authorization", "Bearer "+signed))
	assert.False(t, res.Authorized)
	assert.Equal(t, "Missing moderator role", res.Reason)

	assert.False(t, a.Authorize(request("", "")).Authorized)
}

func TestMiddleware(t *testing.T) {
	a, _ := newAuthorizer()
	var subject string
	h := a.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		subject = SubjectFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, request("", ""))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	token, _ := IssueModeratorToken(secret, "mod-7", time.Hour)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, request("Authorization", "Bearer "+token))
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "mod-7", subject)
}

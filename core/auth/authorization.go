package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"carereviews/core/audit"
)

// RoleModerator is required in the token's roles claim for moderator routes.
const RoleModerator = "moderator"

// ModeratorClaims are the claims of a moderator JWT.
type ModeratorClaims struct {
	Roles []string `json:"roles"`
	jwt.RegisteredClaims
}

// Authorizer accepts either an HS256 bearer token with the moderator role
// or the shared API key in X-API-Key.
type Authorizer struct {
	Secret      []byte
	APIKey      string
	AuditLogger audit.AuditLogger
}

type AuthorizationResult struct {
	Authorized bool
	Subject    string
	Reason     string
}

// Authorize checks the request credentials.
func (a *Authorizer) Authorize(r *http.Request) AuthorizationResult {
	res := a.authorize(r)
	result := "success"
	if !res.Authorized {
		result = "failure"
	}
	if a.AuditLogger != nil {
		audit.LogModeratorAuth(a.AuditLogger, res.Subject, result, res.Reason)
	}
	return res
}

func (a *Authorizer) authorize(r *http.Request) AuthorizationResult {
	if key := r.Header.Get("X-API-Key"); key != "" {
		if a.APIKey != "" && subtle.ConstantTimeCompare([]byte(key), []byte(a.APIKey)) == 1 {
			return AuthorizationResult{true, "apikey", "Authorized"}
		}
		return AuthorizationResult{false, "apikey", "Invalid API key"}
	}

	authHeader := r.Header.Get("Authorization")
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return AuthorizationResult{false, "", "Missing credentials"}
	}
	claims, err := a.VerifyToken(strings.TrimPrefix(authHeader, "Bearer "))
	if err != nil {
		return AuthorizationResult{false, "", "Invalid token: " + err.Error()}
	}
	if !slices.Contains(claims.Roles, RoleModerator) {
		return AuthorizationResult{false, claims.Subject, "Missing moderator role"}
	}
	return AuthorizationResult{true, claims.Subject, "Authorized"}
}

// VerifyToken parses and validates an HS256 moderator token.
func (a *Authorizer) VerifyToken(tokenString string) (*ModeratorClaims, error) {
	if len(a.Secret) == 0 {
		return nil, errors.New("token authentication is not configured")
	}
	token, err := jwt.ParseWithClaims(tokenString, &ModeratorClaims{}, func(token *jwt.Token) (interface{}, error) {
		return a.Secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return nil, err
	}
	if claims, ok := token.Claims.(*ModeratorClaims); ok && token.Valid {
		return claims, nil
	}
	return nil, errors.New("invalid token or claims")
}

// IssueModeratorToken signs a moderator token valid for ttl.
func IssueModeratorToken(secret []byte, subject string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := ModeratorClaims{
		Roles: []string{RoleModerator},
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			Issuer:    "carereviews",
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

type subjectKey struct{}

// Middleware rejects unauthorized requests with 401 and stores the subject
// in the request context.
func (a *Authorizer) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		res := a.Authorize(r)
		if !res.Authorized {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), subjectKey{}, res.Subject)))
	})
}

// SubjectFromContext returns the authenticated moderator, if any.
func SubjectFromContext(ctx context.Context) string {
	s, _ := ctx.Value(subjectKey{}).(string)
	return s
}

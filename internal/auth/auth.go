package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	CookieName    = "loadoutlab_session"
	SessionExpiry = 24 * time.Hour
	Issuer        = "loadoutlab"
)

// ErrInvalidToken is returned for tokens that are malformed, expired or signed out
var ErrInvalidToken = errors.New("invalid or expired session")

// Claims are the JWT claims of a signed-in user
type Claims struct {
	Email string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// UserID is the token subject
func (c *Claims) UserID() string {
	return c.Subject
}

// Auth issues and checks session tokens
type Auth struct {
	secret  []byte
	expiry  time.Duration
	now     func() time.Time
	mu      sync.RWMutex
	revoked map[string]time.Time // token ID -> expiry
}

// New creates an Auth signing with secret
func New(secret string, expiry time.Duration) *Auth {
	if expiry <= 0 {
		expiry = SessionExpiry
	}
	return &Auth{
		secret:  []byte(secret),
		expiry:  expiry,
		now:     time.Now,
		revoked: make(map[string]time.Time),
	}
}

// GenerateSecret creates a random signing secret for runs without one configured.
// Tokens signed with it do not survive a restart.
func GenerateSecret() string {
	bytes := make([]byte, 32)
	rand.Read(bytes)
	return hex.EncodeToString(bytes)
}

// Expiry is how long issued tokens stay valid
func (a *Auth) Expiry() time.Duration {
	return a.expiry
}

// Issue signs a token for userID
func (a *Auth) Issue(userID, email string) (string, time.Time, error) {
	now := a.now()
	expires := now.Add(a.expiry)
	claims := Claims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    Issuer,
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(a.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, expires, nil
}

// Parse validates a token and returns its claims
func (a *Auth) Parse(tokenString string) (*Claims, error) {
	if tokenString == "" {
		return nil, ErrInvalidToken
	}
	parsed, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return a.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(Issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(a.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid || claims.Subject == "" {
		return nil, ErrInvalidToken
	}

	a.mu.RLock()
	_, revoked := a.revoked[claims.ID]
	a.mu.RUnlock()
	if revoked {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// Revoke signs a token out before it expires
func (a *Auth) Revoke(tokenString string) {
	claims, err := a.Parse(tokenString)
	if err != nil {
		return
	}
	a.mu.Lock()
	a.revoked[claims.ID] = claims.ExpiresAt.Time
	a.mu.Unlock()
}

// PruneRevoked forgets revoked tokens that have expired anyway
func (a *Auth) PruneRevoked() int {
	now := a.now()
	a.mu.Lock()
	defer a.mu.Unlock()

	n := 0
	for id, exp := range a.revoked {
		if now.After(exp) {
			delete(a.revoked, id)
			n++
		}
	}
	return n
}

// TokenFromRequest reads the session cookie, falling back to a bearer token
func TokenFromRequest(r *http.Request) string {
	if cookie, err := r.Cookie(CookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimPrefix(h, "Bearer ")
	}
	return ""
}

// ClaimsFromRequest extracts and validates the session from a request
func (a *Auth) ClaimsFromRequest(r *http.Request) (*Claims, bool) {
	claims, err := a.Parse(TokenFromRequest(r))
	if err != nil {
		return nil, false
	}
	return claims, true
}

type contextKey struct{}

// WithClaims returns a context carrying claims
func WithClaims(ctx context.Context, claims *Claims) context.Context {
	return context.WithValue(ctx, contextKey{}, claims)
}

// ClaimsFromContext returns the signed-in user's claims, if any
func ClaimsFromContext(ctx context.Context) (*Claims, bool) {
	claims, ok := ctx.Value(contextKey{}).(*Claims)
	return claims, ok && claims != nil
}

// UserIDFromContext returns the signed-in user's ID, or ""
func UserIDFromContext(ctx context.Context) string {
	if claims, ok := ClaimsFromContext(ctx); ok {
		return claims.Subject
	}
	return ""
}

// OptionalUser adds the user's claims to the context when the request carries a valid session
func (a *Auth) OptionalUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if claims, ok := a.ClaimsFromRequest(r); ok {
			r = r.WithContext(WithClaims(r.Context(), claims))
		}
		next.ServeHTTP(w, r)
	})
}

// RequireUser middleware for API endpoints (returns 401)
func (a *Auth) RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if claims, ok := a.ClaimsFromRequest(r); ok {
			next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"code":"AUTH_REQUIRED","error":"Sign in to continue"}`))
	})
}

// SetSessionCookie sets the session cookie on the response
func SetSessionCookie(w http.ResponseWriter, token string, expires time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Expires:  expires,
	})
}

// ClearSessionCookie removes the session cookie
func ClearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	})
}

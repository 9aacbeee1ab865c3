package auth

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims are the session claims issued by the authentication service. Only
// the subject (staff user id) is consumed here; tenant roles live in the
// database, not in the token.
type Claims struct {
	jwt.RegisteredClaims
}

// Middleware validates Bearer tokens and stores the resulting principal in
// the request context. Session issuance belongs to the auth service; this
// side only verifies.
type Middleware struct {
	secret []byte
	logger *slog.Logger
}

func NewMiddleware(secret []byte, logger *slog.Logger) *Middleware {
	return &Middleware{secret: secret, logger: logger}
}

func (m *Middleware) Require(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			m.unauthorized(w, "missing bearer token")
			return
		}

		claims := &Claims{}
		token, err := jwt.ParseWithClaims(strings.TrimPrefix(header, "Bearer "), claims,
			func(t *jwt.Token) (any, error) { return m.secret, nil },
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		)
		if err != nil || !token.Valid || claims.Subject == "" {
			m.logger.Info("rejected token", "error", err)
			m.unauthorized(w, "invalid or expired token")
			return
		}

		ctx := WithPrincipal(r.Context(), Principal{UserID: claims.Subject})
		next(w, r.WithContext(ctx))
	}
}

func (m *Middleware) unauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	if err := json.NewEncoder(w).Encode(map[string]string{"code": "UNAUTHORIZED", "error": message}); err != nil {
		m.logger.Error("failed to encode error response", "error", err)
	}
}

// SignToken issues a short-lived HS256 token for the given staff user.
// Production tokens come from the auth service; this is used by tests and
// local tooling.
func SignToken(secret []byte, userID string, ttl time.Duration) (string, error) {
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

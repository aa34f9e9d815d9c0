package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/Hyunju-it/goorm-travel-shopping/internal/config"
	"github.com/Hyunju-it/goorm-travel-shopping/internal/model"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
)

// ErrInvalidToken is returned for bearer tokens that fail verification.
var ErrInvalidToken = errors.New("invalid token")

type contextKey struct{}

// principalHolder lets the logging middleware see who was authenticated by
// a middleware further down the chain.
type principalHolder struct {
	principal model.Principal
	set       bool
}

type holderKey struct{}

func withHolder(ctx context.Context, h *principalHolder) context.Context {
	return context.WithValue(ctx, holderKey{}, h)
}

// Claims are the JWT claims issued to shop users. The subject is the
// decimal user id.
type Claims struct {
	Role model.Role `json:"role"`
	jwt.RegisteredClaims
}

// Authenticator verifies HS256 bearer tokens.
type Authenticator struct {
	secret []byte
	issuer string
	logger zerolog.Logger
	now    func() time.Time
}

// NewAuthenticator creates an authenticator from the auth configuration.
func NewAuthenticator(cfg config.AuthConfig, logger zerolog.Logger) *Authenticator {
	return &Authenticator{
		secret: []byte(cfg.JWTSecret),
		issuer: cfg.Issuer,
		logger: logger.With().Str("component", "auth").Logger(),
		now:    time.Now,
	}
}

// IssueToken signs a token for p that expires after ttl.
func (a *Authenticator) IssueToken(p model.Principal, ttl time.Duration) (string, error) {
	now := a.now()
	claims := Claims{
		Role: p.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(p.UserID, 10),
			Issuer:    a.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Parse verifies a raw token and returns its principal.
func (a *Authenticator) Parse(raw string) (model.Principal, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
		return a.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(a.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(a.now),
	)
	if err != nil {
		return model.Principal{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	userID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil || userID <= 0 {
		return model.Principal{}, fmt.Errorf("%w: bad subject %q", ErrInvalidToken, claims.Subject)
	}

	role := claims.Role
	if role == "" {
		role = model.RoleUser
	}
	if role != model.RoleUser && role != model.RoleAdmin {
		return model.Principal{}, fmt.Errorf("%w: unknown role %q", ErrInvalidToken, role)
	}

	return model.Principal{UserID: userID, Role: role}, nil
}

// Authenticate requires a valid "Authorization: Bearer" token and stores the
// principal in the request context.
func (a *Authenticator) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		raw, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(raw) == "" {
			a.logger.Warn().Str("path", r.URL.Path).Msg("missing bearer token")
			writeError(w, http.StatusUnauthorized, model.ErrCodeUnauthorised, "authentication required")
			return
		}

		p, err := a.Parse(strings.TrimSpace(raw))
		if err != nil {
			a.logger.Warn().Err(err).Str("path", r.URL.Path).Msg("invalid bearer token")
			writeError(w, http.StatusUnauthorized, model.ErrCodeUnauthorised, "invalid or expired token")
			return
		}

		if h, ok := r.Context().Value(holderKey{}).(*principalHolder); ok {
			h.principal, h.set = p, true
		}

		next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), p)))
	})
}

// RequireAdmin rejects authenticated callers without the ADMIN role.
func RequireAdmin(logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, ok := PrincipalFrom(r.Context())
			if !ok {
				writeError(w, http.StatusUnauthorized, model.ErrCodeUnauthorised, "authentication required")
				return
			}
			if !p.IsAdmin() {
				logger.Warn().Int64("user_id", p.UserID).Str("path", r.URL.Path).Msg("admin access denied")
				writeError(w, http.StatusForbidden, model.ErrCodeForbidden, "administrator role required")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// WithPrincipal returns a copy of ctx carrying p.
func WithPrincipal(ctx context.Context, p model.Principal) context.Context {
	return context.WithValue(ctx, contextKey{}, p)
}

// PrincipalFrom returns the principal stored by Authenticate.
func PrincipalFrom(ctx context.Context) (model.Principal, bool) {
	p, ok := ctx.Value(contextKey{}).(model.Principal)
	return p, ok
}

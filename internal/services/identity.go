package services

import (
	"context"
	"time"

	"socialflow/pkg/logger"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type identityKey struct{}

// Identity is the authenticated caller attached to a request context by
// the auth middleware.
type Identity struct {
	UserID      uuid.UUID
	WorkspaceID uuid.UUID
	Role        string
}

func WithIdentity(ctx context.Context, id Identity) context.Context {
	ctx = context.WithValue(ctx, identityKey{}, id)
	ctx = context.WithValue(ctx, logger.UserIdKey, id.UserID.String())
	ctx = context.WithValue(ctx, logger.WorkspaceIdKey, id.WorkspaceID.String())
	return ctx
}

func IdentityFromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(Identity)
	return id, ok
}

// AccessClaims is the JWT payload issued by the external identity
// service. Only the subject is trusted; workspace membership is checked
// against the database per request.
type AccessClaims struct {
	UserID string `json:"sub"`
	jwt.RegisteredClaims
}

// ParseAccessToken validates the signature and expiry and returns the
// claims.
func ParseAccessToken(token string, secret []byte) (*AccessClaims, error) {
	claims := &AccessClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return secret, nil
	}, jwt.WithValidMethods([]string{"HS256"}), jwt.WithExpirationRequired())
	if err != nil {
		return nil, err
	}
	if !parsed.Valid {
		return nil, jwt.ErrTokenInvalidClaims
	}
	return claims, nil
}

// IssueAccessToken mints a token for a user, used by tests and local
// tooling.
func IssueAccessToken(userID uuid.UUID, secret []byte, ttl time.Duration) (string, error) {
	claims := AccessClaims{
		UserID: userID.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

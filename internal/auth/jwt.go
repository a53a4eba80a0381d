package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const bearerPrefix = "Bearer "

var (
	ErrMissingOrMalformed = errors.New("missing or malformed authorization header")
	ErrInvalidToken       = errors.New("invalid token")
	ErrExpiredToken       = fmt.Errorf("%w: token expired", ErrInvalidToken)
)

// Claims is the signed payload. ID holds the user id; Subject mirrors it for
// issuers that only set "sub".
type Claims struct {
	UserID string `json:"id"`
	jwt.RegisteredClaims
}

// Identity is what an authenticated request carries through its context.
type Identity struct {
	UserID string
}

// GenerateToken signs an HS256 token for userID valid for ttl.
func GenerateToken(userID, secret string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// ValidateToken checks signature and time-based claims of a raw token.
func ValidateToken(tokenString string, secret string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(secret), nil
	})

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	return claims, nil
}

// Verifier turns an Authorization header into an Identity. The secret is
// fixed at construction and never changes afterwards.
type Verifier struct {
	secret string
}

func NewVerifier(secret string) *Verifier {
	return &Verifier{secret: secret}
}

// Verify returns ErrMissingOrMalformed when the header is not a bearer
// credential and ErrInvalidToken (possibly wrapped) when the token fails
// verification.
func (v *Verifier) Verify(rawHeader string) (*Identity, error) {
	if !strings.HasPrefix(rawHeader, bearerPrefix) {
		return nil, ErrMissingOrMalformed
	}

	// second space-separated field, as "Bearer <token>"
	tokenString := strings.Split(rawHeader, " ")[1]

	claims, err := ValidateToken(tokenString, v.secret)
	if err != nil {
		return nil, err
	}

	userID := claims.UserID
	if userID == "" {
		userID = claims.Subject
	}
	return &Identity{UserID: userID}, nil
}

type identityKey struct{}

func WithIdentity(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// IdentityFromContext returns the identity attached by the auth gate, if any.
func IdentityFromContext(ctx context.Context) (*Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(*Identity)
	return id, ok && id != nil
}

// ActorID is the authenticated user id or "" for anonymous requests.
func ActorID(ctx context.Context) string {
	if id, ok := IdentityFromContext(ctx); ok {
		return id.UserID
	}
	return ""
}

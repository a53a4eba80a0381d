package auth

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key-for-jwt-testing"

func TestGenerateToken(t *testing.T) {
	token, err := GenerateToken("user-123", testSecret, 15*time.Minute)
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	claims, err := ValidateToken(token, testSecret)
	require.NoError(t, err)
	assert.Equal(t, "user-123", claims.UserID)
	assert.Equal(t, "user-123", claims.Subject)
	assert.WithinDuration(t, time.Now().Add(15*time.Minute), claims.ExpiresAt.Time, time.Minute)
}

func TestValidateToken_InvalidSecret(t *testing.T) {
	token, err := GenerateToken("user-789", testSecret, 15*time.Minute)
	require.NoError(t, err)

	claims, err := ValidateToken(token, "wrong-secret")

	assert.Nil(t, claims)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateToken_ExpiredToken(t *testing.T) {
	token, err := GenerateToken("user-101", testSecret, -1*time.Hour)
	require.NoError(t, err)

	claims, err := ValidateToken(token, testSecret)

	assert.Nil(t, claims)
	assert.ErrorIs(t, err, ErrExpiredToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateToken_MalformedToken(t *testing.T) {
	tests := []struct {
		name  string
		token string
	}{
		{name: "Empty token", token: ""},
		{name: "Random string", token: "not-a-valid-jwt-token"},
		{name: "Incomplete JWT", token: "eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims, err := ValidateToken(tt.token, testSecret)

			assert.ErrorIs(t, err, ErrInvalidToken)
			assert.Nil(t, claims)
		})
	}
}

func TestValidateToken_RejectsUnsignedToken(t *testing.T) {
	claims := Claims{
		UserID: "user-none",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(15 * time.Minute)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodNone, claims)
	tokenString, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	got, err := ValidateToken(tokenString, testSecret)

	assert.Nil(t, got)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifier_Verify(t *testing.T) {
	valid, err := GenerateToken("user-1", testSecret, time.Hour)
	require.NoError(t, err)
	expired, err := GenerateToken("user-1", testSecret, -time.Hour)
	require.NoError(t, err)
	foreign, err := GenerateToken("user-1", "other-secret", time.Hour)
	require.NoError(t, err)

	tests := []struct {
		name    string
		header  string
		wantErr error
		wantID  string
	}{
		{name: "empty header", header: "", wantErr: ErrMissingOrMalformed},
		{name: "no bearer prefix", header: valid, wantErr: ErrMissingOrMalformed},
		{name: "lowercase scheme", header: "bearer " + valid, wantErr: ErrMissingOrMalformed},
		{name: "basic scheme", header: "Basic dXNlcjpwYXNz", wantErr: ErrMissingOrMalformed},
		{name: "prefix without token", header: "Bearer ", wantErr: ErrInvalidToken},
		{name: "garbage token", header: "Bearer garbage", wantErr: ErrInvalidToken},
		{name: "expired token", header: "Bearer " + expired, wantErr: ErrInvalidToken},
		{name: "foreign secret", header: "Bearer " + foreign, wantErr: ErrInvalidToken},
		{name: "valid token", header: "Bearer " + valid, wantID: "user-1"},
	}

	verifier := NewVerifier(testSecret)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			identity, err := verifier.Verify(tt.header)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, identity)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantID, identity.UserID)
		})
	}
}

func TestVerifier_FallsBackToSubject(t *testing.T) {
	claims := jwt.RegisteredClaims{
		Subject:   "subject-only",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}
	tokenString, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)

	identity, err := NewVerifier(testSecret).Verify("Bearer " + tokenString)

	require.NoError(t, err)
	assert.Equal(t, "subject-only", identity.UserID)
}

func TestIdentityContext(t *testing.T) {
	ctx := context.Background()

	_, ok := IdentityFromContext(ctx)
	assert.False(t, ok)
	assert.Equal(t, "", ActorID(ctx))

	ctx = WithIdentity(ctx, &Identity{UserID: "user-42"})
	identity, ok := IdentityFromContext(ctx)
	require.True(t, ok)
	assert.Equal(t, "user-42", identity.UserID)
	assert.Equal(t, "user-42", ActorID(ctx))
}

func TestPasswordHash(t *testing.T) {
	hash, err := GeneratePasswordHash("s3cret!")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret!", hash)

	assert.NoError(t, ComparePasswordHash([]byte(hash), "s3cret!"))
	assert.Error(t, ComparePasswordHash([]byte(hash), "wrong"))
}

func BenchmarkValidateToken(b *testing.B) {
	token, _ := GenerateToken("user-123", testSecret, 15*time.Minute)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		ValidateToken(token, testSecret)
	}
}

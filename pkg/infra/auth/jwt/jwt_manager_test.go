package jwt

import (
	"testing"
	"time"

	"github.com/NeuralTrust/SiteGuard/pkg/config"
	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newManagerWithSecret(secret string) Manager {
	cfg := &config.ServerConfig{SecretKey: secret}
	return NewJwtManager(cfg)
}

func signTokenWithSecret(secret string, claims jwtlib.Claims) (string, error) {
	token := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

func TestCreateToken_AndDecode(t *testing.T) {
	mgr := newManagerWithSecret("test-secret")

	token, err := mgr.CreateToken(Subject{ID: "42", Email: "admin@example.com", Role: RoleAdmin}, time.Hour)
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	assert.NoError(t, mgr.ValidateToken(token))

	claims, err := mgr.DecodeToken(token)
	require.NoError(t, err)
	assert.Equal(t, "42", claims.UserID)
	assert.Equal(t, "admin@example.com", claims.UserEmail)
	assert.True(t, claims.IsAdmin())
	assert.NotNil(t, claims.ExpiresAt)
}

func TestDecodeToken_SiteIssuedClaims(t *testing.T) {
	secret := "site-secret"
	signed, err := signTokenWithSecret(secret, jwtlib.MapClaims{
		"id":    "7",
		"email": "user@example.com",
		"role":  "user",
		"exp":   time.Now().Add(24 * time.Hour).Unix(),
	})
	require.NoError(t, err)

	claims, err := newManagerWithSecret(secret).DecodeToken(signed)
	require.NoError(t, err)
	assert.Equal(t, "7", claims.UserID)
	assert.False(t, claims.IsAdmin())
}

func TestValidateToken_InvalidSignature(t *testing.T) {
	claims := &Claims{RegisteredClaims: jwtlib.RegisteredClaims{IssuedAt: jwtlib.NewNumericDate(time.Now())}}
	signed, err := signTokenWithSecret("other-secret", claims)
	require.NoError(t, err)

	err = newManagerWithSecret("test-secret").ValidateToken(signed)
	assert.Equal(t, ErrInvalidToken, err)
}

func TestValidateToken_Expired(t *testing.T) {
	secret := "expire-secret"
	claims := &Claims{RegisteredClaims: jwtlib.RegisteredClaims{
		IssuedAt:  jwtlib.NewNumericDate(time.Now().Add(-2 * time.Hour)),
		ExpiresAt: jwtlib.NewNumericDate(time.Now().Add(-1 * time.Hour)),
	}}
	signed, err := signTokenWithSecret(secret, claims)
	require.NoError(t, err)

	err = newManagerWithSecret(secret).ValidateToken(signed)
	assert.Equal(t, ErrExpiredToken, err)
}

func TestValidateToken_Malformed(t *testing.T) {
	mgr := newManagerWithSecret("secret")
	assert.Equal(t, ErrInvalidToken, mgr.ValidateToken("not-a-token"))

	_, err := mgr.DecodeToken("a.b.c")
	assert.Equal(t, ErrInvalidToken, err)
}

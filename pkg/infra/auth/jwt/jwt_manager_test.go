package jwt

import (
	"testing"
	"time"

	"github.com/NeuralTrust/RealtimeGateway/pkg/config"
	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newManagerWithSecret(secret string) Manager {
	return NewJwtManager(&config.AuthConfig{Enabled: true, SecretKey: secret})
}

func signTokenWithSecret(secret string, claims jwtlib.Claims) (string, error) {
	token := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

func TestCreateToken_AndDecode_Success(t *testing.T) {
	mgr := newManagerWithSecret("test-secret")

	token, err := mgr.CreateToken("client-1", time.Hour)
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	claims, err := mgr.DecodeToken(token)
	require.NoError(t, err)
	assert.Equal(t, "client-1", claims.Subject)
	assert.NotNil(t, claims.ExpiresAt)
}

func TestDecodeToken_InvalidSignature(t *testing.T) {
	claims := &Claims{RegisteredClaims: jwtlib.RegisteredClaims{IssuedAt: jwtlib.NewNumericDate(time.Now())}}
	signed, err := signTokenWithSecret("other-secret", claims)
	require.NoError(t, err)

	_, err = newManagerWithSecret("test-secret").DecodeToken(signed)
	assert.Equal(t, ErrInvalidToken, err)
}

func TestDecodeToken_Expired(t *testing.T) {
	secret := "expire-secret"
	claims := &Claims{RegisteredClaims: jwtlib.RegisteredClaims{
		Subject:   "client-1",
		IssuedAt:  jwtlib.NewNumericDate(time.Now().Add(-2 * time.Hour)),
		ExpiresAt: jwtlib.NewNumericDate(time.Now().Add(-1 * time.Hour)),
	}}
	signed, err := signTokenWithSecret(secret, claims)
	require.NoError(t, err)

	_, err = newManagerWithSecret(secret).DecodeToken(signed)
	assert.Equal(t, ErrExpiredToken, err)
}

func TestDecodeToken_Malformed(t *testing.T) {
	_, err := newManagerWithSecret("secret").DecodeToken("not-a-token")
	assert.Equal(t, ErrInvalidToken, err)
}

func TestClientID(t *testing.T) {
	secret := "client-secret"
	mgr := newManagerWithSecret(secret)

	tests := []struct {
		name    string
		claims  *Claims
		want    string
		wantErr error
	}{
		{
			name:   "user id wins over subject",
			claims: &Claims{UserID: "user-7", RegisteredClaims: jwtlib.RegisteredClaims{Subject: "sub-1"}},
			want:   "user-7",
		},
		{
			name:   "subject",
			claims: &Claims{RegisteredClaims: jwtlib.RegisteredClaims{Subject: "sub-1"}},
			want:   "sub-1",
		},
		{
			name:    "no identity",
			claims:  &Claims{RegisteredClaims: jwtlib.RegisteredClaims{IssuedAt: jwtlib.NewNumericDate(time.Now())}},
			wantErr: ErrNoSubject,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			signed, err := signTokenWithSecret(secret, tt.claims)
			require.NoError(t, err)

			got, err := mgr.ClientID(signed)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

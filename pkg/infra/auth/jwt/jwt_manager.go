package jwt

import (
	"errors"
	"time"

	"github.com/NeuralTrust/RealtimeGateway/pkg/config"
	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("expired token")
	ErrNoSubject    = errors.New("token carries no client identity")
)

//go:generate mockery --name=Manager --dir=. --output=mocks/ --filename=jwt_manager_mock.go --case=underscore --with-expecter
type (
	Manager interface {
		CreateToken(clientID string, ttl time.Duration) (string, error)
		DecodeToken(tokenString string) (*Claims, error)
		ClientID(tokenString string) (string, error)
	}
	manager struct {
		config *config.AuthConfig
	}
)

func NewJwtManager(config *config.AuthConfig) Manager {
	return &manager{
		config: config,
	}
}

type Claims struct {
	UserID    string `json:"user_id,omitempty"`
	UserEmail string `json:"user_email,omitempty"`
	jwt.RegisteredClaims
}

// ClientIdentity prefers the explicit user id over the registered subject.
func (c *Claims) ClientIdentity() string {
	if c.UserID != "" {
		return c.UserID
	}
	return c.Subject
}

func (m *manager) CreateToken(clientID string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:  clientID,
			IssuedAt: jwt.NewNumericDate(now),
		},
	}
	if ttl > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(ttl))
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(m.config.SecretKey))
	if err != nil {
		return "", err
	}
	return tokenString, nil
}

func (m *manager) DecodeToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(
		tokenString,
		&Claims{},
		func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, ErrInvalidToken
			}
			return []byte(m.config.SecretKey), nil
		},
	)
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

func (m *manager) ClientID(tokenString string) (string, error) {
	claims, err := m.DecodeToken(tokenString)
	if err != nil {
		return "", err
	}
	id := claims.ClientIdentity()
	if id == "" {
		return "", ErrNoSubject
	}
	return id, nil
}

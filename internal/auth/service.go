package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/inamate/transformer/internal/typeid"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrInvalidName  = errors.New("invalid display name")
)

const (
	DefaultTokenTTL = 24 * time.Hour
	maxNameLength   = 64
)

// Service issues and validates session tokens. There are no accounts: a
// token binds a generated user id to a display name.
type Service struct {
	jwtSecret []byte
	ttl       time.Duration
	now       func() time.Time
}

func NewService(jwtSecret string) *Service {
	return &Service{
		jwtSecret: []byte(jwtSecret),
		ttl:       DefaultTokenTTL,
		now:       time.Now,
	}
}

type AuthResult struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

type User struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
}

type claims struct {
	Name string `json:"name"`
	jwt.RegisteredClaims
}

// Issue creates a user id for displayName and signs a token for it.
func (s *Service) Issue(displayName string) (*AuthResult, error) {
	displayName = strings.TrimSpace(displayName)
	if displayName == "" || len(displayName) > maxNameLength {
		return nil, ErrInvalidName
	}

	user := User{ID: typeid.NewUserID(), DisplayName: displayName}
	token, err := s.issueToken(user)
	if err != nil {
		return nil, err
	}
	return &AuthResult{Token: token, User: user}, nil
}

func (s *Service) ValidateToken(tokenString string) (User, error) {
	var c claims
	token, err := jwt.ParseWithClaims(tokenString, &c, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.jwtSecret, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil {
		return User{}, fmt.Errorf("parse token: %w: %w", ErrInvalidToken, err)
	}
	if !token.Valid || c.Subject == "" {
		return User{}, ErrInvalidToken
	}
	if err := typeid.Validate(c.Subject, typeid.PrefixUser); err != nil {
		return User{}, fmt.Errorf("token subject: %w: %w", ErrInvalidToken, err)
	}
	return User{ID: c.Subject, DisplayName: c.Name}, nil
}

func (s *Service) issueToken(u User) (string, error) {
	now := s.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		Name: u.DisplayName,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	})
	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"load_transient/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

const (
	defaultTokenTTL = time.Hour
	tokenIssuer     = "load-transient-bench"
)

var (
	ErrInvalidPassword   = errors.New("invalid password")
	ErrOperatorNotFound  = errors.New("operator not found")
	ErrInvalidToken      = errors.New("invalid token")
	ErrInvalidUsername   = errors.New("username must not be empty")
	ErrEmptyPassword     = errors.New("password must not be empty")
	ErrOperatorExists    = repository.ErrOperatorExists
	errUnexpectedSigning = errors.New("unexpected signing method")
)

// AuthService registers operators and issues the bearer tokens that identify
// them on the control API.
type AuthService struct {
	authRepo   repository.Authorization
	signingKey []byte
	tokenTTL   time.Duration
	now        func() time.Time
}

// NewAuthService returns an AuthService signing tokens with key. A
// non-positive ttl falls back to one hour.
func NewAuthService(repo repository.Authorization, key string, ttl time.Duration) *AuthService {
	if ttl <= 0 {
		ttl = defaultTokenTTL
	}
	return &AuthService{authRepo: repo, signingKey: []byte(key), tokenTTL: ttl, now: time.Now}
}

// Claims identify the operator behind a token.
type Claims struct {
	jwt.RegisteredClaims
	OperatorID int `json:"operator_id"`
}

// SignUp registers an operator. Usernames are case-insensitive.
func (s *AuthService) SignUp(ctx context.Context, username, password string) (int, error) {
	name, err := normalizeUsername(username)
	if err != nil {
		return 0, err
	}
	if strings.TrimSpace(password) == "" {
		return 0, ErrEmptyPassword
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return 0, fmt.Errorf("hash password: %w", err)
	}
	return s.authRepo.Create(ctx, name, string(hash))
}

// GenerateToken checks the credentials and returns a signed token.
func (s *AuthService) GenerateToken(ctx context.Context, username, password string) (string, error) {
	name, err := normalizeUsername(username)
	if err != nil {
		return "", err
	}
	u, err := s.authRepo.GetByUsername(ctx, name)
	if err != nil {
		return "", err
	}
	if u == nil {
		return "", ErrOperatorNotFound
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return "", ErrInvalidPassword
	}
	return s.issueToken(u.ID, u.Username)
}

// ParseToken verifies accessToken and returns the operator ID it carries.
func (s *AuthService) ParseToken(accessToken string) (int, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(accessToken, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("%w: %v", errUnexpectedSigning, t.Header["alg"])
		}
		return s.signingKey, nil
	}, jwt.WithIssuer(tokenIssuer), jwt.WithTimeFunc(s.now))
	if err != nil {
		return 0, err
	}
	if !token.Valid || claims.OperatorID <= 0 {
		return 0, ErrInvalidToken
	}
	return claims.OperatorID, nil
}

func (s *AuthService) issueToken(operatorID int, username string) (string, error) {
	now := s.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tokenIssuer,
			Subject:   username,
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
		OperatorID: operatorID,
	})
	return token.SignedString(s.signingKey)
}

func normalizeUsername(s string) (string, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	if name == "" {
		return "", ErrInvalidUsername
	}
	return name, nil
}

package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"cleo_backend/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

const defaultTokenTTL = time.Hour

type AuthConfig struct {
	SigningKey string
	TokenTTL   time.Duration
}

// AuthService handles user auth logic
type AuthService struct {
	authRepo repository.Authorization
	sessions Sessions
	key      []byte
	tokenTTL time.Duration
}

func NewAuthService(repo repository.Authorization, sessions Sessions, cfg AuthConfig) *AuthService {
	ttl := cfg.TokenTTL
	if ttl <= 0 {
		ttl = defaultTokenTTL
	}
	return &AuthService{authRepo: repo, sessions: sessions, key: []byte(cfg.SigningKey), tokenTTL: ttl}
}

// SignUp hashes password and creates a new user
func (s *AuthService) SignUp(ctx context.Context, username, password string) (int, error) {
	hash, err := hashPassword(password)
	if err != nil {
		return 0, fmt.Errorf("invalid password: %w", err)
	}
	return s.authRepo.Create(ctx, username, hash)
}

// Claims defines JWT claims
type Claims struct {
	jwt.RegisteredClaims
	UserID    int    `json:"user_id"`
	SessionID string `json:"sid"`
}

// TokenClaims is what a valid access token identifies.
type TokenClaims struct {
	UserID    int
	SessionID string
}

// SignIn validates credentials, opens a session and returns a JWT bound to it.
func (s *AuthService) SignIn(ctx context.Context, username, password string) (string, error) {
	u, err := s.authRepo.GetByUsername(ctx, username)
	if err != nil {
		return "", err
	}
	if u == nil {
		return "", ErrUserNotFound
	}

	if err := verifyPassword(u.PasswordHash, password); err != nil {
		return "", ErrInvalidPassword
	}

	sess, err := s.sessions.Create(ctx, u.ID)
	if err != nil {
		return "", err
	}
	return s.issueToken(u.ID, sess.ID, sess.ExpiresAt)
}

// ParseToken parses JWT and returns the user and session it carries
func (s *AuthService) ParseToken(accessToken string) (TokenClaims, error) {
	token, err := jwt.ParseWithClaims(accessToken, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		// Ensure HMAC signing is used
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.key, nil
	})
	if err != nil {
		return TokenClaims{}, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.SessionID == "" {
		return TokenClaims{}, ErrInvalidToken
	}

	return TokenClaims{UserID: claims.UserID, SessionID: claims.SessionID}, nil
}

// SignOut ends the session the token was issued for.
func (s *AuthService) SignOut(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return ErrInvalidToken
	}
	return s.sessions.Delete(ctx, sessionID)
}

// helper: hash password safely
func hashPassword(password string) (string, error) {
	if strings.TrimSpace(password) == "" {
		return "", errors.New("password is empty")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// helper: verify password against hash
func verifyPassword(hash, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}

// issueToken signs a JWT that expires with the token TTL or the session,
// whichever comes first.
func (s *AuthService) issueToken(userID int, sessionID string, sessionExpiry time.Time) (string, error) {
	now := time.Now()
	exp := now.Add(s.tokenTTL)
	if !sessionExpiry.IsZero() && sessionExpiry.Before(exp) {
		exp = sessionExpiry
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(exp),
			IssuedAt:  jwt.NewNumericDate(now),
		},
		UserID:    userID,
		SessionID: sessionID,
	})
	return token.SignedString(s.key)
}

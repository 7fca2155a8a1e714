package server

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jonathan/resume-enhancer/internal/config"
	"github.com/jonathan/resume-enhancer/internal/server/middleware"
)

const tokenIssuer = "resume-enhancer"

// Claims are the session token claims.
type Claims struct {
	SessionID uuid.UUID `json:"sid"`
	jwt.RegisteredClaims
}

// GetSessionID implements middleware.SessionIDGetter.
func (c *Claims) GetSessionID() uuid.UUID {
	return c.SessionID
}

// JWTService issues and checks session tokens.
type JWTService struct {
	config *config.JWTConfig
	now    func() time.Time
}

// NewJWTService creates a new JWT service with the given configuration.
func NewJWTService(cfg *config.JWTConfig) *JWTService {
	return &JWTService{config: cfg, now: time.Now}
}

// AsTokenValidator adapts the service to middleware.TokenValidator.
func (s *JWTService) AsTokenValidator() middleware.TokenValidator {
	return tokenValidator{s}
}

type tokenValidator struct {
	service *JWTService
}

func (v tokenValidator) ValidateToken(tokenString string) (middleware.SessionIDGetter, error) {
	claims, err := v.service.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}
	return claims, nil
}

// GenerateToken signs a token for the session. It returns the token and its expiry.
func (s *JWTService) GenerateToken(sessionID uuid.UUID) (string, time.Time, error) {
	now := s.now()
	expiresAt := now.Add(s.config.Expiration())

	claims := &Claims{
		SessionID: sessionID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tokenIssuer,
			Subject:   sessionID.String(),
			ID:        uuid.NewString(),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.config.Secret))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, expiresAt, nil
}

// Token validation failures
var (
	errEmptyToken     = errors.New("token string is empty")
	errTokenNoSession = errors.New("token has no session")
)

// tokenErrors gives the parser's sentinel errors a readable prefix
var tokenErrors = []struct {
	target error
	prefix string
}{
	{jwt.ErrTokenExpired, "token expired"},
	{jwt.ErrTokenSignatureInvalid, "invalid token signature"},
	{jwt.ErrTokenMalformed, "malformed token"},
}

func (s *JWTService) signingKey(token *jwt.Token) (any, error) {
	if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
	}
	return []byte(s.config.Secret), nil
}

// ValidateToken checks signature, issuer and lifetime and returns the claims.
func (s *JWTService) ValidateToken(tokenString string) (*Claims, error) {
	if tokenString == "" {
		return nil, errEmptyToken
	}

	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, s.signingKey,
		jwt.WithIssuer(tokenIssuer),
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		for _, te := range tokenErrors {
			if errors.Is(err, te.target) {
				return nil, fmt.Errorf("%s: %w", te.prefix, err)
			}
		}
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}
	if claims.SessionID == uuid.Nil {
		return nil, errTokenNoSession
	}

	return claims, nil
}

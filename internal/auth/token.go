package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultTokenTTL is the session token lifetime when none is configured.
const DefaultTokenTTL = 15 * time.Minute

var (
	ErrEmptySecret  = errors.New("jwt secret must not be empty")
	ErrEmptySubject = errors.New("token subject must not be empty")
	ErrInvalidToken = errors.New("invalid token")
)

// Claims is the decoded payload of a session token. Subject holds the user's email.
type Claims struct {
	jwt.RegisteredClaims
}

// TokenService issues and validates signed, time-limited session tokens.
type TokenService interface {
	GenerateToken(subjectEmail string) (string, error)
	// ExtractClaims verifies the signature and returns the claims, expired or not.
	ExtractClaims(token string) (*Claims, error)
	IsExpired(claims *Claims) bool
	// ValidateToken never fails; any problem yields false.
	ValidateToken(token, expectedSubject string) bool
}

// JWTService implements TokenService with HS256 JWTs.
type JWTService struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
	parser *jwt.Parser
}

// TokenOption customises a JWTService.
type TokenOption func(*JWTService)

// WithClock replaces time.Now, mostly for tests.
func WithClock(now func() time.Time) TokenOption {
	return func(s *JWTService) {
		s.now = now
	}
}

// NewJWTService creates a token service signing with secret. A non-positive ttl means DefaultTokenTTL.
func NewJWTService(secret string, ttl time.Duration, opts ...TokenOption) (*JWTService, error) {
	if secret == "" {
		return nil, ErrEmptySecret
	}
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}

	s := &JWTService{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
		// Expiry is checked separately by IsExpired so expired claims can still be read.
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
			jwt.WithoutClaimsValidation(),
		),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *JWTService) GenerateToken(subjectEmail string) (string, error) {
	if subjectEmail == "" {
		return "", ErrEmptySubject
	}

	issuedAt := s.now()
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subjectEmail,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(s.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

func (s *JWTService) ExtractClaims(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := s.parser.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return s.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

func (s *JWTService) IsExpired(claims *Claims) bool {
	if claims == nil || claims.ExpiresAt == nil {
		return true
	}
	return !s.now().Before(claims.ExpiresAt.Time)
}

func (s *JWTService) ValidateToken(tokenString, expectedSubject string) bool {
	if tokenString == "" || expectedSubject == "" {
		return false
	}

	claims, err := s.ExtractClaims(tokenString)
	if err != nil {
		return false
	}
	if claims.Subject != expectedSubject {
		return false
	}
	return !s.IsExpired(claims)
}

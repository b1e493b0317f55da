package app

import (
	"errors"
	"fmt"
	"time"

	"github.com/form3tech-oss/jwt-go"
	"github.com/google/uuid"
)

// GatewayAudience is the audience claim of tokens minted for the LLM gateway.
const GatewayAudience = "llm-gateway"

var ErrInvalidToken = errors.New("invalid gateway token")

// gatewayClaims scopes a bearer token to one user and, optionally, one match.
type gatewayClaims struct {
	ID        string `json:"jti"`
	Issuer    string `json:"iss"`
	Subject   string `json:"sub"`
	Audience  string `json:"aud"`
	IssuedAt  int64  `json:"iat"`
	ExpiresAt int64  `json:"exp"`
	MatchID   string `json:"mid,omitempty"`
}

// Valid implements jwt.Claims.
func (c *gatewayClaims) Valid() error {
	if c.ExpiresAt == 0 {
		return errors.New("token has no expiry")
	}
	if time.Now().Unix() > c.ExpiresAt {
		return errors.New("token is expired")
	}
	return nil
}

// TokenService mints short-lived bearer tokens that let a client call the
// LLM gateway on behalf of one match. The dev server verifies the same
// tokens on its HTTP routes.
type TokenService struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenService(secret, issuer string, ttl time.Duration) *TokenService {
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return &TokenService{secret: []byte(secret), issuer: issuer, ttl: ttl, now: time.Now}
}

func (s *TokenService) GenerateToken(userID, matchID string) (string, error) {
	switch {
	case s == nil:
		return "", errors.New("token service is nil")
	case userID == "":
		return "", errors.New("user is required")
	case len(s.secret) == 0 || s.issuer == "":
		return "", errors.New("gateway token config is incomplete")
	}

	now := s.now()
	claims := &gatewayClaims{
		ID:        uuid.NewString(),
		Issuer:    s.issuer,
		Subject:   userID,
		Audience:  GatewayAudience,
		IssuedAt:  now.Unix(),
		ExpiresAt: now.Add(s.ttl).Unix(),
		MatchID:   matchID,
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// VerifyToken checks signature, expiry, issuer and audience and returns
// the subject and match id.
func (s *TokenService) VerifyToken(tokenString string) (userID, matchID string, err error) {
	var claims gatewayClaims
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return "", "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid {
		return "", "", ErrInvalidToken
	}
	if claims.Issuer != s.issuer || claims.Audience != GatewayAudience {
		return "", "", fmt.Errorf("%w: wrong issuer or audience", ErrInvalidToken)
	}
	if claims.Subject == "" {
		return "", "", fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}
	return claims.Subject, claims.MatchID, nil
}

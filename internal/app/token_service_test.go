package app

import (
	"strings"
	"testing"
	"time"

	"github.com/form3tech-oss/jwt-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenServiceRoundTrip(t *testing.T) {
	svc := NewTokenService("test-secret", "cardduel", time.Minute)

	scoped, err := svc.GenerateToken("user123", "match-456")
	require.NoError(t, err)
	user, match, err := svc.VerifyToken(scoped)
	require.NoError(t, err)
	assert.Equal(t, "user123", user)
	assert.Equal(t, "match-456", match)

	open, err := svc.GenerateToken("user123", "")
	require.NoError(t, err)
	_, match, err = svc.VerifyToken(open)
	require.NoError(t, err)
	assert.Empty(t, match)
}

func TestTokenServiceClaims(t *testing.T) {
	svc := NewTokenService("test-secret", "cardduel", time.Minute)
	fixed := time.Now().Truncate(time.Second)
	svc.now = func() time.Time { return fixed }

	raw, err := svc.GenerateToken("user123", "match-456")
	require.NoError(t, err)

	claims := jwt.MapClaims{}
	_, _, err = new(jwt.Parser).ParseUnverified(raw, claims)
	require.NoError(t, err)
	assert.Equal(t, "cardduel", claims["iss"])
	assert.Equal(t, "user123", claims["sub"])
	assert.Equal(t, GatewayAudience, claims["aud"])
	assert.Equal(t, "match-456", claims["mid"])
	assert.EqualValues(t, fixed.Add(time.Minute).Unix(), claims["exp"])
	assert.NotEmpty(t, claims["jti"])

	again, err := svc.GenerateToken("user123", "match-456")
	require.NoError(t, err)
	assert.NotEqual(t, raw, again, "jti must differ between tokens")
}

func TestTokenServiceRequiresConfig(t *testing.T) {
	tests := map[string]struct {
		svc  *TokenService
		user string
	}{
		"nil service":    {nil, "user"},
		"missing secret": {NewTokenService("", "cardduel", 0), "user"},
		"missing issuer": {NewTokenService("secret", "", 0), "user"},
		"missing user":   {NewTokenService("secret", "cardduel", 0), ""},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := tt.svc.GenerateToken(tt.user, "")
			assert.Error(t, err)
		})
	}
}

func TestTokenServiceRejects(t *testing.T) {
	svc := NewTokenService("secret", "cardduel", time.Minute)

	mint := func(t *testing.T, s *TokenService) string {
		t.Helper()
		tok, err := s.GenerateToken("user", "m1")
		require.NoError(t, err)
		return tok
	}
	expired := NewTokenService("secret", "cardduel", time.Minute)
	expired.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }

	good := mint(t, svc)
	parts := strings.Split(good, ".")
	tampered := parts[0] + "." + parts[1] + "x." + parts[2]

	noneAlg, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
		"iss": "cardduel", "sub": "user", "aud": GatewayAudience, "exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	tests := map[string]string{
		"other secret": mint(t, NewTokenService("other-secret", "cardduel", time.Minute)),
		"other issuer": mint(t, NewTokenService("secret", "someone-else", time.Minute)),
		"expired":      mint(t, expired),
		"tampered":     tampered,
		"none alg":     noneAlg,
		"garbage":      "not-a-token",
	}
	for name, tok := range tests {
		t.Run(name, func(t *testing.T) {
			_, _, err := svc.VerifyToken(tok)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

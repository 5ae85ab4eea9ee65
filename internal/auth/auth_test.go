package auth

import (
	"strings"
	"testing"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	tm := NewTokenManager("secret", 5)
	token, exp, err := tm.GenerateToken("user_2abc", "ada@example.com", "Ada")
	require.NoError(t, err)
	assert.True(t, exp.After(time.Now()))

	claims, err := tm.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user_2abc", claims.Subject)
	assert.Equal(t, "ada@example.com", claims.Email)
}

func TestParseTokenRejects(t *testing.T) {
	tm := NewTokenManager("secret", 5)
	other := NewTokenManager("other", 5)
	foreign, _, err := other.GenerateToken("x", "", "")
	require.NoError(t, err)

	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{RegisteredClaims: jwt.RegisteredClaims{
		Subject:   "x",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
	}})
	expiredStr, err := expired.SignedString([]byte("secret"))
	require.NoError(t, err)

	noExp := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{RegisteredClaims: jwt.RegisteredClaims{Subject: "x"}})
	noExpStr, err := noExp.SignedString([]byte("secret"))
	require.NoError(t, err)

	noSub := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{RegisteredClaims: jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
	}})
	noSubStr, err := noSub.SignedString([]byte("secret"))
	require.NoError(t, err)

	for name, token := range map[string]string{
		"wrong secret": foreign,
		"expired":      expiredStr,
		"no expiry":    noExpStr,
		"no subject":   noSubStr,
		"garbage":      "not.a.jwt",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := tm.ParseToken(token)
			assert.Error(t, err)
		})
	}
}

func TestIssuerAndSkew(t *testing.T) {
	tm := NewTokenManager("secret", 5).WithIssuer("https://id.pebec.gov.ng")
	token, _, err := tm.GenerateToken("user_1", "", "")
	require.NoError(t, err)
	claims, err := tm.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, "https://id.pebec.gov.ng", claims.Issuer)

	untrusted, _, err := NewTokenManager("secret", 5).WithIssuer("https://elsewhere").GenerateToken("user_1", "", "")
	require.NoError(t, err)
	_, err = tm.ParseToken(untrusted)
	assert.Error(t, err)

	justExpired := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{RegisteredClaims: jwt.RegisteredClaims{
		Issuer:    "https://id.pebec.gov.ng",
		Subject:   "user_1",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(-10 * time.Second)),
	}})
	skewed, err := justExpired.SignedString([]byte("secret"))
	require.NoError(t, err)
	_, err = tm.ParseToken(skewed)
	assert.NoError(t, err)
}

func TestGenerateCode(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		code, err := GenerateCode()
		require.NoError(t, err)
		assert.Len(t, code, CodeLength)
		for _, r := range code {
			assert.True(t, strings.ContainsRune(codeAlphabet, r))
		}
		seen[code] = true
	}
	assert.Len(t, seen, 50)
}

func TestHashAndCompareCode(t *testing.T) {
	hash, err := HashCode("ABCDEFGH23", 4)
	require.NoError(t, err)
	assert.NoError(t, CompareCode(hash, "ABCDEFGH23"))
	assert.Error(t, CompareCode(hash, "ABCDEFGH24"))
}

func TestVerifySignature(t *testing.T) {
	body := []byte(`{"type":"user.created"}`)
	sig := Sign("whsec", body)

	assert.True(t, VerifySignature("whsec", body, sig))
	assert.True(t, VerifySignature("whsec", body, "sha256="+sig))
	assert.False(t, VerifySignature("whsec", []byte(`{}`), sig))
	assert.False(t, VerifySignature("other", body, sig))
	assert.False(t, VerifySignature("", body, sig))
	assert.False(t, VerifySignature("whsec", body, "zz"))
}

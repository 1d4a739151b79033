package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndValidate(t *testing.T) {
	svc := NewTokenService("test-signing-key", "shopgenie-test")

	token, err := svc.Generate("u1", "admin", "demo.myshopify.com", time.Hour)
	require.NoError(t, err)

	claims, err := svc.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
	assert.Equal(t, "admin", claims.Role)
	assert.Equal(t, "demo.myshopify.com", claims.ShopDomain)
}

func TestValidateExpired(t *testing.T) {
	svc := NewTokenService("test-signing-key", "shopgenie-test")

	token, err := svc.Generate("u1", "admin", "", -time.Minute)
	require.NoError(t, err)

	_, err = svc.Validate(token)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestValidateGarbage(t *testing.T) {
	svc := NewTokenService("test-signing-key", "shopgenie-test")

	_, err := svc.Validate("not-a-jwt")
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestValidateWrongKey(t *testing.T) {
	issuer := NewTokenService("key-one", "shopgenie-test")
	verifier := NewTokenService("key-two", "shopgenie-test")

	token, err := issuer.Generate("u1", "staff", "", time.Hour)
	require.NoError(t, err)

	_, err = verifier.Validate(token)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestValidateMissingUserID(t *testing.T) {
	svc := NewTokenService("test-signing-key", "shopgenie-test")

	token, err := svc.Generate("", "admin", "", time.Hour)
	require.NoError(t, err)

	_, err = svc.Validate(token)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

package auth

import (
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueAndVerify(t *testing.T) {
	svc, err := NewTokenService("test-secret-at-least-16-chars")
	require.NoError(t, err)

	userID := snowflake.ID(123456789)
	token, err := svc.Issue(userID)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	parsed, err := svc.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, userID, parsed)
}

func TestVerifyRejectsGarbage(t *testing.T) {
	svc, err := NewTokenService("test-secret-at-least-16-chars")
	require.NoError(t, err)

	_, err = svc.Verify("not.a.token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	issuer, err := NewTokenService("issuer-secret-16-chars-long")
	require.NoError(t, err)
	verifier, err := NewTokenService("other-secret-16-chars-long!")
	require.NoError(t, err)

	token, err := issuer.Issue(snowflake.ID(1))
	require.NoError(t, err)

	_, err = verifier.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestShortSecretRejected(t *testing.T) {
	_, err := NewTokenService("short")
	assert.Error(t, err)
}

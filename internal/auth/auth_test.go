package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueAndVerify(t *testing.T) {
	t.Parallel()

	svc := NewService([]byte("test-secret"), time.Hour)

	token, user, err := svc.IssueAnonymous("", "alice")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(user.ID, AnonPrefix))
	assert.Equal(t, "alice", user.Username)
	assert.True(t, user.IsAnonymous)
	assert.Equal(t, defaultChips, user.Chips)

	id, err := svc.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, id.UserID)
	assert.Equal(t, "alice", id.Username)
	assert.True(t, id.Anonymous)
}

func TestClientIDContinuity(t *testing.T) {
	t.Parallel()

	svc := NewService([]byte("test-secret"), time.Hour)

	// A stable anon_ id from the client survives re-issuance.
	_, user, err := svc.IssueAnonymous("anon_stable123", "bob")
	require.NoError(t, err)
	assert.Equal(t, "anon_stable123", user.ID)

	// Anything else is replaced with a fresh id.
	_, user, err = svc.IssueAnonymous("admin", "bob")
	require.NoError(t, err)
	assert.NotEqual(t, "admin", user.ID)
	assert.True(t, strings.HasPrefix(user.ID, AnonPrefix))
}

func TestGeneratedUsername(t *testing.T) {
	t.Parallel()

	svc := NewService([]byte("test-secret"), 0)
	_, user, err := svc.IssueAnonymous("", "")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(user.Username, "Player-"))
}

func TestVerifyRejectsBadTokens(t *testing.T) {
	t.Parallel()

	svc := NewService([]byte("test-secret"), time.Hour)
	token, _, err := svc.IssueAnonymous("", "alice")
	require.NoError(t, err)

	_, err = svc.Verify("not-a-token")
	require.ErrorIs(t, err, ErrInvalidToken)

	// Wrong secret.
	other := NewService([]byte("different"), time.Hour)
	_, err = other.Verify(token)
	require.ErrorIs(t, err, ErrInvalidToken)

	// Expired.
	expired := NewService([]byte("test-secret"), -time.Minute)
	tok, _, err := expired.IssueAnonymous("", "alice")
	require.NoError(t, err)
	_, err = svc.Verify(tok)
	require.ErrorIs(t, err, ErrInvalidToken)
}

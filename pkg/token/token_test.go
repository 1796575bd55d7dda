package token

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueParse(t *testing.T) {
	iss := NewIssuer("secret", time.Hour)

	signed, exp, err := iss.Issue("teacher", 7)
	require.NoError(t, err)
	assert.Greater(t, exp, time.Now().Unix())

	kind, id, err := iss.Parse(signed)
	require.NoError(t, err)
	assert.Equal(t, "teacher", kind)
	assert.Equal(t, uint(7), id)
}

func TestParseRejects(t *testing.T) {
	iss := NewIssuer("secret", time.Hour)
	signed, _, err := iss.Issue("account", 3)
	require.NoError(t, err)

	other := NewIssuer("other-secret", time.Hour)
	_, _, err = other.Parse(signed)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, _, err = iss.Parse("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)

	expired := NewIssuer("secret", time.Minute)
	expired.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	old, _, err := expired.Issue("account", 3)
	require.NoError(t, err)
	_, _, err = iss.Parse(old)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPasswordRoundTrip(t *testing.T) {
	hashed, err := HashPassword("s3cret")
	require.NoError(t, err)

	assert.True(t, CheckPassword(hashed, "s3cret"))
	assert.False(t, CheckPassword(hashed, "wrong"))
	assert.False(t, CheckPassword("not-a-hash", "s3cret"))
}

func TestNewLogger(t *testing.T) {
	for _, format := range []string{"json", "console"} {
		logger, err := NewLogger("debug", format, "room-console")
		require.NoError(t, err)
		assert.True(t, logger.Core().Enabled(-1))
	}

	logger, err := NewLogger("nonsense", "json", "")
	require.NoError(t, err)
	assert.False(t, logger.Core().Enabled(-1))
}

func TestHashPassword_RejectsEmpty(t *testing.T) {
	_, err := HashPassword("  ")
	assert.Error(t, err)
	assert.False(t, CheckPassword("", ""))
}

package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTRoundTrip(t *testing.T) {
	j := NewJWT("s3cret")
	token, err := j.Sign(42)
	require.NoError(t, err)

	uid, err := j.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, uint64(42), uid)
}

func TestJWTRejectsOtherSecret(t *testing.T) {
	token, err := NewJWT("one").Sign(1)
	require.NoError(t, err)

	_, err = NewJWT("two").Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestJWTExpires(t *testing.T) {
	issued := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	j := NewJWT("s3cret")
	j.now = func() time.Time { return issued }
	token, err := j.Sign(7)
	require.NoError(t, err)

	j.now = func() time.Time { return issued.Add(tokenTTL + time.Minute) }
	_, err = j.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestPasswordHash(t *testing.T) {
	hash, err := HashPassword("correct horse")
	require.NoError(t, err)
	assert.NotEqual(t, "correct horse", hash)
	assert.True(t, ComparePassword(hash, "correct horse"))
	assert.False(t, ComparePassword(hash, "battery staple"))
}

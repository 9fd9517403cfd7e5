package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateAndVerify(t *testing.T) {
	m := NewManager("test-secret", time.Hour)

	token, err := m.Create(123, "mapper", "osu-access-token")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := m.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, uint32(123), claims.UserID)
	assert.Equal(t, "mapper", claims.Username)
	assert.Equal(t, "osu-access-token", claims.OsuToken)
}

func TestVerifyRejectsExpired(t *testing.T) {
	m := NewManager("test-secret", -time.Hour)

	token, err := m.Create(1, "x", "y")
	require.NoError(t, err)

	_, err = m.Verify(token)
	assert.Error(t, err)
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	m1 := NewManager("secret-one", time.Hour)
	m2 := NewManager("secret-two", time.Hour)

	token, err := m1.Create(1, "x", "y")
	require.NoError(t, err)

	_, err = m2.Verify(token)
	assert.Error(t, err)
}

func TestVerifyRejectsGarbage(t *testing.T) {
	m := NewManager("secret", time.Hour)
	_, err := m.Verify("not-a-jwt")
	assert.Error(t, err)
}

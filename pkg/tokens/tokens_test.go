package tokens

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignAccessToken_RoundTrip(t *testing.T) {
	t.Parallel()

	secret := []byte("test-secret")
	subject := uuid.NewString()
	exp := time.Now().Add(15 * time.Minute).UTC()

	token, err := SignAccessToken(subject, "admin", exp, secret)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := AccessClaimsFromToken(token, secret)
	require.NoError(t, err)
	assert.Equal(t, subject, claims.Subject)
	assert.Equal(t, "admin", claims.Role)
	require.NotNil(t, claims.ExpiresAt)
	assert.WithinDuration(t, exp, claims.ExpiresAt.Time, time.Second)
}

func TestAccessClaimsFromToken_WrongSecret(t *testing.T) {
	t.Parallel()

	token, err := SignAccessToken(uuid.NewString(), "customer", time.Now().Add(time.Hour), []byte("right"))
	require.NoError(t, err)

	_, err = AccessClaimsFromToken(token, []byte("wrong"))
	require.Error(t, err)
}

func TestAccessClaimsFromToken_Expired(t *testing.T) {
	t.Parallel()

	token, err := SignAccessToken(uuid.NewString(), "customer", time.Now().Add(-time.Minute), []byte("secret"))
	require.NoError(t, err)

	_, err = AccessClaimsFromToken(token, []byte("secret"))
	require.Error(t, err)
}

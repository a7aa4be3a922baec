package fakeapi

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateToken_RoundTrip(t *testing.T) {
	secret := []byte("s3cr3t")
	tok, err := GenerateToken("cust-1", secret, time.Minute)
	require.NoError(t, err)

	id, err := CustomerIDFromToken(tok, secret)
	require.NoError(t, err)
	assert.Equal(t, "cust-1", id)
}

func TestCustomerIDFromToken_Rejects(t *testing.T) {
	secret := []byte("s3cr3t")

	expired, err := GenerateToken("cust-1", secret, -time.Minute)
	require.NoError(t, err)
	_, err = CustomerIDFromToken(expired, secret)
	assert.Error(t, err)

	other, err := GenerateToken("cust-1", []byte("other"), time.Minute)
	require.NoError(t, err)
	_, err = CustomerIDFromToken(other, secret)
	assert.Error(t, err)

	_, err = CustomerIDFromToken("garbage", secret)
	assert.Error(t, err)
}

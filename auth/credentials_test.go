package auth_test

import (
	"crypto/sha256"
	"encoding/hex"
	"testing"

	"blockledger_go/auth"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateAndVerify(t *testing.T) {
	store := auth.NewCredentialStore()

	require.NoError(t, store.Create("alice", "pw1"))

	assert.True(t, store.Verify("alice", "pw1"))
	assert.False(t, store.Verify("alice", "wrong"))
	assert.True(t, store.Exists("alice"))
	assert.Equal(t, 1, store.Count())
}

func TestVerifyUnknownUser(t *testing.T) {
	store := auth.NewCredentialStore()

	// No distinct "unknown user" signal, just false
	assert.False(t, store.Verify("nobody", "pw"))
}

func TestCreateDuplicateUser(t *testing.T) {
	store := auth.NewCredentialStore()
	require.NoError(t, store.Create("bob", "first"))

	err := store.Create("bob", "second")
	require.ErrorIs(t, err, auth.ErrDuplicateUser)

	// The original credential is not overwritten
	assert.True(t, store.Verify("bob", "first"))
	assert.False(t, store.Verify("bob", "second"))
	assert.Equal(t, 1, store.Count())
}

func TestHashPasswordIsPlainSHA256(t *testing.T) {
	// The digest format is part of the compatibility contract with the
	// system this node replicates: unsalted SHA-256, lowercase hex.
	sum := sha256.Sum256([]byte("pw1"))

	assert.Equal(t, hex.EncodeToString(sum[:]), auth.HashPassword("pw1"))
	assert.Len(t, auth.HashPassword("anything"), 64)
	assert.NotEqual(t, auth.HashPassword("pw1"), auth.HashPassword("pw2"))
}

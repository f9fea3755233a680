package auth

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"sync"
)

// ErrDuplicateUser is returned when registering a username that already exists.
var ErrDuplicateUser = errors.New("username already exists")

// CredentialStore holds username to password-digest mappings.
// Credentials are created once and never updated or deleted.
type CredentialStore struct {
	users map[string]string
	mutex sync.RWMutex
}

// NewCredentialStore creates an empty credential store
func NewCredentialStore() *CredentialStore {
	return &CredentialStore{
		users: make(map[string]string),
	}
}

// HashPassword returns the SHA-256 digest of a password as lowercase hex.
// NOTE: the digest is unsalted and unkeyed to stay compatible with the
// system this node replicates. Production-grade credential storage needs a
// salted or keyed derivation (bcrypt, scrypt, argon2).
func HashPassword(password string) string {
	sum := sha256.Sum256([]byte(password))
	return hex.EncodeToString(sum[:])
}

// Create stores the digest of a new user's password.
// It fails with ErrDuplicateUser if the username is already taken; the
// existing credential is never overwritten.
func (cs *CredentialStore) Create(username string, password string) error {
	cs.mutex.Lock()
	defer cs.mutex.Unlock()

	if _, exists := cs.users[username]; exists {
		return ErrDuplicateUser
	}

	cs.users[username] = HashPassword(password)
	return nil
}

// Verify reports whether the password matches the stored digest for the
// username. An unknown username verifies as false; no distinct signal is
// given for it.
func (cs *CredentialStore) Verify(username string, password string) bool {
	cs.mutex.RLock()
	defer cs.mutex.RUnlock()

	digest, exists := cs.users[username]
	return exists && digest == HashPassword(password)
}

// Exists reports whether a username is already registered
func (cs *CredentialStore) Exists(username string) bool {
	cs.mutex.RLock()
	defer cs.mutex.RUnlock()

	_, exists := cs.users[username]
	return exists
}

// Count returns the number of stored credentials
func (cs *CredentialStore) Count() int {
	cs.mutex.RLock()
	defer cs.mutex.RUnlock()

	return len(cs.users)
}

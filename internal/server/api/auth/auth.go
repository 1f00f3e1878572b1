// Package auth implements the password handshake of the API server and the
// encrypted connection that follows it.
package auth

import (
	"crypto/pbkdf2"
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"io"
	"math/big"

	"golang.org/x/crypto/hkdf"
)

const (
	// KeyLength is the length of generated passwords.
	KeyLength = 16
	// KeyAlphabet holds the characters generated passwords are drawn from.
	KeyAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

	pbkdf2Iterations = 100000
	pbkdf2Salt       = "padmotion-Key-v1"
	sessionInfo      = "padmotion-Session-v1"
)

// ErrEmptyPassword is returned by DeriveKey for an empty password.
var ErrEmptyPassword = errors.New("auth: password cannot be empty")

// GenerateKey returns a random KeyLength character password.
func GenerateKey() (string, error) {
	max := big.NewInt(int64(len(KeyAlphabet)))
	key := make([]byte, KeyLength)
	for i := range key {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		key[i] = KeyAlphabet[n.Int64()]
	}
	return string(key), nil
}

// DeriveKey stretches password into the 32 byte handshake key.
func DeriveKey(password string) ([]byte, error) {
	if password == "" {
		return nil, ErrEmptyPassword
	}
	return pbkdf2.Key(sha256.New, password, []byte(pbkdf2Salt), pbkdf2Iterations, 32)
}

// DeriveSessionKey expands the handshake key and both nonces into the key of
// one connection.
func DeriveSessionKey(key, serverNonce, clientNonce []byte) []byte {
	salt := make([]byte, 0, len(serverNonce)+len(clientNonce))
	salt = append(salt, serverNonce...)
	salt = append(salt, clientNonce...)

	out := make([]byte, 32)
	if _, err := io.ReadFull(hkdf.New(sha256.New, key, salt, []byte(sessionInfo)), out); err != nil {
		// hkdf only fails past 255 blocks of output
		panic(err)
	}
	return out
}

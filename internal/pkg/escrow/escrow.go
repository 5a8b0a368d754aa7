package escrow

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"
)

const (
	keyLen  = 32
	saltLen = 16
)

var (
	// ErrInvalidMasterKey indicates the configured master key is not a
	// 32-byte hex string.
	ErrInvalidMasterKey = errors.New("escrow: master key must be 32 bytes of hex")
	// ErrDecrypt indicates the ciphertext could not be authenticated or opened.
	ErrDecrypt = errors.New("escrow: decryption failed")
)

// Envelope is the persisted form of an escrowed secret. KeySalt and Nonce
// are fresh random values per secret; together with the master key they are
// sufficient to re-derive the record key and open the ciphertext, so escrowed
// credentials survive process restarts.
type Envelope struct {
	Ciphertext []byte
	KeySalt    []byte
	Nonce      []byte
}

// Escrow encrypts short-lived secrets (plaintext passwords awaiting email
// confirmation) using AES-GCM under a per-record key derived from a single
// configured master key via HKDF-SHA256.
type Escrow struct {
	master []byte
}

// New parses the hex-encoded master key and returns an Escrow.
func New(masterHex string) (*Escrow, error) {
	master, err := hex.DecodeString(masterHex)
	if err != nil || len(master) != keyLen {
		return nil, ErrInvalidMasterKey
	}
	return &Escrow{master: master}, nil
}

// Encrypt seals plaintext under a freshly derived key and nonce.
func (e *Escrow) Encrypt(plaintext string) (Envelope, error) {
	salt := make([]byte, saltLen)
	if _, err := rand.Read(salt); err != nil {
		return Envelope{}, fmt.Errorf("escrow: generate salt: %w", err)
	}
	gcm, err := e.aead(salt)
	if err != nil {
		return Envelope{}, err
	}
	nonce := make([]byte, gcm.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return Envelope{}, fmt.Errorf("escrow: generate nonce: %w", err)
	}
	ct := gcm.Seal(nil, nonce, []byte(plaintext), salt)
	return Envelope{Ciphertext: ct, KeySalt: salt, Nonce: nonce}, nil
}

// Decrypt re-derives the record key from the envelope's salt and opens the
// ciphertext. Any tampering with ciphertext, salt or nonce fails
// authentication.
func (e *Escrow) Decrypt(env Envelope) (string, error) {
	gcm, err := e.aead(env.KeySalt)
	if err != nil {
		return "", err
	}
	if len(env.Nonce) != gcm.NonceSize() {
		return "", ErrDecrypt
	}
	pt, err := gcm.Open(nil, env.Nonce, env.Ciphertext, env.KeySalt)
	if err != nil {
		return "", ErrDecrypt
	}
	return string(pt), nil
}

func (e *Escrow) aead(salt []byte) (cipher.AEAD, error) {
	key := make([]byte, keyLen)
	kdf := hkdf.New(sha256.New, e.master, salt, []byte("pending-verification"))
	if _, err := io.ReadFull(kdf, key); err != nil {
		return nil, fmt.Errorf("escrow: derive key: %w", err)
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

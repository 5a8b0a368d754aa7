package domain

import "time"

// PendingVerification escrows the credentials supplied when an anonymous
// user begins account linking, until the email link is visited.
// PK: verification_id. ExpiresAt doubles as the DynamoDB TTL attribute.
//
// The one-time token is stored only as a SHA-256 hash; the plaintext
// exists solely inside the email link. The password is encrypted with a
// per-record key (see pkg/escrow) — KeySalt and Nonce are the material
// needed to re-derive that key and open the ciphertext.
type PendingVerification struct {
	ID                string    `json:"id" dynamodbav:"verification_id"`
	SessionToken      string    `json:"-" dynamodbav:"session_token"`
	Email             string    `json:"email" dynamodbav:"email"`
	EncryptedPassword []byte    `json:"-" dynamodbav:"encrypted_password"`
	KeySalt           []byte    `json:"-" dynamodbav:"key_salt"`
	Nonce             []byte    `json:"-" dynamodbav:"nonce"`
	TokenHash         string    `json:"-" dynamodbav:"token_hash"`
	Completed         bool      `json:"-" dynamodbav:"completed"`
	CreatedAt         time.Time `json:"-" dynamodbav:"created_at"`
	ExpiresAt         int64     `json:"expiresAt" dynamodbav:"expires_at"` // Unix seconds, TTL attribute
}

// VerificationTTL is the validity window of a pending verification.
const VerificationTTL = time.Hour

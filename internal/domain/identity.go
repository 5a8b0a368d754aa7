package domain

import "time"

// Identity is a user record as held by the external identity provider.
// Anonymous is computed once when the provider record is decoded, instead
// of being re-inferred from missing fields at every call site.
type Identity struct {
	ID            string    `json:"id"`
	Email         string    `json:"email,omitempty"`
	EmailVerified bool      `json:"emailVerified"`
	Anonymous     bool      `json:"isAnonymous"`
	Disabled      bool      `json:"-"`
	ProviderIDs   []string  `json:"-"`
	CreatedAt     time.Time `json:"-"`
}

// TokenBundle is the set of tokens minted by the provider on any
// sign-in, sign-up, custom-token exchange or refresh.
type TokenBundle struct {
	UserID       string        `json:"-"`
	SessionToken string        `json:"idToken"`
	RefreshToken string        `json:"refreshToken"`
	ExpiresIn    time.Duration `json:"-"`
}

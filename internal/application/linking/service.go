package linking

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"time"
	"unicode"

	"github.com/weedscan-auth/internal/domain"
	"github.com/weedscan-auth/internal/infrastructure/smtp"
	"github.com/weedscan-auth/internal/pkg/escrow"
	"github.com/weedscan-auth/internal/pkg/id"
	"github.com/weedscan-auth/internal/pkg/token"
	"github.com/weedscan-auth/internal/pkg/validate"
)

// InitLinkRequest begins linking an anonymous session to real credentials.
type InitLinkRequest struct {
	IDToken     string `json:"idToken" validate:"required"`
	Email       string `json:"email" validate:"required"`
	Password    string `json:"password" validate:"required"`
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	PhoneNumber string `json:"phoneNumber"`
}

// LoginRequest authenticates with permanent credentials.
type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// Service orchestrates the anonymous-to-permanent account linking workflow.
// Every method returns the uniform AuthResult envelope; no error values
// cross the service boundary.
type Service interface {
	CreatePendingVerification(ctx context.Context, req InitLinkRequest) domain.AuthResult
	CompleteVerification(ctx context.Context, verificationID, verificationToken string) domain.AuthResult
	LinkAccount(ctx context.Context, email, password, sessionToken string) domain.AuthResult
	Signin(ctx context.Context, req LoginRequest) domain.AuthResult
	SignInAnonymously(ctx context.Context) domain.AuthResult
	RefreshAuthToken(ctx context.Context, refreshToken string) domain.AuthResult
	ValidateRequest(ctx context.Context, authHeader string) domain.AuthResult
}

// IdentityProvider is what the service needs from the external identity
// provider wrapper.
type IdentityProvider interface {
	VerifySessionToken(token string) (string, error)
	GetUser(ctx context.Context, id string) (*domain.Identity, error)
	GetUserByEmail(ctx context.Context, email string) (*domain.Identity, error)
	UpdateUser(ctx context.Context, id, email, password string) (*domain.Identity, error)
	CreateCustomToken(userID string) (string, error)
	ExchangeCustomToken(ctx context.Context, token string) (*domain.TokenBundle, error)
	SignInWithPassword(ctx context.Context, email, password string) (*domain.TokenBundle, error)
	SignUpAnonymous(ctx context.Context) (*domain.TokenBundle, error)
	RefreshToken(ctx context.Context, refreshToken string) (*domain.TokenBundle, error)
	SendVerificationEmail(ctx context.Context, sessionToken string) error
}

// VerificationStore persists pending verifications. MarkCompleted must be
// atomic: a single conditional write, never a read-then-write pair.
type VerificationStore interface {
	Put(ctx context.Context, v *domain.PendingVerification) error
	Get(ctx context.Context, id string) (*domain.PendingVerification, error)
	MarkCompleted(ctx context.Context, id, tokenHash string) (*domain.PendingVerification, error)
	Delete(ctx context.Context, id string) error
}

// CredentialEscrow seals and opens escrowed passwords.
type CredentialEscrow interface {
	Encrypt(plaintext string) (escrow.Envelope, error)
	Decrypt(env escrow.Envelope) (string, error)
}

// ServiceDeps bundles the collaborators for NewService.
type ServiceDeps struct {
	Provider IdentityProvider
	Store    VerificationStore
	Escrow   CredentialEscrow
	Mailer   smtp.Mailer
	BaseURL  string // public base URL for verification links
	DevMode  bool   // expose error details outside production
}

type service struct {
	provider IdentityProvider
	store    VerificationStore
	escrow   CredentialEscrow
	mailer   smtp.Mailer
	baseURL  string
	devMode  bool
}

func NewService(deps ServiceDeps) Service {
	return &service{
		provider: deps.Provider,
		store:    deps.Store,
		escrow:   deps.Escrow,
		mailer:   deps.Mailer,
		baseURL:  deps.BaseURL,
		devMode:  deps.DevMode,
	}
}

func (s *service) fail(err error) domain.AuthResult {
	return domain.Fail(err, s.devMode)
}

// CreatePendingVerification validates the request, escrows the password and
// persists a PendingVerification, then emails the confirmation link. All
// input validation happens before any I/O. If the email cannot be delivered
// the record is deleted again: this path never leaves an orphaned pending
// record behind.
func (s *service) CreatePendingVerification(ctx context.Context, req InitLinkRequest) domain.AuthResult {
	if err := validate.Struct(req); err != nil {
		return s.fail(domain.ErrMissingFields.WithDetails(err.Error()))
	}
	if !validate.Email(req.Email) {
		return s.fail(domain.ErrInvalidEmail)
	}
	if !passwordStrongEnough(req.Password) {
		return s.fail(domain.ErrWeakPassword)
	}

	userID, err := s.provider.VerifySessionToken(req.IDToken)
	if err != nil {
		return s.fail(err)
	}
	ident, err := s.provider.GetUser(ctx, userID)
	if err != nil {
		return s.fail(err)
	}
	if !ident.Anonymous {
		return s.fail(domain.ErrUserNotAnonymous)
	}

	if _, err := s.provider.GetUserByEmail(ctx, req.Email); err == nil {
		return s.fail(domain.ErrEmailAlreadyExists)
	} else if e := domain.AsError(err); e.Code != domain.ErrUserNotFound.Code {
		return s.fail(err)
	}

	verificationToken, err := token.New()
	if err != nil {
		return s.fail(err)
	}
	env, err := s.escrow.Encrypt(req.Password)
	if err != nil {
		return s.fail(err)
	}

	now := time.Now().UTC()
	rec := &domain.PendingVerification{
		ID:                id.New(),
		SessionToken:      req.IDToken,
		Email:             req.Email,
		EncryptedPassword: env.Ciphertext,
		KeySalt:           env.KeySalt,
		Nonce:             env.Nonce,
		TokenHash:         token.Hash(verificationToken),
		Completed:         false,
		CreatedAt:         now,
		ExpiresAt:         now.Add(domain.VerificationTTL).Unix(),
	}
	if err := s.store.Put(ctx, rec); err != nil {
		return s.fail(err)
	}

	link := fmt.Sprintf("%s/auth/complete-link?id=%s&token=%s",
		s.baseURL, url.QueryEscape(rec.ID), url.QueryEscape(verificationToken))
	body := fmt.Sprintf(
		"Confirm your email address to finish setting up your account.\r\n\r\n"+
			"Open this link within one hour:\r\n%s\r\n\r\n"+
			"If you did not request this, you can ignore this email.", link)

	if err := s.mailer.SendEmail(req.Email, "Confirm your account", body); err != nil {
		// Creation is atomic with delivery: roll the record back so a link
		// the user never received cannot linger in the store.
		if delErr := s.store.Delete(ctx, rec.ID); delErr != nil {
			slog.Warn("rollback of pending verification failed", "verification_id", rec.ID, "err", delErr)
		}
		slog.Error("verification email delivery failed", "email", req.Email, "err", err)
		return s.fail(domain.ErrEmailSendFailed)
	}

	// Only id, email and expiry go back to the caller; never the token or
	// any credential material.
	return domain.OK(map[string]any{
		"verification": map[string]any{
			"id":        rec.ID,
			"email":     rec.Email,
			"expiresAt": rec.ExpiresAt,
		},
	}, "Verification email sent")
}

// CompleteVerification is the second request of the workflow, reached from
// the email link. The store's conditional update is the single point that
// decides token validity, replay and expiry; a replayed link and a forged
// token produce the same invalid_token on purpose.
func (s *service) CompleteVerification(ctx context.Context, verificationID, verificationToken string) domain.AuthResult {
	if verificationID == "" || verificationToken == "" {
		return s.fail(domain.ErrInvalidRequest)
	}

	rec, err := s.store.MarkCompleted(ctx, verificationID, token.Hash(verificationToken))
	if err != nil {
		e := domain.AsError(err)
		if e.Code == domain.ErrLinkExpired.Code {
			if delErr := s.store.Delete(ctx, verificationID); delErr != nil {
				slog.Warn("delete of expired verification failed", "verification_id", verificationID, "err", delErr)
			}
		}
		return s.fail(err)
	}

	password, err := s.escrow.Decrypt(escrow.Envelope{
		Ciphertext: rec.EncryptedPassword,
		KeySalt:    rec.KeySalt,
		Nonce:      rec.Nonce,
	})
	if err != nil {
		slog.Error("escrowed password could not be decrypted", "verification_id", verificationID, "err", err)
		return s.fail(domain.ErrInternal)
	}

	return s.LinkAccount(ctx, rec.Email, password, rec.SessionToken)
}

// LinkAccount upgrades a verified anonymous identity to a credentialed one
// and mints fresh tokens for it.
func (s *service) LinkAccount(ctx context.Context, email, password, sessionToken string) domain.AuthResult {
	if email == "" || password == "" || sessionToken == "" {
		return s.fail(domain.ErrMissingFields)
	}
	if !validate.Email(email) {
		return s.fail(domain.ErrInvalidEmail)
	}
	if !passwordStrongEnough(password) {
		return s.fail(domain.ErrWeakPassword)
	}

	userID, err := s.provider.VerifySessionToken(sessionToken)
	if err != nil {
		return s.fail(err)
	}
	ident, err := s.provider.GetUser(ctx, userID)
	if err != nil {
		return s.fail(err)
	}
	if !ident.Anonymous {
		return s.fail(domain.ErrUserNotAnonymous)
	}

	// Time may have passed since creation; recheck uniqueness. The provider
	// still enforces it atomically in UpdateUser, this just gives the
	// cleaner error for the common case.
	if _, err := s.provider.GetUserByEmail(ctx, email); err == nil {
		return s.fail(domain.ErrEmailAlreadyExists)
	} else if e := domain.AsError(err); e.Code != domain.ErrUserNotFound.Code {
		return s.fail(err)
	}

	updated, err := s.provider.UpdateUser(ctx, userID, email, password)
	if err != nil {
		return s.fail(err)
	}

	custom, err := s.provider.CreateCustomToken(userID)
	if err != nil {
		return s.fail(err)
	}
	bundle, err := s.provider.ExchangeCustomToken(ctx, custom)
	if err != nil {
		return s.fail(err)
	}

	// Unlike the creation-time send, a failure here is only logged: the
	// account is already linked and blocking on a confirmation email would
	// strand the user. The asymmetry is deliberate.
	if err := s.provider.SendVerificationEmail(ctx, bundle.SessionToken); err != nil {
		slog.Warn("post-link verification email failed", "user_id", userID, "err", err)
	}

	return domain.OK(map[string]any{
		"user": &domain.Identity{
			ID:            updated.ID,
			Email:         updated.Email,
			EmailVerified: updated.EmailVerified,
			Anonymous:     false,
		},
		"idToken":      bundle.SessionToken,
		"refreshToken": bundle.RefreshToken,
		"expiresIn":    int64(bundle.ExpiresIn.Seconds()),
	}, "Account linked")
}

// Signin authenticates permanent credentials. An unverified email yields a
// distinguished email_not_verified result instead of tokens, and re-sends
// the verification email on a best-effort basis.
func (s *service) Signin(ctx context.Context, req LoginRequest) domain.AuthResult {
	if err := validate.Struct(req); err != nil {
		return s.fail(domain.ErrMissingFields.WithDetails(err.Error()))
	}
	if !validate.Email(req.Email) {
		return s.fail(domain.ErrInvalidEmail)
	}

	bundle, err := s.provider.SignInWithPassword(ctx, req.Email, req.Password)
	if err != nil {
		return s.fail(err)
	}
	ident, err := s.provider.GetUser(ctx, bundle.UserID)
	if err != nil {
		return s.fail(err)
	}
	if !ident.EmailVerified {
		if err := s.provider.SendVerificationEmail(ctx, bundle.SessionToken); err != nil {
			slog.Warn("re-send of verification email failed", "user_id", ident.ID, "err", err)
		}
		return s.fail(domain.ErrEmailNotVerified)
	}

	return domain.OK(map[string]any{
		"user":         ident,
		"idToken":      bundle.SessionToken,
		"refreshToken": bundle.RefreshToken,
		"expiresIn":    int64(bundle.ExpiresIn.Seconds()),
	}, "Signed in")
}

// SignInAnonymously creates a fresh anonymous session.
func (s *service) SignInAnonymously(ctx context.Context) domain.AuthResult {
	bundle, err := s.provider.SignUpAnonymous(ctx)
	if err != nil {
		return s.fail(err)
	}
	ident, err := s.provider.GetUser(ctx, bundle.UserID)
	if err != nil {
		return s.fail(err)
	}
	return domain.OK(map[string]any{
		"user":         ident,
		"idToken":      bundle.SessionToken,
		"refreshToken": bundle.RefreshToken,
		"expiresIn":    int64(bundle.ExpiresIn.Seconds()),
	}, "Anonymous session created")
}

// RefreshAuthToken exchanges a refresh token for a new token pair.
func (s *service) RefreshAuthToken(ctx context.Context, refreshToken string) domain.AuthResult {
	if refreshToken == "" {
		return s.fail(domain.ErrInvalidRequest)
	}
	bundle, err := s.provider.RefreshToken(ctx, refreshToken)
	if err != nil {
		e := domain.AsError(err)
		if e.Code == domain.ErrProviderUnreachable.Code || e.Code == domain.ErrInternal.Code {
			return s.fail(err)
		}
		return s.fail(domain.ErrTokenRefreshFailed.WithDetails(e.Details))
	}
	return domain.OK(map[string]any{
		"idToken":      bundle.SessionToken,
		"refreshToken": bundle.RefreshToken,
		"expiresIn":    int64(bundle.ExpiresIn.Seconds()),
	}, "Token refreshed")
}

// ValidateRequest checks the Authorization header of an incoming request,
// distinguishing each malformation so clients can tell what to fix.
func (s *service) ValidateRequest(ctx context.Context, authHeader string) domain.AuthResult {
	if authHeader == "" {
		return s.fail(domain.ErrMissingAuthHeader)
	}
	const prefix = "Bearer "
	if len(authHeader) < len(prefix) || authHeader[:len(prefix)] != prefix {
		return s.fail(domain.ErrInvalidAuthFormat)
	}
	tok := authHeader[len(prefix):]
	if tok == "" {
		return s.fail(domain.ErrMissingToken)
	}
	userID, err := s.provider.VerifySessionToken(tok)
	if err != nil {
		e := domain.AsError(err)
		return s.fail(domain.ErrTokenValidationFailed.WithDetails(e.Details))
	}
	return domain.OK(map[string]any{"userId": userID}, "Authentication valid")
}

// passwordStrongEnough enforces the minimum policy: at least 8 characters
// with at least one letter and one digit.
func passwordStrongEnough(password string) bool {
	if len(password) < 8 {
		return false
	}
	var hasLetter, hasDigit bool
	for _, r := range password {
		switch {
		case unicode.IsLetter(r):
			hasLetter = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}
	return hasLetter && hasDigit
}

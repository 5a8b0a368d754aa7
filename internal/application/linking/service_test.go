package linking

import (
	"context"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/weedscan-auth/internal/domain"
	"github.com/weedscan-auth/internal/pkg/escrow"
	"github.com/weedscan-auth/internal/pkg/token"
)

// --- mocks ---

type mockProvider struct{ mock.Mock }

func (m *mockProvider) VerifySessionToken(tok string) (string, error) {
	args := m.Called(tok)
	return args.String(0), args.Error(1)
}
func (m *mockProvider) GetUser(ctx context.Context, id string) (*domain.Identity, error) {
	args := m.Called(ctx, id)
	if u, _ := args.Get(0).(*domain.Identity); u != nil {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockProvider) GetUserByEmail(ctx context.Context, email string) (*domain.Identity, error) {
	args := m.Called(ctx, email)
	if u, _ := args.Get(0).(*domain.Identity); u != nil {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockProvider) UpdateUser(ctx context.Context, id, email, password string) (*domain.Identity, error) {
	args := m.Called(ctx, id, email, password)
	if u, _ := args.Get(0).(*domain.Identity); u != nil {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockProvider) CreateCustomToken(userID string) (string, error) {
	args := m.Called(userID)
	return args.String(0), args.Error(1)
}
func (m *mockProvider) ExchangeCustomToken(ctx context.Context, tok string) (*domain.TokenBundle, error) {
	args := m.Called(ctx, tok)
	if b, _ := args.Get(0).(*domain.TokenBundle); b != nil {
		return b, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockProvider) SignInWithPassword(ctx context.Context, email, password string) (*domain.TokenBundle, error) {
	args := m.Called(ctx, email, password)
	if b, _ := args.Get(0).(*domain.TokenBundle); b != nil {
		return b, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockProvider) SignUpAnonymous(ctx context.Context) (*domain.TokenBundle, error) {
	args := m.Called(ctx)
	if b, _ := args.Get(0).(*domain.TokenBundle); b != nil {
		return b, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockProvider) RefreshToken(ctx context.Context, refreshToken string) (*domain.TokenBundle, error) {
	args := m.Called(ctx, refreshToken)
	if b, _ := args.Get(0).(*domain.TokenBundle); b != nil {
		return b, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockProvider) SendVerificationEmail(ctx context.Context, sessionToken string) error {
	return m.Called(ctx, sessionToken).Error(0)
}

type mockStore struct{ mock.Mock }

func (m *mockStore) Put(ctx context.Context, v *domain.PendingVerification) error {
	return m.Called(ctx, v).Error(0)
}
func (m *mockStore) Get(ctx context.Context, id string) (*domain.PendingVerification, error) {
	args := m.Called(ctx, id)
	if v, _ := args.Get(0).(*domain.PendingVerification); v != nil {
		return v, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockStore) MarkCompleted(ctx context.Context, id, tokenHash string) (*domain.PendingVerification, error) {
	args := m.Called(ctx, id, tokenHash)
	if v, _ := args.Get(0).(*domain.PendingVerification); v != nil {
		return v, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockStore) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

type mockMailer struct{ mock.Mock }

func (m *mockMailer) SendEmail(to, subject, body string) error {
	return m.Called(to, subject, body).Error(0)
}

// --- builder ---

const testMasterKey = "000102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f"

func testEscrow(t *testing.T) *escrow.Escrow {
	t.Helper()
	e, err := escrow.New(testMasterKey)
	require.NoError(t, err)
	return e
}

func newTestService(t *testing.T, p *mockProvider, st *mockStore, ml *mockMailer) Service {
	t.Helper()
	return NewService(ServiceDeps{
		Provider: p,
		Store:    st,
		Escrow:   testEscrow(t),
		Mailer:   ml,
		BaseURL:  "https://app.example.com",
		DevMode:  true,
	})
}

func anonIdentity(id string) *domain.Identity {
	return &domain.Identity{ID: id, Anonymous: true}
}

// --- CreatePendingVerification ---

func TestCreatePendingVerification_WeakPassword_NoProviderCall(t *testing.T) {
	// nil collaborators: any I/O would panic, proving validation runs first.
	svc := newTestService(t, nil, nil, nil)

	res := svc.CreatePendingVerification(context.Background(), InitLinkRequest{
		IDToken: "anon-123", Email: "a@b.com", Password: "short1",
	})

	require.False(t, res.Success)
	assert.Equal(t, "weak_password", res.Error)
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
}

func TestCreatePendingVerification_PasswordWithoutDigit_Rejected(t *testing.T) {
	svc := newTestService(t, nil, nil, nil)
	res := svc.CreatePendingVerification(context.Background(), InitLinkRequest{
		IDToken: "anon-123", Email: "a@b.com", Password: "onlyletters",
	})
	assert.Equal(t, "weak_password", res.Error)
}

func TestCreatePendingVerification_InvalidEmail_NoProviderCall(t *testing.T) {
	svc := newTestService(t, nil, nil, nil)

	res := svc.CreatePendingVerification(context.Background(), InitLinkRequest{
		IDToken: "anon-123", Email: "not-an-email", Password: "Passw0rd1",
	})

	require.False(t, res.Success)
	assert.Equal(t, "invalid_email", res.Error)
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
}

func TestCreatePendingVerification_MissingFields(t *testing.T) {
	svc := newTestService(t, nil, nil, nil)
	res := svc.CreatePendingVerification(context.Background(), InitLinkRequest{Email: "a@b.com"})
	assert.Equal(t, "missing_fields", res.Error)
	// struct tags drive the check, so the failing fields are named
	details, _ := res.Details.(string)
	assert.Contains(t, details, "IDToken")
	assert.Contains(t, details, "Password")
	assert.NotContains(t, details, "Email")
}

func TestCreatePendingVerification_SessionNotAnonymous(t *testing.T) {
	p := &mockProvider{}
	p.On("VerifySessionToken", "tok").Return("u1", nil)
	p.On("GetUser", mock.Anything, "u1").Return(&domain.Identity{ID: "u1", Email: "old@b.com", Anonymous: false}, nil)

	svc := newTestService(t, p, nil, nil)
	res := svc.CreatePendingVerification(context.Background(), InitLinkRequest{
		IDToken: "tok", Email: "a@b.com", Password: "Passw0rd1",
	})

	assert.Equal(t, "user_not_anonymous", res.Error)
	assert.Equal(t, http.StatusForbidden, res.StatusCode)
}

func TestCreatePendingVerification_EmailTaken(t *testing.T) {
	p := &mockProvider{}
	p.On("VerifySessionToken", "tok").Return("u1", nil)
	p.On("GetUser", mock.Anything, "u1").Return(anonIdentity("u1"), nil)
	p.On("GetUserByEmail", mock.Anything, "a@b.com").Return(&domain.Identity{ID: "u2", Email: "a@b.com"}, nil)

	svc := newTestService(t, p, nil, nil)
	res := svc.CreatePendingVerification(context.Background(), InitLinkRequest{
		IDToken: "tok", Email: "a@b.com", Password: "Passw0rd1",
	})

	assert.Equal(t, "email_already_exists", res.Error)
	assert.Equal(t, http.StatusConflict, res.StatusCode)
}

func TestCreatePendingVerification_HappyPath(t *testing.T) {
	p := &mockProvider{}
	st := &mockStore{}
	ml := &mockMailer{}

	p.On("VerifySessionToken", "anon-123").Return("u1", nil)
	p.On("GetUser", mock.Anything, "u1").Return(anonIdentity("u1"), nil)
	p.On("GetUserByEmail", mock.Anything, "a@b.com").Return(nil, domain.ErrUserNotFound)

	var stored *domain.PendingVerification
	st.On("Put", mock.Anything, mock.AnythingOfType("*domain.PendingVerification")).
		Run(func(args mock.Arguments) {
			stored = args.Get(1).(*domain.PendingVerification)
		}).Return(nil)

	var mailBody string
	ml.On("SendEmail", "a@b.com", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			mailBody = args.String(2)
		}).Return(nil)

	svc := newTestService(t, p, st, ml)
	res := svc.CreatePendingVerification(context.Background(), InitLinkRequest{
		IDToken: "anon-123", Email: "a@b.com", Password: "Passw0rd1",
	})

	require.True(t, res.Success)
	require.NotNil(t, stored)

	// TTL invariant: expiry is exactly one hour after creation.
	assert.Equal(t, stored.CreatedAt.Add(time.Hour).Unix(), stored.ExpiresAt)
	assert.False(t, stored.Completed)
	assert.Equal(t, "anon-123", stored.SessionToken)

	// The stored password is not the plaintext.
	assert.NotContains(t, string(stored.EncryptedPassword), "Passw0rd1")

	// The emailed link carries the record id and a token matching the
	// stored hash.
	assert.Contains(t, mailBody, "https://app.example.com/auth/complete-link?id="+stored.ID)
	start := strings.Index(mailBody, "token=")
	require.GreaterOrEqual(t, start, 0)
	plainToken := mailBody[start+len("token="):]
	if end := strings.IndexAny(plainToken, "\r\n"); end >= 0 {
		plainToken = plainToken[:end]
	}
	assert.Equal(t, stored.TokenHash, token.Hash(plainToken))

	// Response exposes only id, email and expiry — never the token.
	data := res.Data.(map[string]any)
	verification := data["verification"].(map[string]any)
	assert.Equal(t, stored.ID, verification["id"])
	assert.Equal(t, "a@b.com", verification["email"])
	assert.Equal(t, stored.ExpiresAt, verification["expiresAt"])
	assert.Len(t, verification, 3)

	p.AssertExpectations(t)
	st.AssertExpectations(t)
	ml.AssertExpectations(t)
}

func TestCreatePendingVerification_MailFailure_RollsBackRecord(t *testing.T) {
	p := &mockProvider{}
	st := &mockStore{}
	ml := &mockMailer{}

	p.On("VerifySessionToken", "anon-123").Return("u1", nil)
	p.On("GetUser", mock.Anything, "u1").Return(anonIdentity("u1"), nil)
	p.On("GetUserByEmail", mock.Anything, "a@b.com").Return(nil, domain.ErrUserNotFound)

	var storedID string
	st.On("Put", mock.Anything, mock.AnythingOfType("*domain.PendingVerification")).
		Run(func(args mock.Arguments) {
			storedID = args.Get(1).(*domain.PendingVerification).ID
		}).Return(nil)
	st.On("Delete", mock.Anything, mock.MatchedBy(func(id string) bool { return id == storedID })).Return(nil)
	ml.On("SendEmail", "a@b.com", mock.Anything, mock.Anything).Return(assert.AnError)

	svc := newTestService(t, p, st, ml)
	res := svc.CreatePendingVerification(context.Background(), InitLinkRequest{
		IDToken: "anon-123", Email: "a@b.com", Password: "Passw0rd1",
	})

	require.False(t, res.Success)
	assert.Equal(t, "email_send_failed", res.Error)
	assert.Equal(t, http.StatusInternalServerError, res.StatusCode)
	st.AssertExpectations(t)
}

// --- CompleteVerification ---

func escrowedRecord(t *testing.T, password, plainToken string) *domain.PendingVerification {
	t.Helper()
	env, err := testEscrow(t).Encrypt(password)
	require.NoError(t, err)
	now := time.Now().UTC()
	return &domain.PendingVerification{
		ID:                "v1",
		SessionToken:      "anon-123",
		Email:             "a@b.com",
		EncryptedPassword: env.Ciphertext,
		KeySalt:           env.KeySalt,
		Nonce:             env.Nonce,
		TokenHash:         token.Hash(plainToken),
		Completed:         true,
		CreatedAt:         now,
		ExpiresAt:         now.Add(time.Hour).Unix(),
	}
}

func TestCompleteVerification_MissingParams(t *testing.T) {
	svc := newTestService(t, nil, nil, nil)
	res := svc.CompleteVerification(context.Background(), "", "tok")
	assert.Equal(t, "invalid_request", res.Error)
}

func TestCompleteVerification_RecordNotFound(t *testing.T) {
	st := &mockStore{}
	st.On("MarkCompleted", mock.Anything, "nope", mock.Anything).Return(nil, domain.ErrVerificationNotFound)

	svc := newTestService(t, nil, st, nil)
	res := svc.CompleteVerification(context.Background(), "nope", "tok")

	assert.Equal(t, "verification_not_found", res.Error)
	assert.Equal(t, http.StatusNotFound, res.StatusCode)
}

func TestCompleteVerification_ReplayOrWrongToken_SameError(t *testing.T) {
	// The store collapses token mismatch and already-completed into one
	// error; both surface as invalid_token / 401.
	st := &mockStore{}
	st.On("MarkCompleted", mock.Anything, "v1", mock.Anything).Return(nil, domain.ErrInvalidToken)

	svc := newTestService(t, nil, st, nil)
	res := svc.CompleteVerification(context.Background(), "v1", "wrong-or-replayed")

	assert.Equal(t, "invalid_token", res.Error)
	assert.Equal(t, http.StatusUnauthorized, res.StatusCode)
}

func TestCompleteVerification_Expired_DeletesRecord(t *testing.T) {
	st := &mockStore{}
	st.On("MarkCompleted", mock.Anything, "v1", mock.Anything).Return(nil, domain.ErrLinkExpired)
	st.On("Delete", mock.Anything, "v1").Return(nil)

	svc := newTestService(t, nil, st, nil)
	res := svc.CompleteVerification(context.Background(), "v1", "tok")

	assert.Equal(t, "link_expired", res.Error)
	assert.Equal(t, http.StatusGone, res.StatusCode)
	st.AssertExpectations(t)
}

func TestCompleteVerification_HappyPath_LinksAccount(t *testing.T) {
	plainToken, err := token.New()
	require.NoError(t, err)
	rec := escrowedRecord(t, "Passw0rd1", plainToken)

	st := &mockStore{}
	st.On("MarkCompleted", mock.Anything, "v1", token.Hash(plainToken)).Return(rec, nil)

	p := &mockProvider{}
	p.On("VerifySessionToken", "anon-123").Return("u1", nil)
	p.On("GetUser", mock.Anything, "u1").Return(anonIdentity("u1"), nil)
	p.On("GetUserByEmail", mock.Anything, "a@b.com").Return(nil, domain.ErrUserNotFound)
	p.On("UpdateUser", mock.Anything, "u1", "a@b.com", "Passw0rd1").
		Return(&domain.Identity{ID: "u1", Email: "a@b.com"}, nil)
	p.On("CreateCustomToken", "u1").Return("custom-tok", nil)
	p.On("ExchangeCustomToken", mock.Anything, "custom-tok").
		Return(&domain.TokenBundle{UserID: "u1", SessionToken: "new-id-tok", RefreshToken: "new-refresh", ExpiresIn: time.Hour}, nil)
	p.On("SendVerificationEmail", mock.Anything, "new-id-tok").Return(nil)

	svc := newTestService(t, p, st, nil)
	res := svc.CompleteVerification(context.Background(), "v1", plainToken)

	require.True(t, res.Success)
	data := res.Data.(map[string]any)
	assert.Equal(t, "new-id-tok", data["idToken"])
	assert.Equal(t, "new-refresh", data["refreshToken"])

	user := data["user"].(*domain.Identity)
	assert.Equal(t, "a@b.com", user.Email)
	assert.False(t, user.Anonymous)

	p.AssertExpectations(t)
	st.AssertExpectations(t)
}

// --- LinkAccount ---

func TestLinkAccount_RejectsNonAnonymousIdentity(t *testing.T) {
	p := &mockProvider{}
	p.On("VerifySessionToken", "tok").Return("u1", nil)
	p.On("GetUser", mock.Anything, "u1").Return(&domain.Identity{
		ID: "u1", Email: "existing@b.com", Anonymous: false, ProviderIDs: []string{"password"},
	}, nil)

	svc := newTestService(t, p, nil, nil)
	res := svc.LinkAccount(context.Background(), "a@b.com", "Passw0rd1", "tok")

	assert.Equal(t, "user_not_anonymous", res.Error)
	assert.Equal(t, http.StatusForbidden, res.StatusCode)
}

func TestLinkAccount_LateEmailCollision(t *testing.T) {
	p := &mockProvider{}
	p.On("VerifySessionToken", "tok").Return("u1", nil)
	p.On("GetUser", mock.Anything, "u1").Return(anonIdentity("u1"), nil)
	p.On("GetUserByEmail", mock.Anything, "a@b.com").Return(&domain.Identity{ID: "u2"}, nil)

	svc := newTestService(t, p, nil, nil)
	res := svc.LinkAccount(context.Background(), "a@b.com", "Passw0rd1", "tok")

	assert.Equal(t, "email_already_exists", res.Error)
}

func TestLinkAccount_PostLinkEmailFailure_DoesNotFailOperation(t *testing.T) {
	p := &mockProvider{}
	p.On("VerifySessionToken", "tok").Return("u1", nil)
	p.On("GetUser", mock.Anything, "u1").Return(anonIdentity("u1"), nil)
	p.On("GetUserByEmail", mock.Anything, "a@b.com").Return(nil, domain.ErrUserNotFound)
	p.On("UpdateUser", mock.Anything, "u1", "a@b.com", "Passw0rd1").
		Return(&domain.Identity{ID: "u1", Email: "a@b.com"}, nil)
	p.On("CreateCustomToken", "u1").Return("custom-tok", nil)
	p.On("ExchangeCustomToken", mock.Anything, "custom-tok").
		Return(&domain.TokenBundle{UserID: "u1", SessionToken: "id-tok", RefreshToken: "r"}, nil)
	p.On("SendVerificationEmail", mock.Anything, "id-tok").Return(assert.AnError)

	svc := newTestService(t, p, nil, nil)
	res := svc.LinkAccount(context.Background(), "a@b.com", "Passw0rd1", "tok")

	assert.True(t, res.Success)
}

func TestLinkAccount_StaleSessionToken(t *testing.T) {
	p := &mockProvider{}
	p.On("VerifySessionToken", "stale").Return("", domain.ErrInvalidSession)

	svc := newTestService(t, p, nil, nil)
	res := svc.LinkAccount(context.Background(), "a@b.com", "Passw0rd1", "stale")

	assert.Equal(t, "invalid_session", res.Error)
	assert.Equal(t, http.StatusUnauthorized, res.StatusCode)
}

// --- Signin ---

func TestSignin_MissingFields_NoProviderCall(t *testing.T) {
	svc := newTestService(t, nil, nil, nil)
	res := svc.Signin(context.Background(), LoginRequest{Email: "a@b.com"})
	assert.Equal(t, "missing_fields", res.Error)
	details, _ := res.Details.(string)
	assert.Contains(t, details, "Password")
}

func TestSignin_InvalidCredentials(t *testing.T) {
	p := &mockProvider{}
	p.On("SignInWithPassword", mock.Anything, "a@b.com", "Wrong1234").
		Return(nil, domain.ErrInvalidCredentials)

	svc := newTestService(t, p, nil, nil)
	res := svc.Signin(context.Background(), LoginRequest{Email: "a@b.com", Password: "Wrong1234"})

	assert.Equal(t, "invalid_credentials", res.Error)
	assert.Equal(t, http.StatusUnauthorized, res.StatusCode)
}

func TestSignin_UnverifiedEmail_DistinguishedResult(t *testing.T) {
	p := &mockProvider{}
	p.On("SignInWithPassword", mock.Anything, "a@b.com", "Passw0rd1").
		Return(&domain.TokenBundle{UserID: "u1", SessionToken: "id-tok"}, nil)
	p.On("GetUser", mock.Anything, "u1").
		Return(&domain.Identity{ID: "u1", Email: "a@b.com", EmailVerified: false}, nil)
	p.On("SendVerificationEmail", mock.Anything, "id-tok").Return(nil)

	svc := newTestService(t, p, nil, nil)
	res := svc.Signin(context.Background(), LoginRequest{Email: "a@b.com", Password: "Passw0rd1"})

	require.False(t, res.Success)
	assert.Equal(t, "email_not_verified", res.Error)
	assert.Equal(t, http.StatusForbidden, res.StatusCode)
	assert.Nil(t, res.Data)
	p.AssertExpectations(t)
}

func TestSignin_HappyPath(t *testing.T) {
	p := &mockProvider{}
	p.On("SignInWithPassword", mock.Anything, "a@b.com", "Passw0rd1").
		Return(&domain.TokenBundle{UserID: "u1", SessionToken: "id-tok", RefreshToken: "r", ExpiresIn: time.Hour}, nil)
	p.On("GetUser", mock.Anything, "u1").
		Return(&domain.Identity{ID: "u1", Email: "a@b.com", EmailVerified: true}, nil)

	svc := newTestService(t, p, nil, nil)
	res := svc.Signin(context.Background(), LoginRequest{Email: "a@b.com", Password: "Passw0rd1"})

	require.True(t, res.Success)
	data := res.Data.(map[string]any)
	assert.Equal(t, "id-tok", data["idToken"])
	assert.Equal(t, int64(3600), data["expiresIn"])
}

// --- SignInAnonymously ---

func TestSignInAnonymously(t *testing.T) {
	p := &mockProvider{}
	p.On("SignUpAnonymous", mock.Anything).
		Return(&domain.TokenBundle{UserID: "u9", SessionToken: "anon-tok", RefreshToken: "anon-r"}, nil)
	p.On("GetUser", mock.Anything, "u9").Return(anonIdentity("u9"), nil)

	svc := newTestService(t, p, nil, nil)
	res := svc.SignInAnonymously(context.Background())

	require.True(t, res.Success)
	data := res.Data.(map[string]any)
	user := data["user"].(*domain.Identity)
	assert.True(t, user.Anonymous)
	assert.Equal(t, "anon-tok", data["idToken"])
}

// --- RefreshAuthToken ---

func TestRefreshAuthToken_Garbage(t *testing.T) {
	p := &mockProvider{}
	p.On("RefreshToken", mock.Anything, "garbage").Return(nil, domain.ErrTokenRefreshFailed)

	svc := newTestService(t, p, nil, nil)
	res := svc.RefreshAuthToken(context.Background(), "garbage")

	require.False(t, res.Success)
	assert.Equal(t, "token_refresh_failed", res.Error)
	assert.Equal(t, http.StatusUnauthorized, res.StatusCode)
}

func TestRefreshAuthToken_Missing(t *testing.T) {
	svc := newTestService(t, nil, nil, nil)
	res := svc.RefreshAuthToken(context.Background(), "")
	assert.Equal(t, "invalid_request", res.Error)
}

func TestRefreshAuthToken_HappyPath(t *testing.T) {
	p := &mockProvider{}
	p.On("RefreshToken", mock.Anything, "good-refresh").
		Return(&domain.TokenBundle{SessionToken: "new-id", RefreshToken: "new-refresh", ExpiresIn: time.Hour}, nil)

	svc := newTestService(t, p, nil, nil)
	res := svc.RefreshAuthToken(context.Background(), "good-refresh")

	require.True(t, res.Success)
	data := res.Data.(map[string]any)
	assert.Equal(t, "new-id", data["idToken"])
	assert.Equal(t, "new-refresh", data["refreshToken"])
}

// --- ValidateRequest ---

func TestValidateRequest_Taxonomy(t *testing.T) {
	cases := []struct {
		name    string
		header  string
		wantErr string
	}{
		{"missing header", "", "missing_authorization_header"},
		{"wrong scheme", "Basic abc123", "invalid_authorization_format"},
		{"empty token", "Bearer ", "missing_token"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := newTestService(t, nil, nil, nil)
			res := svc.ValidateRequest(context.Background(), tc.header)
			assert.Equal(t, tc.wantErr, res.Error)
			assert.Equal(t, http.StatusUnauthorized, res.StatusCode)
		})
	}
}

func TestValidateRequest_BadToken(t *testing.T) {
	p := &mockProvider{}
	p.On("VerifySessionToken", "forged").Return("", domain.ErrInvalidSession)

	svc := newTestService(t, p, nil, nil)
	res := svc.ValidateRequest(context.Background(), "Bearer forged")

	assert.Equal(t, "token_validation_failed", res.Error)
}

func TestValidateRequest_Valid(t *testing.T) {
	p := &mockProvider{}
	p.On("VerifySessionToken", "good").Return("u1", nil)

	svc := newTestService(t, p, nil, nil)
	res := svc.ValidateRequest(context.Background(), "Bearer good")

	require.True(t, res.Success)
	assert.Equal(t, "Authentication valid", res.Message)
}

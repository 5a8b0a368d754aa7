package idp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/weedscan-auth/internal/config"
	"github.com/weedscan-auth/internal/domain"
)

// Client wraps the identity provider's REST API (identity-toolkit style
// account endpoints plus a secure-token refresh endpoint). Every call has a
// bounded timeout and is never retried automatically; retry is the caller's
// decision.
type Client struct {
	http     *http.Client
	apiKey   string
	baseURL  string
	tokenURL string
	tokens   *TokenKit
}

func NewClient(cfg *config.Config, tokens *TokenKit) *Client {
	return &Client{
		http:     &http.Client{Timeout: cfg.ProviderTimeout},
		apiKey:   cfg.ProviderAPIKey,
		baseURL:  strings.TrimRight(cfg.ProviderBaseURL, "/"),
		tokenURL: strings.TrimRight(cfg.ProviderTokenURL, "/"),
		tokens:   tokens,
	}
}

// lookupUser is the provider's wire representation of an account record.
type lookupUser struct {
	LocalID          string `json:"localId"`
	Email            string `json:"email"`
	EmailVerified    bool   `json:"emailVerified"`
	Disabled         bool   `json:"disabled"`
	PasswordHash     string `json:"passwordHash"`
	CreatedAt        string `json:"createdAt"` // ms since epoch, as a string
	ProviderUserInfo []struct {
		ProviderID string `json:"providerId"`
	} `json:"providerUserInfo"`
}

// identity converts a wire record into a domain Identity. An account is
// anonymous when it has neither an email, a password hash, nor any linked
// provider — decided here, once, instead of at every call site.
func (u *lookupUser) identity() *domain.Identity {
	providers := make([]string, 0, len(u.ProviderUserInfo))
	for _, p := range u.ProviderUserInfo {
		providers = append(providers, p.ProviderID)
	}
	ident := &domain.Identity{
		ID:            u.LocalID,
		Email:         u.Email,
		EmailVerified: u.EmailVerified,
		Disabled:      u.Disabled,
		ProviderIDs:   providers,
		Anonymous:     u.Email == "" && u.PasswordHash == "" && len(providers) == 0,
	}
	if ms, err := strconv.ParseInt(u.CreatedAt, 10, 64); err == nil {
		ident.CreatedAt = time.UnixMilli(ms)
	}
	return ident
}

type tokenResponse struct {
	LocalID      string `json:"localId"`
	IDToken      string `json:"idToken"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    string `json:"expiresIn"`
}

func (t *tokenResponse) bundle() *domain.TokenBundle {
	b := &domain.TokenBundle{
		UserID:       t.LocalID,
		SessionToken: t.IDToken,
		RefreshToken: t.RefreshToken,
	}
	if secs, err := strconv.ParseInt(t.ExpiresIn, 10, 64); err == nil {
		b.ExpiresIn = time.Duration(secs) * time.Second
	}
	return b
}

// VerifySessionToken validates the token locally and returns the user id
// it belongs to.
func (c *Client) VerifySessionToken(token string) (string, error) {
	claims, err := c.tokens.VerifySessionToken(token)
	if err != nil {
		return "", fmt.Errorf("verify session token: %w", domain.ErrInvalidSession.WithDetails(err.Error()))
	}
	return claims.UserID, nil
}

func (c *Client) GetUser(ctx context.Context, id string) (*domain.Identity, error) {
	return c.lookup(ctx, map[string]any{"localId": []string{id}})
}

func (c *Client) GetUserByEmail(ctx context.Context, email string) (*domain.Identity, error) {
	return c.lookup(ctx, map[string]any{"email": []string{email}})
}

func (c *Client) lookup(ctx context.Context, req map[string]any) (*domain.Identity, error) {
	var resp struct {
		Users []lookupUser `json:"users"`
	}
	if err := c.post(ctx, c.accountsURL("lookup"), req, &resp); err != nil {
		return nil, err
	}
	if len(resp.Users) == 0 {
		return nil, domain.ErrUserNotFound
	}
	return resp.Users[0].identity(), nil
}

// UpdateUser sets email and password on an existing account, upgrading an
// anonymous identity to a credentialed one. The provider rejects with
// EMAIL_EXISTS when the email collides with another account.
func (c *Client) UpdateUser(ctx context.Context, id, email, password string) (*domain.Identity, error) {
	var resp lookupUser
	req := map[string]any{
		"localId":  id,
		"email":    email,
		"password": password,
	}
	if err := c.post(ctx, c.accountsURL("update"), req, &resp); err != nil {
		return nil, err
	}
	if resp.LocalID == "" {
		resp.LocalID = id
	}
	if resp.Email == "" {
		resp.Email = email
	}
	ident := resp.identity()
	ident.Anonymous = false
	return ident, nil
}

// CreateCustomToken mints a signed assertion for the user id.
func (c *Client) CreateCustomToken(userID string) (string, error) {
	return c.tokens.SignCustomToken(userID)
}

// ExchangeCustomToken trades a custom token for session/refresh tokens.
func (c *Client) ExchangeCustomToken(ctx context.Context, token string) (*domain.TokenBundle, error) {
	var resp tokenResponse
	req := map[string]any{"token": token, "returnSecureToken": true}
	if err := c.post(ctx, c.accountsURL("signInWithCustomToken"), req, &resp); err != nil {
		return nil, err
	}
	return resp.bundle(), nil
}

func (c *Client) SignInWithPassword(ctx context.Context, email, password string) (*domain.TokenBundle, error) {
	var resp tokenResponse
	req := map[string]any{"email": email, "password": password, "returnSecureToken": true}
	if err := c.post(ctx, c.accountsURL("signInWithPassword"), req, &resp); err != nil {
		return nil, err
	}
	return resp.bundle(), nil
}

// SignUpAnonymous creates a new anonymous account and returns its tokens.
func (c *Client) SignUpAnonymous(ctx context.Context) (*domain.TokenBundle, error) {
	var resp tokenResponse
	req := map[string]any{"returnSecureToken": true}
	if err := c.post(ctx, c.accountsURL("signUp"), req, &resp); err != nil {
		return nil, err
	}
	return resp.bundle(), nil
}

// RefreshToken exchanges a refresh token for a fresh token pair via the
// secure-token endpoint. That endpoint speaks form encoding and snake_case.
func (c *Client) RefreshToken(ctx context.Context, refreshToken string) (*domain.TokenBundle, error) {
	form := url.Values{}
	form.Set("grant_type", "refresh_token")
	form.Set("refresh_token", refreshToken)

	endpoint := fmt.Sprintf("%s/token?key=%s", c.tokenURL, url.QueryEscape(c.apiKey))
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	httpResp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("refresh token: %w", domain.ErrProviderUnreachable.WithDetails(err.Error()))
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode >= http.StatusBadRequest {
		return nil, decodeProviderError(httpResp.Body, httpResp.StatusCode)
	}

	var resp struct {
		UserID       string `json:"user_id"`
		IDToken      string `json:"id_token"`
		RefreshToken string `json:"refresh_token"`
		ExpiresIn    string `json:"expires_in"`
	}
	if err := json.NewDecoder(httpResp.Body).Decode(&resp); err != nil {
		return nil, fmt.Errorf("decode refresh response: %w", err)
	}
	b := &domain.TokenBundle{
		UserID:       resp.UserID,
		SessionToken: resp.IDToken,
		RefreshToken: resp.RefreshToken,
	}
	if secs, err := strconv.ParseInt(resp.ExpiresIn, 10, 64); err == nil {
		b.ExpiresIn = time.Duration(secs) * time.Second
	}
	return b, nil
}

// SendVerificationEmail asks the provider to deliver its own
// address-verification email for the session's account.
func (c *Client) SendVerificationEmail(ctx context.Context, sessionToken string) error {
	var resp struct {
		Email string `json:"email"`
	}
	req := map[string]any{"requestType": "VERIFY_EMAIL", "idToken": sessionToken}
	return c.post(ctx, c.accountsURL("sendOobCode"), req, &resp)
}

func (c *Client) accountsURL(action string) string {
	return fmt.Sprintf("%s/accounts:%s?key=%s", c.baseURL, action, url.QueryEscape(c.apiKey))
}

func (c *Client) post(ctx context.Context, endpoint string, in, out any) error {
	payload, err := json.Marshal(in)
	if err != nil {
		return err
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	httpResp, err := c.http.Do(httpReq)
	if err != nil {
		return fmt.Errorf("identity provider call: %w", domain.ErrProviderUnreachable.WithDetails(err.Error()))
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode >= http.StatusBadRequest {
		return decodeProviderError(httpResp.Body, httpResp.StatusCode)
	}
	return json.NewDecoder(httpResp.Body).Decode(out)
}

// decodeProviderError translates the provider's {"error":{"message":CODE}}
// body through the domain taxonomy. A body that doesn't match the expected
// shape falls through to internal_error with the status preserved.
func decodeProviderError(body io.Reader, status int) error {
	var e struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.NewDecoder(body).Decode(&e); err != nil || e.Error.Message == "" {
		return domain.ErrInternal.WithDetails(fmt.Sprintf("provider status %d", status))
	}
	return domain.FromProviderCode(e.Error.Message)
}

package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Error is returned when the identity provider rejects a request.
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *Error) Error() string {
	return e.Message
}

type errorEnvelope struct {
	Error Error `json:"error"`
}

type credentialsRequest struct {
	Email             string `json:"email"`
	Password          string `json:"password"`
	ReturnSecureToken bool   `json:"returnSecureToken"`
}

type verificationRequest struct {
	RequestType string `json:"requestType"`
	IDToken     string `json:"idToken"`
}

type lookupRequest struct {
	IDToken string `json:"idToken"`
}

type lookupResponse struct {
	Users []UserInfo `json:"users"`
}

// UserInfo is the provider's account record for an ID token.
type UserInfo struct {
	LocalID       string `json:"localId"`
	Email         string `json:"email"`
	EmailVerified bool   `json:"emailVerified"`
}

// SignUpResponse is the provider's answer to a new registration.
type SignUpResponse struct {
	IDToken      string `json:"idToken"`
	Email        string `json:"email"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    string `json:"expiresIn"`
	LocalID      string `json:"localId"`
}

// SignInResponse is the provider's answer to a password sign-in.
type SignInResponse struct {
	IDToken      string `json:"idToken"`
	Email        string `json:"email"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    string `json:"expiresIn"`
	LocalID      string `json:"localId"`
	Registered   bool   `json:"registered"`
}

// Client talks to an identity-toolkit style REST API
// ({base}:signUp, {base}:signInWithPassword, {base}:lookup, {base}:sendOobCode).
type Client struct {
	httpClient  *http.Client
	baseAddress string
	apiKey      string
}

func NewClient(httpClient *http.Client, baseAddress, apiKey string) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{
		httpClient:  httpClient,
		baseAddress: strings.TrimRight(baseAddress, "/"),
		apiKey:      apiKey,
	}
}

func (c *Client) SignUp(ctx context.Context, email, password string) (*SignUpResponse, error) {
	var resp SignUpResponse
	req := credentialsRequest{Email: email, Password: password, ReturnSecureToken: true}
	if err := c.post(ctx, "signUp", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) SignIn(ctx context.Context, email, password string) (*SignInResponse, error) {
	var resp SignInResponse
	req := credentialsRequest{Email: email, Password: password, ReturnSecureToken: true}
	if err := c.post(ctx, "signInWithPassword", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// LookupUser returns the account behind idToken, including whether its email
// address has been verified.
func (c *Client) LookupUser(ctx context.Context, idToken string) (*UserInfo, error) {
	var resp lookupResponse
	if err := c.post(ctx, "lookup", lookupRequest{IDToken: idToken}, &resp); err != nil {
		return nil, err
	}
	if len(resp.Users) == 0 {
		return nil, &Error{Code: http.StatusBadRequest, Message: "USER_NOT_FOUND"}
	}
	return &resp.Users[0], nil
}

// SendEmailVerification asks the provider to mail a verification link to the
// owner of idToken.
func (c *Client) SendEmailVerification(ctx context.Context, idToken string) error {
	req := verificationRequest{RequestType: "VERIFY_EMAIL", IDToken: idToken}
	return c.post(ctx, "sendOobCode", req, nil)
}

func (c *Client) post(ctx context.Context, method string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to encode %s request: %w", method, err)
	}

	endpoint := fmt.Sprintf("%s:%s?key=%s", c.baseAddress, method, url.QueryEscape(c.apiKey))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build %s request: %w", method, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s request failed: %w", method, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var envelope errorEnvelope
		if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil || envelope.Error.Message == "" {
			return &Error{Code: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
		}
		return &envelope.Error
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", method, err)
	}
	return nil
}

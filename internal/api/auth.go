package api

import (
	"context"
	"net/http"

	"taskflow/internal/session"
)

// Credentials is the login request body.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Registration is the register request body.
type Registration struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// PasswordReset is the reset-password request body.
type PasswordReset struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

// LoginResponse is returned by POST /auth/login. Older servers send only
// token and user.
type LoginResponse struct {
	AccessToken  string       `json:"accessToken"`
	Token        string       `json:"token"`
	RefreshToken string       `json:"refreshToken"`
	ExpiresIn    int64        `json:"expiresIn"` // seconds
	User         session.User `json:"user"`
}

// BearerToken returns the access token under whichever name the server
// used.
func (r LoginResponse) BearerToken() string {
	if r.AccessToken != "" {
		return r.AccessToken
	}
	return r.Token
}

// MessageResponse is the body of endpoints that only acknowledge.
type MessageResponse struct {
	Message string `json:"message"`
}

// Login exchanges credentials for tokens.
func (c *Client) Login(ctx context.Context, creds Credentials) (LoginResponse, error) {
	var resp LoginResponse
	err := c.do(ctx, http.MethodPost, "/auth/login", creds, &resp)
	return resp, err
}

// Register creates an account.
func (c *Client) Register(ctx context.Context, reg Registration) (MessageResponse, error) {
	var resp MessageResponse
	err := c.do(ctx, http.MethodPost, "/auth/register", reg, &resp)
	return resp, err
}

// ForgotPassword asks the server to send a reset link to email.
func (c *Client) ForgotPassword(ctx context.Context, email string) (MessageResponse, error) {
	var resp MessageResponse
	err := c.do(ctx, http.MethodPost, "/auth/forgot-password", map[string]string{"email": email}, &resp)
	return resp, err
}

// ResetPassword sets a new password using a reset token.
func (c *Client) ResetPassword(ctx context.Context, reset PasswordReset) (MessageResponse, error) {
	var resp MessageResponse
	err := c.do(ctx, http.MethodPost, "/auth/reset-password", reset, &resp)
	return resp, err
}

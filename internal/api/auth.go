package api

import (
	"context"
	"net/http"

	"github.com/kbrands/storefront-go/internal/model"
)

// Login exchanges credentials for a bearer token.
func (c *Client) Login(ctx context.Context, email, password string) (model.AuthResponse, error) {
	var resp model.AuthResponse
	err := c.do(ctx, http.MethodPost, "/api/auth/login/", model.LoginRequest{
		Email:    email,
		Password: password,
	}, &resp)
	return resp, err
}

// Register creates an account and returns a bearer token for it.
func (c *Client) Register(ctx context.Context, req model.RegisterRequest) (model.AuthResponse, error) {
	var resp model.AuthResponse
	err := c.do(ctx, http.MethodPost, "/api/auth/register/", req, &resp)
	return resp, err
}

// Profile fetches the authenticated user's profile.
func (c *Client) Profile(ctx context.Context) (model.Profile, error) {
	var profile model.Profile
	err := c.do(ctx, http.MethodGet, "/api/auth/profile/", nil, &profile)
	return profile, err
}

// UpdateProfile applies a partial profile update and returns the new profile.
func (c *Client) UpdateProfile(ctx context.Context, update model.ProfileUpdate) (model.Profile, error) {
	var profile model.Profile
	err := c.do(ctx, http.MethodPut, "/api/auth/profile/", update, &profile)
	return profile, err
}

// ForgotPassword requests a password reset token for the given email.
func (c *Client) ForgotPassword(ctx context.Context, email string) error {
	return c.do(ctx, http.MethodPost, "/api/auth/forgot-password/", map[string]string{
		"email": email,
	}, nil)
}

// ResetPassword sets a new password using a reset token.
func (c *Client) ResetPassword(ctx context.Context, resetToken, newPassword string) error {
	return c.do(ctx, http.MethodPost, "/api/auth/reset-password/", map[string]string{
		"token":        resetToken,
		"new_password": newPassword,
	}, nil)
}

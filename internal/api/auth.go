package api

import (
	"context"
	"net/http"

	"github.com/styrcan/pulse/internal/errors"
)

// loginRequest is the login payload.
type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login exchanges credentials for a token pair plus the user and company
// records. Credential failures surface as AUTH-001; the caller's session
// state is untouched on error.
func (c *Client) Login(ctx context.Context, email, password string) (*AuthResponse, error) {
	resp, err := c.doRequest(ctx, http.MethodPost, "/api/auth/login", loginRequest{
		Email:    email,
		Password: password,
	})
	if err != nil {
		return nil, err
	}

	var authResp AuthResponse
	if err := parseResponse(resp, &authResp); err != nil {
		if errors.HasCode(err, errors.ErrCodeAPIUnauthorized) {
			return nil, errors.NewInvalidCredentialsError()
		}
		return nil, err
	}

	c.SetToken(authResp.AccessToken)
	return &authResp, nil
}

// Register creates a new user and company, returning the same payload as
// login so the caller is immediately authenticated.
func (c *Client) Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error) {
	resp, err := c.doRequest(ctx, http.MethodPost, "/api/auth/register", req)
	if err != nil {
		return nil, err
	}

	var authResp AuthResponse
	if err := parseResponse(resp, &authResp); err != nil {
		return nil, errors.Wrap(errors.ErrCodeAuthRegistrationFailed, "registration failed", err)
	}

	c.SetToken(authResp.AccessToken)
	return &authResp, nil
}

// Logout invalidates the server-side session. Callers treat failure as
// non-fatal: local logout proceeds regardless.
func (c *Client) Logout(ctx context.Context) error {
	resp, err := c.doRequest(ctx, http.MethodPost, "/api/auth/logout", nil)
	if err != nil {
		return err
	}
	return parseResponse(resp, nil)
}

// ForgotPassword requests a password-reset email. The API answers
// uniformly whether or not the address exists, so no account enumeration
// is possible and no error distinguishes the two cases.
func (c *Client) ForgotPassword(ctx context.Context, email string) error {
	resp, err := c.doRequest(ctx, http.MethodPost, "/api/auth/forgot-password", map[string]string{
		"email": email,
	})
	if err != nil {
		return err
	}
	return parseResponse(resp, nil)
}

// ResetPassword completes a password reset using the emailed token.
func (c *Client) ResetPassword(ctx context.Context, token, newPassword, confirmPassword string) error {
	resp, err := c.doRequest(ctx, http.MethodPost, "/api/auth/reset-password", map[string]string{
		"token":            token,
		"new_password":     newPassword,
		"confirm_password": confirmPassword,
	})
	if err != nil {
		return err
	}
	if err := parseResponse(resp, nil); err != nil {
		return errors.Wrap(errors.ErrCodeAuthResetFailed, "password reset failed", err)
	}
	return nil
}

// GetCurrentUser retrieves the authenticated user's record.
func (c *Client) GetCurrentUser(ctx context.Context) (*User, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, "/api/users/me", nil)
	if err != nil {
		return nil, err
	}

	var user User
	if err := parseResponse(resp, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateProfile updates the mutable fields of the current user and
// returns the refreshed record.
func (c *Client) UpdateProfile(ctx context.Context, update ProfileUpdate) (*User, error) {
	resp, err := c.doRequest(ctx, http.MethodPut, "/api/users/me", update)
	if err != nil {
		return nil, err
	}

	var user User
	if err := parseResponse(resp, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// GetCurrentCompany retrieves the authenticated user's company.
func (c *Client) GetCurrentCompany(ctx context.Context) (*Company, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, "/api/companies/current", nil)
	if err != nil {
		return nil, err
	}

	var company Company
	if err := parseResponse(resp, &company); err != nil {
		return nil, err
	}
	return &company, nil
}

package client

import (
	"context"
	"net/http"

	"ecofinds_backend/models"
)

type authResponse struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

// ProfileUpdate holds the profile fields to change; nil fields are left as they are.
type ProfileUpdate struct {
	Name      *string `json:"name,omitempty"`
	Bio       *string `json:"bio,omitempty"`
	Location  *string `json:"location,omitempty"`
	Phone     *string `json:"phone,omitempty"`
	Website   *string `json:"website,omitempty"`
	AvatarURL *string `json:"avatar_url,omitempty"`
}

func (c *Client) startSession(ctx context.Context, path string, body interface{}) (*Session, error) {
	var resp authResponse
	if err := c.do(ctx, http.MethodPost, path, nil, body, &resp); err != nil {
		return nil, err
	}
	s := &Session{Token: resp.Token, User: resp.User}
	if err := c.Store.Save(s); err != nil {
		return nil, err
	}
	return s, nil
}

func (c *Client) Login(ctx context.Context, email, password string) (*Session, error) {
	return c.startSession(ctx, "/api/auth/login", map[string]string{
		"email":    email,
		"password": password,
	})
}

func (c *Client) Signup(ctx context.Context, name, email, password string) (*Session, error) {
	return c.startSession(ctx, "/api/auth/register", map[string]string{
		"name":     name,
		"email":    email,
		"password": password,
	})
}

// Logout revokes the token server-side and always clears the local session.
func (c *Client) Logout(ctx context.Context) error {
	if c.token() == "" {
		return nil
	}
	err := c.do(ctx, http.MethodPost, "/api/auth/logout", nil, nil, nil)
	if clearErr := c.Store.Clear(); clearErr != nil && err == nil {
		err = clearErr
	}
	return err
}

// Me refreshes the profile snapshot held in the session.
func (c *Client) Me(ctx context.Context) (*models.User, error) {
	if err := c.authed("view your profile"); err != nil {
		return nil, err
	}
	var resp envelope[*models.User]
	if err := c.do(ctx, http.MethodGet, "/api/auth/me", nil, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Data, c.saveUser(resp.Data)
}

func (c *Client) UpdateProfile(ctx context.Context, update ProfileUpdate) (*models.User, error) {
	if err := c.authed("update your profile"); err != nil {
		return nil, err
	}
	var resp envelope[*models.User]
	if err := c.do(ctx, http.MethodPut, "/api/auth/me", nil, update, &resp); err != nil {
		return nil, err
	}
	return resp.Data, c.saveUser(resp.Data)
}

func (c *Client) ForgotPassword(ctx context.Context, email string) error {
	return c.do(ctx, http.MethodPost, "/api/auth/forgot-password", nil, map[string]string{"email": email}, nil)
}

func (c *Client) ResetPassword(ctx context.Context, token, password string) error {
	return c.do(ctx, http.MethodPost, "/api/auth/reset-password", nil, map[string]string{
		"token":    token,
		"password": password,
	}, nil)
}

func (c *Client) saveUser(u *models.User) error {
	s := c.Session()
	if s == nil || u == nil {
		return nil
	}
	s.User = u
	return c.Store.Save(s)
}

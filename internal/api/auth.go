package api

import (
	"context"
	"net/http"

	"github.com/HammerMeetNail/gamelog/internal/models"
)

type AuthClient struct {
	c *Client
}

func NewAuthClient(c *Client) *AuthClient {
	return &AuthClient{c: c}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	Token  string `json:"token"`
	UserID int64  `json:"user_id"`
}

func (a *AuthClient) Login(ctx context.Context, email, password string) (models.Credential, error) {
	var resp authResponse
	err := a.c.do(ctx, call{
		method: http.MethodPost,
		path:   "/auth/login",
		body:   loginRequest{Email: email, Password: password},
	}, &resp)
	if err != nil {
		return models.Credential{}, err
	}
	return models.Credential{Token: resp.Token, UserID: resp.UserID}, nil
}

func (a *AuthClient) Register(ctx context.Context, name, email, password string) (models.Credential, error) {
	var resp authResponse
	err := a.c.do(ctx, call{
		method: http.MethodPost,
		path:   "/auth/register",
		body:   registerRequest{Name: name, Email: email, Password: password},
	}, &resp)
	if err != nil {
		return models.Credential{}, err
	}
	return models.Credential{Token: resp.Token, UserID: resp.UserID}, nil
}

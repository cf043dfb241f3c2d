package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/HammerMeetNail/gamelog/internal/models"
)

type UserClient struct {
	c *Client
}

func NewUserClient(c *Client) *UserClient {
	return &UserClient{c: c}
}

func (u *UserClient) Me(ctx context.Context, bearer string) (models.User, error) {
	var user models.User
	err := u.c.do(ctx, call{method: http.MethodGet, path: "/users/me", bearer: bearer}, &user)
	return user, err
}

func (u *UserClient) ByID(ctx context.Context, id int64) (models.User, error) {
	var user models.User
	err := u.c.do(ctx, call{method: http.MethodGet, path: userPath(id)}, &user)
	return user, err
}

func (u *UserClient) Search(ctx context.Context, query string) ([]models.User, error) {
	var users []models.User
	err := u.c.do(ctx, call{
		method: http.MethodGet,
		path:   "/users/search",
		query:  url.Values{"q": {query}},
	}, &users)
	return users, err
}

func (u *UserClient) UpdateProfile(ctx context.Context, params models.UpdateProfileParams, bearer string) (models.User, error) {
	var user models.User
	err := u.c.do(ctx, call{method: http.MethodPut, path: "/users/me", bearer: bearer, body: params}, &user)
	return user, err
}

func userPath(id int64) string {
	return "/users/" + strconv.FormatInt(id, 10)
}

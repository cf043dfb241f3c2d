package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/HammerMeetNail/gamelog/internal/models"
)

type GameClient struct {
	c *Client
}

func NewGameClient(c *Client) *GameClient {
	return &GameClient{c: c}
}

func (g *GameClient) Details(ctx context.Context, catalogID int64) (models.GameDetail, error) {
	var game models.GameDetail
	err := g.c.do(ctx, call{method: http.MethodGet, path: gamePath(catalogID)}, &game)
	return game, err
}

func (g *GameClient) Search(ctx context.Context, query string) ([]models.GameDetail, error) {
	var games []models.GameDetail
	err := g.c.do(ctx, call{
		method: http.MethodGet,
		path:   "/games/search",
		query:  url.Values{"q": {query}},
	}, &games)
	return games, err
}

func (g *GameClient) Popular(ctx context.Context, page int) ([]models.GameDetail, error) {
	var games []models.GameDetail
	err := g.c.do(ctx, call{
		method: http.MethodGet,
		path:   "/games/popular",
		query:  url.Values{"page": {strconv.Itoa(page)}},
	}, &games)
	return games, err
}

func gamePath(id int64) string {
	return "/games/" + strconv.FormatInt(id, 10)
}

type UserGameClient struct {
	c *Client
}

func NewUserGameClient(c *Client) *UserGameClient {
	return &UserGameClient{c: c}
}

func (u *UserGameClient) ListByUser(ctx context.Context, userID int64) ([]models.UserGame, error) {
	var rows []models.UserGame
	err := u.c.do(ctx, call{method: http.MethodGet, path: userPath(userID) + "/games"}, &rows)
	return rows, err
}

func (u *UserGameClient) Create(ctx context.Context, params models.UpsertUserGameParams, bearer string) (models.UserGame, error) {
	var row models.UserGame
	err := u.c.do(ctx, call{method: http.MethodPost, path: "/user-games", bearer: bearer, body: params}, &row)
	return row, err
}

func (u *UserGameClient) Update(ctx context.Context, id int64, params models.UpsertUserGameParams, bearer string) (models.UserGame, error) {
	var row models.UserGame
	err := u.c.do(ctx, call{method: http.MethodPut, path: userGamePath(id), bearer: bearer, body: params}, &row)
	return row, err
}

func (u *UserGameClient) Delete(ctx context.Context, id int64, bearer string) error {
	return u.c.do(ctx, call{method: http.MethodDelete, path: userGamePath(id), bearer: bearer}, nil)
}

func userGamePath(id int64) string {
	return "/user-games/" + strconv.FormatInt(id, 10)
}

type ReviewClient struct {
	c *Client
}

func NewReviewClient(c *Client) *ReviewClient {
	return &ReviewClient{c: c}
}

func (r *ReviewClient) ListForGame(ctx context.Context, gameID int64) ([]models.GameReview, error) {
	var reviews []models.GameReview
	err := r.c.do(ctx, call{method: http.MethodGet, path: gamePath(gameID) + "/reviews"}, &reviews)
	return reviews, err
}

type RecommendationClient struct {
	c *Client
}

func NewRecommendationClient(c *Client) *RecommendationClient {
	return &RecommendationClient{c: c}
}

func (r *RecommendationClient) ForViewer(ctx context.Context, bearer string) ([]models.GameDetail, error) {
	var games []models.GameDetail
	err := r.c.do(ctx, call{method: http.MethodGet, path: "/recommendations", bearer: bearer}, &games)
	return games, err
}

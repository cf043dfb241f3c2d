package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/HammerMeetNail/gamelog/internal/models"
)

type FriendsClient struct {
	c *Client
}

func NewFriendsClient(c *Client) *FriendsClient {
	return &FriendsClient{c: c}
}

// ListFriends lists the accepted friends of userID.
func (f *FriendsClient) ListFriends(ctx context.Context, userID int64, bearer string) ([]models.Friend, error) {
	var friends []models.Friend
	err := f.c.do(ctx, call{method: http.MethodGet, path: userPath(userID) + "/friends", bearer: bearer}, &friends)
	return friends, err
}

// ListOutgoing lists requests the bearer has sent that are still pending.
func (f *FriendsClient) ListOutgoing(ctx context.Context, bearer string) ([]models.FriendRequest, error) {
	var reqs []models.FriendRequest
	err := f.c.do(ctx, call{method: http.MethodGet, path: "/friends/requests/outgoing", bearer: bearer}, &reqs)
	return reqs, err
}

// ListIncoming lists requests awaiting the bearer's answer.
func (f *FriendsClient) ListIncoming(ctx context.Context, bearer string) ([]models.FriendRequest, error) {
	var reqs []models.FriendRequest
	err := f.c.do(ctx, call{method: http.MethodGet, path: "/friends/requests/incoming", bearer: bearer}, &reqs)
	return reqs, err
}

func (f *FriendsClient) Send(ctx context.Context, subjectID int64, bearer string) error {
	return f.c.do(ctx, call{method: http.MethodPost, path: requestPath(subjectID), bearer: bearer}, nil)
}

func (f *FriendsClient) Cancel(ctx context.Context, subjectID int64, bearer string) error {
	return f.c.do(ctx, call{method: http.MethodDelete, path: requestPath(subjectID), bearer: bearer}, nil)
}

func (f *FriendsClient) Accept(ctx context.Context, requesterID int64, bearer string) error {
	return f.c.do(ctx, call{method: http.MethodPost, path: requestPath(requesterID) + "/accept", bearer: bearer}, nil)
}

func (f *FriendsClient) Decline(ctx context.Context, requesterID int64, bearer string) error {
	return f.c.do(ctx, call{method: http.MethodPost, path: requestPath(requesterID) + "/decline", bearer: bearer}, nil)
}

func (f *FriendsClient) Unfriend(ctx context.Context, subjectID int64, bearer string) error {
	return f.c.do(ctx, call{method: http.MethodDelete, path: "/friends/" + strconv.FormatInt(subjectID, 10), bearer: bearer}, nil)
}

func requestPath(id int64) string {
	return "/friends/requests/" + strconv.FormatInt(id, 10)
}

package services

import (
	"context"
	"fmt"

	"github.com/HammerMeetNail/gamelog/internal/models"
	"github.com/HammerMeetNail/gamelog/internal/result"
)

// RelationshipRepository translates relationship intents into friends
// resource calls. It holds no state.
type RelationshipRepository struct {
	api FriendsAPI
}

func NewRelationshipRepository(api FriendsAPI) *RelationshipRepository {
	return &RelationshipRepository{api: api}
}

func (r *RelationshipRepository) ListFriends(ctx context.Context, userID int64, bearer string) result.Result[[]models.Friend] {
	return result.Capture(func() ([]models.Friend, error) {
		friends, err := r.api.ListFriends(ctx, userID, bearer)
		if err != nil {
			return nil, fmt.Errorf("list friends of %d: %w", userID, err)
		}
		if friends == nil {
			friends = []models.Friend{}
		}
		return friends, nil
	})
}

func (r *RelationshipRepository) ListOutgoing(ctx context.Context, bearer string) result.Result[[]models.FriendRequest] {
	return listRequests(func() ([]models.FriendRequest, error) {
		return r.api.ListOutgoing(ctx, bearer)
	}, "list outgoing requests")
}

func (r *RelationshipRepository) ListIncoming(ctx context.Context, bearer string) result.Result[[]models.FriendRequest] {
	return listRequests(func() ([]models.FriendRequest, error) {
		return r.api.ListIncoming(ctx, bearer)
	}, "list incoming requests")
}

func (r *RelationshipRepository) SendRequest(ctx context.Context, subjectID int64, bearer string) result.Result[result.Void] {
	return mutate("send friend request", subjectID, func() error { return r.api.Send(ctx, subjectID, bearer) })
}

func (r *RelationshipRepository) CancelRequest(ctx context.Context, subjectID int64, bearer string) result.Result[result.Void] {
	return mutate("cancel friend request", subjectID, func() error { return r.api.Cancel(ctx, subjectID, bearer) })
}

func (r *RelationshipRepository) Accept(ctx context.Context, requesterID int64, bearer string) result.Result[result.Void] {
	return mutate("accept friend request", requesterID, func() error { return r.api.Accept(ctx, requesterID, bearer) })
}

func (r *RelationshipRepository) Decline(ctx context.Context, requesterID int64, bearer string) result.Result[result.Void] {
	return mutate("decline friend request", requesterID, func() error { return r.api.Decline(ctx, requesterID, bearer) })
}

func (r *RelationshipRepository) Unfriend(ctx context.Context, subjectID int64, bearer string) result.Result[result.Void] {
	return mutate("unfriend", subjectID, func() error { return r.api.Unfriend(ctx, subjectID, bearer) })
}

func listRequests(fn func() ([]models.FriendRequest, error), op string) result.Result[[]models.FriendRequest] {
	return result.Capture(func() ([]models.FriendRequest, error) {
		reqs, err := fn()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if reqs == nil {
			reqs = []models.FriendRequest{}
		}
		return reqs, nil
	})
}

// mutate wraps a relationship mutation. A rejected call keeps the remote
// status code in the failure message via api.StatusError.
func mutate(op string, subjectID int64, fn func() error) result.Result[result.Void] {
	return result.Capture(func() (result.Void, error) {
		if err := fn(); err != nil {
			return result.Void{}, fmt.Errorf("%s %d: %w", op, subjectID, err)
		}
		return result.Void{}, nil
	})
}

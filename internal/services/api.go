package services

import (
	"context"

	"go.opentelemetry.io/otel"

	"github.com/HammerMeetNail/gamelog/internal/models"
)

var tracer = otel.Tracer("github.com/HammerMeetNail/gamelog/internal/services")

// The interfaces below narrow the resource clients in internal/api to what
// the repositories call, so tests can substitute fakes.

type AuthAPI interface {
	Login(ctx context.Context, email, password string) (models.Credential, error)
	Register(ctx context.Context, name, email, password string) (models.Credential, error)
}

type UsersAPI interface {
	Me(ctx context.Context, bearer string) (models.User, error)
	ByID(ctx context.Context, id int64) (models.User, error)
	Search(ctx context.Context, query string) ([]models.User, error)
	UpdateProfile(ctx context.Context, params models.UpdateProfileParams, bearer string) (models.User, error)
}

type FriendsAPI interface {
	ListFriends(ctx context.Context, userID int64, bearer string) ([]models.Friend, error)
	ListOutgoing(ctx context.Context, bearer string) ([]models.FriendRequest, error)
	ListIncoming(ctx context.Context, bearer string) ([]models.FriendRequest, error)
	Send(ctx context.Context, subjectID int64, bearer string) error
	Cancel(ctx context.Context, subjectID int64, bearer string) error
	Accept(ctx context.Context, requesterID int64, bearer string) error
	Decline(ctx context.Context, requesterID int64, bearer string) error
	Unfriend(ctx context.Context, subjectID int64, bearer string) error
}

type GamesAPI interface {
	Details(ctx context.Context, catalogID int64) (models.GameDetail, error)
	Search(ctx context.Context, query string) ([]models.GameDetail, error)
	Popular(ctx context.Context, page int) ([]models.GameDetail, error)
}

type UserGamesAPI interface {
	ListByUser(ctx context.Context, userID int64) ([]models.UserGame, error)
	Create(ctx context.Context, params models.UpsertUserGameParams, bearer string) (models.UserGame, error)
	Update(ctx context.Context, id int64, params models.UpsertUserGameParams, bearer string) (models.UserGame, error)
	Delete(ctx context.Context, id int64, bearer string) error
}

type ReviewsAPI interface {
	ListForGame(ctx context.Context, gameID int64) ([]models.GameReview, error)
}

type RecommendationsAPI interface {
	ForViewer(ctx context.Context, bearer string) ([]models.GameDetail, error)
}

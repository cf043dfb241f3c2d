package services

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/HammerMeetNail/gamelog/internal/logging"
	"github.com/HammerMeetNail/gamelog/internal/models"
)

const defaultFetchConcurrency = 8

// ProfileAggregator builds one ProfileSnapshot from the user, library,
// catalog and friends resources.
type ProfileAggregator struct {
	users         *UserRepository
	library       *LibraryRepository
	catalog       *CatalogRepository
	relationships *RelationshipRepository
	creds         CredentialStore
	limit         int
}

func NewProfileAggregator(users *UserRepository, library *LibraryRepository, catalog *CatalogRepository, relationships *RelationshipRepository, creds CredentialStore, limit int) *ProfileAggregator {
	if limit < 1 {
		limit = defaultFetchConcurrency
	}
	return &ProfileAggregator{
		users:         users,
		library:       library,
		catalog:       catalog,
		relationships: relationships,
		creds:         creds,
		limit:         limit,
	}
}

// Load aggregates the profile of subjectID as seen by the stored viewer.
// Failing to load the subject or its game list fails the whole load; a
// game whose detail cannot be fetched is left out, and relationship or
// friend-list failures degrade to NONE and an empty list.
func (a *ProfileAggregator) Load(ctx context.Context, subjectID int64) (models.ProfileSnapshot, error) {
	ctx, span := tracer.Start(ctx, "ProfileAggregator.Load", trace.WithAttributes(attribute.Int64("subject_id", subjectID)))
	defer span.End()

	snapshot, err := a.load(ctx, subjectID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "profile load failed")
		return models.ProfileSnapshot{}, err
	}
	span.SetAttributes(
		attribute.Int("completed", len(snapshot.Completed)),
		attribute.Int("reviews", len(snapshot.Reviews)),
		attribute.Bool("is_own", snapshot.IsOwn),
	)
	return snapshot, nil
}

func (a *ProfileAggregator) load(ctx context.Context, subjectID int64) (models.ProfileSnapshot, error) {
	cred, err := a.creds.Load(ctx)
	if err != nil {
		logging.Warn("Credential unavailable, loading profile anonymously", map[string]interface{}{
			"error": err.Error(),
		})
		cred = models.Credential{}
	}

	var (
		viewerID int64
		subject  models.User
		rows     []models.UserGame
		friends  []models.Friend
	)

	g, gctx := errgroup.WithContext(ctx)
	if cred.Present() {
		g.Go(func() error {
			viewerID = a.resolveViewer(gctx, cred)
			return nil
		})
	}
	g.Go(func() error {
		var err error
		subject, err = a.users.ByID(gctx, subjectID).Get()
		return err
	})
	g.Go(func() error {
		var err error
		rows, err = a.library.ListByUser(gctx, subjectID).Get()
		return err
	})
	g.Go(func() error {
		list, err := a.relationships.ListFriends(gctx, subjectID, cred.Token).Get()
		if err != nil {
			logging.Warn("Friend list unavailable for profile", map[string]interface{}{
				"subject_id": subjectID,
				"error":      err.Error(),
			})
			list = []models.Friend{}
		}
		friends = list
		return nil
	})
	if err := g.Wait(); err != nil {
		return models.ProfileSnapshot{}, fmt.Errorf("load profile %d: %w", subjectID, err)
	}

	completed, reviewed := partitionGames(rows)
	ids := make([]int64, 0, len(completed)+len(reviewed)+1)
	for _, row := range completed {
		ids = append(ids, row.GameID)
	}
	for _, row := range reviewed {
		ids = append(ids, row.GameID)
	}
	if subject.FavoriteGameID != nil {
		ids = append(ids, *subject.FavoriteGameID)
	}

	isOwn := viewerID != 0 && viewerID == subjectID
	relationship := models.RelationshipNone

	var (
		details map[int64]models.GameDetail
		wg      sync.WaitGroup
	)
	wg.Add(1)
	go func() {
		defer wg.Done()
		var failures map[int64]error
		details, failures = FetchDistinct(ctx, ids, a.limit, func(ctx context.Context, id int64) (models.GameDetail, error) {
			return a.catalog.Details(ctx, id).Get()
		})
		for id, err := range failures {
			logging.Warn("Dropping game with unavailable details", map[string]interface{}{
				"subject_id": subjectID,
				"game_id":    id,
				"error":      err.Error(),
			})
		}
	}()
	if viewerID != 0 && !isOwn {
		wg.Add(1)
		go func() {
			defer wg.Done()
			relationship = a.deriveRelationship(ctx, models.Credential{Token: cred.Token, UserID: viewerID}, subjectID)
		}()
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return models.ProfileSnapshot{}, err
	}

	snapshot := models.ProfileSnapshot{
		User:         subject,
		Completed:    make([]models.GameDetail, 0, len(completed)),
		Reviews:      make([]models.Review, 0, len(reviewed)),
		Friends:      friends,
		IsOwn:        isOwn,
		Relationship: relationship,
	}
	if subject.FavoriteGameID != nil {
		if fav, ok := details[*subject.FavoriteGameID]; ok {
			snapshot.Favorite = &fav
		}
	}
	for _, row := range completed {
		if detail, ok := details[row.GameID]; ok {
			snapshot.Completed = append(snapshot.Completed, detail)
		}
	}
	for _, row := range reviewed {
		detail, ok := details[row.GameID]
		if !ok {
			continue
		}
		snapshot.Reviews = append(snapshot.Reviews, models.Review{
			Game:   detail,
			Notes:  strings.TrimSpace(*row.Notes),
			Score:  row.Score,
			Status: row.Status,
		})
	}
	return snapshot, nil
}

// resolveViewer prefers the stored viewer id and falls back to /users/me.
// Zero means the viewer is unknown and the load proceeds anonymously.
func (a *ProfileAggregator) resolveViewer(ctx context.Context, cred models.Credential) int64 {
	if cred.UserID != 0 {
		return cred.UserID
	}
	me, err := a.users.Me(ctx, cred.Token).Get()
	if err != nil {
		logging.Warn("Could not resolve viewer", map[string]interface{}{"error": err.Error()})
		return 0
	}
	return me.ID
}

func (a *ProfileAggregator) deriveRelationship(ctx context.Context, viewer models.Credential, subjectID int64) models.RelationshipState {
	friends, outgoing, err := fetchRelationshipLists(ctx, a.relationships, viewer)
	if err != nil {
		logging.Warn("Relationship lists unavailable, assuming none", map[string]interface{}{
			"subject_id": subjectID,
			"error":      err.Error(),
		})
		return models.RelationshipNone
	}
	return DeriveRelationship(subjectID, friends, outgoing)
}

// partitionGames splits rows into completed and reviewed subsets. A row can
// be in both.
func partitionGames(rows []models.UserGame) (completed, reviewed []models.UserGame) {
	for _, row := range rows {
		if row.IsCompleted() {
			completed = append(completed, row)
		}
		if row.HasReview() {
			reviewed = append(reviewed, row)
		}
	}
	return completed, reviewed
}

package services

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/sync/singleflight"

	"github.com/HammerMeetNail/gamelog/internal/models"
	"github.com/HammerMeetNail/gamelog/internal/result"
)

// CatalogRepository reads the external game catalog. Concurrent Details
// calls for the same id share one request. The shared request is not tied to
// any one caller's cancellation; the http client timeout bounds it.
type CatalogRepository struct {
	api   GamesAPI
	group singleflight.Group
}

func NewCatalogRepository(api GamesAPI) *CatalogRepository {
	return &CatalogRepository{api: api}
}

func (r *CatalogRepository) Details(ctx context.Context, catalogID int64) result.Result[models.GameDetail] {
	return result.Capture(func() (models.GameDetail, error) {
		shared := context.WithoutCancel(ctx)
		ch := r.group.DoChan(strconv.FormatInt(catalogID, 10), func() (any, error) {
			// DoChan re-panics on its own goroutine, so recover here.
			return result.Capture(func() (models.GameDetail, error) {
				return r.api.Details(shared, catalogID)
			}).Get()
		})
		select {
		case res := <-ch:
			if res.Err != nil {
				return models.GameDetail{}, fmt.Errorf("load game %d: %w", catalogID, res.Err)
			}
			return res.Val.(models.GameDetail), nil
		case <-ctx.Done():
			return models.GameDetail{}, fmt.Errorf("load game %d: %w", catalogID, ctx.Err())
		}
	})
}

func (r *CatalogRepository) Search(ctx context.Context, query string) result.Result[[]models.GameDetail] {
	query = strings.TrimSpace(query)
	if query == "" {
		return result.Ok([]models.GameDetail{})
	}
	return result.Capture(func() ([]models.GameDetail, error) {
		games, err := r.api.Search(ctx, query)
		if err != nil {
			return nil, fmt.Errorf("search games: %w", err)
		}
		return nonNil(games), nil
	})
}

func (r *CatalogRepository) Popular(ctx context.Context, page int) result.Result[[]models.GameDetail] {
	if page < 1 {
		page = 1
	}
	return result.Capture(func() ([]models.GameDetail, error) {
		games, err := r.api.Popular(ctx, page)
		if err != nil {
			return nil, fmt.Errorf("list popular games: %w", err)
		}
		return nonNil(games), nil
	})
}

type ReviewRepository struct {
	api ReviewsAPI
}

func NewReviewRepository(api ReviewsAPI) *ReviewRepository {
	return &ReviewRepository{api: api}
}

func (r *ReviewRepository) ListForGame(ctx context.Context, gameID int64) result.Result[[]models.GameReview] {
	return result.Capture(func() ([]models.GameReview, error) {
		reviews, err := r.api.ListForGame(ctx, gameID)
		if err != nil {
			return nil, fmt.Errorf("list reviews for game %d: %w", gameID, err)
		}
		return nonNil(reviews), nil
	})
}

type RecommendationRepository struct {
	api RecommendationsAPI
}

func NewRecommendationRepository(api RecommendationsAPI) *RecommendationRepository {
	return &RecommendationRepository{api: api}
}

func (r *RecommendationRepository) ForViewer(ctx context.Context, bearer string) result.Result[[]models.GameDetail] {
	return result.Capture(func() ([]models.GameDetail, error) {
		games, err := r.api.ForViewer(ctx, bearer)
		if err != nil {
			return nil, fmt.Errorf("list recommendations: %w", err)
		}
		return nonNil(games), nil
	})
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

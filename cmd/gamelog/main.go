package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/HammerMeetNail/gamelog/internal/api"
	"github.com/HammerMeetNail/gamelog/internal/config"
	"github.com/HammerMeetNail/gamelog/internal/database"
	"github.com/HammerMeetNail/gamelog/internal/logging"
	"github.com/HammerMeetNail/gamelog/internal/middleware"
	"github.com/HammerMeetNail/gamelog/internal/models"
	"github.com/HammerMeetNail/gamelog/internal/result"
	"github.com/HammerMeetNail/gamelog/internal/services"
	"github.com/HammerMeetNail/gamelog/internal/tracing"
)

const usage = `usage: gamelog <command> [args]

commands:
  login <email> <password>
  register <name> <email> <password>
  logout
  whoami
  profile <user-id>
  toggle <user-id>
  requests
  accept <user-id>
  decline <user-id>
  users <query>
  games <query>
  popular [page]
  game <game-id>
  reviews <game-id>
  track <game-id> <status> [score] [notes]
  untrack <row-id>
  recommend`

var errUsage = errors.New(usage)

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdout); err != nil {
		if errors.Is(err, errUsage) {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(2)
		}
		logging.Error("Application error", map[string]interface{}{"error": err.Error()})
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, out io.Writer) error {
	logger := logging.New()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	level := logging.ParseLevel(cfg.Log.Level)
	if cfg.Log.Debug {
		level = logging.LevelDebug
	}
	logger.SetLevel(level)
	logging.SetDefaultLevel(level)

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := tracing.Setup(ctx, cfg.Tracing)
	if err != nil {
		return fmt.Errorf("setting up tracing: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(shutdownCtx); err != nil {
			logger.Warn("Tracing shutdown failed", map[string]interface{}{"error": err.Error()})
		}
	}()

	creds, closeCreds, err := openCredentialStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeCreds()

	requestLogger := middleware.NewRequestLogger(logger)
	client, err := api.New(cfg.API.BaseURL,
		api.WithHTTPClient(&http.Client{Transport: requestLogger.Apply(nil)}),
		api.WithTimeout(cfg.API.Timeout),
		api.WithUserAgent(cfg.API.UserAgent),
	)
	if err != nil {
		return fmt.Errorf("creating api client: %w", err)
	}

	return newApp(client, creds, cfg.Profile.FetchConcurrency, out).dispatch(ctx, args)
}

// openCredentialStore picks the session backend. The returned func releases
// any connection it opened.
func openCredentialStore(ctx context.Context, cfg *config.Config, logger *logging.Logger) (services.CredentialStore, func(), error) {
	if cfg.Session.Backend != "redis" {
		seed := models.Credential{Token: cfg.Session.Token, UserID: cfg.Session.UserID}
		return services.NewMemoryCredentialStore(seed), func() {}, nil
	}

	logger.Info("Connecting to Redis", map[string]interface{}{"addr": cfg.Redis.Addr()})
	redisDB, err := database.OpenRedis(ctx, cfg.Redis)
	if err != nil {
		return nil, nil, fmt.Errorf("connecting to redis: %w", err)
	}
	store := services.NewRedisCredentialStore(services.NewRedisAdapter(redisDB.Client, services.SessionNamespace), cfg.Session.Key, cfg.Session.TTL)
	return store, func() { _ = redisDB.Close() }, nil
}

type app struct {
	auth            *services.AuthService
	users           *services.UserRepository
	catalog         *services.CatalogRepository
	library         *services.LibraryRepository
	reviews         *services.ReviewRepository
	recommendations *services.RecommendationRepository
	machine         *services.RelationshipMachine
	profiles        *services.ProfileController
	out             io.Writer
}

func newApp(client *api.Client, creds services.CredentialStore, fetchConcurrency int, out io.Writer) *app {
	userClient := api.NewUserClient(client)

	users := services.NewUserRepository(userClient)
	catalog := services.NewCatalogRepository(api.NewGameClient(client))
	library := services.NewLibraryRepository(api.NewUserGameClient(client))
	relationships := services.NewRelationshipRepository(api.NewFriendsClient(client))
	machine := services.NewRelationshipMachine(relationships, creds)
	aggregator := services.NewProfileAggregator(users, library, catalog, relationships, creds, fetchConcurrency)

	return &app{
		auth:            services.NewAuthService(api.NewAuthClient(client), userClient, creds),
		users:           users,
		catalog:         catalog,
		library:         library,
		reviews:         services.NewReviewRepository(api.NewReviewClient(client)),
		recommendations: services.NewRecommendationRepository(api.NewRecommendationClient(client)),
		machine:         machine,
		profiles:        services.NewProfileController(aggregator, machine),
		out:             out,
	}
}

func (a *app) dispatch(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errUsage
	}
	cmd, rest := args[0], args[1:]

	switch cmd {
	case "login":
		if len(rest) != 2 {
			return errUsage
		}
		cred, err := a.auth.Login(ctx, rest[0], rest[1]).Get()
		if err != nil {
			return err
		}
		return a.print(map[string]interface{}{"user_id": cred.UserID})

	case "register":
		if len(rest) != 3 {
			return errUsage
		}
		cred, err := a.auth.Register(ctx, rest[0], rest[1], rest[2]).Get()
		if err != nil {
			return err
		}
		return a.print(map[string]interface{}{"user_id": cred.UserID})

	case "logout":
		return a.auth.Logout(ctx).Err()

	case "whoami":
		cred, err := a.auth.Current(ctx).Get()
		if err != nil {
			return err
		}
		return printResult(a, a.users.Me(ctx, cred.Token))

	case "profile":
		id, err := parseID(rest)
		if err != nil {
			return err
		}
		snapshot, err := a.profiles.Load(ctx, id)
		if err != nil {
			return err
		}
		return a.print(snapshot)

	case "toggle":
		id, err := parseID(rest)
		if err != nil {
			return err
		}
		if _, err := a.profiles.Load(ctx, id); err != nil {
			return err
		}
		if err := a.profiles.ToggleRelationship(ctx); err != nil {
			return err
		}
		return a.print(map[string]interface{}{
			"user_id":      id,
			"relationship": a.machine.State(id),
		})

	case "requests":
		if err := a.machine.Refresh(ctx); err != nil {
			return err
		}
		return a.print(a.machine.View().Current().Incoming)

	case "accept", "decline":
		id, err := parseID(rest)
		if err != nil {
			return err
		}
		if cmd == "accept" {
			err = a.machine.Accept(ctx, id)
		} else {
			err = a.machine.Decline(ctx, id)
		}
		if err != nil {
			return err
		}
		return a.print(map[string]interface{}{
			"user_id":      id,
			"relationship": a.machine.State(id),
		})

	case "users":
		return printResult(a, a.users.Search(ctx, strings.Join(rest, " ")))

	case "games":
		return printResult(a, a.catalog.Search(ctx, strings.Join(rest, " ")))

	case "popular":
		page := 1
		if len(rest) > 0 {
			p, err := strconv.Atoi(rest[0])
			if err != nil {
				return fmt.Errorf("invalid page %q: %w", rest[0], err)
			}
			page = p
		}
		return printResult(a, a.catalog.Popular(ctx, page))

	case "game":
		id, err := parseID(rest)
		if err != nil {
			return err
		}
		return printResult(a, a.catalog.Details(ctx, id))

	case "reviews":
		id, err := parseID(rest)
		if err != nil {
			return err
		}
		return printResult(a, a.reviews.ListForGame(ctx, id))

	case "track":
		params, err := parseTrackArgs(rest)
		if err != nil {
			return err
		}
		cred, err := a.auth.Current(ctx).Get()
		if err != nil {
			return err
		}
		params.UserID = cred.UserID
		return printResult(a, a.library.Upsert(ctx, params, cred.Token))

	case "untrack":
		id, err := parseID(rest)
		if err != nil {
			return err
		}
		cred, err := a.auth.Current(ctx).Get()
		if err != nil {
			return err
		}
		return a.library.Remove(ctx, id, cred.Token).Err()

	case "recommend":
		cred, err := a.auth.Current(ctx).Get()
		if err != nil {
			return err
		}
		return printResult(a, a.recommendations.ForViewer(ctx, cred.Token))

	default:
		return fmt.Errorf("unknown command %q: %w", cmd, errUsage)
	}
}

func (a *app) print(v any) error {
	enc := json.NewEncoder(a.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printResult[T any](a *app, res result.Result[T]) error {
	if err := res.Err(); err != nil {
		return err
	}
	return a.print(res.Value())
}

func parseID(args []string) (int64, error) {
	if len(args) != 1 {
		return 0, errUsage
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", args[0])
	}
	return id, nil
}

// parseTrackArgs reads "<game-id> <status> [score] [notes...]".
func parseTrackArgs(args []string) (models.UpsertUserGameParams, error) {
	if len(args) < 2 {
		return models.UpsertUserGameParams{}, errUsage
	}
	gameID, err := parseID(args[:1])
	if err != nil {
		return models.UpsertUserGameParams{}, err
	}
	params := models.UpsertUserGameParams{
		GameID: gameID,
		Status: strings.ToUpper(strings.TrimSpace(args[1])),
	}
	if len(args) > 2 {
		score, err := strconv.ParseFloat(args[2], 64)
		if err != nil {
			return models.UpsertUserGameParams{}, fmt.Errorf("invalid score %q: %w", args[2], err)
		}
		params.Score = &score
	}
	if len(args) > 3 {
		notes := strings.Join(args[3:], " ")
		params.Notes = &notes
	}
	return params, nil
}

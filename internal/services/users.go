package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"

	"github.com/HammerMeetNail/gamelog/internal/logging"
	"github.com/HammerMeetNail/gamelog/internal/models"
	"github.com/HammerMeetNail/gamelog/internal/result"
)

const minSearchQueryLength = 2

var validate = validator.New(validator.WithRequiredStructEnabled())

// validateInput runs struct validation and folds failures into ErrInvalidInput.
func validateInput(v any) error {
	if err := validate.Struct(v); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fields := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				fields = append(fields, fmt.Sprintf("%s (%s)", fe.Field(), fe.Tag()))
			}
			return fmt.Errorf("%w: %s", ErrInvalidInput, strings.Join(fields, ", "))
		}
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return nil
}

type UserRepository struct {
	api UsersAPI
}

func NewUserRepository(api UsersAPI) *UserRepository {
	return &UserRepository{api: api}
}

func (r *UserRepository) Me(ctx context.Context, bearer string) result.Result[models.User] {
	return result.Capture(func() (models.User, error) {
		user, err := r.api.Me(ctx, bearer)
		if err != nil {
			return models.User{}, fmt.Errorf("load current user: %w", err)
		}
		return user, nil
	})
}

func (r *UserRepository) ByID(ctx context.Context, id int64) result.Result[models.User] {
	return result.Capture(func() (models.User, error) {
		user, err := r.api.ByID(ctx, id)
		if err != nil {
			return models.User{}, fmt.Errorf("load user %d: %w", id, err)
		}
		return user, nil
	})
}

// Search returns no users without calling the service for queries shorter
// than two characters.
func (r *UserRepository) Search(ctx context.Context, query string) result.Result[[]models.User] {
	query = strings.TrimSpace(query)
	if utf8.RuneCountInString(query) < minSearchQueryLength {
		return result.Ok([]models.User{})
	}
	return result.Capture(func() ([]models.User, error) {
		users, err := r.api.Search(ctx, query)
		if err != nil {
			return nil, fmt.Errorf("search users: %w", err)
		}
		if users == nil {
			users = []models.User{}
		}
		return users, nil
	})
}

func (r *UserRepository) UpdateProfile(ctx context.Context, params models.UpdateProfileParams, bearer string) result.Result[models.User] {
	params.Name = strings.TrimSpace(params.Name)
	params.Status = strings.TrimSpace(params.Status)
	if err := validateInput(params); err != nil {
		return result.Fail[models.User](err)
	}
	return result.Capture(func() (models.User, error) {
		user, err := r.api.UpdateProfile(ctx, params, bearer)
		if err != nil {
			return models.User{}, fmt.Errorf("update profile: %w", err)
		}
		return user, nil
	})
}

type AuthService struct {
	api   AuthAPI
	users UsersAPI
	creds CredentialStore
}

func NewAuthService(api AuthAPI, users UsersAPI, creds CredentialStore) *AuthService {
	return &AuthService{api: api, users: users, creds: creds}
}

type loginInput struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required,min=6"`
}

type registerInput struct {
	Name     string `validate:"required,max=64"`
	Email    string `validate:"required,email"`
	Password string `validate:"required,min=6"`
}

func (s *AuthService) Login(ctx context.Context, email, password string) result.Result[models.Credential] {
	email = strings.TrimSpace(email)
	if err := validateInput(loginInput{Email: email, Password: password}); err != nil {
		return result.Fail[models.Credential](err)
	}
	return result.Capture(func() (models.Credential, error) {
		cred, err := s.api.Login(ctx, email, password)
		if err != nil {
			return models.Credential{}, fmt.Errorf("login: %w", err)
		}
		return s.persist(ctx, cred)
	})
}

func (s *AuthService) Register(ctx context.Context, name, email, password string) result.Result[models.Credential] {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)
	if err := validateInput(registerInput{Name: name, Email: email, Password: password}); err != nil {
		return result.Fail[models.Credential](err)
	}
	return result.Capture(func() (models.Credential, error) {
		cred, err := s.api.Register(ctx, name, email, password)
		if err != nil {
			return models.Credential{}, fmt.Errorf("register: %w", err)
		}
		return s.persist(ctx, cred)
	})
}

func (s *AuthService) Logout(ctx context.Context) result.Result[result.Void] {
	return result.Capture(func() (result.Void, error) {
		if err := s.creds.Clear(ctx); err != nil {
			return result.Void{}, fmt.Errorf("logout: %w", err)
		}
		return result.Void{}, nil
	})
}

// Current returns the stored credential, failing with ErrNotAuthenticated
// when nobody is signed in.
func (s *AuthService) Current(ctx context.Context) result.Result[models.Credential] {
	return result.From(bearerFor(ctx, s.creds))
}

// persist stores cred, resolving the viewer id through /users/me when the
// auth response omitted it.
func (s *AuthService) persist(ctx context.Context, cred models.Credential) (models.Credential, error) {
	if !cred.Present() {
		return models.Credential{}, errors.New("auth response carried no token")
	}
	if cred.UserID == 0 {
		me, err := s.users.Me(ctx, cred.Token)
		if err != nil {
			return models.Credential{}, fmt.Errorf("resolve viewer: %w", err)
		}
		cred.UserID = me.ID
	}
	if err := s.creds.Save(ctx, cred); err != nil {
		return models.Credential{}, fmt.Errorf("store credential: %w", err)
	}
	logging.Info("Signed in", map[string]interface{}{"user_id": cred.UserID})
	return cred, nil
}

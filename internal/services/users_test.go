package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/HammerMeetNail/gamelog/internal/models"
)

func TestAuthService_LoginPersistsCredential(t *testing.T) {
	creds := NewMemoryCredentialStore(models.Credential{})
	auth := &fakeAuthAPI{
		LoginFunc: func(ctx context.Context, email, password string) (models.Credential, error) {
			if email != "ana@example.com" {
				t.Fatalf("expected trimmed email, got %q", email)
			}
			return models.Credential{Token: "tok", UserID: 5}, nil
		},
	}
	svc := NewAuthService(auth, &fakeUsersAPI{}, creds)

	res := svc.Login(context.Background(), "  ana@example.com ", "secret1")
	if !res.IsSuccess() {
		t.Fatalf("unexpected failure: %s", res.Message())
	}
	stored, _ := creds.Load(context.Background())
	if stored.Token != "tok" || stored.UserID != 5 {
		t.Fatalf("unexpected stored credential %+v", stored)
	}

	current := svc.Current(context.Background())
	if current.Value().UserID != 5 {
		t.Fatalf("unexpected current %+v", current.Value())
	}
}

func TestAuthService_LoginResolvesViewerID(t *testing.T) {
	creds := NewMemoryCredentialStore(models.Credential{})
	auth := &fakeAuthAPI{
		LoginFunc: func(ctx context.Context, email, password string) (models.Credential, error) {
			return models.Credential{Token: "tok"}, nil
		},
	}
	users := &fakeUsersAPI{
		MeFunc: func(ctx context.Context, bearer string) (models.User, error) {
			if bearer != "tok" {
				t.Fatalf("expected new token used, got %q", bearer)
			}
			return models.User{ID: 12}, nil
		},
	}
	svc := NewAuthService(auth, users, creds)

	cred, err := svc.Login(context.Background(), "ana@example.com", "secret1").Get()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cred.UserID != 12 {
		t.Fatalf("expected viewer id from me, got %d", cred.UserID)
	}
}

func TestAuthService_LoginValidation(t *testing.T) {
	svc := NewAuthService(&fakeAuthAPI{}, &fakeUsersAPI{}, NewMemoryCredentialStore(models.Credential{}))

	res := svc.Login(context.Background(), "not-an-email", "secret1")
	if !errors.Is(res.Err(), ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", res.Err())
	}
	if !strings.Contains(res.Message(), "Email") {
		t.Fatalf("expected failing field in message, got %q", res.Message())
	}

	res = svc.Login(context.Background(), "ana@example.com", "123")
	if !errors.Is(res.Err(), ErrInvalidInput) {
		t.Fatalf("expected short password rejected, got %v", res.Err())
	}
}

func TestAuthService_LoginFailureStoresNothing(t *testing.T) {
	creds := NewMemoryCredentialStore(models.Credential{})
	auth := &fakeAuthAPI{
		LoginFunc: func(ctx context.Context, email, password string) (models.Credential, error) {
			return models.Credential{}, errBoom
		},
	}
	svc := NewAuthService(auth, &fakeUsersAPI{}, creds)

	if res := svc.Login(context.Background(), "ana@example.com", "secret1"); !errors.Is(res.Err(), errBoom) {
		t.Fatalf("expected login error, got %v", res.Err())
	}
	if stored, _ := creds.Load(context.Background()); stored.Present() {
		t.Fatal("expected nothing stored")
	}
}

func TestAuthService_RegisterAndLogout(t *testing.T) {
	creds := NewMemoryCredentialStore(models.Credential{})
	auth := &fakeAuthAPI{
		RegisterFunc: func(ctx context.Context, name, email, password string) (models.Credential, error) {
			if name != "Ana" {
				t.Fatalf("expected trimmed name, got %q", name)
			}
			return models.Credential{Token: "new", UserID: 30}, nil
		},
	}
	svc := NewAuthService(auth, &fakeUsersAPI{}, creds)

	if res := svc.Register(context.Background(), " Ana ", "ana@example.com", "secret1"); !res.IsSuccess() {
		t.Fatalf("unexpected failure: %s", res.Message())
	}
	if res := svc.Logout(context.Background()); !res.IsSuccess() {
		t.Fatalf("unexpected failure: %s", res.Message())
	}
	if res := svc.Current(context.Background()); !errors.Is(res.Err(), ErrNotAuthenticated) {
		t.Fatalf("expected ErrNotAuthenticated after logout, got %v", res.Err())
	}
}

func TestUserRepository_SearchShortQuery(t *testing.T) {
	repo := NewUserRepository(&fakeUsersAPI{})

	res := repo.Search(context.Background(), " a ")
	if !res.IsSuccess() || len(res.Value()) != 0 || res.Value() == nil {
		t.Fatalf("expected empty result without a call, got %+v (%v)", res.Value(), res.Err())
	}
}

func TestUserRepository_Search(t *testing.T) {
	repo := NewUserRepository(&fakeUsersAPI{
		SearchFunc: func(ctx context.Context, query string) ([]models.User, error) {
			if query != "ana" {
				t.Fatalf("unexpected query %q", query)
			}
			return []models.User{{ID: 1, Name: "ana"}}, nil
		},
	})

	users, err := repo.Search(context.Background(), " ana ").Get()
	if err != nil || len(users) != 1 {
		t.Fatalf("unexpected result %+v (%v)", users, err)
	}
}

func TestUserRepository_UpdateProfile(t *testing.T) {
	var got models.UpdateProfileParams
	repo := NewUserRepository(&fakeUsersAPI{
		UpdateProfileFunc: func(ctx context.Context, params models.UpdateProfileParams, bearer string) (models.User, error) {
			got = params
			return models.User{ID: 1, Name: params.Name, Status: params.Status}, nil
		},
	})

	user, err := repo.UpdateProfile(context.Background(), models.UpdateProfileParams{Name: "  Ana ", Status: " playing "}, "tok").Get()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Name != "Ana" || got.Status != "playing" || user.Name != "Ana" {
		t.Fatalf("expected trimmed params, got %+v", got)
	}

	res := repo.UpdateProfile(context.Background(), models.UpdateProfileParams{Name: "   "}, "tok")
	if !errors.Is(res.Err(), ErrInvalidInput) {
		t.Fatalf("expected blank name rejected, got %v", res.Err())
	}
}

func TestUserRepository_WrapsErrors(t *testing.T) {
	repo := NewUserRepository(&fakeUsersAPI{
		ByIDFunc: func(ctx context.Context, id int64) (models.User, error) {
			return models.User{}, errBoom
		},
	})

	res := repo.ByID(context.Background(), 3)
	if !errors.Is(res.Err(), errBoom) || !strings.Contains(res.Message(), "load user 3") {
		t.Fatalf("unexpected failure %v", res.Err())
	}
}

func TestUserRepository_PanicBecomesFailure(t *testing.T) {
	repo := NewUserRepository(&fakeUsersAPI{
		MeFunc: func(ctx context.Context, bearer string) (models.User, error) {
			panic("decoder exploded")
		},
	})

	res := repo.Me(context.Background(), "tok")
	if res.IsSuccess() || !strings.Contains(res.Message(), "decoder exploded") {
		t.Fatalf("expected panic captured as failure, got %v", res.Err())
	}
}

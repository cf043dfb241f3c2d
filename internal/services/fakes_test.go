package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/HammerMeetNail/gamelog/internal/models"
)

var errBoom = errors.New("boom")

type fakeAuthAPI struct {
	LoginFunc    func(ctx context.Context, email, password string) (models.Credential, error)
	RegisterFunc func(ctx context.Context, name, email, password string) (models.Credential, error)
}

func (f *fakeAuthAPI) Login(ctx context.Context, email, password string) (models.Credential, error) {
	if f.LoginFunc == nil {
		return models.Credential{}, errors.New("unexpected Login")
	}
	return f.LoginFunc(ctx, email, password)
}

func (f *fakeAuthAPI) Register(ctx context.Context, name, email, password string) (models.Credential, error) {
	if f.RegisterFunc == nil {
		return models.Credential{}, errors.New("unexpected Register")
	}
	return f.RegisterFunc(ctx, name, email, password)
}

type fakeUsersAPI struct {
	MeFunc            func(ctx context.Context, bearer string) (models.User, error)
	ByIDFunc          func(ctx context.Context, id int64) (models.User, error)
	SearchFunc        func(ctx context.Context, query string) ([]models.User, error)
	UpdateProfileFunc func(ctx context.Context, params models.UpdateProfileParams, bearer string) (models.User, error)
}

func (f *fakeUsersAPI) Me(ctx context.Context, bearer string) (models.User, error) {
	if f.MeFunc == nil {
		return models.User{}, errors.New("unexpected Me")
	}
	return f.MeFunc(ctx, bearer)
}

func (f *fakeUsersAPI) ByID(ctx context.Context, id int64) (models.User, error) {
	if f.ByIDFunc == nil {
		return models.User{ID: id}, nil
	}
	return f.ByIDFunc(ctx, id)
}

func (f *fakeUsersAPI) Search(ctx context.Context, query string) ([]models.User, error) {
	if f.SearchFunc == nil {
		return nil, errors.New("unexpected Search")
	}
	return f.SearchFunc(ctx, query)
}

func (f *fakeUsersAPI) UpdateProfile(ctx context.Context, params models.UpdateProfileParams, bearer string) (models.User, error) {
	if f.UpdateProfileFunc == nil {
		return models.User{}, errors.New("unexpected UpdateProfile")
	}
	return f.UpdateProfileFunc(ctx, params, bearer)
}

// fakeFriendsAPI counts mutation calls per method so tests can assert how
// many remote calls were issued.
type fakeFriendsAPI struct {
	ListFriendsFunc  func(ctx context.Context, userID int64, bearer string) ([]models.Friend, error)
	ListOutgoingFunc func(ctx context.Context, bearer string) ([]models.FriendRequest, error)
	ListIncomingFunc func(ctx context.Context, bearer string) ([]models.FriendRequest, error)
	SendFunc         func(ctx context.Context, subjectID int64, bearer string) error
	CancelFunc       func(ctx context.Context, subjectID int64, bearer string) error
	AcceptFunc       func(ctx context.Context, requesterID int64, bearer string) error
	DeclineFunc      func(ctx context.Context, requesterID int64, bearer string) error
	UnfriendFunc     func(ctx context.Context, subjectID int64, bearer string) error

	mu    sync.Mutex
	calls map[string]int
}

func (f *fakeFriendsAPI) record(name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.calls == nil {
		f.calls = make(map[string]int)
	}
	f.calls[name]++
}

func (f *fakeFriendsAPI) count(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[name]
}

func (f *fakeFriendsAPI) ListFriends(ctx context.Context, userID int64, bearer string) ([]models.Friend, error) {
	f.record("ListFriends")
	if f.ListFriendsFunc == nil {
		return nil, nil
	}
	return f.ListFriendsFunc(ctx, userID, bearer)
}

func (f *fakeFriendsAPI) ListOutgoing(ctx context.Context, bearer string) ([]models.FriendRequest, error) {
	f.record("ListOutgoing")
	if f.ListOutgoingFunc == nil {
		return nil, nil
	}
	return f.ListOutgoingFunc(ctx, bearer)
}

func (f *fakeFriendsAPI) ListIncoming(ctx context.Context, bearer string) ([]models.FriendRequest, error) {
	f.record("ListIncoming")
	if f.ListIncomingFunc == nil {
		return nil, nil
	}
	return f.ListIncomingFunc(ctx, bearer)
}

func (f *fakeFriendsAPI) Send(ctx context.Context, subjectID int64, bearer string) error {
	f.record("Send")
	if f.SendFunc == nil {
		return nil
	}
	return f.SendFunc(ctx, subjectID, bearer)
}

func (f *fakeFriendsAPI) Cancel(ctx context.Context, subjectID int64, bearer string) error {
	f.record("Cancel")
	if f.CancelFunc == nil {
		return nil
	}
	return f.CancelFunc(ctx, subjectID, bearer)
}

func (f *fakeFriendsAPI) Accept(ctx context.Context, requesterID int64, bearer string) error {
	f.record("Accept")
	if f.AcceptFunc == nil {
		return nil
	}
	return f.AcceptFunc(ctx, requesterID, bearer)
}

func (f *fakeFriendsAPI) Decline(ctx context.Context, requesterID int64, bearer string) error {
	f.record("Decline")
	if f.DeclineFunc == nil {
		return nil
	}
	return f.DeclineFunc(ctx, requesterID, bearer)
}

func (f *fakeFriendsAPI) Unfriend(ctx context.Context, subjectID int64, bearer string) error {
	f.record("Unfriend")
	if f.UnfriendFunc == nil {
		return nil
	}
	return f.UnfriendFunc(ctx, subjectID, bearer)
}

type fakeGamesAPI struct {
	DetailsFunc func(ctx context.Context, catalogID int64) (models.GameDetail, error)
	SearchFunc  func(ctx context.Context, query string) ([]models.GameDetail, error)
	PopularFunc func(ctx context.Context, page int) ([]models.GameDetail, error)

	mu      sync.Mutex
	details map[int64]int
}

func (f *fakeGamesAPI) detailCalls(id int64) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.details[id]
}

func (f *fakeGamesAPI) Details(ctx context.Context, catalogID int64) (models.GameDetail, error) {
	f.mu.Lock()
	if f.details == nil {
		f.details = make(map[int64]int)
	}
	f.details[catalogID]++
	f.mu.Unlock()
	if f.DetailsFunc == nil {
		return models.GameDetail{ID: catalogID}, nil
	}
	return f.DetailsFunc(ctx, catalogID)
}

func (f *fakeGamesAPI) Search(ctx context.Context, query string) ([]models.GameDetail, error) {
	if f.SearchFunc == nil {
		return nil, errors.New("unexpected Search")
	}
	return f.SearchFunc(ctx, query)
}

func (f *fakeGamesAPI) Popular(ctx context.Context, page int) ([]models.GameDetail, error) {
	if f.PopularFunc == nil {
		return nil, errors.New("unexpected Popular")
	}
	return f.PopularFunc(ctx, page)
}

// memoryUserGames is a UserGamesAPI backed by a slice, assigning ids on
// create.
type memoryUserGames struct {
	mu      sync.Mutex
	rows    []models.UserGame
	nextID  int64
	creates int
	listErr error
}

func (m *memoryUserGames) ListByUser(ctx context.Context, userID int64) ([]models.UserGame, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listErr != nil {
		return nil, m.listErr
	}
	var out []models.UserGame
	for _, row := range m.rows {
		if row.UserID == userID {
			out = append(out, row)
		}
	}
	return out, nil
}

func (m *memoryUserGames) Create(ctx context.Context, params models.UpsertUserGameParams, bearer string) (models.UserGame, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	m.creates++
	row := models.UserGame{
		ID:     m.nextID,
		UserID: params.UserID,
		GameID: params.GameID,
		Status: params.Status,
		Score:  params.Score,
		Notes:  params.Notes,
	}
	m.rows = append(m.rows, row)
	return row, nil
}

func (m *memoryUserGames) Update(ctx context.Context, id int64, params models.UpsertUserGameParams, bearer string) (models.UserGame, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, row := range m.rows {
		if row.ID != id {
			continue
		}
		row.Status = params.Status
		row.Score = params.Score
		row.Notes = params.Notes
		m.rows[i] = row
		return row, nil
	}
	return models.UserGame{}, errors.New("row not found")
}

func (m *memoryUserGames) Delete(ctx context.Context, id int64, bearer string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, row := range m.rows {
		if row.ID == id {
			m.rows = append(m.rows[:i], m.rows[i+1:]...)
			return nil
		}
	}
	return errors.New("row not found")
}

type fakeRedis struct {
	mu      sync.Mutex
	values  map[string]string
	ttls    map[string]time.Duration
	getErr  error
	setErr  error
	expires int
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{values: make(map[string]string), ttls: make(map[string]time.Duration)}
}

func (f *fakeRedis) Set(ctx context.Context, key string, value []byte, expiration time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.setErr != nil {
		return f.setErr
	}
	f.values[key] = string(value)
	f.ttls[key] = expiration
	return nil
}

func (f *fakeRedis) Get(ctx context.Context, key string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return "", f.getErr
	}
	v, ok := f.values[key]
	if !ok {
		return "", errCacheMiss
	}
	return v, nil
}

func (f *fakeRedis) Expire(ctx context.Context, key string, expiration time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.expires++
	f.ttls[key] = expiration
	return nil
}

func (f *fakeRedis) Del(ctx context.Context, keys ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, k := range keys {
		delete(f.values, k)
		delete(f.ttls, k)
	}
	return nil
}

func signedIn(userID int64) *MemoryCredentialStore {
	return NewMemoryCredentialStore(models.Credential{Token: "tok", UserID: userID})
}

package services

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/HammerMeetNail/gamelog/internal/api"
	"github.com/HammerMeetNail/gamelog/internal/logging"
	"github.com/HammerMeetNail/gamelog/internal/models"
)

// RelationshipView is the published state of the viewer's social graph.
type RelationshipView struct {
	States   map[int64]models.RelationshipState
	InFlight map[int64]bool
	Incoming []models.FriendRequest
	// Notice is a transient message about the last failed action.
	Notice string
}

// State returns the believed state toward subjectID, NONE if unknown.
func (v RelationshipView) State(subjectID int64) models.RelationshipState {
	if s, ok := v.States[subjectID]; ok {
		return s
	}
	return models.RelationshipNone
}

func (v RelationshipView) IsInFlight(subjectID int64) bool {
	return v.InFlight[subjectID]
}

// HasIncoming reports whether requesterID has a pending request to the viewer.
func (v RelationshipView) HasIncoming(requesterID int64) bool {
	for _, req := range v.Incoming {
		if req.OtherUser.ID == requesterID {
			return true
		}
	}
	return false
}

// DeriveRelationship computes the viewer's state toward subjectID from the
// server lists: FRIENDS beats PENDING_SENT beats NONE.
func DeriveRelationship(subjectID int64, friends []models.Friend, outgoing []models.FriendRequest) models.RelationshipState {
	for _, f := range friends {
		if f.ID == subjectID {
			return models.RelationshipFriends
		}
	}
	for _, req := range outgoing {
		if req.OtherUser.ID == subjectID {
			return models.RelationshipPendingSent
		}
	}
	return models.RelationshipNone
}

// RelationshipMachine drives the friend-request lifecycle for the signed-in
// viewer. At most one remote mutation per subject is outstanding at a time.
type RelationshipMachine struct {
	repo  *RelationshipRepository
	creds CredentialStore

	mu       sync.Mutex
	states   map[int64]models.RelationshipState
	incoming []models.FriendRequest
	notice   string
	inFlight *WorkingSet[int64]
	store    *stateStore[RelationshipView]
}

func NewRelationshipMachine(repo *RelationshipRepository, creds CredentialStore) *RelationshipMachine {
	m := &RelationshipMachine{
		repo:     repo,
		creds:    creds,
		states:   make(map[int64]models.RelationshipState),
		inFlight: NewWorkingSet[int64](),
	}
	m.store = newStateStore(m.viewLocked())
	return m
}

func (m *RelationshipMachine) View() Observable[RelationshipView] {
	return m.store
}

func (m *RelationshipMachine) State(subjectID int64) models.RelationshipState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stateLocked(subjectID)
}

// Seed records a state observed elsewhere, such as by a profile load. It is
// ignored while a mutation for the subject is in flight.
func (m *RelationshipMachine) Seed(subjectID int64, state models.RelationshipState) {
	if !state.Valid() {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.inFlight.Contains(subjectID) {
		return
	}
	m.states[subjectID] = state
	m.publishLocked()
}

func (m *RelationshipMachine) DismissNotice() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.notice = ""
	m.publishLocked()
}

// Refresh reloads friends, outgoing and incoming lists and re-derives every
// known subject's state from them.
func (m *RelationshipMachine) Refresh(ctx context.Context) error {
	cred, err := bearerFor(ctx, m.creds)
	if err != nil {
		return err
	}

	var (
		friends  []models.Friend
		outgoing []models.FriendRequest
		incoming []models.FriendRequest
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		friends, err = m.repo.ListFriends(gctx, cred.UserID, cred.Token).Get()
		return err
	})
	g.Go(func() error {
		var err error
		outgoing, err = m.repo.ListOutgoing(gctx, cred.Token).Get()
		return err
	})
	g.Go(func() error {
		var err error
		incoming, err = m.repo.ListIncoming(gctx, cred.Token).Get()
		return err
	})
	if err := g.Wait(); err != nil {
		return fmt.Errorf("refresh relationships: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for id := range m.states {
		if !m.inFlight.Contains(id) {
			m.states[id] = models.RelationshipNone
		}
	}
	for _, req := range outgoing {
		if !m.inFlight.Contains(req.OtherUser.ID) {
			m.states[req.OtherUser.ID] = models.RelationshipPendingSent
		}
	}
	for _, f := range friends {
		if !m.inFlight.Contains(f.ID) {
			m.states[f.ID] = models.RelationshipFriends
		}
	}
	m.incoming = incoming
	m.publishLocked()
	return nil
}

// Toggle performs the action implied by the believed state toward
// subjectID: send a request from NONE, cancel it from PENDING_SENT, unfriend
// from FRIENDS. A toggle for a subject already in flight returns
// ErrTransitionInFlight without calling the service.
func (m *RelationshipMachine) Toggle(ctx context.Context, subjectID int64) error {
	cred, err := bearerFor(ctx, m.creds)
	if err != nil {
		return err
	}
	if cred.UserID == subjectID {
		return ErrCannotFriendSelf
	}
	if !m.begin(subjectID) {
		return ErrTransitionInFlight
	}
	defer m.release(subjectID)

	ctx, span := tracer.Start(ctx, "RelationshipMachine.Toggle", trace.WithAttributes(attribute.Int64("subject_id", subjectID)))
	defer span.End()

	transition := OptimisticTransition[models.RelationshipState]{
		Current: func() models.RelationshipState { return m.State(subjectID) },
		Target: func(from models.RelationshipState) models.RelationshipState {
			if from == models.RelationshipNone {
				return models.RelationshipPendingSent
			}
			return models.RelationshipNone
		},
		Remote: func(ctx context.Context, from models.RelationshipState) error {
			switch from {
			case models.RelationshipPendingSent:
				return m.repo.CancelRequest(ctx, subjectID, cred.Token).Err()
			case models.RelationshipFriends:
				return m.repo.Unfriend(ctx, subjectID, cred.Token).Err()
			default:
				return m.repo.SendRequest(ctx, subjectID, cred.Token).Err()
			}
		},
		Reconcile: func(ctx context.Context) (models.RelationshipState, error) {
			return m.reconcile(ctx, cred, subjectID)
		},
		Commit: func(state models.RelationshipState) { m.commit(subjectID, state) },
	}

	state, err := transition.Run(ctx)
	span.SetAttributes(attribute.String("state", string(state)))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "toggle failed")
		logging.Warn("Relationship toggle failed", map[string]interface{}{
			"subject_id": subjectID,
			"state":      string(state),
			"error":      err.Error(),
		})
		m.setNotice("Could not update friendship: " + err.Error())
		return err
	}
	return nil
}

// Accept answers an incoming request. On success the request leaves the
// incoming list and the state becomes FRIENDS in one published update.
func (m *RelationshipMachine) Accept(ctx context.Context, requesterID int64) error {
	return m.answer(ctx, requesterID, "accept", models.RelationshipFriends)
}

// Decline answers an incoming request. On success the request leaves the
// incoming list and the state becomes NONE in one published update. A
// request the service no longer knows fails with ErrRequestNotFound.
func (m *RelationshipMachine) Decline(ctx context.Context, requesterID int64) error {
	return m.answer(ctx, requesterID, "decline", models.RelationshipNone)
}

func (m *RelationshipMachine) answer(ctx context.Context, requesterID int64, op string, target models.RelationshipState) error {
	cred, err := bearerFor(ctx, m.creds)
	if err != nil {
		return err
	}
	if !m.begin(requesterID) {
		return ErrTransitionInFlight
	}
	defer m.release(requesterID)

	ctx, span := tracer.Start(ctx, "RelationshipMachine."+op, trace.WithAttributes(attribute.Int64("requester_id", requesterID)))
	defer span.End()

	res := m.repo.Accept
	if op == "decline" {
		res = m.repo.Decline
	}
	if err := res(ctx, requesterID, cred.Token).Err(); err != nil {
		if api.IsStatus(err, http.StatusNotFound) {
			err = fmt.Errorf("%w: %w", ErrRequestNotFound, err)
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, op+" failed")
		logging.Warn("Friend request answer failed", map[string]interface{}{
			"requester_id": requesterID,
			"action":       op,
			"error":        err.Error(),
		})
		m.setNotice(fmt.Sprintf("Could not %s friend request: %s", op, err.Error()))
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	kept := make([]models.FriendRequest, 0, len(m.incoming))
	for _, req := range m.incoming {
		if req.OtherUser.ID != requesterID {
			kept = append(kept, req)
		}
	}
	m.incoming = kept
	m.states[requesterID] = target
	m.inFlight.Remove(requesterID)
	m.publishLocked()
	return nil
}

// reconcile re-derives the state toward subjectID from the friends and
// outgoing lists after a failed mutation.
func (m *RelationshipMachine) reconcile(ctx context.Context, cred models.Credential, subjectID int64) (models.RelationshipState, error) {
	friends, outgoing, err := fetchRelationshipLists(ctx, m.repo, cred)
	if err != nil {
		return models.RelationshipNone, err
	}
	return DeriveRelationship(subjectID, friends, outgoing), nil
}

func (m *RelationshipMachine) begin(subjectID int64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.inFlight.TryAdd(subjectID) {
		return false
	}
	m.publishLocked()
	return true
}

// commit sets the subject's state and clears its in-flight mark in the same
// published update.
func (m *RelationshipMachine) commit(subjectID int64, state models.RelationshipState) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.states[subjectID] = state
	m.inFlight.Remove(subjectID)
	m.publishLocked()
}

func (m *RelationshipMachine) release(subjectID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.inFlight.Remove(subjectID) {
		m.publishLocked()
	}
}

func (m *RelationshipMachine) setNotice(msg string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.notice = msg
	m.publishLocked()
}

func (m *RelationshipMachine) stateLocked(subjectID int64) models.RelationshipState {
	if s, ok := m.states[subjectID]; ok {
		return s
	}
	return models.RelationshipNone
}

func (m *RelationshipMachine) viewLocked() RelationshipView {
	states := make(map[int64]models.RelationshipState, len(m.states))
	for k, v := range m.states {
		states[k] = v
	}
	incoming := make([]models.FriendRequest, len(m.incoming))
	copy(incoming, m.incoming)
	return RelationshipView{
		States:   states,
		InFlight: m.inFlight.Snapshot(),
		Incoming: incoming,
		Notice:   m.notice,
	}
}

func (m *RelationshipMachine) publishLocked() {
	m.store.set(m.viewLocked())
}

// fetchRelationshipLists loads the viewer's friends and outgoing requests
// concurrently.
func fetchRelationshipLists(ctx context.Context, repo *RelationshipRepository, cred models.Credential) ([]models.Friend, []models.FriendRequest, error) {
	var (
		friends  []models.Friend
		outgoing []models.FriendRequest
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		friends, err = repo.ListFriends(gctx, cred.UserID, cred.Token).Get()
		return err
	})
	g.Go(func() error {
		var err error
		outgoing, err = repo.ListOutgoing(gctx, cred.Token).Get()
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return friends, outgoing, nil
}

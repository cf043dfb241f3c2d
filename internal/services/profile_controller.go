package services

import (
	"context"
	"errors"
	"sync"

	"github.com/HammerMeetNail/gamelog/internal/logging"
	"github.com/HammerMeetNail/gamelog/internal/models"
)

// ProfileView is what a profile screen renders. Snapshot is nil until a
// load succeeds and is always replaced whole.
type ProfileView struct {
	Loading   bool
	SubjectID int64
	Snapshot  *models.ProfileSnapshot
	Err       error
	Notice    string
}

// ProfileController owns the view state of one profile screen slot. Only the
// most recently started load may publish, so a new load cancels the previous
// one whatever its subject. Screens showing profiles side by side each get
// their own controller, and their loads stay independent.
type ProfileController struct {
	aggregator *ProfileAggregator
	machine    *RelationshipMachine

	mu     sync.Mutex
	gen    uint64
	cancel context.CancelFunc
	store  *stateStore[ProfileView]
}

func NewProfileController(aggregator *ProfileAggregator, machine *RelationshipMachine) *ProfileController {
	return &ProfileController{
		aggregator: aggregator,
		machine:    machine,
		store:      newStateStore(ProfileView{}),
	}
}

func (c *ProfileController) View() Observable[ProfileView] {
	return c.store
}

// Load starts a load for subjectID, cancelling any load still running. If
// another load starts before this one finishes, the result is discarded and
// ErrLoadSuperseded is returned.
func (c *ProfileController) Load(ctx context.Context, subjectID int64) (models.ProfileSnapshot, error) {
	c.mu.Lock()
	if c.cancel != nil {
		c.cancel()
	}
	c.gen++
	gen := c.gen
	loadCtx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	c.store.update(func(v ProfileView) ProfileView {
		next := ProfileView{Loading: true, SubjectID: subjectID}
		if v.SubjectID == subjectID {
			next.Snapshot = v.Snapshot
		}
		return next
	})
	c.mu.Unlock()

	snapshot, err := c.aggregator.Load(loadCtx, subjectID)

	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.gen {
		logging.Debug("Discarding superseded profile load", map[string]interface{}{
			"subject_id": subjectID,
		})
		return models.ProfileSnapshot{}, ErrLoadSuperseded
	}
	c.cancel = nil
	cancel()

	if err != nil {
		logging.Error("Profile load failed", map[string]interface{}{
			"subject_id": subjectID,
			"error":      err.Error(),
		})
		c.store.set(ProfileView{SubjectID: subjectID, Err: err})
		return models.ProfileSnapshot{}, err
	}

	if !snapshot.IsOwn && c.machine != nil {
		c.machine.Seed(subjectID, snapshot.Relationship)
	}
	published := snapshot
	c.store.set(ProfileView{SubjectID: subjectID, Snapshot: &published})
	return snapshot, nil
}

// ToggleRelationship toggles the viewer's relationship with the loaded
// subject and republishes the snapshot carrying the resulting state.
func (c *ProfileController) ToggleRelationship(ctx context.Context) error {
	view := c.store.Current()
	if view.Snapshot == nil {
		return ErrNoProfileLoaded
	}
	if view.Snapshot.IsOwn {
		return ErrCannotFriendSelf
	}
	subjectID := view.SubjectID

	err := c.machine.Toggle(ctx, subjectID)
	if errors.Is(err, ErrTransitionInFlight) {
		return err
	}
	state := c.machine.State(subjectID)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.store.update(func(v ProfileView) ProfileView {
		if v.SubjectID != subjectID || v.Snapshot == nil {
			return v
		}
		next := *v.Snapshot
		next.Relationship = state
		v.Snapshot = &next
		v.Notice = ""
		if err != nil {
			v.Notice = "Could not update friendship: " + err.Error()
		}
		return v
	})
	return err
}

func (c *ProfileController) DismissNotice() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.store.update(func(v ProfileView) ProfileView {
		v.Notice = ""
		return v
	})
}

package testutil

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"slices"
	"sync"

	"github.com/roach88/sugarwarrior/internal/remote"
)

// Backend operation names used for failure injection and call counting.
const (
	OpFetchUser   = "fetch_user"
	OpLogin       = "login"
	OpRegister    = "register"
	OpUpdateUser  = "update_user"
	OpSubmitEvent = "submit_event"
	OpFetchEvents = "fetch_events"
	OpDeleteEvent = "delete_event"
)

// FakeBackend is an in-memory remote.Backend.
//
// Users are keyed by anonymous id; remote ids are assigned sequentially
// ("user-1", "event-1", ...). A registration reusing a username fails with
// a 400 StatusError, mirroring the real server's unique index.
//
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type FakeBackend struct {
	// Reward computes the gamification response for a submission. The
	// default awards 10 points and a streak of 1.
	Reward func(sub remote.EventSubmission) remote.SubmitResponse

	// BeforeCall, when set, runs at the start of every operation with
	// the operation name. Tests use it to block calls in flight.
	BeforeCall func(op string)

	mu      sync.Mutex
	nextID  int
	users   map[string]remote.UserRecord
	events  map[string][]remote.EventRecord
	fail    map[string]error
	calls   map[string]int
	updates []map[string]any
}

var _ remote.Backend = (*FakeBackend)(nil)

// NewFakeBackend creates an empty backend.
func NewFakeBackend() *FakeBackend {
	return &FakeBackend{
		users:  make(map[string]remote.UserRecord),
		events: make(map[string][]remote.EventRecord),
		fail:   make(map[string]error),
		calls:  make(map[string]int),
	}
}

// FailOn makes every later call to op return err. A nil err clears it.
func (b *FakeBackend) FailOn(op string, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err == nil {
		delete(b.fail, op)
		return
	}
	b.fail[op] = err
}

// Calls returns how many times op was invoked.
func (b *FakeBackend) Calls(op string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.calls[op]
}

// Updates returns the field maps received by UpdateUser, in order.
func (b *FakeBackend) Updates() []map[string]any {
	b.mu.Lock()
	defer b.mu.Unlock()
	return slices.Clone(b.updates)
}

// SeedUser stores u, assigning a remote id when it has none, and returns it.
func (b *FakeBackend) SeedUser(u remote.UserRecord) remote.UserRecord {
	b.mu.Lock()
	defer b.mu.Unlock()
	if u.ID == "" {
		u.ID = b.newIDLocked("user")
	}
	b.users[u.AnonymousID] = u
	return u
}

// SeedEvent stores an event for the given remote user id and returns it.
func (b *FakeBackend) SeedEvent(remoteUserID string, e remote.EventRecord) remote.EventRecord {
	b.mu.Lock()
	defer b.mu.Unlock()
	if e.ID == "" {
		e.ID = b.newIDLocked("event")
	}
	e.UserID = remoteUserID
	b.events[remoteUserID] = append(b.events[remoteUserID], e)
	return e
}

// DeleteUser drops a user so later lookups miss.
func (b *FakeBackend) DeleteUser(anonymousID string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.users, anonymousID)
}

// User returns the stored user for anonymousID.
func (b *FakeBackend) User(anonymousID string) (remote.UserRecord, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	u, ok := b.users[anonymousID]
	return u, ok
}

// Events returns the stored events of a remote user.
func (b *FakeBackend) Events(remoteUserID string) []remote.EventRecord {
	b.mu.Lock()
	defer b.mu.Unlock()
	return slices.Clone(b.events[remoteUserID])
}

// begin runs the hook, counts the call and returns the injected failure.
// A context cancelled by the time the hook returns fails the call the
// way an aborted HTTP request would.
func (b *FakeBackend) begin(ctx context.Context, op string) error {
	if b.BeforeCall != nil {
		b.BeforeCall(op)
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls[op]++
	if err := ctx.Err(); err != nil {
		return err
	}
	return b.fail[op]
}

func (b *FakeBackend) newIDLocked(prefix string) string {
	b.nextID++
	return fmt.Sprintf("%s-%d", prefix, b.nextID)
}

func notFound(what string) error {
	return &remote.StatusError{StatusCode: http.StatusNotFound, Message: what + " not found"}
}

// FetchUser implements remote.Backend.
func (b *FakeBackend) FetchUser(ctx context.Context, anonymousID string) (remote.UserRecord, error) {
	if err := b.begin(ctx, OpFetchUser); err != nil {
		return remote.UserRecord{}, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	u, ok := b.users[anonymousID]
	if !ok {
		return remote.UserRecord{}, notFound("user")
	}
	return u, nil
}

// Login implements remote.Backend.
func (b *FakeBackend) Login(ctx context.Context, username string) (remote.UserRecord, error) {
	if err := b.begin(ctx, OpLogin); err != nil {
		return remote.UserRecord{}, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, u := range b.users {
		if u.Username == username {
			return u, nil
		}
	}
	return remote.UserRecord{}, notFound("user")
}

// Register implements remote.Backend.
func (b *FakeBackend) Register(ctx context.Context, user remote.UserRecord) (remote.UserRecord, error) {
	if err := b.begin(ctx, OpRegister); err != nil {
		return remote.UserRecord{}, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if user.AnonymousID == "" {
		return remote.UserRecord{}, &remote.StatusError{StatusCode: http.StatusBadRequest, Message: "anonymousID is required"}
	}
	for _, u := range b.users {
		if user.Username != "" && u.Username == user.Username {
			return remote.UserRecord{}, &remote.StatusError{StatusCode: http.StatusBadRequest, Message: "username already taken"}
		}
	}
	user.ID = b.newIDLocked("user")
	b.users[user.AnonymousID] = user
	return user, nil
}

// UpdateUser implements remote.Backend. Fields are overlaid onto the
// stored document by their JSON names.
func (b *FakeBackend) UpdateUser(ctx context.Context, anonymousID string, fields map[string]any) (remote.UserRecord, error) {
	if err := b.begin(ctx, OpUpdateUser); err != nil {
		return remote.UserRecord{}, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.updates = append(b.updates, fields)
	u, ok := b.users[anonymousID]
	if !ok {
		return remote.UserRecord{}, notFound("user")
	}
	doc := make(map[string]any)
	raw, err := json.Marshal(u)
	if err != nil {
		return remote.UserRecord{}, err
	}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return remote.UserRecord{}, err
	}
	for k, v := range fields {
		doc[k] = v
	}
	if raw, err = json.Marshal(doc); err != nil {
		return remote.UserRecord{}, err
	}
	var updated remote.UserRecord
	if err := json.Unmarshal(raw, &updated); err != nil {
		return remote.UserRecord{}, err
	}
	b.users[anonymousID] = updated
	return updated, nil
}

// SubmitEvent implements remote.Backend.
func (b *FakeBackend) SubmitEvent(ctx context.Context, sub remote.EventSubmission) (remote.SubmitResponse, error) {
	if err := b.begin(ctx, OpSubmitEvent); err != nil {
		return remote.SubmitResponse{}, err
	}
	reward := b.Reward
	if reward == nil {
		reward = func(remote.EventSubmission) remote.SubmitResponse {
			return remote.SubmitResponse{Streak: 1, PointsEarned: 10, PointsMessages: []string{"+10 for logging"}}
		}
	}
	resp := reward(sub)

	b.mu.Lock()
	defer b.mu.Unlock()
	rec := remote.EventRecord{
		ID:         b.newIDLocked("event"),
		UserID:     sub.UserID,
		ItemName:   sub.FoodName,
		SugarGrams: sub.SugarGrams,
		Calories:   sub.Calories,
		Category:   sub.Category,
		Method:     sub.Method,
		Timestamp:  remote.Timestamp(sub.Timestamp),
	}
	b.events[sub.UserID] = append(b.events[sub.UserID], rec)
	if resp.EventID == "" {
		resp.EventID = rec.ID
	}
	return resp, nil
}

// FetchEvents implements remote.Backend.
func (b *FakeBackend) FetchEvents(ctx context.Context, remoteUserID string) ([]remote.EventRecord, error) {
	if err := b.begin(ctx, OpFetchEvents); err != nil {
		return nil, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return slices.Clone(b.events[remoteUserID]), nil
}

// DeleteEvent implements remote.Backend.
func (b *FakeBackend) DeleteEvent(ctx context.Context, remoteEventID string) error {
	if err := b.begin(ctx, OpDeleteEvent); err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	for uid, evs := range b.events {
		if i := slices.IndexFunc(evs, func(e remote.EventRecord) bool { return e.ID == remoteEventID }); i >= 0 {
			b.events[uid] = slices.Delete(evs, i, i+1)
			return nil
		}
	}
	return notFound("event")
}

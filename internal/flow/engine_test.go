package flow

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"baraholka/internal/domain/user"
)

// mapStore is a minimal in-test session store.
type mapStore struct {
	mu    sync.Mutex
	items map[user.ID]*Context
}

func newMapStore() *mapStore {
	return &mapStore{items: make(map[user.ID]*Context)}
}

func (s *mapStore) Get(_ context.Context, id user.ID) (*Context, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c, ok := s.items[id]; ok {
		copied := *c
		return &copied, nil
	}
	return nil, nil
}

func (s *mapStore) Put(_ context.Context, id user.ID, c *Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *c
	s.items[id] = &copied
	return nil
}

func (s *mapStore) Delete(_ context.Context, id user.ID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, id)
	return nil
}

func TestDispatchRequiresUser(t *testing.T) {
	e := NewEngine(newMapStore(), nil)
	err := e.Dispatch(context.Background(), Event{Text: "привет"})
	assert.ErrorIs(t, err, ErrNoUser)
}

func TestDispatchRoutesCommandOverState(t *testing.T) {
	store := newMapStore()
	e := NewEngine(store, nil)

	var got string
	require.NoError(t, e.HandleCommand(CommandStart, func(_ context.Context, _ *Session, _ Event) error {
		got = "command"
		return nil
	}))
	require.NoError(t, e.Handle(State{Flow: FlowCreate, Step: StepTitle}, func(_ context.Context, _ *Session, _ Event) error {
		got = "state"
		return nil
	}))
	require.NoError(t, store.Put(context.Background(), 1, &Context{Flow: FlowCreate, Step: StepTitle}))

	require.NoError(t, e.Dispatch(context.Background(), Event{User: 1, Command: CommandStart}))
	assert.Equal(t, "command", got, "commands preempt the live flow")
}

func TestDispatchUnknownCommandIgnored(t *testing.T) {
	e := NewEngine(newMapStore(), nil)
	err := e.Dispatch(context.Background(), Event{User: 1, Command: "unknown"})
	assert.NoError(t, err, "unknown commands are dropped, not failed")
}

func TestDispatchStateHandlerAndPersist(t *testing.T) {
	store := newMapStore()
	e := NewEngine(store, nil)

	require.NoError(t, e.Handle(State{Flow: FlowCreate, Step: StepTitle}, func(_ context.Context, sess *Session, ev Event) error {
		sess.Context().Title = ev.Text
		sess.Advance(StepDescription)
		return nil
	}))
	require.NoError(t, store.Put(context.Background(), 1, &Context{Flow: FlowCreate, Step: StepTitle}))

	require.NoError(t, e.Dispatch(context.Background(), Event{User: 1, Text: "Телефон"}))

	stored, err := store.Get(context.Background(), 1)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, StepDescription, stored.Step)
	assert.Equal(t, "Телефон", stored.Title)
}

func TestDispatchEndDeletesSession(t *testing.T) {
	store := newMapStore()
	e := NewEngine(store, nil)

	require.NoError(t, e.Handle(State{Flow: FlowCreate, Step: StepTitle}, func(_ context.Context, sess *Session, _ Event) error {
		sess.End()
		return nil
	}))
	require.NoError(t, store.Put(context.Background(), 1, &Context{Flow: FlowCreate, Step: StepTitle}))

	require.NoError(t, e.Dispatch(context.Background(), Event{User: 1, Text: "x"}))

	stored, err := store.Get(context.Background(), 1)
	require.NoError(t, err)
	assert.Nil(t, stored)
}

func TestDispatchRootWhenIdle(t *testing.T) {
	e := NewEngine(newMapStore(), nil)
	rootCalled := false
	e.Root(func(_ context.Context, _ *Session, _ Event) error {
		rootCalled = true
		return nil
	})

	require.NoError(t, e.Dispatch(context.Background(), Event{User: 1, Text: "привет"}))
	assert.True(t, rootCalled)
}

func TestDispatchFallbackForStaleEvent(t *testing.T) {
	store := newMapStore()
	e := NewEngine(store, nil)
	fallbackCalled := false
	e.Fallback(func(_ context.Context, _ *Session, _ Event) error {
		fallbackCalled = true
		return nil
	})
	require.NoError(t, store.Put(context.Background(), 1, &Context{Flow: FlowChat, Step: StepActive}))

	// No handler is bound for the chat state: the event is stale.
	require.NoError(t, e.Dispatch(context.Background(), Event{User: 1, Text: "x"}))
	assert.True(t, fallbackCalled)
}

func TestDispatchGlobalAction(t *testing.T) {
	store := newMapStore()
	e := NewEngine(store, nil)
	var got ActionName
	require.NoError(t, e.HandleAction(ActionBack, func(_ context.Context, _ *Session, ev Event) error {
		got = ev.Action.Name
		return nil
	}))
	require.NoError(t, store.Put(context.Background(), 1, &Context{Flow: FlowCreate, Step: StepTitle}))

	require.NoError(t, e.Dispatch(context.Background(), Event{User: 1, Action: &Action{Name: ActionBack}}))
	assert.Equal(t, ActionBack, got, "global actions route in any state")
}

func TestDuplicateRegistrationRejected(t *testing.T) {
	e := NewEngine(newMapStore(), nil)
	h := func(_ context.Context, _ *Session, _ Event) error { return nil }

	require.NoError(t, e.Handle(State{Flow: FlowCreate, Step: StepTitle}, h))
	assert.ErrorIs(t, e.Handle(State{Flow: FlowCreate, Step: StepTitle}, h), ErrHandlerRegistered)
	require.NoError(t, e.HandleCommand(CommandStart, h))
	assert.ErrorIs(t, e.HandleCommand(CommandStart, h), ErrHandlerRegistered)
	require.NoError(t, e.HandleAction(ActionBack, h))
	assert.ErrorIs(t, e.HandleAction(ActionBack, h), ErrHandlerRegistered)
}

func TestDispatchSerializesPerUser(t *testing.T) {
	store := newMapStore()
	e := NewEngine(store, nil)

	inHandler := 0
	maxInHandler := 0
	var mu sync.Mutex
	require.NoError(t, e.Handle(State{Flow: FlowCreate, Step: StepTitle}, func(_ context.Context, _ *Session, _ Event) error {
		mu.Lock()
		inHandler++
		if inHandler > maxInHandler {
			maxInHandler = inHandler
		}
		mu.Unlock()
		time.Sleep(time.Millisecond)
		mu.Lock()
		inHandler--
		mu.Unlock()
		return nil
	}))
	require.NoError(t, store.Put(context.Background(), 1, &Context{Flow: FlowCreate, Step: StepTitle}))

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = e.Dispatch(context.Background(), Event{User: 1, Text: "x"})
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, maxInHandler, "one user's events never interleave")
}

package flow

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"baraholka/internal/domain/user"
)

var (
	ErrNoUser            = errors.New("flow: event has no user")
	ErrHandlerRegistered = errors.New("flow: handler already registered")
)

// SessionStore keeps the single live conversation context per user. It
// is a capability interface so the map can later be backed by an
// external cache without touching the engine.
type SessionStore interface {
	// Get returns the stored context or nil when the user is idle.
	Get(ctx context.Context, id user.ID) (*Context, error)
	Put(ctx context.Context, id user.ID, c *Context) error
	Delete(ctx context.Context, id user.ID) error
}

// Session is the handler's view of one user's conversation state.
type Session struct {
	User user.ID
	ctx  *Context
}

// Context returns the live context, nil when idle.
func (s *Session) Context() *Context { return s.ctx }

// Begin starts a flow, replacing any previous context wholesale.
func (s *Session) Begin(f Flow, step Step) *Context {
	s.ctx = &Context{Flow: f, Step: step}
	return s.ctx
}

// Advance moves the live flow to its next step.
func (s *Session) Advance(step Step) {
	if s.ctx != nil {
		s.ctx.Step = step
	}
}

// End completes or cancels the flow and clears the context.
func (s *Session) End() { s.ctx = nil }

// HandlerFunc consumes one event for one user. Validation failures are
// expressed by re-prompting and leaving the session unchanged, not by
// returning an error; errors are reserved for store and render failures.
type HandlerFunc func(ctx context.Context, sess *Session, ev Event) error

// Engine routes inbound events to handlers by the user's current
// (flow, step) state. Commands and stateless actions are routed by
// global tables regardless of state.
type Engine struct {
	store SessionStore

	states   map[State]HandlerFunc
	commands map[Command]HandlerFunc
	actions  map[ActionName]HandlerFunc

	// root runs for events arriving with no live flow and no other
	// match; it opens the main menu.
	root HandlerFunc
	// fallback runs for in-flow events with no matching handler: a
	// stale button press from a superseded surface. It re-renders the
	// current surface unchanged.
	fallback HandlerFunc

	logger *slog.Logger

	mu    sync.Mutex
	locks map[user.ID]*sync.Mutex
}

func NewEngine(store SessionStore, logger *slog.Logger) *Engine {
	return &Engine{
		store:    store,
		states:   make(map[State]HandlerFunc),
		commands: make(map[Command]HandlerFunc),
		actions:  make(map[ActionName]HandlerFunc),
		logger:   logger,
		locks:    make(map[user.ID]*sync.Mutex),
	}
}

// Handle binds a state to its input handler.
func (e *Engine) Handle(state State, h HandlerFunc) error {
	if _, ok := e.states[state]; ok {
		return ErrHandlerRegistered
	}
	e.states[state] = h
	return nil
}

// HandleCommand binds a slash command, routed in any state.
func (e *Engine) HandleCommand(cmd Command, h HandlerFunc) error {
	if _, ok := e.commands[cmd]; ok {
		return ErrHandlerRegistered
	}
	e.commands[cmd] = h
	return nil
}

// HandleAction binds a stateless button action, routed in any state.
func (e *Engine) HandleAction(name ActionName, h HandlerFunc) error {
	if _, ok := e.actions[name]; ok {
		return ErrHandlerRegistered
	}
	e.actions[name] = h
	return nil
}

// Root sets the idle-state default handler.
func (e *Engine) Root(h HandlerFunc) { e.root = h }

// Fallback sets the stale-event handler.
func (e *Engine) Fallback(h HandlerFunc) { e.fallback = h }

// Dispatch serializes handling per user and routes the event. Two
// near-simultaneous inputs from one user never interleave context
// mutations or renders.
func (e *Engine) Dispatch(ctx context.Context, ev Event) error {
	if ev.User == 0 {
		return ErrNoUser
	}
	lock := e.userLock(ev.User)
	lock.Lock()
	defer lock.Unlock()

	stored, err := e.store.Get(ctx, ev.User)
	if err != nil {
		return err
	}
	sess := &Session{User: ev.User, ctx: stored}

	handler := e.route(sess, ev)
	if handler == nil {
		return nil
	}
	if err := handler(ctx, sess, ev); err != nil {
		return err
	}
	return e.persist(ctx, sess)
}

func (e *Engine) route(sess *Session, ev Event) HandlerFunc {
	if ev.Command != "" {
		if h, ok := e.commands[ev.Command]; ok {
			return h
		}
		if e.logger != nil {
			e.logger.Debug("unknown command ignored", "command", ev.Command, "user", ev.User)
		}
		return nil
	}
	if ev.Action != nil {
		if h, ok := e.actions[ev.Action.Name]; ok {
			return h
		}
	}
	if c := sess.Context(); c != nil {
		if h, ok := e.states[c.State()]; ok {
			return h
		}
		return e.fallback
	}
	return e.root
}

func (e *Engine) persist(ctx context.Context, sess *Session) error {
	if sess.ctx == nil {
		return e.store.Delete(ctx, sess.User)
	}
	return e.store.Put(ctx, sess.User, sess.ctx)
}

func (e *Engine) userLock(id user.ID) *sync.Mutex {
	e.mu.Lock()
	defer e.mu.Unlock()
	lock, ok := e.locks[id]
	if !ok {
		lock = &sync.Mutex{}
		e.locks[id] = lock
	}
	return lock
}

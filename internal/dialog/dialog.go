// Package dialog keeps a stack of running dialogs inside a conversation state property.
package dialog

import (
	"context"
	"errors"
	"fmt"

	"github.com/ent0n29/teamsguide/internal/bot"
	"github.com/ent0n29/teamsguide/internal/state"
)

// PropertyName is the conversation state property holding the dialog stack.
const PropertyName = "dialogState"

var ErrUnknownDialog = errors.New("unknown dialog")

type Status string

const (
	StatusEmpty    Status = "empty"
	StatusWaiting  Status = "waiting"
	StatusComplete Status = "complete"
)

type Instance struct {
	ID    string         `json:"id"`
	State map[string]any `json:"state,omitempty"`
}

// State is the persisted shape of the dialog stack; the top of the stack is the last element.
type State struct {
	DialogStack []Instance `json:"dialogStack"`
}

type Result struct {
	Status Status
	Value  any
}

type Dialog interface {
	ID() string
	Begin(ctx context.Context, dc *Context, options any) (Result, error)
}

// Set is the registry of dialogs a bot can start.
type Set struct {
	property state.Property[State]
	dialogs  map[string]Dialog
}

func NewSet(property state.Property[State]) *Set {
	return &Set{property: property, dialogs: make(map[string]Dialog)}
}

func (s *Set) Add(d Dialog) *Set {
	s.dialogs[d.ID()] = d
	return s
}

func (s *Set) Find(id string) (Dialog, bool) {
	d, ok := s.dialogs[id]
	return d, ok
}

// CreateContext loads the dialog stack from snap.
func (s *Set) CreateContext(tc *bot.TurnContext, snap *state.Snapshot) (*Context, error) {
	st, _, err := s.property.Get(snap)
	if err != nil {
		return nil, err
	}
	return &Context{Turn: tc, set: s, snap: snap, stack: st}, nil
}

// Context drives dialogs for one turn.
type Context struct {
	Turn *bot.TurnContext

	set   *Set
	snap  *state.Snapshot
	stack State
}

// ActiveDialog returns the top of the stack, or nil.
func (dc *Context) ActiveDialog() *Instance {
	n := len(dc.stack.DialogStack)
	if n == 0 {
		return nil
	}
	return &dc.stack.DialogStack[n-1]
}

func (dc *Context) StackDepth() int { return len(dc.stack.DialogStack) }

// BeginDialog pushes id and runs its Begin step.
func (dc *Context) BeginDialog(ctx context.Context, id string, options any) (Result, error) {
	d, ok := dc.set.Find(id)
	if !ok {
		return Result{}, fmt.Errorf("%w: %q", ErrUnknownDialog, id)
	}
	dc.stack.DialogStack = append(dc.stack.DialogStack, Instance{ID: id})
	if err := dc.persist(); err != nil {
		return Result{}, err
	}
	return d.Begin(ctx, dc, options)
}

// EndDialog pops the active dialog and reports completion with value.
func (dc *Context) EndDialog(_ context.Context, value any) (Result, error) {
	if n := len(dc.stack.DialogStack); n > 0 {
		dc.stack.DialogStack = dc.stack.DialogStack[:n-1]
	}
	if err := dc.persist(); err != nil {
		return Result{}, err
	}
	return Result{Status: StatusComplete, Value: value}, nil
}

func (dc *Context) persist() error {
	if dc.stack.DialogStack == nil {
		dc.stack.DialogStack = []Instance{}
	}
	return dc.set.property.Set(dc.snap, dc.stack)
}

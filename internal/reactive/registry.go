// Package reactive re-computes component properties when the properties they
// depend on change. Callbacks are declared with outputs and inputs addressed
// as "component-id.property"; a dispatch runs every callback reachable from
// the changed properties in dependency order.
package reactive

import (
	"context"
	stderrors "errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"heartdash/internal/errors"

	"golang.org/x/sync/errgroup"
)

// Prop addresses a component property
type Prop string

// P builds a Prop from a component id and property name
func P(id, property string) Prop {
	return Prop(id + "." + property)
}

// ID returns the component id
func (p Prop) ID() string {
	id, _, _ := strings.Cut(string(p), ".")
	return id
}

// Property returns the property name
func (p Prop) Property() string {
	_, prop, _ := strings.Cut(string(p), ".")
	return prop
}

// State maps properties to their current values
type State map[Prop]any

// Clone returns a shallow copy
func (s State) Clone() State {
	out := make(State, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

type noUpdate struct{}

// NoUpdate leaves an output unchanged when returned in its position
var NoUpdate any = noUpdate{}

// ErrPreventUpdate aborts a callback without touching any output
var ErrPreventUpdate = stderrors.New("prevent update")

// Func computes the outputs of a callback, in Outputs order
type Func func(ctx context.Context, in Args) ([]any, error)

// Callback declares how outputs are derived from inputs. State properties
// are passed to Fn but do not trigger it.
type Callback struct {
	Name    string
	Outputs []Prop
	Inputs  []Prop
	State   []Prop
	Fn      Func
}

// Registry holds the callbacks of one application
type Registry struct {
	mu        sync.RWMutex
	callbacks []*Callback
	producers map[Prop]*Callback
	levels    [][]*Callback
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{producers: make(map[Prop]*Callback)}
}

// Register adds a callback. Every output may be produced by one callback only.
func (r *Registry) Register(cb Callback) error {
	if len(cb.Outputs) == 0 {
		return errors.ValidationError(fmt.Sprintf("callback %s has no outputs", cb.Name))
	}
	if cb.Fn == nil {
		return errors.ValidationError(fmt.Sprintf("callback %s has no function", cb.Name))
	}
	if cb.Name == "" {
		cb.Name = string(cb.Outputs[0])
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	for _, out := range cb.Outputs {
		if prev, dup := r.producers[out]; dup {
			return errors.ValidationError(fmt.Sprintf("duplicate callback output %s (already set by %s)", out, prev.Name))
		}
	}
	c := cb
	for _, out := range cb.Outputs {
		r.producers[out] = &c
	}
	r.callbacks = append(r.callbacks, &c)
	r.levels = nil
	return nil
}

// MustRegister is Register for static wiring
func (r *Registry) MustRegister(cb Callback) {
	if err := r.Register(cb); err != nil {
		panic(err)
	}
}

// Callbacks lists the registered callback names
func (r *Registry) Callbacks() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, len(r.callbacks))
	for i, cb := range r.callbacks {
		out[i] = cb.Name
	}
	return out
}

// Validate orders the callbacks by dependency and rejects cycles
func (r *Registry) Validate() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, err := r.order()
	return err
}

// order groups callbacks into levels: a callback's level is one more than
// the deepest callback producing one of its inputs. Caller holds r.mu.
func (r *Registry) order() ([][]*Callback, error) {
	if r.levels != nil {
		return r.levels, nil
	}
	indegree := make(map[*Callback]int, len(r.callbacks))
	dependents := make(map[*Callback][]*Callback, len(r.callbacks))
	for _, cb := range r.callbacks {
		seen := map[*Callback]bool{}
		for _, in := range cb.Inputs {
			producer, ok := r.producers[in]
			if !ok || seen[producer] {
				continue
			}
			seen[producer] = true
			indegree[cb]++
			dependents[producer] = append(dependents[producer], cb)
		}
	}

	var levels [][]*Callback
	var current []*Callback
	for _, cb := range r.callbacks {
		if indegree[cb] == 0 {
			current = append(current, cb)
		}
	}
	placed := 0
	for len(current) > 0 {
		levels = append(levels, current)
		placed += len(current)
		var next []*Callback
		for _, cb := range current {
			for _, dep := range dependents[cb] {
				indegree[dep]--
				if indegree[dep] == 0 {
					next = append(next, dep)
				}
			}
		}
		current = next
	}
	if placed != len(r.callbacks) {
		var stuck []string
		for _, cb := range r.callbacks {
			if indegree[cb] > 0 {
				stuck = append(stuck, cb.Name)
			}
		}
		sort.Strings(stuck)
		return nil, errors.ValidationError("callback cycle between " + strings.Join(stuck, ", "))
	}
	r.levels = levels
	return levels, nil
}

// Dispatch runs every callback whose inputs changed, directly or through an
// earlier callback's outputs, and returns the outputs that were updated.
// The given state is not modified. Callbacks on the same dependency level
// run concurrently.
func (r *Registry) Dispatch(ctx context.Context, state State, changed ...Prop) (State, error) {
	r.mu.Lock()
	levels, err := r.order()
	r.mu.Unlock()
	if err != nil {
		return nil, err
	}

	current := state.Clone()
	dirty := make(map[Prop]bool, len(changed))
	for _, p := range changed {
		dirty[p] = true
	}
	updates := State{}

	for _, level := range levels {
		var triggered []*Callback
		for _, cb := range level {
			for _, in := range cb.Inputs {
				if dirty[in] {
					triggered = append(triggered, cb)
					break
				}
			}
		}
		if len(triggered) == 0 {
			continue
		}

		results := make([][]any, len(triggered))
		g, gctx := errgroup.WithContext(ctx)
		for i, cb := range triggered {
			args := newArgs(current, cb)
			g.Go(func() error {
				out, err := cb.Fn(gctx, args)
				if stderrors.Is(err, ErrPreventUpdate) {
					return nil
				}
				if err != nil {
					return errors.Wrapf(err, "callback %s failed", cb.Name)
				}
				if len(out) != len(cb.Outputs) {
					return errors.InternalError(fmt.Sprintf("callback %s returned %d values for %d outputs", cb.Name, len(out), len(cb.Outputs)))
				}
				results[i] = out
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}

		for i, cb := range triggered {
			if results[i] == nil {
				continue
			}
			for j, prop := range cb.Outputs {
				v := results[i][j]
				if _, skip := v.(noUpdate); skip {
					continue
				}
				current[prop] = v
				updates[prop] = v
				dirty[prop] = true
			}
		}
	}
	return updates, nil
}

// Inputs lists every property some callback listens to, sorted
func (r *Registry) Inputs() []Prop {
	r.mu.RLock()
	defer r.mu.RUnlock()
	seen := map[Prop]bool{}
	for _, cb := range r.callbacks {
		for _, in := range cb.Inputs {
			seen[in] = true
		}
	}
	out := make([]Prop, 0, len(seen))
	for p := range seen {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// DispatchAll runs every callback, as on first page load
func (r *Registry) DispatchAll(ctx context.Context, state State) (State, error) {
	return r.Dispatch(ctx, state, r.Inputs()...)
}

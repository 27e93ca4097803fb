package reactive

import (
	"context"
	stderrors "errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"heartdash/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func double(in, out Prop) Callback {
	return Callback{
		Name:    string(out),
		Inputs:  []Prop{in},
		Outputs: []Prop{out},
		Fn: func(_ context.Context, a Args) ([]any, error) {
			n := a.Int(in)
			if n == nil {
				return []any{NoUpdate}, nil
			}
			return []any{*n * 2}, nil
		},
	}
}

func TestPropParts(t *testing.T) {
	p := P("year-slider", "value")
	assert.Equal(t, Prop("year-slider.value"), p)
	assert.Equal(t, "year-slider", p.ID())
	assert.Equal(t, "value", p.Property())
}

func TestRegisterRejectsDuplicateOutput(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(double("a.value", "b.value")))

	err := r.Register(double("c.value", "b.value"))
	assert.Equal(t, errors.CodeValidationError, errors.GetCode(err))

	err = r.Register(Callback{Name: "empty", Fn: func(context.Context, Args) ([]any, error) { return nil, nil }})
	assert.Equal(t, errors.CodeValidationError, errors.GetCode(err))
}

func TestValidateDetectsCycle(t *testing.T) {
	r := NewRegistry()
	r.MustRegister(double("a.value", "b.value"))
	r.MustRegister(double("b.value", "c.value"))
	require.NoError(t, r.Validate())

	r.MustRegister(double("c.value", "a.value"))
	err := r.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cycle")

	_, err = r.Dispatch(context.Background(), State{}, "a.value")
	assert.Error(t, err)
}

func TestDispatchPropagatesInOrder(t *testing.T) {
	r := NewRegistry()
	// registered out of dependency order on purpose
	r.MustRegister(double("b.value", "c.value"))
	r.MustRegister(double("a.value", "b.value"))
	r.MustRegister(double("x.value", "y.value"))

	state := State{"a.value": 1, "x.value": 5}
	updates, err := r.Dispatch(context.Background(), state, "a.value")
	require.NoError(t, err)

	assert.Equal(t, State{"b.value": 2, "c.value": 4}, updates)
	assert.NotContains(t, state, Prop("b.value"), "input state is not modified")
}

func TestDispatchNoUpdateStopsPropagation(t *testing.T) {
	r := NewRegistry()
	r.MustRegister(double("a.value", "b.value"))
	r.MustRegister(double("b.value", "c.value"))

	updates, err := r.Dispatch(context.Background(), State{"a.value": "not a number"}, "a.value")
	require.NoError(t, err)
	assert.Empty(t, updates)
}

func TestDispatchPreventUpdateAndErrors(t *testing.T) {
	r := NewRegistry()
	r.MustRegister(Callback{
		Name:    "skip",
		Inputs:  []Prop{"a.value"},
		Outputs: []Prop{"b.value"},
		Fn: func(context.Context, Args) ([]any, error) {
			return nil, ErrPreventUpdate
		},
	})
	updates, err := r.Dispatch(context.Background(), State{}, "a.value")
	require.NoError(t, err)
	assert.Empty(t, updates)

	boom := stderrors.New("boom")
	r.MustRegister(Callback{
		Name:    "fail",
		Inputs:  []Prop{"c.value"},
		Outputs: []Prop{"d.value"},
		Fn: func(context.Context, Args) ([]any, error) {
			return nil, boom
		},
	})
	_, err = r.Dispatch(context.Background(), State{}, "c.value")
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "fail")
}

func TestDispatchChecksOutputArity(t *testing.T) {
	r := NewRegistry()
	r.MustRegister(Callback{
		Inputs:  []Prop{"a.value"},
		Outputs: []Prop{"b.value", "b.style"},
		Fn: func(context.Context, Args) ([]any, error) {
			return []any{1}, nil
		},
	})
	_, err := r.Dispatch(context.Background(), State{}, "a.value")
	assert.Equal(t, errors.CodeInternalError, errors.GetCode(err))
}

func TestStatePropsDoNotTrigger(t *testing.T) {
	var calls atomic.Int32
	r := NewRegistry()
	r.MustRegister(Callback{
		Inputs:  []Prop{"a.value"},
		State:   []Prop{"s.value"},
		Outputs: []Prop{"out.children"},
		Fn: func(_ context.Context, a Args) ([]any, error) {
			calls.Add(1)
			return []any{a.String("a.value") + "/" + a.String("s.value")}, nil
		},
	})

	updates, err := r.Dispatch(context.Background(), State{"a.value": "x", "s.value": "y"}, "s.value")
	require.NoError(t, err)
	assert.Empty(t, updates)
	assert.Equal(t, int32(0), calls.Load())

	updates, err = r.DispatchAll(context.Background(), State{"a.value": "x", "s.value": "y"})
	require.NoError(t, err)
	assert.Equal(t, "x/y", updates["out.children"])
}

func TestArgsConversions(t *testing.T) {
	a := NewArgs(map[Prop]any{
		"f.value":    2015.0,
		"frac.value": 2015.5,
		"s.value":    "2001",
		"list.value": []any{"France", "", "Spain"},
		"one.value":  "Chad",
	})
	require.NotNil(t, a.Int("f.value"))
	assert.Equal(t, 2015, *a.Int("f.value"))
	assert.Nil(t, a.Int("frac.value"))
	assert.Equal(t, 2001, *a.Int("s.value"))
	assert.Nil(t, a.Int("missing.value"))
	assert.Equal(t, []string{"France", "Spain"}, a.Strings("list.value"))
	assert.Equal(t, []string{"Chad"}, a.Strings("one.value"))
	assert.Equal(t, "", a.String("missing.value"))
}

func TestSessions(t *testing.T) {
	s := NewSessions(func() State { return State{"year.value": 2000} })
	sess := s.Create()
	assert.Equal(t, 2000, sess.Snapshot()["year.value"])

	got, err := s.Get(sess.ID)
	require.NoError(t, err)
	assert.Same(t, sess, got)

	_, err = s.Get("nope")
	assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))

	sess.Apply(State{"year.value": 2010})
	assert.Equal(t, 2010, s.GetOrCreate(sess.ID).Snapshot()["year.value"])
	assert.NotEqual(t, sess.ID, s.GetOrCreate("").ID)
	assert.Equal(t, 2, s.Len())

	assert.Equal(t, 0, s.Prune(time.Hour))
	assert.Equal(t, 2, s.Prune(-time.Second))
	assert.Equal(t, 0, s.Len())
}

func TestSessionUpdatesDoNotInterleave(t *testing.T) {
	sess := NewSessions(func() State { return State{"clicks.n": 0} }).Create()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := sess.Update(func(st State) (State, error) {
				n := st["clicks.n"].(int)
				time.Sleep(time.Millisecond)
				return State{"clicks.n": n + 1}, nil
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
	assert.Equal(t, 50, sess.Snapshot()["clicks.n"])

	err := sess.Update(func(st State) (State, error) {
		return State{"clicks.n": -1}, stderrors.New("dispatch failed")
	})
	assert.Error(t, err)
	assert.Equal(t, 50, sess.Snapshot()["clicks.n"], "failed updates are not merged")
}

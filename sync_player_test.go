package fsm_test

import (
	"encoding/json"
	"sync"
	"testing"

	. "github.com/enetx/tickfsm"
)

func TestSyncPlayer_ConcurrentReaders(t *testing.T) {
	sp := NewPlayer(controller(t)).Sync()

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()

		for i := range 200 {
			walk := Float(0)
			if i%2 == 0 {
				walk = Float(1)
			}

			if _, err := sp.SetParameter("walk", walk); err != nil {
				t.Error(err)
				return
			}

			if err := sp.Tick(1.0 / 60); err != nil {
				t.Error(err)
				return
			}
		}
	}()

	for range 4 {
		wg.Add(1)
		go func() {
			defer wg.Done()

			for range 200 {
				snap := sp.Snapshot()
				if s := snap.Current(); s != "Idle" && s != "Walk" {
					t.Errorf("unexpected state %q", s)
					return
				}

				_ = sp.Path()
				_ = sp.ToDOT()
			}
		}()
	}

	wg.Wait()
}

func TestSyncPlayer_StackAndState(t *testing.T) {
	sp := NewPlayer(stackMachine(t), WithStackEntry(true)).Sync()

	assertNoError(t, sp.PushState("Options"))
	assertEqual(t, sp.Current(), State("Options"))

	data, err := json.Marshal(sp)
	assertNoError(t, err)

	removed, err := sp.PopState()
	assertNoError(t, err)
	assertEqual(t, removed, State("Options"))

	assertNoError(t, json.Unmarshal(data, sp))
	assertEqual(t, sp.Current(), State("Options"))

	sp.Reset()
	assertEqual(t, sp.Current(), State("Menu"))

	sp.SetTrigger("play")
	assertNoError(t, sp.Tick(1))
	assertEqual(t, sp.Current(), State("Game"))

	v, err := sp.GetParameter("missing")
	assertFalse(t, v.IsValid())
	assertErrorAs[*ErrUndefinedParameter](t, err)

	next, err := NewBuilder("Menu").State("Menu", "Game").Build()
	assertNoError(t, err)
	assertNoError(t, sp.Reload(next))
}

func TestSnapshot_IsDetached(t *testing.T) {
	p := NewPlayer(platformer(t))
	p.SetTrigger("space")
	assertNoError(t, p.Tick(1))

	var view View = p.Snapshot()

	assertEqual(t, view.Current(), State("Jump"))
	assertEqual(t, view.Path(), State("Jump/Rise"))
	assertSlice(t, view.Stack(), "Idle")
	assertEqual(t, view.Definition(), p.Definition())

	params := view.Parameters()
	params["on_floor"] = Bool(false)

	v, err := p.GetParameter("on_floor")
	assertNoError(t, err)
	assertEqual(t, v, Bool(true))
	assertEqual(t, view.Parameters()["on_floor"], Bool(true))

	nested := p.Snapshot().Nested()
	assertTrue(t, nested != nil)
	assertEqual(t, nested.Current(), State("Rise"))
	assertEqual(t, nested.LocalParameters()["vy"], Float(-5))

	// Later ticks do not leak into an earlier snapshot.
	_, err = p.SetParameter("on_floor", Bool(false))
	assertNoError(t, err)
	assertNoError(t, p.Tick(1))
	assertEqual(t, view.Current(), State("Jump"))
	assertEqual(t, p.Current(), State("Fall"))
}

func TestSnapshot_Triggers(t *testing.T) {
	p := NewPlayer(controller(t))
	p.SetTrigger("b")
	p.SetTrigger("a")

	snap := p.Snapshot()
	assertSlice(t, snap.Triggers(), "a", "b")

	p.Store().ClearTriggers()
	assertEqual(t, snap.Triggers().Len(), 2)
}

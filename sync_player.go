package fsm

import "github.com/enetx/g"

// Interface compliance check.
var _ Runner = (*SyncPlayer)(nil)

// Sync wraps p for use from several goroutines. The wrapped player must not be
// used directly afterwards. Listeners run under the write lock and must not call
// back into the SyncPlayer.
func (p *Player) Sync() *SyncPlayer { return &SyncPlayer{player: p} }

// Tick is the thread-safe version of Player.Tick.
func (sp *SyncPlayer) Tick(delta float64) error {
	sp.mu.Lock()
	defer sp.mu.Unlock()

	return sp.player.Tick(delta)
}

// SetParameter is the thread-safe version of Player.SetParameter.
func (sp *SyncPlayer) SetParameter(name g.String, v Value) (g.Option[Value], error) {
	sp.mu.Lock()
	defer sp.mu.Unlock()

	return sp.player.SetParameter(name, v)
}

// GetParameter is the thread-safe version of Player.GetParameter.
func (sp *SyncPlayer) GetParameter(name g.String) (Value, error) {
	sp.mu.RLock()
	defer sp.mu.RUnlock()

	return sp.player.GetParameter(name)
}

// SetTrigger is the thread-safe version of Player.SetTrigger.
func (sp *SyncPlayer) SetTrigger(name Trigger) {
	sp.mu.Lock()
	defer sp.mu.Unlock()

	sp.player.SetTrigger(name)
}

// Current is the thread-safe version of Player.Current.
func (sp *SyncPlayer) Current() State {
	sp.mu.RLock()
	defer sp.mu.RUnlock()

	return sp.player.Current()
}

// Path is the thread-safe version of Player.Path.
func (sp *SyncPlayer) Path() State {
	sp.mu.RLock()
	defer sp.mu.RUnlock()

	return sp.player.Path()
}

// Snapshot is the thread-safe version of Player.Snapshot.
// It is the only way inspectors on other goroutines should read runtime state.
func (sp *SyncPlayer) Snapshot() *Snapshot {
	sp.mu.RLock()
	defer sp.mu.RUnlock()

	return sp.player.Snapshot()
}

// PushState is the thread-safe version of Player.PushState.
func (sp *SyncPlayer) PushState(name State) error {
	sp.mu.Lock()
	defer sp.mu.Unlock()

	return sp.player.PushState(name)
}

// PopState is the thread-safe version of Player.PopState.
func (sp *SyncPlayer) PopState() (State, error) {
	sp.mu.Lock()
	defer sp.mu.Unlock()

	return sp.player.PopState()
}

// Reset is the thread-safe version of Player.Reset.
func (sp *SyncPlayer) Reset() {
	sp.mu.Lock()
	defer sp.mu.Unlock()

	sp.player.Reset()
}

// Reload is the thread-safe version of Player.Reload.
func (sp *SyncPlayer) Reload(def *Definition) error {
	sp.mu.Lock()
	defer sp.mu.Unlock()

	return sp.player.Reload(def)
}

// ToDOT renders the definition of the wrapped player with its active state highlighted.
func (sp *SyncPlayer) ToDOT() g.String {
	sp.mu.RLock()
	defer sp.mu.RUnlock()

	return sp.player.def.ToDOT(sp.player.Path())
}

// MarshalJSON implements the json.Marshaler interface for thread-safe
// serialization of the player's runtime state.
func (sp *SyncPlayer) MarshalJSON() ([]byte, error) {
	sp.mu.RLock()
	defer sp.mu.RUnlock()

	return sp.player.MarshalJSON()
}

// UnmarshalJSON implements the json.Unmarshaler interface for thread-safe
// restoration of the player's runtime state.
func (sp *SyncPlayer) UnmarshalJSON(data []byte) error {
	sp.mu.Lock()
	defer sp.mu.Unlock()

	return sp.player.UnmarshalJSON(data)
}

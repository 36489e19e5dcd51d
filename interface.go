package fsm

import "github.com/enetx/g"

// Runner is the runtime surface shared by Player and SyncPlayer.
type Runner interface {
	Tick(delta float64) error
	SetParameter(name g.String, v Value) (g.Option[Value], error)
	GetParameter(name g.String) (Value, error)
	SetTrigger(name Trigger)
	Current() State
	Path() State
	Snapshot() *Snapshot
	Reset()
	MarshalJSON() ([]byte, error)
	UnmarshalJSON(data []byte) error
}

var _ Runner = (*Player)(nil)

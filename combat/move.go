package combat

import "github.com/jakecoffman/cp"

// MoveDirective slides an actor to Goal at Speed units per second.
type MoveDirective struct {
	Actor ActorID
	Goal  cp.Vector
	Speed float64
}

// Tick advances a by one step of dt seconds and reports whether it arrived.
// The last step lands exactly on Goal.
func (m MoveDirective) Tick(a *Actor, dt float64) bool {
	step := m.Speed * dt
	d := m.Goal.Sub(a.Position)
	dist := d.Length()
	if dist <= step {
		a.MoveTo(m.Goal)
		return true
	}
	a.MoveTo(a.Position.Add(d.Mult(step / dist)))
	return false
}

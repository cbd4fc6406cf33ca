package combat

import "fmt"

type BuffKind int

const (
	DamageOverTime BuffKind = iota
	UnableConcentrate
	UnableMove
	UnableAction
	AttackUp
	DefenseUp
)

func (k BuffKind) String() string {
	switch k {
	case DamageOverTime:
		return "damage_over_time"
	case UnableConcentrate:
		return "unable_concentrate"
	case UnableMove:
		return "unable_move"
	case UnableAction:
		return "unable_action"
	case AttackUp:
		return "attack_up"
	case DefenseUp:
		return "defense_up"
	}
	return fmt.Sprintf("buff(%d)", int(k))
}

// Timing is the point of a round at which a buff ticks.
type Timing int

const (
	AtRoundStart Timing = iota
	AtRoundEnd
)

// Buff is a timed status on an actor. Duration counts ticks left.
type Buff struct {
	Kind     BuffKind
	Duration int
	Amount   float64
	Timing   Timing
}

// NewBuff returns a buff with the timing its kind uses. UnableAction ticks at
// round start so it can cancel that round; everything else at round end.
func NewBuff(kind BuffKind, duration int, amount float64) Buff {
	t := AtRoundEnd
	if kind == UnableAction {
		t = AtRoundStart
	}
	return Buff{Kind: kind, Duration: duration, Amount: amount, Timing: t}
}

func (b Buff) String() string {
	if b.Amount != 0 {
		return fmt.Sprintf("%s(%g) x%d", b.Kind, b.Amount, b.Duration)
	}
	return fmt.Sprintf("%s x%d", b.Kind, b.Duration)
}

func (b Buff) allowAction() bool { return b.Kind != UnableAction }
func (b Buff) allowMove() bool { return b.Kind != UnableMove }
func (b Buff) allowConcentrate() bool { return b.Kind != UnableConcentrate }

func (b Buff) attack(atk float64) float64 {
	if b.Kind == AttackUp {
		return atk + b.Amount
	}
	return atk
}

func (b Buff) defense(def float64) float64 {
	if b.Kind == DefenseUp {
		return def + b.Amount
	}
	return def
}

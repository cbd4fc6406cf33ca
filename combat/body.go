package combat

// BodyRegion is the part of the body a strike lands on.
type BodyRegion int

const (
	Up BodyRegion = iota
	Center
	Down
)

func (r BodyRegion) String() string {
	switch r {
	case Up:
		return "up"
	case Down:
		return "down"
	}
	return "center"
}

// Penalty is the buff applied when the region breaks.
func (r BodyRegion) Penalty() BuffKind {
	switch r {
	case Up:
		return UnableConcentrate
	case Down:
		return UnableMove
	}
	return UnableAction
}

// RegionFor picks the region for a strike angle in degrees from +X: strikes
// from within 30 degrees of straight above or below hit Up or Down.
func RegionFor(angle float64) BodyRegion {
	const lo, hi = 60.0, 120.0
	switch {
	case lo < angle && angle < hi:
		return Up
	case lo < -angle && -angle < hi:
		return Down
	}
	return Center
}

// BodyHitPoints tracks the three regions separately. A region that reaches 0
// is restored to std*(1+n*n), n being how often it broke before.
type BodyHitPoints struct {
	std    float64
	hp     [3]float64
	breaks [3]int
}

func NewBodyHitPoints(std float64) *BodyHitPoints {
	b := &BodyHitPoints{std: std}
	for i := range b.hp {
		b.hp[i] = std
	}
	return b
}

func (b *BodyHitPoints) HP(r BodyRegion) float64 { return b.hp[r] }

func (b *BodyHitPoints) Breaks(r BodyRegion) int { return b.breaks[r] }

// Take removes amount from r and reports whether the region broke.
func (b *BodyHitPoints) Take(r BodyRegion, amount float64) bool {
	v := b.hp[r] - amount
	if v > 0 {
		b.hp[r] = v
		return false
	}
	n := float64(b.breaks[r])
	b.hp[r] = b.std * (1 + n*n)
	b.breaks[r]++
	return true
}

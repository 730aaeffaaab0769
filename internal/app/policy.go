package app

type BackpressureAction int

const (
	NoAction BackpressureAction = iota
	DropSnapshot
	KickMember
)

// Policy decides what happens when a client cannot keep up with snapshots.
type Policy interface {
	OnBackPressure(dropped int) BackpressureAction
}

// SimplePolicy drops snapshots until MaxDropped consecutive ones were lost,
// then kicks the client. A zero MaxDropped never kicks.
type SimplePolicy struct {
	MaxDropped int
}

func (p SimplePolicy) OnBackPressure(dropped int) BackpressureAction {
	if dropped <= 0 {
		return NoAction
	}
	if p.MaxDropped > 0 && dropped >= p.MaxDropped {
		return KickMember
	}
	return DropSnapshot
}

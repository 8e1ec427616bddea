package intercept

import "time"

// Class is an aircraft's role in the current tick, re-evaluated fresh every
// tick from its current state — unlike the Cold/Fast/Interceptor/Cooling
// lifecycle state, Class carries no memory of its own (spec.md §3).
type Class int

const (
	// Other is any aircraft that is neither a plausible Interceptor nor a
	// plausible Target this tick.
	Other Class = iota
	Interceptor
	Target
)

func (c Class) String() string {
	switch c {
	case Interceptor:
		return "interceptor"
	case Target:
		return "target"
	default:
		return "other"
	}
}

// Classify implements spec.md §4.3: an aircraft is an Interceptor if
// TimeSeenFast is set, now is less than InterceptorTimeout past it, it has
// been seen fast on more than InterceptorMinFastCount ticks (sustained fast
// flight, not a single spike), and it isn't on the ground. It's a Target if
// its current speed falls strictly between TargetMinSpeedKts and
// TargetMaxSpeedKts and it isn't on the ground. Interceptor takes
// precedence when both would otherwise apply.
func Classify(ac *Ac, now time.Time, thr Thresholds) Class {
	if ac.OnGround {
		return Other
	}

	if ac.TimeSeenFast != nil &&
		now.Sub(*ac.TimeSeenFast) < thr.InterceptorTimeout &&
		ac.FastCount > thr.InterceptorMinFastCount {
		return Interceptor
	}

	if ac.CurSpeed > thr.TargetMinSpeedKts && ac.CurSpeed < thr.TargetMaxSpeedKts {
		return Target
	}

	return Other
}

package retrieval

import (
	"fmt"
	"math"

	"github.com/sandevgo/scoutbot/internal/config"
)

const (
	CurveHyperbolic  = "hyperbolic"
	CurveExponential = "exponential"
	CurveNone        = "none"

	DefaultDecayScaleHours = 24.0
	DefaultDecayFloor      = 0.1
)

// DecayPolicy maps the age of a record in hours to a multiplier in (0,1].
// Implementations must be monotonically non-increasing in age.
type DecayPolicy interface {
	Multiplier(ageHours float64) float64
}

// DecayFunc adapts a plain function to DecayPolicy.
type DecayFunc func(ageHours float64) float64

func (f DecayFunc) Multiplier(ageHours float64) float64 {
	return f(ageHours)
}

// Hyperbolic decays as 1/(1+age/scale): a day-old article with a 24h scale
// keeps half its weight.
func Hyperbolic(scaleHours float64) DecayPolicy {
	if scaleHours <= 0 {
		scaleHours = DefaultDecayScaleHours
	}
	return DecayFunc(func(age float64) float64 {
		return 1 / (1 + age/scaleHours)
	})
}

// Exponential halves the weight every halfLifeHours.
func Exponential(halfLifeHours float64) DecayPolicy {
	if halfLifeHours <= 0 {
		halfLifeHours = DefaultDecayScaleHours
	}
	return DecayFunc(func(age float64) float64 {
		return math.Pow(0.5, age/halfLifeHours)
	})
}

// NoDecay ranks on similarity alone.
func NoDecay() DecayPolicy {
	return DecayFunc(func(float64) float64 { return 1 })
}

func NewDecayPolicy(cfg *config.RetrievalConfig) (DecayPolicy, error) {
	switch cfg.DecayCurve {
	case "", CurveHyperbolic:
		return Hyperbolic(cfg.DecayScaleHours), nil
	case CurveExponential:
		return Exponential(cfg.DecayScaleHours), nil
	case CurveNone:
		return NoDecay(), nil
	default:
		return nil, fmt.Errorf("unknown decay curve: %s", cfg.DecayCurve)
	}
}

func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return lo
	}
	return math.Max(lo, math.Min(hi, v))
}

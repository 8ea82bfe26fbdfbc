package weather

import (
	"math/rand"
	"strings"
)

// EffectKind is the closed set of decorative weather effects. Selection is a
// pure mapping from current conditions; each kind carries its own particle
// generation strategy.
type EffectKind string

const (
	EffectNone   EffectKind = "none"
	EffectRain   EffectKind = "rain"
	EffectSnow   EffectKind = "snow"
	EffectCloudy EffectKind = "cloudy"
	EffectWindy  EffectKind = "windy"
	EffectSunny  EffectKind = "sunny"
)

// EffectFor maps current conditions to an effect kind. Wind dominates, then
// precipitation, then cloud cover, then clear daytime sun. Thunder renders
// as rain; there is no dedicated storm effect.
func EffectFor(cur Current) EffectKind {
	code := cur.ConditionCode

	if cur.WindKph > 29 || containsFold(cur.ConditionText, "blizzard") || containsFold(cur.ConditionText, "gale") {
		return EffectWindy
	}
	if (code >= 1150 && code <= 1201) || (code >= 1240 && code <= 1252) || code == 1063 {
		return EffectRain
	}
	if (code >= 1204 && code <= 1237) || (code >= 1255 && code <= 1264) || code == 1066 {
		return EffectSnow
	}
	if code >= 1273 && code <= 1282 {
		return EffectRain
	}
	if code == 1003 || code == 1006 || code == 1009 {
		return EffectCloudy
	}
	if code == 1000 && cur.IsDay {
		return EffectSunny
	}
	return EffectNone
}

// Particle is one animated element of an effect: a spawn position in
// viewport-relative units, an animation delay and duration, and a scale.
type Particle struct {
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Delay    float64 `json:"delay"`
	Duration float64 `json:"duration"`
	Scale    float64 `json:"scale"`
}

// Plan describes the full particle set for one effect kind.
type Plan struct {
	Kind      EffectKind `json:"kind"`
	Particles []Particle `json:"particles"`
}

// PlanFor generates the particle plan for an effect kind. The counts and
// timing ranges follow the client animation: dense fast rain, sparse slow
// clouds, a single sun.
func PlanFor(kind EffectKind, rng *rand.Rand) Plan {
	p := Plan{Kind: kind, Particles: []Particle{}}
	switch kind {
	case EffectRain:
		for i := 0; i < 100; i++ {
			p.Particles = append(p.Particles, Particle{
				X:        rng.Float64() * 100,
				Y:        -20,
				Delay:    rng.Float64() * 5,
				Duration: 0.5 + rng.Float64()*0.5,
				Scale:    1,
			})
		}
	case EffectSnow:
		for i := 0; i < 150; i++ {
			p.Particles = append(p.Particles, Particle{
				X:        rng.Float64() * 100,
				Y:        -10,
				Delay:    rng.Float64() * 5,
				Duration: 5 + rng.Float64()*10,
				Scale:    1,
			})
		}
	case EffectCloudy:
		for i := 0; i < 15; i++ {
			p.Particles = append(p.Particles, Particle{
				X:        -25,
				Y:        -10 + rng.Float64()*20,
				Delay:    rng.Float64() * 10,
				Duration: 20 + rng.Float64()*20,
				Scale:    0.5 + rng.Float64(),
			})
		}
	case EffectWindy:
		for i := 0; i < 50; i++ {
			p.Particles = append(p.Particles, Particle{
				X:        -3,
				Y:        rng.Float64() * 100,
				Delay:    rng.Float64() * 5,
				Duration: 4 + rng.Float64()*4,
				Scale:    0.8 + rng.Float64()*0.4,
			})
		}
	case EffectSunny:
		p.Particles = append(p.Particles, Particle{X: 50, Y: 10, Scale: 1})
	}
	return p
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), needle)
}

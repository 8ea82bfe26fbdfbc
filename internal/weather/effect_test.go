package weather

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEffectFor(t *testing.T) {
	cases := []struct {
		name string
		cur  Current
		want EffectKind
	}{
		{"strong wind dominates", Current{ConditionCode: 1183, WindKph: 35}, EffectWindy},
		{"blizzard text is windy", Current{ConditionCode: 1114, ConditionText: "Blizzard"}, EffectWindy},
		{"gale text is windy", Current{ConditionText: "Moderate gale"}, EffectWindy},
		{"light rain", Current{ConditionCode: 1183}, EffectRain},
		{"drizzle band start", Current{ConditionCode: 1150}, EffectRain},
		{"rain shower band end", Current{ConditionCode: 1252}, EffectRain},
		{"patchy rain possible", Current{ConditionCode: 1063}, EffectRain},
		{"thunder renders as rain", Current{ConditionCode: 1276}, EffectRain},
		{"snow band", Current{ConditionCode: 1213}, EffectSnow},
		{"snow showers", Current{ConditionCode: 1258}, EffectSnow},
		{"patchy snow possible", Current{ConditionCode: 1066}, EffectSnow},
		{"partly cloudy", Current{ConditionCode: 1003}, EffectCloudy},
		{"overcast", Current{ConditionCode: 1009}, EffectCloudy},
		{"clear day is sunny", Current{ConditionCode: 1000, IsDay: true}, EffectSunny},
		{"clear night has no effect", Current{ConditionCode: 1000, IsDay: false}, EffectNone},
		{"mist has no effect", Current{ConditionCode: 1030}, EffectNone},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, EffectFor(tc.cur))
		})
	}
}

func TestPlanFor_ParticleCounts(t *testing.T) {
	rng := rand.New(rand.NewSource(1))

	assert.Len(t, PlanFor(EffectRain, rng).Particles, 100)
	assert.Len(t, PlanFor(EffectSnow, rng).Particles, 150)
	assert.Len(t, PlanFor(EffectCloudy, rng).Particles, 15)
	assert.Len(t, PlanFor(EffectWindy, rng).Particles, 50)
	assert.Len(t, PlanFor(EffectSunny, rng).Particles, 1)
	assert.Empty(t, PlanFor(EffectNone, rng).Particles)
}

func TestPlanFor_RainTimingRanges(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	plan := PlanFor(EffectRain, rng)

	for _, p := range plan.Particles {
		assert.GreaterOrEqual(t, p.X, 0.0)
		assert.Less(t, p.X, 100.0)
		assert.GreaterOrEqual(t, p.Duration, 0.5)
		assert.LessOrEqual(t, p.Duration, 1.0)
		assert.LessOrEqual(t, p.Delay, 5.0)
	}
}

func TestPlanFor_DeterministicForSeed(t *testing.T) {
	a := PlanFor(EffectSnow, rand.New(rand.NewSource(42)))
	b := PlanFor(EffectSnow, rand.New(rand.NewSource(42)))
	assert.Equal(t, a, b)
}

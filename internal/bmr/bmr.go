// Package bmr estimates daily energy expenditure from a user's profile.
package bmr

import (
	"fmt"
	"math"
	"strings"

	"github.com/powdermilkjuno/habit-tracker/internal"
)

const (
	kgPerLb = 0.453592
	cmPerIn = 2.54

	goalAdjustment = 500
)

var activityFactors = map[internal.ActivityLevel]float64{
	internal.Sedentary: 1.2,
	internal.Light:     1.375,
	internal.Moderate:  1.55,
	internal.Active:    1.725,
}

// ActivityFactor returns the multiplier for level; unknown levels get the sedentary one.
func ActivityFactor(level internal.ActivityLevel) float64 {
	if f, ok := activityFactors[level]; ok {
		return f
	}
	return activityFactors[internal.Sedentary]
}

// Calculate converts lbs/inches to metric, applies the Mifflin-St Jeor base
// and the activity multiplier, rounding only the final product.
func Calculate(weightLbs, heightIn float64, age int, level internal.ActivityLevel) int {
	weightKg := weightLbs * kgPerLb
	heightCm := heightIn * cmPerIn
	base := 10*weightKg + 6.25*heightCm - 5*float64(age) + 5
	return int(math.Round(base * ActivityFactor(level)))
}

// GoalOffset is the flat variant: raw inputs, ±500 depending on goal.
func GoalOffset(weight, height float64, age int, goal internal.Goal) int {
	adj := float64(goalAdjustment)
	if goal != internal.GoalBulk {
		adj = -adj
	}
	return int(math.Round(10*weight + 6.25*height - 5*float64(age) + adj))
}

type Strategy string

const (
	ActivityFactorStrategy Strategy = "activity-factor"
	GoalOffsetStrategy     Strategy = "goal-offset"
)

func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(strings.ToLower(strings.TrimSpace(s))) {
	case "", ActivityFactorStrategy:
		return ActivityFactorStrategy, nil
	case GoalOffsetStrategy:
		return GoalOffsetStrategy, nil
	}
	return "", fmt.Errorf("bmr: unknown strategy %q", s)
}

func (s Strategy) Compute(p internal.UserProfile) int {
	if s == GoalOffsetStrategy {
		return GoalOffset(p.Weight, p.Height, p.Age, p.Goal)
	}
	return Calculate(p.Weight, p.Height, p.Age, p.ActivityLevel)
}

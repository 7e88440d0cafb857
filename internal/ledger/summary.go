package ledger

import "github.com/powdermilkjuno/habit-tracker/internal"

// Summary compares today's total against the user's BMR.
type Summary struct {
	TotalCalories int           `json:"total_calories"`
	BMR           int           `json:"bmr"`
	Difference    int           `json:"difference"`
	Over          bool          `json:"over"`
	OnTrack       bool          `json:"on_track"`
	Goal          internal.Goal `json:"goal"`
}

// Summarize: cutting is on track at or under BMR, bulking only when over it.
func Summarize(total, bmr int, goal internal.Goal) Summary {
	diff := total - bmr
	over := diff > 0
	return Summary{
		TotalCalories: total,
		BMR:           bmr,
		Difference:    diff,
		Over:          over,
		OnTrack:       (goal == internal.GoalCut && !over) || (goal == internal.GoalBulk && over),
		Goal:          goal,
	}
}

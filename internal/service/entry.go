package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/powdermilkjuno/habit-tracker/internal"
)

type FoodRequest struct {
	Name     string  `json:"name" validate:"required,max=120"`
	Calories int     `json:"calories" validate:"gte=0,lte=20000"`
	Protein  float64 `json:"protein" validate:"gte=0,lte=1000"`
}

type ExerciseRequest struct {
	Name           string `json:"name" validate:"omitempty,max=120"`
	Intensity      string `json:"intensity" validate:"omitempty,oneof=low medium high"`
	CaloriesBurned int    `json:"calories_burned" validate:"gte=0,lte=20000"`
	Duration       int    `json:"duration" validate:"gte=0,lte=1440"`
}

func (r *ExerciseRequest) check() error {
	if r.Intensity == "" && r.CaloriesBurned == 0 {
		return internal.NewValidationError("intensity or calories_burned is required")
	}
	return nil
}

// Preset is a canned exercise the quick-add form offers.
type Preset struct {
	CaloriesBurned int
	Duration       int
}

var Presets = map[string]Preset{
	"low":    {CaloriesBurned: 100, Duration: 30},
	"medium": {CaloriesBurned: 200, Duration: 45},
	"high":   {CaloriesBurned: 300, Duration: 60},
}

func FoodEntry(req *FoodRequest, now time.Time) internal.Entry {
	return internal.NewFoodEntry(strings.TrimSpace(req.Name), req.Calories, req.Protein, now)
}

// ExerciseEntry applies the intensity preset; explicit calories or duration win.
func ExerciseEntry(req *ExerciseRequest, now time.Time) internal.Entry {
	burned, duration := req.CaloriesBurned, req.Duration
	name := strings.TrimSpace(req.Name)
	if p, ok := Presets[req.Intensity]; ok {
		if burned == 0 {
			burned = p.CaloriesBurned
		}
		if duration == 0 {
			duration = p.Duration
		}
		if name == "" {
			name = fmt.Sprintf("Exercise (%s intensity)", req.Intensity)
		}
	}
	if name == "" {
		name = "Exercise"
	}
	return internal.NewExerciseEntry(name, burned, duration, now)
}

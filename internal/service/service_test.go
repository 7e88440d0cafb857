package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/powdermilkjuno/habit-tracker/internal"
	"github.com/powdermilkjuno/habit-tracker/internal/friends"
	"github.com/powdermilkjuno/habit-tracker/internal/storage"
)

var now = time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)

func TestValidate_Food(t *testing.T) {
	assert.NoError(t, Validate(&FoodRequest{Name: "Eggs", Calories: 300, Protein: 18}))

	err := Validate(&FoodRequest{Calories: 300})
	require.Error(t, err)
	assert.True(t, internal.IsKind(err, internal.KindValidation))
	assert.Equal(t, "name is required", err.Error())

	err = Validate(&FoodRequest{Name: "x", Calories: -5})
	assert.Equal(t, "calories must be at least 0", err.Error())
}

func TestValidate_Exercise(t *testing.T) {
	assert.NoError(t, Validate(&ExerciseRequest{Intensity: "medium"}))
	assert.NoError(t, Validate(&ExerciseRequest{Name: "Swim", CaloriesBurned: 250, Duration: 40}))

	err := Validate(&ExerciseRequest{Name: "Nap"})
	assert.Equal(t, "intensity or calories_burned is required", err.Error())

	err = Validate(&ExerciseRequest{Intensity: "extreme"})
	assert.Equal(t, "intensity must be one of: low medium high", err.Error())
}

func TestExerciseEntry_Presets(t *testing.T) {
	e := ExerciseEntry(&ExerciseRequest{Intensity: "low"}, now)
	assert.Equal(t, "Exercise (low intensity)", e.Name)
	assert.Equal(t, -100, e.Calories)
	assert.Equal(t, 100, e.CaloriesBurned)
	assert.Equal(t, 30, e.Duration)
	assert.Equal(t, internal.KindExercise, e.Kind)

	e = ExerciseEntry(&ExerciseRequest{Intensity: "high", CaloriesBurned: 420, Name: "Spin"}, now)
	assert.Equal(t, "Spin", e.Name)
	assert.Equal(t, -420, e.Calories)
	assert.Equal(t, 60, e.Duration)

	e = ExerciseEntry(&ExerciseRequest{CaloriesBurned: 80}, now)
	assert.Equal(t, "Exercise", e.Name)
	assert.Zero(t, e.Duration)
}

func TestFoodEntry(t *testing.T) {
	e := FoodEntry(&FoodRequest{Name: "  Eggs ", Calories: 300, Protein: 18}, now)
	assert.Equal(t, "Eggs", e.Name)
	assert.Equal(t, 300, e.Calories)
	assert.True(t, e.Visible)
	assert.Equal(t, now, e.Date)
}

func TestProfileRequest(t *testing.T) {
	goal := "Bulk"
	level := "Active"
	weight := 180.0
	req := &ProfileRequest{Goal: &goal, ActivityLevel: &level, Weight: &weight}
	require.NoError(t, Validate(req))

	u := req.Update()
	require.NotNil(t, u.Goal)
	assert.Equal(t, internal.GoalBulk, *u.Goal)
	assert.Equal(t, internal.Active, *u.ActivityLevel)
	assert.Nil(t, u.Height)

	bad := "maintain"
	err := Validate(&ProfileRequest{Goal: &bad})
	assert.Equal(t, "goal must be cut or bulk", err.Error())

	zero := 0.0
	err = Validate(&ProfileRequest{Height: &zero})
	assert.Equal(t, "height must be greater than 0", err.Error())

	assert.NoError(t, Validate(&ProfileRequest{}))
}

func TestValidate_SignUp(t *testing.T) {
	assert.NoError(t, Validate(&SignUpRequest{Email: "sam@example.com", Password: "hunter22"}))
	err := Validate(&SignUpRequest{Email: "not-an-email", Password: "hunter22"})
	assert.Equal(t, "email must be a valid email address", err.Error())
	err = Validate(&SignUpRequest{Email: "sam@example.com", Password: "abc"})
	assert.Equal(t, "password must be at least 6", err.Error())
}

func TestCreateProfile(t *testing.T) {
	ctx := context.Background()
	m := storage.NewMemoryStore()
	sess := &internal.Session{UserID: "u1", Email: "u1@example.com"}

	p, err := CreateProfile(ctx, m, sess, "sam")
	require.NoError(t, err)
	assert.True(t, friends.IsShareCode(p.FriendCode))
	assert.Equal(t, internal.PetEgg, p.PetStatus)
	assert.Equal(t, internal.GoalCut, p.Goal)
	assert.Zero(t, p.Weight)

	stored, err := m.GetProfile(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, p.FriendCode, stored.FriendCode)

	_, err = CreateProfile(ctx, m, sess, "sam")
	assert.True(t, internal.IsKind(err, internal.KindConflict))
}

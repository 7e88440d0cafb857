package internal

import (
	"encoding/json"
	"strings"
	"time"
)

type EntryKind string

const (
	KindFood     EntryKind = "food"
	KindExercise EntryKind = "exercise"
)

type ActivityLevel string

const (
	Sedentary ActivityLevel = "Sedentary"
	Light     ActivityLevel = "Light"
	Moderate  ActivityLevel = "Moderate"
	Active    ActivityLevel = "Active"
)

type Goal string

const (
	GoalCut  Goal = "cut"
	GoalBulk Goal = "bulk"
)

// ParseGoal accepts the quiz spelling ("Cut", "Bulk") as well as the stored one.
func ParseGoal(s string) (Goal, bool) {
	switch Goal(strings.ToLower(strings.TrimSpace(s))) {
	case GoalCut:
		return GoalCut, true
	case GoalBulk:
		return GoalBulk, true
	}
	return "", false
}

type PetStatus string

const (
	PetEgg      PetStatus = "egg"
	PetHatching PetStatus = "hatching"
	PetWeak     PetStatus = "weak"
	PetHealthy  PetStatus = "healthy"
)

type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

type Session struct {
	UserID      string    `json:"user_id"`
	Email       string    `json:"email"`
	AccessToken string    `json:"access_token"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// Entry is either a food or an exercise log line. Exercise entries store the
// negative of CaloriesBurned in Calories so both kinds sum in one field.
type Entry struct {
	ID             string    `json:"id"`
	Kind           EntryKind `json:"type"`
	Name           string    `json:"name"`
	Calories       int       `json:"calories"`
	Protein        float64   `json:"protein"`
	CaloriesBurned int       `json:"calories_burned,omitempty"`
	Duration       int       `json:"duration,omitempty"` // minutes
	Date           time.Time `json:"date"`
	Visible        bool      `json:"visible"`
}

func NewFoodEntry(name string, calories int, protein float64, date time.Time) Entry {
	return Entry{
		Kind:     KindFood,
		Name:     name,
		Calories: calories,
		Protein:  protein,
		Date:     date,
		Visible:  true,
	}
}

func NewExerciseEntry(name string, burned, duration int, date time.Time) Entry {
	if burned < 0 {
		burned = -burned
	}
	if duration < 0 {
		duration = 0
	}
	return Entry{
		Kind:           KindExercise,
		Name:           name,
		Calories:       -burned,
		CaloriesBurned: burned,
		Duration:       duration,
		Date:           date,
		Visible:        true,
	}
}

// UnmarshalJSON treats a missing visible flag as visible.
func (e *Entry) UnmarshalJSON(data []byte) error {
	type plain Entry
	p := plain{Visible: true}
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*e = Entry(p)
	return nil
}

// IsExercise falls back to the calorie sign for rows written without a kind.
func (e Entry) IsExercise() bool {
	switch e.Kind {
	case KindExercise:
		return true
	case KindFood:
		return false
	}
	return e.Calories < 0
}

type UserProfile struct {
	UserID        string        `json:"user_id"`
	Email         string        `json:"email,omitempty"`
	Username      string        `json:"username,omitempty"`
	Weight        float64       `json:"weight"` // lbs
	Height        float64       `json:"height"` // inches
	Age           int           `json:"age"`
	ActivityLevel ActivityLevel `json:"activity_level"`
	Goal          Goal          `json:"goal"`
	BMR           int           `json:"bmr"`
	PetStatus     PetStatus     `json:"pet_status"`
	FriendCode    string        `json:"friend_code,omitempty"`
	Streak        int           `json:"streak"`
	LastUpdated   time.Time     `json:"last_updated"`
	CreatedAt     time.Time     `json:"created_at"`
}

// DefaultProfile mirrors the values a fresh client starts with.
func DefaultProfile() UserProfile {
	return UserProfile{
		Age:           30,
		ActivityLevel: Sedentary,
		Goal:          GoalCut,
		PetStatus:     PetEgg,
	}
}

// PublicProfile is what the share-code lookup exposes.
type PublicProfile struct {
	Username  string    `json:"username"`
	Height    float64   `json:"height"`
	Weight    float64   `json:"weight"`
	Goal      Goal      `json:"goal"`
	ShareCode string    `json:"share_code"`
	CreatedAt time.Time `json:"created_at"`
}

func (p UserProfile) Public() PublicProfile {
	return PublicProfile{
		Username:  p.Username,
		Height:    p.Height,
		Weight:    p.Weight,
		Goal:      p.Goal,
		ShareCode: p.FriendCode,
		CreatedAt: p.CreatedAt,
	}
}

type FriendSummary struct {
	ID         string `json:"id"`
	Email      string `json:"email,omitempty"`
	FriendCode string `json:"friend_code,omitempty"`
}

func (p UserProfile) FriendSummary() FriendSummary {
	return FriendSummary{ID: p.UserID, Email: p.Email, FriendCode: p.FriendCode}
}

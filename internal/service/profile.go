package service

import (
	"context"
	"errors"

	"github.com/powdermilkjuno/habit-tracker/internal"
	"github.com/powdermilkjuno/habit-tracker/internal/friends"
	"github.com/powdermilkjuno/habit-tracker/internal/storage"
	"github.com/powdermilkjuno/habit-tracker/internal/store"
)

type ProfileRequest struct {
	Username      *string  `json:"username" validate:"omitempty,max=40"`
	Weight        *float64 `json:"weight" validate:"omitempty,gt=0,lte=1500"`
	Height        *float64 `json:"height" validate:"omitempty,gt=0,lte=120"`
	Age           *int     `json:"age" validate:"omitempty,gt=0,lte=130"`
	ActivityLevel *string  `json:"activity_level" validate:"omitempty,oneof=Sedentary Light Moderate Active"`
	Goal          *string  `json:"goal" validate:"omitempty,goal"`
}

func (r *ProfileRequest) Update() store.ProfileUpdate {
	u := store.ProfileUpdate{
		Username: r.Username,
		Weight:   r.Weight,
		Height:   r.Height,
		Age:      r.Age,
	}
	if r.ActivityLevel != nil {
		level := internal.ActivityLevel(*r.ActivityLevel)
		u.ActivityLevel = &level
	}
	if r.Goal != nil {
		if g, ok := internal.ParseGoal(*r.Goal); ok {
			u.Goal = &g
		}
	}
	return u
}

type FriendRequest struct {
	Code string `json:"code" validate:"required,max=64"`
}

const codeAttempts = 5

// CreateProfile inserts the starting profile row for a new account with a
// fresh friend code, retrying when the code is already taken.
func CreateProfile(ctx context.Context, profiles storage.ProfileRepository, sess *internal.Session, username string) (*internal.UserProfile, error) {
	p := internal.UserProfile{
		UserID:        sess.UserID,
		Email:         sess.Email,
		Username:      username,
		ActivityLevel: internal.Sedentary,
		Goal:          internal.GoalCut,
		PetStatus:     internal.PetEgg,
	}
	for i := 0; i < codeAttempts; i++ {
		code, err := friends.GenerateFriendCode()
		if err != nil {
			return nil, err
		}
		p.FriendCode = code
		err = profiles.InsertProfile(ctx, &p)
		if err == nil {
			return &p, nil
		}
		if !errors.Is(err, storage.ErrAlreadyExists) {
			return nil, internal.NewSyncError(err, "create profile")
		}
		if _, getErr := profiles.GetProfile(ctx, sess.UserID); getErr == nil {
			return nil, internal.NewConflictError("profile already exists")
		}
	}
	return nil, internal.NewConflictError("could not allocate a unique friend code")
}

package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/powdermilkjuno/habit-tracker/internal"
	"github.com/powdermilkjuno/habit-tracker/internal/bmr"
	"github.com/powdermilkjuno/habit-tracker/internal/service"
	"github.com/powdermilkjuno/habit-tracker/internal/store"
)

// newBMRCommand computes without touching the store.
func newBMRCommand(opts *options) *cobra.Command {
	var (
		age   int
		level string
		goal  string
	)
	cmd := &cobra.Command{
		Use:   "bmr <weight-lbs> <height-in>",
		Short: "Calculate a daily calorie target",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			weight, err := parseFloatArg("weight", args[0])
			if err != nil {
				return err
			}
			height, err := parseFloatArg("height", args[1])
			if err != nil {
				return err
			}
			g, ok := internal.ParseGoal(goal)
			if !ok {
				return fmt.Errorf("invalid goal %q (expected cut or bulk)", goal)
			}
			strategy, _ := bmr.ParseStrategy(opts.strategy)
			p := internal.UserProfile{Weight: weight, Height: height, Age: age, ActivityLevel: internal.ActivityLevel(level), Goal: g}
			fmt.Fprintf(out(cmd), "%d\n", strategy.Compute(p))
			return nil
		},
	}
	cmd.Flags().IntVar(&age, "age", 30, "Age in years")
	cmd.Flags().StringVar(&level, "activity", string(internal.Sedentary), "Sedentary, Light, Moderate or Active")
	cmd.Flags().StringVar(&goal, "goal", string(internal.GoalCut), "cut or bulk")
	return cmd
}

func newProfileCommand(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Show or edit the local profile",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd, opts, func(ctx context.Context, st *store.Store) error {
				printProfile(cmd, st.Profile())
				return nil
			})
		},
	}
	cmd.AddCommand(newProfileSetCommand(opts), newProfileResetCommand(opts))
	return cmd
}

func newProfileSetCommand(opts *options) *cobra.Command {
	var (
		username string
		weight   float64
		height   float64
		age      int
		level    string
		goal     string
	)
	cmd := &cobra.Command{
		Use:   "set",
		Short: "Update quiz answers and recompute the BMR",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			req := &service.ProfileRequest{}
			flags := cmd.Flags()
			if flags.Changed("username") {
				req.Username = &username
			}
			if flags.Changed("weight") {
				req.Weight = &weight
			}
			if flags.Changed("height") {
				req.Height = &height
			}
			if flags.Changed("age") {
				req.Age = &age
			}
			if flags.Changed("activity") {
				req.ActivityLevel = &level
			}
			if flags.Changed("goal") {
				req.Goal = &goal
			}
			if err := service.Validate(req); err != nil {
				return err
			}
			return withStore(cmd, opts, func(ctx context.Context, st *store.Store) error {
				p, err := st.SetUserData(ctx, req.Update())
				if err != nil {
					return err
				}
				printProfile(cmd, p)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&username, "username", "", "Display name")
	cmd.Flags().Float64Var(&weight, "weight", 0, "Weight in lbs")
	cmd.Flags().Float64Var(&height, "height", 0, "Height in inches")
	cmd.Flags().IntVar(&age, "age", 0, "Age in years")
	cmd.Flags().StringVar(&level, "activity", "", "Sedentary, Light, Moderate or Active")
	cmd.Flags().StringVar(&goal, "goal", "", "cut or bulk")
	return cmd
}

func newProfileResetCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Clear the quiz answers; entries and pet are kept",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd, opts, func(ctx context.Context, st *store.Store) error {
				p, err := st.ResetProfile(ctx)
				if err != nil {
					return err
				}
				printProfile(cmd, p)
				return nil
			})
		},
	}
}

func printProfile(cmd *cobra.Command, p internal.UserProfile) {
	w := out(cmd)
	if p.Username != "" {
		fmt.Fprintf(w, "Username: %s\n", p.Username)
	}
	fmt.Fprintf(w, "Weight: %.1f lbs | Height: %.1f in | Age: %d\n", p.Weight, p.Height, p.Age)
	fmt.Fprintf(w, "Activity: %s | Goal: %s\n", p.ActivityLevel, p.Goal)
	fmt.Fprintf(w, "BMR: %d\n", p.BMR)
}

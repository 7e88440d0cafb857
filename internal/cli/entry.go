package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/powdermilkjuno/habit-tracker/internal/service"
	"github.com/powdermilkjuno/habit-tracker/internal/store"
)

func newFoodCommand(opts *options) *cobra.Command {
	var protein float64
	cmd := &cobra.Command{
		Use:   "food <name> <calories>",
		Short: "Log a food entry",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			calories, err := parsePositiveInt("calories", args[1])
			if err != nil {
				return err
			}
			req := &service.FoodRequest{Name: args[0], Calories: calories, Protein: protein}
			if err := service.Validate(req); err != nil {
				return err
			}
			return withStore(cmd, opts, func(ctx context.Context, st *store.Store) error {
				e, err := st.AddEntry(ctx, service.FoodEntry(req, time.Now()))
				if err != nil {
					return err
				}
				fmt.Fprintf(out(cmd), "Added %s (%d kcal) %s\n", e.Name, e.Calories, e.ID)
				return printPet(cmd, st)
			})
		},
	}
	cmd.Flags().Float64Var(&protein, "protein", 0, "Protein in grams")
	return cmd
}

func newExerciseCommand(opts *options) *cobra.Command {
	var req service.ExerciseRequest
	cmd := &cobra.Command{
		Use:   "exercise",
		Short: "Log an exercise entry from an intensity preset or explicit calories",
		Example: "  habitpet exercise --intensity medium\n" +
			"  habitpet exercise --name Run --burned 350 --duration 40",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := service.Validate(&req); err != nil {
				return err
			}
			return withStore(cmd, opts, func(ctx context.Context, st *store.Store) error {
				e, err := st.AddEntry(ctx, service.ExerciseEntry(&req, time.Now()))
				if err != nil {
					return err
				}
				fmt.Fprintf(out(cmd), "Added %s (-%d kcal, %d min) %s\n", e.Name, e.CaloriesBurned, e.Duration, e.ID)
				return printPet(cmd, st)
			})
		},
	}
	cmd.Flags().StringVar(&req.Name, "name", "", "Entry name")
	cmd.Flags().StringVar(&req.Intensity, "intensity", "", "Preset: low, medium or high")
	cmd.Flags().IntVar(&req.CaloriesBurned, "burned", 0, "Calories burned")
	cmd.Flags().IntVar(&req.Duration, "duration", 0, "Duration in minutes")
	return cmd
}

func newToggleCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "toggle <id>",
		Short: "Hide or show an entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd, opts, func(ctx context.Context, st *store.Store) error {
				found, err := st.ToggleEntryVisibility(ctx, args[0])
				if err != nil {
					return err
				}
				if !found {
					return fmt.Errorf("entry %s not found", args[0])
				}
				fmt.Fprintf(out(cmd), "Toggled %s\n", args[0])
				return nil
			})
		},
	}
}

func newClearCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete every entry",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd, opts, func(ctx context.Context, st *store.Store) error {
				if err := st.ClearHistory(ctx); err != nil {
					return err
				}
				fmt.Fprintln(out(cmd), "History cleared")
				return nil
			})
		},
	}
}

func printPet(cmd *cobra.Command, st *store.Store) error {
	s := st.State()
	fmt.Fprintf(out(cmd), "Today: %d kcal | Pet: %s\n", s.TotalCalories, s.PetStatus)
	return nil
}

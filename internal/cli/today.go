package cli

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/powdermilkjuno/habit-tracker/internal/store"
)

func newTodayCommand(opts *options) *cobra.Command {
	var all bool
	cmd := &cobra.Command{
		Use:     "today",
		Aliases: []string{"state"},
		Short:   "Show today's total, BMR comparison and pet",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd, opts, func(ctx context.Context, st *store.Store) error {
				s := st.State()
				w := out(cmd)
				fmt.Fprintf(w, "Total: %d kcal\n", s.TotalCalories)
				if s.Summary.BMR > 0 {
					verdict := "on track"
					if !s.Summary.OnTrack {
						verdict = "off track"
					}
					fmt.Fprintf(w, "BMR: %d kcal | Difference: %+d | Goal: %s (%s)\n", s.Summary.BMR, s.Summary.Difference, s.Summary.Goal, verdict)
				} else {
					fmt.Fprintln(w, "BMR: not set (run `habitpet profile set`)")
				}
				fmt.Fprintf(w, "Pet: %s | Streak: %d\n", s.PetStatus, s.Profile.Streak)

				tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "ID\tDATE\tTYPE\tNAME\tKCAL\tVISIBLE")
				for _, e := range s.Entries {
					if !e.Visible && !all {
						continue
					}
					fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%t\n", e.ID, e.Date.Local().Format("2006-01-02 15:04"), e.Kind, e.Name, e.Calories, e.Visible)
				}
				return tw.Flush()
			})
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "Include hidden entries")
	return cmd
}

package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/powdermilkjuno/habit-tracker/internal/bmr"
)

type options struct {
	dataDir  string
	strategy string
	verbose  bool
}

// NewRootCommand builds the offline client: one local store in dataDir,
// no remote account.
func NewRootCommand() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:           "habitpet",
		Short:         "habitpet logs meals and workouts and keeps your pet alive",
		Long:          "habitpet is an offline calorie ledger with a BMR calculator and a virtual pet. The egg hatches once three entries are logged, and a weak pet turns healthy when you log something today.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			_, err := bmr.ParseStrategy(opts.strategy)
			return err
		},
	}
	root.PersistentFlags().StringVar(&opts.dataDir, "data-dir", defaultDataDir(), "Directory holding the local snapshot")
	root.PersistentFlags().StringVar(&opts.strategy, "strategy", string(bmr.ActivityFactorStrategy), "BMR strategy: activity-factor or goal-offset")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Log store activity to stderr")

	root.AddCommand(
		newFoodCommand(opts),
		newExerciseCommand(opts),
		newToggleCommand(opts),
		newClearCommand(opts),
		newTodayCommand(opts),
		newBMRCommand(opts),
		newProfileCommand(opts),
	)
	return root
}

func Execute() {
	if err := NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func defaultDataDir() string {
	if dir := os.Getenv("HABITPET_DIR"); dir != "" {
		return dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".habitpet"
	}
	return filepath.Join(home, ".habitpet")
}

func out(cmd *cobra.Command) io.Writer { return cmd.OutOrStdout() }

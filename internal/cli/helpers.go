package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/powdermilkjuno/habit-tracker/internal"
	"github.com/powdermilkjuno/habit-tracker/internal/bmr"
	"github.com/powdermilkjuno/habit-tracker/internal/storage"
	"github.com/powdermilkjuno/habit-tracker/internal/store"
)

func withStore(cmd *cobra.Command, opts *options, run func(context.Context, *store.Store) error) error {
	logger := internal.Logger(internal.NewNopLogger())
	if opts.verbose {
		zl, err := internal.NewLogger("development", "debug")
		if err != nil {
			return err
		}
		defer func() { _ = zl.Sync() }()
		logger = zl
	}
	snapshots, err := storage.NewFileSnapshotStore(opts.dataDir, logger)
	if err != nil {
		return err
	}
	strategy, err := bmr.ParseStrategy(opts.strategy)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	// Zero hatch delay: the process exits before a timer would fire.
	st, err := store.New(ctx, store.Options{
		Key:       store.DefaultKey,
		Snapshots: snapshots,
		Strategy:  strategy,
		Location:  time.Local,
		Logger:    logger,
	})
	if err != nil {
		return err
	}
	defer st.Close()
	return run(ctx, st)
}

func parsePositiveInt(name, value string) (int, error) {
	v, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q", name, value)
	}
	if v <= 0 {
		return 0, fmt.Errorf("%s must be > 0", name)
	}
	return v, nil
}

func parseFloatArg(name, value string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q", name, value)
	}
	return v, nil
}

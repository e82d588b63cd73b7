package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"daily-journal/internal/app"
	"daily-journal/internal/config"
	"daily-journal/internal/logging"
	"daily-journal/internal/printers"
)

// Version is stamped at build time.
var Version = "dev"

type rootOptions struct {
	ConfigFile string
	LogLevel   string
	Passcode   string

	cfg     config.Config
	closers []func()
}

func New() *cobra.Command {
	ro := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "dailyjournal",
		Short:         "A private daily journal with moods, tags and streaks.",
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       Version,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return ro.setup()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			ro.teardown()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cmd.PersistentFlags().StringVar(&ro.ConfigFile, "config", "", "Config file (default ~/.dailyjournal.yaml).")
	cmd.PersistentFlags().StringVar(&ro.LogLevel, "log-level", "", "Override the configured log level.")
	cmd.PersistentFlags().StringVar(&ro.Passcode, "passcode", os.Getenv("DAILYJOURNAL_PASSCODE"), "Passcode of a locked journal.")

	AddCommands(cmd, ro)
	return cmd
}

func AddCommands(topLevel *cobra.Command, ro *rootOptions) {
	addBot(topLevel, ro)
	addWrite(topLevel, ro)
	addEdit(topLevel, ro)
	addShow(topLevel, ro)
	addList(topLevel, ro)
	addDelete(topLevel, ro)
	addSearch(topLevel, ro)
	addStreak(topLevel, ro)
	addHeatmap(topLevel, ro)
	addExport(topLevel, ro)
	addMoods(topLevel, ro)
	addTags(topLevel, ro)
	addReminder(topLevel, ro)
	addPasscode(topLevel, ro)
}

func (ro *rootOptions) setup() error {
	cfg, err := config.Load(ro.ConfigFile)
	if err != nil {
		return err
	}
	if ro.LogLevel != "" {
		cfg.LogLevel = ro.LogLevel
	}
	ro.cfg = cfg

	closeLog, err := logging.Setup(cfg.LogLevel, cfg.LogFormat, cfg.LogFile)
	if err != nil {
		return err
	}
	flush := logging.InitSentry(cfg.SentryDSN, cfg.Environment, Version)
	ro.closers = append(ro.closers, flush, func() { _ = closeLog() })
	return nil
}

func (ro *rootOptions) teardown() {
	for i := len(ro.closers) - 1; i >= 0; i-- {
		ro.closers[i]()
	}
	ro.closers = nil
}

// run opens the journal for the duration of fn.
func (ro *rootOptions) run(cmd *cobra.Command, fn func(ctx context.Context, a *app.App) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	a, err := app.Open(ctx, ro.cfg)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()
	return fn(ctx, a)
}

// runUnlocked is run for commands that reveal or change entries.
func (ro *rootOptions) runUnlocked(cmd *cobra.Command, fn func(ctx context.Context, a *app.App) error) error {
	return ro.run(cmd, func(ctx context.Context, a *app.App) error {
		if err := a.Profile.VerifyPasscode(ctx, ro.Passcode); err != nil {
			return fmt.Errorf("journal is locked, pass --passcode: %w", err)
		}
		return fn(ctx, a)
	})
}

func printer(cmd *cobra.Command) *printers.PrettyPrint {
	return printers.New(cmd.OutOrStdout())
}

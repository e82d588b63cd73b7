package commands

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"daily-journal/internal/app"
	"daily-journal/internal/bot"
	"daily-journal/internal/service"
)

func addBot(topLevel *cobra.Command, ro *rootOptions) {
	cmd := &cobra.Command{
		Use:   "bot",
		Short: "Run the Telegram bot until interrupted.",
		Long: "Run the Telegram bot until interrupted. The first Telegram account that\n" +
			"writes to the bot owns the journal. Requires TELEGRAM_TOKEN.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := ro.cfg.RequireTelegram(); err != nil {
				return err
			}

			parent := cmd.Context()
			if parent == nil {
				parent = context.Background()
			}
			ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, err := app.Open(ctx, ro.cfg)
			if err != nil {
				return err
			}
			defer func() { _ = a.Close() }()

			telegramBot, err := bot.New(ro.cfg.TelegramToken, a)
			if err != nil {
				return err
			}

			scheduler := service.NewSchedulerService(a.Location)
			if err := telegramBot.StartJobs(ctx, scheduler); err != nil {
				return err
			}
			scheduler.Start()
			defer scheduler.Stop()

			slog.Info("daily journal bot started")
			if err := telegramBot.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			slog.Info("shutdown complete")
			return nil
		},
	}

	topLevel.AddCommand(cmd)
}

package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"daily-journal/internal/app"
	"daily-journal/internal/model"
	"daily-journal/internal/service"
)

func addMoods(topLevel *cobra.Command, ro *rootOptions) {
	oo := &OutputOptions{}

	cmd := &cobra.Command{
		Use:   "moods",
		Short: "List the moods an entry can carry.",
		RunE: func(cmd *cobra.Command, args []string) error {
			err := ro.run(cmd, func(ctx context.Context, a *app.App) error {
				grouped, err := a.Catalog.MoodsByCategory(ctx)
				if err != nil {
					return err
				}
				if oo.JSON {
					return printer(cmd).JSON(grouped)
				}
				printer(cmd).Moods(grouped)
				return nil
			})
			return oo.HandleError(cmd, err)
		},
	}

	AddOutputArg(cmd, oo)
	topLevel.AddCommand(cmd)
}

func addTags(topLevel *cobra.Command, ro *rootOptions) {
	oo := &OutputOptions{}
	var add []string

	cmd := &cobra.Command{
		Use:   "tags",
		Short: "List tags and the most used ones.",
		Example: `
dailyjournal tags
dailyjournal tags --add "side project"
`,
		RunE: func(cmd *cobra.Command, args []string) error {
			err := ro.run(cmd, func(ctx context.Context, a *app.App) error {
				for _, name := range add {
					if _, err := a.Catalog.AddCustomTag(ctx, name); err != nil {
						return err
					}
				}
				tags, err := a.Catalog.Tags(ctx)
				if err != nil {
					return err
				}
				popular, err := a.Search.PopularTags(ctx)
				if err != nil {
					return err
				}
				if oo.JSON {
					return printer(cmd).JSON(map[string]any{"tags": tags, "popular": popular})
				}
				printer(cmd).Tags(tags, popular)
				return nil
			})
			return oo.HandleError(cmd, err)
		},
	}

	cmd.Flags().StringSliceVar(&add, "add", nil, "Add custom tags before listing.")
	AddOutputArg(cmd, oo)
	topLevel.AddCommand(cmd)
}

func addReminder(topLevel *cobra.Command, ro *rootOptions) {
	oo := &OutputOptions{}
	var (
		enable, disable bool
		at, frequency   string
		style           string
		days            []string
	)

	cmd := &cobra.Command{
		Use:   "reminder",
		Short: "Show or change the writing reminder.",
		Long: "Show or change the writing reminder. Reminders are local: the bot logs\n" +
			"when one is due, nothing is sent.",
		Example: `
dailyjournal reminder
dailyjournal reminder --enable --at 21:30 --frequency weekdays --style gentle
dailyjournal reminder --frequency custom --days mon,wed,fri
`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if enable && disable {
				return fmt.Errorf("--enable and --disable are exclusive")
			}
			err := ro.run(cmd, func(ctx context.Context, a *app.App) error {
				settings, err := a.Reminder.Settings(ctx)
				if err != nil {
					return err
				}
				flags := cmd.Flags()
				changed := false
				if enable || disable {
					settings.Enabled, changed = enable, true
				}
				if flags.Changed("at") {
					settings.TimeOfDay, changed = at, true
				}
				if flags.Changed("frequency") {
					settings.Frequency, changed = model.ReminderFrequency(strings.ToLower(frequency)), true
				}
				if flags.Changed("days") {
					settings.Days, changed = days, true
				}
				if flags.Changed("style") {
					settings.Style, changed = model.ReminderStyle(strings.ToLower(style)), true
				}
				if changed {
					if settings, err = a.Reminder.Update(ctx, settings); err != nil {
						return err
					}
				}

				next, _, err := service.NextRun(settings, service.SystemClock(a.Location)())
				if err != nil {
					return err
				}
				if oo.JSON {
					return printer(cmd).JSON(map[string]any{"settings": settings, "next_run": next})
				}
				if changed {
					_, _ = color.New(color.FgGreen).Fprintln(cmd.OutOrStdout(), "Reminder saved.")
				}
				printer(cmd).Reminder(settings, next)
				return nil
			})
			return oo.HandleError(cmd, err)
		},
	}

	cmd.Flags().BoolVar(&enable, "enable", false, "Turn reminders on.")
	cmd.Flags().BoolVar(&disable, "disable", false, "Turn reminders off.")
	cmd.Flags().StringVar(&at, "at", "", "Time of day, HH:MM.")
	cmd.Flags().StringVar(&frequency, "frequency", "", "daily, weekdays or custom.")
	cmd.Flags().StringSliceVar(&days, "days", nil, "Weekdays for the custom frequency.")
	cmd.Flags().StringVar(&style, "style", "", "gentle, motivational or prompt.")
	AddOutputArg(cmd, oo)
	topLevel.AddCommand(cmd)
}

func addPasscode(topLevel *cobra.Command, ro *rootOptions) {
	cmd := &cobra.Command{
		Use:   "passcode",
		Short: "Lock the journal behind a passcode.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ro.run(cmd, func(ctx context.Context, a *app.App) error {
				user, err := a.Profile.Profile(ctx)
				if err != nil {
					return err
				}
				state := "off"
				if user.HasPasscode() {
					state = "on"
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Passcode lock is %s.\n", state)
				return nil
			})
		},
	}

	set := &cobra.Command{
		Use:   "set NEW",
		Short: "Set or change the passcode. Pass the current one with --passcode.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ro.run(cmd, func(ctx context.Context, a *app.App) error {
				if err := a.Profile.SetPasscode(ctx, ro.Passcode, args[0]); err != nil {
					return err
				}
				_, _ = color.New(color.FgGreen).Fprintln(cmd.OutOrStdout(), "Passcode set.")
				return nil
			})
		},
	}

	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove the passcode. Pass the current one with --passcode.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ro.run(cmd, func(ctx context.Context, a *app.App) error {
				if err := a.Profile.ClearPasscode(ctx, ro.Passcode); err != nil {
					return err
				}
				_, _ = color.New(color.FgYellow).Fprintln(cmd.OutOrStdout(), "Passcode removed.")
				return nil
			})
		},
	}

	cmd.AddCommand(set, clearCmd)
	topLevel.AddCommand(cmd)
}

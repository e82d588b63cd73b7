package commands

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"daily-journal/internal/app"
	"daily-journal/internal/model"
	"daily-journal/internal/repository"
	"daily-journal/internal/richtext"
	"daily-journal/internal/service"
)

func addWrite(topLevel *cobra.Command, ro *rootOptions) {
	do := &DateOptions{}
	eo := &EntryOptions{}
	oo := &OutputOptions{}

	cmd := &cobra.Command{
		Use:   "write",
		Short: "Write the entry of a day.",
		Example: `
dailyjournal write -m happy -t family --text "Dinner with the kids"
echo "Long walk" | dailyjournal write --mood calm --also grateful --date yesterday
`,
		RunE: func(cmd *cobra.Command, args []string) error {
			err := ro.runUnlocked(cmd, func(ctx context.Context, a *app.App) error {
				day, err := do.Resolve(a.Journal.Today())
				if err != nil {
					return err
				}
				notes, err := readNotes(cmd, eo)
				if err != nil {
					return err
				}
				entry, err := a.Journal.Create(ctx, service.EntryInput{
					Date:           day,
					Title:          eo.Title,
					PrimaryMood:    eo.Mood,
					SecondaryMoods: eo.Secondary,
					Tags:           eo.Tags,
					NotesHTML:      notes,
				})
				if errors.Is(err, repository.ErrUniqueDate) {
					return fmt.Errorf("%w; use `dailyjournal edit --date %s` to change it", err, model.DayKey(day))
				}
				if err != nil {
					return err
				}
				if oo.JSON {
					return printer(cmd).JSON(entry)
				}
				_, _ = color.New(color.FgGreen).Fprintf(cmd.OutOrStdout(), "Saved entry for %s (%d words)\n",
					model.DayKey(entry.Date), richtext.WordCount(entry.Notes))
				return celebrate(ctx, cmd, a)
			})
			return oo.HandleError(cmd, err)
		},
	}

	AddDateArg(cmd, do)
	AddEntryArgs(cmd, eo)
	AddOutputArg(cmd, oo)
	_ = cmd.MarkFlagRequired("mood")
	topLevel.AddCommand(cmd)
}

func addEdit(topLevel *cobra.Command, ro *rootOptions) {
	do := &DateOptions{}
	eo := &EntryOptions{}
	oo := &OutputOptions{}

	cmd := &cobra.Command{
		Use:   "edit",
		Short: "Change the entry of a day. Only the given fields are replaced.",
		Example: `
dailyjournal edit --date 2026-10-18 --mood grateful
dailyjournal edit --title "A quiet Sunday" --text -
`,
		RunE: func(cmd *cobra.Command, args []string) error {
			err := ro.runUnlocked(cmd, func(ctx context.Context, a *app.App) error {
				day, err := do.Resolve(a.Journal.Today())
				if err != nil {
					return err
				}
				current, err := a.Journal.GetByDate(ctx, day)
				if err != nil {
					return err
				}
				if current == nil {
					return fmt.Errorf("no entry for %s: %w", model.DayKey(day), repository.ErrNotFound)
				}

				in := service.EntryInput{
					Date:           current.Date,
					Title:          current.Title,
					PrimaryMood:    current.PrimaryMood,
					SecondaryMoods: current.SecondaryMoods,
					Tags:           current.Tags(),
					NotesHTML:      current.Notes,
				}
				flags := cmd.Flags()
				if flags.Changed("title") {
					in.Title = eo.Title
				}
				if flags.Changed("mood") {
					in.PrimaryMood = eo.Mood
				}
				if flags.Changed("also") {
					in.SecondaryMoods = eo.Secondary
				}
				if flags.Changed("tag") {
					in.Tags = eo.Tags
				}
				if flags.Changed("text") {
					if in.NotesHTML, err = readNotes(cmd, eo); err != nil {
						return err
					}
				}

				entry, err := a.Journal.Update(ctx, current.ID, in)
				if err != nil {
					return err
				}
				if oo.JSON {
					return printer(cmd).JSON(entry)
				}
				_, _ = color.New(color.FgGreen).Fprintf(cmd.OutOrStdout(), "Updated entry for %s\n", model.DayKey(entry.Date))
				return nil
			})
			return oo.HandleError(cmd, err)
		},
	}

	AddDateArg(cmd, do)
	AddEntryArgs(cmd, eo)
	AddOutputArg(cmd, oo)
	topLevel.AddCommand(cmd)
}

func addShow(topLevel *cobra.Command, ro *rootOptions) {
	do := &DateOptions{}
	oo := &OutputOptions{}

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show the entry of a day.",
		RunE: func(cmd *cobra.Command, args []string) error {
			err := ro.runUnlocked(cmd, func(ctx context.Context, a *app.App) error {
				day, err := do.Resolve(a.Journal.Today())
				if err != nil {
					return err
				}
				entry, err := a.Journal.GetByDate(ctx, day)
				if err != nil {
					return err
				}
				if entry == nil {
					return fmt.Errorf("no entry for %s: %w", model.DayKey(day), repository.ErrNotFound)
				}
				if oo.JSON {
					return printer(cmd).JSON(entry)
				}
				printer(cmd).Entry(entry)
				return nil
			})
			return oo.HandleError(cmd, err)
		},
	}

	AddDateArg(cmd, do)
	AddOutputArg(cmd, oo)
	topLevel.AddCommand(cmd)
}

func addList(topLevel *cobra.Command, ro *rootOptions) {
	oo := &OutputOptions{}
	var (
		limit    int
		from, to string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List entries, newest first.",
		Example: `
dailyjournal list
dailyjournal list --from 2026-10-01 --to 2026-10-31
`,
		RunE: func(cmd *cobra.Command, args []string) error {
			err := ro.runUnlocked(cmd, func(ctx context.Context, a *app.App) error {
				var (
					entries []model.JournalEntry
					err     error
				)
				if from != "" || to != "" {
					today := a.Journal.Today()
					start, end := today.AddDate(0, -1, 0), today
					if from != "" {
						if start, err = resolveDate(from, today); err != nil {
							return err
						}
					}
					if to != "" {
						if end, err = resolveDate(to, today); err != nil {
							return err
						}
					}
					entries, err = a.Journal.Range(ctx, start, end)
				} else {
					entries, err = a.Journal.Recent(ctx, limit)
				}
				if err != nil {
					return err
				}
				if oo.JSON {
					return printer(cmd).JSON(entries)
				}
				printer(cmd).Entries("Entries", entries)
				return nil
			})
			return oo.HandleError(cmd, err)
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "How many recent entries to show.")
	cmd.Flags().StringVar(&from, "from", "", "First day of a range, YYYY-MM-DD.")
	cmd.Flags().StringVar(&to, "to", "", "Last day of a range, YYYY-MM-DD.")
	AddOutputArg(cmd, oo)
	topLevel.AddCommand(cmd)
}

func addDelete(topLevel *cobra.Command, ro *rootOptions) {
	do := &DateOptions{}
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete",
		Short: "Delete the entry of a day.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ro.runUnlocked(cmd, func(ctx context.Context, a *app.App) error {
				day, err := do.Resolve(a.Journal.Today())
				if err != nil {
					return err
				}
				if !yes && !confirm(cmd, fmt.Sprintf("Delete the entry for %s?", model.DayKey(day))) {
					_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Kept.")
					return nil
				}
				if _, err := a.Journal.DeleteByDate(ctx, day); err != nil {
					return err
				}
				_, _ = color.New(color.FgYellow).Fprintf(cmd.OutOrStdout(), "Deleted entry for %s\n", model.DayKey(day))
				return nil
			})
		},
	}

	AddDateArg(cmd, do)
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Do not ask for confirmation.")
	topLevel.AddCommand(cmd)
}

// readNotes returns the entry body as HTML.
func readNotes(cmd *cobra.Command, eo *EntryOptions) (string, error) {
	text := eo.Text
	if text == "" || text == "-" {
		b, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", fmt.Errorf("read entry text: %w", err)
		}
		text = string(b)
	}
	if eo.HTML {
		return text, nil
	}
	return richtext.FromPlainText(text), nil
}

func confirm(cmd *cobra.Command, question string) bool {
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s [y/N] ", question)
	line, _ := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	}
	return false
}

// celebrate prints the streak message once per day.
func celebrate(ctx context.Context, cmd *cobra.Command, a *app.App) error {
	show, err := a.Streaks.ShouldShowDialog(ctx)
	if err != nil || !show {
		return err
	}
	summary, err := a.Streaks.Summary(ctx)
	if err != nil {
		return err
	}
	if summary.Current < 2 {
		return nil
	}
	_, _ = color.New(color.FgHiMagenta, color.Bold).Fprintf(cmd.OutOrStdout(), "🔥 %d day streak!\n", summary.Current)
	return a.Streaks.MarkDialogShown(ctx)
}

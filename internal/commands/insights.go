package commands

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"daily-journal/internal/app"
	"daily-journal/internal/model"
	"daily-journal/internal/service"
)

func addSearch(topLevel *cobra.Command, ro *rootOptions) {
	oo := &OutputOptions{}
	var (
		mood, from, to, order string
		page, size            int
		recent, clearHistory  bool
	)

	cmd := &cobra.Command{
		Use:   "search [text]",
		Short: "Search entries by text, mood and date.",
		Example: `
dailyjournal search river
dailyjournal search --mood calm --from 2026-09-01 --sort oldest
dailyjournal search --recent
`,
		RunE: func(cmd *cobra.Command, args []string) error {
			err := ro.runUnlocked(cmd, func(ctx context.Context, a *app.App) error {
				if clearHistory {
					if err := a.History.Clear(); err != nil {
						return err
					}
					_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Search history cleared.")
					return nil
				}
				if recent {
					terms, err := a.Search.RecentSearches()
					if err != nil {
						return err
					}
					if oo.JSON {
						return printer(cmd).JSON(terms)
					}
					printer(cmd).Strings("Recent searches", terms)
					return nil
				}

				sortOrder, err := service.ParseSortOrder(order)
				if err != nil {
					return err
				}
				q := service.SearchQuery{
					Text:     strings.Join(args, " "),
					Mood:     mood,
					Sort:     sortOrder,
					Page:     page,
					PageSize: size,
				}
				today := a.Journal.Today()
				if from != "" {
					d, err := resolveDate(from, today)
					if err != nil {
						return err
					}
					q.From = &d
				}
				if to != "" {
					d, err := resolveDate(to, today)
					if err != nil {
						return err
					}
					q.To = &d
				}

				result, err := a.Search.Search(ctx, q)
				if err != nil {
					return err
				}
				if oo.JSON {
					return printer(cmd).JSON(result)
				}
				printer(cmd).Search(result)
				return nil
			})
			return oo.HandleError(cmd, err)
		},
	}

	cmd.Flags().StringVarP(&mood, "mood", "m", "", "Only entries with this mood.")
	cmd.Flags().StringVar(&from, "from", "", "Earliest day, YYYY-MM-DD.")
	cmd.Flags().StringVar(&to, "to", "", "Latest day, YYYY-MM-DD.")
	cmd.Flags().StringVar(&order, "sort", "newest", "newest, oldest or longest.")
	cmd.Flags().IntVar(&page, "page", 1, "Result page.")
	cmd.Flags().IntVar(&size, "size", service.DefaultPageSize, "Results per page.")
	cmd.Flags().BoolVar(&recent, "recent", false, "Show recent search terms.")
	cmd.Flags().BoolVar(&clearHistory, "clear-history", false, "Forget recent search terms.")
	AddOutputArg(cmd, oo)
	topLevel.AddCommand(cmd)
}

func addStreak(topLevel *cobra.Command, ro *rootOptions) {
	oo := &OutputOptions{}

	cmd := &cobra.Command{
		Use:   "streak",
		Short: "Show the writing streak and achievements.",
		RunE: func(cmd *cobra.Command, args []string) error {
			err := ro.run(cmd, func(ctx context.Context, a *app.App) error {
				summary, err := a.Streaks.Refresh(ctx)
				if err != nil {
					return err
				}
				achievements := service.Achievements(summary.Longest, summary.TotalEntries)
				if oo.JSON {
					return printer(cmd).JSON(struct {
						service.StreakSummary
						Achievements []service.Achievement `json:"achievements"`
					}{summary, achievements})
				}
				printer(cmd).Streak(summary, achievements)
				return nil
			})
			return oo.HandleError(cmd, err)
		},
	}

	AddOutputArg(cmd, oo)
	topLevel.AddCommand(cmd)
}

func addHeatmap(topLevel *cobra.Command, ro *rootOptions) {
	oo := &OutputOptions{}
	var (
		months       int
		currentMonth bool
	)

	cmd := &cobra.Command{
		Use:   "heatmap",
		Short: "Show how much was written per day.",
		RunE: func(cmd *cobra.Command, args []string) error {
			err := ro.run(cmd, func(ctx context.Context, a *app.App) error {
				if months <= 0 {
					months = service.DefaultActivityMonths
				}
				today := a.Journal.Today()
				from := model.AddMonths(today, -months)
				points, err := a.Streaks.ActivityLastMonths(ctx, months)
				if currentMonth {
					from = today.AddDate(0, 0, 1-today.Day())
					points, err = a.Streaks.CurrentMonthActivity(ctx)
				}
				if err != nil {
					return err
				}
				if oo.JSON {
					return printer(cmd).JSON(slices.Collect(points))
				}
				printer(cmd).Heatmap(points, from, today)
				return nil
			})
			return oo.HandleError(cmd, err)
		},
	}

	cmd.Flags().IntVar(&months, "months", service.DefaultActivityMonths, "Trailing months to show.")
	cmd.Flags().BoolVar(&currentMonth, "month", false, "Only the current month.")
	AddOutputArg(cmd, oo)
	topLevel.AddCommand(cmd)
}

func addExport(topLevel *cobra.Command, ro *rootOptions) {
	oo := &OutputOptions{}
	var rangeName, from, to, format string

	cmd := &cobra.Command{
		Use:   "export [today|week|month|year]",
		Short: "Export entries to a txt, csv or xlsx file.",
		Example: `
dailyjournal export month
dailyjournal export --from 2026-01-01 --to 2026-06-30 --format xlsx
`,
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: []string{"today", "week", "month", "year"},
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				rangeName = args[0]
			}
			err := ro.runUnlocked(cmd, func(ctx context.Context, a *app.App) error {
				f, err := service.ParseExportFormat(format)
				if err != nil {
					return err
				}
				today := a.Journal.Today()
				start, end, err := service.ExportRange(rangeName, today)
				if err != nil {
					return err
				}
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
				res, err := a.Export.Export(ctx, start, end, f)
				if err != nil {
					return err
				}
				if oo.JSON {
					return printer(cmd).JSON(res)
				}
				_, _ = color.New(color.FgGreen).Fprintf(cmd.OutOrStdout(), "Exported %d entries to %s\n", res.Count, res.Path)
				return nil
			})
			return oo.HandleError(cmd, err)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "txt", "txt, csv or xlsx.")
	cmd.Flags().StringVar(&from, "from", "", "First day, overrides the range.")
	cmd.Flags().StringVar(&to, "to", "", "Last day, overrides the range.")
	AddOutputArg(cmd, oo)
	topLevel.AddCommand(cmd)
}

package commands

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"daily-journal/internal/model"
)

// OutputOptions
type OutputOptions struct {
	JSON bool
}

func AddOutputArg(cmd *cobra.Command, po *OutputOptions) {
	cmd.Flags().BoolVar(&po.JSON, "json", false,
		"Output as JSON.")
}

func (o *OutputOptions) HandleError(cmd *cobra.Command, err error) error {
	if o.JSON && err != nil {
		out := map[string]string{
			"error": err.Error(),
		}
		b, err := json.Marshal(out)
		if err != nil {
			return err
		}
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), string(b))
		return nil
	}
	return err
}

// DateOptions selects a calendar day, today by default.
type DateOptions struct {
	Date string
}

func AddDateArg(cmd *cobra.Command, do *DateOptions) {
	cmd.Flags().StringVar(&do.Date, "date", "",
		"Day of the entry as YYYY-MM-DD, or today/yesterday (default today).")
}

// Resolve returns the day relative to today.
func (do *DateOptions) Resolve(today time.Time) (time.Time, error) {
	return resolveDate(do.Date, today)
}

func resolveDate(value string, today time.Time) (time.Time, error) {
	switch value {
	case "", "today":
		return model.DateOnly(today), nil
	case "yesterday":
		return model.DateOnly(today).AddDate(0, 0, -1), nil
	}
	return model.ParseDate(value)
}

// EntryOptions carries the editable fields of an entry.
type EntryOptions struct {
	Title     string
	Mood      string
	Secondary []string
	Tags      []string
	Text      string
	HTML      bool
}

func AddEntryArgs(cmd *cobra.Command, eo *EntryOptions) {
	cmd.Flags().StringVar(&eo.Title, "title", "", "Optional title.")
	cmd.Flags().StringVarP(&eo.Mood, "mood", "m", "", "Primary mood, see `dailyjournal moods`.")
	cmd.Flags().StringSliceVar(&eo.Secondary, "also", nil, "Up to two secondary moods.")
	cmd.Flags().StringSliceVarP(&eo.Tags, "tag", "t", nil, "Tags, predefined or custom. Repeatable.")
	cmd.Flags().StringVar(&eo.Text, "text", "", "Entry text; read from stdin when empty or -.")
	cmd.Flags().BoolVar(&eo.HTML, "html", false, "Treat the text as HTML.")
}

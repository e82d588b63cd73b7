package printers

import (
	"fmt"
	"iter"
	"strings"
	"time"

	"github.com/fatih/color"

	"daily-journal/internal/model"
	"daily-journal/internal/service"
)

const width = len("11 12 13 14 15 16 17") // an example week

var intensityColors = []*color.Color{
	color.New(color.Faint, color.FgWhite),
	color.New(color.FgGreen),
	color.New(color.FgHiGreen),
	color.New(color.Bold, color.FgHiGreen),
	color.New(color.Bold, color.FgHiGreen, color.Underline),
}

// Heatmap prints one calendar per month between from and to, shading each day
// by how much was written.
func (pp *PrettyPrint) Heatmap(points iter.Seq[service.ActivityPoint], from, to time.Time) {
	levels := map[string]int{}
	total := 0
	for p := range points {
		levels[model.DayKey(p.Date)] = p.Intensity()
		total += p.Count
	}

	pp.TitleWithCount("Activity", total)
	for month := firstOfMonth(from); !month.After(to); month = month.AddDate(0, 1, 0) {
		pp.printMonth(month, levels)
	}
}

func (pp *PrettyPrint) printMonth(then time.Time, levels map[string]int) {
	tf := color.New(color.FgWhite, color.Italic)

	m := fmt.Sprintf("%s %d", then.Month(), then.Year())
	mid := (width - len(m)) / 2
	_, _ = tf.Fprintf(pp.Out, "%s%s\n", strings.Repeat(" ", max(mid, 0)), m)

	d := then.Weekday()
	// Pad out the start of the month.
	_, _ = fmt.Fprint(pp.Out, strings.Repeat("   ", int(d)))

	days := DaysIn(then)
	for i := 0; i < days; i++ {
		day := then.AddDate(0, 0, i)
		level := levels[model.DayKey(day)]
		_, _ = intensityColors[level].Fprintf(pp.Out, "%2d ", i+1)

		d++
		if d > time.Saturday {
			d = time.Sunday
			_, _ = fmt.Fprint(pp.Out, "\n")
		}
	}
	_, _ = fmt.Fprint(pp.Out, "\n\n")
}

func firstOfMonth(t time.Time) time.Time {
	t = model.DateOnly(t)
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

func DaysIn(then time.Time) int {
	return time.Date(then.UTC().Year(), then.UTC().Month()+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

package bot

import (
	"errors"
	"fmt"
	"html"
	"iter"
	"strings"
	"time"

	"daily-journal/internal/model"
	"daily-journal/internal/richtext"
	"daily-journal/internal/service"
)

const (
	listPreviewLength = 80
	maxMessageRunes   = 3800
)

var monthNames = [...]string{
	"января", "февраля", "марта", "апреля", "мая", "июня",
	"июля", "августа", "сентября", "октября", "ноября", "декабря",
}

var monthTitles = [...]string{
	"Январь", "Февраль", "Март", "Апрель", "Май", "Июнь",
	"Июль", "Август", "Сентябрь", "Октябрь", "Ноябрь", "Декабрь",
}

var heatCells = [...]string{"⬜", "🟨", "🟧", "🟩", "🟦"}

var errBadDate = errors.New("bad date")

func escape(s string) string {
	return html.EscapeString(s)
}

func longDate(t time.Time) string {
	return fmt.Sprintf("%d %s %d", t.Day(), monthNames[t.Month()-1], t.Year())
}

func shortDate(t time.Time) string {
	return t.Format("02.01")
}

func shortText(s string, maxLen int) string {
	clean := strings.TrimSpace(strings.ReplaceAll(s, "\n", " "))
	runes := []rune(clean)
	if len(runes) <= maxLen {
		return clean
	}
	if maxLen <= 1 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-1]) + "…"
}

// pluralDays picks the Russian form of "день" for n.
func pluralDays(n int) string {
	mod100 := n % 100
	mod10 := n % 10
	switch {
	case mod100 >= 11 && mod100 <= 14:
		return fmt.Sprintf("%d дней", n)
	case mod10 == 1:
		return fmt.Sprintf("%d день", n)
	case mod10 >= 2 && mod10 <= 4:
		return fmt.Sprintf("%d дня", n)
	default:
		return fmt.Sprintf("%d дней", n)
	}
}

// parseDay accepts today/yesterday in both languages, YYYY-MM-DD and DD.MM.YYYY.
func parseDay(text string, today time.Time) (time.Time, error) {
	value := strings.TrimSpace(strings.ToLower(text))
	switch value {
	case "", "сегодня", "today":
		return model.DateOnly(today), nil
	case "вчера", "yesterday":
		return model.DateOnly(today).AddDate(0, 0, -1), nil
	}
	if d, err := model.ParseDate(value); err == nil {
		return d, nil
	}
	if d, err := time.Parse("02.01.2006", value); err == nil {
		return model.DateOnly(d), nil
	}
	return time.Time{}, errBadDate
}

func moodLine(e *model.JournalEntry) string {
	line := e.Category.Emoji() + " " + escape(e.PrimaryMood)
	if len(e.SecondaryMoods) > 0 {
		line += " · " + escape(strings.Join(e.SecondaryMoods, ", "))
	}
	return line
}

func hashtags(tags []string) string {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		out = append(out, "#"+strings.ReplaceAll(t, " ", "_"))
	}
	return escape(strings.Join(out, " "))
}

func formatEntry(e *model.JournalEntry) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("📔 <b>%s</b>\n", longDate(e.Date)))
	if e.Title != "" {
		b.WriteString(fmt.Sprintf("<b>%s</b>\n", escape(e.Title)))
	}
	b.WriteString(moodLine(e) + "\n")
	if tags := e.Tags(); len(tags) > 0 {
		b.WriteString(hashtags(tags) + "\n")
	}
	if body := richtext.PlainText(e.Notes); body != "" {
		b.WriteString("\n" + escape(shortText(body, maxMessageRunes)) + "\n")
	}
	b.WriteString(fmt.Sprintf("\n<i>Слов: %d</i>", richtext.WordCount(e.Notes)))
	return b.String()
}

func formatSaved(e *model.JournalEntry, updated bool) string {
	var b strings.Builder
	if updated {
		b.WriteString("✏️ <b>Запись обновлена</b>\n")
	} else {
		b.WriteString("✅ <b>Запись сохранена</b>\n")
	}
	b.WriteString(fmt.Sprintf("• <b>Дата:</b> %s\n", longDate(e.Date)))
	b.WriteString(fmt.Sprintf("• <b>Настроение:</b> %s\n", moodLine(e)))
	if tags := e.Tags(); len(tags) > 0 {
		b.WriteString(fmt.Sprintf("• <b>Теги:</b> %s\n", hashtags(tags)))
	}
	b.WriteString(fmt.Sprintf("• <b>Слов:</b> %d", richtext.WordCount(e.Notes)))
	return b.String()
}

func formatEntryList(entries []model.JournalEntry) string {
	if len(entries) == 0 {
		return "В дневнике пока нет записей. Начни с /write."
	}
	var b strings.Builder
	b.WriteString("📖 <b>Последние записи</b>\n\n")
	for i := range entries {
		e := &entries[i]
		b.WriteString(fmt.Sprintf("<b>%s</b> %s\n", longDate(e.Date), moodLine(e)))
		text := e.Title
		if text == "" {
			text = richtext.Preview(e.Notes, listPreviewLength)
		}
		if text != "" {
			b.WriteString("   " + escape(text) + "\n")
		}
		b.WriteByte('\n')
	}
	return strings.TrimSpace(b.String())
}

func formatSearch(page service.SearchPage, term string) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("🔎 <b>Поиск:</b> %s\n", escape(term)))
	if page.Total == 0 {
		b.WriteString("Ничего не найдено.")
		return b.String()
	}
	b.WriteString(fmt.Sprintf("Найдено: %d\n\n", page.Total))
	for _, h := range page.Hits {
		b.WriteString(fmt.Sprintf("<b>%s</b> · %s\n", longDate(h.Date), escape(h.PrimaryMood)))
		if h.Preview != "" {
			b.WriteString("   " + escape(shortText(h.Preview, listPreviewLength*2)) + "\n")
		}
		b.WriteByte('\n')
	}
	if page.Pages > 1 {
		b.WriteString(fmt.Sprintf("<i>Страница %d из %d</i>", page.Page, page.Pages))
	}
	return strings.TrimSpace(b.String())
}

func formatSearchHints(recent []string, popular []service.TagCount) string {
	var b strings.Builder
	b.WriteString("🔎 Напиши, что искать: <code>/search море</code>\n")
	if len(recent) > 0 {
		b.WriteString("\n<b>Недавние запросы</b>\n")
		for _, term := range recent {
			b.WriteString("• " + escape(term) + "\n")
		}
	}
	if len(popular) > 0 {
		b.WriteString("\n<b>Популярные теги</b>\n")
		names := make([]string, 0, len(popular))
		for _, p := range popular {
			names = append(names, "#"+p.Name)
		}
		b.WriteString(escape(strings.Join(names, " ")))
	}
	return strings.TrimSpace(b.String())
}

func formatStreak(summary service.StreakSummary, achievements []service.Achievement) string {
	var b strings.Builder
	b.WriteString("🔥 <b>Серия записей</b>\n")
	b.WriteString(fmt.Sprintf("• <b>Текущая:</b> %s\n", pluralDays(summary.Current)))
	b.WriteString(fmt.Sprintf("• <b>Лучшая:</b> %s\n", pluralDays(summary.Longest)))
	b.WriteString(fmt.Sprintf("• <b>Всего записей:</b> %d\n", summary.TotalEntries))
	if summary.LastEntryDate != nil {
		b.WriteString(fmt.Sprintf("• <b>Последняя:</b> %s\n", longDate(*summary.LastEntryDate)))
	}
	if next := summary.Milestone.Next; next.Days > 0 {
		b.WriteString(fmt.Sprintf("• <b>До «%s»:</b> %s\n", escape(next.Name), pluralDays(summary.Milestone.DaysToNext)))
	}
	if !summary.Active && summary.TotalEntries > 0 {
		b.WriteString("\n<i>Серия прервалась. Напиши сегодня, чтобы начать новую.</i>\n")
	}

	var unlocked []string
	for _, a := range achievements {
		if a.Unlocked {
			unlocked = append(unlocked, "🏅 "+escape(a.Name))
		}
	}
	if len(unlocked) > 0 {
		b.WriteString("\n<b>Достижения</b>\n")
		b.WriteString(strings.Join(unlocked, "\n"))
	}
	return strings.TrimSpace(b.String())
}

func formatCelebration(current int) string {
	return fmt.Sprintf("🎉 Ты пишешь %s подряд! Так держать.", pluralDays(current))
}

// formatHeatmap draws a calendar per month, Monday first.
func formatHeatmap(points iter.Seq[service.ActivityPoint], from, to time.Time) string {
	levels := map[string]int{}
	total := 0
	for p := range points {
		levels[model.DayKey(p.Date)] = p.Intensity()
		total += p.Count
	}

	var b strings.Builder
	b.WriteString(fmt.Sprintf("🗓 <b>Активность</b> · записей: %d\n", total))
	from, to = model.DateOnly(from), model.DateOnly(to)
	for month := time.Date(from.Year(), from.Month(), 1, 0, 0, 0, 0, time.UTC); !month.After(to); month = month.AddDate(0, 1, 0) {
		b.WriteString(fmt.Sprintf("\n<b>%s %d</b>\n<pre>", monthTitles[month.Month()-1], month.Year()))
		b.WriteString("Пн Вт Ср Чт Пт Сб Вс\n")
		offset := (int(month.Weekday()) + 6) % 7
		b.WriteString(strings.Repeat("   ", offset))
		col := offset
		for d := month; d.Month() == month.Month(); d = d.AddDate(0, 0, 1) {
			b.WriteString(heatCells[levels[model.DayKey(d)]] + " ")
			col++
			if col == 7 {
				b.WriteByte('\n')
				col = 0
			}
		}
		b.WriteString("</pre>")
	}
	return b.String()
}

func formatMoods(grouped map[model.MoodCategory][]model.Mood) string {
	var b strings.Builder
	b.WriteString("🎭 <b>Настроения</b>\n")
	for _, c := range model.MoodCategories {
		names := make([]string, 0, len(grouped[c]))
		for _, m := range grouped[c] {
			names = append(names, m.Name)
		}
		b.WriteString(fmt.Sprintf("\n%s <b>%s</b>\n%s\n", c.Emoji(), escape(string(c)), escape(strings.Join(names, ", "))))
	}
	return strings.TrimSpace(b.String())
}

func formatTags(tags []model.Tag, popular []service.TagCount) string {
	var b strings.Builder
	if len(popular) > 0 {
		b.WriteString("⭐ <b>Популярные</b>\n")
		for _, p := range popular {
			b.WriteString(fmt.Sprintf("• #%s (%d)\n", escape(p.Name), p.Count))
		}
		b.WriteByte('\n')
	}
	b.WriteString(fmt.Sprintf("🏷 <b>Все теги</b> (%d)\n", len(tags)))
	names := make([]string, 0, len(tags))
	for _, t := range tags {
		names = append(names, t.Name)
	}
	b.WriteString(escape(strings.Join(names, ", ")))
	return b.String()
}

func formatReminder(settings model.ReminderSettings, next time.Time) string {
	var b strings.Builder
	b.WriteString("⏰ <b>Напоминание</b>\n")
	state := "выключено"
	if settings.Enabled {
		state = "включено"
	}
	b.WriteString(fmt.Sprintf("• <b>Статус:</b> %s\n", state))
	b.WriteString(fmt.Sprintf("• <b>Расписание:</b> %s\n", escape(service.ScheduleText(settings))))
	b.WriteString(fmt.Sprintf("• <b>Стиль:</b> %s\n", escape(string(settings.Style))))
	b.WriteString(fmt.Sprintf("• <b>Текст:</b> %s\n", escape(service.PreviewMessage(settings.Style))))
	if !next.IsZero() {
		b.WriteString(fmt.Sprintf("• <b>Следующее:</b> %s %s\n", longDate(next), next.Format("15:04")))
	}
	b.WriteString("\nИзменить: <code>/reminder on 21:30 weekdays gentle</code>, <code>/reminder off</code>")
	return b.String()
}

var russianWeekdays = map[string]string{
	"пн": "mon", "вт": "tue", "ср": "wed", "чт": "thu", "пт": "fri", "сб": "sat", "вс": "sun",
}

// applyReminderArgs changes settings according to space separated words such as
// "on 21:30 weekdays gentle" or "custom mon wed fri".
func applyReminderArgs(settings model.ReminderSettings, args string) (model.ReminderSettings, error) {
	var days []string
	for _, word := range strings.Fields(strings.ToLower(args)) {
		switch word {
		case "on", "вкл":
			settings.Enabled = true
		case "off", "выкл":
			settings.Enabled = false
		case string(model.FrequencyDaily), string(model.FrequencyWeekdays), string(model.FrequencyCustom):
			settings.Frequency = model.ReminderFrequency(word)
		case string(model.StyleGentle), string(model.StyleMotivational), string(model.StylePrompt):
			settings.Style = model.ReminderStyle(word)
		default:
			if strings.Contains(word, ":") {
				settings.TimeOfDay = word
				continue
			}
			for _, d := range strings.Split(word, ",") {
				if en, ok := russianWeekdays[d]; ok {
					d = en
				}
				if d != "" {
					days = append(days, d)
				}
			}
		}
	}
	if len(days) > 0 {
		settings.Days = days
		settings.Frequency = model.FrequencyCustom
	}
	return service.NormalizeReminder(settings)
}

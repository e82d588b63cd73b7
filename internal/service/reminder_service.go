package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"daily-journal/internal/model"
	"daily-journal/internal/repository"
)

var ErrInvalidReminder = errors.New("invalid reminder settings")

// DefaultReminderTime is used until the user picks a time.
const DefaultReminderTime = "20:00"

var weekdayNames = []string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}

var defaultReminderDays = []string{"Mon", "Tue", "Wed", "Thu", "Fri"}

// ReminderService manages the local writing reminder schedule. Reminders are
// configuration only; nothing is delivered outside the process.
type ReminderService struct {
	repo *repository.ReminderRepository
}

func NewReminderService(repo *repository.ReminderRepository) *ReminderService {
	return &ReminderService{repo: repo}
}

// DefaultReminderSettings returns the schedule shown before anything was saved.
func DefaultReminderSettings() model.ReminderSettings {
	return model.ReminderSettings{
		Enabled:   false,
		TimeOfDay: DefaultReminderTime,
		Frequency: model.FrequencyDaily,
		Days:      append([]string(nil), defaultReminderDays...),
		Style:     model.StyleMotivational,
	}
}

// Settings returns the stored schedule or the defaults.
func (s *ReminderService) Settings(ctx context.Context) (model.ReminderSettings, error) {
	stored, err := s.repo.Get(ctx)
	if err != nil {
		return model.ReminderSettings{}, err
	}
	if stored == nil {
		return DefaultReminderSettings(), nil
	}
	return *stored, nil
}

// Update validates and stores settings.
func (s *ReminderService) Update(ctx context.Context, settings model.ReminderSettings) (model.ReminderSettings, error) {
	normalized, err := NormalizeReminder(settings)
	if err != nil {
		return model.ReminderSettings{}, err
	}
	if err := s.repo.Save(ctx, &normalized); err != nil {
		return model.ReminderSettings{}, err
	}
	return normalized, nil
}

// SetEnabled switches reminders on or off keeping the rest of the schedule.
func (s *ReminderService) SetEnabled(ctx context.Context, enabled bool) (model.ReminderSettings, error) {
	settings, err := s.Settings(ctx)
	if err != nil {
		return model.ReminderSettings{}, err
	}
	settings.Enabled = enabled
	return s.Update(ctx, settings)
}

// NormalizeReminder checks every field and puts day names in canonical form.
func NormalizeReminder(settings model.ReminderSettings) (model.ReminderSettings, error) {
	hour, minute, err := parseClock(settings.TimeOfDay)
	if err != nil {
		return settings, fmt.Errorf("%w: %v", ErrInvalidReminder, err)
	}
	settings.TimeOfDay = fmt.Sprintf("%02d:%02d", hour, minute)

	switch settings.Frequency {
	case "":
		settings.Frequency = model.FrequencyDaily
	case model.FrequencyDaily, model.FrequencyWeekdays, model.FrequencyCustom:
	default:
		return settings, fmt.Errorf("%w: unknown frequency %q", ErrInvalidReminder, settings.Frequency)
	}

	switch settings.Style {
	case "":
		settings.Style = model.StyleMotivational
	case model.StyleGentle, model.StyleMotivational, model.StylePrompt:
	default:
		return settings, fmt.Errorf("%w: unknown style %q", ErrInvalidReminder, settings.Style)
	}

	days := make([]string, 0, len(settings.Days))
	seen := map[time.Weekday]bool{}
	for _, raw := range settings.Days {
		wd, ok := parseWeekday(raw)
		if !ok {
			return settings, fmt.Errorf("%w: unknown day %q", ErrInvalidReminder, raw)
		}
		seen[wd] = true
	}
	for wd := time.Sunday; wd <= time.Saturday; wd++ {
		if seen[wd] {
			days = append(days, weekdayNames[wd])
		}
	}
	if settings.Frequency == model.FrequencyCustom && len(days) == 0 {
		return settings, fmt.Errorf("%w: custom frequency needs at least one day", ErrInvalidReminder)
	}
	settings.Days = days
	return settings, nil
}

func parseWeekday(value string) (time.Weekday, bool) {
	value = strings.ToLower(strings.TrimSpace(value))
	if len(value) < 3 {
		return 0, false
	}
	for i, name := range weekdayNames {
		if strings.HasPrefix(value, strings.ToLower(name)) {
			return time.Weekday(i), true
		}
	}
	return 0, false
}

// CronSpec builds the seconds-enabled cron expression of the schedule.
func CronSpec(settings model.ReminderSettings) (string, error) {
	settings, err := NormalizeReminder(settings)
	if err != nil {
		return "", err
	}
	hour, minute, _ := parseClock(settings.TimeOfDay)
	dow := "*"
	switch settings.Frequency {
	case model.FrequencyWeekdays:
		dow = "1-5"
	case model.FrequencyCustom:
		nums := make([]string, 0, len(settings.Days))
		for _, d := range settings.Days {
			wd, _ := parseWeekday(d)
			nums = append(nums, strconv.Itoa(int(wd)))
		}
		dow = strings.Join(nums, ",")
	}
	// cron format: second minute hour dom month dow
	return fmt.Sprintf("0 %d %d * * %s", minute, hour, dow), nil
}

// NextRun returns when a reminder would fire after now. ok is false when reminders are off.
func NextRun(settings model.ReminderSettings, now time.Time) (next time.Time, ok bool, err error) {
	if !settings.Enabled {
		return time.Time{}, false, nil
	}
	spec, err := CronSpec(settings)
	if err != nil {
		return time.Time{}, false, err
	}
	schedule, err := cronParser.Parse(spec)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("parse reminder spec %q: %w", spec, err)
	}
	return schedule.Next(now), true, nil
}

// ScheduleText describes the schedule in one line.
func ScheduleText(settings model.ReminderSettings) string {
	if !settings.Enabled {
		return "Reminders are off"
	}
	switch settings.Frequency {
	case model.FrequencyWeekdays:
		return "Weekdays at " + settings.TimeOfDay
	case model.FrequencyCustom:
		return strings.Join(settings.Days, ", ") + " at " + settings.TimeOfDay
	default:
		return "Every day at " + settings.TimeOfDay
	}
}

// PreviewMessage is the reminder text for a style.
func PreviewMessage(style model.ReminderStyle) string {
	switch style {
	case model.StyleGentle:
		return "It's time to write in your journal 📝"
	case model.StylePrompt:
		return "What made you smile today? Share your thoughts 😊"
	default:
		return "Your future self will thank you for writing today! ✨"
	}
}

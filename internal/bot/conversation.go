package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"daily-journal/internal/model"
	"daily-journal/internal/repository"
	"daily-journal/internal/richtext"
	"daily-journal/internal/service"
)

type conversationStage int

const (
	stageNone conversationStage = iota
	stageDate
	stagePrimaryMood
	stageSecondaryMoods
	stageTags
	stageText
)

type conversationState struct {
	stage   conversationStage
	input   service.EntryInput
	editing *model.JournalEntry
	notes   *richtext.Buffer
	picked  bool // a secondary mood was chosen in this dialog
}

func (b *Bot) startWriteConversation(ctx context.Context, msg *tgbotapi.Message) error {
	args := strings.TrimSpace(msg.CommandArguments())
	if args != "" {
		day, err := parseDay(args, b.app.Journal.Today())
		if err != nil {
			return b.sendText(msg.Chat.ID, "Не могу распознать дату. Используй формат <code>2026-10-19</code>, «сегодня» или «вчера».")
		}
		return b.beginEntry(ctx, msg.Chat.ID, msg.From.ID, day)
	}

	slog.Info("start write conversation", "user", msg.From.ID)
	b.setConversation(msg.From.ID, &conversationState{stage: stageDate})
	return b.sendWithReplyMarkup(msg.Chat.ID, "📝 Новая запись.\n<b>Шаг 1:</b> за какой день пишем?", dateKeyboard())
}

func (b *Bot) startEditConversation(ctx context.Context, chatID, userID int64, day string) error {
	date, err := parseDay(day, b.app.Journal.Today())
	if err != nil {
		return b.sendText(chatID, "Укажи дату записи: <code>/edit 2026-10-19</code>")
	}
	entry, err := b.app.Journal.GetByDate(ctx, date)
	if err != nil {
		return err
	}
	if entry == nil {
		return b.sendText(chatID, fmt.Sprintf("За %s записи нет. Создай её через /write %s.", longDate(date), model.DayKey(date)))
	}

	state := &conversationState{
		stage:   stagePrimaryMood,
		editing: entry,
		input: service.EntryInput{
			Date:           entry.Date,
			Title:          entry.Title,
			PrimaryMood:    entry.PrimaryMood,
			SecondaryMoods: entry.SecondaryMoods,
			Tags:           entry.Tags(),
			NotesHTML:      entry.Notes,
		},
	}
	b.setConversation(userID, state)
	slog.Info("start edit conversation", "user", userID, "date", model.DayKey(date))

	moods, err := b.app.Catalog.Moods(ctx)
	if err != nil {
		return err
	}
	text := fmt.Sprintf("✏️ Редактируем запись за %s.\nСейчас: %s\n\n<b>Шаг 1:</b> основное настроение (или «Пропустить», чтобы оставить).",
		longDate(entry.Date), moodLine(entry))
	return b.sendWithReplyMarkup(chatID, text, moodKeyboard(moods, btnSkip))
}

// beginEntry checks the day is free and asks for the primary mood.
func (b *Bot) beginEntry(ctx context.Context, chatID, userID int64, day time.Time) error {
	existing, err := b.app.Journal.GetByDate(ctx, day)
	if err != nil {
		return err
	}
	if existing != nil {
		b.clearConversation(userID)
		text := fmt.Sprintf("За %s уже есть запись: в дневнике одна запись на день.\nОткрыть её: /edit %s", longDate(day), model.DayKey(day))
		return b.sendText(chatID, text)
	}

	b.setConversation(userID, &conversationState{
		stage: stagePrimaryMood,
		input: service.EntryInput{Date: day},
	})
	moods, err := b.app.Catalog.Moods(ctx)
	if err != nil {
		return err
	}
	return b.sendWithReplyMarkup(chatID, fmt.Sprintf("📅 %s\n<b>Шаг 2:</b> какое у тебя настроение?", longDate(day)), moodKeyboard(moods))
}

func (b *Bot) handleConversation(ctx context.Context, msg *tgbotapi.Message) error {
	state := b.getConversation(msg.From.ID)
	if state == nil {
		return nil
	}
	chatID := msg.Chat.ID
	text := strings.TrimSpace(msg.Text)

	switch state.stage {
	case stageDate:
		day, err := parseDay(text, b.app.Journal.Today())
		if err != nil {
			return b.sendWithReplyMarkup(chatID, "Не могу распознать дату. Используй формат <code>2026-10-19</code> или кнопки.", dateKeyboard())
		}
		return b.beginEntry(ctx, chatID, msg.From.ID, day)

	case stagePrimaryMood:
		moods, err := b.app.Catalog.Moods(ctx)
		if err != nil {
			return err
		}
		if !(state.editing != nil && isSkipInput(text)) {
			mood, err := b.app.Catalog.ResolveMood(ctx, text)
			if errors.Is(err, service.ErrUnknownMood) {
				return b.sendWithReplyMarkup(chatID, "Такого настроения нет. Выбери из списка.", moodKeyboard(moods))
			}
			if err != nil {
				return err
			}
			state.input.PrimaryMood = mood.Name
			if state.editing != nil {
				state.input.SecondaryMoods = nil
			}
		}
		state.stage = stageSecondaryMoods
		prompt := fmt.Sprintf("<b>Шаг 3:</b> добавь до %d дополнительных настроений или нажми «Готово».", service.MaxSecondaryMoods)
		return b.sendWithReplyMarkup(chatID, prompt, moodKeyboard(moods, btnDone))

	case stageSecondaryMoods:
		if !isDoneInput(text) && !isSkipInput(text) {
			moods, err := b.app.Catalog.Moods(ctx)
			if err != nil {
				return err
			}
			mood, err := b.app.Catalog.ResolveMood(ctx, text)
			if errors.Is(err, service.ErrUnknownMood) {
				return b.sendWithReplyMarkup(chatID, "Такого настроения нет. Выбери из списка или нажми «Готово».", moodKeyboard(moods, btnDone))
			}
			if err != nil {
				return err
			}
			if !state.picked {
				state.input.SecondaryMoods = nil
				state.picked = true
			}
			if strings.EqualFold(mood.Name, state.input.PrimaryMood) || containsFold(state.input.SecondaryMoods, mood.Name) {
				return b.sendWithReplyMarkup(chatID, "Это настроение уже выбрано.", moodKeyboard(moods, btnDone))
			}
			state.input.SecondaryMoods = append(state.input.SecondaryMoods, mood.Name)
			if len(state.input.SecondaryMoods) < service.MaxSecondaryMoods {
				return b.sendWithReplyMarkup(chatID, fmt.Sprintf("Добавлено: %s. Ещё одно или «Готово»?", escape(mood.Name)), moodKeyboard(moods, btnDone))
			}
		}
		state.stage = stageTags
		popular, err := b.app.Search.PopularTags(ctx)
		if err != nil {
			return err
		}
		prompt := "<b>Шаг 4:</b> теги через запятую, например <code>Work, Family</code> (или «Пропустить»)."
		if state.editing != nil && len(state.input.Tags) > 0 {
			prompt += "\nСейчас: " + hashtags(state.input.Tags)
		}
		return b.sendWithReplyMarkup(chatID, prompt, tagKeyboard(popular))

	case stageTags:
		if !isSkipInput(text) {
			state.input.Tags = service.ParseTagList(text)
		}
		state.stage = stageText
		state.notes = richtext.NewBuffer()
		if err := state.notes.Init(ctx, strconv.FormatInt(chatID, 10)); err != nil {
			return err
		}
		prompt := "<b>Шаг 5:</b> напиши, как прошёл день. Можно несколькими сообщениями, затем нажми «Сохранить»."
		if state.editing != nil {
			prompt += "\n«Пропустить» оставит прежний текст."
		}
		return b.sendWithReplyMarkup(chatID, prompt, textKeyboard(state.editing != nil))

	case stageText:
		if state.editing != nil && isSkipInput(text) {
			return b.finishEntry(ctx, chatID, msg.From.ID, state)
		}
		if !isSaveInput(text) {
			if text == "" {
				return b.sendText(chatID, "Пока я понимаю только текст.")
			}
			if err := state.notes.AppendText(ctx, text); err != nil {
				return err
			}
			return nil
		}
		body, err := state.notes.HTML(ctx)
		if err != nil {
			return err
		}
		if body != "" || state.editing == nil {
			state.input.NotesHTML = body
		}
		return b.finishEntry(ctx, chatID, msg.From.ID, state)

	default:
		b.clearConversation(msg.From.ID)
		return b.sendText(chatID, "Диалог сброшен. Попробуй ещё раз через /write.")
	}
}

func (b *Bot) finishEntry(ctx context.Context, chatID, userID int64, state *conversationState) error {
	defer b.clearConversation(userID)

	var (
		entry *model.JournalEntry
		err   error
	)
	if state.editing != nil {
		entry, err = b.app.Journal.Update(ctx, state.editing.ID, state.input)
	} else {
		entry, err = b.app.Journal.Create(ctx, state.input)
	}
	switch {
	case errors.Is(err, repository.ErrUniqueDate):
		return b.sendText(chatID, fmt.Sprintf("За %s уже есть запись. Открой её через /edit %s.",
			longDate(state.input.Date), model.DayKey(state.input.Date)))
	case err != nil:
		return b.sendText(chatID, fmt.Sprintf("Не удалось сохранить запись: %s", escape(err.Error())))
	}

	slog.Info("entry saved", "user", userID, "date", model.DayKey(entry.Date), "updated", state.editing != nil)
	if err := b.sendText(chatID, formatSaved(entry, state.editing != nil)); err != nil {
		return err
	}
	return b.maybeCelebrate(ctx, chatID)
}

func containsFold(values []string, target string) bool {
	for _, v := range values {
		if strings.EqualFold(v, target) {
			return true
		}
	}
	return false
}

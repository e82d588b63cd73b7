package bot

import (
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"daily-journal/internal/model"
	"daily-journal/internal/service"
)

const (
	btnSkip         = "⏭️ Пропустить"
	btnDone         = "✅ Готово"
	btnSave         = "💾 Сохранить"
	btnToday        = "Сегодня"
	btnYesterday    = "Вчера"
	btnConfirm      = "✅ Подтвердить"
	btnCancel       = "↩️ Отмена"
	btnCancelDialog = "⏪ Отменить ввод"

	menuLabelWrite   = "✍️ Написать"
	menuLabelEntries = "📖 Записи"
	menuLabelStreak  = "🔥 Серия"
	menuLabelHelp    = "ℹ️ Помощь"
)

const moodsPerRow = 3

func mainMenuKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(menuLabelWrite),
			tgbotapi.NewKeyboardButton(menuLabelEntries),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(menuLabelStreak),
			tgbotapi.NewKeyboardButton(menuLabelHelp),
		),
	)
	kb.ResizeKeyboard = true
	kb.OneTimeKeyboard = false
	return kb
}

func confirmKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnConfirm),
			tgbotapi.NewKeyboardButton(btnCancel),
		),
	)
	kb.ResizeKeyboard = true
	kb.OneTimeKeyboard = true
	return kb
}

func dateKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnToday),
			tgbotapi.NewKeyboardButton(btnYesterday),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnCancelDialog),
		),
	)
	kb.ResizeKeyboard = true
	kb.OneTimeKeyboard = true
	return kb
}

// moodKeyboard lays moods out by category. extra buttons go on the last row.
func moodKeyboard(moods []model.Mood, extra ...string) tgbotapi.ReplyKeyboardMarkup {
	byCategory := make(map[model.MoodCategory][]model.Mood)
	for _, m := range moods {
		byCategory[m.Category] = append(byCategory[m.Category], m)
	}

	var rows [][]tgbotapi.KeyboardButton
	for _, c := range model.MoodCategories {
		var row []tgbotapi.KeyboardButton
		for _, m := range byCategory[c] {
			row = append(row, tgbotapi.NewKeyboardButton(m.Name))
			if len(row) == moodsPerRow {
				rows = append(rows, row)
				row = nil
			}
		}
		if len(row) > 0 {
			rows = append(rows, row)
		}
	}

	last := make([]tgbotapi.KeyboardButton, 0, len(extra)+1)
	for _, label := range extra {
		last = append(last, tgbotapi.NewKeyboardButton(label))
	}
	last = append(last, tgbotapi.NewKeyboardButton(btnCancelDialog))
	rows = append(rows, last)

	kb := tgbotapi.NewReplyKeyboard(rows...)
	kb.ResizeKeyboard = true
	kb.OneTimeKeyboard = true
	return kb
}

func tagKeyboard(popular []service.TagCount) tgbotapi.ReplyKeyboardMarkup {
	var rows [][]tgbotapi.KeyboardButton
	var row []tgbotapi.KeyboardButton
	for _, t := range popular {
		row = append(row, tgbotapi.NewKeyboardButton("#"+t.Name))
		if len(row) == moodsPerRow {
			rows = append(rows, row)
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}
	rows = append(rows, tgbotapi.NewKeyboardButtonRow(
		tgbotapi.NewKeyboardButton(btnSkip),
		tgbotapi.NewKeyboardButton(btnCancelDialog),
	))
	kb := tgbotapi.NewReplyKeyboard(rows...)
	kb.ResizeKeyboard = true
	kb.OneTimeKeyboard = true
	return kb
}

func textKeyboard(editing bool) tgbotapi.ReplyKeyboardMarkup {
	first := []tgbotapi.KeyboardButton{tgbotapi.NewKeyboardButton(btnSave)}
	if editing {
		first = append(first, tgbotapi.NewKeyboardButton(btnSkip))
	}
	kb := tgbotapi.NewReplyKeyboard(
		first,
		tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(btnCancelDialog)),
	)
	kb.ResizeKeyboard = true
	kb.OneTimeKeyboard = false
	return kb
}

func entryButtons(entries []model.JournalEntry) tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(entries))
	for _, e := range entries {
		key := model.DayKey(e.Date)
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📖 "+shortDate(e.Date)+" · "+shortText(e.PrimaryMood, 12), cbViewPrefix+key),
			tgbotapi.NewInlineKeyboardButtonData("✏️", cbEditPrefix+key),
			tgbotapi.NewInlineKeyboardButtonData("🗑", cbDeletePrefix+key),
		))
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func isSkipInput(text string) bool {
	value := strings.TrimSpace(strings.ToLower(text))
	return value == "-" || value == strings.ToLower(btnSkip) || value == "пропустить" || value == "skip"
}

func isDoneInput(text string) bool {
	value := strings.TrimSpace(strings.ToLower(text))
	return value == strings.ToLower(btnDone) || value == "готово" || value == "done"
}

func isSaveInput(text string) bool {
	value := strings.TrimSpace(strings.ToLower(text))
	return value == strings.ToLower(btnSave) || value == "сохранить" || value == "save"
}

func isConfirmInput(text string) bool {
	value := strings.TrimSpace(strings.ToLower(text))
	return value == strings.ToLower(btnConfirm) || value == "подтвердить" || value == "да"
}

func isCancelInput(text string) bool {
	value := strings.TrimSpace(strings.ToLower(text))
	return value == strings.ToLower(btnCancel) || value == "отмена" || value == "нет"
}

func isCancelDialogInput(text string) bool {
	value := strings.TrimSpace(strings.ToLower(text))
	return value == strings.ToLower(btnCancelDialog) || value == "отменить ввод"
}

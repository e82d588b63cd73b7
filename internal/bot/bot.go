package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/robfig/cron/v3"

	"daily-journal/internal/app"
	"daily-journal/internal/logging"
	"daily-journal/internal/model"
	"daily-journal/internal/repository"
	"daily-journal/internal/service"
)

const (
	cbViewPrefix   = "view:"
	cbEditPrefix   = "edit:"
	cbDeletePrefix = "delete:"
)

const recentEntriesLimit = 7

type confirmationRequest struct {
	date time.Time
}

// Bot aggregates Telegram API with services.
type Bot struct {
	api           *tgbotapi.BotAPI
	app           *app.App
	scheduler     *service.SchedulerService
	reminderJob   cron.EntryID
	conversations map[int64]*conversationState
	confirmations map[int64]confirmationRequest
	unlocked      map[int64]time.Time
	mu            sync.Mutex
}

func New(token string, a *app.App) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create bot api: %w", err)
	}

	slog.Info("bot authorized", "account", api.Self.UserName)

	return &Bot{
		api:           api,
		app:           a,
		conversations: make(map[int64]*conversationState),
		confirmations: make(map[int64]confirmationRequest),
		unlocked:      make(map[int64]time.Time),
	}, nil
}

// Start begins polling updates until ctx is cancelled.
func (b *Bot) Start(ctx context.Context) error {
	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = 60
	updates := b.api.GetUpdatesChan(updateConfig)

	slog.Info("start polling updates")

	go func() {
		<-ctx.Done()
		b.api.StopReceivingUpdates()
	}()

	for update := range updates {
		switch {
		case update.CallbackQuery != nil:
			if err := b.handleCallback(ctx, update.CallbackQuery); err != nil {
				logging.CaptureError(err, "handle callback", "user", update.CallbackQuery.From.ID)
			}
		case update.Message != nil:
			if update.Message.Chat == nil || !update.Message.Chat.IsPrivate() {
				continue
			}
			if err := b.handleMessage(ctx, update.Message); err != nil {
				logging.CaptureError(err, "handle message", "user", update.Message.From.ID)
			}
		}
	}

	return nil
}

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) error {
	if msg.From == nil {
		return nil
	}

	user, err := b.ensureUser(ctx, msg.From)
	if errors.Is(err, service.ErrForeignAccount) {
		slog.Warn("message from foreign account", "user", msg.From.ID)
		return b.sendTextWithRemove(msg.Chat.ID, "🔒 Этот дневник уже привязан к другому аккаунту.")
	}
	if err != nil {
		return err
	}

	if !msg.IsCommand() && isCancelDialogInput(msg.Text) {
		b.clearConversation(msg.From.ID)
		b.clearConfirmation(msg.From.ID)
		return b.sendText(msg.Chat.ID, "⏪ Ввод отменён. Черновик не сохранён.")
	}

	if user.HasPasscode() && !b.isUnlocked(msg.From.ID) {
		switch msg.Command() {
		case "start", "help", "unlock", "cancel":
			return b.handleCommand(ctx, msg)
		}
		return b.sendText(msg.Chat.ID, "🔒 Дневник закрыт. Введи код: <code>/unlock 1234</code>")
	}

	if !msg.IsCommand() {
		if handled, err := b.handleMenuAlias(ctx, msg); handled {
			return err
		}
	}

	if msg.IsCommand() {
		slog.Info("command received", "user", msg.From.ID, "command", msg.Command())
		return b.handleCommand(ctx, msg)
	}

	if pending, ok := b.getConfirmation(msg.From.ID); ok {
		return b.handleConfirmationResponse(ctx, msg, pending)
	}

	if b.hasConversation(msg.From.ID) {
		slog.Debug("conversation step", "user", msg.From.ID, "stage", b.getConversation(msg.From.ID).stage)
		return b.handleConversation(ctx, msg)
	}

	return b.sendText(msg.Chat.ID, "Я пока не понял сообщение. Набери /write, чтобы написать о дне, или /help для списка команд.")
}

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) error {
	args := strings.TrimSpace(msg.CommandArguments())
	switch msg.Command() {
	case "start":
		return b.handleStart(msg)
	case "help":
		return b.handleHelp(msg)
	case "write", "new":
		return b.startWriteConversation(ctx, msg)
	case "edit":
		if args == "" {
			args = "сегодня"
		}
		return b.startEditConversation(ctx, msg.Chat.ID, msg.From.ID, args)
	case "today":
		return b.showEntry(ctx, msg.Chat.ID, "сегодня")
	case "show":
		return b.showEntry(ctx, msg.Chat.ID, args)
	case "entries":
		return b.handleEntries(ctx, msg.Chat.ID)
	case "delete":
		return b.handleDelete(ctx, msg, args)
	case "search":
		return b.handleSearch(ctx, msg.Chat.ID, args)
	case "streak":
		return b.handleStreak(ctx, msg.Chat.ID)
	case "heatmap":
		return b.handleHeatmap(ctx, msg.Chat.ID, args)
	case "export":
		return b.handleExport(ctx, msg.Chat.ID, args)
	case "moods":
		return b.handleMoods(ctx, msg.Chat.ID)
	case "tags":
		return b.handleTags(ctx, msg.Chat.ID)
	case "reminder":
		return b.handleReminder(ctx, msg.Chat.ID, args)
	case "unlock":
		return b.handleUnlock(ctx, msg, args)
	case "lock":
		b.setUnlocked(msg.From.ID, false)
		b.clearConversation(msg.From.ID)
		return b.sendTextWithRemove(msg.Chat.ID, "🔒 Дневник закрыт.")
	case "cancel":
		b.clearConversation(msg.From.ID)
		b.clearConfirmation(msg.From.ID)
		return b.sendText(msg.Chat.ID, "⏪ Ввод отменён.")
	default:
		return b.sendText(msg.Chat.ID, "Команда не поддерживается. Загляни в /help.")
	}
}

func (b *Bot) handleStart(msg *tgbotapi.Message) error {
	name := strings.TrimSpace(msg.From.FirstName)
	if name == "" {
		name = "друг"
	}

	text := fmt.Sprintf(
		"👋 Привет, %s!\n<b>Я твой дневник: одна запись на каждый день.</b>\n\n"+
			"• /write — рассказать о дне\n"+
			"• /entries — последние записи\n"+
			"• /streak — серия дней подряд\n"+
			"• /help — все команды",
		escape(name),
	)
	return b.sendText(msg.Chat.ID, text)
}

func (b *Bot) handleHelp(msg *tgbotapi.Message) error {
	text := "ℹ️ <b>Подсказки</b>\n" +
		"• /write [дата] — новая запись (настроение, теги, текст)\n" +
		"• /edit &lt;дата&gt; — изменить запись\n" +
		"• /today — запись за сегодня\n" +
		"• /show &lt;дата&gt; — открыть запись\n" +
		"• /entries — последние записи с кнопками\n" +
		"• /delete &lt;дата&gt; — удалить запись\n" +
		"• /search &lt;текст&gt; — поиск по записям\n" +
		"• /streak — серия и достижения\n" +
		"• /heatmap [месяцев] — календарь активности\n" +
		"• /export week|month|year [txt|csv|xlsx] — выгрузка\n" +
		"• /moods, /tags — настроения и теги\n" +
		"• /reminder — настройки напоминания\n" +
		"• /unlock &lt;код&gt;, /lock — код доступа\n" +
		"• /cancel — отменить текущий ввод\n\n" +
		"Дата: <code>2026-10-19</code>, <code>19.10.2026</code>, «сегодня» или «вчера»."
	return b.sendText(msg.Chat.ID, text)
}

func (b *Bot) showEntry(ctx context.Context, chatID int64, day string) error {
	date, err := parseDay(day, b.app.Journal.Today())
	if err != nil {
		return b.sendText(chatID, "Не могу распознать дату. Используй формат <code>2026-10-19</code>.")
	}
	entry, err := b.app.Journal.GetByDate(ctx, date)
	if err != nil {
		return err
	}
	if entry == nil {
		return b.sendText(chatID, fmt.Sprintf("За %s записи нет. Написать: /write %s", longDate(date), model.DayKey(date)))
	}
	return b.sendText(chatID, formatEntry(entry))
}

func (b *Bot) handleEntries(ctx context.Context, chatID int64) error {
	entries, err := b.app.Journal.Recent(ctx, recentEntriesLimit)
	if err != nil {
		return b.sendText(chatID, fmt.Sprintf("Не удалось получить записи: %s", escape(err.Error())))
	}
	if len(entries) == 0 {
		return b.sendText(chatID, formatEntryList(entries))
	}
	return b.sendWithReplyMarkup(chatID, formatEntryList(entries), entryButtons(entries))
}

func (b *Bot) handleDelete(ctx context.Context, msg *tgbotapi.Message, args string) error {
	if args == "" {
		return b.sendText(msg.Chat.ID, "Укажи дату записи: /delete 2026-10-19")
	}
	return b.askDeleteConfirmation(ctx, msg.Chat.ID, msg.From.ID, args)
}

func (b *Bot) askDeleteConfirmation(ctx context.Context, chatID, userID int64, day string) error {
	date, err := parseDay(day, b.app.Journal.Today())
	if err != nil {
		return b.sendText(chatID, "Не могу распознать дату. Используй формат <code>2026-10-19</code>.")
	}
	entry, err := b.app.Journal.GetByDate(ctx, date)
	if err != nil {
		return err
	}
	if entry == nil {
		return b.sendText(chatID, "Запись не найдена.")
	}

	b.setConfirmation(userID, confirmationRequest{date: entry.Date})
	text := fmt.Sprintf("Удалить запись за %s? Восстановить её будет нельзя.", longDate(entry.Date))
	return b.sendWithReplyMarkup(chatID, text, confirmKeyboard())
}

func (b *Bot) handleConfirmationResponse(ctx context.Context, msg *tgbotapi.Message, req confirmationRequest) error {
	text := strings.TrimSpace(msg.Text)
	switch {
	case isConfirmInput(text):
		b.clearConfirmation(msg.From.ID)
		return b.deleteEntryAndRefresh(ctx, msg.Chat.ID, req.date)
	case isCancelInput(text):
		b.clearConfirmation(msg.From.ID)
		return b.sendMenuPlaceholder(msg.Chat.ID)
	default:
		return b.sendWithReplyMarkup(msg.Chat.ID, "Подтверди или отмени удаление записи.", confirmKeyboard())
	}
}

func (b *Bot) deleteEntryAndRefresh(ctx context.Context, chatID int64, date time.Time) error {
	_, err := b.app.Journal.DeleteByDate(ctx, date)
	if errors.Is(err, repository.ErrNotFound) {
		return b.sendTextWithRemove(chatID, "Запись не найдена или уже удалена.")
	}
	if err != nil {
		return b.sendTextWithRemove(chatID, fmt.Sprintf("Ошибка: %s", escape(err.Error())))
	}

	slog.Info("entry deleted", "date", model.DayKey(date))
	if err := b.sendTextWithRemove(chatID, fmt.Sprintf("🗑 Запись за %s удалена.", longDate(date))); err != nil {
		return err
	}
	return b.handleEntries(ctx, chatID)
}

func (b *Bot) handleSearch(ctx context.Context, chatID int64, term string) error {
	if term == "" {
		recent, err := b.app.Search.RecentSearches()
		if err != nil {
			slog.Warn("read recent searches", "error", err)
		}
		popular, err := b.app.Search.PopularTags(ctx)
		if err != nil {
			return err
		}
		return b.sendText(chatID, formatSearchHints(recent, popular))
	}

	page, err := b.app.Search.Search(ctx, service.SearchQuery{Text: term, Sort: service.SortDateDesc})
	if err != nil {
		return b.sendText(chatID, fmt.Sprintf("Поиск не удался: %s", escape(err.Error())))
	}
	return b.sendText(chatID, formatSearch(page, term))
}

func (b *Bot) handleStreak(ctx context.Context, chatID int64) error {
	summary, err := b.app.Streaks.Summary(ctx)
	if err != nil {
		return err
	}
	return b.sendText(chatID, formatStreak(summary, service.Achievements(summary.Longest, summary.TotalEntries)))
}

func (b *Bot) handleHeatmap(ctx context.Context, chatID int64, args string) error {
	months := 3
	if args != "" {
		n, err := strconv.Atoi(args)
		if err != nil || n < 1 || n > service.DefaultActivityMonths {
			return b.sendText(chatID, fmt.Sprintf("Укажи число месяцев от 1 до %d, например /heatmap 6", service.DefaultActivityMonths))
		}
		months = n
	}

	today := b.app.Journal.Today()
	points, err := b.app.Streaks.ActivityLastMonths(ctx, months)
	if err != nil {
		return err
	}
	from := model.AddMonths(today, -months)
	return b.sendText(chatID, formatHeatmap(points, from, today))
}

var exportRangeAliases = map[string]string{
	"сегодня": "today",
	"неделя":  "week",
	"месяц":   "month",
	"год":     "year",
}

func (b *Bot) handleExport(ctx context.Context, chatID int64, args string) error {
	fields := strings.Fields(strings.ToLower(args))
	rangeName, formatName := "week", string(service.FormatText)
	if len(fields) > 0 {
		rangeName = fields[0]
		if alias, ok := exportRangeAliases[rangeName]; ok {
			rangeName = alias
		}
	}
	if len(fields) > 1 {
		formatName = fields[1]
	}

	format, err := service.ParseExportFormat(formatName)
	if err != nil {
		return b.sendText(chatID, "Формат выгрузки: txt, csv или xlsx.")
	}
	from, to, err := service.ExportRange(rangeName, b.app.Journal.Today())
	if err != nil {
		return b.sendText(chatID, "Период выгрузки: week, month или year. Например: <code>/export month csv</code>")
	}

	res, err := b.app.Export.Export(ctx, from, to, format)
	if errors.Is(err, service.ErrNothingToExport) {
		return b.sendText(chatID, "За этот период записей нет.")
	}
	if err != nil {
		return b.sendText(chatID, fmt.Sprintf("Не удалось выгрузить записи: %s", escape(err.Error())))
	}

	doc := tgbotapi.NewDocument(chatID, tgbotapi.FilePath(res.Path))
	doc.Caption = fmt.Sprintf("📦 Записей: %d · %s — %s", res.Count, shortDate(from), shortDate(to))
	_, err = b.api.Send(doc)
	return err
}

func (b *Bot) handleMoods(ctx context.Context, chatID int64) error {
	grouped, err := b.app.Catalog.MoodsByCategory(ctx)
	if err != nil {
		return err
	}
	return b.sendText(chatID, formatMoods(grouped))
}

func (b *Bot) handleTags(ctx context.Context, chatID int64) error {
	tags, err := b.app.Catalog.Tags(ctx)
	if err != nil {
		return err
	}
	popular, err := b.app.Search.PopularTags(ctx)
	if err != nil {
		return err
	}
	return b.sendText(chatID, formatTags(tags, popular))
}

func (b *Bot) handleReminder(ctx context.Context, chatID int64, args string) error {
	settings, err := b.app.Reminder.Settings(ctx)
	if err != nil {
		return err
	}
	if args != "" {
		updated, err := applyReminderArgs(settings, args)
		if err != nil {
			return b.sendText(chatID, fmt.Sprintf("Не получилось: %s", escape(err.Error())))
		}
		if settings, err = b.app.Reminder.Update(ctx, updated); err != nil {
			return err
		}
		if err := b.rescheduleReminder(ctx); err != nil {
			return err
		}
	}

	next, _, err := service.NextRun(settings, service.SystemClock(b.app.Location)())
	if err != nil {
		return err
	}
	return b.sendText(chatID, formatReminder(settings, next))
}

func (b *Bot) handleUnlock(ctx context.Context, msg *tgbotapi.Message, code string) error {
	if code == "" {
		return b.sendText(msg.Chat.ID, "Укажи код: <code>/unlock 1234</code>")
	}
	err := b.app.Profile.VerifyPasscode(ctx, code)
	if errors.Is(err, service.ErrWrongPasscode) {
		slog.Warn("wrong passcode", "user", msg.From.ID)
		return b.sendText(msg.Chat.ID, "Неверный код.")
	}
	if err != nil {
		return err
	}
	b.setUnlocked(msg.From.ID, true)
	return b.sendText(msg.Chat.ID, "🔓 Дневник открыт.")
}

// maybeCelebrate shows the streak dialog at most once per day.
func (b *Bot) maybeCelebrate(ctx context.Context, chatID int64) error {
	show, err := b.app.Streaks.ShouldShowDialog(ctx)
	if err != nil || !show {
		return err
	}
	summary, err := b.app.Streaks.Summary(ctx)
	if err != nil {
		return err
	}
	if summary.Current < 2 {
		return nil
	}
	if err := b.sendText(chatID, formatCelebration(summary.Current)); err != nil {
		return err
	}
	return b.app.Streaks.MarkDialogShown(ctx)
}

func (b *Bot) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) error {
	if cb == nil || cb.From == nil || cb.Message == nil {
		return nil
	}

	if _, err := b.api.Request(tgbotapi.NewCallback(cb.ID, "")); err != nil {
		slog.Warn("callback ack", "error", err)
	}

	user, err := b.ensureUser(ctx, cb.From)
	if errors.Is(err, service.ErrForeignAccount) {
		return nil
	}
	if err != nil {
		return err
	}
	chatID := cb.Message.Chat.ID
	if user.HasPasscode() && !b.isUnlocked(cb.From.ID) {
		return b.sendText(chatID, "🔒 Дневник закрыт. Введи код: <code>/unlock 1234</code>")
	}

	data := cb.Data
	slog.Info("callback", "user", cb.From.ID, "data", data)
	switch {
	case strings.HasPrefix(data, cbViewPrefix):
		return b.showEntry(ctx, chatID, strings.TrimPrefix(data, cbViewPrefix))
	case strings.HasPrefix(data, cbEditPrefix):
		return b.startEditConversation(ctx, chatID, cb.From.ID, strings.TrimPrefix(data, cbEditPrefix))
	case strings.HasPrefix(data, cbDeletePrefix):
		return b.askDeleteConfirmation(ctx, chatID, cb.From.ID, strings.TrimPrefix(data, cbDeletePrefix))
	default:
		return nil
	}
}

func (b *Bot) handleMenuAlias(ctx context.Context, msg *tgbotapi.Message) (bool, error) {
	text := strings.TrimSpace(strings.ToLower(msg.Text))
	switch text {
	case strings.ToLower(menuLabelWrite):
		return true, b.startWriteConversation(ctx, msg)
	case strings.ToLower(menuLabelEntries):
		return true, b.handleEntries(ctx, msg.Chat.ID)
	case strings.ToLower(menuLabelStreak):
		return true, b.handleStreak(ctx, msg.Chat.ID)
	case strings.ToLower(menuLabelHelp):
		return true, b.handleHelp(msg)
	default:
		return false, nil
	}
}

func (b *Bot) ensureUser(ctx context.Context, from *tgbotapi.User) (*model.User, error) {
	return b.app.Profile.BindTelegram(ctx, from.ID, from.FirstName, from.LastName, from.UserName)
}

func (b *Bot) sendText(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.ReplyMarkup = mainMenuKeyboard()
	_, err := b.api.Send(msg)
	return err
}

func (b *Bot) sendTextWithRemove(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.ReplyMarkup = tgbotapi.NewRemoveKeyboard(true)
	if _, err := b.api.Send(msg); err != nil {
		return err
	}
	return b.sendMenuPlaceholder(chatID)
}

func (b *Bot) sendWithReplyMarkup(chatID int64, text string, markup any) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.ReplyMarkup = markup
	_, err := b.api.Send(msg)
	return err
}

func (b *Bot) sendMenuPlaceholder(chatID int64) error {
	msg := tgbotapi.NewMessage(chatID, "🔹 Главное меню")
	msg.ParseMode = tgbotapi.ModeHTML
	msg.ReplyMarkup = mainMenuKeyboard()
	_, err := b.api.Send(msg)
	return err
}

func (b *Bot) getConfirmation(userID int64) (confirmationRequest, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	req, ok := b.confirmations[userID]
	return req, ok
}

func (b *Bot) setConfirmation(userID int64, req confirmationRequest) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.confirmations[userID] = req
}

func (b *Bot) clearConfirmation(userID int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.confirmations, userID)
}

func (b *Bot) setConversation(userID int64, state *conversationState) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.conversations[userID] = state
}

func (b *Bot) getConversation(userID int64) *conversationState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.conversations[userID]
}

func (b *Bot) hasConversation(userID int64) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok := b.conversations[userID]
	return ok
}

func (b *Bot) clearConversation(userID int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.conversations, userID)
}

// isUnlocked reports whether userID entered the passcode and refreshes the session.
func (b *Bot) isUnlocked(userID int64) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.unlocked[userID]; !ok {
		return false
	}
	b.unlocked[userID] = time.Now()
	return true
}

func (b *Bot) setUnlocked(userID int64, unlocked bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if unlocked {
		b.unlocked[userID] = time.Now()
		return
	}
	delete(b.unlocked, userID)
}

// lockIdle forgets sessions with no activity since before now-idle.
func (b *Bot) lockIdle(now time.Time, idle time.Duration) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	locked := 0
	for id, seen := range b.unlocked {
		if now.Sub(seen) >= idle {
			delete(b.unlocked, id)
			delete(b.conversations, id)
			locked++
		}
	}
	return locked
}

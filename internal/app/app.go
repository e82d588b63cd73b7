// Package app opens storage and wires the journal services for the surfaces.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/gorm"

	"daily-journal/internal/config"
	"daily-journal/internal/history"
	"daily-journal/internal/model"
	"daily-journal/internal/repository"
	"daily-journal/internal/service"
)

// App holds the services shared by the bot and the CLI.
type App struct {
	Config   config.Config
	Location *time.Location
	Owner    *model.User

	Journal  *service.JournalService
	Catalog  *service.CatalogService
	Streaks  *service.StreakService
	Search   *service.SearchService
	Export   *service.ExportService
	Reminder *service.ReminderService
	Profile  *service.ProfileService
	History  *history.Store

	db *gorm.DB
}

// Open runs the startup phase: connect, migrate, seed the catalog and the
// local profile, then build the services. Callers must Close the result.
func Open(ctx context.Context, cfg config.Config) (*App, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	policy, err := service.ParseStreakPolicy(cfg.StreakPolicy)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	db, err := repository.NewDB(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("db: %w", err)
	}

	users := repository.NewUserRepository(db)
	owner, err := users.EnsureDefault(ctx)
	if err != nil {
		_ = repository.Close(db)
		return nil, fmt.Errorf("seed profile: %w", err)
	}

	catalog := service.NewCatalogService(repository.NewMoodRepository(db), repository.NewTagRepository(db))
	moods, tags, err := catalog.Seed(ctx)
	if err != nil {
		_ = repository.Close(db)
		return nil, fmt.Errorf("seed catalog: %w", err)
	}
	if moods > 0 || tags > 0 {
		slog.Info("catalog seeded", "moods", moods, "tags", tags)
	}

	clock := service.SystemClock(loc)
	entries := repository.NewJournalRepository(db, owner.ID)
	streaks := service.NewStreakService(entries, repository.NewStreakRepository(db, owner.ID), policy, clock)
	searches := history.Open(cfg.HistoryDir, history.DefaultLimit)

	return &App{
		Config:   cfg,
		Location: loc,
		Owner:    owner,
		Journal:  service.NewJournalService(entries, catalog, streaks, clock),
		Catalog:  catalog,
		Streaks:  streaks,
		Search:   service.NewSearchService(entries, searches),
		Export:   service.NewExportService(entries, cfg.ExportDir, clock),
		Reminder: service.NewReminderService(repository.NewReminderRepository(db, owner.ID)),
		Profile:  service.NewProfileService(users),
		History:  searches,
		db:       db,
	}, nil
}

// Close releases the database connection.
func (a *App) Close() error {
	if a == nil || a.db == nil {
		return nil
	}
	err := repository.Close(a.db)
	a.db = nil
	return err
}

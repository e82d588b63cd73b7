package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"

	"daily-journal/internal/model"
	"daily-journal/internal/repository"
)

// MinPasscodeLength is the shortest passcode accepted.
const MinPasscodeLength = 4

var (
	ErrPasscodeTooShort = fmt.Errorf("passcode must be at least %d characters", MinPasscodeLength)
	ErrWrongPasscode    = errors.New("wrong passcode")
	ErrForeignAccount   = errors.New("journal belongs to another account")
)

// ProfileService manages the single local profile and its optional passcode.
type ProfileService struct {
	users *repository.UserRepository
	cost  int
}

func NewProfileService(users *repository.UserRepository) *ProfileService {
	return &ProfileService{users: users, cost: bcrypt.DefaultCost}
}

// Profile returns the local profile, creating it on first use.
func (s *ProfileService) Profile(ctx context.Context) (*model.User, error) {
	return s.users.EnsureDefault(ctx)
}

// BindTelegram attaches a chat account to the profile. The first account to
// write claims the journal; any other account is refused.
func (s *ProfileService) BindTelegram(ctx context.Context, telegramID int64, firstName, lastName, username string) (*model.User, error) {
	user, err := s.users.EnsureDefault(ctx)
	if err != nil {
		return nil, err
	}
	if user.TelegramID != nil {
		if *user.TelegramID != telegramID {
			return nil, ErrForeignAccount
		}
		return user, nil
	}

	user.TelegramID = &telegramID
	user.FirstName = firstName
	user.LastName = lastName
	if username != "" {
		user.Username = username
	}
	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}
	slog.Info("telegram account bound", "telegram_id", telegramID, "username", user.Username)
	return user, nil
}

// SetPasscode replaces the passcode. current must match when one is already set.
func (s *ProfileService) SetPasscode(ctx context.Context, current, passcode string) error {
	passcode = strings.TrimSpace(passcode)
	if utf8.RuneCountInString(passcode) < MinPasscodeLength {
		return ErrPasscodeTooShort
	}
	user, err := s.users.EnsureDefault(ctx)
	if err != nil {
		return err
	}
	if user.HasPasscode() {
		if err := compare(user.PasscodeHash, current); err != nil {
			return err
		}
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(passcode), s.cost)
	if err != nil {
		return fmt.Errorf("hash passcode: %w", err)
	}
	user.PasscodeHash = string(hash)
	return s.users.Update(ctx, user)
}

// VerifyPasscode reports ErrWrongPasscode on mismatch. Without a passcode any input passes.
func (s *ProfileService) VerifyPasscode(ctx context.Context, passcode string) error {
	user, err := s.users.EnsureDefault(ctx)
	if err != nil {
		return err
	}
	if !user.HasPasscode() {
		return nil
	}
	return compare(user.PasscodeHash, passcode)
}

// ClearPasscode removes the passcode after checking the current one.
func (s *ProfileService) ClearPasscode(ctx context.Context, current string) error {
	user, err := s.users.EnsureDefault(ctx)
	if err != nil {
		return err
	}
	if !user.HasPasscode() {
		return nil
	}
	if err := compare(user.PasscodeHash, current); err != nil {
		return err
	}
	user.PasscodeHash = ""
	return s.users.Update(ctx, user)
}

func compare(hash, passcode string) error {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(strings.TrimSpace(passcode)))
	switch {
	case err == nil:
		return nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return ErrWrongPasscode
	default:
		return fmt.Errorf("check passcode: %w", err)
	}
}

package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/powdermilkjuno/habit-tracker/internal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type userRow struct {
	ID           string `gorm:"primaryKey;size:64"`
	Email        string `gorm:"size:255;uniqueIndex;not null"`
	PasswordHash string `gorm:"size:255"`
	CreatedAt    time.Time
}

func (userRow) TableName() string { return "users" }

type profileRow struct {
	UserID        string `gorm:"primaryKey;size:64"`
	Email         string `gorm:"size:255"`
	Username      string `gorm:"size:64"`
	Weight        float64
	Height        float64
	Age           int
	ActivityLevel string  `gorm:"size:16;default:Sedentary"`
	Goal          string  `gorm:"size:8;default:cut"`
	BMR           int     `gorm:"column:bmr"`
	PetStatus     string  `gorm:"size:16;default:egg"`
	FriendCode    *string `gorm:"size:32;uniqueIndex"`
	Streak        int
	LastUpdated   time.Time
	CreatedAt     time.Time
}

func (profileRow) TableName() string { return "user_profiles" }

type entryRow struct {
	ID             string `gorm:"primaryKey;size:64"`
	UserID         string `gorm:"primaryKey;size:64;index"`
	Kind           string `gorm:"size:16;not null"`
	Name           string `gorm:"size:255;not null"`
	Calories       int
	Protein        float64
	CaloriesBurned int
	Duration       int
	Date           time.Time `gorm:"index"`
	Visible        bool
	Position       int
}

func (entryRow) TableName() string { return "habit_entries" }

type friendRow struct {
	UserID    string `gorm:"primaryKey;size:64"`
	FriendID  string `gorm:"primaryKey;size:64"`
	CreatedAt time.Time
}

func (friendRow) TableName() string { return "friends" }

// SQLiteStorage is a RemoteStore on a local SQLite file through gorm.
type SQLiteStorage struct {
	db     *gorm.DB
	logger internal.Logger
}

func NewSQLiteStorage(path string, logMode bool, log internal.Logger) (*SQLiteStorage, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("storage: create sqlite dir: %w", err)
	}
	gormLogger := logger.Default
	if !logMode {
		gormLogger = gormLogger.LogMode(logger.Silent)
	}
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{Logger: gormLogger})
	if err != nil {
		log.Errorf("failed to open sqlite: %v", err)
		return nil, fmt.Errorf("storage: open sqlite: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("storage: get sql db: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)
	_, _ = sqlDB.Exec("PRAGMA journal_mode = WAL;")
	_, _ = sqlDB.Exec("PRAGMA foreign_keys = ON;")

	if err := db.AutoMigrate(&userRow{}, &profileRow{}, &entryRow{}, &friendRow{}); err != nil {
		return nil, fmt.Errorf("storage: migrate sqlite: %w", err)
	}
	return &SQLiteStorage{db: db, logger: log}, nil
}

func (s *SQLiteStorage) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// --- EntryRepository ---
func (s *SQLiteStorage) ReplaceEntries(ctx context.Context, userID string, entries []internal.Entry) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", userID).Delete(&entryRow{}).Error; err != nil {
			return err
		}
		if len(entries) == 0 {
			return nil
		}
		rows := make([]entryRow, len(entries))
		for i, e := range entries {
			rows[i] = toEntryRow(userID, i, e)
		}
		return tx.Create(&rows).Error
	})
	if err != nil {
		s.logger.Errorf("failed to replace entries: %v", err)
	}
	return err
}

func (s *SQLiteStorage) ListEntries(ctx context.Context, userID string) ([]internal.Entry, error) {
	var rows []entryRow
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).Order("position, date").Find(&rows).Error; err != nil {
		s.logger.Errorf("failed to query entries: %v", err)
		return nil, err
	}
	entries := make([]internal.Entry, len(rows))
	for i, r := range rows {
		entries[i] = internal.Entry{
			ID:             r.ID,
			Kind:           internal.EntryKind(r.Kind),
			Name:           r.Name,
			Calories:       r.Calories,
			Protein:        r.Protein,
			CaloriesBurned: r.CaloriesBurned,
			Duration:       r.Duration,
			Date:           r.Date,
			Visible:        r.Visible,
		}
	}
	return entries, nil
}

func (s *SQLiteStorage) DeleteEntry(ctx context.Context, userID, entryID string) error {
	res := s.db.WithContext(ctx).Where("id = ? AND user_id = ?", entryID, userID).Delete(&entryRow{})
	if res.Error != nil {
		s.logger.Errorf("failed to delete entry: %v", res.Error)
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// --- ProfileRepository ---
func (s *SQLiteStorage) GetProfile(ctx context.Context, userID string) (*internal.UserProfile, error) {
	var row profileRow
	if err := s.db.WithContext(ctx).First(&row, "user_id = ?", userID).Error; err != nil {
		return nil, translateGormErr(err)
	}
	p := fromProfileRow(row)
	return &p, nil
}

func (s *SQLiteStorage) InsertProfile(ctx context.Context, p *internal.UserProfile) error {
	row := toProfileRow(withTimestamps(*p))
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		if isSQLiteConstraint(err) {
			return ErrAlreadyExists
		}
		s.logger.Errorf("failed to insert profile: %v", err)
		return err
	}
	return nil
}

func (s *SQLiteStorage) UpdateProfile(ctx context.Context, p *internal.UserProfile) error {
	updates := map[string]interface{}{
		"email":          p.Email,
		"username":       p.Username,
		"weight":         p.Weight,
		"height":         p.Height,
		"age":            p.Age,
		"activity_level": string(p.ActivityLevel),
		"goal":           string(p.Goal),
		"bmr":            p.BMR,
		"pet_status":     string(p.PetStatus),
		"streak":         p.Streak,
		"last_updated":   p.LastUpdated,
	}
	if p.FriendCode != "" {
		updates["friend_code"] = p.FriendCode
	}
	res := s.db.WithContext(ctx).Model(&profileRow{}).Where("user_id = ?", p.UserID).Updates(updates)
	if res.Error != nil {
		s.logger.Errorf("failed to update profile: %v", res.Error)
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLiteStorage) ProfileByFriendCode(ctx context.Context, code string) (*internal.UserProfile, error) {
	var row profileRow
	if err := s.db.WithContext(ctx).First(&row, "friend_code = ?", code).Error; err != nil {
		return nil, translateGormErr(err)
	}
	p := fromProfileRow(row)
	return &p, nil
}

func (s *SQLiteStorage) ListProfiles(ctx context.Context) ([]internal.UserProfile, error) {
	var rows []profileRow
	if err := s.db.WithContext(ctx).Order("user_id").Find(&rows).Error; err != nil {
		s.logger.Errorf("failed to query profiles: %v", err)
		return nil, err
	}
	out := make([]internal.UserProfile, len(rows))
	for i, r := range rows {
		out[i] = fromProfileRow(r)
	}
	return out, nil
}

// --- FriendRepository ---
func (s *SQLiteStorage) ListFriends(ctx context.Context, userID string) ([]internal.FriendSummary, error) {
	var friends []internal.FriendSummary
	err := s.db.WithContext(ctx).
		Table("friends").
		Select("friends.friend_id AS id, COALESCE(user_profiles.email, '') AS email, COALESCE(user_profiles.friend_code, '') AS friend_code").
		Joins("LEFT JOIN user_profiles ON user_profiles.user_id = friends.friend_id").
		Where("friends.user_id = ?", userID).
		Order("friends.created_at, friends.friend_id").
		Scan(&friends).Error
	if err != nil {
		s.logger.Errorf("failed to query friends: %v", err)
		return nil, err
	}
	if friends == nil {
		friends = []internal.FriendSummary{}
	}
	return friends, nil
}

func (s *SQLiteStorage) FriendExists(ctx context.Context, userID, friendID string) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&friendRow{}).Where("user_id = ? AND friend_id = ?", userID, friendID).Count(&count).Error
	return count > 0, err
}

func (s *SQLiteStorage) AddFriend(ctx context.Context, userID, friendID string) error {
	if err := s.db.WithContext(ctx).Create(&friendRow{UserID: userID, FriendID: friendID}).Error; err != nil {
		if isSQLiteConstraint(err) {
			return ErrAlreadyExists
		}
		s.logger.Errorf("failed to insert friend: %v", err)
		return err
	}
	return nil
}

func (s *SQLiteStorage) RemoveFriend(ctx context.Context, userID, friendID string) error {
	err := s.db.WithContext(ctx).Where("user_id = ? AND friend_id = ?", userID, friendID).Delete(&friendRow{}).Error
	if err != nil {
		s.logger.Errorf("failed to delete friend: %v", err)
	}
	return err
}

// --- UserRepository ---
func (s *SQLiteStorage) CreateUser(ctx context.Context, u *internal.User) error {
	row := userRow{ID: u.ID, Email: u.Email, PasswordHash: u.PasswordHash, CreatedAt: u.CreatedAt}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		if isSQLiteConstraint(err) {
			return ErrAlreadyExists
		}
		s.logger.Errorf("failed to insert user: %v", err)
		return err
	}
	return nil
}

func (s *SQLiteStorage) GetUserByEmail(ctx context.Context, email string) (*internal.User, error) {
	var row userRow
	if err := s.db.WithContext(ctx).Where("LOWER(email) = LOWER(?)", email).First(&row).Error; err != nil {
		return nil, translateGormErr(err)
	}
	return &internal.User{ID: row.ID, Email: row.Email, PasswordHash: row.PasswordHash, CreatedAt: row.CreatedAt}, nil
}

func (s *SQLiteStorage) GetUserByID(ctx context.Context, id string) (*internal.User, error) {
	var row userRow
	if err := s.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		return nil, translateGormErr(err)
	}
	return &internal.User{ID: row.ID, Email: row.Email, PasswordHash: row.PasswordHash, CreatedAt: row.CreatedAt}, nil
}

// --- row mapping ---
func toEntryRow(userID string, pos int, e internal.Entry) entryRow {
	return entryRow{
		ID:             e.ID,
		UserID:         userID,
		Kind:           string(e.Kind),
		Name:           e.Name,
		Calories:       e.Calories,
		Protein:        e.Protein,
		CaloriesBurned: e.CaloriesBurned,
		Duration:       e.Duration,
		Date:           e.Date,
		Visible:        e.Visible,
		Position:       pos,
	}
}

func toProfileRow(p internal.UserProfile) profileRow {
	row := profileRow{
		UserID:        p.UserID,
		Email:         p.Email,
		Username:      p.Username,
		Weight:        p.Weight,
		Height:        p.Height,
		Age:           p.Age,
		ActivityLevel: string(p.ActivityLevel),
		Goal:          string(p.Goal),
		BMR:           p.BMR,
		PetStatus:     string(p.PetStatus),
		Streak:        p.Streak,
		LastUpdated:   p.LastUpdated,
		CreatedAt:     p.CreatedAt,
	}
	if p.FriendCode != "" {
		code := p.FriendCode
		row.FriendCode = &code
	}
	return row
}

func fromProfileRow(r profileRow) internal.UserProfile {
	p := internal.UserProfile{
		UserID:        r.UserID,
		Email:         r.Email,
		Username:      r.Username,
		Weight:        r.Weight,
		Height:        r.Height,
		Age:           r.Age,
		ActivityLevel: internal.ActivityLevel(r.ActivityLevel),
		Goal:          internal.Goal(r.Goal),
		BMR:           r.BMR,
		PetStatus:     internal.PetStatus(r.PetStatus),
		Streak:        r.Streak,
		LastUpdated:   r.LastUpdated,
		CreatedAt:     r.CreatedAt,
	}
	if r.FriendCode != nil {
		p.FriendCode = *r.FriendCode
	}
	return p
}

func translateGormErr(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

func isSQLiteConstraint(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey) || strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// --- Compile-time assertions ---
var _ RemoteStore = (*SQLiteStorage)(nil)

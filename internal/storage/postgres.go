package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/powdermilkjuno/habit-tracker/internal"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS users (
	id            TEXT PRIMARY KEY,
	email         TEXT NOT NULL UNIQUE,
	password_hash TEXT NOT NULL DEFAULT '',
	created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE TABLE IF NOT EXISTS user_profiles (
	user_id        TEXT PRIMARY KEY,
	email          TEXT NOT NULL DEFAULT '',
	username       TEXT NOT NULL DEFAULT '',
	weight         DOUBLE PRECISION NOT NULL DEFAULT 0,
	height         DOUBLE PRECISION NOT NULL DEFAULT 0,
	age            INTEGER NOT NULL DEFAULT 0,
	activity_level TEXT NOT NULL DEFAULT 'Sedentary',
	goal           TEXT NOT NULL DEFAULT 'cut',
	bmr            INTEGER NOT NULL DEFAULT 0,
	pet_status     TEXT NOT NULL DEFAULT 'egg',
	friend_code    TEXT UNIQUE,
	streak         INTEGER NOT NULL DEFAULT 0,
	last_updated   TIMESTAMPTZ NOT NULL DEFAULT now(),
	created_at     TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE TABLE IF NOT EXISTS habit_entries (
	id              TEXT NOT NULL,
	user_id         TEXT NOT NULL,
	kind            TEXT NOT NULL,
	name            TEXT NOT NULL,
	calories        INTEGER NOT NULL,
	protein         DOUBLE PRECISION NOT NULL DEFAULT 0,
	calories_burned INTEGER NOT NULL DEFAULT 0,
	duration        INTEGER NOT NULL DEFAULT 0,
	date            TIMESTAMPTZ NOT NULL,
	visible         BOOLEAN NOT NULL DEFAULT TRUE,
	position        INTEGER NOT NULL DEFAULT 0,
	PRIMARY KEY (user_id, id)
);
CREATE TABLE IF NOT EXISTS friends (
	user_id    TEXT NOT NULL,
	friend_id  TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (user_id, friend_id)
);
`

const profileColumns = `user_id, email, username, weight, height, age, activity_level, goal, bmr, pet_status, COALESCE(friend_code, ''), streak, last_updated, created_at`

type PostgresStorage struct {
	pool   *pgxpool.Pool
	logger internal.Logger
}

func NewPostgresStorage(ctx context.Context, dsn string, logger internal.Logger) (*PostgresStorage, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		logger.Errorf("failed to connect to postgres: %v", err)
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		logger.Errorf("failed to ping postgres: %v", err)
		return nil, err
	}
	return &PostgresStorage{pool: pool, logger: logger}, nil
}

// Migrate creates the tables if they are missing.
func (p *PostgresStorage) Migrate(ctx context.Context) error {
	if _, err := p.pool.Exec(ctx, postgresSchema); err != nil {
		return fmt.Errorf("storage: migrate postgres: %w", err)
	}
	return nil
}

func (p *PostgresStorage) Close() error {
	p.pool.Close()
	return nil
}

// --- EntryRepository ---
func (p *PostgresStorage) ReplaceEntries(ctx context.Context, userID string, entries []internal.Entry) error {
	tx, err := p.pool.Begin(ctx)
	if err != nil {
		p.logger.Errorf("failed to begin replace: %v", err)
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM habit_entries WHERE user_id = $1`, userID); err != nil {
		p.logger.Errorf("failed to delete entries: %v", err)
		return err
	}
	batch := &pgx.Batch{}
	for i, e := range entries {
		batch.Queue(`INSERT INTO habit_entries (id, user_id, kind, name, calories, protein, calories_burned, duration, date, visible, position) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
			e.ID, userID, string(e.Kind), e.Name, e.Calories, e.Protein, e.CaloriesBurned, e.Duration, e.Date, e.Visible, i)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		p.logger.Errorf("failed to insert entries: %v", err)
		return err
	}
	return tx.Commit(ctx)
}

func (p *PostgresStorage) ListEntries(ctx context.Context, userID string) ([]internal.Entry, error) {
	rows, err := p.pool.Query(ctx, `SELECT id, kind, name, calories, protein, calories_burned, duration, date, visible FROM habit_entries WHERE user_id = $1 ORDER BY position, date`, userID)
	if err != nil {
		p.logger.Errorf("failed to query entries: %v", err)
		return nil, err
	}
	defer rows.Close()

	entries := []internal.Entry{}
	for rows.Next() {
		var e internal.Entry
		var kind string
		if err := rows.Scan(&e.ID, &kind, &e.Name, &e.Calories, &e.Protein, &e.CaloriesBurned, &e.Duration, &e.Date, &e.Visible); err != nil {
			p.logger.Errorf("failed to scan entry: %v", err)
			return nil, err
		}
		e.Kind = internal.EntryKind(kind)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (p *PostgresStorage) DeleteEntry(ctx context.Context, userID, entryID string) error {
	tag, err := p.pool.Exec(ctx, `DELETE FROM habit_entries WHERE id = $1 AND user_id = $2`, entryID, userID)
	if err != nil {
		p.logger.Errorf("failed to delete entry: %v", err)
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// --- ProfileRepository ---
func (p *PostgresStorage) GetProfile(ctx context.Context, userID string) (*internal.UserProfile, error) {
	row := p.pool.QueryRow(ctx, `SELECT `+profileColumns+` FROM user_profiles WHERE user_id = $1`, userID)
	return scanProfile(row)
}

func (p *PostgresStorage) InsertProfile(ctx context.Context, prof *internal.UserProfile) error {
	cp := withTimestamps(*prof)
	_, err := p.pool.Exec(ctx, `INSERT INTO user_profiles (user_id, email, username, weight, height, age, activity_level, goal, bmr, pet_status, friend_code, streak, last_updated, created_at) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NULLIF($11, ''), $12, $13, $14)`,
		cp.UserID, cp.Email, cp.Username, cp.Weight, cp.Height, cp.Age, string(cp.ActivityLevel), string(cp.Goal), cp.BMR, string(cp.PetStatus), cp.FriendCode, cp.Streak, cp.LastUpdated, cp.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrAlreadyExists
		}
		p.logger.Errorf("failed to insert profile: %v", err)
		return err
	}
	return nil
}

func (p *PostgresStorage) UpdateProfile(ctx context.Context, prof *internal.UserProfile) error {
	tag, err := p.pool.Exec(ctx, `UPDATE user_profiles SET email = $2, username = $3, weight = $4, height = $5, age = $6, activity_level = $7, goal = $8, bmr = $9, pet_status = $10, friend_code = COALESCE(NULLIF($11, ''), friend_code), streak = $12, last_updated = $13 WHERE user_id = $1`,
		prof.UserID, prof.Email, prof.Username, prof.Weight, prof.Height, prof.Age, string(prof.ActivityLevel), string(prof.Goal), prof.BMR, string(prof.PetStatus), prof.FriendCode, prof.Streak, prof.LastUpdated)
	if err != nil {
		p.logger.Errorf("failed to update profile: %v", err)
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (p *PostgresStorage) ProfileByFriendCode(ctx context.Context, code string) (*internal.UserProfile, error) {
	row := p.pool.QueryRow(ctx, `SELECT `+profileColumns+` FROM user_profiles WHERE friend_code = $1`, code)
	return scanProfile(row)
}

func (p *PostgresStorage) ListProfiles(ctx context.Context) ([]internal.UserProfile, error) {
	rows, err := p.pool.Query(ctx, `SELECT `+profileColumns+` FROM user_profiles ORDER BY user_id`)
	if err != nil {
		p.logger.Errorf("failed to query profiles: %v", err)
		return nil, err
	}
	defer rows.Close()

	var out []internal.UserProfile
	for rows.Next() {
		prof, err := scanProfile(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *prof)
	}
	return out, rows.Err()
}

// --- FriendRepository ---
func (p *PostgresStorage) ListFriends(ctx context.Context, userID string) ([]internal.FriendSummary, error) {
	rows, err := p.pool.Query(ctx, `SELECT f.friend_id, COALESCE(up.email, ''), COALESCE(up.friend_code, '') FROM friends f LEFT JOIN user_profiles up ON up.user_id = f.friend_id WHERE f.user_id = $1 ORDER BY f.created_at, f.friend_id`, userID)
	if err != nil {
		p.logger.Errorf("failed to query friends: %v", err)
		return nil, err
	}
	defer rows.Close()

	friends := []internal.FriendSummary{}
	for rows.Next() {
		var f internal.FriendSummary
		if err := rows.Scan(&f.ID, &f.Email, &f.FriendCode); err != nil {
			p.logger.Errorf("failed to scan friend: %v", err)
			return nil, err
		}
		friends = append(friends, f)
	}
	return friends, rows.Err()
}

func (p *PostgresStorage) FriendExists(ctx context.Context, userID, friendID string) (bool, error) {
	var exists bool
	err := p.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM friends WHERE user_id = $1 AND friend_id = $2)`, userID, friendID).Scan(&exists)
	return exists, err
}

func (p *PostgresStorage) AddFriend(ctx context.Context, userID, friendID string) error {
	_, err := p.pool.Exec(ctx, `INSERT INTO friends (user_id, friend_id) VALUES ($1, $2)`, userID, friendID)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrAlreadyExists
		}
		p.logger.Errorf("failed to insert friend: %v", err)
		return err
	}
	return nil
}

func (p *PostgresStorage) RemoveFriend(ctx context.Context, userID, friendID string) error {
	_, err := p.pool.Exec(ctx, `DELETE FROM friends WHERE user_id = $1 AND friend_id = $2`, userID, friendID)
	if err != nil {
		p.logger.Errorf("failed to delete friend: %v", err)
	}
	return err
}

// --- UserRepository ---
func (p *PostgresStorage) CreateUser(ctx context.Context, u *internal.User) error {
	_, err := p.pool.Exec(ctx, `INSERT INTO users (id, email, password_hash, created_at) VALUES ($1, $2, $3, $4)`,
		u.ID, u.Email, u.PasswordHash, u.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrAlreadyExists
		}
		p.logger.Errorf("failed to insert user: %v", err)
		return err
	}
	return nil
}

func (p *PostgresStorage) GetUserByEmail(ctx context.Context, email string) (*internal.User, error) {
	row := p.pool.QueryRow(ctx, `SELECT id, email, password_hash, created_at FROM users WHERE LOWER(email) = LOWER($1)`, email)
	return scanUser(row)
}

func (p *PostgresStorage) GetUserByID(ctx context.Context, id string) (*internal.User, error) {
	row := p.pool.QueryRow(ctx, `SELECT id, email, password_hash, created_at FROM users WHERE id = $1`, id)
	return scanUser(row)
}

func scanProfile(row pgx.Row) (*internal.UserProfile, error) {
	var prof internal.UserProfile
	var level, goal, status string
	err := row.Scan(&prof.UserID, &prof.Email, &prof.Username, &prof.Weight, &prof.Height, &prof.Age,
		&level, &goal, &prof.BMR, &status, &prof.FriendCode, &prof.Streak, &prof.LastUpdated, &prof.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	prof.ActivityLevel = internal.ActivityLevel(level)
	prof.Goal = internal.Goal(goal)
	prof.PetStatus = internal.PetStatus(status)
	return &prof, nil
}

func scanUser(row pgx.Row) (*internal.User, error) {
	var u internal.User
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// --- Compile-time assertions ---
var _ RemoteStore = (*PostgresStorage)(nil)

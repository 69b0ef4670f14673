package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/fanclubkz/consultant/internal/domain"
	"github.com/fanclubkz/consultant/internal/shared"
)

const defaultSearchLimit = 20

// SQLiteStore implements Repository using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite creates a new SQLite-backed repository.
func NewSQLite(dbPath string) (Repository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	// Open database with WAL mode for better concurrency.
	dsn := dbPath + "?_journal=WAL&_sync=NORMAL&_busy_timeout=5000"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.initSchema(); err != nil {
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	return store, nil
}

func (s *SQLiteStore) initSchema() error {
	query := `
	PRAGMA busy_timeout = 5000;
	CREATE TABLE IF NOT EXISTS clubs (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		description TEXT NOT NULL,
		category TEXT NOT NULL,
		city TEXT NOT NULL,
		email TEXT NOT NULL,
		phone TEXT,
		address TEXT,
		activities TEXT,
		target_audience TEXT,
		tags TEXT,
		owner_id TEXT,
		created_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_clubs_category ON clubs(category);
	CREATE INDEX IF NOT EXISTS idx_clubs_city ON clubs(city);

	CREATE TABLE IF NOT EXISTS chat_turns (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id TEXT,
		session_id TEXT,
		agent_name TEXT NOT NULL,
		action TEXT NOT NULL,
		details TEXT,
		created_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_chat_turns_created ON chat_turns(created_at);
	`
	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// Ping verifies database connectivity.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close releases the underlying connection pool.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// CreateClub inserts a club and returns its generated ID.
func (s *SQLiteStore) CreateClub(ctx context.Context, club *domain.ClubRecord) (string, error) {
	id := club.ID
	if id == "" {
		id = uuid.NewString()
	}
	createdAt := club.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	query := `
	INSERT INTO clubs (id, name, description, category, city, email, phone, address,
		activities, target_audience, tags, owner_id, created_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := s.db.ExecContext(ctx, query,
		id, club.Name, club.Description, club.Category, club.City, club.Email,
		club.Phone, club.Address, club.Activities, club.TargetAudience,
		club.Tags, club.OwnerID, createdAt.Unix(),
	)
	if err != nil {
		return "", fmt.Errorf("insert club: %w", err)
	}
	return id, nil
}

const clubColumns = `id, name, description, category, city, email, phone, address,
	activities, target_audience, tags, owner_id, created_at`

func scanClub(scan func(dest ...any) error) (*domain.ClubRecord, error) {
	var club domain.ClubRecord
	var phone, address, activities, audience, tags, owner sql.NullString
	var createdAt int64

	err := scan(
		&club.ID, &club.Name, &club.Description, &club.Category, &club.City,
		&club.Email, &phone, &address, &activities, &audience, &tags, &owner,
		&createdAt,
	)
	if err != nil {
		return nil, err
	}

	club.Phone = phone.String
	club.Address = address.String
	club.Activities = activities.String
	club.TargetAudience = audience.String
	club.Tags = tags.String
	club.OwnerID = owner.String
	club.CreatedAt = time.Unix(createdAt, 0)
	return &club, nil
}

// GetClub retrieves a club by ID. A missing club returns (nil, nil).
func (s *SQLiteStore) GetClub(ctx context.Context, id string) (*domain.ClubRecord, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+clubColumns+` FROM clubs WHERE id = ?`, id)
	club, err := scanClub(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan club row: %w", err)
	}
	return club, nil
}

// SearchClubs returns clubs matching the filter, newest first.
func (s *SQLiteStore) SearchClubs(ctx context.Context, filter SearchFilter) ([]*domain.ClubRecord, error) {
	query := `SELECT ` + clubColumns + ` FROM clubs WHERE 1=1`
	var args []any

	if filter.Query != "" {
		query += ` AND (name LIKE ? OR description LIKE ? OR tags LIKE ?)`
		like := "%" + filter.Query + "%"
		args = append(args, like, like, like)
	}
	if filter.Category != "" {
		query += ` AND category = ? COLLATE NOCASE`
		args = append(args, filter.Category)
	}
	if filter.City != "" {
		query += ` AND city = ? COLLATE NOCASE`
		args = append(args, filter.City)
	}

	limit := filter.Limit
	if limit <= 0 || limit > 100 {
		limit = defaultSearchLimit
	}
	query += ` ORDER BY created_at DESC LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query clubs: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			slog.Warn("failed to close club rows", "error", closeErr)
		}
	}()

	var clubs []*domain.ClubRecord
	for rows.Next() {
		club, err := scanClub(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan club row: %w", err)
		}
		clubs = append(clubs, club)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate club rows: %w", err)
	}
	return clubs, nil
}

// AppendTurn inserts one audit record, retrying with backoff on SQLite
// concurrency errors since audit writes race with club inserts.
func (s *SQLiteStore) AppendTurn(ctx context.Context, turn *domain.ChatTurn) error {
	createdAt := turn.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	query := `
	INSERT INTO chat_turns (user_id, session_id, agent_name, action, details, created_at)
	VALUES (?, ?, ?, ?, ?, ?)`

	maxRetries := 3
	baseDelay := 50 * time.Millisecond
	var err error
	for i := 0; i < maxRetries; i++ {
		_, err = s.db.ExecContext(ctx, query,
			turn.UserID, turn.SessionID, turn.AgentName, turn.Action, turn.Details, createdAt.Unix(),
		)
		if err == nil {
			return nil
		}
		if !shared.IsSQLiteConflictError(err) || i == maxRetries-1 {
			break
		}
		delay := baseDelay * time.Duration(1<<i)
		slog.Debug("audit insert hit SQLITE_BUSY, retrying", "attempt", i+1, "delay", delay)
		time.Sleep(delay)
	}
	return fmt.Errorf("insert chat turn: %w", err)
}

// RecentTurns returns the newest audit records, newest first.
func (s *SQLiteStore) RecentTurns(ctx context.Context, limit int) ([]*domain.ChatTurn, error) {
	if limit <= 0 || limit > 500 {
		limit = 50
	}
	query := `
	SELECT id, user_id, session_id, agent_name, action, details, created_at
	FROM chat_turns ORDER BY id DESC LIMIT ?`

	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("query chat turns: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			slog.Warn("failed to close chat turn rows", "error", closeErr)
		}
	}()

	var turns []*domain.ChatTurn
	for rows.Next() {
		var turn domain.ChatTurn
		var userID, sessionID, details sql.NullString
		var createdAt int64
		if err := rows.Scan(&turn.ID, &userID, &sessionID, &turn.AgentName, &turn.Action, &details, &createdAt); err != nil {
			return nil, fmt.Errorf("scan chat turn row: %w", err)
		}
		turn.UserID = userID.String
		turn.SessionID = sessionID.String
		turn.Details = details.String
		turn.CreatedAt = time.Unix(createdAt, 0)
		turns = append(turns, &turn)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate chat turn rows: %w", err)
	}
	return turns, nil
}

// trimDetails bounds audit detail strings so a pathological message
// cannot bloat the audit table.
func trimDetails(s string, max int) string {
	runes := []rune(strings.TrimSpace(s))
	if len(runes) <= max {
		return string(runes)
	}
	return string(runes[:max]) + "…"
}

// TrimDetails is the exported bound used by callers composing details.
func TrimDetails(s string) string {
	return trimDetails(s, 500)
}

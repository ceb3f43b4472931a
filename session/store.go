package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// ErrNotFound is returned when a session id has no row.
var ErrNotFound = errors.New("session: not found")

// Store is the sqlite-backed session record.
type Store struct {
	db *gorm.DB
}

// Open opens (creating if needed) the session database at path.
func Open(path string) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("session: open %s: %w", path, err)
	}
	if err := db.AutoMigrate(&Session{}, &Interaction{}); err != nil {
		return nil, fmt.Errorf("session: auto-migrate: %w", err)
	}
	return &Store{db: db}, nil
}

// Create inserts a new session with a fresh id and an idle state.
func (s *Store) Create(owner string) (*Session, error) {
	sess := &Session{
		ID:    uuid.NewString(),
		Owner: owner,
		State: State{Status: StatusIdle},
	}
	if err := s.db.Create(sess).Error; err != nil {
		return nil, fmt.Errorf("session: create: %w", err)
	}
	return sess, nil
}

// Get loads a session and its interaction history in append order.
func (s *Store) Get(id string) (*Session, error) {
	var sess Session
	err := s.db.Preload("History", func(db *gorm.DB) *gorm.DB {
		return db.Order("id ASC")
	}).First(&sess, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("session: get %s: %w", id, err)
	}
	return &sess, nil
}

// UpdateState overwrites the session's state columns. Interaction rows
// are never touched here; they only grow through AppendInteraction.
func (s *Store) UpdateState(id string, st State) error {
	res := s.db.Model(&Session{}).Where("id = ?", id).
		Select("audio_path", "transcript", "is_transcribed", "intent",
			"sentiment", "root_cause", "analysis_report", "status").
		Updates(&Session{State: st})
	if res.Error != nil {
		return fmt.Errorf("session: update %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// AppendInteraction appends one audit-log row. Rows are insert-only.
func (s *Store) AppendInteraction(id, action, payload string) error {
	row := Interaction{
		SessionID: id,
		Action:    action,
		Payload:   payload,
		Timestamp: time.Now(),
	}
	if err := s.db.Create(&row).Error; err != nil {
		return fmt.Errorf("session: append interaction %s: %w", id, err)
	}
	return nil
}

// List returns all sessions, newest first, without history preloaded.
func (s *Store) List() ([]Session, error) {
	var out []Session
	if err := s.db.Order("created_at DESC").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("session: list: %w", err)
	}
	return out, nil
}

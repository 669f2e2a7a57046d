package transcript

import (
	"context"
	"errors"

	"github.com/praxisnote/transcription/internal/shared"
	"gorm.io/gorm"
)

type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Migrate() error {
	return s.db.AutoMigrate(&Transcription{}, &Segment{})
}

// Replace writes t as the current transcription for its session, deleting any
// prior transcription and its segments in the same transaction. A concurrent
// reader never sees two current rows or orphaned segments.
func (s *Store) Replace(ctx context.Context, t *Transcription) error {
	if t.ID == "" {
		t.ID = shared.NewID("tr_")
	}
	for i := range t.Segments {
		t.Segments[i].TranscriptionID = t.ID
		t.Segments[i].Position = i
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var oldIDs []string
		if err := tx.Model(&Transcription{}).
			Where("session_id = ?", t.SessionID).
			Pluck("id", &oldIDs).Error; err != nil {
			return err
		}

		if len(oldIDs) > 0 {
			if err := tx.Where("transcription_id IN ?", oldIDs).Delete(&Segment{}).Error; err != nil {
				return err
			}
			if err := tx.Where("id IN ?", oldIDs).Delete(&Transcription{}).Error; err != nil {
				return err
			}
		}

		return tx.Create(t).Error
	})
}

// ListBySession returns the session's transcriptions newest-first, segments
// in recognizer order. Consumers typically only use index 0.
func (s *Store) ListBySession(ctx context.Context, sessionID string) ([]*Transcription, error) {
	var list []*Transcription
	err := s.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("created_at DESC").
		Preload("Segments", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Find(&list).Error
	return list, err
}

// Current returns the session's current transcription.
func (s *Store) Current(ctx context.Context, sessionID string) (*Transcription, error) {
	var t Transcription
	err := s.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("created_at DESC").
		Preload("Segments", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		First(&t).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, shared.ErrNotFound
	}
	return &t, err
}

// Package history persists completed match records. The live match is
// never stored, only the terminal state a session reached; the record
// is what the results table shows after "game over".
package history

import (
	"context"
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/xatgame/xat-client/internal/match"
)

type MatchRecord struct {
	gorm.Model
	PlayedAt      time.Time
	SelfID        string
	OpponentID    string
	OpponentName  string
	Outcome       string
	SelfScore     int
	OpponentScore int
	Rounds        []RoundRow `gorm:"constraint:OnDelete:CASCADE"`
}

type RoundRow struct {
	gorm.Model
	MatchRecordID uint
	Round         int
	Attribute     string
	SelfCard      string
	OpponentCard  string
	Outcome       string
}

type Store struct {
	db *gorm.DB
}

// Open connects to the database and migrates the record tables.
func Open(dsn string) (*Store, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("open history db: %w", err)
	}
	if err := db.AutoMigrate(&MatchRecord{}, &RoundRow{}); err != nil {
		return nil, fmt.Errorf("migrate history db: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Save(ctx context.Context, rec MatchRecord) error {
	return s.db.WithContext(ctx).Create(&rec).Error
}

// Recent returns the newest records with their rounds, latest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]MatchRecord, error) {
	var out []MatchRecord
	err := s.db.WithContext(ctx).
		Preload("Rounds").
		Order("played_at desc").
		Limit(limit).
		Find(&out).Error
	return out, err
}

// RecordFromState flattens a terminal match state into a record. Pure,
// so record shaping is testable without a database.
func RecordFromState(st match.State, selfID string, playedAt time.Time) MatchRecord {
	rec := MatchRecord{
		PlayedAt:      playedAt,
		SelfID:        selfID,
		OpponentID:    st.OpponentID,
		OpponentName:  st.OpponentName,
		Outcome:       string(matchOutcome(st, selfID)),
		SelfScore:     st.Scores[selfID],
		OpponentScore: st.Scores[st.OpponentID],
	}
	for _, r := range st.History {
		rec.Rounds = append(rec.Rounds, RoundRow{
			Round:        r.Round,
			Attribute:    r.Attribute,
			SelfCard:     r.SelfCard.Name,
			OpponentCard: r.OpponentCard.Name,
			Outcome:      string(r.Outcome),
		})
	}
	return rec
}

func matchOutcome(st match.State, selfID string) match.Outcome {
	switch st.Winner {
	case selfID:
		return match.OutcomeWin
	case match.TieWinner, "":
		return match.OutcomeTie
	default:
		return match.OutcomeLoss
	}
}

package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cory-johannsen/forge/internal/game/combat"
)

// EncounterRecord is the stored summary of one finished encounter.
type EncounterRecord struct {
	ID        uuid.UUID
	Outcome   combat.EncounterOutcome
	StartedAt time.Time
	EndedAt   time.Time
	// CharacterIDs maps combatant IDs of party members to character rows.
	// Members without an entry are not linked.
	CharacterIDs map[string]int64
}

// EncounterSummary is a row of the encounter history.
type EncounterSummary struct {
	ID         uuid.UUID
	Result     combat.Result
	Rounds     int
	Experience int
	Defeated   []string
	EndedAt    time.Time
}

// EncounterRepository stores finished encounters.
type EncounterRepository struct {
	db *pgxpool.Pool
}

// NewEncounterRepository creates an EncounterRepository backed by the given pool.
func NewEncounterRepository(db *pgxpool.Pool) *EncounterRepository {
	return &EncounterRepository{db: db}
}

// Record stores rec and its member rows in one transaction.
//
// Precondition: rec.ID must be unique.
func (r *EncounterRepository) Record(ctx context.Context, rec EncounterRecord) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	defeated := rec.Outcome.Defeated
	if defeated == nil {
		defeated = []string{}
	}
	_, err = tx.Exec(ctx, `
		INSERT INTO encounters (id, result, rounds, experience, defeated, started_at, ended_at)
		VALUES ($1::uuid, $2, $3, $4, $5, $6, $7)`,
		rec.ID.String(), string(rec.Outcome.Result), rec.Outcome.Rounds, rec.Outcome.Experience,
		defeated, rec.StartedAt, rec.EndedAt,
	)
	if err != nil {
		return fmt.Errorf("inserting encounter: %w", err)
	}

	batch := &pgx.Batch{}
	for _, m := range rec.Outcome.Members {
		charID, ok := rec.CharacterIDs[m.ID]
		if !ok {
			continue
		}
		batch.Queue(`
			INSERT INTO encounter_members (encounter_id, character_id, survived, experience_gained, levels_gained)
			VALUES ($1::uuid, $2, $3, $4, $5)`,
			rec.ID.String(), charID, m.Survived, m.ExperienceGained, m.LevelsGained)
	}
	if batch.Len() > 0 {
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("inserting encounter members: %w", err)
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing encounter: %w", err)
	}
	return nil
}

// Recent returns up to limit encounters, newest first.
func (r *EncounterRepository) Recent(ctx context.Context, limit int) ([]EncounterSummary, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id::text, result, rounds, experience, defeated, ended_at
		FROM encounters ORDER BY ended_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("listing encounters: %w", err)
	}
	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (EncounterSummary, error) {
		var (
			s      EncounterSummary
			id     string
			result string
		)
		if err := row.Scan(&id, &result, &s.Rounds, &s.Experience, &s.Defeated, &s.EndedAt); err != nil {
			return s, err
		}
		parsed, err := uuid.Parse(id)
		if err != nil {
			return s, err
		}
		s.ID, s.Result = parsed, combat.Result(result)
		return s, nil
	})
	if err != nil {
		return nil, fmt.Errorf("scanning encounters: %w", err)
	}
	return out, nil
}

// CountForCharacter returns how many recorded encounters the character took part in.
func (r *EncounterRepository) CountForCharacter(ctx context.Context, characterID int64) (int, error) {
	var n int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM encounter_members WHERE character_id = $1`, characterID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("counting encounters: %w", err)
	}
	return n, nil
}

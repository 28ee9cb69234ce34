package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cory-johannsen/forge/internal/game/character"
)

// ErrCharacterNotFound is returned when a character lookup yields no results.
var ErrCharacterNotFound = errors.New("character not found")

// ErrCharacterNameTaken is returned when creating a character with a name already in use.
var ErrCharacterNameTaken = errors.New("character name already taken")

const characterColumns = `id, name, race, level, experience,
	strength, stamina, intellect, insight, dexterity, awareness,
	max_hp, current_hp, armor, weapon_name, weapon_dice, potions, created_at, updated_at`

// CharacterRepository provides character persistence operations.
type CharacterRepository struct {
	db *pgxpool.Pool
}

// NewCharacterRepository creates a CharacterRepository backed by the given pool.
//
// Precondition: db must be a valid, open connection pool.
func NewCharacterRepository(db *pgxpool.Pool) *CharacterRepository {
	return &CharacterRepository{db: db}
}

// Create inserts a new character with its skills and returns it with ID and
// timestamps set.
//
// Precondition: c.Name must be non-empty.
// Postcondition: Returns the created character, or ErrCharacterNameTaken on duplicate.
func (r *CharacterRepository) Create(ctx context.Context, c *character.Character) (*character.Character, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	ch := c.Characteristics
	out, err := scanCharacter(tx.QueryRow(ctx, `
		INSERT INTO characters
			(name, race, level, experience,
			 strength, stamina, intellect, insight, dexterity, awareness,
			 max_hp, current_hp, armor, weapon_name, weapon_dice, potions)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16)
		RETURNING `+characterColumns,
		c.Name, c.Race, max(1, c.Level), c.Experience,
		ch.Strength, ch.Stamina, ch.Intellect, ch.Insight, ch.Dexterity, ch.Awareness,
		c.MaxHP, c.CurrentHP, c.Armor, c.WeaponName, c.WeaponDice, max(0, c.Potions),
	))
	if err != nil {
		if isDuplicateKeyError(err) {
			return nil, ErrCharacterNameTaken
		}
		return nil, fmt.Errorf("inserting character: %w", err)
	}
	out.Skills = append(out.Skills, c.Skills...)
	if err := upsertSkills(ctx, tx, out.ID, out.Skills); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("committing character: %w", err)
	}
	return out, nil
}

// GetByID retrieves a character and its skills by primary key.
//
// Postcondition: Returns the Character or ErrCharacterNotFound.
func (r *CharacterRepository) GetByID(ctx context.Context, id int64) (*character.Character, error) {
	return r.getOne(ctx, `SELECT `+characterColumns+` FROM characters WHERE id = $1`, id)
}

// GetByName retrieves a character and its skills by its unique name.
//
// Postcondition: Returns the Character or ErrCharacterNotFound.
func (r *CharacterRepository) GetByName(ctx context.Context, name string) (*character.Character, error) {
	return r.getOne(ctx, `SELECT `+characterColumns+` FROM characters WHERE name = $1`, name)
}

func (r *CharacterRepository) getOne(ctx context.Context, query string, arg any) (*character.Character, error) {
	c, err := scanCharacter(r.db.QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCharacterNotFound
		}
		return nil, fmt.Errorf("querying character: %w", err)
	}
	if c.Skills, err = r.skills(ctx, c.ID); err != nil {
		return nil, err
	}
	return c, nil
}

// List returns every character ordered by name, skills included.
func (r *CharacterRepository) List(ctx context.Context) ([]*character.Character, error) {
	rows, err := r.db.Query(ctx, `SELECT `+characterColumns+` FROM characters ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("listing characters: %w", err)
	}
	defer rows.Close()

	chars := make([]*character.Character, 0)
	for rows.Next() {
		c, err := scanCharacter(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning character row: %w", err)
		}
		chars = append(chars, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing characters: %w", err)
	}
	for _, c := range chars {
		if c.Skills, err = r.skills(ctx, c.ID); err != nil {
			return nil, err
		}
	}
	return chars, nil
}

// SaveProgress writes the post-encounter state of c: level, experience, hit
// points, potions and every skill's level and pips. It runs in one transaction so a
// character is never left half-updated.
//
// Precondition: c.ID must reference an existing character.
// Postcondition: Returns nil on success, ErrCharacterNotFound if no row matched.
func (r *CharacterRepository) SaveProgress(ctx context.Context, c *character.Character) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	err = tx.QueryRow(ctx, `
		UPDATE characters
		SET level = $2, experience = $3, max_hp = $4, current_hp = $5, potions = $6, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`,
		c.ID, c.Level, c.Experience, c.MaxHP, c.CurrentHP, max(0, c.Potions),
	).Scan(&c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrCharacterNotFound
		}
		return fmt.Errorf("saving character progress: %w", err)
	}
	if err := upsertSkills(ctx, tx, c.ID, c.Skills); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing character progress: %w", err)
	}
	return nil
}

func (r *CharacterRepository) skills(ctx context.Context, id int64) ([]character.SkillRank, error) {
	rows, err := r.db.Query(ctx, `
		SELECT name, level, pips FROM character_skills
		WHERE character_id = $1 ORDER BY position ASC`, id)
	if err != nil {
		return nil, fmt.Errorf("querying skills: %w", err)
	}
	skills, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (character.SkillRank, error) {
		var s character.SkillRank
		err := row.Scan(&s.Name, &s.Level, &s.Pips)
		return s, err
	})
	if err != nil {
		return nil, fmt.Errorf("scanning skills: %w", err)
	}
	return skills, nil
}

func upsertSkills(ctx context.Context, tx pgx.Tx, id int64, skills []character.SkillRank) error {
	if len(skills) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for i, s := range skills {
		batch.Queue(`
			INSERT INTO character_skills (character_id, name, position, level, pips)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (character_id, name)
			DO UPDATE SET position = EXCLUDED.position, level = EXCLUDED.level, pips = EXCLUDED.pips`,
			id, s.Name, i, max(1, s.Level), max(0, s.Pips))
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("saving skills: %w", err)
	}
	return nil
}

func scanCharacter(row pgx.Row) (*character.Character, error) {
	var c character.Character
	ch := &c.Characteristics
	err := row.Scan(
		&c.ID, &c.Name, &c.Race, &c.Level, &c.Experience,
		&ch.Strength, &ch.Stamina, &ch.Intellect, &ch.Insight, &ch.Dexterity, &ch.Awareness,
		&c.MaxHP, &c.CurrentHP, &c.Armor, &c.WeaponName, &c.WeaponDice, &c.Potions,
		&c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

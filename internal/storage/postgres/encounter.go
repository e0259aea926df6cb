package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cory-johannsen/fulcrum/internal/game/combat"
)

// ErrEncounterNotFound is returned when an archived encounter lookup yields no results.
var ErrEncounterNotFound = errors.New("encounter not found")

// ArchivedEncounter is a finished encounter as read back from the archive.
type ArchivedEncounter struct {
	ID           string
	LocationID   string
	Status       string
	Rounds       int
	Log          []string
	Participants []ArchivedParticipant
	ArchivedAt   time.Time
}

// ArchivedParticipant is one combatant's final state in an archived encounter.
type ArchivedParticipant struct {
	ParticipantID string
	Name          string
	Faction       string
	CurrentHP     int
	MaxHP         int
	Initiative    int
	Fled          bool
	Statuses      []string
}

// EncounterArchive persists finished encounters for campaign history.
type EncounterArchive struct {
	db *pgxpool.Pool
}

// NewEncounterArchive creates an EncounterArchive backed by the given pool.
//
// Precondition: db must be a valid, open connection pool.
func NewEncounterArchive(db *pgxpool.Pool) *EncounterArchive {
	return &EncounterArchive{db: db}
}

// SaveEncounter stores a finished encounter and all of its participants in a
// single transaction.
//
// Precondition: snapshot must describe a finished encounter with a unique ID.
// Postcondition: The encounter row and one row per participant exist, or no
// rows were written and a non-nil error is returned.
func (a *EncounterArchive) SaveEncounter(ctx context.Context, snapshot combat.EncounterSnapshot) error {
	return inTx(ctx, a.db, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			INSERT INTO encounters (id, location_id, status, rounds, log)
			VALUES ($1, $2, $3, $4, $5)`,
			snapshot.ID, snapshot.LocationID, string(snapshot.Status),
			snapshot.RoundNumber, snapshot.Log,
		)
		if err != nil {
			return fmt.Errorf("inserting encounter %s: %w", snapshot.ID, err)
		}

		for _, p := range snapshot.Participants {
			_, err = tx.Exec(ctx, `
				INSERT INTO encounter_participants
					(encounter_id, participant_id, name, faction,
					 current_hp, max_hp, initiative, fled, statuses)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
				snapshot.ID, p.ID, p.Name, string(p.Faction),
				p.CurrentHP, p.MaxHP, p.Initiative, p.Fled, p.Statuses,
			)
			if err != nil {
				return fmt.Errorf("inserting participant %s for encounter %s: %w", p.ID, snapshot.ID, err)
			}
		}
		return nil
	})
}

// GetEncounter retrieves an archived encounter with its participants.
//
// Precondition: id must be non-empty.
// Postcondition: Returns the encounter or ErrEncounterNotFound.
func (a *EncounterArchive) GetEncounter(ctx context.Context, id string) (*ArchivedEncounter, error) {
	var enc ArchivedEncounter
	err := a.db.QueryRow(ctx, `
		SELECT id, location_id, status, rounds, log, archived_at
		FROM encounters WHERE id = $1`,
		id,
	).Scan(&enc.ID, &enc.LocationID, &enc.Status, &enc.Rounds, &enc.Log, &enc.ArchivedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrEncounterNotFound
		}
		return nil, fmt.Errorf("selecting encounter %s: %w", id, err)
	}

	rows, err := a.db.Query(ctx, `
		SELECT participant_id, name, faction, current_hp, max_hp, initiative, fled, statuses
		FROM encounter_participants WHERE encounter_id = $1 ORDER BY initiative DESC, participant_id ASC`,
		id,
	)
	if err != nil {
		return nil, fmt.Errorf("selecting participants for encounter %s: %w", id, err)
	}
	defer rows.Close()

	for rows.Next() {
		var p ArchivedParticipant
		if err := rows.Scan(
			&p.ParticipantID, &p.Name, &p.Faction,
			&p.CurrentHP, &p.MaxHP, &p.Initiative, &p.Fled, &p.Statuses,
		); err != nil {
			return nil, fmt.Errorf("scanning participant row: %w", err)
		}
		enc.Participants = append(enc.Participants, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &enc, nil
}

// ListRecent returns the most recently archived encounters, newest first,
// without their participant rows.
//
// Precondition: limit must be > 0.
// Postcondition: Returns a slice (may be empty) or a non-nil error.
func (a *EncounterArchive) ListRecent(ctx context.Context, limit int) ([]*ArchivedEncounter, error) {
	rows, err := a.db.Query(ctx, `
		SELECT id, location_id, status, rounds, log, archived_at
		FROM encounters ORDER BY archived_at DESC LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("listing encounters: %w", err)
	}
	defer rows.Close()

	encs := make([]*ArchivedEncounter, 0)
	for rows.Next() {
		var enc ArchivedEncounter
		if err := rows.Scan(&enc.ID, &enc.LocationID, &enc.Status, &enc.Rounds, &enc.Log, &enc.ArchivedAt); err != nil {
			return nil, fmt.Errorf("scanning encounter row: %w", err)
		}
		encs = append(encs, &enc)
	}
	return encs, rows.Err()
}

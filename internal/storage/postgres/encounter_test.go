package postgres_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/fulcrum/internal/game/combat"
	"github.com/cory-johannsen/fulcrum/internal/storage/postgres"
	"github.com/cory-johannsen/fulcrum/internal/testutil"
)

func uniqueID(prefix string) string {
	return fmt.Sprintf("%s-%d", prefix, time.Now().UnixNano())
}

func makeSnapshot(id string) combat.EncounterSnapshot {
	return combat.EncounterSnapshot{
		ID:          id,
		LocationID:  "crossroads",
		Status:      combat.StatusPlayersWin,
		RoundNumber: 4,
		Log:         []string{"Round 1 begins.", "Ava strikes the bandit.", "The fight is won!"},
		Participants: []combat.ParticipantSnapshot{
			{
				ID: "ava", Name: "Ava", Faction: combat.FactionPlayer,
				CurrentHP: 7, MaxHP: 15, Initiative: 14,
				Statuses: []string{"bleeding"},
			},
			{
				ID: "bandit-1", Name: "Bandit", Faction: combat.FactionNPC,
				CurrentHP: 0, MaxHP: 13, Initiative: 12,
				Statuses: []string{},
			},
		},
	}
}

func TestEncounterArchive_SaveAndGet(t *testing.T) {
	archive := postgres.NewEncounterArchive(testutil.NewPool(t))
	ctx := context.Background()

	id := uniqueID("enc")
	require.NoError(t, archive.SaveEncounter(ctx, makeSnapshot(id)))

	got, err := archive.GetEncounter(ctx, id)
	require.NoError(t, err)

	assert.Equal(t, id, got.ID)
	assert.Equal(t, "crossroads", got.LocationID)
	assert.Equal(t, string(combat.StatusPlayersWin), got.Status)
	assert.Equal(t, 4, got.Rounds)
	assert.Len(t, got.Log, 3)
	assert.Equal(t, "The fight is won!", got.Log[2])
	assert.False(t, got.ArchivedAt.IsZero())

	require.Len(t, got.Participants, 2)
	assert.Equal(t, "ava", got.Participants[0].ParticipantID)
	assert.Equal(t, 14, got.Participants[0].Initiative)
	assert.Equal(t, []string{"bleeding"}, got.Participants[0].Statuses)
	assert.Equal(t, "bandit-1", got.Participants[1].ParticipantID)
	assert.Equal(t, 0, got.Participants[1].CurrentHP)
}

func TestEncounterArchive_GetNotFound(t *testing.T) {
	archive := postgres.NewEncounterArchive(testutil.NewPool(t))

	_, err := archive.GetEncounter(context.Background(), "no-such-encounter")
	assert.ErrorIs(t, err, postgres.ErrEncounterNotFound)
}

func TestEncounterArchive_DuplicateIDFails(t *testing.T) {
	archive := postgres.NewEncounterArchive(testutil.NewPool(t))
	ctx := context.Background()

	id := uniqueID("enc")
	require.NoError(t, archive.SaveEncounter(ctx, makeSnapshot(id)))
	assert.Error(t, archive.SaveEncounter(ctx, makeSnapshot(id)))

	// The failed save must not leave orphan participant rows.
	got, err := archive.GetEncounter(ctx, id)
	require.NoError(t, err)
	assert.Len(t, got.Participants, 2)
}

func TestEncounterArchive_ListRecent(t *testing.T) {
	archive := postgres.NewEncounterArchive(testutil.NewPool(t))
	ctx := context.Background()

	var ids []string
	for i := 0; i < 3; i++ {
		id := uniqueID(fmt.Sprintf("enc%d", i))
		require.NoError(t, archive.SaveEncounter(ctx, makeSnapshot(id)))
		ids = append(ids, id)
		time.Sleep(10 * time.Millisecond)
	}

	encs, err := archive.ListRecent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, encs, 2)
	assert.Equal(t, ids[2], encs[0].ID)
	assert.Equal(t, ids[1], encs[1].ID)
}

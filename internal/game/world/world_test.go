package world_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/fulcrum/internal/game/npc"
	"github.com/cory-johannsen/fulcrum/internal/game/rules"
	"github.com/cory-johannsen/fulcrum/internal/game/world"
)

func TestInMemoryCharacters(t *testing.T) {
	w := world.NewInMemory(nil)
	w.AddCharacter(&world.Character{ID: "hero", Name: "Hero", Level: 1, CurrentHP: 12, MaxHP: 12})

	ctx := context.Background()

	c, err := w.Character(ctx, "hero")
	require.NoError(t, err)
	assert.Equal(t, "Hero", c.Name)

	_, err = w.Character(ctx, "ghost")
	assert.ErrorIs(t, err, world.ErrCharacterNotFound)

	require.NoError(t, w.UpdateVitals(ctx, "hero", 5, 10))
	c, _ = w.Character(ctx, "hero")
	assert.Equal(t, 5, c.CurrentHP)

	require.NoError(t, w.GrantXP(ctx, "hero", 50))
	c, _ = w.Character(ctx, "hero")
	assert.Equal(t, 50, c.XP)

	require.NoError(t, w.GrantItem(ctx, "hero", "healing_draught", 2))
	c, _ = w.Character(ctx, "hero")
	assert.Equal(t, 2, c.Equipment.Count("healing_draught"))
}

func TestInMemorySpawnNPC(t *testing.T) {
	templates := map[string]*npc.Template{
		"wolf": {ID: "wolf", Name: "Wolf", Level: 1, Stats: map[rules.Stat]int{rules.StatEndurance: 12}},
	}
	w := world.NewInMemory(templates)

	inst, err := w.SpawnNPC(context.Background(), "wolf")
	require.NoError(t, err)
	assert.Equal(t, "wolf", inst.TemplateID)
	assert.Positive(t, inst.CurrentHP)

	_, err = w.SpawnNPC(context.Background(), "dragon")
	assert.ErrorIs(t, err, world.ErrTemplateNotFound)
}

func TestLocationPassable(t *testing.T) {
	loc := &world.Location{
		ID:     "clearing",
		Width:  10,
		Height: 10,
		Blocked: map[[2]int]bool{
			{3, 3}: true,
		},
	}

	assert.True(t, loc.Passable(0, 0))
	assert.True(t, loc.Passable(9, 9))
	assert.False(t, loc.Passable(3, 3))
	assert.False(t, loc.Passable(-1, 0))
	assert.False(t, loc.Passable(10, 0))
}

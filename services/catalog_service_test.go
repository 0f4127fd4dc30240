package services_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arenastack/tournament-registration/models"
	"github.com/arenastack/tournament-registration/services"
)

func TestCatalog_ListOnlyActive(t *testing.T) {
	store := newMemStore()
	store.addTournament(models.Tournament{ID: 1, Game: models.GameBGMI, Mode: models.ModeSolo, MaxCapacity: 100, Active: true})
	store.addTournament(models.Tournament{ID: 2, Game: models.GameBGMI, Mode: models.ModeDuo, MaxCapacity: 50, Active: false})
	svc := services.NewCatalogService(store)

	active, err := svc.ListTournaments(context.Background(), true)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, 1, active[0].ID)

	all, err := svc.ListTournaments(context.Background(), false)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestCatalog_SetTournamentActive(t *testing.T) {
	store := newMemStore()
	store.addTournament(models.Tournament{ID: 1, Game: models.GameBGMI, Mode: models.ModeSolo, MaxCapacity: 100, Active: true})
	svc := services.NewCatalogService(store)

	require.NoError(t, svc.SetTournamentActive(context.Background(), 1, false))

	tournament, err := svc.GetTournament(context.Background(), 1)
	require.NoError(t, err)
	assert.False(t, tournament.Active)

	err = svc.SetTournamentActive(context.Background(), 42, false)
	assert.ErrorIs(t, err, services.ErrTournamentNotFound)
}

func TestCatalog_GetTournamentNotFound(t *testing.T) {
	svc := services.NewCatalogService(newMemStore())

	_, err := svc.GetTournament(context.Background(), 7)
	assert.ErrorIs(t, err, services.ErrTournamentNotFound)
}

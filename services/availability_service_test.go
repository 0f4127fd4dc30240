package services_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arenastack/tournament-registration/models"
	"github.com/arenastack/tournament-registration/services"
)

func seedRegistration(t *testing.T, store *memStore, tournamentID int, status models.RegistrationStatus) int {
	t.Helper()
	reg := &models.Registration{
		TournamentID:   tournamentID,
		Status:         status,
		LeaderName:     "Player",
		LeaderGameID:   "player#1",
		LeaderWhatsApp: "+910000000000",
		TransactionRef: "UPI-seed",
	}
	require.NoError(t, store.registrationRepo().Create(context.Background(), nil, reg))
	return reg.ID
}

func TestGetSlotAvailability(t *testing.T) {
	store := newMemStore()
	store.addTournament(models.Tournament{
		ID: 1, Game: models.GameBGMI, Mode: models.ModeSolo, MaxCapacity: 10, Active: true,
	})
	svc := services.NewAvailabilityService(store, store.registrationRepo())

	seedRegistration(t, store, 1, models.RegistrationPending)
	seedRegistration(t, store, 1, models.RegistrationApproved)
	// Отклонённая заявка слот не удерживает.
	seedRegistration(t, store, 1, models.RegistrationRejected)

	avail, err := svc.GetSlotAvailability(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 10, avail.Capacity)
	assert.Equal(t, 2, avail.Filled)
	assert.Equal(t, 8, avail.Remaining)

	// Повторный вызов без изменений реестра даёт тот же снимок.
	again, err := svc.GetSlotAvailability(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, avail, again)
}

func TestGetSlotAvailability_ClampsAtZero(t *testing.T) {
	store := newMemStore()
	store.addTournament(models.Tournament{
		ID: 1, Game: models.GameBGMI, Mode: models.ModeSolo, MaxCapacity: 2, Active: true,
	})
	svc := services.NewAvailabilityService(store, store.registrationRepo())

	// Заполнение сверх вместимости (например, после ручного уменьшения
	// capacity в каталоге) не должно давать отрицательный остаток.
	for i := 0; i < 3; i++ {
		seedRegistration(t, store, 1, models.RegistrationApproved)
	}

	avail, err := svc.GetSlotAvailability(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 3, avail.Filled)
	assert.Equal(t, 0, avail.Remaining)
}

func TestGetSlotAvailability_UnknownTournament(t *testing.T) {
	store := newMemStore()
	svc := services.NewAvailabilityService(store, store.registrationRepo())

	_, err := svc.GetSlotAvailability(context.Background(), 99)
	assert.ErrorIs(t, err, services.ErrTournamentNotFound)
}

func TestGetTournamentStats(t *testing.T) {
	store := newMemStore()
	store.addTournament(models.Tournament{
		ID: 2, Game: models.GameFreeFire, Mode: models.ModeDuo, MaxCapacity: 24, Active: true,
	})
	svc := services.NewAvailabilityService(store, store.registrationRepo())

	seedRegistration(t, store, 2, models.RegistrationPending)
	seedRegistration(t, store, 2, models.RegistrationPending)
	seedRegistration(t, store, 2, models.RegistrationApproved)
	seedRegistration(t, store, 2, models.RegistrationRejected)

	stats, err := svc.GetTournamentStats(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.PendingCount)
	assert.Equal(t, 1, stats.ApprovedCount)
	assert.Equal(t, 1, stats.RejectedCount)
	// Отклонённые не входят в занятость.
	assert.Equal(t, 21, stats.RemainingSlots)
	assert.Equal(t, models.GameFreeFire, stats.Game)
	assert.Equal(t, models.ModeDuo, stats.Mode)
}

func TestGetDashboard(t *testing.T) {
	store := newMemStore()
	store.addTournament(models.Tournament{
		ID: 1, Game: models.GameFreeFire, Mode: models.ModeSolo, MaxCapacity: 48, Active: true,
	})
	store.addTournament(models.Tournament{
		ID: 2, Game: models.GameBGMI, Mode: models.ModeSquad, MaxCapacity: 25, Active: true,
	})
	store.addTournament(models.Tournament{
		ID: 3, Game: models.GameBGMI, Mode: models.ModeDuo, MaxCapacity: 50, Active: false,
	})
	svc := services.NewAvailabilityService(store, store.registrationRepo())

	seedRegistration(t, store, 1, models.RegistrationPending)
	seedRegistration(t, store, 2, models.RegistrationApproved)
	seedRegistration(t, store, 2, models.RegistrationRejected)

	dashboard, err := svc.GetDashboard(context.Background())
	require.NoError(t, err)

	// Дашборд включает и неактивные турниры, отсортированные по игре и формату.
	require.Len(t, dashboard.Tournaments, 3)
	assert.Equal(t, models.GameBGMI, dashboard.Tournaments[0].Game)
	assert.Equal(t, models.ModeDuo, dashboard.Tournaments[0].Mode)
	assert.Equal(t, models.ModeSquad, dashboard.Tournaments[1].Mode)
	assert.Equal(t, models.GameFreeFire, dashboard.Tournaments[2].Game)

	assert.Equal(t, 1, dashboard.TotalPending)
	assert.Equal(t, 1, dashboard.TotalApproved)
	assert.Equal(t, 1, dashboard.TotalRejected)
}

package service_test

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/linemk/remeras-order/internal/domain/models"
	security "github.com/linemk/remeras-order/internal/jwt-new"
	"github.com/linemk/remeras-order/internal/service"
	"github.com/linemk/remeras-order/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "testsecret"

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func startSession(t *testing.T, svc service.SessionService) string {
	t.Helper()
	res, err := svc.Start(context.Background())
	require.NoError(t, err)
	return res.Form.SessionID
}

func TestSessionService_Start(t *testing.T) {
	svc := service.NewSessionService(testLogger(), storage.NewMemorySessionRepository(), time.Hour, testSecret)

	res, err := svc.Start(context.Background())
	require.NoError(t, err)

	id, err := security.ParseToken(res.Token, testSecret)
	require.NoError(t, err)
	assert.Equal(t, res.Form.SessionID, id)

	assert.Equal(t, models.ChannelInstagram, res.Form.Customer.Channel)
	assert.False(t, res.Form.CanSubmit)
	assert.Empty(t, res.Form.Details)
	assert.NotNil(t, res.Form.Details)
	assert.WithinDuration(t, time.Now().Add(time.Hour), res.Form.ExpiresAt, time.Minute)
}

func TestSessionService_UpdateIntake_ExpandsUnits(t *testing.T) {
	ctx := context.Background()
	svc := service.NewSessionService(testLogger(), storage.NewMemorySessionRepository(), time.Hour, testSecret)
	id := startSession(t, svc)

	form, err := svc.UpdateIntake(ctx, id, service.IntakeInput{
		Customer:   models.CustomerInfo{Name: "Lucía", Channel: models.ChannelWhatsApp},
		Quantities: map[models.SizeLabel]int{models.SizeM: 2, models.SizeS: 1, models.SizeXL: 0},
	})
	require.NoError(t, err)

	assert.Equal(t, 3, form.Units)
	assert.True(t, form.CanSubmit)
	assert.Equal(t, models.SizeQuantity{models.SizeM: 2, models.SizeS: 1}, form.Quantities)
	assert.Equal(t, "S-1", form.Details[0].Key)

	// состояние сохранено
	got, err := svc.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Lucía", got.Customer.Name)
	assert.Len(t, got.Details, 3)
}

func TestSessionService_UpdateIntake_Rejects(t *testing.T) {
	ctx := context.Background()
	svc := service.NewSessionService(testLogger(), storage.NewMemorySessionRepository(), time.Hour, testSecret)
	id := startSession(t, svc)

	_, err := svc.UpdateIntake(ctx, id, service.IntakeInput{Quantities: map[models.SizeLabel]int{"XXXL": 1}})
	assert.ErrorIs(t, err, service.ErrInvalidSize)

	_, err = svc.UpdateIntake(ctx, id, service.IntakeInput{Quantities: map[models.SizeLabel]int{models.SizeM: 21}})
	assert.ErrorIs(t, err, service.ErrInvalidQuantity)

	_, err = svc.UpdateIntake(ctx, id, service.IntakeInput{Quantities: map[models.SizeLabel]int{models.SizeM: -1}})
	assert.ErrorIs(t, err, service.ErrInvalidQuantity)

	_, err = svc.UpdateIntake(ctx, id, service.IntakeInput{Customer: models.CustomerInfo{Channel: "Telegram"}})
	assert.ErrorIs(t, err, service.ErrInvalidChannel)

	_, err = svc.UpdateIntake(ctx, "missing", service.IntakeInput{})
	assert.ErrorIs(t, err, storage.ErrSessionNotFound)
}

func TestSessionService_QuantityChangeDiscardsStaleRows(t *testing.T) {
	ctx := context.Background()
	svc := service.NewSessionService(testLogger(), storage.NewMemorySessionRepository(), time.Hour, testSecret)
	id := startSession(t, svc)

	_, err := svc.UpdateIntake(ctx, id, service.IntakeInput{Quantities: map[models.SizeLabel]int{models.SizeM: 2}})
	require.NoError(t, err)
	_, err = svc.UpdateDetails(ctx, id, []service.DetailInput{
		{Key: "M-1", Recipient: "Ana", Locations: []models.PrintLocation{models.LocationChest}},
		{Key: "M-2", Recipient: "Bruno", Locations: []models.PrintLocation{models.LocationBack}},
	})
	require.NoError(t, err)

	_, err = svc.UpdateIntake(ctx, id, service.IntakeInput{Quantities: map[models.SizeLabel]int{models.SizeM: 1}})
	require.NoError(t, err)
	form, err := svc.UpdateIntake(ctx, id, service.IntakeInput{Quantities: map[models.SizeLabel]int{models.SizeM: 2}})
	require.NoError(t, err)

	require.Len(t, form.Details, 2)
	assert.Equal(t, "Ana", form.Details[0].Recipient)
	assert.Empty(t, form.Details[1].Recipient, "row M-2 was discarded and must come back blank")
	assert.Empty(t, form.Details[1].Locations)
}

func TestSessionService_UpdateDetails(t *testing.T) {
	ctx := context.Background()
	svc := service.NewSessionService(testLogger(), storage.NewMemorySessionRepository(), time.Hour, testSecret)
	id := startSession(t, svc)

	_, err := svc.UpdateIntake(ctx, id, service.IntakeInput{Quantities: map[models.SizeLabel]int{models.Size10: 1}})
	require.NoError(t, err)

	form, err := svc.UpdateDetails(ctx, id, []service.DetailInput{
		{Key: "10-1", Recipient: "Ana", Locations: []models.PrintLocation{models.LocationSleeve, models.LocationChest, models.LocationSleeve}},
	})
	require.NoError(t, err)
	assert.Equal(t, []models.PrintLocation{models.LocationChest, models.LocationSleeve}, form.Details[0].Locations)

	_, err = svc.UpdateDetails(ctx, id, []service.DetailInput{{Key: "M-1", Recipient: "Bruno"}})
	assert.ErrorIs(t, err, service.ErrUnknownUnit)

	_, err = svc.UpdateDetails(ctx, id, []service.DetailInput{{Key: "10-1", Locations: []models.PrintLocation{"hombro"}}})
	assert.ErrorIs(t, err, service.ErrInvalidLocation)

	// неуспешные запросы не меняют сохранённое состояние
	got, err := svc.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Ana", got.Details[0].Recipient)
}

func TestSessionService_End(t *testing.T) {
	ctx := context.Background()
	svc := service.NewSessionService(testLogger(), storage.NewMemorySessionRepository(), time.Hour, testSecret)
	id := startSession(t, svc)

	require.NoError(t, svc.End(ctx, id))
	_, err := svc.Get(ctx, id)
	assert.ErrorIs(t, err, storage.ErrSessionNotFound)
	assert.ErrorIs(t, svc.End(ctx, id), storage.ErrSessionNotFound)
}

type failingSessionRepo struct {
	storage.SessionStorage
}

var _ storage.SessionStorage = (*failingSessionRepo)(nil)

func (f *failingSessionRepo) DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error) {
	return 0, errors.New("db down")
}

func TestJanitor_Sweep(t *testing.T) {
	ctx := context.Background()
	repo := storage.NewMemorySessionRepository()
	past := time.Now().Add(-time.Hour)
	require.NoError(t, repo.CreateSession(ctx, &models.Session{ID: "old", ExpiresAt: past}))
	require.NoError(t, repo.CreateSession(ctx, &models.Session{ID: "fresh", ExpiresAt: time.Now().Add(time.Hour)}))

	j := service.NewJanitor(testLogger(), repo, storage.NewMemoryDispatchRepository(), time.Minute, time.Hour)
	assert.Equal(t, int64(1), j.Sweep(ctx))

	_, err := repo.GetSession(ctx, "fresh")
	assert.NoError(t, err)

	failing := service.NewJanitor(testLogger(), &failingSessionRepo{SessionStorage: repo}, storage.NewMemoryDispatchRepository(), time.Minute, time.Hour)
	assert.Equal(t, int64(0), failing.Sweep(ctx))
}

func TestJanitor_RunStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	j := service.NewJanitor(testLogger(), storage.NewMemorySessionRepository(), storage.NewMemoryDispatchRepository(), 10*time.Millisecond, time.Hour)

	done := make(chan struct{})
	go func() {
		j.Run(ctx)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("janitor did not stop")
	}
}

func TestJanitor_SweepPrunesMemoryJournal(t *testing.T) {
	ctx := context.Background()
	sessions := storage.NewMemorySessionRepository()
	dispatches := storage.NewMemoryDispatchRepository()
	now := time.Now()

	require.NoError(t, dispatches.RecordDispatch(ctx, &models.Dispatch{ID: "d-old", SessionID: "old", CreatedAt: now.Add(-3 * time.Hour)}))
	require.NoError(t, dispatches.RecordDispatch(ctx, &models.Dispatch{ID: "d-new", SessionID: "live", CreatedAt: now.Add(-time.Minute)}))

	j := service.NewJanitor(testLogger(), sessions, dispatches, time.Minute, 2*time.Hour)
	j.Sweep(ctx)

	old, err := dispatches.ListDispatches(ctx, "old")
	require.NoError(t, err)
	assert.Empty(t, old)

	live, err := dispatches.ListDispatches(ctx, "live")
	require.NoError(t, err)
	require.Len(t, live, 1)
	assert.Equal(t, "d-new", live[0].ID)
}


func TestSessionService_ConcurrentDetailUpdatesAreKept(t *testing.T) {
	ctx := context.Background()
	svc := service.NewSessionService(testLogger(), storage.NewMemorySessionRepository(), time.Hour, testSecret)
	id := startSession(t, svc)

	const units = 20
	_, err := svc.UpdateIntake(ctx, id, service.IntakeInput{Quantities: map[models.SizeLabel]int{models.SizeL: units}})
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 1; i <= units; i++ {
		wg.Add(1)
		go func(seq int) {
			defer wg.Done()
			_, err := svc.UpdateDetails(ctx, id, []service.DetailInput{{
				Key:       models.UnitKey(models.SizeL, seq),
				Recipient: fmt.Sprintf("Persona %d", seq),
				Locations: []models.PrintLocation{models.LocationBack},
			}})
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	form, err := svc.Get(ctx, id)
	require.NoError(t, err)
	require.Len(t, form.Details, units)
	for i, d := range form.Details {
		assert.Equal(t, fmt.Sprintf("Persona %d", i+1), d.Recipient, d.Key)
	}
}

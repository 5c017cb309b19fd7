package salons

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-SalonBooking/internal/domain"
	"github.com/m04kA/SMC-SalonBooking/internal/infra/storage/memory"
	"github.com/m04kA/SMC-SalonBooking/internal/service/salons/models"
	"github.com/m04kA/SMC-SalonBooking/pkg/logger"
	"github.com/m04kA/SMC-SalonBooking/pkg/ptr"
	"github.com/m04kA/SMC-SalonBooking/pkg/types"
)

const ownerID = int64(100)

var now = time.Date(2026, time.March, 2, 8, 0, 0, 0, time.UTC)

type fixedClock struct{ now time.Time }

func (c fixedClock) Now() time.Time { return c.now }

func newService(t *testing.T, salon domain.Salon) (*Service, *memory.Store) {
	t.Helper()

	store := memory.NewStore()
	store.AddSalon(salon)

	svc := NewService(store.Salons(), time.UTC, logger.Nop{})
	svc.timeProvider = fixedClock{now: now}
	return svc, store
}

func openSalon() domain.Salon {
	open, close := types.TimeString("09:00"), types.TimeString("18:00")
	return domain.Salon{ID: 1, OwnerID: ownerID, Name: "Studio", Status: domain.SalonStatusActive,
		Weekdays: domain.DayHours{Open: &open, Close: &close}}
}

func TestUpdateStatus_CloseAndReopen(t *testing.T) {
	svc, store := newService(t, openSalon())
	ctx := context.Background()
	until := now.Add(48 * time.Hour)

	closed, err := svc.UpdateStatus(ctx, &models.UpdateStatusRequest{
		UserID: ownerID, SalonID: 1, Closed: true, ClosedUntil: &until, Note: ptr.Ptr("renovation"),
	})
	require.NoError(t, err)
	assert.True(t, closed.IsTemporarilyClosed)
	require.NotNil(t, closed.ClosedUntil)
	assert.True(t, until.Equal(*closed.ClosedUntil))

	salon, err := store.Salons().GetByID(ctx, 1)
	require.NoError(t, err)
	assert.True(t, salon.IsTemporarilyClosed)
	assert.Equal(t, "renovation", *salon.ClosureNote)

	reopened, err := svc.UpdateStatus(ctx, &models.UpdateStatusRequest{
		UserID: ownerID, SalonID: 1, Closed: false, Note: ptr.Ptr("ignored"),
	})
	require.NoError(t, err)
	assert.False(t, reopened.IsTemporarilyClosed)
	assert.Nil(t, reopened.ClosedUntil)
	assert.Nil(t, reopened.ClosureNote)

	salon, err = store.Salons().GetByID(ctx, 1)
	require.NoError(t, err)
	assert.False(t, salon.IsTemporarilyClosed)
	assert.Nil(t, salon.ClosureNote)
}

func TestUpdateStatus_Errors(t *testing.T) {
	past := now.Add(-time.Hour)
	cases := []struct {
		name    string
		req     *models.UpdateStatusRequest
		wantErr error
	}{
		{"not the owner", &models.UpdateStatusRequest{UserID: 7, SalonID: 1, Closed: true}, ErrAccessDenied},
		{"unknown salon", &models.UpdateStatusRequest{UserID: ownerID, SalonID: 2, Closed: true}, ErrSalonNotFound},
		{"until in the past", &models.UpdateStatusRequest{UserID: ownerID, SalonID: 1, Closed: true, ClosedUntil: &past}, ErrInvalidInput},
		{"note too long", &models.UpdateStatusRequest{UserID: ownerID, SalonID: 1, Closed: true, Note: ptr.Ptr(strings.Repeat("x", 501))}, ErrInvalidInput},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc, _ := newService(t, openSalon())
			_, err := svc.UpdateStatus(context.Background(), tc.req)
			require.ErrorIs(t, err, tc.wantErr)
		})
	}
}

func TestGetStatus(t *testing.T) {
	t.Run("expired closure shown as open", func(t *testing.T) {
		salon := openSalon()
		until := now.Add(-time.Minute)
		salon.IsTemporarilyClosed = true
		salon.ClosedUntil = &until
		svc, _ := newService(t, salon)

		resp, err := svc.GetStatus(context.Background(), 1)
		require.NoError(t, err)
		assert.False(t, resp.IsTemporarilyClosed)
		assert.Nil(t, resp.ClosedUntil)
		assert.Equal(t, "UTC", resp.Timezone, "falls back to the default zone")
		require.NotNil(t, resp.Weekdays.Open)
		assert.Equal(t, "09:00", *resp.Weekdays.Open)
		assert.Nil(t, resp.Sunday.Open)
	})

	t.Run("indefinite closure", func(t *testing.T) {
		salon := openSalon()
		salon.IsTemporarilyClosed = true
		svc, _ := newService(t, salon)

		resp, err := svc.GetStatus(context.Background(), 1)
		require.NoError(t, err)
		assert.True(t, resp.IsTemporarilyClosed)
	})

	t.Run("unknown salon", func(t *testing.T) {
		svc, _ := newService(t, openSalon())
		_, err := svc.GetStatus(context.Background(), 9)
		require.ErrorIs(t, err, ErrSalonNotFound)
	})
}

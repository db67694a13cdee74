package services

import (
	"testing"
	"time"

	"go-armada/internal/alliance/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestResolveSchedule(t *testing.T) {
	paris, err := time.LoadLocation("Europe/Paris")
	require.NoError(t, err)

	// Winter in Paris: UTC+1.
	now := time.Date(2025, 11, 3, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		session   Session
		wantStart time.Time
		wantSale  time.Time
		wantErr   error
	}{
		{
			name:      "sale after start same day",
			session:   Session{DateISO: "2025-11-18", StartTime: "07:30", SaleTime: "18:00"},
			wantStart: time.Date(2025, 11, 18, 6, 30, 0, 0, time.UTC),
			wantSale:  time.Date(2025, 11, 18, 17, 0, 0, 0, time.UTC),
		},
		{
			name:    "sale before start rolls to next day",
			session: Session{DateISO: "2025-11-18", StartTime: "19:00", SaleTime: "02:00"},
			// 02:00 local is before 19:00 local, so the sale happens on the 19th.
			wantStart: time.Date(2025, 11, 18, 18, 0, 0, 0, time.UTC),
			wantSale:  time.Date(2025, 11, 19, 1, 0, 0, 0, time.UTC),
		},
		{
			name:    "sale equal to start rolls to next day",
			session: Session{DateISO: "2025-11-18", StartTime: "19:00", SaleTime: "19:00"},
			wantStart: time.Date(2025, 11, 18, 18, 0, 0, 0, time.UTC),
			wantSale:  time.Date(2025, 11, 19, 18, 0, 0, 0, time.UTC),
		},
		{
			name:    "next-day roll keeps local wall-clock time across DST end",
			session: Session{DateISO: "2026-10-24", StartTime: "20:00", SaleTime: "03:00"},
			// The clocks fall back during the night of the 24th; the sale
			// still happens at 03:00 local on the 25th, which is CET.
			wantStart: time.Date(2026, 10, 24, 18, 0, 0, 0, time.UTC),
			wantSale:  time.Date(2026, 10, 25, 2, 0, 0, 0, time.UTC),
		},
		{
			name:    "start in the past",
			session: Session{DateISO: "2025-11-01", StartTime: "19:00", SaleTime: "22:00"},
			wantErr: ErrStartInPast,
		},
		{
			name:    "malformed date",
			session: Session{DateISO: "18/11/2025", StartTime: "19:00", SaleTime: "22:00"},
			wantErr: ErrInvalidTime,
		},
		{
			name:    "malformed time",
			session: Session{DateISO: "2025-11-18", StartTime: "late", SaleTime: "22:00"},
			wantErr: ErrInvalidTime,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &Service{now: fixedClock(now)}
			start, sale, err := svc.resolveSchedule(&tt.session, paris)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.True(t, start.Equal(tt.wantStart), "start = %v, want %v", start, tt.wantStart)
			assert.True(t, sale.Equal(tt.wantSale), "sale = %v, want %v", sale, tt.wantSale)
		})
	}
}

func TestCancelGuard(t *testing.T) {
	assert.NoError(t, cancelGuard(models.StatusPlanned))
	assert.ErrorIs(t, cancelGuard(models.StatusMatching), ErrAlreadyStarted)
	assert.ErrorIs(t, cancelGuard(models.StatusInGame), ErrAlreadyStarted)
	assert.ErrorIs(t, cancelGuard(models.StatusFinished), ErrAlreadyOver)
	assert.ErrorIs(t, cancelGuard(models.StatusCancelled), ErrAlreadyOver)
}

func TestLeaveGuard(t *testing.T) {
	assert.NoError(t, leaveGuard(models.StatusPlanned))
	assert.NoError(t, leaveGuard(models.StatusMatching))
	assert.NoError(t, leaveGuard(models.StatusInGame))
	assert.ErrorIs(t, leaveGuard(models.StatusFinished), ErrAlreadyOver)
	assert.ErrorIs(t, leaveGuard(models.StatusCancelled), ErrAlreadyOver)
}

func TestResolveScheduleStartMustBeStrictlyFuture(t *testing.T) {
	now := time.Date(2025, 11, 18, 18, 0, 0, 0, time.UTC)
	svc := &Service{now: fixedClock(now)}

	// Start exactly at "now" is rejected.
	session := &Session{DateISO: "2025-11-18", StartTime: "18:00", SaleTime: "22:00"}
	_, _, err := svc.resolveSchedule(session, time.UTC)
	assert.ErrorIs(t, err, ErrStartInPast)
}

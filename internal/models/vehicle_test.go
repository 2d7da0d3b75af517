package models

import (
	"testing"
	"time"
)

func TestOwnershipStart_FallbackChain(t *testing.T) {
	created := time.Date(2023, time.May, 10, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		vehicle Vehicle
		want    time.Time
	}{
		{
			"registration year and month",
			Vehicle{RegistrationYear: 2021, RegistrationMonth: 3, Year: 2020, CreatedAt: created},
			time.Date(2021, time.March, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			"registration year without month",
			Vehicle{RegistrationYear: 2021, Year: 2020, CreatedAt: created},
			time.Date(2021, time.January, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			"model year fallback",
			Vehicle{Year: 2020, CreatedAt: created},
			time.Date(2020, time.January, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			"creation time fallback",
			Vehicle{CreatedAt: created},
			created,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.vehicle.OwnershipStart(); !got.Equal(tt.want) {
				t.Errorf("OwnershipStart() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSnapshot(t *testing.T) {
	km := 48000.0
	avg := 1000.0
	v := Vehicle{OdometerKm: &km, AvgKmPerMonth: &avg, Year: 2020}
	snap := v.Snapshot()
	if snap.CurrentKm == nil || *snap.CurrentKm != km {
		t.Errorf("CurrentKm = %v, want %v", snap.CurrentKm, km)
	}
	if snap.OwnershipStart.Year() != 2020 {
		t.Errorf("OwnershipStart = %v, want model-year fallback", snap.OwnershipStart)
	}
}

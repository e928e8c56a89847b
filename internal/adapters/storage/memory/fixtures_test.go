package memory

import (
	"time"

	"child-immunization-history/internal/domain/doses"
)

func dosesFixture(id string) doses.Dose {
	return doses.Dose{
		ID:              id,
		ChildID:         "c",
		VaccineID:       "BCG",
		DoseNumber:      1,
		ApplicationDate: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC),
	}
}

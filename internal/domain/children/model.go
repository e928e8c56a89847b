package children

import "time"

// Sex del niño según registro civil.
// @Enum F, M
type Sex string

const (
	SexFemale Sex = "F"
	SexMale   Sex = "M"
)

func (s Sex) Valid() bool {
	return s == SexFemale || s == SexMale
}

// Child es el perfil mínimo necesario para evaluar el esquema de vacunación.
type Child struct {
	ID             string
	GuardianUserID string

	FirstName      string
	LastName       string
	DocumentNumber string // cédula, opcional
	Sex            Sex

	BirthDate time.Time // fecha calendario (medianoche UTC)

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (c Child) FullName() string {
	if c.LastName == "" {
		return c.FirstName
	}
	return c.FirstName + " " + c.LastName
}

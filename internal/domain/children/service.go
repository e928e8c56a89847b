package children

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"child-immunization-history/internal/domain/immunization"

	"github.com/google/uuid"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrForbidden    = errors.New("forbidden")
)

type Service struct {
	repo Repository
	now  func() time.Time
	loc  *time.Location
}

func NewService(repo Repository, loc *time.Location) *Service {
	if loc == nil {
		loc = time.UTC
	}
	return &Service{
		repo: repo,
		now:  time.Now,
		loc:  loc,
	}
}

type CreateInput struct {
	FirstName      string
	LastName       string
	DocumentNumber string
	Sex            Sex
	BirthDate      time.Time
}

func (s *Service) Create(ctx context.Context, guardianUserID string, in CreateInput) (Child, error) {
	if strings.TrimSpace(guardianUserID) == "" {
		return Child{}, ErrInvalidInput
	}
	if strings.TrimSpace(in.FirstName) == "" {
		return Child{}, fmt.Errorf("%w: first_name required", ErrInvalidInput)
	}
	if in.Sex != "" && !in.Sex.Valid() {
		return Child{}, fmt.Errorf("%w: sex must be F or M", ErrInvalidInput)
	}
	if in.BirthDate.IsZero() {
		return Child{}, fmt.Errorf("%w: birth_date required", ErrInvalidInput)
	}

	now := s.now()
	birth := immunization.DateOf(in.BirthDate)
	if birth.After(immunization.Today(now, s.loc)) {
		return Child{}, fmt.Errorf("%w: birth_date in the future", ErrInvalidInput)
	}

	c := Child{
		ID:             uuid.NewString(),
		GuardianUserID: guardianUserID,
		FirstName:      strings.TrimSpace(in.FirstName),
		LastName:       strings.TrimSpace(in.LastName),
		DocumentNumber: strings.TrimSpace(in.DocumentNumber),
		Sex:            in.Sex,
		BirthDate:      birth,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.repo.Create(ctx, c); err != nil {
		return Child{}, err
	}
	return c, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (Child, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Child{}, ErrNotFound
	}
	return s.repo.GetByID(ctx, id)
}

// GetForGuardian devuelve el niño solo si userID es quien lo registró.
func (s *Service) GetForGuardian(ctx context.Context, id, userID string) (Child, error) {
	c, err := s.GetByID(ctx, id)
	if err != nil {
		return Child{}, err
	}
	if c.GuardianUserID != userID {
		return Child{}, ErrForbidden
	}
	return c, nil
}

func (s *Service) ListByGuardian(ctx context.Context, guardianUserID string) ([]Child, error) {
	return s.repo.ListByGuardian(ctx, guardianUserID)
}

func (s *Service) ListIDs(ctx context.Context) ([]string, error) {
	return s.repo.ListIDs(ctx)
}

package seed

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	domain "github.com/BruksfildServices01/slot-booking/internal/domain/booking"
	"github.com/BruksfildServices01/slot-booking/internal/models"
	ucBooking "github.com/BruksfildServices01/slot-booking/internal/usecase/booking"
)

const (
	AdminEmail      = "admin@example.com"
	PatientEmail    = "patient@example.com"
	DefaultPassword = "Passw0rd!"
)

type Result struct {
	Admin        *models.User
	Patient      *models.User
	SlotsCreated int
	Booking      *models.Booking
}

type Seeder struct {
	users    domain.UserRepository
	bookings domain.Repository
	bookSlot *ucBooking.BookSlot
	clock    domain.Clock
	log      *zap.Logger
}

func New(
	users domain.UserRepository,
	bookings domain.Repository,
	bookSlot *ucBooking.BookSlot,
	clock domain.Clock,
	log *zap.Logger,
) *Seeder {
	return &Seeder{
		users:    users,
		bookings: bookings,
		bookSlot: bookSlot,
		clock:    clock,
		log:      log,
	}
}

// Run is safe to repeat: existing users and slots are kept.
func (s *Seeder) Run(ctx context.Context) (*Result, error) {
	admin, err := s.ensureUser(ctx, "Admin User", AdminEmail, models.RoleAdmin)
	if err != nil {
		return nil, err
	}
	patient, err := s.ensureUser(ctx, "John Doe", PatientEmail, models.RolePatient)
	if err != nil {
		return nil, err
	}

	res := &Result{Admin: admin, Patient: patient}

	// Persist the open grid of the look-ahead window, future slots only.
	now := s.clock.Now()
	loc := s.clock.Location()
	var first *domain.Window
	for _, w := range domain.Grid(domain.LookAhead(now, loc), loc) {
		if !w.Start.After(now) {
			continue
		}
		if first == nil {
			w := w
			first = &w
		}
		err := s.bookings.CreateSlot(ctx, &models.Slot{StartAt: w.Start, EndAt: w.End})
		switch {
		case err == nil:
			res.SlotsCreated++
		case errors.Is(err, domain.ErrDuplicate):
		default:
			return nil, fmt.Errorf("create slot %s: %w", w.Start, err)
		}
	}
	s.log.Info("slots seeded", zap.Int("created", res.SlotsCreated))

	if first == nil {
		return res, nil
	}

	b, err := s.bookSlot.Execute(ctx, ucBooking.BookSlotInput{
		UserID:  patient.ID,
		StartAt: first.Start.Format(time.RFC3339),
		EndAt:   first.End.Format(time.RFC3339),
		Notes:   "Sample booking",
	})
	switch {
	case err == nil:
		res.Booking = b
		s.log.Info("sample booking created", zap.Uint("booking_id", b.ID))
	case errors.Is(err, domain.ErrSlotConflict):
		s.log.Info("sample slot already booked")
	default:
		return nil, fmt.Errorf("sample booking: %w", err)
	}

	return res, nil
}

func (s *Seeder) ensureUser(ctx context.Context, name, email, role string) (*models.User, error) {
	u, err := s.users.FindUserByEmail(ctx, email)
	if err == nil {
		return u, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("find %s: %w", email, err)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(DefaultPassword), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	u = &models.User{Name: name, Email: email, PasswordHash: string(hashed), Role: role}
	if err := s.users.CreateUser(ctx, u); err != nil {
		return nil, fmt.Errorf("create %s: %w", email, err)
	}
	s.log.Info("user created", zap.String("email", email), zap.String("role", role))
	return u, nil
}

package events

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/agendaly/backend/internal/models"
	"github.com/agendaly/backend/internal/store"
)

var (
	// ErrNotFound is returned for an unknown event ID.
	ErrNotFound = errors.New("event not found")
	// ErrInvalidTime is returned when the event time is outside 08:00-17:59.
	ErrInvalidTime = errors.New("event time must be between 08:00 and 17:59")
	// ErrAlreadyVoted is returned when the user has already voted.
	ErrAlreadyVoted = errors.New("already voted for this event")
	// ErrAlreadyRegistered is returned when the user is already registered.
	ErrAlreadyRegistered = errors.New("already registered for this event")
	// ErrNotRegistered is returned when unregistering without a registration.
	ErrNotRegistered = errors.New("not registered for this event")
)

// DefaultTime is used when an event is created without a time.
const DefaultTime = "09:00"

// Service applies event operations as load-validate-mutate-save cycles
// against the events collection. Mutations run inside store.Update, which
// holds the collection lock for the whole cycle so concurrent requests cannot
// overwrite each other's writes.
type Service struct {
	store  store.Store
	logger *zap.Logger
}

// NewService creates an event service.
func NewService(s store.Store, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: s, logger: logger}
}

// CreateParams are the inputs for Create.
type CreateParams struct {
	Title       string
	Description string
	Date        string
	Time        string
	Location    string
	CreatedBy   string
}

// validTime reports whether s is an HH:MM time within [08:00, 18:00).
func validTime(s string) bool {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return false
	}
	return t.Hour() >= 8 && t.Hour() < 18
}

// Create validates the time window, persists a new event with empty vote and
// registration lists, and returns it.
func (s *Service) Create(ctx context.Context, p CreateParams) (models.EventView, error) {
	if p.Time == "" {
		p.Time = DefaultTime
	}
	if !validTime(p.Time) {
		return models.EventView{}, ErrInvalidTime
	}

	event := models.Event{
		ID:            models.NewID(),
		Title:         p.Title,
		Description:   p.Description,
		Date:          p.Date,
		Time:          p.Time,
		Location:      p.Location,
		CreatedBy:     p.CreatedBy,
		Votes:         models.VoteList{},
		Registrations: models.RegistrationList{},
		CreatedAt:     time.Now().UTC(),
	}

	err := s.store.Update(ctx, store.Events, func(tx store.Txn) error {
		var all []models.Event
		if err := tx.Load(&all); err != nil {
			return err
		}
		return tx.Save(append(all, event))
	})
	if err != nil {
		return models.EventView{}, err
	}

	s.logger.Info("event created", zap.String("event_id", event.ID), zap.String("title", event.Title))
	return event.View(), nil
}

// List returns every event, repaired, with derived counts.
func (s *Service) List(ctx context.Context) ([]models.EventView, error) {
	var all []models.Event
	if err := s.store.Load(ctx, store.Events, &all); err != nil {
		return nil, err
	}
	views := make([]models.EventView, 0, len(all))
	for _, e := range all {
		views = append(views, e.View())
	}
	return views, nil
}

// Get returns one event by ID, repaired, with derived counts.
func (s *Service) Get(ctx context.Context, id string) (models.EventView, error) {
	var all []models.Event
	if err := s.store.Load(ctx, store.Events, &all); err != nil {
		return models.EventView{}, err
	}
	for _, e := range all {
		if e.ID == id {
			return e.View(), nil
		}
	}
	return models.EventView{}, ErrNotFound
}

// Delete permanently removes an event from the collection.
func (s *Service) Delete(ctx context.Context, id string) error {
	return s.store.Update(ctx, store.Events, func(tx store.Txn) error {
		var all []models.Event
		if err := tx.Load(&all); err != nil {
			return err
		}
		idx := indexOf(all, id)
		if idx < 0 {
			return ErrNotFound
		}
		all = append(all[:idx], all[idx+1:]...)
		if err := tx.Save(all); err != nil {
			return err
		}
		s.logger.Info("event deleted", zap.String("event_id", id))
		return nil
	})
}

// Vote appends a vote for userID. A second vote by the same user is rejected
// and leaves the collection unchanged.
func (s *Service) Vote(ctx context.Context, eventID, userID string) (models.EventView, error) {
	return s.mutate(ctx, eventID, func(e *models.Event) error {
		if e.Votes.Has(userID) {
			return ErrAlreadyVoted
		}
		e.Votes = append(e.Votes, models.Vote{UserID: userID})
		s.logger.Info("vote added", zap.String("event_id", e.ID), zap.String("user_id", userID))
		return nil
	})
}

// Register appends a registration for userID. A second registration by the
// same user is rejected.
func (s *Service) Register(ctx context.Context, eventID, userID, name, email string) (models.EventView, error) {
	return s.mutate(ctx, eventID, func(e *models.Event) error {
		if e.Registrations.Has(userID) {
			return ErrAlreadyRegistered
		}
		e.Registrations = append(e.Registrations, models.Registration{
			UserID:       userID,
			Name:         name,
			Email:        email,
			RegisteredAt: time.Now().UTC(),
		})
		s.logger.Info("registration added", zap.String("event_id", e.ID), zap.String("user_id", userID))
		return nil
	})
}

// Unregister removes userID's registration. Unregistering without a prior
// registration is an error, not a no-op, so the caller gets an accurate
// signal.
func (s *Service) Unregister(ctx context.Context, eventID, userID string) (models.EventView, error) {
	return s.mutate(ctx, eventID, func(e *models.Event) error {
		kept := e.Registrations[:0:0]
		for _, r := range e.Registrations {
			if r.UserID != userID {
				kept = append(kept, r)
			}
		}
		if len(kept) == len(e.Registrations) {
			return ErrNotRegistered
		}
		e.Registrations = kept
		s.logger.Info("registration removed", zap.String("event_id", e.ID), zap.String("user_id", userID))
		return nil
	})
}

// RepairAll normalizes every event record and persists the result. Running it
// twice produces the same document as running it once. It returns how many
// records needed fixing and the total collection size.
func (s *Service) RepairAll(ctx context.Context) (repaired, total int, err error) {
	err = s.store.Update(ctx, store.Events, func(tx store.Txn) error {
		var all []models.Event
		if err := tx.Load(&all); err != nil {
			return err
		}
		for i := range all {
			if all[i].Repair() {
				repaired++
			}
		}
		total = len(all)
		return tx.Save(all)
	})
	if err != nil {
		return 0, 0, err
	}
	if repaired > 0 {
		s.logger.Warn("repaired event records", zap.Int("repaired", repaired), zap.Int("total", total))
	}
	return repaired, total, nil
}

// mutate runs fn against one repaired event under the collection lock and
// persists the whole document. Any error from fn aborts without saving.
func (s *Service) mutate(ctx context.Context, eventID string, fn func(e *models.Event) error) (models.EventView, error) {
	var view models.EventView
	err := s.store.Update(ctx, store.Events, func(tx store.Txn) error {
		var all []models.Event
		if err := tx.Load(&all); err != nil {
			return err
		}
		idx := indexOf(all, eventID)
		if idx < 0 {
			return ErrNotFound
		}
		e := &all[idx]
		e.Repair()
		if err := fn(e); err != nil {
			return err
		}
		if err := tx.Save(all); err != nil {
			return fmt.Errorf("save events: %w", err)
		}
		view = e.View()
		return nil
	})
	if err != nil {
		return models.EventView{}, err
	}
	return view, nil
}

func indexOf(all []models.Event, id string) int {
	for i := range all {
		if all[i].ID == id {
			return i
		}
	}
	return -1
}

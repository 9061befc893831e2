package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agendaly/backend/internal/models"
	"github.com/agendaly/backend/internal/store"
)

func newTestService(t *testing.T) (*Service, *store.MemStore) {
	t.Helper()
	mem := store.NewMemStore(store.Users, store.Events)
	return NewService(mem, nil), mem
}

func mustCreate(t *testing.T, s *Service, title, eventTime string) models.EventView {
	t.Helper()
	view, err := s.Create(context.Background(), CreateParams{
		Title:     title,
		Date:      "2024-01-08",
		Time:      eventTime,
		CreatedBy: "creator",
	})
	require.NoError(t, err)
	return view
}

func TestCreateTimeWindow(t *testing.T) {
	s, _ := newTestService(t)
	ctx := context.Background()

	for _, tc := range []struct {
		time string
		ok   bool
	}{
		{"07:59", false},
		{"18:00", false},
		{"08:00", true},
		{"17:59", true},
		{"19:30", false},
		{"midnight", false},
	} {
		_, err := s.Create(ctx, CreateParams{Title: "t", Date: "2024-01-08", Time: tc.time})
		if tc.ok {
			assert.NoError(t, err, "time %s", tc.time)
		} else {
			assert.ErrorIs(t, err, ErrInvalidTime, "time %s", tc.time)
		}
	}
}

func TestCreateDefaultsTime(t *testing.T) {
	s, _ := newTestService(t)
	view, err := s.Create(context.Background(), CreateParams{Title: "Standup", Date: "2024-01-08"})
	require.NoError(t, err)
	assert.Equal(t, "09:00", view.Time)
	assert.NotEmpty(t, view.ID)
	assert.Empty(t, view.Votes)
	assert.Empty(t, view.Registrations)
}

func TestGetAndList(t *testing.T) {
	s, _ := newTestService(t)
	ctx := context.Background()

	created := mustCreate(t, s, "Standup", "09:00")

	got, err := s.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Standup", got.Title)
	assert.Equal(t, 0, got.RegistrationCount)

	_, err = s.Get(ctx, "nope")
	assert.ErrorIs(t, err, ErrNotFound)

	list, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, created.ID, list[0].ID)
}

func TestDoubleVoteRejected(t *testing.T) {
	s, _ := newTestService(t)
	ctx := context.Background()
	event := mustCreate(t, s, "Standup", "09:00")

	view, err := s.Vote(ctx, event.ID, "userA")
	require.NoError(t, err)
	assert.Equal(t, 1, view.VoteCount)

	_, err = s.Vote(ctx, event.ID, "userA")
	assert.ErrorIs(t, err, ErrAlreadyVoted)

	got, err := s.Get(ctx, event.ID)
	require.NoError(t, err)
	assert.Len(t, got.Votes, 1)
}

func TestVoteUnknownEvent(t *testing.T) {
	s, _ := newTestService(t)
	_, err := s.Vote(context.Background(), "missing", "userA")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRegisterUnregisterCycle(t *testing.T) {
	s, _ := newTestService(t)
	ctx := context.Background()
	event := mustCreate(t, s, "Standup", "09:00")

	view, err := s.Register(ctx, event.ID, "userA", "Alice", "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, 1, view.RegistrationCount)
	assert.False(t, view.Registrations[0].RegisteredAt.IsZero())

	_, err = s.Register(ctx, event.ID, "userA", "Alice", "alice@example.com")
	assert.ErrorIs(t, err, ErrAlreadyRegistered)

	view, err = s.Unregister(ctx, event.ID, "userA")
	require.NoError(t, err)
	assert.Equal(t, 0, view.RegistrationCount)

	view, err = s.Register(ctx, event.ID, "userA", "Alice", "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, 1, view.RegistrationCount)

	// No duplicates, no residue after the full cycle.
	got, err := s.Get(ctx, event.ID)
	require.NoError(t, err)
	require.Len(t, got.Registrations, 1)
	assert.Equal(t, "userA", got.Registrations[0].UserID)
}

func TestUnregisterWithoutRegistration(t *testing.T) {
	s, mem := newTestService(t)
	ctx := context.Background()
	event := mustCreate(t, s, "Standup", "09:00")
	before := mem.Raw(store.Events)

	_, err := s.Unregister(ctx, event.ID, "ghost")
	assert.ErrorIs(t, err, ErrNotRegistered)

	assert.Equal(t, string(before), string(mem.Raw(store.Events)))
}

func TestDelete(t *testing.T) {
	s, _ := newTestService(t)
	ctx := context.Background()
	event := mustCreate(t, s, "Standup", "09:00")

	require.NoError(t, s.Delete(ctx, event.ID))
	_, err := s.Get(ctx, event.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	assert.ErrorIs(t, s.Delete(ctx, event.ID), ErrNotFound)
}

func TestListRepairsCorruptRecords(t *testing.T) {
	s, mem := newTestService(t)
	mem.Seed(store.Events, []byte(`[
		{"id":"1","title":"Broken","votes":5,"registrations":"oops"}
	]`))

	list, err := s.List(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.NotNil(t, list[0].Registrations)
	assert.Equal(t, 0, list[0].RegistrationCount)
	assert.Equal(t, 0, list[0].VoteCount)
}

func TestRepairAllIdempotent(t *testing.T) {
	s, mem := newTestService(t)
	ctx := context.Background()
	mem.Seed(store.Events, []byte(`[
		{"id":"1","title":"Broken","votes":5},
		{"id":"2","title":"Fine","votes":[{"userId":"a"}],"registrations":[]}
	]`))

	repaired, total, err := s.RepairAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, repaired)
	assert.Equal(t, 2, total)

	first := mem.Raw(store.Events)
	repaired, total, err = s.RepairAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, repaired)
	assert.Equal(t, 2, total)
	assert.Equal(t, string(first), string(mem.Raw(store.Events)))

	// The persisted document now has array-valued lists everywhere.
	var raw []map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(mem.Raw(store.Events), &raw))
	for _, rec := range raw {
		assert.True(t, len(rec["votes"]) > 0 && rec["votes"][0] == '[')
		assert.True(t, len(rec["registrations"]) > 0 && rec["registrations"][0] == '[')
	}
}

// Concurrent votes by distinct users must all survive: the store lock
// serializes each load-mutate-save cycle.
func TestConcurrentVotesAllKept(t *testing.T) {
	s, _ := newTestService(t)
	ctx := context.Background()
	event := mustCreate(t, s, "Standup", "09:00")

	const n = 40
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func(i int) {
			defer wg.Done()
			_, err := s.Vote(ctx, event.ID, fmt.Sprintf("user-%d", i))
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	got, err := s.Get(ctx, event.ID)
	require.NoError(t, err)
	assert.Len(t, got.Votes, n)
}

// Scenario from the calendar frontend: create, vote, vote again.
func TestStandupScenario(t *testing.T) {
	s, _ := newTestService(t)
	ctx := context.Background()

	created, err := s.Create(ctx, CreateParams{Title: "Standup", Date: "2024-01-08", Time: "09:00"})
	require.NoError(t, err)

	view, err := s.Vote(ctx, created.ID, "userA")
	require.NoError(t, err)
	assert.Equal(t, 1, view.VoteCount)

	_, err = s.Vote(ctx, created.ID, "userA")
	require.ErrorIs(t, err, ErrAlreadyVoted)

	got, err := s.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Len(t, got.Votes, 1)
}

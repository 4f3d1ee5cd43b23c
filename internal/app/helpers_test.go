package app_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/neomorfeo/innledger/internal/adapter/fsm"
	"github.com/neomorfeo/innledger/internal/adapter/memory"
	"github.com/neomorfeo/innledger/internal/app"
	"github.com/neomorfeo/innledger/internal/domain"
)

// --- Fakes ---

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []domain.ChangeEvent
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, e domain.ChangeEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, e)
	return nil
}

func (p *recordingPublisher) Events() []domain.ChangeEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]domain.ChangeEvent(nil), p.events...)
}

var errPublish = errors.New("queue unavailable")

// --- Fixture ---

type fixture struct {
	store     *memory.Store
	clock     *fakeClock
	publisher *recordingPublisher
	svc       *app.Services
	admin     domain.Caller
	manager   domain.Caller
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		store:     memory.New(),
		clock:     &fakeClock{now: time.Date(2024, 4, 10, 9, 0, 0, 0, time.UTC)},
		publisher: &recordingPublisher{},
	}
	f.svc = app.NewServices(f.store, fsm.New(), f.publisher, f.clock)

	hotel, owner, err := f.svc.Hotels.RegisterHotel(context.Background(), app.RegisterHotelCommand{
		Name:          "Seaside",
		Timezone:      "UTC",
		OwnerFullName: "Olga Owner",
		OwnerUsername: "olga",
	})
	require.NoError(t, err)
	f.admin = domain.Caller{TenantID: hotel.ID, UserID: owner.ID, Role: domain.RoleAdmin}

	f.clock.Advance(time.Minute)
	mgr, err := f.svc.Users.CreateUser(context.Background(), f.admin, app.CreateUserCommand{
		FullName: "Max Manager",
		Username: "max",
		Role:     domain.RoleManager,
	})
	require.NoError(t, err)
	f.manager = domain.Caller{TenantID: hotel.ID, UserID: mgr.ID, Role: domain.RoleManager}
	return f
}

func (f *fixture) room(t *testing.T, number string) domain.Room {
	t.Helper()
	r, err := f.svc.Rooms.CreateRoom(context.Background(), f.admin, app.CreateRoomCommand{
		Number:    number,
		Floor:     1,
		Type:      domain.RoomDouble,
		Capacity:  2,
		BasePrice: decimal.NewFromInt(100),
		Active:    true,
	})
	require.NoError(t, err)
	return r
}

func (f *fixture) stay(t *testing.T, roomID, from, to string, status domain.StayStatus) domain.Stay {
	t.Helper()
	s, err := f.svc.Bookings.CreateStay(context.Background(), f.manager, app.CreateStayCommand{
		RoomID:        roomID,
		GuestName:     "Guest",
		CheckIn:       day(from),
		CheckOut:      day(to),
		Status:        status,
		PricePerNight: decimal.NewFromInt(100),
	})
	require.NoError(t, err)
	return s
}

func day(s string) time.Time {
	t, err := time.Parse(domain.DateLayout, s)
	if err != nil {
		panic(err)
	}
	return t
}

func at(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return t
}

func requireDecimal(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	require.Truef(t, decimal.RequireFromString(want).Equal(got), "want %s, got %s", want, got)
}

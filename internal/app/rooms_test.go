package app_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/neomorfeo/innledger/internal/adapter/fsm"
	"github.com/neomorfeo/innledger/internal/adapter/memory"
	"github.com/neomorfeo/innledger/internal/app"
	"github.com/neomorfeo/innledger/internal/domain"
)

func TestRooms_CRUD(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	r := f.room(t, "201")
	f.room(t, "101")

	inactive := false
	notes := "window broken"
	updated, err := f.svc.Rooms.UpdateRoom(ctx, f.manager, r.ID, app.RoomPatch{Active: &inactive, Notes: &notes})
	require.NoError(t, err)
	require.False(t, updated.Active)
	require.Equal(t, notes, updated.Notes)

	rooms, err := f.svc.Rooms.ListRooms(ctx, f.manager)
	require.NoError(t, err)
	require.Len(t, rooms, 2)
	require.Equal(t, "101", rooms[0].Number)

	require.NoError(t, f.svc.Rooms.DeleteRoom(ctx, f.manager, r.ID))
	_, err = f.svc.Rooms.GetRoom(ctx, f.manager, r.ID)
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRooms_DeleteReferencedRoom(t *testing.T) {
	f := newFixture(t)
	r := f.room(t, "101")
	f.stay(t, r.ID, "2024-03-01", "2024-03-02", domain.StatusCancelled)

	err := f.svc.Rooms.DeleteRoom(context.Background(), f.manager, r.ID)
	require.ErrorIs(t, err, domain.ErrConflict)
}

func TestRooms_DeleteRacesWithBooking(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for i := 0; i < 20; i++ {
		r := f.room(t, fmt.Sprintf("%d", 100+i))

		var wg sync.WaitGroup
		var deleteErr, createErr error
		wg.Add(2)
		go func() {
			defer wg.Done()
			deleteErr = f.svc.Rooms.DeleteRoom(ctx, f.admin, r.ID)
		}()
		go func() {
			defer wg.Done()
			_, createErr = f.svc.Bookings.CreateStay(ctx, f.manager, app.CreateStayCommand{
				RoomID:    r.ID,
				GuestName: "Guest",
				CheckIn:   day("2024-05-01"),
				CheckOut:  day("2024-05-03"),
				Status:    domain.StatusBooked,
			})
		}()
		wg.Wait()

		stays, err := f.store.ListStays(ctx, f.admin.TenantID, domain.StayFilter{RoomID: r.ID})
		require.NoError(t, err)
		if deleteErr == nil {
			require.ErrorIs(t, createErr, domain.ErrNotFound)
			require.Empty(t, stays, "no stay may reference a deleted room")
		} else {
			require.ErrorIs(t, deleteErr, domain.ErrConflict)
			require.NoError(t, createErr)
			require.Len(t, stays, 1)
		}
	}
}

func TestRooms_Validation(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Rooms.CreateRoom(context.Background(), f.manager, app.CreateRoomCommand{Number: " "})
	require.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = f.svc.Rooms.CreateRoom(context.Background(), f.manager, app.CreateRoomCommand{Number: "1", Type: "PENTHOUSE"})
	require.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestChannels(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Channels.CreateChannel(ctx, f.manager, "Kaspi")
	require.ErrorIs(t, err, domain.ErrForbidden)

	c, err := f.svc.Channels.CreateChannel(ctx, f.admin, " Kaspi ")
	require.NoError(t, err)
	require.Equal(t, "Kaspi", c.Name)

	_, err = f.svc.Channels.CreateChannel(ctx, f.admin, "Kaspi")
	require.ErrorIs(t, err, domain.ErrConflict)
	_, err = f.svc.Channels.CreateChannel(ctx, f.admin, "cash")
	require.ErrorIs(t, err, domain.ErrConflict)

	list, err := f.svc.Channels.ListChannels(ctx, f.manager)
	require.NoError(t, err)
	require.Len(t, list, 1)

	require.ErrorIs(t, f.svc.Channels.DeleteChannel(ctx, f.manager, c.ID), domain.ErrForbidden)
	require.NoError(t, f.svc.Channels.DeleteChannel(ctx, f.admin, c.ID))
	require.ErrorIs(t, f.svc.Channels.DeleteChannel(ctx, f.admin, c.ID), domain.ErrNotFound)
}

type failingProfileStore struct {
	*memory.Store
	tenantID string
}

func (s *failingProfileStore) CreateProfile(_ context.Context, p domain.Profile) error {
	s.tenantID = p.TenantID
	return &domain.ConflictError{Kind: domain.KindProfile, Key: p.Username}
}

func TestHotel_RegisterRemovesHotelWhenOwnerFails(t *testing.T) {
	store := &failingProfileStore{Store: memory.New()}
	svc := app.NewServices(store, fsm.New(), nil, app.SystemClock{})

	_, _, err := svc.Hotels.RegisterHotel(context.Background(), app.RegisterHotelCommand{
		Name: "Seaside", OwnerFullName: "Olga Owner", OwnerUsername: "olga",
	})
	require.ErrorIs(t, err, domain.ErrConflict)
	require.NotEmpty(t, store.tenantID)

	_, err = store.GetHotel(context.Background(), store.tenantID)
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestHotel_RegisterAndUpdate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	h, err := f.svc.Hotels.GetHotel(ctx, f.manager)
	require.NoError(t, err)
	require.Equal(t, "Seaside", h.Name)

	bad := "Mars/Olympus"
	_, err = f.svc.Hotels.UpdateHotel(ctx, f.admin, nil, &bad)
	require.ErrorIs(t, err, domain.ErrInvalidInput)

	_, _, err = f.svc.Hotels.RegisterHotel(ctx, app.RegisterHotelCommand{Name: "", OwnerFullName: "a", OwnerUsername: "b"})
	require.ErrorIs(t, err, domain.ErrInvalidInput)
}

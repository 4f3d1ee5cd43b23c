package app

import "github.com/neomorfeo/innledger/internal/domain"

// Services bundles every application service over one store.
type Services struct {
	Guard    *AccessGuard
	Hotels   *HotelService
	Rooms    *RoomService
	Bookings *BookingService
	Closings *ClosingService
	Ledger   *LedgerService
	Channels *ChannelService
	Users    *UserService
}

// NewServices wires the services. Room, booking and ledger writes share one
// RoomLocks table.
func NewServices(
	store domain.Store,
	validator domain.TransitionValidator,
	publisher domain.EventPublisher,
	clock domain.Clock,
) *Services {
	guard := NewAccessGuard(store)
	locks := NewRoomLocks()
	closings := NewClosingService(store, guard, validator, publisher, clock)
	return &Services{
		Guard:    guard,
		Hotels:   NewHotelService(store, guard, clock),
		Rooms:    NewRoomService(store, guard, locks, clock),
		Bookings: NewBookingService(store, guard, locks, clock),
		Closings: closings,
		Ledger:   NewLedgerService(store, guard, closings, locks, publisher, clock),
		Channels: NewChannelService(store, guard, clock),
		Users:    NewUserService(store, guard, clock),
	}
}

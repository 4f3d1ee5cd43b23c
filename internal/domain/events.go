package domain

// EntityKind names the entity a change event or error refers to.
type EntityKind string

const (
	KindHotel         EntityKind = "hotel"
	KindRoom          EntityKind = "room"
	KindStay          EntityKind = "stay"
	KindPayment       EntityKind = "payment"
	KindExpense       EntityKind = "expense"
	KindTransfer      EntityKind = "transfer"
	KindMonthClosing  EntityKind = "month_closing"
	KindCustomChannel EntityKind = "custom_channel"
	KindProfile       EntityKind = "profile"
)

// ChangeKind is what happened to the entity.
type ChangeKind string

const (
	ChangeCreated ChangeKind = "created"
	ChangeUpdated ChangeKind = "updated"
	ChangeDeleted ChangeKind = "deleted"
)

// ChangeEvent describes a committed mutation. Before is nil on create and
// After is nil on delete.
type ChangeEvent struct {
	Entity   EntityKind
	Change   ChangeKind
	TenantID string
	ActorID  string
	Before   any
	After    any
}

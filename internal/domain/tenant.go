package domain

import "time"

// DefaultTimezone is used for tenants without stored settings.
const DefaultTimezone = "UTC"

// Hotel is the tenant: one hotel's isolated data partition. Its timezone is
// the clock context for month keys and report windows.
type Hotel struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Timezone  string    `json:"timezone"`
	CreatedAt time.Time `json:"created_at"`
}

// NewHotel creates a hotel with the given timezone, defaulting to UTC.
func NewHotel(id, name, timezone string, now time.Time) (Hotel, error) {
	if timezone == "" {
		timezone = DefaultTimezone
	}
	if _, err := time.LoadLocation(timezone); err != nil {
		return Hotel{}, invalidInput("unknown timezone " + timezone)
	}
	return Hotel{
		ID:        id,
		Name:      name,
		Timezone:  timezone,
		CreatedAt: now.UTC(),
	}, nil
}

// Location resolves the hotel timezone, falling back to UTC.
func (h Hotel) Location() *time.Location {
	loc, err := time.LoadLocation(h.Timezone)
	if err != nil || h.Timezone == "" {
		return time.UTC
	}
	return loc
}

// RoomType classifies rooms for display.
type RoomType string

const (
	RoomSingle RoomType = "SINGLE"
	RoomDouble RoomType = "DOUBLE"
	RoomSuite  RoomType = "SUITE"
	RoomFamily RoomType = "FAMILY"
)

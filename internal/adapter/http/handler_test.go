package http_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"

	"github.com/neomorfeo/innledger/internal/adapter/fsm"
	adapter "github.com/neomorfeo/innledger/internal/adapter/http"
	"github.com/neomorfeo/innledger/internal/adapter/memory"
	"github.com/neomorfeo/innledger/internal/app"
	"github.com/neomorfeo/innledger/internal/domain"
)

// tickingClock starts on 2024-04-10 so the previous month is always 2024-03.
// Every reading moves one second forward, keeping creation order stable.
type tickingClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *tickingClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(time.Second)
	return c.now
}

// who is the identity sent in the trusted headers.
type who struct {
	hotel string
	user  string
	role  string
}

// newTestServer creates a full-stack httptest.Server over the in-memory store.
func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	svcs := app.NewServices(memory.New(), fsm.New(), nil, &tickingClock{now: time.Date(2024, 4, 10, 9, 0, 0, 0, time.UTC)})

	router := chi.NewMux()
	api := humachi.New(router, huma.DefaultConfig("innledger", "0.1.0"))
	adapter.Register(api, svcs)

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	return srv
}

// doRequest performs an HTTP request with context (avoids noctx linter).
func doRequest(t *testing.T, as who, method, url, body string) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}

	req, err := http.NewRequestWithContext(context.Background(), method, url, reader)
	if err != nil {
		t.Fatalf("creating request: %v", err)
	}

	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if as.hotel != "" {
		req.Header.Set("X-Hotel-ID", as.hotel)
	}
	if as.user != "" {
		req.Header.Set("X-User-ID", as.user)
	}
	if as.role != "" {
		req.Header.Set("X-Role", as.role)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s failed: %v", method, url, err)
	}

	return resp
}

// mustDo performs a request, checks the status and decodes the body into out.
func mustDo(t *testing.T, as who, method, url, body string, want int, out any) {
	t.Helper()

	resp := doRequest(t, as, method, url, body)
	defer resp.Body.Close()

	if resp.StatusCode != want {
		raw, _ := io.ReadAll(resp.Body)
		t.Fatalf("%s %s: status = %d, want %d (%s)", method, url, resp.StatusCode, want, raw)
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode: %v", err)
		}
	}
}

func expectStatus(t *testing.T, as who, method, url, body string, want int) {
	t.Helper()
	mustDo(t, as, method, url, body, want, nil)
}

type hotelSetup struct {
	srv     *httptest.Server
	admin   who
	manager who
}

// setupHotel registers a hotel and a manager and returns both identities.
func setupHotel(t *testing.T) hotelSetup {
	t.Helper()
	srv := newTestServer(t)

	var reg struct {
		Hotel domain.Hotel   `json:"hotel"`
		Owner domain.Profile `json:"owner"`
	}
	mustDo(t, who{}, http.MethodPost, srv.URL+"/api/v1/hotels",
		`{"name":"Seaside","timezone":"UTC","owner_full_name":"Olga Owner","owner_username":"olga"}`,
		http.StatusCreated, &reg)

	admin := who{hotel: reg.Hotel.ID, user: reg.Owner.ID, role: "ADMIN"}

	var mgr domain.Profile
	mustDo(t, admin, http.MethodPost, srv.URL+"/api/v1/users",
		`{"full_name":"Max Manager","username":"Max"}`, http.StatusCreated, &mgr)

	return hotelSetup{
		srv:     srv,
		admin:   admin,
		manager: who{hotel: reg.Hotel.ID, user: mgr.ID, role: "MANAGER"},
	}
}

func (h hotelSetup) createRoom(t *testing.T, number string) domain.Room {
	t.Helper()
	var room domain.Room
	mustDo(t, h.admin, http.MethodPost, h.srv.URL+"/api/v1/rooms",
		fmt.Sprintf(`{"number":%q,"floor":1,"capacity":2,"base_price":"80.00"}`, number),
		http.StatusCreated, &room)
	return room
}

func (h hotelSetup) createStay(t *testing.T, roomID, in, out string) domain.Stay {
	t.Helper()
	var stay domain.Stay
	mustDo(t, h.manager, http.MethodPost, h.srv.URL+"/api/v1/stays",
		fmt.Sprintf(`{"room_id":%q,"guest_name":"Ann","check_in_date":%q,"check_out_date":%q,"price_per_night":"100"}`, roomID, in, out),
		http.StatusCreated, &stay)
	return stay
}

// --- Hotel ---

func TestRegisterHotel(t *testing.T) {
	h := setupHotel(t)

	var hotel domain.Hotel
	mustDo(t, h.manager, http.MethodGet, h.srv.URL+"/api/v1/hotel", "", http.StatusOK, &hotel)

	if hotel.Name != "Seaside" {
		t.Errorf("Name = %q, want %q", hotel.Name, "Seaside")
	}
	if hotel.Timezone != "UTC" {
		t.Errorf("Timezone = %q, want %q", hotel.Timezone, "UTC")
	}
}

func TestUpdateHotel_UnknownTimezone(t *testing.T) {
	h := setupHotel(t)

	expectStatus(t, h.admin, http.MethodPatch, h.srv.URL+"/api/v1/hotel", `{"timezone":"Mars/Olympus"}`, http.StatusUnprocessableEntity)
}

func TestUpdateHotel_TimezoneAdminOnly(t *testing.T) {
	h := setupHotel(t)

	expectStatus(t, h.manager, http.MethodPatch, h.srv.URL+"/api/v1/hotel", `{"timezone":"Asia/Almaty"}`, http.StatusForbidden)
	expectStatus(t, h.admin, http.MethodPatch, h.srv.URL+"/api/v1/hotel", `{"timezone":"Asia/Almaty"}`, http.StatusOK)
}

func TestMissingIdentity_Forbidden(t *testing.T) {
	h := setupHotel(t)

	expectStatus(t, who{}, http.MethodGet, h.srv.URL+"/api/v1/rooms", "", http.StatusForbidden)
	expectStatus(t, who{hotel: h.admin.hotel, role: "GUEST"}, http.MethodGet, h.srv.URL+"/api/v1/rooms", "", http.StatusForbidden)
}

// --- Rooms ---

func TestRooms_CreateListDelete(t *testing.T) {
	h := setupHotel(t)
	h.createRoom(t, "102")
	room := h.createRoom(t, "101")

	if room.Type != domain.RoomDouble {
		t.Errorf("Type = %q, want %q", room.Type, domain.RoomDouble)
	}
	if !room.Active {
		t.Error("room should default to active")
	}

	var rooms []domain.Room
	mustDo(t, h.manager, http.MethodGet, h.srv.URL+"/api/v1/rooms", "", http.StatusOK, &rooms)
	if len(rooms) != 2 {
		t.Fatalf("got %d rooms, want 2", len(rooms))
	}
	if rooms[0].Number != "101" {
		t.Errorf("first room = %q, want %q", rooms[0].Number, "101")
	}

	h.createStay(t, room.ID, "2024-05-01", "2024-05-03")
	expectStatus(t, h.admin, http.MethodDelete, h.srv.URL+"/api/v1/rooms/"+room.ID, "", http.StatusConflict)
}

func TestCreateRoom_InvalidPrice(t *testing.T) {
	h := setupHotel(t)

	expectStatus(t, h.admin, http.MethodPost, h.srv.URL+"/api/v1/rooms", `{"number":"1","base_price":"lots"}`, http.StatusUnprocessableEntity)
}

// --- Stays ---

func TestCreateStay_Overlap(t *testing.T) {
	h := setupHotel(t)
	room := h.createRoom(t, "101")
	h.createStay(t, room.ID, "2024-05-01", "2024-05-05")

	body := fmt.Sprintf(`{"room_id":%q,"guest_name":"Bob","check_in_date":"2024-05-04","check_out_date":"2024-05-06"}`, room.ID)
	expectStatus(t, h.manager, http.MethodPost, h.srv.URL+"/api/v1/stays", body, http.StatusConflict)

	// Checkout day is free for the next check-in.
	h.createStay(t, room.ID, "2024-05-05", "2024-05-07")
}

func TestCreateStay_InvertedDates(t *testing.T) {
	h := setupHotel(t)
	room := h.createRoom(t, "101")

	body := fmt.Sprintf(`{"room_id":%q,"guest_name":"Bob","check_in_date":"2024-05-04","check_out_date":"2024-05-04"}`, room.ID)
	expectStatus(t, h.manager, http.MethodPost, h.srv.URL+"/api/v1/stays", body, http.StatusUnprocessableEntity)
}

func TestGetStay_OtherHotel(t *testing.T) {
	h := setupHotel(t)
	room := h.createRoom(t, "101")
	stay := h.createStay(t, room.ID, "2024-05-01", "2024-05-03")

	stranger := who{hotel: "another-hotel", user: "u-x", role: "ADMIN"}
	expectStatus(t, stranger, http.MethodGet, h.srv.URL+"/api/v1/stays/"+stay.ID, "", http.StatusNotFound)
}

func TestDeleteStay_WithPayments(t *testing.T) {
	h := setupHotel(t)
	room := h.createRoom(t, "101")
	stay := h.createStay(t, room.ID, "2024-05-01", "2024-05-03")

	mustDo(t, h.manager, http.MethodPost, h.srv.URL+"/api/v1/payments",
		fmt.Sprintf(`{"stay_id":%q,"channel":{"method":"CASH"},"amount":"50"}`, stay.ID),
		http.StatusCreated, nil)

	expectStatus(t, h.manager, http.MethodDelete, h.srv.URL+"/api/v1/stays/"+stay.ID, "", http.StatusConflict)
}

func TestUpdateStay_CheckedInCannotBeDeleted(t *testing.T) {
	h := setupHotel(t)
	room := h.createRoom(t, "101")
	stay := h.createStay(t, room.ID, "2024-05-01", "2024-05-03")

	var updated domain.Stay
	mustDo(t, h.manager, http.MethodPatch, h.srv.URL+"/api/v1/stays/"+stay.ID, `{"status":"CHECKED_IN"}`, http.StatusOK, &updated)
	if updated.Status != domain.StatusCheckedIn {
		t.Errorf("Status = %q, want %q", updated.Status, domain.StatusCheckedIn)
	}

	expectStatus(t, h.manager, http.MethodDelete, h.srv.URL+"/api/v1/stays/"+stay.ID, "", http.StatusConflict)
}

// --- Closings ---

func TestClosePreviousMonth_GatesManagers(t *testing.T) {
	h := setupHotel(t)
	room := h.createRoom(t, "101")
	stay := h.createStay(t, room.ID, "2024-03-10", "2024-03-12")

	var payment domain.Payment
	mustDo(t, h.manager, http.MethodPost, h.srv.URL+"/api/v1/payments",
		fmt.Sprintf(`{"stay_id":%q,"paid_at":"2024-03-11T12:00:00Z","channel":{"method":"CARD"},"amount":"200"}`, stay.ID),
		http.StatusCreated, &payment)

	var closing domain.MonthClosing
	mustDo(t, h.manager, http.MethodPost, h.srv.URL+"/api/v1/closings", "", http.StatusCreated, &closing)
	if closing.Month != "2024-03" {
		t.Fatalf("Month = %q, want %q", closing.Month, "2024-03")
	}
	if got := closing.Totals.TotalRevenue.String(); got != "200" {
		t.Errorf("TotalRevenue = %s, want 200", got)
	}

	// Closing again returns the stored snapshot.
	var again domain.MonthClosing
	mustDo(t, h.manager, http.MethodPost, h.srv.URL+"/api/v1/closings", "", http.StatusOK, &again)
	if again.ID != closing.ID {
		t.Errorf("second close ID = %q, want %q", again.ID, closing.ID)
	}

	paymentURL := h.srv.URL + "/api/v1/payments/" + payment.ID
	expectStatus(t, h.manager, http.MethodPatch, paymentURL, `{"amount":"1"}`, http.StatusForbidden)
	expectStatus(t, h.manager, http.MethodPatch, paymentURL, `{"comment":"late receipt"}`, http.StatusOK)
	expectStatus(t, h.manager, http.MethodDelete, paymentURL, "", http.StatusForbidden)

	expectStatus(t, h.manager, http.MethodDelete, h.srv.URL+"/api/v1/closings/2024-03", "", http.StatusForbidden)
	expectStatus(t, h.admin, http.MethodDelete, h.srv.URL+"/api/v1/closings/2024-03", "", http.StatusNoContent)
	expectStatus(t, h.admin, http.MethodDelete, h.srv.URL+"/api/v1/closings/2024-03", "", http.StatusNotFound)

	expectStatus(t, h.manager, http.MethodDelete, paymentURL, "", http.StatusNoContent)
}

func TestListClosings(t *testing.T) {
	h := setupHotel(t)
	mustDo(t, h.admin, http.MethodPost, h.srv.URL+"/api/v1/closings", "", http.StatusCreated, nil)

	var closings []domain.MonthClosing
	mustDo(t, h.manager, http.MethodGet, h.srv.URL+"/api/v1/closings", "", http.StatusOK, &closings)
	if len(closings) != 1 {
		t.Fatalf("got %d closings, want 1", len(closings))
	}

	expectStatus(t, h.manager, http.MethodGet, h.srv.URL+"/api/v1/closings/2024-03", "", http.StatusOK)
	expectStatus(t, h.manager, http.MethodGet, h.srv.URL+"/api/v1/closings/2024-02", "", http.StatusNotFound)
}

func TestReport(t *testing.T) {
	h := setupHotel(t)
	room := h.createRoom(t, "101")
	stay := h.createStay(t, room.ID, "2024-05-01", "2024-05-03")
	mustDo(t, h.manager, http.MethodPatch, h.srv.URL+"/api/v1/stays/"+stay.ID, `{"status":"CHECKED_OUT"}`, http.StatusOK, nil)

	url := h.srv.URL + "/api/v1/reports/totals?from=2024-05-01&to=2024-05-10"
	expectStatus(t, h.manager, http.MethodGet, url, "", http.StatusForbidden)

	var totals domain.TotalsSnapshot
	mustDo(t, h.admin, http.MethodGet, url, "", http.StatusOK, &totals)
	if totals.SoldNights != 2 {
		t.Errorf("SoldNights = %d, want 2", totals.SoldNights)
	}
	if totals.AvailableNights != 10 {
		t.Errorf("AvailableNights = %d, want 10", totals.AvailableNights)
	}

	expectStatus(t, h.admin, http.MethodGet, h.srv.URL+"/api/v1/reports/totals?from=2024-05-10&to=2024-05-01", "", http.StatusUnprocessableEntity)
}

// --- Ledger ---

func TestTransfer_SameRegister(t *testing.T) {
	h := setupHotel(t)

	expectStatus(t, h.manager, http.MethodPost, h.srv.URL+"/api/v1/transfers",
		`{"from":{"method":"CASH"},"to":{"method":"CASH"},"amount":"10"}`, http.StatusUnprocessableEntity)
	expectStatus(t, h.manager, http.MethodPost, h.srv.URL+"/api/v1/transfers",
		`{"from":{},"to":{"method":"CASH"},"amount":"5"}`, http.StatusUnprocessableEntity)
	expectStatus(t, h.manager, http.MethodPost, h.srv.URL+"/api/v1/transfers",
		`{"from":{"method":"CASH"},"to":{"custom":"Safe"},"amount":"10"}`, http.StatusCreated)
}

func TestListExpenses_ManagerSeesOwn(t *testing.T) {
	h := setupHotel(t)

	mustDo(t, h.admin, http.MethodPost, h.srv.URL+"/api/v1/expenses",
		`{"category":"FOOD","channel":{"method":"CASH"},"amount":"30","spent_at":"2024-04-02T08:00:00Z"}`, http.StatusCreated, nil)
	mustDo(t, h.manager, http.MethodPost, h.srv.URL+"/api/v1/expenses",
		`{"category":"REPAIR","channel":{"method":"CASH"},"amount":"12","spent_at":"2024-04-03T08:00:00Z"}`, http.StatusCreated, nil)

	var mine []domain.Expense
	mustDo(t, h.manager, http.MethodGet, h.srv.URL+"/api/v1/expenses", "", http.StatusOK, &mine)
	if len(mine) != 1 {
		t.Fatalf("manager sees %d expenses, want 1", len(mine))
	}

	var all []domain.Expense
	mustDo(t, h.admin, http.MethodGet, h.srv.URL+"/api/v1/expenses?from=2024-04-01&to=2024-04-30", "", http.StatusOK, &all)
	if len(all) != 2 {
		t.Errorf("admin sees %d expenses, want 2", len(all))
	}

	expectStatus(t, h.admin, http.MethodGet, h.srv.URL+"/api/v1/expenses?from=2024-04-01", "", http.StatusUnprocessableEntity)
}

// --- Users and channels ---

func TestUsers_OwnerProtected(t *testing.T) {
	h := setupHotel(t)

	var users []app.UserView
	mustDo(t, h.admin, http.MethodGet, h.srv.URL+"/api/v1/users", "", http.StatusOK, &users)
	if len(users) != 2 {
		t.Fatalf("got %d users, want 2", len(users))
	}
	if !users[0].IsOwner || users[0].ID != h.admin.user {
		t.Errorf("first user should be the owner, got %+v", users[0])
	}
	if users[1].Username != "max" {
		t.Errorf("Username = %q, want %q", users[1].Username, "max")
	}

	expectStatus(t, h.manager, http.MethodGet, h.srv.URL+"/api/v1/users", "", http.StatusForbidden)
	expectStatus(t, h.admin, http.MethodDelete, h.srv.URL+"/api/v1/users/"+h.admin.user, "", http.StatusForbidden)

	var promoted domain.Profile
	mustDo(t, h.admin, http.MethodPut, h.srv.URL+"/api/v1/users/"+h.manager.user+"/role", `{"role":"admin"}`, http.StatusOK, &promoted)
	if promoted.Role != domain.RoleAdmin {
		t.Errorf("Role = %q, want %q", promoted.Role, domain.RoleAdmin)
	}

	second := who{hotel: h.admin.hotel, user: h.manager.user, role: "ADMIN"}
	expectStatus(t, second, http.MethodPut, h.srv.URL+"/api/v1/users/"+h.admin.user+"/role", `{"role":"MANAGER"}`, http.StatusForbidden)
	expectStatus(t, second, http.MethodDelete, h.srv.URL+"/api/v1/users/"+h.admin.user, "", http.StatusForbidden)
}

func TestChannels(t *testing.T) {
	h := setupHotel(t)

	var ch domain.CustomChannel
	mustDo(t, h.admin, http.MethodPost, h.srv.URL+"/api/v1/channels", `{"name":"Booking.com"}`, http.StatusCreated, &ch)

	expectStatus(t, h.admin, http.MethodPost, h.srv.URL+"/api/v1/channels", `{"name":"Booking.com"}`, http.StatusConflict)
	expectStatus(t, h.admin, http.MethodPost, h.srv.URL+"/api/v1/channels", `{"name":"cash"}`, http.StatusConflict)
	expectStatus(t, h.manager, http.MethodPost, h.srv.URL+"/api/v1/channels", `{"name":"Airbnb"}`, http.StatusForbidden)

	var channels []domain.CustomChannel
	mustDo(t, h.manager, http.MethodGet, h.srv.URL+"/api/v1/channels", "", http.StatusOK, &channels)
	if len(channels) != 1 || channels[0].Name != "Booking.com" {
		t.Errorf("channels = %+v, want one Booking.com", channels)
	}

	expectStatus(t, h.admin, http.MethodDelete, h.srv.URL+"/api/v1/channels/"+ch.ID, "", http.StatusNoContent)
	expectStatus(t, h.admin, http.MethodDelete, h.srv.URL+"/api/v1/channels/"+ch.ID, "", http.StatusNotFound)
}

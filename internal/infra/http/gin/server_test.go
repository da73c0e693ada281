package ginserver

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"staypricing/internal/app/dto"
	"staypricing/internal/app/service"
	"staypricing/internal/domain/membership"
	"staypricing/internal/infra/config"
	"staypricing/internal/infra/currency"
	"staypricing/internal/infra/obs"
	"staypricing/internal/infra/storage/memory"
)

var testNow = time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

type testServer struct {
	router   http.Handler
	bookings *memory.BookingRepository
	outbox   *memory.Outbox
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	bookings := memory.NewBookingRepository()
	factory := memory.NewFactory()
	factory.BookingsRepo = bookings
	box := memory.NewOutbox()
	converter, err := currency.NewConverter(map[string]decimal.Decimal{"EUR": decimal.RequireFromString("0.5")})
	require.NoError(t, err)

	var seq atomic.Int64
	buses := service.Build(service.Deps{
		Logger:      logger,
		UoW:         factory,
		Outbox:      box,
		Idempotency: memory.NewIdempotencyStore(),
		Currency:    converter,
		Membership:  membership.Resolver{History: bookings},
		Now:         func() time.Time { return testNow },
		NewID:       func() string { return fmt.Sprintf("id-%d", seq.Add(1)) },
	})
	h := Handlers{
		Quote:       QuoteHandler{Commands: buses.Commands, Queries: buses.Queries, Logger: logger},
		Booking:     BookingHandler{Commands: buses.Commands, Queries: buses.Queries, Logger: logger},
		Draft:       DraftHandler{Commands: buses.Commands, Queries: buses.Queries, Logger: logger},
		HostListing: HostListingHandler{Commands: buses.Commands, Queries: buses.Queries, Logger: logger},
	}
	cfg := config.Config{Env: "test", CORSOrigins: []string{"*"}}
	return &testServer{
		router:   NewRouter(cfg, obs.Middleware{Logger: logger}, obs.HealthHandlers{}, h),
		bookings: bookings,
		outbox:   box,
	}
}

type caller struct {
	id    string
	roles string
}

var (
	hostUser  = caller{id: "host-1", roles: "host"}
	guestUser = caller{id: "guest-1", roles: "guest"}
	anonUser  = caller{}
)

func (s *testServer) do(t *testing.T, who caller, method, path string, body any, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = strings.NewReader(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if who.id != "" {
		req.Header.Set(UserIDHeader, who.id)
		req.Header.Set(UserRolesHeader, who.roles)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

var staySections = []struct {
	name string
	body string
}{
	{"category", `{"category":"cabin"}`},
	{"type", `{"property_type":"entire_place"}`},
	{"location", `{"line1":"1 Lake Rd","city":"Tahoe","country":"US"}`},
	{"details", `{"accommodates":6,"bedrooms":3,"beds":4,"bathrooms":2}`},
	{"amenities", `{"amenities":["wifi"]}`},
	{"photos", `{"photos":["https://img/1.jpg"]}`},
	{"title", `{"title":"Lakeside cabin"}`},
	{"description", `{"description":"Quiet cabin by the lake."}`},
	{"fees", `{"cleaning_fee":{"amount":"20","currency":"USD"},"extra_guest_fee":{"amount":"10","currency":"USD"},"extra_guest_threshold":4,"service_fee":{"kind":"percentage","percent":"10"},"tax_fee":{"kind":"fixed","amount":{"amount":"5","currency":"USD"}}}`},
	{"price", `{"weekday_price":{"amount":"100","currency":"USD"},"weekend_price":{"amount":"120","currency":"USD"}}`},
	{"safety", `{"house_rules":["no parties"],"acknowledged":true}`},
}

// startDraft creates a stay draft and fills every section, skipping the named ones.
func (s *testServer) startDraft(t *testing.T, skip ...string) string {
	t.Helper()
	rec := s.do(t, hostUser, http.MethodPost, "/api/v1/host/drafts", map[string]string{"kind": "stay"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	draftID := string(decode[dto.Draft](t, rec).Draft.ID)

outer:
	for _, section := range staySections {
		for _, name := range skip {
			if name == section.name {
				continue outer
			}
		}
		rec := s.do(t, hostUser, http.MethodPatch, "/api/v1/host/drafts/"+draftID+"/sections/"+section.name, section.body)
		require.Equal(t, http.StatusOK, rec.Code, "%s: %s", section.name, rec.Body.String())
	}
	return draftID
}

func (s *testServer) publish(t *testing.T) string {
	t.Helper()
	draftID := s.startDraft(t)
	rec := s.do(t, hostUser, http.MethodPost, "/api/v1/host/drafts/"+draftID+"/publish", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	res := decode[dto.PublishResult](t, rec)
	require.True(t, res.OK)
	return res.ListingID
}

var threeNights = map[string]any{"check_in": "2025-07-01", "check_out": "2025-07-04", "guests": 2}

func TestHealthEndpoints(t *testing.T) {
	s := newTestServer(t)
	assert.Equal(t, http.StatusOK, s.do(t, anonUser, http.MethodGet, "/livez", nil).Code)
	assert.Equal(t, http.StatusOK, s.do(t, anonUser, http.MethodGet, "/readyz", nil).Code)
}

func TestQuoteForMemberMatchesBreakdown(t *testing.T) {
	s := newTestServer(t)
	listingID := s.publish(t)
	s.bookings.SeedCompletedTrips(guestUser.id, 1)

	rec := s.do(t, guestUser, http.MethodPost, "/api/v1/listings/"+listingID+"/quotes", threeNights)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	q := decode[dto.Quote](t, rec)

	assert.True(t, q.Breakdown.Subtotal.Amount.Equal(decimal.NewFromInt(300)))
	assert.True(t, q.Breakdown.Discount.Amount.Equal(decimal.NewFromInt(15)))
	assert.True(t, q.Breakdown.ServiceFee.Amount.Equal(decimal.NewFromInt(30)))
	assert.True(t, q.Breakdown.Total.Amount.Equal(decimal.NewFromInt(340)))
	assert.Equal(t, "explorer", q.MembershipTier)
	assert.Equal(t, "/api/v1/quotes/"+q.ID, rec.Header().Get("Location"))

	rec = s.do(t, guestUser, http.MethodGet, "/api/v1/quotes/"+q.ID+"?currency=EUR", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	stored := decode[dto.Quote](t, rec)
	require.NotNil(t, stored.Display)
	assert.Equal(t, "EUR 170.00", stored.Display.Total)
	assert.True(t, stored.Breakdown.Total.Amount.Equal(q.Breakdown.Total.Amount))
}

func TestAnonymousQuoteHasNoMembershipDiscount(t *testing.T) {
	s := newTestServer(t)
	listingID := s.publish(t)

	rec := s.do(t, anonUser, http.MethodPost, "/api/v1/listings/"+listingID+"/quotes", threeNights)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	q := decode[dto.Quote](t, rec)
	assert.True(t, q.MembershipPercent.IsZero())
	assert.True(t, q.Breakdown.Total.Amount.Equal(decimal.NewFromInt(355)))
}

func TestQuoteErrors(t *testing.T) {
	s := newTestServer(t)
	listingID := s.publish(t)

	rec := s.do(t, guestUser, http.MethodPost, "/api/v1/listings/missing/quotes", threeNights)
	assert.Equal(t, http.StatusNotFound, rec.Code, rec.Body.String())

	rec = s.do(t, guestUser, http.MethodPost, "/api/v1/listings/"+listingID+"/quotes",
		map[string]any{"check_in": "2025-07-04", "check_out": "2025-07-01", "guests": 2})
	assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())

	rec = s.do(t, guestUser, http.MethodPost, "/api/v1/listings/"+listingID+"/quotes",
		map[string]any{"check_in": "2025-07-01", "check_out": "2025-07-04", "guests": 9})
	assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())

	rec = s.do(t, guestUser, http.MethodPost, "/api/v1/listings/"+listingID+"/quotes",
		map[string]any{"check_in": "July 1", "check_out": "2025-07-04", "guests": 2})
	assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
}

func TestBookingIsIdempotent(t *testing.T) {
	s := newTestServer(t)
	listingID := s.publish(t)
	rec := s.do(t, guestUser, http.MethodPost, "/api/v1/listings/"+listingID+"/quotes", threeNights)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	quoteID := decode[dto.Quote](t, rec).ID

	first := s.do(t, guestUser, http.MethodPost, "/api/v1/bookings", map[string]string{"quote_id": quoteID}, "Idempotency-Key", "k-1")
	require.Equal(t, http.StatusCreated, first.Code, first.Body.String())
	second := s.do(t, guestUser, http.MethodPost, "/api/v1/bookings", map[string]string{"quote_id": quoteID}, "Idempotency-Key", "k-1")
	require.Equal(t, http.StatusCreated, second.Code, second.Body.String())

	a := decode[map[string]string](t, first)
	b := decode[map[string]string](t, second)
	assert.Equal(t, a["booking_id"], b["booking_id"])

	rec = s.do(t, guestUser, http.MethodGet, "/api/v1/me/bookings", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	list := decode[dto.BookingCollection](t, rec)
	assert.Len(t, list.Items, 1)

	rec = s.do(t, anonUser, http.MethodPost, "/api/v1/bookings", map[string]string{"quote_id": quoteID})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestBookingLifecycleCountsTrips(t *testing.T) {
	s := newTestServer(t)
	listingID := s.publish(t)
	rec := s.do(t, guestUser, http.MethodPost, "/api/v1/listings/"+listingID+"/quotes", threeNights)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	quoteID := decode[dto.Quote](t, rec).ID
	rec = s.do(t, guestUser, http.MethodPost, "/api/v1/bookings", map[string]string{"quote_id": quoteID})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	bookingID := decode[map[string]string](t, rec)["booking_id"]

	rec = s.do(t, guestUser, http.MethodPost, "/api/v1/bookings/"+bookingID+"/confirm", nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.do(t, hostUser, http.MethodPost, "/api/v1/bookings/"+bookingID+"/complete", nil)
	assert.Equal(t, http.StatusConflict, rec.Code, rec.Body.String())

	rec = s.do(t, hostUser, http.MethodPost, "/api/v1/bookings/"+bookingID+"/confirm", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	rec = s.do(t, hostUser, http.MethodPost, "/api/v1/bookings/"+bookingID+"/complete", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = s.do(t, guestUser, http.MethodGet, "/api/v1/membership/tiers", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	tiers := decode[dto.MembershipTiers](t, rec)
	assert.Len(t, tiers.Items, 3)
	require.NotNil(t, tiers.Status)
	assert.Equal(t, 1, tiers.Status.Trips)
}

func TestPublishBlockedByMissingPhotos(t *testing.T) {
	s := newTestServer(t)
	draftID := s.startDraft(t, "photos")
	before := len(s.outbox.Delivered())

	rec := s.do(t, hostUser, http.MethodPost, "/api/v1/host/drafts/"+draftID+"/publish", nil)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code, rec.Body.String())
	body := decode[map[string]string](t, rec)
	assert.Equal(t, "photos", body["step"])
	assert.Len(t, s.outbox.Delivered(), before)

	rec = s.do(t, hostUser, http.MethodGet, "/api/v1/host/listings", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[dto.ListingCollection](t, rec).Items)
}

func TestDraftNavigation(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(t, hostUser, http.MethodPost, "/api/v1/host/drafts", map[string]string{"kind": "stay"})
	require.Equal(t, http.StatusCreated, rec.Code)
	draftID := string(decode[dto.Draft](t, rec).Draft.ID)

	rec = s.do(t, hostUser, http.MethodPost, "/api/v1/host/drafts/"+draftID+"/steps/next", nil)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code, rec.Body.String())
	assert.Equal(t, "category", decode[map[string]string](t, rec)["step"])

	rec = s.do(t, hostUser, http.MethodPatch, "/api/v1/host/drafts/"+draftID+"/sections/category", `{"category":"cabin"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = s.do(t, hostUser, http.MethodPost, "/api/v1/host/drafts/"+draftID+"/steps/next", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "type", string(decode[dto.Draft](t, rec).Draft.Step))

	rec = s.do(t, hostUser, http.MethodPatch, "/api/v1/host/drafts/"+draftID+"/sections/itinerary", `{"activities":[]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())

	rec = s.do(t, hostUser, http.MethodPatch, "/api/v1/host/drafts/"+draftID+"/sections/price", `{"weekday_price":{"amount":"90","currency":"EUR"}}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())

	rec = s.do(t, caller{id: "host-2", roles: "host"}, http.MethodGet, "/api/v1/host/drafts/"+draftID, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestSeasonalOverlapRejected(t *testing.T) {
	s := newTestServer(t)
	draftID := s.startDraft(t)
	path := "/api/v1/host/drafts/" + draftID + "/discounts/seasonal"

	rec := s.do(t, hostUser, http.MethodPost, path, map[string]any{"from": "2025-07-01", "to": "2025-07-10", "percent": "10"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = s.do(t, hostUser, http.MethodPost, path, map[string]any{"from": "2025-07-05", "to": "2025-07-20", "percent": "5"})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code, rec.Body.String())
	assert.Equal(t, "Overlap", decode[map[string]string](t, rec)["kind"])

	rec = s.do(t, hostUser, http.MethodPost, path, map[string]any{"from": "2025-07-21", "to": "2025-07-25", "percent": "5"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	d := decode[dto.Draft](t, rec)
	assert.Len(t, d.Draft.Pricing.Discounts.Seasonal, 2)
}

func TestDraftRoutesRequireHostRole(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(t, anonUser, http.MethodPost, "/api/v1/host/drafts", map[string]string{"kind": "stay"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(t, guestUser, http.MethodPost, "/api/v1/host/drafts", map[string]string{"kind": "stay"})
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestSuspendedListingCannotBeQuoted(t *testing.T) {
	s := newTestServer(t)
	listingID := s.publish(t)

	rec := s.do(t, hostUser, http.MethodPost, "/api/v1/host/listings/"+listingID+"/suspend", map[string]string{"reason": "maintenance"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = s.do(t, guestUser, http.MethodPost, "/api/v1/listings/"+listingID+"/quotes", threeNights)
	assert.Equal(t, http.StatusConflict, rec.Code, rec.Body.String())
}

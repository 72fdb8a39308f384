package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"shareit/internal/config"
	"shareit/internal/domain"
	"shareit/internal/repository"
	"shareit/internal/service"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

type fixture struct {
	t      *testing.T
	store  *repository.MemoryStore
	server *HTTPServer
}

func newFixture(t *testing.T, cfg config.APIConfig, limiter domain.RateLimiter) *fixture {
	t.Helper()
	logger := zerolog.Nop()
	store := repository.NewMemoryStore()
	svc := Services{
		Users:    service.NewUserService(store, &logger),
		Items:    service.NewItemService(store, &logger),
		Comments: service.NewCommentService(store, nil, &logger),
		Requests: service.NewItemRequestService(store, nil, &logger),
		Bookings: service.NewBookingService(store, nil, "Bookings", &logger),
	}
	return &fixture{t: t, store: store, server: NewHTTPServer(cfg, svc, store, limiter, &logger)}
}

func newTestServer(t *testing.T) *fixture {
	return newFixture(t, config.APIConfig{}, nil)
}

func (f *fixture) do(method, path string, userID int64, body any) *httptest.ResponseRecorder {
	f.t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(f.t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if userID != 0 {
		req.Header.Set("X-Sharer-User-Id", strconv.FormatInt(userID, 10))
	}
	rec := httptest.NewRecorder()
	f.server.Handler().ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func (f *fixture) createUser(name string) int64 {
	f.t.Helper()
	rec := f.do(http.MethodPost, "/users", 0, map[string]string{"name": name, "email": name + "@example.com"})
	require.Equal(f.t, http.StatusOK, rec.Code, rec.Body.String())
	return decode[struct{ ID int64 }](f.t, rec).ID
}

func (f *fixture) createItem(ownerID int64, name string) int64 {
	f.t.Helper()
	rec := f.do(http.MethodPost, "/items", ownerID, map[string]any{
		"name": name, "description": name + " for rent", "available": true,
	})
	require.Equal(f.t, http.StatusOK, rec.Code, rec.Body.String())
	return decode[struct{ ID int64 }](f.t, rec).ID
}

func (f *fixture) createBooking(bookerID, itemID int64, start, end time.Time) *httptest.ResponseRecorder {
	f.t.Helper()
	return f.do(http.MethodPost, "/bookings", bookerID, map[string]any{
		"itemId": itemID, "start": start.Format(time.RFC3339), "end": end.Format(time.RFC3339),
	})
}

func TestUsersEndpoints(t *testing.T) {
	f := newTestServer(t)
	id := f.createUser("ann")

	rec := f.do(http.MethodGet, fmt.Sprintf("/users/%d", id), 0, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	user := decode[map[string]any](t, rec)
	assert.Equal(t, "ann", user["name"])
	assert.Equal(t, "ann@example.com", user["email"])

	rec = f.do(http.MethodPost, "/users", 0, map[string]string{"name": "dup", "email": "ann@example.com"})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = f.do(http.MethodPatch, fmt.Sprintf("/users/%d", id), 0, map[string]string{"name": "Annie"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Annie", decode[map[string]any](t, rec)["name"])

	rec = f.do(http.MethodDelete, fmt.Sprintf("/users/%d", id), 0, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(http.MethodGet, fmt.Sprintf("/users/%d", id), 0, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, decode[errorResponse](t, rec).Error, "not found")

	rec = f.do(http.MethodGet, "/users", 0, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "[]", rec.Body.String())
}

func TestValidationErrorsListFields(t *testing.T) {
	f := newTestServer(t)

	rec := f.do(http.MethodPost, "/users", 0, map[string]string{"name": " ", "email": "nope"})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	fields := decode[[]errorResponse](t, rec)
	require.Len(t, fields, 2)
	assert.Equal(t, "name", fields[0].FieldName)
	assert.Equal(t, "email", fields[1].FieldName)

	req := httptest.NewRequest(http.MethodPost, "/users", bytes.NewBufferString("{broken"))
	raw := httptest.NewRecorder()
	f.server.Handler().ServeHTTP(raw, req)
	assert.Equal(t, http.StatusBadRequest, raw.Code)
}

func TestCallerHeaderRequired(t *testing.T) {
	f := newTestServer(t)

	rec := f.do(http.MethodGet, "/bookings", 0, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "X-Sharer-User-Id", decode[errorResponse](t, rec).FieldName)

	req := httptest.NewRequest(http.MethodGet, "/items", nil)
	req.Header.Set("X-Sharer-User-Id", "abc")
	raw := httptest.NewRecorder()
	f.server.Handler().ServeHTTP(raw, req)
	assert.Equal(t, http.StatusBadRequest, raw.Code)
}

func TestBookingFlow(t *testing.T) {
	f := newTestServer(t)
	owner := f.createUser("owner")
	booker := f.createUser("booker")
	item := f.createItem(owner, "Drill")

	start := time.Now().Add(time.Hour).UTC().Truncate(time.Second)
	end := start.Add(time.Hour)

	rec := f.createBooking(owner, item, start, end)
	assert.Equal(t, http.StatusNotFound, rec.Code, "self booking")

	rec = f.createBooking(booker, item, end, start)
	assert.Equal(t, http.StatusBadRequest, rec.Code, "end before start")

	rec = f.createBooking(booker, item, start.Add(-2*time.Hour), end)
	require.Equal(t, http.StatusBadRequest, rec.Code, "start in the past")
	assert.Equal(t, "start", decode[[]errorResponse](t, rec)[0].FieldName)

	rec = f.createBooking(booker, item, start, end)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	created := decode[struct {
		ID     int64
		Status string
		Start  time.Time
		Booker struct{ ID int64 }
		Item   struct {
			ID   int64
			Name string
		}
	}](t, rec)
	assert.Equal(t, "WAITING", created.Status)
	assert.Equal(t, booker, created.Booker.ID)
	assert.Equal(t, "Drill", created.Item.Name)
	assert.True(t, start.Equal(created.Start))

	path := fmt.Sprintf("/bookings/%d", created.ID)

	rec = f.do(http.MethodPatch, path+"?approved=true", booker, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code, "non-owner decision")

	rec = f.do(http.MethodPatch, path+"?approved=maybe", owner, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(http.MethodPatch, path+"?approved=true", owner, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "APPROVED", decode[map[string]any](t, rec)["status"])

	rec = f.do(http.MethodPatch, path+"?approved=false", owner, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code, "decision is final")

	stranger := f.createUser("stranger")
	rec = f.do(http.MethodGet, path, stranger, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = f.do(http.MethodGet, path, booker, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(http.MethodGet, "/bookings/owner?state=FUTURE", owner, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]map[string]any](t, rec), 1)

	rec = f.do(http.MethodGet, "/bookings?state=PAST", booker, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "[]", rec.Body.String())
}

func TestBookingListValidation(t *testing.T) {
	f := newTestServer(t)
	user := f.createUser("ann")

	rec := f.do(http.MethodGet, "/bookings?state=BOGUS", user, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	body := decode[errorResponse](t, rec)
	assert.Equal(t, "Unknown state: BOGUS", body.Error)
	assert.Equal(t, "state", body.FieldName)

	// state tokens are case sensitive
	rec = f.do(http.MethodGet, "/bookings?state=all", user, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// paging is checked before the state token
	rec = f.do(http.MethodGet, "/bookings/owner?state=BOGUS&from=-1", user, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "from", decode[errorResponse](t, rec).FieldName)

	rec = f.do(http.MethodGet, "/bookings?size=0", user, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(http.MethodGet, "/bookings?from=x", user, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(http.MethodGet, "/bookings", 99, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestExportOwnerBookings(t *testing.T) {
	f := newTestServer(t)
	owner := f.createUser("owner")
	booker := f.createUser("booker")
	item := f.createItem(owner, "Drill")
	start := time.Now().Add(time.Hour)
	require.Equal(t, http.StatusOK, f.createBooking(booker, item, start, start.Add(time.Hour)).Code)

	rec := f.do(http.MethodGet, "/bookings/owner/export?state=WAITING", owner, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, xlsxContentType, rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "bookings_1_WAITING.xlsx")

	book, err := excelize.OpenReader(bytes.NewReader(rec.Body.Bytes()))
	require.NoError(t, err)
	defer book.Close()
	rows, err := book.GetRows("Bookings")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Drill", rows[1][1])

	rec = f.do(http.MethodGet, "/bookings/owner/export?state=NOPE", owner, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestItemsAndComments(t *testing.T) {
	f := newTestServer(t)
	owner := f.createUser("owner")
	other := f.createUser("other")
	item := f.createItem(owner, "Ladder")

	rec := f.do(http.MethodPost, "/items", owner, map[string]any{"name": "Saw", "description": "Sharp"})
	require.Equal(t, http.StatusBadRequest, rec.Code, "available is required")
	assert.Equal(t, "available", decode[[]errorResponse](t, rec)[0].FieldName)

	rec = f.do(http.MethodPatch, fmt.Sprintf("/items/%d", item), other, map[string]any{"name": "Mine"})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = f.do(http.MethodPatch, fmt.Sprintf("/items/%d", item), owner, map[string]any{"available": false})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, false, decode[map[string]any](t, rec)["available"])

	rec = f.do(http.MethodGet, "/items/search?text=ladder", 0, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "[]", rec.Body.String())

	rec = f.do(http.MethodGet, "/items/search?text=", 0, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "[]", rec.Body.String())

	rec = f.do(http.MethodGet, "/items/search?text=x&from=-1", 0, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(http.MethodGet, "/items", owner, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	items := decode[[]map[string]any](t, rec)
	require.Len(t, items, 1)
	assert.Contains(t, items[0], "lastBooking")
	assert.Contains(t, items[0], "comments")

	rec = f.do(http.MethodGet, fmt.Sprintf("/items/%d", item), other, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(http.MethodPost, fmt.Sprintf("/items/%d/comment", item), other, map[string]string{"text": "Nice"})
	assert.Equal(t, http.StatusBadRequest, rec.Code, "never rented")

	rec = f.do(http.MethodPost, fmt.Sprintf("/items/%d/comment", item), other, map[string]string{"text": ""})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestItemRequestEndpoints(t *testing.T) {
	f := newTestServer(t)
	asker := f.createUser("asker")
	owner := f.createUser("owner")

	rec := f.do(http.MethodPost, "/requests", asker, map[string]string{"description": "Need a tent"})
	require.Equal(t, http.StatusOK, rec.Code)
	reqID := decode[struct{ ID int64 }](t, rec).ID

	rec = f.do(http.MethodPost, "/items", owner, map[string]any{
		"name": "Tent", "description": "Two person", "available": true, "requestId": reqID,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(http.MethodGet, fmt.Sprintf("/requests/%d", reqID), owner, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	got := decode[struct {
		Items []struct{ Name string }
	}](t, rec)
	require.Len(t, got.Items, 1)
	assert.Equal(t, "Tent", got.Items[0].Name)

	rec = f.do(http.MethodGet, "/requests/all?from=0&size=5", owner, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]map[string]any](t, rec), 1)

	rec = f.do(http.MethodGet, "/requests/all", asker, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "[]", rec.Body.String())

	rec = f.do(http.MethodGet, "/requests", asker, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]map[string]any](t, rec), 1)

	rec = f.do(http.MethodGet, "/requests/all?size=0", owner, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

type failingPinger struct{}

func (failingPinger) Ping(context.Context) error { return errors.New("down") }

func TestHealthz(t *testing.T) {
	f := newTestServer(t)
	rec := f.do(http.MethodGet, "/healthz", 0, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))

	logger := zerolog.Nop()
	down := NewHTTPServer(config.APIConfig{}, Services{}, failingPinger{}, nil, &logger)
	raw := httptest.NewRecorder()
	down.Handler().ServeHTTP(raw, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, raw.Code)
}

func TestRequestIDIsEchoed(t *testing.T) {
	f := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("X-Request-Id", "abc-123")
	rec := httptest.NewRecorder()
	f.server.Handler().ServeHTTP(rec, req)
	assert.Equal(t, "abc-123", rec.Header().Get("X-Request-Id"))
}

func TestRateLimitByAddress(t *testing.T) {
	f := newFixture(t, config.APIConfig{RateLimit: config.APIRateLimitConfig{RPS: 0.001, Burst: 1}}, nil)

	assert.Equal(t, http.StatusOK, f.do(http.MethodGet, "/healthz", 0, nil).Code)
	assert.Equal(t, http.StatusTooManyRequests, f.do(http.MethodGet, "/healthz", 0, nil).Code)
}

func TestRateLimitByUser(t *testing.T) {
	cfg := config.APIConfig{UserRateLimit: config.APIUserRateLimitConfig{Enabled: true, Requests: 1, WindowSeconds: 60}}
	f := newFixture(t, cfg, repository.NewMemoryRateLimiter())

	assert.Equal(t, http.StatusNotFound, f.do(http.MethodGet, "/bookings", 7, nil).Code)
	assert.Equal(t, http.StatusTooManyRequests, f.do(http.MethodGet, "/bookings", 7, nil).Code)
	assert.Equal(t, http.StatusNotFound, f.do(http.MethodGet, "/bookings", 8, nil).Code)

	// anonymous calls are not counted per user
	assert.Equal(t, http.StatusOK, f.do(http.MethodGet, "/healthz", 0, nil).Code)
	assert.Equal(t, http.StatusOK, f.do(http.MethodGet, "/healthz", 0, nil).Code)
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, statusFor(domain.NotFound("x")))
	assert.Equal(t, http.StatusBadRequest, statusFor(domain.BadRequest("x")))
	assert.Equal(t, http.StatusBadRequest, statusFor(domain.NotAvailable("x")))
	assert.Equal(t, http.StatusConflict, statusFor(domain.Conflict("x")))
	assert.Equal(t, http.StatusInternalServerError, statusFor(errors.New("boom")))
	assert.Equal(t, http.StatusNotFound, statusFor(fmt.Errorf("wrapped: %w", domain.ErrNotFound)))
}

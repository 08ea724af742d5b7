package handler_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Shivanand-hulikatti/event-registration/internal/clock"
	"github.com/Shivanand-hulikatti/event-registration/internal/handler"
	"github.com/Shivanand-hulikatti/event-registration/internal/model"
	"github.com/Shivanand-hulikatti/event-registration/internal/repository/memory"
	"github.com/Shivanand-hulikatti/event-registration/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAPI(t *testing.T, now time.Time) *httptest.Server {
	t.Helper()
	store := memory.New(memory.Options{Timeout: 5 * time.Second})
	clk := clock.NewFixed(now)
	events := service.NewEventService(service.Stores{
		Tx:            store,
		Events:        store.Events(),
		Users:         store.Users(),
		Registrations: store.Registrations(),
	}, clk)
	users := service.NewUserService(store.Users(), clk)

	srv := httptest.NewServer(handler.NewRouter(events, users, nil))
	t.Cleanup(srv.Close)
	return srv
}

func call(t *testing.T, srv *httptest.Server, method, path, body string, out any) int {
	t.Helper()
	req, err := http.NewRequest(method, srv.URL+path, strings.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func TestAPI_RegistrationLifecycle(t *testing.T) {
	t.Parallel()
	srv := newAPI(t, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))

	var event model.Event
	status := call(t, srv, http.MethodPost, "/api/events",
		`{"title":"GopherCon","date":"2025-05-01T09:00:00Z","location":"Austin","capacity":2}`, &event)
	require.Equal(t, http.StatusCreated, status)

	var ada, bob, carol model.User
	require.Equal(t, http.StatusCreated, call(t, srv, http.MethodPost, "/api/users", `{"name":"Ada","email":"ada@example.com"}`, &ada))
	require.Equal(t, http.StatusCreated, call(t, srv, http.MethodPost, "/api/users", `{"name":"Bob","email":"bob@example.com"}`, &bob))
	require.Equal(t, http.StatusCreated, call(t, srv, http.MethodPost, "/api/users", `{"name":"Carol","email":"carol@example.com"}`, &carol))

	var errResp model.ErrorResponse
	assert.Equal(t, http.StatusConflict, call(t, srv, http.MethodPost, "/api/users", `{"name":"Ada2","email":"ADA@example.com"}`, &errResp))
	assert.Equal(t, "email_taken", errResp.Code)

	registerPath := "/api/events/" + event.ID + "/register"
	adaBody := fmt.Sprintf(`{"user_id":%q}`, ada.ID)
	bobBody := fmt.Sprintf(`{"user_id":%q}`, bob.ID)
	carolBody := fmt.Sprintf(`{"user_id":%q}`, carol.ID)

	var reg model.Registration
	require.Equal(t, http.StatusCreated, call(t, srv, http.MethodPost, registerPath, adaBody, &reg))
	assert.Equal(t, ada.ID, reg.UserID)

	// A seat is still free, so the repeat is reported as a duplicate.
	errResp = model.ErrorResponse{}
	assert.Equal(t, http.StatusConflict, call(t, srv, http.MethodPost, registerPath, adaBody, &errResp))
	assert.Equal(t, "already_registered", errResp.Code)

	require.Equal(t, http.StatusCreated, call(t, srv, http.MethodPost, registerPath, bobBody, nil))

	errResp = model.ErrorResponse{}
	assert.Equal(t, http.StatusConflict, call(t, srv, http.MethodPost, registerPath, carolBody, &errResp))
	assert.Equal(t, "event_full", errResp.Code)

	var stats model.EventStats
	require.Equal(t, http.StatusOK, call(t, srv, http.MethodGet, "/api/events/"+event.ID+"/stats", "", &stats))
	assert.Equal(t, model.EventStats{
		EventID:                event.ID,
		Capacity:               2,
		TotalRegistrations:     2,
		RemainingCapacity:      0,
		CapacityUsedPercentage: "100.00%",
	}, stats)

	require.Equal(t, http.StatusOK, call(t, srv, http.MethodDelete, registerPath, adaBody, nil))
	require.Equal(t, http.StatusCreated, call(t, srv, http.MethodPost, registerPath, carolBody, nil))

	var details model.EventDetails
	require.Equal(t, http.StatusOK, call(t, srv, http.MethodGet, "/api/events/"+event.ID, "", &details))
	assert.Equal(t, "GopherCon", details.Title)
	var emails []string
	for _, r := range details.Registrations {
		emails = append(emails, r.Email)
	}
	assert.ElementsMatch(t, []string{"bob@example.com", "carol@example.com"}, emails)

	var registrants []model.Registrant
	require.Equal(t, http.StatusOK, call(t, srv, http.MethodGet, "/api/events/"+event.ID+"/registrations", "", &registrants))
	assert.Len(t, registrants, 2)
}

func TestAPI_CancelThenRegisterSamePair(t *testing.T) {
	t.Parallel()
	srv := newAPI(t, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))

	var event model.Event
	require.Equal(t, http.StatusCreated, call(t, srv, http.MethodPost, "/api/events",
		`{"title":"GopherCon","date":"2025-05-01T09:00:00Z","location":"Austin","capacity":3}`, &event))
	var ada model.User
	require.Equal(t, http.StatusCreated, call(t, srv, http.MethodPost, "/api/users", `{"name":"Ada","email":"ada@example.com"}`, &ada))

	registerPath := "/api/events/" + event.ID + "/register"
	adaBody := fmt.Sprintf(`{"user_id":%q}`, ada.ID)
	total := func() int {
		var stats model.EventStats
		require.Equal(t, http.StatusOK, call(t, srv, http.MethodGet, "/api/events/"+event.ID+"/stats", "", &stats))
		return stats.TotalRegistrations
	}

	before := total()
	require.Equal(t, http.StatusCreated, call(t, srv, http.MethodPost, registerPath, adaBody, nil))
	assert.Equal(t, before+1, total())

	require.Equal(t, http.StatusOK, call(t, srv, http.MethodDelete, registerPath, adaBody, nil))
	assert.Equal(t, before, total())

	require.Equal(t, http.StatusCreated, call(t, srv, http.MethodPost, registerPath, adaBody, nil))
	assert.Equal(t, before+1, total())
}

func TestAPI_UpcomingAndExpired(t *testing.T) {
	t.Parallel()
	now := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
	srv := newAPI(t, now)

	for _, body := range []string{
		`{"title":"A","date":"2025-06-01T00:00:00Z","location":"Berlin","capacity":5}`,
		`{"title":"B","date":"2025-05-02T00:00:00Z","location":"Boston","capacity":5}`,
		`{"title":"C","date":"2025-05-02T00:00:00Z","location":"Austin","capacity":5}`,
	} {
		require.Equal(t, http.StatusCreated, call(t, srv, http.MethodPost, "/api/events", body, nil))
	}

	// Dated exactly now: accepted at creation, but already closed.
	var dallas model.Event
	require.Equal(t, http.StatusCreated, call(t, srv, http.MethodPost, "/api/events",
		`{"title":"D","date":"2025-05-01T00:00:00Z","location":"Dallas","capacity":5}`, &dallas))

	var upcoming []model.Event
	require.Equal(t, http.StatusOK, call(t, srv, http.MethodGet, "/api/events/upcoming", "", &upcoming))
	var locations []string
	for _, e := range upcoming {
		locations = append(locations, e.Location)
	}
	assert.Equal(t, []string{"Austin", "Boston", "Berlin"}, locations)

	var user model.User
	require.Equal(t, http.StatusCreated, call(t, srv, http.MethodPost, "/api/users", `{"name":"Ada","email":"ada@example.com"}`, &user))

	var errResp model.ErrorResponse
	status := call(t, srv, http.MethodPost, "/api/events/"+dallas.ID+"/register", fmt.Sprintf(`{"user_id":%q}`, user.ID), &errResp)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "event_expired", errResp.Code)
}

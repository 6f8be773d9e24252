package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/jjacobsen/almanak/internal/eventservice"
	"github.com/jjacobsen/almanak/internal/models"
	"github.com/jjacobsen/almanak/internal/notify"
	"github.com/jjacobsen/almanak/internal/remote"
	"github.com/jjacobsen/almanak/internal/testutil"
)

type stubScheduler struct {
	scheduled []uuid.UUID
	cancelled []uuid.UUID
}

func (s *stubScheduler) Schedule(r notify.Reminder) error {
	s.scheduled = append(s.scheduled, r.ID)
	return nil
}

func (s *stubScheduler) Cancel(id uuid.UUID) {
	s.cancelled = append(s.cancelled, id)
}

type testEnv struct {
	server      *httptest.Server
	holidayHits *atomic.Int32
	dayInfoHits *atomic.Int32
}

// newTestEnv wires a full API over a temp database with stub remote
// endpoints. The day-info clock is pinned to clock.
func newTestEnv(t *testing.T, clock time.Time) *testEnv {
	t.Helper()
	db := testutil.TestDB(t)

	var holidayHits, dayInfoHits atomic.Int32
	holidaySrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		holidayHits.Add(1)
		_, _ = w.Write([]byte(`{"days": [
			{"date": "2025-12-25", "events": [{"danishShort": "Juledag", "holliday": true}]}
		]}`))
	}))
	t.Cleanup(holidaySrv.Close)
	dayInfoSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		dayInfoHits.Add(1)
		_, _ = w.Write([]byte(`{
			"date": "2025-01-06",
			"astronomy": {"sunrise": "08:37", "sunset": "15:55"},
			"weather": {"summary": [{"parameter": "Temperatur", "summaryValue": "2-6"}]}
		}`))
	}))
	t.Cleanup(dayInfoSrv.Close)

	holidays := remote.NewHolidayService(db, holidaySrv.URL+"/", holidaySrv.Client(), nil)
	dayInfo := remote.NewDayInfoService(db, dayInfoSrv.URL+"/", dayInfoSrv.Client(), nil).
		WithClock(func() time.Time { return clock })

	svc, err := eventservice.NewService(db, &stubScheduler{}, nil, nil)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	router := NewRouter(svc, holidays, dayInfo, false, "", nil)
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	return &testEnv{server: srv, holidayHits: &holidayHits, dayInfoHits: &dayInfoHits}
}

func (env *testEnv) do(t *testing.T, method, path string, body any) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req, err := http.NewRequest(method, env.server.URL+path, &buf)
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := env.server.Client().Do(req)
	if err != nil {
		t.Fatal(err)
	}
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var v T
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return v
}

func standupBody() map[string]any {
	return map[string]any{
		"title":      "Standup",
		"details":    "weekly sync",
		"start":      time.Date(2025, time.January, 6, 9, 0, 0, 0, time.Local).Format(time.RFC3339),
		"color":      "blue",
		"recurrence": "weekly",
	}
}

func TestCreateAndListEvents(t *testing.T) {
	env := newTestEnv(t, time.Date(2025, time.January, 10, 12, 0, 0, 0, time.Local))

	resp := env.do(t, http.MethodPost, "/events", standupBody())
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create status = %d", resp.StatusCode)
	}
	created := decode[models.Event](t, resp)
	if created.Title != "Standup" || created.Recurrence != models.RecurrenceWeekly {
		t.Errorf("created = %+v", created)
	}

	resp = env.do(t, http.MethodGet, "/events", nil)
	list := decode[EventListResponse](t, resp)
	if list.Total != 1 || len(list.Events) != 1 {
		t.Errorf("list = %+v", list)
	}
}

func TestCreateEvent_Validation(t *testing.T) {
	env := newTestEnv(t, time.Now())

	resp := env.do(t, http.MethodPost, "/events", map[string]any{"details": "no title"})
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestCreateEvent_InvalidColorDefaultsToBlue(t *testing.T) {
	env := newTestEnv(t, time.Now())

	body := standupBody()
	body["color"] = "chartreuse"
	resp := env.do(t, http.MethodPost, "/events", body)
	created := decode[models.Event](t, resp)
	if created.Color != models.ColorBlue {
		t.Errorf("color = %q, want blue default", created.Color)
	}
}

func TestDayView_ComposesEventsHolidayAndWeather(t *testing.T) {
	clock := time.Date(2026, time.January, 2, 12, 0, 0, 0, time.Local)
	env := newTestEnv(t, clock)

	resp := env.do(t, http.MethodPost, "/events", standupBody())
	resp.Body.Close()

	// Warm the holiday cache through the API's collaborator.
	resp = env.do(t, http.MethodGet, "/days/2025-01-06", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("day view status = %d", resp.StatusCode)
	}
	view := decode[DayResponse](t, resp)

	if len(view.Events) != 1 || view.Events[0].Title != "Standup" {
		t.Fatalf("day events = %+v", view.Events)
	}
	if !view.Events[0].Finished {
		t.Error("past occurrence should be finished")
	}
	if view.Holiday != nil {
		t.Errorf("holiday = %+v, want absent without preload", view.Holiday)
	}
	if view.DayInfo == nil {
		t.Fatal("day info missing for a past day")
	}
	if view.DayInfo.Sunrise != "08:37" || view.DayInfo.TempMin != 2 || view.DayInfo.TempMax != 6 {
		t.Errorf("day info = %+v", view.DayInfo)
	}
	if env.dayInfoHits.Load() != 1 {
		t.Errorf("day info fetches = %d, want 1", env.dayInfoHits.Load())
	}

	// Second view is served from the local cache.
	resp = env.do(t, http.MethodGet, "/days/2025-01-06", nil)
	resp.Body.Close()
	if env.dayInfoHits.Load() != 1 {
		t.Errorf("day info fetches after cached view = %d, want 1", env.dayInfoHits.Load())
	}
}

func TestDayView_FutureDayHasNoWeather(t *testing.T) {
	clock := time.Date(2025, time.January, 2, 12, 0, 0, 0, time.Local)
	env := newTestEnv(t, clock)

	resp := env.do(t, http.MethodGet, "/days/2025-01-05", nil)
	view := decode[DayResponse](t, resp)
	if view.DayInfo != nil {
		t.Errorf("day info for a future day = %+v, want absent", view.DayInfo)
	}
	if env.dayInfoHits.Load() != 0 {
		t.Errorf("network calls for a future day = %d, want 0", env.dayInfoHits.Load())
	}
}

func TestSplitRoundTripOverHTTP(t *testing.T) {
	env := newTestEnv(t, time.Now())

	resp := env.do(t, http.MethodPost, "/events", standupBody())
	created := decode[models.Event](t, resp)

	occurrence := time.Date(2025, time.January, 13, 9, 0, 0, 0, time.Local)
	resp = env.do(t, http.MethodPost, "/events/"+created.ID.String()+"/split", map[string]any{
		"occurrence": occurrence.Format(time.RFC3339),
		"title":      "Standup (moved)",
		"color":      "green",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("split status = %d", resp.StatusCode)
	}
	clone := decode[models.Event](t, resp)
	if clone.Recurrence != models.RecurrenceNone || clone.ID == created.ID {
		t.Errorf("clone = %+v", clone)
	}

	// Split day: only the clone shows.
	resp = env.do(t, http.MethodGet, "/days/2025-01-13", nil)
	view := decode[DayResponse](t, resp)
	if len(view.Events) != 1 || view.Events[0].ID != clone.ID {
		t.Errorf("split-day events = %+v", view.Events)
	}

	// Following week: only the original series.
	resp = env.do(t, http.MethodGet, "/days/2025-01-20", nil)
	view = decode[DayResponse](t, resp)
	if len(view.Events) != 1 || view.Events[0].ID != created.ID {
		t.Errorf("next-week events = %+v", view.Events)
	}
}

func TestDeleteOccurrenceOverHTTP(t *testing.T) {
	env := newTestEnv(t, time.Now())

	resp := env.do(t, http.MethodPost, "/events", standupBody())
	created := decode[models.Event](t, resp)

	resp = env.do(t, http.MethodDelete, "/events/"+created.ID.String()+"/occurrences/2025-01-13", nil)
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("delete occurrence status = %d", resp.StatusCode)
	}
	resp.Body.Close()

	resp = env.do(t, http.MethodGet, "/days/2025-01-13", nil)
	view := decode[DayResponse](t, resp)
	if len(view.Events) != 0 {
		t.Errorf("suppressed day events = %+v", view.Events)
	}

	resp = env.do(t, http.MethodGet, "/days/2025-01-20", nil)
	view = decode[DayResponse](t, resp)
	if len(view.Events) != 1 {
		t.Errorf("later occurrence missing: %+v", view.Events)
	}
}

func TestUpdateClearsExceptionsOverHTTP(t *testing.T) {
	env := newTestEnv(t, time.Now())

	resp := env.do(t, http.MethodPost, "/events", standupBody())
	created := decode[models.Event](t, resp)

	resp = env.do(t, http.MethodDelete, "/events/"+created.ID.String()+"/occurrences/2025-01-13", nil)
	resp.Body.Close()

	resp = env.do(t, http.MethodPut, "/events/"+created.ID.String(), standupBody())
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("update status = %d", resp.StatusCode)
	}
	updated := decode[models.Event](t, resp)
	if len(updated.ExceptionDates) != 0 {
		t.Errorf("exceptions after series update = %+v", updated.ExceptionDates)
	}

	resp = env.do(t, http.MethodGet, "/days/2025-01-13", nil)
	view := decode[DayResponse](t, resp)
	if len(view.Events) != 1 {
		t.Errorf("formerly excepted day events = %+v, want the series back", view.Events)
	}
}

func TestDeleteAndResetOverHTTP(t *testing.T) {
	env := newTestEnv(t, time.Now())

	resp := env.do(t, http.MethodPost, "/events", standupBody())
	created := decode[models.Event](t, resp)

	resp = env.do(t, http.MethodDelete, "/events/"+created.ID.String(), nil)
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("delete status = %d", resp.StatusCode)
	}
	resp.Body.Close()

	resp = env.do(t, http.MethodGet, "/events/"+created.ID.String(), nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("get after delete = %d, want 404", resp.StatusCode)
	}
	resp.Body.Close()

	resp = env.do(t, http.MethodPost, "/events", standupBody())
	resp.Body.Close()
	resp = env.do(t, http.MethodDelete, "/events", nil)
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("reset status = %d", resp.StatusCode)
	}
	resp.Body.Close()

	resp = env.do(t, http.MethodGet, "/events", nil)
	list := decode[EventListResponse](t, resp)
	if list.Total != 0 {
		t.Errorf("events after reset = %d, want 0", list.Total)
	}
}

func TestAuthMiddleware(t *testing.T) {
	db := testutil.TestDB(t)
	svc, err := eventservice.NewService(db, &stubScheduler{}, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	holidays := remote.NewHolidayService(db, "http://unused.invalid/", nil, nil)
	dayInfo := remote.NewDayInfoService(db, "http://unused.invalid/", nil, nil)

	srv := httptest.NewServer(NewRouter(svc, holidays, dayInfo, true, "sekret", nil))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/events")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("unauthenticated status = %d, want 401", resp.StatusCode)
	}

	req, _ := http.NewRequest(http.MethodGet, srv.URL+"/events", nil)
	req.Header.Set("Authorization", "Bearer sekret")
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("authenticated status = %d, want 200", resp.StatusCode)
	}
}

func TestInvalidIDAndDate(t *testing.T) {
	env := newTestEnv(t, time.Now())

	for _, tc := range []struct {
		method, path string
	}{
		{http.MethodGet, "/events/not-a-uuid"},
		{http.MethodDelete, "/events/not-a-uuid"},
		{http.MethodGet, "/days/13-01-2025"},
		{http.MethodDelete, fmt.Sprintf("/events/%s/occurrences/January", uuid.New())},
	} {
		resp := env.do(t, tc.method, tc.path, nil)
		resp.Body.Close()
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("%s %s = %d, want 400", tc.method, tc.path, resp.StatusCode)
		}
	}
}

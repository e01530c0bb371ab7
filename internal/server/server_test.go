package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abelbrown/peopledesk/internal/cache"
	"github.com/abelbrown/peopledesk/internal/collection"
	"github.com/abelbrown/peopledesk/internal/hr"
	"github.com/abelbrown/peopledesk/internal/store"
)

var testNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

type fixture struct {
	svc     *Service
	st      *store.Store
	handler http.Handler
}

func newFixture(t *testing.T, c *cache.Cache, mutate func(*Config)) *fixture {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	_, err = Seed(context.Background(), st, testNow)
	require.NoError(t, err)

	svc := NewService(st, c)
	svc.now = func() time.Time { return testNow }
	n := 0
	svc.newID = func() string { n++; return fmt.Sprintf("new-%d", n) }

	cfg := Config{RequestTimeout: 5 * time.Second}
	if mutate != nil {
		mutate(&cfg)
	}
	return &fixture{svc: svc, st: st, handler: NewRouter(cfg, svc)}
}

func (f *fixture) do(t *testing.T, method, target, body string, header ...string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	return rec
}

func decodePage(t *testing.T, rec *httptest.ResponseRecorder) collection.Page[map[string]any] {
	t.Helper()
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var p collection.Page[map[string]any]
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &p))
	return p
}

func message(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var m messageResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &m), rec.Body.String())
	return m.Message
}

func TestListPagination(t *testing.T) {
	f := newFixture(t, nil, nil)

	p := decodePage(t, f.do(t, http.MethodGet, "/api/employees?page=2&limit=5", ""))
	assert.Len(t, p.Data, 5)
	assert.Equal(t, collection.Pagination{Page: 2, Limit: 5, TotalCount: 12, TotalPages: 3}, p.Pagination)

	last := decodePage(t, f.do(t, http.MethodGet, "/api/employees?page=3&limit=5", ""))
	assert.Len(t, last.Data, 2)

	// newest first
	first := decodePage(t, f.do(t, http.MethodGet, "/api/employees?limit=1", ""))
	assert.Equal(t, "Nadia Petrova", first.Data[0]["name"])
}

func TestEmptyPageHasEmptyData(t *testing.T) {
	f := newFixture(t, nil, nil)

	rec := f.do(t, http.MethodGet, "/api/employees/search?query=nobody", "")
	assert.Contains(t, rec.Body.String(), `"data":[]`)
	p := decodePage(t, rec)
	assert.Equal(t, 0, p.Pagination.TotalPages)
}

func TestSearch(t *testing.T) {
	f := newFixture(t, nil, nil)

	p := decodePage(t, f.do(t, http.MethodGet, "/api/employees/search?query=AHMED&limit=10", ""))
	require.Len(t, p.Data, 2)
	assert.Equal(t, 2, p.Pagination.TotalCount)
	for _, row := range p.Data {
		assert.Contains(t, row["name"], "Ahmed")
	}
}

func TestFilters(t *testing.T) {
	f := newFixture(t, nil, nil)

	p := decodePage(t, f.do(t, http.MethodGet, "/api/leave?filter=pending&limit=20", ""))
	assert.Equal(t, 4, p.Pagination.TotalCount)
	for _, row := range p.Data {
		assert.Equal(t, "pending", row["status"])
	}

	both := decodePage(t, f.do(t, http.MethodGet, "/api/leave?filter=pending&filter=approved", ""))
	assert.Equal(t, 6, both.Pagination.TotalCount)

	// complaints filter through the search endpoint with an empty term
	open := decodePage(t, f.do(t, http.MethodGet, "/api/complaints/search?query=&filter=open", ""))
	assert.Equal(t, 4, open.Pagination.TotalCount)

	rec := f.do(t, http.MethodGet, "/api/leave?filter=lost", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, `Unknown filter "lost"`, message(t, rec))
}

func TestScope(t *testing.T) {
	f := newFixture(t, nil, nil)
	emp := seedID(hr.KindEmployees, 0)
	from := testNow.AddDate(0, 0, -1).Format("2006-01-02")
	to := testNow.Format("2006-01-02")

	q := url.Values{"employeeId": {emp}, "from": {from}, "to": {to}}
	p := decodePage(t, f.do(t, http.MethodGet, "/api/attendance?"+q.Encode(), ""))
	assert.Equal(t, 2, p.Pagination.TotalCount)
	for _, row := range p.Data {
		assert.Equal(t, emp, row["employeeId"])
	}

	// perks are not per-employee; the scope is ignored
	perks := decodePage(t, f.do(t, http.MethodGet, "/api/perks?employeeId="+emp, ""))
	assert.Equal(t, 5, perks.Pagination.TotalCount)
}

func TestParsePageRequest(t *testing.T) {
	tests := []struct {
		name    string
		query   string
		wantErr string
		check   func(t *testing.T, r PageRequest)
	}{
		{name: "defaults", query: "", check: func(t *testing.T, r PageRequest) {
			assert.Equal(t, 1, r.Page)
			assert.Equal(t, defaultLimit, r.Limit)
		}},
		{name: "zero page", query: "page=0", wantErr: "Invalid page"},
		{name: "garbage page", query: "page=x", wantErr: "Invalid page"},
		{name: "negative limit", query: "limit=-1", wantErr: "Invalid limit"},
		{name: "clamped limit", query: "limit=500", check: func(t *testing.T, r PageRequest) {
			assert.Equal(t, maxLimit, r.Limit)
		}},
		{name: "filters deduped and sorted", query: "filter=rejected&filter=pending&filter=rejected", check: func(t *testing.T, r PageRequest) {
			assert.Equal(t, []string{"pending", "rejected"}, r.Filters)
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := url.ParseQuery(tt.query)
			require.NoError(t, err)
			r, err := ParsePageRequest(hr.KindLeave, q, false)
			if tt.wantErr != "" {
				var apiErr *Error
				require.ErrorAs(t, err, &apiErr)
				assert.Equal(t, tt.wantErr, apiErr.Message)
				return
			}
			require.NoError(t, err)
			tt.check(t, r)
		})
	}
}

func TestCreate(t *testing.T) {
	f := newFixture(t, nil, nil)
	emp := seedID(hr.KindEmployees, 0)

	body := fmt.Sprintf(`{"employeeId":%q,"type":"annual","startDate":"2026-04-01","endDate":"2026-04-03","reason":"Trip"}`, emp)
	rec := f.do(t, http.MethodPost, "/api/leave", body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, "Leave request submitted", message(t, rec))

	rec = f.do(t, http.MethodGet, "/api/leave/new-1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var got hr.Leave
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "Ahmed Hassan", got.EmployeeName)
	assert.Equal(t, "pending", got.Status)
	assert.True(t, testNow.Equal(got.CreatedAt))

	p := decodePage(t, f.do(t, http.MethodGet, "/api/leave?filter=pending", ""))
	assert.Equal(t, 5, p.Pagination.TotalCount)
	assert.Equal(t, "new-1", p.Data[0]["id"])
}

func TestCreateAttendanceLate(t *testing.T) {
	f := newFixture(t, nil, nil)
	emp := seedID(hr.KindEmployees, 1)

	body := fmt.Sprintf(`{"employeeId":%q,"date":"2026-03-11","checkIn":"09:15"}`, emp)
	rec := f.do(t, http.MethodPost, "/api/attendance", body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = f.do(t, http.MethodGet, "/api/attendance/new-1", "")
	assert.Contains(t, rec.Body.String(), `"status":"late"`)
}

func TestCreateRejected(t *testing.T) {
	f := newFixture(t, nil, nil)
	emp := seedID(hr.KindEmployees, 0)
	inactive := seedID(hr.KindEmployees, len(seedEmployees)-1)

	tests := []struct {
		name   string
		path   string
		body   string
		status int
		msg    string
	}{
		{"end before start", "/api/leave",
			fmt.Sprintf(`{"employeeId":%q,"type":"annual","startDate":"2026-04-03","endDate":"2026-04-01"}`, emp),
			http.StatusBadRequest, "endDate must not be before the start date"},
		{"missing subject", "/api/complaints",
			fmt.Sprintf(`{"employeeId":%q,"description":"Something long enough"}`, emp),
			http.StatusBadRequest, "subject is required"},
		{"unknown employee", "/api/overtime",
			`{"employeeId":"ghost","date":"2026-03-01","hours":2,"reason":"Deploy"}`,
			http.StatusBadRequest, "Unknown employee"},
		{"inactive employee", "/api/overtime",
			fmt.Sprintf(`{"employeeId":%q,"date":"2026-03-01","hours":2,"reason":"Deploy"}`, inactive),
			http.StatusBadRequest, "Employee is inactive"},
		{"unknown field", "/api/perks", `{"title":"Bikes","category":"travel","colour":"red"}`,
			http.StatusBadRequest, "Malformed request body"},
		{"no form", "/api/payroll", `{}`, http.StatusBadRequest, "Payroll cannot be created"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := f.do(t, http.MethodPost, tt.path, tt.body)
			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.msg, message(t, rec))
		})
	}
}

func TestActTransitions(t *testing.T) {
	f := newFixture(t, nil, nil)
	pending := seedID(hr.KindLeave, 0)

	rec := f.do(t, http.MethodPost, "/api/leave/"+pending+"/approve", "{}")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Leave approved", message(t, rec))

	rec = f.do(t, http.MethodPost, "/api/leave/"+pending+"/approve", "{}")
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "Cannot approve: status is approved", message(t, rec))

	// approved leave can still be cancelled
	rec = f.do(t, http.MethodPost, "/api/leave/"+pending+"/cancel", "{}")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(t, http.MethodPost, "/api/leave/missing/approve", "{}")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Not found", message(t, rec))

	rec = f.do(t, http.MethodPost, "/api/leave/"+pending+"/teleport", "{}")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, `Unknown action "teleport"`, message(t, rec))

	rec = f.do(t, http.MethodGet, "/api/leave/"+pending, "")
	assert.Contains(t, rec.Body.String(), `"status":"cancelled"`)
}

func TestInvalidTransitionIsSentinel(t *testing.T) {
	f := newFixture(t, nil, nil)
	rejected := seedID(hr.KindLeave, 3)

	_, err := f.svc.Act(context.Background(), hr.KindLeave, rejected, "approve")
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestSelectPlanDemotesOthers(t *testing.T) {
	f := newFixture(t, nil, nil)

	rec := f.do(t, http.MethodPost, "/api/plans/"+seedID(hr.KindPlans, 0)+"/select", "{}")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Plan selected", message(t, rec))

	selected := decodePage(t, f.do(t, http.MethodGet, "/api/plans?filter=selected", ""))
	require.Len(t, selected.Data, 1)
	assert.Equal(t, "Starter", selected.Data[0]["name"])

	rec = f.do(t, http.MethodGet, "/api/plans/"+seedID(hr.KindPlans, 1), "")
	assert.Contains(t, rec.Body.String(), `"status":"available"`)
}

func TestDelete(t *testing.T) {
	f := newFixture(t, nil, nil)
	id := seedID(hr.KindPerks, 0)

	rec := f.do(t, http.MethodDelete, "/api/perks/"+id, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Perk deleted", message(t, rec))

	rec = f.do(t, http.MethodGet, "/api/perks/"+id, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = f.do(t, http.MethodDelete, "/api/perks/"+id, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = f.do(t, http.MethodDelete, "/api/payroll/"+seedID(hr.KindPayroll, 101), "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Payroll records cannot be deleted", message(t, rec))
}

func TestStats(t *testing.T) {
	f := newFixture(t, nil, nil)

	rec := f.do(t, http.MethodGet, "/api/stats/perks", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var s Stats
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &s))
	assert.Equal(t, Stats{Kind: hr.KindPerks, Total: 5, ByStatus: map[string]int{"active": 4, "archived": 1}}, s)

	_, err := f.svc.Delete(context.Background(), hr.KindPerks, seedID(hr.KindPerks, 4))
	require.NoError(t, err)
	s, err = f.svc.Stats(context.Background(), hr.KindPerks)
	require.NoError(t, err)
	assert.Equal(t, 0, s.ByStatus["archived"])
}

func TestUnknownKind(t *testing.T) {
	f := newFixture(t, nil, nil)

	for _, path := range []string{"/api/widgets", "/api/widgets/search", "/api/stats/widgets"} {
		rec := f.do(t, http.MethodGet, path, "")
		assert.Equal(t, http.StatusNotFound, rec.Code, path)
		assert.Equal(t, "Unknown collection", message(t, rec), path)
	}
}

func TestRateLimited(t *testing.T) {
	f := newFixture(t, nil, func(c *Config) { c.RateLimit = 2 })

	for i := 0; i < 2; i++ {
		assert.Equal(t, http.StatusOK, f.do(t, http.MethodGet, "/api/perks", "").Code)
	}
	rec := f.do(t, http.MethodGet, "/api/perks/search?query=gym", "")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "Rate limited", message(t, rec))
}

func TestBearerToken(t *testing.T) {
	f := newFixture(t, nil, func(c *Config) { c.Token = "s3cret" })

	rec := f.do(t, http.MethodGet, "/api/perks", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Unauthorized", message(t, rec))

	rec = f.do(t, http.MethodGet, "/api/perks", "", "Authorization", "Bearer s3cret")
	assert.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, http.StatusOK, f.do(t, http.MethodGet, "/healthz", "").Code)
}

func TestSecureHeaders(t *testing.T) {
	f := newFixture(t, nil, nil)

	rec := f.do(t, http.MethodGet, "/healthz", "")
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
}

func TestCachedPagesInvalidatedByMutation(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	f := newFixture(t, cache.New(client, time.Minute), nil)
	ctx := context.Background()

	before := decodePage(t, f.do(t, http.MethodGet, "/api/perks", ""))
	assert.Equal(t, 5, before.Pagination.TotalCount)

	// a write that bypasses the service is invisible until the next bump
	d, err := toDoc(hr.KindPerks, &hr.Perk{ID: "direct", Title: "Sneaky", Category: "other", Status: "active"})
	require.NoError(t, err)
	require.NoError(t, f.st.Put(ctx, d))
	cached := decodePage(t, f.do(t, http.MethodGet, "/api/perks", ""))
	assert.Equal(t, 5, cached.Pagination.TotalCount)

	rec := f.do(t, http.MethodPost, "/api/perks/direct/archive", "{}")
	require.Equal(t, http.StatusOK, rec.Code)
	after := decodePage(t, f.do(t, http.MethodGet, "/api/perks", ""))
	assert.Equal(t, 6, after.Pagination.TotalCount)
}

func TestCacheOutageDegradesToStore(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	f := newFixture(t, cache.New(client, time.Minute), nil)
	mr.Close()

	p := decodePage(t, f.do(t, http.MethodGet, "/api/perks", ""))
	assert.Equal(t, 5, p.Pagination.TotalCount)

	rec := f.do(t, http.MethodDelete, "/api/perks/"+seedID(hr.KindPerks, 0), "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestSeedIfEmpty(t *testing.T) {
	st, err := store.Open(filepath.Join(t.TempDir(), "seed.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	svc := NewService(st, nil)
	ctx := context.Background()

	n, err := SeedIfEmpty(ctx, svc)
	require.NoError(t, err)
	assert.Equal(t, 109, n)

	n, err = SeedIfEmpty(ctx, svc)
	require.NoError(t, err)
	assert.Zero(t, n)

	total, err := st.Total(ctx)
	require.NoError(t, err)
	assert.Equal(t, 109, total)
}

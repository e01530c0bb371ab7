package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abelbrown/peopledesk/internal/collection"
	"github.com/abelbrown/peopledesk/internal/hr"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return New(Options{BaseURL: srv.URL + "/", Token: "tok"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestListSendsPageFiltersAndScope(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/leave", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "2", q.Get("page"))
		assert.Equal(t, "5", q.Get("limit"))
		assert.Equal(t, []string{"approved", "pending"}, q["filter"])
		assert.Equal(t, "e-7", q.Get("employeeId"))
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))

		writeJSON(w, http.StatusOK, collection.Page[hr.Leave]{
			Data:       []hr.Leave{{ID: "l-1", EmployeeName: "Sara Noor", Status: "pending"}},
			Pagination: collection.Pagination{Page: 2, Limit: 5, TotalCount: 6, TotalPages: 2},
		})
	})

	res := NewResource[hr.Leave](c, hr.KindLeave)
	page, err := res.List(context.Background(), collection.ListParams{
		Page: 2, Limit: 5, Filters: []string{"approved", "pending"}, Scope: collection.Scope{"employeeId": "e-7"},
	})
	require.NoError(t, err)
	require.Len(t, page.Data, 1)
	assert.Equal(t, "Sara Noor", page.Data[0].EmployeeName)
	assert.Equal(t, 2, page.Pagination.TotalPages)
}

func TestSearchSendsQuery(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/employees/search", r.URL.Path)
		assert.Equal(t, "ahmed", r.URL.Query().Get("query"))
		writeJSON(w, http.StatusOK, collection.Page[hr.Employee]{Pagination: collection.Pagination{Page: 1, Limit: 5}})
	})

	page, err := NewResource[hr.Employee](c, hr.KindEmployees).Search(context.Background(), collection.SearchParams{Query: "ahmed", Page: 1, Limit: 5})
	require.NoError(t, err)
	assert.Empty(t, page.Data)
}

func TestErrorCarriesServerMessage(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusTooManyRequests, map[string]string{"message": "Rate limited"})
	})

	_, err := NewResource[hr.Leave](c, hr.KindLeave).Search(context.Background(), collection.SearchParams{Query: "x", Page: 1, Limit: 5})
	require.Error(t, err)

	var apiErr *Error
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusTooManyRequests, apiErr.Status)
	assert.Equal(t, "Rate limited", UserMessage(err, "Something went wrong"))
	assert.Equal(t, "Rate limited", collection.ErrorMessage(err))
	assert.True(t, IsStatus(err, http.StatusTooManyRequests))
}

func TestErrorWithoutMessageFallsBack(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream exploded", http.StatusBadGateway)
	})

	_, err := c.Delete(context.Background(), hr.KindPerks, "p-1")
	require.Error(t, err)
	assert.Equal(t, "Something went wrong", UserMessage(err, "Something went wrong"))
	assert.Contains(t, err.Error(), "502")
}

func TestMutations(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/api/overtime":
			var f hr.OvertimeForm
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&f))
			assert.Equal(t, 2.5, f.Hours)
			writeJSON(w, http.StatusCreated, map[string]string{"message": "Overtime requested"})
		case r.Method == http.MethodPost && r.URL.Path == "/api/overtime/o-1/cancel":
			writeJSON(w, http.StatusOK, map[string]string{"message": "Overtime request cancelled"})
		case r.Method == http.MethodDelete && r.URL.Path == "/api/complaints/c-1":
			writeJSON(w, http.StatusOK, map[string]string{"message": "Complaint deleted"})
		default:
			t.Errorf("unexpected %s %s", r.Method, r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	})
	ctx := context.Background()

	msg, err := c.Create(ctx, hr.KindOvertime, hr.OvertimeForm{EmployeeID: "e-1", Date: "2026-10-01", Hours: 2.5, Reason: "deploy"})
	require.NoError(t, err)
	assert.Equal(t, "Overtime requested", msg)

	meta, _ := hr.MetaFor(hr.KindOvertime)
	cancel, _ := meta.Action("cancel")
	msg, err = c.Run(ctx, hr.KindOvertime, "o-1", cancel)
	require.NoError(t, err)
	assert.Equal(t, "Overtime request cancelled", msg)

	cm, _ := hr.MetaFor(hr.KindComplaints)
	del, _ := cm.Action("delete")
	msg, err = c.Run(ctx, hr.KindComplaints, "c-1", del)
	require.NoError(t, err)
	assert.Equal(t, "Complaint deleted", msg)
	assert.Equal(t, int32(3), calls.Load())
}

func TestSummaryFetchesEveryKind(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		kind := r.URL.Path[len("/api/stats/"):]
		writeJSON(w, http.StatusOK, Stats{Kind: hr.Kind(kind), Total: len(kind), ByStatus: map[string]int{"x": len(kind)}})
	})

	got, err := c.Summary(context.Background(), hr.Kinds()...)
	require.NoError(t, err)
	require.Len(t, got, len(hr.Kinds()))
	assert.Equal(t, len("overtime"), got[hr.KindOvertime].Total)
	assert.True(t, got[hr.KindLeave].Equal(Stats{Total: 5, ByStatus: map[string]int{"x": 5}}))
}

func TestSummaryFailsOnFirstError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/stats/payroll" {
			writeJSON(w, http.StatusForbidden, map[string]string{"message": "Not allowed"})
			return
		}
		writeJSON(w, http.StatusOK, Stats{})
	})

	_, err := c.Summary(context.Background(), hr.Kinds()...)
	require.Error(t, err)
	assert.Equal(t, "Not allowed", UserMessage(err, "fallback"))
}

func TestCancelledContext(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, Stats{})
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.Stats(ctx, hr.KindLeave)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

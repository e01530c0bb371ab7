package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/abelbrown/peopledesk/internal/cache"
	"github.com/abelbrown/peopledesk/internal/collection"
	"github.com/abelbrown/peopledesk/internal/hr"
	"github.com/abelbrown/peopledesk/internal/logging"
	"github.com/abelbrown/peopledesk/internal/store"
)

const (
	defaultLimit = 10
	maxLimit     = 100

	// Check-ins after this time are recorded as late.
	lateAfter = "09:00"
)

// Service applies the HR rules on top of the document store.
type Service struct {
	store *store.Store
	cache *cache.Cache
	now   func() time.Time
	newID func() string
}

// NewService wires a service. c may be nil to run without a cache.
func NewService(st *store.Store, c *cache.Cache) *Service {
	return &Service{store: st, cache: c, now: time.Now, newID: uuid.NewString}
}

// PageRequest is a parsed list or search request.
type PageRequest struct {
	Kind       hr.Kind
	Search     bool
	Query      string
	Page       int
	Limit      int
	Filters    []string
	EmployeeID string
	From, To   string
}

// ParsePageRequest reads page, limit, filter and scope parameters. Scope
// parameters a kind does not support are ignored.
func ParsePageRequest(kind hr.Kind, q url.Values, search bool) (PageRequest, error) {
	meta, ok := hr.MetaFor(kind)
	if !ok {
		return PageRequest{}, &Error{Status: http.StatusNotFound, Message: "Unknown collection"}
	}
	req := PageRequest{Kind: kind, Search: search, Page: 1, Limit: defaultLimit}

	var err error
	if req.Page, err = positive(q.Get("page"), 1); err != nil {
		return PageRequest{}, badRequest("Invalid page")
	}
	if req.Limit, err = positive(q.Get("limit"), defaultLimit); err != nil {
		return PageRequest{}, badRequest("Invalid limit")
	}
	req.Limit = min(req.Limit, maxLimit)

	for _, f := range q["filter"] {
		if !slices.Contains(meta.Statuses, f) {
			return PageRequest{}, badRequest(fmt.Sprintf("Unknown filter %q", f))
		}
		if !slices.Contains(req.Filters, f) {
			req.Filters = append(req.Filters, f)
		}
	}
	slices.Sort(req.Filters)

	if search {
		req.Query = strings.TrimSpace(q.Get("query"))
	}
	if meta.PerEmployee {
		req.EmployeeID = q.Get("employeeId")
	}
	if meta.Dated {
		req.From, req.To = q.Get("from"), q.Get("to")
	}
	return req, nil
}

func positive(raw string, def int) (int, error) {
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("not a positive integer: %q", raw)
	}
	return n, nil
}

func (p PageRequest) cacheKey() string {
	v := url.Values{}
	v.Set("page", strconv.Itoa(p.Page))
	v.Set("limit", strconv.Itoa(p.Limit))
	v["filter"] = p.Filters
	v.Set("query", strings.ToLower(p.Query))
	v.Set("employeeId", p.EmployeeID)
	v.Set("from", p.From)
	v.Set("to", p.To)
	return v.Encode()
}

// Page is the wire shape of every list and search response.
type Page = collection.Page[json.RawMessage]

// Page returns one page of a listing or search, through the cache when one
// is configured. A cache failure degrades to a direct read.
func (s *Service) Page(ctx context.Context, req PageRequest) (Page, error) {
	mode := "list"
	if req.Search {
		mode = "search"
	}

	var (
		loaded  *Page
		loadErr error
	)
	loader := func(ctx context.Context) (any, error) {
		p, err := s.load(ctx, req)
		if err != nil {
			loadErr = err
			return nil, err
		}
		loaded = &p
		return p, nil
	}

	key, err := s.cache.BuildKey(ctx, string(req.Kind), mode, req.cacheKey())
	if err == nil {
		var out Page
		_, err = s.cache.FetchJSON(ctx, key, &out, loader)
		switch {
		case loadErr != nil:
			return Page{}, loadErr
		case err == nil:
			return out, nil
		case loaded != nil:
			logging.Warn("cache write failed", "kind", req.Kind, "err", err)
			return *loaded, nil
		}
	}
	logging.Warn("cache unavailable", "kind", req.Kind, "err", err)
	return s.load(ctx, req)
}

func (s *Service) load(ctx context.Context, req PageRequest) (Page, error) {
	pg := collection.NewPagination(req.Page, req.Limit, 0)
	docs, total, err := s.store.List(ctx, store.Query{
		Kind:       string(req.Kind),
		Statuses:   req.Filters,
		EmployeeID: req.EmployeeID,
		From:       req.From,
		To:         req.To,
		Text:       req.Query,
		Offset:     pg.Offset(),
		Limit:      pg.Limit,
	})
	if err != nil {
		return Page{}, err
	}
	out := Page{Data: make([]json.RawMessage, 0, len(docs)), Pagination: collection.NewPagination(req.Page, req.Limit, total)}
	for _, d := range docs {
		out.Data = append(out.Data, json.RawMessage(d.Body))
	}
	return out, nil
}

// Get returns one record's JSON body.
func (s *Service) Get(ctx context.Context, kind hr.Kind, id string) (json.RawMessage, error) {
	d, err := s.store.Get(ctx, string(kind), id)
	if err != nil {
		return nil, err
	}
	return json.RawMessage(d.Body), nil
}

var createdMessages = map[hr.Kind]string{
	hr.KindEmployees:     "Employee added",
	hr.KindAttendance:    "Attendance recorded",
	hr.KindOvertime:      "Overtime request submitted",
	hr.KindComplaints:    "Complaint filed",
	hr.KindLeave:         "Leave request submitted",
	hr.KindPerks:         "Perk added",
	hr.KindAnnouncements: "Announcement drafted",
}

// Create validates a create form read from body and stores the new record.
func (s *Service) Create(ctx context.Context, kind hr.Kind, body io.Reader) (string, error) {
	meta, _ := hr.MetaFor(kind)
	if _, ok := hr.FormFor(kind); !ok {
		return "", badRequest(meta.Title + " cannot be created")
	}
	form, err := hr.DecodeForm(kind, body)
	if err != nil {
		var valErr *hr.ValidationError
		if errors.As(err, &valErr) {
			return "", err
		}
		return "", &Error{Status: http.StatusBadRequest, Message: "Malformed request body", Err: err}
	}
	now := s.now().UTC()
	rec, err := s.build(ctx, meta, form, now)
	if err != nil {
		return "", err
	}
	d, err := toDoc(kind, rec)
	if err != nil {
		return "", err
	}
	d.CreatedAt = now
	if err := s.store.Put(ctx, d); err != nil {
		return "", err
	}
	s.bump(ctx, kind)
	return createdMessages[kind], nil
}

func (s *Service) build(ctx context.Context, meta hr.Meta, form any, now time.Time) (hr.Record, error) {
	id, initial := s.newID(), meta.InitialStatus()

	switch f := form.(type) {
	case hr.EmployeeForm:
		return &hr.Employee{ID: id, Name: f.Name, Email: strings.ToLower(f.Email), Department: f.Department,
			Position: f.Position, Status: initial, CreatedAt: now}, nil
	case hr.PerkForm:
		return &hr.Perk{ID: id, Title: f.Title, Description: f.Description, Category: f.Category, Status: initial, CreatedAt: now}, nil
	case hr.AnnouncementForm:
		return &hr.Announcement{ID: id, Title: f.Title, Body: f.Body, Author: f.Author, Status: initial, CreatedAt: now}, nil
	}

	var empID string
	switch f := form.(type) {
	case hr.AttendanceForm:
		empID = f.EmployeeID
	case hr.OvertimeForm:
		empID = f.EmployeeID
	case hr.ComplaintForm:
		empID = f.EmployeeID
	case hr.LeaveForm:
		empID = f.EmployeeID
	default:
		return nil, fmt.Errorf("no builder for %T", form)
	}
	name, err := s.employeeName(ctx, empID)
	if err != nil {
		return nil, err
	}

	switch f := form.(type) {
	case hr.AttendanceForm:
		status := "present"
		if f.CheckIn > lateAfter {
			status = "late"
		}
		return &hr.Attendance{ID: id, EmployeeID: empID, EmployeeName: name, Date: f.Date, CheckIn: f.CheckIn,
			CheckOut: f.CheckOut, Status: status, CreatedAt: now}, nil
	case hr.OvertimeForm:
		return &hr.Overtime{ID: id, EmployeeID: empID, EmployeeName: name, Date: f.Date, Hours: f.Hours,
			Reason: f.Reason, Status: initial, CreatedAt: now}, nil
	case hr.ComplaintForm:
		return &hr.Complaint{ID: id, EmployeeID: empID, EmployeeName: name, Subject: f.Subject,
			Description: f.Description, Status: initial, CreatedAt: now}, nil
	case hr.LeaveForm:
		return &hr.Leave{ID: id, EmployeeID: empID, EmployeeName: name, Type: f.Type, StartDate: f.StartDate,
			EndDate: f.EndDate, Reason: f.Reason, Status: initial, CreatedAt: now}, nil
	}
	return nil, fmt.Errorf("no builder for %T", form)
}

func (s *Service) employeeName(ctx context.Context, id string) (string, error) {
	d, err := s.store.Get(ctx, string(hr.KindEmployees), id)
	if errors.Is(err, store.ErrNotFound) {
		return "", badRequest("Unknown employee")
	}
	if err != nil {
		return "", err
	}
	rec, err := hr.DecodeRecord(hr.KindEmployees, d.Body)
	if err != nil {
		return "", err
	}
	emp := rec.(*hr.Employee)
	if emp.Status != "active" {
		return "", badRequest("Employee is inactive")
	}
	return emp.Name, nil
}

// Act applies a status transition to one record.
func (s *Service) Act(ctx context.Context, kind hr.Kind, id, name string) (string, error) {
	meta, _ := hr.MetaFor(kind)
	a, ok := meta.Action(name)
	if !ok || a.Delete {
		return "", &Error{Status: http.StatusNotFound, Message: fmt.Sprintf("Unknown action %q", name)}
	}

	_, err := s.store.Update(ctx, string(kind), id, func(d *store.Doc, siblings []store.Doc) ([]store.Doc, error) {
		if !a.Allowed(d.Status) {
			return nil, &Error{
				Status:  http.StatusConflict,
				Message: fmt.Sprintf("Cannot %s: status is %s", a.Name, d.Status),
				Err:     ErrInvalidTransition,
			}
		}
		if err := setStatus(kind, d, a.To); err != nil {
			return nil, err
		}
		// Only one plan can be selected.
		var changed []store.Doc
		if kind == hr.KindPlans && a.To == "selected" {
			for _, sib := range siblings {
				if sib.Status != "selected" {
					continue
				}
				if err := setStatus(kind, &sib, "available"); err != nil {
					return nil, err
				}
				changed = append(changed, sib)
			}
		}
		return changed, nil
	})
	if err != nil {
		return "", err
	}
	s.bump(ctx, kind)
	return a.Success, nil
}

// Delete removes one record of a kind that allows deletion.
func (s *Service) Delete(ctx context.Context, kind hr.Kind, id string) (string, error) {
	meta, _ := hr.MetaFor(kind)
	a, ok := meta.Action("delete")
	if !ok || !a.Delete {
		return "", badRequest(meta.Title + " records cannot be deleted")
	}
	if err := s.store.Delete(ctx, string(kind), id); err != nil {
		return "", err
	}
	s.bump(ctx, kind)
	return a.Success, nil
}

// Stats are record counts of one kind.
type Stats struct {
	Kind     hr.Kind        `json:"kind"`
	Total    int            `json:"total"`
	ByStatus map[string]int `json:"byStatus"`
}

// Stats counts the records of kind per status. Every known status is present.
func (s *Service) Stats(ctx context.Context, kind hr.Kind) (Stats, error) {
	meta, _ := hr.MetaFor(kind)
	counts, err := s.store.Counts(ctx, string(kind))
	if err != nil {
		return Stats{}, err
	}
	out := Stats{Kind: kind, ByStatus: make(map[string]int, len(meta.Statuses))}
	for _, st := range meta.Statuses {
		out.ByStatus[st] = 0
	}
	for st, n := range counts {
		out.ByStatus[st] = n
		out.Total += n
	}
	return out, nil
}

func (s *Service) bump(ctx context.Context, kind hr.Kind) {
	if err := s.cache.Bump(ctx, string(kind)); err != nil {
		logging.Warn("cache bump failed", "kind", kind, "err", err)
	}
}

func toDoc(kind hr.Kind, rec hr.Record) (store.Doc, error) {
	body, err := json.Marshal(rec)
	if err != nil {
		return store.Doc{}, fmt.Errorf("encode %s: %w", kind, err)
	}
	idx := rec.Index()
	return store.Doc{
		Kind:       string(kind),
		ID:         idx.ID,
		Status:     idx.Status,
		EmployeeID: idx.EmployeeID,
		Day:        idx.Day,
		Search:     idx.Search,
		Body:       body,
	}, nil
}

func setStatus(kind hr.Kind, d *store.Doc, status string) error {
	rec, err := hr.DecodeRecord(kind, d.Body)
	if err != nil {
		return err
	}
	rec.SetStatus(status)
	next, err := toDoc(kind, rec)
	if err != nil {
		return err
	}
	next.CreatedAt = d.CreatedAt
	*d = next
	return nil
}

package hr

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Index is the part of a record the store filters and searches on.
type Index struct {
	ID         string
	Status     string
	EmployeeID string
	Day        string // YYYY-MM-DD or YYYY-MM, empty when the record has no date
	Search     string // lower-cased haystack for text search
}

// Record is any stored HR document.
type Record interface {
	Index() Index
	SetStatus(status string)
}

type Employee struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	Department string    `json:"department"`
	Position   string    `json:"position"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"createdAt"`
}

func (e *Employee) Index() Index {
	return Index{ID: e.ID, Status: e.Status, EmployeeID: e.ID, Search: haystack(e.Name, e.Email, e.Department, e.Position)}
}
func (e *Employee) SetStatus(s string) { e.Status = s }

type Attendance struct {
	ID           string    `json:"id"`
	EmployeeID   string    `json:"employeeId"`
	EmployeeName string    `json:"employeeName"`
	Date         string    `json:"date"`
	CheckIn      string    `json:"checkIn"`
	CheckOut     string    `json:"checkOut,omitempty"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"createdAt"`
}

func (a *Attendance) Index() Index {
	return Index{ID: a.ID, Status: a.Status, EmployeeID: a.EmployeeID, Day: a.Date, Search: haystack(a.EmployeeName, a.Date)}
}
func (a *Attendance) SetStatus(s string) { a.Status = s }

type Overtime struct {
	ID           string    `json:"id"`
	EmployeeID   string    `json:"employeeId"`
	EmployeeName string    `json:"employeeName"`
	Date         string    `json:"date"`
	Hours        float64   `json:"hours"`
	Reason       string    `json:"reason"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"createdAt"`
}

func (o *Overtime) Index() Index {
	return Index{ID: o.ID, Status: o.Status, EmployeeID: o.EmployeeID, Day: o.Date, Search: haystack(o.EmployeeName, o.Reason)}
}
func (o *Overtime) SetStatus(s string) { o.Status = s }

type Complaint struct {
	ID           string    `json:"id"`
	EmployeeID   string    `json:"employeeId"`
	EmployeeName string    `json:"employeeName"`
	Subject      string    `json:"subject"`
	Description  string    `json:"description"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"createdAt"`
}

func (c *Complaint) Index() Index {
	return Index{ID: c.ID, Status: c.Status, EmployeeID: c.EmployeeID, Day: c.CreatedAt.Format("2006-01-02"), Search: haystack(c.EmployeeName, c.Subject, c.Description)}
}
func (c *Complaint) SetStatus(s string) { c.Status = s }

// Payslip amounts are computed elsewhere; peopledesk only stores and pays them.
type Payslip struct {
	ID           string    `json:"id"`
	EmployeeID   string    `json:"employeeId"`
	EmployeeName string    `json:"employeeName"`
	Period       string    `json:"period"` // YYYY-MM
	Gross        float64   `json:"gross"`
	Deductions   float64   `json:"deductions"`
	Net          float64   `json:"net"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"createdAt"`
}

func (p *Payslip) Index() Index {
	return Index{ID: p.ID, Status: p.Status, EmployeeID: p.EmployeeID, Day: p.Period, Search: haystack(p.EmployeeName, p.Period)}
}
func (p *Payslip) SetStatus(s string) { p.Status = s }

type Leave struct {
	ID           string    `json:"id"`
	EmployeeID   string    `json:"employeeId"`
	EmployeeName string    `json:"employeeName"`
	Type         string    `json:"type"`
	StartDate    string    `json:"startDate"`
	EndDate      string    `json:"endDate"`
	Reason       string    `json:"reason,omitempty"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"createdAt"`
}

func (l *Leave) Index() Index {
	return Index{ID: l.ID, Status: l.Status, EmployeeID: l.EmployeeID, Day: l.StartDate, Search: haystack(l.EmployeeName, l.Type, l.Reason)}
}
func (l *Leave) SetStatus(s string) { l.Status = s }

type Perk struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Category    string    `json:"category"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"createdAt"`
}

func (p *Perk) Index() Index {
	return Index{ID: p.ID, Status: p.Status, Search: haystack(p.Title, p.Description, p.Category)}
}
func (p *Perk) SetStatus(s string) { p.Status = s }

// Announcement bodies are Markdown.
type Announcement struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	Author    string    `json:"author,omitempty"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
}

func (a *Announcement) Index() Index {
	return Index{ID: a.ID, Status: a.Status, Day: a.CreatedAt.Format("2006-01-02"), Search: haystack(a.Title, a.Body, a.Author)}
}
func (a *Announcement) SetStatus(s string) { a.Status = s }

// Plan prices are opaque to peopledesk; selecting one is the only operation.
type Plan struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	PriceMonthly float64   `json:"priceMonthly"`
	Seats        int       `json:"seats"`
	Features     []string  `json:"features,omitempty"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"createdAt"`
}

func (p *Plan) Index() Index {
	return Index{ID: p.ID, Status: p.Status, Search: haystack(append([]string{p.Name}, p.Features...)...)}
}
func (p *Plan) SetStatus(s string) { p.Status = s }

// NewRecord returns an empty record of kind, ready to unmarshal into.
func NewRecord(kind Kind) (Record, error) {
	switch kind {
	case KindEmployees:
		return &Employee{}, nil
	case KindAttendance:
		return &Attendance{}, nil
	case KindOvertime:
		return &Overtime{}, nil
	case KindComplaints:
		return &Complaint{}, nil
	case KindPayroll:
		return &Payslip{}, nil
	case KindLeave:
		return &Leave{}, nil
	case KindPerks:
		return &Perk{}, nil
	case KindAnnouncements:
		return &Announcement{}, nil
	case KindPlans:
		return &Plan{}, nil
	}
	return nil, fmt.Errorf("unknown kind %q", kind)
}

// DecodeRecord unmarshals a stored body of kind.
func DecodeRecord(kind Kind, body []byte) (Record, error) {
	rec, err := NewRecord(kind)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(body, rec); err != nil {
		return nil, fmt.Errorf("decode %s: %w", kind, err)
	}
	return rec, nil
}

func haystack(parts ...string) string {
	return strings.ToLower(strings.Join(parts, " "))
}

package hr

import "slices"

// Action is a row operation. Actions with a target status are transitions
// allowed only from the listed source statuses; Delete actions remove the row.
type Action struct {
	Name    string // route segment: POST /api/{kind}/{id}/{name}
	Label   string
	Key     string // key binding in the list screen
	From    []string
	To      string
	Delete  bool
	Success string // message returned on success
}

// Allowed reports whether the action applies to a row in status.
func (a Action) Allowed(status string) bool {
	if a.Delete || len(a.From) == 0 {
		return true
	}
	return slices.Contains(a.From, status)
}

// Meta describes one kind's list screen and server rules.
type Meta struct {
	Kind     Kind
	Title    string
	Statuses []string // filter values, first is the initial status
	Actions  []Action
	// FiltersViaSearch routes status filters through the search endpoint.
	FiltersViaSearch bool
	// PerEmployee kinds accept an employeeId scope.
	PerEmployee bool
	// Dated kinds accept from/to scope on their day column.
	Dated bool
}

// InitialStatus is the status of a newly created record.
func (m Meta) InitialStatus() string {
	if len(m.Statuses) == 0 {
		return ""
	}
	return m.Statuses[0]
}

// Scope keys understood by PerEmployee and Dated kinds.
const (
	ScopeEmployee = "employeeId"
	ScopeFrom     = "from"
	ScopeTo       = "to"
)

// ScopeKeys returns the location keys that scope reads of this kind.
func (m Meta) ScopeKeys() []string {
	var keys []string
	if m.PerEmployee {
		keys = append(keys, ScopeEmployee)
	}
	if m.Dated {
		keys = append(keys, ScopeFrom, ScopeTo)
	}
	return keys
}

// Action looks up an action by name.
func (m Meta) Action(name string) (Action, bool) {
	for _, a := range m.Actions {
		if a.Name == name {
			return a, true
		}
	}
	return Action{}, false
}

// MetaFor returns the metadata of kind.
func MetaFor(kind Kind) (Meta, bool) {
	m, ok := metas[kind]
	return m, ok
}

func del(label string) Action {
	return Action{Name: "delete", Label: "Delete", Key: "x", Delete: true, Success: label + " deleted"}
}

var metas = map[Kind]Meta{
	KindEmployees: {
		Kind: KindEmployees, Title: "Employees",
		Statuses: []string{"active", "inactive"},
		Actions: []Action{
			{Name: "deactivate", Label: "Deactivate", Key: "d", From: []string{"active"}, To: "inactive", Success: "Employee deactivated"},
			{Name: "activate", Label: "Activate", Key: "a", From: []string{"inactive"}, To: "active", Success: "Employee activated"},
			del("Employee"),
		},
		PerEmployee: true,
	},
	KindAttendance: {
		Kind: KindAttendance, Title: "Attendance",
		Statuses: []string{"present", "late", "absent"},
		Actions: []Action{
			{Name: "excuse", Label: "Excuse", Key: "e", From: []string{"late", "absent"}, To: "present", Success: "Attendance excused"},
			del("Attendance record"),
		},
		PerEmployee: true, Dated: true,
	},
	KindOvertime: {
		Kind: KindOvertime, Title: "Overtime",
		Statuses: []string{"pending", "approved", "rejected", "cancelled"},
		Actions: []Action{
			{Name: "approve", Label: "Approve", Key: "a", From: []string{"pending"}, To: "approved", Success: "Overtime approved"},
			{Name: "reject", Label: "Reject", Key: "r", From: []string{"pending"}, To: "rejected", Success: "Overtime rejected"},
			{Name: "cancel", Label: "Cancel Request", Key: "c", From: []string{"pending"}, To: "cancelled", Success: "Overtime request cancelled"},
		},
		PerEmployee: true, Dated: true,
	},
	KindComplaints: {
		Kind: KindComplaints, Title: "Complaints",
		Statuses: []string{"open", "resolved"},
		Actions: []Action{
			{Name: "resolve", Label: "Resolve", Key: "v", From: []string{"open"}, To: "resolved", Success: "Complaint resolved"},
			del("Complaint"),
		},
		FiltersViaSearch: true, PerEmployee: true, Dated: true,
	},
	KindPayroll: {
		Kind: KindPayroll, Title: "Payroll",
		Statuses: []string{"draft", "paid"},
		Actions: []Action{
			{Name: "pay", Label: "Pay", Key: "p", From: []string{"draft"}, To: "paid", Success: "Payslip paid"},
		},
		PerEmployee: true, Dated: true,
	},
	KindLeave: {
		Kind: KindLeave, Title: "Leave",
		Statuses: []string{"pending", "approved", "rejected", "cancelled"},
		Actions: []Action{
			{Name: "approve", Label: "Approve", Key: "a", From: []string{"pending"}, To: "approved", Success: "Leave approved"},
			{Name: "reject", Label: "Reject", Key: "r", From: []string{"pending"}, To: "rejected", Success: "Leave rejected"},
			{Name: "cancel", Label: "Cancel Request", Key: "c", From: []string{"pending", "approved"}, To: "cancelled", Success: "Leave request cancelled"},
		},
		PerEmployee: true, Dated: true,
	},
	KindPerks: {
		Kind: KindPerks, Title: "Perks",
		Statuses: []string{"active", "archived"},
		Actions: []Action{
			{Name: "archive", Label: "Archive", Key: "z", From: []string{"active"}, To: "archived", Success: "Perk archived"},
			del("Perk"),
		},
	},
	KindAnnouncements: {
		Kind: KindAnnouncements, Title: "Announcements",
		Statuses: []string{"draft", "published"},
		Actions: []Action{
			{Name: "publish", Label: "Publish", Key: "p", From: []string{"draft"}, To: "published", Success: "Announcement published"},
			del("Announcement"),
		},
		Dated: true,
	},
	KindPlans: {
		Kind: KindPlans, Title: "Plans",
		Statuses: []string{"available", "selected"},
		Actions: []Action{
			{Name: "select", Label: "Select Plan", Key: "s", From: []string{"available"}, To: "selected", Success: "Plan selected"},
		},
	},
}

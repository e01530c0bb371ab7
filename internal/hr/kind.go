// Package hr defines the people-management records, the per-kind row
// actions and status transitions, and the validated create forms shared by
// the terminal client and the API server.
package hr

import "fmt"

// Kind names one remote collection. It is the first path segment of both
// the API routes and the client's screen locations.
type Kind string

const (
	KindEmployees     Kind = "employees"
	KindAttendance    Kind = "attendance"
	KindOvertime      Kind = "overtime"
	KindComplaints    Kind = "complaints"
	KindPayroll       Kind = "payroll"
	KindLeave         Kind = "leave"
	KindPerks         Kind = "perks"
	KindAnnouncements Kind = "announcements"
	KindPlans         Kind = "plans"
)

// Kinds returns every kind in tab order.
func Kinds() []Kind {
	return []Kind{
		KindEmployees, KindAttendance, KindOvertime, KindComplaints, KindPayroll,
		KindLeave, KindPerks, KindAnnouncements, KindPlans,
	}
}

// ParseKind validates s.
func ParseKind(s string) (Kind, error) {
	k := Kind(s)
	if _, ok := metas[k]; !ok {
		return "", fmt.Errorf("unknown kind %q", s)
	}
	return k, nil
}

func (k Kind) String() string { return string(k) }

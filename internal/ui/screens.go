package ui

import (
	"fmt"

	"github.com/abelbrown/peopledesk/internal/api"
	"github.com/abelbrown/peopledesk/internal/hr"
)

// NewScreen builds the list screen of kind against the API client.
func NewScreen(kind hr.Kind, c *api.Client, deps ListDeps) (Screen, error) {
	switch kind {
	case hr.KindEmployees:
		return NewListView(kind, api.NewResource[hr.Employee](c, kind), EmployeeColumns, deps)
	case hr.KindAttendance:
		return NewListView(kind, api.NewResource[hr.Attendance](c, kind), AttendanceColumns, deps)
	case hr.KindOvertime:
		return NewListView(kind, api.NewResource[hr.Overtime](c, kind), OvertimeColumns, deps)
	case hr.KindComplaints:
		return NewListView(kind, api.NewResource[hr.Complaint](c, kind), ComplaintColumns, deps)
	case hr.KindPayroll:
		return NewListView(kind, api.NewResource[hr.Payslip](c, kind), PayslipColumns, deps)
	case hr.KindLeave:
		return NewListView(kind, api.NewResource[hr.Leave](c, kind), LeaveColumns, deps)
	case hr.KindPerks:
		return NewListView(kind, api.NewResource[hr.Perk](c, kind), PerkColumns, deps)
	case hr.KindAnnouncements:
		return NewListView(kind, api.NewResource[hr.Announcement](c, kind), AnnouncementColumns, deps)
	case hr.KindPlans:
		return NewListView(kind, api.NewResource[hr.Plan](c, kind), PlanColumns, deps)
	}
	return nil, fmt.Errorf("no screen for kind %q", kind)
}

package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"

	"github.com/abelbrown/peopledesk/internal/hr"
)

// Columns renders one kind's rows into the table.
type Columns[T any] struct {
	Cols []table.Column
	Row  func(T) table.Row
}

// recordIndex returns the index of a row whose pointer is an hr.Record.
func recordIndex[T any](v T) hr.Index {
	if r, ok := any(&v).(hr.Record); ok {
		return r.Index()
	}
	return hr.Index{}
}

func money(v float64) string { return fmt.Sprintf("%.2f", v) }

var EmployeeColumns = Columns[hr.Employee]{
	Cols: []table.Column{{Title: "Name", Width: 20}, {Title: "Email", Width: 28}, {Title: "Department", Width: 14}, {Title: "Position", Width: 20}, {Title: "Status", Width: 9}},
	Row: func(e hr.Employee) table.Row {
		return table.Row{e.Name, e.Email, e.Department, e.Position, e.Status}
	},
}

var AttendanceColumns = Columns[hr.Attendance]{
	Cols: []table.Column{{Title: "Employee", Width: 20}, {Title: "Date", Width: 11}, {Title: "In", Width: 6}, {Title: "Out", Width: 6}, {Title: "Status", Width: 8}},
	Row: func(a hr.Attendance) table.Row {
		return table.Row{a.EmployeeName, a.Date, a.CheckIn, a.CheckOut, a.Status}
	},
}

var OvertimeColumns = Columns[hr.Overtime]{
	Cols: []table.Column{{Title: "Employee", Width: 20}, {Title: "Date", Width: 11}, {Title: "Hours", Width: 6}, {Title: "Reason", Width: 28}, {Title: "Status", Width: 10}},
	Row: func(o hr.Overtime) table.Row {
		return table.Row{o.EmployeeName, o.Date, fmt.Sprintf("%g", o.Hours), o.Reason, o.Status}
	},
}

var ComplaintColumns = Columns[hr.Complaint]{
	Cols: []table.Column{{Title: "Employee", Width: 20}, {Title: "Subject", Width: 30}, {Title: "Filed", Width: 11}, {Title: "Status", Width: 9}},
	Row: func(c hr.Complaint) table.Row {
		return table.Row{c.EmployeeName, c.Subject, c.CreatedAt.Format("2006-01-02"), c.Status}
	},
}

var PayslipColumns = Columns[hr.Payslip]{
	Cols: []table.Column{{Title: "Employee", Width: 20}, {Title: "Period", Width: 8}, {Title: "Gross", Width: 10}, {Title: "Deductions", Width: 10}, {Title: "Net", Width: 10}, {Title: "Status", Width: 6}},
	Row: func(p hr.Payslip) table.Row {
		return table.Row{p.EmployeeName, p.Period, money(p.Gross), money(p.Deductions), money(p.Net), p.Status}
	},
}

var LeaveColumns = Columns[hr.Leave]{
	Cols: []table.Column{{Title: "Employee", Width: 20}, {Title: "Type", Width: 7}, {Title: "From", Width: 11}, {Title: "To", Width: 11}, {Title: "Status", Width: 10}},
	Row: func(l hr.Leave) table.Row {
		return table.Row{l.EmployeeName, l.Type, l.StartDate, l.EndDate, l.Status}
	},
}

var PerkColumns = Columns[hr.Perk]{
	Cols: []table.Column{{Title: "Title", Width: 24}, {Title: "Category", Width: 10}, {Title: "Description", Width: 30}, {Title: "Status", Width: 9}},
	Row: func(p hr.Perk) table.Row {
		return table.Row{p.Title, p.Category, p.Description, p.Status}
	},
}

var AnnouncementColumns = Columns[hr.Announcement]{
	Cols: []table.Column{{Title: "Title", Width: 30}, {Title: "Author", Width: 18}, {Title: "Date", Width: 11}, {Title: "Status", Width: 10}},
	Row: func(a hr.Announcement) table.Row {
		return table.Row{a.Title, a.Author, a.CreatedAt.Format("2006-01-02"), a.Status}
	},
}

var PlanColumns = Columns[hr.Plan]{
	Cols: []table.Column{{Title: "Plan", Width: 12}, {Title: "Monthly", Width: 9}, {Title: "Seats", Width: 6}, {Title: "Features", Width: 34}, {Title: "Status", Width: 10}},
	Row: func(p hr.Plan) table.Row {
		return table.Row{p.Name, money(p.PriceMonthly), fmt.Sprint(p.Seats), strings.Join(p.Features, ", "), p.Status}
	},
}

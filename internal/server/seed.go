package server

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/abelbrown/peopledesk/internal/hr"
	"github.com/abelbrown/peopledesk/internal/store"
)

var seedEmployees = []struct{ name, dept, position string }{
	{"Ahmed Hassan", "Engineering", "Backend Engineer"},
	{"Sara Lindqvist", "Engineering", "Engineering Manager"},
	{"Kenji Watanabe", "Design", "Product Designer"},
	{"Maria Gonzalez", "Finance", "Accountant"},
	{"Tomasz Nowak", "Engineering", "SRE"},
	{"Aisha Bello", "People", "HR Partner"},
	{"Liam O'Brien", "Sales", "Account Executive"},
	{"Priya Raman", "Engineering", "Frontend Engineer"},
	{"Jonas Becker", "Support", "Support Lead"},
	{"Chloe Martin", "Marketing", "Content Strategist"},
	{"Ahmed Karimi", "Finance", "Controller"},
	{"Nadia Petrova", "Design", "UX Researcher"},
}

// seedID derives a stable id so reseeding is idempotent.
func seedID(kind hr.Kind, i int) string {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(fmt.Sprintf("peopledesk/%s/%d", kind, i))).String()
}

// SeedIfEmpty loads the demo data set into an empty store and returns the
// number of records written.
func SeedIfEmpty(ctx context.Context, svc *Service) (int, error) {
	total, err := svc.store.Total(ctx)
	if err != nil || total > 0 {
		return 0, err
	}
	n, err := Seed(ctx, svc.store, svc.now())
	if err != nil {
		return n, err
	}
	for _, k := range hr.Kinds() {
		svc.bump(ctx, k)
	}
	return n, nil
}

// Seed writes the demo data set dated relative to base. Records are
// written oldest first with increasing creation times.
func Seed(ctx context.Context, st *store.Store, base time.Time) (int, error) {
	base = base.UTC().Truncate(24 * time.Hour)
	day := func(offset int) string { return base.AddDate(0, 0, offset).Format("2006-01-02") }
	created := base.Add(-30 * 24 * time.Hour)
	tick := func() time.Time {
		created = created.Add(time.Minute)
		return created
	}

	var recs []struct {
		kind hr.Kind
		rec  hr.Record
		at   time.Time
	}
	add := func(kind hr.Kind, rec hr.Record, at time.Time) {
		recs = append(recs, struct {
			kind hr.Kind
			rec  hr.Record
			at   time.Time
		}{kind, rec, at})
	}

	emps := make([]*hr.Employee, len(seedEmployees))
	for i, e := range seedEmployees {
		at := tick()
		status := "active"
		if i == len(seedEmployees)-1 {
			status = "inactive"
		}
		emps[i] = &hr.Employee{ID: seedID(hr.KindEmployees, i), Name: e.name, Department: e.dept, Position: e.position,
			Email:  fmt.Sprintf("%s@peopledesk.example", uuid.NewSHA1(uuid.NameSpaceOID, []byte(e.name)).String()[:8]),
			Status: status, CreatedAt: at}
		add(hr.KindEmployees, emps[i], at)
	}

	n := 0
	for d := -4; d <= 0; d++ {
		for i, e := range emps[:8] {
			at := tick()
			checkIn, status := "08:5"+fmt.Sprint(i%10), "present"
			switch (i + d + 8) % 7 {
			case 0:
				checkIn, status = "09:2"+fmt.Sprint(i%10), "late"
			case 3:
				checkIn, status = "", "absent"
			}
			a := &hr.Attendance{ID: seedID(hr.KindAttendance, n), EmployeeID: e.ID, EmployeeName: e.Name, Date: day(d),
				CheckIn: checkIn, Status: status, CreatedAt: at}
			if status != "absent" {
				a.CheckOut = "17:30"
			}
			add(hr.KindAttendance, a, at)
			n++
		}
	}

	otStatuses := []string{"pending", "approved", "rejected", "pending", "cancelled"}
	reasons := []string{"Release night", "Incident follow-up", "Quarter close", "Customer migration", "On-call cover"}
	for i := 0; i < 10; i++ {
		e := emps[i%len(emps[:10])]
		at := tick()
		add(hr.KindOvertime, &hr.Overtime{ID: seedID(hr.KindOvertime, i), EmployeeID: e.ID, EmployeeName: e.Name,
			Date: day(-i), Hours: float64(1 + i%4), Reason: reasons[i%len(reasons)], Status: otStatuses[i%len(otStatuses)],
			CreatedAt: at}, at)
	}

	subjects := []string{"Broken desk chair", "Noise in open office", "Late expense refund", "Parking allocation", "VPN keeps dropping", "Meeting room booking"}
	for i, subj := range subjects {
		e := emps[(i*5)%10]
		at := tick()
		status := "open"
		if i%3 == 2 {
			status = "resolved"
		}
		add(hr.KindComplaints, &hr.Complaint{ID: seedID(hr.KindComplaints, i), EmployeeID: e.ID, EmployeeName: e.Name,
			Subject: subj, Description: subj + ". Raised with facilities twice already.", Status: status, CreatedAt: at}, at)
	}

	for m := 2; m >= 1; m-- {
		period := base.AddDate(0, -m, 0).Format("2006-01")
		for i, e := range emps[:10] {
			at := tick()
			gross := 4200 + float64(i)*350
			ded := gross * 0.22
			status := "paid"
			if m == 1 {
				status = "draft"
			}
			add(hr.KindPayroll, &hr.Payslip{ID: seedID(hr.KindPayroll, m*100+i), EmployeeID: e.ID, EmployeeName: e.Name,
				Period: period, Gross: gross, Deductions: ded, Net: gross - ded, Status: status, CreatedAt: at}, at)
		}
	}

	leaveTypes := []string{"annual", "sick", "unpaid"}
	leaveStatuses := []string{"pending", "approved", "pending", "rejected", "cancelled"}
	for i := 0; i < 10; i++ {
		e := emps[(i*7)%10]
		at := tick()
		add(hr.KindLeave, &hr.Leave{ID: seedID(hr.KindLeave, i), EmployeeID: e.ID, EmployeeName: e.Name,
			Type: leaveTypes[i%3], StartDate: day(3 + i*2), EndDate: day(4 + i*2), Status: leaveStatuses[i%len(leaveStatuses)],
			CreatedAt: at}, at)
	}

	perks := []struct{ title, category string }{
		{"Gym membership", "health"}, {"Meditation app", "wellness"}, {"Conference budget", "learning"},
		{"Rail card", "travel"}, {"Book club", "learning"},
	}
	for i, p := range perks {
		at := tick()
		status := "active"
		if i == len(perks)-1 {
			status = "archived"
		}
		add(hr.KindPerks, &hr.Perk{ID: seedID(hr.KindPerks, i), Title: p.title, Category: p.category, Status: status, CreatedAt: at}, at)
	}

	announcements := []struct{ title, body, status string }{
		{"Office move", "## New office\n\nWe move to **Harbour Street** on the first of next month.\n\n- Desks are assigned by team\n- Parking passes are reissued", "published"},
		{"Open enrolment", "Benefit enrolment is open until Friday. See the *Perks* tab for the catalogue.", "published"},
		{"Holiday calendar", "Draft of next year's holidays:\n\n| Date | Holiday |\n|---|---|\n| Jan 1 | New Year |\n| Dec 25 | Christmas |", "draft"},
	}
	for i, a := range announcements {
		at := tick()
		add(hr.KindAnnouncements, &hr.Announcement{ID: seedID(hr.KindAnnouncements, i), Title: a.title, Body: a.body,
			Author: emps[5].Name, Status: a.status, CreatedAt: at}, at)
	}

	plans := []struct {
		name  string
		price float64
		seats int
		feats []string
	}{
		{"Starter", 49, 10, []string{"employees", "leave"}},
		{"Team", 149, 50, []string{"employees", "leave", "payroll", "overtime"}},
		{"Business", 399, 250, []string{"everything", "priority support"}},
	}
	for i, p := range plans {
		at := tick()
		status := "available"
		if i == 1 {
			status = "selected"
		}
		add(hr.KindPlans, &hr.Plan{ID: seedID(hr.KindPlans, i), Name: p.name, PriceMonthly: p.price, Seats: p.seats,
			Features: p.feats, Status: status, CreatedAt: at}, at)
	}

	for i, r := range recs {
		d, err := toDoc(r.kind, r.rec)
		if err != nil {
			return i, err
		}
		d.CreatedAt = r.at
		if err := st.Put(ctx, d); err != nil {
			return i, err
		}
	}
	return len(recs), nil
}

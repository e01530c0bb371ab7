package ui

import (
	"strings"
	"testing"
	"time"

	"github.com/abelbrown/peopledesk/internal/hr"
)

func TestDetailMarkdownAnnouncement(t *testing.T) {
	a := hr.Announcement{
		Title:     "Office move",
		Body:      "We move to **Building B** on Monday.",
		Author:    "HR",
		Status:    "published",
		CreatedAt: time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC),
	}
	md, err := detailMarkdown(a.Title, a)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(md, "# Office move") {
		t.Errorf("markdown should start with the title:\n%s", md)
	}
	if !strings.Contains(md, "HR · 2 Mar 2026") || !strings.Contains(md, "**Building B**") {
		t.Errorf("markdown missing meta or body:\n%s", md)
	}
}

func TestDetailMarkdownFieldTable(t *testing.T) {
	p := hr.Plan{ID: "plan-1", Name: "Team | Plus", Seats: 50, Features: []string{"SSO", "Audit"}, Status: "available"}
	md, err := detailMarkdown(p.Name, p)
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"| Field | Value |", "| seats | 50 |", "| features | SSO, Audit |", `Team \| Plus`} {
		if !strings.Contains(md, want) {
			t.Errorf("markdown missing %q:\n%s", want, md)
		}
	}
	if strings.Index(md, "| features") > strings.Index(md, "| name") {
		t.Error("fields should be sorted")
	}
}

func TestRenderDetail(t *testing.T) {
	l := hr.Leave{ID: "leave-1", EmployeeName: "Sara Noor", Type: "sick", Status: "pending"}
	msg := RenderDetail(hr.KindLeave, l.ID, l.EmployeeName, l, 80, "notty")()
	got, ok := msg.(DetailRendered)
	if !ok {
		t.Fatalf("RenderDetail returned %T", msg)
	}
	if got.Err != nil {
		t.Fatalf("render error: %v", got.Err)
	}
	if got.ID != "leave-1" || got.Kind != hr.KindLeave {
		t.Errorf("message = %+v", got)
	}
	if !strings.Contains(got.Rendered, "Sara Noor") || !strings.Contains(got.Rendered, "sick") {
		t.Errorf("rendered detail missing fields:\n%s", got.Rendered)
	}
}

package hr

import (
	"encoding/json"
	"fmt"
	"io"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

const dateLayout = "2006-01-02"

// Issue is one validation failure. Path is the JSON field name.
type Issue struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

func (i Issue) Error() string { return i.Path + " " + i.Message }

// ValidationError carries every issue of a rejected form.
type ValidationError struct {
	Issues []Issue
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Issues))
	for i, is := range e.Issues {
		parts[i] = is.Error()
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

type EmployeeForm struct {
	Name       string `json:"name" validate:"required,min=2,max=100"`
	Email      string `json:"email" validate:"required,email"`
	Department string `json:"department" validate:"required"`
	Position   string `json:"position" validate:"required"`
}

type AttendanceForm struct {
	EmployeeID string `json:"employeeId" validate:"required"`
	Date       string `json:"date" validate:"required,datetime=2006-01-02"`
	CheckIn    string `json:"checkIn" validate:"required,datetime=15:04"`
	CheckOut   string `json:"checkOut" validate:"omitempty,datetime=15:04"`
}

type OvertimeForm struct {
	EmployeeID string  `json:"employeeId" validate:"required"`
	Date       string  `json:"date" validate:"required,datetime=2006-01-02"`
	Hours      float64 `json:"hours" validate:"gt=0,lte=12"`
	Reason     string  `json:"reason" validate:"required,min=3,max=300"`
}

type ComplaintForm struct {
	EmployeeID  string `json:"employeeId" validate:"required"`
	Subject     string `json:"subject" validate:"required,min=3,max=120"`
	Description string `json:"description" validate:"required,min=10"`
}

type LeaveForm struct {
	EmployeeID string `json:"employeeId" validate:"required"`
	Type       string `json:"type" validate:"required,oneof=annual sick unpaid"`
	StartDate  string `json:"startDate" validate:"required,datetime=2006-01-02"`
	EndDate    string `json:"endDate" validate:"required,datetime=2006-01-02"`
	Reason     string `json:"reason" validate:"max=500"`
}

type PerkForm struct {
	Title       string `json:"title" validate:"required,min=3,max=80"`
	Description string `json:"description" validate:"max=500"`
	Category    string `json:"category" validate:"required,oneof=health wellness learning travel other"`
}

type AnnouncementForm struct {
	Title  string `json:"title" validate:"required,max=120"`
	Body   string `json:"body" validate:"required"`
	Author string `json:"author" validate:"max=80"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	v.RegisterStructValidation(func(sl validator.StructLevel) {
		f := sl.Current().Interface().(LeaveForm)
		start, err1 := time.Parse(dateLayout, f.StartDate)
		end, err2 := time.Parse(dateLayout, f.EndDate)
		if err1 == nil && err2 == nil && end.Before(start) {
			sl.ReportError(f.EndDate, "endDate", "EndDate", "notbeforestart", "")
		}
	}, LeaveForm{})
	return v
}

// Validate checks a form and returns one Issue per failed field, in field
// order. A nil result means the form is valid.
func Validate(form any) []Issue {
	err := validate.Struct(form)
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return []Issue{{Path: "form", Message: err.Error()}}
	}
	issues := make([]Issue, 0, len(verrs))
	for _, fe := range verrs {
		issues = append(issues, Issue{Path: fieldPath(fe), Message: issueMessage(fe)})
	}
	return issues
}

// fieldPath drops the struct name from the namespace: "LeaveForm.endDate" -> "endDate".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func issueMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must be at least %s characters", fe.Param())
		}
		return "must be at least " + fe.Param()
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must be at most %s characters", fe.Param())
		}
		return "must be at most " + fe.Param()
	case "oneof":
		return "must be one of: " + strings.ReplaceAll(fe.Param(), " ", ", ")
	case "datetime":
		return "must use the format " + humanLayout(fe.Param())
	case "gt":
		return "must be greater than " + fe.Param()
	case "lte":
		return "must be at most " + fe.Param()
	case "notbeforestart":
		return "must not be before the start date"
	}
	return "is invalid"
}

func humanLayout(layout string) string {
	switch layout {
	case "2006-01-02":
		return "YYYY-MM-DD"
	case "15:04":
		return "HH:MM"
	}
	return layout
}

// Field is one input of a create form.
type Field struct {
	Name        string // JSON name, also the issue path
	Label       string
	Placeholder string
	Multiline   bool
}

// FormSpec describes the create form of a kind.
type FormSpec struct {
	Kind   Kind
	Title  string
	Fields []Field
	build  func(v map[string]string) (any, []Issue)
}

// Build turns raw text inputs into a typed form and validates it. Parse
// failures and validation failures are both reported as issues.
func (s FormSpec) Build(values map[string]string) (any, []Issue) {
	form, issues := s.build(values)
	if len(issues) > 0 {
		return nil, issues
	}
	if issues := Validate(form); len(issues) > 0 {
		return nil, issues
	}
	return form, nil
}

// FormFor returns the create form of kind. Payroll and plans have none.
func FormFor(kind Kind) (FormSpec, bool) {
	s, ok := forms[kind]
	return s, ok
}

// NewForm returns an empty form value of kind for decoding.
func NewForm(kind Kind) (any, error) {
	switch kind {
	case KindEmployees:
		return &EmployeeForm{}, nil
	case KindAttendance:
		return &AttendanceForm{}, nil
	case KindOvertime:
		return &OvertimeForm{}, nil
	case KindComplaints:
		return &ComplaintForm{}, nil
	case KindLeave:
		return &LeaveForm{}, nil
	case KindPerks:
		return &PerkForm{}, nil
	case KindAnnouncements:
		return &AnnouncementForm{}, nil
	}
	return nil, fmt.Errorf("%s cannot be created", kind)
}

// DecodeForm reads a JSON create body of kind and validates it. Validation
// failures are returned as *ValidationError.
func DecodeForm(kind Kind, r io.Reader) (any, error) {
	form, err := NewForm(kind)
	if err != nil {
		return nil, err
	}
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(form); err != nil {
		return nil, fmt.Errorf("decode %s form: %w", kind, err)
	}
	value := reflect.ValueOf(form).Elem().Interface()
	if issues := Validate(value); len(issues) > 0 {
		return nil, &ValidationError{Issues: issues}
	}
	return value, nil
}

func trimmed(v map[string]string, name string) string {
	return strings.TrimSpace(v[name])
}

var forms = map[Kind]FormSpec{
	KindEmployees: {
		Kind: KindEmployees, Title: "New employee",
		Fields: []Field{
			{Name: "name", Label: "Name"},
			{Name: "email", Label: "Email", Placeholder: "name@company.com"},
			{Name: "department", Label: "Department"},
			{Name: "position", Label: "Position"},
		},
		build: func(v map[string]string) (any, []Issue) {
			return EmployeeForm{Name: trimmed(v, "name"), Email: trimmed(v, "email"), Department: trimmed(v, "department"), Position: trimmed(v, "position")}, nil
		},
	},
	KindAttendance: {
		Kind: KindAttendance, Title: "Record attendance",
		Fields: []Field{
			{Name: "employeeId", Label: "Employee ID"},
			{Name: "date", Label: "Date", Placeholder: "YYYY-MM-DD"},
			{Name: "checkIn", Label: "Check in", Placeholder: "HH:MM"},
			{Name: "checkOut", Label: "Check out", Placeholder: "HH:MM"},
		},
		build: func(v map[string]string) (any, []Issue) {
			return AttendanceForm{EmployeeID: trimmed(v, "employeeId"), Date: trimmed(v, "date"), CheckIn: trimmed(v, "checkIn"), CheckOut: trimmed(v, "checkOut")}, nil
		},
	},
	KindOvertime: {
		Kind: KindOvertime, Title: "Request overtime",
		Fields: []Field{
			{Name: "employeeId", Label: "Employee ID"},
			{Name: "date", Label: "Date", Placeholder: "YYYY-MM-DD"},
			{Name: "hours", Label: "Hours", Placeholder: "2.5"},
			{Name: "reason", Label: "Reason"},
		},
		build: func(v map[string]string) (any, []Issue) {
			f := OvertimeForm{EmployeeID: trimmed(v, "employeeId"), Date: trimmed(v, "date"), Reason: trimmed(v, "reason")}
			if raw := trimmed(v, "hours"); raw != "" {
				h, err := strconv.ParseFloat(raw, 64)
				if err != nil {
					return nil, []Issue{{Path: "hours", Message: "must be a number"}}
				}
				f.Hours = h
			}
			return f, nil
		},
	},
	KindComplaints: {
		Kind: KindComplaints, Title: "File complaint",
		Fields: []Field{
			{Name: "employeeId", Label: "Employee ID"},
			{Name: "subject", Label: "Subject"},
			{Name: "description", Label: "Description", Multiline: true},
		},
		build: func(v map[string]string) (any, []Issue) {
			return ComplaintForm{EmployeeID: trimmed(v, "employeeId"), Subject: trimmed(v, "subject"), Description: trimmed(v, "description")}, nil
		},
	},
	KindLeave: {
		Kind: KindLeave, Title: "Request leave",
		Fields: []Field{
			{Name: "employeeId", Label: "Employee ID"},
			{Name: "type", Label: "Type", Placeholder: "annual | sick | unpaid"},
			{Name: "startDate", Label: "Start", Placeholder: "YYYY-MM-DD"},
			{Name: "endDate", Label: "End", Placeholder: "YYYY-MM-DD"},
			{Name: "reason", Label: "Reason"},
		},
		build: func(v map[string]string) (any, []Issue) {
			return LeaveForm{EmployeeID: trimmed(v, "employeeId"), Type: trimmed(v, "type"), StartDate: trimmed(v, "startDate"), EndDate: trimmed(v, "endDate"), Reason: trimmed(v, "reason")}, nil
		},
	},
	KindPerks: {
		Kind: KindPerks, Title: "New perk",
		Fields: []Field{
			{Name: "title", Label: "Title"},
			{Name: "category", Label: "Category", Placeholder: "health | wellness | learning | travel | other"},
			{Name: "description", Label: "Description", Multiline: true},
		},
		build: func(v map[string]string) (any, []Issue) {
			return PerkForm{Title: trimmed(v, "title"), Category: trimmed(v, "category"), Description: trimmed(v, "description")}, nil
		},
	},
	KindAnnouncements: {
		Kind: KindAnnouncements, Title: "Draft announcement",
		Fields: []Field{
			{Name: "title", Label: "Title"},
			{Name: "author", Label: "Author"},
			{Name: "body", Label: "Body (Markdown)", Multiline: true},
		},
		build: func(v map[string]string) (any, []Issue) {
			return AnnouncementForm{Title: trimmed(v, "title"), Author: trimmed(v, "author"), Body: v["body"]}, nil
		},
	},
}

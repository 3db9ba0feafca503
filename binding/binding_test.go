package binding

import "testing"

func sampleFields() Fields {
	return Fields{
		Title:       "Power Supply",
		Date:        "2024-05-01",
		Revision:    "B",
		Company:     "ACME",
		Comments:    []string{"first", "", "third"},
		SheetIndex:  3,
		SheetCount:  7,
		FileName:    "psu.sch",
		SheetPath:   "/psu/",
		PaperFormat: "A4",
		AppVersion:  "1.0.0",
		Vars: map[string]any{
			"project": map[string]any{"name": "psu", "tags": []any{"x", "y"}},
		},
	}
}

func TestExpandLegacyMarkers(t *testing.T) {
	f := sampleFields()
	cases := []struct{ in, want string }{
		{"Id: %S/%N", "Id: 3/7"},
		{"Title: %T", "Title: Power Supply"},
		{"Rev: %R %D", "Rev: B 2024-05-01"},
		{"%Y %Z %F %P", "ACME A4 psu.sch /psu/"},
		{"%C0|%C1|%C2", "first||third"},
		{"%C9", ""},
		{"%C*", "first third"},
		{"100%%", "100%"},
		{"%K", "1.0.0"},
		{"%Q stays", "%Q stays"},
		{"trailing %", "trailing %"},
		{"%C alone", "%C alone"},
		{"no markers", "no markers"},
	}
	for _, c := range cases {
		if got := Expand(c.in, f); got != c.want {
			t.Fatalf("Expand(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestExpandVariables(t *testing.T) {
	f := sampleFields()
	f.CommentSeparator = "; "
	cases := []struct{ in, want string }{
		{"Sheet ${#} of ${##}", "Sheet 3 of 7"},
		{"${SHEETNUMBER}/${SHEETCOUNT}", "3/7"},
		{"${COMMENT1} ${COMMENT3}", "first third"},
		{"${COMMENTS}", "first; third"},
		{"${TITLE} by ${COMPANY}", "Power Supply by ACME"},
		{"${project.name}", "psu"},
		{"${project.tags[1]}", "y"},
		{"${UNKNOWN}", "${UNKNOWN}"},
		{"${project.missing}", "${project.missing}"},
		{"${}", "${}"},
		{"${unterminated", "${unterminated"},
	}
	for _, c := range cases {
		if got := Expand(c.in, f); got != c.want {
			t.Fatalf("Expand(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestExpandPageNumberScenario(t *testing.T) {
	got := Expand("Page %S of %N", Fields{SheetIndex: 3, SheetCount: 7})
	if got != "Page 3 of 7" {
		t.Fatalf("got %q", got)
	}
}

func TestIncrementLabel(t *testing.T) {
	cases := []struct {
		in    string
		delta int
		want  string
	}{
		{"1", 1, "2"},
		{"9", 1, "10"},
		{"09", 1, "10"},
		{"007", 1, "008"},
		{"X12", 3, "X15"},
		{"A", 1, "B"},
		{"A", 25, "Z"},
		{"Z", 1, "AA"},
		{"AZ", 1, "BA"},
		{"az", 1, "ba"},
		{"zz", 1, "aaa"},
		{"Row A", 2, "Row C"},
		{"B", -5, "A"},
		{"3", -5, "0"},
		{"x-", 1, "x-"},
		{"", 1, ""},
		{"A", 0, "A"},
	}
	for _, c := range cases {
		if got := IncrementLabel(c.in, c.delta); got != c.want {
			t.Fatalf("IncrementLabel(%q, %d) = %q, want %q", c.in, c.delta, got, c.want)
		}
	}
}

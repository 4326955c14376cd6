package doctor

import (
	"context"
	"encoding/json"
	"testing"
)

type stubCheck struct {
	name     string
	category string
	status   Severity
}

func (s *stubCheck) Name() string     { return s.name }
func (s *stubCheck) Category() string { return s.category }
func (s *stubCheck) Run() *CheckResult {
	return &CheckResult{Status: s.status, Message: s.name}
}

func TestNewRunner(t *testing.T) {
	r := NewRunner()
	if r == nil {
		t.Fatal("NewRunner returned nil")
	}
	if len(r.checks) != 0 {
		t.Errorf("NewRunner().checks = %d, want 0", len(r.checks))
	}
}

func TestRunner_Run(t *testing.T) {
	r := NewRunner()
	for i, s := range []Severity{SeverityPass, SeverityInfo, SeverityWarning, SeverityError, SeverityPass} {
		r.AddCheck(&stubCheck{name: string(rune('a' + i)), category: "test", status: s})
	}

	report := r.Run(t.Context())

	if len(report.Results) != 5 {
		t.Fatalf("len(Results) = %d, want 5", len(report.Results))
	}
	for i, res := range report.Results {
		if want := string(rune('a' + i)); res.Name != want {
			t.Errorf("Results[%d].Name = %q, want %q", i, res.Name, want)
		}
		if res.Category != "test" {
			t.Errorf("Results[%d].Category = %q, want filled from check", i, res.Category)
		}
	}

	want := Summary{Passed: 2, Info: 1, Warnings: 1, Errors: 1}
	if report.Summary != want {
		t.Errorf("Summary = %+v, want %+v", report.Summary, want)
	}
	if !report.HasErrors() || !report.HasWarnings() {
		t.Error("HasErrors/HasWarnings = false, want true")
	}
	if report.Timestamp.IsZero() {
		t.Error("Timestamp not set")
	}
}

func TestRunner_Empty(t *testing.T) {
	report := NewRunner().Run(t.Context())
	if report.HasErrors() || report.HasWarnings() {
		t.Error("empty report should have no errors or warnings")
	}
}

func TestRunner_Cancelled(t *testing.T) {
	r := NewRunner()
	r.AddCheck(&stubCheck{name: "a", category: "test", status: SeverityError})

	ctx, cancel := context.WithCancel(t.Context())
	cancel()
	report := r.Run(ctx)

	if !report.Incomplete {
		t.Error("Incomplete = false, want true")
	}
	if len(report.Results) != 0 {
		t.Errorf("len(Results) = %d, want 0", len(report.Results))
	}
	if report.HasErrors() {
		t.Error("skipped checks must not count toward the summary")
	}
}

func TestSeverity_String(t *testing.T) {
	tests := []struct {
		s    Severity
		want string
	}{
		{SeverityPass, "pass"},
		{SeverityInfo, "info"},
		{SeverityWarning, "warning"},
		{SeverityError, "error"},
		{Severity(99), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.s.String(); got != tt.want {
			t.Errorf("Severity(%d).String() = %q, want %q", tt.s, got, tt.want)
		}
	}
}

func TestSeverity_MarshalJSON(t *testing.T) {
	data, err := json.Marshal(CheckResult{Name: "x", Status: SeverityWarning})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var got map[string]any
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if got["status"] != "warning" {
		t.Errorf("status = %v, want \"warning\"", got["status"])
	}
}

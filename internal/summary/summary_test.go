package summary

import (
	"strings"
	"testing"
	"time"
)

func TestBuildDailyReport(t *testing.T) {
	entries := []Entry{
		{Name: "Alice", At: time.Date(2025, 3, 10, 9, 5, 0, 0, time.UTC)},
		{Name: "Bob", At: time.Date(2025, 3, 10, 14, 30, 0, 0, time.UTC)},
	}

	report := buildDailyReport("2025-03-10", entries)

	for _, want := range []string{
		"Date: 2025-03-10",
		"Total logged: 2",
		"- Alice at 09:05",
		"- Bob at 14:30",
	} {
		if !strings.Contains(report, want) {
			t.Errorf("report missing %q:\n%s", want, report)
		}
	}
}

func TestBuildDailyReportEmpty(t *testing.T) {
	report := buildDailyReport("2025-03-10", nil)
	if !strings.Contains(report, "Total logged: 0") {
		t.Errorf("expected zero count, got:\n%s", report)
	}
}

func TestPromptsEmbedded(t *testing.T) {
	if strings.TrimSpace(greetingPrompt) == "" {
		t.Error("greeting prompt must not be empty")
	}
	if strings.TrimSpace(dailyPrompt) == "" {
		t.Error("daily prompt must not be empty")
	}
}

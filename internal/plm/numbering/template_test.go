package numbering

import (
	"testing"
	"time"
)

func TestRenderNumberBasic(t *testing.T) {
	got := RenderNumber("<prefix><part_number><revision>", NumberVars{
		Prefix:   "PRT",
		Number:   1001,
		Revision: "A",
	})
	if got != "PRT1001A" {
		t.Errorf("RenderNumber = %q, want PRT1001A", got)
	}
}

func TestRenderNumberMissingProject(t *testing.T) {
	got := RenderNumber("<project_number>-<part_number>", NumberVars{Number: 42})
	if got != "??-42" {
		t.Errorf("RenderNumber = %q, want ??-42", got)
	}
}

func TestRenderNumberDateParts(t *testing.T) {
	created := time.Date(2024, time.March, 7, 12, 0, 0, 0, time.UTC)
	got := RenderNumber("<year>-<month>-<day>", NumberVars{CreatedAt: created})
	if got != "2024-3-7" {
		t.Errorf("RenderNumber = %q, want 2024-3-7", got)
	}
}

func TestRenderNumberUnknownTokenPassthrough(t *testing.T) {
	got := RenderNumber("<prefix><nonsense><part_number>", NumberVars{Prefix: "DOC", Number: 7})
	if got != "DOC<nonsense>7" {
		t.Errorf("Unknown token must pass through, got %q", got)
	}
}

func TestRenderNumberEmptyTemplateFallsBack(t *testing.T) {
	got := RenderNumber("  ", NumberVars{Prefix: "PRT", Number: 5, Revision: "B-1"})
	if got != "PRT5B-1" {
		t.Errorf("Empty template must fall back to default, got %q", got)
	}
}

func TestRenderNumberCounterTokens(t *testing.T) {
	got := RenderNumber("<part_number>r<major_revision>.<minor_revision>", NumberVars{
		Number: 9, Major: 2, Minor: 1,
	})
	if got != "9r2.1" {
		t.Errorf("RenderNumber = %q, want 9r2.1", got)
	}
}

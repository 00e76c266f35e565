package mood

import (
	"strings"
	"testing"

	"github.com/sonicsync/sonicsync/internal/model"
)

func TestAnalyze_DominantMood(t *testing.T) {
	tracks := []model.TrackDescriptor{
		{Title: "Dance All Night", Artist: "Party People"},
		{Title: "Power Beat", Artist: "Rock Metal Band"},
		{Title: "Pump It", Artist: "Energy Crew"},
	}

	got := Analyze(tracks)
	if got.Mood != "energetic" {
		t.Errorf("Mood = %q, want energetic", got.Mood)
	}
	if got.Confidence <= 0 || got.Confidence > 1 {
		t.Errorf("Confidence = %v, want in (0, 1]", got.Confidence)
	}
	if got.Breakdown["energetic"] == 0 {
		t.Error("Breakdown missing energetic hits")
	}
	if got.Description == "" {
		t.Error("Description empty")
	}
}

func TestAnalyze_NoKeywordHitsIsMixed(t *testing.T) {
	tracks := []model.TrackDescriptor{
		{Title: "Xylophone Etude", Artist: "Instrumentalist"},
	}

	got := Analyze(tracks)
	if got.Mood != "mixed" {
		t.Errorf("Mood = %q, want mixed", got.Mood)
	}
	if got.Confidence != 0.5 {
		t.Errorf("Confidence = %v, want 0.5", got.Confidence)
	}
}

func TestAnalyze_EmptyPlaylist(t *testing.T) {
	got := Analyze(nil)
	if got.Mood != "unknown" {
		t.Errorf("Mood = %q, want unknown", got.Mood)
	}
	if got.Confidence != 0 {
		t.Errorf("Confidence = %v, want 0", got.Confidence)
	}
}

func TestAnalyze_ConfidenceCappedAtOne(t *testing.T) {
	// One track hitting many keywords must not push confidence past 1.
	tracks := []model.TrackDescriptor{
		{Title: "Dance Party Energy Pump Power Rock Metal Beat", Artist: "X"},
	}

	got := Analyze(tracks)
	if got.Confidence > 1 {
		t.Errorf("Confidence = %v, want capped at 1", got.Confidence)
	}
}

func TestAnalyze_DescriptionReflectsConsistency(t *testing.T) {
	strong := Analyze([]model.TrackDescriptor{
		{Title: "Love Heart Kiss", Artist: "Romantic Valentine"},
	})
	if !strings.Contains(strong.Description, "very consistent") {
		t.Errorf("high-confidence description = %q, want consistency note", strong.Description)
	}

	weak := Analyze([]model.TrackDescriptor{
		{Title: "Love Song", Artist: "A"},
		{Title: "Plain Tune", Artist: "B"},
		{Title: "Quiet Thing", Artist: "C"},
		{Title: "Another One", Artist: "D"},
	})
	if !strings.Contains(weak.Description, "varied emotional range") {
		t.Errorf("low-confidence description = %q, want varied-range note", weak.Description)
	}
}

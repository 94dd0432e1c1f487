package transcribe

import (
	"math"
	"testing"
)

func logProb(v float64) *float64 { return &v }

func TestConfidenceFromSegments(t *testing.T) {
	if got := confidenceFromSegments(nil); got != nil {
		t.Fatalf("expected nil for no segments, got %v", *got)
	}

	// exp(0) = 1, so two perfectly scored segments mean 100%.
	got := confidenceFromSegments([]whisperSegment{
		{AvgLogProb: logProb(0)},
		{AvgLogProb: logProb(0)},
	})
	if got == nil || *got != 100 {
		t.Fatalf("confidence = %v", got)
	}

	got = confidenceFromSegments([]whisperSegment{
		{AvgLogProb: logProb(-0.2)},
		{AvgLogProb: logProb(-0.5)},
	})
	want := (math.Exp(-0.2) + math.Exp(-0.5)) / 2 * 100
	if got == nil || math.Abs(*got-want) > 1e-9 {
		t.Fatalf("confidence = %v, want %v", got, want)
	}

	// Segments without the field neither count toward the average nor
	// inflate it as exp(0).
	got = confidenceFromSegments([]whisperSegment{
		{AvgLogProb: logProb(-0.2)},
		{},
	})
	want = math.Exp(-0.2) * 100
	if got == nil || math.Abs(*got-want) > 1e-9 {
		t.Fatalf("confidence = %v, want %v", got, want)
	}

	if got := confidenceFromSegments([]whisperSegment{{}, {}}); got != nil {
		t.Fatalf("expected nil when no segment reports avg_logprob, got %v", *got)
	}
}

func TestConvertSegmentsTrimsText(t *testing.T) {
	converted := convertSegments([]whisperSegment{
		{Start: 0, End: 2, Text: " hello ", Words: []whisperWord{{Word: " hello", Start: 0, End: 1.8}}},
	})
	if len(converted) != 1 {
		t.Fatalf("converted: %+v", converted)
	}
	if converted[0].Text != "hello" {
		t.Fatalf("text = %q", converted[0].Text)
	}
	if len(converted[0].Words) != 1 || converted[0].Words[0].Word != "hello" {
		t.Fatalf("words: %+v", converted[0].Words)
	}
	if convertSegments(nil) != nil {
		t.Fatal("expected nil for no segments")
	}
}

package transcribe

import (
	"strings"
	"testing"
	"time"

	"tessera/internal/store"
)

func TestFormatVTTTime(t *testing.T) {
	cases := []struct {
		seconds float64
		want    string
	}{
		{0, "00:00:00.000"},
		{1.5, "00:00:01.500"},
		{125.5, "00:02:05.500"},
		{3725.25, "01:02:05.250"},
		{59.9999, "00:01:00.000"},
		{-3, "00:00:00.000"},
	}
	for _, tc := range cases {
		if got := FormatVTTTime(tc.seconds); got != tc.want {
			t.Errorf("FormatVTTTime(%v) = %q, want %q", tc.seconds, got, tc.want)
		}
	}
}

func TestFormatSRTTimeUsesComma(t *testing.T) {
	if got := FormatSRTTime(125.5); got != "00:02:05,500" {
		t.Fatalf("FormatSRTTime = %q", got)
	}
	if got := FormatSRTTime(3600); got != "01:00:00,000" {
		t.Fatalf("FormatSRTTime = %q", got)
	}
}

func TestWriteVTT(t *testing.T) {
	segments := []store.TranscriptSegment{
		{Start: 0, End: 2.5, Text: " hello there "},
		{Start: 2.5, End: 5, Text: "second cue"},
	}
	var buf strings.Builder
	if err := WriteVTT(&buf, segments); err != nil {
		t.Fatalf("WriteVTT: %v", err)
	}
	want := "WEBVTT\n\n" +
		"00:00:00.000 --> 00:00:02.500\nhello there\n\n" +
		"00:00:02.500 --> 00:00:05.000\nsecond cue\n\n"
	if buf.String() != want {
		t.Fatalf("vtt output:\n%q\nwant:\n%q", buf.String(), want)
	}
}

func TestWriteSRT(t *testing.T) {
	segments := []store.TranscriptSegment{
		{Start: 0, End: 2.5, Text: "hello there"},
		{Start: 2.5, End: 5, Text: "second cue"},
	}
	var buf strings.Builder
	if err := WriteSRT(&buf, segments); err != nil {
		t.Fatalf("WriteSRT: %v", err)
	}
	want := "1\n00:00:00,000 --> 00:00:02,500\nhello there\n\n" +
		"2\n00:00:02,500 --> 00:00:05,000\nsecond cue\n\n"
	if buf.String() != want {
		t.Fatalf("srt output:\n%q\nwant:\n%q", buf.String(), want)
	}
}

func TestWritePlainTextHeader(t *testing.T) {
	var buf strings.Builder
	err := WritePlainText(&buf, &store.Transcript{
		Language:  "en",
		FullText:  "hello there second cue",
		Duration:  125.7,
		CreatedAt: time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("WritePlainText: %v", err)
	}
	out := buf.String()
	if !strings.HasPrefix(out, "TRANSCRIPTION\n=============\n\n") {
		t.Fatalf("header:\n%q", out)
	}
	if !strings.Contains(out, "Language: English\n") {
		t.Fatalf("language line missing:\n%q", out)
	}
	if !strings.Contains(out, "Transcribed: 2026-03-14T09:30:00Z\n") {
		t.Fatalf("transcribed line missing:\n%q", out)
	}
	if !strings.Contains(out, "Duration: 2:05\n") {
		t.Fatalf("duration line missing:\n%q", out)
	}
	if !strings.HasSuffix(out, "hello there second cue\n") {
		t.Fatalf("body:\n%q", out)
	}
}

func TestFormatDuration(t *testing.T) {
	cases := []struct {
		seconds float64
		want    string
	}{
		{0, "0:00"},
		{59.9, "0:59"},
		{125.7, "2:05"},
		{3600, "1:00:00"},
		{5025, "1:23:45"},
		{-3, "0:00"},
	}
	for _, tc := range cases {
		if got := FormatDuration(tc.seconds); got != tc.want {
			t.Errorf("FormatDuration(%v) = %q, want %q", tc.seconds, got, tc.want)
		}
	}
}

func TestLanguageName(t *testing.T) {
	cases := []struct{ code, want string }{
		{"en", "English"},
		{"de", "German"},
		{"pt", "Portuguese"},
		{"", "Unknown"},
		{"zz-not-a-code!", "zz-not-a-code!"},
	}
	for _, tc := range cases {
		if got := LanguageName(tc.code); got != tc.want {
			t.Errorf("LanguageName(%q) = %q, want %q", tc.code, got, tc.want)
		}
	}
}

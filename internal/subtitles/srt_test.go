package subtitles_test

import (
	"fmt"
	"regexp"
	"strings"
	"testing"

	"vidscribe/internal/subtitles"
)

func TestFormatTimestamp(t *testing.T) {
	tests := []struct {
		seconds float64
		want    string
	}{
		{0, "00:00:00,000"},
		{3661.5, "01:01:01,500"},
		{59.9999, "00:00:59,999"},
		// Decimal inputs that float64 stores slightly low keep their millisecond.
		{0.29, "00:00:00,290"},
		{1.001, "00:00:01,001"},
		// Anything short of the next millisecond still truncates.
		{0.0009999, "00:00:00,000"},
		{2.9996, "00:00:02,999"},
		{1.0019994, "00:00:01,001"},
		{86399.999, "23:59:59,999"},
		{360000, "100:00:00,000"},
		{-4, "00:00:00,000"},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.seconds), func(t *testing.T) {
			if got := subtitles.FormatTimestamp(tt.seconds); got != tt.want {
				t.Fatalf("FormatTimestamp(%v) = %q, want %q", tt.seconds, got, tt.want)
			}
		})
	}
}

func TestParseTimestamp(t *testing.T) {
	got, err := subtitles.ParseTimestamp("01:01:01,500")
	if err != nil {
		t.Fatalf("ParseTimestamp: %v", err)
	}
	if got != 3661.5 {
		t.Fatalf("ParseTimestamp = %v, want 3661.5", got)
	}
	if got, err := subtitles.ParseTimestamp(" 00:00:02.250 "); err != nil || got != 2.25 {
		t.Fatalf("ParseTimestamp with period = %v, %v", got, err)
	}
	for _, bad := range []string{"", "00:00:01", "aa:00:00,000", "00:61:00,000", "00:00:00,1000"} {
		if _, err := subtitles.ParseTimestamp(bad); err == nil {
			t.Fatalf("expected error for %q", bad)
		}
	}
}

func TestEncodeZeroBoundarySegment(t *testing.T) {
	doc := subtitles.Encode([]subtitles.Segment{{Start: 0, End: 0, Text: "hi"}})
	want := "1\n00:00:00,000 --> 00:00:00,000\nhi\n\n"
	if doc != want {
		t.Fatalf("Encode = %q, want %q", doc, want)
	}
}

func TestEncodeBlockStructure(t *testing.T) {
	segments := []subtitles.Segment{
		{Start: 0.5, End: 2.25, Text: "Hello there."},
		{Start: 2.25, End: 4, Text: "Second line\nwith a break"},
		{Start: 61, End: 3661.5, Text: "  padded  "},
	}
	doc := subtitles.Encode(segments)

	blocks := strings.Split(strings.TrimSuffix(doc, "\n\n"), "\n\n")
	if len(blocks) != len(segments) {
		t.Fatalf("expected %d blocks, got %d: %q", len(segments), len(blocks), doc)
	}
	timing := regexp.MustCompile(`^\d{2}:\d{2}:\d{2},\d{3} --> \d{2}:\d{2}:\d{2},\d{3}$`)
	for i, block := range blocks {
		lines := strings.Split(block, "\n")
		if lines[0] != fmt.Sprint(i+1) {
			t.Fatalf("block %d: expected sequence %d, got %q", i, i+1, lines[0])
		}
		if !timing.MatchString(lines[1]) {
			t.Fatalf("block %d: timing line %q does not match pattern", i, lines[1])
		}
	}
	if !strings.Contains(doc, "Second line\nwith a break\n") {
		t.Fatalf("expected multi-line text preserved, got %q", doc)
	}
	if !strings.Contains(doc, "\npadded\n") {
		t.Fatalf("expected text lines trimmed, got %q", doc)
	}
}

func TestEncodeDropsBlankTextLines(t *testing.T) {
	doc := subtitles.Encode([]subtitles.Segment{
		{Start: 1, End: 2, Text: "first\n\n\nsecond"},
		{Start: 2, End: 3, Text: "third"},
	})
	cues := subtitles.Parse(doc)
	if len(cues) != 2 {
		t.Fatalf("expected blank lines not to split blocks, got %d cues from %q", len(cues), doc)
	}
	if cues[0].Text() != "first second" {
		t.Fatalf("unexpected first cue text %q", cues[0].Text())
	}
}

func TestEncodeEmpty(t *testing.T) {
	if doc := subtitles.Encode(nil); doc != "" {
		t.Fatalf("expected empty document, got %q", doc)
	}
	if text := subtitles.Decode(""); text != "" {
		t.Fatalf("expected empty text, got %q", text)
	}
}

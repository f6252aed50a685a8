package subtitles_test

import (
	"strings"
	"testing"

	"vidscribe/internal/subtitles"
)

func TestDecodeRoundTrip(t *testing.T) {
	cases := [][]subtitles.Segment{
		{{Start: 0, End: 1, Text: "Hello"}},
		{
			{Start: 0, End: 1.5, Text: " Hello   world "},
			{Start: 1.5, End: 3, Text: "second\tsegment"},
			{Start: 3, End: 4, Text: "line one\nline two"},
		},
		{
			{Start: 0, End: 1, Text: "¿Qué tal?"},
			{Start: 1, End: 2, Text: ""},
			{Start: 2, End: 3, Text: "日本語のテキスト"},
		},
	}
	for _, segments := range cases {
		got := subtitles.Decode(subtitles.Encode(segments))
		want := normalizedConcat(segments)
		if got != want {
			t.Fatalf("round trip mismatch:\n got %q\nwant %q", got, want)
		}
	}
}

func normalizedConcat(segments []subtitles.Segment) string {
	parts := make([]string, 0, len(segments))
	for _, seg := range segments {
		if text := strings.Join(strings.Fields(seg.Text), " "); text != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, " ")
}

func TestDecodeSkipsMalformedBlocks(t *testing.T) {
	doc := "1\n00:00:01,000 --> 00:00:02,000\nkept one\n\n" +
		"2\n00:00:02,000 00:00:03,000\nmissing arrow\n\n" +
		"x\n00:00:03,000 --> 00:00:04,000\nbad index\n\n" +
		"0\n00:00:04,000 --> 00:00:05,000\nzero index\n\n" +
		"5\n00:00:05,000 --> 00:00:06,000\nkept two\n"
	if got := subtitles.Decode(doc); got != "kept one kept two" {
		t.Fatalf("Decode = %q", got)
	}
}

func TestDecodeStripsMarkup(t *testing.T) {
	doc := "1\r\n00:00:01,000 --> 00:00:02,000\r\n<i>Hello</i> there\r\n\r\n" +
		"2\r\n00:00:02,000 --> 00:00:03,000\r\n{\\an8}General&nbsp;Kenobi\\hyou are\r\n"
	if got := subtitles.Decode(doc); got != "Hello there General Kenobi you are" {
		t.Fatalf("Decode = %q", got)
	}
}

func TestParseToleratesBOMAndExtraBlankLines(t *testing.T) {
	doc := "\ufeff1\n00:00:01,000 --> 00:00:02,500 X1:40 X2:600\nfirst\n\n\n\n2\n00:01:00,000 --> 00:01:01,000\nsecond\n"
	cues := subtitles.Parse(doc)
	if len(cues) != 2 {
		t.Fatalf("expected 2 cues, got %d", len(cues))
	}
	if cues[0].Index != 1 || cues[0].Start != 1 || cues[0].End != 2.5 {
		t.Fatalf("unexpected first cue: %+v", cues[0])
	}
	if cues[1].Start != 60 {
		t.Fatalf("unexpected second cue start: %v", cues[1].Start)
	}
}

func TestParseKeepsBlockWithUnparseableTiming(t *testing.T) {
	cues := subtitles.Parse("3\nsoon --> later\nstill text\n")
	if len(cues) != 1 {
		t.Fatalf("expected block with separator to be valid, got %d", len(cues))
	}
	if cues[0].Start != 0 || cues[0].End != 0 {
		t.Fatalf("expected zero timings, got %+v", cues[0])
	}
}

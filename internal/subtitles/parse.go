package subtitles

import (
	"regexp"
	"strconv"
	"strings"
)

// Cue is one valid block of a parsed SRT document.
type Cue struct {
	Index int
	Start float64
	End   float64
	Lines []string
}

// Text joins the cue's text lines with single spaces.
func (c Cue) Text() string {
	return strings.Join(c.Lines, " ")
}

var (
	htmlTagPattern  = regexp.MustCompile(`<[^>]*>`)
	braceTagPattern = regexp.MustCompile(`\{[^}]*\}`)
	hardSpaces      = strings.NewReplacer("\u00a0", " ", "&nbsp;", " ", `\h`, " ")
)

// Parse splits doc into blocks and returns the valid ones in document order.
// Timestamps that fail to parse leave Start or End at zero; the block still
// counts as valid because only the index line and separator are required.
func Parse(doc string) []Cue {
	doc = strings.TrimPrefix(doc, "\ufeff")
	doc = strings.ReplaceAll(doc, "\r\n", "\n")
	doc = strings.ReplaceAll(doc, "\r", "\n")

	var cues []Cue
	var block []string
	flush := func() {
		if cue, ok := parseBlock(block); ok {
			cues = append(cues, cue)
		}
		block = block[:0]
	}
	for _, line := range strings.Split(doc, "\n") {
		if strings.TrimSpace(line) == "" {
			if len(block) > 0 {
				flush()
			}
			continue
		}
		block = append(block, line)
	}
	if len(block) > 0 {
		flush()
	}
	return cues
}

func parseBlock(lines []string) (Cue, bool) {
	if len(lines) < 2 {
		return Cue{}, false
	}
	index, err := strconv.Atoi(strings.TrimSpace(lines[0]))
	if err != nil || index <= 0 {
		return Cue{}, false
	}
	timing := lines[1]
	if !strings.Contains(timing, TimingSeparator) {
		return Cue{}, false
	}
	cue := Cue{Index: index}
	startText, endText, _ := strings.Cut(timing, TimingSeparator)
	cue.Start, _ = ParseTimestamp(startText)
	// Position hints such as "X1:40" may follow the end timestamp.
	if fields := strings.Fields(endText); len(fields) > 0 {
		cue.End, _ = ParseTimestamp(fields[0])
	}
	for _, line := range lines[2:] {
		cue.Lines = append(cue.Lines, strings.TrimSpace(line))
	}
	return cue, true
}

// Decode extracts the spoken text of doc as one whitespace-normalized line.
// Markup tags are removed and hard-space markers become ordinary spaces.
func Decode(doc string) string {
	cues := Parse(doc)
	parts := make([]string, 0, len(cues))
	for _, cue := range cues {
		if text := CleanText(cue.Text()); text != "" {
			parts = append(parts, text)
		}
	}
	return strings.TrimSpace(strings.Join(parts, " "))
}

// CleanText strips markup from a cue's text and collapses whitespace.
func CleanText(text string) string {
	text = htmlTagPattern.ReplaceAllString(text, "")
	text = braceTagPattern.ReplaceAllString(text, "")
	text = hardSpaces.Replace(text)
	return strings.Join(strings.Fields(text), " ")
}

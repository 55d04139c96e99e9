package file

import (
	"bufio"
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"call_transcriber/internal/domain"
)

// Speaker display label styles.
const (
	LabelStyleSpeaker = "speaker" // "Speaker 0", "Speaker 1", ...
	LabelStylePerson  = "person"  // "Person A", "Person B", ...
)

const (
	headerRule  = "============================================================"
	sectionRule = "------------------------------------------------------------"

	fullTextHeading = "FULL TRANSCRIPTION:"
	segmentsHeading = "SPEAKER DIARIZATION:"

	headerDateLayout = "2006-01-02 15:04:05"
)

// Relabel maps vendor speaker tokens to display labels, numbering speakers
// by first appearance so the first voice heard is always speaker zero.
// Vendor tokens are opaque; only their identity matters.
func Relabel(segments []domain.Segment, style string) []domain.Segment {
	if len(segments) == 0 {
		return nil
	}

	indexOf := make(map[string]int)
	out := make([]domain.Segment, len(segments))
	for i, seg := range segments {
		idx, ok := indexOf[seg.Speaker]
		if !ok {
			idx = len(indexOf)
			indexOf[seg.Speaker] = idx
		}
		out[i] = domain.Segment{
			Speaker: DisplayLabel(style, idx),
			Text:    seg.Text,
		}
	}
	return out
}

// DisplayLabel renders the display label for the nth distinct speaker.
func DisplayLabel(style string, n int) string {
	if style == LabelStylePerson {
		if n < 26 {
			return fmt.Sprintf("Person %c", 'A'+n)
		}
		return fmt.Sprintf("Person %d", n+1)
	}
	return fmt.Sprintf("Speaker %d", n)
}

// TranscriptHeader holds the call metadata written at the top of a
// transcript file.
type TranscriptHeader struct {
	CallSid   string
	From      string
	To        string
	Direction string
	Duration  int
	Date      string // headerDateLayout
}

func renderTranscript(h TranscriptHeader, text string, segments []domain.Segment) []byte {
	var b strings.Builder

	fmt.Fprintf(&b, "CALL SID: %s\n", h.CallSid)
	fmt.Fprintf(&b, "FROM: %s\n", h.From)
	fmt.Fprintf(&b, "TO: %s\n", h.To)
	fmt.Fprintf(&b, "DIRECTION: %s\n", h.Direction)
	fmt.Fprintf(&b, "DURATION: %d\n", h.Duration)
	fmt.Fprintf(&b, "DATE: %s\n", h.Date)
	b.WriteString(headerRule + "\n\n")

	b.WriteString(fullTextHeading + "\n")
	b.WriteString(sectionRule + "\n")
	b.WriteString(text + "\n")

	if len(segments) > 0 {
		b.WriteString("\n" + segmentsHeading + "\n")
		b.WriteString(sectionRule + "\n")
		for _, seg := range segments {
			fmt.Fprintf(&b, "\n%s: %s\n", seg.Speaker, seg.Text)
		}
	}

	return []byte(b.String())
}

// ParseTranscript reads a transcript file back into its header, full text
// and ordered speaker segments. It accepts exactly the layout written by
// renderTranscript.
func ParseTranscript(data []byte) (TranscriptHeader, string, []domain.Segment, error) {
	var h TranscriptHeader
	var text strings.Builder
	var segments []domain.Segment

	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Buffer(make([]byte, 1024*1024), 1024*1024)

	section := "header"
	for sc.Scan() {
		line := sc.Text()

		switch section {
		case "header":
			if line == headerRule {
				section = "preamble"
				continue
			}
			key, value, ok := strings.Cut(line, ": ")
			if !ok {
				return h, "", nil, fmt.Errorf("malformed header line %q", line)
			}
			switch key {
			case "CALL SID":
				h.CallSid = value
			case "FROM":
				h.From = value
			case "TO":
				h.To = value
			case "DIRECTION":
				h.Direction = value
			case "DURATION":
				d, err := strconv.Atoi(value)
				if err != nil {
					return h, "", nil, fmt.Errorf("malformed duration %q", value)
				}
				h.Duration = d
			case "DATE":
				h.Date = value
			}
		case "preamble":
			if line == fullTextHeading {
				section = "text_rule"
			}
		case "text_rule":
			section = "text"
		case "text":
			if line == segmentsHeading {
				section = "segments_rule"
				continue
			}
			if text.Len() > 0 {
				text.WriteString("\n")
			}
			text.WriteString(line)
		case "segments_rule":
			section = "segments"
		case "segments":
			if line == "" {
				continue
			}
			label, segText, ok := strings.Cut(line, ": ")
			if !ok {
				return h, "", nil, fmt.Errorf("malformed segment line %q", line)
			}
			segments = append(segments, domain.Segment{Speaker: label, Text: segText})
		}
	}
	if err := sc.Err(); err != nil {
		return h, "", nil, err
	}

	return h, strings.TrimSpace(text.String()), segments, nil
}

package deepgram

import (
	"strconv"
	"strings"

	"call_transcriber/internal/domain"
)

// wordInfo is the slice of a vendor word the segment builder needs.
type wordInfo struct {
	speaker int
	text    string
}

// segmentsFromWords groups consecutive words with the same vendor speaker
// into one segment per speaker turn, preserving chronological order. The
// vendor's integer speaker id is carried as an opaque token.
func segmentsFromWords(words []wordInfo) []domain.Segment {
	if len(words) == 0 {
		return nil
	}

	var segments []domain.Segment
	current := words[0].speaker
	var text []string

	flush := func() {
		if len(text) == 0 {
			return
		}
		segments = append(segments, domain.Segment{
			Speaker: strconv.Itoa(current),
			Text:    strings.Join(text, " "),
		})
		text = text[:0]
	}

	for _, w := range words {
		if w.speaker != current {
			flush()
			current = w.speaker
		}
		if w.text != "" {
			text = append(text, w.text)
		}
	}
	flush()

	return segments
}

package domain

// Segment is one speaker-attributed span of a transcript. Speaker carries
// the vendor-assigned token ("A", "0", ...) untouched; display labels are a
// formatting concern, not part of the transcription contract.
type Segment struct {
	Speaker string
	Text    string
}

// Transcript is the output of transcribing one recording. Segments are in
// chronological order.
type Transcript struct {
	Text     string
	Segments []Segment
	Provider string
	Language string
}

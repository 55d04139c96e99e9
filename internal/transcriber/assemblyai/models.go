package assemblyai

// uploadResponse is returned by POST /v2/upload.
type uploadResponse struct {
	UploadURL string `json:"upload_url"`
}

// transcriptRequest is the body of POST /v2/transcript.
type transcriptRequest struct {
	AudioURL          string `json:"audio_url"`
	LanguageCode      string `json:"language_code,omitempty"`
	LanguageDetection bool   `json:"language_detection,omitempty"`
	SpeakerLabels     bool   `json:"speaker_labels,omitempty"`
	Punctuate         bool   `json:"punctuate"`
}

// transcriptResponse is returned by both the submit and the status
// endpoints. Status moves queued → processing → completed|error.
type transcriptResponse struct {
	ID         string      `json:"id"`
	Status     string      `json:"status"`
	Text       string      `json:"text"`
	Error      string      `json:"error"`
	Words      []word      `json:"words"`
	Utterances []utterance `json:"utterances"`
}

type word struct {
	Text    string `json:"text"`
	Speaker string `json:"speaker"`
	Start   int    `json:"start"`
	End     int    `json:"end"`
}

type utterance struct {
	Speaker string `json:"speaker"`
	Text    string `json:"text"`
	Start   int    `json:"start"`
	End     int    `json:"end"`
}

const (
	statusCompleted = "completed"
	statusError     = "error"
)

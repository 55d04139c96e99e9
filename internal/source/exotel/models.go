package exotel

// APIResponse represents the Exotel call-list response structure.
type APIResponse struct {
	Calls []CallRecord `json:"Calls"`
}

type CallRecord struct {
	Sid          string `json:"Sid"`
	From         string `json:"From"`
	To           string `json:"To"`
	Direction    string `json:"Direction"`
	Status       string `json:"Status"`
	Duration     int    `json:"Duration"`
	StartTime    string `json:"StartTime"`
	RecordingURL string `json:"RecordingUrl"`
}

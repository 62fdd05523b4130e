package models

const (
	StatusDownloaded = "downloaded"
	StatusProcessed  = "processed"
	StatusError      = "error"
)

// Result is returned from every entry path. Only the fields belonging to
// the path that ran are set.
type Result struct {
	Status      string `json:"status"`
	Filename    string `json:"filename,omitempty"`
	CSVFilename string `json:"csv_filename,omitempty"`
	Message     string `json:"message,omitempty"`
}

package models

// TransferResult is the outcome of a successful transfer.
type TransferResult struct {
	FilePath string `json:"file_path"`
	FileSize int64  `json:"file_size"`
}

// MediaFormat describes one downloadable media rendition offered by the platform.
type MediaFormat struct {
	ItagNo        int
	MimeType      string
	Quality       string
	ContentLength int64
	AudioChannels int
	Extension     string
}

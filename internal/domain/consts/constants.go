// Package consts holds various global, unchanging values.
package consts

// DownloadStatus is the persisted lifecycle state of a video download.
type DownloadStatus string

// Download lifecycle states. 'pending' is the insert default and the state
// a cancelled download returns to. 'failed' may transition back to
// 'downloading' on a retry; 'completed' may not.
const (
	DLStatusPending     DownloadStatus = "pending"
	DLStatusDownloading DownloadStatus = "downloading"
	DLStatusCompleted   DownloadStatus = "completed"
	DLStatusFailed      DownloadStatus = "failed"
)

// Valid reports whether s is a member of the closed status enumeration.
func (s DownloadStatus) Valid() bool {
	switch s {
	case DLStatusPending, DLStatusDownloading, DLStatusCompleted, DLStatusFailed:
		return true
	}
	return false
}

// Terminal reports whether no further progress is expected without a new transfer.
func (s DownloadStatus) Terminal() bool {
	return s == DLStatusCompleted || s == DLStatusFailed
}

// Defaults substituted for metadata fields the platform did not supply.
const (
	DefaultTitle   = "Untitled"
	DefaultChannel = "Unknown"
)

// MaxRemoteSearchResults caps remote search responses.
const MaxRemoteSearchResults = 10

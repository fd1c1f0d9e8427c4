// Package errs defines the closed error taxonomy surfaced by the command layer.
package errs

import (
	"errors"
	"fmt"
)

// Sentinel errors. Callers classify with errors.Is.
var (
	// ErrDuplicateVideo: an add attempted for an already-present platform video ID.
	ErrDuplicateVideo = errors.New("video already exists")

	// ErrVideoNotFound: an operation referenced an unknown platform video ID.
	ErrVideoNotFound = errors.New("video not found")

	// ErrAlreadyDownloading: a transfer start for an ID with an active transfer.
	ErrAlreadyDownloading = errors.New("download already in progress")

	// ErrNoSuitableFormat: the platform offered no combined audio+video format.
	ErrNoSuitableFormat = errors.New("no suitable audio+video format available")

	// ErrStoreUnavailable: the record store was used before being opened.
	ErrStoreUnavailable = errors.New("record store is not open")

	// ErrIntegrity: a storage constraint violation not otherwise classified.
	ErrIntegrity = errors.New("storage integrity violation")

	// ErrTooManyTransfers: the configured concurrent-transfer ceiling was hit.
	ErrTooManyTransfers = errors.New("concurrent transfer limit reached")

	// ErrTransferStalled is the cancellation cause when the stall watchdog fires.
	ErrTransferStalled = errors.New("transfer stalled: no data received")
)

// ResolutionError reports a failed metadata or search lookup: either the
// platform ID could not be extracted from the input, or the upstream
// lookup itself failed.
type ResolutionError struct {
	Input string
	Err   error
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("failed to resolve %q: %v", e.Input, e.Err)
}

func (e *ResolutionError) Unwrap() error { return e.Err }

// NewResolutionError wraps err as a resolution failure for the given input.
func NewResolutionError(input string, err error) *ResolutionError {
	return &ResolutionError{Input: input, Err: err}
}

// TransferError reports an I/O or network failure mid-download, carrying the
// underlying cause.
type TransferError struct {
	VideoID string
	Err     error
}

func (e *TransferError) Error() string {
	return fmt.Sprintf("transfer failed for video %q: %v", e.VideoID, e.Err)
}

func (e *TransferError) Unwrap() error { return e.Err }

// NewTransferError wraps err as a transfer failure for the given video ID.
func NewTransferError(videoID string, err error) *TransferError {
	return &TransferError{VideoID: videoID, Err: err}
}

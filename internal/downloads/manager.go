// Package downloads runs and tracks media transfers.
package downloads

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"tubevault/internal/contracts"
	"tubevault/internal/domain/consts"
	"tubevault/internal/errs"
	"tubevault/internal/models"
	"tubevault/internal/utils/logging"
)

// errCancelled is the cancellation cause for a user-initiated cancel, as
// opposed to a stall or an external shutdown.
var errCancelled = errors.New("transfer cancelled")

// Options tune transfer behavior.
type Options struct {
	// MaxConcurrent caps simultaneous transfers. 0 means unlimited.
	MaxConcurrent int

	// StallTimeout fails a transfer that receives no bytes for this long.
	// 0 uses the default.
	StallTimeout time.Duration
}

// Manager owns the active-transfer table. Only one active transfer per
// platform video ID is permitted; distinct IDs transfer concurrently.
type Manager struct {
	mu     sync.Mutex
	active map[string]*Transfer

	store       contracts.VideoStore
	client      contracts.PlatformClient
	notifier    contracts.Notifier
	downloadDir string
	opts        Options
}

// NewManager returns a transfer manager writing files into downloadDir.
func NewManager(store contracts.VideoStore, client contracts.PlatformClient, notifier contracts.Notifier, downloadDir string, opts Options) *Manager {
	if opts.StallTimeout <= 0 {
		opts.StallTimeout = consts.DefaultStallTimeout
	}
	return &Manager{
		active:      make(map[string]*Transfer),
		store:       store,
		client:      client,
		notifier:    notifier,
		downloadDir: downloadDir,
		opts:        opts,
	}
}

// StartTransfer begins downloading the given video's media and returns
// immediately with a handle. Completion is observed via Transfer.Wait or the
// notifier. Returns an error without touching existing state when a transfer
// for this ID is already active or the concurrency ceiling is hit.
func (m *Manager) StartTransfer(videoID string) (*Transfer, error) {
	m.mu.Lock()
	if _, ok := m.active[videoID]; ok {
		m.mu.Unlock()
		return nil, errs.ErrAlreadyDownloading
	}
	if m.opts.MaxConcurrent > 0 && len(m.active) >= m.opts.MaxConcurrent {
		m.mu.Unlock()
		return nil, errs.ErrTooManyTransfers
	}

	// Detached from any caller context: the transfer's lifetime is owned
	// here, ended only by completion, failure, cancel, or Shutdown.
	ctx, cancel := context.WithCancelCause(context.Background())
	t := &Transfer{
		VideoID: videoID,
		ctx:     ctx,
		cancel:  cancel,
		done:    make(chan struct{}),
	}
	m.active[videoID] = t
	m.mu.Unlock()

	logging.I("Starting transfer for video %q", videoID)
	go m.run(t)

	return t, nil
}

// CancelTransfer signals cooperative cancellation and waits for the transfer
// to clean up (partial file removed, record back to pending). Returns false,
// not an error, when no transfer is active for the ID or the transfer
// finished on its own before the cancel landed.
func (m *Manager) CancelTransfer(videoID string) bool {
	m.mu.Lock()
	t, ok := m.active[videoID]
	m.mu.Unlock()

	if !ok {
		return false
	}

	t.cancel(errCancelled)
	<-t.done

	// The transfer may have reached a terminal state on its own between the
	// lookup and the cancel; only an actual cancellation reports true.
	if !errors.Is(t.err, context.Canceled) {
		return false
	}

	logging.I("Cancelled transfer for video %q", videoID)
	return true
}

// Active reports whether a transfer is currently active for the ID.
func (m *Manager) Active(videoID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.active[videoID]
	return ok
}

// Shutdown cancels every active transfer and waits for their cleanup.
func (m *Manager) Shutdown() {
	m.mu.Lock()
	transfers := make([]*Transfer, 0, len(m.active))
	for _, t := range m.active {
		transfers = append(transfers, t)
	}
	m.mu.Unlock()

	for _, t := range transfers {
		t.cancel(errCancelled)
	}
	for _, t := range transfers {
		<-t.done
	}
}

// release removes the transfer from the active table.
func (m *Manager) release(t *Transfer) {
	m.mu.Lock()
	delete(m.active, t.VideoID)
	m.mu.Unlock()
}

// Transfer is one in-flight download attempt.
type Transfer struct {
	VideoID string

	ctx      context.Context
	cancel   context.CancelCauseFunc
	done     chan struct{}
	destPath atomic.Value // string; set once the output path is known

	// Set before done closes.
	result *models.TransferResult
	err    error
}

// Wait blocks until the transfer finishes or ctx expires. A cancelled
// transfer reports context.Canceled.
func (t *Transfer) Wait(ctx context.Context) (*models.TransferResult, error) {
	select {
	case <-t.done:
		return t.result, t.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

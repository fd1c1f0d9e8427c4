package downloads

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"tubevault/internal/domain/consts"
	"tubevault/internal/errs"
	"tubevault/internal/models"
	"tubevault/internal/utils/logging"
)

const copyBufSize = 64 * 1024

// run drives a transfer to a terminal state and settles the record store.
func (m *Manager) run(t *Transfer) {
	defer close(t.done)
	defer m.release(t)

	res, err := m.download(t)
	if err == nil {
		t.result = res
		logging.S("Transfer complete for video %q: %s (%d bytes)", t.VideoID, res.FilePath, res.FileSize)
		return
	}

	// The transfer context is dead by now on the cancel path; cleanup
	// writes need their own context.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if errors.Is(context.Cause(t.ctx), errCancelled) {
		m.removePartial(t)
		if sErr := m.store.UpdateDownloadStatus(ctx, t.VideoID, consts.DLStatusPending, 0); sErr != nil {
			logging.E("Failed to reset video %q to pending after cancel: %v", t.VideoID, sErr)
		}
		t.err = context.Canceled
		return
	}

	if sErr := m.store.UpdateDownloadStatus(ctx, t.VideoID, consts.DLStatusFailed, 0); sErr != nil {
		logging.E("Failed to mark video %q as failed: %v", t.VideoID, sErr)
	}
	m.notifier.Failed(t.VideoID, err.Error())
	t.err = err

	logging.E("Transfer failed for video %q: %v", t.VideoID, err)
}

// download performs the transfer attempt: status write, stream resolution,
// byte copy, and the completion transition.
func (m *Manager) download(t *Transfer) (*models.TransferResult, error) {
	ctx := t.ctx

	if err := m.store.UpdateDownloadStatus(ctx, t.VideoID, consts.DLStatusDownloading, 0); err != nil {
		return nil, err
	}

	stream, format, err := m.client.OpenStream(ctx, t.VideoID)
	if err != nil {
		if errors.Is(err, errs.ErrNoSuitableFormat) {
			return nil, err
		}
		return nil, m.transferErr(t, err)
	}
	defer func() {
		if cErr := stream.Close(); cErr != nil {
			logging.D(2, "Failed to close media stream for video %q: %v", t.VideoID, cErr)
		}
	}()

	// Deterministic path per video ID: a re-download overwrites rather
	// than accumulates.
	dest := filepath.Join(m.downloadDir, t.VideoID+format.Extension)
	t.destPath.Store(dest)

	out, err := os.OpenFile(dest, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, consts.PermsVideoFile)
	if err != nil {
		return nil, m.transferErr(t, err)
	}

	copyErr := m.copyStream(t, stream, out, format.ContentLength)
	if cErr := out.Close(); cErr != nil && copyErr == nil {
		copyErr = m.transferErr(t, cErr)
	}
	if copyErr != nil {
		return nil, copyErr
	}

	// The expected total is an estimate; the written file is the source of
	// truth for size.
	fi, err := os.Stat(dest)
	if err != nil {
		return nil, m.transferErr(t, err)
	}

	if err := m.store.UpdateDownloadComplete(ctx, t.VideoID, dest, fi.Size()); err != nil {
		return nil, err
	}
	m.notifier.Completed(t.VideoID, dest)

	return &models.TransferResult{FilePath: dest, FileSize: fi.Size()}, nil
}

// copyStream copies stream to out, emitting integer progress percentages
// only when the value changes. A stall watchdog cancels the transfer when no
// bytes arrive within the configured timeout.
func (m *Manager) copyStream(t *Transfer, stream io.Reader, out io.Writer, expectedTotal int64) error {
	ctx := t.ctx

	var lastData atomic.Int64
	lastData.Store(time.Now().UnixNano())

	watchdogDone := make(chan struct{})
	defer close(watchdogDone)

	go func() {
		ticker := time.NewTicker(consts.StallCheckInterval)
		defer ticker.Stop()
		for {
			select {
			case <-watchdogDone:
				return
			case <-ctx.Done():
				return
			case <-ticker.C:
				idle := time.Since(time.Unix(0, lastData.Load()))
				if idle > m.opts.StallTimeout {
					t.cancel(errs.ErrTransferStalled)
					return
				}
			}
		}
	}()

	var (
		buf      = make([]byte, copyBufSize)
		received int64
		lastPct  int
	)

	for {
		if ctx.Err() != nil {
			return m.transferErr(t, ctx.Err())
		}

		n, readErr := stream.Read(buf)
		if n > 0 {
			lastData.Store(time.Now().UnixNano())

			if _, wErr := out.Write(buf[:n]); wErr != nil {
				return m.transferErr(t, wErr)
			}
			received += int64(n)

			if expectedTotal > 0 {
				pct := int(received * 100 / expectedTotal)
				if pct > 100 {
					pct = 100
				}
				if pct > lastPct {
					// Store write happens-before the event for this
					// percentage: a reader polling after the event sees
					// at least this progress value.
					if sErr := m.store.UpdateDownloadStatus(ctx, t.VideoID, consts.DLStatusDownloading, pct); sErr != nil {
						return m.transferErr(t, sErr)
					}
					m.notifier.Progress(t.VideoID, pct)
					lastPct = pct
				}
			}
		}

		if readErr == io.EOF {
			return nil
		}
		if readErr != nil {
			return m.transferErr(t, readErr)
		}
	}
}

// transferErr wraps err for the failure path, preferring the cancellation
// cause when the transfer context is already dead.
func (m *Manager) transferErr(t *Transfer, err error) error {
	if cause := context.Cause(t.ctx); cause != nil {
		if errors.Is(cause, errCancelled) {
			return context.Canceled
		}
		return errs.NewTransferError(t.VideoID, cause)
	}
	return errs.NewTransferError(t.VideoID, err)
}

// removePartial deletes any partially-written file for the transfer.
func (m *Manager) removePartial(t *Transfer) {
	dest, ok := t.destPath.Load().(string)
	if !ok || dest == "" {
		return
	}
	if err := os.Remove(dest); err != nil && !os.IsNotExist(err) {
		logging.E("Failed to remove partial file %q: %v", dest, err)
	}
}

// String implements fmt.Stringer for debug logs.
func (t *Transfer) String() string {
	return fmt.Sprintf("transfer[%s]", t.VideoID)
}

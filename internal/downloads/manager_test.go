package downloads_test

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"tubevault/internal/domain/consts"
	"tubevault/internal/downloads"
	"tubevault/internal/errs"
	"tubevault/internal/models"
)

// fakeStore records status writes in memory.
type fakeStore struct {
	mu sync.Mutex

	status   map[string]consts.DownloadStatus
	progress map[string][]int
	filePath map[string]string
	fileSize map[string]int64
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		status:   make(map[string]consts.DownloadStatus),
		progress: make(map[string][]int),
		filePath: make(map[string]string),
		fileSize: make(map[string]int64),
	}
}

func (s *fakeStore) GetDB() *sql.DB { return nil }

func (s *fakeStore) AddVideo(context.Context, *models.VideoMetadata) (*models.Video, error) {
	return nil, errors.New("not implemented")
}

func (s *fakeStore) GetVideo(context.Context, string) (*models.Video, bool, error) {
	return nil, false, nil
}

func (s *fakeStore) GetAllVideos(context.Context) ([]*models.Video, error) { return nil, nil }

func (s *fakeStore) SearchVideos(context.Context, string) ([]*models.Video, error) {
	return nil, nil
}

func (s *fakeStore) UpdateDownloadStatus(_ context.Context, videoID string, status consts.DownloadStatus, progress int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status[videoID] = status
	s.progress[videoID] = append(s.progress[videoID], progress)
	return nil
}

func (s *fakeStore) UpdateDownloadComplete(_ context.Context, videoID, filePath string, fileSize int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status[videoID] = consts.DLStatusCompleted
	s.filePath[videoID] = filePath
	s.fileSize[videoID] = fileSize
	return nil
}

func (s *fakeStore) UpdateThumbnailPath(context.Context, string, string) error { return nil }
func (s *fakeStore) DeleteVideo(context.Context, string) error                 { return nil }

func (s *fakeStore) lastStatus(videoID string) consts.DownloadStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status[videoID]
}

func (s *fakeStore) progressWrites(videoID string) []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]int, len(s.progress[videoID]))
	copy(out, s.progress[videoID])
	return out
}

// fakeClient streams canned bytes through OpenStream.
type fakeClient struct {
	open func(ctx context.Context, videoID string) (io.ReadCloser, *models.MediaFormat, error)
}

func (c *fakeClient) ResolveVideo(context.Context, string) (*models.VideoMetadata, error) {
	return nil, errors.New("not implemented")
}

func (c *fakeClient) Search(context.Context, string, int) ([]*models.SearchResult, error) {
	return nil, errors.New("not implemented")
}

func (c *fakeClient) OpenStream(ctx context.Context, videoID string) (io.ReadCloser, *models.MediaFormat, error) {
	return c.open(ctx, videoID)
}

// fakeNotifier records notifications.
type fakeNotifier struct {
	mu        sync.Mutex
	progress  []int
	completed []string
	failed    []string
}

func (n *fakeNotifier) Progress(_ string, percentage int) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.progress = append(n.progress, percentage)
}

func (n *fakeNotifier) Completed(_, filePath string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.completed = append(n.completed, filePath)
}

func (n *fakeNotifier) Failed(_, message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.failed = append(n.failed, message)
}

func (n *fakeNotifier) progressValues() []int {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]int, len(n.progress))
	copy(out, n.progress)
	return out
}

func mp4Format(size int64) *models.MediaFormat {
	return &models.MediaFormat{
		ItagNo:        18,
		MimeType:      `video/mp4; codecs="avc1.42001E, mp4a.40.2"`,
		Quality:       "360p",
		ContentLength: size,
		AudioChannels: 2,
		Extension:     ".mp4",
	}
}

func bytesClient(payload []byte) *fakeClient {
	return &fakeClient{
		open: func(context.Context, string) (io.ReadCloser, *models.MediaFormat, error) {
			return io.NopCloser(bytes.NewReader(payload)), mp4Format(int64(len(payload))), nil
		},
	}
}

// blockingReader blocks until released or the transfer context dies.
type blockingReader struct {
	release chan struct{}
	ctx     context.Context
}

func (r *blockingReader) Read(p []byte) (int, error) {
	select {
	case <-r.release:
		return 0, io.EOF
	case <-r.ctx.Done():
		return 0, r.ctx.Err()
	}
}

func (r *blockingReader) Close() error { return nil }

func blockingClient() (*fakeClient, chan struct{}) {
	release := make(chan struct{})
	client := &fakeClient{
		open: func(ctx context.Context, _ string) (io.ReadCloser, *models.MediaFormat, error) {
			return &blockingReader{release: release, ctx: ctx}, mp4Format(1 << 20), nil
		},
	}
	return client, release
}

func TestTransferCompletes(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	store := newFakeStore()
	notifier := &fakeNotifier{}

	payload := bytes.Repeat([]byte("tubevault"), 100_000)
	m := downloads.NewManager(store, bytesClient(payload), notifier, dir, downloads.Options{})
	defer m.Shutdown()

	tr, err := m.StartTransfer("vid00000001")
	if err != nil {
		t.Fatalf("expected transfer to start, got: %v", err)
	}

	res, err := tr.Wait(context.Background())
	if err != nil {
		t.Fatalf("expected transfer to complete, got: %v", err)
	}

	wantPath := filepath.Join(dir, "vid00000001.mp4")
	if res.FilePath != wantPath {
		t.Errorf("expected file path %q, got %q", wantPath, res.FilePath)
	}
	if res.FileSize != int64(len(payload)) {
		t.Errorf("expected file size %d, got %d", len(payload), res.FileSize)
	}

	data, err := os.ReadFile(wantPath)
	if err != nil {
		t.Fatalf("expected downloaded file on disk, got: %v", err)
	}
	if !bytes.Equal(data, payload) {
		t.Error("downloaded file content does not match stream payload")
	}

	if got := store.lastStatus("vid00000001"); got != consts.DLStatusCompleted {
		t.Errorf("expected completed status in store, got %q", got)
	}

	// Progress is strictly increasing, never repeated, ends at 100.
	values := notifier.progressValues()
	if len(values) == 0 {
		t.Fatal("expected progress notifications")
	}
	for i := 1; i < len(values); i++ {
		if values[i] <= values[i-1] {
			t.Errorf("progress not strictly increasing at index %d: %v", i, values)
			break
		}
	}
	if values[len(values)-1] != 100 {
		t.Errorf("expected final progress 100, got %d", values[len(values)-1])
	}

	if m.Active("vid00000001") {
		t.Error("expected transfer released after completion")
	}
}

func TestTransferAlreadyActive(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	client, release := blockingClient()
	m := downloads.NewManager(store, client, &fakeNotifier{}, t.TempDir(), downloads.Options{})
	defer m.Shutdown()

	if _, err := m.StartTransfer("vid00000001"); err != nil {
		t.Fatalf("expected first start to succeed, got: %v", err)
	}

	if _, err := m.StartTransfer("vid00000001"); !errors.Is(err, errs.ErrAlreadyDownloading) {
		t.Fatalf("expected ErrAlreadyDownloading, got: %v", err)
	}

	close(release)
}

func TestMaxConcurrentCeiling(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	client, release := blockingClient()
	m := downloads.NewManager(store, client, &fakeNotifier{}, t.TempDir(), downloads.Options{MaxConcurrent: 1})
	defer m.Shutdown()

	if _, err := m.StartTransfer("vid00000001"); err != nil {
		t.Fatalf("expected first start to succeed, got: %v", err)
	}

	if _, err := m.StartTransfer("vid00000002"); !errors.Is(err, errs.ErrTooManyTransfers) {
		t.Fatalf("expected ErrTooManyTransfers, got: %v", err)
	}

	close(release)
}

func TestCancelTransfer(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	store := newFakeStore()
	client, _ := blockingClient()
	m := downloads.NewManager(store, client, &fakeNotifier{}, dir, downloads.Options{})
	defer m.Shutdown()

	tr, err := m.StartTransfer("vid00000001")
	if err != nil {
		t.Fatalf("expected start to succeed, got: %v", err)
	}

	// Give the worker a moment to open the destination file.
	time.Sleep(50 * time.Millisecond)

	if !m.CancelTransfer("vid00000001") {
		t.Fatal("expected cancel to report true for an active transfer")
	}

	if _, err := tr.Wait(context.Background()); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled after cancel, got: %v", err)
	}

	// Record returned to pending with zero progress, partial file removed.
	if got := store.lastStatus("vid00000001"); got != consts.DLStatusPending {
		t.Errorf("expected pending status after cancel, got %q", got)
	}
	writes := store.progressWrites("vid00000001")
	if len(writes) == 0 || writes[len(writes)-1] != 0 {
		t.Errorf("expected final progress write 0 after cancel, got %v", writes)
	}
	if _, err := os.Stat(filepath.Join(dir, "vid00000001.mp4")); !os.IsNotExist(err) {
		t.Errorf("expected partial file removed after cancel, stat err: %v", err)
	}

	if m.CancelTransfer("vid00000001") {
		t.Error("expected cancel of inactive transfer to report false")
	}
}

// failingReader yields some bytes then errors.
type failingReader struct {
	data *bytes.Reader
	err  error
}

func (r *failingReader) Read(p []byte) (int, error) {
	n, err := r.data.Read(p)
	if err == io.EOF {
		return n, r.err
	}
	return n, err
}

func (r *failingReader) Close() error { return nil }

func TestTransferFailureThenRetry(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	store := newFakeStore()
	notifier := &fakeNotifier{}

	payload := bytes.Repeat([]byte("x"), 256*1024)
	streamErr := errors.New("connection reset")
	attempts := 0
	client := &fakeClient{
		open: func(context.Context, string) (io.ReadCloser, *models.MediaFormat, error) {
			attempts++
			if attempts == 1 {
				return &failingReader{
					data: bytes.NewReader(payload[:64*1024]),
					err:  streamErr,
				}, mp4Format(int64(len(payload))), nil
			}
			return io.NopCloser(bytes.NewReader(payload)), mp4Format(int64(len(payload))), nil
		},
	}

	m := downloads.NewManager(store, client, notifier, dir, downloads.Options{})
	defer m.Shutdown()

	tr, err := m.StartTransfer("vid00000001")
	if err != nil {
		t.Fatalf("expected start to succeed, got: %v", err)
	}

	var transferErr *errs.TransferError
	if _, err := tr.Wait(context.Background()); !errors.As(err, &transferErr) {
		t.Fatalf("expected TransferError from failed stream, got: %v", err)
	}
	if got := store.lastStatus("vid00000001"); got != consts.DLStatusFailed {
		t.Errorf("expected failed status after stream error, got %q", got)
	}

	notifier.mu.Lock()
	failedCount := len(notifier.failed)
	notifier.mu.Unlock()
	if failedCount != 1 {
		t.Errorf("expected 1 failure notification, got %d", failedCount)
	}

	// The same video is downloadable again after a failure.
	tr2, err := m.StartTransfer("vid00000001")
	if err != nil {
		t.Fatalf("expected retry to start, got: %v", err)
	}
	res, err := tr2.Wait(context.Background())
	if err != nil {
		t.Fatalf("expected retry to complete, got: %v", err)
	}
	if res.FileSize != int64(len(payload)) {
		t.Errorf("expected full file size %d, got %d", len(payload), res.FileSize)
	}
	if got := store.lastStatus("vid00000001"); got != consts.DLStatusCompleted {
		t.Errorf("expected completed status after retry, got %q", got)
	}
}

func TestNoSuitableFormat(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	client := &fakeClient{
		open: func(context.Context, string) (io.ReadCloser, *models.MediaFormat, error) {
			return nil, nil, errs.ErrNoSuitableFormat
		},
	}
	m := downloads.NewManager(store, client, &fakeNotifier{}, t.TempDir(), downloads.Options{})
	defer m.Shutdown()

	tr, err := m.StartTransfer("vid00000001")
	if err != nil {
		t.Fatalf("expected start to succeed, got: %v", err)
	}
	if _, err := tr.Wait(context.Background()); !errors.Is(err, errs.ErrNoSuitableFormat) {
		t.Errorf("expected ErrNoSuitableFormat, got: %v", err)
	}
	if got := store.lastStatus("vid00000001"); got != consts.DLStatusFailed {
		t.Errorf("expected failed status, got %q", got)
	}
}

func TestStallWatchdog(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	client, _ := blockingClient()
	m := downloads.NewManager(store, client, &fakeNotifier{}, t.TempDir(), downloads.Options{
		StallTimeout: 1500 * time.Millisecond,
	})
	defer m.Shutdown()

	tr, err := m.StartTransfer("vid00000001")
	if err != nil {
		t.Fatalf("expected start to succeed, got: %v", err)
	}

	_, err = tr.Wait(context.Background())
	if !errors.Is(err, errs.ErrTransferStalled) {
		t.Fatalf("expected ErrTransferStalled, got: %v", err)
	}
	if got := store.lastStatus("vid00000001"); got != consts.DLStatusFailed {
		t.Errorf("expected failed status after stall, got %q", got)
	}
}

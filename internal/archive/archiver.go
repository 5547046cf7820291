// Package archive keeps an off-platform copy of finished renders. When the
// automation reports a final video URL the archiver downloads it and stores
// it in the object store under the job id, recording the outcome on the row.
// The whole pipeline is best-effort and never blocks callback handling.
package archive

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path"
	"strings"
	"sync"
	"time"
)

// ObjectStorage persists archived render files.
type ObjectStorage interface {
	Save(ctx context.Context, name string, r io.Reader) (string, error)
}

// StatusUpdater records archive outcomes on the job row.
type StatusUpdater interface {
	MarkArchiveReady(ctx context.Context, id, location string, size int64) error
	MarkArchiveFailed(ctx context.Context, id string) error
}

// Config controls the concurrency characteristics of the archiver.
type Config struct {
	QueueSize       int
	Workers         int
	DownloadTimeout time.Duration
}

// Archiver asynchronously persists finished renders.
type Archiver struct {
	storage ObjectStorage
	updater StatusUpdater
	client  *http.Client
	logger  *slog.Logger

	timeout time.Duration

	jobs   chan archiveJob
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	once   sync.Once
}

type archiveJob struct {
	videoID string
	url     string
}

var errArchiverClosed = errors.New("archiver closed")

// NewArchiver constructs a background worker pool that persists renders.
func NewArchiver(storage ObjectStorage, updater StatusUpdater, cfg Config, logger *slog.Logger) *Archiver {
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 16
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.DownloadTimeout <= 0 {
		cfg.DownloadTimeout = 2 * time.Minute
	}
	if logger == nil {
		logger = slog.Default()
	}

	ctx, cancel := context.WithCancel(context.Background())

	a := &Archiver{
		storage: storage,
		updater: updater,
		client:  &http.Client{Timeout: cfg.DownloadTimeout},
		logger:  logger,
		timeout: cfg.DownloadTimeout,
		jobs:    make(chan archiveJob, cfg.QueueSize),
		ctx:     ctx,
		cancel:  cancel,
	}

	a.wg.Add(cfg.Workers)
	for i := 0; i < cfg.Workers; i++ {
		go a.worker()
	}

	return a
}

// Enqueue schedules archiving of the render at url for the given job.
func (a *Archiver) Enqueue(ctx context.Context, videoID, url string) error {
	if videoID == "" || url == "" {
		return errors.New("archiver: video id and url are required")
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-a.ctx.Done():
		return errArchiverClosed
	default:
	}

	job := archiveJob{videoID: videoID, url: url}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-a.ctx.Done():
		return errArchiverClosed
	case a.jobs <- job:
		return nil
	}
}

// Shutdown waits for the worker pool to drain outstanding jobs. The jobs
// channel is never closed so a straggling Enqueue cannot panic; it observes
// the cancelled context and reports errArchiverClosed instead.
func (a *Archiver) Shutdown(ctx context.Context) error {
	a.once.Do(a.cancel)

	done := make(chan struct{})
	go func() {
		a.wg.Wait()
		close(done)
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-done:
		return nil
	}
}

func (a *Archiver) worker() {
	defer a.wg.Done()

	for {
		select {
		case <-a.ctx.Done():
			// Drain whatever was queued before the shutdown.
			for {
				select {
				case job := <-a.jobs:
					a.handleJob(job)
				default:
					return
				}
			}
		case job := <-a.jobs:
			a.handleJob(job)
		}
	}
}

func (a *Archiver) handleJob(job archiveJob) {
	if a.storage == nil || a.updater == nil {
		a.logger.Error("archiver missing dependencies", "hasStorage", a.storage != nil, "hasUpdater", a.updater != nil)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), a.timeout)
	defer cancel()

	location, size, err := a.download(ctx, job)
	if err != nil {
		a.logger.Error("render archive failed", "videoId", job.videoID, "url", job.url, "error", err)
		a.recordFailure(job.videoID)
		return
	}

	if err := a.recordSuccess(job.videoID, location, size); err != nil {
		a.logger.Error("mark archive ready", "videoId", job.videoID, "error", err)
		a.recordFailure(job.videoID)
	}
}

func (a *Archiver) download(ctx context.Context, job archiveJob) (string, int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, job.url, nil)
	if err != nil {
		return "", 0, fmt.Errorf("build download request: %w", err)
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return "", 0, fmt.Errorf("download render: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", 0, fmt.Errorf("download render: status %d", resp.StatusCode)
	}

	counter := &countingReader{r: resp.Body}
	key := path.Join(job.videoID, fileNameForURL(job.url))
	location, err := a.storage.Save(ctx, key, counter)
	if err != nil {
		return "", 0, fmt.Errorf("store render: %w", err)
	}

	return location, counter.n, nil
}

func (a *Archiver) recordFailure(videoID string) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := a.updater.MarkArchiveFailed(ctx, videoID); err != nil {
		a.logger.Error("record archive failure", "videoId", videoID, "error", err)
	}
}

func (a *Archiver) recordSuccess(videoID, location string, size int64) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return a.updater.MarkArchiveReady(ctx, videoID, location, size)
}

type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}

func fileNameForURL(rawURL string) string {
	name := path.Base(rawURL)
	if q := strings.IndexByte(name, '?'); q >= 0 {
		name = name[:q]
	}
	if name == "" || name == "." || name == "/" {
		return "render.mp4"
	}
	return name
}

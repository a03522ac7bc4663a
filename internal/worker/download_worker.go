package worker

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"path"
	"time"

	"github.com/gabriel-vasile/mimetype"

	"github.com/veranemoloko/task-observer/internal/domain"
	"github.com/veranemoloko/task-observer/internal/observer"
	"github.com/veranemoloko/task-observer/internal/storage"
)

const chunkSize = 32 * 1024

// Options tunes a DownloadWorker.
type Options struct {
	// MaxFileSize fails a task once more bytes than this are received. Zero disables the limit.
	MaxFileSize int64
	// PreviewInterval emits an intermediate result every time this many more bytes
	// are stored. Zero disables intermediate results.
	PreviewInterval int64
	// AllowedMIMETypes restricts the sniffed content type. Empty allows everything.
	AllowedMIMETypes []string
	// Timeout bounds a single HTTP request.
	Timeout time.Duration
}

// DownloadWorker fetches one URL per task into FileStorage and reports every
// lifecycle transition to its Delegate. All callbacks for a task are issued
// from the goroutine that calls Download.
type DownloadWorker struct {
	fileStorage *storage.FileStorage
	httpClient  *http.Client
	delegate    observer.Delegate
	opts        Options
	logger      *slog.Logger
}

// NewDownloadWorker creates a new DownloadWorker. A nil delegate drops every callback.
func NewDownloadWorker(fileStorage *storage.FileStorage, delegate observer.Delegate, logger *slog.Logger, opts Options) *DownloadWorker {
	if delegate == nil {
		delegate = observer.Nop{}
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Minute
	}
	return &DownloadWorker{
		fileStorage: fileStorage,
		httpClient: &http.Client{
			Timeout: opts.Timeout,
		},
		delegate: delegate,
		opts:     opts,
		logger:   logger,
	}
}

// Download runs task to a terminal state. It returns the outcome passed to
// OnComplete, or the context error when the task was cancelled instead.
func (w *DownloadWorker) Download(ctx context.Context, task *domain.Task) (domain.Outcome, error) {
	if err := ctx.Err(); err != nil {
		w.delegate.OnTaskCancel(task.ID)
		w.logger.Info("task cancelled before start", "task_id", task.ID)
		return domain.Outcome{}, err
	}

	w.delegate.OnTaskStart(task.ID)

	resp, kind, err := w.fetch(ctx, task)
	if err == nil {
		w.delegate.OnComplete(task.ID, domain.Success(resp))
		w.logger.Info("download completed",
			"task_id", task.ID,
			"url", task.URL,
			"bytes", resp.BytesRead,
			"content_type", resp.ContentType,
		)
		return domain.Success(resp), nil
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		w.delegate.OnTaskCancel(task.ID)
		w.logger.Info("download cancelled", "task_id", task.ID, "url", task.URL)
		return domain.Outcome{}, ctxErr
	}

	failure := domain.NewErrorKind(kind, err)
	w.delegate.OnComplete(task.ID, domain.Failure(failure))
	w.logger.Error("download failed",
		"task_id", task.ID,
		"url", task.URL,
		"error", failure,
	)
	return domain.Failure(failure), nil
}

func (w *DownloadWorker) fetch(ctx context.Context, task *domain.Task) (domain.Response, domain.ErrorCode, error) {
	result := domain.Response{
		URL:      task.URL,
		FileName: w.generateFilename(task),
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, task.URL, nil)
	if err != nil {
		return result, domain.ErrorCodeNetwork, fmt.Errorf("create request: %w", err)
	}

	resp, err := w.httpClient.Do(req)
	if err != nil {
		return result, domain.ErrorCodeNetwork, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return result, domain.ErrorCodeBadStatus, fmt.Errorf("bad status: %s", resp.Status)
	}

	total := resp.ContentLength
	if total < 0 {
		total = 0
	}
	if w.opts.MaxFileSize > 0 && total > w.opts.MaxFileSize {
		return result, domain.ErrorCodeTooLarge, fmt.Errorf("content length %d exceeds limit %d", total, w.opts.MaxFileSize)
	}

	file, err := w.fileStorage.CreateFile(result.FileName)
	if err != nil {
		return result, domain.ErrorCodeStorage, fmt.Errorf("create file: %w", err)
	}

	code, err := w.copyWithProgress(ctx, task, file, resp.Body, total, &result)
	if closeErr := file.Close(); err == nil && closeErr != nil {
		code, err = domain.ErrorCodeStorage, fmt.Errorf("close file: %w", closeErr)
	}
	if err == nil {
		if size, statErr := w.fileStorage.GetFileSize(result.FileName); statErr != nil || size != result.BytesRead {
			code, err = domain.ErrorCodeStorage, fmt.Errorf("stored %d of %d bytes: %v", size, result.BytesRead, statErr)
		}
	}
	if err != nil {
		if rmErr := w.fileStorage.Remove(result.FileName); rmErr != nil {
			w.logger.Warn("failed to remove partial file", "task_id", task.ID, "file", result.FileName, "error", rmErr)
		}
		return result, code, err
	}
	return result, "", nil
}

func (w *DownloadWorker) copyWithProgress(
	ctx context.Context,
	task *domain.Task,
	dst io.Writer,
	src io.Reader,
	total int64,
	result *domain.Response,
) (domain.ErrorCode, error) {
	buf := make([]byte, chunkSize)
	nextPreview := w.opts.PreviewInterval

	for {
		if err := ctx.Err(); err != nil {
			return domain.ErrorCodeCancelled, err
		}

		nr, readErr := src.Read(buf)
		if nr > 0 {
			if result.ContentType == "" {
				contentType := mimetype.Detect(buf[:nr])
				result.ContentType = contentType.String()
				if !w.allowed(contentType) {
					return domain.ErrorCodeDecoding, fmt.Errorf("unsupported content type %s", contentType.String())
				}
			}

			if w.opts.MaxFileSize > 0 && result.BytesRead+int64(nr) > w.opts.MaxFileSize {
				return domain.ErrorCodeTooLarge, fmt.Errorf("file size exceeds limit: %d bytes", w.opts.MaxFileSize)
			}

			nw, err := dst.Write(buf[:nr])
			result.BytesRead += int64(nw)
			if err != nil {
				return domain.ErrorCodeStorage, fmt.Errorf("write file: %w", err)
			}
			if nw != nr {
				return domain.ErrorCodeStorage, io.ErrShortWrite
			}

			w.delegate.OnProgress(task.ID, result.BytesRead, total)

			if nextPreview > 0 && result.BytesRead >= nextPreview {
				w.delegate.OnIntermediateResult(task.ID, *result)
				for nextPreview <= result.BytesRead {
					nextPreview += w.opts.PreviewInterval
				}
			}
		}

		if readErr != nil {
			if errors.Is(readErr, io.EOF) {
				return "", nil
			}
			return domain.ErrorCodeNetwork, fmt.Errorf("read body: %w", readErr)
		}
	}
}

func (w *DownloadWorker) allowed(contentType *mimetype.MIME) bool {
	if len(w.opts.AllowedMIMETypes) == 0 {
		return true
	}
	for mt := contentType; mt != nil; mt = mt.Parent() {
		if mimetype.EqualsAny(mt.String(), w.opts.AllowedMIMETypes...) {
			return true
		}
	}
	return false
}

func (w *DownloadWorker) generateFilename(task *domain.Task) string {
	ext := ""
	if u, err := url.Parse(task.URL); err == nil {
		ext = path.Ext(u.Path)
	}
	if ext == "" || len(ext) > 8 {
		ext = ".bin"
	}
	return task.ID.String() + ext
}

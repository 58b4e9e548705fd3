// Package fetch downloads registry artifacts over HTTP with retry and
// optional progress reporting.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/afero"
)

// ProgressFunc is a callback for download progress.
type ProgressFunc func(downloaded, total int64)

// Download fetches url to destPath on fs. The body is written to a
// temporary file first and renamed into place only on success. Server
// errors are retried with linear backoff; client errors are not.
func Download(ctx context.Context, client *http.Client, url string, fs afero.Fs, destPath string) error {
	return DownloadWithProgress(ctx, client, url, fs, destPath, nil)
}

// DownloadWithProgress is Download with a progress callback.
func DownloadWithProgress(ctx context.Context, client *http.Client, url string, fs afero.Fs, destPath string, progress ProgressFunc) error {
	if err := fs.MkdirAll(filepath.Dir(destPath), 0755); err != nil {
		return errors.Wrap(err, "failed to create destination directory")
	}

	tmpPath := destPath + ".download"
	defer fs.Remove(tmpPath)

	maxRetries := 3
	var lastErr error

	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(time.Duration(attempt) * time.Second):
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return errors.Wrap(err, "failed to create request")
		}

		resp, err := client.Do(req)
		if err != nil {
			lastErr = err
			continue
		}

		err = func() error {
			defer resp.Body.Close()

			if resp.StatusCode != http.StatusOK {
				return fmt.Errorf("unexpected status code: %d", resp.StatusCode)
			}

			out, err := fs.Create(tmpPath)
			if err != nil {
				return errors.Wrap(err, "failed to create temporary file")
			}

			var written int64
			if progress != nil && resp.ContentLength > 0 {
				written, err = copyWithProgress(out, resp.Body, resp.ContentLength, progress)
			} else {
				written, err = io.Copy(out, resp.Body)
			}
			if closeErr := out.Close(); err == nil {
				err = closeErr
			}
			if err != nil {
				return err
			}
			if written == 0 {
				return fmt.Errorf("no content downloaded")
			}
			return nil
		}()
		if err != nil {
			lastErr = err
			if resp.StatusCode >= 400 && resp.StatusCode < 500 {
				// Client error, don't retry.
				return lastErr
			}
			continue
		}

		if err := fs.Rename(tmpPath, destPath); err != nil {
			return errors.Wrap(err, "failed to move downloaded file")
		}
		return nil
	}

	return errors.Wrapf(lastErr, "download failed after %d attempts", maxRetries)
}

// copyWithProgress copies data and reports progress.
func copyWithProgress(dst io.Writer, src io.Reader, total int64, progress ProgressFunc) (int64, error) {
	var written int64
	buf := make([]byte, 32*1024) // 32KB buffer

	for {
		nr, readErr := src.Read(buf)
		if nr > 0 {
			nw, writeErr := dst.Write(buf[0:nr])
			if writeErr != nil {
				return written, writeErr
			}
			written += int64(nw)

			if progress != nil {
				progress(written, total)
			}
		}

		if readErr != nil {
			if readErr == io.EOF {
				return written, nil
			}
			return written, readErr
		}
	}
}

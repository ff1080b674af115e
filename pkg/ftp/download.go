package ftp

import (
	"context"
	"fmt"
	"time"

	goftp "github.com/jlaffaye/ftp"
)

// retrieveWithTimeout downloads path over conn, aborting if it takes longer
// than opts.FileTimeoutMs (§4.2).
func retrieveWithTimeout(ctx context.Context, conn *goftp.ServerConn, path string, opts DownloadOptions) ([]byte, error) {
	timeout := time.Duration(opts.FileTimeoutMs) * time.Millisecond
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	type result struct {
		data []byte
		err  error
	}
	done := make(chan result, 1)
	go func() {
		data, err := rawRetrieve(conn, path)
		done <- result{data, err}
	}()

	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("download of %s timed out after %s", path, timeout)
	case r := <-done:
		return r.data, r.err
	}
}

// downloadWithRetry runs attempt up to opts.RetryAttempts times, sleeping
// opts.RetryDelayMs * 2^(attempt-1) between failures (§4.2).
func downloadWithRetry(ctx context.Context, opts DownloadOptions, attempt func(ctx context.Context) ([]byte, error)) DownloadResult {
	retries := opts.RetryAttempts
	if retries < 1 {
		retries = 1
	}

	var lastErr error
	for i := 1; i <= retries; i++ {
		data, err := attempt(ctx)
		if err == nil {
			return DownloadResult{Data: data}
		}
		lastErr = err

		if i < retries {
			delay := time.Duration(opts.RetryDelayMs) * time.Millisecond * time.Duration(1<<(i-1))
			select {
			case <-ctx.Done():
				return DownloadResult{Err: ctx.Err()}
			case <-time.After(delay):
			}
		}
	}
	return DownloadResult{Err: fmt.Errorf("download failed after %d attempts: %w", retries, lastErr)}
}

// Download performs a single-file download through the control connection,
// first probing the server-reported size and short-circuiting with
// Oversized if it exceeds opts.MaxFileSizeBytes. If the size cannot be
// determined, the download is attempted anyway (§4.2).
func (c *ControlClient) Download(ctx context.Context, path string, opts DownloadOptions) DownloadResult {
	if sz, err := c.Size(path); err == nil && opts.MaxFileSizeBytes > 0 && sz > opts.MaxFileSizeBytes {
		return DownloadResult{Oversized: true}
	}

	return downloadWithRetry(ctx, opts, func(ctx context.Context) ([]byte, error) {
		conn, err := c.get()
		if err != nil {
			return nil, err
		}
		data, err := retrieveWithTimeout(ctx, conn, path, opts)
		if err != nil {
			// The single-connection path reconnects before retrying, since
			// there is no pool to fall back on (§4.2).
			if rerr := c.ForceReconnect(); rerr != nil {
				return nil, fmt.Errorf("%w (reconnect also failed: %v)", err, rerr)
			}
			return nil, err
		}
		return data, nil
	})
}

// DownloadViaPoolOrControl chooses the pooled download path when pool is
// non-nil, else falls back to the single control connection (§4.3 step 3,
// §4.5 initialization step 6).
func DownloadViaPoolOrControl(ctx context.Context, pool *Pool, control *ControlClient, path string, opts DownloadOptions) DownloadResult {
	// Size probe is shared regardless of which path performs the retrieval.
	var sz int64
	var sizeErr error
	if pool != nil {
		sz, sizeErr = pool.Size(ctx, path)
	} else {
		sz, sizeErr = control.Size(path)
	}
	if sizeErr == nil && opts.MaxFileSizeBytes > 0 && sz > opts.MaxFileSizeBytes {
		return DownloadResult{Oversized: true}
	}

	if pool != nil {
		return pool.Download(ctx, path, opts)
	}
	return control.downloadWithoutSizeCheck(ctx, path, opts)
}

// downloadWithoutSizeCheck is Download minus the redundant size probe, used
// by DownloadViaPoolOrControl which already performed it.
func (c *ControlClient) downloadWithoutSizeCheck(ctx context.Context, path string, opts DownloadOptions) DownloadResult {
	return downloadWithRetry(ctx, opts, func(ctx context.Context) ([]byte, error) {
		conn, err := c.get()
		if err != nil {
			return nil, err
		}
		data, err := retrieveWithTimeout(ctx, conn, path, opts)
		if err != nil {
			if rerr := c.ForceReconnect(); rerr != nil {
				return nil, fmt.Errorf("%w (reconnect also failed: %v)", err, rerr)
			}
			return nil, err
		}
		return data, nil
	})
}

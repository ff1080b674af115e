package ftp

import (
	"context"
	"fmt"
	"sync"
	"time"

	goftp "github.com/jlaffaye/ftp"

	"github.com/cruiseops/cruisesync/internal/telemetry"
)

const acquireWait = 30 * time.Second
const acquirePoll = 100 * time.Millisecond

type slot struct {
	conn   *goftp.ServerConn
	inUse  bool
	closed bool
}

// Pool maintains up to size authenticated FTP connections for parallel
// downloads (§4.2). Slots are only read or changed under the pool's own
// lock, so slot creation is serialized.
type Pool struct {
	cfg  Config
	size int

	mu    sync.Mutex
	slots []*slot
}

// NewPool creates a pool sized to hold up to size connections. Connections
// are opened lazily on first Acquire.
func NewPool(cfg Config, size int) *Pool {
	if size < 1 {
		size = 1
	}
	return &Pool{cfg: cfg, size: size, slots: make([]*slot, 0, size)}
}

// Acquire returns an idle, open connection, opening a new one if the pool is
// below capacity. If at capacity with all connections busy, it polls for an
// idle slot at acquirePoll intervals up to acquireWait.
func (p *Pool) Acquire(ctx context.Context) (*goftp.ServerConn, int, error) {
	deadline := time.Now().Add(acquireWait)
	for {
		conn, idx, err := p.tryAcquire()
		if err != nil {
			return nil, -1, err
		}
		if conn != nil {
			telemetry.FTPPoolInUse.Inc()
			return conn, idx, nil
		}

		if time.Now().After(deadline) {
			return nil, -1, fmt.Errorf("ftp pool: timed out waiting %s for an idle connection", acquireWait)
		}

		select {
		case <-ctx.Done():
			return nil, -1, ctx.Err()
		case <-time.After(acquirePoll):
		}
	}
}

// tryAcquire makes one attempt to find or open an idle connection. It
// returns (nil, -1, nil) when the pool is full and every slot is in use.
func (p *Pool) tryAcquire() (*goftp.ServerConn, int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for i, s := range p.slots {
		if !s.inUse && !s.closed {
			s.inUse = true
			return s.conn, i, nil
		}
		if !s.inUse && s.closed {
			// Replace a dead slot with a fresh connection.
			conn, err := dial(p.cfg, 30*time.Second)
			if err != nil {
				return nil, -1, fmt.Errorf("ftp pool: reopening connection: %w", err)
			}
			s.conn = conn
			s.closed = false
			s.inUse = true
			return s.conn, i, nil
		}
	}

	if len(p.slots) < p.size {
		conn, err := dial(p.cfg, 30*time.Second)
		if err != nil {
			return nil, -1, fmt.Errorf("ftp pool: opening connection: %w", err)
		}
		p.slots = append(p.slots, &slot{conn: conn, inUse: true})
		return conn, len(p.slots) - 1, nil
	}

	return nil, -1, nil
}

// Release marks the slot at idx idle again.
func (p *Pool) Release(idx int) {
	if idx < 0 {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if idx < len(p.slots) {
		p.slots[idx].inUse = false
	}
	telemetry.FTPPoolInUse.Dec()
}

// markClosed flags the slot at idx as closed so the next Acquire reopens it,
// rather than handing out a broken connection (used after a retry failure
// suggests the underlying socket is dead).
func (p *Pool) markClosed(idx int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if idx >= 0 && idx < len(p.slots) {
		p.slots[idx].closed = true
	}
}

// Drain closes every connection in the pool.
func (p *Pool) Drain() {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, s := range p.slots {
		if !s.closed && s.conn != nil {
			_ = s.conn.Quit()
			s.closed = true
		}
	}
	p.slots = p.slots[:0]
}

// Download acquires a pooled connection per attempt and applies the same
// retry discipline as the single-connection path, without tearing down
// other connections in the pool on failure (§4.2).
func (p *Pool) Download(ctx context.Context, path string, opts DownloadOptions) DownloadResult {
	return downloadWithRetry(ctx, opts, func(ctx context.Context) ([]byte, error) {
		conn, idx, err := p.Acquire(ctx)
		if err != nil {
			return nil, err
		}
		defer p.Release(idx)

		data, err := retrieveWithTimeout(ctx, conn, path, opts)
		if err != nil {
			p.markClosed(idx)
			return nil, err
		}
		return data, nil
	})
}

// Size probes a file's size using a connection borrowed from the pool.
func (p *Pool) Size(ctx context.Context, path string) (int64, error) {
	conn, idx, err := p.Acquire(ctx)
	if err != nil {
		return 0, err
	}
	defer p.Release(idx)

	sz, err := conn.FileSize(path)
	if err != nil {
		return 0, fmt.Errorf("sizing %s: %w", path, err)
	}
	return sz, nil
}

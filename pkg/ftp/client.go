package ftp

import (
	"crypto/tls"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	goftp "github.com/jlaffaye/ftp"
)

// ControlClient is the single, reconnectable FTP connection used for
// directory listing, size probes, and (when the pool is not initialized)
// single-connection downloads (§4.2).
type ControlClient struct {
	cfg    Config
	logger *slog.Logger

	mu   sync.Mutex
	conn *goftp.ServerConn
}

// NewControlClient creates a disconnected control client.
func NewControlClient(cfg Config, logger *slog.Logger) *ControlClient {
	return &ControlClient{cfg: cfg, logger: logger}
}

func dial(cfg Config, timeout time.Duration) (*goftp.ServerConn, error) {
	opts := []goftp.DialOption{goftp.DialWithTimeout(timeout)}
	if cfg.Secure {
		// The vendor feed uses a self-signed certificate in non-production
		// environments; InsecureSkipVerify mirrors the original client's
		// acceptance of that (§6.1).
		opts = append(opts, goftp.DialWithExplicitTLS(&tls.Config{InsecureSkipVerify: true})) //nolint:gosec
	}
	if cfg.Verbose {
		opts = append(opts, goftp.DialWithDebugOutput(nil))
	}

	conn, err := goftp.Dial(cfg.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("dialing %s: %w", cfg.Host, err)
	}
	if err := conn.Login(cfg.User, cfg.Password); err != nil {
		_ = conn.Quit()
		return nil, fmt.Errorf("logging in: %w", err)
	}
	return conn, nil
}

// Connect opens the control connection if it is not already open.
func (c *ControlClient) Connect() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn != nil {
		return nil
	}
	conn, err := dial(c.cfg, 30*time.Second)
	if err != nil {
		return err
	}
	c.conn = conn
	return nil
}

// ForceReconnect closes any existing control connection and opens a fresh
// one. The orchestrator calls this at the start of every run (§4.5, §9 open
// question: default behavior is fresh-per-run, never reused across runs).
func (c *ControlClient) ForceReconnect() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn != nil {
		_ = c.conn.Quit()
		c.conn = nil
	}
	conn, err := dial(c.cfg, 30*time.Second)
	if err != nil {
		return fmt.Errorf("reconnecting: %w", err)
	}
	c.conn = conn
	return nil
}

// Disconnect closes the control connection.
func (c *ControlClient) Disconnect() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil {
		return nil
	}
	err := c.conn.Quit()
	c.conn = nil
	return err
}

func (c *ControlClient) get() (*goftp.ServerConn, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil {
		return nil, fmt.Errorf("ftp control connection not established")
	}
	return c.conn, nil
}

// TestConnection dials a transient connection that never touches the
// control client's own connection (§4.2).
func (c *ControlClient) TestConnection() (string, error) {
	conn, err := dial(c.cfg, 10*time.Second)
	if err != nil {
		return "", err
	}
	defer func() { _ = conn.Quit() }()

	cur, err := conn.CurrentDir()
	if err != nil {
		return "", fmt.Errorf("probing current directory: %w", err)
	}
	return fmt.Sprintf("connected to %s, cwd=%s", c.cfg.Host, cur), nil
}

// NameList lists file/directory names at path.
func (c *ControlClient) NameList(path string) ([]string, error) {
	conn, err := c.get()
	if err != nil {
		return nil, err
	}
	names, err := conn.NameList(path)
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", path, err)
	}
	return names, nil
}

// Size returns the server-reported size of path, or an error if it cannot be
// determined (callers treat that as "attempt the download anyway", §4.2).
func (c *ControlClient) Size(path string) (int64, error) {
	conn, err := c.get()
	if err != nil {
		return 0, err
	}
	sz, err := conn.FileSize(path)
	if err != nil {
		return 0, fmt.Errorf("sizing %s: %w", path, err)
	}
	return sz, nil
}

// rawRetrieve streams path fully into memory via conn, honoring no timeout
// itself — callers wrap this with a context deadline.
func rawRetrieve(conn *goftp.ServerConn, path string) ([]byte, error) {
	resp, err := conn.Retr(path)
	if err != nil {
		return nil, fmt.Errorf("retrieving %s: %w", path, err)
	}
	defer func() { _ = resp.Close() }()

	data, err := io.ReadAll(resp)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return data, nil
}

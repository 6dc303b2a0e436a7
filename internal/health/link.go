package health

import (
	"context"
	"log/slog"
	"net"
	"time"
)

// DialFunc opens a connection; it matches net.Dialer.DialContext.
type DialFunc func(ctx context.Context, network, addr string) (net.Conn, error)

// LinkWatcher derives the platform online flag by dialing a well-known
// address and feeds the result to a Monitor.
type LinkWatcher struct {
	Addr     string
	Interval time.Duration
	Timeout  time.Duration
	Dial     DialFunc

	monitor *Monitor
	log     *slog.Logger
}

func NewLinkWatcher(monitor *Monitor, addr string, interval, timeout time.Duration) *LinkWatcher {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	d := &net.Dialer{}
	return &LinkWatcher{
		Addr:     addr,
		Interval: interval,
		Timeout:  timeout,
		Dial:     d.DialContext,
		monitor:  monitor,
		log:      slog.Default().With("component", "link"),
	}
}

// Check dials once and reports whether the link is up.
func (w *LinkWatcher) Check(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, w.Timeout)
	defer cancel()
	conn, err := w.Dial(ctx, "tcp", w.Addr)
	if err != nil {
		w.log.Debug("Link check failed", "addr", w.Addr, "error", err)
		return false
	}
	conn.Close()
	return true
}

// Run checks the link every Interval until ctx is done.
func (w *LinkWatcher) Run(ctx context.Context) {
	ticker := time.NewTicker(w.Interval)
	defer ticker.Stop()

	for {
		up := w.Check(ctx)
		if ctx.Err() != nil {
			return
		}
		w.monitor.SetOnline(up)

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

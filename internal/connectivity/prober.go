package connectivity

import (
	"context"
	"net/http"
	"time"
)

// Prober feeds the monitor from periodic reachability checks against the
// remote store when the platform offers no native connectivity events.
type Prober struct {
	monitor  *Monitor
	url      string
	interval time.Duration
	client   *http.Client
}

// NewProber checks url every interval and reports the result to the monitor.
func NewProber(m *Monitor, url string, interval time.Duration) *Prober {
	return &Prober{
		monitor:  m,
		url:      url,
		interval: interval,
		client:   &http.Client{Timeout: 5 * time.Second},
	}
}

// Probe performs a single reachability check against url.
func Probe(ctx context.Context, url string) bool {
	return probe(ctx, &http.Client{Timeout: 5 * time.Second}, url)
}

func probe(ctx context.Context, client *http.Client, url string) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
	if err != nil {
		return false
	}
	resp, err := client.Do(req)
	if err != nil {
		return false
	}
	resp.Body.Close()
	return true
}

// Run probes until the context ends, pushing each observation into the
// monitor. The monitor dedupes, so steady states produce no events.
func (p *Prober) Run(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.monitor.Set(probe(ctx, p.client, p.url))
		}
	}
}

package scanner

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"
)

// DefaultScanInterval is how often the coordinator runs a scan pass
// when the config does not set one.
const DefaultScanInterval = 2 * time.Hour

// CoordinatorConfig tunes the periodic scan loop
type CoordinatorConfig struct {
	// Interval between scan passes. Zero means DefaultScanInterval.
	Interval time.Duration

	// ScanOnStart runs a pass immediately instead of waiting for
	// the first interval to elapse.
	ScanOnStart bool

	// PassTimeout bounds a single pass. Zero means no per-pass
	// timeout beyond the coordinator's lifecycle context.
	PassTimeout time.Duration
}

// Coordinator runs the scanner on a fixed interval. Passes never
// overlap: the next interval starts counting only after the previous
// pass finishes.
type Coordinator struct {
	mu sync.Mutex

	scanner *Scanner
	config  *CoordinatorConfig

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	running  bool
	lastScan time.Time
}

// NewCoordinator creates a coordinator for the given scanner
func NewCoordinator(scanner *Scanner, config *CoordinatorConfig) (*Coordinator, error) {
	if scanner == nil {
		return nil, fmt.Errorf("scanner is required")
	}
	if config == nil {
		config = &CoordinatorConfig{}
	}
	if config.Interval == 0 {
		config.Interval = DefaultScanInterval
	}
	if config.Interval < 0 {
		return nil, fmt.Errorf("interval must be positive, got %v", config.Interval)
	}

	return &Coordinator{scanner: scanner, config: config}, nil
}

// Start begins the periodic scan loop
func (c *Coordinator) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.running {
		return fmt.Errorf("coordinator already running")
	}

	c.ctx, c.cancel = context.WithCancel(ctx)
	c.running = true

	c.wg.Add(1)
	go c.scanLoop()

	log.Printf("[SCANNER] coordinator started (interval=%v)", c.config.Interval)
	return nil
}

// Stop gracefully stops the loop, waiting for an in-flight pass
func (c *Coordinator) Stop() {
	c.mu.Lock()
	if !c.running {
		c.mu.Unlock()
		return
	}
	c.cancel()
	c.running = false
	c.mu.Unlock()

	c.wg.Wait()
	log.Printf("[SCANNER] coordinator stopped")
}

// LastScan returns when the most recent pass completed, zero if none has
func (c *Coordinator) LastScan() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastScan
}

func (c *Coordinator) scanLoop() {
	defer c.wg.Done()

	if c.config.ScanOnStart {
		c.runPass()
	}

	timer := time.NewTimer(c.config.Interval)
	defer timer.Stop()

	for {
		select {
		case <-c.ctx.Done():
			return
		case <-timer.C:
			c.runPass()
			timer.Reset(c.config.Interval)
		}
	}
}

func (c *Coordinator) runPass() {
	ctx := c.ctx
	var cancel context.CancelFunc
	if c.config.PassTimeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, c.config.PassTimeout)
		defer cancel()
	}

	stats, err := c.scanner.Scan(ctx)
	if err != nil {
		log.Printf("[SCANNER] scan pass failed: %v", err)
		return
	}

	c.mu.Lock()
	c.lastScan = time.Now()
	c.mu.Unlock()

	log.Printf("[SCANNER] scan pass complete: projects=%d updated=%d unchanged=%d alerts=%d errors=%d",
		stats.Projects, stats.FilesUpdated, stats.FilesUnchanged, stats.AlertsCreated,
		stats.FileErrors+stats.ProjectErrors)
}

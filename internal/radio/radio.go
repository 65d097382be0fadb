package radio

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/exec"
	"strings"
	"time"
)

// Radio powers network access up for the duration of one fetch.
type Radio interface {
	// Acquire brings the link up. The returned release func must always be
	// called, success or failure, and is safe to call when err != nil.
	Acquire(ctx context.Context) (release func(), err error)
}

// Noop is used on hosts where the network is always on.
type Noop struct{}

func (Noop) Acquire(context.Context) (func(), error) { return func() {}, nil }

// Command runs shell commands to bring the link up and down, for example
// `nmcli radio wifi on`. SSID and Password are exported to the commands as
// WIFI_SSID and WIFI_PASSWORD.
type Command struct {
	Up       string
	Down     string
	SSID     string
	Password string
	Timeout  time.Duration
}

func (c *Command) Acquire(ctx context.Context) (func(), error) {
	release := func() {
		if c.Down == "" {
			return
		}
		// release runs even if ctx is already done
		dctx, cancel := context.WithTimeout(context.Background(), c.timeout())
		defer cancel()
		if err := c.run(dctx, c.Down); err != nil {
			log.Printf("[WARN] radio down: %v", err)
		}
	}
	if c.Up == "" {
		return release, nil
	}
	uctx, cancel := context.WithTimeout(ctx, c.timeout())
	defer cancel()
	if err := c.run(uctx, c.Up); err != nil {
		return release, fmt.Errorf("radio up: %w", err)
	}
	return release, nil
}

func (c *Command) timeout() time.Duration {
	if c.Timeout <= 0 {
		return 15 * time.Second
	}
	return c.Timeout
}

func (c *Command) run(ctx context.Context, command string) error {
	cmd := exec.CommandContext(ctx, "sh", "-c", command)
	cmd.Env = append(os.Environ(), "WIFI_SSID="+c.SSID, "WIFI_PASSWORD="+c.Password)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("%s: %w (%s)", command, err, strings.TrimSpace(string(out)))
	}
	return nil
}

// Package file writes briefs as markdown files into an outbox directory.
package file

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/custodia-labs/flightdeck/internal/core/domain"
	"github.com/custodia-labs/flightdeck/internal/core/ports/driven"
)

// Ensure Sink implements the interface.
var _ driven.DeliverySink = (*Sink)(nil)

// maxCollisions bounds the suffix search when two briefs share a timestamp.
const maxCollisions = 100

// Sink writes each message to a new file in dir.
type Sink struct {
	dir   string
	clock func() time.Time
}

// New creates a file sink writing into dir.
func New(dir string) *Sink {
	return &Sink{dir: dir, clock: time.Now}
}

// SetClock replaces the clock used for file names.
func (s *Sink) SetClock(clock func() time.Time) {
	if clock != nil {
		s.clock = clock
	}
}

// Name implements driven.DeliverySink.
func (s *Sink) Name() string { return "file" }

// Recipient returns the outbox directory.
func (s *Sink) Recipient() string { return s.dir }

// Post writes msg to brief-<utc timestamp>.md. Existing files are never
// overwritten.
func (s *Sink) Post(ctx context.Context, msg domain.Message) (string, error) {
	if s.dir == "" {
		return "outbox directory not configured", domain.ErrSinkNotConfigured
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		return fmt.Sprintf("create outbox: %v", err), err
	}

	content := msg.Body
	if msg.Subject != "" {
		content = "Subject: " + msg.Subject + "\n\n" + msg.Body
	}

	base := "brief-" + s.clock().UTC().Format("20060102T150405Z")
	for i := 0; i < maxCollisions; i++ {
		name := base + ".md"
		if i > 0 {
			name = fmt.Sprintf("%s-%d.md", base, i)
		}
		path := filepath.Join(s.dir, name)

		f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
		if errors.Is(err, os.ErrExist) {
			continue
		}
		if err != nil {
			return fmt.Sprintf("open %s: %v", path, err), err
		}
		if _, err := f.WriteString(content); err != nil {
			f.Close()
			return fmt.Sprintf("write %s: %v", path, err), err
		}
		if err := f.Close(); err != nil {
			return fmt.Sprintf("close %s: %v", path, err), err
		}
		return "written to " + path, nil
	}
	err := fmt.Errorf("no free file name for %s in %s", base, s.dir)
	return err.Error(), err
}

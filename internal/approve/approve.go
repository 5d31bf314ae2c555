// Package approve gates file writes behind a human decision. The default
// approver accepts every change; the Emacs approver hands the old and new
// text to a running Emacs session for an interactive ediff review.
package approve

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// Decision is an approver's verdict. FinalText carries the content to
// write, which a reviewer may have edited during the session.
type Decision struct {
	Approved  bool
	FinalText string
}

// Approver decides whether a proposed change may be written.
type Approver interface {
	Approve(ctx context.Context, label, oldText, newText string) (Decision, error)
}

// Auto approves every change unmodified.
type Auto struct{}

func (Auto) Approve(_ context.Context, _ string, _, newText string) (Decision, error) {
	return Decision{Approved: true, FinalText: newText}, nil
}

// Emacs runs an interactive ediff session through emacsclient. The support
// elisp is loaded into the server once per process.
type Emacs struct {
	Client    string // emacsclient binary path
	ElispFile string // ediff glue loaded on first use

	loadOnce sync.Once
	loadErr  error
}

// FindClient resolves the emacsclient binary: an explicit path wins when it
// exists, otherwise PATH lookup. Empty result means unavailable.
func FindClient(configured string) string {
	if configured != "" {
		if _, err := os.Stat(configured); err == nil {
			return configured
		}
	}
	path, err := exec.LookPath("emacsclient")
	if err != nil {
		return ""
	}
	return path
}

func (a *Emacs) Approve(ctx context.Context, label, oldText, newText string) (Decision, error) {
	if err := a.loadElisp(ctx); err != nil {
		return Decision{}, err
	}

	dir, err := os.MkdirTemp("", "dagaz-ediff-*")
	if err != nil {
		return Decision{}, fmt.Errorf("approve: %w", err)
	}
	defer os.RemoveAll(dir)

	oldPath := filepath.Join(dir, "current")
	newPath := filepath.Join(dir, "proposed")
	if err := os.WriteFile(oldPath, []byte(oldText), 0o600); err != nil {
		return Decision{}, fmt.Errorf("approve: %w", err)
	}
	if err := os.WriteFile(newPath, []byte(newText), 0o600); err != nil {
		return Decision{}, fmt.Errorf("approve: %w", err)
	}

	expr := fmt.Sprintf("(dagaz-ediff-review %s %s %s)",
		elispString(oldPath), elispString(newPath), elispString(label))
	out, err := exec.CommandContext(ctx, a.Client, "--eval", expr).Output()
	if err != nil {
		return Decision{}, fmt.Errorf("approve: emacsclient: %w", err)
	}

	verdict := strings.Trim(strings.TrimSpace(string(out)), `"`)
	if verdict != "approved" {
		return Decision{Approved: false, FinalText: newText}, nil
	}

	// The reviewer may have edited the proposed buffer in place.
	final, err := os.ReadFile(newPath)
	if err != nil {
		return Decision{}, fmt.Errorf("approve: %w", err)
	}
	return Decision{Approved: true, FinalText: string(final)}, nil
}

func (a *Emacs) loadElisp(ctx context.Context) error {
	a.loadOnce.Do(func() {
		if a.ElispFile == "" {
			return
		}
		expr := fmt.Sprintf("(load %s)", elispString(a.ElispFile))
		if err := exec.CommandContext(ctx, a.Client, "--eval", expr).Run(); err != nil {
			a.loadErr = fmt.Errorf("approve: load %s: %w", a.ElispFile, err)
		}
	})
	return a.loadErr
}

func elispString(s string) string {
	return `"` + strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(s) + `"`
}

// WithTimeout wraps an approver with a per-call deadline. A timed-out or
// failed review falls back to auto-approval so a wedged Emacs session never
// blocks writes.
type WithTimeout struct {
	Inner   Approver
	Timeout time.Duration
}

func (w WithTimeout) Approve(ctx context.Context, label, oldText, newText string) (Decision, error) {
	ctx, cancel := context.WithTimeout(ctx, w.Timeout)
	defer cancel()

	dec, err := w.Inner.Approve(ctx, label, oldText, newText)
	if err != nil {
		return Decision{Approved: true, FinalText: newText}, nil
	}
	return dec, nil
}

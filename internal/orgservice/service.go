// Package orgservice coordinates the read-modify-write cycle over the org
// directory: parse, mutate, render, preview, approval gate, backup, atomic
// write, index refresh, and change notification.
package orgservice

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/starford/dagaz/internal/apperr"
	"github.com/starford/dagaz/internal/approve"
	"github.com/starford/dagaz/internal/diffview"
	"github.com/starford/dagaz/internal/index"
	"github.com/starford/dagaz/internal/sse"
	"github.com/starford/dagaz/internal/storage"
	"github.com/starford/dagaz/internal/tasks"
)

// Service owns all file mutations. A single mutex serializes the
// read-modify-write cycles, so concurrent API and MCP calls never interleave
// on the same file.
type Service struct {
	store    storage.Provider
	db       *index.DB
	broker   *sse.Broker // nil when SSE is disabled
	approver approve.Approver
	mutator  *tasks.Mutator
	logger   *slog.Logger

	tasksFile string
	naming    storage.JournalNaming

	mu sync.Mutex
}

// Options configures a Service.
type Options struct {
	Store     storage.Provider
	DB        *index.DB
	Broker    *sse.Broker
	Approver  approve.Approver
	Sections  tasks.SectionMap
	TasksFile string
	Naming    storage.JournalNaming
	Logger    *slog.Logger
}

// NewService creates a Service. A nil Approver defaults to auto-approval.
func NewService(opts Options) *Service {
	approver := opts.Approver
	if approver == nil {
		approver = approve.Auto{}
	}
	return &Service{
		store:     opts.Store,
		db:        opts.DB,
		broker:    opts.Broker,
		approver:  approver,
		mutator:   tasks.NewMutator(opts.Sections),
		logger:    opts.Logger,
		tasksFile: opts.TasksFile,
		naming:    opts.Naming,
	}
}

// Mutator exposes the underlying task mutator for tests that need to pin
// the clock or ID generation.
func (s *Service) Mutator() *tasks.Mutator { return s.mutator }

// commit runs the write side of a mutation: diff, approval, backup, atomic
// write, index refresh, change event. It returns the diff that was applied.
// An unchanged render skips the write entirely.
func (s *Service) commit(ctx context.Context, path, oldText, newText string, reindex func(data []byte) error, scope, kind, ref string) (string, error) {
	diff := diffview.Format(oldText, newText)
	if diff == diffview.NoChanges {
		return diff, nil
	}

	dec, err := s.approver.Approve(ctx, path, oldText, newText)
	if err != nil {
		return "", err
	}
	if !dec.Approved {
		return "", fmt.Errorf("orgservice: change to %s: %w", path, apperr.ErrRejected)
	}
	final := dec.FinalText

	if s.store.Exists(path) {
		bak, err := s.store.Backup(path)
		if err != nil {
			return "", err
		}
		s.logger.Debug("backup written", slog.String("path", bak))
	}

	if err := s.store.Write(path, []byte(final)); err != nil {
		return "", err
	}
	if err := reindex([]byte(final)); err != nil {
		s.logger.Warn("reindex failed", slog.String("path", path), slog.String("error", err.Error()))
	}
	if s.broker != nil {
		s.broker.PublishChange(scope, kind, ref)
	}

	s.logger.Info("file updated",
		slog.String("path", path),
		slog.String("scope", scope),
		slog.String("op", kind),
		slog.String("ref", ref))
	return diff, nil
}

// readText returns the file content, mapping a missing file to ErrNotFound.
func (s *Service) readText(path string) (string, error) {
	data, err := s.store.Read(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("orgservice: %s: %w", path, apperr.ErrNotFound)
		}
		return "", err
	}
	return string(data), nil
}

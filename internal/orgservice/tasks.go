package orgservice

import (
	"context"

	"github.com/starford/dagaz/internal/diffview"
	"github.com/starford/dagaz/internal/index"
	"github.com/starford/dagaz/internal/locator"
	"github.com/starford/dagaz/internal/models"
	"github.com/starford/dagaz/internal/outline"
)

// TaskDetail is the full representation of one task.
type TaskDetail struct {
	ID       string `json:"id"`
	Slug     string `json:"slug"`
	Ticket   string `json:"ticket,omitempty"`
	Status   string `json:"status"`
	Headline string `json:"headline"`
	Section  string `json:"section"`
	Text     string `json:"text"`
}

// TaskChange is the outcome of a task mutation.
type TaskChange struct {
	Task        *TaskDetail `json:"task"`
	Diff        string      `json:"diff"`
	Moved       bool        `json:"moved"`
	FromSection string      `json:"from_section,omitempty"`
	ToSection   string      `json:"to_section,omitempty"`
}

func taskDetail(e *models.Entry, section string) *TaskDetail {
	return &TaskDetail{
		ID:       e.Prop(models.PropID),
		Slug:     e.Slug(),
		Ticket:   e.Ticket(),
		Status:   string(e.Status),
		Headline: e.Headline,
		Section:  section,
		Text:     outline.RenderEntry(e),
	}
}

// ListTasks returns the tasks in the status-bearing sections, optionally
// filtered to one status.
func (s *Service) ListTasks(_ context.Context, status string) ([]*TaskDetail, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.loadTasks()
	if err != nil {
		return nil, err
	}
	var out []*TaskDetail
	for _, name := range s.mutator.Sections.TaskSections() {
		sec := doc.Section(name)
		if sec == nil {
			continue
		}
		for _, e := range sec.Entries {
			if !e.Status.Valid() {
				continue
			}
			if status != "" && string(e.Status) != status {
				continue
			}
			out = append(out, taskDetail(e, name))
		}
	}
	return out, nil
}

// GetTask resolves identifier to a single task.
func (s *Service) GetTask(_ context.Context, identifier string) (*TaskDetail, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.loadTasks()
	if err != nil {
		return nil, err
	}
	hit, err := locator.Find(doc, identifier, s.mutator.Sections.TaskSections()...)
	if err != nil {
		return nil, err
	}
	return taskDetail(hit.Entry, hit.Section.Name), nil
}

// CreateTask appends a new task parsed from fragment to the named section
// and persists the change.
func (s *Service) CreateTask(ctx context.Context, section, fragment string) (*TaskChange, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	oldText, doc, err := s.loadTasksText()
	if err != nil {
		return nil, err
	}
	entry, err := s.mutator.Create(doc, section, fragment)
	if err != nil {
		return nil, err
	}
	diff, err := s.commitTasks(ctx, oldText, doc, "created", entry.Slug())
	if err != nil {
		return nil, err
	}
	return &TaskChange{Task: taskDetail(entry, section), Diff: diff, ToSection: section}, nil
}

// UpdateTask replaces the identified task with the fragment, relocating it
// when the status keyword changed, and persists the change.
func (s *Service) UpdateTask(ctx context.Context, identifier, fragment string) (*TaskChange, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	oldText, doc, err := s.loadTasksText()
	if err != nil {
		return nil, err
	}
	res, err := s.mutator.Update(doc, identifier, fragment)
	if err != nil {
		return nil, err
	}
	diff, err := s.commitTasks(ctx, oldText, doc, "updated", res.New.Slug())
	if err != nil {
		return nil, err
	}
	return &TaskChange{
		Task:        taskDetail(res.New, res.ToSection),
		Diff:        diff,
		Moved:       res.Moved,
		FromSection: res.FromSection,
		ToSection:   res.ToSection,
	}, nil
}

// MoveTask relocates a task between sections without touching its content
// and persists the change.
func (s *Service) MoveTask(ctx context.Context, identifier, fromSection, toSection string) (*TaskChange, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	oldText, doc, err := s.loadTasksText()
	if err != nil {
		return nil, err
	}
	entry, err := s.mutator.Move(doc, identifier, fromSection, toSection)
	if err != nil {
		return nil, err
	}
	diff, err := s.commitTasks(ctx, oldText, doc, "updated", entry.Slug())
	if err != nil {
		return nil, err
	}
	return &TaskChange{
		Task:        taskDetail(entry, toSection),
		Diff:        diff,
		Moved:       fromSection != toSection,
		FromSection: fromSection,
		ToSection:   toSection,
	}, nil
}

// PreviewCreate returns the diff a CreateTask would apply, without writing.
func (s *Service) PreviewCreate(_ context.Context, section, fragment string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	oldText, doc, err := s.loadTasksText()
	if err != nil {
		return "", err
	}
	if _, err := s.mutator.Create(doc, section, fragment); err != nil {
		return "", err
	}
	return previewDiff(oldText, doc), nil
}

// PreviewUpdate returns the diff an UpdateTask would apply, without writing.
func (s *Service) PreviewUpdate(_ context.Context, identifier, fragment string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	oldText, doc, err := s.loadTasksText()
	if err != nil {
		return "", err
	}
	if _, err := s.mutator.Update(doc, identifier, fragment); err != nil {
		return "", err
	}
	return previewDiff(oldText, doc), nil
}

// SearchTasks delegates full-text search to the index.
func (s *Service) SearchTasks(_ context.Context, query string, limit int) ([]index.SearchResult, error) {
	return s.db.Search("task", query, limit)
}

func previewDiff(oldText string, doc *models.Document) string {
	return diffview.Format(oldText, outline.Render(doc))
}

func (s *Service) loadTasks() (*models.Document, error) {
	_, doc, err := s.loadTasksText()
	return doc, err
}

func (s *Service) loadTasksText() (string, *models.Document, error) {
	text, err := s.readText(s.tasksFile)
	if err != nil {
		return "", nil, err
	}
	doc, err := outline.Parse(text)
	if err != nil {
		return "", nil, err
	}
	return text, doc, nil
}

func (s *Service) commitTasks(ctx context.Context, oldText string, doc *models.Document, kind, ref string) (string, error) {
	newText := outline.Render(doc)
	return s.commit(ctx, s.tasksFile, oldText, newText, func(data []byte) error {
		return index.IndexTasksFile(s.db, s.tasksFile, data)
	}, "task", kind, ref)
}

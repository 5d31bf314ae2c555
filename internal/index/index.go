package index

// EntryIndex defines the interface for task and journal indexing.
// Consumers should depend on this interface rather than the concrete *DB
// type to facilitate testing with mocks.
type EntryIndex interface {
	ReplaceTasks(path, checksum string, rows []TaskRow) error
	ReplaceDay(path, checksum, day string, rows []JournalRow) error
	DeleteFile(path, day string) error
	AllChecksums() (map[string]string, error)
	ListTasks(status string) ([]TaskRow, error)
	Search(kind, query string, limit int) ([]SearchResult, error)
	Close() error
}

// Verify *DB satisfies EntryIndex at compile time.
var _ EntryIndex = (*DB)(nil)

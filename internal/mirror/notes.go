// internal/mirror/notes.go
package mirror

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/odedby/tasknest/internal/models"
)

// Writer receives the current open-task snapshot on every sync run.
type Writer interface {
	WriteSnapshot(tasks []*models.Task) error
}

// FileWriter mirrors tasks into a directory: a markdown note for human
// reading plus a JSON backup of the raw records.
type FileWriter struct {
	dir string
}

func NewFileWriter(dir string) *FileWriter {
	return &FileWriter{dir: dir}
}

func (w *FileWriter) WriteSnapshot(tasks []*models.Task) error {
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return fmt.Errorf("create mirror dir: %w", err)
	}

	note := renderNote(tasks)
	if err := os.WriteFile(filepath.Join(w.dir, "tasks.md"), []byte(note), 0o644); err != nil {
		return fmt.Errorf("write tasks note: %w", err)
	}

	backup, err := json.MarshalIndent(tasks, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal tasks backup: %w", err)
	}
	if err := os.WriteFile(filepath.Join(w.dir, "tasks.json"), backup, 0o644); err != nil {
		return fmt.Errorf("write tasks backup: %w", err)
	}

	return nil
}

func renderNote(tasks []*models.Task) string {
	var b strings.Builder
	b.WriteString("# Tasks\n\n")
	fmt.Fprintf(&b, "Synced %s (%d open)\n\n", time.Now().Format("2006-01-02 15:04"), len(tasks))

	for _, task := range tasks {
		fmt.Fprintf(&b, "- [ ] **%s** (%s", task.Title, task.Owner)
		if task.DueDate != nil {
			fmt.Fprintf(&b, ", due %s", *task.DueDate)
		}
		b.WriteString(")\n")
		if task.NextStep != "" {
			fmt.Fprintf(&b, "  - next: %s\n", task.NextStep)
		}
	}

	return b.String()
}

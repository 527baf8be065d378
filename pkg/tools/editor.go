package tools

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Editor executes text-editor tool commands against a working directory.
// Failures come back as errors; the dispatcher turns them into failed tool
// results so the run continues.
type Editor struct {
	workdir string
}

// NewEditor creates an editor rooted at workdir.
func NewEditor(workdir string) (*Editor, error) {
	abs, err := filepath.Abs(workdir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve working directory: %w", err)
	}
	return &Editor{workdir: abs}, nil
}

// resolve maps a tool path onto the working directory. The model sometimes
// sends absolute paths assuming a container layout (e.g. /repo/file.txt), so
// absolute paths are re-rooted rather than rejected.
func (e *Editor) resolve(path string) string {
	if filepath.IsAbs(path) {
		path = strings.TrimPrefix(path, string(filepath.Separator))
	}
	return filepath.Join(e.workdir, path)
}

// View returns file contents with line numbers, or a directory listing.
// viewRange optionally selects [start, end] lines, 1-indexed, -1 for end of
// file.
func (e *Editor) View(path string, viewRange []int) (string, error) {
	resolved := e.resolve(path)

	info, err := os.Stat(resolved)
	if err != nil {
		return "", fmt.Errorf("file not found: %s", path)
	}

	if info.IsDir() {
		entries, err := os.ReadDir(resolved)
		if err != nil {
			return "", fmt.Errorf("failed to list directory %s: %w", path, err)
		}
		names := make([]string, 0, len(entries))
		for _, entry := range entries {
			name := entry.Name()
			if entry.IsDir() {
				name += "/"
			}
			names = append(names, name)
		}
		sort.Strings(names)
		return strings.Join(names, "\n"), nil
	}

	data, err := os.ReadFile(resolved)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	lines := strings.Split(strings.TrimSuffix(string(data), "\n"), "\n")

	offset := 0
	if len(viewRange) == 2 {
		start, end := viewRange[0], viewRange[1]
		if end == -1 {
			end = len(lines)
		}
		if start < 1 {
			start = 1
		}
		if end > len(lines) {
			end = len(lines)
		}
		if start > end {
			return "", fmt.Errorf("invalid view_range [%d, %d]", viewRange[0], viewRange[1])
		}
		lines = lines[start-1 : end]
		offset = start - 1
	}

	var b strings.Builder
	for i, line := range lines {
		fmt.Fprintf(&b, "%d: %s\n", offset+i+1, line)
	}
	return strings.TrimSuffix(b.String(), "\n"), nil
}

// StrReplace replaces oldStr, which must occur exactly once, with newStr.
func (e *Editor) StrReplace(path, oldStr, newStr string) (string, error) {
	resolved := e.resolve(path)

	data, err := os.ReadFile(resolved)
	if err != nil {
		return "", fmt.Errorf("file not found: %s", path)
	}
	content := string(data)

	switch count := strings.Count(content, oldStr); {
	case count == 0:
		return "", fmt.Errorf("no match found for replacement text, check your text and try again")
	case count > 1:
		return "", fmt.Errorf("found %d matches for replacement text, provide more context to make a unique match", count)
	}

	replaced := strings.Replace(content, oldStr, newStr, 1)
	if err := os.WriteFile(resolved, []byte(replaced), 0644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	return "Successfully replaced text at exactly one location.", nil
}

// Create writes a new file; it refuses to overwrite an existing one.
func (e *Editor) Create(path, fileText string) (string, error) {
	resolved := e.resolve(path)

	if _, err := os.Stat(resolved); err == nil {
		return "", fmt.Errorf("file already exists: %s", path)
	}
	if err := os.MkdirAll(filepath.Dir(resolved), 0755); err != nil {
		return "", fmt.Errorf("failed to create parent directory for %s: %w", path, err)
	}
	if err := os.WriteFile(resolved, []byte(fileText), 0644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	return fmt.Sprintf("Successfully created file %s", path), nil
}

// Insert inserts text after the given 1-indexed line, 0 for the beginning
// of the file.
func (e *Editor) Insert(path string, insertLine int, insertText string) (string, error) {
	resolved := e.resolve(path)

	data, err := os.ReadFile(resolved)
	if err != nil {
		return "", fmt.Errorf("file not found: %s", path)
	}
	content := string(data)
	var lines []string
	if content != "" {
		lines = strings.SplitAfter(content, "\n")
		if lines[len(lines)-1] == "" {
			lines = lines[:len(lines)-1]
		}
	}

	if insertLine < 0 || insertLine > len(lines) {
		return "", fmt.Errorf(
			"insert_line %d is out of range, use 0 to insert at the beginning or 1-%d to insert after that line",
			insertLine, len(lines),
		)
	}

	if insertText != "" && !strings.HasSuffix(insertText, "\n") {
		insertText += "\n"
	}

	var b strings.Builder
	for _, line := range lines[:insertLine] {
		b.WriteString(line)
	}
	b.WriteString(insertText)
	for _, line := range lines[insertLine:] {
		b.WriteString(line)
	}

	if err := os.WriteFile(resolved, []byte(b.String()), 0644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	return fmt.Sprintf("Successfully inserted text after line %d.", insertLine), nil
}

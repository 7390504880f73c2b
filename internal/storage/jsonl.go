package storage

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"positionscope/internal/graph"
)

// JsonlDump appends normalized feed candidates to a JSONL file for offline
// inspection of what a sync cycle saw.
type JsonlDump struct {
	path string
	mu   sync.Mutex
}

func NewJsonlDump(path string) *JsonlDump {
	return &JsonlDump{path: path}
}

// PutPositionCandidates appends position candidates as JSON lines.
func (d *JsonlDump) PutPositionCandidates(candidates []graph.PositionCandidate) error {
	lines := make([]interface{}, 0, len(candidates))
	for _, candidate := range candidates {
		lines = append(lines, candidate)
	}
	return d.append(lines)
}

// PutSwapCandidates appends swap candidates as JSON lines.
func (d *JsonlDump) PutSwapCandidates(candidates []graph.SwapCandidate) error {
	lines := make([]interface{}, 0, len(candidates))
	for _, candidate := range candidates {
		lines = append(lines, candidate)
	}
	return d.append(lines)
}

func (d *JsonlDump) append(records []interface{}) error {
	if len(records) == 0 {
		return nil
	}

	dir := filepath.Dir(d.path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create dump dir: %w", err)
		}
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	file, err := os.OpenFile(d.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open dump file: %w", err)
	}
	defer file.Close()

	writer := bufio.NewWriter(file)
	for _, record := range records {
		line, err := json.Marshal(record)
		if err != nil {
			return fmt.Errorf("marshal candidate: %w", err)
		}
		if _, err := writer.Write(line); err != nil {
			return fmt.Errorf("write candidate: %w", err)
		}
		if err := writer.WriteByte('\n'); err != nil {
			return fmt.Errorf("write newline: %w", err)
		}
	}

	if err := writer.Flush(); err != nil {
		return fmt.Errorf("flush dump: %w", err)
	}

	return nil
}

// Package audit keeps an append-only structured log of every applied action.
package audit

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
)

// Entry records one applied action.
type Entry struct {
	Time    time.Time `json:"time"`
	Command string    `json:"command"` // "apply" | "status"
	Method  string    `json:"method"`  // action kind
	Target  string    `json:"target"`
	Outcome string    `json:"outcome"` // "success" | "failed"
	Error   string    `json:"error,omitempty"`
}

// LogPath returns the JSONL audit log location under the XDG state dir.
func LogPath() string {
	return filepath.Join(xdg.StateHome, "roost", "audit.jsonl")
}

// Log appends e to the audit log. Errors are silently ignored so that audit
// writes never fail a run.
func Log(e Entry) {
	logTo(LogPath(), e)
}

func logTo(path string, e Entry) {
	if e.Time.IsZero() {
		e.Time = time.Now().UTC()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return
	}
	defer f.Close()
	line, _ := json.Marshal(e)
	f.Write(append(line, '\n'))
}

// Read loads log entries and returns the last limit of them (all if
// limit <= 0). Malformed lines are skipped.
func Read(limit int) ([]Entry, error) {
	return readFrom(LogPath(), limit)
}

func readFrom(path string, limit int) ([]Entry, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var entries []Entry
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var e Entry
		if err := json.Unmarshal(line, &e); err != nil {
			continue
		}
		entries = append(entries, e)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if limit > 0 && len(entries) > limit {
		entries = entries[len(entries)-limit:]
	}
	return entries, nil
}

// Package auditlog appends one JSON-serialized lookup result per line to
// a plain text file, prefixed with the moment it was recorded.
package auditlog

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

type Log struct {
	path string
	now  func() time.Time
}

func New(path string) Log {
	return Log{path: path, now: time.Now}
}

// Record serializes v compactly and appends it as a timestamped line.
func (l Log) Record(v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return err
	}

	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = fmt.Fprintf(f, "[%s] %s\n", l.now().UTC().Format(time.RFC3339), payload)
	return err
}

package auditlog

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestRecord(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs_req.txt")
	log := New(path)
	log.now = func() time.Time {
		return time.Date(2024, 6, 5, 14, 30, 0, 0, time.UTC)
	}

	err := log.Record(map[string]any{"itens": []map[string]any{{"id": 99}}})
	require.NoError(t, err)
	err = log.Record(map[string]any{"itens": []map[string]any{}})
	require.NoError(t, err)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t,
		"[2024-06-05T14:30:00Z] {\"itens\":[{\"id\":99}]}\n"+
			"[2024-06-05T14:30:00Z] {\"itens\":[]}\n",
		string(raw),
	)
}

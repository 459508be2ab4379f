package audit

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLineFormats(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf)

	l.Connected("walter")
	l.Reconnected("walter")
	l.Action("walter", TagCourses)
	l.SlotAction("walter", TagNoEnroll, 3)
	l.MaskAction("walter", TagEnroll, 3, 0b1000)
	l.MaskAction("mona", TagWaitAdd, 0, 1)

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	assert.Equal(t, []string{
		"CONNECTED walter",
		"RECONNECTED walter",
		"walter CLIST",
		"walter NOENROLL 3",
		"walter ENROLL 3 8",
		"mona WAITADD 0 1",
	}, lines)
}

func TestOpenTruncatesExistingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.log")
	require.NoError(t, os.WriteFile(path, []byte("stale\n"), 0o644))

	l, err := Open(path)
	require.NoError(t, err)
	l.Action("walter", TagLogout)
	require.NoError(t, l.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "walter LOGOUT\n", string(data))
}

func TestConcurrentWritesStayLineAtomic(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				l.MaskAction("walter", TagEnroll, 1, 2)
			}
		}()
	}
	wg.Wait()

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 400)
	for _, line := range lines {
		assert.Equal(t, "walter ENROLL 1 2", line)
	}
}

package registry

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeCourseFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "courses.txt")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadCourseFile(t *testing.T) {
	path := writeCourseFile(t, "Operating Systems;3\nCompilers;1\n\nNetworks;10\n")

	defs, err := LoadCourseFile(path)
	require.NoError(t, err)
	require.Len(t, defs, 3)
	assert.Equal(t, "Operating Systems", defs[0].Title)
	assert.Equal(t, 3, defs[0].Capacity)
	assert.Equal(t, "Networks", defs[2].Title)
}

func TestLoadCourseFileMissingFile(t *testing.T) {
	_, err := LoadCourseFile(filepath.Join(t.TempDir(), "absent.txt"))
	assert.Error(t, err)
}

func TestLoadCourseFileBadCapacity(t *testing.T) {
	path := writeCourseFile(t, "Compilers;lots\n")
	_, err := LoadCourseFile(path)
	assert.ErrorContains(t, err, "bad capacity")
}

func TestLoadCourseFileRejectsZeroCapacity(t *testing.T) {
	path := writeCourseFile(t, "Compilers;0\n")
	_, err := LoadCourseFile(path)
	assert.Error(t, err)
}

func TestLoadCourseFileMissingDelimiter(t *testing.T) {
	path := writeCourseFile(t, "Compilers 3\n")
	_, err := LoadCourseFile(path)
	assert.ErrorContains(t, err, "delimiter")
}

func TestLoadCourseFileRejectsOverflow(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 33; i++ {
		b.WriteString("Course;1\n")
	}
	path := writeCourseFile(t, b.String())
	_, err := LoadCourseFile(path)
	assert.ErrorContains(t, err, "more than")
}

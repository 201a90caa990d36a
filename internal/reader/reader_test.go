package reader_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tylerk07/hexgrammar/internal/model"
	"github.com/tylerk07/hexgrammar/internal/reader"
)

func writeTempFile(t *testing.T, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sample.bin")
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func TestReaderOpenMissingFile(t *testing.T) {
	t.Parallel()
	_, err := reader.Open(filepath.Join(t.TempDir(), "does-not-exist.bin"), 0, 0)
	require.NotNil(t, err)
	assert.Equal(t, model.ErrFileNotFound, err.Kind)
}

func TestReaderReadWithinBounds(t *testing.T) {
	t.Parallel()
	data := []byte{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}
	path := writeTempFile(t, data)

	rdr, err := reader.Open(path, 0, 0)
	require.Nil(t, err)
	defer rdr.Close()

	assert.Equal(t, int64(len(data)), rdr.Size())

	got, rerr := rdr.Read(2, 4)
	require.Nil(t, rerr)
	assert.Equal(t, data[2:6], got)
}

func TestReaderReadTruncatesAtEOF(t *testing.T) {
	t.Parallel()
	data := []byte{1, 2, 3}
	path := writeTempFile(t, data)

	rdr, err := reader.Open(path, 0, 0)
	require.Nil(t, err)
	defer rdr.Close()

	got, rerr := rdr.Read(1, 100)
	require.Nil(t, rerr)
	assert.Equal(t, []byte{2, 3}, got)
}

func TestReaderReadPastEOFIsEmpty(t *testing.T) {
	t.Parallel()
	path := writeTempFile(t, []byte{1, 2, 3})
	rdr, err := reader.Open(path, 0, 0)
	require.Nil(t, err)
	defer rdr.Close()

	got, rerr := rdr.Read(10, 5)
	require.Nil(t, rerr)
	assert.Empty(t, got)
}

func TestReaderRejectsNegativeArguments(t *testing.T) {
	t.Parallel()
	path := writeTempFile(t, []byte{1, 2, 3})
	rdr, err := reader.Open(path, 0, 0)
	require.Nil(t, err)
	defer rdr.Close()

	_, rerr := rdr.Read(-1, 2)
	require.NotNil(t, rerr)
	assert.Equal(t, model.ErrInvalidOffset, rerr.Kind)
}

func TestReaderReturnsOwnedCopy(t *testing.T) {
	t.Parallel()
	path := writeTempFile(t, []byte{9, 9, 9, 9})
	rdr, err := reader.Open(path, 0, 0)
	require.Nil(t, err)
	defer rdr.Close()

	a, _ := rdr.Read(0, 4)
	b, _ := rdr.Read(0, 4)
	a[0] = 0xFF
	assert.Equal(t, byte(9), b[0], "mutating one Read result must not affect another")
}

func TestReaderPageCacheEviction(t *testing.T) {
	t.Parallel()
	// small pages and a tiny cache to force eviction and reload across reads.
	data := make([]byte, 40)
	for i := range data {
		data[i] = byte(i)
	}
	path := writeTempFile(t, data)

	rdr, err := reader.Open(path, 8, 2)
	require.Nil(t, err)
	defer rdr.Close()

	for i := 0; i < len(data); i++ {
		b, ok := rdr.ByteAt(int64(i))
		require.True(t, ok)
		assert.Equal(t, data[i], b)
	}
	// re-read earlier pages after they were evicted by later ones.
	b, ok := rdr.ByteAt(0)
	require.True(t, ok)
	assert.Equal(t, data[0], b)
}

func TestReaderByteAtOutOfRange(t *testing.T) {
	t.Parallel()
	path := writeTempFile(t, []byte{1, 2})
	rdr, err := reader.Open(path, 0, 0)
	require.Nil(t, err)
	defer rdr.Close()

	_, ok := rdr.ByteAt(5)
	assert.False(t, ok)
	_, ok = rdr.ByteAt(-1)
	assert.False(t, ok)
}

package etag

import (
	"bytes"
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const mib = 1024 * 1024

func writeFile(t *testing.T, name string, content []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, content, 0o644))
	return path
}

func TestCompute_EmptyFile(t *testing.T) {
	path := writeFile(t, "empty", nil)

	got, err := Compute(context.Background(), path, 5*mib)
	require.NoError(t, err)
	assert.Equal(t, "d41d8cd98f00b204e9800998ecf8427e", got)

	// independent of the threshold
	got, err = Compute(context.Background(), path, 1)
	require.NoError(t, err)
	assert.Equal(t, "d41d8cd98f00b204e9800998ecf8427e", got)
}

func TestCompute_SinglePart(t *testing.T) {
	content := []byte("hello world")
	path := writeFile(t, "hello", content)

	got, err := Compute(context.Background(), path, 5*mib)
	require.NoError(t, err)

	sum := md5.Sum(content)
	assert.Equal(t, hex.EncodeToString(sum[:]), got)
}

func TestCompute_MultiPart(t *testing.T) {
	// 2.5 MiB of a single repeated byte with a 1 MiB part size gives 3 parts.
	content := bytes.Repeat([]byte{'a'}, 2*mib+mib/2)
	path := writeFile(t, "big", content)

	got, err := Compute(context.Background(), path, mib)
	require.NoError(t, err)

	p1 := md5.Sum(content[:mib])
	p2 := md5.Sum(content[mib : 2*mib])
	p3 := md5.Sum(content[2*mib:])

	var combined []byte
	combined = append(combined, p1[:]...)
	combined = append(combined, p2[:]...)
	combined = append(combined, p3[:]...)
	final := md5.Sum(combined)

	assert.Equal(t, fmt.Sprintf("%s-3", hex.EncodeToString(final[:])), got)
}

func TestCompute_ThresholdBoundary(t *testing.T) {
	threshold := int64(1024)

	t.Run("exactly threshold uses whole-file path", func(t *testing.T) {
		content := bytes.Repeat([]byte{'b'}, int(threshold))
		path := writeFile(t, "exact", content)

		got, err := Compute(context.Background(), path, threshold)
		require.NoError(t, err)

		sum := md5.Sum(content)
		assert.Equal(t, hex.EncodeToString(sum[:]), got)
		assert.NotContains(t, got, "-")
	})

	t.Run("one byte over uses two parts", func(t *testing.T) {
		content := bytes.Repeat([]byte{'b'}, int(threshold)+1)
		path := writeFile(t, "over", content)

		got, err := Compute(context.Background(), path, threshold)
		require.NoError(t, err)

		p1 := md5.Sum(content[:threshold])
		p2 := md5.Sum(content[threshold:]) // single byte, never empty
		final := md5.Sum(append(p1[:], p2[:]...))
		assert.Equal(t, fmt.Sprintf("%s-2", hex.EncodeToString(final[:])), got)
	})

	t.Run("exact multiple has no zero-length part", func(t *testing.T) {
		content := bytes.Repeat([]byte{'c'}, int(threshold)*3)
		path := writeFile(t, "multiple", content)

		got, err := Compute(context.Background(), path, threshold)
		require.NoError(t, err)
		assert.Contains(t, got, "-3")
	})
}

func TestCompute_InvalidPartSize(t *testing.T) {
	path := writeFile(t, "one", []byte{'x'})

	_, err := Compute(context.Background(), path, 0)
	require.ErrorIs(t, err, ErrInvalidPartSize)

	_, err = Compute(context.Background(), path, -1)
	require.ErrorIs(t, err, ErrInvalidPartSize)
}

func TestCompute_MissingFile(t *testing.T) {
	_, err := Compute(context.Background(), filepath.Join(t.TempDir(), "nope"), 5*mib)
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestCompute_CancelledContext(t *testing.T) {
	content := bytes.Repeat([]byte{'z'}, 4096)
	path := writeFile(t, "cancelled", content)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Compute(ctx, path, 1024)
	require.ErrorIs(t, err, context.Canceled)
}

func TestCompute_DeterministicAcrossWorkerCounts(t *testing.T) {
	content := bytes.Repeat([]byte("0123456789abcdef"), 1024) // 16 KiB
	path := writeFile(t, "det", content)

	want, err := ComputeWithWorkers(context.Background(), path, 1024, 1)
	require.NoError(t, err)

	for _, workers := range []int{2, 4, 8} {
		got, err := ComputeWithWorkers(context.Background(), path, 1024, workers)
		require.NoError(t, err)
		assert.Equal(t, want, got, "workers=%d", workers)
	}
}

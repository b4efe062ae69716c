// Package etag computes S3-compatible ETags for local files. Files at or
// below the part size get a plain MD5; larger files get the multipart form
// "<md5 of concatenated part digests>-<parts>".
package etag

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"

	"golang.org/x/sync/errgroup"
)

var ErrInvalidPartSize = errors.New("part size must be greater than zero")

// Compute returns the ETag of the file at path using partSize as the
// multipart threshold. Part digests are computed on a bounded worker pool;
// the result does not depend on scheduling order.
func Compute(ctx context.Context, path string, partSize int64) (string, error) {
	return ComputeWithWorkers(ctx, path, partSize, runtime.GOMAXPROCS(0))
}

// ComputeWithWorkers is Compute with an explicit worker pool size.
func ComputeWithWorkers(ctx context.Context, path string, partSize int64, workers int) (string, error) {
	if partSize <= 0 {
		return "", fmt.Errorf("etag %s: %w", path, ErrInvalidPartSize)
	}
	if workers < 1 {
		workers = 1
	}

	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("etag: open %s: %w", path, err)
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		return "", fmt.Errorf("etag: stat %s: %w", path, err)
	}
	size := stat.Size()

	if size == 0 {
		sum := md5.Sum(nil)
		return hex.EncodeToString(sum[:]), nil
	}

	if size <= partSize {
		h := md5.New()
		if _, err := io.Copy(h, f); err != nil {
			return "", fmt.Errorf("etag: read %s [0:%d): %w", path, size, err)
		}
		return hex.EncodeToString(h.Sum(nil)), nil
	}

	numParts := int((size + partSize - 1) / partSize)
	digests := make([][md5.Size]byte, numParts)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for part := range numParts {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			offset := int64(part) * partSize
			length := min(partSize, size-offset)

			// Each worker reads its own byte range through a SectionReader,
			// so no file cursor is shared across goroutines.
			h := md5.New()
			if _, err := io.Copy(h, io.NewSectionReader(f, offset, length)); err != nil {
				return fmt.Errorf("etag: read %s [%d:%d): %w", path, offset, offset+length, err)
			}
			copy(digests[part][:], h.Sum(nil))
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return "", err
	}

	combined := md5.New()
	for _, d := range digests {
		combined.Write(d[:])
	}
	return fmt.Sprintf("%s-%d", hex.EncodeToString(combined.Sum(nil)), numParts), nil
}

// Package blob talks to the S3-compatible object store. The Client interface
// is the capability surface the syncer depends on; the S3 implementation
// lives in client_s3.go.
package blob

import (
	"context"
	"errors"
	"strings"
	"time"
)

var (
	// ErrLocalRead marks upload failures caused by the local file
	// (missing, unreadable) rather than the remote store.
	ErrLocalRead = errors.New("local read failed")

	// ErrRemotePut marks upload failures reported by the remote store.
	ErrRemotePut = errors.New("remote put failed")
)

// BucketAccess is the outcome of a bucket probe. Forbidden is a successful
// probe: the bucket exists but the credentials lack rights. Unknown is the
// zero value and accompanies probe errors.
type BucketAccess int

const (
	BucketAccessUnknown BucketAccess = iota
	BucketAccessible
	BucketForbidden
)

func (a BucketAccess) String() string {
	switch a {
	case BucketAccessible:
		return "accessible"
	case BucketForbidden:
		return "forbidden"
	default:
		return "unknown"
	}
}

// ObjectStat describes an existing remote object.
type ObjectStat struct {
	Key          string
	Size         int64
	ETag         string
	LastModified time.Time
}

// UploadResult describes a completed upload.
type UploadResult struct {
	Key  string
	Size int64
	ETag string
}

// Client is the remote capability surface. HeadObject returns (nil, nil)
// when the object does not exist; absence is not an error.
type Client interface {
	HeadBucket(ctx context.Context) (BucketAccess, error)
	HeadObject(ctx context.Context, key string) (*ObjectStat, error)
	Upload(ctx context.Context, key string, localPath string) (*UploadResult, error)
}

// IsObjectSynced reports whether the remote object at key already carries the
// given local ETag. A missing object or an object without an ETag is not
// synced. Any other probe failure propagates.
func IsObjectSynced(ctx context.Context, c Client, localETag string, key string) (bool, error) {
	stat, err := c.HeadObject(ctx, key)
	if err != nil {
		return false, err
	}
	if stat == nil || stat.ETag == "" {
		return false, nil
	}
	return strings.Trim(stat.ETag, `"`) == localETag, nil
}

package blob

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestClient points a real S3 client at an httptest server, path-style,
// the same way a MinIO-compatible endpoint would be addressed.
func newTestClient(t *testing.T, handler http.Handler) *S3Client {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := NewS3Client(context.Background(), &S3Config{
		Bucket:         "test-bucket",
		Region:         "us-east-1",
		AccessKey:      "TEST_AK",
		SecretKey:      "TEST_SK",
		Endpoint:       srv.URL,
		ForcePathStyle: true,
	})
	require.NoError(t, err)
	return client
}

func statusHandler(code int, header http.Header) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		for k, vs := range header {
			for _, v := range vs {
				w.Header().Add(k, v)
			}
		}
		w.WriteHeader(code)
	})
}

func TestHeadBucket_Accessible(t *testing.T) {
	client := newTestClient(t, statusHandler(http.StatusOK, nil))

	access, err := client.HeadBucket(context.Background())
	require.NoError(t, err)
	assert.Equal(t, BucketAccessible, access)
}

func TestHeadBucket_Forbidden(t *testing.T) {
	for _, code := range []int{http.StatusUnauthorized, http.StatusForbidden} {
		client := newTestClient(t, statusHandler(code, nil))

		access, err := client.HeadBucket(context.Background())
		require.NoError(t, err, "status %d must not be an error", code)
		assert.Equal(t, BucketForbidden, access)
	}
}

func TestHeadBucket_NotFoundIsError(t *testing.T) {
	client := newTestClient(t, statusHandler(http.StatusNotFound, nil))

	access, err := client.HeadBucket(context.Background())
	require.Error(t, err)
	assert.Equal(t, BucketAccessUnknown, access, "a failed probe must not read as accessible")
}

func TestHeadObject_Found(t *testing.T) {
	header := http.Header{}
	header.Set("ETag", `"9a0364b9e99bb480dd25e1f0284c8555"`)
	header.Set("Content-Length", "11")
	client := newTestClient(t, statusHandler(http.StatusOK, header))

	stat, err := client.HeadObject(context.Background(), "backups/file.txt")
	require.NoError(t, err)
	require.NotNil(t, stat)
	assert.Equal(t, "9a0364b9e99bb480dd25e1f0284c8555", stat.ETag, "quotes must be stripped")
	assert.Equal(t, int64(11), stat.Size)
	assert.Equal(t, "backups/file.txt", stat.Key)
}

func TestHeadObject_NoETag(t *testing.T) {
	client := newTestClient(t, statusHandler(http.StatusOK, nil))

	stat, err := client.HeadObject(context.Background(), "backups/file.txt")
	require.NoError(t, err)
	require.NotNil(t, stat)
	assert.Empty(t, stat.ETag)
}

func TestHeadObject_AbsentIsNotAnError(t *testing.T) {
	client := newTestClient(t, statusHandler(http.StatusNotFound, nil))

	stat, err := client.HeadObject(context.Background(), "backups/missing.txt")
	require.NoError(t, err)
	assert.Nil(t, stat)
}

func TestHeadObject_ServerErrorPropagates(t *testing.T) {
	client := newTestClient(t, statusHandler(http.StatusInternalServerError, nil))

	_, err := client.HeadObject(context.Background(), "backups/file.txt")
	require.Error(t, err)
}

func TestUpload_StreamsFile(t *testing.T) {
	content := []byte("this is a new backup")
	localPath := filepath.Join(t.TempDir(), "backup_1.txt")
	require.NoError(t, os.WriteFile(localPath, content, 0o644))

	var gotBody []byte
	var gotContentType string
	var gotPath string

	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut {
			w.WriteHeader(http.StatusOK)
			return
		}
		gotPath = r.URL.Path
		gotContentType = r.Header.Get("Content-Type")
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		gotBody = body
		w.Header().Set("ETag", `"5f7e2834ca38ae02e4b9b7dcc8134700"`)
		w.WriteHeader(http.StatusOK)
	}))

	res, err := client.Upload(context.Background(), "backups/backup_1.txt", localPath)
	require.NoError(t, err)

	assert.Equal(t, "/test-bucket/backups/backup_1.txt", gotPath)
	assert.Equal(t, "application/octet-stream", gotContentType)
	assert.Equal(t, content, gotBody)
	assert.Equal(t, int64(len(content)), res.Size)
	assert.Equal(t, "5f7e2834ca38ae02e4b9b7dcc8134700", res.ETag)
}

func TestUpload_MissingLocalFile(t *testing.T) {
	client := newTestClient(t, statusHandler(http.StatusOK, nil))

	_, err := client.Upload(context.Background(), "backups/nope.txt", filepath.Join(t.TempDir(), "nope.txt"))
	require.ErrorIs(t, err, ErrLocalRead)
	assert.NotErrorIs(t, err, ErrRemotePut)
}

func TestUpload_RemoteFailure(t *testing.T) {
	content := []byte("payload")
	localPath := filepath.Join(t.TempDir(), "backup_2.txt")
	require.NoError(t, os.WriteFile(localPath, content, 0o644))

	client := newTestClient(t, statusHandler(http.StatusForbidden, nil))

	_, err := client.Upload(context.Background(), "backups/backup_2.txt", localPath)
	require.ErrorIs(t, err, ErrRemotePut)
	assert.NotErrorIs(t, err, ErrLocalRead)
}

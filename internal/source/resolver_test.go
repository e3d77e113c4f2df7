package source

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hstay/docextract/internal/common"
)

type fakeURLFetcher struct {
	path  string
	err   error
	calls []string
}

func (f *fakeURLFetcher) Fetch(_ context.Context, url string) (string, error) {
	f.calls = append(f.calls, url)
	if f.err != nil {
		return "", f.err
	}
	return f.path, nil
}

type fakeObjectFetcher struct {
	path  string
	err   error
	calls [][2]string
}

func (f *fakeObjectFetcher) FetchObject(_ context.Context, bucket, objectKey string) (string, error) {
	f.calls = append(f.calls, [2]string{bucket, objectKey})
	if f.err != nil {
		return "", f.err
	}
	return f.path, nil
}

func tempDoc(t *testing.T) string {
	t.Helper()
	tmp, err := os.CreateTemp(t.TempDir(), "doc-*.png")
	require.NoError(t, err)
	require.NoError(t, tmp.Close())
	return tmp.Name()
}

func TestRemoteSourcePrecedence(t *testing.T) {
	src, err := Remote("https://example.com/a.png", "bkt", "uploads/a.png")
	require.NoError(t, err)
	assert.Equal(t, KindObject, src.Kind)
	assert.Equal(t, "uploads/a.png", src.ObjectKey)

	src, err = Remote("https://example.com/a.png", "", "")
	require.NoError(t, err)
	assert.Equal(t, KindURL, src.Kind)

	_, err = Remote("", "bkt", "")
	require.Error(t, err)
	app, ok := common.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, common.CodeInvalidSource, app.Code)
}

func TestResolveObjectUsesStoreNotURL(t *testing.T) {
	urls := &fakeURLFetcher{path: tempDoc(t)}
	store := &fakeObjectFetcher{path: tempDoc(t)}
	r := NewResolver(testConfig(t.TempDir()), urls, store, nil)

	src, err := Remote("https://example.com/sample.png", "kyc-bucket", "uploads/sample.png")
	require.NoError(t, err)

	doc, err := r.Resolve(context.Background(), &src)
	require.NoError(t, err)
	assert.Equal(t, [][2]string{{"kyc-bucket", "uploads/sample.png"}}, store.calls)
	assert.Empty(t, urls.calls)
	assert.Equal(t, ".png", doc.Ext)
}

func TestResolveObjectDefaultBucket(t *testing.T) {
	cfg := testConfig(t.TempDir())
	cfg.GCS.DefaultBucket = "default-bucket"
	store := &fakeObjectFetcher{path: tempDoc(t)}
	r := NewResolver(cfg, nil, store, nil)

	src, err := Remote("", "", "uploads/sample.png")
	require.NoError(t, err)

	_, err = r.Resolve(context.Background(), &src)
	require.NoError(t, err)
	assert.Equal(t, "default-bucket", src.Bucket)
	assert.Equal(t, [][2]string{{"default-bucket", "uploads/sample.png"}}, store.calls)
}

func TestResolveObjectNoBucketAnywhere(t *testing.T) {
	store := &fakeObjectFetcher{path: tempDoc(t)}
	r := NewResolver(testConfig(t.TempDir()), nil, store, nil)

	src, err := Remote("", "", "uploads/sample.png")
	require.NoError(t, err)

	_, err = r.Resolve(context.Background(), &src)
	require.Error(t, err)
	app, ok := common.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, common.KindInvalidInput, app.Kind)
	assert.Empty(t, store.calls, "store must not be called without a bucket")
}

func TestResolveObjectStoreNotConfigured(t *testing.T) {
	cfg := testConfig(t.TempDir())
	cfg.GCS.DefaultBucket = "default-bucket"
	r := NewResolver(cfg, nil, nil, nil)

	src, err := Remote("", "", "uploads/sample.png")
	require.NoError(t, err)

	_, err = r.Resolve(context.Background(), &src)
	require.Error(t, err)
	app, ok := common.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, common.KindUpstream, app.Kind)
	assert.Equal(t, common.CodeGCSError, app.Code)
}

func TestResolvedDocumentCleanupRemovesTempFile(t *testing.T) {
	path := tempDoc(t)
	urls := &fakeURLFetcher{path: path}
	r := NewResolver(testConfig(t.TempDir()), urls, nil, nil)

	src, err := Remote("https://example.com/sample.png", "", "")
	require.NoError(t, err)

	doc, err := r.Resolve(context.Background(), &src)
	require.NoError(t, err)
	doc.Cleanup()
	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr))
}

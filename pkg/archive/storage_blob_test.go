package archive

import (
	"context"
	"os"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocloud.dev/blob"
	_ "gocloud.dev/blob/memblob"
)

func newTestBlobStorage(t *testing.T, prefix string) *BlobStorage {
	t.Helper()
	ctx := context.Background()
	bucket, err := blob.OpenBucket(ctx, "mem://")
	require.NoError(t, err)
	t.Cleanup(func() { bucket.Close() })
	return NewBlobStorageFromBucket(bucket, prefix)
}

func TestBlobStorage_Write(t *testing.T) {
	ctx := context.Background()
	storage := newTestBlobStorage(t, "")

	err := storage.Write(ctx, testSnapshotKey, testSnapshotData)
	require.NoError(t, err)

	data, err := storage.Read(ctx, testSnapshotKey)
	require.NoError(t, err)
	assert.Equal(t, testSnapshotData, data)
}

func TestBlobStorage_Write_Overwrite(t *testing.T) {
	ctx := context.Background()
	storage := newTestBlobStorage(t, "")

	err := storage.Write(ctx, CurrentKey, testSnapshotData)
	require.NoError(t, err)

	updated := []byte(`{"9": {"number": 9, "insight": ["The nine closes circles."]}}`)
	err = storage.Write(ctx, CurrentKey, updated)
	require.NoError(t, err)

	data, err := storage.Read(ctx, CurrentKey)
	require.NoError(t, err)
	assert.Equal(t, updated, data)
}

func TestBlobStorage_Write_WithPrefix(t *testing.T) {
	ctx := context.Background()
	storage := newTestBlobStorage(t, "snapshots/")

	err := storage.Write(ctx, testSnapshotKey, testSnapshotData)
	require.NoError(t, err)

	data, err := storage.Read(ctx, testSnapshotKey)
	require.NoError(t, err)
	assert.Equal(t, testSnapshotData, data)
}

func TestBlobStorage_Read_NotFound(t *testing.T) {
	ctx := context.Background()
	storage := newTestBlobStorage(t, "")

	_, err := storage.Read(ctx, testSnapshotKey)
	require.Error(t, err)
	assert.True(t, os.IsNotExist(err))
}

func TestBlobStorage_List(t *testing.T) {
	ctx := context.Background()
	storage := newTestBlobStorage(t, "")

	for _, day := range []string{"2025-04-12", "2025-04-13", "2025-04-14"} {
		key := HistoryArchiveJSONPrefix + day + HistoryArchiveJSONSuffix
		require.NoError(t, storage.Write(ctx, key, testSnapshotData))
	}
	require.NoError(t, storage.Write(ctx, "unrelated.json", testSnapshotData))

	keys, err := storage.List(ctx, HistoryArchiveJSONPrefix)
	require.NoError(t, err)
	require.Len(t, keys, 3)
	// newest snapshot first
	assert.Equal(t, HistoryArchiveJSONPrefix+"2025-04-14"+HistoryArchiveJSONSuffix, keys[0])
	assert.Equal(t, HistoryArchiveJSONPrefix+"2025-04-13"+HistoryArchiveJSONSuffix, keys[1])
	assert.Equal(t, HistoryArchiveJSONPrefix+"2025-04-12"+HistoryArchiveJSONSuffix, keys[2])
}

func TestBlobStorage_ListWithPrefix(t *testing.T) {
	ctx := context.Background()
	storage := newTestBlobStorage(t, "snapshots/")

	for _, day := range []string{"2025-04-12", "2025-04-13"} {
		key := HistoryArchiveJSONPrefix + day + HistoryArchiveJSONSuffix
		require.NoError(t, storage.Write(ctx, key, testSnapshotData))
	}
	require.NoError(t, storage.Write(ctx, "unrelated.json", testSnapshotData))

	keys, err := storage.List(ctx, HistoryArchiveJSONPrefix)
	require.NoError(t, err)
	require.Len(t, keys, 2)
	// keys should not include the bucket prefix
	assert.Equal(t, HistoryArchiveJSONPrefix+"2025-04-13"+HistoryArchiveJSONSuffix, keys[0])
	assert.Equal(t, HistoryArchiveJSONPrefix+"2025-04-12"+HistoryArchiveJSONSuffix, keys[1])
}

func TestBlobStorage_List_Empty(t *testing.T) {
	ctx := context.Background()
	storage := newTestBlobStorage(t, "")

	keys, err := storage.List(ctx, HistoryArchiveJSONPrefix)
	require.NoError(t, err)
	assert.Empty(t, keys)
}

func TestBlobStorage_Delete(t *testing.T) {
	ctx := context.Background()
	storage := newTestBlobStorage(t, "")

	err := storage.Write(ctx, testSnapshotKey, testSnapshotData)
	require.NoError(t, err)

	err = storage.Delete(ctx, testSnapshotKey)
	require.NoError(t, err)

	_, err = storage.Read(ctx, testSnapshotKey)
	require.Error(t, err)
	assert.True(t, os.IsNotExist(err))
}

func TestBlobStorage_Delete_NotFound(t *testing.T) {
	ctx := context.Background()
	storage := newTestBlobStorage(t, "")

	// Delete should be idempotent - no error for non-existent key
	err := storage.Delete(ctx, testSnapshotKey)
	require.NoError(t, err)
}

func TestBlobStorage_Delete_WithPrefix(t *testing.T) {
	ctx := context.Background()
	storage := newTestBlobStorage(t, "snapshots/")

	err := storage.Write(ctx, testSnapshotKey, testSnapshotData)
	require.NoError(t, err)

	err = storage.Delete(ctx, testSnapshotKey)
	require.NoError(t, err)

	_, err = storage.Read(ctx, testSnapshotKey)
	require.Error(t, err)
	assert.True(t, os.IsNotExist(err))
}

func TestBlobStorage_ConcurrentOperations(t *testing.T) {
	ctx := context.Background()
	storage := newTestBlobStorage(t, "")

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = storage.Write(ctx, CurrentKey, testSnapshotData)
			_, _ = storage.Read(ctx, CurrentKey)
			_, _ = storage.List(ctx, HistoryArchiveJSONPrefix)
		}()
	}
	wg.Wait()
}

func TestBlobStorage_LargeSnapshot(t *testing.T) {
	ctx := context.Background()
	storage := newTestBlobStorage(t, "")

	// a corpus with nine fully populated numbers runs into megabytes
	largeData := make([]byte, 1024*1024)
	for i := range largeData {
		largeData[i] = byte(i % 256)
	}

	err := storage.Write(ctx, CurrentKey, largeData)
	require.NoError(t, err)

	data, err := storage.Read(ctx, CurrentKey)
	require.NoError(t, err)
	assert.Equal(t, largeData, data)
}

package archive

import (
	"context"
	"os"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	testSnapshotKey  = HistoryArchiveJSONPrefix + "2025-04-12T10-30-00" + HistoryArchiveJSONSuffix
	testSnapshotData = []byte(`{"3": {"number": 3, "insight": ["Begin before you feel ready."]}}`)
)

func TestFilesystemStorage_Write(t *testing.T) {
	ctx := context.Background()
	storage, err := NewFilesystemStorage(t.TempDir())
	require.NoError(t, err)

	err = storage.Write(ctx, testSnapshotKey, testSnapshotData)
	require.NoError(t, err)

	data, err := storage.Read(ctx, testSnapshotKey)
	require.NoError(t, err)
	assert.Equal(t, testSnapshotData, data)
}

func TestFilesystemStorage_Write_Overwrite(t *testing.T) {
	ctx := context.Background()
	storage, err := NewFilesystemStorage(t.TempDir())
	require.NoError(t, err)

	err = storage.Write(ctx, CurrentKey, testSnapshotData)
	require.NoError(t, err)

	updated := []byte(`{"7": {"number": 7, "insight": ["The seven works in silence."]}}`)
	err = storage.Write(ctx, CurrentKey, updated)
	require.NoError(t, err)

	data, err := storage.Read(ctx, CurrentKey)
	require.NoError(t, err)
	assert.Equal(t, updated, data)
}

func TestFilesystemStorage_Read_NotFound(t *testing.T) {
	ctx := context.Background()
	storage, err := NewFilesystemStorage(t.TempDir())
	require.NoError(t, err)

	_, err = storage.Read(ctx, testSnapshotKey)
	require.Error(t, err)
	assert.True(t, os.IsNotExist(err))
}

func TestFilesystemStorage_List(t *testing.T) {
	ctx := context.Background()
	storage, err := NewFilesystemStorage(t.TempDir())
	require.NoError(t, err)

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

func TestFilesystemStorage_List_Empty(t *testing.T) {
	ctx := context.Background()
	storage, err := NewFilesystemStorage(t.TempDir())
	require.NoError(t, err)

	keys, err := storage.List(ctx, HistoryArchiveJSONPrefix)
	require.NoError(t, err)
	assert.Empty(t, keys)
}

func TestFilesystemStorage_Delete(t *testing.T) {
	ctx := context.Background()
	storage, err := NewFilesystemStorage(t.TempDir())
	require.NoError(t, err)

	err = storage.Write(ctx, testSnapshotKey, testSnapshotData)
	require.NoError(t, err)

	err = storage.Delete(ctx, testSnapshotKey)
	require.NoError(t, err)

	_, err = storage.Read(ctx, testSnapshotKey)
	require.Error(t, err)
	assert.True(t, os.IsNotExist(err))
}

func TestFilesystemStorage_Delete_NotFound(t *testing.T) {
	ctx := context.Background()
	storage, err := NewFilesystemStorage(t.TempDir())
	require.NoError(t, err)

	// Delete should be idempotent - no error for non-existent key
	err = storage.Delete(ctx, testSnapshotKey)
	require.NoError(t, err)
}

func TestFilesystemStorage_ConcurrentOperations(t *testing.T) {
	ctx := context.Background()
	storage, err := NewFilesystemStorage(t.TempDir())
	require.NoError(t, err)

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

func TestFilesystemStorage_Close(t *testing.T) {
	storage, err := NewFilesystemStorage(t.TempDir())
	require.NoError(t, err)

	err = storage.Close()
	require.NoError(t, err)
}

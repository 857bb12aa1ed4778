package attachment

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/daykeep/attachment-store/internal/models"
	"github.com/daykeep/attachment-store/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestStore(t *testing.T) (*FolderStore, string) {
	t.Helper()

	root := t.TempDir()
	cfg := &types.Config{}
	cfg.Storage.DataRoot = root

	store, err := NewFolderStore(cfg, testLogger())
	require.NoError(t, err)
	return store, root
}

func writeSource(t *testing.T, name, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestListFilesEmptyWithoutFolder(t *testing.T) {
	store, root := newTestStore(t)

	attachments, err := store.ListFiles("2025-09-20")
	require.NoError(t, err)
	assert.Empty(t, attachments)

	// Listing must not create the date folder
	_, err = os.Stat(filepath.Join(root, "2025-09-20"))
	assert.True(t, os.IsNotExist(err))
}

func TestAddFilesCopiesBytes(t *testing.T) {
	store, root := newTestStore(t)
	src := writeSource(t, "a.pdf", "pdf bytes")

	mtime := time.Date(2025, 9, 19, 8, 30, 0, 0, time.UTC)
	require.NoError(t, os.Chtimes(src, time.Now(), mtime))

	stored, err := store.AddFiles("2025-09-20", []string{src})
	require.NoError(t, err)
	assert.Equal(t, []string{"a.pdf"}, stored)

	dest := filepath.Join(root, "2025-09-20", "_files", "a.pdf")
	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, "pdf bytes", string(data))

	info, err := os.Stat(dest)
	require.NoError(t, err)
	assert.WithinDuration(t, mtime, info.ModTime(), time.Second)
}

func TestAddFilesCollisionSuffix(t *testing.T) {
	store, _ := newTestStore(t)
	src := writeSource(t, "report.pdf", "v1")

	for i, want := range []string{"report.pdf", "report (1).pdf", "report (2).pdf"} {
		stored, err := store.AddFiles("2025-09-20", []string{src})
		require.NoError(t, err, "add #%d", i)
		assert.Equal(t, []string{want}, stored)
	}

	// Deleting a suffixed copy frees its slot for reuse
	require.NoError(t, store.DeleteFile("2025-09-20", "report (1).pdf"))

	stored, err := store.AddFiles("2025-09-20", []string{src})
	require.NoError(t, err)
	assert.Equal(t, []string{"report (1).pdf"}, stored)
}

func TestAddFilesDuplicateBaseNames(t *testing.T) {
	store, _ := newTestStore(t)
	first := writeSource(t, "notes.txt", "first")
	second := writeSource(t, "notes.txt", "second")

	stored, err := store.AddFiles("2025-09-20", []string{first, second})
	require.NoError(t, err)
	assert.Equal(t, []string{"notes.txt", "notes (1).txt"}, stored)

	attachments, err := store.ListFiles("2025-09-20")
	require.NoError(t, err)
	require.Len(t, attachments, 2)

	data, err := os.ReadFile(attachments[0].Path)
	require.NoError(t, err)
	assert.Equal(t, "second", string(data)) // "notes (1).txt" sorts first
}

func TestAddFilesDotfileSuffix(t *testing.T) {
	store, _ := newTestStore(t)
	src := writeSource(t, ".env", "KEY=1")

	stored, err := store.AddFiles("2025-09-20", []string{src})
	require.NoError(t, err)
	assert.Equal(t, []string{".env"}, stored)

	stored, err = store.AddFiles("2025-09-20", []string{src})
	require.NoError(t, err)
	assert.Equal(t, []string{".env (1)"}, stored)
}

func TestAddFilesBestEffort(t *testing.T) {
	store, _ := newTestStore(t)
	good := writeSource(t, "good.txt", "ok")
	missing := filepath.Join(t.TempDir(), "missing.txt")

	stored, err := store.AddFiles("2025-09-20", []string{missing, good})
	assert.Equal(t, []string{"good.txt"}, stored)

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotFound)

	var batch *BatchError
	require.ErrorAs(t, err, &batch)
	require.Len(t, batch.Failures, 1)
	assert.Equal(t, missing, batch.Failures[0].Source)
}

func TestAddFilesInvalidDate(t *testing.T) {
	store, root := newTestStore(t)
	src := writeSource(t, "a.txt", "x")

	_, err := store.AddFiles("not-a-date", []string{src})
	assert.ErrorIs(t, err, ErrInvalidDate)

	entries, err := os.ReadDir(root)
	require.NoError(t, err)
	assert.Empty(t, entries, "invalid date must not create folders")
}

func TestAddFilesPolicyMaxSize(t *testing.T) {
	root := t.TempDir()
	cfg := &types.Config{}
	cfg.Storage.DataRoot = root
	cfg.Attachments = models.AttachmentPolicy{MaxSize: 4}

	store, err := NewFolderStore(cfg, testLogger())
	require.NoError(t, err)

	small := writeSource(t, "small.txt", "ok")
	big := writeSource(t, "big.txt", "way too large")

	stored, err := store.AddFiles("2025-09-20", []string{small, big})
	assert.Equal(t, []string{"small.txt"}, stored)

	var batch *BatchError
	require.ErrorAs(t, err, &batch)
	require.Len(t, batch.Failures, 1)
	assert.Equal(t, big, batch.Failures[0].Source)
}

func TestAddFilesPolicyAllowedTypes(t *testing.T) {
	root := t.TempDir()
	cfg := &types.Config{}
	cfg.Storage.DataRoot = root
	cfg.Attachments = models.AttachmentPolicy{AllowedTypes: []string{".pdf"}}

	store, err := NewFolderStore(cfg, testLogger())
	require.NoError(t, err)

	pdf := writeSource(t, "doc.PDF", "pdf")
	exe := writeSource(t, "tool.exe", "bin")

	stored, err := store.AddFiles("2025-09-20", []string{pdf, exe})
	assert.Equal(t, []string{"doc.PDF"}, stored)
	require.Error(t, err)
}

func TestAddFilesSanitize(t *testing.T) {
	root := t.TempDir()
	cfg := &types.Config{}
	cfg.Storage.DataRoot = root
	cfg.Attachments = models.AttachmentPolicy{SanitizeFilenames: true}

	store, err := NewFolderStore(cfg, testLogger())
	require.NoError(t, err)

	src := writeSource(t, "we!rd$name.txt", "x")
	stored, err := store.AddFiles("2025-09-20", []string{src})
	require.NoError(t, err)
	assert.Equal(t, []string{"we_rd_name.txt"}, stored)
}

func TestListFilesOrdering(t *testing.T) {
	store, _ := newTestStore(t)

	var sources []string
	for _, name := range []string{"b.txt", "A.txt", "c.txt"} {
		sources = append(sources, writeSource(t, name, name))
	}

	_, err := store.AddFiles("2025-09-20", sources)
	require.NoError(t, err)

	attachments, err := store.ListFiles("2025-09-20")
	require.NoError(t, err)

	names := make([]string, len(attachments))
	for i, a := range attachments {
		names[i] = a.Name
	}
	assert.Equal(t, []string{"A.txt", "b.txt", "c.txt"}, names)

	for _, a := range attachments {
		assert.NotZero(t, a.SizeBytes)
		assert.NotEmpty(t, a.SizeHuman)
		assert.False(t, a.ModTime.IsZero())
	}
}

func TestDeleteFileTraversalRejected(t *testing.T) {
	store, root := newTestStore(t)
	src := writeSource(t, "keep.txt", "x")
	_, err := store.AddFiles("2025-09-20", []string{src})
	require.NoError(t, err)

	// Plant a file outside the attachment folder
	secret := filepath.Join(root, "secret")
	require.NoError(t, os.WriteFile(secret, []byte("s"), 0644))

	assert.ErrorIs(t, store.DeleteFile("2025-09-20", "../../secret"), ErrInvalidName)
	assert.ErrorIs(t, store.DeleteFile("2025-09-20", "a/b"), ErrInvalidName)

	_, err = os.Stat(secret)
	assert.NoError(t, err, "traversal attempt must not delete anything")

	attachments, err := store.ListFiles("2025-09-20")
	require.NoError(t, err)
	assert.Len(t, attachments, 1)
}

func TestDeleteFileNotFound(t *testing.T) {
	store, _ := newTestStore(t)
	src := writeSource(t, "keep.txt", "x")
	_, err := store.AddFiles("2025-09-20", []string{src})
	require.NoError(t, err)

	assert.ErrorIs(t, store.DeleteFile("2025-09-20", "missing.txt"), ErrNotFound)

	attachments, err := store.ListFiles("2025-09-20")
	require.NoError(t, err)
	assert.Len(t, attachments, 1, "failed delete must leave contents unchanged")
}

func TestDeleteFileKeepsFolder(t *testing.T) {
	store, root := newTestStore(t)
	src := writeSource(t, "a.pdf", "x")

	stored, err := store.AddFiles("2025-09-20", []string{src})
	require.NoError(t, err)
	require.Equal(t, []string{"a.pdf"}, stored)

	require.NoError(t, store.DeleteFile("2025-09-20", "a.pdf"))

	info, err := os.Stat(filepath.Join(root, "2025-09-20", "_files"))
	require.NoError(t, err)
	assert.True(t, info.IsDir(), "folder stays after its last file is deleted")

	attachments, err := store.ListFiles("2025-09-20")
	require.NoError(t, err)
	assert.Empty(t, attachments)
}

func TestLocate(t *testing.T) {
	store, _ := newTestStore(t)
	src := writeSource(t, "a.txt", "x")
	_, err := store.AddFiles("2025-09-20", []string{src})
	require.NoError(t, err)

	path, err := store.Locate("2025-09-20", "a.txt")
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "x", string(data))

	_, err = store.Locate("2025-09-20", "missing.txt")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = store.Locate("2025-09-20", "a/b")
	assert.ErrorIs(t, err, ErrInvalidName)
}

func TestLocateRejectsSymlinkEscape(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlinks need elevation on windows")
	}

	store, root := newTestStore(t)
	src := writeSource(t, "a.txt", "x")
	_, err := store.AddFiles("2025-09-20", []string{src})
	require.NoError(t, err)

	outside := filepath.Join(root, "outside.txt")
	require.NoError(t, os.WriteFile(outside, []byte("o"), 0644))

	link := filepath.Join(root, "2025-09-20", "_files", "escape.txt")
	require.NoError(t, os.Symlink(outside, link))

	_, err = store.Locate("2025-09-20", "escape.txt")
	assert.ErrorIs(t, err, ErrInvalidName)
}

func TestOpenDateFolderCreatesFolder(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("override command uses a POSIX no-op")
	}

	root := t.TempDir()
	cfg := &types.Config{}
	cfg.Storage.DataRoot = root
	cfg.Opener.FolderCommand = []string{"true"}
	cfg.Opener.FileCommand = []string{"true"}

	store, err := NewFolderStore(cfg, testLogger())
	require.NoError(t, err)

	require.NoError(t, store.OpenDateFolder("2025-09-20"))

	info, err := os.Stat(filepath.Join(root, "2025-09-20", "_files"))
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	assert.ErrorIs(t, store.OpenDateFolder("20-09-2025"), ErrInvalidDate)
}

func TestNewStoreBackends(t *testing.T) {
	cfg := &types.Config{}
	cfg.Storage.DataRoot = t.TempDir()

	store, err := NewStore(cfg, testLogger())
	require.NoError(t, err)
	assert.IsType(t, &FolderStore{}, store)

	cfg.Storage.Backend = "database"
	_, err = NewStore(cfg, testLogger())
	assert.ErrorIs(t, err, ErrUnsupportedBackend)
}

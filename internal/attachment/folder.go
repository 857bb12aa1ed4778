package attachment

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/daykeep/attachment-store/internal/models"
	"github.com/daykeep/attachment-store/internal/types"
	"github.com/daykeep/attachment-store/internal/utility/u_format"
	"github.com/daykeep/attachment-store/internal/utility/u_io"
	"github.com/google/uuid"
)

const defaultFolderName = "_files"

// FolderStore stores attachments under <data_root>/<YYYY-MM-DD>/<folder_name>/.
// Date folders are created lazily on first write or explicit reveal, never
// by reads.
type FolderStore struct {
	dataRoot   string
	folderName string
	policy     models.AttachmentPolicy
	opener     *Opener
	logger     *slog.Logger
}

// NewFolderStore creates a folder-backed store from the configuration
func NewFolderStore(cfg *types.Config, logger *slog.Logger) (*FolderStore, error) {
	if cfg.Storage.DataRoot == "" {
		return nil, fmt.Errorf("storage.data_root is required")
	}

	folderName := cfg.Storage.FolderName
	if folderName == "" {
		folderName = defaultFolderName
	}

	return &FolderStore{
		dataRoot:   cfg.Storage.DataRoot,
		folderName: folderName,
		policy:     cfg.Attachments,
		opener:     NewOpener(cfg, logger),
		logger:     logger,
	}, nil
}

func (s *FolderStore) filesDir(key DateKey) string {
	return filepath.Join(s.dataRoot, key.String(), s.folderName)
}

func (s *FolderStore) ensureFilesDir(key DateKey) (string, error) {
	dir := s.filesDir(key)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create attachment folder: %w", err)
	}
	return dir, nil
}

// AddFiles copies sources into the date's attachment folder
func (s *FolderStore) AddFiles(dateKey string, sources []string) ([]string, error) {
	key, err := ParseDateKey(dateKey)
	if err != nil {
		return nil, err
	}

	dir, err := s.ensureFilesDir(key)
	if err != nil {
		return nil, err
	}

	var stored []string
	var failures []Failure
	for _, src := range sources {
		name, err := s.storeOne(dir, src)
		if err != nil {
			s.logger.Warn("failed to store attachment",
				"date_key", key,
				"source", src,
				"error", err,
			)
			failures = append(failures, Failure{Source: src, Err: err})
			continue
		}

		s.logger.Debug("stored attachment",
			"date_key", key,
			"name", name,
			"source", src,
		)
		stored = append(stored, name)
	}

	if len(failures) > 0 {
		return stored, &BatchError{Failures: failures}
	}
	return stored, nil
}

func (s *FolderStore) storeOne(dir, src string) (string, error) {
	info, err := os.Stat(src)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%w: source %s", ErrNotFound, src)
		}
		return "", fmt.Errorf("failed to stat source: %w", err)
	}
	if info.IsDir() {
		return "", fmt.Errorf("%w: source %s is a directory", ErrNotFound, src)
	}

	if err := s.checkPolicy(src, info); err != nil {
		return "", err
	}

	base := filepath.Base(src)
	if s.policy.SanitizeFilenames {
		base = u_io.CleanFilename(base)
	}

	dest, err := uniqueDest(dir, base)
	if err != nil {
		return "", err
	}

	if err := copyFile(src, dest, info); err != nil {
		return "", err
	}
	return filepath.Base(dest), nil
}

func (s *FolderStore) checkPolicy(src string, info os.FileInfo) error {
	if s.policy.MaxSize > 0 && info.Size() > s.policy.MaxSize {
		return fmt.Errorf("size %d exceeds maximum allowed size %d", info.Size(), s.policy.MaxSize)
	}

	if len(s.policy.AllowedTypes) == 0 {
		return nil
	}
	ext := strings.ToLower(filepath.Ext(src))
	for _, allowed := range s.policy.AllowedTypes {
		if ext == strings.ToLower(allowed) {
			return nil
		}
	}
	return fmt.Errorf("file type %q is not allowed", ext)
}

// uniqueDest returns the first free path for name inside dir, trying
// "name.ext", then "name (1).ext", "name (2).ext", ... The smallest unused
// integer wins, so a deleted "name (1).ext" slot is reused.
func uniqueDest(dir, name string) (string, error) {
	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)
	if stem == "" {
		// Dotfiles like ".env" keep their full name as the stem
		stem, ext = name, ""
	}

	candidate := filepath.Join(dir, name)
	for i := 1; ; i++ {
		_, err := os.Lstat(candidate)
		if err != nil {
			if os.IsNotExist(err) {
				return candidate, nil
			}
			return "", fmt.Errorf("failed to stat %s: %w", candidate, err)
		}
		candidate = filepath.Join(dir, fmt.Sprintf("%s (%d)%s", stem, i, ext))
	}
}

// copyFile copies src to dest via a temp file in the same directory, so a
// failed copy never leaves a partial file under its final name. Mode and
// modification time follow the source.
func copyFile(src, dest string, info os.FileInfo) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open source: %w", err)
	}
	defer in.Close()

	tmp := filepath.Join(filepath.Dir(dest), "."+uuid.New().String()+".tmp")
	out, err := os.OpenFile(tmp, os.O_WRONLY|os.O_CREATE|os.O_EXCL, info.Mode().Perm())
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(tmp)
		return fmt.Errorf("failed to write file content: %w", err)
	}
	if err := out.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to flush file content: %w", err)
	}

	if err := os.Rename(tmp, dest); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to move file into place: %w", err)
	}

	if err := os.Chtimes(dest, time.Now(), info.ModTime()); err != nil {
		return fmt.Errorf("failed to preserve modification time: %w", err)
	}
	return nil
}

// ListFiles enumerates the date's attachments without creating the folder
func (s *FolderStore) ListFiles(dateKey string) ([]models.Attachment, error) {
	key, err := ParseDateKey(dateKey)
	if err != nil {
		return nil, err
	}

	dir := s.filesDir(key)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return []models.Attachment{}, nil
		}
		return nil, fmt.Errorf("failed to read attachment folder: %w", err)
	}

	attachments := make([]models.Attachment, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			// Removed externally between ReadDir and stat; the folder is
			// the source of truth, so just skip it.
			if os.IsNotExist(err) {
				continue
			}
			return nil, fmt.Errorf("failed to stat %s: %w", entry.Name(), err)
		}

		attachments = append(attachments, models.Attachment{
			Name:      entry.Name(),
			Path:      filepath.Join(dir, entry.Name()),
			SizeBytes: info.Size(),
			SizeHuman: u_format.HumanSize(info.Size()),
			ModTime:   info.ModTime(),
		})
	}

	// Name order, case-insensitive, with an exact-name tiebreak so the
	// result is identical regardless of directory iteration order.
	sort.Slice(attachments, func(i, j int) bool {
		li, lj := strings.ToLower(attachments[i].Name), strings.ToLower(attachments[j].Name)
		if li == lj {
			return attachments[i].Name < attachments[j].Name
		}
		return li < lj
	})

	return attachments, nil
}

// DeleteFile removes exactly one attachment; the folder stays behind
func (s *FolderStore) DeleteFile(dateKey, fileName string) error {
	key, err := ParseDateKey(dateKey)
	if err != nil {
		return err
	}
	name, err := ParseFileName(fileName)
	if err != nil {
		return err
	}

	path := filepath.Join(s.filesDir(key), name.String())
	info, err := os.Lstat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s under %s", ErrNotFound, name, key)
		}
		return fmt.Errorf("failed to stat attachment: %w", err)
	}
	if info.IsDir() {
		return fmt.Errorf("%w: %s under %s", ErrNotFound, name, key)
	}

	if err := os.Remove(path); err != nil {
		return fmt.Errorf("failed to delete attachment: %w", err)
	}

	s.logger.Debug("deleted attachment", "date_key", key, "name", name)
	return nil
}

// Locate resolves an attachment to an absolute path, refusing names and
// symlinks that leave the date's attachment folder
func (s *FolderStore) Locate(dateKey, fileName string) (string, error) {
	key, err := ParseDateKey(dateKey)
	if err != nil {
		return "", err
	}
	name, err := ParseFileName(fileName)
	if err != nil {
		return "", err
	}

	dir := s.filesDir(key)
	path := filepath.Join(dir, name.String())
	if _, err := os.Lstat(path); err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%w: %s under %s", ErrNotFound, name, key)
		}
		return "", fmt.Errorf("failed to stat attachment: %w", err)
	}

	resolved, err := filepath.EvalSymlinks(path)
	if err != nil {
		return "", fmt.Errorf("failed to resolve attachment path: %w", err)
	}
	resolvedDir, err := filepath.EvalSymlinks(dir)
	if err != nil {
		return "", fmt.Errorf("failed to resolve attachment folder: %w", err)
	}

	rel, err := filepath.Rel(resolvedDir, resolved)
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") || strings.ContainsRune(rel, os.PathSeparator) {
		return "", fmt.Errorf("%w: %s resolves outside the attachment folder", ErrInvalidName, name)
	}

	return resolved, nil
}

// OpenFile hands the attachment to the OS default application
func (s *FolderStore) OpenFile(dateKey, fileName string) error {
	path, err := s.Locate(dateKey, fileName)
	if err != nil {
		return err
	}
	return s.opener.OpenFile(path)
}

// OpenDateFolder reveals the date's attachment folder, creating it first so
// the user always gets a folder to look at
func (s *FolderStore) OpenDateFolder(dateKey string) error {
	key, err := ParseDateKey(dateKey)
	if err != nil {
		return err
	}
	dir, err := s.ensureFilesDir(key)
	if err != nil {
		return err
	}
	return s.opener.OpenFolder(dir)
}

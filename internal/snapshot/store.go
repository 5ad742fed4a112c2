// Package snapshot persists a versioned, on-device copy of a user's core
// financial records. The snapshot is the sole fallback read source when
// the hosted backend is unreachable.
package snapshot

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/Masterminds/semver/v3"
	"github.com/rs/zerolog"

	"github.com/ledgerlite/ledgerlite/internal/ledger"
)

// SchemaVersion is the current snapshot schema. Snapshots written by a
// different major version are treated as absent rather than risk serving
// misread data.
const SchemaVersion = "1.0.0"

// snapshotFileExtension is the file extension used for snapshot blobs.
const snapshotFileExtension = ".json"

// Common snapshot errors.
var (
	ErrSnapshotNotFound = errors.New("no snapshot exists for user")
	ErrSnapshotWrite    = errors.New("snapshot write failed")
	ErrInvalidUserID    = errors.New("user id cannot be empty")
)

// Snapshot is one whole-dataset backup for a single user.
type Snapshot struct {
	Version string         `json:"version"`
	SavedAt time.Time      `json:"savedAt"`
	UserID  string         `json:"userId"`
	Data    ledger.Dataset `json:"data"`
}

// Info summarizes a stored snapshot without loading its full payload
// into the caller's hands.
type Info struct {
	Version   string
	SavedAt   time.Time
	SizeBytes int64
	Counts    map[ledger.Domain]int
}

// Store writes and reads one snapshot blob per user. A save fully
// replaces the previous snapshot; no history is retained.
// Thread-safe for concurrent access.
type Store struct {
	directory string
	logger    zerolog.Logger
	mu        sync.RWMutex
}

// NewStore creates a snapshot store rooted at directory, creating it if
// needed.
func NewStore(directory string, logger zerolog.Logger) (*Store, error) {
	if directory == "" {
		return nil, errors.New("snapshot directory cannot be empty")
	}
	if err := os.MkdirAll(directory, 0750); err != nil {
		return nil, fmt.Errorf("create snapshot directory: %w", err)
	}
	return &Store{
		directory: directory,
		logger:    logger.With().Str("component", "snapshot").Logger(),
	}, nil
}

// Save serializes the full dataset for userID in one write, replacing
// any prior snapshot. The write goes to a temporary file first and is
// renamed into place, so a failure never corrupts the previous snapshot.
func (s *Store) Save(userID string, data ledger.Dataset) error {
	if userID == "" {
		return ErrInvalidUserID
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		Version: SchemaVersion,
		SavedAt: time.Now().UTC(),
		UserID:  userID,
		Data:    data,
	}

	blob, err := json.MarshalIndent(&snap, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: marshal: %w", ErrSnapshotWrite, err)
	}

	filePath := s.userFilePath(userID)
	tempPath := filePath + ".tmp"
	if writeErr := os.WriteFile(tempPath, blob, 0600); writeErr != nil {
		return fmt.Errorf("%w: %w", ErrSnapshotWrite, writeErr)
	}
	if renameErr := os.Rename(tempPath, filePath); renameErr != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("%w: %w", ErrSnapshotWrite, renameErr)
	}

	s.logger.Info().
		Str("user_id", userID).
		Int("bytes", len(blob)).
		Msg("snapshot saved")
	return nil
}

// Load reads the snapshot for userID. It returns ErrSnapshotNotFound
// when no snapshot exists, when the blob cannot be parsed, or when its
// schema major version differs from the current one (fail closed: prefer
// "no data" over possibly-corrupt data).
func (s *Store) Load(userID string) (*Snapshot, error) {
	if userID == "" {
		return nil, ErrInvalidUserID
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	blob, err := os.ReadFile(s.userFilePath(userID))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrSnapshotNotFound
		}
		return nil, fmt.Errorf("read snapshot: %w", err)
	}

	var snap Snapshot
	if unmarshalErr := json.Unmarshal(blob, &snap); unmarshalErr != nil {
		s.logger.Warn().
			Str("user_id", userID).
			Err(unmarshalErr).
			Msg("snapshot unreadable, treating as missing")
		return nil, ErrSnapshotNotFound
	}

	if !s.compatible(snap.Version) {
		s.logger.Warn().
			Str("user_id", userID).
			Str("snapshot_version", snap.Version).
			Str("current_version", SchemaVersion).
			Msg("snapshot schema incompatible, treating as missing")
		return nil, ErrSnapshotNotFound
	}

	return &snap, nil
}

// Clear deletes the snapshot for userID. Deleting a snapshot that does
// not exist is not an error.
func (s *Store) Clear(userID string) error {
	if userID == "" {
		return ErrInvalidUserID
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	err := os.Remove(s.userFilePath(userID))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete snapshot: %w", err)
	}
	return nil
}

// Stat returns metadata about the stored snapshot without handing the
// payload to the caller. Returns ErrSnapshotNotFound like Load.
func (s *Store) Stat(userID string) (*Info, error) {
	snap, err := s.Load(userID)
	if err != nil {
		return nil, err
	}

	fi, statErr := os.Stat(s.userFilePath(userID))
	var size int64
	if statErr == nil {
		size = fi.Size()
	}

	return &Info{
		Version:   snap.Version,
		SavedAt:   snap.SavedAt,
		SizeBytes: size,
		Counts:    snap.Data.Counts(),
	}, nil
}

// compatible reports whether a stored schema version can be safely read
// by this build. Same major version is considered safe.
func (s *Store) compatible(version string) bool {
	stored, err := semver.NewVersion(version)
	if err != nil {
		return false
	}
	current := semver.MustParse(SchemaVersion)
	return stored.Major() == current.Major()
}

// userFilePath converts a user id to a snapshot file path, sanitized for
// filesystem safety.
func (s *Store) userFilePath(userID string) string {
	safe := strings.ReplaceAll(userID, "/", "_")
	safe = strings.ReplaceAll(safe, "\\", "_")
	safe = strings.ReplaceAll(safe, ":", "_")
	return filepath.Join(s.directory, safe+snapshotFileExtension)
}

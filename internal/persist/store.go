// Package persist stores session records on disk so sessions can be listed
// and reattached across runs.
package persist

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
	"unicode"

	"github.com/zlillymp/forgeline/schema"
	"pkt.systems/pslog"
)

// SessionRecord captures everything needed to reattach a session.
type SessionRecord struct {
	SessionID    schema.SessionID `json:"session_id"`
	WebSocketURL string           `json:"websocket_url"`
	Query        string           `json:"query"`
	CreatedAt    time.Time        `json:"created_at"`
}

// Store persists session records to disk, one file per session.
type Store struct {
	dir string
	log pslog.Logger
}

// NewStore constructs a persistent store at the given directory.
func NewStore(dir string) (*Store, error) {
	return NewStoreWithLogger(dir, nil)
}

// NewStoreWithLogger constructs a persistent store with logging.
func NewStoreWithLogger(dir string, logger pslog.Logger) (*Store, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, errors.New("state directory is required")
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, err
	}
	if logger != nil {
		logger = logger.With("state_dir", dir)
	}
	return &Store{dir: dir, log: logger}, nil
}

// Load reads one session record.
func (s *Store) Load(id schema.SessionID) (SessionRecord, bool, error) {
	path := s.pathFor(id)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			if s.log != nil {
				s.log.Debug("session record miss", "session", id)
			}
			return SessionRecord{}, false, nil
		}
		if s.log != nil {
			s.log.Warn("session record load failed", "session", id, "err", err)
		}
		return SessionRecord{}, false, err
	}
	var record SessionRecord
	if err := json.Unmarshal(data, &record); err != nil {
		if s.log != nil {
			s.log.Warn("session record load failed", "session", id, "err", err)
		}
		return SessionRecord{}, false, err
	}
	return record, true, nil
}

// Save writes one session record atomically.
func (s *Store) Save(record SessionRecord) error {
	if record.SessionID == "" {
		return errors.New("session id is required")
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now()
	}
	path := s.pathFor(record.SessionID)
	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(s.dir, "session-*.json")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return err
	}
	if err := os.Chmod(tmp.Name(), 0o600); err != nil {
		_ = os.Remove(tmp.Name())
		return err
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		if s.log != nil {
			s.log.Warn("session record save failed", "session", record.SessionID, "err", err)
		}
		return err
	}
	if s.log != nil {
		s.log.Debug("session record saved", "session", record.SessionID)
	}
	return nil
}

// List returns all stored session records, newest first. Unreadable files
// are skipped.
func (s *Store) List() ([]SessionRecord, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, err
	}
	records := make([]SessionRecord, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(s.dir, entry.Name()))
		if err != nil {
			continue
		}
		var record SessionRecord
		if err := json.Unmarshal(data, &record); err != nil || record.SessionID == "" {
			if s.log != nil {
				s.log.Debug("skipping unreadable session record", "file", entry.Name())
			}
			continue
		}
		records = append(records, record)
	}
	sort.Slice(records, func(i, j int) bool {
		return records[i].CreatedAt.After(records[j].CreatedAt)
	})
	return records, nil
}

// Delete removes one session record. Missing records are not an error.
func (s *Store) Delete(id schema.SessionID) error {
	err := os.Remove(s.pathFor(id))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

func (s *Store) pathFor(id schema.SessionID) string {
	name := sanitize(string(id))
	if name == "" {
		name = "unknown"
	}
	return filepath.Join(s.dir, name+".json")
}

func sanitize(value string) string {
	var b strings.Builder
	for _, r := range value {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			continue
		}
		if r == '-' || r == '_' || r == '.' {
			b.WriteRune(r)
			continue
		}
		b.WriteRune('_')
	}
	return b.String()
}

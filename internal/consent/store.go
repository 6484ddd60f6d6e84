package consent

import (
	"encoding/json"
	"time"

	"github.com/spf13/afero"

	"zolta-live/pkg/logger"
)

// FileStore persists a single accepted-terms record, the Go counterpart of
// the site's terms_accepted cookie. It fails closed: anything wrong with
// the file reads as "not accepted".
type FileStore struct {
	fs   afero.Fs
	path string
	ttl  time.Duration
	log  logger.Logger
}

type record struct {
	AcceptedAt time.Time `json:"accepted_at"`
}

func NewFileStore(fs afero.Fs, path string, ttl time.Duration, log logger.Logger) *FileStore {
	return &FileStore{
		fs:   fs,
		path: path,
		ttl:  ttl,
		log:  log,
	}
}

func (s *FileStore) Accepted(now time.Time) bool {
	data, err := afero.ReadFile(s.fs, s.path)
	if err != nil {
		return false
	}

	var r record
	if err := json.Unmarshal(data, &r); err != nil {
		s.log.Debug("Unreadable consent record", "path", s.path, "error", err)
		return false
	}
	if r.AcceptedAt.IsZero() || r.AcceptedAt.After(now) {
		return false
	}

	return now.Before(r.AcceptedAt.Add(s.ttl))
}

func (s *FileStore) Record(now time.Time) error {
	data, err := json.Marshal(record{AcceptedAt: now})
	if err != nil {
		return err
	}
	return afero.WriteFile(s.fs, s.path, data, 0o600)
}

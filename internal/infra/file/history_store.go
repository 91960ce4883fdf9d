package file

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pkg/errors"

	"survey-scoring/internal/domain"
)

// HistoryStore keeps the period results table in a CSV file. Before the
// file is replaced, the previous version is copied to the archive
// directory as <name>_<YYYY-MM-DD>.csv.
type HistoryStore struct {
	readPath   string
	writePath  string
	archiveDir string
	clock      func() time.Time
}

// NewHistoryStore reads prior results from readPath and publishes to
// writePath; both are usually the same file.
func NewHistoryStore(readPath, writePath, archiveDir string) *HistoryStore {
	if readPath == "" {
		readPath = writePath
	}
	return &HistoryStore{
		readPath:   readPath,
		writePath:  writePath,
		archiveDir: archiveDir,
		clock:      time.Now,
	}
}

func (s *HistoryStore) LoadHistory(_ context.Context) (domain.PeriodHistory, error) {
	if _, err := os.Stat(s.readPath); os.IsNotExist(err) {
		return domain.PeriodHistory{}, errors.Wrap(domain.ErrHistoryNotFound, s.readPath)
	}
	header, rows, err := readCSV(s.readPath)
	if err != nil {
		return domain.PeriodHistory{}, err
	}
	return domain.PeriodHistory{Columns: header, Rows: rows}, nil
}

func (s *HistoryStore) SaveHistory(_ context.Context, history domain.PeriodHistory) error {
	if err := s.archive(); err != nil {
		return err
	}
	return writeCSV(s.writePath, history.Columns, history.Rows)
}

func (s *HistoryStore) archive() error {
	if s.archiveDir == "" {
		return nil
	}
	src, err := os.Open(s.writePath)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return errors.Wrap(err, "open results for archive")
	}
	defer src.Close()

	if err := os.MkdirAll(s.archiveDir, 0o755); err != nil {
		return errors.Wrapf(err, "create archive dir %s", s.archiveDir)
	}
	base := strings.TrimSuffix(filepath.Base(s.writePath), filepath.Ext(s.writePath))
	name := filepath.Join(s.archiveDir, base+"_"+s.clock().Format("2006-01-02")+".csv")
	dst, err := os.Create(name)
	if err != nil {
		return errors.Wrap(err, "create archive copy")
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		return errors.Wrapf(err, "copy results to %s", name)
	}
	return errors.Wrapf(dst.Close(), "close %s", name)
}

package agent

import (
	"errors"
	"fmt"

	cmtlog "github.com/cometbft/cometbft/libs/log"
	"github.com/jinzhu/gorm"
	_ "github.com/jinzhu/gorm/dialects/sqlite"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

var ErrRunNotFound = errors.New("run not found")

// RunStore is the append-only run log.
type RunStore struct {
	db     *gorm.DB
	logger cmtlog.Logger
}

func OpenRunStore(dbPath string, logger cmtlog.Logger) (*RunStore, error) {
	logger = logger.With("module", "store")
	logger.Info("open run store", "dbPath", dbPath)
	db, err := gorm.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}
	db.SetLogger(newGormLogger(logger))
	db.LogMode(true)
	if err := db.AutoMigrate(&RunRecord{}).Error; err != nil {
		db.Close()
		return nil, err
	}
	return &RunStore{db: db, logger: logger}, nil
}

func (s *RunStore) Close() error {
	return s.db.Close()
}

func (s *RunStore) Append(rec *RunRecord) error {
	rec.Id = 0
	if err := s.db.Create(rec).Error; err != nil {
		s.logger.Error("save run fail", "err", err)
		return err
	}
	return nil
}

type RunFilter struct {
	Author  string
	Outcome string
}

func normalizePage(page, pageSize int) (int, int) {
	if page < 0 {
		page = 0
	}
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}
	return page, pageSize
}

// GetRuns returns one page of runs, newest first, and the number of runs
// matching filter.
func (s *RunStore) GetRuns(filter RunFilter, page int, pageSize int) ([]RunRecord, uint64, error) {
	page, pageSize = normalizePage(page, pageSize)
	query := s.db.Model(&RunRecord{})
	if filter.Author != "" {
		query = query.Where("author = ?", filter.Author)
	}
	if filter.Outcome != "" {
		query = query.Where("outcome = ?", filter.Outcome)
	}
	var total uint64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	runs := make([]RunRecord, 0)
	err := query.Order("id desc").Offset(page * pageSize).Limit(pageSize).Find(&runs).Error
	if err != nil {
		return nil, 0, err
	}
	return runs, total, nil
}

func (s *RunStore) GetRunById(id uint64) (RunRecord, error) {
	var run RunRecord
	if err := s.db.First(&run, id).Error; err != nil {
		if gorm.IsRecordNotFoundError(err) {
			return run, fmt.Errorf("%w: %d", ErrRunNotFound, id)
		}
		return run, err
	}
	return run, nil
}

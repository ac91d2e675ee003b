package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Thanujadevi/EMPOWERHER/internal/model"
)

var _ model.ReportStore = (*ReportStore)(nil)

// ReportStore keeps crime reports in process memory.
type ReportStore struct {
	mu      sync.RWMutex
	reports []model.CrimeReport
}

func NewReportStore(seed ...model.CrimeReport) *ReportStore {
	return &ReportStore{reports: append([]model.CrimeReport{}, seed...)}
}

// List returns up to limit reports, newest first. A non-positive limit
// returns all of them.
func (s *ReportStore) List(_ context.Context, limit int) ([]model.CrimeReport, error) {
	s.mu.RLock()
	out := append([]model.CrimeReport{}, s.reports...)
	s.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].OccurredAt.After(out[j].OccurredAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *ReportStore) Create(_ context.Context, report model.CrimeReport) (model.CrimeReport, error) {
	if report.ID == uuid.Nil {
		report.ID = uuid.New()
	}
	if report.CreatedAt.IsZero() {
		report.CreatedAt = time.Now()
	}

	s.mu.Lock()
	s.reports = append(s.reports, report)
	s.mu.Unlock()

	return report, nil
}

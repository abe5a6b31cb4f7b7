package timelogs

import (
	"sort"
	"sync"

	"timebridge/internal/features/approval"
	"timebridge/internal/util/app_errors"
)

// MemoryTimeLogStore keeps time logs in memory for tests of this and
// dependent packages.
type MemoryTimeLogStore struct {
	mu       sync.Mutex
	timeLogs map[string]*TimeLog
}

func NewMemoryTimeLogStore(timeLogs ...*TimeLog) *MemoryTimeLogStore {
	store := &MemoryTimeLogStore{timeLogs: make(map[string]*TimeLog)}
	for _, timeLog := range timeLogs {
		store.timeLogs[timeLog.ID] = timeLog
	}

	return store
}

func (s *MemoryTimeLogStore) Create(timeLog *TimeLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	copied := *timeLog
	s.timeLogs[timeLog.ID] = &copied
	return nil
}

func (s *MemoryTimeLogStore) CreateBatch(timeLogs []*TimeLog) error {
	for _, timeLog := range timeLogs {
		if err := s.Create(timeLog); err != nil {
			return err
		}
	}

	return nil
}

func (s *MemoryTimeLogStore) GetByID(id string) (*TimeLog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	timeLog, ok := s.timeLogs[id]
	if !ok {
		return nil, app_errors.NewNotFoundError("time log", id)
	}

	copied := *timeLog
	return &copied, nil
}

func (s *MemoryTimeLogStore) List(filter Filter) ([]*TimeLog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	result := make([]*TimeLog, 0)
	for _, timeLog := range s.timeLogs {
		if filter.Matches(timeLog) {
			copied := *timeLog
			result = append(result, &copied)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].Date != result[j].Date {
			return result[i].Date > result[j].Date
		}
		return result[i].ID > result[j].ID
	})

	return result, nil
}

func (s *MemoryTimeLogStore) GetAll() ([]*TimeLog, error) {
	return s.List(Filter{})
}

func (s *MemoryTimeLogStore) GetForAssignment(projectID, subcontractorID string) ([]*TimeLog, error) {
	return s.List(Filter{ProjectID: projectID, SubcontractorID: subcontractorID})
}

func (s *MemoryTimeLogStore) GetStatus(id string) (approval.Status, error) {
	timeLog, err := s.GetByID(id)
	if err != nil {
		return "", err
	}

	return timeLog.Status, nil
}

func (s *MemoryTimeLogStore) CompareAndSwapStatus(
	id string,
	expected, next approval.Status,
	feedback *string,
) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	timeLog, ok := s.timeLogs[id]
	if !ok || timeLog.Status != expected {
		return false, nil
	}

	timeLog.Status = next
	timeLog.Feedback = feedback
	return true, nil
}

func (s *MemoryTimeLogStore) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.timeLogs[id]; !ok {
		return app_errors.NewNotFoundError("time log", id)
	}

	delete(s.timeLogs, id)
	return nil
}

func (s *MemoryTimeLogStore) CountByProject(projectID string) (int64, error) {
	timeLogs, _ := s.List(Filter{ProjectID: projectID})
	return int64(len(timeLogs)), nil
}

func (s *MemoryTimeLogStore) CountBySubcontractor(subcontractorID string) (int64, error) {
	timeLogs, _ := s.List(Filter{SubcontractorID: subcontractorID})
	return int64(len(timeLogs)), nil
}

package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"bikeshare/internal/logger"
	"bikeshare/internal/models"
	"bikeshare/internal/repository"
)

// ActivityService keeps the post activity log.
type ActivityService struct {
	eventRepo repository.EventRepo
	log       *logger.Logger
}

func NewActivityService(eventRepo repository.EventRepo, log *logger.Logger) *ActivityService {
	return &ActivityService{eventRepo: eventRepo, log: log}
}

var errInvalidTimeRange = errors.New("invalid time range: From must be <= To")

func normalizeToUTC(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	return t.UTC()
}

// List returns entries matching f, oldest first.
func (s *ActivityService) List(ctx context.Context, f LogFilter) ([]models.PostEvent, error) {
	from, to := normalizeToUTC(f.From), normalizeToUTC(f.To)
	if !from.IsZero() && !to.IsZero() && from.After(to) {
		return nil, errInvalidTimeRange
	}
	return s.eventRepo.List(ctx, from, to, strings.ToUpper(strings.TrimSpace(f.Type)))
}

// Record appends an entry. Failures are logged and otherwise ignored so
// they never fail the write that triggered them.
func (s *ActivityService) Record(ctx context.Context, e models.PostEvent) {
	if err := s.eventRepo.Append(ctx, e); err != nil && s.log != nil {
		s.log.Warnw("activity_record_failed", "err", err, "type", e.Type, "post_id", e.PostID)
	}
}

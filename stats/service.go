// File: /stats/service.go
package stats

import (
	"time"

	"gorm.io/gorm"

	"afisha-api/utils"
)

type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// RecordHit stores one endpoint hit.
func (s *Service) RecordHit(app, uri, ip string, timestamp time.Time) (*EndpointHit, error) {
	hit := EndpointHit{
		App:       app,
		URI:       uri,
		IP:        ip,
		Timestamp: timestamp,
	}
	if err := s.db.Create(&hit).Error; err != nil {
		return nil, err
	}
	return &hit, nil
}

// GetStats aggregates hits per app and uri over [start, end]. With unique set,
// each ip counts once per endpoint.
func (s *Service) GetStats(start, end time.Time, uris []string, unique bool) ([]ViewStats, error) {
	if end.Before(start) {
		return nil, utils.ValidationError("Range end must not be before range start")
	}

	counter := "COUNT(ip)"
	if unique {
		counter = "COUNT(DISTINCT ip)"
	}

	query := s.db.Model(&EndpointHit{}).
		Select("app, uri, "+counter+" AS hits").
		Where("timestamp BETWEEN ? AND ?", start, end).
		Group("app, uri").
		Order("hits DESC")
	if len(uris) > 0 {
		query = query.Where("uri IN ?", uris)
	}

	results := make([]ViewStats, 0)
	if err := query.Scan(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

// DeleteOlderThan drops hits recorded before the cutoff and reports how many
// rows went away.
func (s *Service) DeleteOlderThan(cutoff time.Time) (int64, error) {
	result := s.db.Where("timestamp < ?", cutoff).Delete(&EndpointHit{})
	return result.RowsAffected, result.Error
}

// File: /stats/model.go
package stats

import "time"

// EndpointHit is one recorded request to a tracked endpoint.
type EndpointHit struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	App       string    `json:"app" gorm:"size:100;not null;index:idx_hits_app_uri"`
	URI       string    `json:"uri" gorm:"size:500;not null;index:idx_hits_app_uri"`
	IP        string    `json:"ip" gorm:"size:45;not null"`
	Timestamp time.Time `json:"timestamp" gorm:"not null;index"`
}

// ViewStats is an aggregated hit count for one endpoint of one app.
type ViewStats struct {
	App  string `json:"app"`
	URI  string `json:"uri"`
	Hits int64  `json:"hits"`
}

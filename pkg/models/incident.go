package models

import "time"

// RiskIssue is a recorded incident raised against a risk
type RiskIssue struct {
	ID        string    `json:"id" validate:"required"`
	RiskID    string    `json:"risk_id" validate:"required"`
	Title     string    `json:"title"`
	Status    string    `json:"status,omitempty"`
	CreatedAt time.Time `json:"created_at" validate:"required"`
}

// ServiceImpact is the evaluated impact of an incident on one critical service
type ServiceImpact struct {
	ServiceID            string       `json:"service_id"`
	ServiceCode          string       `json:"service_code"`
	Name                 string       `json:"name"`
	ImpactLevel          ImpactLevel  `json:"impact_level"`
	MTPDProgress         float64      `json:"mtpd_progress"`
	CrisisRecommended    bool         `json:"crisis_recommended"`
	Warnings             []string     `json:"warnings"`
	NextThresholdMinutes *int         `json:"next_threshold_minutes"`
	NextThresholdLevel   *ImpactLevel `json:"next_threshold_level"`
	Breaches             []string     `json:"breaches"`
	FailedAssetIDs       []string     `json:"failed_asset_ids"`
}

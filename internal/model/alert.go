package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// AlertType names a predictive alert rule.
type AlertType string

const (
	AlertComplianceGap      AlertType = "compliance_gap"
	AlertRegulatoryDeadline AlertType = "regulatory_deadline"
	AlertTrendDecline       AlertType = "trend_decline"
)

// RiskLevel orders alert severity.
type RiskLevel string

const (
	RiskLow      RiskLevel = "low"
	RiskMedium   RiskLevel = "medium"
	RiskHigh     RiskLevel = "high"
	RiskCritical RiskLevel = "critical"
)

// alertNamespace seeds deterministic alert ids. Never change it: alert
// identity across runs depends on it.
var alertNamespace = uuid.MustParse("7a3e1c52-9b6f-4d08-a1e4-2f85c0d9b317")

// AlertID derives the deterministic alert identity from the user, rule,
// and the triggering window. Re-running generation over unchanged inputs
// yields the same id, making upserts idempotent.
func AlertID(userID string, alertType AlertType, windowKey string) uuid.UUID {
	return uuid.NewSHA1(alertNamespace, []byte(fmt.Sprintf("%s|%s|%s", userID, alertType, windowKey)))
}

// PredictiveAlert is a forward-looking risk warning. Mutated only to flip
// IsResolved/ResolvedAt; it becomes inactive automatically once
// now > ExpiresAt regardless of resolution.
type PredictiveAlert struct {
	ID                 uuid.UUID  `json:"id"`
	UserID             string     `json:"user_id"`
	Type               AlertType  `json:"alert_type"`
	RiskLevel          RiskLevel  `json:"risk_level"`
	Title              string     `json:"title"`
	Description        string     `json:"description"`
	PredictedImpact    string     `json:"predicted_impact"`
	RecommendedActions []string   `json:"recommended_actions"`
	TimelineDays       int        `json:"timeline_days"`
	ConfidenceScore    float64    `json:"confidence_score"`
	DataSources        []string   `json:"data_sources"`
	IsResolved         bool       `json:"is_resolved"`
	CreatedAt          time.Time  `json:"created_at"`
	ExpiresAt          time.Time  `json:"expires_at"`
	ResolvedAt         *time.Time `json:"resolved_at,omitempty"`
}

// Active reports whether the alert should be surfaced to the user at now.
func (a *PredictiveAlert) Active(now time.Time) bool {
	return !a.IsResolved && a.ExpiresAt.After(now)
}

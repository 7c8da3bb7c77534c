package handlers

import (
	"time"

	"github.com/aiwolfdial/aiwolf-nlp-log-picker/internal/export"
	"github.com/aiwolfdial/aiwolf-nlp-log-picker/internal/optimizer"
	"github.com/aiwolfdial/aiwolf-nlp-log-picker/internal/pattern"
)

// OptimizeRequest is the body of POST /api/v1/optimize: a pattern document
// plus policy parameters. Omitted parameters take their defaults.
type OptimizeRequest struct {
	Pattern        pattern.Document `json:"pattern"`
	Params         ParamsPayload    `json:"params"`
	OptimizationID string           `json:"optimization_id,omitempty"`
}

// ParamsPayload mirrors optimizer.Params with optional fields so callers can
// omit any of them.
type ParamsPayload struct {
	TargetMatches           *int     `json:"target_matches,omitempty"`
	BalanceWeight           *float64 `json:"balance_weight,omitempty"`
	MaxZeroRolesPerTeam     *int     `json:"max_zero_roles_per_team,omitempty"`
	CountOnlySeenRoles      *bool    `json:"count_only_seen_roles,omitempty"`
	RequireMinParticipation *bool    `json:"require_min_participation,omitempty"`
}

// Resolve overlays the payload on the defaults for a corpus of matchCount
// matches.
func (p ParamsPayload) Resolve(matchCount int) optimizer.Params {
	params := optimizer.DefaultParams(matchCount)
	if p.TargetMatches != nil {
		params.TargetMatches = *p.TargetMatches
	}
	if p.BalanceWeight != nil {
		params.BalanceWeight = *p.BalanceWeight
	}
	if p.MaxZeroRolesPerTeam != nil {
		params.MaxZeroRolesPerTeam = *p.MaxZeroRolesPerTeam
	}
	if p.CountOnlySeenRoles != nil {
		params.CountOnlySeenRoles = *p.CountOnlySeenRoles
	}
	if p.RequireMinParticipation != nil {
		params.RequireMinParticipation = *p.RequireMinParticipation
	}
	return params
}

// OptimizeResponse wraps the result report with the ID that progress updates
// were published under.
type OptimizeResponse struct {
	OptimizationID string `json:"optimization_id"`
	*export.Report
}

// ErrorResponse is the uniform error body.
type ErrorResponse struct {
	Error   string            `json:"error"`
	Code    string            `json:"code"`
	Details map[string]string `json:"details,omitempty"`
}

// SuccessResponse is the uniform success body for non-result endpoints.
type SuccessResponse struct {
	Message string                 `json:"message"`
	Data    map[string]interface{} `json:"data,omitempty"`
}

// HealthStatus reports service health per dependency.
type HealthStatus struct {
	Status    string            `json:"status"`
	Service   string            `json:"service"`
	Timestamp time.Time         `json:"timestamp"`
	Checks    map[string]string `json:"checks"`
}

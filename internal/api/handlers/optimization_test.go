package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aiwolfdial/aiwolf-nlp-log-picker/internal/pattern"
	"github.com/aiwolfdial/aiwolf-nlp-log-picker/internal/solver"
	"github.com/aiwolfdial/aiwolf-nlp-log-picker/internal/websocket"
	"github.com/aiwolfdial/aiwolf-nlp-log-picker/pkg/cache"
	"github.com/aiwolfdial/aiwolf-nlp-log-picker/pkg/config"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// namedStubSolver answers with a solution assembled from variable names, so
// tests do not depend on variable ordering inside the formulation.
type namedStubSolver struct {
	status solver.Status
	values map[string]float64
	err    error
}

func (s *namedStubSolver) Solve(ctx context.Context, prog *solver.Program) (*solver.Solution, error) {
	if s.err != nil {
		return nil, s.err
	}
	if s.status != solver.StatusOptimal {
		return &solver.Solution{Status: s.status}, nil
	}
	values := make([]float64, len(prog.Variables))
	objective := 0.0
	for i, v := range prog.Variables {
		values[i] = s.values[v.Name]
	}
	for _, term := range prog.Objective {
		objective += term.Coef * values[term.Var]
	}
	return &solver.Solution{Status: solver.StatusOptimal, Values: values, Objective: objective}, nil
}

func newTestHandler(slv solver.Solver) *OptimizationHandler {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	// No Redis behind this client; cache reads miss and writes warn.
	redisClient := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1"})
	return NewOptimizationHandler(
		slv,
		cache.NewResultCacheService(redisClient, log),
		websocket.NewHub(log),
		&config.Config{SolveTimeout: 5 * time.Second, CacheExpiration: time.Minute},
		log,
	)
}

func scenarioRequest() OptimizeRequest {
	return OptimizeRequest{
		Pattern: pattern.Document{
			IdxTeamMap: map[string]string{"0": "alpha", "1": "beta"},
			RoleNumMap: map[string]int{"WEREWOLF": 1},
			PatternOfMatches: []pattern.Match{
				{"WEREWOLF": []int{0}},
				{"WEREWOLF": []int{0, 1}},
				{"WEREWOLF": []int{1}},
				{"WEREWOLF": []int{0, 1}},
			},
		},
	}
}

func performJSON(t *testing.T, handler gin.HandlerFunc, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)

	router := gin.New()
	router.POST("/test", handler)

	req := httptest.NewRequest(http.MethodPost, "/test", bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestSelectMatchesOptimal(t *testing.T) {
	// The balanced selection {0, 2} with both teams at one appearance each.
	stub := &namedStubSolver{
		status: solver.StatusOptimal,
		values: map[string]float64{
			"match_0":                1,
			"match_2":                1,
			"team_participation_0":   1,
			"team_participation_1":   1,
			"team_0_role_WEREWOLF":   1,
			"team_1_role_WEREWOLF":   1,
			"w_team_0_role_WEREWOLF": 1,
			"w_team_1_role_WEREWOLF": 1,
			"max_participation":      1,
			"min_participation":      1,
			"max_role_WEREWOLF":      1,
			"min_role_WEREWOLF":      1,
		},
	}
	h := newTestHandler(stub)

	rec := performJSON(t, h.SelectMatches, scenarioRequest())
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		OptimizationID       string         `json:"optimization_id"`
		OptimizationStatus   string         `json:"optimization_status"`
		TotalMatchesSelected int            `json:"total_matches_selected"`
		BalanceScore         *float64       `json:"balance_score"`
		SelectedMatchIndices []int          `json:"selected_match_indices"`
		TeamParticipation    map[string]int `json:"team_participation"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	assert.NotEmpty(t, resp.OptimizationID)
	assert.Equal(t, "optimal", resp.OptimizationStatus)
	assert.Equal(t, 2, resp.TotalMatchesSelected)
	require.NotNil(t, resp.BalanceScore)
	assert.Equal(t, 0.0, *resp.BalanceScore)
	assert.Equal(t, []int{0, 2}, resp.SelectedMatchIndices)
	assert.Equal(t, map[string]int{"alpha": 1, "beta": 1}, resp.TeamParticipation)
}

func TestSelectMatchesInfeasible(t *testing.T) {
	h := newTestHandler(&namedStubSolver{status: solver.StatusInfeasible})

	rec := performJSON(t, h.SelectMatches, scenarioRequest())
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		OptimizationStatus string   `json:"optimization_status"`
		BalanceScore       *float64 `json:"balance_score"`
		Selected           []int    `json:"selected_match_indices"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "infeasible", resp.OptimizationStatus)
	assert.Nil(t, resp.BalanceScore)
	assert.Empty(t, resp.Selected)
}

func TestSelectMatchesSolverError(t *testing.T) {
	h := newTestHandler(&namedStubSolver{err: errors.New("solver crashed")})

	rec := performJSON(t, h.SelectMatches, scenarioRequest())
	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "OPTIMIZATION_ERROR", resp.Code)
}

func TestSelectMatchesKeepsRequestedID(t *testing.T) {
	h := newTestHandler(&namedStubSolver{status: solver.StatusInfeasible})

	req := scenarioRequest()
	req.OptimizationID = "run-42"
	rec := performJSON(t, h.SelectMatches, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		OptimizationID string `json:"optimization_id"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "run-42", resp.OptimizationID)
}

func TestSelectMatchesInvalidPattern(t *testing.T) {
	h := newTestHandler(&namedStubSolver{status: solver.StatusInfeasible})

	req := scenarioRequest()
	req.Pattern.IdxTeamMap = nil
	rec := performJSON(t, h.SelectMatches, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "INVALID_PATTERN", resp.Code)
}

func TestValidateRequest(t *testing.T) {
	h := newTestHandler(&namedStubSolver{status: solver.StatusInfeasible})

	rec := performJSON(t, h.ValidateRequest, scenarioRequest())
	require.Equal(t, http.StatusOK, rec.Code)

	var resp SuccessResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, float64(4), resp.Data["match_count"])
	assert.Equal(t, float64(2), resp.Data["team_count"])
	assert.Equal(t, float64(2), resp.Data["target_matches"])
}

func TestValidateRequestBadParams(t *testing.T) {
	h := newTestHandler(&namedStubSolver{status: solver.StatusInfeasible})

	target := 99
	req := scenarioRequest()
	req.Params.TargetMatches = &target
	rec := performJSON(t, h.ValidateRequest, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "INVALID_PARAMS", resp.Code)
}

func TestParamsPayloadResolve(t *testing.T) {
	assert.Equal(t, 2, ParamsPayload{}.Resolve(4).TargetMatches)

	target, weight, seen := 3, 2.5, false
	p := ParamsPayload{TargetMatches: &target, BalanceWeight: &weight, CountOnlySeenRoles: &seen}
	params := p.Resolve(4)
	assert.Equal(t, 3, params.TargetMatches)
	assert.Equal(t, 2.5, params.BalanceWeight)
	assert.False(t, params.CountOnlySeenRoles)
	// Untouched fields keep their defaults.
	assert.True(t, params.RequireMinParticipation)
}

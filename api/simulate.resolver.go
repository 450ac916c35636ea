package api

import (
	"fmt"
	"net/http"
	"strategysim/internal/domain"
	l2_service "strategysim/internal/service/l2"

	"github.com/gin-gonic/gin"
)

type SimulateRequest struct {
	Seed           int64   `json:"seed"`
	Horizon        int     `json:"horizon"`
	InitialCapital float64 `json:"initialCapital"`
	// overrides applied on top of the default baseline, held to the default ranges
	Parameters domain.ParameterSet `json:"parameters"`
	Trace      bool                `json:"trace"`
}

func (r SimulateRequest) parameterSet() (domain.ParameterSet, error) {
	return domain.DefaultBaseline().ApplyOverrides(r.Parameters, domain.DefaultRanges())
}

func (h ApiHandler) simulate(c *gin.Context) {
	var requestBody SimulateRequest
	if err := c.ShouldBindJSON(&requestBody); err != nil {
		returnErrorJsonCode(fmt.Errorf("failed to parse request: %w", err), c, http.StatusBadRequest)
		return
	}

	params, err := requestBody.parameterSet()
	if err != nil {
		returnErrorJsonCode(err, c, http.StatusBadRequest)
		return
	}

	simulator := l2_service.NewStrategySimulator(requestBody.Horizon, requestBody.InitialCapital, requestBody.Trace)
	result, err := simulator.Simulate(params, requestBody.Seed)
	if err != nil {
		returnErrorJsonCode(fmt.Errorf("failed to simulate: %w", err), c, statusForError(err))
		return
	}

	c.JSON(200, result)
}

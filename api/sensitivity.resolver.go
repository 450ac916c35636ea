package api

import (
	"fmt"
	"net/http"
	"strategysim/internal/domain"
	"time"

	"github.com/gin-gonic/gin"
)

// keeps a single request from pinning the box
const maxApiSimulations = 50_000

type SensitivityRequest struct {
	domain.AnalysisConfig
	MaxDurationMs int64 `json:"maxDurationMs"`
	// Persist stores the finished run so it can be fetched later
	Persist bool `json:"persist"`
}

func (r SensitivityRequest) config() (domain.AnalysisConfig, error) {
	cfg := r.AnalysisConfig
	if cfg.NumSimulations > maxApiSimulations {
		return cfg, fmt.Errorf("numSimulations %d exceeds limit of %d", cfg.NumSimulations, maxApiSimulations)
	}
	if r.MaxDurationMs > 0 {
		cfg.MaxDuration = time.Duration(r.MaxDurationMs) * time.Millisecond
	}
	return cfg, nil
}

type SensitivityResponse struct {
	RunID     string                 `json:"runId"`
	Timestamp time.Time              `json:"timestamp"`
	Seed      int64                  `json:"seed"`
	Persisted bool                   `json:"persisted"`
	Result    *domain.AnalysisResult `json:"result"`
}

func (h ApiHandler) sensitivity(c *gin.Context) {
	profile, endProfile := domain.NewProfile()
	ctx := domain.NewCtxWithProfile(c.Request.Context(), profile)
	defer endProfile()

	var requestBody SensitivityRequest
	if err := c.ShouldBindJSON(&requestBody); err != nil {
		returnErrorJsonCode(fmt.Errorf("failed to parse request: %w", err), c, http.StatusBadRequest)
		return
	}

	cfg, err := requestBody.config()
	if err != nil {
		returnErrorJsonCode(err, c, http.StatusBadRequest)
		return
	}

	result, err := h.SensitivityService.RunFullAnalysis(ctx, cfg)
	if err != nil {
		returnErrorJsonCode(fmt.Errorf("failed to run sensitivity analysis: %w", err), c, statusForError(err))
		return
	}

	doc, err := h.ReportService.BuildDocument(result)
	if err != nil {
		returnErrorJson(err, c)
		return
	}

	if requestBody.Persist {
		if _, err := h.ReportService.Save(*doc); err != nil {
			returnErrorJson(err, c)
			return
		}
	}

	c.JSON(200, SensitivityResponse{
		RunID:     doc.RunID.String(),
		Timestamp: doc.Timestamp,
		Seed:      doc.Seed,
		Persisted: requestBody.Persist,
		Result:    doc.Result,
	})
}

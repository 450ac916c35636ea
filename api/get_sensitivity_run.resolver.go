package api

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type sensitivityRunSummary struct {
	RunID          string    `json:"runId"`
	Seed           int64     `json:"seed"`
	NumSimulations int32     `json:"numSimulations"`
	NumFailed      int32     `json:"numFailed"`
	Partial        bool      `json:"partial"`
	CreatedAt      time.Time `json:"createdAt"`
}

func (h ApiHandler) getSensitivityRun(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		returnErrorJsonCode(fmt.Errorf("invalid run id: %w", err), c, http.StatusBadRequest)
		return
	}

	doc, err := h.ReportService.Load(id)
	if err != nil {
		returnErrorJson(err, c)
		return
	}
	if doc == nil {
		returnErrorJsonCode(fmt.Errorf("sensitivity run %s not found", id.String()), c, http.StatusNotFound)
		return
	}

	c.JSON(200, doc)
}

func (h ApiHandler) listSensitivityRuns(c *gin.Context) {
	limit := int64(50)
	if s := c.Query("limit"); s != "" {
		l, err := strconv.ParseInt(s, 10, 64)
		if err != nil || l <= 0 {
			returnErrorJsonCode(fmt.Errorf("invalid limit %q", s), c, http.StatusBadRequest)
			return
		}
		limit = l
	}

	runs, err := h.ReportService.List(limit)
	if err != nil {
		returnErrorJson(err, c)
		return
	}

	out := []sensitivityRunSummary{}
	for _, r := range runs {
		out = append(out, sensitivityRunSummary{
			RunID:          r.SensitivityRunID.String(),
			Seed:           r.Seed,
			NumSimulations: r.NumSimulations,
			NumFailed:      r.NumFailed,
			Partial:        r.Partial,
			CreatedAt:      r.CreatedAt,
		})
	}

	c.JSON(200, out)
}

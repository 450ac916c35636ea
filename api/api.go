package api

import (
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"strategysim/internal/app"
	"strategysim/internal/domain"
	"strategysim/internal/logger"
	l3_service "strategysim/internal/service/l3"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type ApiHandler struct {
	Db                 *sql.DB
	SensitivityService l3_service.SensitivityService
	ReportService      app.ReportService
}

func (m ApiHandler) InitializeRouterEngine() *gin.Engine {
	router := gin.Default()
	router.Use(cors.Default())
	router.Use(m.logRequestMiddleware)

	router.GET("/", func(ctx *gin.Context) {
		ctx.JSON(200, map[string]string{"message": "welcome to strategysim"})
	})
	router.POST("/simulate", m.simulate)
	router.POST("/sensitivity", m.sensitivity)
	router.GET("/sensitivity", m.listSensitivityRuns)
	router.GET("/sensitivity/:id", m.getSensitivityRun)

	return router
}

func (m ApiHandler) StartApi(port int) error {
	router := m.InitializeRouterEngine()
	return router.Run(fmt.Sprintf(":%d", port))
}

func returnErrorJson(err error, c *gin.Context) {
	returnErrorJsonCode(err, c, http.StatusInternalServerError)
}

func returnErrorJsonCode(err error, c *gin.Context, code int) {
	logger.FromContext(c.Request.Context()).Errorw("request failed", "status", code, "error", err.Error())
	c.AbortWithStatusJSON(code, gin.H{
		"error": err.Error(),
	})
}

// statusForError maps caller mistakes to 400 and everything else to 500
func statusForError(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidParameter),
		errors.Is(err, domain.ErrMalformedRange),
		errors.Is(err, domain.ErrInvalidObjective):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// logRequestMiddleware attaches a request scoped logger to the request
// context so services log with the request id
func (m ApiHandler) logRequestMiddleware(c *gin.Context) {
	requestID := uuid.New()
	log := zap.S().With(
		"requestId", requestID.String(),
		"method", c.Request.Method,
		"route", c.Request.URL.Path,
	)
	c.Request = c.Request.WithContext(logger.NewCtx(c.Request.Context(), log))

	start := time.Now().UTC()
	c.Next()

	log.Infow("request complete",
		"status", c.Writer.Status(),
		"durationMs", time.Since(start).Milliseconds(),
		"ip", c.ClientIP(),
	)
}

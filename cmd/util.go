package cmd

import (
	"database/sql"
	"fmt"
	"log"
	"strategysim/api"
	"strategysim/internal/app"
	"strategysim/internal/repository"
	l2_service "strategysim/internal/service/l2"
	l3_service "strategysim/internal/service/l3"
	"strategysim/internal/util"

	_ "github.com/lib/pq"
)

const defaultPort = 3009

func CloseDependencies(handler *api.ApiHandler) {
	if handler.Db == nil {
		return
	}
	err := handler.Db.Close()
	if err != nil {
		log.Fatalf("failed to close db: %v", err)
	}
}

// NewEngine wires the analysis services. db may be nil, in which case runs
// can't be persisted
func NewEngine(db *sql.DB) *api.ApiHandler {
	var sensitivityRunRepository repository.SensitivityRunRepository
	if db != nil {
		sensitivityRunRepository = repository.NewSensitivityRunRepository(db)
	}

	return &api.ApiHandler{
		Db:                 db,
		SensitivityService: l3_service.NewSensitivityService(l2_service.NewObjectiveService()),
		ReportService:      app.NewReportService(sensitivityRunRepository),
	}
}

func InitializeDependencies() (*api.ApiHandler, int, error) {
	secrets, err := util.LoadSecrets()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to load secrets: %w", err)
	}

	dbConn, err := sql.Open("postgres", secrets.Db.ToConnectionStr())
	if err != nil {
		return nil, 0, fmt.Errorf("failed to connect to db: %w", err)
	}

	port := secrets.Port
	if port == 0 {
		port = defaultPort
	}

	return NewEngine(dbConn), port, nil
}

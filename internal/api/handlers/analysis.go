package handlers

import (
	"scamshield-lab/internal/domain/services"
	"scamshield-lab/pkg/logger"
)

// AnalysisHandler handles the call, SMS, URL and combined analysis endpoints
type AnalysisHandler struct {
	service *services.AnalysisService
	logger  *logger.Logger
}

// NewAnalysisHandler creates a new AnalysisHandler
func NewAnalysisHandler(service *services.AnalysisService, log *logger.Logger) *AnalysisHandler {
	return &AnalysisHandler{
		service: service,
		logger:  log.WithComponent("analysis-handler"),
	}
}

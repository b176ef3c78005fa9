package handlers

import (
	"net/http"
	"strings"

	"scamshield-lab/internal/domain/models"
	"scamshield-lab/internal/domain/services"
)

// Defaults applied to omitted call fields
const (
	defaultCallDuration  = 30
	defaultCallFrequency = 1
)

// CallRequest is the request body for call analysis. Omitted fields take
// their defaults.
type CallRequest struct {
	PhoneNumber   string `json:"phone_number"`
	Duration      *int   `json:"duration,omitempty"`
	CallFrequency *int   `json:"call_frequency,omitempty"`
	IsUnknown     *bool  `json:"is_unknown,omitempty"`
	TimeOfDay     string `json:"time_of_day,omitempty"`
}

// Input converts the request into validated analyzer input
func (req CallRequest) Input() (models.CallInput, error) {
	in := models.CallInput{
		PhoneNumber:   services.SanitizeText(strings.TrimSpace(req.PhoneNumber)),
		Duration:      defaultCallDuration,
		CallFrequency: defaultCallFrequency,
		IsUnknown:     true,
		TimeOfDay:     models.TimeOfDayBusinessHours,
	}
	if req.Duration != nil {
		in.Duration = *req.Duration
	}
	if req.CallFrequency != nil {
		in.CallFrequency = *req.CallFrequency
	}
	if req.IsUnknown != nil {
		in.IsUnknown = *req.IsUnknown
	}
	if req.TimeOfDay != "" {
		in.TimeOfDay = models.TimeOfDay(req.TimeOfDay)
	}
	return in, in.Validate()
}

// CallResponse is the body of a successful call analysis
type CallResponse struct {
	Success bool `json:"success"`
	*models.CallAnalysisResult
}

// AnalyzeCall handles POST /api/v1/analyze/call
func (h *AnalysisHandler) AnalyzeCall(w http.ResponseWriter, r *http.Request) {
	var req CallRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, h.logger, http.StatusBadRequest, "Invalid request body")
		return
	}

	in, err := req.Input()
	if err != nil {
		respondServiceError(w, h.logger, err, "call analysis")
		return
	}

	result, err := h.service.AnalyzeCall(r.Context(), in)
	if err != nil {
		respondServiceError(w, h.logger, err, "call analysis")
		return
	}

	h.logger.Info().
		Float64("risk_score", result.Analysis.RiskScore).
		Str("risk_level", string(result.Analysis.RiskLevel)).
		Bool("is_scam", result.Analysis.IsScam).
		Msg("call analyzed")

	respondJSON(w, h.logger, http.StatusOK, CallResponse{Success: true, CallAnalysisResult: result})
}

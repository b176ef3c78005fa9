package handlers

import (
	"net/http"
	"strings"

	"scamshield-lab/internal/domain/models"
	"scamshield-lab/internal/domain/services"
)

// SMSRequest is the request body for SMS analysis
type SMSRequest struct {
	MessageText string `json:"message_text"`
	Sender      string `json:"sender,omitempty"`
}

// Input converts the request into validated analyzer input. Only the sender
// is sanitized; the body keeps characters such as '$' that carry signal.
func (req SMSRequest) Input() (models.MessageInput, error) {
	in := models.MessageInput{
		MessageText: strings.TrimSpace(req.MessageText),
		Sender:      services.SanitizeText(req.Sender),
	}
	if in.Sender == "" {
		in.Sender = models.DefaultSender
	}
	return in, in.Validate()
}

// SMSResponse is the body of a successful SMS analysis
type SMSResponse struct {
	Success bool `json:"success"`
	*models.SMSAnalysisResult
}

// AnalyzeSMS handles POST /api/v1/analyze/sms
func (h *AnalysisHandler) AnalyzeSMS(w http.ResponseWriter, r *http.Request) {
	var req SMSRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, h.logger, http.StatusBadRequest, "Invalid request body")
		return
	}

	in, err := req.Input()
	if err != nil {
		respondServiceError(w, h.logger, err, "SMS analysis")
		return
	}

	result, err := h.service.AnalyzeSMS(r.Context(), in)
	if err != nil {
		respondServiceError(w, h.logger, err, "SMS analysis")
		return
	}

	h.logger.Info().
		Float64("risk_score", result.Analysis.RiskScore).
		Str("risk_level", string(result.Analysis.RiskLevel)).
		Int("urls", len(result.Analysis.URLs)).
		Msg("SMS analyzed")

	respondJSON(w, h.logger, http.StatusOK, SMSResponse{Success: true, SMSAnalysisResult: result})
}

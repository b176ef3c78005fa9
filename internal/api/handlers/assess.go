package handlers

import (
	"net/http"

	"scamshield-lab/internal/domain/models"
)

// AssessRequest carries an optional call and an optional message
type AssessRequest struct {
	Call *CallRequest `json:"call,omitempty"`
	SMS  *SMSRequest  `json:"sms,omitempty"`
}

// AssessResponse is the body of a combined assessment
type AssessResponse struct {
	Success bool `json:"success"`
	*models.CombinedResult
}

// Assess handles POST /api/v1/assess
func (h *AnalysisHandler) Assess(w http.ResponseWriter, r *http.Request) {
	var req AssessRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, h.logger, http.StatusBadRequest, "Invalid request body")
		return
	}

	var call *models.CallInput
	if req.Call != nil {
		in, err := req.Call.Input()
		if err != nil {
			respondServiceError(w, h.logger, err, "assessment")
			return
		}
		call = &in
	}

	var msg *models.MessageInput
	if req.SMS != nil {
		in, err := req.SMS.Input()
		if err != nil {
			respondServiceError(w, h.logger, err, "assessment")
			return
		}
		msg = &in
	}

	result, err := h.service.Assess(r.Context(), call, msg)
	if err != nil {
		respondServiceError(w, h.logger, err, "assessment")
		return
	}

	respondJSON(w, h.logger, http.StatusOK, AssessResponse{Success: true, CombinedResult: result})
}

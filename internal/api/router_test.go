package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scamshield-lab/internal/api/handlers"
	"scamshield-lab/internal/config"
	"scamshield-lab/internal/domain/services"
	"scamshield-lab/pkg/logger"
)

func newTestRouter(t *testing.T, cfg config.Config) http.Handler {
	t.Helper()
	log := logger.NewNop()
	rules := services.DefaultRuleset()
	urls := services.NewURLAnalyzer(rules, log)
	svc := services.NewAnalysisService(services.AnalysisServiceDeps{
		Calls:  services.NewCallAnalyzer(rules, services.NoBackend(), log),
		SMS:    services.NewSMSAnalyzer(rules, urls, services.NoBackend(), log),
		URLs:   urls,
		Engine: services.NewRiskEngine(log),
		Logger: log,
	})
	h := handlers.NewHandlers(handlers.Dependencies{
		Service: svc,
		Version: "test",
		Logger:  log,
	})
	return NewRouter(cfg, h, nil, log).Setup()
}

func do(t *testing.T, router http.Handler, method, path, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewReader([]byte(body)))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var out map[string]any
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	}
	return rec, out
}

func TestRouter_Health(t *testing.T) {
	router := newTestRouter(t, config.Config{})

	rec, body := do(t, router, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, "test", body["version"])

	rec, body = do(t, router, http.MethodGet, "/ready", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ready", body["status"])
}

func TestRouter_AnalyzeCall(t *testing.T) {
	router := newTestRouter(t, config.Config{})

	rec, body := do(t, router, http.MethodPost, "/api/v1/analyze/call", `{
		"phone_number": "+234 801 234 5678",
		"duration": 8,
		"call_frequency": 3,
		"is_unknown": true,
		"time_of_day": "night"
	}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, true, body["success"])

	analysis := body["analysis"].(map[string]any)
	assert.Equal(t, 100.0, analysis["risk_score"])
	assert.Equal(t, "CRITICAL", analysis["risk_level"])
	assert.Equal(t, true, analysis["is_scam"])

	alert := body["alert"].(map[string]any)
	assert.Equal(t, "BLOCK AND REPORT", alert["recommended_action"])
	assert.Equal(t, "100%", alert["risk_percentage"])
	assert.NotContains(t, body, "analysis_id")
}

func TestRouter_AnalyzeCallDefaults(t *testing.T) {
	router := newTestRouter(t, config.Config{})

	rec, body := do(t, router, http.MethodPost, "/api/v1/analyze/call", `{"phone_number": "5552019438"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	analysis := body["analysis"].(map[string]any)
	assert.Equal(t, 30.0, analysis["duration"])
	assert.Equal(t, 1.0, analysis["call_frequency"])
	assert.Equal(t, true, analysis["is_unknown"])
	assert.Equal(t, "(555) 201-9438", analysis["formatted_number"])
}

func TestRouter_AnalyzeCallValidation(t *testing.T) {
	router := newTestRouter(t, config.Config{})

	tests := []struct {
		name string
		body string
	}{
		{"malformed", `{"phone_number":`},
		{"missing phone", `{"duration": 10}`},
		{"sanitized to empty", `{"phone_number": "<>;"}`},
		{"negative duration", `{"phone_number": "5551234567", "duration": -1}`},
		{"zero frequency", `{"phone_number": "5551234567", "call_frequency": 0}`},
		{"bad time", `{"phone_number": "5551234567", "time_of_day": "noon"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, body := do(t, router, http.MethodPost, "/api/v1/analyze/call", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, false, body["success"])
			assert.NotEmpty(t, body["error"])
		})
	}
}

func TestRouter_AnalyzeSMS(t *testing.T) {
	router := newTestRouter(t, config.Config{})

	rec, body := do(t, router, http.MethodPost, "/api/v1/analyze/sms", `{
		"message_text": "URGENT! Your bank account has been suspended due to unusual activity. Verify immediately at http://secure-verify.tk/account or face legal action!!"
	}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	analysis := body["analysis"].(map[string]any)
	assert.Equal(t, "Unknown", analysis["sender"])
	assert.Equal(t, "CRITICAL", analysis["risk_level"])
	assert.Equal(t, []any{"http://secure-verify.tk/account"}, analysis["urls"])

	rec, _ = do(t, router, http.MethodPost, "/api/v1/analyze/sms", `{"message_text": "  "}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	long := strings.Repeat("a", 5001)
	rec, _ = do(t, router, http.MethodPost, "/api/v1/analyze/sms", `{"message_text": "`+long+`"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRouter_CheckURL(t *testing.T) {
	router := newTestRouter(t, config.Config{})

	rec, body := do(t, router, http.MethodPost, "/api/v1/analyze/url", `{"url": "http://secure-banking-verify.tk/account"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 80.0, body["risk_score"])
	assert.Equal(t, true, body["is_suspicious"])
	assert.Contains(t, body["recommendation"], "DANGER")

	rec, _ = do(t, router, http.MethodPost, "/api/v1/analyze/url", `{"url": " "}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRouter_CheckURLBatch(t *testing.T) {
	router := newTestRouter(t, config.Config{})

	rec, body := do(t, router, http.MethodPost, "/api/v1/analyze/url/batch",
		`{"urls": ["https://google.com", "http://192.168.1.1/login", "http://[::1"]}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 3.0, body["total"])
	assert.Equal(t, 2.0, body["dangerous"])

	results := body["results"].([]any)
	require.Len(t, results, 3)
	assert.Equal(t, "https://google.com", results[0].(map[string]any)["url"])
	assert.NotEmpty(t, results[2].(map[string]any)["error"])

	rec, _ = do(t, router, http.MethodPost, "/api/v1/analyze/url/batch", `{"urls": []}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	urls := make([]string, handlers.MaxURLBatch+1)
	for i := range urls {
		urls[i] = "https://example.com"
	}
	payload, err := json.Marshal(map[string]any{"urls": urls})
	require.NoError(t, err)
	rec, body = do(t, router, http.MethodPost, "/api/v1/analyze/url/batch", string(payload))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Maximum 100 URLs per batch", body["error"])
}

func TestRouter_Assess(t *testing.T) {
	router := newTestRouter(t, config.Config{})

	rec, body := do(t, router, http.MethodPost, "/api/v1/assess", `{}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assessment := body["assessment"].(map[string]any)
	assert.Equal(t, "LOW", assessment["risk_level"])
	assert.Equal(t, 0.0, assessment["overall_risk_score"])

	rec, body = do(t, router, http.MethodPost, "/api/v1/assess", `{
		"call": {"phone_number": "+2348012345678", "duration": 8, "call_frequency": 3, "time_of_day": "night"},
		"sms": {"message_text": "Your package has been delivered. Reply STOP to unsubscribe.", "sender": "+15551234567"}
	}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assessment = body["assessment"].(map[string]any)
	// 100 * 0.45 + 0 * 0.55
	assert.Equal(t, 45.0, assessment["overall_risk_score"])
	assert.Equal(t, "MEDIUM", assessment["risk_level"])
	assert.Equal(t, []any{"call", "sms"}, assessment["risk_sources"])

	rec, _ = do(t, router, http.MethodPost, "/api/v1/assess", `{"call": {"phone_number": ""}}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRouter_HistoryDisabled(t *testing.T) {
	router := newTestRouter(t, config.Config{})

	rec, _ := do(t, router, http.MethodGet, "/api/v1/analyses/call", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	rec, _ = do(t, router, http.MethodGet, "/api/v1/analyses/email", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = do(t, router, http.MethodGet, "/api/v1/analyses/call?limit=zero", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = do(t, router, http.MethodGet, "/api/v1/statistics", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	rec, _ = do(t, router, http.MethodGet, "/api/v1/statistics?days=-3", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRouter_Tips(t *testing.T) {
	router := newTestRouter(t, config.Config{})

	rec, body := do(t, router, http.MethodGet, "/api/v1/tips", "")
	require.Equal(t, http.StatusOK, rec.Code)
	tips := body["tips"].(map[string]any)
	assert.Len(t, tips["general"], 5)
	assert.Len(t, tips["call"], 4)
	assert.Len(t, tips["sms"], 4)
}

func TestRouter_NotFound(t *testing.T) {
	router := newTestRouter(t, config.Config{})

	rec, body := do(t, router, http.MethodGet, "/api/v2/nothing", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Resource not found", body["error"])
}

func TestRouter_APIKeyAuth(t *testing.T) {
	cfg := config.Config{Auth: config.AuthConfig{APIKeys: []string{"k1"}}}
	router := newTestRouter(t, cfg)

	rec, _ := do(t, router, http.MethodGet, "/api/v1/tips", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/tips", nil)
	req.Header.Set("Authorization", "Bearer k1")
	ok := httptest.NewRecorder()
	router.ServeHTTP(ok, req)
	assert.Equal(t, http.StatusOK, ok.Code)

	// health stays public
	rec, _ = do(t, router, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

package signalapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"signalgen/internal/services"
	"signalgen/internal/signal"
)

type generatePayload struct {
	Type         string `json:"type"`
	Duration     int    `json:"duration"`
	SamplingRate int    `json:"sampling_rate"`
}

type generateResponse struct {
	Success   *bool  `json:"success"`
	SessionID string `json:"session_id"`
	Error     string `json:"error"`
	Data      struct {
		CSVPath      string   `json:"csv_path"`
		FeaturesPath string   `json:"features_path"`
		PlotPath     string   `json:"plot_path"`
		Channels     []string `json:"channels"`
		Duration     int      `json:"duration"`
		SamplingRate int      `json:"sampling_rate"`
	} `json:"data"`
}

// Generate asks the service to synthesize a signal. Service rejections return
// *services.GenerationError carrying the service's reason; transport failures
// and timeouts match services.ErrNetwork. Out-of-range settings are refused
// before any request is sent.
func (c *Client) Generate(ctx context.Context, req signal.GenerationRequest) (signal.GenerationResult, error) {
	if err := req.Validate(); err != nil {
		return signal.GenerationResult{}, err
	}
	ctx, cancel := context.WithTimeout(ctx, c.cfg.GenerateTimeout)
	defer cancel()

	payload := generatePayload{
		Type:         req.PatternID,
		Duration:     req.Settings.DurationSeconds,
		SamplingRate: req.Settings.SamplingRateHz,
	}
	resp, err := c.do(ctx, "generate", http.MethodPost, fmt.Sprintf("%s/generate/%s", c.cfg.BaseURL, req.Family), payload)
	if err != nil {
		return signal.GenerationResult{}, services.Wrap(services.ErrNetwork, "signalapi", "generate", "request failed", err)
	}
	defer drainClose(resp)

	if resp.StatusCode >= 300 {
		se := newStatusError(resp)
		reason := se.Message
		if reason == "" {
			reason = strings.TrimSpace(se.Body)
		}
		return signal.GenerationResult{}, &services.GenerationError{Reason: reason, StatusCode: se.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxArtifactBytes))
	if err != nil {
		return signal.GenerationResult{}, services.Wrap(services.ErrNetwork, "signalapi", "generate", "read response", err)
	}
	var decoded generateResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return signal.GenerationResult{}, &services.GenerationError{Reason: "malformed response: " + err.Error(), StatusCode: resp.StatusCode}
	}
	// Older services omit success; only an explicit false is a rejection.
	if decoded.Success != nil && !*decoded.Success {
		reason := strings.TrimSpace(decoded.Error)
		if reason == "" {
			reason = "service reported failure"
		}
		return signal.GenerationResult{}, &services.GenerationError{Reason: reason, StatusCode: resp.StatusCode}
	}
	if strings.TrimSpace(decoded.SessionID) == "" {
		return signal.GenerationResult{}, &services.GenerationError{Reason: "response missing session_id", StatusCode: resp.StatusCode}
	}

	result := signal.GenerationResult{
		SessionID:       decoded.SessionID,
		Family:          req.Family,
		PatternID:       req.PatternID,
		PlotPath:        decoded.Data.PlotPath,
		CSVPath:         decoded.Data.CSVPath,
		FeaturesPath:    decoded.Data.FeaturesPath,
		DurationSeconds: decoded.Data.Duration,
		SamplingRateHz:  decoded.Data.SamplingRate,
		Channels:        decoded.Data.Channels,
		GeneratedAt:     c.now().UTC(),
	}
	if result.DurationSeconds == 0 {
		result.DurationSeconds = req.Settings.DurationSeconds
	}
	if result.SamplingRateHz == 0 {
		result.SamplingRateHz = req.Settings.SamplingRateHz
	}
	return result, nil
}

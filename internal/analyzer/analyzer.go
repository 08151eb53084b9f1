// Package analyzer implements the remote AI security analysis client.
//
// It is pure glue around a completion API: serialize a packet summary,
// post it, parse the completion text as JSON. It never sees the decoder's
// structured output and its failures never affect the capture loop.
package analyzer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/framewatch/framewatch/internal/config"
	"github.com/framewatch/framewatch/internal/core"
)

// SecurityAnalysis is the parsed verdict returned by the remote model.
type SecurityAnalysis struct {
	SecurityScore    float64  `json:"security_score"` // 0.0 (insecure) to 1.0 (secure)
	PotentialThreats []string `json:"potential_threats"`
	Recommendations  []string `json:"recommendations"`
}

// completionRequest is the completion API request payload.
type completionRequest struct {
	Model     string `json:"model"`
	Prompt    string `json:"prompt"`
	MaxTokens int    `json:"max_tokens"`
}

// completionResponse is the completion API response payload.
type completionResponse struct {
	Choices []struct {
		Text string `json:"text"`
	} `json:"choices"`
}

// Client calls the completion API.
type Client struct {
	endpoint   string
	model      string
	apiKey     string
	httpClient *http.Client
}

// NewClient builds a client from config.
func NewClient(cfg config.AnalyzerConfig) *Client {
	timeout := time.Duration(cfg.TimeoutSec) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		endpoint: cfg.Endpoint,
		model:    cfg.Model,
		apiKey:   cfg.APIKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

const promptTemplate = `You are a network security expert. Analyze the security of this network packet:

%s

Provide your analysis in the following JSON format:
{
  "security_score": <float between 0.0 (insecure) to 1.0 (secure)>,
  "potential_threats": [<list of potential threat strings>],
  "recommendations": [<list of recommendation strings>]
}

Return only valid JSON without any additional text.`

// packetSummary renders the raw packet reference the model receives:
// length, capture timestamp, and the first 50 bytes as hex.
func packetSummary(pkt core.RawPacket) string {
	limit := len(pkt.Data)
	if limit > 50 {
		limit = 50
	}
	hexBytes := make([]string, limit)
	for i := 0; i < limit; i++ {
		hexBytes[i] = fmt.Sprintf("%02x", pkt.Data[i])
	}
	return fmt.Sprintf(
		"Packet length: %d, Timestamp: %d.%06d, Data (first 50 bytes, hex): %s",
		len(pkt.Data),
		pkt.Timestamp.Unix(),
		pkt.Timestamp.Nanosecond()/1000,
		strings.Join(hexBytes, " "),
	)
}

// AnalyzePacket submits one captured packet for a security assessment.
// Transport failures, non-2xx statuses, and unparseable completions all
// return an error.
func (c *Client) AnalyzePacket(ctx context.Context, pkt core.RawPacket) (*SecurityAnalysis, error) {
	payload := completionRequest{
		Model:     c.model,
		Prompt:    fmt.Sprintf(promptTemplate, packetSummary(pkt)),
		MaxTokens: 1000,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode analyzer request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("analyzer request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("analyzer request failed: status %s", resp.Status)
	}

	var completion completionResponse
	if err := json.NewDecoder(resp.Body).Decode(&completion); err != nil {
		return nil, fmt.Errorf("failed to decode analyzer response: %w", err)
	}
	if len(completion.Choices) == 0 {
		return nil, fmt.Errorf("analyzer response contained no choices")
	}

	var analysis SecurityAnalysis
	if err := json.Unmarshal([]byte(completion.Choices[0].Text), &analysis); err != nil {
		return nil, fmt.Errorf("failed to parse security analysis: %w", err)
	}
	return &analysis, nil
}

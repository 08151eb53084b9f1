package analyzer

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/framewatch/framewatch/internal/config"
	"github.com/framewatch/framewatch/internal/core"
)

func testPacket() core.RawPacket {
	return core.RawPacket{
		Data:      []byte{0x00, 0x11, 0x22, 0x33, 0x44, 0x55, 0xAA, 0xBB, 0xCC, 0xDD, 0xEE, 0xFF, 0x08, 0x00},
		Timestamp: time.Unix(1700000000, 123456000),
	}
}

func newTestClient(url string) *Client {
	return NewClient(config.AnalyzerConfig{
		Endpoint:   url,
		Model:      "deepseek-coder",
		APIKey:     "sk-test",
		TimeoutSec: 5,
	})
}

func TestAnalyzePacket(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req completionRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "deepseek-coder", req.Model)
		assert.Contains(t, req.Prompt, "Packet length: 14")
		assert.Contains(t, req.Prompt, "00 11 22 33 44 55")

		resp := map[string]any{
			"choices": []map[string]string{
				{"text": `{"security_score":0.85,"potential_threats":["unencrypted traffic"],"recommendations":["use TLS"]}`},
			},
		}
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	}))
	defer srv.Close()

	analysis, err := newTestClient(srv.URL).AnalyzePacket(context.Background(), testPacket())
	require.NoError(t, err)
	assert.InDelta(t, 0.85, analysis.SecurityScore, 0.001)
	assert.Equal(t, []string{"unencrypted traffic"}, analysis.PotentialThreats)
	assert.Equal(t, []string{"use TLS"}, analysis.Recommendations)
}

func TestAnalyzePacketServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).AnalyzePacket(context.Background(), testPacket())
	assert.Error(t, err)
}

func TestAnalyzePacketMalformedCompletion(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		resp := map[string]any{
			"choices": []map[string]string{{"text": "sorry, not json"}},
		}
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).AnalyzePacket(context.Background(), testPacket())
	assert.Error(t, err)
}

func TestAnalyzePacketNoChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewEncoder(w).Encode(map[string]any{"choices": []any{}}))
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).AnalyzePacket(context.Background(), testPacket())
	assert.Error(t, err)
}

func TestPacketSummaryTruncatesAtFiftyBytes(t *testing.T) {
	pkt := core.RawPacket{
		Data:      make([]byte, 120),
		Timestamp: time.Unix(0, 0),
	}
	summary := packetSummary(pkt)
	assert.Contains(t, summary, "Packet length: 120")

	parts := strings.SplitAfter(summary, "hex): ")
	require.Len(t, parts, 2)
	assert.Len(t, strings.Fields(parts[1]), 50)
}

package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"care-advisor/internal/dto"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubAdvisor struct {
	resp     dto.AdvisoryResponse
	requests []dto.AdvisoryRequest
}

func (s *stubAdvisor) Advise(_ context.Context, req dto.AdvisoryRequest) dto.AdvisoryResponse {
	s.requests = append(s.requests, req)
	return s.resp
}

func newTestApp(advisor Advisor) *fiber.App {
	app := fiber.New()
	h := NewAdvisoryHandler(advisor, zap.NewNop())
	app.Post("/advisory", h.Advise)
	app.Get("/health", NewHealthHandler(8, "openai", true).Health)
	return app
}

func postJSON(t *testing.T, app *fiber.App, body string) (int, map[string]any) {
	t.Helper()
	req := httptest.NewRequest("POST", "/advisory", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	return resp.StatusCode, decoded
}

func TestAdvisoryHandler_Advise(t *testing.T) {
	advisor := &stubAdvisor{resp: dto.SolutionResponse("Automated Care Messaging", "ACM Messenger", "Sends reminders.", "", "", "")}
	app := newTestApp(advisor)

	status, body := postJSON(t, app, `{"message": "  reminder calls  ", "page_url": "https://example.com/x"}`)

	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "solution", body["type"])
	assert.Equal(t, "ACM Messenger", body["feature"])
	assert.NotContains(t, body, "roi")
	require.Len(t, advisor.requests, 1)
	assert.Equal(t, "reminder calls", advisor.requests[0].Message)
	assert.Equal(t, "https://example.com/x", advisor.requests[0].PageURL)
}

func TestAdvisoryHandler_NoMatchIsOK(t *testing.T) {
	app := newTestApp(&stubAdvisor{resp: dto.NoMatchResponse("")})

	status, body := postJSON(t, app, `{"message": "zzzz"}`)

	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, dto.TypeNoMatch, body["type"])
	assert.Equal(t, dto.NoMatchMessage, body["message"])
}

func TestAdvisoryHandler_BadRequests(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{"empty message", `{"message": "   "}`, "Message is required"},
		{"missing message", `{}`, "Message is required"},
		{"malformed json", `{"message": `, "Invalid request body"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			advisor := &stubAdvisor{}
			status, body := postJSON(t, newTestApp(advisor), tt.body)

			assert.Equal(t, fiber.StatusBadRequest, status)
			assert.Equal(t, tt.wantErr, body["error"])
			assert.Empty(t, advisor.requests)
		})
	}
}

func TestHealthHandler(t *testing.T) {
	resp, err := newTestApp(&stubAdvisor{}).Test(httptest.NewRequest("GET", "/health", nil))
	require.NoError(t, err)
	defer resp.Body.Close()

	var body dto.HealthResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, dto.HealthResponse{Status: "ok", CatalogRecords: 8, Provider: "openai", AuditEnabled: true}, body)
}

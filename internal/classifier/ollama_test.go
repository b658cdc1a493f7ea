package classifier

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/christiano-developer/gaur/internal/models"
)

func writeTempScreenshot(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "post.png")
	if err := os.WriteFile(path, []byte("fake-png-bytes"), 0o644); err != nil {
		t.Fatalf("failed to write screenshot: %v", err)
	}
	return path
}

func TestVisionClassifierClassify(t *testing.T) {
	var gotReq ollamaRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/generate" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Fatalf("failed to decode request: %v", err)
		}

		analysis := `{"is_fraud": true, "fraud_score": 0.75, "risk_level": "HIGH", "fraud_type": "investment_scam", "reasoning": "guaranteed returns in screenshot"}`
		json.NewEncoder(w).Encode(ollamaResponse{Response: analysis})
	}))
	defer server.Close()

	c := NewVisionClassifier(OllamaConfig{BaseURL: server.URL}, nil, nil)

	result, err := c.Classify(context.Background(), models.RawPost{ScreenshotPath: writeTempScreenshot(t)})
	if err != nil {
		t.Fatalf("classify failed: %v", err)
	}

	if result.Score != 0.75 {
		t.Fatalf("expected score 0.75, got %f", result.Score)
	}
	if result.FraudType != models.FraudTypeInvestment {
		t.Fatalf("expected investment scam, got %s", result.FraudType)
	}
	if result.AnalysisMethod != AnalysisMethodVision {
		t.Fatalf("expected analysis method %s, got %s", AnalysisMethodVision, result.AnalysisMethod)
	}

	if gotReq.Model != "llama3.2-vision" {
		t.Fatalf("expected default vision model, got %s", gotReq.Model)
	}
	if gotReq.Stream {
		t.Fatal("expected non-streaming request")
	}
	if gotReq.Format != "json" {
		t.Fatalf("expected json format, got %s", gotReq.Format)
	}
	if len(gotReq.Images) != 1 || gotReq.Images[0] == "" {
		t.Fatal("expected one base64 image in request")
	}
	if gotReq.Options.Temperature != 0.1 {
		t.Fatalf("expected temperature 0.1, got %f", gotReq.Options.Temperature)
	}
}

func TestVisionClassifierNoScreenshot(t *testing.T) {
	c := NewVisionClassifier(OllamaConfig{}, nil, nil)

	_, err := c.Classify(context.Background(), models.RawPost{Text: "no screenshot here"})
	if err == nil {
		t.Fatal("expected error when post has no screenshot")
	}
}

func TestVisionClassifierMissingFile(t *testing.T) {
	c := NewVisionClassifier(OllamaConfig{}, nil, nil)

	_, err := c.Classify(context.Background(), models.RawPost{ScreenshotPath: "/nonexistent/shot.png"})
	if err == nil {
		t.Fatal("expected error for missing screenshot file")
	}
}

func TestVisionClassifierServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not loaded", http.StatusInternalServerError)
	}))
	defer server.Close()

	c := NewVisionClassifier(OllamaConfig{BaseURL: server.URL}, nil, nil)

	_, err := c.Classify(context.Background(), models.RawPost{ScreenshotPath: writeTempScreenshot(t)})
	if err == nil {
		t.Fatal("expected error for server failure")
	}
}

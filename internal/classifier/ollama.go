package classifier

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/christiano-developer/gaur/internal/models"
	"github.com/christiano-developer/gaur/pkg/clients"
	"github.com/christiano-developer/gaur/pkg/logging"
)

// AnalysisMethodVision labels verdicts from the screenshot backend.
const AnalysisMethodVision = "vision"

// OllamaConfig configures the vision analysis backend.
type OllamaConfig struct {
	BaseURL string
	Model   string
	Timeout time.Duration
}

// VisionClassifier analyzes post screenshots through an Ollama vision model.
type VisionClassifier struct {
	client  *http.Client
	baseURL string
	model   string
	breaker *clients.CircuitBreaker
	logger  logging.Logger
}

// NewVisionClassifier creates the screenshot backend. Vision inference is
// slow, so the default timeout is three minutes.
func NewVisionClassifier(cfg OllamaConfig, breaker *clients.CircuitBreaker, logger logging.Logger) *VisionClassifier {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	model := cfg.Model
	if model == "" {
		model = "llama3.2-vision"
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 180 * time.Second
	}
	return &VisionClassifier{
		client:  &http.Client{Timeout: timeout},
		baseURL: baseURL,
		model:   model,
		breaker: breaker,
		logger:  logger,
	}
}

func (c *VisionClassifier) Name() string {
	return AnalysisMethodVision
}

// Classify reads the post's screenshot, sends it for vision analysis, and
// normalizes the verdict.
func (c *VisionClassifier) Classify(ctx context.Context, post models.RawPost) (models.ClassificationResult, error) {
	if post.ScreenshotPath == "" {
		return models.ClassificationResult{}, fmt.Errorf("%w: no screenshot for post", ErrNotConfigured)
	}

	imageData, err := os.ReadFile(post.ScreenshotPath)
	if err != nil {
		return models.ClassificationResult{}, fmt.Errorf("read screenshot: %w", err)
	}
	encoded := base64.StdEncoding.EncodeToString(imageData)

	var result models.ClassificationResult
	call := func() error {
		resp, err := c.generate(ctx, encoded)
		if err != nil {
			return err
		}
		result = normalize(resp, AnalysisMethodVision)
		return nil
	}

	if c.breaker != nil {
		err = c.breaker.Call(call)
	} else {
		err = call()
	}
	if err != nil {
		return models.ClassificationResult{}, err
	}
	return result, nil
}

type ollamaRequest struct {
	Model   string        `json:"model"`
	Prompt  string        `json:"prompt"`
	Images  []string      `json:"images"`
	Stream  bool          `json:"stream"`
	Format  string        `json:"format"`
	Options ollamaOptions `json:"options"`
}

type ollamaOptions struct {
	Temperature float64 `json:"temperature"`
	NumPredict  int     `json:"num_predict"`
}

type ollamaResponse struct {
	Response string `json:"response"`
}

func (c *VisionClassifier) generate(ctx context.Context, imageBase64 string) (backendResponse, error) {
	reqBody := ollamaRequest{
		Model:  c.model,
		Prompt: visionPrompt,
		Images: []string{imageBase64},
		Stream: false,
		Format: "json",
		Options: ollamaOptions{
			Temperature: 0.1,
			NumPredict:  300,
		},
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return backendResponse{}, fmt.Errorf("ollama: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/generate", bytes.NewReader(payload))
	if err != nil {
		return backendResponse{}, fmt.Errorf("ollama: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return backendResponse{}, fmt.Errorf("ollama: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return backendResponse{}, fmt.Errorf("ollama: unexpected status %s: %s", resp.Status, strings.TrimSpace(string(body)))
	}

	var gen ollamaResponse
	if err := json.NewDecoder(resp.Body).Decode(&gen); err != nil {
		return backendResponse{}, fmt.Errorf("ollama: decode response: %w", err)
	}

	var analysis backendResponse
	if err := json.Unmarshal([]byte(gen.Response), &analysis); err != nil {
		return backendResponse{}, fmt.Errorf("ollama: invalid analysis JSON: %w", err)
	}
	return analysis, nil
}

const visionPrompt = `Analyze this social media post for fraud. Look for:
- Scam keywords: advance payment, UPI, cheap hotel, guaranteed returns, urgent, limited offer
- Phone numbers in post
- Excessive discounts (50%+ off)
- Pressure tactics

Extract username and post text.

Return JSON:
{
    "is_fraud": true/false,
    "fraud_score": 0.0-1.0,
    "risk_level": "HIGH"/"MEDIUM"/"LOW",
    "fraud_type": "hotel_booking_scam"/"investment_scam"/"advance_payment_fraud"/"legitimate",
    "reasoning": "brief explanation",
    "username": "author name",
    "content": "post text",
    "language": "eng"/"hin"/"mar"/"mixed",
    "red_flags": ["issues found"],
    "matched_keywords": ["fraud keywords"]
}`

package classifier

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
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

// AnalysisMethodRemoteVision labels verdicts from the OpenAI screenshot
// backend.
const AnalysisMethodRemoteVision = "gpt_vision"

// RemoteVisionClassifier analyzes post screenshots through an
// OpenAI-compatible vision model. Remote inference is much faster than the
// local vision backend, so when both are configured this one runs first.
type RemoteVisionClassifier struct {
	client  *http.Client
	apiKey  string
	apiURL  string
	model   string
	breaker *clients.CircuitBreaker
	logger  logging.Logger
}

// NewRemoteVisionClassifier creates the remote screenshot backend. The
// breaker is optional; when its circuit is open the classifier fails fast
// without calling out.
func NewRemoteVisionClassifier(cfg OpenAIConfig, breaker *clients.CircuitBreaker, logger logging.Logger) *RemoteVisionClassifier {
	apiURL := strings.TrimRight(cfg.APIURL, "/")
	if apiURL == "" {
		apiURL = "https://api.openai.com/v1"
	}
	model := cfg.Model
	if model == "" {
		model = "gpt-4o"
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 60 * time.Second
	}
	return &RemoteVisionClassifier{
		client:  &http.Client{Timeout: timeout},
		apiKey:  cfg.APIKey,
		apiURL:  apiURL,
		model:   model,
		breaker: breaker,
		logger:  logger,
	}
}

func (c *RemoteVisionClassifier) Name() string {
	return AnalysisMethodRemoteVision
}

// Classify reads the post's screenshot, sends it for remote vision analysis,
// and normalizes the verdict.
func (c *RemoteVisionClassifier) Classify(ctx context.Context, post models.RawPost) (models.ClassificationResult, error) {
	if c.apiKey == "" {
		return models.ClassificationResult{}, fmt.Errorf("%w: missing API key", ErrNotConfigured)
	}
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
		resp, err := c.complete(ctx, encoded)
		if err != nil {
			return err
		}
		result = normalize(resp, AnalysisMethodRemoteVision)
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

type visionChatRequest struct {
	Model          string              `json:"model"`
	Messages       []visionChatMessage `json:"messages"`
	MaxTokens      int                 `json:"max_tokens"`
	Temperature    float64             `json:"temperature"`
	ResponseFormat responseFormat      `json:"response_format"`
}

type visionChatMessage struct {
	Role    string        `json:"role"`
	Content []contentPart `json:"content"`
}

type contentPart struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *imageURL `json:"image_url,omitempty"`
}

type imageURL struct {
	URL    string `json:"url"`
	Detail string `json:"detail,omitempty"`
}

func (c *RemoteVisionClassifier) complete(ctx context.Context, imageBase64 string) (backendResponse, error) {
	reqBody := visionChatRequest{
		Model: c.model,
		Messages: []visionChatMessage{
			{
				Role: "user",
				Content: []contentPart{
					{Type: "text", Text: remoteVisionPrompt},
					{
						Type: "image_url",
						ImageURL: &imageURL{
							URL:    "data:image/png;base64," + imageBase64,
							Detail: "high",
						},
					},
				},
			},
		},
		MaxTokens:      500,
		Temperature:    0.1,
		ResponseFormat: responseFormat{Type: "json_object"},
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return backendResponse{}, fmt.Errorf("openai vision: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return backendResponse{}, fmt.Errorf("openai vision: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return backendResponse{}, fmt.Errorf("openai vision: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		body, _ := io.ReadAll(resp.Body)
		return backendResponse{}, fmt.Errorf("openai vision: unexpected status %s: %s", resp.Status, strings.TrimSpace(string(body)))
	}

	var chat chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chat); err != nil {
		return backendResponse{}, fmt.Errorf("openai vision: decode response: %w", err)
	}
	if len(chat.Choices) == 0 {
		return backendResponse{}, errors.New("openai vision: empty choices in response")
	}

	var analysis backendResponse
	if err := json.Unmarshal([]byte(chat.Choices[0].Message.Content), &analysis); err != nil {
		return backendResponse{}, fmt.Errorf("openai vision: invalid analysis JSON: %w", err)
	}
	return analysis, nil
}

const remoteVisionPrompt = `Analyze this social media post screenshot for fraud indicators.

You are analyzing posts for cyber patrol. Check for:

FRAUD INDICATORS:
- Scam keywords: advance payment, send money, UPI, Paytm, PhonePe, cheap hotel, free trip, guaranteed returns, limited offer, urgent, act now
- Hindi/Marathi fraud keywords: पैसे भेजो, बुकिंग, सस्ता, मुफ्त, तुरंत
- Phone numbers displayed prominently
- Excessive discounts (50%+ off)
- Fake payment screenshots
- Pressure tactics (urgent, limited time, act now)
- Too-good-to-be-true offers
- Multiple payment methods mentioned

EXTRACT:
- Author/username
- Post text content
- Language (English/Hindi/Marathi/Mixed)

SCORING:
- 0.0-0.3: Legitimate
- 0.4-0.6: Suspicious
- 0.7-1.0: Fraud

Return ONLY valid JSON:
{
    "is_fraud": true/false,
    "fraud_score": 0.85,
    "risk_level": "HIGH"/"MEDIUM"/"LOW",
    "fraud_type": "hotel_booking_scam"/"investment_scam"/"advance_payment_fraud"/"gambling_scam"/"legitimate",
    "reasoning": "brief explanation",
    "username": "extracted author name",
    "content": "extracted post text",
    "language": "eng"/"hin"/"mar"/"mixed",
    "red_flags": ["specific issues found"],
    "matched_keywords": ["fraud keywords found"]
}

Be precise and factual.`

package classifier

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/christiano-developer/gaur/internal/models"
	"github.com/christiano-developer/gaur/pkg/clients"
	"github.com/christiano-developer/gaur/pkg/logging"
)

const (
	// maxContentChars bounds the text sent to the chat completions API.
	// Overlong input is truncated and marked, never rejected.
	maxContentChars = 15000

	// minContentChars is the minimum meaningful input after cleaning.
	minContentChars = 50

	// AnalysisMethodHTML labels verdicts from the text/HTML backend.
	AnalysisMethodHTML = "gpt_html"
)

var (
	scriptTagRe = regexp.MustCompile(`(?is)<script[^>]*>.*?</script>`)
	styleTagRe  = regexp.MustCompile(`(?is)<style[^>]*>.*?</style>`)
	commentRe   = regexp.MustCompile(`(?s)<!--.*?-->`)
)

// OpenAIConfig configures the text/HTML analysis backend.
type OpenAIConfig struct {
	APIKey  string
	APIURL  string
	Model   string
	Timeout time.Duration
}

// HTMLClassifier analyzes the textual or HTML content of a post through an
// OpenAI-compatible chat completions endpoint.
type HTMLClassifier struct {
	client  *http.Client
	apiKey  string
	apiURL  string
	model   string
	breaker *clients.CircuitBreaker
	logger  logging.Logger
}

// NewHTMLClassifier creates the text/HTML backend. The breaker is optional;
// when its circuit is open the classifier fails fast without calling out.
func NewHTMLClassifier(cfg OpenAIConfig, breaker *clients.CircuitBreaker, logger logging.Logger) *HTMLClassifier {
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
	return &HTMLClassifier{
		client:  &http.Client{Timeout: timeout},
		apiKey:  cfg.APIKey,
		apiURL:  apiURL,
		model:   model,
		breaker: breaker,
		logger:  logger,
	}
}

func (c *HTMLClassifier) Name() string {
	return AnalysisMethodHTML
}

// Classify sends the post content for analysis and normalizes the verdict.
func (c *HTMLClassifier) Classify(ctx context.Context, post models.RawPost) (models.ClassificationResult, error) {
	if c.apiKey == "" {
		return models.ClassificationResult{}, fmt.Errorf("%w: missing API key", ErrNotConfigured)
	}

	content := post.HTML
	if content == "" {
		content = post.Text
	}
	cleaned := cleanHTML(content)
	if n := utf8.RuneCountInString(cleaned); n < minContentChars {
		return models.ClassificationResult{}, fmt.Errorf("content too short after cleaning: %d chars", n)
	}

	var result models.ClassificationResult
	call := func() error {
		resp, err := c.complete(ctx, cleaned)
		if err != nil {
			return err
		}
		result = normalize(resp, AnalysisMethodHTML)
		return nil
	}

	var err error
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

type chatRequest struct {
	Model          string         `json:"model"`
	Messages       []chatMessage  `json:"messages"`
	MaxTokens      int            `json:"max_tokens"`
	Temperature    float64        `json:"temperature"`
	ResponseFormat responseFormat `json:"response_format"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

func (c *HTMLClassifier) complete(ctx context.Context, content string) (backendResponse, error) {
	reqBody := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{
				Role:    "system",
				Content: "You are a fraud detection AI for cyber patrol. Analyze social media post content for fraud indicators.",
			},
			{
				Role:    "user",
				Content: buildHTMLPrompt(content),
			},
		},
		MaxTokens:      500,
		Temperature:    0.1,
		ResponseFormat: responseFormat{Type: "json_object"},
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return backendResponse{}, fmt.Errorf("openai: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return backendResponse{}, fmt.Errorf("openai: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return backendResponse{}, fmt.Errorf("openai: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		body, _ := io.ReadAll(resp.Body)
		return backendResponse{}, fmt.Errorf("openai: unexpected status %s: %s", resp.Status, strings.TrimSpace(string(body)))
	}

	var chat chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chat); err != nil {
		return backendResponse{}, fmt.Errorf("openai: decode response: %w", err)
	}
	if len(chat.Choices) == 0 {
		return backendResponse{}, errors.New("openai: empty choices in response")
	}

	var analysis backendResponse
	if err := json.Unmarshal([]byte(chat.Choices[0].Message.Content), &analysis); err != nil {
		return backendResponse{}, fmt.Errorf("openai: invalid analysis JSON: %w", err)
	}
	return analysis, nil
}

// cleanHTML strips script and style blocks and comments, then truncates to
// the character budget. Truncation is marked so the model's reasoning is not
// attributed to content it never saw.
func cleanHTML(html string) string {
	html = scriptTagRe.ReplaceAllString(html, "")
	html = styleTagRe.ReplaceAllString(html, "")
	html = commentRe.ReplaceAllString(html, "")

	// Truncation counts runes, not bytes, so Devanagari content is never
	// split mid-character.
	if utf8.RuneCountInString(html) > maxContentChars {
		runes := []rune(html)
		html = string(runes[:maxContentChars]) + "\n... [truncated]"
	}
	return strings.TrimSpace(html)
}

func buildHTMLPrompt(content string) string {
	return fmt.Sprintf(`Analyze this social media post content for fraud indicators.

POST CONTENT:
`+"```"+`
%s
`+"```"+`

FRAUD INDICATORS TO CHECK:
- Scam keywords: advance payment, send money, UPI, Paytm, PhonePe, cheap hotel, free trip, guaranteed returns, limited offer, urgent
- Hindi/Marathi keywords: पैसे भेजो, बुकिंग, सस्ता, मुफ्त
- Phone numbers displayed
- Excessive discounts (50%%+ off)
- Pressure tactics (urgent, limited time, act now)
- Multiple payment methods mentioned
- Too-good-to-be-true offers

EXTRACT:
- Author/username (from post HTML)
- Post text content (visible text only)
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
    "fraud_type": "hotel_booking_scam"/"investment_scam"/"advance_payment_fraud"/"legitimate",
    "reasoning": "brief explanation",
    "username": "extracted author name",
    "content": "extracted post text",
    "language": "eng"/"hin"/"mar"/"mixed",
    "red_flags": ["specific issues"],
    "matched_keywords": ["fraud keywords found"]
}

Be precise and factual.`, content)
}

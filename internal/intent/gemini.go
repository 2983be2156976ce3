package intent

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/text/language"
)

const (
	DefaultGeminiEndpoint = "https://generativelanguage.googleapis.com/v1beta/models"
	DefaultGeminiModel    = "gemini-pro"

	maxResponseBytes = 1 << 20
)

var ErrEmptyResponse = errors.New("empty response from model")

// GeminiClient calls the Gemini generateContent API.
type GeminiClient struct {
	apiKey     string
	model      string
	endpoint   string
	httpClient *http.Client
}

type GeminiOption func(*GeminiClient)

// WithEndpoint overrides the models base URL.
func WithEndpoint(url string) GeminiOption {
	return func(c *GeminiClient) {
		if url != "" {
			c.endpoint = strings.TrimRight(url, "/")
		}
	}
}

func WithHTTPClient(hc *http.Client) GeminiOption {
	return func(c *GeminiClient) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

func NewGeminiClient(apiKey, model string, opts ...GeminiOption) *GeminiClient {
	if model == "" {
		model = DefaultGeminiModel
	}
	c := &GeminiClient{
		apiKey:     apiKey,
		model:      model,
		endpoint:   DefaultGeminiEndpoint,
		httpClient: &http.Client{Timeout: DefaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type geminiBlob struct {
	MimeType string `json:"mimeType"`
	Data     string `json:"data"`
}

type geminiPart struct {
	Text       string      `json:"text,omitempty"`
	InlineData *geminiBlob `json:"inlineData,omitempty"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiGenerationConfig struct {
	Temperature     float64 `json:"temperature"`
	TopK            int     `json:"topK"`
	TopP            float64 `json:"topP"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
}

type geminiRequest struct {
	Contents         []geminiContent        `json:"contents"`
	GenerationConfig geminiGenerationConfig `json:"generationConfig"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

// Generate sends prompt and returns the concatenated text of the first candidate.
func (c *GeminiClient) Generate(ctx context.Context, prompt string) (string, error) {
	return c.generate(ctx, geminiPart{Text: prompt})
}

// Transcribe returns what is said in a WAV recording, in the language of tag.
func (c *GeminiClient) Transcribe(ctx context.Context, wav []byte, tag language.Tag) (string, error) {
	prompt := fmt.Sprintf("Transcribe exactly what the speaker says in this recording. "+
		"The expected language is %s. Reply with the transcript only, without quotes or commentary.", tag)
	out, err := c.generate(ctx,
		geminiPart{Text: prompt},
		geminiPart{InlineData: &geminiBlob{MimeType: "audio/wav", Data: base64.StdEncoding.EncodeToString(wav)}},
	)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

func (c *GeminiClient) generate(ctx context.Context, parts ...geminiPart) (string, error) {
	body, err := json.Marshal(geminiRequest{
		Contents: []geminiContent{{Parts: parts}},
		GenerationConfig: geminiGenerationConfig{
			Temperature:     0.3,
			TopK:            40,
			TopP:            0.8,
			MaxOutputTokens: 1024,
		},
	})
	if err != nil {
		return "", errors.Wrap(err, "marshal request")
	}

	url := fmt.Sprintf("%s/%s:generateContent", c.endpoint, c.model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", errors.Wrap(err, "build request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", errors.Wrap(err, "gemini request")
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return "", errors.Wrap(err, "read response")
	}

	var gr geminiResponse
	decodeErr := json.Unmarshal(data, &gr)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		if decodeErr == nil && gr.Error != nil && gr.Error.Message != "" {
			return "", errors.Errorf("gemini: %s (status %d)", gr.Error.Message, resp.StatusCode)
		}
		return "", errors.Errorf("gemini: unexpected status %d", resp.StatusCode)
	}
	if decodeErr != nil {
		return "", errors.Wrap(decodeErr, "decode response")
	}
	if len(gr.Candidates) == 0 || len(gr.Candidates[0].Content.Parts) == 0 {
		return "", ErrEmptyResponse
	}

	var sb strings.Builder
	for _, p := range gr.Candidates[0].Content.Parts {
		sb.WriteString(p.Text)
	}
	return sb.String(), nil
}

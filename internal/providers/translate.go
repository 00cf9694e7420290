// Package providers – translation client
//
// A small typed client for the Google Translate v2 REST API, covering the
// two operations the pipeline needs: language detection and text
// translation. Detected codes are normalized to their base language ("en-US"
// becomes "en") so pipeline comparisons against the pivot language hold.
package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/text/language"
)

// TranslateConfig configures the translation client.
type TranslateConfig struct {
	APIKey  string
	BaseURL string // e.g. https://translation.googleapis.com
	Timeout time.Duration
}

// TranslateClient talks to the Google Translate v2 REST API.
type TranslateClient struct {
	cfg  TranslateConfig
	http *http.Client
}

// NewTranslateClient constructs a TranslateClient. A zero timeout defaults
// to 15 seconds.
func NewTranslateClient(cfg TranslateConfig) *TranslateClient {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://translation.googleapis.com"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	return &TranslateClient{
		cfg:  cfg,
		http: &http.Client{Timeout: cfg.Timeout},
	}
}

type detectResponse struct {
	Data struct {
		Detections [][]struct {
			Language string `json:"language"`
		} `json:"detections"`
	} `json:"data"`
}

type translateResponse struct {
	Data struct {
		Translations []struct {
			TranslatedText string `json:"translatedText"`
		} `json:"translations"`
	} `json:"data"`
}

// Detect returns the base language code of text ("en", "ar", ...). When the
// provider cannot tell, it returns "en".
func (c *TranslateClient) Detect(ctx context.Context, text string) (string, error) {
	var out detectResponse
	if err := c.post(ctx, "/language/translate/v2/detect", map[string]any{"q": text}, &out); err != nil {
		return "", err
	}
	if len(out.Data.Detections) == 0 || len(out.Data.Detections[0]) == 0 {
		return "en", nil
	}
	return normalizeLang(out.Data.Detections[0][0].Language), nil
}

// Translate renders text into the target language.
func (c *TranslateClient) Translate(ctx context.Context, text, target string) (string, error) {
	body := map[string]any{
		"q":      text,
		"target": target,
		"format": "text",
	}
	var out translateResponse
	if err := c.post(ctx, "/language/translate/v2", body, &out); err != nil {
		return "", err
	}
	if len(out.Data.Translations) == 0 {
		return "", fmt.Errorf("translate: empty response")
	}
	return out.Data.Translations[0].TranslatedText, nil
}

// post sends a JSON request to path and decodes the JSON response into out.
func (c *TranslateClient) post(ctx context.Context, path string, body any, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("translate: encode request: %w", err)
	}

	endpoint := c.cfg.BaseURL + path + "?key=" + url.QueryEscape(c.cfg.APIKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("translate: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("translate: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("translate: status %d: %s", resp.StatusCode, snippet)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("translate: decode response: %w", err)
	}
	return nil
}

// normalizeLang reduces a detected code to its base language.
func normalizeLang(code string) string {
	tag, err := language.Parse(code)
	if err != nil {
		return "en"
	}
	base, _ := tag.Base()
	return base.String()
}

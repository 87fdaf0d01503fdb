// Package translate is a small client for Google's public "gtx" translate
// endpoint.
package translate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

const (
	DefaultEndpoint = "https://translate.googleapis.com/translate_a/single"

	// AutoDetect asks the backend to detect the source language.
	AutoDetect = "auto"

	defaultTimeout = 15 * time.Second
	userAgent      = "Mozilla/5.0"
)

var ErrEmptyText = errors.New("nothing to translate")

// Translation is the outcome of a single request.
type Translation struct {
	// Original is the text as the backend understood it.
	Original string
	// Text is the translated text.
	Text string
	// Source is the language the text was translated from. When the request
	// asked for AutoDetect this is the detected language.
	Source string
	Target string
}

// Translator translates text between languages.
type Translator interface {
	Translate(ctx context.Context, text, source, target string) (*Translation, error)
}

// StatusError is returned when the backend answers with a non-2xx status.
type StatusError struct {
	Code   int
	Status string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("translate backend returned %s", e.Status)
}

// StatusCode reports the HTTP status code of the failed request.
func (e *StatusError) StatusCode() int { return e.Code }

// Client talks to the gtx endpoint. Requests are paced by a token bucket so
// a burst of commands cannot hammer the backend.
type Client struct {
	endpoint string
	http     *http.Client
	limiter  *rate.Limiter
}

// NewClient returns a Client for endpoint allowing at most rps requests per
// second. An empty endpoint selects DefaultEndpoint; rps <= 0 disables pacing.
func NewClient(endpoint string, rps float64, httpClient *http.Client) *Client {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}
	limit := rate.Inf
	if rps > 0 {
		limit = rate.Limit(rps)
	}
	return &Client{
		endpoint: endpoint,
		http:     httpClient,
		limiter:  rate.NewLimiter(limit, 1),
	}
}

// Translate translates text from source to target. An empty source means
// AutoDetect.
func (c *Client) Translate(ctx context.Context, text, source, target string) (*Translation, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyText
	}
	if source == "" {
		source = AutoDetect
	}
	if target == "" {
		return nil, errors.New("no target language given")
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("client", "gtx")
	params.Set("sl", source)
	params.Set("tl", target)
	params.Set("dt", "t")
	params.Set("q", text)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s?%s", c.endpoint, params.Encode()), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{Code: resp.StatusCode, Status: resp.Status}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	tr, err := parseResponse(body)
	if err != nil {
		return nil, err
	}
	if tr.Source == "" {
		tr.Source = source
	}
	tr.Target = target
	log.WithFields(log.Fields{"source": tr.Source, "target": target}).Trace("Translated text")
	return tr, nil
}

// The response is positional JSON:
//
//	[[["translated", "original", ...], ...], null, "detected-language", ...]
func parseResponse(body []byte) (*Translation, error) {
	var top []json.RawMessage
	if err := json.Unmarshal(body, &top); err != nil {
		return nil, fmt.Errorf("unmarshal error: %w", err)
	}
	if len(top) < 1 {
		return nil, fmt.Errorf("unexpected top-level structure")
	}

	var sentences [][]json.RawMessage
	if err := json.Unmarshal(top[0], &sentences); err != nil {
		return nil, fmt.Errorf("unexpected sentences structure: %w", err)
	}

	var translated, original strings.Builder
	for _, pair := range sentences {
		var s string
		if len(pair) > 0 && json.Unmarshal(pair[0], &s) == nil {
			translated.WriteString(s)
		}
		s = ""
		if len(pair) > 1 && json.Unmarshal(pair[1], &s) == nil {
			original.WriteString(s)
		}
	}

	detected := ""
	if len(top) > 2 {
		// null unmarshals into the zero value
		_ = json.Unmarshal(top[2], &detected)
	}

	return &Translation{
		Original: original.String(),
		Text:     translated.String(),
		Source:   detected,
	}, nil
}

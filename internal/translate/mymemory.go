package translate

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// DefaultMyMemoryEndpoint is the public MyMemory "get" endpoint.
const DefaultMyMemoryEndpoint = "https://api.mymemory.translated.net/get"

const maxResponseBytes = 1 << 20

// MyMemory queries the MyMemory translation API.
type MyMemory struct {
	endpoint string
	client   *http.Client
	logger   *slog.Logger
}

// NewMyMemory returns a client for endpoint. An empty endpoint uses the
// public service; a non-positive timeout uses 10s.
func NewMyMemory(endpoint string, timeout time.Duration, logger *slog.Logger) *MyMemory {
	if endpoint == "" {
		endpoint = DefaultMyMemoryEndpoint
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &MyMemory{
		endpoint: endpoint,
		client:   &http.Client{Timeout: timeout},
		logger:   loggerOrDefault(logger),
	}
}

type myMemoryResponse struct {
	ResponseStatus json.RawMessage `json:"responseStatus"`
	ResponseData   struct {
		TranslatedText string `json:"translatedText"`
	} `json:"responseData"`
}

// status accepts both the numeric and the quoted form the service emits.
func (r myMemoryResponse) status() int {
	raw := strings.Trim(string(r.ResponseStatus), `" `)
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0
	}
	return n
}

func (m *MyMemory) Translate(ctx context.Context, text string, dir Direction) (string, bool, error) {
	if strings.TrimSpace(text) == "" {
		return "", false, ErrEmptyText
	}

	u, err := url.Parse(m.endpoint)
	if err != nil {
		return "", false, fmt.Errorf("invalid endpoint %q: %w", m.endpoint, err)
	}
	q := u.Query()
	q.Set("q", text)
	q.Set("langpair", dir.LangPair())
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return "", false, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := m.client.Do(req)
	if err != nil {
		m.logger.Warn("translation request failed", "error", err)
		return "", false, nil
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		m.logger.Warn("translation response read failed", "error", err)
		return "", false, nil
	}

	var parsed myMemoryResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		m.logger.Warn("translation response malformed", "http_status", resp.StatusCode, "error", err)
		return "", false, nil
	}
	if status := parsed.status(); status != http.StatusOK {
		m.logger.Warn("translation rejected", "http_status", resp.StatusCode, "response_status", status)
		return "", false, nil
	}
	out := strings.TrimSpace(parsed.ResponseData.TranslatedText)
	if out == "" {
		return "", false, nil
	}
	return out, true, nil
}

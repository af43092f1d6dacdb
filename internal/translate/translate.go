// Package translate talks to remote translation endpoints.
package translate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// ErrEmptyText is returned when asked to translate blank input.
var ErrEmptyText = errors.New("text is empty")

// Translator performs one translation. ok is false when the endpoint gave
// no usable result (transport failure, non-success status, malformed or
// empty response). A non-nil error means the request could not be built.
type Translator interface {
	Translate(ctx context.Context, text string, dir Direction) (result string, ok bool, err error)
}

// Provider names accepted by New.
const (
	ProviderMyMemory = "mymemory"
	ProviderOpenAI   = "openai"
)

// Options selects and configures a Translator.
type Options struct {
	Provider  string
	Endpoint  string
	Timeout   time.Duration
	CacheSize int

	OpenAIKey     string
	OpenAIModel   string
	OpenAIBaseURL string

	Logger *slog.Logger
}

// New builds the configured provider, wrapped in a result cache when
// CacheSize is positive.
func New(opts Options) (Translator, error) {
	var (
		t   Translator
		err error
	)
	switch strings.ToLower(opts.Provider) {
	case "", ProviderMyMemory:
		t = NewMyMemory(opts.Endpoint, opts.Timeout, opts.Logger)
	case ProviderOpenAI:
		t, err = NewOpenAI(opts.OpenAIKey, opts.OpenAIModel, opts.OpenAIBaseURL, opts.Logger)
		if err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unknown translation provider %q", opts.Provider)
	}
	if opts.CacheSize > 0 {
		t = NewCached(t, opts.CacheSize)
	}
	return t, nil
}

func loggerOrDefault(l *slog.Logger) *slog.Logger {
	if l == nil {
		return slog.Default()
	}
	return l
}

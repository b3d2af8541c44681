// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package condense turns a verbose target-customer description into a short
// topic phrase suitable as a search query.
//
// The language model is an optional capability: a Condenser built without
// usable credentials simply never calls it. Every failure degrades to a
// deterministic keyword extraction, so Condense never returns an error.
package condense

import (
	"context"
	"log/slog"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/pdiddy/leadify/pkg/types"
)

// maxKeywords is the number of tokens kept by the keyword fallback.
const maxKeywords = 4

// minKeywordLen is the shortest token (in runes) kept by the keyword fallback.
const minKeywordLen = 3

// stopWords are dropped by the keyword fallback. The list covers articles,
// prepositions, question words and filler that shows up in lead requests.
var stopWords = map[string]bool{
	"a": true, "an": true, "the": true, "for": true, "and": true, "or": true,
	"of": true, "to": true, "in": true, "who": true, "what": true, "where": true,
	"when": true, "looking": true, "need": true, "generate": true, "find": true,
	"this": true, "query": true, "into": true, "concise": true,
	"description": true, "transform": true,
}

// Completer sends one system instruction and one user message to a chat
// model and returns the raw completion text.
type Completer interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// Condenser produces topic phrases. The zero value uses only the keyword
// fallback.
type Condenser struct {
	model   Completer
	timeout time.Duration
}

// New builds a Condenser for one run. When the API key is blank or the
// client cannot be constructed the Condenser runs without a model.
func New(cfg types.CondenseConfig) *Condenser {
	c := &Condenser{timeout: cfg.Timeout}

	backend, err := NewChatBackend(cfg.AIConfig)
	if err != nil {
		slog.Debug("language model unavailable, using keyword fallback", "reason", err)
		return c
	}
	c.model = backend
	return c
}

// NewWithModel returns a Condenser backed by model. A nil model is allowed.
func NewWithModel(model Completer, timeout time.Duration) *Condenser {
	return &Condenser{model: model, timeout: timeout}
}

// HasModel reports whether a language model is configured.
func (c *Condenser) HasModel() bool {
	return c.model != nil
}

// Condense returns the topic phrase for query. It tries the language model
// once and falls back to Keywords on any error or blank completion.
func (c *Condenser) Condense(ctx context.Context, query string) string {
	if c.model != nil {
		phrase, err := c.complete(ctx, query)
		switch {
		case err != nil:
			slog.DebugContext(ctx, "language model call failed, using keyword fallback", "error", err)
		case phrase == "":
			slog.DebugContext(ctx, "language model returned empty text, using keyword fallback")
		default:
			return phrase
		}
	}
	return Keywords(query)
}

func (c *Condenser) complete(ctx context.Context, query string) (string, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}
	text, err := c.model.Complete(ctx, systemInstruction, userMessage(query))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}

// Keywords extracts up to four content words from query: lowercase letter
// and digit runs, minus stop words and tokens shorter than three runes,
// joined with single spaces. It returns "" when nothing survives.
func Keywords(query string) string {
	tokens := strings.FieldsFunc(strings.ToLower(query), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	kept := make([]string, 0, maxKeywords)
	for _, tok := range tokens {
		if stopWords[tok] || utf8.RuneCountInString(tok) < minKeywordLen {
			continue
		}
		kept = append(kept, tok)
		if len(kept) == maxKeywords {
			break
		}
	}
	return strings.Join(kept, " ")
}

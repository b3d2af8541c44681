// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package condense

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/pdiddy/leadify/pkg/types"
)

// systemInstruction is the fixed condensation task with few-shot examples.
const systemInstruction = `You are an expert at transforming detailed user queries into concise company descriptions.
Your task is to extract the core business/product focus in 3-4 words.

Examples:
Input: "Generate leads looking for AI-powered customer support chatbots for e-commerce stores."
Output: "AI customer support chatbots for e commerce"

Input: "Find people interested in voice cloning technology for creating audiobooks and podcasts"
Output: "voice cloning technology"

Input: "Looking for users who need automated video editing software with AI capabilities"
Output: "AI video editing software"

Input: "Need to find businesses interested in implementing machine learning solutions for fraud detection"
Output: "ML fraud detection"

Always focus on the core product/service and keep it concise but clear.`

// userMessage wraps the raw query in the per-call request sent to the model.
func userMessage(query string) string {
	return "Transform this query into a concise 3-4 word company description: " + query
}

// groqBaseURL is the Groq OpenAI-compatible endpoint. Package-level var for
// test substitution.
var groqBaseURL = "https://api.groq.com/openai/v1/"

var errNoAPIKey = errors.New("no language model API key configured")

// ChatBackend calls an OpenAI-compatible chat completion API (Groq by default).
type ChatBackend struct {
	client openai.Client
	model  string
}

// NewChatBackend builds a ChatBackend from cfg. It fails when the API key is
// blank or the base URL is not an absolute URL. SDK-level retries are
// disabled: one attempt per call.
func NewChatBackend(cfg types.AIConfig) (*ChatBackend, error) {
	key := strings.TrimSpace(cfg.APIKey)
	if key == "" {
		return nil, errNoAPIKey
	}

	base := cfg.BaseURL
	if base == "" {
		base = groqBaseURL
	}
	u, err := url.Parse(base)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid language model base URL %q", base)
	}

	model := cfg.Model
	if model == "" {
		model = types.DefaultGroqModel
	}

	return &ChatBackend{
		client: openai.NewClient(
			option.WithAPIKey(key),
			option.WithBaseURL(base),
			option.WithMaxRetries(0),
		),
		model: model,
	}, nil
}

// Model returns the model identifier used for completions.
func (b *ChatBackend) Model() string {
	return b.model
}

// Complete requests a single chat completion and returns its text.
func (b *ChatBackend) Complete(ctx context.Context, system, user string) (string, error) {
	resp, err := b.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: b.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(system),
			openai.UserMessage(user),
		},
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("chat completion returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}

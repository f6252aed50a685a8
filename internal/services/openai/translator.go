package openai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cenkalti/backoff/v4"
	goopenai "github.com/sashabaranov/go-openai"

	"vidscribe/internal/language"
	"vidscribe/internal/services"
)

// SourceAuto asks the model to detect the source language.
const SourceAuto = "auto"

// Translator translates subtitle lines through a chat completion endpoint.
type Translator struct {
	client   *goopenai.Client
	model    string
	attempts int
	opts     options
}

// NewTranslator constructs a translator using the supplied configuration.
func NewTranslator(cfg Config, opts ...Option) *Translator {
	client, o := newClient(cfg, opts)
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = defaultTranslateModel
	}
	attempts := cfg.MaxRetries
	if attempts <= 0 {
		attempts = defaultRetryAttempts
	}
	return &Translator{client: client, model: model, attempts: attempts, opts: o}
}

// Translate returns text rendered in target. source may be SourceAuto.
func (t *Translator) Translate(ctx context.Context, text, source, target string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", nil
	}
	if strings.TrimSpace(target) == "" {
		return "", services.Wrap(services.ErrValidation, "translate", "openai", "target language required", nil)
	}

	req := goopenai.ChatCompletionRequest{
		Model: t.model,
		Messages: []goopenai.ChatCompletionMessage{
			{Role: goopenai.ChatMessageRoleSystem, Content: systemPrompt(source, target)},
			{Role: goopenai.ChatMessageRoleUser, Content: text},
		},
		Temperature: 0.2,
	}

	var translated string
	op := func() error {
		resp, err := t.client.CreateChatCompletion(ctx, req)
		if err != nil {
			if ctx.Err() != nil || isPermanent(err) {
				return backoff.Permanent(err)
			}
			return err
		}
		if len(resp.Choices) == 0 {
			return errors.New("no choices in response")
		}
		translated = strings.TrimSpace(resp.Choices[0].Message.Content)
		return nil
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = t.opts.retryBaseDelay
	bo.MaxInterval = t.opts.retryMaxDelay
	policy := backoff.WithContext(backoff.WithMaxRetries(bo, uint64(t.attempts-1)), ctx)
	if err := backoff.Retry(op, policy); err != nil {
		return "", services.Wrap(services.ErrTransient, "translate", "openai",
			fmt.Sprintf("translate to %s", target), err)
	}
	if translated == "" {
		return "", services.Wrap(services.ErrTransient, "translate", "openai", "empty translation", nil)
	}
	return translated, nil
}

// HealthCheck lists models once to confirm the endpoint and key are usable.
func (t *Translator) HealthCheck(ctx context.Context) error {
	if _, err := t.client.ListModels(ctx); err != nil {
		return services.Wrap(services.ErrConfiguration, "translate", "health check", "model listing failed", err)
	}
	return nil
}

func systemPrompt(source, target string) string {
	from := "the language it is written in"
	if s := strings.TrimSpace(source); s != "" && !strings.EqualFold(s, SourceAuto) {
		from = language.DisplayName(s)
	}
	return fmt.Sprintf(
		"You translate video subtitle lines. Translate the user's text from %s into %s. "+
			"Keep names, numbers and line breaks. Reply with the translation only.",
		from, language.DisplayName(target))
}

// Disabled rejects every translation so callers fall back to the original text.
type Disabled struct{}

func (Disabled) Translate(context.Context, string, string, string) (string, error) {
	return "", services.Wrap(services.ErrConfiguration, "translate", "disabled", "translation is disabled", nil)
}

var (
	_ services.Translator = (*Translator)(nil)
	_ services.Translator = Disabled{}
)

// Package openai adapts OpenAI-compatible endpoints to the pipeline's
// Transcriber and Translator interfaces using github.com/sashabaranov/go-openai.
//
// Translation sends one subtitle line per chat completion and retries
// transient failures with exponential backoff. Any error is returned to the
// caller, which keeps the original text for that line. Disabled stands in when
// translation is switched off and fails every call the same way.
package openai

// Package whisperx runs WhisperX through uvx to transcribe extracted audio.
//
// The service never forces a language: WhisperX detects it and reports the
// result in its JSON output, which is loaded back into timed segments. GPU use,
// model and voice activity detection are controlled through Config.
package whisperx

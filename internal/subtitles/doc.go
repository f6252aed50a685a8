// Package subtitles encodes timed transcription segments into SRT documents
// and decodes SRT documents back into cues or plain text.
//
// The parser follows an explicit block grammar rather than scanning with
// regular expressions:
//
//	document = block*
//	block    = index-line timing-line text-line* blank-line+
//
// An index line is a positive integer and a timing line contains "-->".
// Blocks that do not match are skipped so partial or damaged documents still
// decode. CRLF line endings and a leading UTF-8 byte order mark are accepted.
package subtitles

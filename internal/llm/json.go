package llm

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"
)

// ErrUnparseable marks model output that is not the JSON that was asked for.
var ErrUnparseable = errors.New("model output is not valid JSON")

var codeBlockRe = regexp.MustCompile("(?s)^```(?:json|JSON)?\\s*(.*?)\\s*```$")

// StripCodeFence removes a Markdown code fence (```json ... ```) or single
// backticks wrapped around model output.
func StripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if m := codeBlockRe.FindStringSubmatch(s); len(m) > 1 {
		return m[1]
	}
	if len(s) >= 2 && strings.HasPrefix(s, "`") && strings.HasSuffix(s, "`") {
		return strings.TrimSpace(strings.Trim(s, "`"))
	}
	return s
}

// DecodeJSON strips any code fence from raw and decodes exactly one JSON
// value into v. Numbers decode as json.Number. Any failure wraps
// ErrUnparseable.
func DecodeJSON(raw string, v any) error {
	dec := json.NewDecoder(strings.NewReader(StripCodeFence(raw)))
	dec.UseNumber()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: %v", ErrUnparseable, err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: unexpected data after JSON value", ErrUnparseable)
	}
	return nil
}

package extract

import (
	"regexp"
	"strings"
)

// Strategy locates a candidate JSON payload inside a reply.
// Find reports false when the strategy doesn't apply to the text.
type Strategy struct {
	Name string
	Find func(text string) (string, bool)
}

var (
	// ```json\n<body>\n```; the label is matched case-insensitively.
	labeledFence = regexp.MustCompile("(?s)```[ \\t]*(?i:json)[ \\t]*\\r?\\n(.*?)\\r?\\n[ \\t]*```")
	anyFence     = regexp.MustCompile("(?s)```(.*?)```")
	// An info string on the opening line, e.g. ```javascript
	infoString = regexp.MustCompile(`^[A-Za-z0-9_+.-]+[ \t]*\r?\n`)
)

// LabeledFence matches the first fenced block labeled as JSON.
var LabeledFence = Strategy{
	Name: "labeled-fence",
	Find: func(text string) (string, bool) {
		m := labeledFence.FindStringSubmatch(text)
		if m == nil {
			return "", false
		}
		return m[1], true
	},
}

// AnyFence matches the first fenced block of any kind. An info string on the
// opening line is dropped so a mislabeled block still yields its body.
var AnyFence = Strategy{
	Name: "any-fence",
	Find: func(text string) (string, bool) {
		m := anyFence.FindStringSubmatch(text)
		if m == nil {
			return "", false
		}
		return infoString.ReplaceAllString(m[1], ""), true
	},
}

// RawText treats the whole reply as the payload. It always applies.
var RawText = Strategy{
	Name: "raw-text",
	Find: func(text string) (string, bool) {
		return strings.TrimSpace(text), true
	},
}

// DefaultStrategies is the fallback order: labeled fence, any fence, raw text.
// The labeled fence wins even when an unrelated block appears earlier.
var DefaultStrategies = []Strategy{LabeledFence, AnyFence, RawText}

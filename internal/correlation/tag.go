// Package correlation carries conversation state inside message text.
//
// Two kinds of markers are understood. The correlation tag is appended to every
// reply delivered to an end-user and names the operator message it was relayed
// from. The ID markers are written into every forwarded user message (and into
// operator confirmations) and name the end-user and their original message.
package correlation

import (
	"fmt"
	"regexp"
	"strconv"
)

// Tag grammar, version 1: TagSeparator + TagPrefix + decimal operator message id.
const (
	TagVersion   = 1
	TagPrefix    = "#admsg"
	TagSeparator = "\n\n"
)

var tagPattern = regexp.MustCompile(regexp.QuoteMeta(TagPrefix) + `(\d+)`)

// EncodeTag returns the suffix that marks a text as relayed from the operator
// message operatorMessageID. It panics on a negative id.
func EncodeTag(operatorMessageID int) string {
	if operatorMessageID < 0 {
		panic(fmt.Sprintf("correlation: negative operator message id %d", operatorMessageID))
	}
	return TagSeparator + TagPrefix + strconv.Itoa(operatorMessageID)
}

// DecodeTag returns the operator message id of the first tag in text.
func DecodeTag(text string) (int, bool) {
	m := tagPattern.FindStringSubmatch(text)
	if m == nil {
		return 0, false
	}
	id, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return id, true
}

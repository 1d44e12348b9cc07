package correlation

import (
	"regexp"
	"strconv"
	"strings"
)

// Rule is one pattern of an extraction cascade. Pattern must have exactly one
// capture group holding the decimal id. Matches directly preceded by NotAfter
// belong to another rule and are skipped.
type Rule struct {
	Name     string
	Pattern  *regexp.Regexp
	NotAfter string
}

const confirmationPrefix = "Message sent to user "

// UserIDRules is evaluated in order; the first rule that matches wins.
// The canonical marker comes first, then the phrasing of operator
// confirmations sent by earlier versions, which are still replied to.
var UserIDRules = []Rule{
	{Name: "canonical", Pattern: regexp.MustCompile(`#ID(\d+)`), NotAfter: confirmationPrefix},
	{Name: "confirmation", Pattern: regexp.MustCompile(regexp.QuoteMeta(confirmationPrefix) + `#ID(\d+)`)},
}

// MessageIDRules is evaluated in order; the first rule that matches wins.
var MessageIDRules = []Rule{
	{Name: "canonical", Pattern: regexp.MustCompile(`#MSG(\d+)`)},
	{Name: "confirmation", Pattern: regexp.MustCompile(`message #(\d+)`)},
}

// IDs is what ExtractIDs recovered from a text. A zero value means nothing
// was found.
type IDs struct {
	UserID       int64
	MessageID    int
	HasUserID    bool
	HasMessageID bool

	// Names of the rules that matched, for logging.
	UserRule    string
	MessageRule string
}

// ExtractIDs recovers the end-user id and original message id from text.
// The two cascades are independent of each other.
func ExtractIDs(text string) IDs {
	var ids IDs
	// Telegram user ids are positive; #ID0 names nobody.
	if v, rule, ok := firstMatch(UserIDRules, text, 64, 1); ok {
		ids.UserID, ids.UserRule, ids.HasUserID = v, rule, true
	}
	if v, rule, ok := firstMatch(MessageIDRules, text, strconv.IntSize, 0); ok {
		ids.MessageID, ids.MessageRule, ids.HasMessageID = int(v), rule, true
	}
	return ids
}

// firstMatch runs rules in order and returns the first id that parses into
// a signed integer of the given bit size and is not below least.
func firstMatch(rules []Rule, text string, bits int, least int64) (int64, string, bool) {
	for _, r := range rules {
		for _, loc := range r.Pattern.FindAllStringSubmatchIndex(text, -1) {
			if r.NotAfter != "" && strings.HasSuffix(text[:loc[0]], r.NotAfter) {
				continue
			}
			v, err := strconv.ParseInt(text[loc[2]:loc[3]], 10, bits)
			if err != nil || v < least {
				continue
			}
			return v, r.Name, true
		}
	}
	return 0, "", false
}

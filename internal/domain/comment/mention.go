package comment

import (
	"regexp"
	"strings"

	"github.com/rpggio/vantage/internal/domain/user"
)

// A token runs to the next whitespace or Unicode space separator, so ideographic
// and no-break spaces end a mention as well.
var mentionToken = regexp.MustCompile(`@([^\s\p{Z}]+)`)

// trailingPunctuation is stripped from the end of a token before lookup, so
// "@Bob!" resolves to Bob.
const trailingPunctuation = `.,!?;:)]}"'`

// UserLookup resolves a mention token to a user by exact name.
type UserLookup interface {
	ByName(name string) (user.User, bool)
}

// ExtractMentions returns the ids of users mentioned in text, in order of
// first mention. Tokens that don't name a user are ignored.
func ExtractMentions(text string, users UserLookup) []string {
	ids := []string{}
	if users == nil {
		return ids
	}
	seen := make(map[string]struct{})
	for _, m := range mentionToken.FindAllStringSubmatch(text, -1) {
		name := strings.TrimRight(m[1], trailingPunctuation)
		if name == "" {
			continue
		}
		u, ok := users.ByName(name)
		if !ok {
			continue
		}
		if _, dup := seen[u.ID]; dup {
			continue
		}
		seen[u.ID] = struct{}{}
		ids = append(ids, u.ID)
	}
	return ids
}

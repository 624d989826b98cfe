package comment

import (
	"encoding/json"

	"github.com/pmezard/go-difflib/difflib"
)

// editDetails renders the activity details of an edit as JSON holding a
// unified diff of the content.
func editDetails(before, after string, addedMentions []string) string {
	diff, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(before),
		B:        difflib.SplitLines(after),
		FromFile: "before",
		ToFile:   "after",
		Context:  1,
	})
	if err != nil {
		diff = ""
	}
	payload := map[string]any{"diff": diff}
	if len(addedMentions) > 0 {
		payload["added_mentions"] = addedMentions
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return ""
	}
	return string(data)
}

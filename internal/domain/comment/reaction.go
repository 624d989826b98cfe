package comment

// ToggleReaction adds userID to the emoji's reaction set, or removes it when
// already present. An emoji left without users is dropped. The input comment
// is not modified.
//
// An empty reaction set is always returned as nil, the same form the store
// reads back, so toggling twice from a non-nil empty slice yields nil. Compare
// reaction lists with SameReactions rather than reflect.DeepEqual.
func ToggleReaction(c Comment, emoji, userID string) Comment {
	out := c
	out.Reactions = make([]Reaction, 0, len(c.Reactions)+1)
	found := false
	for _, r := range c.Reactions {
		users := append([]string(nil), r.UserIDs...)
		if r.Emoji == emoji {
			found = true
			if i := indexOf(users, userID); i >= 0 {
				users = append(users[:i], users[i+1:]...)
			} else {
				users = append(users, userID)
			}
			if len(users) == 0 {
				continue
			}
		}
		out.Reactions = append(out.Reactions, Reaction{Emoji: r.Emoji, UserIDs: users})
	}
	if !found {
		out.Reactions = append(out.Reactions, Reaction{Emoji: emoji, UserIDs: []string{userID}})
	}
	if len(out.Reactions) == 0 {
		out.Reactions = nil
	}
	return out
}

// HasReacted reports whether userID reacted with emoji.
func HasReacted(c Comment, emoji, userID string) bool {
	for _, r := range c.Reactions {
		if r.Emoji == emoji {
			return indexOf(r.UserIDs, userID) >= 0
		}
	}
	return false
}

// SameReactions compares two reaction lists as sets of (emoji, user) pairs.
func SameReactions(a, b []Reaction) bool {
	pairs := func(rs []Reaction) map[[2]string]struct{} {
		out := make(map[[2]string]struct{})
		for _, r := range rs {
			for _, u := range r.UserIDs {
				out[[2]string{r.Emoji, u}] = struct{}{}
			}
		}
		return out
	}
	pa, pb := pairs(a), pairs(b)
	if len(pa) != len(pb) {
		return false
	}
	for k := range pa {
		if _, ok := pb[k]; !ok {
			return false
		}
	}
	return true
}

func indexOf(list []string, v string) int {
	for i, s := range list {
		if s == v {
			return i
		}
	}
	return -1
}

package comment

import "sort"

// BuildTree arranges flat comments into a forest ordered by CreatedAt at every
// level. Equal timestamps keep their input order. The second result lists, in
// input order, the ids of comments placed at the top level because their
// parent is missing or their ancestor chain loops back on itself.
func BuildTree(comments []Comment) ([]*Node, []string) {
	n := len(comments)
	nodes := make([]*Node, n)
	index := make(map[string]int, n)
	for i := range comments {
		nodes[i] = &Node{Comment: comments[i]}
		if _, dup := index[comments[i].ID]; !dup {
			index[comments[i].ID] = i
		}
	}

	parent := make([]int, n)
	detached := make([]bool, n)
	for i, c := range comments {
		parent[i] = -1
		if c.ParentID == nil || *c.ParentID == "" {
			continue
		}
		p, ok := index[*c.ParentID]
		if !ok {
			detached[i] = true
			continue
		}
		parent[i] = p
	}
	breakCycles(parent, detached)

	var roots []*Node
	for i, node := range nodes {
		if parent[i] < 0 {
			roots = append(roots, node)
			continue
		}
		p := nodes[parent[i]]
		p.Replies = append(p.Replies, node)
	}
	sortByCreated(roots)

	stack := append([]*Node(nil), roots...)
	for len(stack) > 0 {
		node := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		sortByCreated(node.Replies)
		for _, child := range node.Replies {
			child.Depth = node.Depth + 1
			stack = append(stack, child)
		}
	}

	var ids []string
	for i, d := range detached {
		if d {
			ids = append(ids, comments[i].ID)
		}
	}
	return roots, ids
}

// breakCycles walks each parent chain once. When a chain revisits a node on
// the current walk, the cycle member that comes first in input order is cut
// loose and becomes a root.
func breakCycles(parent []int, detached []bool) {
	const (
		unvisited = iota
		onPath
		done
	)
	state := make([]uint8, len(parent))
	var path []int
	for start := range parent {
		if state[start] != unvisited {
			continue
		}
		path = path[:0]
		i := start
		for i >= 0 && state[i] == unvisited {
			state[i] = onPath
			path = append(path, i)
			i = parent[i]
		}
		if i >= 0 && state[i] == onPath {
			cut := i
			for k := len(path) - 1; path[k] != i; k-- {
				if path[k] < cut {
					cut = path[k]
				}
			}
			parent[cut] = -1
			detached[cut] = true
		}
		for _, k := range path {
			state[k] = done
		}
	}
}

func sortByCreated(nodes []*Node) {
	sort.SliceStable(nodes, func(a, b int) bool {
		return nodes[a].CreatedAt.Before(nodes[b].CreatedAt)
	})
}

// Flatten lists the forest depth-first, parents before their replies.
func Flatten(roots []*Node) []*Node {
	var out []*Node
	stack := make([]*Node, 0, len(roots))
	for i := len(roots) - 1; i >= 0; i-- {
		stack = append(stack, roots[i])
	}
	for len(stack) > 0 {
		node := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		out = append(out, node)
		for i := len(node.Replies) - 1; i >= 0; i-- {
			stack = append(stack, node.Replies[i])
		}
	}
	return out
}

// CountReplies returns the number of descendants of node.
func CountReplies(node *Node) int {
	if node == nil {
		return 0
	}
	return len(Flatten(node.Replies))
}

package comment_test

import (
	"testing"
	"time"

	"github.com/rpggio/vantage/internal/domain/comment"
	"github.com/stretchr/testify/require"
)

var base = time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)

func at(minute int) time.Time { return base.Add(time.Duration(minute) * time.Minute) }

func ptr(s string) *string { return &s }

func ids(nodes []*comment.Node) []string {
	out := make([]string, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, n.ID)
	}
	return out
}

func TestBuildTree_OrdersByCreatedAndDetachesDanglingParents(t *testing.T) {
	flat := []comment.Comment{
		{ID: "1", CreatedAt: at(10)},
		{ID: "2", ParentID: ptr("1"), CreatedAt: at(20)},
		{ID: "3", ParentID: ptr("1"), CreatedAt: at(5)},
		{ID: "4", ParentID: ptr("99"), CreatedAt: at(1)},
	}

	roots, detached := comment.BuildTree(flat)
	require.Equal(t, []string{"4", "1"}, ids(roots))
	require.Equal(t, []string{"3", "2"}, ids(roots[1].Replies))
	require.Equal(t, []string{"4"}, detached)

	require.Equal(t, 0, roots[1].Depth)
	require.Equal(t, 1, roots[1].Replies[0].Depth)
}

func TestBuildTree_StableForEqualTimestamps(t *testing.T) {
	flat := []comment.Comment{
		{ID: "b", CreatedAt: at(1)},
		{ID: "a", CreatedAt: at(1)},
		{ID: "c", CreatedAt: at(0)},
	}

	roots, _ := comment.BuildTree(flat)
	require.Equal(t, []string{"c", "b", "a"}, ids(roots))
}

func TestBuildTree_NestedDepth(t *testing.T) {
	flat := []comment.Comment{
		{ID: "leaf", ParentID: ptr("mid"), CreatedAt: at(3)},
		{ID: "mid", ParentID: ptr("root"), CreatedAt: at(2)},
		{ID: "root", CreatedAt: at(1)},
	}

	roots, detached := comment.BuildTree(flat)
	require.Empty(t, detached)
	require.Len(t, roots, 1)

	all := comment.Flatten(roots)
	require.Equal(t, []string{"root", "mid", "leaf"}, ids(all))
	require.Equal(t, 2, all[2].Depth)
	require.Equal(t, 2, comment.CountReplies(roots[0]))
}

func TestBuildTree_BreaksCycles(t *testing.T) {
	flat := []comment.Comment{
		{ID: "x", ParentID: ptr("z"), CreatedAt: at(1)},
		{ID: "y", ParentID: ptr("x"), CreatedAt: at(2)},
		{ID: "z", ParentID: ptr("y"), CreatedAt: at(3)},
		{ID: "self", ParentID: ptr("self"), CreatedAt: at(4)},
		{ID: "tail", ParentID: ptr("y"), CreatedAt: at(5)},
	}

	roots, detached := comment.BuildTree(flat)
	require.Equal(t, []string{"x", "self"}, detached)
	require.Equal(t, []string{"x", "self"}, ids(roots))

	// Every comment appears exactly once.
	all := comment.Flatten(roots)
	require.ElementsMatch(t, []string{"x", "y", "z", "self", "tail"}, ids(all))
	require.Equal(t, []string{"z", "tail"}, ids(roots[0].Replies[0].Replies))
}

func TestBuildTree_Empty(t *testing.T) {
	roots, detached := comment.BuildTree(nil)
	require.Empty(t, roots)
	require.Empty(t, detached)
	require.Zero(t, comment.CountReplies(nil))
}

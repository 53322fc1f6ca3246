package similarity

import (
	"fmt"
	"sort"
	"strings"

	"github.com/Veraticus/subtrack/internal/model"
)

// GroupSimilarity is the similarity reported for every group. It is a
// display value, not the computed pair score.
const GroupSimilarity = 0.8

// Strategy selects how similar pairs are clustered into groups.
type Strategy string

const (
	// StrategyGreedy anchors each group on the first unconsumed subscription
	// and only pulls in records similar to that anchor. Order-sensitive.
	StrategyGreedy Strategy = "greedy"
	// StrategyTransitive groups every connected component of the
	// similar-pair graph.
	StrategyTransitive Strategy = "transitive"
)

// ParseStrategy converts a config value into a Strategy. Empty means greedy.
func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(strings.ToLower(strings.TrimSpace(s))) {
	case "", StrategyGreedy:
		return StrategyGreedy, nil
	case StrategyTransitive:
		return StrategyTransitive, nil
	}
	return "", fmt.Errorf("%w: duplicate strategy %q", model.ErrUnknownEnum, s)
}

// Detect groups duplicates using the given strategy.
func Detect(subs []model.Subscription, dismissed model.KeySet, strategy Strategy) []model.DuplicateGroup {
	if strategy == StrategyTransitive {
		return DetectTransitive(subs, dismissed)
	}
	return DetectDuplicates(subs, dismissed)
}

// DetectDuplicates runs a single left-to-right greedy pass over subs. Each
// unconsumed record becomes an anchor and absorbs every later unconsumed
// record that scores above DuplicateThreshold against it. Groups whose key
// is in dismissed are dropped.
func DetectDuplicates(subs []model.Subscription, dismissed model.KeySet) []model.DuplicateGroup {
	var groups []model.DuplicateGroup
	consumed := make(map[string]bool, len(subs))

	for i, anchor := range subs {
		if consumed[anchor.ID] {
			continue
		}

		members := []model.Subscription{anchor}
		for j := i + 1; j < len(subs); j++ {
			candidate := subs[j]
			if consumed[candidate.ID] {
				continue
			}
			if IsDuplicate(anchor, candidate) {
				members = append(members, candidate)
				consumed[candidate.ID] = true
			}
		}

		if len(members) > 1 {
			group := newGroup(members)
			if !dismissed.Has(group.Key) {
				groups = append(groups, group)
			}
		}

		consumed[anchor.ID] = true
	}

	return groups
}

// DetectTransitive groups the connected components of the graph whose edges
// are pairs scoring above DuplicateThreshold. Unlike DetectDuplicates the
// result does not depend on input order beyond member ordering.
func DetectTransitive(subs []model.Subscription, dismissed model.KeySet) []model.DuplicateGroup {
	uf := newUnionFind(len(subs))
	for i := range subs {
		for j := i + 1; j < len(subs); j++ {
			if IsDuplicate(subs[i], subs[j]) {
				uf.union(i, j)
			}
		}
	}

	components := make(map[int][]model.Subscription)
	var roots []int
	for i, sub := range subs {
		root := uf.find(i)
		if _, seen := components[root]; !seen {
			roots = append(roots, root)
		}
		components[root] = append(components[root], sub)
	}

	var groups []model.DuplicateGroup
	for _, root := range roots {
		members := components[root]
		if len(members) < 2 {
			continue
		}
		group := newGroup(members)
		if !dismissed.Has(group.Key) {
			groups = append(groups, group)
		}
	}

	return groups
}

// GroupKey derives the deterministic key for a set of subscriptions.
func GroupKey(subs []model.Subscription) string {
	ids := make([]string, len(subs))
	for i, s := range subs {
		ids[i] = s.ID
	}
	sort.Strings(ids)
	return strings.Join(ids, "-")
}

func newGroup(members []model.Subscription) model.DuplicateGroup {
	return model.DuplicateGroup{
		Key:           GroupKey(members),
		Subscriptions: members,
		Similarity:    GroupSimilarity,
		Reason:        strings.Join(ComputeSimilarity(members[0], members[1]).Reasons, ", "),
	}
}

type unionFind struct {
	parent []int
	rank   []int
}

func newUnionFind(n int) *unionFind {
	uf := &unionFind{parent: make([]int, n), rank: make([]int, n)}
	for i := range uf.parent {
		uf.parent[i] = i
	}
	return uf
}

func (u *unionFind) find(x int) int {
	for u.parent[x] != x {
		u.parent[x] = u.parent[u.parent[x]]
		x = u.parent[x]
	}
	return x
}

func (u *unionFind) union(a, b int) {
	ra, rb := u.find(a), u.find(b)
	if ra == rb {
		return
	}
	switch {
	case u.rank[ra] < u.rank[rb]:
		u.parent[ra] = rb
	case u.rank[ra] > u.rank[rb]:
		u.parent[rb] = ra
	default:
		u.parent[rb] = ra
		u.rank[ra]++
	}
}

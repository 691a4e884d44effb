// Package navigation answers back-reference questions about duplicate sets: which
// set an asset belongs to and which other assets share it.
package navigation

import (
	"dupefinder/types"
)

// CoMembers returns the other members of the set containing reference, in set order.
// An asset found in no set has no co-members.
func CoMembers(groups []types.DuplicateSet, reference types.Asset) []types.Asset {
	key := reference.Key()
	for _, set := range groups {
		if set.Contains(key) {
			return others(set, key)
		}
	}
	return []types.Asset{}
}

func others(set types.DuplicateSet, key types.AssetKey) []types.Asset {
	result := make([]types.Asset, 0, len(set)-1)
	for _, a := range set {
		if a.Key() != key {
			result = append(result, a)
		}
	}
	return result
}

// GroupIndex maps every grouped asset to its set
type GroupIndex struct {
	groups []types.DuplicateSet
	byKey  map[types.AssetKey]int
}

// NewGroupIndex indexes the output of one grouping run
func NewGroupIndex(groups []types.DuplicateSet) *GroupIndex {
	idx := &GroupIndex{groups: groups, byKey: make(map[types.AssetKey]int)}
	for i, set := range groups {
		for _, a := range set {
			idx.byKey[a.Key()] = i
		}
	}
	return idx
}

// GroupOf returns the position and contents of the set containing key
func (idx *GroupIndex) GroupOf(key types.AssetKey) (int, types.DuplicateSet, bool) {
	i, ok := idx.byKey[key]
	if !ok {
		return -1, nil, false
	}
	return i, idx.groups[i], true
}

// CoMembers is the indexed form of the package-level CoMembers
func (idx *GroupIndex) CoMembers(reference types.Asset) []types.Asset {
	key := reference.Key()
	_, set, ok := idx.GroupOf(key)
	if !ok {
		return []types.Asset{}
	}
	return others(set, key)
}

// Len returns the number of indexed assets
func (idx *GroupIndex) Len() int {
	return len(idx.byKey)
}

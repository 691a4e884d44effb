// Package exemption answers "what can I safely delete" when one folder sub-tree
// holds the copies the user intends to keep.
package exemption

import (
	"dupefinder/logging"
	"dupefinder/types"
	"dupefinder/utils"
)

// Membership describes how a duplicate set relates to the exempted folder
type Membership int

const (
	NoneExempted Membership = iota
	AllExempted
	Mixed
)

func (m Membership) String() string {
	switch m {
	case NoneExempted:
		return "none exempted"
	case AllExempted:
		return "all exempted"
	case Mixed:
		return "mixed"
	}
	return "unknown"
}

// Filter matches asset folders against one exempted folder
type Filter struct {
	root     string
	absolute bool
}

// NewFilter normalizes the exempted folder path
func NewFilter(exemptedFolderPath string) (*Filter, error) {
	root := utils.NormalizePath(exemptedFolderPath)
	if root == "" {
		return nil, &PathError{Path: exemptedFolderPath, Reason: "empty path"}
	}
	return &Filter{root: root, absolute: utils.IsAbsolutePath(root)}, nil
}

// Root returns the normalized exempted folder
func (f *Filter) Root() string {
	return f.root
}

// IsExempted reports whether the asset's folder is the exempted folder or lies below it.
// Matching is segment-wise, so "/photos/keep" does not exempt "/photos/keeper".
func (f *Filter) IsExempted(a types.Asset) (bool, error) {
	folder := utils.NormalizePath(a.FolderPath)
	if folder != "" && utils.IsAbsolutePath(folder) != f.absolute {
		return false, &PathError{
			Path:   f.root,
			Reason: "cannot compare with folder " + folder + " (absolute and relative paths mixed)",
		}
	}
	return utils.IsWithin(folder, f.root), nil
}

// Classify tells whether none, all, or only some members of the set are exempted
func (f *Filter) Classify(set types.DuplicateSet) (Membership, error) {
	exempted := 0
	for _, a := range set {
		ok, err := f.IsExempted(a)
		if err != nil {
			return NoneExempted, err
		}
		if ok {
			exempted++
		}
	}

	switch {
	case exempted == 0:
		return NoneExempted, nil
	case exempted == len(set):
		return AllExempted, nil
	}
	return Mixed, nil
}

// NotExempted returns the non-exempted members of every mixed set. Sets entirely
// inside or entirely outside the exempted folder contribute nothing.
func (f *Filter) NotExempted(groups []types.DuplicateSet) ([]types.Asset, error) {
	result := []types.Asset{}
	for i, set := range groups {
		membership, err := f.Classify(set)
		if err != nil {
			return nil, err
		}
		if membership != Mixed {
			logging.DebugLog("Set %d (%d assets): %s, skipped", i, len(set), membership)
			continue
		}

		for _, a := range set {
			// already validated by Classify
			exempted, _ := f.IsExempted(a)
			if !exempted {
				result = append(result, a)
			}
		}
	}
	return result, nil
}

// IsExempted reports whether the asset lies in or below exemptedFolderPath
func IsExempted(a types.Asset, exemptedFolderPath string) (bool, error) {
	f, err := NewFilter(exemptedFolderPath)
	if err != nil {
		return false, err
	}
	return f.IsExempted(a)
}

// Classify reports the membership of one set with respect to exemptedFolderPath
func Classify(set types.DuplicateSet, exemptedFolderPath string) (Membership, error) {
	f, err := NewFilter(exemptedFolderPath)
	if err != nil {
		return NoneExempted, err
	}
	return f.Classify(set)
}

// NotExempted returns, in group order, the members that may be deleted given that
// everything under exemptedFolderPath is kept
func NotExempted(groups []types.DuplicateSet, exemptedFolderPath string) ([]types.Asset, error) {
	f, err := NewFilter(exemptedFolderPath)
	if err != nil {
		return nil, err
	}
	return f.NotExempted(groups)
}

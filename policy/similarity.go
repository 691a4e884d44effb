// Package policy decides whether two cataloged assets show the same picture.
package policy

import (
	"dupefinder/fingerprint"
	"dupefinder/logging"
	"dupefinder/types"
)

// Method names the fingerprint comparison that produced a match
type Method string

const (
	MethodNone      Method = ""
	MethodExact     Method = "exact"
	MethodDHash     Method = "dhash"
	MethodPHash     Method = "phash"
	MethodThumbnail Method = "thumbnail"
)

// Match is the outcome of comparing two assets
type Match struct {
	Similar bool
	Method  Method
	// Distance is the Hamming distance of the winning method (0 for exact)
	Distance int
	// Closeness is 1 minus the normalized distance; 1.0 means identical fingerprints
	Closeness float64
}

// Subject is an asset with its fingerprints decoded once. Subjects are read-only
// after Prepare and safe to compare from several goroutines.
type Subject struct {
	Asset types.Asset

	// each holds the fingerprint under every quarter turn, nil when absent or unreadable
	dhash []fingerprint.Fingerprint
	phash []fingerprint.Fingerprint
}

// Prepare decodes the approximate fingerprints of an asset
func Prepare(a types.Asset) *Subject {
	return &Subject{
		Asset: a,
		dhash: decodeRotations(a, "dHash", a.DHash),
		phash: decodeRotations(a, "pHash", a.PHash),
	}
}

func decodeRotations(a types.Asset, kind, value string) []fingerprint.Fingerprint {
	if value == "" {
		return nil
	}
	f, err := fingerprint.Decode(value)
	if err != nil {
		logging.LogWarning("Ignoring unreadable %s for %s: %v", kind, a.FullPath(), err)
		return nil
	}
	return f.Rotations()
}

// AreSimilar reports whether a and b count as duplicates under cfg
func AreSimilar(a, b types.Asset, cfg Config) bool {
	return Compare(a, b, cfg).Similar
}

// Compare compares two assets and reports the strongest matching method
func Compare(a, b types.Asset, cfg Config) Match {
	return CompareSubjects(Prepare(a), Prepare(b), cfg)
}

// CompareSubjects is Compare over prepared subjects.
// When both assets carry an exact hash and exact-hash mode is on, the exact hash
// alone decides. Otherwise any enabled approximate method may match.
func CompareSubjects(a, b *Subject, cfg Config) Match {
	if !Eligible(a.Asset, cfg) || !Eligible(b.Asset, cfg) {
		return Match{}
	}

	if ExactDecides(a.Asset, b.Asset, cfg) {
		if ExactMatch(a.Asset, b.Asset) {
			return Match{Similar: true, Method: MethodExact, Closeness: 1}
		}
		return Match{}
	}

	var best Match
	consider := func(method Method, distance, size int) {
		closeness := 1 - float64(distance)/float64(size)
		if !best.Similar || closeness > best.Closeness {
			best = Match{Similar: true, Method: method, Distance: distance, Closeness: closeness}
		}
	}

	if cfg.UseDHash {
		if d, size, ok := distance(a.dhash, b.dhash); ok && d < cfg.DHashThreshold {
			consider(MethodDHash, d, size)
		}
	}

	if cfg.UsePHash {
		if d, size, ok := distance(a.phash, b.phash); ok {
			if d < cfg.PHashThreshold {
				consider(MethodPHash, d, size)
			} else if thumbnailCandidate(a.Asset, b.Asset, cfg) && d < cfg.ThumbnailPHashThreshold {
				consider(MethodThumbnail, d, size)
			}
		}
	}

	return best
}

// Eligible reports whether an asset takes part in comparisons at all
func Eligible(a types.Asset, cfg Config) bool {
	return !a.IsVideo || cfg.AnalyzeVideos
}

// ExactDecides reports whether the exact hash settles the comparison of a and b:
// exact-hash mode is on and neither hash is missing
func ExactDecides(a, b types.Asset, cfg Config) bool {
	return cfg.UseExactHash && a.ExactHash != "" && b.ExactHash != ""
}

// ExactMatch reports whether both assets carry the same exact hash
func ExactMatch(a, b types.Asset) bool {
	return a.ExactHash != "" && a.ExactHash == b.ExactHash
}

// DHashMatch reports whether the difference hashes are within threshold
func DHashMatch(a, b types.Asset, cfg Config) bool {
	d, _, ok := distance(Prepare(a).dhash, Prepare(b).dhash)
	return ok && d < cfg.DHashThreshold
}

// PHashMatch reports whether the perceptual hashes are within threshold
func PHashMatch(a, b types.Asset, cfg Config) bool {
	d, _, ok := distance(Prepare(a).phash, Prepare(b).phash)
	return ok && d < cfg.PHashThreshold
}

// ThumbnailMatch reports whether one asset is a reduced rendition of the other:
// thumbnail detection is on, sizes are a thumbnail pair, and the perceptual
// hashes are within the relaxed thumbnail threshold.
func ThumbnailMatch(a, b types.Asset, cfg Config) bool {
	if !cfg.UsePHash || !thumbnailCandidate(a, b, cfg) {
		return false
	}
	d, _, ok := distance(Prepare(a).phash, Prepare(b).phash)
	return ok && d < cfg.ThumbnailPHashThreshold
}

// AnyApproximateMatch ORs the enabled approximate methods
func AnyApproximateMatch(a, b types.Asset, cfg Config) bool {
	return (cfg.UseDHash && DHashMatch(a, b, cfg)) ||
		(cfg.UsePHash && PHashMatch(a, b, cfg)) ||
		ThumbnailMatch(a, b, cfg)
}

// distance returns the rotation tolerant Hamming distance and the fingerprint size
func distance(a, b []fingerprint.Fingerprint) (int, int, bool) {
	if len(a) == 0 || len(b) == 0 {
		return 0, 0, false
	}
	d, err := fingerprint.RotationalDistance(a[0], b)
	if err != nil {
		return 0, 0, false
	}
	return d, a[0].Len(), true
}

// thumbnailCandidate checks the geometry of a thumbnail pair: the smaller asset's
// longest side is at most ThumbnailMaxScale of the larger one's, and both share
// an aspect ratio once declared rotation is applied.
func thumbnailCandidate(a, b types.Asset, cfg Config) bool {
	if !cfg.DetectThumbnails {
		return false
	}

	aw, ah := a.OrientedSize()
	bw, bh := b.OrientedSize()
	if aw <= 0 || ah <= 0 || bw <= 0 || bh <= 0 {
		return false
	}

	aLong, bLong := max(aw, ah), max(bw, bh)
	small, large := aLong, bLong
	if small > large {
		small, large = large, small
	}
	if float64(small) > cfg.ThumbnailMaxScale*float64(large) {
		return false
	}

	aRatio := float64(aw) / float64(ah)
	bRatio := float64(bw) / float64(bh)
	diff := aRatio - bRatio
	if diff < 0 {
		diff = -diff
	}
	return diff <= cfg.AspectTolerance*max(aRatio, bRatio)
}

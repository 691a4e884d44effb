// Package grouping partitions a catalog into duplicate sets: connected components
// of the similarity graph, ordered by discovery order.
package grouping

import (
	"runtime"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"dupefinder/logging"
	"dupefinder/policy"
	"dupefinder/types"
)

// minParallelNodes is the catalog size below which comparisons stay on one goroutine
const minParallelNodes = 64

// Options tunes how a grouping run executes. It never changes the result.
type Options struct {
	// Workers bounds the goroutines comparing pairs (values below 1 mean one)
	Workers int
}

// DefaultOptions uses one worker per CPU
func DefaultOptions() Options {
	return Options{Workers: runtime.NumCPU()}
}

// Stats summarizes one grouping run
type Stats struct {
	Assets      int
	Eligible    int
	Comparisons int
	Edges       int
	Sets        int
	// Duplicates counts the assets beyond the first one of each set
	Duplicates int
	Elapsed    time.Duration
}

// Result is the outcome of one grouping run
type Result struct {
	Sets  []types.DuplicateSet
	Stats Stats
}

// edge links two catalog positions judged similar
type edge struct {
	a, b  int
	match policy.Match
}

// GroupDuplicates partitions assets into duplicate sets under cfg
func GroupDuplicates(assets []types.Asset, cfg policy.Config) ([]types.DuplicateSet, error) {
	result, err := Run(assets, cfg, DefaultOptions())
	if err != nil {
		return nil, err
	}
	return result.Sets, nil
}

// GroupCatalog groups a catalog snapshot
func GroupCatalog(catalog types.Catalog, cfg policy.Config, opts Options) (*Result, error) {
	return Run(catalog.Assets(), cfg, opts)
}

// Run groups assets and reports statistics. Sets keep the catalog order of their
// members and are ordered by the position of their first member.
func Run(assets []types.Asset, cfg policy.Config, opts Options) (*Result, error) {
	start := time.Now()
	result := &Result{Stats: Stats{Assets: len(assets)}}

	if len(assets) == 0 {
		return result, nil
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	nodes := eligibleNodes(assets, cfg)
	result.Stats.Eligible = len(nodes)

	var edges []edge
	if cfg.UseExactHash {
		edges, result.Stats.Comparisons = exactEdges(assets, nodes)

		if cfg.UseDHash || cfg.UsePHash {
			// an asset without an exact hash still meets the approximate methods
			ordered, unhashed := unhashedFirst(assets, nodes)
			logging.DebugLog("Exact hash enabled, approximate methods apply to %d assets without one", unhashed)
			approx, compared := pairwiseEdges(assets, ordered, unhashed, cfg, opts.Workers)
			edges = append(edges, approx...)
			result.Stats.Comparisons += compared
		}
	} else {
		edges, result.Stats.Comparisons = pairwiseEdges(assets, nodes, len(nodes), cfg, opts.Workers)
	}
	result.Stats.Edges = len(edges)

	result.Sets = components(assets, nodes, edges)
	result.Stats.Sets = len(result.Sets)
	for _, set := range result.Sets {
		result.Stats.Duplicates += len(set) - 1
	}
	result.Stats.Elapsed = time.Since(start)

	logging.LogGroupingRun(len(assets), result.Stats.Sets, result.Stats.Duplicates, result.Stats.Elapsed)
	return result, nil
}

// eligibleNodes returns the catalog positions taking part in comparisons.
// A repeated identity is ignored after its first appearance.
func eligibleNodes(assets []types.Asset, cfg policy.Config) []int {
	seen := make(map[types.AssetKey]bool, len(assets))
	nodes := make([]int, 0, len(assets))

	for i, a := range assets {
		key := a.Key()
		if seen[key] {
			logging.LogWarning("Asset %s appears twice in the catalog, keeping the first", key)
			continue
		}
		seen[key] = true

		if !policy.Eligible(a, cfg) {
			logging.DebugLog("Skipping video %s (videos are not analyzed)", key)
			continue
		}
		nodes = append(nodes, i)
	}
	return nodes
}

// exactEdges buckets nodes by exact hash; every bucket becomes a chain of edges
func exactEdges(assets []types.Asset, nodes []int) ([]edge, int) {
	buckets := make(map[string][]int)
	var order []string
	hashed := 0

	for _, i := range nodes {
		h := assets[i].ExactHash
		if h == "" {
			continue
		}
		hashed++
		if _, ok := buckets[h]; !ok {
			order = append(order, h)
		}
		buckets[h] = append(buckets[h], i)
	}

	var edges []edge
	exact := policy.Match{Similar: true, Method: policy.MethodExact, Closeness: 1}
	for _, h := range order {
		members := buckets[h]
		for k := 1; k < len(members); k++ {
			edges = append(edges, edge{a: members[0], b: members[k], match: exact})
		}
	}
	return edges, hashed
}

// unhashedFirst reorders nodes so those without an exact hash come first and
// returns how many there are
func unhashedFirst(assets []types.Asset, nodes []int) ([]int, int) {
	ordered := make([]int, 0, len(nodes))
	for _, i := range nodes {
		if assets[i].ExactHash == "" {
			ordered = append(ordered, i)
		}
	}
	unhashed := len(ordered)
	for _, i := range nodes {
		if assets[i].ExactHash != "" {
			ordered = append(ordered, i)
		}
	}
	return ordered, unhashed
}

// pairwiseEdges compares every pair of nodes whose first member lies among the
// first rows nodes. Rows are striped across workers; each worker appends only
// to its own slice.
func pairwiseEdges(assets []types.Asset, nodes []int, rows int, cfg policy.Config, workers int) ([]edge, int) {
	subjects := make([]*policy.Subject, len(nodes))
	for k, i := range nodes {
		subjects[k] = policy.Prepare(assets[i])
	}

	if workers < 1 || len(nodes) < minParallelNodes {
		workers = 1
	}

	perWorker := make([][]edge, workers)
	compared := make([]int, workers)
	var g errgroup.Group
	g.SetLimit(workers)

	for w := 0; w < workers; w++ {
		w := w
		g.Go(func() error {
			var local []edge
			for x := w; x < rows; x += workers {
				for y := x + 1; y < len(nodes); y++ {
					compared[w]++
					m := policy.CompareSubjects(subjects[x], subjects[y], cfg)
					if m.Similar {
						local = append(local, edge{a: nodes[x], b: nodes[y], match: m})
					}
				}
			}
			perWorker[w] = local
			return nil
		})
	}
	// workers never fail
	_ = g.Wait()

	var edges []edge
	total := 0
	for w, local := range perWorker {
		edges = append(edges, local...)
		total += compared[w]
	}
	return edges, total
}

// components unions the edges and returns the components of two or more nodes
func components(assets []types.Asset, nodes []int, edges []edge) []types.DuplicateSet {
	// strongest links first; the partition itself does not depend on edge order
	sort.Slice(edges, func(i, j int) bool {
		if edges[i].match.Closeness != edges[j].match.Closeness {
			return edges[i].match.Closeness > edges[j].match.Closeness
		}
		if edges[i].a != edges[j].a {
			return edges[i].a < edges[j].a
		}
		return edges[i].b < edges[j].b
	})

	uf := newUnionFind(len(assets))
	for _, e := range edges {
		uf.union(e.a, e.b)
	}

	members := make(map[int][]int)
	var roots []int
	for _, i := range nodes {
		root := uf.find(i)
		if _, ok := members[root]; !ok {
			roots = append(roots, root)
		}
		members[root] = append(members[root], i)
	}

	var sets []types.DuplicateSet
	for _, root := range roots {
		positions := members[root]
		if len(positions) < 2 {
			continue
		}
		set := make(types.DuplicateSet, len(positions))
		for k, i := range positions {
			set[k] = assets[i]
		}
		sets = append(sets, set)
	}
	return sets
}

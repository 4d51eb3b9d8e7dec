// ==================================================================================
//
// Work of the U.S. Department of the Navy, Naval Information Warfare Center Pacific.
// Released as open source under the MIT License.  See LICENSE file.
//
// ==================================================================================

package fs

import (
	"context"
	"fmt"
	"sort"
	"sync"

	mapset "github.com/deckarep/golang-set/v2"
	"golang.org/x/sync/errgroup"
)

type VerifyInput struct {
	Roots         []RootPair
	Filter        Filter
	NewFileSystem FileSystemFactory
	Logger        Logger
	MaxThreads    int
}

// VerifyReport lists every way the destination differs from the source.
// Paths are absolute destination paths.
type VerifyReport struct {
	Missing   []string // at source, but not at destination
	Extra     []string // at destination, but not at source, and not protected
	Different []string // at both, but with different content
}

func (vr *VerifyReport) OK() bool {
	return len(vr.Missing) == 0 && len(vr.Extra) == 0 && len(vr.Different) == 0
}

// Verify compares the trees of every root pair without writing anything.
// Content comparisons run in parallel, at most MaxThreads at a time.
func Verify(ctx context.Context, input *VerifyInput) (*VerifyReport, error) {
	report := &VerifyReport{
		Missing:   []string{},
		Extra:     []string{},
		Different: []string{},
	}

	for _, pair := range input.Roots {
		log(input.Logger, "Verifying", map[string]interface{}{
			"src":     pair.Source,
			"dst":     pair.Destination,
			"threads": input.MaxThreads,
		})
		root, err := openRoot(ctx, pair, input.Filter, input.NewFileSystem)
		if err != nil {
			return nil, err
		}
		if err := verifyRoot(ctx, input, root, report); err != nil {
			return nil, fmt.Errorf("error verifying %s: %w", pair, err)
		}
	}

	sort.Strings(report.Missing)
	sort.Strings(report.Extra)
	sort.Strings(report.Different)

	return report, nil
}

func verifyRoot(ctx context.Context, input *VerifyInput, root *mirrorRoot, report *VerifyReport) error {
	// keyed by destination name
	sources := map[string]*Record{}
	destinations := map[string]*Record{}

	err := Enumerate(ctx, root.source, root.sourceName, func(r *Record, err error) error {
		if err != nil {
			return err
		}
		if _, ok := root.filter.Excluded(root.rulePath(r.Name())); !ok {
			sources[root.destinationFor(r.Name())] = r
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("error enumerating source: %w", err)
	}

	err = Enumerate(ctx, root.destination, root.destinationName, func(r *Record, err error) error {
		if err != nil {
			return err
		}
		if _, ok := root.filter.Excluded(root.rulePath(root.sourceFor(r.Name()))); !ok {
			destinations[r.Name()] = r
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("error enumerating destination: %w", err)
	}

	sourceNames := mapset.NewThreadUnsafeSet[string]()
	for name := range sources {
		sourceNames.Add(name)
	}
	destinationNames := mapset.NewThreadUnsafeSet[string]()
	for name := range destinations {
		destinationNames.Add(name)
	}

	for _, name := range sourceNames.Difference(destinationNames).ToSlice() {
		report.Missing = append(report.Missing, root.destinationPath(name))
	}

	for _, name := range destinationNames.Difference(sourceNames).ToSlice() {
		if _, ok := root.filter.Protected(root.rulePath(root.sourceFor(name))); ok {
			continue
		}
		report.Extra = append(report.Extra, root.destinationPath(name))
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	if input.MaxThreads > 0 {
		g.SetLimit(input.MaxThreads)
	}
	for _, name := range sourceNames.Intersect(destinationNames).ToSlice() {
		source := sources[name]
		destination := destinations[name]
		g.Go(func() error {
			equal := source.Size() == destination.Size()
			if equal {
				e, err := ContentEqual(gctx, root.source, source.Name(), root.destination, destination.Name())
				if err != nil {
					return err
				}
				equal = e
			}
			if !equal {
				mu.Lock()
				report.Different = append(report.Different, destination.Path())
				mu.Unlock()
			}
			return nil
		})
	}

	return g.Wait()
}

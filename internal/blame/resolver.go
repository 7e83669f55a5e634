package blame

import (
	"sort"

	"github.com/aiblame/aiblame/pkg/models"
)

// MatchWindow is how long after a prompt a commit may land and still be
// attributed to it by the time-window strategy. Chosen empirically.
const MatchWindow = 300.0 // seconds

// StrategyNone is reported when no strategy matched.
const StrategyNone = "none"

// Strategy is one matcher in the resolution chain. Order in the chain is
// part of the contract: the first strategy to return a non-nil interaction
// wins and later ones are never consulted.
type Strategy struct {
	Name    string
	Attempt func(commitHash string, commitTimestamp float64) *models.Interaction
}

// Resolver maps a commit to the interaction that most likely produced it.
type Resolver struct {
	index      *Index
	strategies []Strategy
}

// NewResolver builds the strategy chain for one index. Hash matching is
// authoritative (the log witnessed the commit being made) and always runs
// before the time-window heuristic.
func NewResolver(index *Index) *Resolver {
	r := &Resolver{index: index}
	r.strategies = []Strategy{
		{Name: "hash", Attempt: r.matchByHash},
		{Name: "window", Attempt: r.matchByWindow},
	}
	return r
}

// Strategies exposes the chain in evaluation order.
func (r *Resolver) Strategies() []Strategy {
	return r.strategies
}

// Resolve returns the first successful match and the name of the strategy
// that produced it, or (nil, "none"). It never fails for a well-formed index.
func (r *Resolver) Resolve(commitHash string, commitTimestamp float64) (*models.Interaction, string) {
	for _, s := range r.strategies {
		if interaction := s.Attempt(commitHash, commitTimestamp); interaction != nil {
			return interaction, s.Name
		}
	}
	return nil, StrategyNone
}

// matchByHash looks the commit up directly in the hash map, trying the
// 7-character short form first, then the full hash.
func (r *Resolver) matchByHash(commitHash string, _ float64) *models.Interaction {
	short := commitHash
	if len(short) > 7 {
		short = short[:7]
	}
	if interaction, ok := r.index.HashMap[short]; ok {
		return interaction
	}
	return r.index.HashMap[commitHash]
}

// matchByWindow finds the most recent prompt at or before the commit and
// accepts it only if the commit followed within MatchWindow seconds.
func (r *Resolver) matchByWindow(_ string, commitTimestamp float64) *models.Interaction {
	if len(r.index.Keys) == 0 {
		return nil
	}

	// First index with key > commitTimestamp; the candidate sits just left.
	i := sort.Search(len(r.index.Keys), func(j int) bool {
		return r.index.Keys[j] > commitTimestamp
	})
	if i == 0 {
		return nil // commit predates every known prompt
	}

	entry := r.index.Timeline[i-1]
	delta := commitTimestamp - entry.Timestamp
	if delta < 0 || delta > MatchWindow {
		return nil
	}
	return entry.Interaction
}

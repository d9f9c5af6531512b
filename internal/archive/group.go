package archive

import "math/rand"

// Grouped holds the batches of one document keyed by TimeKey. Key order
// follows first occurrence in the document.
type Grouped struct {
	batches map[string]Batch
	keys    []string
}

// Group folds records in document order into batches. Only adjacent records
// with equal TimeKey merge; when a key reappears later in the document the
// later run replaces the earlier one under that key and the key keeps its
// original position.
func Group(records []Record) *Grouped {
	g := &Grouped{batches: make(map[string]Batch)}
	var current []Record
	var openKey string
	flush := func() {
		if len(current) == 0 {
			return
		}
		if _, seen := g.batches[openKey]; !seen {
			g.keys = append(g.keys, openKey)
		}
		g.batches[openKey] = Batch{TimeKey: openKey, Records: current}
		current = nil
	}
	for _, rec := range records {
		if rec.TimeKey != openKey {
			flush()
			openKey = rec.TimeKey
		}
		current = append(current, rec)
	}
	flush()
	return g
}

// Len returns the number of batches.
func (g *Grouped) Len() int { return len(g.batches) }

// Keys returns batch keys in first-occurrence order.
func (g *Grouped) Keys() []string { return g.keys }

// Batch returns the batch stored under key.
func (g *Grouped) Batch(key string) (Batch, bool) {
	b, ok := g.batches[key]
	return b, ok
}

// Pick returns one batch chosen uniformly at random, or false when there is
// nothing to pick.
func (g *Grouped) Pick(rng *rand.Rand) (Batch, bool) {
	if len(g.keys) == 0 {
		return Batch{}, false
	}
	key := g.keys[rng.Intn(len(g.keys))]
	return g.batches[key], true
}

package reconcile

import (
	"errors"
	"io"

	"go.uber.org/zap"
)

// Outcome tells the restart controller how a merge pass ended.
type Outcome int

const (
	// OutcomeStable means every master row was written with the current schema.
	OutcomeStable Outcome = iota
	// OutcomeRestart means a field outside the schema was needed; the pass is void.
	OutcomeRestart
)

// PassResult is the result of one merge pass over the master dataset.
type PassResult struct {
	// Outcome is OutcomeStable or OutcomeRestart.
	Outcome Outcome

	// Field is the newly discovered field name when Outcome is OutcomeRestart.
	Field string

	// MasterRows counts master records written during the pass.
	MasterRows int

	// Aligned counts children merged into master rows.
	Aligned int
}

// MatchPool holds the child records not yet consumed by a match, in child file order.
type MatchPool struct {
	idColumn string
	children []Record
}

// newMatchPool splits children into the pool, the identifiers rejected by width and the
// number of children with no identifier at all.
// With a numeric master width only children whose normalized identifier has exactly
// that length are eligible. Children with an empty identifier never join.
func newMatchPool(children []Record, idColumn string, masterWidth IDWidth) (*MatchPool, []string, int) {
	pool := &MatchPool{idColumn: idColumn}
	var rejected []string
	missing := 0
	for _, child := range children {
		raw := child.Get(idColumn)
		id := NormalizeID(raw, Mixed)
		switch {
		case id == "":
			missing++
		case !masterWidth.Mixed() && len(id) != int(masterWidth):
			rejected = append(rejected, raw)
		default:
			pool.children = append(pool.children, child)
		}
	}
	return pool, rejected, missing
}

// Take removes and returns the first child whose unpadded normalized identifier equals id.
func (p *MatchPool) Take(id string) (Record, bool) {
	for i, child := range p.children {
		if NormalizeID(child.Get(p.idColumn), Mixed) != id {
			continue
		}
		p.children = append(p.children[:i:i], p.children[i+1:]...)
		return child, true
	}
	return Record{}, false
}

// Len returns the number of children still in the pool.
func (p *MatchPool) Len() int {
	return len(p.children)
}

// Remaining returns the unconsumed children in their original order.
func (p *MatchPool) Remaining() []Record {
	return p.children
}

// OutputRecord is one output row keyed by schema field name.
// Fields without a value are written as empty strings.
type OutputRecord struct {
	values map[string]string
}

func newOutputRecord() OutputRecord {
	return OutputRecord{values: make(map[string]string)}
}

// Get returns the value stored under name.
func (o OutputRecord) Get(name string) string {
	return o.values[name]
}

// Row renders the record in schema order.
func (o OutputRecord) Row(schema *Schema) []string {
	row := make([]string, schema.Len())
	for i, name := range schema.names {
		row[i] = o.values[name]
	}
	return row
}

// pairing carries the per-merge settings the match engine needs.
type pairing struct {
	masterID    string
	masterWidth IDWidth
	childID     string
}

// mergePass streams master records, merging pooled children into each one and handing
// every finished row to emit. It stops at the first field the schema lacks and reports
// it as OutcomeRestart; rows emitted before that point must be discarded by the caller.
func mergePass(master *Dataset, pool *MatchPool, schema *Schema, p pairing, emit func(OutputRecord) error, log *zap.Logger) (PassResult, error) {
	var res PassResult
	for {
		m, err := master.Next()
		if errors.Is(err, io.EOF) {
			return res, nil
		}
		if err != nil {
			return res, err
		}

		out := newOutputRecord()
		for _, name := range m.Fields() {
			out.values[name] = m.Get(name)
		}

		id := NormalizeID(m.Get(p.masterID), p.masterWidth)
		for {
			child, ok := pool.Take(id)
			if !ok {
				break
			}
			res.Aligned++
			log.Debug("ID match", zap.String("id", m.Get(p.masterID)))
			if kept, raw := out.values[p.childID], child.Get(p.childID); kept != "" && kept != raw {
				log.Debug("Child ID differs from the one already written",
					zap.String("kept", kept),
					zap.String("dropped", raw),
				)
			}

			if field := mergeChild(out, m, child, schema, p.childID); field != "" {
				res.Outcome = OutcomeRestart
				res.Field = field
				return res, nil
			}
		}

		if err := emit(out); err != nil {
			return res, err
		}
		res.MasterRows++
	}
}

// mergeChild copies every field of child into out following the suffix-increment rule.
// It returns the first field name that would be needed but is missing from the schema,
// or "" when every value found a slot.
// The child id column holds one value per row: the first raw id written wins, and later
// children whose id is formatted differently ("12-34" vs "1234") leave it untouched.
func mergeChild(out OutputRecord, master, child Record, schema *Schema, childID string) string {
	for _, key := range child.Fields() {
		value := child.Get(key)

		if key == childID {
			// Same join key after normalization.
			if out.values[key] == "" {
				out.values[key] = value
			}
			continue
		}
		if value == "" {
			continue
		}

		// Never write under a name the master record owns.
		for master.Has(key) {
			key = incrementKey(key)
			if !schema.Has(key) {
				return key
			}
		}

		// An earlier child already filled this slot for the same master row.
		if out.values[key] != "" {
			for {
				key = incrementKey(key)
				if !schema.Has(key) {
					return key
				}
				if !master.Has(key) && out.values[key] == "" {
					break
				}
			}
		}

		out.values[key] = value
	}
	return ""
}

// emitOrphans turns unmatched children into output rows carrying only their own fields.
func emitOrphans(remaining []Record, schema *Schema) []OutputRecord {
	rows := make([]OutputRecord, 0, len(remaining))
	for _, child := range remaining {
		out := newOutputRecord()
		for _, name := range child.Fields() {
			if schema.Has(name) {
				out.values[name] = child.Get(name)
			}
		}
		rows = append(rows, out)
	}
	return rows
}

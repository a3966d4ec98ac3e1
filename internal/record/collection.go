// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package record

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"sort"
)

var (
	// ErrNilRecord is returned when a nil record is offered to a collection.
	ErrNilRecord = errors.New("record must not be nil")

	// ErrNilCollection is returned when combining with a nil collection.
	ErrNilCollection = errors.New("collection must not be nil")

	// ErrPendingExclusions is returned by Insert while exclusion marks are
	// outstanding. Call DropMarked first.
	ErrPendingExclusions = errors.New("records marked for exclusion must be dropped before inserting")
)

// Collection is an ordered sequence of records with a pending-exclusion
// set: positions marked for removal but not yet compacted out. Every
// structural mutation keeps the set consistent with the sequence, so a
// marked index always refers to a live record.
//
// Derived collections (Filter, Find, Slice, Deduplicate, Combine) start
// with an empty exclusion set; exclusion state is positional and loses its
// meaning once the sequence is re-derived.
type Collection struct {
	recs     []*Record
	excluded map[int]struct{}
}

// NewCollection returns a collection holding the given records, in order.
// It fails with ErrNilRecord if any record is nil.
func NewCollection(recs ...*Record) (*Collection, error) {
	c := &Collection{excluded: make(map[int]struct{})}
	if err := c.Extend(recs...); err != nil {
		return nil, err
	}
	return c, nil
}

// Len returns the number of records, including ones marked for exclusion.
func (c *Collection) Len() int { return len(c.recs) }

// At returns the record at index i. It panics when i is out of range,
// matching slice indexing.
func (c *Collection) At(i int) *Record { return c.recs[i] }

// Records returns the records in order. The slice is a copy; the records
// are shared.
func (c *Collection) Records() []*Record {
	return append([]*Record(nil), c.recs...)
}

// Append adds a record at the end.
func (c *Collection) Append(r *Record) error {
	if r == nil {
		return ErrNilRecord
	}
	c.recs = append(c.recs, r)
	return nil
}

// Extend appends records in order. On a nil record nothing is appended and
// the collection is left unmodified.
func (c *Collection) Extend(recs ...*Record) error {
	for _, r := range recs {
		if r == nil {
			return ErrNilRecord
		}
	}
	c.recs = append(c.recs, recs...)
	return nil
}

// Insert places a record at index i, shifting later records up. It fails
// with ErrPendingExclusions while any exclusion marks are outstanding:
// inserting would silently shift what the marks point at.
func (c *Collection) Insert(i int, r *Record) error {
	if len(c.excluded) > 0 {
		return ErrPendingExclusions
	}
	if r == nil {
		return ErrNilRecord
	}
	if i < 0 || i > len(c.recs) {
		return fmt.Errorf("insert index %d out of range [0, %d]", i, len(c.recs))
	}
	c.recs = append(c.recs, nil)
	copy(c.recs[i+1:], c.recs[i:])
	c.recs[i] = r
	return nil
}

// MarkExcluded marks the record at index i for removal. Marking an already
// marked index is a no-op.
func (c *Collection) MarkExcluded(i int) error {
	if i < 0 || i >= len(c.recs) {
		return fmt.Errorf("exclusion index %d out of range [0, %d)", i, len(c.recs))
	}
	c.excluded[i] = struct{}{}
	return nil
}

// Unmark removes the exclusion mark at index i, if any.
func (c *Collection) Unmark(i int) {
	delete(c.excluded, i)
}

// IsMarked reports whether index i is marked for exclusion.
func (c *Collection) IsMarked(i int) bool {
	_, ok := c.excluded[i]
	return ok
}

// Marked returns the marked indices in ascending order.
func (c *Collection) Marked() []int {
	out := make([]int, 0, len(c.excluded))
	for i := range c.excluded {
		out = append(out, i)
	}
	sort.Ints(out)
	return out
}

// DropMarked removes all records marked for exclusion and clears the
// pending-exclusion set.
func (c *Collection) DropMarked() {
	if len(c.excluded) == 0 {
		return
	}
	kept := c.recs[:0]
	for i, r := range c.recs {
		if _, drop := c.excluded[i]; !drop {
			kept = append(kept, r)
		}
	}
	for i := len(kept); i < len(c.recs); i++ {
		c.recs[i] = nil
	}
	c.recs = kept
	c.excluded = make(map[int]struct{})
}

// Pop removes and returns the record at index i. If i was marked for
// exclusion the mark is cleared, and marks above i shift down with the
// records they point at.
func (c *Collection) Pop(i int) (*Record, error) {
	if i < 0 || i >= len(c.recs) {
		return nil, fmt.Errorf("pop index %d out of range [0, %d)", i, len(c.recs))
	}
	r := c.recs[i]
	c.recs = append(c.recs[:i], c.recs[i+1:]...)

	shifted := make(map[int]struct{}, len(c.excluded))
	for idx := range c.excluded {
		switch {
		case idx < i:
			shifted[idx] = struct{}{}
		case idx > i:
			shifted[idx-1] = struct{}{}
		}
	}
	c.excluded = shifted
	return r, nil
}

// Filter returns a new collection holding the records for which pred is
// true. The result's exclusion set is empty.
func (c *Collection) Filter(pred func(*Record) bool) *Collection {
	out := &Collection{excluded: make(map[int]struct{})}
	for _, r := range c.recs {
		if pred(r) {
			out.recs = append(out.recs, r)
		}
	}
	return out
}

// Find returns the records whose text matches the pattern (substring or
// regular expression, searched anywhere).
func (c *Collection) Find(pattern string) (*Collection, error) {
	re, err := CompilePattern(pattern)
	if err != nil {
		return nil, err
	}
	return c.Filter(func(r *Record) bool {
		return re.MatchString(r.AsText())
	}), nil
}

// Deduplicate returns a new collection with PMID duplicates removed. Two
// records are duplicates iff both carry the same PMID; the first occurrence
// wins and relative order is preserved. Records without a PMID are always
// kept.
//
// PMID is the whole identity: two genuinely different records sharing a
// malformed PMID collapse to one.
func (c *Collection) Deduplicate() *Collection {
	seen := make(map[string]bool, len(c.recs))
	return c.Filter(func(r *Record) bool {
		pmid, ok := r.PMID()
		if !ok {
			return true
		}
		if seen[pmid] {
			return false
		}
		seen[pmid] = true
		return true
	})
}

// Combine returns a new collection holding this collection's records
// followed by other's. Exclusion marks do not carry over.
func (c *Collection) Combine(other *Collection) (*Collection, error) {
	if other == nil {
		return nil, ErrNilCollection
	}
	out := &Collection{excluded: make(map[int]struct{})}
	out.recs = append(out.recs, c.recs...)
	out.recs = append(out.recs, other.recs...)
	return out, nil
}

// Slice returns a new collection over records [from, to). The bounds are
// clamped to the valid range and the exclusion set resets to empty.
func (c *Collection) Slice(from, to int) *Collection {
	if from < 0 {
		from = 0
	}
	if to > len(c.recs) {
		to = len(c.recs)
	}
	out := &Collection{excluded: make(map[int]struct{})}
	if from < to {
		out.recs = append(out.recs, c.recs[from:to]...)
	}
	return out
}

// Summary reports the record count and, when any record has a parseable
// year, the publication year range. Records without a year still count.
func (c *Collection) Summary() string {
	minYear, maxYear, have := 0, 0, false
	for _, r := range c.recs {
		y, ok := r.Year()
		if !ok {
			continue
		}
		if !have || y < minYear {
			minYear = y
		}
		if !have || y > maxYear {
			maxYear = y
		}
		have = true
	}

	switch {
	case !have:
		return fmt.Sprintf("<Records | %d entries>", len(c.recs))
	case minYear == maxYear:
		return fmt.Sprintf("<Records | %d entries | %d>", len(c.recs), minYear)
	default:
		return fmt.Sprintf("<Records | %d entries | %d - %d>", len(c.recs), minYear, maxYear)
	}
}

// Browse iterates over records not yet marked for exclusion, displaying
// each and reading one line from in: "n" marks the record for exclusion,
// "q" halts the review, anything else keeps it. Marks accumulate in the
// pending-exclusion set; compact with DropMarked.
func (c *Collection) Browse(in io.Reader, out io.Writer, fields []string, width int) error {
	scanner := bufio.NewScanner(in)
	for i, r := range c.recs {
		if c.IsMarked(i) {
			continue
		}
		r.Display(out, fields, width)
		fmt.Fprintln(out, "\n --> keep this record? (y/n/q)")
		if !scanner.Scan() {
			break
		}
		switch scanner.Text() {
		case "n":
			c.excluded[i] = struct{}{}
		case "q":
			return scanner.Err()
		}
	}
	return scanner.Err()
}

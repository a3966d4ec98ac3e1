// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package record

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func recWith(pmid, title, dp string) *Record {
	r := New()
	if pmid != "" {
		r.SetString("PMID", pmid)
	}
	r.SetString("TI", title)
	if dp != "" {
		r.SetString("DP", dp)
	}
	return r
}

func mustCollection(t *testing.T, recs ...*Record) *Collection {
	t.Helper()
	c, err := NewCollection(recs...)
	if err != nil {
		t.Fatalf("NewCollection: %v", err)
	}
	return c
}

func pmids(c *Collection) []string {
	out := make([]string, 0, c.Len())
	for _, r := range c.Records() {
		pmid, _ := r.PMID()
		out = append(out, pmid)
	}
	return out
}

func samePMIDs(a []string, b ...string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestNewCollectionRejectsNil(t *testing.T) {
	if _, err := NewCollection(recWith("1", "a", ""), nil); !errors.Is(err, ErrNilRecord) {
		t.Errorf("err = %v, want ErrNilRecord", err)
	}
}

func TestAppendAndExtend(t *testing.T) {
	c := mustCollection(t)
	if err := c.Append(recWith("1", "a", "")); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if err := c.Append(nil); !errors.Is(err, ErrNilRecord) {
		t.Errorf("Append(nil) err = %v", err)
	}

	// A failing Extend must leave the collection unmodified.
	if err := c.Extend(recWith("2", "b", ""), nil, recWith("3", "c", "")); !errors.Is(err, ErrNilRecord) {
		t.Fatalf("Extend with nil err = %v", err)
	}
	if c.Len() != 1 {
		t.Errorf("Len() after failed Extend = %d, want 1", c.Len())
	}

	if err := c.Extend(recWith("2", "b", ""), recWith("3", "c", "")); err != nil {
		t.Fatalf("Extend: %v", err)
	}
	if !samePMIDs(pmids(c), "1", "2", "3") {
		t.Errorf("records = %v", pmids(c))
	}
}

func TestInsert(t *testing.T) {
	c := mustCollection(t, recWith("1", "a", ""), recWith("3", "c", ""))
	if err := c.Insert(1, recWith("2", "b", "")); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if !samePMIDs(pmids(c), "1", "2", "3") {
		t.Errorf("records = %v", pmids(c))
	}

	if err := c.Insert(7, recWith("9", "z", "")); err == nil {
		t.Errorf("out-of-range Insert should fail")
	}
	if err := c.Insert(0, nil); !errors.Is(err, ErrNilRecord) {
		t.Errorf("Insert(nil) err = %v", err)
	}
}

func TestInsertBlockedByPendingExclusions(t *testing.T) {
	c := mustCollection(t, recWith("1", "a", ""), recWith("2", "b", ""))
	if err := c.MarkExcluded(0); err != nil {
		t.Fatalf("MarkExcluded: %v", err)
	}

	if err := c.Insert(1, recWith("3", "c", "")); !errors.Is(err, ErrPendingExclusions) {
		t.Errorf("err = %v, want ErrPendingExclusions", err)
	}

	c.DropMarked()
	if err := c.Insert(0, recWith("3", "c", "")); err != nil {
		t.Errorf("Insert after DropMarked: %v", err)
	}
}

func TestMarkingAndDropMarked(t *testing.T) {
	c := mustCollection(t,
		recWith("1", "a", ""), recWith("2", "b", ""),
		recWith("3", "c", ""), recWith("4", "d", ""))

	if err := c.MarkExcluded(1); err != nil {
		t.Fatalf("MarkExcluded(1): %v", err)
	}
	if err := c.MarkExcluded(3); err != nil {
		t.Fatalf("MarkExcluded(3): %v", err)
	}
	if err := c.MarkExcluded(1); err != nil { // re-mark is a no-op
		t.Fatalf("re-mark: %v", err)
	}
	if err := c.MarkExcluded(9); err == nil {
		t.Errorf("out-of-range mark should fail")
	}

	marked := c.Marked()
	if len(marked) != 2 || marked[0] != 1 || marked[1] != 3 {
		t.Errorf("Marked() = %v, want [1 3]", marked)
	}
	if !c.IsMarked(3) || c.IsMarked(0) {
		t.Errorf("IsMarked inconsistent")
	}

	c.Unmark(3)
	if c.IsMarked(3) {
		t.Errorf("Unmark did not clear the mark")
	}

	c.DropMarked()
	if !samePMIDs(pmids(c), "1", "3", "4") {
		t.Errorf("records after DropMarked = %v", pmids(c))
	}
	if len(c.Marked()) != 0 {
		t.Errorf("marks should be cleared after DropMarked")
	}
}

func TestPopShiftsMarks(t *testing.T) {
	c := mustCollection(t,
		recWith("1", "a", ""), recWith("2", "b", ""),
		recWith("3", "c", ""), recWith("4", "d", ""))
	c.MarkExcluded(0)
	c.MarkExcluded(2)
	c.MarkExcluded(3)

	// Popping a marked index clears its mark; marks above shift down.
	r, err := c.Pop(2)
	if err != nil {
		t.Fatalf("Pop: %v", err)
	}
	if pmid, _ := r.PMID(); pmid != "3" {
		t.Errorf("popped record = %q, want 3", pmid)
	}

	marked := c.Marked()
	if len(marked) != 2 || marked[0] != 0 || marked[1] != 2 {
		t.Errorf("Marked() after Pop = %v, want [0 2]", marked)
	}
	// Mark 2 still points at record "4", now shifted down one slot.
	if pmid, _ := c.At(2).PMID(); pmid != "4" {
		t.Errorf("record at shifted mark = %q, want 4", pmid)
	}

	if _, err := c.Pop(9); err == nil {
		t.Errorf("out-of-range Pop should fail")
	}
}

func TestFindAndFilter(t *testing.T) {
	c := mustCollection(t,
		recWith("1", "olfactory receptor expression", "2014"),
		recWith("2", "taste receptor expression", "2016"),
		recWith("3", "visual cortex mapping", "2018"))

	found, err := c.Find("receptor")
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if !samePMIDs(pmids(found), "1", "2") {
		t.Errorf("Find(receptor) = %v", pmids(found))
	}

	found, err = c.Find("olf.ctory|visual")
	if err != nil {
		t.Fatalf("Find regexp: %v", err)
	}
	if !samePMIDs(pmids(found), "1", "3") {
		t.Errorf("Find(regexp) = %v", pmids(found))
	}

	if _, err := c.Find("(unclosed"); err == nil {
		t.Errorf("invalid pattern should fail")
	}

	// Filter by year, the usual downstream of Year().
	recent := c.Filter(func(r *Record) bool {
		y, ok := r.Year()
		return ok && y >= 2016
	})
	if !samePMIDs(pmids(recent), "2", "3") {
		t.Errorf("year filter = %v", pmids(recent))
	}
}

func TestFindIgnoresSourceMarks(t *testing.T) {
	c := mustCollection(t,
		recWith("1", "alpha", ""), recWith("2", "alpha beta", ""))
	c.MarkExcluded(0)

	found, err := c.Find("alpha")
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	// Derived collections start over: marks neither filter nor carry.
	if found.Len() != 2 || len(found.Marked()) != 0 {
		t.Errorf("derived collection Len=%d Marked=%v", found.Len(), found.Marked())
	}
}

func TestDeduplicate(t *testing.T) {
	a := mustCollection(t, recWith("1", "a", ""), recWith("2", "b", ""))
	b := mustCollection(t, recWith("2", "b again", ""), recWith("3", "c", ""))

	combined, err := a.Combine(b)
	if err != nil {
		t.Fatalf("Combine: %v", err)
	}
	deduped := combined.Deduplicate()
	if !samePMIDs(pmids(deduped), "1", "2", "3") {
		t.Errorf("Deduplicate = %v", pmids(deduped))
	}
	// First occurrence wins.
	if v, _ := deduped.At(1).Get("TI"); v.String() != "b" {
		t.Errorf("kept record TI = %q, want first occurrence", v.String())
	}

	// Records without a PMID are always kept.
	noPMIDs := mustCollection(t, recWith("", "x", ""), recWith("", "y", ""))
	if noPMIDs.Deduplicate().Len() != 2 {
		t.Errorf("records without PMID should survive dedup")
	}
}

func TestCombineAndSlice(t *testing.T) {
	a := mustCollection(t, recWith("1", "a", ""), recWith("2", "b", ""))
	b := mustCollection(t, recWith("3", "c", ""))

	if _, err := a.Combine(nil); !errors.Is(err, ErrNilCollection) {
		t.Errorf("Combine(nil) err = %v", err)
	}

	combined, err := a.Combine(b)
	if err != nil {
		t.Fatalf("Combine: %v", err)
	}
	if !samePMIDs(pmids(combined), "1", "2", "3") {
		t.Errorf("Combine = %v", pmids(combined))
	}

	// Slicing the combination at the seam recovers each operand.
	left := combined.Slice(0, a.Len())
	right := combined.Slice(a.Len(), combined.Len())
	if !samePMIDs(pmids(left), "1", "2") || !samePMIDs(pmids(right), "3") {
		t.Errorf("split = %v / %v", pmids(left), pmids(right))
	}

	// Bounds clamp instead of panicking.
	if got := combined.Slice(-5, 99); got.Len() != 3 {
		t.Errorf("clamped Slice Len = %d", got.Len())
	}
	if got := combined.Slice(2, 1); got.Len() != 0 {
		t.Errorf("inverted Slice Len = %d", got.Len())
	}
}

func TestSummary(t *testing.T) {
	empty := mustCollection(t)
	if got := empty.Summary(); got != "<Records | 0 entries>" {
		t.Errorf("Summary() = %q", got)
	}

	oneYear := mustCollection(t, recWith("1", "a", "2014 Oct"), recWith("2", "b", "2014"))
	if got := oneYear.Summary(); got != "<Records | 2 entries | 2014>" {
		t.Errorf("Summary() = %q", got)
	}

	span := mustCollection(t,
		recWith("1", "a", "2010"), recWith("2", "b", "2018 Jan"), recWith("3", "c", ""))
	if got := span.Summary(); got != "<Records | 3 entries | 2010 - 2018>" {
		t.Errorf("Summary() = %q", got)
	}
}

func TestBrowse(t *testing.T) {
	c := mustCollection(t,
		recWith("1", "a", ""), recWith("2", "b", ""), recWith("3", "c", ""))

	in := strings.NewReader("y\nn\ny\n")
	var out bytes.Buffer
	if err := c.Browse(in, &out, nil, 0); err != nil {
		t.Fatalf("Browse: %v", err)
	}

	marked := c.Marked()
	if len(marked) != 1 || marked[0] != 1 {
		t.Errorf("Marked() = %v, want [1]", marked)
	}
	if !strings.Contains(out.String(), "keep this record? (y/n/q)") {
		t.Errorf("missing prompt in output")
	}
}

func TestBrowseQuitAndResume(t *testing.T) {
	c := mustCollection(t,
		recWith("1", "a", ""), recWith("2", "b", ""), recWith("3", "c", ""))

	// Quit after marking the first record.
	if err := c.Browse(strings.NewReader("n\nq\n"), &bytes.Buffer{}, nil, 0); err != nil {
		t.Fatalf("Browse: %v", err)
	}
	if got := c.Marked(); len(got) != 1 || got[0] != 0 {
		t.Errorf("Marked() = %v, want [0]", got)
	}

	// A second pass skips the already-marked record.
	var out bytes.Buffer
	if err := c.Browse(strings.NewReader("y\nn\n"), &out, nil, 0); err != nil {
		t.Fatalf("Browse resume: %v", err)
	}
	if got := c.Marked(); len(got) != 2 || got[0] != 0 || got[1] != 2 {
		t.Errorf("Marked() after resume = %v, want [0 2]", got)
	}
	if strings.Contains(out.String(), "----- 1") {
		t.Errorf("marked record should not be shown again")
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	r1 := recWith("1", "alpha", "2014 Oct")
	r1.SetList("AU", []string{"Smith AB", "Jones CD"})
	c := mustCollection(t, r1, recWith("2", "beta", "2016"))

	path := filepath.Join(t.TempDir(), "records.json")
	if err := c.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}

	back, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if back.Len() != c.Len() {
		t.Fatalf("Len() = %d, want %d", back.Len(), c.Len())
	}
	for i := range c.Records() {
		if !c.At(i).Equal(back.At(i)) {
			t.Errorf("record %d changed across round trip", i)
		}
	}
}

func TestSaveSkipsMarked(t *testing.T) {
	c := mustCollection(t,
		recWith("1", "a", ""), recWith("2", "b", ""), recWith("3", "c", ""))
	c.MarkExcluded(1)

	path := filepath.Join(t.TempDir(), "records.json")
	if err := c.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}

	back, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !samePMIDs(pmids(back), "1", "3") {
		t.Errorf("loaded records = %v", pmids(back))
	}

	// Saving does not compact the in-memory collection.
	if c.Len() != 3 || !c.IsMarked(1) {
		t.Errorf("Save mutated the collection")
	}
}

func TestLoadRejectsNonArray(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(path, []byte(`{"PMID": "1"}`), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Errorf("Load of a non-array should fail")
	}
}

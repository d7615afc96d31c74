package mzxml

// Reassembler restores parent-child relationships from a document-order
// stream of flat scan records. Records are fed one at a time; each
// completed level-1 group comes back flattened in pre-order, every
// record exactly once, direct children attached on the way out.
//
// A record deeper than level 1 is buffered under the nearest open
// record with a smaller level. The buffers hold ids and slices only;
// no record is mutated until its group flushes.
type Reassembler struct {
	top     *Scan
	open    []*Scan            // currently open records, shallow to deep
	pending map[string][]*Scan // buffered children by parent id
}

// NewReassembler returns an empty machine.
func NewReassembler() *Reassembler {
	return &Reassembler{pending: make(map[string][]*Scan)}
}

// Feed advances the machine with one record. When r opens a new group,
// the previous group is closed and returned flattened; a group whose
// root is not level 1 fails with a NestingError.
func (a *Reassembler) Feed(r *Scan) ([]*Scan, error) {
	if a.top == nil {
		a.reroot(r)
		return nil, nil
	}

	if r.MSLevel == 1 {
		flushed, err := a.closeGroup()
		if err != nil {
			return nil, err
		}
		a.reroot(r)
		return flushed, nil
	}

	if r.MSLevel < a.top.MSLevel {
		// Shallower than the root but not a root itself. The stream can
		// no longer produce a valid group; buffer the old root under r
		// and let the next close surface the error.
		a.pending[r.Num] = append(a.pending[r.Num], a.top)
		a.reroot(r)
		return nil, nil
	}

	// Pop the open chain to the nearest record shallower than r. The
	// root stays anchored so same-level records keep appending to one
	// buffer.
	for len(a.open) > 1 && a.open[len(a.open)-1].MSLevel >= r.MSLevel {
		a.open = a.open[:len(a.open)-1]
	}
	parent := a.open[len(a.open)-1]
	a.pending[parent.Num] = append(a.pending[parent.Num], r)
	a.open = append(a.open, r)
	return nil, nil
}

// Flush closes the final group at end of stream. A root still open at
// a level other than 1 is a NestingError, never a silent flush.
func (a *Reassembler) Flush() ([]*Scan, error) {
	return a.closeGroup()
}

func (a *Reassembler) reroot(r *Scan) {
	a.top = r
	a.open = append(a.open[:0], r)
}

func (a *Reassembler) closeGroup() ([]*Scan, error) {
	if a.top == nil {
		return nil, nil
	}
	if a.top.MSLevel != 1 {
		return nil, &NestingError{Level: a.top.MSLevel, ScanID: a.top.Num}
	}
	out := flatten(a.top, a.pending)
	a.top = nil
	a.open = a.open[:0]
	a.pending = make(map[string][]*Scan)
	return out, nil
}

// flatten emits root and everything buffered beneath it in pre-order,
// attaching each record's direct children as it goes.
func flatten(root *Scan, pending map[string][]*Scan) []*Scan {
	var out []*Scan
	stack := []*Scan{root}
	for len(stack) > 0 {
		s := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		kids := pending[s.Num]
		s.Children = kids
		out = append(out, s)
		for i := len(kids) - 1; i >= 0; i-- {
			stack = append(stack, kids[i])
		}
	}
	return out
}

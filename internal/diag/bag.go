package diag

import "sort"

// Bag collects diagnostics up to a cap. Diagnostics past the cap are counted
// but not kept.
type Bag struct {
	items   []Diagnostic
	max     int
	dropped int
}

// NewBag returns a bag keeping at most max diagnostics; max <= 0 means no cap.
func NewBag(max int) *Bag {
	return &Bag{max: max}
}

// Add appends d. It returns false if the cap was reached.
func (b *Bag) Add(d Diagnostic) bool {
	if b.max > 0 && len(b.items) >= b.max {
		b.dropped++
		return false
	}
	b.items = append(b.items, d)
	return true
}

// Report makes Bag a Reporter.
func (b *Bag) Report(d Diagnostic) {
	b.Add(d)
}

func (b *Bag) Len() int {
	if b == nil {
		return 0
	}
	return len(b.items)
}

// Dropped returns how many diagnostics did not fit under the cap.
func (b *Bag) Dropped() int {
	if b == nil {
		return 0
	}
	return b.dropped
}

// Items returns the collected diagnostics. Do not modify the result.
func (b *Bag) Items() []Diagnostic {
	if b == nil {
		return nil
	}
	return b.items
}

// HasWarnings is true if anything at warning level or above was collected.
func (b *Bag) HasWarnings() bool {
	for _, d := range b.Items() {
		if d.Severity >= SevWarning {
			return true
		}
	}
	return false
}

// Counts groups collected diagnostics by code.
func (b *Bag) Counts() map[Code]int {
	counts := make(map[Code]int)
	for _, d := range b.Items() {
		counts[d.Code]++
	}
	return counts
}

// Filter returns the diagnostics with the given code.
func (b *Bag) Filter(code Code) []Diagnostic {
	var out []Diagnostic
	for _, d := range b.Items() {
		if d.Code == code {
			out = append(out, d)
		}
	}
	return out
}

// Sort orders diagnostics by stage, subject, severity (desc) and code, keeping
// report order for ties.
func (b *Bag) Sort() {
	sort.SliceStable(b.items, func(i, j int) bool {
		di, dj := b.items[i], b.items[j]
		if di.Stage != dj.Stage {
			return di.Stage < dj.Stage
		}
		if di.Subject != dj.Subject {
			return di.Subject < dj.Subject
		}
		if di.Severity != dj.Severity {
			return di.Severity > dj.Severity
		}
		return di.Code < dj.Code
	})
}

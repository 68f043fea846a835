package graph

import "doclink/internal/doclet"

// DerivationOf classifies a doclet. Borrowing wins over inheritance because a
// borrowed copy of an inherited member keeps its inherited flag.
func DerivationOf(d *doclet.Doclet) Derivation {
	switch {
	case d.BorrowedFrom != "":
		return DerivationBorrowed
	case d.Mixed:
		return DerivationMixed
	case d.Inherited:
		return DerivationInherited
	}
	return DerivationNative
}

func (c *Collection) DerivationCounts() map[Derivation]int {
	counts := make(map[Derivation]int)
	if c == nil {
		return counts
	}
	for _, d := range c.docs {
		counts[DerivationOf(d)]++
	}
	return counts
}

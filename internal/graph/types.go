package graph

// RelationKind names a declared relationship between two doclets.
type RelationKind string

const (
	RelationAugments   RelationKind = "augments"
	RelationMixes      RelationKind = "mixes"
	RelationImplements RelationKind = "implements"
	RelationBorrows    RelationKind = "borrows"
)

// Edge is a declared relationship from a doclet to the longname it names.
// To may not exist in the collection.
type Edge struct {
	From string       `json:"from"`
	To   string       `json:"to"`
	Kind RelationKind `json:"kind"`
}

// Derivation classifies how a doclet came to exist.
type Derivation string

const (
	DerivationNative    Derivation = "native"
	DerivationInherited Derivation = "inherited"
	DerivationMixed     Derivation = "mixed"
	DerivationBorrowed  Derivation = "borrowed"
)

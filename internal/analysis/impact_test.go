package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"doclink/internal/doclet"
	"doclink/internal/graph"
	"doclink/internal/resolver"
)

func names(docs []*doclet.Doclet) []string {
	out := make([]string, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.Longname)
	}
	return out
}

func member(memberof string, scope doclet.Scope, name string) *doclet.Doclet {
	d := &doclet.Doclet{Name: name, Kind: doclet.KindFunction, Description: name}
	d.Scope = scope
	d.SetMemberof(memberof)
	return d
}

func class(name string, augments ...string) *doclet.Doclet {
	return &doclet.Doclet{Longname: name, Name: name, Kind: doclet.KindClass, Scope: doclet.ScopeGlobal, Augments: augments}
}

func TestAnalyzeImpact_Chains(t *testing.T) {
	borrowed := member("lib", doclet.ScopeStatic, "x")
	borrowed.BorrowedFrom = "A#x"
	again := member("app", doclet.ScopeStatic, "x")
	again.BorrowedFrom = "lib.x"
	inherited := member("B", doclet.ScopeInstance, "x")
	inherited.Inherits = "A#x"
	inherited.Inherited = true

	c := graph.NewCollection([]*doclet.Doclet{
		class("A"),
		member("A", doclet.ScopeInstance, "x"),
		class("B", "A"),
		inherited,
		borrowed,
		again,
		class("Unrelated"),
	})

	report, err := NewAnalyzer(c).AnalyzeImpact("A")
	require.NoError(t, err)

	assert.Equal(t, "A", report.Subject)
	assert.Equal(t, []string{"A", "A#x"}, names(report.Sources))
	assert.Equal(t, []string{"B#x", "lib.x"}, names(report.DirectlyAffected))
	assert.Equal(t, []string{"app.x"}, names(report.IndirectlyAffected))
	assert.Equal(t, []string{"B", "lib", "app"}, report.Receivers)
}

func TestAnalyzeImpact_Member(t *testing.T) {
	impl := member("Dog", doclet.ScopeInstance, "pet")
	impl.Implements = []string{"Pet#pet"}
	dog := class("Dog")
	dog.Implements = []string{"Pet"}

	c := graph.NewCollection([]*doclet.Doclet{
		{Longname: "Pet", Name: "Pet", Kind: doclet.KindInterface, Scope: doclet.ScopeGlobal},
		member("Pet", doclet.ScopeInstance, "pet"),
		dog,
		impl,
	})

	report, err := NewAnalyzer(c).AnalyzeImpact("Pet")
	require.NoError(t, err)
	assert.Equal(t, []string{"Dog#pet"}, names(report.DirectlyAffected), "the implementing class is a receiver, not a copy")
	assert.Equal(t, []string{"Dog"}, report.Receivers)
}

func TestAnalyzeImpact_ResolvedCollection(t *testing.T) {
	docs := []*doclet.Doclet{
		class("Animal"),
		member("Animal", doclet.ScopeInstance, "speak"),
		member("Animal", doclet.ScopeInstance, "eat"),
		class("Dog", "Animal"),
		member("Dog", doclet.ScopeInstance, "eat"),
		class("Puppy", "Dog"),
		class("Cat"),
		{Longname: "kennel", Name: "kennel", Kind: doclet.KindNamespace, Scope: doclet.ScopeGlobal,
			Borrowed: []doclet.Borrow{{From: "Dog#speak", As: "bark"}}},
	}
	res := resolver.Resolve(docs, resolver.Options{})

	report, err := NewAnalyzer(res.Collection).AnalyzeImpact("Animal")
	require.NoError(t, err)

	direct := names(report.DirectlyAffected)
	assert.Contains(t, direct, "Dog#speak")
	assert.Contains(t, direct, "Dog#eat", "an override depends on the ancestor member")
	assert.Contains(t, direct, "Puppy#speak", "inherited copies point at the root member")

	all := append(direct, names(report.IndirectlyAffected)...)
	assert.Contains(t, all, "kennel#bark")
	assert.Contains(t, all, "Puppy#eat")
	assert.Contains(t, report.Receivers, "kennel")
	assert.NotContains(t, report.Receivers, "Cat")
}

func TestAnalyzeImpact_UnknownSymbol(t *testing.T) {
	_, err := NewAnalyzer(graph.NewCollection(nil)).AnalyzeImpact("Nope")
	assert.ErrorIs(t, err, ErrUnknownSymbol)
}

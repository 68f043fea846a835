package graph

import (
	"bytes"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"doclink/internal/doclet"
)

func zoo() []*doclet.Doclet {
	return []*doclet.Doclet{
		{Longname: "Animal", Name: "Animal", Kind: doclet.KindClass},
		{Longname: "Animal#speak", Name: "speak", Memberof: "Animal", Scope: doclet.ScopeInstance, Kind: doclet.KindFunction},
		{Longname: "Dog", Name: "Dog", Kind: doclet.KindClass, Augments: []string{"Animal"}, Implements: []string{"Pet"}},
		{Longname: "Dog#fetch", Name: "fetch", Memberof: "Dog", Scope: doclet.ScopeInstance, Kind: doclet.KindFunction, Implements: []string{"Pet#fetch"}},
		{Longname: "Kennel", Name: "Kennel", Kind: doclet.KindNamespace, Borrowed: []doclet.Borrow{{From: "Dog#fetch", As: "call"}}},
	}
}

func TestCollection_Queries(t *testing.T) {
	c := NewCollection(zoo())

	t.Run("ByKind", func(t *testing.T) {
		classes := c.ByKind(doclet.KindClass)
		require.Len(t, classes, 2)
		assert.Equal(t, "Animal", classes[0].Longname)
		assert.Equal(t, "Dog", classes[1].Longname)
	})

	t.Run("Children", func(t *testing.T) {
		children := c.Children("Animal")
		require.Len(t, children, 1)
		assert.Equal(t, "Animal#speak", children[0].Longname)
		assert.Empty(t, c.Children("Nope"))
	})

	t.Run("Relations", func(t *testing.T) {
		edges := c.Relations()
		assert.Equal(t, []Edge{
			{From: "Dog", To: "Animal", Kind: RelationAugments},
			{From: "Dog", To: "Pet", Kind: RelationImplements},
			{From: "Kennel", To: "Dog#fetch", Kind: RelationBorrows},
		}, edges)
	})
}

func TestCollection_CloneIsIndependent(t *testing.T) {
	c := NewCollection(zoo())
	c.Index()

	clone := c.Clone()
	clone.At(0).Description = "changed"
	clone.Append(&doclet.Doclet{Longname: "Dog#speak", Name: "speak", Memberof: "Dog", Scope: doclet.ScopeInstance, Inherited: true})

	assert.Empty(t, c.At(0).Description)
	assert.Equal(t, 5, c.Len())
	assert.Equal(t, 6, clone.Len())

	_, ok := clone.Lookup("Dog#speak")
	assert.True(t, ok, "appended doclet is indexed in the clone")
	_, ok = c.Lookup("Dog#speak")
	assert.False(t, ok)
}

func TestCollection_DerivationCounts(t *testing.T) {
	c := NewCollection([]*doclet.Doclet{
		{Longname: "A"},
		{Longname: "B#x", Inherited: true},
		{Longname: "B#y", Mixed: true, Inherited: true},
		{Longname: "C#x", Inherited: true, BorrowedFrom: "B#x"},
	})
	assert.Equal(t, map[Derivation]int{
		DerivationNative:    1,
		DerivationInherited: 1,
		DerivationMixed:     1,
		DerivationBorrowed:  1,
	}, c.DerivationCounts())
}

func TestDependencies_Sort(t *testing.T) {
	g := NewDependencies[string]()
	g.AddEdge("C", "B")
	g.AddEdge("B", "A")
	g.AddNode("D")
	g.AddEdge("E", "A")

	assert.Equal(t, []string{"A", "B", "C", "D", "E"}, g.Sort(nil))
}

func TestDependencies_CycleEdges(t *testing.T) {
	g := NewDependencies[string]()
	g.AddEdge("A", "B")
	g.AddEdge("B", "A")
	g.AddEdge("C", "A")
	g.AddEdge("S", "S")
	g.AddEdge("X", "Y")
	g.AddEdge("Y", "Z")
	g.AddEdge("Z", "X")

	cycles := g.CycleEdges()
	assert.True(t, cycles[DepEdge[string]{"A", "B"}])
	assert.True(t, cycles[DepEdge[string]{"B", "A"}])
	assert.True(t, cycles[DepEdge[string]{"S", "S"}])
	assert.True(t, cycles[DepEdge[string]{"Z", "X"}])
	assert.False(t, cycles[DepEdge[string]{"C", "A"}])
	assert.Len(t, cycles, 6)

	sorted := g.Sort(func(e DepEdge[string]) bool { return cycles[e] })
	assert.Len(t, sorted, len(g.Nodes()))
	assert.Less(t, indexOf(sorted, "A"), indexOf(sorted, "C"))
}

func indexOf(s []string, v string) int {
	for i, x := range s {
		if x == v {
			return i
		}
	}
	return -1
}

func TestSnapshot_RoundTrip(t *testing.T) {
	fs := afero.NewMemMapFs()
	c := NewCollection(zoo())
	require.NoError(t, fs.MkdirAll("/out", 0o755))

	require.NoError(t, SaveFile(fs, "/out/doclets.json", c))
	loaded, err := LoadFile(fs, "/out/doclets.json")
	require.NoError(t, err)

	require.Equal(t, c.Len(), loaded.Len())
	for i := range c.Len() {
		assert.Equal(t, c.At(i).Longname, loaded.At(i).Longname)
	}
	assert.Equal(t, []doclet.Borrow{{From: "Dog#fetch", As: "call"}}, loaded.At(4).Borrowed)
}

func TestReadJSON_SkipsNulls(t *testing.T) {
	c, err := ReadJSON(bytes.NewBufferString(`[{"longname":"A"}, null]`))
	require.NoError(t, err)
	assert.Equal(t, 1, c.Len())

	_, err = ReadJSON(bytes.NewBufferString(`{`))
	assert.Error(t, err)
}

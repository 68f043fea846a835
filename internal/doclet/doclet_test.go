package doclet

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDoclet_JSONPreservesUnknownProps(t *testing.T) {
	raw := `{
		"longname": "Animal#speak",
		"name": "speak",
		"kind": "function",
		"scope": "instance",
		"memberof": "Animal",
		"params": [{"name": "volume", "type": {"names": ["number"]}}],
		"meta": {"lineno": 12},
		"inheritdoc": ""
	}`

	var d Doclet
	require.NoError(t, json.Unmarshal([]byte(raw), &d))

	assert.Equal(t, "Animal#speak", d.Longname)
	assert.Equal(t, ScopeInstance, d.Scope)
	assert.True(t, bool(d.InheritDoc))
	require.Contains(t, d.Props, "params")
	require.Contains(t, d.Props, "meta")
	assert.NotContains(t, d.Props, "longname")

	out, err := json.Marshal(d)
	require.NoError(t, err)

	var back map[string]any
	require.NoError(t, json.Unmarshal(out, &back))
	assert.Equal(t, "Animal#speak", back["longname"])
	assert.Equal(t, map[string]any{"lineno": float64(12)}, back["meta"])
	assert.Len(t, back["params"], 1)
}

func TestDoclet_SetMemberofRecomputesLongname(t *testing.T) {
	d := &Doclet{Name: "speak", Scope: ScopeInstance, Memberof: "Animal", Longname: "Animal#speak"}

	d.SetMemberof("Dog")
	assert.Equal(t, "Dog#speak", d.Longname)

	d.SetScope(ScopeStatic)
	assert.Equal(t, "Dog.speak", d.Longname)

	d.SetName("bark")
	assert.Equal(t, "Dog.bark", d.Longname)
}

func TestDoclet_Reparent(t *testing.T) {
	d := &Doclet{Longname: "Animal#speak", Name: "speak", Memberof: "Animal", Scope: ScopeInstance}
	key := d.Reparent("Dog")

	assert.Equal(t, "Dog#speak", key.String())
	assert.Equal(t, "Dog#speak", d.Longname)
	assert.Equal(t, "Dog", d.Memberof)

	global := &Doclet{Longname: "trstr", Name: "trstr", Scope: ScopeGlobal}
	key = global.Reparent("Util")
	assert.Equal(t, "Util.trstr", key.String())
	assert.Equal(t, ScopeStatic, global.Scope)
}

func TestDoclet_CloneIsDeep(t *testing.T) {
	d := &Doclet{
		Longname: "Dog",
		Augments: []string{"Animal"},
		Borrowed: []Borrow{{From: "Util.trim"}},
		Props:    map[string]json.RawMessage{"meta": json.RawMessage(`{"a":1}`)},
	}
	c := d.Clone()

	c.Augments[0] = "Cat"
	c.Borrowed[0].As = "strip"
	c.Props["meta"][0] = '['

	assert.Equal(t, "Animal", d.Augments[0])
	assert.Empty(t, d.Borrowed[0].As)
	assert.Equal(t, `{"a":1}`, string(d.Props["meta"]))
}

func TestDoclet_AddImplements(t *testing.T) {
	d := &Doclet{}
	assert.True(t, d.AddImplements("I#m"))
	assert.False(t, d.AddImplements("I#m"))
	assert.Equal(t, []string{"I#m"}, d.Implements)
}

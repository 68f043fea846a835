package extractor

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseComment(t *testing.T) {
	c := parseComment(`/**
	 * Adds two numbers.
	 * Second line.
	 *
	 * @param {number} a first
	 *   continued
	 * @borrows util.trim as strip
	 * @inheritdoc
	 */`)

	assert.Equal(t, "Adds two numbers.\nSecond line.", c.Description)
	assert.Equal(t, []docTag{
		{Title: "param", Value: "{number} a first\ncontinued"},
		{Title: "borrows", Value: "util.trim as strip"},
		{Title: "inheritdoc"},
	}, c.Tags)
	assert.True(t, c.has("InheritDoc"))
	assert.False(t, c.has("module"))
}

func TestIsDocComment(t *testing.T) {
	assert.True(t, isDocComment("/** doc */"))
	assert.True(t, isDocComment("/**\n * doc\n */"))
	assert.False(t, isDocComment("/* plain */"))
	assert.False(t, isDocComment("/*** banner ***/"))
	assert.False(t, isDocComment("/**/"))
	assert.False(t, isDocComment("// line"))
}

func TestTagValues(t *testing.T) {
	tests := []struct {
		in, name, target string
	}{
		{"Foo", "Foo", "Foo"},
		{"{Runnable}", "", "Runnable"},
		{"{Object<string, {a: number}>} opts the options", "opts", "Object<string, {a: number}>"},
		{"[count=1] how many", "count", "count"},
		{"", "", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.name, tagName(tt.in), "tagName(%q)", tt.in)
		assert.Equal(t, tt.target, tagTarget(tt.in), "tagTarget(%q)", tt.in)
	}

	from, as, ok := parseBorrow("util.trim as strip")
	assert.True(t, ok)
	assert.Equal(t, "util.trim", from)
	assert.Equal(t, "strip", as)

	from, as, ok = parseBorrow(" util ")
	assert.True(t, ok)
	assert.Equal(t, "util", from)
	assert.Empty(t, as)

	_, _, ok = parseBorrow("  ")
	assert.False(t, ok)
}

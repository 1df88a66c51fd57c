package doc

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWithFieldChaining(t *testing.T) {
	d := NewDocument("iphone-13").
		WithField("title", NewText("Apple iPhone")).
		WithField("price", NewNumber(999)).
		WithField("inStock", NewBool(true))

	assert.Equal(t, "iphone-13", d.ID)
	assert.Equal(t, "Apple iPhone", d.Fields["title"].Text)
	assert.Equal(t, float64(999), d.Fields["price"].Number)
	assert.True(t, d.Fields["inStock"].Bool)
}

func TestTextFieldsAllWhenUnrestricted(t *testing.T) {
	d := NewDocument("x").
		WithField("title", NewText("hello")).
		WithField("tags", NewArray(NewText("a"), NewText("b")))

	got := d.TextFields(nil)
	assert.ElementsMatch(t, []string{"hello"}, got)
}

func TestTextFieldsRestrictedToNamed(t *testing.T) {
	d := NewDocument("x").
		WithField("title", NewText("hello")).
		WithField("body", NewText("world"))

	got := d.TextFields([]string{"title"})
	assert.Equal(t, []string{"hello"}, got)
}

func TestTextFieldsCoercesScalars(t *testing.T) {
	d := NewDocument("x").
		WithField("price", NewNumber(9.5)).
		WithField("active", NewBool(false))

	got := d.TextFields([]string{"price", "active"})
	assert.ElementsMatch(t, []string{"9.5", "false"}, got)
}

func TestTextFieldsSkipsArrayAndMap(t *testing.T) {
	d := NewDocument("x").
		WithField("tags", NewArray(NewText("a"))).
		WithField("meta", NewMap(map[string]Value{"k": NewText("v")}))

	got := d.TextFields([]string{"tags", "meta"})
	assert.Empty(t, got)
}

func TestCloneIsIndependent(t *testing.T) {
	orig := NewDocument("x").WithField("tags", NewArray(NewText("a")))
	clone := orig.Clone()

	clone.Fields["tags"].Array[0] = NewText("mutated")
	assert.Equal(t, "a", orig.Fields["tags"].Array[0].Text)
}

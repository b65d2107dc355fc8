package compiler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/xiaobogaga/hack/internal/ir"
)

func TestSymbolTable_Define(t *testing.T) {
	table := NewSymbolTable()
	table.Define("x", "int", KindField)
	table.Define("y", "int", KindField)
	table.Define("count", "int", KindStatic)
	table.Define("p", "Point", KindField)

	assert.Equal(t, 3, table.VarCount(KindField))
	assert.Equal(t, 1, table.VarCount(KindStatic))
	assert.Equal(t, 0, table.VarCount(KindVar))

	index, ok := table.IndexOf("p")
	assert.True(t, ok)
	assert.Equal(t, 2, index)
	index, ok = table.IndexOf("count")
	assert.True(t, ok)
	assert.Equal(t, 0, index)
	tp, ok := table.TypeOf("p")
	assert.True(t, ok)
	assert.Equal(t, "Point", tp)
	assert.Equal(t, KindField, table.KindOf("y"))
}

func TestSymbolTable_Missing(t *testing.T) {
	table := NewSymbolTable()
	assert.Equal(t, KindNone, table.KindOf("nope"))
	_, ok := table.TypeOf("nope")
	assert.False(t, ok)
	_, ok = table.IndexOf("nope")
	assert.False(t, ok)
}

func TestSymbolTable_Redefine(t *testing.T) {
	table := NewSymbolTable()
	table.Define("a", "int", KindVar)
	table.Define("a", "char", KindVar)
	tp, _ := table.TypeOf("a")
	assert.Equal(t, "char", tp)
	index, _ := table.IndexOf("a")
	assert.Equal(t, 1, index)
	assert.Equal(t, 2, table.VarCount(KindVar))

	table.Reset()
	assert.Equal(t, 0, table.VarCount(KindVar))
	assert.Equal(t, KindNone, table.KindOf("a"))
}

func TestScope_Lookup(t *testing.T) {
	class := NewSymbolTable()
	class.Define("x", "int", KindField)
	class.Define("shared", "int", KindStatic)
	routine := NewSymbolTable()
	routine.Define("x", "boolean", KindArg)

	s := scope{class: class, routine: routine}
	symbol, ok := s.lookup("x")
	assert.True(t, ok)
	assert.Equal(t, KindArg, symbol.Kind)
	symbol, ok = s.lookup("shared")
	assert.True(t, ok)
	assert.Equal(t, KindStatic, symbol.Kind)
	_, ok = s.lookup("missing")
	assert.False(t, ok)
}

func TestKind_Segment(t *testing.T) {
	testData := []struct {
		Kind    Kind
		Segment ir.Segment
	}{
		{Kind: KindStatic, Segment: ir.StaticSegment},
		{Kind: KindField, Segment: ir.ThisSegment},
		{Kind: KindArg, Segment: ir.ArgumentSegment},
		{Kind: KindVar, Segment: ir.LocalSegment},
	}
	for _, data := range testData {
		seg, ok := data.Kind.Segment()
		assert.True(t, ok)
		assert.Equal(t, data.Segment, seg)
	}
	_, ok := KindNone.Segment()
	assert.False(t, ok)
}

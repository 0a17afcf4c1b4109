package node

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindClassification(t *testing.T) {
	t.Parallel()

	tests := []struct {
		kind       Kind
		scope      bool
		statement  bool
		expression bool
		candidate  bool
	}{
		{KindFunction, true, false, false, false},
		{KindMethod, true, false, false, false},
		{KindClosure, true, false, true, true},
		{KindArrowFunction, true, false, true, true},
		{KindExpressionStatement, false, true, false, false},
		{KindReturn, false, true, false, false},
		{KindBlock, false, false, false, false},
		{KindVariable, false, false, true, false},
		{KindAssignment, false, false, true, false},
		{KindBinaryOp, false, false, true, true},
		{KindCall, false, false, true, true},
		{KindName, false, false, false, false},
		{KindProperty, false, false, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.scope, tt.kind.IsScope(), "IsScope")
			assert.Equal(t, tt.statement, tt.kind.IsStatement(), "IsStatement")
			assert.Equal(t, tt.expression, tt.kind.IsExpression(), "IsExpression")
			assert.Equal(t, tt.candidate, tt.kind.IsMatchCandidate(), "IsMatchCandidate")
		})
	}
}

func TestKindNames(t *testing.T) {
	t.Parallel()

	for kind := KindUnknown; kind < kindCount; kind++ {
		assert.NotEmpty(t, kind.String(), "kind %d has no name", kind)
	}

	assert.Equal(t, "Unknown", Kind(250).String())

	text, err := KindArrowFunction.MarshalText()
	assert.NoError(t, err)
	assert.Equal(t, "ArrowFunction", string(text))
}

func TestKindStatementLists(t *testing.T) {
	t.Parallel()

	assert.True(t, KindFile.IsStatementList())
	assert.True(t, KindBlock.IsStatementList())
	assert.True(t, KindCase.IsStatementList())
	assert.False(t, KindMembers.IsStatementList())
	assert.True(t, KindFunction.IsNamedScope())
	assert.False(t, KindClosure.IsNamedScope())
}

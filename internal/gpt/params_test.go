package gpt

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParamsOrderAndReplace(t *testing.T) {
	t.Parallel()

	p := NewParams().
		Set("alpha", "1").
		Set("beta", "2").
		SetUnset("gamma").
		Set("delta", "4")

	if diff := cmp.Diff([]string{"alpha", "beta", "gamma", "delta"}, p.Keys()); diff != "" {
		t.Fatalf("keys out of order (-want +got):\n%s", diff)
	}

	// Replacing a key keeps its position.
	p.Set("beta", "20")
	if diff := cmp.Diff([]string{"alpha", "beta", "gamma", "delta"}, p.Keys()); diff != "" {
		t.Fatalf("replace moved key (-want +got):\n%s", diff)
	}
	v, ok := p.Get("beta")
	require.True(t, ok)
	assert.Equal(t, "20", v)

	// Unset keys are present but carry no string value.
	assert.True(t, p.Has("gamma"))
	_, ok = p.Get("gamma")
	assert.False(t, ok)
}

func TestParamsBlocks(t *testing.T) {
	t.Parallel()

	inner := NewParams().Set("x", "1").SetUnset("y")
	p := NewParams().SetBlock("outer", inner).Set("leaf", "v")

	block, ok := p.Block("outer")
	require.True(t, ok)
	v, ok := block.Get("x")
	require.True(t, ok)
	assert.Equal(t, "1", v)

	// A leaf key is not a block and vice versa.
	_, ok = p.Block("leaf")
	assert.False(t, ok)
	_, ok = p.Get("outer")
	assert.False(t, ok)

	// Nil blocks are stored as empty ones.
	p.SetBlock("empty", nil)
	block, ok = p.Block("empty")
	require.True(t, ok)
	assert.Equal(t, 0, block.Len())
}

func TestParamsCloneIsDeep(t *testing.T) {
	t.Parallel()

	inner := NewParams().Set("x", "1")
	orig := NewParams().Set("a", "1").SetBlock("b", inner)

	clone := orig.Clone()
	clone.Set("a", "changed")
	innerClone, ok := clone.Block("b")
	require.True(t, ok)
	innerClone.Set("x", "changed")

	v, _ := orig.Get("a")
	assert.Equal(t, "1", v)
	origInner, _ := orig.Block("b")
	v, _ = origInner.Get("x")
	assert.Equal(t, "1", v)
}

func TestParamsWithoutUnset(t *testing.T) {
	t.Parallel()

	inner := NewParams().Set("kept", "v").SetUnset("droppedInner")
	p := NewParams().
		Set("a", "1").
		SetUnset("dropped").
		SetBlock("b", inner)

	got := p.WithoutUnset()
	if diff := cmp.Diff([]string{"a", "b"}, got.Keys()); diff != "" {
		t.Fatalf("unexpected keys (-want +got):\n%s", diff)
	}
	block, ok := got.Block("b")
	require.True(t, ok)
	if diff := cmp.Diff([]string{"kept"}, block.Keys()); diff != "" {
		t.Fatalf("unset key survived in block (-want +got):\n%s", diff)
	}

	// The original is untouched.
	assert.True(t, p.Has("dropped"))
}

func TestParamsEqual(t *testing.T) {
	t.Parallel()

	build := func() *Params {
		return NewParams().
			Set("a", "1").
			SetUnset("u").
			SetBlock("b", NewParams().Set("x", "2"))
	}

	assert.True(t, build().Equal(build()))

	reordered := NewParams().
		SetUnset("u").
		Set("a", "1").
		SetBlock("b", NewParams().Set("x", "2"))
	assert.False(t, build().Equal(reordered), "order is significant")

	changed := build().Set("a", "other")
	assert.False(t, build().Equal(changed))

	var nilParams *Params
	assert.True(t, nilParams.Equal(NewParams()))
	assert.False(t, nilParams.Equal(build()))
}

func TestParamsValidateKeys(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		params  *Params
		wantErr bool
	}{
		{"simple", NewParams().Set("orbitType", "x"), false},
		{"dotted tail", NewParams().Set("a.b-c_d9", "x"), false},
		{"empty key", NewParams().Set("", "x"), true},
		{"space in key", NewParams().Set("bad key", "x"), true},
		{"leading digit", NewParams().Set("9bad", "x"), true},
		{"bad nested key", NewParams().SetBlock("ok", NewParams().Set("also bad", "x")), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewOperator("Step", tt.params)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

package gpt

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddNodeRejectsDuplicates(t *testing.T) {
	t.Parallel()

	doc := NewDocument()
	op := mustOperator("Read", NewParams().Set("file", "/data/a.dim"))

	require.NoError(t, doc.AddNode("Read", op))
	err := doc.AddNode("Read", op)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDuplicateNode))
	assert.Contains(t, err.Error(), `"Read"`)
	assert.Equal(t, 1, doc.Len())
}

func TestAddNodeValidation(t *testing.T) {
	t.Parallel()

	doc := NewDocument()
	op := mustOperator("Step", nil)

	assert.Error(t, doc.AddNode("", op), "empty id")
	assert.Error(t, doc.AddNode("n", Operator{}), "zero operator")
	assert.Error(t, doc.AddNode("n", op, "a", ""), "empty predecessor")
	assert.Equal(t, 0, doc.Len())
}

func TestDocumentEncodeShape(t *testing.T) {
	t.Parallel()

	doc := NewDocument()
	require.NoError(t, doc.AddNode("Read", mustOperator("Read", NewParams().Set("file", "/data/a.dim"))))
	require.NoError(t, doc.AddNode("Write", mustOperator("Write", NewParams().Set("file", "/tmp/out.dim")), "Read"))

	out, err := doc.Bytes()
	require.NoError(t, err)
	xml := string(out)

	assert.True(t, strings.HasPrefix(xml, `<graph id="Graph">`), "root element: %s", xml)
	assert.Contains(t, xml, "<version>1.0</version>")
	assert.Contains(t, xml, `<node id="Read">`)
	assert.Contains(t, xml, "<operator>Read</operator>")
	assert.Contains(t, xml, `<parameters class="com.bc.ceres.binding.dom.XppDomElement">`)
	assert.Contains(t, xml, "<file>/data/a.dim</file>")

	// Version precedes the first node.
	assert.Less(t, strings.Index(xml, "<version>"), strings.Index(xml, "<node"))

	// A head node still carries an empty sources element.
	readSection := xml[strings.Index(xml, `<node id="Read">`):strings.Index(xml, `<node id="Write">`)]
	assert.Contains(t, readSection, "<sources></sources>")

	// The write node references its predecessor without a suffix.
	assert.Contains(t, xml, `<sourceProduct refid="Read">`)
}

func TestFanInReferenceSuffixes(t *testing.T) {
	t.Parallel()

	doc := NewDocument()
	for _, id := range []string{"a", "b", "c"} {
		require.NoError(t, doc.AddNode(id, mustOperator("Step-"+id, nil)))
	}
	require.NoError(t, doc.AddNode("merge", mustOperator("Merge", nil), "a", "b", "c"))

	out, err := doc.Bytes()
	require.NoError(t, err)
	xml := string(out)

	// Index 0 takes no suffix; later references are numbered from 1.
	assert.Contains(t, xml, `<sourceProduct refid="a">`)
	assert.Contains(t, xml, `<sourceProduct.1 refid="b">`)
	assert.Contains(t, xml, `<sourceProduct.2 refid="c">`)
	assert.NotContains(t, xml, `<sourceProduct.0`)
	assert.NotContains(t, xml, `<sourceProduct.3`)

	// References appear in predecessor order.
	ia := strings.Index(xml, `refid="a"`)
	ib := strings.Index(xml, `refid="b"`)
	ic := strings.Index(xml, `refid="c"`)
	assert.True(t, ia < ib && ib < ic, "fan-in order: a=%d b=%d c=%d", ia, ib, ic)
}

func TestUnsetParametersAreOmitted(t *testing.T) {
	t.Parallel()

	src := testSource{name: "S1", path: "/data/s1.zip", height: 100, width: 200}
	read, err := NewRead(src)
	require.NoError(t, err)

	doc := NewDocument()
	require.NoError(t, doc.AddNode("Read", read))

	out, err := doc.Bytes()
	require.NoError(t, err)
	xml := string(out)

	assert.NotContains(t, xml, "bandNames")
	assert.NotContains(t, xml, "maskNames")
	assert.Contains(t, xml, "<pixelRegion>0,0,200,100</pixelRegion>")
}

func TestNestedParameterBlocks(t *testing.T) {
	t.Parallel()

	params := NewParams().
		Set("leaf", "v").
		SetBlock("outer", NewParams().
			Set("inner", "w").
			SetBlock("deeper", NewParams().Set("deepest", "x")))
	doc := NewDocument()
	require.NoError(t, doc.AddNode("n", mustOperator("Step", params)))

	out, err := doc.Bytes()
	require.NoError(t, err)
	xml := string(out)

	assert.Contains(t, xml, "<leaf>v</leaf>")
	assert.Contains(t, xml, "<outer>")
	assert.Contains(t, xml, "<inner>w</inner>")
	assert.Contains(t, xml, "<deepest>x</deepest>")
	assert.Less(t, strings.Index(xml, "<outer>"), strings.Index(xml, "<inner>"))
}

func TestDocumentNodeAccessors(t *testing.T) {
	t.Parallel()

	doc := NewDocument()
	require.NoError(t, doc.AddNode("Read", mustOperator("Read", nil)))
	require.NoError(t, doc.AddNode("Write", mustOperator("Write", nil), "Read"))

	nodes := doc.Nodes()
	require.Len(t, nodes, 2)
	assert.Equal(t, "Read", nodes[0].ID)
	assert.Equal(t, "Write", nodes[1].ID)
	if diff := cmp.Diff([]string{"Read"}, nodes[1].Predecessors); diff != "" {
		t.Fatalf("predecessors (-want +got):\n%s", diff)
	}

	n, ok := doc.Node("Write")
	require.True(t, ok)
	assert.Equal(t, "Write", n.Operator.Name())
	_, ok = doc.Node("missing")
	assert.False(t, ok)
}

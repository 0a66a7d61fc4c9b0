package semantic

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arxml-community/arxml-dev-tools/internal/parser"
)

const swc = `<AUTOSAR xmlns="http://autosar.org/schema/r4.0">
  <AR-PACKAGES>
    <AR-PACKAGE>
      <SHORT-NAME>Demo</SHORT-NAME>
      <ELEMENTS>
        <APPLICATION-SW-COMPONENT-TYPE>
          <SHORT-NAME>Swc</SHORT-NAME>
          <PORTS>
            <R-PORT-PROTOTYPE>
              <SHORT-NAME>SpeedIn</SHORT-NAME>
              <REQUIRED-COM-SPECS>
                <NONQUEUED-RECEIVER-COM-SPEC>
                  <DATA-ELEMENT-REF DEST="VARIABLE-DATA-PROTOTYPE">/Demo/SpeedIf/Speed</DATA-ELEMENT-REF>
                </NONQUEUED-RECEIVER-COM-SPEC>
                <QUEUED-RECEIVER-COM-SPEC>
                  <NESTED><DATA-ELEMENT-REF DEST="VARIABLE-DATA-PROTOTYPE">/Demo/SpeedIf/Accel/</DATA-ELEMENT-REF></NESTED>
                </QUEUED-RECEIVER-COM-SPEC>
                <NONQUEUED-RECEIVER-COM-SPEC>
                  <INIT-VALUE/>
                </NONQUEUED-RECEIVER-COM-SPEC>
              </REQUIRED-COM-SPECS>
              <REQUIRED-INTERFACE-TREF DEST="SENDER-RECEIVER-INTERFACE">/Demo/SpeedIf</REQUIRED-INTERFACE-TREF>
            </R-PORT-PROTOTYPE>
            <R-PORT-PROTOTYPE>
              <SHORT-NAME>DiagIn</SHORT-NAME>
              <REQUIRED-INTERFACE-TREF DEST="client-server-interface">/Demo/DiagIf</REQUIRED-INTERFACE-TREF>
            </R-PORT-PROTOTYPE>
            <P-PORT-PROTOTYPE>
              <SHORT-NAME>DiagOut</SHORT-NAME>
              <PROVIDED-COM-SPECS>
                <SERVER-COM-SPEC>
                  <OPERATION-REF DEST="CLIENT-SERVER-OPERATION">/Demo/DiagIf/Read</OPERATION-REF>
                </SERVER-COM-SPEC>
              </PROVIDED-COM-SPECS>
              <PROVIDED-INTERFACE-TREF DEST="CLIENT-SERVER-INTERFACE">/Demo/DiagIf</PROVIDED-INTERFACE-TREF>
            </P-PORT-PROTOTYPE>
            <P-PORT-PROTOTYPE>
              <SHORT-NAME>SpeedOut</SHORT-NAME>
              <PROVIDED-COM-SPECS>
                <NONQUEUED-SENDER-COM-SPEC>
                  <DATA-ELEMENT-REF DEST="VARIABLE-DATA-PROTOTYPE">/Demo/SpeedIf/Speed</DATA-ELEMENT-REF>
                </NONQUEUED-SENDER-COM-SPEC>
              </PROVIDED-COM-SPECS>
              <PROVIDED-INTERFACE-TREF DEST="AR:SENDER-RECEIVER-INTERFACE">/Demo/SpeedIf</PROVIDED-INTERFACE-TREF>
            </P-PORT-PROTOTYPE>
            <P-PORT-PROTOTYPE>
              <SHORT-NAME>NoRef</SHORT-NAME>
            </P-PORT-PROTOTYPE>
          </PORTS>
        </APPLICATION-SW-COMPONENT-TYPE>
      </ELEMENTS>
    </AR-PACKAGE>
  </AR-PACKAGES>
</AUTOSAR>`

func load(t *testing.T) *parser.Element {
	t.Helper()
	root, err := parser.ParseString(swc)
	require.NoError(t, err)
	return root
}

func portNamed(t *testing.T, root *parser.Element, name string) *parser.Element {
	t.Helper()
	for _, p := range Ports(root) {
		if p.Name == name {
			return p.Element
		}
	}
	t.Fatalf("port %s not found", name)
	return nil
}

func TestLabelOf(t *testing.T) {
	root := load(t)
	l := LabelOf(root)
	assert.Equal(t, "AUTOSAR", l.Name)
	assert.Equal(t, "http://autosar.org/schema/r4.0", l.Package)
	assert.Equal(t, "AUTOSAR (http://autosar.org/schema/r4.0)", l.String())

	pkg := root.Children[0].Children[0]
	assert.Equal(t, Label{Name: "Demo"}, LabelOf(pkg))
	assert.Equal(t, "Demo", LabelOf(pkg).String())
	assert.Equal(t, "AR-PACKAGES", DisplayName(root.Children[0]))
}

func TestLabelPrecedence(t *testing.T) {
	n, err := parser.ParseString(`<X xmlns:a="ns"><NAME>generic</NAME><short-name>Short</short-name><OTHER-NAME>late</OTHER-NAME><PACKAGE>Pkg</PACKAGE></X>`)
	require.NoError(t, err)
	l := LabelOf(n)
	assert.Equal(t, "Short", l.Name)
	assert.Equal(t, "Pkg", l.Package)

	n, err = parser.ParseString(`<X><LONG-NAME></LONG-NAME><DISPLAY-NAME>first</DISPLAY-NAME><ALT-NAME>second</ALT-NAME></X>`)
	require.NoError(t, err)
	assert.Equal(t, "first", LabelOf(n).Name)

	assert.Equal(t, Label{}, LabelOf(nil))
}

func TestARPathAndShortName(t *testing.T) {
	root := load(t)
	speedIn := portNamed(t, root, "SpeedIn")
	assert.Equal(t, "/Demo/Swc/SpeedIn", ARPath(speedIn))
	assert.Equal(t, "", ARPath(root))

	name, ok := ShortName(speedIn)
	assert.True(t, ok)
	assert.Equal(t, "SpeedIn", name)
	_, ok = ShortName(root)
	assert.False(t, ok)
}

func TestPathCacheMatchesARPath(t *testing.T) {
	root := load(t)
	cache := NewPathCache()
	count := 0
	root.Walk(func(e *parser.Element) bool {
		assert.Equal(t, ARPath(e), cache.ARPath(e), "<%s>", e.Tag)
		count++
		return true
	})
	assert.Greater(t, count, 10)

	// Lookups out of document order use the same cache.
	fresh := NewPathCache()
	speedIn := portNamed(t, root, "SpeedIn")
	assert.Equal(t, "/Demo/Swc/SpeedIn", fresh.ARPath(speedIn))
	assert.Equal(t, "/Demo/Swc", fresh.ARPath(speedIn.Parent.Parent))
	assert.Equal(t, "", fresh.ARPath(root))
}

func TestLeafName(t *testing.T) {
	assert.Equal(t, "Name", LeafName("/Pkg/Sub/Name"))
	assert.Equal(t, "Name", LeafName("/Pkg/Sub/Name/"))
	assert.Equal(t, "Name", LeafName("Name"))
	assert.Equal(t, "", LeafName("///"))
	assert.Equal(t, "", LeafName(""))
}

func TestLeafText(t *testing.T) {
	n, err := parser.ParseString("<A><B>  two\n   words </B></A>")
	require.NoError(t, err)
	assert.Equal(t, "two words", LeafText(n.Children[0]))
	assert.Equal(t, "", LeafText(n))
}

func TestClassifyPort(t *testing.T) {
	root := load(t)
	tests := []struct {
		name string
		kind PortKind
	}{
		{"SpeedIn", RPortSenderReceiver},
		{"DiagIn", RPortClientServer},
		{"DiagOut", PPortClientServer},
		{"SpeedOut", PPortSenderReceiver},
		{"NoRef", PortNone},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			port := portNamed(t, root, tt.name)
			assert.Equal(t, tt.kind, ClassifyPort(port))
			assert.True(t, IsPortsElement(port))
		})
	}
	assert.Equal(t, PortNone, ClassifyPort(root))
	assert.False(t, IsPortsElement(root))
}

func TestClassifyExactlyOne(t *testing.T) {
	port, err := parser.ParseString(`<R-PORT-PROTOTYPE><REQUIRED-INTERFACE-TREF DEST="SENDER-RECEIVER-INTERFACE">/P/If</REQUIRED-INTERFACE-TREF></R-PORT-PROTOTYPE>`)
	require.NoError(t, err)
	assert.True(t, IsRPortSenderReceiver(port))
	assert.False(t, IsRPortClientServer(port))
	assert.False(t, IsPPortClientServer(port))
	assert.False(t, IsPPortSenderReceiver(port))
}

func TestInterfaceRef(t *testing.T) {
	root := load(t)
	ref, ok := InterfaceRef(portNamed(t, root, "DiagOut"))
	require.True(t, ok)
	assert.Equal(t, Reference{Path: "/Demo/DiagIf", Leaf: "DiagIf", Dest: "CLIENT-SERVER-INTERFACE"}, ref)

	_, ok = InterfaceRef(portNamed(t, root, "NoRef"))
	assert.False(t, ok)
}

func TestDataElementComSpecs(t *testing.T) {
	root := load(t)
	speedIn := portNamed(t, root, "SpeedIn")
	specs := DataElementComSpecs(speedIn)
	require.Len(t, specs, 2)
	assert.Equal(t, "NONQUEUED-RECEIVER-COM-SPEC", specs["Speed"].Tag)
	assert.Equal(t, "QUEUED-RECEIVER-COM-SPEC", specs["Accel"].Tag)

	out := DataElementComSpecs(portNamed(t, root, "SpeedOut"))
	require.Len(t, out, 1)
	assert.Equal(t, "NONQUEUED-SENDER-COM-SPEC", out["Speed"].Tag)

	assert.Empty(t, DataElementComSpecs(portNamed(t, root, "NoRef")))
	assert.Empty(t, DataElementComSpecs(nil))
}

func TestComSpecsLastWins(t *testing.T) {
	port, err := parser.ParseString(`<P-PORT-PROTOTYPE><PROVIDED-COM-SPECS>
<NONQUEUED-SENDER-COM-SPEC><DATA-ELEMENT-REF>/A/X</DATA-ELEMENT-REF></NONQUEUED-SENDER-COM-SPEC>
<QUEUED-SENDER-COM-SPEC><DATA-ELEMENT-REF>/B/X</DATA-ELEMENT-REF></QUEUED-SENDER-COM-SPEC>
</PROVIDED-COM-SPECS></P-PORT-PROTOTYPE>`)
	require.NoError(t, err)
	specs := DataElementComSpecs(port)
	require.Len(t, specs, 1)
	assert.Equal(t, "QUEUED-SENDER-COM-SPEC", specs["X"].Tag)
}

func TestOperationComSpecs(t *testing.T) {
	root := load(t)
	specs := OperationComSpecs(portNamed(t, root, "DiagOut"))
	require.Len(t, specs, 1)
	assert.Equal(t, "SERVER-COM-SPEC", specs["Read"].Tag)
}

func TestReferences(t *testing.T) {
	root := load(t)
	refs := References(root)
	assert.Len(t, refs, 8)
	for _, r := range refs {
		assert.True(t, r.HasAttribute("DEST"))
	}
	assert.Empty(t, References(nil))
}

func TestPortsIdempotent(t *testing.T) {
	root := load(t)
	first := Ports(root)
	second := Ports(root)
	assert.Equal(t, first, second)
	assert.Len(t, first, 5)
	assert.Equal(t, "R-PORT sender-receiver", first[0].Kind.String())
	assert.True(t, first[0].Kind.IsRequired())
	assert.True(t, first[1].Kind.IsClientServer())
}

package store

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arxml-community/arxml-dev-tools/internal/parser"
)

const sample = `<AUTOSAR>
  <AR-PACKAGES>
    <AR-PACKAGE>
      <SHORT-NAME>Demo</SHORT-NAME>
      <ELEMENTS>
        <R-PORT-PROTOTYPE UUID="r1" T="2024">
          <SHORT-NAME>SpeedIn</SHORT-NAME>
          <REQUIRED-INTERFACE-TREF DEST="SENDER-RECEIVER-INTERFACE">/Demo/SpeedIf</REQUIRED-INTERFACE-TREF>
        </R-PORT-PROTOTYPE>
        <SENDER-RECEIVER-INTERFACE>
          <SHORT-NAME>SpeedIf</SHORT-NAME>
        </SENDER-RECEIVER-INTERFACE>
        <DATA-TYPE-MAPPING>
          <TYPE-TREF DEST="IMPLEMENTATION-DATA-TYPE">/Types/UInt8</TYPE-TREF>
        </DATA-TYPE-MAPPING>
      </ELEMENTS>
    </AR-PACKAGE>
  </AR-PACKAGES>
</AUTOSAR>
`

func newStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(filepath.Join(t.TempDir(), "export.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestExport(t *testing.T) {
	s := newStore(t)
	root, err := parser.ParseString(sample)
	require.NoError(t, err)
	require.NoError(t, s.Export("demo.arxml", root))

	n, err := s.Count("demo.arxml")
	require.NoError(t, err)
	assert.Equal(t, 12, n)

	ports, err := s.ElementsByTag("R-PORT-PROTOTYPE")
	require.NoError(t, err)
	require.Len(t, ports, 1)
	p := ports[0]
	assert.Equal(t, "/0/0/1/0", p.Path)
	assert.Equal(t, 4, p.Depth)
	assert.Equal(t, "SpeedIn", p.Name)
	assert.Equal(t, "/Demo/SpeedIn", p.ARPath)
	assert.Equal(t, "R-PORT sender-receiver", p.Kind)
	assert.Equal(t, 6, p.Line)

	attrs, err := s.Attributes("demo.arxml", "/0/0/1/0")
	require.NoError(t, err)
	assert.Equal(t, []parser.Attr{{Name: "UUID", Value: "r1"}, {Name: "T", Value: "2024"}}, attrs)

	dangling, err := s.DanglingRefs()
	require.NoError(t, err)
	assert.Equal(t, []string{"/Types/UInt8"}, dangling)
}

func TestExportReplacesFile(t *testing.T) {
	s := newStore(t)
	root, err := parser.ParseString(sample)
	require.NoError(t, err)
	require.NoError(t, s.Export("demo.arxml", root))
	require.NoError(t, s.Export("other.arxml", parser.NewElement("AUTOSAR")))
	require.NoError(t, s.Export("demo.arxml", parser.NewElement("AUTOSAR")))

	n, err := s.Count("demo.arxml")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	n, err = s.Count("other.arxml")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	attrs, err := s.Attributes("demo.arxml", "/0/0/1/0")
	require.NoError(t, err)
	assert.Empty(t, attrs)

	dangling, err := s.DanglingRefs()
	require.NoError(t, err)
	assert.Empty(t, dangling)
}

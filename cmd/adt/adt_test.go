package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/scott-cotton/cli"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/arxml-community/arxml-dev-tools/internal/config"
	"github.com/arxml-community/arxml-dev-tools/internal/document"
	"github.com/arxml-community/arxml-dev-tools/internal/logger"
	"github.com/arxml-community/arxml-dev-tools/internal/validator"
)

const sample = `<AUTOSAR>
  <AR-PACKAGES>
    <AR-PACKAGE>
      <SHORT-NAME>Demo</SHORT-NAME>
      <ELEMENTS>
        <APPLICATION-SW-COMPONENT-TYPE>
          <SHORT-NAME>Swc</SHORT-NAME>
          <PORTS>
            <P-PORT-PROTOTYPE>
              <SHORT-NAME>DiagOut</SHORT-NAME>
              <PROVIDED-INTERFACE-TREF DEST="CLIENT-SERVER-INTERFACE">/Demo/DiagIf</PROVIDED-INTERFACE-TREF>
              <PROVIDED-COM-SPECS>
                <SERVER-COM-SPEC>
                  <OPERATION-REF DEST="CLIENT-SERVER-OPERATION">/Demo/DiagIf/Read</OPERATION-REF>
                </SERVER-COM-SPEC>
              </PROVIDED-COM-SPECS>
            </P-PORT-PROTOTYPE>
          </PORTS>
        </APPLICATION-SW-COMPONENT-TYPE>
      </ELEMENTS>
    </AR-PACKAGE>
  </AR-PACKAGES>
</AUTOSAR>
`

func testConfig(t *testing.T) *MainConfig {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	cfg := &MainConfig{Root: t.TempDir(), NoColor: true}
	require.NoError(t, cfg.load())
	return cfg
}

func writeSample(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sample.arxml")
	require.NoError(t, os.WriteFile(path, []byte(sample), 0644))
	return path
}

func TestLoadUsesIndentFlag(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	cfg := &MainConfig{Root: t.TempDir(), Indent: 2}
	require.NoError(t, cfg.load())
	assert.Equal(t, 2, cfg.Config.Format.Indent)
	assert.Equal(t, config.Default().Validator.Command, cfg.Config.Validator.Command)
}

func TestWriteRows(t *testing.T) {
	cfg := testConfig(t)
	s, err := cfg.openSession(writeSample(t))
	require.NoError(t, err)

	var buf bytes.Buffer
	writeRows(&buf, cfg.colors(&buf), s.Rows(), 0, false)
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	assert.Equal(t, "AUTOSAR", lines[0])
	assert.Equal(t, "    AR-PACKAGE Demo", lines[2])
	assert.Equal(t, "      SHORT-NAME = Demo", lines[3])
	assert.Contains(t, buf.String(), "P-PORT-PROTOTYPE DiagOut [P-PORT client-server]")

	buf.Reset()
	writeRows(&buf, cfg.colors(&buf), s.Rows(), 1, true)
	lines = strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[1], "/0 "))
}

func TestPortViews(t *testing.T) {
	cfg := testConfig(t)
	doc, err := cfg.loadDocument(writeSample(t))
	require.NoError(t, err)

	views := portViews(doc)
	require.Len(t, views, 1)
	assert.Equal(t, portView{
		Name:      "DiagOut",
		Path:      "/0/0/1/0/1/0",
		ARPath:    "/Demo/Swc/DiagOut",
		Kind:      "P-PORT client-server",
		Interface: "/Demo/DiagIf",
		Dest:      "CLIENT-SERVER-INTERFACE",
		ComSpecs:  []string{"Read"},
	}, views[0])

	out, err := yaml.Marshal(views)
	require.NoError(t, err)
	assert.Contains(t, string(out), "comSpecs:")
	assert.Contains(t, string(out), "- Read")
}

func TestWriteDiff(t *testing.T) {
	cfg := testConfig(t)
	var buf bytes.Buffer
	p := cfg.colors(&buf)

	assert.False(t, writeDiff(&buf, p, "a", "b", "<A/>\n", "<A/>\n"))
	assert.Empty(t, buf.String())

	changed := writeDiff(&buf, p, "a", "b", "<A>\n    <B/>\n</A>\n", "<A>\n    <C/>\n</A>\n")
	assert.True(t, changed)
	assert.Equal(t, "--- a\n+++ b\n <A>\n-    <B/>\n+    <C/>\n </A>\n", buf.String())
}

func TestColorsPlainWhenNotTerminal(t *testing.T) {
	cfg := &MainConfig{}
	var buf bytes.Buffer
	p := cfg.colors(&buf)
	assert.Equal(t, "x", p.tag("%s", "x"))
	assert.Equal(t, "+y", p.add("+%s", "y"))
}

func TestLogValidation(t *testing.T) {
	var buf bytes.Buffer
	logger.SetOutput(&buf)
	defer logger.SetOutput(os.Stderr)

	logValidation("a.arxml", "s.xsd", validator.Result{
		ID:         "run-7",
		Diagnostic: validator.MsgTimeout,
		ExitCode:   -1,
		TimedOut:   true,
		Duration:   2 * time.Second,
	})
	out := buf.String()
	for _, want := range []string{"msg=validated", "id=run-7", "file=a.arxml", "valid=false", "exit=-1", "timed_out=true", "duration=2s"} {
		assert.Contains(t, out, want)
	}
}

func TestInitProject(t *testing.T) {
	root := t.TempDir()
	cmd := InitCommand(&MainConfig{Root: root})
	cc := cli.DefaultContext()

	err := cmd.Hooks.Run(cc, []string{"A&B"})
	assert.ErrorIs(t, err, cli.ErrUsage)
	_, statErr := os.Stat(filepath.Join(root, "src", "A&B.arxml"))
	assert.True(t, os.IsNotExist(statErr))

	require.NoError(t, cmd.Hooks.Run(cc, []string{"Body_Ctrl"}))
	doc := document.New()
	require.NoError(t, doc.Load(filepath.Join(root, "src", "Body_Ctrl.arxml")))
	pkg := doc.FindByIndexPath([]int{0, 0})
	require.NotNil(t, pkg)
	assert.Equal(t, "AR-PACKAGE", pkg.Tag)
	assert.Equal(t, "Body_Ctrl", pkg.Children[0].Text)
	assert.FileExists(t, filepath.Join(root, ".adt.toml"))
}

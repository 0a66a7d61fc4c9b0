package validator

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	DefaultCommand = "xmllint"
	DefaultTimeout = 10 * time.Second

	MsgTempFile = "Failed to create temporary file for validation."
	MsgTimeout  = "xmllint did not finish within the timeout."
	MsgUnknown  = "Unknown validation error."
)

// Source is anything that can serialize itself as an XML document, typically
// a *document.Document.
type Source interface {
	Write(w io.Writer) error
}

// Validator checks a document against an XML schema. The returned string is
// empty when the document is valid and holds the diagnostics otherwise.
type Validator interface {
	Validate(ctx context.Context, src Source, schemaPath string) string
}

// Result describes one validation run.
type Result struct {
	ID         string
	Diagnostic string
	ExitCode   int
	TimedOut   bool
	Duration   time.Duration
}

func (r Result) Valid() bool {
	return r.Diagnostic == ""
}

// Runner is a Validator that reports run details.
type Runner interface {
	Validator
	Run(ctx context.Context, src Source, schemaPath string) Result
}

// Run validates src with v. Validators that are not a Runner get a Result
// with a fresh ID, the measured duration and no exit status.
func Run(ctx context.Context, v Validator, src Source, schemaPath string) Result {
	if r, ok := v.(Runner); ok {
		return r.Run(ctx, src, schemaPath)
	}
	start := time.Now()
	res := Result{ID: uuid.NewString(), ExitCode: -1}
	res.Diagnostic = v.Validate(ctx, src, schemaPath)
	res.Duration = time.Since(start)
	return res
}

// XMLLint runs an external xmllint-compatible executable on a temporary
// serialization of the document.
type XMLLint struct {
	Command string
	Timeout time.Duration
	// TempDir is where the snapshot is written; empty means os.TempDir().
	TempDir string
}

func NewXMLLint(command string, timeout time.Duration) *XMLLint {
	if command == "" {
		command = DefaultCommand
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &XMLLint{Command: command, Timeout: timeout}
}

func (x *XMLLint) Validate(ctx context.Context, src Source, schemaPath string) string {
	return x.Run(ctx, src, schemaPath).Diagnostic
}

// Run validates src and reports the details of the run. It never blocks for
// much longer than x.Timeout.
func (x *XMLLint) Run(ctx context.Context, src Source, schemaPath string) (res Result) {
	start := time.Now()
	res = Result{ID: uuid.NewString(), ExitCode: -1}
	defer func() { res.Duration = time.Since(start) }()

	command := x.Command
	if command == "" {
		command = DefaultCommand
	}
	timeout := x.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	tmp, err := os.CreateTemp(x.TempDir, "arxml_validate*.arxml")
	if err != nil {
		res.Diagnostic = MsgTempFile
		return res
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	werr := src.Write(tmp)
	cerr := tmp.Close()
	if werr == nil {
		werr = cerr
	}
	if werr != nil {
		res.Diagnostic = fmt.Sprintf("Failed to write document for validation: %v", werr)
		return res
	}

	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, command, "--noout", "--schema", schemaPath, tmpName)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	cmd.WaitDelay = 500 * time.Millisecond

	err = cmd.Run()
	if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
		res.TimedOut = true
		res.Diagnostic = fmt.Sprintf("%s (%s)", MsgTimeout, timeout)
		return res
	}
	if ctx.Err() != nil {
		res.Diagnostic = fmt.Sprintf("Validation cancelled: %v", ctx.Err())
		return res
	}

	var exitErr *exec.ExitError
	switch {
	case err == nil:
		res.ExitCode = 0
	case errors.As(err, &exitErr):
		res.ExitCode = exitErr.ExitCode()
	default:
		res.Diagnostic = fmt.Sprintf("Failed to run %s: %v", command, err)
		return res
	}

	output := stderr.String()
	if res.ExitCode == 0 && onlyValidates(output) {
		return res
	}
	if strings.TrimSpace(output) != "" {
		res.Diagnostic = output
		return res
	}
	res.Diagnostic = MsgUnknown
	return res
}

// onlyValidates reports whether stderr holds nothing but the
// "<file> validates" lines xmllint prints on success.
func onlyValidates(stderr string) bool {
	for _, line := range strings.Split(stderr, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if !strings.HasSuffix(line, " validates") {
			return false
		}
	}
	return true
}

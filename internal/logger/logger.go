package logger

import (
	"io"
	"log"
	"log/slog"
	"os"
	"sync"
)

var (
	// Default logger writes to stderr
	std = log.New(os.Stderr, "[adt] ", log.LstdFlags)

	mu         sync.Mutex
	structured = newSlog(os.Stderr)
)

func newSlog(w io.Writer) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelInfo})).With("app", "adt")
}

func SetOutput(output io.Writer) {
	std.SetOutput(output)
	mu.Lock()
	structured = newSlog(output)
	mu.Unlock()
}

// Slog returns the structured logger sharing the output of the default one.
func Slog() *slog.Logger {
	mu.Lock()
	defer mu.Unlock()
	return structured
}

func Printf(format string, v ...interface{}) {
	std.Printf(format, v...)
}

func Println(v ...interface{}) {
	std.Println(v...)
}

func Fatal(v ...interface{}) {
	std.Fatal(v...)
}

func Fatalf(format string, v ...interface{}) {
	std.Fatalf(format, v...)
}

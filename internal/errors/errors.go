package errors

import (
	stderrors "errors"
	"fmt"
	"os"

	"github.com/julianstephens/habitlit/internal/logger"
	"github.com/julianstephens/habitlit/internal/storage"
)

// Format renders err for the terminal with the "Error: " prefix.
func Format(err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("Error: %v", err)
}

func Formatf(format string, args ...any) string {
	return fmt.Sprintf("Error: "+format, args...)
}

// Hint suggests a next step for errors raised by the habit store.
func Hint(err error) string {
	switch {
	case stderrors.Is(err, storage.ErrNotFound):
		return "run 'habitlit list' to see habit ids"
	case stderrors.Is(err, storage.ErrStorageUnavailable):
		return "run 'habitlit doctor' to check the database"
	case stderrors.Is(err, storage.ErrDuplicateKey):
		return "the habit already exists; retry to generate a new id"
	}
	return ""
}

// Fatal logs err, prints it with any hint to stderr, and exits with status 1.
// A nil err is ignored.
func Fatal(err error) {
	if err == nil {
		return
	}
	logger.Error("command failed", "error", err)
	fmt.Fprintln(os.Stderr, Format(err))
	if hint := Hint(err); hint != "" {
		fmt.Fprintf(os.Stderr, "Hint: %s\n", hint)
	}
	os.Exit(1)
}

func Fatalf(format string, args ...any) {
	Fatal(fmt.Errorf(format, args...))
}

package errors

import (
	"bytes"
	stderrors "errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"testing"

	"github.com/julianstephens/habitlit/internal/storage"
)

func TestFormat(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"plain", stderrors.New("boom"), "Error: boom"},
		{"wrapped", fmt.Errorf("habit 42: %w", storage.ErrNotFound), "Error: habit 42: habit not found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Format(tt.err); got != tt.want {
				t.Errorf("Format() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFormatf(t *testing.T) {
	got := Formatf("habit %q has no reminder", "Read")
	want := `Error: habit "Read" has no reminder`
	if got != want {
		t.Errorf("Formatf() = %q, want %q", got, want)
	}
}

func TestHint(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		contains string
	}{
		{"not found", fmt.Errorf("habit x: %w", storage.ErrNotFound), "habitlit list"},
		{"unavailable", fmt.Errorf("%w: disk", storage.ErrStorageUnavailable), "habitlit doctor"},
		{"duplicate", fmt.Errorf("habit x: %w", storage.ErrDuplicateKey), "retry"},
		{"other", stderrors.New("boom"), ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Hint(tt.err)
			if tt.contains == "" {
				if got != "" {
					t.Errorf("Hint() = %q, want empty", got)
				}
				return
			}
			if !strings.Contains(got, tt.contains) {
				t.Errorf("Hint() = %q, want it to contain %q", got, tt.contains)
			}
		})
	}
}

// runHelper re-executes the test binary with env set so the selected test
// calls a function that exits the process.
func runHelper(t *testing.T, test, env string) (*exec.ExitError, string) {
	t.Helper()
	cmd := exec.Command(os.Args[0], "-test.run=^"+test+"$")
	cmd.Env = append(os.Environ(), env+"=1")
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	err := cmd.Run()
	var exitErr *exec.ExitError
	if err != nil && !stderrors.As(err, &exitErr) {
		t.Fatalf("failed to run helper process: %v", err)
	}
	return exitErr, stderr.String()
}

func TestFatal(t *testing.T) {
	if os.Getenv("HABITLIT_TEST_FATAL") == "1" {
		Fatal(fmt.Errorf("habit 42: %w", storage.ErrNotFound))
		return
	}

	exitErr, stderr := runHelper(t, "TestFatal", "HABITLIT_TEST_FATAL")
	if exitErr == nil || exitErr.ExitCode() != 1 {
		t.Fatalf("Fatal() exit = %v, want status 1", exitErr)
	}
	if !strings.Contains(stderr, "Error: habit 42: habit not found") {
		t.Errorf("stderr = %q, want the formatted error", stderr)
	}
	if !strings.Contains(stderr, "Hint: ") {
		t.Errorf("stderr = %q, want a hint line", stderr)
	}
}

func TestFatalNil(t *testing.T) {
	if os.Getenv("HABITLIT_TEST_FATAL_NIL") == "1" {
		Fatal(nil)
		os.Exit(0)
	}

	if exitErr, _ := runHelper(t, "TestFatalNil", "HABITLIT_TEST_FATAL_NIL"); exitErr != nil {
		t.Errorf("Fatal(nil) exited with %v", exitErr)
	}
}

func TestFatalf(t *testing.T) {
	if os.Getenv("HABITLIT_TEST_FATALF") == "1" {
		Fatalf("connection to %s:%d failed", "localhost", 5432)
		return
	}

	exitErr, stderr := runHelper(t, "TestFatalf", "HABITLIT_TEST_FATALF")
	if exitErr == nil || exitErr.ExitCode() != 1 {
		t.Fatalf("Fatalf() exit = %v, want status 1", exitErr)
	}
	if !strings.Contains(stderr, "Error: connection to localhost:5432 failed") {
		t.Errorf("stderr = %q", stderr)
	}
}

package testutil

import (
	"fmt"
	"os"
	"strings"
	"unicode"
)

// KeepTempDirEnv, when set, keeps the directories of failed tests on disk.
const KeepTempDirEnv = "NEARCLI_KEEP_TEST_DIRS"

// KeepTempDirOnFailure keeps a failed test's TempDir, with its config and
// history database, for inspection.
var KeepTempDirOnFailure = os.Getenv(KeepTempDirEnv) != ""

// TempDirT is the part of testing.TB that TempDir needs.
type TempDirT interface {
	Helper()
	Name() string
	Failed() bool
	Cleanup(func())
	Logf(format string, args ...any)
	Errorf(format string, args ...any)
}

// TempDir is like (*testing.T).TempDir but named after the test, and kept
// after a failure when KeepTempDirOnFailure is set.
func TempDir(t TempDirT) string {
	t.Helper()

	dir, err := os.MkdirTemp("", dirPrefix(t.Name()))
	if err != nil {
		panic(fmt.Errorf("TempDir: %w", err))
	}
	t.Cleanup(func() {
		if KeepTempDirOnFailure && t.Failed() {
			t.Logf("Keeping test directory %s", dir)
			return
		}
		if err := os.RemoveAll(dir); err != nil {
			t.Errorf("TempDir RemoveAll cleanup: %v", err)
		}
	})
	return dir
}

// dirPrefix keeps letters, digits and a few safe punctuation marks of a test
// name; subtest separators become underscores.
func dirPrefix(name string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r == '/' || r == ' ':
			return '_'
		case r == '-' || r == '_' || r == '.':
			return r
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)):
			return r
		case r > unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsNumber(r)) && r != unicode.ReplacementChar:
			return r
		default:
			return -1
		}
	}, name) + "-"
}

package testutil

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

type mockT struct {
	name     string
	failed   bool
	cleanups []func()
	logs     []string
	errors   []string
}

func (t *mockT) Helper()        {}
func (t *mockT) Name() string   { return t.name }
func (t *mockT) Failed() bool   { return t.failed }
func (t *mockT) Cleanup(f func()) { t.cleanups = append(t.cleanups, f) }

func (t *mockT) Logf(format string, args ...any) {
	t.logs = append(t.logs, fmt.Sprintf(format, args...))
}

func (t *mockT) Errorf(format string, args ...any) {
	t.errors = append(t.errors, fmt.Sprintf(format, args...))
}

func (t *mockT) runCleanups() {
	for i := len(t.cleanups) - 1; i >= 0; i-- {
		t.cleanups[i]()
	}
	t.cleanups = nil
}

func TestTempDirCleanup(t *testing.T) {
	orig := KeepTempDirOnFailure
	t.Cleanup(func() { KeepTempDirOnFailure = orig })

	for _, tt := range []struct {
		name     string
		keep     bool
		failed   bool
		wantKept bool
	}{
		{"keep, passed", true, false, false},
		{"keep, failed", true, true, true},
		{"no keep, passed", false, false, false},
		{"no keep, failed", false, true, false},
	} {
		t.Run(tt.name, func(t *testing.T) {
			KeepTempDirOnFailure = tt.keep
			mt := &mockT{name: "TestSomething"}

			dir := TempDir(mt)
			require.DirExists(t, dir)
			t.Cleanup(func() { _ = os.RemoveAll(dir) })

			mt.failed = tt.failed
			mt.runCleanups()
			require.Empty(t, mt.errors)

			if tt.wantKept {
				require.DirExists(t, dir)
				require.Len(t, mt.logs, 1)
				require.Contains(t, mt.logs[0], dir)
				return
			}
			require.NoDirExists(t, dir)
			require.Empty(t, mt.logs)
		})
	}
}

func TestTempDirNaming(t *testing.T) {
	for name, want := range map[string]string{
		"TestA":            "TestA-",
		"TestA/sub test":   "TestA_sub_test-",
		"TestA/../escape":  "TestA_.._escape-",
		"Test\x00\xffOdd*": "TestOdd-",
	} {
		require.Equal(t, want, dirPrefix(name), name)
	}

	dir := TempDir(t)
	require.True(t, strings.HasPrefix(filepath.Base(dir), "TestTempDirNaming-"), dir)
}

package main

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"sortline/internal/testsupport"
)

const testConfig = `
[workflow]
speed = 0

[display]
mode = "none"

[logging]
level = "error"
`

type cliTestEnv struct {
	baseDir    string
	configPath string
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	base := t.TempDir()
	t.Setenv("HOME", base)
	return &cliTestEnv{
		baseDir:    base,
		configPath: testsupport.WriteConfigFile(t, base, "sortline.toml", testConfig),
	}
}

// runCLI executes the root command with args and returns stdout and stderr.
func runCLI(t *testing.T, args []string, configPath string, stdin io.Reader) (string, string, error) {
	t.Helper()

	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	if stdin != nil {
		cmd.SetIn(stdin)
	}
	fullArgs := args
	if configPath != "" {
		fullArgs = append([]string{"--config", configPath}, args...)
	}
	cmd.SetArgs(fullArgs)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, haystack, needle string) {
	t.Helper()
	if !strings.Contains(haystack, needle) {
		t.Fatalf("expected output to contain %q\n%s", needle, haystack)
	}
}

func writeTestFile(t *testing.T, dir, name, contents string) string {
	t.Helper()
	return testsupport.WriteConfigFile(t, dir, name, contents)
}

// © 2023 Microglot LLC
//
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"gopkg.spork.dev/compiler.go/internal/exc"
)

func TestParse(t *testing.T) {
	t.Parallel()

	full := &Config{
		Roots:          []string{"/src", "/lib"},
		DumpTokens:     true,
		DumpTree:       true,
		TreeFormat:     "json",
		LogLevel:       "debug",
		LogFile:        "/tmp/sporkc.log",
		MaxConcurrency: 4,
	}
	testCases := []struct {
		name     string
		content  string
		format   Format
		expected *Config
		failed   bool
	}{
		{
			name: "toml",
			content: `roots = ["/src", "/lib"]
dump_tokens = true
dump_tree = true
tree_format = "json"
log_level = "debug"
log_file = "/tmp/sporkc.log"
max_concurrency = 4
`,
			format:   FormatTOML,
			expected: full,
		},
		{
			name: "yaml",
			content: `roots:
  - /src
  - /lib
dump_tokens: true
dump_tree: true
tree_format: json
log_level: debug
log_file: /tmp/sporkc.log
max_concurrency: 4
`,
			format:   FormatYAML,
			expected: full,
		},
		{name: "empty toml", content: "", format: FormatTOML, expected: &Config{}},
		{name: "empty yaml", content: "", format: FormatYAML, expected: &Config{}},
		{name: "unknown toml key", content: "rootz = []\n", format: FormatTOML, failed: true},
		{name: "unknown yaml key", content: "rootz: []\n", format: FormatYAML, failed: true},
		{name: "malformed toml", content: "roots = [\n", format: FormatTOML, failed: true},
		{name: "bad tree format", content: "tree_format = \"xml\"\n", format: FormatTOML, failed: true},
		{name: "bad log level", content: "log_level: loud\n", format: FormatYAML, failed: true},
		{name: "negative concurrency", content: "max_concurrency = -1\n", format: FormatTOML, failed: true},
	}
	for _, testCase := range testCases {
		testCase := testCase
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()
			cfg, err := Parse([]byte(testCase.content), testCase.format)
			if testCase.failed {
				var e exc.Exception
				require.ErrorAs(t, err, &e)
				require.Equal(t, exc.CodeConfigError, e.Code())
				return
			}
			require.Nil(t, err)
			require.Equal(t, testCase.expected, cfg)
		})
	}
}

func TestLoad(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	yamlPath := filepath.Join(dir, "sporkc.yml")
	require.Nil(t, os.WriteFile(yamlPath, []byte("dump_tree: true\n"), 0o644))
	cfg, err := Load(yamlPath)
	require.Nil(t, err)
	require.True(t, cfg.DumpTree)

	badPath := filepath.Join(dir, "sporkc.toml")
	require.Nil(t, os.WriteFile(badPath, []byte("tree_format = \"xml\"\n"), 0o644))
	_, err = Load(badPath)
	var e exc.Exception
	require.ErrorAs(t, err, &e)
	require.Equal(t, exc.CodeConfigError, e.Code())
	require.Equal(t, badPath, e.Location().URI)

	_, err = Load(filepath.Join(dir, "missing.toml"))
	require.ErrorAs(t, err, &e)
	require.Equal(t, exc.CodeFileNotFound, e.Code())
}

func TestDetectFormat(t *testing.T) {
	t.Parallel()

	require.Equal(t, FormatYAML, DetectFormat("a.yaml"))
	require.Equal(t, FormatYAML, DetectFormat("a.YML"))
	require.Equal(t, FormatTOML, DetectFormat("a.toml"))
	require.Equal(t, FormatTOML, DetectFormat("sporkc"))
}

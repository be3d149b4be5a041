package parser_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/UnendingLoop/minigrep/internal/model"
	"github.com/UnendingLoop/minigrep/internal/parser"
	"github.com/stretchr/testify/require"
)

func TestInitAppMode(t *testing.T) {
	cases := []struct {
		name        string
		opts        parser.Options
		args        []string
		wantErr     string
		wantMode    model.AppMode
		wantSources []string
		wantSlaves  model.NodesList
		wantQuorum  int
	}{
		{
			name:    "Negative - no query",
			args:    nil,
			wantErr: "a query is required",
		},
		{
			name:    "Negative - no files",
			args:    []string{"duct"},
			wantErr: "at least one file",
		},
		{
			name:    "Negative - empty query",
			args:    []string{"", "poem.txt"},
			wantErr: "a query is required",
		},
		{
			name:    "Negative - unknown mode",
			opts:    parser.Options{Mode: "boss"},
			args:    []string{"duct", "poem.txt"},
			wantErr: `unknown mode "boss"`,
		},
		{
			name:        "Positive - local by default",
			args:        []string{"duct", "poem.txt", "other.txt"},
			wantMode:    model.ModeLocal,
			wantSources: []string{"poem.txt", "other.txt"},
		},
		{
			name:        "Positive - dash-prefixed file is still a file",
			args:        []string{"duct", "-i"},
			wantMode:    model.ModeLocal,
			wantSources: []string{"-i"},
		},
		{
			name:    "Negative - slave without address",
			opts:    parser.Options{Mode: "slave"},
			wantErr: "empty slave-node address",
		},
		{
			name:    "Negative - slave with query",
			opts:    parser.Options{Mode: "slave", Address: ":9090"},
			args:    []string{"duct"},
			wantErr: "slave mode takes no query",
		},
		{
			name:     "Positive - slave",
			opts:     parser.Options{Mode: "slave", Address: ":9090"},
			wantMode: model.ModeSlave,
		},
		{
			name:    "Negative - master without nodes",
			opts:    parser.Options{Mode: "master"},
			args:    []string{"duct", "poem.txt"},
			wantErr: "at least one --node",
		},
		{
			name:    "Negative - master quorum above nodes",
			opts:    parser.Options{Mode: "master", Nodes: []string{"localhost:9090"}, Quorum: 2},
			args:    []string{"duct", "poem.txt"},
			wantErr: "incorrect quorum 2",
		},
		{
			name:        "Positive - master default majority quorum",
			opts:        parser.Options{Mode: "master", Nodes: []string{"localhost:9090", "http://localhost:9091/", "localhost:9090", "localhost:9092"}},
			args:        []string{"duct", "poem.txt"},
			wantMode:    model.ModeMaster,
			wantSources: []string{"poem.txt"},
			wantSlaves:  model.NodesList{"http://localhost:9090", "http://localhost:9091", "http://localhost:9092"},
			wantQuorum:  2,
		},
	}

	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			ai, err := parser.InitAppMode(tt.opts, tt.args)

			if tt.wantErr != "" {
				require.ErrorContains(t, err, tt.wantErr)
				var usageErr *model.UsageError
				require.True(t, errors.As(err, &usageErr), "expected UsageError, got %T", err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.wantMode, ai.Mode)
			if tt.wantSources != nil {
				require.Equal(t, tt.wantSources, ai.Search.Sources())
			}
			require.Equal(t, tt.wantSlaves, ai.Slaves)
			require.Equal(t, tt.wantQuorum, ai.Quorum)
		})
	}
}

func TestIgnoreCaseFromEnv(t *testing.T) {
	env := map[string]string{}
	lookup := func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	}

	require.False(t, parser.IgnoreCaseFromEnv(lookup))

	env[parser.EnvIgnoreCase] = ""
	require.True(t, parser.IgnoreCaseFromEnv(lookup), "any value, even empty, enables it")
}

func TestInitAppModeWithConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "minigrep.yaml")
	content := "mode: master\nnodes:\n  - localhost:9090\n  - localhost:9091\nquorum: 2\nignore_case: true\nfail_fast: true\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	ai, err := parser.InitAppMode(parser.Options{ConfigPath: path}, []string{"rust", "poem.txt"})
	require.NoError(t, err)
	require.Equal(t, model.ModeMaster, ai.Mode)
	require.Equal(t, model.NodesList{"http://localhost:9090", "http://localhost:9091"}, ai.Slaves)
	require.Equal(t, 2, ai.Quorum)
	require.True(t, ai.Search.IgnoreCase())
	require.True(t, ai.FailFast)

	// флаги важнее файла
	ai, err = parser.InitAppMode(parser.Options{ConfigPath: path, Mode: "local"}, []string{"rust", "poem.txt"})
	require.NoError(t, err)
	require.Equal(t, model.ModeLocal, ai.Mode)
	require.Empty(t, ai.Slaves)
}

func TestInitAppModeBrokenConfigFile(t *testing.T) {
	dir := t.TempDir()
	broken := filepath.Join(dir, "broken.yaml")
	require.NoError(t, os.WriteFile(broken, []byte("nodes: [unclosed"), 0o644))

	_, err := parser.InitAppMode(parser.Options{ConfigPath: broken}, []string{"rust", "poem.txt"})
	require.ErrorContains(t, err, "failed to parse config file")

	_, err = parser.InitAppMode(parser.Options{ConfigPath: filepath.Join(dir, "missing.yaml")}, []string{"rust", "poem.txt"})
	require.ErrorContains(t, err, "failed to read config file")
}

func TestInitAppModeExplicitFlagsBeatConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "minigrep.yaml")
	content := "ignore_case: true\nline_numbers: true\nfail_fast: true\nverbose: true\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	args := []string{"rust", "poem.txt"}

	ai, err := parser.InitAppMode(parser.Options{ConfigPath: path}, args)
	require.NoError(t, err)
	require.True(t, ai.Search.IgnoreCase())
	require.True(t, ai.Search.Numbered())
	require.True(t, ai.FailFast)
	require.True(t, ai.Verbose)

	// --ignore-case=false --line-numbers=false --fail-fast=false --verbose=false
	given := map[string]bool{
		parser.FlagIgnoreCase:  true,
		parser.FlagLineNumbers: true,
		parser.FlagFailFast:    true,
		parser.FlagVerbose:     true,
	}
	opts := parser.Options{ConfigPath: path, Changed: func(name string) bool { return given[name] }}
	ai, err = parser.InitAppMode(opts, args)
	require.NoError(t, err)
	require.False(t, ai.Search.IgnoreCase())
	require.False(t, ai.Search.Numbered())
	require.False(t, ai.FailFast)
	require.False(t, ai.Verbose)
}

func TestInitAppModeConfigFileBeatsEnvDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "minigrep.yaml")
	require.NoError(t, os.WriteFile(path, []byte("ignore_case: false\n"), 0o644))

	// IgnoreCase пришёл из IGNORE_CASE как значение флага по умолчанию
	ai, err := parser.InitAppMode(parser.Options{ConfigPath: path, IgnoreCase: true}, []string{"rust", "poem.txt"})
	require.NoError(t, err)
	require.False(t, ai.Search.IgnoreCase())

	// ключа нет в файле - остаётся значение флага
	require.NoError(t, os.WriteFile(path, []byte("mode: local\n"), 0o644))
	ai, err = parser.InitAppMode(parser.Options{ConfigPath: path, IgnoreCase: true}, []string{"rust", "poem.txt"})
	require.NoError(t, err)
	require.True(t, ai.Search.IgnoreCase())
}

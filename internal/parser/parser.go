// Package parser puts flags, positional arguments, environment and config file
// into the AppInit structure and validates it for any issues
package parser

import (
	"fmt"
	"os"
	"strings"

	"github.com/UnendingLoop/minigrep/internal/model"
	"gopkg.in/yaml.v3"
)

// EnvIgnoreCase turns on case-insensitive search when set to any value
const EnvIgnoreCase = "IGNORE_CASE"

const usageLine = "Usage: minigrep [flags] <query> <file>..."

// Flag names
const (
	FlagIgnoreCase  = "ignore-case"
	FlagLineNumbers = "line-numbers"
	FlagFailFast    = "fail-fast"
	FlagMode        = "mode"
	FlagAddress     = "address"
	FlagNode        = "node"
	FlagQuorum      = "quorum"
	FlagConfig      = "config"
	FlagVerbose     = "verbose"
)

// Options holds the raw flag values
type Options struct {
	ConfigPath  string
	Mode        string
	Address     string
	Nodes       []string
	Quorum      int
	IgnoreCase  bool
	LineNumbers bool
	FailFast    bool
	Verbose     bool

	// Changed reports whether a flag was given on the command line.
	// A nil Changed means no flag was.
	Changed func(name string) bool
}

func (o Options) changed(name string) bool {
	return o.Changed != nil && o.Changed(name)
}

// FileConfig is the YAML config file layout. A missing boolean key leaves
// the flag value as is.
type FileConfig struct {
	Mode        string   `yaml:"mode"`
	Address     string   `yaml:"address"`
	Nodes       []string `yaml:"nodes"`
	Quorum      int      `yaml:"quorum"`
	IgnoreCase  *bool    `yaml:"ignore_case"`
	LineNumbers *bool    `yaml:"line_numbers"`
	FailFast    *bool    `yaml:"fail_fast"`
	Verbose     *bool    `yaml:"verbose"`
}

// IgnoreCaseFromEnv reports whether EnvIgnoreCase is present
func IgnoreCaseFromEnv(lookup func(string) (string, bool)) bool {
	_, ok := lookup(EnvIgnoreCase)
	return ok
}

func LoadFile(path string) (*FileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &model.UsageError{Reason: fmt.Sprintf("failed to read config file: %v", err)}
	}

	var cfg FileConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, &model.UsageError{Reason: fmt.Sprintf("failed to parse config file %q: %v", path, err)}
	}
	return &cfg, nil
}

// InitAppMode merges opts over the config file (if any) and builds the AppInit
// for the chosen mode. Every failure is a *model.UsageError.
func InitAppMode(opts Options, args []string) (*model.AppInit, error) {
	if opts.ConfigPath != "" {
		fileCfg, err := LoadFile(opts.ConfigPath)
		if err != nil {
			return nil, err
		}
		opts = merge(opts, fileCfg)
	}

	appInit := model.AppInit{
		Mode:     model.AppMode(opts.Mode),
		FailFast: opts.FailFast,
		Verbose:  opts.Verbose,
	}
	if appInit.Mode == "" {
		appInit.Mode = model.ModeLocal
	}

	// проверяем режим
	switch appInit.Mode {
	case model.ModeSlave:
		if len(args) > 0 {
			return nil, &model.UsageError{Reason: "slave mode takes no query or files"}
		}
		if opts.Address == "" {
			return nil, &model.UsageError{Reason: "empty slave-node address, set --address"}
		}
		appInit.Address = opts.Address
		return &appInit, nil
	case model.ModeLocal:
	case model.ModeMaster:
		if err := initMasterParam(&appInit, opts); err != nil {
			return nil, err
		}
	default:
		return nil, &model.UsageError{Reason: fmt.Sprintf("unknown mode %q, want 'local', 'master' or 'slave'", opts.Mode)}
	}

	// Разбираемся с паттерном и входом
	switch len(args) {
	case 0:
		return nil, &model.UsageError{Reason: "a query is required\n" + usageLine}
	case 1:
		return nil, &model.UsageError{Reason: "at least one file to search is required\n" + usageLine}
	}

	search, err := model.NewSearchConfig(args[0], args[1:], opts.IgnoreCase, opts.LineNumbers)
	if err != nil {
		return nil, err
	}
	appInit.Search = search

	return &appInit, nil
}

func initMasterParam(ai *model.AppInit, opts Options) error {
	for _, node := range opts.Nodes {
		_ = ai.Slaves.Set(normalizeNode(node))
	}
	if len(ai.Slaves) == 0 {
		return &model.UsageError{Reason: "at least one --node must be provided running in 'slave'-mode"}
	}

	ai.Quorum = opts.Quorum
	if ai.Quorum == 0 {
		ai.Quorum = len(ai.Slaves)/2 + 1
	}
	if ai.Quorum < 0 || ai.Quorum > len(ai.Slaves) {
		return &model.UsageError{Reason: fmt.Sprintf("incorrect quorum %d provided for %d slave-nodes", opts.Quorum, len(ai.Slaves))}
	}
	return nil
}

func normalizeNode(addr string) string {
	addr = strings.TrimRight(strings.TrimSpace(addr), "/")
	if addr != "" && !strings.Contains(addr, "://") {
		addr = "http://" + addr
	}
	return addr
}

// merge keeps every value set in opts and takes the rest from the file.
// A boolean from the file beats the flag default (IGNORE_CASE included) but
// never a flag given on the command line.
func merge(opts Options, f *FileConfig) Options {
	if opts.Mode == "" {
		opts.Mode = f.Mode
	}
	if opts.Address == "" {
		opts.Address = f.Address
	}
	if len(opts.Nodes) == 0 {
		opts.Nodes = f.Nodes
	}
	if opts.Quorum == 0 {
		opts.Quorum = f.Quorum
	}
	mergeBool(&opts.IgnoreCase, f.IgnoreCase, opts.changed(FlagIgnoreCase))
	mergeBool(&opts.LineNumbers, f.LineNumbers, opts.changed(FlagLineNumbers))
	mergeBool(&opts.FailFast, f.FailFast, opts.changed(FlagFailFast))
	mergeBool(&opts.Verbose, f.Verbose, opts.changed(FlagVerbose))
	return opts
}

func mergeBool(dst *bool, fromFile *bool, explicit bool) {
	if explicit || fromFile == nil {
		return
	}
	*dst = *fromFile
}

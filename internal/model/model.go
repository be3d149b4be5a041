// Package model contains the search configuration, match and transport DTO structures
package model

import (
	"context"
	"fmt"
	"slices"
)

type AppMode string

const (
	ModeLocal  = AppMode("local")
	ModeMaster = AppMode("master")
	ModeSlave  = AppMode("slave")
)

// StdinSource is the source name that makes the reader take lines from stdin
const StdinSource = "-"

type AppInit struct {
	Mode     AppMode
	Address  string
	Slaves   NodesList
	Quorum   int
	FailFast bool
	Verbose  bool
	Search   SearchConfig
}

// NodesList collects slave-node addresses from repeated --node flags
type NodesList []string

func (n *NodesList) String() string {
	return fmt.Sprint([]string(*n))
}

// Set skips empty values and duplicates
func (n *NodesList) Set(value string) error {
	if value == "" || slices.Contains(*n, value) {
		return nil
	}
	*n = append(*n, value)
	return nil
}

// SearchConfig is built once at startup and never changed afterwards
type SearchConfig struct {
	query       string
	sources     []string
	ignoreCase  bool
	lineNumbers bool
}

// NewSearchConfig validates query and sources. The sources slice is copied.
func NewSearchConfig(query string, sources []string, ignoreCase, lineNumbers bool) (SearchConfig, error) {
	if query == "" {
		return SearchConfig{}, &UsageError{Reason: "a query is required"}
	}
	if len(sources) == 0 {
		return SearchConfig{}, &UsageError{Reason: "at least one file to search is required"}
	}
	return SearchConfig{
		query:       query,
		sources:     slices.Clone(sources),
		ignoreCase:  ignoreCase,
		lineNumbers: lineNumbers,
	}, nil
}

func (c SearchConfig) Query() string { return c.query }

func (c SearchConfig) Sources() []string { return slices.Clone(c.sources) }

func (c SearchConfig) IgnoreCase() bool { return c.ignoreCase }

// Numbered reports whether output uses per-file banners and line numbers:
// either requested explicitly or implied by several sources.
func (c SearchConfig) Numbered() bool {
	return c.lineNumbers || len(c.sources) > 1
}

// Match is a matching line with its 1-based position in the source
type Match struct {
	LineNumber int    `json:"line_number"`
	Line       string `json:"line"`
}

type MasterTask struct {
	Task      TaskDTO
	CTX       context.Context
	CancelCTX context.CancelFunc
}

// TaskDTO carries one source to a slave-node
type TaskDTO struct {
	TaskID      string   `json:"tid" binding:"required"`
	Query       string   `json:"query" binding:"required"`
	IgnoreCase  bool     `json:"ignore_case"`
	Input       []string `json:"input"`
	Undecodable []int    `json:"undecodable,omitempty"` // 1-based numbers of lines that failed to decode on the master
	FileName    string   `json:"file_name,omitempty"`
}

type SlaveResult struct {
	TaskID   string  `json:"tid" binding:"required"`
	HashSumm uint64  `json:"hash"`
	Output   []Match `json:"output"`
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// HTTPConfig holds shared HTTP settings used by components that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "pubmed-engine/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// FetchConfig holds settings for the Entrez fetch stage.
type FetchConfig struct {
	HTTPConfig `yaml:",inline"`

	// Email is the requester identity sent on every E-utilities call.
	// NCBI uses it to contact heavy users before blocking them.
	Email string `json:"email" yaml:"email"`

	// Tool is the tool name reported to E-utilities (default "pubmed-engine").
	Tool string `json:"tool" yaml:"tool"`

	// APIKey is an optional NCBI API key for higher rate limits.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// BatchSize is the number of PMIDs fetched per EFetch call (default 50).
	// If a query fails, try a smaller batch size.
	BatchSize int `json:"batch_size" yaml:"batch_size"`

	// Fields restricts records to the listed Medline field codes.
	// Empty means keep all fields.
	Fields []string `json:"fields,omitempty" yaml:"fields,omitempty"`

	// MaxRecords caps the number of records downloaded (0 = no cap).
	MaxRecords int `json:"max_records" yaml:"max_records"`
}

// ArchiveConfig holds settings for the local record archive.
type ArchiveConfig struct {
	// Dir is the directory holding the archive database (default "archive").
	Dir string `json:"dir" yaml:"dir"`

	// MaxResults is the default maximum number of search results (default 20).
	MaxResults int `json:"max_results" yaml:"max_results"`
}

// BrowseConfig holds settings for interactive record review.
type BrowseConfig struct {
	// Fields lists the field codes displayed per record.
	// Empty means the display default (TI, AU, DP, AB).
	Fields []string `json:"fields,omitempty" yaml:"fields,omitempty"`

	// Width is the wrap width for displayed field values (default 80).
	Width int `json:"width" yaml:"width"`
}

// EngineConfig groups all component configurations.
type EngineConfig struct {
	Fetch   FetchConfig   `json:"fetch" yaml:"fetch"`
	Archive ArchiveConfig `json:"archive" yaml:"archive"`
	Browse  BrowseConfig  `json:"browse" yaml:"browse"`
}

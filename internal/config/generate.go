// SPDX-License-Identifier: MPL-2.0

package config

import (
	"fmt"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

type (
	// tomlConfig mirrors Config with the debounce rendered as a duration
	// string, matching how it is written in config.cue.
	tomlConfig struct {
		Search SearchConfig `toml:"search"`
		Scan   ScanConfig   `toml:"scan"`
		Watch  tomlWatch    `toml:"watch"`
		UI     UIConfig     `toml:"ui"`
	}

	tomlWatch struct {
		Debounce string `toml:"debounce"`
	}
)

// GenerateCUE generates a CUE representation of the configuration
func GenerateCUE(cfg *Config) string {
	var sb strings.Builder

	sb.WriteString("// ksearch configuration file\n")
	sb.WriteString("// Values omitted here keep their built-in defaults.\n\n")

	sb.WriteString("search: {\n")
	fmt.Fprintf(&sb, "\tworkers: %d\n", cfg.Search.Workers)
	fmt.Fprintf(&sb, "\tstrategy: %q\n", cfg.Search.Strategy)
	if len(cfg.Search.Exclude) > 0 {
		sb.WriteString("\texclude: [\n")
		for _, pattern := range cfg.Search.Exclude {
			fmt.Fprintf(&sb, "\t\t%q,\n", pattern)
		}
		sb.WriteString("\t]\n")
	} else {
		sb.WriteString("\texclude: []\n")
	}
	fmt.Fprintf(&sb, "\thtml_text: %v\n", cfg.Search.HTMLText)
	sb.WriteString("}\n")

	sb.WriteString("\nscan: {\n")
	fmt.Fprintf(&sb, "\tmax_depth: %d\n", cfg.Scan.MaxDepth)
	sb.WriteString("}\n")

	sb.WriteString("\nwatch: {\n")
	fmt.Fprintf(&sb, "\tdebounce: %q\n", cfg.Watch.Debounce.String())
	sb.WriteString("}\n")

	sb.WriteString("\nui: {\n")
	fmt.Fprintf(&sb, "\tcolor_scheme: %q\n", cfg.UI.ColorScheme)
	fmt.Fprintf(&sb, "\tverbose: %v\n", cfg.UI.Verbose)
	sb.WriteString("}\n")

	return sb.String()
}

// GenerateTOML renders the configuration as TOML.
func GenerateTOML(cfg *Config) (string, error) {
	doc := tomlConfig{
		Search: cfg.Search,
		Scan:   cfg.Scan,
		Watch:  tomlWatch{Debounce: cfg.Watch.Debounce.String()},
		UI:     cfg.UI,
	}
	if doc.Search.Exclude == nil {
		doc.Search.Exclude = []string{}
	}
	out, err := toml.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("encode config as TOML: %w", err)
	}
	return string(out), nil
}

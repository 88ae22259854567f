// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"gopkg.in/yaml.v3"

	"github.com/bureau-foundation/sysver/lib/codec"
	"github.com/bureau-foundation/sysver/lib/config"
)

// kernelNotFound is printed on stderr when the image has no version.
const kernelNotFound = "unknown (I can't find it!)"

// output renders answered facts in the configured format.
type output struct {
	stdout io.Writer
	stderr io.Writer
	format string
	color  string
}

// row is one answered fact. A row with err set is a fact the -all
// report could not collect.
type row struct {
	name  factName
	value any
	err   error
}

// answer collects the facts of every resolved option and writes them.
// In text format each option is written as soon as it is answered. A
// failing fact aborts the run unless it is part of -all, where it is
// logged and reported as unavailable.
func answer(c *collector, out *output, resolved []option) error {
	document := make(map[string]any)
	structured := out.format != config.FormatText

	for _, opt := range resolved {
		rows := make([]row, 0, len(opt.facts))
		for _, name := range opt.facts {
			value, err := c.collect(name)
			if err != nil {
				if !opt.all {
					return err
				}
				c.logger.Warn("fact unavailable", "fact", string(name), "error", err)
			}
			rows = append(rows, row{name: name, value: value, err: err})
		}

		if structured {
			for _, r := range rows {
				if r.err == nil {
					document[string(r.name)] = r.value
				}
			}
			continue
		}

		if opt.all {
			out.writeReport(rows)
			continue
		}
		for _, r := range rows {
			out.writeValue(r)
		}
	}

	if structured {
		return out.writeDocument(document)
	}
	return nil
}

// formatValue renders a fact value as text: "yes"/"no" for booleans.
func formatValue(value any) string {
	switch typed := value.(type) {
	case bool:
		if typed {
			return "yes"
		}
		return "no"
	case nil:
		return kernelNotFound
	default:
		return fmt.Sprint(typed)
	}
}

func (o *output) writeValue(r row) {
	if r.value == nil {
		fmt.Fprintln(o.stderr, kernelNotFound)
		return
	}
	fmt.Fprintln(o.stdout, formatValue(r.value))
}

// writeReport renders the -all table: a styled label column followed
// by the value. Unavailable facts are shown dimmed with their error.
func (o *output) writeReport(rows []row) {
	renderer := newRenderer(o.stdout, o.color)

	width := 0
	for _, r := range rows {
		width = max(width, len(factLabels[r.name]))
	}

	labelStyle := renderer.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("12")).
		Width(width + 2)
	valueStyle := renderer.NewStyle()
	missingStyle := renderer.NewStyle().
		Faint(true).
		Foreground(lipgloss.Color("9"))

	var builder strings.Builder
	for _, r := range rows {
		builder.WriteString(labelStyle.Render(factLabels[r.name]))
		switch {
		case r.err != nil:
			builder.WriteString(missingStyle.Render("unavailable: " + r.err.Error()))
		case r.value == nil:
			builder.WriteString(missingStyle.Render(kernelNotFound))
		default:
			builder.WriteString(valueStyle.Render(formatValue(r.value)))
		}
		builder.WriteByte('\n')
	}
	fmt.Fprint(o.stdout, builder.String())
}

// newRenderer returns a lipgloss renderer for w. "auto" detects the
// color profile from w; "always" and "never" pin it.
func newRenderer(w io.Writer, color string) *lipgloss.Renderer {
	var profile termenv.Profile
	switch color {
	case config.ColorAlways:
		profile = termenv.ANSI256
	case config.ColorNever:
		profile = termenv.Ascii
	default:
		return lipgloss.NewRenderer(w)
	}
	// SetColorProfile is required: ColorProfile() re-detects from the
	// environment unless a profile was set explicitly.
	renderer := lipgloss.NewRenderer(w, termenv.WithProfile(profile))
	renderer.SetColorProfile(profile)
	return renderer
}

// writeDocument encodes the collected facts as one document.
func (o *output) writeDocument(document map[string]any) error {
	switch o.format {
	case config.FormatJSON:
		encoder := json.NewEncoder(o.stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(document)
	case config.FormatYAML:
		encoder := yaml.NewEncoder(o.stdout)
		encoder.SetIndent(2)
		if err := encoder.Encode(document); err != nil {
			return err
		}
		return encoder.Close()
	case config.FormatCBOR:
		return codec.NewEncoder(o.stdout).Encode(document)
	default:
		return fmt.Errorf("unsupported output format %q", o.format)
	}
}

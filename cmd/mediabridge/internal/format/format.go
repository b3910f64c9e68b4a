// Copyright 2025 Mediabridge Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");

// Package format renders command results for the mediabridge CLI.
package format

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"
	"gopkg.in/yaml.v3"

	"github.com/mediabridge/mediabridge/pkg/compressor"
)

// OutputMode defines the output format for CLI commands
type OutputMode string

const (
	// ModeText prints human readable tables and messages
	ModeText OutputMode = "text"
	// ModeJSON outputs data as JSON
	ModeJSON OutputMode = "json"
	// ModeYAML outputs data as YAML
	ModeYAML OutputMode = "yaml"
)

// Formatter provides consistent output formatting across CLI commands
type Formatter interface {
	// PrintData outputs a structured value in the selected mode
	PrintData(data any) error

	// PrintTable outputs key/value style rows
	PrintTable(headers []string, rows [][]string) error

	// PrintSummary outputs a summary message (unless quiet mode)
	PrintSummary(message string) error

	// PrintError outputs an error with its suggestions
	PrintError(err error) error
}

type formatter struct {
	stdout io.Writer
	stderr io.Writer
	mode   OutputMode
	quiet  bool
	color  bool
}

// New creates a new Formatter
func New(stdout, stderr io.Writer, mode OutputMode, quiet, color bool) Formatter {
	return &formatter{
		stdout: stdout,
		stderr: stderr,
		mode:   mode,
		quiet:  quiet,
		color:  color,
	}
}

func (f *formatter) PrintData(data any) error {
	switch f.mode {
	case ModeJSON:
		enc := json.NewEncoder(f.stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(data)
	default:
		enc := yaml.NewEncoder(f.stdout)
		enc.SetIndent(2)
		if err := enc.Encode(data); err != nil {
			return err
		}
		return enc.Close()
	}
}

func (f *formatter) PrintTable(headers []string, rows [][]string) error {
	if f.mode != ModeText {
		items := make([]map[string]string, 0, len(rows))
		for _, row := range rows {
			item := make(map[string]string)
			for i, header := range headers {
				if i < len(row) {
					item[header] = row[i]
				}
			}
			items = append(items, item)
		}
		return f.PrintData(items)
	}

	w := tabwriter.NewWriter(f.stdout, 0, 0, 2, ' ', 0)
	head := make([]string, len(headers))
	for i, h := range headers {
		head[i] = strings.ToUpper(h)
		if f.color {
			head[i] = color.New(color.Bold).Sprint(head[i])
		}
	}
	if _, err := fmt.Fprintln(w, strings.Join(head, "\t")); err != nil {
		return err
	}
	for _, row := range rows {
		if _, err := fmt.Fprintln(w, strings.Join(row, "\t")); err != nil {
			return err
		}
	}
	return w.Flush()
}

func (f *formatter) PrintSummary(message string) error {
	if f.quiet {
		return nil
	}

	// Structured modes keep stdout machine readable.
	if f.mode != ModeText {
		_, err := fmt.Fprintln(f.stderr, message)
		return err
	}

	if f.color {
		_, err := color.New(color.FgGreen).Fprintln(f.stdout, message)
		return err
	}
	_, err := fmt.Fprintln(f.stdout, message)
	return err
}

func (f *formatter) PrintError(err error) error {
	if err == nil {
		return nil
	}

	if f.mode == ModeJSON {
		return f.PrintData(map[string]any{
			"success":     false,
			"error":       err.Error(),
			"code":        compressor.ErrorCode(err),
			"suggestions": compressor.Suggestions(err),
		})
	}

	red := fmt.Sprintf
	if f.color {
		red = color.New(color.FgRed).Sprintf
	}
	if _, werr := fmt.Fprint(f.stderr, red("Error: %v\n", err)); werr != nil {
		return werr
	}

	suggestions := compressor.Suggestions(err)
	if len(suggestions) == 0 {
		return nil
	}
	if _, werr := fmt.Fprintln(f.stderr, "\nSuggestions:"); werr != nil {
		return werr
	}
	for _, s := range suggestions {
		if _, werr := fmt.Fprintf(f.stderr, "  %s\n", s); werr != nil {
			return werr
		}
	}
	return nil
}

// ValidateMode checks if the output mode is valid
func ValidateMode(mode string) error {
	switch OutputMode(strings.ToLower(mode)) {
	case ModeText, ModeJSON, ModeYAML:
		return nil
	default:
		return fmt.Errorf("invalid output mode: %s (must be 'text', 'json' or 'yaml')", mode)
	}
}

// ParseMode converts a string to OutputMode
func ParseMode(mode string) OutputMode {
	switch strings.ToLower(mode) {
	case "json":
		return ModeJSON
	case "yaml", "yml":
		return ModeYAML
	default:
		return ModeText
	}
}

package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/rodaine/table"
	"gopkg.in/yaml.v3"
)

const (
	outputText = "text"
	outputJSON = "json"
	outputYAML = "yaml"
)

var (
	headerFmt = color.New(color.FgCyan, color.Bold).SprintfFunc()
	keyFmt    = color.New(color.FgYellow).SprintfFunc()
	green     = color.New(color.FgGreen).SprintFunc()
	red       = color.New(color.FgRed).SprintFunc()
)

type field struct {
	name  string
	value any
}

// printer renders a command result either as a key/value table or as the raw
// value serialized to JSON or YAML.
type printer struct {
	format string
	w      io.Writer
}

func newPrinter(format string, w io.Writer) (*printer, error) {
	switch format {
	case outputText, outputJSON, outputYAML:
	default:
		return nil, fmt.Errorf("unknown output format %q", format)
	}
	return &printer{format: format, w: w}, nil
}

func (p *printer) print(v any, fields ...field) error {
	switch p.format {
	case outputJSON:
		enc := json.NewEncoder(p.w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case outputYAML:
		return p.printYAML(v)
	default:
		tbl := table.New("Field", "Value").WithWriter(p.w)
		tbl.WithHeaderFormatter(headerFmt).WithFirstColumnFormatter(keyFmt)
		for _, f := range fields {
			tbl.AddRow(f.name, f.value)
		}
		tbl.Print()
		return nil
	}
}

// printYAML goes through JSON first so the YAML keys follow the json tags of
// the node types.
func (p *printer) printYAML(v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	var tree any
	if err := yaml.Unmarshal(raw, &tree); err != nil {
		return err
	}

	enc := yaml.NewEncoder(p.w)
	enc.SetIndent(2)
	if err := enc.Encode(tree); err != nil {
		return err
	}
	return enc.Close()
}

func yesNo(b bool) string {
	if b {
		return green("yes")
	}
	return red("no")
}

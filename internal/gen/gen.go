// © 2024 Microglot LLC
//
// SPDX-License-Identifier: Apache-2.0

// Package gen renders a resolved extern path mapping as an output file.
package gen

import (
	"encoding/json"
	"fmt"
	"strings"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/pluginpb"
	"gopkg.in/yaml.v3"

	"gopkg.microglot.org/prostgen.go/internal/externpath"
)

type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// Formats lists every supported format.
func Formats() []Format {
	return []Format{FormatText, FormatJSON, FormatYAML}
}

func ParseFormat(s string) (Format, error) {
	for _, f := range Formats() {
		if string(f) == strings.ToLower(s) {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown mapping format %q", s)
}

// Render returns the mapping in the given format. Entries keep their order.
func Render(format Format, paths []externpath.ExternPath) (string, error) {
	if paths == nil {
		paths = []externpath.ExternPath{}
	}
	switch format {
	case FormatText:
		var b strings.Builder
		for _, p := range paths {
			b.WriteString(p.String())
			b.WriteByte('\n')
		}
		return b.String(), nil
	case FormatJSON:
		out, err := json.MarshalIndent(paths, "", "  ")
		if err != nil {
			return "", err
		}
		return string(out) + "\n", nil
	case FormatYAML:
		out, err := yaml.Marshal(paths)
		if err != nil {
			return "", err
		}
		return string(out), nil
	default:
		return "", fmt.Errorf("unknown mapping format %q", format)
	}
}

// Emit renders the mapping into a file named name, in the shape plugins use
// to return files.
func Emit(format Format, name string, paths []externpath.ExternPath) (*pluginpb.CodeGeneratorResponse_File, error) {
	if name == "" {
		return nil, fmt.Errorf("mapping output needs a file name")
	}
	content, err := Render(format, paths)
	if err != nil {
		return nil, err
	}
	return &pluginpb.CodeGeneratorResponse_File{
		Name:    proto.String(name),
		Content: proto.String(content),
	}, nil
}

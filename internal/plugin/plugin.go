// © 2024 Microglot LLC
//
// SPDX-License-Identifier: Apache-2.0

// Package plugin drives protoc plugins such as protoc-gen-prost.
package plugin

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/sirupsen/logrus"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/descriptorpb"
	"google.golang.org/protobuf/types/pluginpb"

	"gopkg.microglot.org/prostgen.go/internal/exc"
	"gopkg.microglot.org/prostgen.go/internal/externpath"
)

// Parameter joins the extra plugin parameter with one extern_path option per
// mapping entry.
func Parameter(extra string, paths []externpath.ExternPath) string {
	parts := make([]string, 0, len(paths)+1)
	if extra != "" {
		parts = append(parts, extra)
	}
	for _, p := range paths {
		parts = append(parts, p.Option())
	}
	return strings.Join(parts, ",")
}

// NewRequest builds the request for the given targets. image must contain
// the targets and all of their imports, each file after its dependencies.
func NewRequest(targets []string, image *descriptorpb.FileDescriptorSet, parameter string) *pluginpb.CodeGeneratorRequest {
	req := &pluginpb.CodeGeneratorRequest{
		FileToGenerate:  targets,
		ProtoFile:       image.GetFile(),
		CompilerVersion: &pluginpb.Version{},
	}
	if parameter != "" {
		req.Parameter = proto.String(parameter)
	}
	return req
}

type Plugin struct {
	Executable string
	Args       []string
	// Env is added to the environment of the current process.
	Env    []string
	Logger logrus.FieldLogger
}

// Run executes the plugin once. A response carrying an error is returned as
// an exception like any failure to run the plugin.
func (self *Plugin) Run(ctx context.Context, req *pluginpb.CodeGeneratorRequest) (*pluginpb.CodeGeneratorResponse, error) {
	loc := exc.Location{URI: self.Executable}
	in, err := proto.Marshal(req)
	if err != nil {
		return nil, exc.Wrap(loc, exc.CodePluginFailure, err)
	}

	var stdout bytes.Buffer
	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, self.Executable, self.Args...)
	if len(self.Env) > 0 {
		cmd.Env = append(os.Environ(), self.Env...)
	}
	cmd.Stdin = bytes.NewReader(in)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err = cmd.Run()
	self.logStderr(stderr.Bytes())
	if err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			err = fmt.Errorf("%w: %s", err, msg)
		}
		return nil, exc.Wrap(loc, exc.CodePluginFailure, err)
	}

	resp := &pluginpb.CodeGeneratorResponse{}
	if err = proto.Unmarshal(stdout.Bytes(), resp); err != nil {
		return nil, exc.Wrap(loc, exc.CodePluginFailure, err)
	}
	if resp.Error != nil {
		return nil, exc.New(loc, exc.CodePluginFailure, resp.GetError())
	}
	return resp, nil
}

func (self *Plugin) logStderr(b []byte) {
	if self.Logger == nil {
		return
	}
	scanner := bufio.NewScanner(bytes.NewReader(b))
	for scanner.Scan() {
		self.Logger.WithField("plugin", self.Executable).Warn(scanner.Text())
	}
}

// Files merges continuation chunks, files without a name, into the file
// before them. Insertion points are not supported.
func Files(resp *pluginpb.CodeGeneratorResponse) ([]*pluginpb.CodeGeneratorResponse_File, error) {
	out := make([]*pluginpb.CodeGeneratorResponse_File, 0, len(resp.GetFile()))
	for _, f := range resp.GetFile() {
		if f.GetInsertionPoint() != "" {
			return nil, exc.New(exc.Location{URI: f.GetName()}, exc.CodePluginFailure, "insertion points are not supported")
		}
		if f.GetName() == "" {
			if len(out) == 0 {
				return nil, exc.New(exc.Location{}, exc.CodePluginFailure, "first response file has no name")
			}
			last := out[len(out)-1]
			last.Content = proto.String(last.GetContent() + f.GetContent())
			continue
		}
		out = append(out, &pluginpb.CodeGeneratorResponse_File{
			Name:    proto.String(f.GetName()),
			Content: proto.String(f.GetContent()),
		})
	}
	return out, nil
}

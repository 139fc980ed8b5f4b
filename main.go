// © 2024 Microglot LLC
//
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/pluginpb"

	"gopkg.microglot.org/prostgen.go/internal/compiler"
	"gopkg.microglot.org/prostgen.go/internal/config"
	"gopkg.microglot.org/prostgen.go/internal/fs"
	"gopkg.microglot.org/prostgen.go/internal/gen"
	"gopkg.microglot.org/prostgen.go/internal/idl"
	"gopkg.microglot.org/prostgen.go/internal/plugin"
)

const stdio = "-"

type opts struct {
	config.Config
	Externals        []string
	ExternOut        string
	DescriptorSetOut string
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	cfg, err := config.Load(os.LookupEnv)
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(2)
	}
	op := &opts{Config: cfg}
	flags := pflag.NewFlagSet("prostgen", pflag.ExitOnError)
	flags.StringArrayVar(&op.Externals, "external", nil, "crate_name,descriptor_set_path of types provided by another crate. Repeatable.")
	flags.StringSliceVar(&op.Roots, "root", cfg.Roots, "Root search paths for targets, imports and relative descriptor paths.")
	flags.StringVar(&op.Output, "output", cfg.Output, "Output directory or - for STDOUT.")
	flags.StringVar(&op.Plugin, "plugin", cfg.Plugin, "Specifies a plugin executable to run over the targets.")
	flags.StringVar(&op.PluginParam, "plugin_param", cfg.PluginParam, "Parameter passed to the plugin before the extern_path options.")
	flags.StringVar(&op.ExternOut, "extern_out", "", "Writes the resolved extern paths to FILE, relative to --output, or - for STDOUT.")
	flags.StringVar(&op.ExternFormat, "extern_format", cfg.ExternFormat, "Format of the extern paths: text, json or yaml.")
	flags.StringVar(&op.DescriptorSetOut, "descriptor_set_out", "", "Writes a protobuf FileDescriptorSet containing all the input to FILE")
	flags.IntVar(&op.MaxConcurrency, "max_concurrency", cfg.MaxConcurrency, "Maximum number of descriptor sets loaded at once. 0 picks one per CPU.")
	flags.StringVar(&op.LogLevel, "log-level", cfg.LogLevel, "Log level.")
	flags.StringVar(&op.LogFormat, "log-format", cfg.LogFormat, "Log format: text or json.")
	_ = flags.Parse(os.Args[1:])
	targets := flags.Args()

	if err = op.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(2)
	}
	logger := op.Logger()
	format, _ := gen.ParseFormat(op.ExternFormat)

	if err = run(ctx, logger, op, format, targets); err != nil {
		var me compiler.MultiException
		if errors.As(err, &me) {
			for _, e := range me {
				logger.WithField("code", e.Code()).Error(e.Error())
			}
			os.Exit(1)
		}
		logger.Error(err.Error())
		os.Exit(1)
	}
}

func run(ctx context.Context, logger *logrus.Logger, op *opts, format gen.Format, targets []string) error {
	mf := make(fs.FileSystemMulti, 0, len(op.Roots)+1)
	for _, root := range op.Roots {
		absRoot, err := filepath.Abs(root)
		if err != nil {
			return err
		}
		rf, err := fs.NewFileSystemLocal(absRoot)
		if err != nil {
			return err
		}
		mf = append(mf, rf)
	}
	roots := append(fs.FileSystemMulti{}, mf...)
	df, err := compiler.NewDefaultFS(os.LookupEnv)
	if err != nil {
		return err
	}
	mf = append(mf, df)
	// Only absolute descriptor paths are opened from here.
	sys, err := fs.NewFileSystemLocal("/")
	if err != nil {
		return err
	}

	c, err := compiler.New(
		compiler.OptionWithLookupEnv(os.LookupEnv),
		compiler.OptionWithFS(mf),
		compiler.OptionWithTargetFS(roots),
		compiler.OptionWithSystemFS(sys),
		compiler.OptionWithLogger(logger),
		compiler.OptionWithMaxConcurrency(op.MaxConcurrency),
	)
	if err != nil {
		return err
	}

	out, err := c.Compile(ctx, &idl.CompileRequest{
		Externals: op.Externals,
		Files:     targets,
	})
	if err != nil {
		return err
	}
	logger.WithFields(logrus.Fields{
		"extern_paths": len(out.ExternPaths),
		"targets":      len(out.Targets),
	}).Info("resolved")

	var output idl.FileSystem
	if op.Output != stdio {
		abs, err := filepath.Abs(op.Output)
		if err != nil {
			return err
		}
		if output, err = fs.NewFileSystemLocal(abs); err != nil {
			return err
		}
	}

	if op.DescriptorSetOut != "" {
		b, err := proto.Marshal(out.Image)
		if err != nil {
			return err
		}
		if err = os.WriteFile(op.DescriptorSetOut, b, 0o644); err != nil {
			return err
		}
	}

	externOut := op.ExternOut
	if externOut == "" && op.Plugin == "" && op.DescriptorSetOut == "" {
		externOut = stdio
	}
	if externOut != "" {
		name := externOut
		if name == stdio {
			name = "extern_paths." + string(format)
		}
		f, err := gen.Emit(format, name, out.ExternPaths)
		if err != nil {
			return err
		}
		target := output
		if externOut == stdio {
			target = nil
		}
		if err = write(ctx, target, f); err != nil {
			return err
		}
	}

	if op.Plugin != "" {
		p := &plugin.Plugin{Executable: op.Plugin, Logger: logger}
		req := plugin.NewRequest(out.Targets, out.Image, plugin.Parameter(op.PluginParam, out.ExternPaths))
		resp, err := p.Run(ctx, req)
		if err != nil {
			return err
		}
		files, err := plugin.Files(resp)
		if err != nil {
			return err
		}
		for _, f := range files {
			if err = write(ctx, output, f); err != nil {
				return err
			}
		}
	}
	return nil
}

// write stores f in output, or prints it when there is no output directory.
func write(ctx context.Context, output idl.FileSystem, f *pluginpb.CodeGeneratorResponse_File) error {
	if output == nil {
		_, err := io.WriteString(os.Stdout, f.GetContent())
		return err
	}
	return output.Write(ctx, f.GetName(), f.GetContent())
}

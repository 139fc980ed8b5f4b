// © 2024 Microglot LLC
//
// SPDX-License-Identifier: Apache-2.0

package compiler

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"google.golang.org/protobuf/types/descriptorpb"

	"gopkg.microglot.org/prostgen.go/internal/exc"
	"gopkg.microglot.org/prostgen.go/internal/externpath"
	"gopkg.microglot.org/prostgen.go/internal/fs"
	"gopkg.microglot.org/prostgen.go/internal/idl"
	"gopkg.microglot.org/prostgen.go/internal/target"
)

type Option func(c *compiler) error

func OptionWithFS(fs idl.FileSystem) Option {
	return func(c *compiler) error {
		c.FS = fs
		return nil
	}
}

// OptionWithTargetFS sets the file systems target patterns are expanded in.
// It defaults to the FS option.
func OptionWithTargetFS(fs idl.FileSystem) Option {
	return func(c *compiler) error {
		c.TargetFS = fs
		return nil
	}
}

// OptionWithSystemFS sets the file system absolute descriptor paths are
// opened from. It defaults to the local file system rooted at /.
func OptionWithSystemFS(fs idl.FileSystem) Option {
	return func(c *compiler) error {
		c.SystemFS = fs
		return nil
	}
}

func OptionWithLookupEnv(lookupEnv func(string) (string, bool)) Option {
	return func(c *compiler) error {
		c.LookupENV = lookupEnv
		return nil
	}
}

// OptionWithExcReporter makes every Compile call report into reporter. By
// default each call gets its own.
func OptionWithExcReporter(reporter exc.Reporter) Option {
	return func(c *compiler) error {
		c.Reporter = reporter
		return nil
	}
}

func OptionWithMaxConcurrency(max int) Option {
	return func(c *compiler) error {
		if max < 0 {
			return errors.New("max concurrency must not be negative")
		}
		c.MaxConcurrency = max
		return nil
	}
}

func OptionWithLogger(logger logrus.FieldLogger) Option {
	return func(c *compiler) error {
		c.Logger = logger
		return nil
	}
}

func New(opts ...Option) (idl.Compiler, error) {
	c := &compiler{}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	if c.LookupENV == nil {
		c.LookupENV = os.LookupEnv
	}
	if c.FS == nil {
		dfs, err := NewDefaultFS(c.LookupENV)
		if err != nil {
			return nil, err
		}
		c.FS = dfs
	}
	if c.TargetFS == nil {
		c.TargetFS = c.FS
	}
	if c.MaxConcurrency == 0 {
		max := runtime.GOMAXPROCS(-1)
		cpus := runtime.NumCPU()
		if max > cpus {
			max = cpus
		}
		c.MaxConcurrency = max
	}
	if c.SystemFS == nil {
		sys, err := fs.NewFileSystemLocal("/")
		if err != nil {
			return nil, err
		}
		c.SystemFS = sys
	}
	if c.Logger == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		c.Logger = l
	}
	if c.SubCompilers == nil {
		c.SubCompilers = DefaultSubCompilers(c.FS, c.Logger)
	}
	if c.AbsSubCompilers == nil {
		// Imports of an absolute .proto path still resolve through the roots
		// first.
		c.AbsSubCompilers = DefaultSubCompilers(fs.FileSystemMulti{c.FS, c.SystemFS}, c.Logger)
	}
	if c.Protobuf == nil {
		c.Protobuf = &SubCompilerProtobuf{
			FS:             c.FS,
			Logger:         c.Logger,
			MaxParallelism: c.MaxConcurrency,
		}
	}
	return c, nil
}

type compiler struct {
	LookupENV      func(string) (string, bool)
	FS             idl.FileSystem
	TargetFS       idl.FileSystem
	SystemFS       idl.FileSystem
	MaxConcurrency int
	Reporter       exc.Reporter
	Logger         logrus.FieldLogger
	SubCompilers   map[idl.FileKind]SubCompiler
	Protobuf       *SubCompilerProtobuf

	// AbsSubCompilers handle externals given by absolute path.
	AbsSubCompilers map[idl.FileKind]SubCompiler
}

// newReporter returns the reporter of one Compile call. Parse errors do not
// stop protocompile so that every broken source is reported in one run.
func (self *compiler) newReporter() exc.Reporter {
	if self.Reporter != nil {
		return self.Reporter
	}
	return exc.NewReporter([]string{exc.CodeProtobufParseError})
}

// Compile resolves every external and compiles the requested files. Failures
// of independent inputs are all reported; if anything was reported the result
// is a MultiException and no mapping is returned.
func (self *compiler) Compile(ctx context.Context, req *idl.CompileRequest) (*idl.CompileResponse, error) {
	r := self.newReporter()
	loaded := make([][]externpath.ExternPath, len(req.Externals))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(self.MaxConcurrency)
	for index, raw := range req.Externals {
		index, raw := index, raw
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			loaded[index] = self.loadExternal(gctx, r, raw)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	targets := self.expandTargets(ctx, r, req.Files)
	image := &descriptorpb.FileDescriptorSet{}
	if len(targets) > 0 {
		self.Logger.WithField("targets", targets).Debug("compiling targets")
		compiled, err := self.Protobuf.CompileImage(ctx, r, targets)
		if err == nil && compiled != nil {
			image = compiled
		}
	}

	caught := r.Reported()
	if len(caught) > 0 {
		return nil, MultiException(caught)
	}
	out := &idl.CompileResponse{
		ExternPaths: []externpath.ExternPath{},
		Targets:     targets,
		Image:       image,
	}
	for _, paths := range loaded {
		out.ExternPaths = append(out.ExternPaths, paths...)
	}
	return out, nil
}

// loadExternal resolves one crate_name,descriptor_path argument. Relative
// paths are opened from FS and absolute ones from SystemFS only. Failures are
// reported and yield no paths.
func (self *compiler) loadExternal(ctx context.Context, r exc.Reporter, raw string) []externpath.ExternPath {
	arg, err := externpath.ParseArg(raw)
	if err != nil {
		_ = r.Report(exc.Wrap(exc.Location{URI: raw}, exc.CodeInvalidArgument, err))
		return nil
	}
	fsys, subCompilers := self.FS, self.SubCompilers
	if isAbs(arg.DescriptorSet) {
		fsys, subCompilers = self.SystemFS, self.AbsSubCompilers
	}
	uri := target.Normalize(arg.DescriptorSet)
	files, err := fsys.Open(ctx, uri)
	if err != nil {
		_ = r.Report(asException(exc.Location{URI: arg.DescriptorSet}, exc.CodeFileNotFound, err))
		return nil
	}
	if len(files) != 1 {
		_ = r.Report(exc.New(exc.Location{URI: arg.DescriptorSet}, exc.CodeInvalidArgument, "descriptor set path must name a single file"))
		return nil
	}
	file := files[0]
	sc := subCompilers[file.Kind(ctx)]
	if sc == nil {
		_ = r.Report(exc.New(exc.Location{URI: arg.DescriptorSet}, exc.CodeInvalidArgument, "unsupported file format "+file.Kind(ctx).String()))
		return nil
	}
	set, err := sc.CompileFile(ctx, r, file)
	if err != nil || set == nil {
		return nil
	}
	paths, err := externpath.ResolveSet(arg.Crate, set)
	if err != nil {
		_ = r.Report(exc.Wrap(exc.Location{URI: arg.DescriptorSet}, exc.CodeUnresolvableDescriptor, err))
		return nil
	}
	self.Logger.WithFields(logrus.Fields{
		"crate":          arg.Crate.String(),
		"descriptor_set": arg.DescriptorSet,
		"files":          len(set.GetFile()),
		"count":          len(paths),
	}).Debug("resolved external")
	return paths
}

// expandTargets replaces glob patterns with the files they match. A pattern
// without matches is reported.
func (self *compiler) expandTargets(ctx context.Context, r exc.Reporter, files []string) []string {
	targets := make([]string, 0, len(files))
	seen := make(map[string]bool)
	add := func(name string) {
		name = strings.TrimPrefix(target.Normalize(name), "/")
		if seen[name] {
			return
		}
		seen[name] = true
		targets = append(targets, name)
	}
	for _, f := range files {
		if !target.IsPattern(f) {
			add(f)
			continue
		}
		matches, err := self.TargetFS.Glob(ctx, f)
		if err != nil {
			_ = r.Report(asException(exc.Location{URI: f}, exc.CodeInvalidArgument, err))
			continue
		}
		if len(matches) == 0 {
			_ = r.Report(exc.New(exc.Location{URI: f}, exc.CodeFileNotFound, "pattern matched no files"))
			continue
		}
		for _, m := range matches {
			add(m)
		}
	}
	return targets
}

func isAbs(path string) bool {
	return filepath.IsAbs(path) || strings.HasPrefix(path, "file://")
}

// asException keeps the code of errors that already are exceptions.
func asException(loc exc.Location, code string, err error) exc.Exception {
	var e exc.Exception
	if errors.As(err, &e) {
		return e
	}
	return exc.Wrap(loc, code, err)
}

type MultiException []exc.Exception

func (self MultiException) Error() string {
	if len(self) == 0 {
		return "no errors"
	}
	var b strings.Builder
	for _, err := range self[:len(self)-1] {
		b.WriteString(err.Error())
		b.WriteString("; ")
	}
	b.WriteString(self[len(self)-1].Error())
	return b.String()
}

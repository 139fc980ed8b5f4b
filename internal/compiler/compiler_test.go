// © 2024 Microglot LLC
//
// SPDX-License-Identifier: Apache-2.0

package compiler

import (
	"context"
	"errors"
	iofs "io/fs"
	"testing"
	"testing/fstest"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/testing/protocmp"
	"google.golang.org/protobuf/types/descriptorpb"

	"gopkg.microglot.org/prostgen.go/internal/exc"
	"gopkg.microglot.org/prostgen.go/internal/externpath"
	"gopkg.microglot.org/prostgen.go/internal/fs"
	"gopkg.microglot.org/prostgen.go/internal/idl"
)

func marshalSet(t *testing.T, files ...*descriptorpb.FileDescriptorProto) []byte {
	t.Helper()
	b, err := proto.Marshal(&descriptorpb.FileDescriptorSet{File: files})
	require.NoError(t, err)
	return b
}

func newMapFS(t *testing.T, files fstest.MapFS) idl.FileSystem {
	t.Helper()
	f, err := fs.NewFileSystemLocal("/", fs.WithOptionFSFactory(func(string) iofs.FS {
		return files
	}))
	require.NoError(t, err)
	return f
}

func newTestCompiler(t *testing.T, files fstest.MapFS, opts ...Option) idl.Compiler {
	t.Helper()
	opts = append([]Option{
		OptionWithFS(newMapFS(t, files)),
		OptionWithSystemFS(newMapFS(t, fstest.MapFS{})),
		OptionWithMaxConcurrency(2),
		OptionWithLookupEnv(func(string) (string, bool) { return "", false }),
	}, opts...)
	c, err := New(opts...)
	require.NoError(t, err)
	return c
}

const sourceA = `syntax = "proto3";
package acme.v1;

import "acme/v1/b.proto";
import "google/protobuf/timestamp.proto";

message A {
  B b = 1;
  google.protobuf.Timestamp at = 2;
}
`

const sourceB = `syntax = "proto3";
package acme.v1;

message B {}
`

func TestCompileExternals(t *testing.T) {
	t.Parallel()

	files := fstest.MapFS{
		"sets/types.protoset": {Data: marshalSet(t, &descriptorpb.FileDescriptorProto{
			Name:    proto.String("google/protobuf/any.proto"),
			Package: proto.String("google.protobuf"),
			MessageType: []*descriptorpb.DescriptorProto{
				{Name: proto.String("Any")},
			},
			EnumType: []*descriptorpb.EnumDescriptorProto{
				{Name: proto.String("NullValue")},
			},
		})},
		"acme/v1/b.proto": {Data: []byte(sourceB)},
	}
	c := newTestCompiler(t, files)

	out, err := c.Compile(context.Background(), &idl.CompileRequest{
		Externals: []string{
			"prost-types,sets/types.protoset",
			"acme-api,acme/v1/b.proto",
		},
	})
	require.NoError(t, err)
	require.Equal(t, []externpath.ExternPath{
		{Path: "::prost_types::google::protobuf::Any", Package: ".google.protobuf.Any"},
		{Path: "::prost_types::google::protobuf::NullValue", Package: ".google.protobuf.NullValue"},
		{Path: "::acme_api::acme::v1::B", Package: ".acme.v1.B"},
	}, out.ExternPaths)
	require.Empty(t, out.Targets)
	require.Empty(t, out.Image.GetFile())
}

func TestCompileNothing(t *testing.T) {
	t.Parallel()

	out, err := newTestCompiler(t, fstest.MapFS{}).Compile(context.Background(), &idl.CompileRequest{})
	require.NoError(t, err)
	require.NotNil(t, out.ExternPaths)
	require.Empty(t, out.ExternPaths)
}

func TestCompileReportsEveryFailure(t *testing.T) {
	t.Parallel()

	files := fstest.MapFS{
		"garbage.protoset": {Data: []byte{0xff}},
		"nopkg.protoset": {Data: marshalSet(t, &descriptorpb.FileDescriptorProto{
			Name: proto.String("nopkg.proto"),
		})},
		"good.protoset": {Data: marshalSet(t, &descriptorpb.FileDescriptorProto{
			Package:     proto.String("good"),
			MessageType: []*descriptorpb.DescriptorProto{{Name: proto.String("Good")}},
		})},
	}
	c := newTestCompiler(t, files)

	out, err := c.Compile(context.Background(), &idl.CompileRequest{
		Externals: []string{
			"no-comma",
			"crate,missing.protoset",
			"crate,garbage.protoset",
			"crate,nopkg.protoset",
			"crate,good.protoset",
		},
	})
	require.Nil(t, out)
	var me MultiException
	require.True(t, errors.As(err, &me))
	codes := make([]string, 0, len(me))
	for _, e := range me {
		codes = append(codes, e.Code())
	}
	require.ElementsMatch(t, []string{
		exc.CodeInvalidArgument,
		exc.CodeFileNotFound,
		exc.CodeDescriptorDecode,
		exc.CodeUnresolvableDescriptor,
	}, codes)

	for _, e := range me {
		if e.Code() == exc.CodeUnresolvableDescriptor {
			require.ErrorIs(t, e, externpath.ErrPackageNameUnset)
			require.Equal(t, "nopkg.protoset", e.Location().URI)
		}
		if e.Code() == exc.CodeInvalidArgument {
			require.ErrorIs(t, e, externpath.ErrInvalidArgument)
		}
	}
}

func TestCompileTargets(t *testing.T) {
	t.Parallel()

	files := fstest.MapFS{
		"acme/v1/a.proto": {Data: []byte(sourceA)},
		"acme/v1/b.proto": {Data: []byte(sourceB)},
	}
	c := newTestCompiler(t, files)

	out, err := c.Compile(context.Background(), &idl.CompileRequest{
		Files: []string{"acme/**/a.proto"},
	})
	require.NoError(t, err)
	require.Equal(t, []string{"acme/v1/a.proto"}, out.Targets)

	names := make([]string, 0, len(out.Image.GetFile()))
	for _, f := range out.Image.GetFile() {
		names = append(names, f.GetName())
	}
	require.Equal(t, []string{"acme/v1/b.proto", "google/protobuf/timestamp.proto", "acme/v1/a.proto"}, names)

	expected := &descriptorpb.FileDescriptorProto{
		Name:        proto.String("acme/v1/b.proto"),
		Package:     proto.String("acme.v1"),
		MessageType: []*descriptorpb.DescriptorProto{{Name: proto.String("B")}},
		Syntax:      proto.String("proto3"),
	}
	diff := cmp.Diff(expected, out.Image.GetFile()[0],
		protocmp.Transform(),
		protocmp.IgnoreFields(&descriptorpb.FileDescriptorProto{}, "source_code_info"),
	)
	require.Empty(t, diff)
}

func TestCompileTargetErrors(t *testing.T) {
	t.Parallel()

	files := fstest.MapFS{
		"bad.proto": {Data: []byte("syntax = \"proto3\";\nmessage {\n")},
	}

	testCases := []struct {
		name     string
		files    []string
		expected string
	}{
		{name: "parse error", files: []string{"bad.proto"}, expected: exc.CodeProtobufParseError},
		{name: "unmatched pattern", files: []string{"nothing/**/*.proto"}, expected: exc.CodeFileNotFound},
	}
	for _, testCase := range testCases {
		testCase := testCase
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()
			c := newTestCompiler(t, files)
			_, err := c.Compile(context.Background(), &idl.CompileRequest{Files: testCase.files})
			var me MultiException
			require.True(t, errors.As(err, &me))
			require.NotEmpty(t, me)
			require.Equal(t, testCase.expected, me[0].Code())
		})
	}
}

func TestCompileCancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	c := newTestCompiler(t, fstest.MapFS{})
	_, err := c.Compile(ctx, &idl.CompileRequest{Externals: []string{"a,b.protoset"}})
	require.ErrorIs(t, err, context.Canceled)
}

func TestNewRejectsNegativeConcurrency(t *testing.T) {
	t.Parallel()

	_, err := New(OptionWithMaxConcurrency(-1))
	require.Error(t, err)
}

func TestMultiExceptionError(t *testing.T) {
	t.Parallel()

	me := MultiException{
		exc.New(exc.Location{URI: "a"}, exc.CodeFileNotFound, "missing"),
		exc.New(exc.Location{URI: "b"}, exc.CodeInvalidArgument, "bad"),
	}
	require.Equal(t, "a -- P0001: missing; b -- P0004: bad", me.Error())
}

func TestCompileTargetFS(t *testing.T) {
	t.Parallel()

	includes := fstest.MapFS{
		"acme/v1/b.proto": {Data: []byte(sourceB)},
	}
	roots := fstest.MapFS{
		"acme/v1/a.proto": {Data: []byte(sourceA)},
	}
	c := newTestCompiler(t, fstest.MapFS{},
		OptionWithFS(fs.FileSystemMulti{newMapFS(t, roots), newMapFS(t, includes)}),
		OptionWithTargetFS(newMapFS(t, roots)),
	)

	out, err := c.Compile(context.Background(), &idl.CompileRequest{
		Files: []string{"**/*.proto"},
	})
	require.NoError(t, err)
	require.Equal(t, []string{"acme/v1/a.proto"}, out.Targets)
	require.Len(t, out.Image.GetFile(), 3)
}

func TestCompileDescriptorPaths(t *testing.T) {
	t.Parallel()

	set := marshalSet(t, &descriptorpb.FileDescriptorProto{
		Package:     proto.String("sys"),
		MessageType: []*descriptorpb.DescriptorProto{{Name: proto.String("Found")}},
	})
	roots := fstest.MapFS{
		"only/in/roots.protoset": {Data: set},
	}
	system := fstest.MapFS{
		"x.protoset":     {Data: set},
		"sys/x.protoset": {Data: set},
		"ext/e.proto":    {Data: []byte("syntax = \"proto3\";\npackage ext;\nmessage E {}\n")},
	}

	testCases := []struct {
		name     string
		external string
		expected []externpath.ExternPath
	}{
		{
			name:     "relative path is not read from the system root",
			external: "c,x.protoset",
		},
		{
			name:     "absolute path is read from the system root",
			external: "c,/sys/x.protoset",
			expected: []externpath.ExternPath{{Package: ".sys.Found", Path: "::c::sys::Found"}},
		},
		{
			name:     "absolute path is not read from the roots",
			external: "c,/only/in/roots.protoset",
		},
		{
			name:     "absolute proto source",
			external: "c,/ext/e.proto",
			expected: []externpath.ExternPath{{Package: ".ext.E", Path: "::c::ext::E"}},
		},
	}
	for _, testCase := range testCases {
		testCase := testCase
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()
			c := newTestCompiler(t, roots, OptionWithSystemFS(newMapFS(t, system)))
			out, err := c.Compile(context.Background(), &idl.CompileRequest{Externals: []string{testCase.external}})
			if testCase.expected == nil {
				var me MultiException
				require.True(t, errors.As(err, &me))
				require.Len(t, me, 1)
				require.Equal(t, exc.CodeFileNotFound, me[0].Code())
				return
			}
			require.NoError(t, err)
			require.Equal(t, testCase.expected, out.ExternPaths)
		})
	}
}

func TestCompileReporterPerCall(t *testing.T) {
	t.Parallel()

	files := fstest.MapFS{
		"good.protoset": {Data: marshalSet(t, &descriptorpb.FileDescriptorProto{
			Package:     proto.String("good"),
			MessageType: []*descriptorpb.DescriptorProto{{Name: proto.String("Good")}},
		})},
	}
	c := newTestCompiler(t, files)

	_, err := c.Compile(context.Background(), &idl.CompileRequest{Externals: []string{"no-comma"}})
	require.Error(t, err)

	out, err := c.Compile(context.Background(), &idl.CompileRequest{Externals: []string{"c,good.protoset"}})
	require.NoError(t, err)
	require.Len(t, out.ExternPaths, 1)
}

func TestCompileWithExcReporter(t *testing.T) {
	t.Parallel()

	r := exc.NewReporter(nil)
	c := newTestCompiler(t, fstest.MapFS{}, OptionWithExcReporter(r))

	_, err := c.Compile(context.Background(), &idl.CompileRequest{Externals: []string{"no-comma"}})
	require.Error(t, err)
	require.Len(t, r.Reported(), 1)
	require.Equal(t, exc.CodeInvalidArgument, r.Reported()[0].Code())

	// The injected reporter keeps what earlier calls reported.
	_, err = c.Compile(context.Background(), &idl.CompileRequest{})
	require.Error(t, err)
}

func TestCompileReportsEveryBrokenSource(t *testing.T) {
	t.Parallel()

	files := fstest.MapFS{
		"bad1.proto": {Data: []byte("syntax = \"proto3\";\nmessage {\n")},
		"bad2.proto": {Data: []byte("syntax = \"proto3\";\nenum {\n")},
	}
	c := newTestCompiler(t, files, OptionWithMaxConcurrency(1))

	_, err := c.Compile(context.Background(), &idl.CompileRequest{Files: []string{"bad1.proto", "bad2.proto"}})
	var me MultiException
	require.True(t, errors.As(err, &me))
	uris := make(map[string]bool)
	for _, e := range me {
		require.Equal(t, exc.CodeProtobufParseError, e.Code())
		uris[e.Location().URI] = true
	}
	require.True(t, uris["bad1.proto"])
	require.True(t, uris["bad2.proto"])
}

func TestSubCompilerDescriptorSet(t *testing.T) {
	t.Parallel()

	set := marshalSet(t, &descriptorpb.FileDescriptorProto{
		Name:    proto.String("a.proto"),
		Package: proto.String("a"),
	})
	testCases := []struct {
		name    string
		content []byte
		code    string
	}{
		{name: "valid", content: set},
		{name: "empty", content: []byte{}},
		{name: "truncated", content: set[:len(set)-1], code: exc.CodeDescriptorDecode},
	}
	for _, testCase := range testCases {
		testCase := testCase
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()
			r := exc.NewReporter(nil)
			file := fs.NewFileBytes("/sets/a.protoset", testCase.content)
			out, err := (&SubCompilerDescriptorSet{}).CompileFile(context.Background(), r, file)
			if testCase.code != "" {
				require.Error(t, err)
				require.Nil(t, out)
				require.Len(t, r.Reported(), 1)
				require.Equal(t, testCase.code, r.Reported()[0].Code())
				require.Equal(t, "/sets/a.protoset", r.Reported()[0].Location().URI)
				return
			}
			require.NoError(t, err)
			require.Empty(t, r.Reported())
			require.Equal(t, len(testCase.content) > 0, len(out.GetFile()) == 1)
		})
	}
}

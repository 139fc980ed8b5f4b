// © 2024 Microglot LLC
//
// SPDX-License-Identifier: Apache-2.0

package gen

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"gopkg.microglot.org/prostgen.go/internal/externpath"
)

var testPaths = []externpath.ExternPath{
	{Package: ".google.protobuf.Any", Path: "::prost_types::google::protobuf::Any"},
	{Package: ".acme.v1.Type", Path: "::acme::acme::v1::r#Type"},
}

func TestRender(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		format   Format
		paths    []externpath.ExternPath
		expected string
	}{
		{
			name:   "text",
			format: FormatText,
			paths:  testPaths,
			expected: ".google.protobuf.Any=::prost_types::google::protobuf::Any\n" +
				".acme.v1.Type=::acme::acme::v1::r#Type\n",
		},
		{
			name:     "text empty",
			format:   FormatText,
			expected: "",
		},
		{
			name:   "json",
			format: FormatJSON,
			paths:  testPaths[:1],
			expected: `[
  {
    "package": ".google.protobuf.Any",
    "path": "::prost_types::google::protobuf::Any"
  }
]
`,
		},
		{
			name:     "json empty",
			format:   FormatJSON,
			expected: "[]\n",
		},
	}
	for _, testCase := range testCases {
		testCase := testCase
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()
			out, err := Render(testCase.format, testCase.paths)
			require.NoError(t, err)
			require.Equal(t, testCase.expected, out)
		})
	}
}

func TestRenderYAML(t *testing.T) {
	t.Parallel()

	out, err := Render(FormatYAML, testPaths)
	require.NoError(t, err)
	var decoded []externpath.ExternPath
	require.NoError(t, yaml.Unmarshal([]byte(out), &decoded))
	require.Equal(t, testPaths, decoded)
}

func TestRenderUnknown(t *testing.T) {
	t.Parallel()

	_, err := Render(Format("toml"), testPaths)
	require.Error(t, err)
}

func TestEmit(t *testing.T) {
	t.Parallel()

	f, err := Emit(FormatText, "extern_paths.txt", testPaths[:1])
	require.NoError(t, err)
	require.Equal(t, "extern_paths.txt", f.GetName())
	require.Equal(t, ".google.protobuf.Any=::prost_types::google::protobuf::Any\n", f.GetContent())

	_, err = Emit(FormatText, "", testPaths)
	require.Error(t, err)
}

func TestParseFormat(t *testing.T) {
	t.Parallel()

	for _, f := range Formats() {
		parsed, err := ParseFormat(string(f))
		require.NoError(t, err)
		require.Equal(t, f, parsed)
	}
	parsed, err := ParseFormat("JSON")
	require.NoError(t, err)
	require.Equal(t, FormatJSON, parsed)
	_, err = ParseFormat("xml")
	require.Error(t, err)
}

package iojson

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type item struct {
	SKU   string  `json:"sku"`
	Price float64 `json:"price"`
}

func TestWriteLines(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteLines(&buf, []item{{"LID1", 5}, {"MUG1", 12.5}}))

	assert.Equal(t, "{\"sku\":\"LID1\",\"price\":5}\n{\"sku\":\"MUG1\",\"price\":12.5}\n", buf.String())
}

func TestWriteLines_unsupported_value(t *testing.T) {
	var buf bytes.Buffer
	err := WriteLines(&buf, []any{func() {}})
	assert.ErrorContains(t, err, "encode line")
}

func TestFileReader_Provided(t *testing.T) {
	assert.False(t, (&FileReader[item]{}).Provided())
	assert.True(t, (&FileReader[item]{path: Stdin}).Provided())
}

func TestFileReader_file(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cart.json")
	require.NoError(t, os.WriteFile(path, []byte(`[{"sku":"TUM1","price":20}]`), 0o644))

	fr := FileReader[[]item]{path: path}
	got, err := fr.Read(strings.NewReader("ignored"))
	require.NoError(t, err)
	assert.Equal(t, []item{{"TUM1", 20}}, got)
}

func TestFileReader_stdin(t *testing.T) {
	fr := FileReader[[]item]{path: Stdin}

	got, err := fr.Read(strings.NewReader(`[{"sku":"A"}]`))
	require.NoError(t, err)
	assert.Equal(t, []item{{SKU: "A"}}, got)
}

func TestFileReader_errors(t *testing.T) {
	tests := []struct {
		name  string
		path  string
		stdin string
		want  string
	}{
		{name: "bad json", path: Stdin, stdin: `{`, want: "decode JSON"},
		{name: "missing file", path: filepath.Join(t.TempDir(), "nope.json"), want: "open file"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fr := FileReader[[]item]{path: tt.path}
			_, err := fr.Read(strings.NewReader(tt.stdin))
			assert.ErrorContains(t, err, tt.want)
		})
	}
}

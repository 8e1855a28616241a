package main

import (
	"bytes"
	"encoding/base64"
	"encoding/hex"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tuannm99/novarow/internal/wire"
)

const schema = `
keyspace: shop
table: orders
columns:
  - {name: id, type: int}
  - {name: name, type: text}
  - {name: tags, type: "set<text>"}
`

func writeSchema(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "orders.yaml")
	require.NoError(t, os.WriteFile(path, []byte(schema), 0o644))
	return path
}

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestEncode_Values(t *testing.T) {
	path := writeSchema(t)

	out, err := run(t, "", "encode", "-s", path, "--values", `[1, "ann", null]`)
	require.NoError(t, err)

	want := "00000004" + "00000001" + "00000003" + hex.EncodeToString([]byte("ann")) + "ffffffff"
	assert.Equal(t, want+"\n", out)
}

func TestEncode_StdinFramedBase64(t *testing.T) {
	path := writeSchema(t)
	metrics := filepath.Join(t.TempDir(), "rowenc.prom")

	out, err := run(t, "{\"id\": 1, \"name\": \"a\", \"tags\": [\"x\"]}\n\n[2, null, []]\n",
		"encode", "-s", path, "-f", "base64", "--frame", "--metrics-out", metrics)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)

	// [2, null, []]: frame length 22, count 3, then the cells
	second, err := base64.StdEncoding.DecodeString(lines[1])
	require.NoError(t, err)
	payload, count, err := wire.ReadFrame(bytes.NewReader(second))
	require.NoError(t, err)
	assert.Equal(t, uint16(3), count)
	assert.Equal(t, []byte{0, 0, 0, 4, 0, 0, 0, 2, 0xff, 0xff, 0xff, 0xff, 0, 0, 0, 4, 0, 0, 0, 0}, payload)

	prom, err := os.ReadFile(metrics)
	require.NoError(t, err)
	assert.Contains(t, string(prom), "novarow_rows_encoded_total 2")
}

func TestEncode_RawFrames(t *testing.T) {
	path := writeSchema(t)

	out, err := run(t, "", "encode", "-s", path, "-f", "raw", "--frame", "--values", `[7, "z", ["a"]]`)
	require.NoError(t, err)

	payload, count, err := wire.ReadFrame(strings.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, uint16(3), count)
	assert.Equal(t, []byte{0, 0, 0, 4, 0, 0, 0, 7}, payload[:8])
}

func TestEncode_FramedFormatsAgree(t *testing.T) {
	path := writeSchema(t)
	row := `[7, "z", ["a"]]`

	raw, err := run(t, "", "encode", "-s", path, "-f", "raw", "--frame", "--values", row)
	require.NoError(t, err)
	hexOut, err := run(t, "", "encode", "-s", path, "-f", "hex", "--frame", "--values", row)
	require.NoError(t, err)
	assert.Equal(t, hex.EncodeToString([]byte(raw))+"\n", hexOut)
	assert.True(t, strings.HasPrefix(hexOut, "0000001c"+"0003"), hexOut)
}

func TestEncode_ReportsRow(t *testing.T) {
	path := writeSchema(t)

	_, err := run(t, "[1, \"a\", []]\n[1099511627776, \"a\", []]\n", "encode", "-s", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "row 2")
	assert.Contains(t, err.Error(), `column 0 "id"`)

	_, err = run(t, "", "encode", "--values", "[1]")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no schema")
}

func TestDescribe(t *testing.T) {
	out, err := run(t, "", "describe", "-s", writeSchema(t))
	require.NoError(t, err)
	assert.Contains(t, out, "NAME")
	assert.Contains(t, out, "shop.orders")
	assert.Contains(t, out, "set<text>")
}

func TestVersion(t *testing.T) {
	out, err := run(t, "", "version", "--config", "/does/not/exist.yaml")
	require.NoError(t, err)
	assert.Equal(t, "rowenc dev\n", out)
}

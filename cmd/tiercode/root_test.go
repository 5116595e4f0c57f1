package main

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/poku-e/tubtakes/internal/catalog"
)

type cli struct {
	catalogPath string
	remapPath   string
}

func newCLI(t *testing.T) cli {
	t.Helper()
	dir := t.TempDir()
	c := cli{
		catalogPath: filepath.Join(dir, "flavors.json"),
		remapPath:   filepath.Join(dir, "remap.json"),
	}
	require.NoError(t, catalog.Fallback().Save(c.catalogPath))
	return c
}

func (c cli) run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := newRootCmd(&stdout, &stderr)
	cmd.SetArgs(append([]string{"--catalog", c.catalogPath, "--remap", c.remapPath}, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestEncodeDecode(t *testing.T) {
	c := newCLI(t)

	out, _, err := c.run(t, "encode", "S=blue ice", "A=Watermelon")
	require.NoError(t, err)
	require.Contains(t, out, "code:    U0ExLEFCMiw=")
	require.Contains(t, out, "command: /update code:TT-")

	out, _, err = c.run(t, "decode", "U0ExLEFCMiw=")
	require.NoError(t, err)
	require.Contains(t, out, "S: Blue Ice\n")
	require.Contains(t, out, "A: Watermelon\n")
}

func TestCompressAcrossInvocations(t *testing.T) {
	c := newCLI(t)

	out, _, err := c.run(t, "compress", "U0ExLEFCMiw=")
	require.NoError(t, err)
	short := strings.TrimSpace(out)
	require.True(t, strings.HasPrefix(short, "TT-"))

	out, stderr, err := c.run(t, "decompress", short)
	require.NoError(t, err)
	require.Equal(t, "U0ExLEFCMiw=\n", out)
	require.Empty(t, stderr)

	_, _, err = c.run(t, "forget")
	require.NoError(t, err)

	_, stderr, err = c.run(t, "decompress", short)
	require.NoError(t, err)
	require.Contains(t, stderr, "lossy: 2 placeholders")
}

func TestSlotsAreIndependent(t *testing.T) {
	c := newCLI(t)

	out, _, err := c.run(t, "--slot", "one", "compress", "U0ExLEFCMiw=")
	require.NoError(t, err)
	short := strings.TrimSpace(out)

	_, stderr, err := c.run(t, "--slot", "two", "decode", short)
	require.NoError(t, err)
	require.Contains(t, stderr, "remap table missing")
}

func TestVersionedEncode(t *testing.T) {
	c := newCLI(t)

	out, _, err := c.run(t, "--json", "encode", "--versioned", "S=Blue Ice", "A=Watermelon")
	require.NoError(t, err)
	require.Contains(t, out, `"code": "ITFTQTEsQUIyLA=="`)

	plain, _, err := c.run(t, "--json", "encode", "S=Blue Ice", "A=Watermelon")
	require.NoError(t, err)
	require.Equal(t, jsonField(t, plain, "short"), jsonField(t, out, "short"))

	decoded, _, err := c.run(t, "decode", jsonField(t, out, "short"))
	require.NoError(t, err)
	require.Contains(t, decoded, "S: Blue Ice\n")
	require.Contains(t, decoded, "A: Watermelon\n")

	help, _, err := c.run(t, "encode", "--help")
	require.NoError(t, err)
	require.Contains(t, help, "short code unaffected")
}

func jsonField(t *testing.T, out, key string) string {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &m), out)
	v, _ := m[key].(string)
	require.NotEmpty(t, v, key)
	return v
}

func TestBadInput(t *testing.T) {
	c := newCLI(t)

	_, _, err := c.run(t, "encode", "Blue Ice")
	require.ErrorContains(t, err, "TIER=flavor")
	_, _, err = c.run(t, "encode", "X=Blue Ice")
	require.Error(t, err)
	_, _, err = c.run(t, "decode", "%%%")
	require.Error(t, err)
	_, _, err = c.run(t, "compress")
	require.Error(t, err)
}

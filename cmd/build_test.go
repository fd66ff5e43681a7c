package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunBuild(t *testing.T) {
	fileInput := []byte(`
Title: Test Case
Cells: [6, 4]
Ranks: [3, 2]
BCs:
  xmin: Inflow
  xmax: Out
`)
	file := filepath.Join(t.TempDir(), "case.yaml")
	require.NoError(t, os.WriteFile(file, fileInput, 0o644))
	cp, err := readCase(file)
	require.NoError(t, err)

	b := &Build{CaseFile: file, Rank: -1}
	b.merge(cp)
	assert.Equal(t, "local", b.Transport)

	var out bytes.Buffer
	require.NoError(t, RunBuild(context.Background(), b, cp, &out))
	for _, want := range []string{"Partition 0 Statistics", "Partition 5 Statistics",
		"Cells: 4", "Ghost faces: 4", "Ghost faces: 6", "rank 4: 3 nodes"} {
		assert.Contains(t, out.String(), want)
	}

	// A single rank needs a transport that spans processes
	b.Rank = 2
	assert.Error(t, RunBuild(context.Background(), b, cp, &out))
	b.Rank, b.Transport = -1, "carrier-pigeon"
	assert.Error(t, RunBuild(context.Background(), b, cp, &out))

	_, err = readCase("")
	assert.Error(t, err)
	_, err = readCase(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

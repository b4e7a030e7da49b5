package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand_Subcommands(t *testing.T) {
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}

	for _, want := range []string{"serve", "migrate", "ingest"} {
		assert.True(t, names[want], "missing subcommand %s", want)
	}
}

func TestIngestCommand_Flags(t *testing.T) {
	file := ingestCmd.Flags().Lookup("file")
	require.NotNil(t, file)
	assert.Equal(t, "f", file.Shorthand)

	embed := ingestCmd.Flags().Lookup("embed")
	require.NotNil(t, embed)
	assert.Equal(t, "false", embed.DefValue)

	batch := ingestCmd.Flags().Lookup("batch-size")
	require.NotNil(t, batch)
	assert.Equal(t, "100", batch.DefValue)
}

func TestMigrateCommand_StatusFlag(t *testing.T) {
	status := migrateCmd.Flags().Lookup("status")
	require.NotNil(t, status)
	assert.Equal(t, "false", status.DefValue)
}

func TestOpenInput(t *testing.T) {
	t.Run("stdin", func(t *testing.T) {
		r, closeFn, err := openInput("-")
		require.NoError(t, err)
		defer closeFn()
		assert.Equal(t, os.Stdin, r)
	})

	t.Run("file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "chunks.jsonl")
		require.NoError(t, os.WriteFile(path, []byte(`{"chunk_id":"1"}`+"\n"), 0o600))

		r, closeFn, err := openInput(path)
		require.NoError(t, err)
		defer closeFn()

		var buf bytes.Buffer
		_, err = buf.ReadFrom(r)
		require.NoError(t, err)
		assert.Equal(t, `{"chunk_id":"1"}`+"\n", buf.String())
	})

	t.Run("missing file", func(t *testing.T) {
		_, _, err := openInput(filepath.Join(t.TempDir(), "missing.jsonl"))
		assert.Error(t, err)
	})
}

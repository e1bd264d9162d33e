package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dgallion1/contractlens/internal/apperr"
	"github.com/dgallion1/contractlens/internal/config"
)

func TestRootCommand_HasSubcommands(t *testing.T) {
	names := make(map[string]bool)
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, name := range []string{"analyze", "ask", "chunks"} {
		assert.True(t, names[name], "expected subcommand %q not found", name)
	}
}

func TestRootCommand_Flags(t *testing.T) {
	for _, name := range []string{"provider", "model", "chunk-tokens", "concurrency", "log-level"} {
		assert.NotNil(t, rootCmd.PersistentFlags().Lookup(name), "missing --%s", name)
	}
	flag := chunksCmd.Flags().Lookup("preview")
	require.NotNil(t, flag)
	assert.Equal(t, "0", flag.DefValue)
}

func TestCommands_ArgCounts(t *testing.T) {
	assert.Error(t, analyzeCmd.Args(analyzeCmd, nil))
	assert.NoError(t, analyzeCmd.Args(analyzeCmd, []string{"a.pdf"}))
	assert.Error(t, askCmd.Args(askCmd, []string{"a.pdf"}))
	assert.NoError(t, askCmd.Args(askCmd, []string{"a.pdf", "Who pays?"}))
}

func newFlagCommand(t *testing.T, args ...string) *cobra.Command {
	t.Helper()
	cmd := &cobra.Command{Use: "test"}
	addOverrideFlags(cmd)
	require.NoError(t, cmd.ParseFlags(args))
	return cmd
}

func TestApplyFlags(t *testing.T) {
	c := config.Config{LLMProvider: config.ProviderOpenAI, Model: "gpt-4o-mini", ChunkTokenBudget: 4000}
	require.NoError(t, applyFlags(newFlagCommand(t, "--chunk-tokens", "500", "--model", "gpt-4o"), &c))
	assert.Equal(t, 500, c.ChunkTokenBudget)
	assert.Equal(t, "gpt-4o", c.Model)
	assert.Equal(t, config.ProviderOpenAI, c.LLMProvider)
}

func TestApplyFlags_ProviderResetsModel(t *testing.T) {
	c := config.Config{LLMProvider: config.ProviderOpenAI, Model: "gpt-4o-mini"}
	require.NoError(t, applyFlags(newFlagCommand(t, "--provider", "Anthropic"), &c))
	assert.Equal(t, config.ProviderAnthropic, c.LLMProvider)
	assert.True(t, strings.HasPrefix(c.Model, "claude"), c.Model)
}

func TestApplyFlags_RejectsBadBudget(t *testing.T) {
	c := config.Config{}
	assert.Error(t, applyFlags(newFlagCommand(t, "--chunk-tokens", "0"), &c))
}

func TestChunksCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lease.txt")
	doc := strings.Join([]string{
		"Section one. Alice pays Bob rent of one hundred dollars each month.",
		"Section two. Bob keeps the premises in good repair at all times.",
		"Section three. Either party may end this lease with notice in writing.",
	}, "\n\n")
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&bytes.Buffer{})
	rootCmd.SetArgs([]string{"chunks", path, "--chunk-tokens", "30", "--preview", "12"})
	require.NoError(t, rootCmd.Execute())

	var body struct {
		DocumentLength int `json:"document_length"`
		TokenBudget    int `json:"token_budget"`
		Chunks         []struct {
			Index int    `json:"index"`
			Text  string `json:"text"`
		} `json:"chunks"`
	}
	require.NoError(t, json.Unmarshal(out.Bytes(), &body), out.String())
	assert.Equal(t, 30, body.TokenBudget)
	assert.Equal(t, len([]rune(doc)), body.DocumentLength)
	require.Len(t, body.Chunks, 3)
	assert.Equal(t, 2, body.Chunks[2].Index)
	assert.Equal(t, "Section one....", body.Chunks[0].Text)
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, 2, exitCode(apperr.New(apperr.InvalidInput, "unsupported file type: .exe")))
	assert.Equal(t, 2, exitCode(apperr.New(apperr.ExtractionFailed, "No text could be extracted from the document")))
	assert.Equal(t, 1, exitCode(apperr.New(apperr.ModelUnavailable, "model endpoint failed for all 1 chunks")))
	assert.Equal(t, 1, exitCode(errors.New("boom")))
}

/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: commands_test.go
Description: Tests for the Mimicry commands, run in-process against temporary files.
*/

package commands_test

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kleascm/mimicry/cmd/mimicry/commands"
	"github.com/kleascm/mimicry/pkg/pipeline"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setup points the global configuration at a fresh directory
func setup(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	viper.Reset()
	t.Cleanup(viper.Reset)

	viper.Set("kb_path", filepath.Join(dir, "knowledge_base.json"))
	viper.Set("output", filepath.Join(dir, "out.csv"))
	viper.Set("records", 5)
	viper.Set("seed", 3)
	viper.Set("log.level", "error")
	return dir
}

func newCommand() (*cobra.Command, *bytes.Buffer) {
	var buf bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&buf)
	cmd.SetContext(context.Background())
	return cmd, &buf
}

func writeInput(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "accounts.csv")
	content := "account_number,branch,age\n123456789012,MAIN,30\n123456789013,WEST,45\n123456789014,MAIN,51\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestRunGenerate(t *testing.T) {
	dir := setup(t)
	input := writeInput(t, dir)
	viper.Set("report_dir", filepath.Join(dir, "reports"))

	cmd, buf := newCommand()
	require.NoError(t, commands.RunGenerate(cmd, []string{input}))

	data, err := os.ReadFile(filepath.Join(dir, "out.csv"))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 6)
	assert.Equal(t, "account_number,branch,age", lines[0])

	assert.Contains(t, buf.String(), "✅ Wrote 5 records")
	assert.Contains(t, buf.String(), "📊 Report:")

	reports, err := filepath.Glob(filepath.Join(dir, "reports", "*_accounts.json"))
	require.NoError(t, err)
	assert.Len(t, reports, 1)

	_, err = os.Stat(filepath.Join(dir, "knowledge_base.json"))
	assert.NoError(t, err)
}

func TestRunGenerateMissingInput(t *testing.T) {
	dir := setup(t)

	cmd, buf := newCommand()
	err := commands.RunGenerate(cmd, []string{filepath.Join(dir, "absent.csv")})
	require.Error(t, err)

	var inputErr *pipeline.InputError
	require.True(t, errors.As(err, &inputErr))
	assert.Equal(t, pipeline.InputMissing, inputErr.Kind)
	assert.Contains(t, buf.String(), "❌")
}

func TestRunGenerateRejectsBadConfig(t *testing.T) {
	dir := setup(t)
	viper.Set("labeler.provider", "oracle")

	cmd, _ := newCommand()
	assert.Error(t, commands.RunGenerate(cmd, []string{writeInput(t, dir)}))
}

func TestRunInferLeavesKnowledgeBaseAlone(t *testing.T) {
	dir := setup(t)
	input := writeInput(t, dir)

	cmd, buf := newCommand()
	require.NoError(t, commands.RunInfer(cmd, []string{input}))

	out := buf.String()
	assert.Contains(t, out, "🧩 account_number: integer, long_numeric_id")
	assert.Contains(t, out, "🧩 age: integer")

	_, err := os.Stat(filepath.Join(dir, "knowledge_base.json"))
	assert.True(t, os.IsNotExist(err))
}

func TestKnowledgeCommands(t *testing.T) {
	dir := setup(t)

	cmd, _ := newCommand()
	require.NoError(t, commands.RunGenerate(cmd, []string{writeInput(t, dir)}))

	cmd, buf := newCommand()
	require.NoError(t, commands.AddAlias(cmd, []string{"account_number", "acct_no"}))
	assert.Contains(t, buf.String(), "acct_no is now an alias of account_number")

	cmd, buf = newCommand()
	require.NoError(t, commands.ListKnowledge(cmd, nil))
	assert.Contains(t, buf.String(), "3 columns")
	assert.Contains(t, buf.String(), "aka acct_no")

	cmd, buf = newCommand()
	require.NoError(t, commands.ShowKnowledge(cmd, []string{"ACCT_NO"}))
	assert.Contains(t, buf.String(), "🧩 account_number")
	assert.Contains(t, buf.String(), "Unique:   true")

	cmd, _ = newCommand()
	assert.Error(t, commands.ShowKnowledge(cmd, []string{"nothing_like_it"}))
}

func TestAddAliasCreatesColumn(t *testing.T) {
	setup(t)

	cmd, buf := newCommand()
	require.NoError(t, commands.AddAlias(cmd, []string{"email", "e_mail"}))
	assert.Contains(t, buf.String(), "🆕 Creating column email")

	cmd, buf = newCommand()
	require.NoError(t, commands.ListKnowledge(cmd, nil))
	assert.Contains(t, buf.String(), "• email")
}

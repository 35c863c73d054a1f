package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/aleister1102/meshhound/internal/datastore"
	"github.com/aleister1102/meshhound/internal/models"
	"github.com/aleister1102/meshhound/internal/pipeline"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTestConfig(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "config.yaml")
	content := fmt.Sprintf(`log_config:
  log_file: ""
  log_level: error
storage_config:
  backend: sqlite
  path: %s
  lock_file: true
notification_config:
  enabled: false
`, filepath.Join(dir, "db", "meshhound.db"))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

// execute runs one CLI invocation the way main does and returns stdout.
func execute(t *testing.T, configPath string, args ...string) (string, error) {
	t.Helper()
	app := newApplication()
	defer app.shutdown()

	cmd := newRootCommand(app)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--config", configPath, "--no-color"}, args...))
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func writeDescriptors(t *testing.T, dir string, lines ...string) string {
	t.Helper()
	path := filepath.Join(dir, "descriptors.jsonl")
	require.NoError(t, os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0644))
	return path
}

func listJSON(t *testing.T, configPath string, extra ...string) []models.FileRecord {
	t.Helper()
	out, err := execute(t, configPath, append([]string{"list", "--json"}, extra...)...)
	require.NoError(t, err)
	var records []models.FileRecord
	require.NoError(t, json.Unmarshal([]byte(out), &records))
	return records
}

func TestWatch_DetectsAndPersists(t *testing.T) {
	dir := t.TempDir()
	configPath := writeTestConfig(t, dir)
	input := writeDescriptors(t, dir,
		`{"url":"https://cdn.example.com/a/model.glb?v=2","origin":"https://shop.example.com","content_length":2048,"content_type":"model/gltf-binary"}`,
		`{"url":"https://cdn.example.com/a/model.glb?v=2"}`,
		`{"url":"https://cdn.example.com/page","content_type":"text/html"}`,
		`garbage`,
		`{"url":"https://cdn.example.com/part.stl"}`,
	)

	out, err := execute(t, configPath, "watch", "--workers", "1", "--input", input)
	require.NoError(t, err)
	assert.Contains(t, out, "[GLB] https://cdn.example.com/a/model.glb?v=2 (size: 2 KB, origin: https://shop.example.com)")
	assert.Contains(t, out, "[STL] https://cdn.example.com/part.stl (size: Unknown, origin: Unknown Origin)")
	assert.Equal(t, 2, strings.Count(out, "\n"))

	// A second process sees the persisted catalog.
	records := listJSON(t, configPath)
	require.Len(t, records, 2)
	assert.False(t, records[0].DiscoveredAt.Before(records[1].DiscoveredAt), "newest first")
	assert.ElementsMatch(t,
		[]string{"https://cdn.example.com/a/model.glb?v=2", "https://cdn.example.com/part.stl"},
		[]string{records[0].URL, records[1].URL})

	filtered := listJSON(t, configPath, "--search", "MODEL")
	require.Len(t, filtered, 1)
	assert.Equal(t, models.FormatGLB, filtered[0].Format)
}

func TestWatch_DuplicateAcrossRuns(t *testing.T) {
	dir := t.TempDir()
	configPath := writeTestConfig(t, dir)
	input := writeDescriptors(t, dir, `{"url":"https://x.example.com/robot.fbx"}`)

	out, err := execute(t, configPath, "watch", "--input", input)
	require.NoError(t, err)
	assert.Contains(t, out, "robot.fbx")

	out, err = execute(t, configPath, "watch", "--input", input)
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestList_Table(t *testing.T) {
	dir := t.TempDir()
	configPath := writeTestConfig(t, dir)

	out, err := execute(t, configPath, "list")
	require.NoError(t, err)
	assert.Contains(t, out, "No 3D files found yet.")

	input := writeDescriptors(t, dir, `{"url":"https://x.example.com/models/chair.usdz","origin":"https://shop.example.com/p/1"}`)
	_, err = execute(t, configPath, "watch", "--input", input)
	require.NoError(t, err)

	out, err = execute(t, configPath, "list")
	require.NoError(t, err)
	assert.Contains(t, out, "USDZ")
	assert.Contains(t, out, "chair.usdz")
	assert.Contains(t, out, "shop.example.com")
	assert.Contains(t, out, "1 file(s)")

	out, err = execute(t, configPath, "list", "--search", "nothing-matches")
	require.NoError(t, err)
	assert.Contains(t, out, `No files match "nothing-matches".`)
}

func TestExportAndClear(t *testing.T) {
	dir := t.TempDir()
	configPath := writeTestConfig(t, dir)
	input := writeDescriptors(t, dir,
		`{"url":"https://x.example.com/a.glb","content_length":1587}`,
		`{"url":"https://x.example.com/b.ply"}`,
	)
	_, err := execute(t, configPath, "watch", "--input", input)
	require.NoError(t, err)

	parquetPath := filepath.Join(dir, "out", "catalog.parquet")
	out, err := execute(t, configPath, "export", "--out", parquetPath)
	require.NoError(t, err)
	assert.Contains(t, out, "Exported 2 file(s)")
	rows, err := datastore.ReadParquetFile(parquetPath)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	sizes := map[string]string{}
	for _, row := range rows {
		require.NotNil(t, row.Size)
		sizes[row.URL] = *row.Size
	}
	assert.Equal(t, map[string]string{
		"https://x.example.com/a.glb": "1.5 KB",
		"https://x.example.com/b.ply": "Unknown",
	}, sizes)

	jsonPath := filepath.Join(dir, "catalog.json")
	_, err = execute(t, configPath, "export", "--out", jsonPath)
	require.NoError(t, err)
	data, err := os.ReadFile(jsonPath)
	require.NoError(t, err)
	var doc exportDocument
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Len(t, doc.Files, 2)

	_, err = execute(t, configPath, "export", "--out", filepath.Join(dir, "catalog.csv"))
	assert.Error(t, err)

	out, err = execute(t, configPath, "clear")
	require.NoError(t, err)
	assert.Contains(t, out, "Cleared 2 file(s).")
	assert.Empty(t, listJSON(t, configPath))
}

func TestMissingConfigFile(t *testing.T) {
	_, err := execute(t, filepath.Join(t.TempDir(), "missing.yaml"), "list")
	assert.Error(t, err)
}

func TestDetectionFlags_OnlyChangedFlagsApply(t *testing.T) {
	var f detectionFlags
	cmd := &cobra.Command{Use: "probe"}
	f.register(cmd)

	base := pipeline.Settings{DeepScanEnabled: true}
	assert.Equal(t, base, f.settings(cmd, base))

	require.NoError(t, cmd.Flags().Set("notify", "true"))
	got := f.settings(cmd, base)
	assert.True(t, got.NotificationsEnabled)
	assert.True(t, got.DeepScanEnabled)

	require.NoError(t, cmd.Flags().Set("deep-scan", "false"))
	assert.False(t, f.settings(cmd, base).DeepScanEnabled)
}

func TestRecordRows(t *testing.T) {
	at := time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)
	rows := recordRows([]models.FileRecord{{
		URL:          "https://cdn.example.com/m/robot.glb?v=1",
		Format:       models.FormatGLB,
		Origin:       "https://shop.example.com/item",
		Size:         "2 KB",
		DiscoveredAt: at,
	}})
	require.Len(t, rows, 1)
	assert.Equal(t, []string{"GLB", "robot.glb", "shop.example.com", "2 KB", at.Local().Format(stampLayout), "https://cdn.example.com/m/robot.glb?v=1"}, rows[0])

	var buf bytes.Buffer
	table := renderTable(&buf, []string{"Format", "File"}, [][]string{{"GLB", "robot.glb"}}, []columnAlignment{alignLeft, alignLeft})
	assert.Contains(t, table, "robot.glb")
	assert.Contains(t, table, "FORMAT")
}

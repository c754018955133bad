package main

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/pay-structure/factory"
	"github.com/xuri/excelize/v2"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestTemplates(t *testing.T) {
	out, err := execute(t, "templates")
	require.NoError(t, err)

	var templates []factory.Template
	require.NoError(t, json.Unmarshal([]byte(out), &templates))
	require.Len(t, templates, 2)
	assert.Equal(t, "startup", templates[0].ID)

	out, err = execute(t, "templates", "--format", "table")
	require.NoError(t, err)
	assert.Contains(t, out, "corporate")
}

func TestGenerate_JSON(t *testing.T) {
	// GIVEN: The startup template split into five target grades
	out, err := execute(t, "generate", "--template", "startup", "--param", "5")
	require.NoError(t, err)

	// THEN: Seven jobs at two per grade give four grades
	var got generateOutput
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "ranking", string(got.Method))
	assert.Equal(t, 5, got.Param)
	require.Len(t, got.Grades, 4)
	assert.Equal(t, int64(6_302_864), got.Grades[0].Mid)
	assert.NotNil(t, got.Warnings)
}

func TestGenerate_SuggestedParam(t *testing.T) {
	out, err := execute(t, "generate", "--template", "corporate")
	require.NoError(t, err)

	var got generateOutput
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, 100, got.Param)
	assert.Len(t, got.Grades, 10)
}

func TestGenerate_BaseWage(t *testing.T) {
	out, err := execute(t, "generate", "--template", "startup", "--param", "5", "--base-wage", "7000000")
	require.NoError(t, err)

	var got generateOutput
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, int64(7_000_000), got.BaseWage)
	assert.Equal(t, int64(7_700_000), got.Grades[0].Mid)
}

func TestGenerate_Table(t *testing.T) {
	out, err := execute(t, "generate", "--template", "startup", "--param", "5", "--format", "table")
	require.NoError(t, err)

	assert.Contains(t, out, "Grade 1")
	assert.Contains(t, out, "6,302,864")
}

func TestGenerate_XLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "structure.xlsx")

	_, err := execute(t, "generate", "--template", "corporate", "--param", "100", "--format", "xlsx", "--out", path)
	require.NoError(t, err)

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()
	assert.Contains(t, f.GetSheetList(), "Structure")
	assert.Contains(t, f.GetSheetList(), "Jobs")
}

func TestGenerate_XLSXNeedsOut(t *testing.T) {
	_, err := execute(t, "generate", "--template", "corporate", "--format", "xlsx")
	assert.ErrorContains(t, err, "--out")
}

func TestPreview_Table(t *testing.T) {
	out, err := execute(t, "preview", "--template", "corporate", "--param", "100", "--format", "table")
	require.NoError(t, err)

	assert.Contains(t, out, "101 - 200")
	assert.Contains(t, out, "Driver / Messenger")
}

func TestPreview_JSONToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "preview.json")

	out, err := execute(t, "preview", "--template", "startup", "--param", "3", "--out", path)
	require.NoError(t, err)
	assert.Empty(t, out)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var got previewOutput
	require.NoError(t, json.Unmarshal(data, &got))
	require.Len(t, got.Rows, 3)
	assert.Equal(t, "Rank 5 - 7", got.Rows[0].Label)
}

func TestJobsFile(t *testing.T) {
	// GIVEN: A ranking jobs file
	jobs := writeFile(t, "jobs.yaml", `
method: ranking
jobs:
  - {title: Director, rank: 1}
  - {title: Manager, rank: 2}
  - {title: Analyst, rank: 3}
`)

	// WHEN: One grade per job
	out, err := execute(t, "generate", "--jobs", jobs, "--param", "3")
	require.NoError(t, err)

	// THEN: The most junior job sits in grade 1
	var got generateOutput
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	require.Len(t, got.Grades, 3)
	assert.Equal(t, []string{"Analyst"}, got.Grades[0].JobTitles)
	assert.Equal(t, []string{"Director"}, got.Grades[2].JobTitles)
}

func TestJobsFile_PointWithFactors(t *testing.T) {
	factors := writeFile(t, "factors.yaml", `
factors:
  - id: skill
    options:
      - {value: 1, label: Basic, score: 100}
      - {value: 2, label: Expert, score: 400}
`)
	jobs := writeFile(t, "jobs.json", `{"jobs": [
  {"title": "Junior", "factors": {"skill": 1}},
  {"title": "Senior", "factors": {"skill": 2}}
]}`)

	out, err := execute(t, "preview", "--jobs", jobs, "--factors", factors, "--param", "100")
	require.NoError(t, err)

	var got previewOutput
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "point", string(got.Method))
	require.Len(t, got.Rows, 4)
	assert.Equal(t, []string{"Junior"}, got.Rows[0].MemberTitles)
	assert.Equal(t, []string{"Senior"}, got.Rows[3].MemberTitles)
}

func TestScore(t *testing.T) {
	out, err := execute(t, "score", "--select", "education=3,experience=3")
	require.NoError(t, err)

	var got scoreOutput
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, 250, got.Score)
	assert.Empty(t, got.Unmatched)

	out, err = execute(t, "score", "--select", "education=3,experience=3", "--format", "table")
	require.NoError(t, err)
	assert.Contains(t, out, "Total")
	assert.Contains(t, out, "250")
}

func TestScore_CustomFactors(t *testing.T) {
	factors := writeFile(t, "factors.yaml", `
factors:
  - id: skill
    options:
      - {value: 1, label: Basic, score: 10}
      - {value: 2, label: Expert, score: 40}
`)
	out, err := execute(t, "score", "--factors", factors, "--select", "skill=2,education=4")
	require.NoError(t, err)

	var got scoreOutput
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, 40, got.Score)
	assert.Equal(t, []string{"education"}, got.Unmatched)
}

func TestInputErrors(t *testing.T) {
	cases := map[string][]string{
		"no input":         {"generate"},
		"both inputs":      {"generate", "--template", "startup", "--jobs", "jobs.yaml"},
		"unknown template": {"generate", "--template", "government"},
		"bad format":       {"generate", "--template", "startup", "--format", "pdf"},
		"bad method":       {"generate", "--template", "startup", "--method", "hay"},
		"bad base wage":    {"generate", "--template", "startup", "--base-wage", "-1"},
		"missing jobs":     {"generate", "--jobs", filepath.Join(t.TempDir(), "missing.yaml")},
	}
	for name, args := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := execute(t, args...)
			assert.Error(t, err)
		})
	}
}

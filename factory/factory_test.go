package factory_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/pay-structure/factory"
	"github.com/warp/pay-structure/grading"
	"github.com/warp/pay-structure/point"
)

// =============================================================================
// FACTOR FILES
// =============================================================================

const factorYAML = `
version: 4
factors:
  - id: skill
    label: Skill
    options:
      - {value: 1, label: Basic, score: 10}
      - {value: 2, label: Advanced, score: 40}
  - id: effort
    options:
      - {value: 1, label: Light, score: 5}
`

func TestParse_YAML(t *testing.T) {
	m, err := factory.NewFactorFactory().Parse([]byte(factorYAML), factory.FormatYAML)
	require.NoError(t, err)

	assert.Equal(t, 4, m.Version)
	assert.Equal(t, []string{"skill", "effort"}, m.Keys())
	assert.Equal(t, "effort", m.Factors["effort"].Label, "label defaults to id")
	assert.Equal(t, 45, point.Score(map[string]int{"skill": 2, "effort": 1}, m))
}

func TestParse_JSON(t *testing.T) {
	data := []byte(`{"factors":[{"id":"skill","label":"Skill","options":[{"value":1,"label":"Basic","score":10}]}]}`)

	m, err := factory.NewFactorFactory().Parse(data, factory.FormatJSON)
	require.NoError(t, err)
	assert.Equal(t, 1, m.Version, "missing version defaults to 1")
	assert.Equal(t, 10, point.Score(map[string]int{"skill": 1}, m))
}

func TestParse_Rejects(t *testing.T) {
	f := factory.NewFactorFactory()

	_, err := f.Parse([]byte(`factors: [{id: a}, {id: a}]`), factory.FormatYAML)
	assert.ErrorIs(t, err, point.ErrInvalidFactor)

	_, err = f.Parse([]byte(`factors: [{label: nameless}]`), factory.FormatYAML)
	assert.ErrorIs(t, err, point.ErrInvalidFactor)

	_, err = f.Parse([]byte(`factors: [{id: a, options: [{value: 1, score: -3}]}]`), factory.FormatYAML)
	assert.ErrorIs(t, err, point.ErrInvalidFactor)

	_, err = f.Parse([]byte(`{not json`), factory.FormatJSON)
	assert.Error(t, err)
}

func TestMarshal_RoundTripsDefaults(t *testing.T) {
	f := factory.NewFactorFactory()
	for _, format := range []factory.Format{factory.FormatJSON, factory.FormatYAML} {
		data, err := f.Marshal(point.DefaultFactors(), format)
		require.NoError(t, err)

		m, err := f.Parse(data, format)
		require.NoError(t, err, string(format))
		assert.Equal(t, point.DefaultFactors(), m, string(format))
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "factors.yml")
	require.NoError(t, os.WriteFile(path, []byte(factorYAML), 0o600))

	m, err := factory.NewFactorFactory().LoadFile(path)
	require.NoError(t, err)
	assert.Len(t, m.Factors, 2)

	_, err = factory.NewFactorFactory().LoadFile(filepath.Join(dir, "missing.json"))
	assert.Error(t, err)
}

func TestFormatFromPath(t *testing.T) {
	assert.Equal(t, factory.FormatJSON, factory.FormatFromPath("a/b.JSON"))
	assert.Equal(t, factory.FormatYAML, factory.FormatFromPath("a/b.yaml"))
	assert.Equal(t, factory.FormatYAML, factory.FormatFromPath("noext"))
}

// =============================================================================
// TEMPLATES
// =============================================================================

func TestTemplates(t *testing.T) {
	ids := []string{}
	for _, tpl := range factory.Templates() {
		ids = append(ids, tpl.ID)
		assert.True(t, tpl.Method.Valid(), tpl.ID)
		assert.NotEmpty(t, tpl.Jobs, tpl.ID)
	}
	assert.Equal(t, []string{"startup", "corporate"}, ids)

	_, err := factory.LookupTemplate("enterprise")
	assert.ErrorIs(t, err, factory.ErrUnknownTemplate)
}

func TestStartupTemplate_RanksJobs(t *testing.T) {
	tpl, err := factory.LookupTemplate("startup")
	require.NoError(t, err)

	jobs := tpl.JobsFor(point.DefaultFactors())
	require.Len(t, jobs, 7)
	assert.Equal(t, grading.MethodRanking, tpl.Method)
	assert.Equal(t, int64(25_000_000), tpl.Anchors.MaxMidpoint)
	assert.Equal(t, 7, jobs[6].Score)
}

func TestCorporateTemplate_ScoresJobs(t *testing.T) {
	// GIVEN: the corporate template and the default factor scheme
	tpl, err := factory.LookupTemplate("corporate")
	require.NoError(t, err)

	// WHEN: its jobs are prepared for a session
	jobs := tpl.JobsFor(point.DefaultFactors())

	// THEN: scores come from factor selections
	require.Len(t, jobs, 18)
	assert.Equal(t, 1020, jobs[0].Score, "CEO: 200 + 220 + 250 + 350")
	assert.Equal(t, 540, jobs[10].Score, "tax specialist: 150 + 160 + 180 + 50")
	assert.Equal(t, 170, jobs[17].Score, "driver: lowest level everywhere")

	// AND: the template itself is untouched
	assert.Zero(t, tpl.Jobs[0].Score)
}

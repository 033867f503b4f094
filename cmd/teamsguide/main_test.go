package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := rootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestPlanetsListsCatalog(t *testing.T) {
	out, err := execute(t, "planets")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 9)
	assert.Contains(t, lines[1], "Mercury")
	assert.Contains(t, lines[1], "57,909,050")
	assert.Contains(t, lines[8], "Neptune")
}

func TestPlanetsKeywordFilters(t *testing.T) {
	out, err := execute(t, "planets", "OUTER")
	require.NoError(t, err)
	assert.Contains(t, out, "Jupiter")
	assert.NotContains(t, out, "Earth")

	out, err = execute(t, "planets", "mars")
	require.NoError(t, err)
	assert.Contains(t, out, "Mars")
	assert.Len(t, strings.Split(strings.TrimSpace(out), "\n"), 2)
}

func TestPlanetsUnknownName(t *testing.T) {
	_, err := execute(t, "planets", "pluto")
	require.ErrorContains(t, err, "pluto")
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "teamsguide version dev\n", out)
}

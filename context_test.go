package harp

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewContext_Defaults(t *testing.T) {
	ctx := NewContext()
	assert.False(t, ctx.PropagateUncertainty)
	assert.False(t, ctx.ClimatologyUSStd76)
	assert.False(t, ctx.ClimatologyAFGL86)
	assert.Equal(t, OutOfBoundsNaN, ctx.RegridOutOfBounds)
}

func TestLoadContext_ParsesTOML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "harp.toml")
	contents := `
unit_database_path = "/tmp/units.db"
climatology_usstd76 = true
regrid_out_of_bounds = "clamp_to_edge"
propagate_uncertainty = false
`
	require.NoError(t, os.WriteFile(path, []byte(contents), 0644))

	ctx, err := LoadContext(path)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/units.db", ctx.UnitDatabasePath)
	assert.True(t, ctx.ClimatologyUSStd76)
	assert.False(t, ctx.ClimatologyAFGL86)
	assert.Equal(t, OutOfBoundsClampToEdge, ctx.RegridOutOfBounds)
	assert.False(t, ctx.PropagateUncertainty)
}

func TestLoadContext_RejectsUnknownOutOfBoundsPolicy(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "harp.toml")
	require.NoError(t, os.WriteFile(path, []byte(`regrid_out_of_bounds = "bogus"`), 0644))

	_, err := LoadContext(path)
	require.Error(t, err)
}

func TestLoadContext_RejectsMissingFile(t *testing.T) {
	_, err := LoadContext("/nonexistent/harp.toml")
	require.Error(t, err)
}

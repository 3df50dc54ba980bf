package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testCatalogYAML = `
perks:
  Haste:
    display-name: Haste
    tool: Pickaxe
    category: Common
    weight: 70
    levels:
      1: { boost-types: [xp], boost-amounts: [5] }
      2: { boost-types: [xp], boost-amounts: [10] }
  midas-touch:
    display-name: Midas Touch
    tool: pickaxe
    category: legendary
    weight: 30
    levels:
      1: { boost-types: [coins, sell-multiplier], boost-amounts: [50, 25] }
  green-thumb:
    display-name: Green Thumb
    tool: hoe
    category: common
    weight: 100
    levels:
      1: { boost-types: [essence], boost-amounts: [5] }
`

func writeCatalogFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "perks.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestNew_LoadsAndIndexesDefinitions(t *testing.T) {
	cat, err := New(writeCatalogFile(t, testCatalogYAML))
	require.NoError(t, err)

	assert.Equal(t, 3, cat.Size())
	assert.ElementsMatch(t, []string{"pickaxe", "hoe"}, cat.ToolTypes())
	assert.Len(t, cat.AllForTool("pickaxe"), 2)
	assert.Len(t, cat.AllInCategory("common"), 2)
	assert.InDelta(t, 100.0, cat.TotalWeightForTool("pickaxe"), 1e-9)
}

func TestNew_NormalizesKeysToLowercase(t *testing.T) {
	cat, err := New(writeCatalogFile(t, testCatalogYAML))
	require.NoError(t, err)

	def := cat.DefinitionFor("haste")
	require.NotNil(t, def)
	assert.Equal(t, "haste", def.Key)
	assert.Equal(t, "pickaxe", def.Tool)
	assert.Equal(t, "common", def.Category)

	// Lookups are case-insensitive too.
	assert.Same(t, def, cat.DefinitionFor("HASTE"))
	assert.Len(t, cat.AllForTool("Pickaxe"), 2)
}

func TestNew_MissingFile(t *testing.T) {
	_, err := New(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestNew_EmptyCatalog(t *testing.T) {
	_, err := New(writeCatalogFile(t, "perks: {}\n"))
	assert.Error(t, err)
}

func TestLoad_SkipsInvalidEntries(t *testing.T) {
	// Second entry is missing its levels; only the first survives.
	cat, err := New(writeCatalogFile(t, `
perks:
  haste:
    display-name: Haste
    tool: pickaxe
    category: common
    weight: 70
    levels:
      1: { boost-types: [xp], boost-amounts: [5] }
  broken:
    display-name: Broken
    tool: pickaxe
    category: common
    weight: 10
`))
	require.NoError(t, err)
	assert.Equal(t, 1, cat.Size())
	assert.Nil(t, cat.DefinitionFor("broken"))
}

func TestReload_ReplacesDefinitions(t *testing.T) {
	path := writeCatalogFile(t, testCatalogYAML)
	cat, err := New(path)
	require.NoError(t, err)
	require.Equal(t, 3, cat.Size())

	require.NoError(t, os.WriteFile(path, []byte(`
perks:
  haste:
    display-name: Haste
    tool: pickaxe
    category: common
    weight: 70
    levels:
      1: { boost-types: [xp], boost-amounts: [5] }
`), 0644))

	require.NoError(t, cat.Reload())
	assert.Equal(t, 1, cat.Size())
	assert.Nil(t, cat.DefinitionFor("midas-touch"))
}

func TestReload_KeepsOldDefinitionsOnFailure(t *testing.T) {
	path := writeCatalogFile(t, testCatalogYAML)
	cat, err := New(path)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(path, []byte("perks: {{{not yaml"), 0644))

	assert.Error(t, cat.Reload())
	assert.Equal(t, 3, cat.Size())
	assert.NotNil(t, cat.DefinitionFor("haste"))
}

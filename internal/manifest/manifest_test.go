package manifest

import (
	"testing"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/docserve/internal/config"
)

func publishedVersions() config.VersionsConfig {
	return config.VersionsConfig{
		List: []config.VersionEntry{
			{Name: "v2.0", Std: "1.24"},
			{Name: "v1.0", Std: "1.22"},
			{Name: "legacy"},
		},
	}
}

func TestNew_Order(t *testing.T) {
	set, err := New(publishedVersions())
	require.NoError(t, err)
	require.Equal(t, []string{"v2.0", "v1.0", "legacy"}, set.Names())
	require.Equal(t, 3, set.Len())
}

func TestNew_DefaultIsNewestWhenUnconfigured(t *testing.T) {
	set, err := New(publishedVersions())
	require.NoError(t, err)
	require.Equal(t, "v2.0", set.Default().Name)
}

func TestNew_ConfiguredDefault(t *testing.T) {
	cfg := publishedVersions()
	cfg.Default = "v1.0"

	set, err := New(cfg)
	require.NoError(t, err)
	require.Equal(t, "v1.0", set.Default().Name)
}

func TestNew_RejectsUnknownDefault(t *testing.T) {
	cfg := publishedVersions()
	cfg.Default = "v9.0"

	_, err := New(cfg)
	require.Error(t, err)
	require.Contains(t, err.Error(), "not in the version list")
}

func TestNew_RejectsDuplicateNames(t *testing.T) {
	cfg := config.VersionsConfig{
		List: []config.VersionEntry{
			{Name: "v1.0"},
			{Name: "v1.0"},
		},
	}

	_, err := New(cfg)
	require.Error(t, err)
	require.Contains(t, err.Error(), "duplicate version name")
}

func TestNew_RejectsEmptyList(t *testing.T) {
	_, err := New(config.VersionsConfig{})
	require.Error(t, err)
}

func TestStdFallsBackToVersionName(t *testing.T) {
	set, err := New(publishedVersions())
	require.NoError(t, err)

	legacy, ok := set.Lookup("legacy")
	require.True(t, ok)
	require.Equal(t, "legacy", legacy.Std)

	v2, ok := set.Lookup("v2.0")
	require.True(t, ok)
	require.Equal(t, "1.24", v2.Std)
}

func TestDisplayNames(t *testing.T) {
	set, err := New(config.VersionsConfig{
		List: []config.VersionEntry{
			{Name: "v2.0"},
			{Name: "latest"},
			{Name: "long-term-support"},
			{Name: "v1.0", Display: "1.0 (EOL)"},
		},
	})
	require.NoError(t, err)

	v2, _ := set.Lookup("v2.0")
	require.Equal(t, "v2.0", v2.Display)

	latest, _ := set.Lookup("latest")
	require.Equal(t, "Latest", latest.Display)

	lts, _ := set.Lookup("long-term-support")
	require.Equal(t, "Long Term Support", lts.Display)

	v1, _ := set.Lookup("v1.0")
	require.Equal(t, "1.0 (EOL)", v1.Display)
}

func TestLookup_Miss(t *testing.T) {
	set, err := New(publishedVersions())
	require.NoError(t, err)

	_, ok := set.Lookup("v3.0")
	require.False(t, ok)
}

func TestAll_ReturnsCopy(t *testing.T) {
	set, err := New(publishedVersions())
	require.NoError(t, err)

	all := set.All()
	all[0].Name = "mutated"

	require.Equal(t, "v2.0", set.Default().Name)
	require.Equal(t, "v2.0", set.All()[0].Name)
}

func TestManager_ReplaceSwapsAtomically(t *testing.T) {
	first, err := New(publishedVersions())
	require.NoError(t, err)

	mgr := NewManager(first)
	require.Same(t, first, mgr.Current())

	second, err := New(config.VersionsConfig{
		List: []config.VersionEntry{{Name: "v3.0", Std: "1.25"}},
	})
	require.NoError(t, err)

	mgr.Replace(second)
	require.Same(t, second, mgr.Current())
	require.Equal(t, "v3.0", mgr.Current().Default().Name)
}

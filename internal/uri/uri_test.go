package uri

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseGitWithFragmentSubdirectory(t *testing.T) {
	// S2 from the testable-properties scenario set.
	p, err := Parse("git+https://github.com/org/repo@main#subdirectory=behaviors/logging")
	require.NoError(t, err)

	assert.Equal(t, "git+https", p.Scheme)
	assert.Equal(t, "github.com", p.Host)
	assert.Equal(t, "/org/repo", p.Path)
	assert.Equal(t, "main", p.Ref)
	assert.Equal(t, "behaviors/logging", p.Subpath)
	assert.True(t, p.IsGit())
	assert.False(t, p.IsZip())
}

func TestParseZipMirrorsGitGrammar(t *testing.T) {
	p, err := Parse("zip+https://example.com/archives/pkg@v2#subdirectory=src")
	require.NoError(t, err)

	assert.Equal(t, "zip+https", p.Scheme)
	assert.Equal(t, "example.com", p.Host)
	assert.Equal(t, "/archives/pkg", p.Path)
	assert.Equal(t, "v2", p.Ref)
	assert.Equal(t, "src", p.Subpath)
	assert.True(t, p.IsZip())
	assert.False(t, p.IsGit())
}

func TestFragmentTakesPrecedenceOverLegacySubpath(t *testing.T) {
	// Invariant/law 2: fragment precedence.
	p, err := Parse("git+https://github.com/org/repo@main/legacy/sub#subdirectory=wins")
	require.NoError(t, err)
	assert.Equal(t, "wins", p.Subpath)
	assert.Equal(t, "main", p.Ref)
}

func TestLegacySubpathUsedWhenNoFragment(t *testing.T) {
	p, err := Parse("git+ssh://git@github.com/org/repo@v1.0/legacy/sub")
	require.NoError(t, err)
	assert.Equal(t, "legacy/sub", p.Subpath)
	assert.Equal(t, "v1.0", p.Ref)
}

func TestParseFileURI(t *testing.T) {
	p, err := Parse("file:///tmp/root#subdirectory=behaviors/recipes")
	require.NoError(t, err)
	assert.Equal(t, "file", p.Scheme)
	assert.Equal(t, "/tmp/root", p.Path)
	assert.Equal(t, "behaviors/recipes", p.Subpath)
	assert.True(t, p.IsFile())
}

func TestParseAbsoluteAndRelativePaths(t *testing.T) {
	abs, err := Parse("/abs/path/to/bundle")
	require.NoError(t, err)
	assert.True(t, abs.IsFile())
	assert.Equal(t, "", abs.Scheme)

	rel, err := Parse("./relative/bundle")
	require.NoError(t, err)
	assert.True(t, rel.IsFile())

	relUp, err := Parse("../sibling/bundle")
	require.NoError(t, err)
	assert.True(t, relUp.IsFile())
}

func TestParseHTTP(t *testing.T) {
	p, err := Parse("https://example.com/bundles/foo#subdirectory=bar")
	require.NoError(t, err)
	assert.True(t, p.IsHTTP())
	assert.Equal(t, "example.com", p.Host)
	assert.Equal(t, "/bundles/foo", p.Path)
	assert.Equal(t, "bar", p.Subpath)
}

func TestParseBarePackageName(t *testing.T) {
	p, err := Parse("foundation")
	require.NoError(t, err)
	assert.True(t, p.IsPackage())
	assert.False(t, p.IsFile())

	withRest, err := Parse("foundation/providers/anthropic")
	require.NoError(t, err)
	assert.False(t, withRest.IsPackage())
	assert.True(t, withRest.IsFile())
}

func TestUnknownSchemeFallsThroughToPackageForm(t *testing.T) {
	p, err := Parse("ftp://mirror.example.com/bundle")
	require.NoError(t, err)
	assert.Equal(t, "", p.Scheme)
	assert.False(t, p.IsGit())
	assert.False(t, p.IsZip())
	assert.False(t, p.IsHTTP())
}

// TestPredicatesAreMutuallyExclusive is invariant/law 1.
func TestPredicatesAreMutuallyExclusive(t *testing.T) {
	cases := []string{
		"git+https://github.com/org/repo@main",
		"zip+https://example.com/archive@v1",
		"file:///tmp/root",
		"/abs/path",
		"./rel/path",
		"https://example.com/bundle",
		"foundation",
		"foundation/sub",
	}

	for _, raw := range cases {
		p, err := Parse(raw)
		require.NoError(t, err, raw)

		count := 0
		for _, b := range []bool{p.IsGit(), p.IsZip(), p.IsFile(), p.IsHTTP(), p.IsPackage()} {
			if b {
				count++
			}
		}
		// No two of the five predicates hold for the same URI.
		assert.LessOrEqual(t, count, 1, "multiple exclusive predicates true for %s", raw)

		assert.Equal(t, p.IsGit(), len(p.Scheme) >= 4 && p.Scheme[:4] == "git+", raw)
		assert.Equal(t, p.IsZip(), len(p.Scheme) >= 4 && p.Scheme[:4] == "zip+", raw)
	}
}

func TestNormalizePathExpandsHome(t *testing.T) {
	p := NormalizePath("~/bundles/foo")
	assert.NotContains(t, p, "~")
}

func TestParseEmptyStringErrors(t *testing.T) {
	_, err := Parse("")
	require.Error(t, err)
}

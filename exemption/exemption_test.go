package exemption

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dupefinder/types"
)

func asset(folder, name string) types.Asset {
	return types.Asset{FolderPath: folder, FileName: name}
}

func names(assets []types.Asset) []string {
	out := []string{}
	for _, a := range assets {
		out = append(out, a.FullPath())
	}
	return out
}

func TestIsExempted(t *testing.T) {
	tests := []struct {
		name     string
		folder   string
		exempted string
		want     bool
	}{
		{"same folder", "/photos/keep", "/photos/keep", true},
		{"descendant", "/photos/keep/2019/summer", "/photos/keep", true},
		{"parent", "/photos", "/photos/keep", false},
		{"sibling with shared prefix", "/photos/keeper", "/photos/keep", false},
		{"trailing slash on exempted path", "/photos/keep/a", "/photos/keep/", true},
		{"windows separators", `C:\Photos\Keep\Old`, "C:/Photos/Keep", true},
		{"root exempts everything", "/anything/below", "/", true},
		{"drive root", "C:/Photos", `C:\`, true},
		{"relative paths", "library/keep/x", "library/keep", true},
		{"case sensitive", "/photos/Keep", "/photos/keep", false},
		{"unicode forms", "/photos/cafe\u0301/x", "/photos/caf\u00e9", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := IsExempted(asset(tt.folder, "a.jpg"), tt.exempted)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestInvalidPathArgument(t *testing.T) {
	groups := []types.DuplicateSet{{asset("/photos", "a.jpg"), asset("/photos/keep", "a.jpg")}}

	for _, p := range []string{"", "   "} {
		_, err := NotExempted(groups, p)
		assert.ErrorIs(t, err, ErrInvalidPathArgument)
	}

	_, err := NotExempted(groups, "photos/keep")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidPathArgument))
	var pathErr *PathError
	require.True(t, errors.As(err, &pathErr))
	assert.Equal(t, "photos/keep", pathErr.Path)

	_, err = IsExempted(asset("relative/dir", "a.jpg"), "/photos")
	assert.ErrorIs(t, err, ErrInvalidPathArgument)
}

func TestClassify(t *testing.T) {
	const keep = "/photos/keep"
	tests := []struct {
		name string
		set  types.DuplicateSet
		want Membership
	}{
		{"none exempted", types.DuplicateSet{asset("/photos", "a.jpg"), asset("/photos/other", "a.jpg")}, NoneExempted},
		{"all exempted", types.DuplicateSet{asset(keep, "a.jpg"), asset(keep+"/sub", "a.jpg")}, AllExempted},
		{"mixed", types.DuplicateSet{asset("/photos", "a.jpg"), asset(keep, "a.jpg")}, Mixed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Classify(tt.set, keep)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.NotEmpty(t, got.String())
		})
	}
}

func TestNotExemptedBranches(t *testing.T) {
	const keep = "/library/Exempted"
	a := asset("/library", "Image 1.jpg")
	b := asset(keep, "Image 1_copy.jpg")

	t.Run("partial exemption returns the non-exempted side", func(t *testing.T) {
		got, err := NotExempted([]types.DuplicateSet{{a, b}}, keep)
		require.NoError(t, err)
		assert.Equal(t, []types.Asset{a}, got)

		got, err = NotExempted([]types.DuplicateSet{{b, a}}, keep)
		require.NoError(t, err)
		assert.Equal(t, []types.Asset{a}, got)
	})

	t.Run("full exemption returns nothing", func(t *testing.T) {
		set := types.DuplicateSet{b, asset(keep+"/Deep", "Image 1.jpg")}
		got, err := NotExempted([]types.DuplicateSet{set}, keep)
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("no exemption returns nothing", func(t *testing.T) {
		set := types.DuplicateSet{a, asset("/library/NewFolder1", "Image 1.jpg")}
		got, err := NotExempted([]types.DuplicateSet{set}, keep)
		require.NoError(t, err)
		assert.Empty(t, got)
	})
}

func TestNotExemptedOrdering(t *testing.T) {
	const keep = "/lib/keep"
	groups := []types.DuplicateSet{
		// entirely outside
		{asset("/lib", "x.jpg"), asset("/lib/a", "x.jpg")},
		// mixed, three keepable members around an exempted one
		{asset("/lib", "1.jpg"), asset(keep, "1.jpg"), asset("/lib/b", "1.jpg"), asset("/lib/keeper", "1.jpg")},
		// entirely inside
		{asset(keep, "y.jpg"), asset(keep+"/z", "y.jpg")},
		// mixed
		{asset(keep+"/deep", "2.jpg"), asset("/lib/c", "2.jpg")},
	}

	got, err := NotExempted(groups, keep)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"/lib/1.jpg",
		"/lib/b/1.jpg",
		"/lib/keeper/1.jpg",
		"/lib/c/2.jpg",
	}, names(got))
}

func TestNotExemptedEmpty(t *testing.T) {
	got, err := NotExempted(nil, "/lib")
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestFilterRoot(t *testing.T) {
	f, err := NewFilter(`D:\Masters\`)
	require.NoError(t, err)
	assert.Equal(t, "D:/Masters", f.Root())
}

package nearver

import (
	"encoding/json"
	"testing"

	"github.com/blang/semver"
	"github.com/stretchr/testify/require"
)

func TestOptions(t *testing.T) {
	repo, err := testRepoCreate()
	require.NoError(t, err)

	reader := &fakeReader{branch: "main"}
	opts := Options{
		Repository: repo,
		Reader:     reader,
	}

	require.Equal(t, repo, opts.Repository)
	require.Equal(t, reader, opts.Reader)
	require.Nil(t, opts.Logger)
}

func TestCandidate(t *testing.T) {
	version := semver.MustParse("1.2.3-alpha.1")

	candidate := Candidate{
		Tag:      "v1.2.3-alpha.1",
		Version:  version,
		Distance: 4,
		Resolved: true,
	}

	require.Equal(t, "v1.2.3-alpha.1", candidate.Tag)
	require.Equal(t, version, candidate.Version)
	require.Equal(t, 4, candidate.Distance)
	require.True(t, candidate.Resolved)
}

func TestResultJSON(t *testing.T) {
	result := Result{
		Any:            semver.MustParse("1.1.0-beta.1"),
		Normal:         semver.MustParse("1.0.0"),
		AnyDistance:    2,
		NormalDistance: 5,
	}

	data, err := json.Marshal(result)
	require.NoError(t, err)

	var decoded map[string]interface{}
	err = json.Unmarshal(data, &decoded)
	require.NoError(t, err)

	require.Equal(t, "1.1.0-beta.1", decoded["any"])
	require.Equal(t, "1.0.0", decoded["normal"])
	require.Equal(t, float64(2), decoded["any_distance"])
	require.Equal(t, float64(5), decoded["normal_distance"])
}

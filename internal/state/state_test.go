package state

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRead_MissingFileReturnsFreshRecord(t *testing.T) {
	m := NewManager(filepath.Join(t.TempDir(), ".reelstack", "state.json"))

	rec, err := m.Read()
	require.NoError(t, err)
	assert.Equal(t, 0, rec.Serial)
	assert.NotEmpty(t, rec.Lineage)
	assert.Empty(t, rec.Resources)
}

func TestWriteRead_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".reelstack", "state.json")
	m := NewManager(path)

	rec, err := m.Read()
	require.NoError(t, err)
	rec.Stack = "movie-stats"
	rec.SetResource(Resource{Name: "movie-stats-site", Kind: "storage", Region: "us-east-1"})
	rec.SetResource(Resource{Name: "Movies", Kind: "database", Region: "us-east-1"})
	rec.Outputs["website_url"] = "http://movie-stats-site.s3-website-us-east-1.amazonaws.com"
	require.NoError(t, m.Write(rec))

	loaded, err := m.Read()
	require.NoError(t, err)
	assert.Equal(t, 1, loaded.Serial)
	assert.Equal(t, rec.Lineage, loaded.Lineage)
	assert.Len(t, loaded.Resources, 2)
	assert.Equal(t, rec.Outputs["website_url"], loaded.Outputs["website_url"])
}

func TestWrite_BumpsSerial(t *testing.T) {
	m := NewManager(filepath.Join(t.TempDir(), "state.json"))

	rec, err := m.Read()
	require.NoError(t, err)
	require.NoError(t, m.Write(rec))
	require.NoError(t, m.Write(rec))

	loaded, err := m.Read()
	require.NoError(t, err)
	assert.Equal(t, 2, loaded.Serial)
}

func TestSetResource_ReplacesExisting(t *testing.T) {
	rec := &Record{}
	rec.SetResource(Resource{Name: "Movies", Kind: "database", Region: "us-east-1"})
	rec.SetResource(Resource{Name: "Movies", Kind: "database", Region: "eu-west-1"})

	require.Len(t, rec.Resources, 1)
	assert.Equal(t, "eu-west-1", rec.Resources[0].Region)
}

func TestRemove(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	m := NewManager(path)

	rec, err := m.Read()
	require.NoError(t, err)
	require.NoError(t, m.Write(rec))
	require.NoError(t, m.Remove())

	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))

	// Removing again is a no-op.
	assert.NoError(t, m.Remove())
}

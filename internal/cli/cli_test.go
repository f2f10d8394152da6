package cli

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reelstack-io/reelstack/internal/provision"
	"github.com/reelstack-io/reelstack/internal/state"
	"github.com/reelstack-io/reelstack/providers/memory"
)

const testManifest = `
stack: movie-stats
region: us-east-1
storage:
  bucket: movie-stats-site
database:
  table: Movies
provision:
  poll_interval: 1ms
  await_timeout: 1s
  retry:
    max_attempts: 3
    initial_delay: 1ms
    jitter: false
`

func useManifest(t *testing.T, content string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "reelstack.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	orig := cfgPath
	cfgPath = path
	t.Cleanup(func() { cfgPath = orig })
}

func TestLoadConfig_StackOverride(t *testing.T) {
	useManifest(t, testManifest)

	cfg, err := loadConfig(nil)
	require.NoError(t, err)
	assert.Equal(t, "movie-stats", cfg.Stack)

	cfg, err = loadConfig([]string{"staging-stats"})
	require.NoError(t, err)
	assert.Equal(t, "staging-stats", cfg.Stack)
}

func TestStackResources_Order(t *testing.T) {
	useManifest(t, testManifest)
	cfg, err := loadConfig(nil)
	require.NoError(t, err)

	resources := stackResources(cfg)
	require.Len(t, resources, 2)
	assert.Equal(t, provision.KindStorage, resources[0].Kind)
	assert.Equal(t, provision.KindDatabase, resources[1].Kind)
}

func TestStackResources_WithCDN(t *testing.T) {
	useManifest(t, testManifest)
	cfg, err := loadConfig(nil)
	require.NoError(t, err)
	cfg.Storage.CDN = true

	resources := stackResources(cfg)
	require.Len(t, resources, 3)
	assert.Equal(t, provision.KindCDN, resources[2].Kind)
}

func TestProvisionStack(t *testing.T) {
	useManifest(t, testManifest)
	cfg, err := loadConfig(nil)
	require.NoError(t, err)

	cp := memory.New()
	statePath := filepath.Join(t.TempDir(), "state.json")
	require.NoError(t, provisionStack(context.Background(), cfg, cp, statePath))

	assert.True(t, cp.Exists("storage.movie-stats-site"))
	assert.True(t, cp.Exists("database.Movies"))

	subs := cp.SubResources("storage.movie-stats-site")
	require.Len(t, subs, 3)
	assert.Equal(t, "public-access", subs[0].Name)
	assert.Equal(t, "bucket-policy", subs[1].Name)
	assert.Equal(t, "website", subs[2].Name)
	assert.Equal(t, "index.html", subs[2].Properties["index_document"])

	rec, err := state.NewManager(statePath).Read()
	require.NoError(t, err)
	assert.Equal(t, "movie-stats", rec.Stack)
	assert.Len(t, rec.Resources, 2)
	assert.Equal(t, 1, rec.Serial)
}

func TestProvisionStack_WaitsThroughPropagation(t *testing.T) {
	useManifest(t, testManifest)
	cfg, err := loadConfig(nil)
	require.NoError(t, err)

	cp := memory.New()
	cp.ScriptStates("database.Movies",
		provision.StatePending, provision.StateInProgress, provision.StateSucceeded)

	statePath := filepath.Join(t.TempDir(), "state.json")
	require.NoError(t, provisionStack(context.Background(), cfg, cp, statePath))
	assert.GreaterOrEqual(t, cp.StateReads("database.Movies"), 3)
}

func TestProvisionStack_Rerun(t *testing.T) {
	useManifest(t, testManifest)
	cfg, err := loadConfig(nil)
	require.NoError(t, err)

	cp := memory.New()
	statePath := filepath.Join(t.TempDir(), "state.json")
	require.NoError(t, provisionStack(context.Background(), cfg, cp, statePath))
	// Second run hits already-existing resources and still succeeds.
	require.NoError(t, provisionStack(context.Background(), cfg, cp, statePath))

	rec, err := state.NewManager(statePath).Read()
	require.NoError(t, err)
	assert.Len(t, rec.Resources, 2)
	assert.Equal(t, 2, rec.Serial)
}

func TestProvisionStack_RecordsOutputs(t *testing.T) {
	useManifest(t, testManifest)
	cfg, err := loadConfig(nil)
	require.NoError(t, err)

	cp := memory.New()
	cp.SetOutput("website_url", "http://movie-stats-site.s3-website-us-east-1.amazonaws.com")
	cp.SetOutput("table", "Movies")

	statePath := filepath.Join(t.TempDir(), "state.json")
	require.NoError(t, provisionStack(context.Background(), cfg, cp, statePath))

	rec, err := state.NewManager(statePath).Read()
	require.NoError(t, err)
	require.NotEmpty(t, rec.Outputs)
	assert.Equal(t, "http://movie-stats-site.s3-website-us-east-1.amazonaws.com", rec.Outputs["website_url"])
	assert.Equal(t, "Movies", rec.Outputs["table"])
}

func TestImportDataset(t *testing.T) {
	useManifest(t, testManifest)
	cfg, err := loadConfig(nil)
	require.NoError(t, err)

	csvPath := filepath.Join(t.TempDir(), "movies.csv")
	csv := "Rank,Title,Genre,Description,Director,Actors,Year,Runtime (Minutes),Rating,Votes,Revenue (Millions),Metascore\n" +
		"1,Guardians of the Galaxy,Action,A group of criminals,James Gunn,Chris Pratt,2014,121,8.1,757074,333.13,76\n" +
		"2,Prometheus,Adventure,Explorers,Ridley Scott,Noomi Rapace,,124,7,485820,126.46,65\n"
	require.NoError(t, os.WriteFile(csvPath, []byte(csv), 0o644))
	cfg.Dataset.Path = csvPath

	store := memory.New()
	res, err := importDataset(context.Background(), cfg, store)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Total)
	assert.Equal(t, 1, res.Imported)
	assert.Equal(t, 1, res.Skipped)
	assert.Len(t, store.Movies(), 1)
}

func TestPublishSite(t *testing.T) {
	useManifest(t, testManifest)
	cfg, err := loadConfig(nil)
	require.NoError(t, err)
	cfg.Site.SearchURL = "https://search.example.com/movies"

	store := memory.New()
	require.NoError(t, publishSite(context.Background(), cfg, store))
	assert.Len(t, store.Objects(), 5)
}

func TestCommandsRegistered(t *testing.T) {
	names := map[string]bool{}
	for _, cmd := range rootCmd.Commands() {
		names[cmd.Name()] = true
	}
	for _, want := range []string{"deploy", "provision", "import", "publish", "status", "destroy", "version"} {
		assert.True(t, names[want], "missing command %s", want)
	}
}

func TestCommandsRejectExtraArgs(t *testing.T) {
	for _, cmd := range rootCmd.Commands() {
		if cmd.Name() == "version" {
			continue
		}
		require.NotNil(t, cmd.Args, "command %s has no args constraint", cmd.Name())
		assert.NoError(t, cmd.Args(cmd, []string{"one-stack"}), "command %s", cmd.Name())
		assert.Error(t, cmd.Args(cmd, []string{"one", "two"}), "command %s", cmd.Name())
	}
}

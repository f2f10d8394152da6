package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/reelstack-io/reelstack/internal/config"
	"github.com/reelstack-io/reelstack/internal/dataset"
	"github.com/reelstack-io/reelstack/internal/provision"
	"github.com/reelstack-io/reelstack/internal/site"
	"github.com/reelstack-io/reelstack/internal/state"
	"github.com/reelstack-io/reelstack/providers/aws"
)

// loadConfig loads the manifest, applying the stack-name override from the
// positional argument when present.
func loadConfig(args []string) (*config.Config, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, err
	}
	if len(args) > 0 {
		cfg.Stack = args[0]
	}
	return cfg, nil
}

// newProvider wires the AWS provider from the manifest.
func newProvider(cfg *config.Config) *aws.Provider {
	prov := aws.New(cfg.Region)
	prov.Bucket = cfg.Storage.Bucket
	prov.Table = cfg.Database.Table
	prov.BillingMode = cfg.Database.BillingMode
	return prov
}

// stackResources returns the resource descriptors for the stack, in
// provisioning order.
func stackResources(cfg *config.Config) []provision.ResourceDescriptor {
	resources := []provision.ResourceDescriptor{
		{Name: cfg.Storage.Bucket, Kind: provision.KindStorage, Region: cfg.Region},
		{Name: cfg.Database.Table, Kind: provision.KindDatabase, Region: cfg.Region},
	}
	if cfg.Storage.CDN {
		resources = append(resources, provision.ResourceDescriptor{
			Name: cfg.Storage.Bucket, Kind: provision.KindCDN, Region: cfg.Region,
		})
	}
	return resources
}

// outputProvider is implemented by control planes that expose resource
// endpoints once provisioning has run.
type outputProvider interface {
	Outputs() map[string]string
}

// provisionStack provisions every stack resource sequentially and records
// the outcome in the deployment record at statePath.
func provisionStack(ctx context.Context, cfg *config.Config, cp provision.ControlPlane, statePath string) error {
	p := provision.New(cp, cfg.Poller(), cfg.RetryPolicy())

	storageSubs := []provision.SubResource{
		{Name: "public-access", Kind: aws.SubKindPublicAccess},
		{Name: "bucket-policy", Kind: aws.SubKindBucketPolicy},
		{Name: "website", Kind: aws.SubKindWebsite, Properties: map[string]any{
			"index_document": cfg.Storage.IndexDocument,
			"error_document": cfg.Storage.ErrorDocument,
		}},
	}

	for _, res := range stackResources(cfg) {
		var subs []provision.SubResource
		if res.Kind == provision.KindStorage {
			subs = storageSubs
		}
		if err := p.Provision(ctx, res, subs...); err != nil {
			return err
		}
	}

	mgr := state.NewManager(statePath)
	rec, err := mgr.Read()
	if err != nil {
		return err
	}
	rec.Stack = cfg.Stack
	for _, res := range stackResources(cfg) {
		rec.SetResource(state.Resource{Name: res.Name, Kind: string(res.Kind), Region: res.Region})
	}
	if op, ok := cp.(outputProvider); ok {
		for key, val := range op.Outputs() {
			rec.Outputs[key] = val
		}
	}
	return mgr.Write(rec)
}

// importDataset bulk-loads the CSV dataset into the database.
func importDataset(ctx context.Context, cfg *config.Config, store dataset.MovieStore) (dataset.Result, error) {
	f, err := os.Open(cfg.Dataset.Path)
	if err != nil {
		return dataset.Result{}, fmt.Errorf("open dataset %s: %w", cfg.Dataset.Path, err)
	}
	defer f.Close()

	return dataset.NewImporter(store).Run(ctx, f)
}

// publishSite generates the frontend and uploads it to the bucket.
func publishSite(ctx context.Context, cfg *config.Config, store site.BlobStore) error {
	return site.Publish(ctx, store, site.Config{
		SearchURL: cfg.Site.SearchURL,
		SearchKey: cfg.Site.SearchKey,
	})
}

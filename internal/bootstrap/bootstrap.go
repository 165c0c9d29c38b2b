// Package bootstrap builds the storage-backed collaborators shared by the server and portalctl.
package bootstrap

import (
	"context"
	"fmt"
	"os"

	"cloud.google.com/go/firestore"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/internhub/portal-service/internal/config"
	"github.com/internhub/portal-service/internal/intern"
	"github.com/internhub/portal-service/internal/portal"
	"github.com/internhub/portal-service/internal/session"
)

// Stores groups everything selected by the DATASTORE setting.
type Stores struct {
	Source   portal.DataSource
	Interns  intern.Repository
	Sessions session.Backend
	// Firestore is nil when DATASTORE=memory.
	Firestore *firestore.Client
	Catalog   portal.Catalog
}

// NewFirestoreClient dials Firestore, honoring the emulator host from config.
func NewFirestoreClient(ctx context.Context, cfg config.Config) (*firestore.Client, error) {
	if cfg.Firestore.EmulatorHost != "" {
		if err := os.Setenv("FIRESTORE_EMULATOR_HOST", cfg.Firestore.EmulatorHost); err != nil {
			return nil, fmt.Errorf("set FIRESTORE_EMULATOR_HOST: %w", err)
		}
	}
	client, err := firestore.NewClient(ctx, cfg.GCPProjectID)
	if err != nil {
		return nil, fmt.Errorf("firestore client: %w", err)
	}
	return client, nil
}

// NewStores selects the data source, intern repository and session backend. When reg is non-nil
// the data source is instrumented. The returned cleanup closes any client that was opened.
func NewStores(ctx context.Context, cfg config.Config, reg prometheus.Registerer) (Stores, func(), error) {
	catalog, err := portal.LoadCatalog(cfg.Fixture.CatalogPath)
	if err != nil {
		return Stores{}, nil, fmt.Errorf("load catalog: %w", err)
	}

	var stores Stores
	cleanup := func() {}

	switch cfg.DataStore {
	case config.DataStoreFirestore:
		client, err := NewFirestoreClient(ctx, cfg)
		if err != nil {
			return Stores{}, nil, err
		}
		stores = Stores{
			Source:    portal.NewFirestoreSource(client, portal.FirestoreOptions{DefaultProfile: catalog.DefaultProfile}),
			Interns:   intern.NewFirestoreRepository(client),
			Sessions:  session.NewFirestoreBackend(client),
			Firestore: client,
		}
		cleanup = func() {
			_ = client.Close()
		}
	default:
		latency := portal.Latency{}
		if cfg.Fixture.SimulateLatency {
			latency = portal.DefaultLatency
		}
		stores = Stores{
			Source:   portal.NewFixtureSource(catalog, latency),
			Interns:  intern.NewMemoryRepository(),
			Sessions: session.NewMemoryBackend(),
		}
	}
	stores.Catalog = catalog

	if reg != nil {
		instrumented, err := portal.NewInstrumentedSource(stores.Source, reg)
		if err != nil {
			cleanup()
			return Stores{}, nil, fmt.Errorf("register metrics: %w", err)
		}
		stores.Source = instrumented
	}

	return stores, cleanup, nil
}

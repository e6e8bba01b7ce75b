// The indexes command registers the OnChainDB indexes and the stats view
// the gathering app queries against. Safe to re-run: indexes that
// already exist are skipped.
package main

import (
	"context"
	"os"

	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"

	"github.com/photon-storage/go-common/log"

	"github.com/tia-gather/gatherd/cmd"
	"github.com/tia-gather/gatherd/cmd/runtime/version"
	"github.com/tia-gather/gatherd/config"
	"github.com/tia-gather/gatherd/onchaindb"
)

var indexes = []onchaindb.Index{
	{
		Name:             "gatherings_id_unique",
		Collection:       "gatherings",
		FieldName:        "id",
		IndexType:        "Hash",
		UniqueConstraint: true,
		StoreValues:      true,
		Description:      "Primary key - unique gathering ID",
	},
	{
		Name:        "gatherings_creator_join",
		Collection:  "gatherings",
		FieldName:   "creator",
		IndexType:   "Hash",
		StoreValues: true,
		Description: "Find gatherings by creator wallet address",
	},
	{
		Name:        "gatherings_status_filter",
		Collection:  "gatherings",
		FieldName:   "status",
		IndexType:   "Hash",
		StoreValues: true,
		Description: "Filter by stored seed status",
	},
	{
		Name:        "gatherings_created_at_sort",
		Collection:  "gatherings",
		FieldName:   "created_at",
		IndexType:   "BTree",
		StoreValues: true,
		SortEnabled: true,
		Description: "Sort gatherings by creation date",
	},
	{
		Name:        "gatherings_ends_at_sort",
		Collection:  "gatherings",
		FieldName:   "ends_at",
		IndexType:   "BTree",
		StoreValues: true,
		SortEnabled: true,
		Description: "Sort by end date, find expired gatherings",
	},
	{
		Name:        "gatherings_goal_amount_sort",
		Collection:  "gatherings",
		FieldName:   "goal_amount",
		IndexType:   "BTree",
		StoreValues: true,
		SortEnabled: true,
		Description: "Sort by goal amount",
	},
	{
		Name:             "contributions_id_unique",
		Collection:       "contributions",
		FieldName:        "id",
		IndexType:        "Hash",
		UniqueConstraint: true,
		StoreValues:      true,
		Description:      "Primary key - unique contribution ID",
	},
	{
		Name:        "contributions_gathering_id_join",
		Collection:  "contributions",
		FieldName:   "gathering_id",
		IndexType:   "Hash",
		StoreValues: true,
		Description: "JOIN field for gathering -> contributions relationship",
	},
	{
		Name:        "contributions_contributor_join",
		Collection:  "contributions",
		FieldName:   "contributor",
		IndexType:   "Hash",
		StoreValues: true,
		Description: "Find contributions by contributor wallet address",
	},
	{
		Name:        "contributions_amount_sort",
		Collection:  "contributions",
		FieldName:   "amount",
		IndexType:   "BTree",
		StoreValues: true,
		SortEnabled: true,
		Description: "Sort contributions by amount",
	},
	{
		Name:        "contributions_created_at_sort",
		Collection:  "contributions",
		FieldName:   "created_at",
		IndexType:   "BTree",
		StoreValues: true,
		SortEnabled: true,
		Description: "Sort contributions by time",
	},
	{
		Name:             "contributions_tx_hash_unique",
		Collection:       "contributions",
		FieldName:        "payment_tx_hash",
		IndexType:        "Hash",
		UniqueConstraint: true,
		StoreValues:      true,
		Description:      "Track payment transactions (prevent duplicates)",
	},
	{
		Name:             "images_blob_id_unique",
		Collection:       "images",
		FieldName:        "blob_id",
		IndexType:        "Hash",
		UniqueConstraint: true,
		StoreValues:      true,
		Description:      "Unique blob identifier for retrieval",
	},
	{
		Name:        "images_content_type_filter",
		Collection:  "images",
		FieldName:   "content_type",
		IndexType:   "BTree",
		StoreValues: true,
		Description: "Filter by MIME type",
	},
	{
		Name:        "images_size_bytes_sort",
		Collection:  "images",
		FieldName:   "size_bytes",
		IndexType:   "BTree",
		StoreValues: true,
		SortEnabled: true,
		Description: "File size for validation and sorting",
	},
	{
		Name:        "images_uploaded_at_sort",
		Collection:  "images",
		FieldName:   "uploaded_at",
		IndexType:   "BTree",
		StoreValues: true,
		SortEnabled: true,
		Description: "Timestamp for sorting by upload date",
	},
	{
		Name:        "images_gathering_id_join",
		Collection:  "images",
		FieldName:   "gathering_id",
		IndexType:   "Hash",
		StoreValues: true,
		Description: "Link images to gatherings",
	},
}

// statsView joins contributions onto gatherings server side. The API
// never reads it; it exists for ad-hoc inspection of the same aggregates
// the service derives per request.
var statsView = onchaindb.View{
	Name:              "gatherings_with_stats",
	SourceCollections: []string{"gatherings", "contributions"},
	Query: map[string]interface{}{
		"find":   map[string]interface{}{},
		"select": map[string]interface{}{},
		"contributions": map[string]interface{}{
			"resolve": map[string]interface{}{"gathering_id": "$data.id"},
			"model":   "contributions",
			"many":    true,
		},
	},
	GroupBy: []string{"id"},
	Aggregate: map[string]interface{}{
		"current_amount":    map[string]interface{}{"$sum": "contributions.amount"},
		"contributor_count": map[string]interface{}{"$count": "contributions"},
	},
}

func main() {
	app := cli.App{
		Name:    "gatherd-indexes",
		Usage:   "register onchaindb indexes for the money gathering app",
		Action:  exec,
		Version: version.Get(),
		Flags: []cli.Flag{
			cmd.ConfigPathFlag,
			cmd.VerbosityFlag,
			cmd.LogFormatFlag,
		},
	}

	app.Before = func(ctx *cli.Context) error {
		logLvl, err := log.ParseLevel(ctx.String(cmd.VerbosityFlag.Name))
		if err != nil {
			return err
		}

		logFmt, err := log.ParseFormat(ctx.String(cmd.LogFormatFlag.Name))
		if err != nil {
			return err
		}

		return log.Init(logLvl, logFmt)
	}

	if err := app.Run(os.Args); err != nil {
		log.Error("running indexes application failed", "error", err)
		os.Exit(1)
	}
}

func exec(cliCtx *cli.Context) error {
	cfg := &config.Config{}
	if err := config.Load(
		cliCtx.String(cmd.ConfigPathFlag.Name),
		cfg,
	); err != nil {
		log.Fatal("fail on read config", "error", err)
	}

	client := onchaindb.NewClient(cfg.OnChainDB)
	ctx := context.Background()

	created, skipped, failed := 0, 0, 0
	for _, idx := range indexes {
		err := client.CreateIndex(ctx, idx)
		switch {
		case err == nil:
			log.Info("index created", "name", idx.Name)
			created++
		case errors.Is(err, onchaindb.ErrAlreadyExists):
			log.Info("index already exists", "name", idx.Name)
			skipped++
		default:
			log.Error("fail on create index", "name", idx.Name, "error", err)
			failed++
		}
	}

	if err := client.CreateView(ctx, statsView); err != nil {
		if errors.Is(err, onchaindb.ErrAlreadyExists) {
			log.Info("view already exists", "name", statsView.Name)
		} else {
			log.Error("fail on create view",
				"name", statsView.Name,
				"error", err,
			)
			failed++
		}
	} else {
		log.Info("view created", "name", statsView.Name)
	}

	log.Info("index setup complete",
		"created", created,
		"skipped", skipped,
		"failed", failed,
	)

	if failed > 0 {
		return errors.Errorf("%d index creations failed", failed)
	}

	return nil
}

package main

import (
	"context"
	"encoding/json"

	"github.com/BenjaminAmos/GooeysQuests/internal/persistence/indexdb"
	"github.com/BenjaminAmos/GooeysQuests/internal/sim/catalogs"
	"github.com/BenjaminAmos/GooeysQuests/internal/sim/tuning"
)

// recordCatalogs stores the digests of the configs this process serves, so
// clipboard history can be matched to the palette it was copied under.
func recordCatalogs(ctx context.Context, idx *indexdb.SQLiteIndex, cats *catalogs.Catalogs, tune tuning.Tuning) error {
	var rows []indexdb.CatalogRow
	add := func(name, digest string, v any) error {
		b, err := json.Marshal(v)
		if err != nil {
			return err
		}
		rows = append(rows, indexdb.CatalogRow{Name: name, Digest: digest, JSON: b})
		return nil
	}
	if err := add("block_palette", cats.Blocks.PaletteDigest, cats.Blocks.Palette); err != nil {
		return err
	}
	if err := add("item_palette", cats.Items.PaletteDigest, cats.Items.Palette); err != nil {
		return err
	}
	if err := add("blueprints", cats.Blueprints.Digest, cats.Blueprints.ByID); err != nil {
		return err
	}
	if err := add("tuning", tune.Digest, tune); err != nil {
		return err
	}
	return idx.UpsertCatalogs(ctx, rows)
}

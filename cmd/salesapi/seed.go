package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"
	"gorm.io/gorm"

	"github.com/tbourn/go-sales-api/internal/domain"
	"github.com/tbourn/go-sales-api/internal/repo"
)

// seedFile is the document accepted by "salesapi seed":
//
//	{"stores": [{"id": 1, "address": "..."}], "items": [{"id": 1, "name": "...", "price": 1.5}]}
type seedFile struct {
	Stores []domain.Store `json:"stores"`
	Items  []domain.Item  `json:"items"`
}

func seedCommand() *cli.Command {
	return &cli.Command{
		Name:  "seed",
		Usage: "upsert stores and items from a JSON file",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "file",
				Aliases:  []string{"f"},
				Usage:    "path to the seed document",
				Required: true,
			},
		},
		Action: func(c *cli.Context) error {
			f, err := os.Open(c.String("file"))
			if err != nil {
				return err
			}
			defer f.Close()

			doc, err := readSeed(f)
			if err != nil {
				return err
			}

			cfg := configFrom(c)
			db, closeDB, err := openDB(cfg.Database, false)
			if err != nil {
				return err
			}
			defer closeDB()
			if err := applySeed(c.Context, db, doc); err != nil {
				return err
			}
			log.Info().Int("stores", len(doc.Stores)).Int("items", len(doc.Items)).Msg("seed applied")
			return nil
		},
	}
}

// readSeed decodes and validates a seed document. Unknown fields are
// rejected so typos do not silently drop data.
func readSeed(r io.Reader) (seedFile, error) {
	var doc seedFile
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&doc); err != nil {
		return doc, fmt.Errorf("decode seed: %w", err)
	}

	var errs []error
	for i, s := range doc.Stores {
		if s.ID <= 0 {
			errs = append(errs, fmt.Errorf("stores[%d]: id must be > 0", i))
		}
	}
	for i, it := range doc.Items {
		if it.ID <= 0 {
			errs = append(errs, fmt.Errorf("items[%d]: id must be > 0", i))
		}
		if it.Price < 0 {
			errs = append(errs, fmt.Errorf("items[%d]: price must be >= 0", i))
		}
	}
	return doc, errors.Join(errs...)
}

// applySeed upserts the document in a single transaction.
func applySeed(ctx context.Context, db *gorm.DB, doc seedFile) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := repo.UpsertStores(ctx, tx, doc.Stores); err != nil {
			return fmt.Errorf("upsert stores: %w", err)
		}
		if err := repo.UpsertItems(ctx, tx, doc.Items); err != nil {
			return fmt.Errorf("upsert items: %w", err)
		}
		return nil
	})
}

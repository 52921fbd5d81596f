package recipes

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
	"go.etcd.io/bbolt"
)

var recipesBucket = []byte("recipes")

// BoltPersister keeps one JSON document per recipe in a BoltDB bucket, keyed
// by zero-padded position so iteration preserves store order.
type BoltPersister struct {
	path string
}

// NewBoltPersister returns a persister backed by the database at path.
func NewBoltPersister(path string) *BoltPersister {
	return &BoltPersister{path: path}
}

// withDB opens the database for the duration of a single operation so other
// processes can use the file in between.
func (p *BoltPersister) withDB(operation func(*bbolt.DB) error) error {
	db, err := bbolt.Open(p.path, 0o600, &bbolt.Options{
		Timeout: 2 * time.Second,
	})
	if err != nil {
		return errors.Wrapf(err, "failed to open database %s", p.path)
	}
	defer db.Close()

	return operation(db)
}

// Load reads every recipe in key order. A missing database yields no recipes.
func (p *BoltPersister) Load(_ context.Context) ([]Recipe, error) {
	if _, err := os.Stat(p.path); os.IsNotExist(err) {
		return nil, nil
	}

	var recipes []Recipe
	err := p.withDB(func(db *bbolt.DB) error {
		return db.View(func(tx *bbolt.Tx) error {
			bucket := tx.Bucket(recipesBucket)
			if bucket == nil {
				return nil
			}
			return bucket.ForEach(func(k, v []byte) error {
				var recipe Recipe
				if err := json.Unmarshal(v, &recipe); err != nil {
					return errors.Wrapf(err, "failed to decode recipe %s", k)
				}
				recipes = append(recipes, recipe)
				return nil
			})
		})
	})
	if err != nil {
		return nil, err
	}
	return recipes, nil
}

// Save replaces the bucket contents with recipes in one transaction.
func (p *BoltPersister) Save(_ context.Context, recipes []Recipe) error {
	if dir := filepath.Dir(p.path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.Wrapf(err, "failed to create directory %s", dir)
		}
	}

	return p.withDB(func(db *bbolt.DB) error {
		return db.Update(func(tx *bbolt.Tx) error {
			if tx.Bucket(recipesBucket) != nil {
				if err := tx.DeleteBucket(recipesBucket); err != nil {
					return errors.Wrap(err, "failed to clear recipes bucket")
				}
			}
			bucket, err := tx.CreateBucket(recipesBucket)
			if err != nil {
				return errors.Wrap(err, "failed to create recipes bucket")
			}

			for i, recipe := range recipes {
				data, err := json.Marshal(recipe)
				if err != nil {
					return errors.Wrapf(err, "failed to marshal recipe %q", recipe.Name)
				}
				if err := bucket.Put(recipeKey(i), data); err != nil {
					return errors.Wrapf(err, "failed to store recipe %q", recipe.Name)
				}
			}
			return nil
		})
	})
}

func recipeKey(i int) []byte {
	return []byte(fmt.Sprintf("%08d", i))
}

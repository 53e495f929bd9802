// Package persist reads and writes the store's three collections as
// independent JSON documents under the data directory. A missing or
// unparseable document degrades to an empty collection so a fresh or
// damaged installation still starts.
package persist

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"storekeeper/m/domain"
	"storekeeper/m/pkg/logger"
)

const (
	inventoryFile = "inventory.json"
	salesFile     = "sales.json"
	purchasesFile = "purchases.json"
)

// Gateway persists the store collections under a single directory.
type Gateway struct {
	dir string
}

// NewGateway creates a gateway rooted at dir.
func NewGateway(dir string) *Gateway {
	return &Gateway{dir: dir}
}

// Load reads all three documents. Each failure is logged and replaced with
// an empty collection; Load itself never fails.
func (g *Gateway) Load() (map[string]domain.Product, []domain.Sale, []domain.Purchase) {
	inventory := make(map[string]domain.Product)
	if !loadJSON(filepath.Join(g.dir, inventoryFile), &inventory) {
		inventory = make(map[string]domain.Product)
	}

	var sales []domain.Sale
	if !loadJSON(filepath.Join(g.dir, salesFile), &sales) {
		sales = nil
	}

	var purchases []domain.Purchase
	if !loadJSON(filepath.Join(g.dir, purchasesFile), &purchases) {
		purchases = nil
	}

	return inventory, sales, purchases
}

// Save rewrites all three documents in full. The first failure is returned
// so the shell can warn the operator; files already written stay written.
func (g *Gateway) Save(inventory map[string]domain.Product, sales []domain.Sale, purchases []domain.Purchase) error {
	if err := os.MkdirAll(g.dir, 0o755); err != nil {
		return fmt.Errorf("unable to create data directory %s: %w", g.dir, err)
	}
	if err := saveJSON(filepath.Join(g.dir, inventoryFile), inventory); err != nil {
		return err
	}
	if err := saveJSON(filepath.Join(g.dir, salesFile), sales); err != nil {
		return err
	}
	return saveJSON(filepath.Join(g.dir, purchasesFile), purchases)
}

// loadJSON reports false when dest may hold partial data and must be reset.
func loadJSON(path string, dest any) bool {
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			logger.Warn().Err(err).Str("file", path).Msg("unable to read data file, starting empty")
		}
		return true
	}
	if err := json.Unmarshal(data, dest); err != nil {
		logger.Warn().Err(err).Str("file", path).Msg("unable to parse data file, starting empty")
		return false
	}
	return true
}

func saveJSON(path string, value any) error {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return fmt.Errorf("unable to encode %s: %w", filepath.Base(path), err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("unable to write %s: %w", filepath.Base(path), err)
	}
	return nil
}

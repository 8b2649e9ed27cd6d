// Package seed loads starter balances and categories from a YAML file.
package seed

import (
	"context"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"ledger/internal/logger"
	"ledger/internal/models"
	"ledger/internal/money"
	"ledger/internal/services"
)

// BalanceSeed describes one balance to open.
type BalanceSeed struct {
	Type    string `yaml:"type"`
	Initial string `yaml:"initial"`
}

// CategorySeed describes one category. Parent names a category listed
// earlier in the same file.
type CategorySeed struct {
	Name   string `yaml:"name"`
	Type   string `yaml:"type"`
	Parent string `yaml:"parent"`
}

// File is the seed document.
type File struct {
	User       string         `yaml:"user"`
	Balances   []BalanceSeed  `yaml:"balances"`
	Categories []CategorySeed `yaml:"categories"`
}

// Result counts what Apply created.
type Result struct {
	Balances   int
	Categories int
}

// Load decodes and validates a seed document.
func Load(r io.Reader) (*File, error) {
	var f File
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("failed to decode seed file: %w", err)
	}
	if err := f.validate(); err != nil {
		return nil, err
	}
	return &f, nil
}

func (f *File) validate() error {
	if f.User == "" {
		return fmt.Errorf("seed file: user is required")
	}
	for i, b := range f.Balances {
		if b.Initial == "" {
			continue
		}
		if _, err := money.Parse(b.Initial); err != nil {
			return fmt.Errorf("seed file: balances[%d].initial %q: %w", i, b.Initial, err)
		}
	}
	seen := make(map[string]bool, len(f.Categories))
	for i, c := range f.Categories {
		if c.Name == "" {
			return fmt.Errorf("seed file: categories[%d].name is required", i)
		}
		if !models.CategoryType(c.Type).Valid() {
			return fmt.Errorf("seed file: categories[%d].type %q is not Income or Expense", i, c.Type)
		}
		if c.Parent != "" && !seen[c.Parent] {
			return fmt.Errorf("seed file: categories[%d].parent %q must be listed before it", i, c.Parent)
		}
		seen[c.Name] = true
	}
	return nil
}

// Apply creates the file's balances and categories for its user through the
// services, so every record passes the same checks as an API request.
func Apply(ctx context.Context, f *File, balances services.BalanceServicer, categories services.CategoryServicer) (Result, error) {
	log := logger.Get()
	var res Result

	for _, b := range f.Balances {
		var initial int64
		if b.Initial != "" {
			initial, _ = money.Parse(b.Initial)
		}
		balance, err := balances.CreateBalance(ctx, f.User, b.Type, initial)
		if err != nil {
			return res, fmt.Errorf("failed to create balance %q: %w", b.Type, err)
		}
		log.Infow("Seeded balance", "user_id", f.User, "balance_id", balance.ID, "initial", money.Format(initial))
		res.Balances++
	}

	ids := make(map[string]uint, len(f.Categories))
	for _, c := range f.Categories {
		var parentID *uint
		if c.Parent != "" {
			id := ids[c.Parent]
			parentID = &id
		}
		category, err := categories.CreateCategory(ctx, f.User, c.Name, models.CategoryType(c.Type), parentID)
		if err != nil {
			return res, fmt.Errorf("failed to create category %q: %w", c.Name, err)
		}
		ids[c.Name] = category.ID
		log.Infow("Seeded category", "user_id", f.User, "category_id", category.ID, "name", c.Name)
		res.Categories++
	}

	return res, nil
}

package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/JamesCliffordSpratt/macros-sub001/macro"
	"github.com/JamesCliffordSpratt/macros-sub001/parser"
)

// FoodDir is a FoodStore over a folder of markdown notes, one per food. The
// note's base name is the canonical food name; its nutrition values live in
// YAML frontmatter:
//
//	---
//	serving_size: 100g
//	calories: 52
//	protein: 0.3
//	fat: 0.2
//	carbs: 14
//	---
type FoodDir struct {
	dir    string
	logger *log.Logger
}

// NewFoodDir creates a food store over the given folder.
func NewFoodDir(dir string, logger *log.Logger) *FoodDir {
	if logger == nil {
		logger = log.Default()
	}
	return &FoodDir{dir: dir, logger: logger}
}

type frontmatter struct {
	ServingSize string  `yaml:"serving_size"`
	Calories    float64 `yaml:"calories"`
	Protein     float64 `yaml:"protein"`
	Fat         float64 `yaml:"fat"`
	Carbs       float64 `yaml:"carbs"`
}

// List reads every food note in the folder. Notes that cannot be read or
// parsed are logged and skipped; a single malformed note never hides the
// rest of the database.
func (f *FoodDir) List(ctx context.Context) ([]*macro.Record, error) {
	entries, err := os.ReadDir(f.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read food folder %s: %w", f.dir, err)
	}

	var records []*macro.Record
	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ".md") {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		rec, err := f.readRecord(entry.Name())
		if err != nil {
			f.logger.Warn("skipping malformed food note", "file", entry.Name(), "err", err)
			continue
		}
		records = append(records, rec)
	}

	slices.SortFunc(records, func(a, b *macro.Record) int {
		return strings.Compare(a.Name, b.Name)
	})
	return records, nil
}

// FindByName returns every record whose name contains the query,
// case-insensitively.
func (f *FoodDir) FindByName(ctx context.Context, query string) ([]*macro.Record, error) {
	records, err := f.List(ctx)
	if err != nil {
		return nil, err
	}

	lower := strings.ToLower(query)
	var out []*macro.Record
	for _, rec := range records {
		if strings.Contains(strings.ToLower(rec.Name), lower) {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (f *FoodDir) readRecord(name string) (*macro.Record, error) {
	data, err := os.ReadFile(filepath.Join(f.dir, name))
	if err != nil {
		return nil, err
	}

	raw, err := extractFrontmatter(string(data))
	if err != nil {
		return nil, err
	}

	var fm frontmatter
	if err := yaml.Unmarshal([]byte(raw), &fm); err != nil {
		return nil, fmt.Errorf("invalid frontmatter: %w", err)
	}

	rec := &macro.Record{
		Name:     strings.TrimSuffix(name, filepath.Ext(name)),
		Calories: decimal.NewFromFloat(fm.Calories),
		Protein:  decimal.NewFromFloat(fm.Protein),
		Fat:      decimal.NewFromFloat(fm.Fat),
		Carbs:    decimal.NewFromFloat(fm.Carbs),
	}
	if grams := parser.Quantity(fm.ServingSize); grams != nil {
		rec.ServingGrams = *grams
	}
	return rec, nil
}

// extractFrontmatter returns the YAML between the leading --- fences.
func extractFrontmatter(content string) (string, error) {
	rest, ok := strings.CutPrefix(content, "---\n")
	if !ok {
		return "", fmt.Errorf("no frontmatter")
	}
	body, _, ok := strings.Cut(rest, "\n---")
	if !ok {
		return "", fmt.Errorf("unterminated frontmatter")
	}
	return body, nil
}

package metrics

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"gopkg.in/yaml.v3"

	"smell-bot/src/config"
	"smell-bot/src/model"
	"smell-bot/src/service/codeapi"
	"smell-bot/src/util"
)

// Provider loads source units from a metrics dump or from CodeAPI.
// Results are validated once and cached per source.
type Provider struct {
	ingestion  config.IngestionConfig
	client     *codeapi.Client
	exclusions *util.ExclusionMatcher
	cache      *expirable.LRU[string, []model.SourceUnit]
}

// NewProvider creates a provider. client may be nil when only files are read.
func NewProvider(cfg *config.Config, client *codeapi.Client, exclusions *util.ExclusionMatcher) *Provider {
	if exclusions == nil {
		exclusions = util.NewExclusionMatcher(config.ExclusionsConfig{})
	}
	p := &Provider{
		ingestion:  cfg.Ingestion,
		client:     client,
		exclusions: exclusions,
	}
	if cfg.Cache.Enabled {
		p.cache = expirable.NewLRU[string, []model.SourceUnit](max(cfg.Cache.MaxEntries, 1), nil, cfg.Cache.TTL)
	}
	return p
}

// Source describes the configured ingestion source
func (p *Provider) Source() string {
	if p.ingestion.Source == "codeapi" {
		return "codeapi:" + p.ingestion.Project
	}
	return "file:" + p.ingestion.Path
}

// SourceUnits returns the units of the configured source
func (p *Provider) SourceUnits(ctx context.Context) ([]model.SourceUnit, error) {
	switch p.ingestion.Source {
	case "codeapi":
		return p.ProjectUnits(ctx, p.ingestion.Project)
	case "file", "":
		return p.FileUnits(p.ingestion.Path)
	default:
		return nil, fmt.Errorf("unknown ingestion source %q", p.ingestion.Source)
	}
}

// ProjectUnits fetches the units of a project from CodeAPI
func (p *Provider) ProjectUnits(ctx context.Context, project string) ([]model.SourceUnit, error) {
	if p.client == nil {
		return nil, fmt.Errorf("codeapi source requested but no client configured")
	}
	key := "codeapi:" + project
	return p.cached(key, func() (*codeapi.UnitsResponse, error) {
		return p.client.GetSourceUnits(ctx, project, nil)
	})
}

// FileUnits reads a JSON or YAML metrics dump. The file's modification time
// is part of the cache key, so edits are picked up before the TTL expires.
func (p *Provider) FileUnits(path string) ([]model.SourceUnit, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("reading metrics file: %w", err)
	}
	key := fmt.Sprintf("file:%s@%d", path, info.ModTime().UnixNano())
	return p.cached(key, func() (*codeapi.UnitsResponse, error) {
		return ReadDump(path)
	})
}

func (p *Provider) cached(key string, fetch func() (*codeapi.UnitsResponse, error)) ([]model.SourceUnit, error) {
	if p.cache != nil {
		if units, ok := p.cache.Get(key); ok {
			util.Debug("Returning %d cached source units for %s", len(units), key)
			return units, nil
		}
	}

	resp, err := fetch()
	if err != nil {
		util.Error("Failed to load source units from %s: %v", key, err)
		return nil, err
	}

	units := p.convertAll(resp.Units)
	util.Info("Loaded %d source units from %s", len(units), key)
	if p.cache != nil {
		p.cache.Add(key, units)
	}
	return units, nil
}

func (p *Provider) convertAll(records []codeapi.UnitRecord) []model.SourceUnit {
	var (
		units    []model.SourceUnit
		excluded int
		failed   int
	)
	for _, rec := range records {
		if rec.Path != "" && p.exclusions.ExcludesFile(rec.Path) {
			excluded++
			continue
		}
		unit := ToSourceUnit(rec)
		if !unit.ParseOK {
			failed++
			util.Debug("Parse failure in %s: %s", unit.Path, unit.ParseError)
		}
		units = append(units, unit)
	}
	util.Debug("Ingestion: %d units (excluded: %d, parse failures: %d)", len(units), excluded, failed)
	return units
}

// ReadDump decodes a metrics dump: JSON for .json files, YAML otherwise.
// A document holding a single unit record instead of a units list is accepted.
func ReadDump(path string) (*codeapi.UnitsResponse, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading metrics file: %w", err)
	}

	unmarshal := yaml.Unmarshal
	if strings.EqualFold(filepath.Ext(path), ".json") {
		unmarshal = json.Unmarshal
	}

	var resp codeapi.UnitsResponse
	if err := unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("parsing metrics file %s: %w", filepath.Base(path), err)
	}
	if resp.Units == nil {
		var single codeapi.UnitRecord
		if err := unmarshal(data, &single); err == nil && single.Path != "" {
			resp.Units = []codeapi.UnitRecord{single}
		}
	}
	return &resp, nil
}

// CacheLen returns the number of cached sources
func (p *Provider) CacheLen() int {
	if p.cache == nil {
		return 0
	}
	return p.cache.Len()
}

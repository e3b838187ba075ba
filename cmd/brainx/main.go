package main

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/w-h-a/brainx/config"
	"github.com/w-h-a/brainx/embedder"
	googleembedder "github.com/w-h-a/brainx/embedder/google"
	openaiembedder "github.com/w-h-a/brainx/embedder/openai"
	"github.com/w-h-a/brainx/inject"
	"github.com/w-h-a/brainx/memory"
	"github.com/w-h-a/brainx/memory/providers/store"
	"github.com/w-h-a/brainx/memory/providers/store/postgres"
	"github.com/w-h-a/brainx/server"
	httpserver "github.com/w-h-a/brainx/server/http"
)

var cli struct {
	Add     AddCmd     `cmd:"" help:"Store a memory."`
	Search  SearchCmd  `cmd:"" help:"Search memories by semantic similarity."`
	Inject  InjectCmd  `cmd:"" help:"Format matching memories into a prompt-ready block."`
	Health  HealthCmd  `cmd:"" help:"Check storage connectivity, pgvector, and schema."`
	Migrate MigrateCmd `cmd:"" help:"Create the pgvector extension, table, and indexes."`
	Cleanup CleanupCmd `cmd:"" help:"Demote low-signal memories."`
	Dedup   DedupCmd   `cmd:"" help:"Mark duplicate memories as superseded."`
	Import  ImportCmd  `cmd:"" help:"Import a markdown file as chunked memories."`
	Serve   ServeCmd   `cmd:"" help:"Run the HTTP server."`
}

type app struct {
	cfg   config.Config
	store store.Store
}

func (a *app) embedder() (embedder.Embedder, error) {
	key, err := a.cfg.EmbedderAPIKey()
	if err != nil {
		return nil, err
	}

	switch a.cfg.EmbedderProvider {
	case config.ProviderGoogle:
		return googleembedder.NewEmbedder(
			embedder.WithApiKey(key),
			embedder.WithModel(a.cfg.EmbeddingModel),
		), nil
	default:
		return openaiembedder.NewEmbedder(
			embedder.WithApiKey(key),
			embedder.WithModel(a.cfg.EmbeddingModel),
			embedder.WithDimensions(a.cfg.EmbeddingDimensions),
		), nil
	}
}

func (a *app) manager(withEmbedder bool) (*memory.Manager, error) {
	opts := []memory.Option{
		memory.WithStore(a.store),
		memory.WithDimensions(a.cfg.EmbeddingDimensions),
		memory.WithInjectionPolicy(a.cfg.InjectDefaultTier),
	}

	if withEmbedder {
		e, err := a.embedder()
		if err != nil {
			return nil, err
		}
		opts = append(opts, memory.WithEmbedder(e))
	}

	return memory.NewManager(opts...), nil
}

func printJSON(v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(b))
	return nil
}

func splitTags(raw string) []string {
	var tags []string
	for _, t := range strings.Split(raw, ",") {
		t = strings.TrimSpace(t)
		if len(t) > 0 {
			tags = append(tags, t)
		}
	}
	return tags
}

type AddCmd struct {
	Content    string `help:"Memory text." required:""`
	Type       string `help:"Category label." default:"note"`
	Context    string `help:"Scoping label, e.g. a project identifier."`
	Tier       string `help:"Retention tier: hot, warm, cold, or archive." default:"warm"`
	Importance int    `help:"Conventional 1-10." default:"5"`
	Tags       string `help:"Comma-separated tags."`
	Agent      string `help:"Writer label."`
	Id         string `help:"Explicit id for idempotent re-import."`
}

func (c *AddCmd) Run(a *app) error {
	m, err := a.manager(true)
	if err != nil {
		return err
	}

	agent := c.Agent
	if len(agent) == 0 {
		agent = a.cfg.Agent
	}

	rec, err := m.StoreMemory(context.Background(), store.Record{
		Id:         c.Id,
		Type:       c.Type,
		Content:    c.Content,
		Context:    c.Context,
		Tier:       c.Tier,
		Agent:      agent,
		Importance: c.Importance,
		Tags:       splitTags(c.Tags),
	})
	if err != nil {
		return err
	}

	fmt.Println(`{"ok":true,"id":"` + rec.Id + `"}`)
	return nil
}

type SearchCmd struct {
	Query         string  `help:"Query text." required:""`
	Limit         int     `help:"Max results." default:"10"`
	MinSimilarity float64 `help:"Cosine similarity floor, applied after the limit." default:"0.3"`
	MinImportance int     `help:"Inclusive importance floor." default:"0"`
	Tier          string  `help:"Exact-match tier filter."`
	Context       string  `help:"Exact-match context filter."`
}

func (c *SearchCmd) Run(a *app) error {
	m, err := a.manager(true)
	if err != nil {
		return err
	}

	results, err := m.Search(
		context.Background(),
		c.Query,
		memory.WithLimit(c.Limit),
		memory.WithMinSimilarity(c.MinSimilarity),
		memory.WithMinImportance(c.MinImportance),
		memory.WithTier(c.Tier),
		memory.WithContextFilter(c.Context),
	)
	if err != nil {
		return err
	}
	if results == nil {
		results = []store.ScoredRecord{}
	}

	return printJSON(map[string]any{"ok": true, "results": results})
}

type InjectCmd struct {
	Query           string `help:"Query text." required:""`
	Limit           int    `help:"Max results." default:"10"`
	MinImportance   int    `help:"Inclusive importance floor." default:"0"`
	Tier            string `help:"Explicit tier; bypasses the hot/warm merge."`
	Context         string `help:"Exact-match context filter."`
	MaxCharsPerItem int    `help:"Per-item character budget; 0 uses the configured default."`
	MaxLinesPerItem int    `help:"Per-item line budget; 0 uses the configured default."`
}

func (c *InjectCmd) Run(a *app) error {
	m, err := a.manager(true)
	if err != nil {
		return err
	}

	results, err := m.SearchForInjection(
		context.Background(),
		c.Query,
		memory.WithInjectLimit(c.Limit),
		memory.WithInjectMinImportance(c.MinImportance),
		memory.WithInjectTier(c.Tier),
		memory.WithInjectContextFilter(c.Context),
	)
	if err != nil {
		return err
	}

	maxChars := c.MaxCharsPerItem
	if maxChars <= 0 {
		maxChars = a.cfg.InjectMaxCharsPerItem
	}
	maxLines := c.MaxLinesPerItem
	if maxLines <= 0 {
		maxLines = a.cfg.InjectMaxLinesPerItem
	}

	fmt.Print(inject.Format(
		results,
		inject.WithMaxCharsPerItem(maxChars),
		inject.WithMaxLinesPerItem(maxLines),
	))
	return nil
}

type HealthCmd struct{}

func (c *HealthCmd) Run(a *app) error {
	m, err := a.manager(false)
	if err != nil {
		return err
	}

	if err := m.Health(context.Background()); err != nil {
		return err
	}

	fmt.Println(`{"ok":true}`)
	return nil
}

type MigrateCmd struct{}

func (c *MigrateCmd) Run(a *app) error {
	initializer, ok := a.store.(store.SchemaInitializer)
	if !ok {
		return fmt.Errorf("store does not support schema creation")
	}

	if err := initializer.CreateSchema(context.Background()); err != nil {
		return err
	}

	fmt.Println(`{"ok":true}`)
	return nil
}

type CleanupCmd struct {
	MaxLen        int    `help:"Demote records with content at or below this length; 0 uses the configured default."`
	Tier          string `help:"Target tier; empty uses the configured default."`
	MaxImportance int    `help:"Importance cap; 0 uses the configured default."`
}

func (c *CleanupCmd) Run(a *app) error {
	m, err := a.manager(false)
	if err != nil {
		return err
	}

	maxLen := c.MaxLen
	if maxLen <= 0 {
		maxLen = a.cfg.CleanupMaxLen
	}
	tier := c.Tier
	if len(tier) == 0 {
		tier = a.cfg.CleanupTier
	}
	maxImportance := c.MaxImportance
	if maxImportance <= 0 {
		maxImportance = a.cfg.CleanupMaxImportance
	}

	updated, err := m.CleanupLowSignal(
		context.Background(),
		memory.WithCleanupMaxContentLen(maxLen),
		memory.WithCleanupTier(tier),
		memory.WithCleanupMaxImportance(maxImportance),
	)
	if err != nil {
		return err
	}

	return printJSON(map[string]any{
		"ok":            true,
		"updated":       updated,
		"maxLen":        maxLen,
		"newTier":       tier,
		"maxImportance": maxImportance,
	})
}

type DedupCmd struct {
	DryRun bool `help:"Report supersession pairs without writing."`
}

func (c *DedupCmd) Run(a *app) error {
	m, err := a.manager(false)
	if err != nil {
		return err
	}

	if c.DryRun || a.cfg.DedupDryRun {
		pairs, err := m.DedupPreview(context.Background())
		if err != nil {
			return err
		}

		sample := pairs
		if len(sample) > 10 {
			sample = sample[:10]
		}

		return printJSON(map[string]any{
			"ok":     true,
			"dryRun": true,
			"pairs":  len(pairs),
			"sample": sample,
		})
	}

	superseded, err := m.Dedup(context.Background())
	if err != nil {
		return err
	}

	return printJSON(map[string]any{"ok": true, "superseded": superseded})
}

type ImportCmd struct {
	File       string `help:"Markdown file to import." required:"" type:"existingfile"`
	Context    string `help:"Context label for every chunk."`
	Tier       string `help:"Retention tier for every chunk." default:"hot"`
	Importance int    `help:"Importance for every chunk." default:"9"`
	Agent      string `help:"Writer label." default:"system"`
	Tags       string `help:"Comma-separated tags." default:"import:memory-md"`
	MaxChars   int    `help:"Chunk size budget." default:"5000"`
}

func (c *ImportCmd) Run(a *app) error {
	m, err := a.manager(true)
	if err != nil {
		return err
	}

	raw, err := os.ReadFile(c.File)
	if err != nil {
		return err
	}

	chunks := memory.SplitChunks(string(raw), c.MaxChars)
	slog.Info("importing chunks", "file", c.File, "chunks", len(chunks))

	for i, chunk := range chunks {
		// Deterministic id so re-importing the same file upserts in place.
		sum := sha1.Sum([]byte(fmt.Sprintf("%s|%d|%s", c.File, i+1, chunk)))
		id := "memmd_" + hex.EncodeToString(sum[:])[:16]

		if _, err := m.StoreMemory(context.Background(), store.Record{
			Id:         id,
			Type:       "note",
			Content:    chunk,
			Context:    c.Context,
			Tier:       c.Tier,
			Agent:      c.Agent,
			Importance: c.Importance,
			Tags:       splitTags(c.Tags),
		}); err != nil {
			return fmt.Errorf("chunk %d/%d: %w", i+1, len(chunks), err)
		}

		slog.Info("imported chunk", "n", i+1, "of", len(chunks), "chars", len(chunk))
	}

	return printJSON(map[string]any{"ok": true, "imported": len(chunks)})
}

type ServeCmd struct {
	Address string `help:"Listen address." default:":4000"`
}

func (c *ServeCmd) Run(a *app) error {
	m, err := a.manager(true)
	if err != nil {
		return err
	}

	budgets := inject.NewOptions(
		inject.WithMaxCharsPerItem(a.cfg.InjectMaxCharsPerItem),
		inject.WithMaxLinesPerItem(a.cfg.InjectMaxLinesPerItem),
	)

	srv := httpserver.NewServer(m, budgets, server.WithAddress(c.Address))

	return srv.Run()
}

func main() {
	ctx := kong.Parse(
		&cli,
		kong.Name("brainx"),
		kong.Description("Long-term semantic memory for agent sessions."),
	)

	cfg, err := config.FromEnv()
	ctx.FatalIfErrorf(err)

	st := postgres.NewStore(
		store.WithLocation(cfg.DatabaseURL),
		store.WithDimensions(cfg.EmbeddingDimensions),
	)

	err = ctx.Run(&app{cfg: cfg, store: st})
	ctx.FatalIfErrorf(err)
}

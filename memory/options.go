package memory

import (
	"context"

	"github.com/w-h-a/brainx/embedder"
	"github.com/w-h-a/brainx/memory/providers/store"
)

const (
	// InjectPolicyWarmOrHot merges a hot search and a warm search when no
	// explicit tier filter is given on the injection path.
	InjectPolicyWarmOrHot = "warm_or_hot"

	// DefaultInjectionFloor is the similarity floor used by the injection
	// path. Lower than the search default on purpose: injection favors
	// recall for prompt context over strict precision.
	DefaultInjectionFloor = 0.15
)

type Option func(*Options)

type Options struct {
	Store           store.Store
	Embedder        embedder.Embedder
	Weights         store.Weights
	Dimensions      int
	InjectionPolicy string
	Context         context.Context
}

func WithStore(s store.Store) Option {
	return func(o *Options) {
		o.Store = s
	}
}

func WithEmbedder(e embedder.Embedder) Option {
	return func(o *Options) {
		o.Embedder = e
	}
}

func WithWeights(w store.Weights) Option {
	return func(o *Options) {
		o.Weights = w
	}
}

func WithDimensions(dims int) Option {
	return func(o *Options) {
		o.Dimensions = dims
	}
}

func WithInjectionPolicy(policy string) Option {
	return func(o *Options) {
		o.InjectionPolicy = policy
	}
}

func NewOptions(opts ...Option) Options {
	options := Options{
		Weights:         store.DefaultWeights(),
		InjectionPolicy: InjectPolicyWarmOrHot,
		Context:         context.Background(),
	}
	for _, opt := range opts {
		opt(&options)
	}
	return options
}

type SearchOption func(*SearchOptions)

type SearchOptions struct {
	Limit         int
	MinSimilarity float64
	MinImportance int
	Tier          string
	Context       string
}

func WithLimit(limit int) SearchOption {
	return func(o *SearchOptions) {
		o.Limit = limit
	}
}

func WithMinSimilarity(min float64) SearchOption {
	return func(o *SearchOptions) {
		o.MinSimilarity = min
	}
}

func WithMinImportance(min int) SearchOption {
	return func(o *SearchOptions) {
		o.MinImportance = min
	}
}

func WithTier(tier string) SearchOption {
	return func(o *SearchOptions) {
		o.Tier = tier
	}
}

func WithContextFilter(c string) SearchOption {
	return func(o *SearchOptions) {
		o.Context = c
	}
}

func NewSearchOptions(opts ...SearchOption) SearchOptions {
	options := SearchOptions{
		Limit:         10,
		MinSimilarity: 0.3,
		MinImportance: 0,
	}
	for _, opt := range opts {
		opt(&options)
	}
	return options
}

type InjectOption func(*InjectOptions)

type InjectOptions struct {
	Limit         int
	MinImportance int
	Tier          string
	Context       string
}

func WithInjectLimit(limit int) InjectOption {
	return func(o *InjectOptions) {
		o.Limit = limit
	}
}

func WithInjectMinImportance(min int) InjectOption {
	return func(o *InjectOptions) {
		o.MinImportance = min
	}
}

func WithInjectTier(tier string) InjectOption {
	return func(o *InjectOptions) {
		o.Tier = tier
	}
}

func WithInjectContextFilter(c string) InjectOption {
	return func(o *InjectOptions) {
		o.Context = c
	}
}

func NewInjectOptions(opts ...InjectOption) InjectOptions {
	options := InjectOptions{
		Limit:         10,
		MinImportance: 0,
	}
	for _, opt := range opts {
		opt(&options)
	}
	return options
}

type CleanupOption func(*CleanupOptions)

type CleanupOptions struct {
	MaxContentLen int
	Tier          string
	MaxImportance int
	Types         []string
}

func WithCleanupMaxContentLen(n int) CleanupOption {
	return func(o *CleanupOptions) {
		o.MaxContentLen = n
	}
}

func WithCleanupTier(tier string) CleanupOption {
	return func(o *CleanupOptions) {
		o.Tier = tier
	}
}

func WithCleanupMaxImportance(n int) CleanupOption {
	return func(o *CleanupOptions) {
		o.MaxImportance = n
	}
}

func WithCleanupTypes(types []string) CleanupOption {
	return func(o *CleanupOptions) {
		o.Types = types
	}
}

func NewCleanupOptions(opts ...CleanupOption) CleanupOptions {
	options := CleanupOptions{
		MaxContentLen: 12,
		Tier:          store.TierCold,
		MaxImportance: 2,
		Types:         []string{"decision", "action", "learning", "note"},
	}
	for _, opt := range opts {
		opt(&options)
	}
	return options
}

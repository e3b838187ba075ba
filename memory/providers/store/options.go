package store

import "context"

type Option func(*Options)

type Options struct {
	Location   string
	Dimensions int
	Context    context.Context
}

func WithLocation(loc string) Option {
	return func(o *Options) {
		o.Location = loc
	}
}

func WithDimensions(dims int) Option {
	return func(o *Options) {
		o.Dimensions = dims
	}
}

func NewOptions(opts ...Option) Options {
	options := Options{
		Dimensions: 1536,
		Context:    context.Background(),
	}
	for _, opt := range opts {
		opt(&options)
	}
	return options
}

// SearchParams constrain a single Search call. MinImportance is an
// inclusive floor; empty Tier/Context mean no filter. The similarity
// floor is deliberately absent: it is a post-filter owned by the caller,
// applied after the LIMIT has already cut the candidate set.
type SearchParams struct {
	Limit         int
	MinImportance int
	Tier          string
	Context       string
	Weights       Weights
}

// DemotionParams configure the low-signal demotion pass.
type DemotionParams struct {
	MaxContentLen int
	Tier          string
	MaxImportance int
	Types         []string
}

// DuplicatePair reports one supersession edge within a fingerprint group.
type DuplicatePair struct {
	Fingerprint  string `json:"fp"`
	KeepId       string `json:"keep_id"`
	SupersededId string `json:"sup_id"`
}

package core

// Build validates cfg and assembles a Pool[R] from it. The top-level New
// is a thin functional-options layer over this function. KeyedPool builds
// its per-key pools with newPool directly, after BuildKeyed has validated
// the shared Config once.
func Build[R any](cfg Config, factory ResourceFactory[R]) (*Pool[R], error) {
	if factory == nil {
		panic("opool: factory must not be nil")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return newPool(cfg, factory), nil
}

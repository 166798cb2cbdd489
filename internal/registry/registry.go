package registry

import (
	"errors"
	"fmt"

	"CryptoCast/internal/domain/models"
)

var (
	ErrUnknownAsset     = errors.New("unknown asset")
	ErrUnknownTimeframe = errors.New("unknown timeframe")
)

const (
	DefaultHost        = "localhost"
	DefaultAssetID     = "bitcoin"
	DefaultTimeframeID = "7d"
)

// Each asset is served by its own prediction service on a fixed port.
var defaultAssets = []models.Asset{
	{ID: "bitcoin", Name: "Bitcoin (BTC)", Symbol: "BTC", Endpoint: models.Endpoint{Port: 5474}},
	{ID: "ethereum", Name: "Ethereum (ETH)", Symbol: "ETH", Endpoint: models.Endpoint{Port: 5475}},
	{ID: "solana", Name: "Solana (SOL)", Symbol: "SOL", Endpoint: models.Endpoint{Port: 5472}},
	{ID: "doge", Name: "Dogecoin (DOGE)", Symbol: "DOGE", Endpoint: models.Endpoint{Port: 5470}},
	{ID: "shiba", Name: "Shiba Inu (SHIB)", Symbol: "SHIB", Endpoint: models.Endpoint{Port: 5471}},
	{ID: "tone", Name: "Tone (TON)", Symbol: "TON", Endpoint: models.Endpoint{Port: 5473}},
	{ID: "usdt", Name: "Tether (USDT)", Symbol: "USDT", Endpoint: models.Endpoint{Port: 5476}},
	{ID: "xrp", Name: "XRP (XRP)", Symbol: "XRP", Endpoint: models.Endpoint{Port: 5477}},
}

var defaultTimeframes = []models.Timeframe{
	{ID: "1d", Label: "1 Day", Days: 1},
	{ID: "7d", Label: "7 Days", Days: 7},
	{ID: "30d", Label: "30 Days", Days: 30},
	{ID: "90d", Label: "90 Days", Days: 90},
}

// Registry is the read-only catalog of assets and timeframes.
type Registry struct {
	assets       []models.Asset
	assetIdx     map[string]int
	timeframes   []models.Timeframe
	timeframeIdx map[string]int
}

// Option configures New.
type Option func(*options)

type options struct {
	host       string
	assets     []models.Asset
	timeframes []models.Timeframe
}

// WithHost sets the host used by assets that do not declare one.
func WithHost(host string) Option {
	return func(o *options) {
		if host != "" {
			o.host = host
		}
	}
}

// WithAssets replaces the built-in asset list.
func WithAssets(assets []models.Asset) Option {
	return func(o *options) { o.assets = assets }
}

// WithTimeframes replaces the built-in timeframe list.
func WithTimeframes(tfs []models.Timeframe) Option {
	return func(o *options) { o.timeframes = tfs }
}

// New builds a registry, rejecting empty or duplicate ids and invalid ports.
func New(opts ...Option) (*Registry, error) {
	o := &options{
		host:       DefaultHost,
		assets:     defaultAssets,
		timeframes: defaultTimeframes,
	}
	for _, opt := range opts {
		opt(o)
	}

	r := &Registry{
		assets:       make([]models.Asset, 0, len(o.assets)),
		assetIdx:     make(map[string]int, len(o.assets)),
		timeframes:   make([]models.Timeframe, 0, len(o.timeframes)),
		timeframeIdx: make(map[string]int, len(o.timeframes)),
	}

	for _, a := range o.assets {
		if a.ID == "" {
			return nil, fmt.Errorf("asset id is required")
		}
		if _, dup := r.assetIdx[a.ID]; dup {
			return nil, fmt.Errorf("duplicate asset id %q", a.ID)
		}
		if a.Endpoint.Port <= 0 || a.Endpoint.Port > 65535 {
			return nil, fmt.Errorf("asset %q: invalid port %d", a.ID, a.Endpoint.Port)
		}
		if a.Endpoint.Host == "" {
			a.Endpoint.Host = o.host
		}
		r.assetIdx[a.ID] = len(r.assets)
		r.assets = append(r.assets, a)
	}

	for _, tf := range o.timeframes {
		if tf.ID == "" {
			return nil, fmt.Errorf("timeframe id is required")
		}
		if _, dup := r.timeframeIdx[tf.ID]; dup {
			return nil, fmt.Errorf("duplicate timeframe id %q", tf.ID)
		}
		r.timeframeIdx[tf.ID] = len(r.timeframes)
		r.timeframes = append(r.timeframes, tf)
	}

	return r, nil
}

// Assets returns the assets in display order.
func (r *Registry) Assets() []models.Asset {
	out := make([]models.Asset, len(r.assets))
	copy(out, r.assets)
	return out
}

// Timeframes returns the timeframes in display order.
func (r *Registry) Timeframes() []models.Timeframe {
	out := make([]models.Timeframe, len(r.timeframes))
	copy(out, r.timeframes)
	return out
}

// Asset looks up an asset by id.
func (r *Registry) Asset(id string) (models.Asset, error) {
	i, ok := r.assetIdx[id]
	if !ok {
		return models.Asset{}, fmt.Errorf("%w %q", ErrUnknownAsset, id)
	}
	return r.assets[i], nil
}

// Timeframe looks up a timeframe by id.
func (r *Registry) Timeframe(id string) (models.Timeframe, error) {
	i, ok := r.timeframeIdx[id]
	if !ok {
		return models.Timeframe{}, fmt.Errorf("%w %q", ErrUnknownTimeframe, id)
	}
	return r.timeframes[i], nil
}

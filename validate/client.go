package validate

import (
	"context"
	"net/http"

	"github.com/atvirokodosprendimai/validate-json-schema/internal/adapters/filecache"
	"github.com/atvirokodosprendimai/validate-json-schema/internal/core/usecase"
)

// Client resolves schemas through a cache rooted at an explicit directory.
// Schemas it compiles may $ref other http(s) schemas; those go through the
// same cache.
type Client struct {
	cache   *filecache.Store
	factory *usecase.ValidatorFactory
}

type ClientOption func(*clientConfig)

type clientConfig struct {
	httpClient *http.Client
	userAgent  string
}

// WithHTTPClient replaces the default client (30 second timeout).
func WithHTTPClient(c *http.Client) ClientOption {
	return func(cfg *clientConfig) { cfg.httpClient = c }
}

func WithUserAgent(userAgent string) ClientOption {
	return func(cfg *clientConfig) { cfg.userAgent = userAgent }
}

func NewClient(cacheDir string, opts ...ClientOption) *Client {
	var cfg clientConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	store := filecache.New(cacheDir)
	fetcher := usecase.NewSchemaFetcher(store,
		usecase.WithHTTPClient(cfg.httpClient),
		usecase.WithUserAgent(cfg.userAgent),
	)
	return &Client{cache: store, factory: usecase.NewValidatorFactory(fetcher)}
}

func (c *Client) CacheDir() string {
	return c.cache.Dir()
}

func (c *Client) New(ctx context.Context, schemaText string) (*Validator, error) {
	return c.factory.FromSchemaText(ctx, schemaText)
}

func (c *Client) FromFile(ctx context.Context, path string) (*Validator, error) {
	return c.factory.FromFile(ctx, path)
}

func (c *Client) FromURL(ctx context.Context, url string) (*Validator, error) {
	return c.factory.FromURL(ctx, url)
}

func (c *Client) FromInput(ctx context.Context, input string) (*Validator, error) {
	return c.factory.FromInput(ctx, input)
}

func (c *Client) ValidateFile(ctx context.Context, filePath, schemaInput string) error {
	v, err := c.factory.FromInput(ctx, schemaInput)
	if err != nil {
		return err
	}
	return v.ValidateFile(filePath)
}

// ClearCache removes the whole cache directory. Clearing a missing directory
// succeeds.
func (c *Client) ClearCache() error {
	return c.cache.Clear()
}

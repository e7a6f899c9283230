package catalog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/charlesng35/dbnav/pkg/logger"
	"github.com/charlesng35/dbnav/pkg/metrics"
)

const (
	modeCatalog     = "catalog"
	modeEnumeration = "enumeration"
)

// Backend is a source of catalog identifiers. Implementations must satisfy
// Lister, Enumerator or both.
type Backend interface {
	Name() string
}

// Client is the query collaborator used by the navigation tree. It sends a
// query straight to a Lister when the backend has a metadata catalog and
// otherwise filters and paginates an Enumerator's output itself.
type Client struct {
	backend Backend
	log     *zap.Logger
}

// NewClient wraps a backend.
func NewClient(backend Backend) (*Client, error) {
	if backend == nil {
		return nil, errors.New("catalog client: backend is required")
	}
	_, lists := backend.(Lister)
	_, enumerates := backend.(Enumerator)
	if !lists && !enumerates {
		return nil, fmt.Errorf("catalog client: backend %s neither lists nor enumerates", backend.Name())
	}
	return &Client{
		backend: backend,
		log:     logger.WithModule("catalog").With(zap.String("backend", backend.Name())),
	}, nil
}

// Backend returns the wrapped backend name.
func (c *Client) Backend() string {
	return c.backend.Name()
}

// ListChildren returns the identifiers selected by q. Ungrouped enumeration
// keeps the order the backend produced.
func (c *Client) ListChildren(ctx context.Context, q Query) ([]string, error) {
	start := time.Now()
	names, mode, err := c.list(ctx, q)
	c.observe("list", q, mode, start, err)
	if err != nil {
		return nil, err
	}
	return names, nil
}

// CountChildren returns how many items (or prefixes, when q is grouped) match q.
func (c *Client) CountChildren(ctx context.Context, q Query) (int, error) {
	start := time.Now()
	count, mode, err := c.count(ctx, q)
	c.observe("count", q, mode, start, err)
	if err != nil {
		return 0, err
	}
	return count, nil
}

// Ping checks the backend when it supports health checks.
func (c *Client) Ping(ctx context.Context) error {
	pinger, ok := c.backend.(Pinger)
	if !ok {
		return nil
	}
	if err := pinger.Ping(ctx); err != nil {
		return unavailable(err)
	}
	return nil
}

func (c *Client) list(ctx context.Context, q Query) ([]string, string, error) {
	if lister, ok := c.serverSide(q); ok {
		names, err := lister.List(ctx, q)
		if err != nil {
			return nil, modeCatalog, unavailable(err)
		}
		return names, modeCatalog, nil
	}

	filtered, err := c.enumerate(ctx, q)
	if err != nil {
		return nil, modeEnumeration, err
	}
	if q.Grouped() {
		prefixes, expansion := PagePrefixes(filtered, q.Separators, q.Offset, q.Limit)
		return Expand(prefixes, expansion), modeEnumeration, nil
	}
	return Paginate(filtered, q.Offset, q.Limit), modeEnumeration, nil
}

func (c *Client) count(ctx context.Context, q Query) (int, string, error) {
	if lister, ok := c.serverSide(q); ok {
		count, err := lister.Count(ctx, q)
		if err != nil {
			return 0, modeCatalog, unavailable(err)
		}
		return count, modeCatalog, nil
	}

	filtered, err := c.enumerate(ctx, q)
	if err != nil {
		return 0, modeEnumeration, err
	}
	if q.Grouped() {
		return CountPrefixes(filtered, q.Separators), modeEnumeration, nil
	}
	return len(filtered), modeEnumeration, nil
}

// serverSide selects the Lister unless the query groups on several
// separators, which the catalog SQL cannot express.
func (c *Client) serverSide(q Query) (Lister, bool) {
	lister, ok := c.backend.(Lister)
	if !ok {
		return nil, false
	}
	separators := 0
	for _, sep := range q.Separators {
		if sep != "" {
			separators++
		}
	}
	if separators > 1 {
		if _, canEnumerate := c.backend.(Enumerator); canEnumerate {
			return nil, false
		}
	}
	return lister, true
}

func (c *Client) enumerate(ctx context.Context, q Query) ([]string, error) {
	enumerator, ok := c.backend.(Enumerator)
	if !ok {
		return nil, fmt.Errorf("%w: backend %s cannot enumerate %s", ErrDataUnavailable, c.backend.Name(), q.Kind)
	}
	matcher, err := q.Filter.Compile()
	if err != nil {
		return nil, unavailable(err)
	}
	names, err := enumerator.Enumerate(ctx, q.Kind, q.Scope)
	if err != nil {
		return nil, unavailable(err)
	}
	return matcher.Apply(names), nil
}

func (c *Client) observe(operation string, q Query, mode string, start time.Time, err error) {
	result := "success"
	if err != nil {
		result = "error"
		if errors.Is(err, ErrUnsupportedKind) {
			result = "unsupported"
		}
	}
	metrics.CatalogQueries.WithLabelValues(operation, string(q.Kind), mode, result).Inc()
	metrics.CatalogQueryDuration.WithLabelValues(operation, mode).Observe(time.Since(start).Seconds())

	if err != nil && result == "error" {
		c.log.Debug("catalog query failed",
			zap.String("operation", operation),
			zap.String("kind", string(q.Kind)),
			zap.String("mode", mode),
			zap.Error(err),
		)
	}
}

func unavailable(err error) error {
	if errors.Is(err, ErrDataUnavailable) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrDataUnavailable, err)
}

package scraping

import (
	"context"
	"database/sql"
	"time"

	"github.com/longboxhq/longbox/pkg/errcodes"
	"github.com/longboxhq/longbox/pkg/models"
	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/logger"
	"github.com/uptrace/bun"
)

// Service routes scraping queries to the adaptor registered for a source,
// with the shared response cache in front of every remote call. Source
// properties (API keys and the like) are loaded per call from the database
// so configuration changes take effect without a restart.
type Service struct {
	db            *bun.DB
	cache         *Cache
	registry      *Registry
	log           logger.Logger
	scrapeTimeout time.Duration
}

func NewService(db *bun.DB, cache *Cache, registry *Registry, scrapeTimeout time.Duration) *Service {
	return &Service{
		db:            db,
		cache:         cache,
		registry:      registry,
		log:           logger.New(),
		scrapeTimeout: scrapeTimeout,
	}
}

// Cache exposes the underlying response cache for administrative clearing.
func (svc *Service) Cache() *Cache {
	return svc.cache
}

// GetVolumes returns candidate volumes for a series name from the given
// source, caching the response under the adaptor's volume key.
func (svc *Service) GetVolumes(ctx context.Context, source string, seriesName string, maxRecords int, skipCache bool) ([]*Volume, error) {
	adaptor, err := svc.adaptorFor(source)
	if err != nil {
		return nil, err
	}

	key := adaptor.VolumeKey(seriesName)
	if !skipCache {
		if value, ok := svc.cache.Get(key); ok {
			if volumes, ok := value.([]*Volume); ok {
				return volumes, nil
			}
		}
	}

	properties, err := svc.sourceProperties(ctx, source)
	if err != nil {
		return nil, err
	}

	cctx, cancel := svc.callContext(ctx)
	defer cancel()

	volumes, err := adaptor.GetVolumes(cctx, seriesName, maxRecords, properties)
	if err != nil {
		return nil, err
	}

	svc.cache.Put(key, volumes)
	return volumes, nil
}

// GetIssue returns the issue for a (volume id, issue number) pair, or nil
// when the source has no match. A nil result is cached too, so repeated
// lookups for an absent issue don't keep hitting the remote source.
func (svc *Service) GetIssue(ctx context.Context, source string, volumeID int, issueNumber string, skipCache bool) (*Issue, error) {
	adaptor, err := svc.adaptorFor(source)
	if err != nil {
		return nil, err
	}

	key := adaptor.IssueKey(volumeID, issueNumber)
	if !skipCache {
		if value, ok := svc.cache.Get(key); ok {
			if value == nil {
				return nil, nil
			}
			if issue, ok := value.(*Issue); ok {
				return issue, nil
			}
		}
	}

	properties, err := svc.sourceProperties(ctx, source)
	if err != nil {
		return nil, err
	}

	cctx, cancel := svc.callContext(ctx)
	defer cancel()

	issue, err := adaptor.GetIssue(cctx, volumeID, issueNumber, properties)
	if err != nil {
		return nil, err
	}

	if issue == nil {
		svc.cache.Put(key, nil)
		return nil, nil
	}

	svc.cache.Put(key, issue)
	return issue, nil
}

// GetIssueDetails returns the full record for an issue id from the given
// source.
func (svc *Service) GetIssueDetails(ctx context.Context, source string, issueID int, skipCache bool) (*IssueDetails, error) {
	adaptor, err := svc.adaptorFor(source)
	if err != nil {
		return nil, err
	}

	key := adaptor.IssueDetailsKey(issueID)
	if !skipCache {
		if value, ok := svc.cache.Get(key); ok {
			if details, ok := value.(*IssueDetails); ok {
				return details, nil
			}
		}
	}

	properties, err := svc.sourceProperties(ctx, source)
	if err != nil {
		return nil, err
	}

	cctx, cancel := svc.callContext(ctx)
	defer cancel()

	details, err := adaptor.GetIssueDetails(cctx, issueID, properties)
	if err != nil {
		return nil, err
	}

	svc.cache.Put(key, details)
	return details, nil
}

func (svc *Service) adaptorFor(source string) (Adaptor, error) {
	adaptor, ok := svc.registry.Lookup(source)
	if !ok {
		return nil, errcodes.NotFound("Metadata source")
	}
	return adaptor, nil
}

func (svc *Service) sourceProperties(ctx context.Context, source string) (map[string]string, error) {
	metadataSource := &models.MetadataSource{}

	err := svc.db.
		NewSelect().
		Model(metadataSource).
		Relation("Properties").
		Where("ms.name = ?", source).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// An unconfigured source gets an empty property bag; the
			// adaptor's required-property check produces the right error.
			return map[string]string{}, nil
		}
		return nil, errors.WithStack(err)
	}

	return metadataSource.PropertyMap(), nil
}

func (svc *Service) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if svc.scrapeTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, svc.scrapeTimeout)
}

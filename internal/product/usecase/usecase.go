package usecase

import (
	"context"
	"crypto/md5"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/fekuna/omnipos-backoffice/internal/model"
	"github.com/fekuna/omnipos-backoffice/internal/pagination"
	"github.com/fekuna/omnipos-backoffice/internal/product"
	"github.com/fekuna/omnipos-backoffice/internal/product/dto"
	"github.com/fekuna/omnipos-backoffice/pkg/cache"
	"github.com/fekuna/omnipos-backoffice/pkg/logger"
	"github.com/fekuna/omnipos-backoffice/pkg/search"
)

const (
	indexName = "produits"
	listTTL   = 5 * time.Minute
)

const indexMapping = `{
	"mappings": {
		"properties": {
			"etablissement_id": { "type": "keyword" },
			"categorie_id": { "type": "keyword" },
			"nom": { "type": "text" },
			"description": { "type": "text" },
			"code_barre": { "type": "keyword" },
			"prix_vente": { "type": "double" },
			"actif": { "type": "boolean" },
			"created_at": { "type": "date" }
		}
	}
}`

// Cache is the list cache. *cache.RedisClient satisfies it.
type Cache interface {
	GetJSON(ctx context.Context, key string, dest any) (bool, error)
	SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error
	DeletePattern(ctx context.Context, pattern string) error
}

// Index is the search index. *search.Client satisfies it.
type Index interface {
	CreateIndex(ctx context.Context, index, mapping string) error
	Index(ctx context.Context, index, id string, doc any) error
	Search(ctx context.Context, index string, query map[string]interface{}) (*search.SearchResponse, error)
	Delete(ctx context.Context, index, id string) error
}

var (
	_ Cache = (*cache.RedisClient)(nil)
	_ Index = (*search.Client)(nil)
)

type productUseCase struct {
	product.Repository
	cache  Cache
	es     Index
	logger logger.ZapLogger
}

// NewProductUseCase wraps repo. cache and es may be nil (untyped) to run
// without them.
func NewProductUseCase(repo product.Repository, cache Cache, es Index, log logger.ZapLogger) product.UseCase {
	return &productUseCase{Repository: repo, cache: cache, es: es, logger: log}
}

// EnsureIndex creates the search index when missing.
func EnsureIndex(ctx context.Context, es Index) error {
	return es.CreateIndex(ctx, indexName, indexMapping)
}

func (uc *productUseCase) List(ctx context.Context, f *dto.ProductFilters) ([]model.Product, error) {
	if uc.cache == nil {
		return uc.Repository.List(ctx, f)
	}

	key, err := listKey(f)
	if err == nil {
		var cached []model.Product
		hit, err := uc.cache.GetJSON(ctx, key, &cached)
		if err != nil {
			uc.logger.Warn("product cache read failed", zap.String("key", key), zap.Error(err))
		}
		if hit {
			return cached, nil
		}
	}

	products, err := uc.Repository.List(ctx, f)
	if err != nil {
		return nil, err
	}
	if key != "" {
		if err := uc.cache.SetJSON(ctx, key, products, listTTL); err != nil {
			uc.logger.Warn("product cache write failed", zap.String("key", key), zap.Error(err))
		}
	}
	return products, nil
}

func (uc *productUseCase) Search(ctx context.Context, establishmentID, query string, p pagination.Params) (*pagination.Result[model.Product], error) {
	p = p.Normalize()
	if uc.es != nil && query != "" && establishmentID != "" {
		res, err := uc.es.Search(ctx, indexName, searchQuery(establishmentID, query, p))
		if err == nil {
			products := make([]model.Product, 0, len(res.Hits.Hits))
			for _, hit := range res.Hits.Hits {
				var prod model.Product
				if err := json.Unmarshal(hit.Source, &prod); err == nil {
					products = append(products, prod)
				}
			}
			return pagination.NewResult(products, res.Hits.Total.Value, p), nil
		}
		uc.logger.Error("product search failed, falling back to database", zap.Error(err))
	}

	active := true
	return uc.Repository.ListPaginated(ctx, &dto.ProductFilters{
		EstablishmentID: establishmentID,
		Active:          &active,
		Search:          query,
	}, p)
}

func searchQuery(establishmentID, query string, p pagination.Params) map[string]interface{} {
	return map[string]interface{}{
		"query": map[string]interface{}{
			"bool": map[string]interface{}{
				"must": []map[string]interface{}{
					{
						"multi_match": map[string]interface{}{
							"query":     query,
							"fields":    []string{"nom^3", "code_barre", "description"},
							"fuzziness": "AUTO",
						},
					},
				},
				"filter": []map[string]interface{}{
					{"term": map[string]interface{}{"etablissement_id": establishmentID}},
					{"term": map[string]interface{}{"actif": true}},
				},
			},
		},
		"from": p.Offset(),
		"size": p.Limit(),
	}
}

func (uc *productUseCase) Create(ctx context.Context, in *dto.CreateProductInput) (*model.Product, error) {
	p, err := uc.Repository.Create(ctx, in)
	if err != nil {
		return nil, err
	}
	uc.invalidate(ctx, p.EstablishmentID)
	uc.index(ctx, p)
	return p, nil
}

func (uc *productUseCase) Update(ctx context.Context, id string, in *dto.UpdateProductInput) (*model.Product, error) {
	p, err := uc.Repository.Update(ctx, id, in)
	if err != nil {
		return nil, err
	}
	uc.invalidate(ctx, p.EstablishmentID)
	uc.index(ctx, p)
	return p, nil
}

func (uc *productUseCase) SoftDelete(ctx context.Context, id string) error {
	p, err := uc.Repository.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := uc.Repository.SoftDelete(ctx, id); err != nil {
		return err
	}
	if p != nil {
		uc.invalidate(ctx, p.EstablishmentID)
	}
	if uc.es != nil {
		if err := uc.es.Delete(ctx, indexName, id); err != nil {
			uc.logger.Error("failed to remove product from index", zap.String("product_id", id), zap.Error(err))
		}
	}
	return nil
}

func (uc *productUseCase) index(ctx context.Context, p *model.Product) {
	if uc.es == nil {
		return
	}
	if err := uc.es.Index(ctx, indexName, p.ID, p); err != nil {
		uc.logger.Error("failed to index product", zap.String("product_id", p.ID), zap.Error(err))
	}
}

func (uc *productUseCase) invalidate(ctx context.Context, establishmentID string) {
	if uc.cache == nil {
		return
	}
	if err := uc.cache.DeletePattern(ctx, product.ListCachePattern(establishmentID)); err != nil {
		uc.logger.Error("failed to invalidate product cache", zap.String("etablissement_id", establishmentID), zap.Error(err))
	}
}

func listKey(f *dto.ProductFilters) (string, error) {
	data, err := json.Marshal(f)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("produits:list:%s:%x", f.EstablishmentID, md5.Sum(data)), nil
}


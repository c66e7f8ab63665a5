package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/ueservicesllc1-ops/envios-sub002/internal/dto"
	"github.com/ueservicesllc1-ops/envios-sub002/internal/repository"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const priceCacheTTL = 5 * time.Minute

// ProductService is the read-only catalog surface the POS consumes. Barcode
// price checks are served from Redis when warm — they are the hottest read in
// the system (every scan at the counter).
type ProductService interface {
	List(ctx context.Context, activeOnly bool) ([]dto.ProductResponse, error)
	PriceByBarcode(ctx context.Context, barcode string) (*dto.PriceCheckResponse, error)
}

type productService struct {
	repo repository.ProductRepository
	rdb  *redis.Client
}

func NewProductService(repo repository.ProductRepository, rdb *redis.Client) ProductService {
	return &productService{repo: repo, rdb: rdb}
}

func (s *productService) List(ctx context.Context, activeOnly bool) ([]dto.ProductResponse, error) {
	products, err := s.repo.List(ctx, activeOnly)
	if err != nil {
		return nil, err
	}
	resp := make([]dto.ProductResponse, 0, len(products))
	for _, p := range products {
		resp = append(resp, dto.ProductResponse{
			ID:             p.ID.String(),
			SKU:            p.SKU,
			Name:           p.Name,
			Category:       p.Category,
			RetailPrice:    p.RetailPrice,
			WholesalePrice: p.WholesalePrice,
			Barcode:        p.Barcode,
			Active:         p.Active,
		})
	}
	return resp, nil
}

func (s *productService) PriceByBarcode(ctx context.Context, barcode string) (*dto.PriceCheckResponse, error) {
	cacheKey := "price:" + barcode

	if s.rdb != nil {
		if cached, err := s.rdb.Get(ctx, cacheKey).Result(); err == nil {
			var resp dto.PriceCheckResponse
			if json.Unmarshal([]byte(cached), &resp) == nil {
				return &resp, nil
			}
		}
	}

	p, err := s.repo.FindByBarcode(ctx, barcode)
	if err != nil {
		return nil, ErrNotFound
	}

	resp := &dto.PriceCheckResponse{
		Barcode:     barcode,
		Name:        p.Name,
		RetailPrice: p.RetailPrice,
	}

	if s.rdb != nil {
		if data, err := json.Marshal(resp); err == nil {
			if err := s.rdb.Set(ctx, cacheKey, data, priceCacheTTL).Err(); err != nil {
				log.Warn().Err(err).Str("barcode", barcode).Msg("price cache write failed")
			}
		}
	}

	return resp, nil
}

package service

import (
	"context"
	"errors"
	"time"

	"github.com/hanu-sports/storefront/internal/cache"
	"github.com/hanu-sports/storefront/internal/domain"
	"github.com/hanu-sports/storefront/internal/repository"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

type CartService struct {
	repo   repository.CartRepository
	cache  cache.CartCache
	sfg    singleflight.Group // Prevents cache stampede
	logger zerolog.Logger
}

func NewCartService(repo repository.CartRepository, cache cache.CartCache, logger zerolog.Logger) *CartService {
	return &CartService{
		repo:   repo,
		cache:  cache,
		logger: logger,
	}
}

func (s *CartService) GetCart(ctx context.Context, userID string) (*domain.Cart, error) {
	// Use singleflight to prevent multiple concurrent cache misses for same key
	v, err, _ := s.sfg.Do(userID, func() (interface{}, error) {

		cart, err := s.cache.Get(ctx, userID)
		if err == nil {
			return cart, nil // cart is in cache
		}

		if !errors.Is(err, cache.ErrCacheMiss) {
			s.logger.Warn().Err(err).Msg("cart cache get error") // log cache error but continue
		}

		cart, errGet := s.repo.GetCart(ctx, userID)
		if errGet != nil && errors.Is(errGet, repository.ErrCartNotFound) { // not found cart return empty cart
			return &domain.Cart{
				UserID:    userID,
				Items:     nil,
				CreatedAt: time.Now(),
				UpdatedAt: time.Now(),
			}, nil
		}
		if errGet != nil {
			return nil, errGet
		}

		// Set synchronously, inside the singleflight window. A background
		// set could land after a write invalidated the key and pin a stale
		// cart in the cache.
		if errSet := s.cache.Set(ctx, userID, cart); errSet != nil {
			s.logger.Warn().Err(errSet).Msg("cart cache set error")
		}

		return cart, nil // cart was not in cache, return it from repo
	})

	if err != nil {
		return nil, err
	}

	return v.(*domain.Cart), nil
}

func (s *CartService) AddItem(ctx context.Context, userID string, item domain.CartItem) error {
	if err := s.repo.AddItem(ctx, userID, item); err != nil {
		s.logger.Error().Err(err).Str("user_id", userID).Msg("repo add item error")
		return err
	}

	s.invalidateCache(userID)
	return nil
}

func (s *CartService) UpdateQuantity(ctx context.Context, userID, itemKey string, quantity int) error {
	if err := s.repo.UpdateItemQuantity(ctx, userID, itemKey, quantity); err != nil {
		s.logger.Error().Err(err).Str("user_id", userID).Msg("repo update item quantity error")
		return err
	}

	s.invalidateCache(userID)
	return nil
}

func (s *CartService) RemoveItem(ctx context.Context, userID, itemKey string) error {
	err := s.repo.RemoveItem(ctx, userID, itemKey)
	if err != nil && !errors.Is(err, repository.ErrCartNotFound) {
		s.logger.Error().Err(err).Str("user_id", userID).Msg("repo remove item error")
		return err
	}

	s.invalidateCache(userID)
	return nil
}

func (s *CartService) ClearCart(ctx context.Context, userID string) error {
	err := s.repo.DeleteCart(ctx, userID)
	if err != nil && !errors.Is(err, repository.ErrCartNotFound) {
		s.logger.Error().Err(err).Str("user_id", userID).Msg("repo delete cart error")
		return err
	}

	s.invalidateCache(userID)
	return nil
}

func (s *CartService) invalidateCache(userID string) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := s.cache.Delete(ctx, userID); err != nil {
		s.logger.Warn().Err(err).Str("user_id", userID).Msg("cart cache invalidate error")
	}
}

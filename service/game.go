package service

import (
	"context"
	"errors"
	"fmt"

	"gamecatalog/models"
	"gamecatalog/monitoring"
	"gamecatalog/repository"
	"gamecatalog/utils"

	"github.com/sirupsen/logrus"
)

type GameService interface {
	ListGames(ctx context.Context) ([]models.Game, error)
	GetGame(ctx context.Context, id uint) (models.Game, error)
	CreateGame(ctx context.Context, in models.GameInput) (models.Game, error)
	UpdateGame(ctx context.Context, id uint, in models.GameInput) (models.Game, error)
	DeleteGame(ctx context.Context, id uint) error
}

// GameCache is the read-through cache in front of the store. *cache.Cache
// implements it; reads that fail for any reason fall back to the store.
type GameCache interface {
	GetGame(ctx context.Context, id uint) (models.Game, error)
	SetGame(ctx context.Context, game models.Game) error
	GetGames(ctx context.Context) ([]models.Game, error)
	SetGames(ctx context.Context, games []models.Game) error
	InvalidateGame(ctx context.Context, id uint) error
	InvalidateGamesList(ctx context.Context) error
}

type gameService struct {
	repo  repository.GameRepository
	cache GameCache
}

// NewGameService wires the catalog to its store. cache may be nil.
func NewGameService(repo repository.GameRepository, cache GameCache) GameService {
	return &gameService{repo: repo, cache: cache}
}

func (s *gameService) ListGames(ctx context.Context) ([]models.Game, error) {
	if s.cache != nil {
		if games, err := s.cache.GetGames(ctx); err == nil {
			utils.Log.Debug("Cache HIT: games")
			return games, nil
		}
	}

	games, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list games: %w", err)
	}

	if s.cache != nil {
		_ = s.cache.SetGames(ctx, games)
	}
	return games, nil
}

func (s *gameService) GetGame(ctx context.Context, id uint) (models.Game, error) {
	if s.cache != nil {
		if game, err := s.cache.GetGame(ctx, id); err == nil {
			utils.LogDebug("Cache HIT: game", logrus.Fields{"game_id": id})
			return game, nil
		}
	}

	game, err := s.repo.FindByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return models.Game{}, ErrGameNotFound
	}
	if err != nil {
		return models.Game{}, fmt.Errorf("get game %d: %w", id, err)
	}

	if s.cache != nil {
		_ = s.cache.SetGame(ctx, game)
	}
	return game, nil
}

// CreateGame validates in, prices it and inserts it. Name uniqueness is
// enforced by the store's unique index, not by a prior lookup.
func (s *gameService) CreateGame(ctx context.Context, in models.GameInput) (models.Game, error) {
	if err := validateInput(in); err != nil {
		monitoring.RecordOperation("create", "invalid")
		return models.Game{}, err
	}

	game, err := models.NewGame(in).WithCurrentPrice()
	if err != nil {
		rejectPrice("create", err)
		return models.Game{}, priceError(err)
	}

	created, err := s.repo.Create(ctx, game)
	if errors.Is(err, repository.ErrDuplicateName) {
		monitoring.RecordOperation("create", "conflict")
		return models.Game{}, ErrGameConflict
	}
	if err != nil {
		monitoring.RecordOperation("create", "error")
		return models.Game{}, fmt.Errorf("create game: %w", err)
	}

	monitoring.RecordOperation("create", "ok")
	utils.LogInfo("Game created", logrus.Fields{"game_id": created.ID, "name": created.Name})
	s.afterWrite(ctx, created.ID)
	return created, nil
}

// UpdateGame replaces the game with id by in. The id in the stored record
// wins over anything the client sent.
func (s *gameService) UpdateGame(ctx context.Context, id uint, in models.GameInput) (models.Game, error) {
	if err := validateInput(in); err != nil {
		monitoring.RecordOperation("update", "invalid")
		return models.Game{}, err
	}

	existing, err := s.repo.FindByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		monitoring.RecordOperation("update", "not_found")
		return models.Game{}, ErrGameNotFound
	}
	if err != nil {
		monitoring.RecordOperation("update", "error")
		return models.Game{}, fmt.Errorf("load game %d: %w", id, err)
	}

	replacement, err := existing.Replace(in).WithCurrentPrice()
	if err != nil {
		rejectPrice("update", err)
		return models.Game{}, priceError(err)
	}

	saved, err := s.repo.Save(ctx, replacement)
	switch {
	case errors.Is(err, repository.ErrDuplicateName):
		monitoring.RecordOperation("update", "conflict")
		return models.Game{}, ErrGameConflict
	case errors.Is(err, repository.ErrNotFound):
		monitoring.RecordOperation("update", "not_found")
		return models.Game{}, ErrGameNotFound
	case err != nil:
		monitoring.RecordOperation("update", "error")
		return models.Game{}, fmt.Errorf("update game %d: %w", id, err)
	}

	monitoring.RecordOperation("update", "ok")
	utils.LogInfo("Game updated", logrus.Fields{"game_id": saved.ID, "current_price": saved.CurrentPrice})
	s.afterWrite(ctx, saved.ID)
	return saved, nil
}

func (s *gameService) DeleteGame(ctx context.Context, id uint) error {
	exists, err := s.repo.ExistsByID(ctx, id)
	if err != nil {
		monitoring.RecordOperation("delete", "error")
		return fmt.Errorf("check game %d: %w", id, err)
	}
	if !exists {
		monitoring.RecordOperation("delete", "not_found")
		return ErrGameNotFound
	}

	err = s.repo.Delete(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		monitoring.RecordOperation("delete", "not_found")
		return ErrGameNotFound
	}
	if err != nil {
		monitoring.RecordOperation("delete", "error")
		return fmt.Errorf("delete game %d: %w", id, err)
	}

	monitoring.RecordOperation("delete", "ok")
	utils.Log.WithField("game_id", id).Info("Game deleted")
	s.afterWrite(ctx, id)
	return nil
}

// afterWrite drops stale cache entries and refreshes the catalog gauge.
func (s *gameService) afterWrite(ctx context.Context, id uint) {
	if s.cache != nil {
		if err := s.cache.InvalidateGame(ctx, id); err != nil {
			utils.Log.WithError(err).WithField("game_id", id).Warn("Failed to invalidate game cache")
		}
		if err := s.cache.InvalidateGamesList(ctx); err != nil {
			utils.Log.WithError(err).Warn("Failed to invalidate games list cache")
		}
	}

	if count, err := s.repo.Count(ctx); err == nil {
		monitoring.TotalGames.Set(float64(count))
	}
}

func validateInput(in models.GameInput) error {
	if err := utils.ValidateStruct(in); err != nil {
		return &ValidationError{Fields: utils.ValidationMessages(err)}
	}
	return nil
}

func rejectPrice(operation string, err error) {
	reason := "invalid_price"
	if errors.Is(err, models.ErrInvalidDiscount) {
		reason = "invalid_discount"
	}
	monitoring.PriceRuleRejections.WithLabelValues(reason).Inc()
	monitoring.RecordOperation(operation, "invalid")
}

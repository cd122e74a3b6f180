package repository

import (
	"context"
	"errors"
	"strings"

	"gamecatalog/models"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

var (
	ErrNotFound      = errors.New("game not found")
	ErrDuplicateName = errors.New("game name already exists")
)

const pgUniqueViolation = "23505"

type GameRepository interface {
	FindAll(ctx context.Context) ([]models.Game, error)
	FindByID(ctx context.Context, id uint) (models.Game, error)
	ExistsByID(ctx context.Context, id uint) (bool, error)
	ExistsByName(ctx context.Context, name string) (bool, error)
	Create(ctx context.Context, game models.Game) (models.Game, error)
	Save(ctx context.Context, game models.Game) (models.Game, error)
	Delete(ctx context.Context, id uint) error
	Count(ctx context.Context) (int64, error)
}

type gameRepository struct {
	db *gorm.DB
}

func NewGameRepository(db *gorm.DB) GameRepository {
	return &gameRepository{db: db}
}

func (r *gameRepository) FindAll(ctx context.Context) ([]models.Game, error) {
	games := make([]models.Game, 0)
	if err := r.db.WithContext(ctx).Order("id").Find(&games).Error; err != nil {
		return nil, err
	}
	return games, nil
}

func (r *gameRepository) FindByID(ctx context.Context, id uint) (models.Game, error) {
	var game models.Game
	if err := r.db.WithContext(ctx).First(&game, id).Error; err != nil {
		return models.Game{}, translateError(err)
	}
	return game, nil
}

func (r *gameRepository) ExistsByID(ctx context.Context, id uint) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Game{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *gameRepository) ExistsByName(ctx context.Context, name string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Game{}).Where("name = ?", name).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Create inserts game and returns it with the store-assigned id.
func (r *gameRepository) Create(ctx context.Context, game models.Game) (models.Game, error) {
	game.ID = 0
	if err := r.db.WithContext(ctx).Create(&game).Error; err != nil {
		return models.Game{}, translateError(err)
	}
	return game, nil
}

// Save writes every column of game, including nulls, over the row with game.ID.
func (r *gameRepository) Save(ctx context.Context, game models.Game) (models.Game, error) {
	if game.ID == 0 {
		return models.Game{}, ErrNotFound
	}
	if err := r.db.WithContext(ctx).Save(&game).Error; err != nil {
		return models.Game{}, translateError(err)
	}
	return game, nil
}

func (r *gameRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&models.Game{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *gameRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Game{}).Count(&count).Error
	return count, err
}

func translateError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case isUniqueViolation(err):
		return ErrDuplicateName
	default:
		return err
	}
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUniqueViolation
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"gamecatalog/models"
	"gamecatalog/service"
	"gamecatalog/utils"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const (
	msgGamesListed   = "Games listed successfully."
	msgNoGames       = "No games registered."
	msgGameFound     = "Game found."
	msgGameNotFound  = "Game not found!"
	msgGameCreated   = "Game created successfully!"
	msgGameExists    = "A game with this name already exists!"
	msgGameUpdated   = "Game updated successfully!"
	msgGameDeleted   = "No content, deletion completed."
	msgInvalidID     = "Invalid game id."
	msgInvalidBody   = "Invalid request body."
	msgValidation    = "Validation failed."
	msgInternalError = "Internal server error."
)

type GameHandler struct {
	games service.GameService
}

func NewGameHandler(games service.GameService) *GameHandler {
	return &GameHandler{games: games}
}

// Register mounts the catalog routes under rg, e.g. /api/games.
func (h *GameHandler) Register(rg *gin.RouterGroup) {
	games := rg.Group("/games")
	games.GET("", h.GetGames)
	games.GET("/:id", h.GetGameByID)
	games.POST("", h.CreateGame)
	games.PUT("/:id", h.UpdateGame)
	games.DELETE("/:id", h.DeleteGame)
}

// GetGames answers 204 for an empty catalog. gin writes no body for 204.
func (h *GameHandler) GetGames(c *gin.Context) {
	games, err := h.games.ListGames(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	if len(games) == 0 {
		utils.Respond(c, http.StatusNoContent, msgNoGames, nil)
		return
	}
	utils.Respond(c, http.StatusOK, msgGamesListed, games)
}

func (h *GameHandler) GetGameByID(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	game, err := h.games.GetGame(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	utils.Respond(c, http.StatusOK, msgGameFound, game)
}

func (h *GameHandler) CreateGame(c *gin.Context) {
	var input models.GameInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.ValidationErrorResponse(c, msgInvalidBody, utils.ValidationMessages(err))
		return
	}

	game, err := h.games.CreateGame(c.Request.Context(), input)
	if err != nil {
		h.fail(c, err)
		return
	}
	utils.Respond(c, http.StatusCreated, msgGameCreated, game)
}

// UpdateGame replaces the whole record; an id in the body is ignored.
func (h *GameHandler) UpdateGame(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var input models.GameInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.ValidationErrorResponse(c, msgInvalidBody, utils.ValidationMessages(err))
		return
	}

	game, err := h.games.UpdateGame(c.Request.Context(), id, input)
	if err != nil {
		h.fail(c, err)
		return
	}
	utils.Respond(c, http.StatusOK, msgGameUpdated, game)
}

// DeleteGame answers HTTP 200 with an envelope status of 204.
func (h *GameHandler) DeleteGame(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := h.games.DeleteGame(c.Request.Context(), id); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, utils.NewResponse(http.StatusNoContent, msgGameDeleted, nil))
}

func (h *GameHandler) fail(c *gin.Context, err error) {
	var vErr *service.ValidationError
	switch {
	case errors.As(err, &vErr):
		message := msgValidation
		if vErr.Err != nil {
			message = vErr.Error()
		}
		utils.ValidationErrorResponse(c, message, vErr.Fields)
	case errors.Is(err, service.ErrGameNotFound):
		utils.Respond(c, http.StatusNotFound, msgGameNotFound, nil)
	case errors.Is(err, service.ErrGameConflict):
		utils.Respond(c, http.StatusConflict, msgGameExists, nil)
	default:
		_ = c.Error(err)
		utils.LogError("Catalog operation failed", logrus.Fields{
			"error":  err.Error(),
			"method": c.Request.Method,
			"path":   c.Request.URL.Path,
		})
		utils.Respond(c, http.StatusInternalServerError, msgInternalError, nil)
	}
}

func parseID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		utils.Respond(c, http.StatusBadRequest, msgInvalidID, nil)
		return 0, false
	}
	return uint(id), true
}

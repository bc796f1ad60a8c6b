package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/aislemap-backend/internal/pkg/dbctx"
	"github.com/yungbote/aislemap-backend/internal/pkg/errors"
	"github.com/yungbote/aislemap-backend/internal/platform/logger"
	"github.com/yungbote/aislemap-backend/internal/services"
)

type StoreHandler struct {
	log          *logger.Logger
	storeService services.StoreService
}

func NewStoreHandler(log *logger.Logger, storeService services.StoreService) *StoreHandler {
	return &StoreHandler{log: log.With("handler", "StoreHandler"), storeService: storeService}
}

type createStoreRequest struct {
	Name      string  `json:"name"`
	Address   string  `json:"address"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

func (h *StoreHandler) Create(c *gin.Context) {
	var req createStoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_input", errors.Validationf("malformed body"))
		return
	}
	store, err := h.storeService.Create(dbctx.New(c.Request.Context()), services.CreateStoreInput{
		Name:      req.Name,
		Address:   req.Address,
		Latitude:  req.Latitude,
		Longitude: req.Longitude,
	})
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondCreated(c, store)
}

func (h *StoreHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondServiceError(c, errors.Validationf("malformed store id"))
		return
	}
	store, err := h.storeService.Get(dbctx.New(c.Request.Context()), id)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, store)
}

func (h *StoreHandler) List(c *gin.Context) {
	limit := 100
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			RespondServiceError(c, errors.Validationf("malformed limit"))
			return
		}
		limit = n
	}
	stores, err := h.storeService.List(dbctx.New(c.Request.Context()), limit)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"stores": stores})
}

package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/aislemap-backend/internal/pkg/dbctx"
	"github.com/yungbote/aislemap-backend/internal/pkg/errors"
	"github.com/yungbote/aislemap-backend/internal/platform/apierr"
	"github.com/yungbote/aislemap-backend/internal/platform/logger"
	"github.com/yungbote/aislemap-backend/internal/services"
)

type PricingHandler struct {
	log            *logger.Logger
	pricingService services.PricingService
}

func NewPricingHandler(log *logger.Logger, pricingService services.PricingService) *PricingHandler {
	return &PricingHandler{log: log.With("handler", "PricingHandler"), pricingService: pricingService}
}

func (h *PricingHandler) Resolve(c *gin.Context) {
	storeID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondServiceError(c, errors.Validationf("malformed store id"))
		return
	}
	res, err := h.pricingService.Resolve(dbctx.New(c.Request.Context()), storeID, c.Param("barcode"))
	if err != nil {
		// Missing data is an expected outcome for a sparsely-mapped store,
		// not a failure.
		if errors.Is(err, errors.ErrNotFound) {
			RespondServiceError(c, apierr.New(http.StatusNotFound, "no_price_data", err))
			return
		}
		RespondServiceError(c, err)
		return
	}
	payload := gin.H{
		"price":      res.Value.Price,
		"currency":   res.Value.Currency,
		"unit":       res.Value.Unit,
		"confidence": res.Confidence,
		"source":     res.Source,
		"fact":       res.Fact,
	}
	if res.SourceStoreID != nil {
		payload["source_store_id"] = res.SourceStoreID
	}
	if res.DistanceKm != nil {
		payload["distance_km"] = res.DistanceKm
	}
	RespondOK(c, payload)
}

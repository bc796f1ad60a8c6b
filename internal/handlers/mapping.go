package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/yungbote/aislemap-backend/internal/crowd"
	"github.com/yungbote/aislemap-backend/internal/middleware"
	"github.com/yungbote/aislemap-backend/internal/pkg/dbctx"
	"github.com/yungbote/aislemap-backend/internal/pkg/errors"
	"github.com/yungbote/aislemap-backend/internal/platform/logger"
	"github.com/yungbote/aislemap-backend/internal/services"
)

type MappingHandler struct {
	log                 *logger.Logger
	contributionService services.ContributionService
	factService         services.FactService
	leaderboardService  services.LeaderboardService
}

func NewMappingHandler(
	log *logger.Logger,
	contributionService services.ContributionService,
	factService services.FactService,
	leaderboardService services.LeaderboardService,
) *MappingHandler {
	return &MappingHandler{
		log:                 log.With("handler", "MappingHandler"),
		contributionService: contributionService,
		factService:         factService,
		leaderboardService:  leaderboardService,
	}
}

// contributionRequest addresses the subject by its components rather than a
// pre-built key, so clients never assemble key strings themselves.
type contributionRequest struct {
	Kind        string `json:"kind"`
	StoreID     string `json:"store_id"`
	SubjectKind string `json:"subject_kind"`

	Aisle      string `json:"aisle,omitempty"`
	Department string `json:"department,omitempty"`
	Category   string `json:"category,omitempty"`
	Barcode    string `json:"barcode,omitempty"`

	Value       json.RawMessage `json:"value,omitempty"`
	HasEvidence bool            `json:"has_evidence,omitempty"`
}

func (h *MappingHandler) SubmitContribution(c *gin.Context) {
	var req contributionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_input", errors.Validationf("malformed body"))
		return
	}

	kind, err := crowd.ParseKind(req.Kind)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	storeID, err := uuid.Parse(req.StoreID)
	if err != nil {
		RespondServiceError(c, errors.Validationf("malformed store id"))
		return
	}

	subject, err := buildSubject(storeID, req)
	if err != nil {
		RespondServiceError(c, err)
		return
	}

	var value crowd.Value
	if len(req.Value) > 0 {
		value, err = crowd.DecodeValue(subject.Kind, datatypes.JSON(req.Value))
		if err != nil {
			RespondServiceError(c, errors.Validationf("malformed value: %v", err))
			return
		}
	}

	res, err := h.contributionService.Submit(dbctx.New(c.Request.Context()), services.SubmitInput{
		ContributorID: middleware.CurrentUserID(c),
		Kind:          kind,
		Subject:       subject,
		Value:         value,
		HasEvidence:   req.HasEvidence,
	})
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondCreated(c, gin.H{
		"fact":           res.Fact,
		"points_awarded": res.PointsAwarded,
		"bonus_awarded":  res.BonusAwarded,
		"new_badges":     res.NewBadges,
		"points_pending": res.PointsPending,
	})
}

func buildSubject(storeID uuid.UUID, req contributionRequest) (crowd.Subject, error) {
	switch req.SubjectKind {
	case "aisle":
		return crowd.AisleSubject(storeID, req.Aisle), nil
	case "department":
		return crowd.DepartmentSubject(storeID, req.Aisle, req.Department), nil
	case "product_location":
		return crowd.LocationSubject(storeID, req.Category), nil
	case "price":
		return crowd.PriceSubject(storeID, req.Barcode), nil
	}
	return crowd.Subject{}, errors.Validationf("unknown subject kind %q", req.SubjectKind)
}

func (h *MappingHandler) GetFact(c *gin.Context) {
	view, err := h.factService.Get(dbctx.New(c.Request.Context()), c.Param("subjectKey"))
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{
		"fact":                 view.Fact,
		"effective_confidence": view.EffectiveConfidence,
	})
}

func (h *MappingHandler) FactHistory(c *gin.Context) {
	limit := 50
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 || n > 200 {
			RespondServiceError(c, errors.Validationf("limit must be between 1 and 200"))
			return
		}
		limit = n
	}
	rows, err := h.contributionService.History(dbctx.New(c.Request.Context()), c.Param("subjectKey"), limit)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"contributions": rows})
}

func (h *MappingHandler) ListStoreFacts(c *gin.Context) {
	storeID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondServiceError(c, errors.Validationf("malformed store id"))
		return
	}
	var minConfidence float64
	if raw := c.Query("min_confidence"); raw != "" {
		minConfidence, err = strconv.ParseFloat(raw, 64)
		if err != nil {
			RespondServiceError(c, errors.Validationf("malformed min_confidence"))
			return
		}
	}
	views, err := h.factService.ListForStore(dbctx.New(c.Request.Context()), storeID, minConfidence)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	out := make([]gin.H, 0, len(views))
	for _, v := range views {
		out = append(out, gin.H{
			"fact":                 v.Fact,
			"effective_confidence": v.EffectiveConfidence,
		})
	}
	RespondOK(c, gin.H{"facts": out})
}

func (h *MappingHandler) Leaderboard(c *gin.Context) {
	limit := int64(10)
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || n <= 0 || n > 100 {
			RespondServiceError(c, errors.Validationf("limit must be between 1 and 100"))
			return
		}
		limit = n
	}
	entries, err := h.leaderboardService.Top(c.Request.Context(), limit)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	out := make([]gin.H, 0, len(entries))
	for _, e := range entries {
		out = append(out, gin.H{"contributor_id": e.ContributorID, "points": e.Points})
	}
	RespondOK(c, gin.H{"leaderboard": out})
}

// RebuildLeaderboard replays the ledger into redis. The cache is disposable;
// this is the recovery path after a redis flush or missed pushes.
func (h *MappingHandler) RebuildLeaderboard(c *gin.Context) {
	if err := h.leaderboardService.Rebuild(dbctx.New(c.Request.Context())); err != nil {
		RespondServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Package handlers provides HTTP handlers for the REST API
package handlers

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/orbitfit/mealplan/internal/infrastructure/http/middleware"
	"github.com/orbitfit/mealplan/internal/ports/inbound"
	"github.com/orbitfit/mealplan/pkg/errors"
)

const maxBodyBytes = 1 << 20

// PlanHandlers handles the meal plan REST API
type PlanHandlers struct {
	planService inbound.PlanService
	validate    *validator.Validate
	logger      *zap.Logger
}

// NewPlanHandlers creates a new plan handlers instance
func NewPlanHandlers(planService inbound.PlanService, logger *zap.Logger) *PlanHandlers {
	return &PlanHandlers{
		planService: planService,
		validate:    validator.New(),
		logger:      logger.Named("plan-api"),
	}
}

// APIResponse represents a standard API response
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
}

// CreatePlanRequest is the body of POST /clients/{clientID}/plan
type CreatePlanRequest struct {
	Slots []string `json:"slots" validate:"max=12,dive,max=100"`
}

// CopyDayRequest is the body of POST /plans/{planID}/days/copy
type CopyDayRequest struct {
	SourceDayID string `json:"source_day_id" validate:"required,uuid"`
	TargetDayID string `json:"target_day_id" validate:"required,uuid"`
}

// ReviewDateRequest is the body of PUT /plans/{planID}/review-date.
// A null review_date clears it.
type ReviewDateRequest struct {
	ReviewDate *string `json:"review_date" validate:"omitempty,datetime=2006-01-02"`
}

// AddItemRequest is the body of POST /plans/{planID}/meals/{mealID}/items
type AddItemRequest struct {
	RecipeID     *string `json:"recipe_id" validate:"omitempty,uuid"`
	CustomName   string  `json:"custom_name" validate:"max=255"`
	NameOverride string  `json:"name_override" validate:"max=255"`
	Portions     float64 `json:"portions" validate:"gte=0"`
}

// PortionsRequest is the body of PUT /plans/{planID}/items/{itemID}/portions
type PortionsRequest struct {
	Portions float64 `json:"portions" validate:"gt=0"`
}

// SkippedRequest is the body of PUT /plans/{planID}/meals/{mealID}/skipped
type SkippedRequest struct {
	Skipped bool `json:"is_skipped"`
}

// Routes mounts the plan endpoints on r
func (h *PlanHandlers) Routes(r chi.Router) {
	r.Route("/clients/{clientID}/plan", func(r chi.Router) {
		r.Post("/", h.CreatePlan)
		r.Get("/", h.GetPlan)
	})
	r.Route("/plans/{planID}", func(r chi.Router) {
		r.Post("/days/copy", h.CopyDay)
		r.Put("/review-date", h.UpdateReviewDate)
		r.Post("/meals/{mealID}/items", h.AddItem)
		r.Put("/meals/{mealID}/skipped", h.SetMealSkipped)
		r.Delete("/items/{itemID}", h.RemoveItem)
		r.Put("/items/{itemID}/portions", h.UpdateItemPortions)
		r.Post("/archive", h.ArchivePlan)
	})
}

// CreatePlan handles POST /api/v1/clients/{clientID}/plan
func (h *PlanHandlers) CreatePlan(w http.ResponseWriter, r *http.Request) {
	clientID, ok := h.pathID(w, r, "clientID")
	if !ok {
		return
	}
	var req CreatePlanRequest
	if !h.decode(w, r, &req, true) {
		return
	}

	view, err := h.planService.CreatePlan(r.Context(), inbound.CreatePlanCommand{
		ClientID: clientID,
		Slots:    req.Slots,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusCreated, APIResponse{
		Success: true,
		Data:    view,
		Message: "Plan created successfully",
	})
}

// GetPlan handles GET /api/v1/clients/{clientID}/plan
func (h *PlanHandlers) GetPlan(w http.ResponseWriter, r *http.Request) {
	clientID, ok := h.pathID(w, r, "clientID")
	if !ok {
		return
	}

	view, err := h.planService.GetPlan(r.Context(), clientID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if view == nil {
		middleware.WriteError(w, r, errors.NewNotFoundError("Active plan"))
		return
	}

	h.writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: view})
}

// CopyDay handles POST /api/v1/plans/{planID}/days/copy
func (h *PlanHandlers) CopyDay(w http.ResponseWriter, r *http.Request) {
	planID, ok := h.pathID(w, r, "planID")
	if !ok {
		return
	}
	var req CopyDayRequest
	if !h.decode(w, r, &req, false) {
		return
	}

	err := h.planService.CopyDay(r.Context(), inbound.CopyDayCommand{
		PlanID:      planID,
		SourceDayID: uuid.MustParse(req.SourceDayID),
		TargetDayID: uuid.MustParse(req.TargetDayID),
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusOK, APIResponse{Success: true, Message: "Day copied successfully"})
}

// UpdateReviewDate handles PUT /api/v1/plans/{planID}/review-date
func (h *PlanHandlers) UpdateReviewDate(w http.ResponseWriter, r *http.Request) {
	planID, ok := h.pathID(w, r, "planID")
	if !ok {
		return
	}
	var req ReviewDateRequest
	if !h.decode(w, r, &req, false) {
		return
	}

	var date *time.Time
	if req.ReviewDate != nil {
		parsed, err := time.Parse("2006-01-02", *req.ReviewDate)
		if err != nil {
			middleware.WriteError(w, r, errors.NewValidationError("review_date must be YYYY-MM-DD"))
			return
		}
		date = &parsed
	}

	if err := h.planService.UpdateReviewDate(r.Context(), planID, date); err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusOK, APIResponse{Success: true, Message: "Review date updated"})
}

// AddItem handles POST /api/v1/plans/{planID}/meals/{mealID}/items
func (h *PlanHandlers) AddItem(w http.ResponseWriter, r *http.Request) {
	planID, ok := h.pathID(w, r, "planID")
	if !ok {
		return
	}
	mealID, ok := h.pathID(w, r, "mealID")
	if !ok {
		return
	}
	var req AddItemRequest
	if !h.decode(w, r, &req, false) {
		return
	}

	cmd := inbound.AddItemCommand{
		PlanID:       planID,
		MealID:       mealID,
		CustomName:   req.CustomName,
		NameOverride: req.NameOverride,
		Portions:     req.Portions,
	}
	if req.RecipeID != nil {
		id := uuid.MustParse(*req.RecipeID)
		cmd.RecipeID = &id
	}

	ref, err := h.planService.AddItem(r.Context(), cmd)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusCreated, APIResponse{
		Success: true,
		Data:    ref,
		Message: "Item added successfully",
	})
}

// RemoveItem handles DELETE /api/v1/plans/{planID}/items/{itemID}
func (h *PlanHandlers) RemoveItem(w http.ResponseWriter, r *http.Request) {
	planID, ok := h.pathID(w, r, "planID")
	if !ok {
		return
	}
	itemID, ok := h.pathID(w, r, "itemID")
	if !ok {
		return
	}

	if err := h.planService.RemoveItem(r.Context(), planID, itemID); err != nil {
		h.writeError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// UpdateItemPortions handles PUT /api/v1/plans/{planID}/items/{itemID}/portions
func (h *PlanHandlers) UpdateItemPortions(w http.ResponseWriter, r *http.Request) {
	planID, ok := h.pathID(w, r, "planID")
	if !ok {
		return
	}
	itemID, ok := h.pathID(w, r, "itemID")
	if !ok {
		return
	}
	var req PortionsRequest
	if !h.decode(w, r, &req, false) {
		return
	}

	if err := h.planService.UpdateItemPortions(r.Context(), planID, itemID, req.Portions); err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusOK, APIResponse{Success: true, Message: "Portions updated"})
}

// SetMealSkipped handles PUT /api/v1/plans/{planID}/meals/{mealID}/skipped
func (h *PlanHandlers) SetMealSkipped(w http.ResponseWriter, r *http.Request) {
	planID, ok := h.pathID(w, r, "planID")
	if !ok {
		return
	}
	mealID, ok := h.pathID(w, r, "mealID")
	if !ok {
		return
	}
	var req SkippedRequest
	if !h.decode(w, r, &req, false) {
		return
	}

	if err := h.planService.SetMealSkipped(r.Context(), planID, mealID, req.Skipped); err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusOK, APIResponse{Success: true, Message: "Meal updated"})
}

// ArchivePlan handles POST /api/v1/plans/{planID}/archive
func (h *PlanHandlers) ArchivePlan(w http.ResponseWriter, r *http.Request) {
	planID, ok := h.pathID(w, r, "planID")
	if !ok {
		return
	}

	if err := h.planService.ArchivePlan(r.Context(), planID); err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusOK, APIResponse{Success: true, Message: "Plan archived"})
}

func (h *PlanHandlers) pathID(w http.ResponseWriter, r *http.Request, param string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, param))
	if err != nil {
		middleware.WriteError(w, r, errors.NewBadRequestError(fmt.Sprintf("invalid %s", param)))
		return uuid.Nil, false
	}
	return id, true
}

// decode reads and validates a JSON body. An empty body is accepted only
// when allowEmpty is set.
func (h *PlanHandlers) decode(w http.ResponseWriter, r *http.Request, dst interface{}, allowEmpty bool) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		if !(allowEmpty && stderrors.Is(err, io.EOF)) {
			middleware.WriteError(w, r, errors.NewBadRequestError("malformed JSON body").WithCause(err))
			return false
		}
	}

	if err := h.validate.Struct(dst); err != nil {
		middleware.WriteError(w, r, errors.NewValidationError(err.Error()))
		return false
	}
	return true
}

func (h *PlanHandlers) writeError(w http.ResponseWriter, r *http.Request, err error) {
	appErr := errors.Wrap(err, "Internal server error")
	if appErr.StatusCode() >= http.StatusInternalServerError {
		h.logger.Error("Request failed",
			zap.String("code", string(errors.GetCode(err))),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
	}
	middleware.WriteError(w, r, appErr)
}

// writeJSON writes a JSON response
func (h *PlanHandlers) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("Failed to encode JSON response", zap.Error(err))
	}
}

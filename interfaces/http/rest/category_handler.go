// Package rest exposes the service operations over HTTP with chi.
package rest

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"notekeeper/internal/service/content"
	"notekeeper/pkg/common"
	"notekeeper/pkg/validation"
)

const maxBodyBytes = 1 << 20

// CategoryHandler serves the category routes.
type CategoryHandler struct {
	service content.Service
	logger  *zap.Logger
}

// NewCategoryHandler creates a category handler.
func NewCategoryHandler(service content.Service, logger *zap.Logger) *CategoryHandler {
	return &CategoryHandler{service: service, logger: logger}
}

type categoryRequest struct {
	Title       string `json:"title" validate:"required,min=1,max=200"`
	Description string `json:"description" validate:"required,min=1,max=2000"`
}

// List handles GET /content/categories.
func (h *CategoryHandler) List(w http.ResponseWriter, r *http.Request) {
	categories, err := h.service.ListCategories(r.Context())
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"message":    "Fetched categories successfully.",
		"categories": categories,
	})
}

// Create handles POST /content/category.
func (h *CategoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if err := common.ParseJSONBody(r, &req, maxBodyBytes); err != nil {
		common.RespondJSON(w, http.StatusBadRequest, common.ErrorEnvelope{Message: "invalid request body"})
		return
	}
	if err := validation.ValidateStruct(req); err != nil {
		common.RespondError(w, err)
		return
	}

	category, err := h.service.CreateCategory(r.Context(), req.Title, req.Description)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	common.RespondJSON(w, http.StatusCreated, map[string]interface{}{
		"message":  "Category created successfully!",
		"category": category,
	})
}

// Get handles GET /content/category/{categoryId}. The body pairs the notes
// with the category id; an existing category with zero notes answers with an
// empty list.
func (h *CategoryHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "categoryId")

	result, err := h.service.GetCategory(r.Context(), id)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"message":  "Fetched notes.",
		"notes":    result.Notes,
		"category": result.CategoryID,
	})
}

// Edit handles PUT /content/category/{categoryId}.
func (h *CategoryHandler) Edit(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "categoryId")

	var req categoryRequest
	if err := common.ParseJSONBody(r, &req, maxBodyBytes); err != nil {
		common.RespondJSON(w, http.StatusBadRequest, common.ErrorEnvelope{Message: "invalid request body"})
		return
	}
	if err := validation.ValidateStruct(req); err != nil {
		common.RespondError(w, err)
		return
	}

	category, err := h.service.EditCategory(r.Context(), id, req.Title, req.Description)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"message":  "Updated category and notes",
		"category": category,
	})
}

// Delete handles DELETE /content/category/{categoryId}. Success answers 201,
// matching the established client contract.
func (h *CategoryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "categoryId")

	if err := h.service.DeleteCategory(r.Context(), id); err != nil {
		h.respondError(w, r, err)
		return
	}
	common.RespondJSON(w, http.StatusCreated, map[string]interface{}{
		"message": "Category and notes deleted",
	})
}

func (h *CategoryHandler) respondError(w http.ResponseWriter, r *http.Request, err error) {
	h.logger.Error("category request failed",
		zap.String("path", r.URL.Path),
		zap.Error(err),
	)
	common.RespondError(w, err)
}

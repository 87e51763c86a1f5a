package rest

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"notekeeper/internal/service/content"
	"notekeeper/pkg/common"
	"notekeeper/pkg/validation"
)

// NoteHandler serves the note routes.
type NoteHandler struct {
	service content.Service
	logger  *zap.Logger
}

// NewNoteHandler creates a note handler.
func NewNoteHandler(service content.Service, logger *zap.Logger) *NoteHandler {
	return &NoteHandler{service: service, logger: logger}
}

type createNoteRequest struct {
	Title         string   `json:"title" validate:"required,min=1,max=200"`
	Text          string   `json:"text" validate:"required,min=1"`
	CategoryTitle string   `json:"categoryTitle" validate:"required,min=1"`
	Tags          []string `json:"tags"`
}

type editNoteRequest struct {
	Title string   `json:"title" validate:"required,min=1,max=200"`
	Text  string   `json:"text" validate:"required,min=1"`
	Tags  []string `json:"tags"`
}

// List handles GET /content/notes with optional page, sort, order and tags
// query parameters.
func (h *NoteHandler) List(w http.ResponseWriter, r *http.Request) {
	query := content.ListNotesQuery{
		Page:  1,
		Sort:  r.URL.Query().Get("sort"),
		Order: r.URL.Query().Get("order"),
		Tags:  r.URL.Query().Get("tags"),
	}
	if raw := r.URL.Query().Get("page"); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil || page < 1 {
			common.RespondJSON(w, http.StatusUnprocessableEntity, common.ErrorEnvelope{
				Message: "page must be a positive integer",
			})
			return
		}
		query.Page = page
	}

	notes, err := h.service.ListNotes(r.Context(), query)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Fetched notes successfully.",
		"notes":   notes,
	})
}

// Create handles POST /content/note. The owning category is resolved by its
// title and the authenticated user becomes the note's creator.
func (h *NoteHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createNoteRequest
	if err := common.ParseJSONBody(r, &req, maxBodyBytes); err != nil {
		common.RespondJSON(w, http.StatusBadRequest, common.ErrorEnvelope{Message: "invalid request body"})
		return
	}
	if err := validation.ValidateStruct(req); err != nil {
		common.RespondError(w, err)
		return
	}

	creatorID, _ := common.GetUserID(r.Context())
	note, err := h.service.CreateNote(r.Context(), req.Title, req.Text, req.CategoryTitle, req.Tags, creatorID)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	common.RespondJSON(w, http.StatusCreated, map[string]interface{}{
		"message": "Note created successfully!",
		"note":    note,
	})
}

// Get handles GET /content/note/{noteId}.
func (h *NoteHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "noteId")

	note, err := h.service.GetNote(r.Context(), id)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Fetched note.",
		"note":    note,
	})
}

// Edit handles PUT /content/note/{noteId}.
func (h *NoteHandler) Edit(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "noteId")

	var req editNoteRequest
	if err := common.ParseJSONBody(r, &req, maxBodyBytes); err != nil {
		common.RespondJSON(w, http.StatusBadRequest, common.ErrorEnvelope{Message: "invalid request body"})
		return
	}
	if err := validation.ValidateStruct(req); err != nil {
		common.RespondError(w, err)
		return
	}

	note, err := h.service.EditNote(r.Context(), id, req.Title, req.Text, req.Tags)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Updated note",
		"note":    note,
	})
}

// Delete handles DELETE /content/note/{noteId}.
func (h *NoteHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "noteId")
	requesterID, _ := common.GetUserID(r.Context())

	if err := h.service.DeleteNote(r.Context(), id, requesterID); err != nil {
		h.respondError(w, r, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Deleted note.",
	})
}

func (h *NoteHandler) respondError(w http.ResponseWriter, r *http.Request, err error) {
	h.logger.Error("note request failed",
		zap.String("path", r.URL.Path),
		zap.Error(err),
	)
	common.RespondError(w, err)
}

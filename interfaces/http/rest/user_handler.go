package rest

import (
	"net/http"

	"go.uber.org/zap"

	"notekeeper/internal/service/user"
	"notekeeper/pkg/common"
	"notekeeper/pkg/validation"
)

// UserHandler serves the unauthenticated account routes.
type UserHandler struct {
	service user.Service
	logger  *zap.Logger
}

// NewUserHandler creates a user handler.
func NewUserHandler(service user.Service, logger *zap.Logger) *UserHandler {
	return &UserHandler{service: service, logger: logger}
}

type signupRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Username string `json:"username" validate:"required,min=1,max=100"`
	Password string `json:"password" validate:"required,min=5"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Signup handles PUT /user/signup.
func (h *UserHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := common.ParseJSONBody(r, &req, maxBodyBytes); err != nil {
		common.RespondJSON(w, http.StatusBadRequest, common.ErrorEnvelope{Message: "invalid request body"})
		return
	}
	if err := validation.ValidateStruct(req); err != nil {
		common.RespondError(w, err)
		return
	}

	created, err := h.service.Signup(r.Context(), req.Email, req.Username, req.Password)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	common.RespondJSON(w, http.StatusCreated, map[string]interface{}{
		"message": "User created!",
		"userId":  created.ID,
	})
}

// Login handles POST /user/login.
func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := common.ParseJSONBody(r, &req, maxBodyBytes); err != nil {
		common.RespondJSON(w, http.StatusBadRequest, common.ErrorEnvelope{Message: "invalid request body"})
		return
	}
	if err := validation.ValidateStruct(req); err != nil {
		common.RespondError(w, err)
		return
	}

	session, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"token":  session.Token,
		"userId": session.UserID,
	})
}

func (h *UserHandler) respondError(w http.ResponseWriter, r *http.Request, err error) {
	h.logger.Error("user request failed",
		zap.String("path", r.URL.Path),
		zap.Error(err),
	)
	common.RespondError(w, err)
}

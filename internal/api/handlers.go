package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/scopedev/scopepad/internal/apperr"
	"github.com/scopedev/scopepad/internal/auth"
	"github.com/scopedev/scopepad/internal/core"
	"github.com/scopedev/scopepad/internal/metrics"
	"github.com/scopedev/scopepad/internal/runner"
)

type APIHandler struct {
	identityService *core.IdentityService
	fileService     *core.FileService
	targetService   *core.TargetService
	authService     *auth.Service
	codeRunner      runner.Runner // nil when no interpreter is configured
	logger          zerolog.Logger
}

func NewAPIHandler(identity *core.IdentityService, files *core.FileService, targets *core.TargetService, tokens *auth.Service, codeRunner runner.Runner, logger zerolog.Logger) *APIHandler {
	return &APIHandler{
		identityService: identity,
		fileService:     files,
		targetService:   targets,
		authService:     tokens,
		codeRunner:      codeRunner,
		logger:          logger,
	}
}

// resourceID parses the {id} URL segment. Malformed input is rejected
// before any lookup or mutation happens.
func resourceID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}

func (h *APIHandler) LoginHandler(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respond(w, r, http.StatusBadRequest, &LogResponse{Log: "Invalid request body."})
		return
	}
	if err := req.Validate(); err != nil {
		h.respond(w, r, http.StatusBadRequest, &LogResponse{Log: err.Error()})
		return
	}

	user, err := h.identityService.Authenticate(r.Context(), req.Username, req.Password)
	if err != nil {
		if !errors.Is(err, apperr.ErrUnauthorized) {
			h.logger.Error().Err(err).Msg("login failed")
		}
		h.respond(w, r, http.StatusUnauthorized, &LogResponse{Log: "Invalid login credentials"})
		return
	}

	token, err := h.authService.GenerateToken(user.ID)
	if err != nil {
		h.logger.Error().Err(err).Int64("user_id", user.ID).Msg("failed to generate token")
		h.respond(w, r, http.StatusInternalServerError, &LogResponse{Log: "internal error"})
		return
	}

	h.respond(w, r, http.StatusOK, &LoginResponse{Username: user.Username, AccessToken: token})
}

func (h *APIHandler) NewUserHandler(w http.ResponseWriter, r *http.Request) {
	var req NewUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respond(w, r, http.StatusBadRequest, &LogResponse{Log: "Invalid request body."})
		return
	}
	if err := req.Validate(); err != nil {
		h.respond(w, r, http.StatusBadRequest, &LogResponse{Log: err.Error()})
		return
	}

	if _, err := h.identityService.Register(r.Context(), req.Username, req.Password); err != nil {
		if errors.Is(err, apperr.ErrAlreadyExists) {
			h.respond(w, r, http.StatusUnauthorized, &LogResponse{Log: "user already exists."})
			return
		}
		h.logger.Error().Err(err).Msg("failed to create user")
		h.respond(w, r, http.StatusInternalServerError, &LogResponse{Log: "internal error"})
		return
	}

	metrics.UsersRegistered.Inc()
	h.respond(w, r, http.StatusOK, &LogResponse{Log: "user created successfully."})
}

func (h *APIHandler) NewFileHandler(w http.ResponseWriter, r *http.Request) {
	user, _ := userFrom(r.Context())

	var req NewFileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respond(w, r, http.StatusBadRequest, &LogResponse{Log: "Invalid request body."})
		return
	}
	if err := req.Validate(); err != nil {
		h.respond(w, r, http.StatusBadRequest, &LogResponse{Log: err.Error()})
		return
	}

	file, err := h.fileService.CreateFile(r.Context(), user.ID, req.Title, req.Code)
	if err != nil {
		h.logger.Error().Err(err).Int64("user_id", user.ID).Msg("failed to create file")
		h.respond(w, r, http.StatusInternalServerError, &LogResponse{Log: "internal error"})
		return
	}

	metrics.FilesSaved.Inc()
	view := newFileView(*file)
	h.respond(w, r, http.StatusOK, &FileResponse{File: &view})
}

func (h *APIHandler) FetchFilesHandler(w http.ResponseWriter, r *http.Request) {
	user, _ := userFrom(r.Context())

	files, err := h.fileService.ListFiles(r.Context(), user.ID)
	if err != nil {
		h.logger.Error().Err(err).Int64("user_id", user.ID).Msg("failed to list files")
		h.respond(w, r, http.StatusInternalServerError, &LogResponse{Log: "internal error"})
		return
	}

	views := make([]FileView, 0, len(files))
	for _, f := range files {
		views = append(views, newFileView(f))
	}
	h.respond(w, r, http.StatusOK, &FileListResponse{Files: views})
}

func (h *APIHandler) GetFileHandler(w http.ResponseWriter, r *http.Request) {
	user, _ := userFrom(r.Context())
	id, err := resourceID(r)
	if err != nil {
		h.respond(w, r, http.StatusBadRequest, &LogResponse{Log: "Malformed file id."})
		return
	}

	file, err := h.fileService.GetFile(r.Context(), user.ID, id)
	if err != nil {
		h.fileError(w, r, user.ID, id, err)
		return
	}
	view := newFileView(*file)
	h.respond(w, r, http.StatusOK, &FileResponse{File: &view})
}

func (h *APIHandler) UpdateFileHandler(w http.ResponseWriter, r *http.Request) {
	user, _ := userFrom(r.Context())
	id, err := resourceID(r)
	if err != nil {
		h.respond(w, r, http.StatusBadRequest, &LogResponse{Log: "Malformed file id."})
		return
	}

	var req UpdateFileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respond(w, r, http.StatusBadRequest, &LogResponse{Log: "Invalid request body."})
		return
	}

	if err := h.fileService.UpdateFile(r.Context(), user.ID, id, req.Code); err != nil {
		h.fileError(w, r, user.ID, id, err)
		return
	}
	h.respond(w, r, http.StatusOK, &LogResponse{Log: "file updated."})
}

func (h *APIHandler) DeleteFileHandler(w http.ResponseWriter, r *http.Request) {
	user, _ := userFrom(r.Context())
	id, err := resourceID(r)
	if err != nil {
		h.respond(w, r, http.StatusBadRequest, &LogResponse{Log: "Malformed file id."})
		return
	}

	next, err := h.fileService.DeleteFile(r.Context(), user.ID, id)
	if err != nil {
		h.fileError(w, r, user.ID, id, err)
		return
	}

	resp := FileResponse{}
	if next != nil {
		view := newFileView(*next)
		resp.File = &view
	}
	h.respond(w, r, http.StatusOK, &resp)
}

func (h *APIHandler) fileError(w http.ResponseWriter, r *http.Request, userID, fileID int64, err error) {
	if errors.Is(err, apperr.ErrNotFound) {
		h.respond(w, r, http.StatusUnauthorized, &LogResponse{Log: "File does not exist."})
		return
	}
	h.logger.Error().Err(err).Int64("user_id", userID).Int64("file_id", fileID).Msg("file operation failed")
	h.respond(w, r, http.StatusInternalServerError, &LogResponse{Log: "internal error"})
}

func (h *APIHandler) NewTargetHandler(w http.ResponseWriter, r *http.Request) {
	user, _ := userFrom(r.Context())

	var req NewTargetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respond(w, r, http.StatusBadRequest, &LogResponse{Log: "Invalid request body."})
		return
	}
	if err := req.Validate(); err != nil {
		h.respond(w, r, http.StatusBadRequest, &LogResponse{Log: err.Error()})
		return
	}

	detail, err := h.targetService.CreateTarget(r.Context(), user, req.Name)
	if err != nil {
		if errors.Is(err, apperr.ErrUnknownUser) {
			h.respond(w, r, http.StatusUnauthorized, &LogResponse{Log: "User does not exist."})
			return
		}
		h.logger.Error().Err(err).Int64("user_id", user.ID).Msg("failed to create target")
		h.respond(w, r, http.StatusInternalServerError, &LogResponse{Log: "internal error"})
		return
	}

	view := newTargetView(*detail)
	h.respond(w, r, http.StatusOK, &TargetResponse{Target: &view})
}

func (h *APIHandler) FetchTargetsHandler(w http.ResponseWriter, r *http.Request) {
	user, _ := userFrom(r.Context())

	details, err := h.targetService.ListTargets(r.Context(), user.ID)
	if err != nil {
		h.logger.Error().Err(err).Int64("user_id", user.ID).Msg("failed to list targets")
		h.respond(w, r, http.StatusInternalServerError, &LogResponse{Log: "internal error"})
		return
	}

	views := make([]TargetView, 0, len(details))
	for _, d := range details {
		views = append(views, newTargetView(d))
	}
	h.respond(w, r, http.StatusOK, &TargetListResponse{Targets: views})
}

func (h *APIHandler) GetTargetHandler(w http.ResponseWriter, r *http.Request) {
	user, _ := userFrom(r.Context())
	id, err := resourceID(r)
	if err != nil {
		h.respond(w, r, http.StatusBadRequest, &LogResponse{Log: "Malformed target id."})
		return
	}

	detail, err := h.targetService.GetTarget(r.Context(), user.ID, id)
	if err != nil {
		h.targetError(w, r, user.ID, id, err)
		return
	}
	view := newTargetView(*detail)
	h.respond(w, r, http.StatusOK, &TargetResponse{Target: &view})
}

func (h *APIHandler) SendMessageHandler(w http.ResponseWriter, r *http.Request) {
	user, _ := userFrom(r.Context())
	id, err := resourceID(r)
	if err != nil {
		h.respond(w, r, http.StatusBadRequest, &LogResponse{Log: "Malformed target id."})
		return
	}

	var req SendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respond(w, r, http.StatusBadRequest, &LogResponse{Log: "Invalid request body."})
		return
	}
	if err := req.Validate(); err != nil {
		h.respond(w, r, http.StatusBadRequest, &LogResponse{Log: err.Error()})
		return
	}

	detail, err := h.targetService.SendMessage(r.Context(), user, id, req.Name, req.Text, req.Title, req.Code)
	if err != nil {
		if errors.Is(err, apperr.ErrUnknownUser) {
			h.respond(w, r, http.StatusUnauthorized, &LogResponse{Log: "User does not exist."})
			return
		}
		h.targetError(w, r, user.ID, id, err)
		return
	}

	metrics.MessagesSent.Inc()
	view := newTargetView(*detail)
	h.respond(w, r, http.StatusOK, &TargetResponse{Target: &view})
}

func (h *APIHandler) DeleteTargetHandler(w http.ResponseWriter, r *http.Request) {
	user, _ := userFrom(r.Context())
	id, err := resourceID(r)
	if err != nil {
		h.respond(w, r, http.StatusBadRequest, &LogResponse{Log: "Malformed target id."})
		return
	}

	next, err := h.targetService.DeleteTarget(r.Context(), user.ID, id)
	if err != nil {
		h.targetError(w, r, user.ID, id, err)
		return
	}

	resp := TargetResponse{}
	if next != nil {
		view := newTargetView(*next)
		resp.Target = &view
	}
	h.respond(w, r, http.StatusOK, &resp)
}

func (h *APIHandler) targetError(w http.ResponseWriter, r *http.Request, userID, targetID int64, err error) {
	if errors.Is(err, apperr.ErrNotFound) {
		h.respond(w, r, http.StatusUnauthorized, &LogResponse{Log: "unknown message target."})
		return
	}
	h.logger.Error().Err(err).Int64("user_id", userID).Int64("target_id", targetID).Msg("target operation failed")
	h.respond(w, r, http.StatusInternalServerError, &LogResponse{Log: "internal error"})
}

// RunHandler forwards a client-parsed program to the interpreter service.
// Parse failures reported by the client short-circuit without a round trip.
func (h *APIHandler) RunHandler(w http.ResponseWriter, r *http.Request) {
	var req RunRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respond(w, r, http.StatusBadRequest, &LogResponse{Log: "Invalid request body."})
		return
	}

	if req.Kind != "ok" {
		h.respond(w, r, http.StatusOK, &RunResponse{Kind: "error", Output: req.Message})
		return
	}

	if h.codeRunner == nil {
		h.respond(w, r, http.StatusServiceUnavailable, &LogResponse{Log: "code execution is not configured."})
		return
	}

	result, err := h.codeRunner.Execute(r.Context(), req.Value)
	if err != nil {
		h.logger.Error().Err(err).Msg("code execution failed")
		h.respond(w, r, http.StatusInternalServerError, &LogResponse{Log: "internal error"})
		return
	}
	h.respond(w, r, http.StatusOK, &RunResponse{Kind: result.Kind, Output: result.Output})
}

package handler

import (
	"errors"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/BuzzLyutic/task-board/internal/model"
	"github.com/BuzzLyutic/task-board/internal/service"
	"github.com/BuzzLyutic/task-board/pkg/respond"
)

// maxBodyBytes caps a PUT body; the whole board travels in one request.
const maxBodyBytes = 4 << 20

type TaskHandler struct {
	service *service.TaskService
	logger  *zap.Logger
}

func NewTaskHandler(srv *service.TaskService, logger *zap.Logger) *TaskHandler {
	return &TaskHandler{
		service: srv,
		logger:  logger,
	}
}

// List отдает весь документ; ошибки чтения превращаются в пустой список
func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	tasks := h.service.List(r.Context())
	respond.JSON(w, r, http.StatusOK, model.Document{Tasks: tasks})
}

func (h *TaskHandler) Replace(w http.ResponseWriter, r *http.Request) {
	if r.ContentLength == 0 {
		respond.Error(w, r, http.StatusBadRequest, "empty request body")
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		h.logger.Error("failed to read body", zap.Error(err))
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respond.Error(w, r, http.StatusRequestEntityTooLarge, "request body too large")
			return
		}
		respond.Error(w, r, http.StatusBadRequest, "failed to read request body")
		return
	}

	tasks, err := h.service.Replace(r.Context(), body)
	if err != nil {
		h.handleErrors(w, r, err)
		return
	}

	h.logger.Debug("tasks replaced", zap.Int("count", len(tasks)))
	respond.JSON(w, r, http.StatusOK, model.Document{Tasks: tasks})
}

func (h *TaskHandler) handleErrors(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, service.ErrValidation):
		respond.Error(w, r, http.StatusBadRequest, err.Error())
	default:
		h.logger.Error("internal error", zap.Error(err))
		respond.Error(w, r, http.StatusInternalServerError, "failed to save tasks")
	}
}

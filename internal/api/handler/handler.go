package handler

import (
	"log/slog"

	"github.com/jfarango/user-upload-be/internal/api/storage"
	"github.com/jfarango/user-upload-be/internal/config"
	"github.com/jfarango/user-upload-be/internal/importer"
	"github.com/jfarango/user-upload-be/internal/ws"
	"github.com/jfarango/user-upload-be/shared/postgresql"
)

// Dependencies holds all dependencies needed by handlers
type Dependencies struct {
	Logger   *slog.Logger
	DBClient *postgresql.Client
	Registry *ws.Registry
	Import   config.ImportConfig
}

// UserHandler handles user CRUD requests
type UserHandler struct {
	logger  *slog.Logger
	storage *storage.Storage
}

// NewUserHandler creates a new UserHandler instance
func NewUserHandler(deps *Dependencies) *UserHandler {
	return &UserHandler{
		logger:  deps.Logger,
		storage: storage.NewStorage(deps.DBClient),
	}
}

// UploadHandler handles Excel validation, preview, upload and history requests
type UploadHandler struct {
	logger         *slog.Logger
	storage        *storage.Storage
	runner         *importer.Runner
	maxPreviewRows int
}

// NewUploadHandler creates a new UploadHandler instance. The import runner
// shares the handler's storage but runs on its own detached context.
func NewUploadHandler(deps *Dependencies) *UploadHandler {
	st := storage.NewStorage(deps.DBClient)

	runner := importer.NewRunner(&importer.Config{
		Logger:   deps.Logger,
		Users:    st,
		Uploads:  st,
		Progress: deps.Registry,
		RowDelay: deps.Import.RowDelay,
	})

	return &UploadHandler{
		logger:         deps.Logger,
		storage:        st,
		runner:         runner,
		maxPreviewRows: deps.Import.MaxPreviewRows,
	}
}

// ProgressHandler upgrades progress-channel connections and feeds the registry
type ProgressHandler struct {
	logger   *slog.Logger
	registry *ws.Registry
}

// NewProgressHandler creates a new ProgressHandler instance
func NewProgressHandler(deps *Dependencies) *ProgressHandler {
	return &ProgressHandler{
		logger:   deps.Logger,
		registry: deps.Registry,
	}
}

package http

import (
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/thevgergroup/notion-wp-sub002/internal/database"
)

// HealthResponse reports service liveness and the state of the stores the
// sync path depends on.
type HealthResponse struct {
	Status  string            `json:"status"`
	Time    string            `json:"time"`
	Version string            `json:"version,omitempty"`
	Checks  map[string]string `json:"checks"`
}

type HealthController struct {
	db       *database.Database
	mediaDir string
	version  string
}

func NewHealthController(db *database.Database, mediaDir, version string) *HealthController {
	return &HealthController{
		db:       db,
		mediaDir: mediaDir,
		version:  version,
	}
}

func (h *HealthController) Status(c *gin.Context) {
	checks := make(map[string]string)
	status := "healthy"

	// Sync state store connectivity
	if h.db != nil {
		sqlDB, err := h.db.DB.DB()
		if err != nil {
			checks["database"] = "error: " + err.Error()
			status = "unhealthy"
		} else if err := sqlDB.Ping(); err != nil {
			checks["database"] = "error: " + err.Error()
			status = "unhealthy"
		} else {
			checks["database"] = "ok"
		}
	} else {
		checks["database"] = "not configured"
	}

	// Mirrored media directory must exist for downloads and serving
	if h.mediaDir != "" {
		if info, err := os.Stat(h.mediaDir); err != nil {
			checks["media_dir"] = "error: " + err.Error()
			status = "unhealthy"
		} else if !info.IsDir() {
			checks["media_dir"] = "error: not a directory"
			status = "unhealthy"
		} else {
			checks["media_dir"] = "ok"
		}
	}

	health := HealthResponse{
		Status:  status,
		Time:    time.Now().Format(time.RFC3339),
		Version: h.version,
		Checks:  checks,
	}

	statusCode := http.StatusOK
	if status != "healthy" {
		statusCode = http.StatusServiceUnavailable
	}
	c.JSON(statusCode, health)
}

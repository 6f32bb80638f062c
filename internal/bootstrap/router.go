package bootstrap

import (
	"fmt"
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	httpapi "github.com/projectkeeper/project-keeper/internal/api/http"
	"github.com/projectkeeper/project-keeper/internal/api/http/middleware"
	projecthttp "github.com/projectkeeper/project-keeper/internal/projects/http"
	"github.com/projectkeeper/project-keeper/internal/projects/service"
	"github.com/projectkeeper/project-keeper/internal/projects/views"
)

// LocalFilesPath is where on-disk attachments are served.
const LocalFilesPath = "/files"

type RouterDeps struct {
	ServiceName string
	Version     string
	CORSOrigins []string
	MaxUploadMB int
	Stores      *Stores
}

func BuildRouter(dep RouterDeps) (*gin.Engine, error) {
	r := gin.Default()
	r.Use(middleware.RequestIDMiddleware())
	r.MaxMultipartMemory = int64(dep.MaxUploadMB) << 20

	tmpl, err := views.Templates()
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	r.SetHTMLTemplate(tmpl)

	healthHandler := httpapi.NewHealthHandler(dep.ServiceName, dep.Version, dep.Stores.Records)
	healthHandler.RegisterRoutes(r)

	if dep.Stores.LocalBlobDir != "" {
		r.StaticFS(LocalFilesPath, http.Dir(dep.Stores.LocalBlobDir))
	}

	projects := service.NewProjectService(dep.Stores.Records, dep.Stores.Blobs)
	editor := service.NewEditor(projects, dep.Stores.Drafts)

	views.New(projects, editor, dep.MaxUploadMB).Register(r)

	api := r.Group("/api/v1")
	api.Use(cors.New(corsConfig(dep.CORSOrigins)))
	// preflight requests only reach the cors middleware through a matching route
	api.OPTIONS("/*path", func(c *gin.Context) { c.Status(http.StatusNoContent) })
	projecthttp.New(projects, editor, dep.MaxUploadMB).Register(api.Group("/projects"))

	return r, nil
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", middleware.HeaderRequestID},
		ExposeHeaders: []string{middleware.HeaderRequestID},
	}
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		cfg.AllowAllOrigins = true
		return cfg
	}
	cfg.AllowOrigins = origins
	return cfg
}

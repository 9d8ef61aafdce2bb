package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"flowledger/internal/auth"
	"flowledger/internal/services"
	"flowledger/pkg/models"
)

// Server holds the dependencies for the API server.
type Server struct {
	Versions services.Versioner
}

// NewServer creates a new Server.
func NewServer(versions services.Versioner) *Server {
	return &Server{Versions: versions}
}

// Register mounts the versioning routes on the given group.
func (s *Server) Register(g *echo.Group) {
	g.POST("/workflows/:id/versions", s.CreateVersion)
	g.GET("/workflows/:id/version", s.GetCurrentVersion)
	g.GET("/workflows/:id/versions", s.GetVersionHistory)
	g.GET("/workflows/:id/versions/export", s.ExportVersionHistory)
	g.GET("/workflows/:id/versions/compare", s.CompareVersions)
	g.POST("/workflows/:id/rollback", s.RollbackToVersion)
}

// CreateVersionRequest is the payload for creating a new workflow version.
type CreateVersionRequest struct {
	Definition  models.WorkflowDefinition `json:"definition"`
	ChangeType  models.ChangeType         `json:"change_type"`
	Description string                    `json:"description"`
	Breaking    bool                      `json:"breaking"`
	Tags        []string                  `json:"tags,omitempty"`
}

// RollbackRequest is the payload for rolling a workflow back to a version.
type RollbackRequest struct {
	TargetVersion string `json:"target_version"`
	Reason        string `json:"reason"`
}

// CreateVersion creates and activates the next version of a workflow
// (POST /api/v1/workflows/:id/versions)
func (s *Server) CreateVersion(c echo.Context) error {
	ctx := c.Request().Context()

	var req CreateVersionRequest
	if err := c.Bind(&req); err != nil {
		return problem(c, http.StatusBadRequest, "Invalid Request Body", err.Error())
	}
	// The path parameter names the workflow; the body must agree or be silent.
	if req.Definition.ID == "" {
		req.Definition.ID = c.Param("id")
	} else if req.Definition.ID != c.Param("id") {
		return problem(c, http.StatusBadRequest, "Invalid Request Body", "definition id does not match path")
	}
	switch req.ChangeType {
	case models.ChangeTypeMajor, models.ChangeTypeMinor, models.ChangeTypePatch:
	default:
		return problem(c, http.StatusBadRequest, "Invalid Request Body", "change_type must be major, minor, or patch")
	}

	version, err := s.Versions.CreateVersion(ctx, &req.Definition, models.ChangeRequest{
		ChangeType:  req.ChangeType,
		Description: req.Description,
		Breaking:    req.Breaking,
		Tags:        req.Tags,
	}, auth.Actor(ctx))
	if err != nil {
		return problemFor(c, err)
	}
	return c.JSON(http.StatusCreated, version)
}

// GetCurrentVersion returns the active version and its snapshot
// (GET /api/v1/workflows/:id/version)
func (s *Server) GetCurrentVersion(c echo.Context) error {
	current, err := s.Versions.GetCurrentVersion(c.Request().Context(), c.Param("id"))
	if err != nil {
		return problemFor(c, err)
	}
	if current == nil {
		return problem(c, http.StatusNotFound, "Workflow Not Found", "no versions exist for workflow "+c.Param("id"))
	}
	return c.JSON(http.StatusOK, current)
}

// GetVersionHistory returns all versions, newest first
// (GET /api/v1/workflows/:id/versions)
func (s *Server) GetVersionHistory(c echo.Context) error {
	history, err := s.Versions.GetVersionHistory(c.Request().Context(), c.Param("id"))
	if err != nil {
		return problemFor(c, err)
	}
	return c.JSON(http.StatusOK, history)
}

// ExportVersionHistory returns the full history as a JSON document
// (GET /api/v1/workflows/:id/versions/export)
func (s *Server) ExportVersionHistory(c echo.Context) error {
	raw, err := s.Versions.ExportVersionHistory(c.Request().Context(), c.Param("id"))
	if err != nil {
		return problemFor(c, err)
	}
	return c.Blob(http.StatusOK, echo.MIMEApplicationJSON, raw)
}

// CompareVersions diffs two historical versions
// (GET /api/v1/workflows/:id/versions/compare?from=1.0.0&to=2.0.0)
func (s *Server) CompareVersions(c echo.Context) error {
	from, to := c.QueryParam("from"), c.QueryParam("to")
	if from == "" || to == "" {
		return problem(c, http.StatusBadRequest, "Invalid Request", "from and to query parameters are required")
	}

	result, err := s.Versions.CompareVersions(c.Request().Context(), c.Param("id"), from, to)
	if err != nil {
		return problemFor(c, err)
	}
	return c.JSON(http.StatusOK, result)
}

// RollbackToVersion appends a new version carrying a historical snapshot
// (POST /api/v1/workflows/:id/rollback)
func (s *Server) RollbackToVersion(c echo.Context) error {
	ctx := c.Request().Context()

	var req RollbackRequest
	if err := c.Bind(&req); err != nil {
		return problem(c, http.StatusBadRequest, "Invalid Request Body", err.Error())
	}
	if req.TargetVersion == "" {
		return problem(c, http.StatusBadRequest, "Invalid Request Body", "target_version is required")
	}

	def, err := s.Versions.RollbackToVersion(ctx, c.Param("id"), req.TargetVersion, req.Reason, auth.Actor(ctx))
	if err != nil {
		return problemFor(c, err)
	}
	return c.JSON(http.StatusOK, def)
}

// problemFor writes an RFC 7807 response for an engine error.
func problemFor(c echo.Context, err error) error {
	status, title := statusFor(err)
	return problem(c, status, title, err.Error())
}

func problem(c echo.Context, status int, title, detail string) error {
	c.Response().Header().Set(echo.HeaderContentType, "application/problem+json")
	return c.JSON(status, ProblemDetails{
		Type:     "about:blank",
		Title:    title,
		Status:   status,
		Detail:   detail,
		Instance: c.Request().URL.Path,
	})
}

package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/CuraLab-Diagnostics/service-booking/internal/application"
	"github.com/CuraLab-Diagnostics/service-booking/pkg/auth"
	"github.com/CuraLab-Diagnostics/service-booking/pkg/middleware"
	"github.com/CuraLab-Diagnostics/service-booking/pkg/response"
)

// PackageHandler handles HTTP requests for the test catalog.
type PackageHandler struct {
	service *application.PackageService
}

// NewPackageHandler creates a new PackageHandler.
func NewPackageHandler(service *application.PackageService) *PackageHandler {
	return &PackageHandler{service: service}
}

// RegisterRoutes registers catalog routes. Listing is public so the booking
// form can render without a session; management is admin-only.
func (h *PackageHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	r.GET("/api/v1/packages", h.ListPackages)
	r.GET("/api/v1/packages/:id", h.GetPackage)

	authMW := middleware.AuthMiddleware(jwtManager)
	adminRole := middleware.RequireRole(auth.RoleAdmin)

	admin := r.Group("/api/v1/admin/packages")
	admin.Use(authMW, adminRole)
	{
		admin.GET("", h.ListAllPackages)
		admin.POST("", h.CreatePackage)
		admin.PUT("/:id", h.UpdatePackage)
		admin.DELETE("/:id", h.DeactivatePackage)
	}
}

// ListPackages handles GET /api/v1/packages.
func (h *PackageHandler) ListPackages(c *gin.Context) {
	packages, err := h.service.ListPackages(c.Request.Context(), false)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, packages)
}

// GetPackage handles GET /api/v1/packages/:id.
func (h *PackageHandler) GetPackage(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid package ID")
		return
	}

	pkg, err := h.service.GetPackage(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, pkg)
}

// ListAllPackages handles GET /api/v1/admin/packages.
func (h *PackageHandler) ListAllPackages(c *gin.Context) {
	packages, err := h.service.ListPackages(c.Request.Context(), true)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, packages)
}

// CreatePackage handles POST /api/v1/admin/packages.
func (h *PackageHandler) CreatePackage(c *gin.Context) {
	var req application.CreatePackageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	pkg, err := h.service.CreatePackage(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, pkg)
}

// UpdatePackage handles PUT /api/v1/admin/packages/:id.
func (h *PackageHandler) UpdatePackage(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid package ID")
		return
	}

	var req application.UpdatePackageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	pkg, err := h.service.UpdatePackage(c.Request.Context(), id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, pkg)
}

// DeactivatePackage handles DELETE /api/v1/admin/packages/:id.
func (h *PackageHandler) DeactivatePackage(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid package ID")
		return
	}

	pkg, err := h.service.DeactivatePackage(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, pkg)
}

package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"hospital-admin-server/internal/models"
	"hospital-admin-server/internal/utils"
)

// DepartmentHandler handles department management (admin operations).
type DepartmentHandler struct {
	DB *gorm.DB
}

// NewDepartmentHandler creates a new DepartmentHandler.
func NewDepartmentHandler(db *gorm.DB) *DepartmentHandler {
	return &DepartmentHandler{DB: db}
}

// DepartmentRequest represents the request body for creating or
// updating a department.
type DepartmentRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

// CreateDepartment handles creating a new department.
func (h *DepartmentHandler) CreateDepartment(c *gin.Context) {
	var req DepartmentRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	var existing models.Department
	if err := h.DB.Where("name = ?", req.Name).First(&existing).Error; err == nil {
		utils.Conflict(c, "A department with this name already exists")
		return
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		utils.InternalServerError(c, "Database error: "+err.Error())
		return
	}

	dept := models.Department{Name: req.Name, Description: req.Description}
	if err := h.DB.Create(&dept).Error; err != nil {
		utils.InternalServerError(c, "Failed to create department: "+err.Error())
		return
	}

	utils.Created(c, "Department created successfully", dept)
}

// GetDepartments handles fetching all departments.
func (h *DepartmentHandler) GetDepartments(c *gin.Context) {
	var departments []models.Department
	if err := h.DB.Order("name ASC").Find(&departments).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch departments: "+err.Error())
		return
	}
	utils.Success(c, "Departments fetched successfully", departments)
}

// GetDepartmentByID handles fetching a single department.
func (h *DepartmentHandler) GetDepartmentByID(c *gin.Context) {
	var dept models.Department
	if err := h.DB.First(&dept, "id = ?", c.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.NotFound(c, "Department not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}
	utils.Success(c, "Department fetched successfully", dept)
}

// UpdateDepartment handles updating a department.
func (h *DepartmentHandler) UpdateDepartment(c *gin.Context) {
	var dept models.Department
	if err := h.DB.First(&dept, "id = ?", c.Param("id")).Error; err != nil {
		utils.NotFound(c, "Department not found")
		return
	}

	var req DepartmentRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	dept.Name = req.Name
	dept.Description = req.Description
	if err := h.DB.Save(&dept).Error; err != nil {
		utils.InternalServerError(c, "Failed to update department: "+err.Error())
		return
	}

	utils.Success(c, "Department updated successfully", dept)
}

// DeleteDepartment handles deleting a department. Departments with
// registered staff cannot be removed.
func (h *DepartmentHandler) DeleteDepartment(c *gin.Context) {
	deptID := c.Param("id")

	var staffCount int64
	if err := h.DB.Model(&models.User{}).Where("department_id = ?", deptID).Count(&staffCount).Error; err != nil {
		utils.InternalServerError(c, "Database error: "+err.Error())
		return
	}
	if staffCount > 0 {
		utils.Conflict(c, "Department still has assigned staff")
		return
	}

	if err := h.DB.Delete(&models.Department{}, "id = ?", deptID).Error; err != nil {
		utils.InternalServerError(c, "Failed to delete department: "+err.Error())
		return
	}

	utils.Success(c, "Department deleted successfully", nil)
}

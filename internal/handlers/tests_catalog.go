package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"hospital-admin-server/internal/models"
	"hospital-admin-server/internal/utils"
)

// TestCatalogHandler manages the TestType/TestSubtype catalog.
type TestCatalogHandler struct {
	DB *gorm.DB
}

// NewTestCatalogHandler creates a new TestCatalogHandler.
func NewTestCatalogHandler(db *gorm.DB) *TestCatalogHandler {
	return &TestCatalogHandler{DB: db}
}

// TestTypeRequest represents the request body for a test type.
type TestTypeRequest struct {
	Name         string `json:"name" binding:"required"`
	DepartmentID string `json:"departmentId"`
}

// CreateTestType handles creating a test type.
func (h *TestCatalogHandler) CreateTestType(c *gin.Context) {
	var req TestTypeRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	tt := models.TestType{Name: req.Name, DepartmentID: req.DepartmentID}
	if err := h.DB.Create(&tt).Error; err != nil {
		utils.InternalServerError(c, "Failed to create test type: "+err.Error())
		return
	}
	utils.Created(c, "Test type created successfully", tt)
}

// GetTestTypes lists test types with their subtypes, optionally by department.
func (h *TestCatalogHandler) GetTestTypes(c *gin.Context) {
	query := h.DB.Preload("Subtypes")
	if deptID := c.Query("departmentId"); deptID != "" {
		query = query.Where("department_id = ?", deptID)
	}

	var types []models.TestType
	if err := query.Order("name ASC").Find(&types).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch test types: "+err.Error())
		return
	}
	utils.Success(c, "Test types fetched successfully", types)
}

// UpdateTestType handles renaming or reassigning a test type.
func (h *TestCatalogHandler) UpdateTestType(c *gin.Context) {
	var tt models.TestType
	if err := h.DB.First(&tt, "id = ?", c.Param("id")).Error; err != nil {
		utils.NotFound(c, "Test type not found")
		return
	}

	var req TestTypeRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	tt.Name = req.Name
	if req.DepartmentID != "" {
		tt.DepartmentID = req.DepartmentID
	}
	if err := h.DB.Save(&tt).Error; err != nil {
		utils.InternalServerError(c, "Failed to update test type: "+err.Error())
		return
	}
	utils.Success(c, "Test type updated successfully", tt)
}

// DeleteTestType removes a test type and its subtypes.
func (h *TestCatalogHandler) DeleteTestType(c *gin.Context) {
	id := c.Param("id")
	if err := h.DB.Delete(&models.TestSubtype{}, "test_type_id = ?", id).Error; err != nil {
		utils.InternalServerError(c, "Failed to delete subtypes: "+err.Error())
		return
	}
	if err := h.DB.Delete(&models.TestType{}, "id = ?", id).Error; err != nil {
		utils.InternalServerError(c, "Failed to delete test type: "+err.Error())
		return
	}
	utils.Success(c, "Test type deleted successfully", nil)
}

// TestSubtypeRequest represents the request body for a test subtype.
type TestSubtypeRequest struct {
	TestTypeID string  `json:"testTypeId" binding:"required,uuid"`
	Name       string  `json:"name" binding:"required"`
	Price      float64 `json:"price"`
}

// CreateTestSubtype handles creating a concrete orderable test.
func (h *TestCatalogHandler) CreateTestSubtype(c *gin.Context) {
	var req TestSubtypeRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	var tt models.TestType
	if err := h.DB.First(&tt, "id = ?", req.TestTypeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.NotFound(c, "Test type not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	sub := models.TestSubtype{TestTypeID: req.TestTypeID, Name: req.Name, Price: req.Price}
	if err := h.DB.Create(&sub).Error; err != nil {
		utils.InternalServerError(c, "Failed to create test subtype: "+err.Error())
		return
	}
	utils.Created(c, "Test subtype created successfully", sub)
}

// DeleteTestSubtype removes a test subtype.
func (h *TestCatalogHandler) DeleteTestSubtype(c *gin.Context) {
	if err := h.DB.Delete(&models.TestSubtype{}, "id = ?", c.Param("id")).Error; err != nil {
		utils.InternalServerError(c, "Failed to delete test subtype: "+err.Error())
		return
	}
	utils.Success(c, "Test subtype deleted successfully", nil)
}

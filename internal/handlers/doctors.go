package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"hospital-admin-server/internal/models"
	"hospital-admin-server/internal/utils"
)

// DoctorHandler handles doctor record management. Doctor records are
// created by the ensure-doctor bootstrap procedure, not here; this
// handler lists and edits them.
type DoctorHandler struct {
	DB *gorm.DB
}

// NewDoctorHandler creates a new DoctorHandler.
func NewDoctorHandler(db *gorm.DB) *DoctorHandler {
	return &DoctorHandler{DB: db}
}

// GetDoctors handles fetching doctor records, optionally by department.
func (h *DoctorHandler) GetDoctors(c *gin.Context) {
	query := h.DB
	if deptID := c.Query("departmentId"); deptID != "" {
		query = query.Where("department_id = ?", deptID)
	}

	var doctors []models.DoctorRecord
	if err := query.Order("name ASC").Find(&doctors).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch doctors: "+err.Error())
		return
	}
	utils.Success(c, "Doctors fetched successfully", doctors)
}

// GetDoctorByID handles fetching a single doctor record.
func (h *DoctorHandler) GetDoctorByID(c *gin.Context) {
	var doctor models.DoctorRecord
	if err := h.DB.First(&doctor, "id = ?", c.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.NotFound(c, "Doctor not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}
	utils.Success(c, "Doctor fetched successfully", doctor)
}

// UpdateDoctorRequest represents the request body for updating a doctor record.
type UpdateDoctorRequest struct {
	Name           string `json:"name"`
	DepartmentID   string `json:"departmentId"`
	Specialization string `json:"specialization"`
	Phone          string `json:"phone"`
}

// UpdateDoctor handles updating a doctor record.
func (h *DoctorHandler) UpdateDoctor(c *gin.Context) {
	var doctor models.DoctorRecord
	if err := h.DB.First(&doctor, "id = ?", c.Param("id")).Error; err != nil {
		utils.NotFound(c, "Doctor not found")
		return
	}

	var req UpdateDoctorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid request payload: "+err.Error())
		return
	}

	if req.Name != "" {
		doctor.Name = req.Name
	}
	if req.DepartmentID != "" {
		doctor.DepartmentID = req.DepartmentID
	}
	if req.Specialization != "" {
		doctor.Specialization = req.Specialization
	}
	if req.Phone != "" {
		doctor.Phone = req.Phone
	}

	if err := h.DB.Save(&doctor).Error; err != nil {
		utils.InternalServerError(c, "Failed to update doctor: "+err.Error())
		return
	}

	utils.Success(c, "Doctor updated successfully", doctor)
}

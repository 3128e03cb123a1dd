package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"

	"hospital-admin-server/internal/middleware"
	"hospital-admin-server/internal/models"
	"hospital-admin-server/internal/utils"
)

// PatientHandler handles patient registration and lookup.
type PatientHandler struct {
	DB *gorm.DB
}

// NewPatientHandler creates a new PatientHandler.
func NewPatientHandler(db *gorm.DB) *PatientHandler {
	return &PatientHandler{DB: db}
}

// RegisterPatientRequest represents the request body for registering a patient.
type RegisterPatientRequest struct {
	RegistrationNumber string `json:"registrationNumber" binding:"required"`
	Name               string `json:"name" binding:"required"`
	Gender             string `json:"gender"`
	DateOfBirth        string `json:"dateOfBirth"`
	Phone              string `json:"phone"`
	Address            string `json:"address"`
	DepartmentID       string `json:"departmentId"`
	DoctorID           string `json:"doctorId"`
}

// RegisterPatient handles registering a new patient.
func (h *PatientHandler) RegisterPatient(c *gin.Context) {
	var req RegisterPatientRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	registeredBy, _ := middleware.GetPrincipalID(c)

	var existing models.Patient
	if err := h.DB.Where("registration_number = ?", req.RegistrationNumber).First(&existing).Error; err == nil {
		utils.Conflict(c, "A patient with this registration number already exists")
		return
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		utils.InternalServerError(c, "Database error: "+err.Error())
		return
	}

	patient := models.Patient{
		RegistrationNumber: req.RegistrationNumber,
		Name:               req.Name,
		Gender:             req.Gender,
		Phone:              req.Phone,
		Address:            req.Address,
		DepartmentID:       req.DepartmentID,
		DoctorID:           req.DoctorID,
		RegisteredByID:     registeredBy,
	}
	if req.DateOfBirth != "" {
		dob, err := time.Parse("2006-01-02", req.DateOfBirth)
		if err != nil {
			utils.BadRequest(c, "Invalid dateOfBirth, expected YYYY-MM-DD")
			return
		}
		patient.DateOfBirth = &dob
	}

	if err := h.DB.Create(&patient).Error; err != nil {
		utils.InternalServerError(c, "Failed to register patient: "+err.Error())
		return
	}

	utils.Created(c, "Patient registered successfully", patient)
}

// GetPatients handles listing patients with optional filters.
func (h *PatientHandler) GetPatients(c *gin.Context) {
	query := h.DB
	if deptID := c.Query("departmentId"); deptID != "" {
		query = query.Where("department_id = ?", deptID)
	}
	if regNo := c.Query("registrationNumber"); regNo != "" {
		query = query.Where("registration_number = ?", regNo)
	}
	if name := c.Query("name"); name != "" {
		query = query.Where("name LIKE ?", "%"+name+"%")
	}

	var patients []models.Patient
	if err := query.Order("created_at DESC").Find(&patients).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch patients: "+err.Error())
		return
	}
	utils.Success(c, "Patients fetched successfully", patients)
}

// GetPatientByID handles fetching a single patient.
func (h *PatientHandler) GetPatientByID(c *gin.Context) {
	var patient models.Patient
	if err := h.DB.First(&patient, "id = ?", c.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.NotFound(c, "Patient not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}
	utils.Success(c, "Patient fetched successfully", patient)
}

// UpdatePatientRequest represents the request body for updating a patient.
type UpdatePatientRequest struct {
	Name         string `json:"name"`
	Gender       string `json:"gender"`
	Phone        string `json:"phone"`
	Address      string `json:"address"`
	DepartmentID string `json:"departmentId"`
	DoctorID     string `json:"doctorId"`
}

// UpdatePatient handles updating a patient.
func (h *PatientHandler) UpdatePatient(c *gin.Context) {
	var patient models.Patient
	if err := h.DB.First(&patient, "id = ?", c.Param("id")).Error; err != nil {
		utils.NotFound(c, "Patient not found")
		return
	}

	var req UpdatePatientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid request payload: "+err.Error())
		return
	}

	if req.Name != "" {
		patient.Name = req.Name
	}
	if req.Gender != "" {
		patient.Gender = req.Gender
	}
	if req.Phone != "" {
		patient.Phone = req.Phone
	}
	if req.Address != "" {
		patient.Address = req.Address
	}
	if req.DepartmentID != "" {
		patient.DepartmentID = req.DepartmentID
	}
	if req.DoctorID != "" {
		patient.DoctorID = req.DoctorID
	}

	if err := h.DB.Save(&patient).Error; err != nil {
		utils.InternalServerError(c, "Failed to update patient: "+err.Error())
		return
	}

	utils.Success(c, "Patient updated successfully", patient)
}

// GetAssignedPatients lists the patients assigned to the calling doctor.
func (h *PatientHandler) GetAssignedPatients(c *gin.Context) {
	principalID, ok := middleware.GetPrincipalID(c)
	if !ok {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	var record models.DoctorRecord
	if err := h.DB.Where("user_id = ?", principalID).First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.NotFound(c, "No doctor record for this account")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	var patients []models.Patient
	if err := h.DB.Where("doctor_id = ?", record.ID).Order("created_at DESC").Find(&patients).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch patients: "+err.Error())
		return
	}
	utils.Success(c, "Patients fetched successfully", patients)
}

// ExportPatients streams the patient register as an xlsx workbook.
func (h *PatientHandler) ExportPatients(c *gin.Context) {
	query := h.DB
	if deptID := c.Query("departmentId"); deptID != "" {
		query = query.Where("department_id = ?", deptID)
	}

	var patients []models.Patient
	if err := query.Order("registration_number ASC").Find(&patients).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch patients: "+err.Error())
		return
	}

	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Patients"
	f.SetSheetName("Sheet1", sheet)
	header := []interface{}{"Registration No", "Name", "Gender", "Date of Birth", "Phone", "Address", "Registered At"}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		utils.InternalServerError(c, "Failed to build export: "+err.Error())
		return
	}

	for i, p := range patients {
		dob := ""
		if p.DateOfBirth != nil {
			dob = p.DateOfBirth.Format("2006-01-02")
		}
		row := []interface{}{
			p.RegistrationNumber, p.Name, p.Gender, dob,
			p.Phone, p.Address, p.CreatedAt.Format(time.RFC3339),
		}
		cell := fmt.Sprintf("A%d", i+2)
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			utils.InternalServerError(c, "Failed to build export: "+err.Error())
			return
		}
	}

	c.Header("Content-Disposition", `attachment; filename="patients.xlsx"`)
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	if err := f.Write(c.Writer); err != nil {
		c.Status(http.StatusInternalServerError)
	}
}

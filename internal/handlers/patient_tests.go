package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"hospital-admin-server/internal/middleware"
	"hospital-admin-server/internal/models"
	"hospital-admin-server/internal/utils"
)

// PatientTestHandler handles ordering tests for patients and moving
// them through their status lifecycle.
type PatientTestHandler struct {
	DB *gorm.DB
}

// NewPatientTestHandler creates a new PatientTestHandler.
func NewPatientTestHandler(db *gorm.DB) *PatientTestHandler {
	return &PatientTestHandler{DB: db}
}

// OrderTestRequest represents the request body for ordering a test.
type OrderTestRequest struct {
	PatientID     string `json:"patientId" binding:"required,uuid"`
	TestSubtypeID string `json:"testSubtypeId" binding:"required,uuid"`
	Notes         string `json:"notes"`
}

// OrderTest handles ordering a test for a patient.
func (h *PatientTestHandler) OrderTest(c *gin.Context) {
	var req OrderTestRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	orderedBy, _ := middleware.GetPrincipalID(c)

	var patient models.Patient
	if err := h.DB.First(&patient, "id = ?", req.PatientID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.NotFound(c, "Patient not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	var subtype models.TestSubtype
	if err := h.DB.First(&subtype, "id = ?", req.TestSubtypeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.NotFound(c, "Test subtype not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	order := models.PatientTest{
		PatientID:     req.PatientID,
		TestSubtypeID: req.TestSubtypeID,
		Status:        models.TestStatusOrdered,
		OrderedByID:   orderedBy,
		Notes:         req.Notes,
	}
	if err := h.DB.Create(&order).Error; err != nil {
		utils.InternalServerError(c, "Failed to order test: "+err.Error())
		return
	}

	utils.Created(c, "Test ordered successfully", order)
}

// GetTestsForPatient lists the ordered tests of a patient.
func (h *PatientTestHandler) GetTestsForPatient(c *gin.Context) {
	var tests []models.PatientTest
	err := h.DB.Where("patient_id = ?", c.Param("patientId")).
		Order("created_at DESC").Find(&tests).Error
	if err != nil {
		utils.InternalServerError(c, "Failed to fetch tests: "+err.Error())
		return
	}
	utils.Success(c, "Tests fetched successfully", tests)
}

// UpdateTestStatusRequest represents the status update body.
type UpdateTestStatusRequest struct {
	Status models.PatientTestStatus `json:"status" binding:"required,oneof=ordered sample_collected completed cancelled"`
}

// validTestTransitions lists the allowed status moves.
var validTestTransitions = map[models.PatientTestStatus][]models.PatientTestStatus{
	models.TestStatusOrdered:         {models.TestStatusSampleCollected, models.TestStatusCancelled},
	models.TestStatusSampleCollected: {models.TestStatusCompleted, models.TestStatusCancelled},
}

// UpdateTestStatus moves an ordered test through its lifecycle.
func (h *PatientTestHandler) UpdateTestStatus(c *gin.Context) {
	var req UpdateTestStatusRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	var order models.PatientTest
	if err := h.DB.First(&order, "id = ?", c.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.NotFound(c, "Ordered test not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	allowed := false
	for _, next := range validTestTransitions[order.Status] {
		if next == req.Status {
			allowed = true
			break
		}
	}
	if !allowed {
		utils.BadRequest(c, "Cannot move test from status "+string(order.Status)+" to "+string(req.Status))
		return
	}

	order.Status = req.Status
	if err := h.DB.Save(&order).Error; err != nil {
		utils.InternalServerError(c, "Failed to update test status: "+err.Error())
		return
	}

	utils.Success(c, "Test status updated successfully", order)
}

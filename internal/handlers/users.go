package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"hospital-admin-server/internal/auth"
	"hospital-admin-server/internal/models"
	"hospital-admin-server/internal/utils"
)

// UserHandler handles user account management (admin operations).
type UserHandler struct {
	DB  *gorm.DB
	Svc *auth.Service
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(db *gorm.DB, svc *auth.Service) *UserHandler {
	return &UserHandler{DB: db, Svc: svc}
}

// CreateUserRequest represents the request body for creating a user by an admin.
type CreateUserRequest struct {
	Email        string `json:"email" binding:"required,email"`
	Password     string `json:"password" binding:"required,min=6"`
	Username     string `json:"username" binding:"required"`
	Role         string `json:"role" binding:"required,oneof=admin doctor patient registration department"`
	DepartmentID string `json:"departmentId"`
}

// CreateUser provisions a new account on behalf of an admin. It runs
// the same provisioning flow as self sign-up, then attaches the
// department reference.
func (h *UserHandler) CreateUser(c *gin.Context) {
	var req CreateUserRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	account, err := h.Svc.SignUp(c.Request.Context(), req.Email, req.Password, req.Username, models.Role(req.Role))
	if err != nil {
		respondFlowError(c, err)
		return
	}

	if req.DepartmentID != "" {
		err := h.DB.Model(&models.User{}).
			Where("id = ?", account.ID).
			Update("department_id", req.DepartmentID).Error
		if err != nil {
			utils.InternalServerError(c, "Account created but failed to set department: "+err.Error())
			return
		}
	}

	utils.Created(c, "User created successfully", account)
}

// GetUsers handles fetching all users (admin).
func (h *UserHandler) GetUsers(c *gin.Context) {
	query := h.DB
	if role := c.Query("role"); role != "" {
		query = query.Where("role = ?", role)
	}
	if deptID := c.Query("departmentId"); deptID != "" {
		query = query.Where("department_id = ?", deptID)
	}

	var users []models.User
	if err := query.Order("created_at DESC").Find(&users).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch users: "+err.Error())
		return
	}

	sanitized := make([]models.UserSanitized, len(users))
	for i, u := range users {
		sanitized[i] = u.Sanitize()
	}

	utils.Success(c, "Users fetched successfully", sanitized)
}

// GetUserByID handles fetching a single user by ID (admin).
func (h *UserHandler) GetUserByID(c *gin.Context) {
	userID := c.Param("id")

	var user models.User
	if err := h.DB.First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.NotFound(c, "User not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}
	utils.Success(c, "User fetched successfully", user.Sanitize())
}

// UpdateUserRequest represents the request body for updating a user by an admin.
type UpdateUserRequest struct {
	Username     string `json:"username"`
	Email        string `json:"email,omitempty"`
	Role         string `json:"role,omitempty"`
	DepartmentID string `json:"departmentId,omitempty"`
}

// UpdateUser handles updating a user profile by ID (admin).
func (h *UserHandler) UpdateUser(c *gin.Context) {
	userID := c.Param("id")

	var req UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil { // partial updates
		utils.BadRequest(c, "Invalid request payload: "+err.Error())
		return
	}

	var user models.User
	if err := h.DB.First(&user, "id = ?", userID).Error; err != nil {
		utils.NotFound(c, "User not found")
		return
	}

	if req.Username != "" {
		user.Username = req.Username
	}
	if req.Email != "" && req.Email != user.Email {
		var existing models.User
		if err := h.DB.Where("email = ? AND id != ?", req.Email, user.ID).First(&existing).Error; err == nil {
			utils.Conflict(c, "New email is already in use")
			return
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			utils.InternalServerError(c, "Database error checking email: "+err.Error())
			return
		}
		user.Email = req.Email
	}
	if req.Role != "" {
		if !models.ValidRole(models.Role(req.Role)) {
			utils.BadRequest(c, "Unknown role: "+req.Role)
			return
		}
		user.Role = models.Role(req.Role)
	}
	if req.DepartmentID != "" {
		user.DepartmentID = req.DepartmentID
	}

	if err := h.DB.Save(&user).Error; err != nil {
		utils.InternalServerError(c, "Failed to update user: "+err.Error())
		return
	}

	utils.Success(c, "User updated successfully", user.Sanitize())
}

// UpdatePasswordRequest represents the admin password update body.
type UpdatePasswordRequest struct {
	Password string `json:"password" binding:"required,min=6"`
}

// UpdatePassword replaces a user's password by id (admin).
func (h *UserHandler) UpdatePassword(c *gin.Context) {
	userID := c.Param("id")

	var req UpdatePasswordRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	if err := h.Svc.UpdatePassword(c.Request.Context(), userID, req.Password); err != nil {
		respondFlowError(c, err)
		return
	}

	utils.Success(c, "Password updated successfully", nil)
}

// DeleteUser removes an account through the privileged delete
// procedure: sessions, doctor record, profile, and identity.
func (h *UserHandler) DeleteUser(c *gin.Context) {
	userID := c.Param("id")

	var user models.User
	if err := h.DB.First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.NotFound(c, "User not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	if err := h.Svc.DeleteAccount(c.Request.Context(), userID); err != nil {
		respondFlowError(c, err)
		return
	}

	utils.Success(c, "User deleted successfully", nil)
}

package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/vcscsvcscs/health-dashboard/internal/service"
	"github.com/vcscsvcscs/health-dashboard/pkg/model"
	"go.uber.org/zap"
)

// PatientHandler implements patient management endpoints
type PatientHandler struct {
	service *service.PatientService
	logger  *zap.Logger
}

// NewPatientHandler creates a new PatientHandler
func NewPatientHandler(service *service.PatientService, logger *zap.Logger) *PatientHandler {
	return &PatientHandler{
		service: service,
		logger:  logger,
	}
}

// ListPatients returns the patients matching the optional q search term
func (h *PatientHandler) ListPatients(c *gin.Context) {
	patients, err := h.service.List(c.Request.Context(), sessionOf(c), c.Query("q"))
	if err != nil {
		writeError(c, h.logger, err, "Failed to list patients")
		return
	}

	c.JSON(http.StatusOK, patients)
}

// GetPatient returns one patient
func (h *PatientHandler) GetPatient(c *gin.Context) {
	patient, err := h.service.Get(c.Request.Context(), sessionOf(c), idParam(c))
	if err != nil {
		writeError(c, h.logger, err, "Failed to get patient")
		return
	}

	c.JSON(http.StatusOK, patient)
}

// CreatePatient registers a new patient
func (h *PatientHandler) CreatePatient(c *gin.Context) {
	var input model.PatientInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, h.logger, err)
		return
	}

	patient, err := h.service.Create(c.Request.Context(), sessionOf(c), input)
	if err != nil {
		writeError(c, h.logger, err, "Failed to create patient")
		return
	}

	c.JSON(http.StatusCreated, patient)
}

// UpdatePatient replaces a patient's details
func (h *PatientHandler) UpdatePatient(c *gin.Context) {
	var input model.PatientInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, h.logger, err)
		return
	}

	patient, err := h.service.Update(c.Request.Context(), sessionOf(c), idParam(c), input)
	if err != nil {
		writeError(c, h.logger, err, "Failed to update patient")
		return
	}

	c.JSON(http.StatusOK, patient)
}

// DeletePatient removes a patient
func (h *PatientHandler) DeletePatient(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), sessionOf(c), idParam(c)); err != nil {
		writeError(c, h.logger, err, "Failed to delete patient")
		return
	}

	c.Status(http.StatusNoContent)
}

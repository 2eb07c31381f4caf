package handler

import (
	"errors"
	"io"
	"net/http"

	"grievance-app/internal/models"
	"grievance-app/internal/services"

	"github.com/gin-gonic/gin"
)

type ComplaintHandler struct {
	service *services.ComplaintService
}

func NewComplaintHandler(service *services.ComplaintService) *ComplaintHandler {
	return &ComplaintHandler{service: service}
}

func (h *ComplaintHandler) FetchCustomer(c *gin.Context) {
	profile, err := h.service.FetchCustomer(c.Request.Context(), c.Param("beneficiary_no"))
	if errors.Is(err, services.ErrCustomerNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"message": "Customer not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, profile)
}

type newComplaintRequest struct {
	BeneficiaryNo            string `json:"beneficiary_no" binding:"required"`
	Name                     string `json:"name" binding:"required"`
	Phone                    string `json:"phone" binding:"required"`
	MeterID                  string `json:"meter_id" binding:"required"`
	IssueType                string `json:"issue_type" binding:"required"`
	CustomerType             string `json:"customer_type"`
	AccountNumber            string `json:"account_number"`
	ComplaintType            string `json:"complaint_type"`
	EstimatedRestorationTime string `json:"estimated_restoration_time"`
}

func (h *ComplaintHandler) NewComplaint(c *gin.Context) {
	var req newComplaintRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}

	complaintID, err := h.service.CreateComplaint(c.Request.Context(), services.NewComplaintInput{
		BeneficiaryNo:            req.BeneficiaryNo,
		Name:                     req.Name,
		Phone:                    req.Phone,
		MeterID:                  req.MeterID,
		IssueType:                req.IssueType,
		CustomerType:             req.CustomerType,
		AccountNumber:            req.AccountNumber,
		ComplaintType:            models.ChannelType(req.ComplaintType),
		EstimatedRestorationTime: req.EstimatedRestorationTime,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"complaint_id": complaintID})
}

type closeComplaintRequest struct {
	ResolutionNote string `json:"resolution_note"`
}

func (h *ComplaintHandler) CloseComplaint(c *gin.Context) {
	var req closeComplaintRequest
	// тело с одним необязательным полем; пустое тело допустимо
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}

	err := h.service.CloseComplaint(c.Request.Context(), c.Param("complaint_id"), req.ResolutionNote)
	if errors.Is(err, services.ErrComplaintNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"message": "Complaint not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Complaint closed and SMS sent"})
}

func (h *ComplaintHandler) PendingComplaints(c *gin.Context) {
	result, err := h.service.PendingComplaints(c.Request.Context(), c.Param("beneficiary_no"))
	if errors.Is(err, services.ErrCustomerNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"message": "Customer not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if len(result.Pending) == 0 {
		c.JSON(http.StatusOK, gin.H{"message": "No pending complaints"})
		return
	}

	items := make([]gin.H, 0, len(result.Pending))
	for _, p := range result.Pending {
		items = append(items, gin.H{
			"complaint_id":               p.ComplaintID,
			"issue_type":                 p.IssueType,
			"status":                     p.Status,
			"created_at":                 p.CreatedAt,
			"estimated_restoration_time": p.EstimatedRestorationTime,
		})
	}
	c.JSON(http.StatusOK, gin.H{
		"message":            "Pending complaints found.",
		"summary_text":       result.SummaryText,
		"pending_complaints": items,
	})
}

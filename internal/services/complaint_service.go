package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"grievance-app/internal/models"
	"grievance-app/internal/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

var (
	ErrCustomerNotFound  = errors.New("customer not found")
	ErrComplaintNotFound = errors.New("complaint not found")
)

type CustomerRepository interface {
	Insert(ctx context.Context, customer *models.Customer) error
	FindByBeneficiaryNo(ctx context.Context, beneficiaryNo string) (*models.Customer, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Customer, error)
	FindByCredentials(ctx context.Context, beneficiaryNo, accountNumber string) (*models.Customer, error)
}

type ComplaintRepository interface {
	Insert(ctx context.Context, complaint *models.Complaint) error
	FindByComplaintID(ctx context.Context, complaintID string) (*models.Complaint, error)
	FindByCustomer(ctx context.Context, customerID primitive.ObjectID) ([]models.Complaint, error)
	FindByCustomerAndStatus(ctx context.Context, customerID primitive.ObjectID, status models.ComplaintStatus) ([]models.Complaint, error)
	Close(ctx context.Context, complaintID, note string, at time.Time) error
}

type TextSender interface {
	SendText(ctx context.Context, to, body string) error
}

type ComplaintService struct {
	customers  CustomerRepository
	complaints ComplaintRepository
	sender     TextSender
}

func NewComplaintService(customers CustomerRepository, complaints ComplaintRepository, sender TextSender) *ComplaintService {
	return &ComplaintService{customers: customers, complaints: complaints, sender: sender}
}

type ComplaintSummary struct {
	ComplaintID              string                 `json:"complaint_id"`
	IssueType                string                 `json:"issue_type"`
	Status                   models.ComplaintStatus `json:"status"`
	EstimatedRestorationTime string                 `json:"estimated_restoration_time"`
}

type CustomerProfile struct {
	Name          string             `json:"name"`
	Phone         string             `json:"phone"`
	CustomerType  string             `json:"customer_type"`
	AccountNumber string             `json:"account_number"`
	MeterID       string             `json:"meter_id"`
	Complaints    []ComplaintSummary `json:"complaints"`
}

// FetchCustomer возвращает профиль и жалобы, статус которых не "resolved"
// (сравнение без учета регистра, в отличие от PendingComplaints).
func (s *ComplaintService) FetchCustomer(ctx context.Context, beneficiaryNo string) (*CustomerProfile, error) {
	customer, err := s.customers.FindByBeneficiaryNo(ctx, beneficiaryNo)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrCustomerNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find customer: %w", err)
	}

	all, err := s.complaints.FindByCustomer(ctx, customer.ID)
	if err != nil {
		return nil, fmt.Errorf("list complaints: %w", err)
	}

	summaries := make([]ComplaintSummary, 0, len(all))
	for _, c := range all {
		if strings.ToLower(string(c.Status)) == "resolved" {
			continue
		}
		summaries = append(summaries, ComplaintSummary{
			ComplaintID:              c.ComplaintID,
			IssueType:                c.IssueType,
			Status:                   c.Status,
			EstimatedRestorationTime: c.EstimatedRestorationTime,
		})
	}

	return &CustomerProfile{
		Name:          customer.Name,
		Phone:         customer.Phone,
		CustomerType:  customer.CustomerType,
		AccountNumber: customer.AccountNumber,
		MeterID:       customer.MeterID,
		Complaints:    summaries,
	}, nil
}

type NewComplaintInput struct {
	BeneficiaryNo            string
	Name                     string
	Phone                    string
	MeterID                  string
	CustomerType             string
	AccountNumber            string
	IssueType                string
	ComplaintType            models.ChannelType
	EstimatedRestorationTime string
}

// CreateComplaint заводит клиента при первом обращении и всегда создает новую жалобу.
// Проигрыш гонки на вставке клиента не ошибка: дубль по beneficiary_no означает,
// что параллельный запрос успел первым, и мы просто перечитываем запись.
func (s *ComplaintService) CreateComplaint(ctx context.Context, in NewComplaintInput) (string, error) {
	customer, err := s.customers.FindByBeneficiaryNo(ctx, in.BeneficiaryNo)
	switch {
	case errors.Is(err, mongo.ErrNoDocuments):
		customer = &models.Customer{
			BeneficiaryNo: in.BeneficiaryNo,
			Name:          in.Name,
			Phone:         in.Phone,
			CustomerType:  in.CustomerType,
			AccountNumber: in.AccountNumber,
			MeterID:       in.MeterID,
		}
		if insertErr := s.customers.Insert(ctx, customer); insertErr != nil {
			if !mongo.IsDuplicateKeyError(insertErr) {
				return "", fmt.Errorf("create customer: %w", insertErr)
			}
			customer, err = s.customers.FindByBeneficiaryNo(ctx, in.BeneficiaryNo)
			if err != nil {
				return "", fmt.Errorf("refetch customer: %w", err)
			}
		}
	case err != nil:
		return "", fmt.Errorf("find customer: %w", err)
	}

	complaint := &models.Complaint{
		ComplaintID:              utils.GenComplaintID(),
		CustomerID:               customer.ID,
		IssueType:                in.IssueType,
		ComplaintType:            in.ComplaintType,
		EstimatedRestorationTime: in.EstimatedRestorationTime,
	}
	if err := s.complaints.Insert(ctx, complaint); err != nil {
		return "", fmt.Errorf("create complaint: %w", err)
	}
	return complaint.ComplaintID, nil
}

// CloseComplaint помечает жалобу решенной и шлет SMS клиенту.
// Здесь сбой доставки фатален и возвращается вызывающему.
func (s *ComplaintService) CloseComplaint(ctx context.Context, complaintID, note string) error {
	complaint, err := s.complaints.FindByComplaintID(ctx, complaintID)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrComplaintNotFound
	}
	if err != nil {
		return fmt.Errorf("find complaint: %w", err)
	}

	if err := s.complaints.Close(ctx, complaintID, note, time.Now().UTC()); err != nil {
		return fmt.Errorf("close complaint: %w", err)
	}

	customer, err := s.customers.FindByID(ctx, complaint.CustomerID)
	if err != nil {
		return fmt.Errorf("find complaint owner: %w", err)
	}

	body := fmt.Sprintf("Your complaint %s has been resolved.", complaintID)
	if err := s.sender.SendText(ctx, customer.Phone, body); err != nil {
		return fmt.Errorf("notify customer: %w", err)
	}
	return nil
}

type PendingResult struct {
	SummaryText string
	Pending     []models.Complaint
}

// PendingComplaints возвращает жалобы со статусом строго "Open" и при
// непустом списке отправляет одну сводную SMS.
func (s *ComplaintService) PendingComplaints(ctx context.Context, beneficiaryNo string) (*PendingResult, error) {
	customer, err := s.customers.FindByBeneficiaryNo(ctx, beneficiaryNo)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrCustomerNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find customer: %w", err)
	}

	pending, err := s.complaints.FindByCustomerAndStatus(ctx, customer.ID, models.StatusOpen)
	if err != nil {
		return nil, fmt.Errorf("list pending complaints: %w", err)
	}
	if len(pending) == 0 {
		return &PendingResult{}, nil
	}

	lines := []string{fmt.Sprintf("Complaint Summary for %s:", customer.Name)}
	for _, c := range pending {
		eta := c.EstimatedRestorationTime
		if eta == "" {
			eta = "Not Available"
		}
		lines = append(lines, fmt.Sprintf("- ID: %s, Issue: %s, Created: %s, ETA: %s",
			c.ComplaintID, c.IssueType, c.CreatedAt.Format("02-Jan-2006"), eta))
	}
	summary := strings.Join(lines, "\n")

	if err := s.sender.SendText(ctx, customer.Phone, summary); err != nil {
		return nil, fmt.Errorf("send summary sms: %w", err)
	}

	return &PendingResult{SummaryText: summary, Pending: pending}, nil
}

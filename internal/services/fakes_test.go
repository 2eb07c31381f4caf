package services

import (
	"context"
	"time"

	"grievance-app/internal/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// In-memory двойники репозиториев; повторяют контракт mongo-слоя,
// включая mongo.ErrNoDocuments и уникальность beneficiary_no.

type fakeCustomerRepo struct {
	customers []*models.Customer
	// findMisses заставляет FindByBeneficiaryNo промахнуться первые N раз,
	// имитируя гонку двух первых обращений одного клиента.
	findMisses int
}

func (f *fakeCustomerRepo) Insert(ctx context.Context, customer *models.Customer) error {
	for _, existing := range f.customers {
		if existing.BeneficiaryNo == customer.BeneficiaryNo {
			return mongo.WriteException{WriteErrors: []mongo.WriteError{{Code: 11000}}}
		}
	}
	customer.ID = primitive.NewObjectID()
	clone := *customer
	f.customers = append(f.customers, &clone)
	return nil
}

func (f *fakeCustomerRepo) FindByBeneficiaryNo(ctx context.Context, beneficiaryNo string) (*models.Customer, error) {
	if f.findMisses > 0 {
		f.findMisses--
		return nil, mongo.ErrNoDocuments
	}
	for _, c := range f.customers {
		if c.BeneficiaryNo == beneficiaryNo {
			clone := *c
			return &clone, nil
		}
	}
	return nil, mongo.ErrNoDocuments
}

func (f *fakeCustomerRepo) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Customer, error) {
	for _, c := range f.customers {
		if c.ID == id {
			clone := *c
			return &clone, nil
		}
	}
	return nil, mongo.ErrNoDocuments
}

func (f *fakeCustomerRepo) FindByCredentials(ctx context.Context, beneficiaryNo, accountNumber string) (*models.Customer, error) {
	for _, c := range f.customers {
		if c.BeneficiaryNo == beneficiaryNo && c.AccountNumber == accountNumber {
			clone := *c
			return &clone, nil
		}
	}
	return nil, mongo.ErrNoDocuments
}

type fakeComplaintRepo struct {
	complaints []*models.Complaint
}

func (f *fakeComplaintRepo) Insert(ctx context.Context, complaint *models.Complaint) error {
	complaint.ID = primitive.NewObjectID()
	if complaint.Status == "" {
		complaint.Status = models.StatusOpen
	}
	if complaint.ComplaintType == "" {
		complaint.ComplaintType = models.ChannelText
	}
	complaint.CreatedAt = time.Now().UTC()
	clone := *complaint
	f.complaints = append(f.complaints, &clone)
	return nil
}

func (f *fakeComplaintRepo) FindByComplaintID(ctx context.Context, complaintID string) (*models.Complaint, error) {
	for _, c := range f.complaints {
		if c.ComplaintID == complaintID {
			clone := *c
			return &clone, nil
		}
	}
	return nil, mongo.ErrNoDocuments
}

func (f *fakeComplaintRepo) FindByCustomer(ctx context.Context, customerID primitive.ObjectID) ([]models.Complaint, error) {
	var result []models.Complaint
	for _, c := range f.complaints {
		if c.CustomerID == customerID {
			result = append(result, *c)
		}
	}
	return result, nil
}

func (f *fakeComplaintRepo) FindByCustomerAndStatus(ctx context.Context, customerID primitive.ObjectID, status models.ComplaintStatus) ([]models.Complaint, error) {
	var result []models.Complaint
	for _, c := range f.complaints {
		if c.CustomerID == customerID && c.Status == status {
			result = append(result, *c)
		}
	}
	return result, nil
}

func (f *fakeComplaintRepo) Close(ctx context.Context, complaintID, note string, at time.Time) error {
	for _, c := range f.complaints {
		if c.ComplaintID == complaintID {
			c.Status = models.StatusResolved
			resolvedAt := at
			c.ResolvedAt = &resolvedAt
			c.ResolutionNote = note
			return nil
		}
	}
	return mongo.ErrNoDocuments
}

type sentText struct {
	to   string
	body string
}

type fakeSender struct {
	sent []sentText
	err  error
}

func (f *fakeSender) SendText(ctx context.Context, to, body string) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, sentText{to: to, body: body})
	return nil
}

package repository

import (
	"context"
	"time"

	"grievance-app/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type ComplaintRepository struct {
	col *mongo.Collection
}

func NewComplaintRepository(db *mongo.Database) *ComplaintRepository {
	return &ComplaintRepository{col: db.Collection("complaints")}
}

func (r *ComplaintRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "complaint_id", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}

func (r *ComplaintRepository) Insert(ctx context.Context, complaint *models.Complaint) error {
	complaint.ID = primitive.NewObjectID()
	if complaint.Status == "" {
		complaint.Status = models.StatusOpen
	}
	if complaint.ComplaintType == "" {
		complaint.ComplaintType = models.ChannelText
	}
	complaint.CreatedAt = time.Now().UTC()
	_, err := r.col.InsertOne(ctx, complaint)
	return err
}

func (r *ComplaintRepository) FindByComplaintID(ctx context.Context, complaintID string) (*models.Complaint, error) {
	var complaint models.Complaint
	err := r.col.FindOne(ctx, bson.M{"complaint_id": complaintID}).Decode(&complaint)
	if err != nil {
		return nil, err
	}
	return &complaint, nil
}

func (r *ComplaintRepository) FindByCustomer(ctx context.Context, customerID primitive.ObjectID) ([]models.Complaint, error) {
	cursor, err := r.col.Find(ctx, bson.M{"customer_id": customerID})
	if err != nil {
		return nil, err
	}
	var result []models.Complaint
	err = cursor.All(ctx, &result)
	return result, err
}

// FindByCustomerAndStatus фильтрует по точному значению статуса (с учетом регистра).
func (r *ComplaintRepository) FindByCustomerAndStatus(ctx context.Context, customerID primitive.ObjectID, status models.ComplaintStatus) ([]models.Complaint, error) {
	cursor, err := r.col.Find(ctx, bson.M{"customer_id": customerID, "status": status})
	if err != nil {
		return nil, err
	}
	var result []models.Complaint
	err = cursor.All(ctx, &result)
	return result, err
}

// Close переводит жалобу в Resolved и проставляет отметку и примечание.
// Повторное закрытие перезаписывает note и resolved_at.
func (r *ComplaintRepository) Close(ctx context.Context, complaintID, note string, at time.Time) error {
	res, err := r.col.UpdateOne(ctx, bson.M{"complaint_id": complaintID}, bson.M{
		"$set": bson.M{
			"status":          models.StatusResolved,
			"resolved_at":     at,
			"resolution_note": note,
		},
	})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

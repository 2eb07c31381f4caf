package repository

import (
	"context"

	"grievance-app/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type CustomerRepository struct {
	col *mongo.Collection
}

func NewCustomerRepository(db *mongo.Database) *CustomerRepository {
	return &CustomerRepository{col: db.Collection("customers")}
}

// EnsureIndexes создает уникальный индекс по beneficiary_no.
// Одновременная первая подача жалобы упрется в него, а не создаст дубль.
func (r *CustomerRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "beneficiary_no", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}

func (r *CustomerRepository) Insert(ctx context.Context, customer *models.Customer) error {
	customer.ID = primitive.NewObjectID()
	_, err := r.col.InsertOne(ctx, customer)
	return err
}

func (r *CustomerRepository) FindByBeneficiaryNo(ctx context.Context, beneficiaryNo string) (*models.Customer, error) {
	var customer models.Customer
	err := r.col.FindOne(ctx, bson.M{"beneficiary_no": beneficiaryNo}).Decode(&customer)
	if err != nil {
		return nil, err
	}
	return &customer, nil
}

func (r *CustomerRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Customer, error) {
	var customer models.Customer
	err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&customer)
	if err != nil {
		return nil, err
	}
	return &customer, nil
}

// FindByCredentials ищет клиента по точному совпадению номера бенефициара и номера счета.
func (r *CustomerRepository) FindByCredentials(ctx context.Context, beneficiaryNo, accountNumber string) (*models.Customer, error) {
	var customer models.Customer
	err := r.col.FindOne(ctx, bson.M{
		"beneficiary_no": beneficiaryNo,
		"account_number": accountNumber,
	}).Decode(&customer)
	if err != nil {
		return nil, err
	}
	return &customer, nil
}

package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Customer struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	BeneficiaryNo string             `bson:"beneficiary_no" json:"beneficiary_no"`
	Name          string             `bson:"name" json:"name"`
	Phone         string             `bson:"phone" json:"phone"`
	CustomerType  string             `bson:"customer_type,omitempty" json:"customer_type"`
	AccountNumber string             `bson:"account_number,omitempty" json:"account_number"`
	MeterID       string             `bson:"meter_id,omitempty" json:"meter_id"`
}

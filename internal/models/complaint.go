package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ComplaintStatus string

const (
	StatusOpen     ComplaintStatus = "Open"
	StatusResolved ComplaintStatus = "Resolved"
)

// ChannelType отмечает канал подачи жалобы
type ChannelType string

const (
	ChannelText ChannelType = "text"
	ChannelCall ChannelType = "call"
)

type Complaint struct {
	ID                       primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ComplaintID              string             `bson:"complaint_id" json:"complaint_id"`
	CustomerID               primitive.ObjectID `bson:"customer_id" json:"customer_id"`
	IssueType                string             `bson:"issue_type" json:"issue_type"`
	ComplaintType            ChannelType        `bson:"complaint_type" json:"complaint_type"`
	Status                   ComplaintStatus    `bson:"status" json:"status"`
	EstimatedRestorationTime string             `bson:"estimated_restoration_time,omitempty" json:"estimated_restoration_time"`
	CreatedAt                time.Time          `bson:"created_at" json:"created_at"`
	ResolvedAt               *time.Time         `bson:"resolved_at,omitempty" json:"resolved_at,omitempty"`
	ResolutionNote           string             `bson:"resolution_note,omitempty" json:"resolution_note,omitempty"`
	IsCallbackDone           bool               `bson:"is_callback_done" json:"is_callback_done"`
}

package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Resource types that can be shared with a group.
const (
	ResourceMap   = "map"
	ResourceLayer = "layer"
)

// Resource is a map or layer. A resource belongs to every group listed in GroupIDs.
type Resource struct {
	ID       primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Type     string               `bson:"type" json:"type"` // "map" | "layer"
	Title    string               `bson:"title" json:"title"`
	TitleCI  string               `bson:"title_ci" json:"title_ci"`
	GroupIDs []primitive.ObjectID `bson:"group_ids,omitempty" json:"group_ids,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}

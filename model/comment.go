package model

import "time"

// Comment model
type Comment struct {
	ID           string    `json:"id" bson:"_id"`
	CampgroundID string    `json:"campground_id" bson:"campground_id"`
	Text         string    `json:"text" bson:"text"`
	Author       Author    `json:"author" bson:"author"`
	CreatedAt    time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" bson:"updated_at"`
}

// OwnerID implements the owned-resource contract used by the ownership guard.
func (c Comment) OwnerID() string {
	return c.Author.ID
}

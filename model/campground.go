package model

import "time"

// Image holds the image store reference of a campground picture
type Image struct {
	ID  string `json:"id" bson:"id"`
	URL string `json:"url" bson:"url"`
}

// Author is a denormalized snapshot of the creating user. Authorization
// always re-resolves against the live session user, never this snapshot.
type Author struct {
	ID       string `json:"id" bson:"id"`
	Username string `json:"username" bson:"username"`
}

// Campground model
type Campground struct {
	ID          string  `json:"id" bson:"_id"`
	Name        string  `json:"name" bson:"name"`
	Price       string  `json:"price" bson:"price"`
	Description string  `json:"description" bson:"description"`
	Image       Image   `json:"image" bson:"image"`
	Location    string  `json:"location" bson:"location"`
	Lat         float64 `json:"lat" bson:"lat"`
	Lng         float64 `json:"lng" bson:"lng"`
	Author      Author  `json:"author" bson:"author"`
	// CommentIDs keeps the listing's comments in creation order.
	CommentIDs []string  `json:"comment_ids" bson:"comment_ids"`
	CreatedAt  time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt  time.Time `json:"updated_at" bson:"updated_at"`
}

// OwnerID implements the owned-resource contract used by the ownership guard.
func (c Campground) OwnerID() string {
	return c.Author.ID
}

// CampgroundData wraps a campground with its resolved comments and
// render-only extras for the show page.
type CampgroundData struct {
	Campground Campground
	Comments   []Comment
	// ShareQRCode is a base64 PNG data URI encoding the map link.
	ShareQRCode string
}

package store

import (
	"errors"

	"github.com/hieudoan/gocamp/model"
)

// Sentinel errors. Handlers rely on these to tell resource absence and
// unique-field conflicts apart from plain storage failures.
var (
	ErrNotFound          = errors.New("record not found")
	ErrDuplicateUsername = errors.New("username already taken")
	ErrDuplicateEmail    = errors.New("email already registered")
)

type IStore interface {
	Init() error

	GetUserByID(id string) (model.User, error)
	GetUserByUsername(username string) (model.User, error)
	GetUserByEmail(email string) (model.User, error)
	// GetUserByResetToken returns the user holding the given reset token,
	// provided the token has not expired. An empty, unknown or expired
	// token yields ErrNotFound.
	GetUserByResetToken(token string) (model.User, error)
	SaveUser(user model.User) error

	GetCampgrounds() ([]model.Campground, error)
	// SearchCampgrounds filters by case-insensitive substring match on the
	// campground name.
	SearchCampgrounds(query string) ([]model.Campground, error)
	GetCampgroundByID(id string) (model.Campground, error)
	GetCampgroundsByAuthor(userID string) ([]model.Campground, error)
	SaveCampground(campground model.Campground) error
	// DeleteCampground removes the campground and all of its comments.
	DeleteCampground(id string) error

	GetCommentByID(id string) (model.Comment, error)
	SaveComment(comment model.Comment) error
	DeleteComment(id string) error
}

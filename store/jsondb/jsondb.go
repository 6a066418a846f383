package jsondb

import (
	"encoding/json"
	"os"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/sdomino/scribble"

	"github.com/hieudoan/gocamp/model"
	"github.com/hieudoan/gocamp/store"
)

type JsonDB struct {
	conn   *scribble.Driver
	dbPath string
}

// New returns a new pointer JsonDB
func New(dbPath string) (*JsonDB, error) {
	conn, err := scribble.New(dbPath, nil)
	if err != nil {
		return nil, err
	}
	ans := JsonDB{
		conn:   conn,
		dbPath: dbPath,
	}
	return &ans, nil
}

func (o *JsonDB) Init() error {
	var usersPath string = path.Join(o.dbPath, "users")
	var campgroundsPath string = path.Join(o.dbPath, "campgrounds")
	var commentsPath string = path.Join(o.dbPath, "comments")

	// create directories if they do not exist
	for _, p := range []string{usersPath, campgroundsPath, commentsPath} {
		if _, err := os.Stat(p); os.IsNotExist(err) {
			if err := os.MkdirAll(p, os.ModePerm); err != nil {
				return err
			}
		}
	}

	return nil
}

func (o *JsonDB) readAll(collection string) ([][]byte, error) {
	records, err := o.conn.ReadAll(collection)
	if err != nil {
		// an empty, never-written collection is not a storage failure
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	return records, nil
}

// GetUserByID func to query a user by record id from the database
func (o *JsonDB) GetUserByID(id string) (model.User, error) {
	user := model.User{}
	if err := o.conn.Read("users", id, &user); err != nil {
		if os.IsNotExist(err) {
			return user, store.ErrNotFound
		}
		return user, err
	}
	return user, nil
}

func (o *JsonDB) findUser(match func(model.User) bool) (model.User, error) {
	records, err := o.readAll("users")
	if err != nil {
		return model.User{}, err
	}
	for _, f := range records {
		user := model.User{}
		if err := json.Unmarshal([]byte(f), &user); err != nil {
			return model.User{}, err
		}
		if match(user) {
			return user, nil
		}
	}
	return model.User{}, store.ErrNotFound
}

func (o *JsonDB) GetUserByUsername(username string) (model.User, error) {
	return o.findUser(func(u model.User) bool {
		return strings.EqualFold(u.Username, username)
	})
}

func (o *JsonDB) GetUserByEmail(email string) (model.User, error) {
	return o.findUser(func(u model.User) bool {
		return strings.EqualFold(u.Email, email)
	})
}

// GetUserByResetToken looks up the holder of a live reset token. Expired
// tokens are treated the same as unknown ones.
func (o *JsonDB) GetUserByResetToken(token string) (model.User, error) {
	if token == "" {
		return model.User{}, store.ErrNotFound
	}
	now := time.Now().UTC()
	return o.findUser(func(u model.User) bool {
		return u.ResetToken == token && u.ResetTokenExpiry.After(now)
	})
}

// SaveUser writes a user record, enforcing username and email uniqueness.
func (o *JsonDB) SaveUser(user model.User) error {
	records, err := o.readAll("users")
	if err != nil {
		return err
	}
	for _, f := range records {
		existing := model.User{}
		if err := json.Unmarshal([]byte(f), &existing); err != nil {
			return err
		}
		if existing.ID == user.ID {
			continue
		}
		if strings.EqualFold(existing.Username, user.Username) {
			return store.ErrDuplicateUsername
		}
		if strings.EqualFold(existing.Email, user.Email) {
			return store.ErrDuplicateEmail
		}
	}
	return o.conn.Write("users", user.ID, user)
}

func (o *JsonDB) campgrounds(match func(model.Campground) bool) ([]model.Campground, error) {
	records, err := o.readAll("campgrounds")
	if err != nil {
		return nil, err
	}
	campgrounds := []model.Campground{}
	for _, f := range records {
		campground := model.Campground{}
		if err := json.Unmarshal([]byte(f), &campground); err != nil {
			return nil, err
		}
		if match(campground) {
			campgrounds = append(campgrounds, campground)
		}
	}
	sort.Slice(campgrounds, func(i, j int) bool {
		return campgrounds[i].CreatedAt.Before(campgrounds[j].CreatedAt)
	})
	return campgrounds, nil
}

func (o *JsonDB) GetCampgrounds() ([]model.Campground, error) {
	return o.campgrounds(func(model.Campground) bool { return true })
}

func (o *JsonDB) SearchCampgrounds(query string) ([]model.Campground, error) {
	query = strings.ToLower(query)
	return o.campgrounds(func(c model.Campground) bool {
		return strings.Contains(strings.ToLower(c.Name), query)
	})
}

func (o *JsonDB) GetCampgroundByID(id string) (model.Campground, error) {
	campground := model.Campground{}
	if err := o.conn.Read("campgrounds", id, &campground); err != nil {
		if os.IsNotExist(err) {
			return campground, store.ErrNotFound
		}
		return campground, err
	}
	return campground, nil
}

func (o *JsonDB) GetCampgroundsByAuthor(userID string) ([]model.Campground, error) {
	return o.campgrounds(func(c model.Campground) bool {
		return c.Author.ID == userID
	})
}

func (o *JsonDB) SaveCampground(campground model.Campground) error {
	return o.conn.Write("campgrounds", campground.ID, campground)
}

// DeleteCampground removes a campground together with its comments.
func (o *JsonDB) DeleteCampground(id string) error {
	campground, err := o.GetCampgroundByID(id)
	if err != nil {
		return err
	}
	for _, commentID := range campground.CommentIDs {
		if err := o.DeleteComment(commentID); err != nil && err != store.ErrNotFound {
			return err
		}
	}
	return o.conn.Delete("campgrounds", id)
}

func (o *JsonDB) GetCommentByID(id string) (model.Comment, error) {
	comment := model.Comment{}
	if err := o.conn.Read("comments", id, &comment); err != nil {
		if os.IsNotExist(err) {
			return comment, store.ErrNotFound
		}
		return comment, err
	}
	return comment, nil
}

func (o *JsonDB) SaveComment(comment model.Comment) error {
	return o.conn.Write("comments", comment.ID, comment)
}

func (o *JsonDB) DeleteComment(id string) error {
	if err := o.conn.Delete("comments", id); err != nil {
		if os.IsNotExist(err) {
			return store.ErrNotFound
		}
		return err
	}
	return nil
}

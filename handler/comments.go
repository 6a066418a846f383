package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"
	"github.com/rs/xid"

	"github.com/hieudoan/gocamp/metrics"
	"github.com/hieudoan/gocamp/model"
	"github.com/hieudoan/gocamp/store"
)

// CreateComment handler attaches a new comment to a campground.
func CreateComment(db store.IStore) echo.HandlerFunc {
	return func(c echo.Context) error {
		user := currentUser(c)

		campground, err := db.GetCampgroundByID(c.Param("id"))
		if err == store.ErrNotFound {
			flashError(c, "Campground not found")
			return c.Redirect(http.StatusFound, "/campgrounds")
		}
		if err != nil {
			log.Error("Cannot fetch campground from database: ", err)
			flashError(c, "Something went wrong...")
			return c.Redirect(http.StatusFound, "/campgrounds")
		}

		text := strings.TrimSpace(c.FormValue("text"))
		if text == "" {
			flashError(c, "Comment text is required")
			return c.Redirect(http.StatusFound, "/campgrounds/"+campground.ID)
		}

		now := time.Now().UTC()
		comment := model.Comment{
			ID:           xid.New().String(),
			CampgroundID: campground.ID,
			Text:         text,
			Author:       model.Author{ID: user.ID, Username: user.Username},
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if err := db.SaveComment(comment); err != nil {
			log.Error("Cannot save comment to database: ", err)
			flashError(c, "Something went wrong...")
			return c.Redirect(http.StatusFound, "/campgrounds/"+campground.ID)
		}

		campground.CommentIDs = append(campground.CommentIDs, comment.ID)
		if err := db.SaveCampground(campground); err != nil {
			log.Error("Cannot link comment to campground: ", err)
			flashError(c, "Something went wrong...")
			return c.Redirect(http.StatusFound, "/campgrounds/"+campground.ID)
		}

		metrics.CommentsCreated.Inc()
		flashSuccess(c, "Successfully added comment")
		return c.Redirect(http.StatusFound, "/campgrounds/"+campground.ID)
	}
}

// UpdateComment handler
func UpdateComment(db store.IStore) echo.HandlerFunc {
	return func(c echo.Context) error {
		comment, err := db.GetCommentByID(c.Param("comment_id"))
		if err != nil {
			log.Error("Cannot fetch comment from database: ", err)
			flashError(c, "Something went wrong...")
			return c.Redirect(http.StatusFound, "/campgrounds/"+c.Param("id"))
		}

		text := strings.TrimSpace(c.FormValue("text"))
		if text == "" {
			flashError(c, "Comment text is required")
			return c.Redirect(http.StatusFound, "/campgrounds/"+c.Param("id"))
		}

		comment.Text = text
		comment.UpdatedAt = time.Now().UTC()
		if err := db.SaveComment(comment); err != nil {
			log.Error("Cannot save comment to database: ", err)
			flashError(c, "Something went wrong...")
		}
		return c.Redirect(http.StatusFound, "/campgrounds/"+c.Param("id"))
	}
}

// DeleteComment handler removes a comment and its back-reference on the
// campground.
func DeleteComment(db store.IStore) echo.HandlerFunc {
	return func(c echo.Context) error {
		commentID := c.Param("comment_id")
		if err := db.DeleteComment(commentID); err != nil {
			log.Error("Cannot delete comment from database: ", err)
			flashError(c, "Something went wrong...")
			return c.Redirect(http.StatusFound, "/campgrounds/"+c.Param("id"))
		}

		campground, err := db.GetCampgroundByID(c.Param("id"))
		if err == nil {
			kept := campground.CommentIDs[:0]
			for _, id := range campground.CommentIDs {
				if id != commentID {
					kept = append(kept, id)
				}
			}
			campground.CommentIDs = kept
			if err := db.SaveCampground(campground); err != nil {
				log.Warnf("Cannot unlink comment %s: %v", commentID, err)
			}
		}

		flashSuccess(c, "Comment deleted")
		return c.Redirect(http.StatusFound, "/campgrounds/"+c.Param("id"))
	}
}

package handler

import (
	"net/http"
	"net/url"

	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"

	"github.com/hieudoan/gocamp/store"
)

// ownedResource is any record carrying a denormalized author reference.
// Authorization compares its owner id against the live session user.
type ownedResource interface {
	OwnerID() string
}

// RequireLogin redirects unauthenticated requests to the login page,
// preserving the originally requested path for the post-login redirect.
func RequireLogin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if currentUser(c) == nil {
			return redirectToLogin(c)
		}
		return next(c)
	}
}

func redirectToLogin(c echo.Context) error {
	flashError(c, "You need to be logged in first")
	if c.Request().Method == http.MethodGet {
		return c.Redirect(http.StatusFound, "/login?next="+url.QueryEscape(c.Request().URL.RequestURI()))
	}
	return c.Redirect(http.StatusFound, "/login")
}

// requireOwnership builds a guard around a resource lookup. The guarded
// handler only runs when the session user owns the resource or is an admin.
// Resource absence and storage failure are reported as distinct conditions.
func requireOwnership(kind string, lookup func(c echo.Context) (ownedResource, error)) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			user := currentUser(c)
			if user == nil {
				return redirectToLogin(c)
			}

			resource, err := lookup(c)
			if err == store.ErrNotFound {
				flashError(c, kind+" not found")
				return c.Redirect(http.StatusFound, "/campgrounds")
			}
			if err != nil {
				log.Errorf("Cannot fetch %s from database: %v", kind, err)
				flashError(c, "Something went wrong...")
				return c.Redirect(http.StatusFound, "/campgrounds")
			}

			if resource.OwnerID() != user.ID && !user.Admin {
				flashError(c, "You don't have permission to do that")
				return c.Redirect(http.StatusFound, "/campgrounds/"+c.Param("id"))
			}
			return next(c)
		}
	}
}

// CampgroundOwnership guards mutating operations on a campground.
func CampgroundOwnership(db store.IStore) echo.MiddlewareFunc {
	return requireOwnership("Campground", func(c echo.Context) (ownedResource, error) {
		return db.GetCampgroundByID(c.Param("id"))
	})
}

// CommentOwnership guards mutating operations on a comment.
func CommentOwnership(db store.IStore) echo.MiddlewareFunc {
	return requireOwnership("Comment", func(c echo.Context) (ownedResource, error) {
		return db.GetCommentByID(c.Param("comment_id"))
	})
}

// SelfOnly restricts /users/:id routes to the profile owner or an admin.
func SelfOnly(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		user := currentUser(c)
		if user == nil {
			return redirectToLogin(c)
		}
		if c.Param("id") != user.ID && !user.Admin {
			flashError(c, "You don't have permission to do that")
			return c.Redirect(http.StatusFound, "/campgrounds")
		}
		return next(c)
	}
}

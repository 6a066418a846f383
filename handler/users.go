package handler

import (
	"crypto/subtle"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"
	"github.com/rs/xid"

	"github.com/hieudoan/gocamp/metrics"
	"github.com/hieudoan/gocamp/model"
	"github.com/hieudoan/gocamp/store"
	"github.com/hieudoan/gocamp/util"
)

type registerForm struct {
	Username  string `form:"username" validate:"required"`
	Email     string `form:"email" validate:"required,email"`
	FirstName string `form:"first_name"`
	LastName  string `form:"last_name"`
	Avatar    string `form:"avatar"`
	Password  string `form:"password" validate:"required,min=6"`
	AdminCode string `form:"admin_code"`
}

type profileForm struct {
	Email     string `form:"email" validate:"required,email"`
	FirstName string `form:"first_name"`
	LastName  string `form:"last_name"`
	Avatar    string `form:"avatar"`
}

// RegisterPage handler
func RegisterPage() echo.HandlerFunc {
	return func(c echo.Context) error {
		return render(c, http.StatusOK, "register.html", "register", nil)
	}
}

// Register handler creates a new account and logs it in.
func Register(db store.IStore) echo.HandlerFunc {
	return func(c echo.Context) error {
		form := new(registerForm)
		if err := c.Bind(form); err != nil || c.Validate(form) != nil {
			flashError(c, "Please fill in username, a valid email and a password of at least 6 characters")
			return c.Redirect(http.StatusFound, "/register")
		}

		hash, err := util.HashPassword(form.Password)
		if err != nil {
			log.Error("Cannot hash password: ", err)
			flashError(c, "Something went wrong...")
			return c.Redirect(http.StatusFound, "/register")
		}

		now := time.Now().UTC()
		user := model.User{
			ID:           xid.New().String(),
			Username:     form.Username,
			Email:        strings.ToLower(form.Email),
			FirstName:    form.FirstName,
			LastName:     form.LastName,
			Avatar:       form.Avatar,
			PasswordHash: hash,
			Admin:        isAdminCode(form.AdminCode),
			CreatedAt:    now,
			UpdatedAt:    now,
		}

		switch err := db.SaveUser(user); err {
		case nil:
		case store.ErrDuplicateUsername:
			flashError(c, "That username is already taken.")
			return c.Redirect(http.StatusFound, "/register")
		case store.ErrDuplicateEmail:
			flashError(c, "That email has already been registered.")
			return c.Redirect(http.StatusFound, "/register")
		default:
			log.Error("Cannot save user to database: ", err)
			flashError(c, "Something went wrong...")
			return c.Redirect(http.StatusFound, "/register")
		}

		metrics.UsersRegistered.Inc()
		if err := setAuthSession(c, user); err != nil {
			log.Error("Cannot save session: ", err)
		}
		flashSuccess(c, "Welcome to GoCamp "+user.Username)
		return c.Redirect(http.StatusFound, "/campgrounds")
	}
}

// isAdminCode grants admin privilege only for the configured out-of-band
// code, compared in constant time.
func isAdminCode(code string) bool {
	if util.AdminCode == "" || code == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(code), []byte(util.AdminCode)) == 1
}

// LoginPage handler
func LoginPage() echo.HandlerFunc {
	return func(c echo.Context) error {
		return render(c, http.StatusOK, "login.html", "login", map[string]interface{}{
			"next": c.QueryParam("next"),
		})
	}
}

// Login handler verifies the credential and establishes the session.
func Login(db store.IStore) echo.HandlerFunc {
	return func(c echo.Context) error {
		username := c.FormValue("username")
		password := c.FormValue("password")

		user, err := db.GetUserByUsername(username)
		if err != nil && err != store.ErrNotFound {
			log.Error("Cannot query user from database: ", err)
			flashError(c, "Something went wrong...")
			return c.Redirect(http.StatusFound, "/login")
		}

		ok := false
		if err == nil {
			ok, err = util.VerifyHash(user.PasswordHash, password)
			if err != nil {
				log.Error("Cannot verify password: ", err)
			}
		}
		if !ok {
			// do not reveal which of the two fields was wrong
			flashError(c, "Invalid username or password")
			return c.Redirect(http.StatusFound, "/login")
		}

		if err := setAuthSession(c, user); err != nil {
			log.Error("Cannot save session: ", err)
			flashError(c, "Something went wrong...")
			return c.Redirect(http.StatusFound, "/login")
		}

		flashSuccess(c, "Good to see you again, "+user.Username)
		return c.Redirect(http.StatusFound, safeRedirectTarget(c.FormValue("next")))
	}
}

// safeRedirectTarget keeps the post-login redirect on this site.
func safeRedirectTarget(next string) string {
	if strings.HasPrefix(next, "/") && !strings.HasPrefix(next, "//") {
		return next
	}
	return "/campgrounds"
}

// Logout handler
func Logout() echo.HandlerFunc {
	return func(c echo.Context) error {
		clearSession(c)
		flashSuccess(c, "Logged out successfully. Look forward to seeing you again!")
		return c.Redirect(http.StatusFound, "/campgrounds")
	}
}

// Profile handler renders a user page with the campgrounds they created.
func Profile(db store.IStore) echo.HandlerFunc {
	return func(c echo.Context) error {
		user, err := db.GetUserByID(c.Param("id"))
		if err != nil {
			log.Error("Cannot fetch user from database: ", err)
			flashError(c, "Something went wrong...")
			return c.Redirect(http.StatusFound, "/campgrounds")
		}

		campgrounds, err := db.GetCampgroundsByAuthor(user.ID)
		if err != nil {
			log.Error("Cannot fetch campgrounds from database: ", err)
			flashError(c, "Something went wrong...")
			return c.Redirect(http.StatusFound, "/campgrounds")
		}

		return render(c, http.StatusOK, "profile.html", "", map[string]interface{}{
			"profileUser": user,
			"campgrounds": campgrounds,
		})
	}
}

// EditProfilePage handler
func EditProfilePage(db store.IStore) echo.HandlerFunc {
	return func(c echo.Context) error {
		user, err := db.GetUserByID(c.Param("id"))
		if err != nil {
			log.Error("Cannot fetch user from database: ", err)
			flashError(c, "Something went wrong...")
			return c.Redirect(http.StatusFound, "/campgrounds")
		}
		return render(c, http.StatusOK, "profile_edit.html", "", map[string]interface{}{
			"profileUser": user,
		})
	}
}

// UpdateProfile handler
func UpdateProfile(db store.IStore) echo.HandlerFunc {
	return func(c echo.Context) error {
		user, err := db.GetUserByID(c.Param("id"))
		if err != nil {
			log.Error("Cannot fetch user from database: ", err)
			flashError(c, "Something went wrong...")
			return c.Redirect(http.StatusFound, "/campgrounds")
		}

		form := new(profileForm)
		if err := c.Bind(form); err != nil || c.Validate(form) != nil {
			flashError(c, "Please provide a valid email address")
			return c.Redirect(http.StatusFound, "/users/"+user.ID+"/edit")
		}

		user.Email = strings.ToLower(form.Email)
		user.FirstName = form.FirstName
		user.LastName = form.LastName
		user.Avatar = form.Avatar
		user.UpdatedAt = time.Now().UTC()

		switch err := db.SaveUser(user); err {
		case nil:
		case store.ErrDuplicateEmail:
			flashError(c, "That email has already been registered.")
			return c.Redirect(http.StatusFound, "/users/"+user.ID+"/edit")
		default:
			log.Error("Cannot save user to database: ", err)
			flashError(c, "Something went wrong...")
			return c.Redirect(http.StatusFound, "/users/"+user.ID+"/edit")
		}

		flashSuccess(c, "Profile updated")
		return c.Redirect(http.StatusFound, "/users/"+user.ID)
	}
}

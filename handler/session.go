package handler

import (
	"github.com/gorilla/sessions"
	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"

	"github.com/hieudoan/gocamp/model"
)

const sessionName = "session"

func getSession(c echo.Context) *sessions.Session {
	sess, _ := session.Get(sessionName, c)
	return sess
}

// currentUser returns the authenticated session identity, or nil when the
// request carries no valid login.
func currentUser(c echo.Context) *model.SessionUser {
	sess := getSession(c)
	id, ok := sess.Values["user_id"].(string)
	if !ok || id == "" {
		return nil
	}
	username, _ := sess.Values["username"].(string)
	admin, _ := sess.Values["admin"].(bool)
	return &model.SessionUser{ID: id, Username: username, Admin: admin}
}

// setAuthSession establishes an authenticated session for the given user
func setAuthSession(c echo.Context, user model.User) error {
	sess := getSession(c)
	sess.Values["user_id"] = user.ID
	sess.Values["username"] = user.Username
	sess.Values["admin"] = user.Admin
	return sess.Save(c.Request(), c.Response())
}

// clearSession to remove the current login
func clearSession(c echo.Context) {
	sess := getSession(c)
	delete(sess.Values, "user_id")
	delete(sess.Values, "username")
	delete(sess.Values, "admin")
	sess.Save(c.Request(), c.Response())
}

// flashError queues a one-time error message surviving exactly one redirect.
func flashError(c echo.Context, msg string) {
	addFlash(c, "error", msg)
}

func flashSuccess(c echo.Context, msg string) {
	addFlash(c, "success", msg)
}

func addFlash(c echo.Context, kind, msg string) {
	sess := getSession(c)
	sess.AddFlash(msg, kind)
	sess.Save(c.Request(), c.Response())
}

// baseData collects the layout state and pops pending flash messages. It
// must run before the response body is written so the cleared flashes make
// it into the cookie.
func baseData(c echo.Context, active string) model.BaseData {
	sess := getSession(c)
	data := model.BaseData{
		Active:      active,
		CurrentUser: currentUser(c),
	}
	for _, f := range sess.Flashes("error") {
		if msg, ok := f.(string); ok {
			data.Error = append(data.Error, msg)
		}
	}
	for _, f := range sess.Flashes("success") {
		if msg, ok := f.(string); ok {
			data.Success = append(data.Success, msg)
		}
	}
	sess.Save(c.Request(), c.Response())
	return data
}

func render(c echo.Context, code int, name, active string, data map[string]interface{}) error {
	if data == nil {
		data = map[string]interface{}{}
	}
	data["baseData"] = baseData(c, active)
	return c.Render(code, name, data)
}

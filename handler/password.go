package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"

	"github.com/hieudoan/gocamp/emailer"
	"github.com/hieudoan/gocamp/metrics"
	"github.com/hieudoan/gocamp/store"
	"github.com/hieudoan/gocamp/util"
)

const (
	// resetTokenBytes is the entropy of a reset token before hex encoding.
	resetTokenBytes = 20
	// resetTokenLifetime bounds the window in which a token can be used.
	resetTokenLifetime = time.Hour
)

// The request path never reveals whether an email is enrolled, so the same
// message is flashed for known and unknown addresses.
const resetRequestedMsg = "If that email is registered, a message with further instructions is on its way."

// PasswordResetPage handler
func PasswordResetPage() echo.HandlerFunc {
	return func(c echo.Context) error {
		return render(c, http.StatusOK, "password_reset.html", "", nil)
	}
}

// RequestPasswordReset handler issues a single-use reset token and mails a
// link embedding it. Each step aborts the remaining ones on failure.
func RequestPasswordReset(db store.IStore, mailer emailer.Emailer) echo.HandlerFunc {
	return func(c echo.Context) error {
		email := c.FormValue("email")

		token, err := util.RandomToken(resetTokenBytes)
		if err != nil {
			log.Error("Cannot generate reset token: ", err)
			flashError(c, "Something went wrong...")
			return c.Redirect(http.StatusFound, "/password_reset")
		}

		user, err := db.GetUserByEmail(email)
		if err == store.ErrNotFound {
			log.Debugf("Password reset requested for unknown email %s", email)
			flashSuccess(c, resetRequestedMsg)
			return c.Redirect(http.StatusFound, "/password_reset")
		}
		if err != nil {
			log.Error("Cannot query user from database: ", err)
			flashError(c, "Something went wrong...")
			return c.Redirect(http.StatusFound, "/password_reset")
		}

		user.ResetToken = token
		user.ResetTokenExpiry = time.Now().UTC().Add(resetTokenLifetime)
		user.UpdatedAt = time.Now().UTC()
		if err := db.SaveUser(user); err != nil {
			log.Error("Cannot save reset token to database: ", err)
			flashError(c, "Something went wrong...")
			return c.Redirect(http.StatusFound, "/password_reset")
		}

		link := util.ResolveBaseURL() + "/reset/" + token
		content := fmt.Sprintf(
			"Hi %s,<br><br>"+
				"We've received a request to reset your password. If you didn't make the request, just ignore this email. "+
				"Otherwise, you can reset your password using this link:<br><br>"+
				"<a href=\"%s\">%s</a><br><br>"+
				"The link is valid for one hour.<br><br>"+
				"Thanks,<br>The GoCamp Team",
			user.DisplayName(), link, link)
		if err := mailer.Send(user.DisplayName(), user.Email, "Reset your GoCamp password", content); err != nil {
			log.Error("Cannot send reset email: ", err)
			flashError(c, "Cannot send the reset email, please try again later")
			return c.Redirect(http.StatusFound, "/password_reset")
		}

		metrics.PasswordResetRequests.Inc()
		flashSuccess(c, resetRequestedMsg)
		return c.Redirect(http.StatusFound, "/password_reset")
	}
}

// ResetPage handler renders the new-password form for a live token.
func ResetPage(db store.IStore) echo.HandlerFunc {
	return func(c echo.Context) error {
		token := c.Param("token")
		if _, err := db.GetUserByResetToken(token); err != nil {
			return rejectToken(c, err)
		}
		return render(c, http.StatusOK, "reset.html", "", map[string]interface{}{
			"token": token,
		})
	}
}

// CompletePasswordReset handler consumes a live token: it replaces the
// credential, clears the token and logs the user in. A token survives at
// most one successful completion.
func CompletePasswordReset(db store.IStore, mailer emailer.Emailer) echo.HandlerFunc {
	return func(c echo.Context) error {
		token := c.Param("token")

		user, err := db.GetUserByResetToken(token)
		if err != nil {
			return rejectToken(c, err)
		}

		password := c.FormValue("password")
		if password == "" || password != c.FormValue("confirm") {
			flashError(c, "Passwords do not match")
			return c.Redirect(http.StatusFound, "/reset/"+token)
		}

		hash, err := util.HashPassword(password)
		if err != nil {
			log.Error("Cannot hash password: ", err)
			flashError(c, "Something went wrong...")
			return c.Redirect(http.StatusFound, "/password_reset")
		}

		user.PasswordHash = hash
		user.ResetToken = ""
		user.ResetTokenExpiry = time.Time{}
		user.UpdatedAt = time.Now().UTC()
		if err := db.SaveUser(user); err != nil {
			log.Error("Cannot save user to database: ", err)
			flashError(c, "Something went wrong...")
			return c.Redirect(http.StatusFound, "/password_reset")
		}

		if err := setAuthSession(c, user); err != nil {
			log.Error("Cannot save session: ", err)
		}

		// confirmation is best-effort, the reset already happened
		content := fmt.Sprintf(
			"Hi %s,<br><br>"+
				"This is a confirmation that the password for your account %s has just been changed.<br><br>"+
				"Best,<br>The GoCamp Team",
			user.DisplayName(), user.Email)
		errc := emailer.SendAsync(mailer, user.DisplayName(), user.Email, "Your GoCamp password has been changed", content)
		go func() {
			if err := <-errc; err != nil {
				log.Warn("Cannot send password change confirmation: ", err)
			}
		}()

		metrics.PasswordResetsCompleted.Inc()
		flashSuccess(c, "Your password has been changed.")
		return c.Redirect(http.StatusFound, "/campgrounds")
	}
}

func rejectToken(c echo.Context, err error) error {
	if err != store.ErrNotFound {
		log.Error("Cannot query reset token from database: ", err)
		flashError(c, "Something went wrong...")
	} else {
		flashError(c, "Password reset token is invalid or has expired.")
	}
	return c.Redirect(http.StatusFound, "/password_reset")
}

package router

import (
	"errors"
	"html/template"
	"io"
	"io/fs"
	"reflect"
	"strings"
	"time"

	"github.com/gorilla/sessions"
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"github.com/hieudoan/gocamp/util"
)

// Pages rendered inside the base layout.
var pages = []string{
	"landing.html",
	"login.html",
	"register.html",
	"campgrounds.html",
	"campground_new.html",
	"campground_show.html",
	"campground_edit.html",
	"profile.html",
	"profile_edit.html",
	"password_reset.html",
	"reset.html",
}

// TemplateRegistry is a custom html/template renderer for Echo framework
type TemplateRegistry struct {
	templates map[string]*template.Template
	extraData map[string]string
}

// Render e.Renderer interface
func (t *TemplateRegistry) Render(w io.Writer, name string, data interface{}, c echo.Context) error {
	tmpl, ok := t.templates[name]
	if !ok {
		return errors.New("Template not found -> " + name)
	}

	// inject more app data information. E.g. appVersion
	if reflect.TypeOf(data).Kind() == reflect.Map {
		for k, v := range t.extraData {
			data.(map[string]interface{})[k] = v
		}
	}

	return tmpl.ExecuteTemplate(w, "base.html", data)
}

// NewTemplateRegistry loads every page template inside the base layout.
func NewTemplateRegistry(tmplDir fs.FS, extraData map[string]string) *TemplateRegistry {
	tmplBaseString, err := util.StringFromEmbedFile(tmplDir, "base.html")
	if err != nil {
		log.Fatal(err)
	}

	funcs := template.FuncMap{
		"StringsJoin": strings.Join,
		// data: image URIs are stripped by the contextual escaper otherwise
		"SafeURL": func(s string) template.URL {
			return template.URL(s)
		},
		"FormatTime": func(t time.Time) string {
			return t.Local().Format("Jan 2, 2006 at 15:04")
		},
	}

	templates := make(map[string]*template.Template)
	for _, page := range pages {
		pageString, err := util.StringFromEmbedFile(tmplDir, page)
		if err != nil {
			log.Fatal(err)
		}
		name := strings.TrimSuffix(page, ".html")
		templates[page] = template.Must(
			template.New(name).Funcs(funcs).Parse(tmplBaseString + pageString))
	}

	return &TemplateRegistry{
		templates: templates,
		extraData: extraData,
	}
}

// New function
func New(tmplDir fs.FS, extraData map[string]string, secret []byte) *echo.Echo {
	e := echo.New()
	e.Use(session.Middleware(sessions.NewCookieStore(secret)))

	lvl, err := util.ParseLogLevel(util.LookupEnvOrString(util.LogLevelEnvVar, "INFO"))
	if err != nil {
		log.Fatal(err)
	}
	logConfig := middleware.DefaultLoggerConfig
	logConfig.Skipper = func(c echo.Context) bool {
		resp := c.Response()
		if resp.Status >= 500 && lvl > log.ERROR { // do not log if response is 5XX but log level is higher than ERROR
			return true
		} else if resp.Status >= 400 && lvl > log.WARN { // do not log if response is 4XX but log level is higher than WARN
			return true
		} else if lvl > log.DEBUG { // do not log if log level is higher than DEBUG
			return true
		}
		return false
	}

	e.Logger.SetLevel(lvl)
	e.Pre(middleware.RemoveTrailingSlash())
	// HTML forms can only submit GET/POST, PUT and DELETE arrive via the
	// _method field
	e.Pre(middleware.MethodOverrideWithConfig(middleware.MethodOverrideConfig{
		Getter: middleware.MethodFromForm("_method"),
	}))
	e.Use(middleware.LoggerWithConfig(logConfig))
	e.Use(echoprometheus.NewMiddleware("gocamp"))
	e.GET("/metrics", echoprometheus.NewHandler())
	e.HideBanner = true
	e.HidePort = lvl > log.INFO // hide the port output if the log level is higher than INFO
	e.Validator = NewValidator()
	e.Renderer = NewTemplateRegistry(tmplDir, extraData)

	return e
}

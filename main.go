package main

import (
	"flag"
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/gommon/log"

	"github.com/hieudoan/gocamp/emailer"
	"github.com/hieudoan/gocamp/geocoder"
	"github.com/hieudoan/gocamp/handler"
	"github.com/hieudoan/gocamp/imagestore"
	"github.com/hieudoan/gocamp/router"
	"github.com/hieudoan/gocamp/store"
	"github.com/hieudoan/gocamp/store/jsondb"
	"github.com/hieudoan/gocamp/store/mongodb"
	"github.com/hieudoan/gocamp/telegram"
	"github.com/hieudoan/gocamp/templates"
	"github.com/hieudoan/gocamp/util"
)

var (
	// command-line banner information
	appVersion = "development"
	gitCommit  = "N/A"
	gitRef     = "N/A"
	buildTime  = fmt.Sprintf(time.Now().UTC().Format("01-02-2006 15:04:05"))
	// configuration variables
	flagBindAddress      string = "0.0.0.0:5000"
	flagSessionSecret    string
	flagAdminCode        string
	flagBaseURL          string
	flagDBType           string = "jsondb"
	flagDBPath           string = "./db"
	flagMongoURI         string = "mongodb://localhost:27017"
	flagMongoDB          string = "gocamp"
	flagEmailSender      string = "smtp"
	flagSendgridApiKey   string
	flagEmailFrom        string
	flagEmailFromName    string = "GoCamp"
	flagSmtpHostname     string = "127.0.0.1"
	flagSmtpPort         int    = 25
	flagSmtpUsername     string
	flagSmtpPassword     string
	flagSmtpNoTLSCheck   bool   = false
	flagSmtpAuthType     string = "None"
	flagSmtpEncryption   string = "STARTTLS"
	flagCloudinaryURL    string
	flagGoogleMapsApiKey string
	flagTelegramToken    string
	flagTelegramChatID   int64
)

func init() {
	// local .env overrides are optional
	_ = godotenv.Load()

	// command-line flags and env variables
	flag.StringVar(&flagBindAddress, "bind-address", util.LookupEnvOrString("BIND_ADDRESS", flagBindAddress), "Address:Port to which the app will be bound.")
	flag.StringVar(&flagSessionSecret, "session-secret", util.LookupEnvOrString("SESSION_SECRET", flagSessionSecret), "The key used to encrypt session cookies.")
	flag.StringVar(&flagAdminCode, "admin-code", util.LookupEnvOrString("ADMIN_CODE", flagAdminCode), "Out-of-band code granting admin privilege at registration.")
	flag.StringVar(&flagBaseURL, "base-url", util.LookupEnvOrString("BASE_URL", flagBaseURL), "Public base URL used in password reset links.")
	flag.StringVar(&flagDBType, "db-type", util.LookupEnvOrString("DB_TYPE", flagDBType), "Storage backend: jsondb or mongodb.")
	flag.StringVar(&flagDBPath, "db-path", util.LookupEnvOrString("DB_PATH", flagDBPath), "Directory of the jsondb backend.")
	flag.StringVar(&flagMongoURI, "mongo-uri", util.LookupEnvOrString("MONGO_URI", flagMongoURI), "MongoDB connection URI.")
	flag.StringVar(&flagMongoDB, "mongo-db", util.LookupEnvOrString("MONGO_DB", flagMongoDB), "MongoDB database name.")
	flag.StringVar(&flagEmailSender, "email-sender", util.LookupEnvOrString("EMAIL_SENDER", flagEmailSender), "Email sender: smtp or sendgrid.")
	flag.StringVar(&flagSendgridApiKey, "sendgrid-api-key", util.LookupEnvOrString("SENDGRID_API_KEY", flagSendgridApiKey), "Your sendgrid api key.")
	flag.StringVar(&flagEmailFrom, "email-from", util.LookupEnvOrString("EMAIL_FROM_ADDRESS", flagEmailFrom), "'From' email address.")
	flag.StringVar(&flagEmailFromName, "email-from-name", util.LookupEnvOrString("EMAIL_FROM_NAME", flagEmailFromName), "'From' email name.")
	flag.StringVar(&flagSmtpHostname, "smtp-hostname", util.LookupEnvOrString("SMTP_HOSTNAME", flagSmtpHostname), "SMTP hostname.")
	flag.IntVar(&flagSmtpPort, "smtp-port", util.LookupEnvOrInt("SMTP_PORT", flagSmtpPort), "SMTP port.")
	flag.StringVar(&flagSmtpUsername, "smtp-username", util.LookupEnvOrString("SMTP_USERNAME", flagSmtpUsername), "SMTP username.")
	flag.StringVar(&flagSmtpPassword, "smtp-password", util.LookupEnvOrString("SMTP_PASSWORD", flagSmtpPassword), "SMTP password.")
	flag.BoolVar(&flagSmtpNoTLSCheck, "smtp-no-tls-check", util.LookupEnvOrBool("SMTP_NO_TLS_CHECK", flagSmtpNoTLSCheck), "Disable TLS verification for SMTP.")
	flag.StringVar(&flagSmtpAuthType, "smtp-auth-type", util.LookupEnvOrString("SMTP_AUTH_TYPE", flagSmtpAuthType), "SMTP auth type: PLAIN, LOGIN or NONE.")
	flag.StringVar(&flagSmtpEncryption, "smtp-encryption", util.LookupEnvOrString("SMTP_ENCRYPTION", flagSmtpEncryption), "SMTP encryption: SSL, SSLTLS, TLS, STARTTLS or NONE.")
	flag.StringVar(&flagCloudinaryURL, "cloudinary-url", util.LookupEnvOrString("CLOUDINARY_URL", flagCloudinaryURL), "Cloudinary credential URL for image uploads.")
	flag.StringVar(&flagGoogleMapsApiKey, "google-maps-api-key", util.LookupEnvOrString("GOOGLE_MAPS_API_KEY", flagGoogleMapsApiKey), "Google Maps API key for geocoding.")
	flag.StringVar(&flagTelegramToken, "telegram-token", util.LookupEnvOrString("TELEGRAM_TOKEN", flagTelegramToken), "Telegram bot token for announcements. Optional.")
	flag.Int64Var(&flagTelegramChatID, "telegram-chat-id", util.LookupEnvOrInt64("TELEGRAM_CHAT_ID", flagTelegramChatID), "Telegram chat id for announcements. Optional.")
	flag.Parse()

	// update runtime config
	util.BindAddress = flagBindAddress
	util.SessionSecret = []byte(flagSessionSecret)
	util.AdminCode = flagAdminCode
	util.BaseURL = flagBaseURL
	util.DBType = flagDBType
	util.DBPath = flagDBPath
	util.MongoURI = flagMongoURI
	util.MongoDB = flagMongoDB
	util.EmailSender = flagEmailSender
	util.SendgridApiKey = flagSendgridApiKey
	util.EmailFrom = flagEmailFrom
	util.EmailFromName = flagEmailFromName
	util.SmtpHostname = flagSmtpHostname
	util.SmtpPort = flagSmtpPort
	util.SmtpUsername = flagSmtpUsername
	util.SmtpPassword = flagSmtpPassword
	util.SmtpNoTLSCheck = flagSmtpNoTLSCheck
	util.SmtpAuthType = flagSmtpAuthType
	util.SmtpEncryption = flagSmtpEncryption
	util.CloudinaryURL = flagCloudinaryURL
	util.GoogleMapsApiKey = flagGoogleMapsApiKey
	util.TelegramToken = flagTelegramToken
	util.TelegramChatID = flagTelegramChatID

	// print app information
	fmt.Println("GoCamp")
	fmt.Println("App Version\t:", appVersion)
	fmt.Println("Git Commit\t:", gitCommit)
	fmt.Println("Git Ref\t\t:", gitRef)
	fmt.Println("Build Time\t:", buildTime)
	fmt.Println("Bind address\t:", util.BindAddress)
	fmt.Println("DB backend\t:", util.DBType)
	fmt.Println("Email sender\t:", util.EmailSender)
	fmt.Println("Email from\t:", util.EmailFrom)
}

func main() {
	db := initStore()
	if err := db.Init(); err != nil {
		log.Fatal("Cannot init database: ", err)
	}

	var sendmail emailer.Emailer
	if util.EmailSender == "sendgrid" {
		sendmail = emailer.NewSendgridApiMail(util.SendgridApiKey, util.EmailFromName, util.EmailFrom)
	} else {
		sendmail = emailer.NewSmtpMail(util.SmtpHostname, util.SmtpPort, util.SmtpUsername, util.SmtpPassword,
			util.SmtpNoTLSCheck, util.SmtpAuthType, util.EmailFromName, util.EmailFrom, util.SmtpEncryption)
	}

	images, err := imagestore.NewCloudinaryStore(util.CloudinaryURL)
	if err != nil {
		log.Fatal("Cannot init image store: ", err)
	}

	geo, err := geocoder.NewGoogleGeocoder(util.GoogleMapsApiKey)
	if err != nil {
		log.Fatal("Cannot init geocoder: ", err)
	}

	telegram.Token = util.TelegramToken
	telegram.ChatID = util.TelegramChatID
	if err := telegram.Start(); err != nil {
		log.Warn(err)
	}

	// set app extra data
	extraData := make(map[string]string)
	extraData["appVersion"] = appVersion

	// register routes
	app := router.New(templates.FS, extraData, util.SessionSecret)

	app.GET("/", handler.LandingPage())
	app.GET("/register", handler.RegisterPage())
	app.POST("/register", handler.Register(db))
	app.GET("/login", handler.LoginPage())
	app.POST("/login", handler.Login(db))
	app.GET("/logout", handler.Logout())

	app.GET("/campgrounds", handler.Campgrounds(db))
	app.GET("/campgrounds/new", handler.NewCampgroundPage(), handler.RequireLogin)
	app.POST("/campgrounds", handler.CreateCampground(db, images, geo), handler.RequireLogin)
	app.GET("/campgrounds/:id", handler.Campground(db))
	app.GET("/campgrounds/:id/edit", handler.EditCampgroundPage(db), handler.CampgroundOwnership(db))
	app.PUT("/campgrounds/:id", handler.UpdateCampground(db, images, geo), handler.CampgroundOwnership(db))
	app.DELETE("/campgrounds/:id", handler.DeleteCampground(db, images), handler.CampgroundOwnership(db))

	app.POST("/campgrounds/:id/comments", handler.CreateComment(db), handler.RequireLogin)
	app.PUT("/campgrounds/:id/comments/:comment_id", handler.UpdateComment(db), handler.CommentOwnership(db))
	app.DELETE("/campgrounds/:id/comments/:comment_id", handler.DeleteComment(db), handler.CommentOwnership(db))

	app.GET("/users/:id", handler.Profile(db), handler.SelfOnly)
	app.GET("/users/:id/edit", handler.EditProfilePage(db), handler.SelfOnly)
	app.PUT("/users/:id", handler.UpdateProfile(db), handler.SelfOnly)

	app.GET("/password_reset", handler.PasswordResetPage())
	app.POST("/password_reset", handler.RequestPasswordReset(db, sendmail))
	app.GET("/reset/:token", handler.ResetPage(db))
	app.POST("/reset/:token", handler.CompletePasswordReset(db, sendmail))

	app.Logger.Fatal(app.Start(util.BindAddress))
}

func initStore() store.IStore {
	switch util.DBType {
	case "mongodb":
		db, err := mongodb.New(util.MongoURI, util.MongoDB)
		if err != nil {
			log.Fatal("Cannot connect to MongoDB: ", err)
		}
		return db
	case "jsondb":
		db, err := jsondb.New(util.DBPath)
		if err != nil {
			log.Fatal("Cannot open the database directory: ", err)
		}
		return db
	default:
		log.Fatalf("Unknown db type: %s", util.DBType)
		return nil
	}
}

package util

// Runtime config
var (
	BindAddress   string
	SessionSecret []byte
	AdminCode     string
	BaseURL       string

	DBType   string
	DBPath   string
	MongoURI string
	MongoDB  string

	EmailSender    string
	SendgridApiKey string
	EmailFrom      string
	EmailFromName  string
	SmtpHostname   string
	SmtpPort       int
	SmtpUsername   string
	SmtpPassword   string
	SmtpNoTLSCheck bool
	SmtpAuthType   string
	SmtpEncryption string

	CloudinaryURL    string
	GoogleMapsApiKey string

	TelegramToken  string
	TelegramChatID int64
)

// Env var names
const (
	LogLevelEnvVar = "LOG_LEVEL"
)

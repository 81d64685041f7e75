package config

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/afero"
	"github.com/spf13/viper"
)

const envPrefix = "CORPSUITE"

var (
	ErrUnknownPortal      = errors.New("unknown portal")
	ErrMissingCredentials = errors.New("email credentials not configured")
	ErrNoRecipients       = errors.New("no email recipients configured")
)

type Portal string

const (
	PortalCorpstack Portal = "corpstack"
	PortalHDFC      Portal = "hdfc"
)

func ParsePortal(s string) (Portal, error) {
	switch p := Portal(strings.ToLower(strings.TrimSpace(s))); p {
	case PortalCorpstack, PortalHDFC:
		return p, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownPortal, s)
	}
}

// PropertyFile is the default properties file of the portal.
func (p Portal) PropertyFile() string {
	if p == PortalHDFC {
		return "property/HDFC_test_data.properties"
	}

	return "property/Corp_test_data.properties"
}

// Heading is the report heading of the portal.
func (p Portal) Heading() string {
	if p == PortalHDFC {
		return "HDFC"
	}

	return "Corpstack"
}

type Config struct {
	Portal      Portal
	Heading     string
	Environment string
	BaseURL     string
	Username    string
	Password    string

	Email   Email
	IMAP    IMAP
	Browser Browser
	Retry   Retry
	Dirs    Dirs

	SuiteFile string
	TestData  string

	values map[string]string
}

// Application names the system under test in reports.
func (c *Config) Application() string {
	return c.Heading + " Portal"
}

// Value returns a raw property, or fallback when it is not set.
func (c *Config) Value(key, fallback string) string {
	if v, ok := c.values[strings.ToLower(key)]; ok && v != "" {
		return v
	}

	return fallback
}

type Email struct {
	Enabled    bool
	Host       string
	Port       int
	SSL        bool
	TLS        bool
	Timeout    time.Duration
	From       string
	Username   string
	Password   string
	Recipients []string
}

func (e Email) Addr() string {
	return fmt.Sprintf("%s:%d", e.Host, e.Port)
}

func (e Email) Validate() error {
	if strings.TrimSpace(e.Host) == "" || e.Port <= 0 {
		return fmt.Errorf("invalid smtp address %q", e.Addr())
	}

	if strings.TrimSpace(e.Username) == "" || strings.TrimSpace(e.Password) == "" {
		return ErrMissingCredentials
	}

	if len(e.Recipients) == 0 {
		return ErrNoRecipients
	}

	return nil
}

type IMAP struct {
	Host     string
	Port     int
	Username string
	Password string
	Mailbox  string
}

func (i IMAP) Addr() string {
	return fmt.Sprintf("%s:%d", i.Host, i.Port)
}

type Browser struct {
	Headless bool
	Timeout  time.Duration
	SlowMo   time.Duration
	Width    int
	Height   int
}

type Retry struct {
	Max int
}

type Dirs struct {
	Report       string
	Screenshot   string
	Allure       string
	AllureReport string
	Journal      string
}

// All lists every output directory the clean command empties.
func (d Dirs) All() []string {
	return []string{d.Report, d.Screenshot, d.Allure, d.AllureReport}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("report.environment", "PROD")
	v.SetDefault("email.enabled", true)
	v.SetDefault("email.smtp.host", "smtp.gmail.com")
	v.SetDefault("email.smtp.port", 587)
	v.SetDefault("email.smtp.ssl", false)
	v.SetDefault("email.smtp.tls", true)
	v.SetDefault("email.smtp.timeout", "30s")
	v.SetDefault("imap.host", "imap.gmail.com")
	v.SetDefault("imap.port", 993)
	v.SetDefault("imap.mailbox", "INBOX")
	v.SetDefault("browser.headless", true)
	v.SetDefault("browser.timeout", "10s")
	v.SetDefault("browser.slowmo", "0s")
	v.SetDefault("browser.width", 1920)
	v.SetDefault("browser.height", 1080)
	v.SetDefault("retry.max", 2)
	v.SetDefault("report.dir", "test-output/reports")
	v.SetDefault("screenshot.dir", "test-output/screenshots")
	v.SetDefault("allure.dir", "target/allure-results")
	v.SetDefault("allure.report.dir", "target/allure-report")
	v.SetDefault("journal.file", "test-output/events.jsonl")
	v.SetDefault("suite.file", "suite.yaml")
	v.SetDefault("testdata.file", "testdata/TestData.xlsx")
}

// legacyKeys maps the old gmail.* and team.* keys onto their email.*
// replacements. A new key always wins over its legacy one.
var legacyKeys = map[string]string{
	"gmail.username": "email.username",
	"gmail.password": "email.password",
	"team.email":     "email.recipients",
}

// Load reads the properties file at pth for portal. Environment variables
// prefixed with CORPSUITE_ override file values.
func Load(fsys afero.Fs, pth string, portal Portal) (*Config, error) {
	v := viper.New()
	v.SetFs(fsys)
	v.SetConfigFile(pth)
	v.SetConfigType("properties")
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("viper.ReadInConfig: %w", err)
	}

	for legacy, current := range legacyKeys {
		if v.GetString(current) == "" && v.GetString(legacy) != "" {
			v.Set(current, v.GetString(legacy))
		}
	}

	return build(v, portal)
}

func build(v *viper.Viper, portal Portal) (*Config, error) {
	emailTimeout, err := duration(v, "email.smtp.timeout")
	if err != nil {
		return nil, err
	}

	browserTimeout, err := duration(v, "browser.timeout")
	if err != nil {
		return nil, err
	}

	slowMo, err := duration(v, "browser.slowmo")
	if err != nil {
		return nil, err
	}

	prefix := string(portal)
	cfg := Config{
		Portal:      portal,
		Heading:     portal.Heading(),
		Environment: v.GetString("report.environment"),
		BaseURL:     v.GetString("base.url"),
		Username:    v.GetString(prefix + "_username"),
		Password:    v.GetString(prefix + "_password"),
		Email: Email{
			Enabled:    v.GetBool("email.enabled"),
			Host:       v.GetString("email.smtp.host"),
			Port:       v.GetInt("email.smtp.port"),
			SSL:        v.GetBool("email.smtp.ssl"),
			TLS:        v.GetBool("email.smtp.tls"),
			Timeout:    emailTimeout,
			From:       v.GetString("email.from"),
			Username:   v.GetString("email.username"),
			Password:   v.GetString("email.password"),
			Recipients: SplitList(v.GetString("email.recipients")),
		},
		IMAP: IMAP{
			Host:     v.GetString("imap.host"),
			Port:     v.GetInt("imap.port"),
			Username: v.GetString("email.username"),
			Password: v.GetString("email.password"),
			Mailbox:  v.GetString("imap.mailbox"),
		},
		Browser: Browser{
			Headless: v.GetBool("browser.headless"),
			Timeout:  browserTimeout,
			SlowMo:   slowMo,
			Width:    v.GetInt("browser.width"),
			Height:   v.GetInt("browser.height"),
		},
		Retry: Retry{Max: v.GetInt("retry.max")},
		Dirs: Dirs{
			Report:       v.GetString("report.dir"),
			Screenshot:   v.GetString("screenshot.dir"),
			Allure:       v.GetString("allure.dir"),
			AllureReport: v.GetString("allure.report.dir"),
			Journal:      v.GetString("journal.file"),
		},
		SuiteFile: v.GetString("suite.file"),
		TestData:  v.GetString("testdata.file"),
		values:    make(map[string]string),
	}

	if cfg.Email.From == "" {
		cfg.Email.From = cfg.Email.Username
	}

	for _, key := range v.AllKeys() {
		cfg.values[key] = v.GetString(key)
	}

	return &cfg, nil
}

// duration accepts Go durations ("30s") and bare integers, read as seconds.
func duration(v *viper.Viper, key string) (time.Duration, error) {
	raw := strings.TrimSpace(v.GetString(key))
	if raw == "" {
		return 0, nil
	}

	if n, err := strconv.Atoi(raw); err == nil {
		return time.Duration(n) * time.Second, nil
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("config %s: %w", key, err)
	}

	return d, nil
}

var listSep = regexp.MustCompile(`[,;]\s*`)

// SplitList splits a comma separated property, dropping blanks.
func SplitList(s string) []string {
	var out []string
	for _, part := range listSep.Split(s, -1) {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}

	return out
}

package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/huh"

	"github.com/julianstephens/foodplannery/internal/auth"
	"github.com/julianstephens/foodplannery/internal/backup"
	"github.com/julianstephens/foodplannery/internal/config"
	"github.com/julianstephens/foodplannery/internal/constants"
	"github.com/julianstephens/foodplannery/internal/logger"
	"github.com/julianstephens/foodplannery/internal/models"
	"github.com/julianstephens/foodplannery/internal/planner"
	"github.com/julianstephens/foodplannery/internal/storage"
	"github.com/julianstephens/foodplannery/internal/validation"
)

// Context is shared by every command. Services are built on first use, after
// the store has loaded.
type Context struct {
	Store  storage.Provider
	Config *config.Config
	Out    io.Writer
	Now    func() time.Time

	// Sender delivers login codes; nil prints them to Out
	Sender auth.Sender
	// Prompt asks the user for a line of input; nil uses a huh input field
	Prompt func(title string) (string, error)

	// AuthOptions and PlannerOptions are appended when the services are built
	AuthOptions    []auth.Option
	PlannerOptions []planner.Option

	loaded  bool
	auth    *auth.Service
	planner *planner.Store
}

// Load opens the store and builds the auth and planner services
func (c *Context) Load() error {
	if c.loaded {
		return nil
	}
	if err := c.Store.Load(); err != nil {
		return err
	}
	c.buildServices()
	return nil
}

// Init creates fresh storage and builds the services on top of it
func (c *Context) Init() error {
	if err := c.Store.Init(); err != nil {
		return err
	}
	c.buildServices()
	return nil
}

func (c *Context) buildServices() {
	cfg := c.config()
	sender := c.Sender
	if sender == nil {
		sender = auth.WriterSender{W: c.out()}
	}

	authOpts := append([]auth.Option{
		auth.WithSender(sender),
		auth.WithTTL(cfg.OTPTTL),
		auth.WithClock(c.now),
	}, c.AuthOptions...)
	c.auth = auth.New(c.Store, authOpts...)
	c.planner = planner.New(c.Store, c.auth, c.PlannerOptions...)
	c.loaded = true
}

// Reload rebuilds the services from the slots currently in the store
func (c *Context) Reload() error {
	if err := c.Load(); err != nil {
		return err
	}
	c.buildServices()
	return nil
}

func (c *Context) Auth() *auth.Service {
	return c.auth
}

func (c *Context) Planner() *planner.Store {
	return c.planner
}

// RequireUser loads the store and returns the signed-in user
func (c *Context) RequireUser() (models.User, error) {
	if err := c.Load(); err != nil {
		return models.User{}, err
	}
	return c.auth.RequireUser()
}

func (c *Context) Backups() *backup.Manager {
	return backup.NewManager(c.Store, c.config().BackupDir())
}

// PerformAutomaticBackup creates a backup and only logs failures
func (c *Context) PerformAutomaticBackup() {
	if _, err := c.Backups().CreateBackup(); err != nil {
		logger.Warn("Automatic backup failed", "error", err)
	}
}

func (c *Context) BookingRules() validation.BookingRules {
	cfg := c.config()
	return validation.BookingRules{
		Slots:      cfg.ConsultationSlots,
		WindowDays: cfg.ConsultationWindowDays,
	}
}

func (c *Context) config() *config.Config {
	if c.Config == nil {
		c.Config = config.Default()
	}
	return c.Config
}

func (c *Context) now() time.Time {
	if c.Now != nil {
		return c.Now()
	}
	return time.Now()
}

// Today returns the current local date as YYYY-MM-DD
func (c *Context) Today() string {
	return c.now().Format(constants.DateFormat)
}

// Clock returns the time source used by commands
func (c *Context) Clock() time.Time {
	return c.now()
}

func (c *Context) out() io.Writer {
	if c.Out == nil {
		return os.Stdout
	}
	return c.Out
}

func (c *Context) Printf(format string, args ...any) {
	fmt.Fprintf(c.out(), format, args...)
}

func (c *Context) Println(args ...any) {
	fmt.Fprintln(c.out(), args...)
}

// Ask prompts for a line of input
func (c *Context) Ask(title string) (string, error) {
	if c.Prompt != nil {
		return c.Prompt(title)
	}

	var value string
	err := huh.NewInput().Title(title).Value(&value).Run()
	if errors.Is(err, huh.ErrUserAborted) {
		return "", errors.New("cancelled")
	}
	return strings.TrimSpace(value), err
}

// Confirm asks a yes/no question, defaulting to no
func (c *Context) Confirm(question string) (bool, error) {
	answer, err := c.Ask(question + " [y/N]")
	if err != nil {
		return false, err
	}
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "y" || answer == "yes", nil
}

// ResolveDate accepts YYYY-MM-DD, "today" or "tomorrow"
func (c *Context) ResolveDate(s string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "today":
		return c.Today(), nil
	case "tomorrow":
		return c.now().AddDate(0, 0, 1).Format(constants.DateFormat), nil
	}
	if _, err := time.Parse(constants.DateFormat, s); err != nil {
		return "", fmt.Errorf("invalid date %q, use YYYY-MM-DD, 'today' or 'tomorrow'", s)
	}
	return s, nil
}

// SplitList parses a comma-separated list, dropping blanks
func SplitList(s string) []string {
	out := []string{}
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/julianstephens/streakly/internal/backup"
	"github.com/julianstephens/streakly/internal/config"
	"github.com/julianstephens/streakly/internal/habits"
	"github.com/julianstephens/streakly/internal/logger"
	"github.com/julianstephens/streakly/internal/models"
	"github.com/julianstephens/streakly/internal/storage"
)

// Context is passed to every command's Run method.
type Context struct {
	Provider storage.Provider
	Habits   *habits.Store
	Config   *config.Config

	Out io.Writer
	In  io.Reader

	loaded bool
}

// Load opens the storage backend and reads the habit collections. It is safe
// to call more than once.
func (c *Context) Load() error {
	if c.loaded {
		return nil
	}
	if err := c.Provider.Load(); err != nil {
		return err
	}
	if err := c.Habits.Load(); err != nil {
		return err
	}
	c.loaded = true
	return nil
}

// Reset forgets any loaded state, for commands that replace the store file.
func (c *Context) Reset() {
	c.loaded = false
}

func (c *Context) out() io.Writer {
	if c.Out == nil {
		return os.Stdout
	}
	return c.Out
}

func (c *Context) Printf(format string, args ...interface{}) {
	fmt.Fprintf(c.out(), format, args...)
}

func (c *Context) Println(args ...interface{}) {
	fmt.Fprintln(c.out(), args...)
}

// Writer returns the command output stream.
func (c *Context) Writer() io.Writer {
	return c.out()
}

// Confirm asks a yes/no question on the input stream. Anything but y or yes is a no.
func (c *Context) Confirm(prompt string) (bool, error) {
	in := c.In
	if in == nil {
		in = os.Stdin
	}
	c.Printf("%s [y/N]: ", prompt)

	response, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && err != io.EOF {
		return false, err
	}
	response = strings.TrimSpace(strings.ToLower(response))
	return response == "y" || response == "yes", nil
}

// FileBacked reports whether the store lives in a local file that can be backed up.
func (c *Context) FileBacked() bool {
	return c.Config == nil || c.Config.StorageKind != config.StoragePostgres
}

// PerformAutomaticBackup creates an automatic backup and silently handles errors
func (c *Context) PerformAutomaticBackup() {
	if !c.FileBacked() || (c.Config != nil && !c.Config.Backup.Auto) {
		return
	}
	mgr := backup.NewManager(c.Provider.GetConfigPath())
	if _, err := mgr.CreateBackup(); err != nil {
		// Log warning but don't interrupt user workflow
		logger.Warn("Automatic backup failed", "error", err)
	}
}

// ParseCategory accepts an empty string as the default category.
func ParseCategory(s string) (models.Category, error) {
	if strings.TrimSpace(s) == "" {
		return models.CategoryOther, nil
	}
	return models.ParseCategory(s)
}

// Truncate shortens s to width runes, ending with an ellipsis when cut.
func Truncate(s string, width int) string {
	r := []rune(s)
	if len(r) <= width {
		return s + strings.Repeat(" ", width-len(r))
	}
	if width >= 5 {
		return string(r[:width-3]) + "..."
	}
	return string(r[:width])
}

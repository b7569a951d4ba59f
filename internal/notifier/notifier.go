// Package notifier delivers reminder text to the desktop tray companion over
// its localhost webhook. Delivery is best-effort.
package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/mitchellh/go-ps"

	"github.com/julianstephens/habitlit/internal/constants"
)

// ErrTrayNotRunning is returned when no live tray process owns the lockfile
var ErrTrayNotRunning = errors.New(constants.TrayProcessPrefix + " is not running")

// Sender delivers one notification.
type Sender interface {
	Notify(ctx context.Context, text string) error
}

type Notifier struct {
	configDir   func() (string, error)
	findProcess func(int) (ps.Process, error)
	client      *http.Client
}

type payload struct {
	Text       string `json:"text"`
	DurationMs uint32 `json:"duration_ms"`
}

// lock is the tray's lockfile content: port|pid|secret.
type lock struct {
	port   int
	pid    int
	secret string
}

func New() *Notifier {
	return &Notifier{
		configDir:   os.UserConfigDir,
		findProcess: ps.FindProcess,
		client:      &http.Client{Timeout: 5 * time.Second},
	}
}

func (n *Notifier) Notify(ctx context.Context, text string) error {
	dir, err := n.trayDir()
	if err != nil {
		return err
	}

	l, err := n.findTray(filepath.Join(dir, constants.NotifierLockfileName))
	if err != nil {
		return err
	}

	return n.send(ctx, l, payload{Text: text, DurationMs: constants.NotificationDurationMs})
}

// trayDir returns the tray's config directory, honouring a lockfile_dir
// override in its settings.json.
func (n *Notifier) trayDir() (string, error) {
	base, err := n.configDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user config dir: %w", err)
	}
	dir := filepath.Join(base, constants.TrayAppIdentifier)

	data, err := os.ReadFile(filepath.Join(dir, "settings.json"))
	if err != nil {
		return dir, nil
	}

	var settings struct {
		Settings struct {
			LockfileDir string `json:"lockfile_dir"`
		} `json:"settings"`
	}
	if err := json.Unmarshal(data, &settings); err == nil && settings.Settings.LockfileDir != "" {
		return settings.Settings.LockfileDir, nil
	}
	return dir, nil
}

func parseLock(content string) (lock, error) {
	parts := strings.Split(strings.TrimSpace(content), "|")
	if len(parts) != 3 {
		return lock{}, errors.New("lockfile is malformed")
	}

	port, err := strconv.Atoi(parts[0])
	if err != nil || port < 1 || port > 65535 {
		return lock{}, fmt.Errorf("invalid port %q in lockfile", parts[0])
	}
	pid, err := strconv.Atoi(parts[1])
	if err != nil || pid < 1 {
		return lock{}, fmt.Errorf("invalid process id %q in lockfile", parts[1])
	}
	secret := strings.TrimSpace(parts[2])
	if secret == "" {
		return lock{}, errors.New("secret in lockfile is empty")
	}

	return lock{port: port, pid: pid, secret: secret}, nil
}

func (n *Notifier) findTray(lockfilePath string) (lock, error) {
	content, err := os.ReadFile(lockfilePath)
	if err != nil {
		return lock{}, ErrTrayNotRunning
	}

	l, err := parseLock(string(content))
	if err != nil {
		return lock{}, err
	}

	process, err := n.findProcess(l.pid)
	if err != nil || process == nil {
		return lock{}, ErrTrayNotRunning
	}
	if !strings.HasPrefix(process.Executable(), constants.TrayProcessPrefix) {
		return lock{}, fmt.Errorf("process %d is %s, not %s", l.pid, process.Executable(), constants.TrayProcessPrefix)
	}

	return l, nil
}

func (n *Notifier) send(ctx context.Context, l lock, p payload) error {
	body, err := json.Marshal(p)
	if err != nil {
		return err
	}

	url := fmt.Sprintf("http://127.0.0.1:%d", l.port)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Habitlit-Secret", l.secret)

	res, err := n.client.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusOK {
		return nil
	}
	msg, _ := io.ReadAll(io.LimitReader(res.Body, 1024))
	return fmt.Errorf("notification failed with status %d: %s", res.StatusCode, strings.TrimSpace(string(msg)))
}

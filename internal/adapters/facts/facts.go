package facts

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/shirou/gopsutil/v4/host"

	"github.com/parttimehacker/diystatus/internal/ports"
)

// ErrFactUnavailable is returned when a fact has no source on this host.
var ErrFactUnavailable = errors.New("fact unavailable")

type Config struct {
	OSReleasePath string `yaml:"os_release_path"`
	ModelPath     string `yaml:"model_path"`
}

func (c *Config) ApplyDefaults() {
	if c.OSReleasePath == "" {
		c.OSReleasePath = "/etc/os-release"
	}
	if c.ModelPath == "" {
		c.ModelPath = "/proc/device-tree/model"
	}
}

// FileFacts reads the OS version from os-release and the board model from the
// device tree, falling back to gopsutil's platform version when os-release
// has no VERSION key.
type FileFacts struct {
	cfg      Config
	readFile func(string) ([]byte, error)
	hostInfo func(ctx context.Context) (*host.InfoStat, error)
}

func NewFileFacts(cfg Config) *FileFacts {
	cfg.ApplyDefaults()
	return &FileFacts{
		cfg:      cfg,
		readFile: os.ReadFile,
		hostInfo: host.InfoWithContext,
	}
}

func (f *FileFacts) OSVersion(ctx context.Context) (string, error) {
	data, err := f.readFile(f.cfg.OSReleasePath)
	if err == nil {
		if v, ok := parseOSReleaseVersion(data); ok {
			return v, nil
		}
	}

	info, herr := f.hostInfo(ctx)
	if herr == nil && info.PlatformVersion != "" {
		return info.PlatformVersion, nil
	}
	if err != nil {
		return "", fmt.Errorf("read %s: %w", f.cfg.OSReleasePath, err)
	}
	return "", fmt.Errorf("%w: no VERSION in %s", ErrFactUnavailable, f.cfg.OSReleasePath)
}

func (f *FileFacts) HardwareModel(context.Context) (string, error) {
	data, err := f.readFile(f.cfg.ModelPath)
	if errors.Is(err, os.ErrNotExist) {
		return "", fmt.Errorf("%w: %s missing", ErrFactUnavailable, f.cfg.ModelPath)
	}
	if err != nil {
		return "", fmt.Errorf("read %s: %w", f.cfg.ModelPath, err)
	}
	model := strings.TrimSpace(string(bytes.TrimRight(data, "\x00")))
	if model == "" {
		return "", fmt.Errorf("%w: %s is empty", ErrFactUnavailable, f.cfg.ModelPath)
	}
	return model, nil
}

// parseOSReleaseVersion returns the VERSION value with every quote character
// removed.
func parseOSReleaseVersion(data []byte) (string, bool) {
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		key, value, ok := strings.Cut(scanner.Text(), "=")
		if !ok || strings.TrimSpace(key) != "VERSION" {
			continue
		}
		return strings.ReplaceAll(strings.TrimSpace(value), `"`, ""), true
	}
	return "", false
}

var _ ports.FactSource = (*FileFacts)(nil)

package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/pflag"

	"github.com/atomicstack/stacknav/internal/app"
	"github.com/atomicstack/stacknav/internal/store"
)

// Config captures runtime configuration for the application.
type Config struct {
	App     app.Config
	Logging Logging
	// File is the config file that was read, empty when none was found.
	File  string
	Flags map[string]string
	Args  []string
}

type Logging struct {
	FilePath string
	Trace    bool
}

const (
	envConfig  = "STACKNAV_CONFIG"
	envBackend = "STACKNAV_BACKEND"
	envDB      = "STACKNAV_DB"
	envStack   = "STACKNAV_STACK"
	envWidth   = "STACKNAV_WIDTH"
	envHeight  = "STACKNAV_HEIGHT"
	envFooter  = "STACKNAV_FOOTER"
	envPoll    = "STACKNAV_POLL"
	envTrace   = "STACKNAV_TRACE"
	envLogFile = "STACKNAV_LOG_FILE"
)

const (
	defaultConfigFile = "~/.config/stacknav/config.toml"
	defaultDataDir    = "~/.local/share/stacknav"
	defaultLogFile    = "stacknav.log"
	defaultPoll       = 2 * time.Second
)

var (
	ErrInvalidSize    = errors.New("size must be >= 0")
	ErrInvalidPoll    = errors.New("poll interval must be >= 0")
	ErrUnknownSetting = errors.New("unknown setting in config file")
)

// fileConfig mirrors the TOML file. Unset keys stay nil so they do not
// shadow defaults.
type fileConfig struct {
	Backend *string `toml:"backend"`
	DB      *string `toml:"db"`
	Stack   *string `toml:"stack"`
	Width   *int    `toml:"width"`
	Height  *int    `toml:"height"`
	Footer  *bool   `toml:"footer"`
	Poll    *string `toml:"poll"`
	Trace   *bool   `toml:"trace"`
	LogFile *string `toml:"log_file"`
}

// Loader binds every setting to a flag set and resolves the final values
// once the flags are parsed. Precedence is flag, then environment, then
// config file, then built-in default.
type Loader struct {
	fs  *pflag.FlagSet
	env map[string]string
}

// NewLoader registers the settings on fs.
func NewLoader(fs *pflag.FlagSet, environ []string) *Loader {
	fs.String("config", defaultConfigFile, "path to an optional TOML config file")
	fs.String("backend", string(store.KindSQLite), fmt.Sprintf("storage backend (%s)", strings.Join(kindNames(), ", ")))
	fs.String("db", "", "sqlite database file or diskv directory (default under "+defaultDataDir+")")
	fs.String("stack", "", "open the stack whose name best matches this on start")
	fs.Int("width", 0, "desired viewport width in cells (0 uses terminal width)")
	fs.Int("height", 0, "desired viewport height in rows (0 uses terminal height)")
	fs.Bool("footer", true, "show the key help row")
	fs.Duration("poll", defaultPoll, "how often to check the store for changes (0 disables)")
	fs.Bool("trace", false, "enable verbose JSON trace logging")
	fs.String("log-file", defaultLogFile, "path to the log file")
	return &Loader{fs: fs, env: parseEnv(environ)}
}

// LoadArgs parses args on a fresh flag set and resolves them against
// environ.
func LoadArgs(args []string, environ []string) (Config, error) {
	fs := pflag.NewFlagSet("stacknav", pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	loader := NewLoader(fs, environ)
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	return loader.Resolve(args)
}

// Resolve merges flags, environment and config file. args is recorded for
// tracing only.
func (l *Loader) Resolve(args []string) (Config, error) {
	configPath, explicit := l.str("config", envConfig)
	if !explicit {
		configPath = defaultConfigFile
	}
	configPath, err := homedir.Expand(configPath)
	if err != nil {
		return Config{}, fmt.Errorf("expand config path: %w", err)
	}
	file, loaded, err := readFile(configPath, explicit)
	if err != nil {
		return Config{}, err
	}

	backend := strings.ToLower(strings.TrimSpace(l.stringSetting("backend", envBackend, file.Backend)))
	dbPath := l.stringSetting("db", envDB, file.DB)
	stack := l.stringSetting("stack", envStack, file.Stack)
	width := l.intSetting("width", envWidth, file.Width)
	height := l.intSetting("height", envHeight, file.Height)
	footer := l.boolSetting("footer", envFooter, file.Footer)
	trace := l.boolSetting("trace", envTrace, file.Trace)
	logFile := l.stringSetting("log-file", envLogFile, file.LogFile)
	poll, err := l.durationSetting("poll", envPoll, file.Poll)
	if err != nil {
		return Config{}, err
	}

	if strings.TrimSpace(dbPath) == "" {
		dbPath = DefaultDBPath(store.Kind(backend))
	}
	if dbPath, err = homedir.Expand(dbPath); err != nil {
		return Config{}, fmt.Errorf("expand db path: %w", err)
	}
	if logFile, err = homedir.Expand(logFile); err != nil {
		return Config{}, fmt.Errorf("expand log path: %w", err)
	}

	cfg := Config{
		App: app.Config{
			Backend:    store.Kind(backend),
			DBPath:     dbPath,
			Stack:      stack,
			Width:      width,
			Height:     height,
			ShowFooter: footer,
			Poll:       poll,
		},
		Logging: Logging{
			FilePath: logFile,
			Trace:    trace,
		},
		Flags: map[string]string{
			"backend": backend,
			"db":      dbPath,
			"stack":   stack,
			"width":   strconv.Itoa(width),
			"height":  strconv.Itoa(height),
			"footer":  strconv.FormatBool(footer),
			"poll":    poll.String(),
			"trace":   strconv.FormatBool(trace),
			"logFile": logFile,
		},
		Args: append([]string(nil), args...),
	}
	if loaded {
		cfg.File = configPath
	}
	return cfg, nil
}

// DefaultDBPath is where a backend keeps its data when no path is given.
func DefaultDBPath(kind store.Kind) string {
	switch kind {
	case store.KindDiskv:
		return filepath.Join(defaultDataDir, "stacks.d")
	default:
		return filepath.Join(defaultDataDir, "stacks.db")
	}
}

// readFile decodes path. A missing file is only an error when the path was
// given explicitly.
func readFile(path string, explicit bool) (fileConfig, bool, error) {
	var fc fileConfig
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) && !explicit {
			return fc, false, nil
		}
		return fc, false, fmt.Errorf("config file: %w", err)
	}
	md, err := toml.DecodeFile(path, &fc)
	if err != nil {
		return fc, false, fmt.Errorf("config file %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return fc, false, fmt.Errorf("%w %s: %s", ErrUnknownSetting, path, strings.Join(keys, ", "))
	}
	return fc, true, nil
}

// str returns the flag value if it was set, else the environment value. The
// bool reports whether either source supplied it.
func (l *Loader) str(name, envKey string) (string, bool) {
	if f := l.fs.Lookup(name); f != nil && f.Changed {
		return f.Value.String(), true
	}
	if v, ok := l.env[envKey]; ok && strings.TrimSpace(v) != "" {
		return v, true
	}
	return "", false
}

func (l *Loader) stringSetting(name, envKey string, file *string) string {
	if v, ok := l.str(name, envKey); ok {
		return v
	}
	if file != nil {
		return *file
	}
	return l.fs.Lookup(name).DefValue
}

func (l *Loader) intSetting(name, envKey string, file *int) int {
	if f := l.fs.Lookup(name); f.Changed {
		v, _ := l.fs.GetInt(name)
		return v
	}
	fallback, _ := strconv.Atoi(l.fs.Lookup(name).DefValue)
	if file != nil {
		fallback = *file
	}
	return envOrInt(l.env, envKey, fallback)
}

func (l *Loader) boolSetting(name, envKey string, file *bool) bool {
	if f := l.fs.Lookup(name); f.Changed {
		v, _ := l.fs.GetBool(name)
		return v
	}
	fallback, _ := strconv.ParseBool(l.fs.Lookup(name).DefValue)
	if file != nil {
		fallback = *file
	}
	return envOrBool(l.env, envKey, fallback)
}

func (l *Loader) durationSetting(name, envKey string, file *string) (time.Duration, error) {
	if f := l.fs.Lookup(name); f.Changed {
		return l.fs.GetDuration(name)
	}
	fallback, _ := time.ParseDuration(l.fs.Lookup(name).DefValue)
	if file != nil {
		parsed, err := time.ParseDuration(*file)
		if err != nil {
			return 0, fmt.Errorf("config file poll: %w", err)
		}
		fallback = parsed
	}
	return envOrDuration(l.env, envKey, fallback), nil
}

func parseEnv(environ []string) map[string]string {
	values := make(map[string]string, len(environ))
	for _, entry := range environ {
		if entry == "" {
			continue
		}
		parts := strings.SplitN(entry, "=", 2)
		if len(parts) != 2 {
			continue
		}
		values[parts[0]] = parts[1]
	}
	return values
}

func envOrInt(env map[string]string, key string, fallback int) int {
	v, ok := env[key]
	if !ok || strings.TrimSpace(v) == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return parsed
}

func envOrBool(env map[string]string, key string, fallback bool) bool {
	v, ok := env[key]
	if !ok || strings.TrimSpace(v) == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return parsed
}

func envOrDuration(env map[string]string, key string, fallback time.Duration) time.Duration {
	v, ok := env[key]
	if !ok || strings.TrimSpace(v) == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return parsed
}

func kindNames() []string {
	kinds := store.Kinds()
	names := make([]string, len(kinds))
	for i, k := range kinds {
		names[i] = string(k)
	}
	return names
}

// Validate rejects values the application cannot run with.
func Validate(cfg Config) error {
	if cfg.App.Width < 0 {
		return fmt.Errorf("%w: width %d", ErrInvalidSize, cfg.App.Width)
	}
	if cfg.App.Height < 0 {
		return fmt.Errorf("%w: height %d", ErrInvalidSize, cfg.App.Height)
	}
	if cfg.App.Poll < 0 {
		return fmt.Errorf("%w: %s", ErrInvalidPoll, cfg.App.Poll)
	}
	if _, err := store.ParseKind(string(cfg.App.Backend)); err != nil {
		return err
	}
	return nil
}

// Package plugins provides exec-based plugin support for wareader.
// Plugins are separate binaries named wareader-<command> that are discovered
// and executed when an unknown command is invoked, the way kubectl and git
// handle theirs.
package plugins

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ccollicutt/wareader/pkg/config"
)

// Prefix starts every plugin binary name.
const Prefix = "wareader-"

// Environment variables passed to plugins so they can reach the same
// configuration and transcript store as the parent command.
const (
	EnvConfig = config.EnvConfig
	EnvDB     = config.EnvDB
)

// ErrPluginNotFound is returned when no plugin binary can be located.
var ErrPluginNotFound = errors.New("plugin not found")

// Plugin is a discovered plugin binary.
type Plugin struct {
	Name string // command name without the prefix
	Path string
}

// Finder locates plugin binaries.
type Finder struct {
	// Dirs are searched in order before PATH.
	Dirs []string

	// UsePath also searches the PATH directories.
	UsePath bool
}

// DefaultFinder searches, in order:
//  1. The directory holding the wareader binary
//  2. ~/.wareader/plugins/
//  3. PATH
func DefaultFinder() *Finder {
	f := &Finder{UsePath: true}
	if execPath, err := os.Executable(); err == nil {
		f.Dirs = append(f.Dirs, filepath.Dir(execPath))
	}
	if homeDir, err := os.UserHomeDir(); err == nil {
		f.Dirs = append(f.Dirs, filepath.Join(homeDir, ".wareader", "plugins"))
	}
	return f
}

// Find returns the full path of the plugin implementing command.
func (f *Finder) Find(command string) (string, error) {
	if command == "" || strings.ContainsAny(command, `/\`) {
		return "", ErrPluginNotFound
	}
	name := Prefix + command

	for _, dir := range f.Dirs {
		candidate := filepath.Join(dir, name)
		if isExecutable(candidate) {
			return candidate, nil
		}
	}

	if f.UsePath {
		if path, err := exec.LookPath(name); err == nil {
			return path, nil
		}
	}

	return "", ErrPluginNotFound
}

// List returns every plugin visible to the finder, sorted by name. When the
// same name appears in several places the first location wins, matching Find.
func (f *Finder) List() []Plugin {
	dirs := append([]string(nil), f.Dirs...)
	if f.UsePath {
		dirs = append(dirs, filepath.SplitList(os.Getenv("PATH"))...)
	}

	seen := make(map[string]bool)
	var plugins []Plugin
	for _, dir := range dirs {
		entries, err := os.ReadDir(dir)
		if err != nil {
			continue
		}
		for _, e := range entries {
			name := e.Name()
			if !strings.HasPrefix(name, Prefix) || len(name) == len(Prefix) {
				continue
			}
			path := filepath.Join(dir, name)
			command := strings.TrimPrefix(name, Prefix)
			if seen[command] || !isExecutable(path) {
				continue
			}
			seen[command] = true
			plugins = append(plugins, Plugin{Name: command, Path: path})
		}
	}

	sort.Slice(plugins, func(i, j int) bool { return plugins[i].Name < plugins[j].Name })
	return plugins
}

// Environ returns the current environment extended with the config and
// store paths, when set.
func Environ(configPath, dbPath string) []string {
	env := os.Environ()
	if configPath != "" {
		env = append(env, EnvConfig+"="+configPath)
	}
	if dbPath != "" {
		env = append(env, EnvDB+"="+dbPath)
	}
	return env
}

// Execute runs a plugin with the given arguments and environment, connected
// to the current stdin, stdout and stderr, and returns its exit code.
func Execute(ctx context.Context, pluginPath string, args, env []string) int {
	cmd := exec.CommandContext(ctx, pluginPath, args...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	cmd.Env = env

	err := cmd.Run()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return exitErr.ExitCode()
		}
		fmt.Fprintf(os.Stderr, "Error executing plugin: %v\n", err)
		return 1
	}

	return 0
}

// FormatNotFoundError returns a helpful error message when a plugin is not found.
func FormatNotFoundError(command string) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "unknown command %q for \"wareader\"\n", command)
	sb.WriteString("\nIf this is a plugin, install the binary as one of:\n")
	fmt.Fprintf(&sb, "  - %s%s in the same directory as wareader\n", Prefix, command)
	fmt.Fprintf(&sb, "  - ~/.wareader/plugins/%s%s\n", Prefix, command)
	fmt.Fprintf(&sb, "  - %s%s anywhere in your PATH\n", Prefix, command)
	sb.WriteString("\nRun 'wareader --help' for usage.")

	return sb.String()
}

// isExecutable checks if a path is a regular file with an execute bit set.
func isExecutable(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.Mode().IsRegular() && info.Mode()&0111 != 0
}

package shell

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/chzyer/readline"

	"github.com/r3d91ll/relaxplot/pkg/chart"
)

// commands is the static list of available shell commands (without the / prefix).
var commands = []string{
	"quit",
	"exit",
	"q",
	"help",
	"h",
	"load",
	"set",
	"show",
	"export",
	"grace",
	"r",
	"python",
	"preview",
	"backends",
	"bars",
	"skip",
	"manifest",
}

// backendCommands take a backend name as their first argument.
var backendCommands = []string{"export", "preview"}

// toggleCommands take on or off.
var toggleCommands = []string{"bars", "skip", "manifest"}

// ShellCompleter provides tab completion for commands, settings, backend
// names and dataset paths. It implements readline.AutoCompleter.
type ShellCompleter struct {
	// readDir lists a directory; replaced in tests.
	readDir func(string) ([]os.DirEntry, error)
}

// NewShellCompleter creates a completer backed by the file system.
func NewShellCompleter() *ShellCompleter {
	return &ShellCompleter{readDir: os.ReadDir}
}

var _ readline.AutoCompleter = (*ShellCompleter)(nil)

// Do implements readline.AutoCompleter. It returns candidate suffixes for
// the word under the cursor and the length of that word.
func (c *ShellCompleter) Do(line []rune, pos int) (newLine [][]rune, length int) {
	if len(line) == 0 || pos <= 0 {
		return nil, 0
	}
	if pos > len(line) {
		pos = len(line)
	}

	lineStr := string(line[:pos])
	wordStart := findWordStart(lineStr)
	currentWord := lineStr[wordStart:]

	fields := strings.Fields(lineStr[:wordStart])
	if len(fields) == 0 {
		if strings.HasPrefix(currentWord, "/") {
			return c.completeCommand(currentWord)
		}
		return nil, 0
	}

	cmd := strings.TrimPrefix(fields[0], "/")
	argIndex := len(fields) - 1

	switch {
	case cmd == "load" && argIndex == 0:
		return c.completePath(currentWord)
	case cmd == "set" && argIndex == 0:
		return completeFrom(settingKeys, currentWord)
	case cmd == "set" && argIndex == 1 && fields[1] == "type":
		return completeFrom(backendNames(), currentWord)
	case contains(backendCommands, cmd) && argIndex == 0:
		return completeFrom(backendNames(), currentWord)
	case contains(toggleCommands, cmd) && argIndex == 0:
		return completeFrom([]string{"on", "off"}, currentWord)
	}
	return nil, 0
}

// findWordStart returns the index after the last space or tab in s.
func findWordStart(s string) int {
	return strings.LastIndexAny(s, " \t") + 1
}

// completeCommand returns completions for commands starting with prefix,
// which includes the leading "/".
func (c *ShellCompleter) completeCommand(prefix string) ([][]rune, int) {
	return completeFrom(commands, strings.TrimPrefix(prefix, "/"))
}

// completeFrom returns the suffixes of candidates that extend prefix, each
// followed by a space.
func completeFrom(candidates []string, prefix string) ([][]rune, int) {
	var matches [][]rune
	for _, cand := range candidates {
		if strings.HasPrefix(cand, prefix) {
			matches = append(matches, []rune(cand[len(prefix):]+" "))
		}
	}
	return matches, len([]rune(prefix))
}

// completePath completes dataset file names and directories. Directories
// complete with a trailing separator so completion can continue.
func (c *ShellCompleter) completePath(prefix string) ([][]rune, int) {
	dir, base := filepath.Split(prefix)
	listDir := dir
	if listDir == "" {
		listDir = "."
	}
	entries, err := c.readDir(listDir)
	if err != nil {
		return nil, 0
	}

	var names []string
	for _, e := range entries {
		name := e.Name()
		if !strings.HasPrefix(name, base) || (strings.HasPrefix(name, ".") && !strings.HasPrefix(base, ".")) {
			continue
		}
		switch {
		case e.IsDir():
			names = append(names, name+string(filepath.Separator))
		case isDatasetFile(name):
			names = append(names, name+" ")
		}
	}
	sort.Strings(names)

	matches := make([][]rune, 0, len(names))
	for _, n := range names {
		matches = append(matches, []rune(n[len(base):]))
	}
	return matches, len([]rune(base))
}

func isDatasetFile(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".json", ".yaml", ".yml", ".csv", ".tsv", ".xlsx":
		return true
	}
	return false
}

func backendNames() []string {
	names := make([]string, 0, len(chart.Backends()))
	for _, b := range chart.Backends() {
		names = append(names, b.String())
	}
	return names
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

package shell

import (
	"io/fs"
	"os"
	"reflect"
	"sort"
	"testing"
	"time"

	"github.com/chzyer/readline"

	werrors "github.com/r3d91ll/relaxplot/pkg/errors"
	"github.com/r3d91ll/relaxplot/pkg/help"
)

// fakeEntry is a minimal os.DirEntry.
type fakeEntry struct {
	name string
	dir  bool
}

func (e fakeEntry) Name() string               { return e.name }
func (e fakeEntry) IsDir() bool                { return e.dir }
func (e fakeEntry) Type() fs.FileMode          { return 0 }
func (e fakeEntry) Info() (fs.FileInfo, error) { return fakeInfo{e}, nil }

type fakeInfo struct{ e fakeEntry }

func (i fakeInfo) Name() string       { return i.e.name }
func (i fakeInfo) Size() int64        { return 0 }
func (i fakeInfo) Mode() fs.FileMode  { return 0 }
func (i fakeInfo) ModTime() time.Time { return time.Time{} }
func (i fakeInfo) IsDir() bool        { return i.e.dir }
func (i fakeInfo) Sys() any           { return nil }

func newTestCompleter(dirs map[string][]fakeEntry) *ShellCompleter {
	return &ShellCompleter{readDir: func(dir string) ([]os.DirEntry, error) {
		entries, ok := dirs[dir]
		if !ok {
			return nil, fs.ErrNotExist
		}
		out := make([]os.DirEntry, len(entries))
		for i, e := range entries {
			out[i] = e
		}
		return out, nil
	}}
}

func complete(c *ShellCompleter, line string) ([]string, int) {
	matches, length := c.Do([]rune(line), len([]rune(line)))
	out := make([]string, len(matches))
	for i, m := range matches {
		out[i] = string(m)
	}
	sort.Strings(out)
	return out, length
}

func TestDoCommandCompletion(t *testing.T) {
	c := NewShellCompleter()

	tests := []struct {
		name       string
		line       string
		want       []string
		wantLength int
	}{
		{"single match", "/lo", []string{"ad "}, 2},
		{"several matches", "/s", []string{"et ", "how ", "kip "}, 1},
		{"exact command", "/preview", []string{" "}, 7},
		{"all commands", "/", nil, 0},
		{"no match", "/zzz", nil, 3},
		{"not a command", "load", nil, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, length := complete(c, tt.line)
			if tt.name == "all commands" {
				if len(got) != len(commands) {
					t.Errorf("got %d completions, want %d", len(got), len(commands))
				}
				return
			}
			if len(got) == 0 && len(tt.want) == 0 {
				return
			}
			if !reflect.DeepEqual(got, tt.want) || length != tt.wantLength {
				t.Errorf("Do(%q) = %q, %d; want %q, %d", tt.line, got, length, tt.want, tt.wantLength)
			}
		})
	}
}

func TestDoArgumentCompletion(t *testing.T) {
	c := NewShellCompleter()

	tests := []struct {
		line string
		want []string
	}{
		{"/export ", []string{"general ", "macro ", "stat "}},
		{"/export m", []string{"acro "}},
		{"/preview st", []string{"at "}},
		{"/set ", []string{"colors ", "file ", "ranges ", "templates ", "title ", "type ", "xlabel ", "ylabel "}},
		{"/set t", []string{"emplates ", "itle ", "ype "}},
		{"/set type g", []string{"eneral "}},
		{"/bars o", []string{"ff ", "n "}},
		{"/skip of", []string{"f "}},
		{"/export macro ", nil},
		{"/set title ", nil},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			got, _ := complete(c, tt.line)
			if len(got) == 0 && len(tt.want) == 0 {
				return
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Do(%q) = %q, want %q", tt.line, got, tt.want)
			}
		})
	}
}

func TestDoPathCompletion(t *testing.T) {
	c := newTestCompleter(map[string][]fakeEntry{
		".": {
			{name: "fits.yaml"},
			{name: "fits.csv"},
			{name: "figure.png"},
			{name: "data", dir: true},
			{name: ".hidden.json"},
		},
		"data/": {
			{name: "r2.xlsx"},
			{name: "notes.txt"},
		},
	})

	tests := []struct {
		name       string
		line       string
		want       []string
		wantLength int
	}{
		{"dataset files only", "/load fi", []string{"ts.csv ", "ts.yaml "}, 2},
		{"directory keeps going", "/load d", []string{"ata/"}, 1},
		{"nested directory", "/load data/", []string{"r2.xlsx "}, 0},
		{"hidden files need a dot", "/load .h", []string{"idden.json "}, 2},
		{"missing directory", "/load nowhere/x", nil, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, length := complete(c, tt.line)
			if len(got) == 0 && len(tt.want) == 0 {
				return
			}
			if !reflect.DeepEqual(got, tt.want) || length != tt.wantLength {
				t.Errorf("Do(%q) = %q, %d; want %q, %d", tt.line, got, length, tt.want, tt.wantLength)
			}
		})
	}

	t.Run("hidden files skipped by default", func(t *testing.T) {
		got, _ := complete(c, "/load ")
		for _, g := range got {
			if g == ".hidden.json " {
				t.Error("hidden file offered without a leading dot")
			}
		}
	})
}

func TestDoEdgeCases(t *testing.T) {
	c := NewShellCompleter()

	t.Run("empty line", func(t *testing.T) {
		if got, n := c.Do(nil, 0); got != nil || n != 0 {
			t.Errorf("Do(empty) = %v, %d", got, n)
		}
	})
	t.Run("cursor before end", func(t *testing.T) {
		line := []rune("/lo trailing")
		got, n := c.Do(line, 3)
		if len(got) != 1 || string(got[0]) != "ad " || n != 2 {
			t.Errorf("Do at pos 3 = %q, %d", got, n)
		}
	})
	t.Run("cursor past end", func(t *testing.T) {
		line := []rune("/he")
		got, _ := c.Do(line, 99)
		if len(got) != 1 || string(got[0]) != "lp " {
			t.Errorf("Do past end = %q", got)
		}
	})
}

func TestFindWordStart(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"", 0},
		{"/load", 0},
		{"/load ", 6},
		{"/set\ttitle", 5},
		{"/set title x", 11},
	}
	for _, tt := range tests {
		if got := findWordStart(tt.in); got != tt.want {
			t.Errorf("findWordStart(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestCommandsCoverHandlers(t *testing.T) {
	s, _ := newTestShell(t, nil)
	for _, cmd := range commands {
		if err := s.Execute("/" + cmd); werrors.IsCode(err, werrors.ErrCommandNotFound) {
			t.Errorf("completer offers /%s but the shell does not handle it: %v", cmd, err)
		}
	}
}

func TestHelpCoversCommands(t *testing.T) {
	offered := make(map[string]bool)
	for _, cmd := range commands {
		offered["/"+cmd] = true
	}
	for _, cmd := range help.Commands {
		names := append([]string{cmd.Name}, cmd.Aliases...)
		for _, name := range names {
			if !offered[name] {
				t.Errorf("help documents %s but the completer does not offer it", name)
			}
		}
	}
}

func TestReadlineAutoCompleterInterface(t *testing.T) {
	var _ readline.AutoCompleter = NewShellCompleter()
}

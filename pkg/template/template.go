// Package template holds the statement templates of each export backend and
// validates them against the roles the renderer needs.
package template

import (
	_ "embed"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/r3d91ll/relaxplot/pkg/chart"
	werrors "github.com/r3d91ll/relaxplot/pkg/errors"
)

//go:embed templates.yaml
var builtinYAML []byte

// QuoteStyle selects how string literals are written.
type QuoteStyle string

const (
	// QuoteStrconv writes Go-style double-quoted literals, which R and
	// Python both accept.
	QuoteStrconv QuoteStyle = "strconv"

	// QuoteASCII folds text to ASCII and writes it in double quotes with
	// embedded quotes replaced.
	QuoteASCII QuoteStyle = "ascii"
)

// backendDoc is one backend section of a template file.
type backendDoc struct {
	Quote QuoteStyle        `yaml:"quote"`
	Roles map[string]string `yaml:"roles"`
}

// Template is the validated, immutable role table of one backend.
type Template struct {
	backend chart.Backend
	quote   QuoteStyle
	formats map[Role]string
	logger  *slog.Logger
}

// Builtin returns the embedded template for b.
func Builtin(b chart.Backend, logger *slog.Logger) (*Template, error) {
	return Load(builtinYAML, b, logger)
}

// LoadFile reads a template file and returns the section for b.
func LoadFile(path string, b chart.Backend, logger *slog.Logger) (*Template, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, werrors.Wrap(err, werrors.ErrTemplateLoadFailed, werrors.CategoryTemplate,
			"failed to read template file").
			WithContext("path", path)
	}
	t, err := Load(data, b, logger)
	if pe, ok := werrors.AsPlotError(err); ok {
		pe.WithContext("path", path)
	}
	return t, err
}

// Load parses a template document keyed by backend name and validates the
// section for b: every required role must be present, every role must be
// known to the backend and every format string must accept the role's
// arguments.
func Load(data []byte, b chart.Backend, logger *slog.Logger) (*Template, error) {
	if logger == nil {
		logger = slog.Default()
	}
	var doc map[string]backendDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, werrors.Wrap(err, werrors.ErrTemplateLoadFailed, werrors.CategoryTemplate,
			"failed to parse template document")
	}
	section, ok := doc[b.String()]
	if !ok {
		return nil, werrors.TemplateErrorf(werrors.ErrTemplateMissingRole,
			"no template section for backend %s", b).
			WithContext("backend", b.String())
	}

	t := &Template{
		backend: b,
		quote:   section.Quote,
		formats: make(map[Role]string, len(section.Roles)),
		logger:  logger,
	}
	if t.quote == "" {
		t.quote = QuoteStrconv
		if b.Inline() {
			t.quote = QuoteASCII
		}
	}
	if t.quote != QuoteStrconv && t.quote != QuoteASCII {
		return nil, werrors.TemplateErrorf(werrors.ErrTemplateInvalid,
			"unknown quote style %q", t.quote).
			WithContext("backend", b.String())
	}

	names := make([]string, 0, len(section.Roles))
	for name := range section.Roles {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		role := Role(name)
		arity, known := Arity(b, role)
		if !known {
			return nil, werrors.TemplateErrorf(werrors.ErrTemplateInvalid,
				"role %q is not used by backend %s", name, b).
				WithContext("backend", b.String()).
				WithContext("role", name)
		}
		format := section.Roles[name]
		if err := checkFormat(format, arity); err != nil {
			return nil, werrors.TemplateErrorf(werrors.ErrTemplateInvalid,
				"role %q: %v", name, err).
				WithContext("backend", b.String()).
				WithContext("role", name)
		}
		t.formats[role] = format
	}

	for _, role := range RequiredRoles(b) {
		if _, ok := t.formats[role]; !ok {
			return nil, werrors.TemplateErrorf(werrors.ErrTemplateMissingRole,
				"backend %s has no template for role %q", b, role).
				WithContext("backend", b.String()).
				WithContext("role", string(role))
		}
	}
	return t, nil
}

// checkFormat formats with placeholder arguments and rejects any output
// carrying a fmt error marker.
func checkFormat(format string, arity int) error {
	args := make([]string, arity)
	for i := range args {
		args[i] = "arg"
	}
	if out := render(format, args); strings.Contains(out, "%!") {
		return fmt.Errorf("format %q does not accept %d argument(s): %s", format, arity, out)
	}
	return nil
}

func render(format string, args []string) string {
	if !strings.Contains(format, "%") {
		return format
	}
	vals := make([]any, len(args))
	for i, a := range args {
		vals[i] = a
	}
	return fmt.Sprintf(format, vals...)
}

// Backend returns the backend the template belongs to.
func (t *Template) Backend() chart.Backend {
	return t.backend
}

// Has reports whether the template defines role r.
func (t *Template) Has(r Role) bool {
	_, ok := t.formats[r]
	return ok
}

// Format fills role r with args. Roles the template does not define yield
// the empty string; required roles are guaranteed present by Load.
func (t *Template) Format(r Role, args ...string) string {
	format, ok := t.formats[r]
	if !ok {
		return ""
	}
	return render(format, args)
}

// Array formats items as the backend's array literal.
func (t *Template) Array(items []string) string {
	return t.Format(RoleArray, strings.Join(items, ", "))
}

// Quote writes s as a string literal of the backend. Text the backend
// cannot represent is folded to ASCII and the fallback is logged.
func (t *Template) Quote(s string) string {
	if t.quote == QuoteStrconv {
		return quoteStrconv(s)
	}
	folded, changed := FoldASCII(s)
	if changed {
		t.logger.Warn("label folded to ASCII",
			"backend", t.backend.String(),
			"original", s,
			"folded", folded)
	}
	folded = strings.ReplaceAll(folded, `\`, `\\`)
	folded = strings.ReplaceAll(folded, `"`, `'`)
	return `"` + folded + `"`
}

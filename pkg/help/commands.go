package help

import "strings"

// Category groups commands in help output.
type Category string

// Command categories, in display order.
const (
	CategoryData     Category = "data"
	CategorySettings Category = "settings"
	CategoryExport   Category = "export"
	CategoryGeneral  Category = "general"
)

// CategoryOrder is the order categories appear in the full listing.
var CategoryOrder = []Category{
	CategoryData,
	CategorySettings,
	CategoryExport,
	CategoryGeneral,
}

var categoryNames = map[Category]string{
	CategoryData:     "Data",
	CategorySettings: "Settings",
	CategoryExport:   "Export",
	CategoryGeneral:  "General",
}

// DisplayName returns the human-readable category name.
func (c Category) DisplayName() string {
	if name, ok := categoryNames[c]; ok {
		return name
	}
	return string(c)
}

// Command describes one shell command.
type Command struct {
	// Name includes the leading slash.
	Name string

	// Aliases are alternative names, shortest first.
	Aliases []string

	Category    Category
	Description string
	Usage       string
	Examples    []Example
}

// Example is a sample invocation.
type Example struct {
	Command     string
	Description string
}

// Commands is the shell command reference.
var Commands = []Command{
	{
		Name:        "/load",
		Category:    CategoryData,
		Description: "Load a dataset (.json, .yaml, .csv, .tsv, .xlsx)",
		Usage:       "/load <dataset>",
		Examples: []Example{
			{Command: "/load fits.yaml", Description: "Residues and bar groups from a document"},
			{Command: "/load fits.xlsx", Description: "Residue sheets and a bars sheet"},
		},
	},
	{
		Name:        "/show",
		Category:    CategoryData,
		Description: "Show settings and a dataset summary",
		Usage:       "/show",
	},

	{
		Name:        "/set",
		Category:    CategorySettings,
		Description: "Change an export setting",
		Usage:       "/set <title|xlabel|ylabel|ranges|type|file|colors|templates> <value>",
		Examples: []Example{
			{Command: `/set title "CPMG 600 MHz"`, Description: "Figure title"},
			{Command: "/set ranges 0 1000 0 40", Description: "xmin xmax ymin ymax"},
			{Command: "/set colors 255,0,0 0,0,255", Description: "Palette, or 'default'"},
		},
	},
	{
		Name:        "/bars",
		Category:    CategorySettings,
		Description: "Include the bar chart figure",
		Usage:       "/bars on|off",
	},
	{
		Name:        "/skip",
		Category:    CategorySettings,
		Description: "Write scripts even when groups were dropped",
		Usage:       "/skip on|off",
	},
	{
		Name:        "/manifest",
		Category:    CategorySettings,
		Description: "Write a manifest next to each script",
		Usage:       "/manifest on|off",
	},

	{
		Name:        "/export",
		Category:    CategoryExport,
		Description: "Write the plot script",
		Usage:       "/export [type] [file]",
		Examples: []Example{
			{Command: "/export", Description: "Current type and file"},
			{Command: "/export stat fits.r", Description: "R script to fits.r"},
		},
	},
	{
		Name:        "/grace",
		Category:    CategoryExport,
		Description: "Export a Grace project",
		Usage:       "/grace [file]",
	},
	{
		Name:        "/r",
		Category:    CategoryExport,
		Description: "Export an R script",
		Usage:       "/r [file]",
	},
	{
		Name:        "/python",
		Category:    CategoryExport,
		Description: "Export a Python script",
		Usage:       "/python [file]",
	},
	{
		Name:        "/preview",
		Category:    CategoryExport,
		Description: "Print the script without writing it",
		Usage:       "/preview [type]",
	},
	{
		Name:        "/backends",
		Category:    CategoryExport,
		Description: "List export types and default files",
		Usage:       "/backends",
	},

	{
		Name:        "/help",
		Aliases:     []string{"/h"},
		Category:    CategoryGeneral,
		Description: "Show this help",
		Usage:       "/help [command]",
		Examples: []Example{
			{Command: "/help set", Description: "Details for /set"},
		},
	},
	{
		Name:        "/quit",
		Aliases:     []string{"/q", "/exit"},
		Category:    CategoryGeneral,
		Description: "Leave the shell",
		Usage:       "/quit",
	},
}

// ByCategory returns the commands in cat.
func ByCategory(cat Category) []Command {
	var result []Command
	for _, cmd := range Commands {
		if cmd.Category == cat {
			result = append(result, cmd)
		}
	}
	return result
}

// Lookup finds a command by name or alias, with or without the slash.
func Lookup(name string) (Command, bool) {
	if !strings.HasPrefix(name, "/") {
		name = "/" + name
	}
	for _, cmd := range Commands {
		if cmd.Name == name {
			return cmd, true
		}
		for _, a := range cmd.Aliases {
			if a == name {
				return cmd, true
			}
		}
	}
	return Command{}, false
}

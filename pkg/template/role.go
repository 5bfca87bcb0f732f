package template

import "github.com/r3d91ll/relaxplot/pkg/chart"

// Role is a semantic statement kind a backend template provides.
type Role string

const (
	RoleEncoding   Role = "encoding"
	RoleImport     Role = "import"
	RoleColor      Role = "color"
	RoleTitle      Role = "title"
	RoleXLabel     Role = "xlabel"
	RoleYLabel     Role = "ylabel"
	RoleXLim       Role = "xlim"
	RoleYLim       Role = "ylim"
	RoleRanges     Role = "ranges"
	RoleLegend     Role = "legend"
	RoleVar        Role = "var"
	RoleArray      Role = "array"
	RoleFrame      Role = "frame"
	RolePlotBase   Role = "plotbase"
	RoleScatter    Role = "scatter"
	RoleLine       Role = "line"
	RoleBar        Role = "bar"
	RoleNewPlot    Role = "newplot"
	RoleSubplot    Role = "subplot"
	RoleFooter     Role = "footer"
	RoleDataHeader Role = "dataheader"
	RoleSectionEnd Role = "sectionend"
	RoleColorMap   Role = "colormap"
	RoleXTick      Role = "xtick"
)

// roleSpec describes how a backend uses a role.
type roleSpec struct {
	// Arity is the number of arguments passed to the role's format string.
	Arity int

	// Required roles must be present in every template for the backend.
	Required bool
}

// roleTable lists, per backend, every role the renderer may use and the
// arguments it passes:
//
//	color      index, r, g, b, hex
//	title      quoted text (xlabel, ylabel likewise)
//	xlim/ylim  array literal
//	ranges     xmin, xmax, ymin, ymax
//	var        value, name
//	array      comma-separated items
//	frame      comma-separated column names
//	plotbase   data frame name
//	scatter    macro: set, colour, legend
//	           stat: marker size
//	           general: x, y, error, colour, legend, marker size
//	line       macro: set, colour; stat: data frame; general: x, y, colour
//	bar        general: x, y, error, colour, offset, legend
//	subplot    stat: plot list, rows, cols; general: rows, cols, index
//	dataheader set, data type
//	colormap   array literal of label = colour pairs
//	xtick      first, last tick
var roleTable = map[chart.Backend]map[Role]roleSpec{
	chart.BackendMacro: {
		RoleEncoding:   {0, true},
		RoleImport:     {0, false},
		RoleColor:      {5, true},
		RoleTitle:      {1, true},
		RoleXLabel:     {1, true},
		RoleYLabel:     {1, true},
		RoleRanges:     {4, true},
		RoleLegend:     {0, false},
		RoleScatter:    {3, true},
		RoleLine:       {2, true},
		RoleDataHeader: {2, true},
		RoleSectionEnd: {0, true},
		RoleFooter:     {0, false},
	},
	chart.BackendStat: {
		RoleEncoding: {0, false},
		RoleImport:   {0, true},
		RoleColor:    {5, true},
		RoleTitle:    {1, true},
		RoleXLabel:   {1, true},
		RoleYLabel:   {1, true},
		RoleXLim:     {1, true},
		RoleYLim:     {1, true},
		RoleLegend:   {0, false},
		RoleVar:      {2, true},
		RoleArray:    {1, true},
		RoleFrame:    {1, true},
		RolePlotBase: {1, true},
		RoleScatter:  {1, true},
		RoleLine:     {1, true},
		RoleBar:      {0, true},
		RoleColorMap: {1, true},
		RoleXTick:    {2, false},
		RoleNewPlot:  {0, false},
		RoleSubplot:  {3, true},
		RoleFooter:   {0, false},
	},
	chart.BackendGeneral: {
		RoleEncoding: {0, false},
		RoleImport:   {0, true},
		RoleColor:    {5, true},
		RoleTitle:    {1, true},
		RoleXLabel:   {1, true},
		RoleYLabel:   {1, true},
		RoleXLim:     {1, true},
		RoleYLim:     {1, true},
		RoleLegend:   {0, true},
		RoleVar:      {2, true},
		RoleArray:    {1, true},
		RoleScatter:  {6, true},
		RoleLine:     {3, true},
		RoleBar:      {6, true},
		RoleXTick:    {2, false},
		RoleNewPlot:  {0, true},
		RoleSubplot:  {3, true},
		RoleFooter:   {0, false},
	},
}

// Roles returns the roles a backend accepts, in a fixed order.
func Roles(b chart.Backend) []Role {
	var out []Role
	for _, r := range allRoles {
		if _, ok := roleTable[b][r]; ok {
			out = append(out, r)
		}
	}
	return out
}

// RequiredRoles returns the roles a backend's template must define.
func RequiredRoles(b chart.Backend) []Role {
	var out []Role
	for _, r := range Roles(b) {
		if roleTable[b][r].Required {
			out = append(out, r)
		}
	}
	return out
}

// Arity returns the argument count the renderer passes for role r.
func Arity(b chart.Backend, r Role) (int, bool) {
	s, ok := roleTable[b][r]
	return s.Arity, ok
}

var allRoles = []Role{
	RoleEncoding, RoleImport, RoleColor, RoleTitle, RoleXLabel, RoleYLabel,
	RoleXLim, RoleYLim, RoleRanges, RoleLegend, RoleVar, RoleArray, RoleFrame,
	RolePlotBase, RoleScatter, RoleLine, RoleBar, RoleNewPlot, RoleSubplot,
	RoleFooter, RoleDataHeader, RoleSectionEnd, RoleColorMap, RoleXTick,
}

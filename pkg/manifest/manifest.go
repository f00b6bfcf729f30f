// pkg/manifest/manifest.go
package manifest

/* ===========================
   Top-level config
   =========================== */

// Config is the top-level manifest.
type Config struct {
	Server Server  `toml:"server"`
	Models []Model `toml:"model"`
	Forms  []Form  `toml:"form"`
	Views  []View  `toml:"view"`
}

type Server struct {
	Templates    string   `toml:"templates"`      // template directory; MODVIEW_TEMPLATES wins
	Database     string   `toml:"database"`       // SQLite path; MODVIEW_DATABASE wins
	TimeoutMS    int      `toml:"timeout_ms"`     // default per-view timeout
	LogBodyPaths []string `toml:"log_body_paths"` // access log records JSON bodies on these paths
}

/* ===========================
   Record models / forms
   =========================== */

// Model declares a SQL-backed record model.
type Model struct {
	Name     string         `toml:"name"`
	Columns  []string       `toml:"columns"`
	Defaults map[string]any `toml:"defaults"`
}

// Form declares a form class editing Fields of Model.
type Form struct {
	Name     string   `toml:"name"`
	Model    string   `toml:"model"`
	Fields   []string `toml:"fields"`
	Required []string `toml:"required"`
	Set      bool     `toml:"set"`    // edit a collection instead of one record
	Prefix   string   `toml:"prefix"` // form set field prefix; default "form"
}

/* ===========================
   Views
   =========================== */

type View struct {
	Name      string         `toml:"name"`
	Path      string         `toml:"path"`
	Methods   []string       `toml:"methods"` // default GET, POST, PUT, DELETE
	TimeoutMS int            `toml:"timeout_ms"`
	Table     map[string]any `toml:"table"` // static entries of the controller table
	Modules   []Module       `toml:"module"`
}

type Kind string

const (
	KindLoad        Kind = "load"
	KindList        Kind = "list"
	KindFilter      Kind = "filter"
	KindBreadcrumb  Kind = "breadcrumb"
	KindTemplate    Kind = "template"
	KindPartial     Kind = "partial"
	KindLayout      Kind = "layout"
	KindCallback    Kind = "callback"
	KindForm        Kind = "form"
	KindAjax        Kind = "ajax"
	KindContainer   Kind = "container"
	KindConditional Kind = "conditional"
	KindProperty    Kind = "property"
)

// Module is one pipeline entry. Which fields apply depends on Kind.
//
// String values starting with "@" name an entry of the controller table;
// other values are literals. Hook fields (after_load, call, on_*, success)
// always name a table entry, "@" or not. Lookup, Filter and Exclude map a
// field to the request parameter holding its value. A partial template
// "@name" is a registered callback producing the markup. A form is stored
// under its form name unless name is set.
type Module struct {
	Kind Kind   `toml:"kind"`
	Name string `toml:"name"`

	// load, list
	Model      string            `toml:"model"`
	Lookup     map[string]string `toml:"lookup"`
	AfterLoad  string            `toml:"after_load"`
	Filter     map[string]string `toml:"filter"`
	FilterRaw  map[string]any    `toml:"filter_raw"`
	Exclude    map[string]string `toml:"exclude"`
	ExcludeRaw map[string]any    `toml:"exclude_raw"`

	// filter
	Call string `toml:"call"`

	// breadcrumb
	Label string `toml:"label"`
	URL   string `toml:"url"`

	// template, partial, layout
	Template     string         `toml:"template"`
	PostTemplate string         `toml:"post_template"`
	Section      string         `toml:"section"`
	Layout       string         `toml:"layout"`
	Base         string         `toml:"base"`
	Settings     map[string]any `toml:"settings"`

	// callback (on_delete also enables load deletes)
	OnDispatch string `toml:"on_dispatch"`
	OnGet      string `toml:"on_get"`
	OnPost     string `toml:"on_post"`
	OnPut      string `toml:"on_put"`
	OnDelete   string `toml:"on_delete"`

	// form
	Form     string         `toml:"form"`
	Instance string         `toml:"instance"` // record name, or "@callback"
	Extra    map[string]any `toml:"extra"`
	NoSave   bool           `toml:"no_save"`
	Success  string         `toml:"success"`

	// ajax
	Endpoints []Endpoint `toml:"endpoint"`

	// container, conditional
	Modules   []Module       `toml:"module"`
	Table     map[string]any `toml:"table"`
	Condition any            `toml:"condition"`

	// property
	Value any `toml:"value"`
}

type Endpoint struct {
	Pattern string   `toml:"pattern"`
	Modules []Module `toml:"module"`
}

package model

import "encoding/json"

// Target is one entry of a plan file. Path is an optional file suffix that
// disambiguates Symbol.
type Target struct {
	Path      string `json:"path,omitempty"`
	Symbol    string `json:"symbol"`
	Param     int    `json:"param"`
	ParamName string `json:"param_name,omitempty"`
	Mode      string `json:"mode,omitempty"` // remove|remove-unused|to-local
}

type Status string

const (
	StatusApplied Status = "applied"
	StatusPlanned Status = "planned" // dry run
	StatusFailed  Status = "failed"
)

// Report describes what one target did to the repository.
type Report struct {
	Repo      string `json:"repo"`
	Commit    string `json:"commit"`
	Module    string `json:"module,omitempty"`
	GoVersion string `json:"go_version,omitempty"`

	Path      string `json:"path"`
	Symbol    string `json:"symbol"`
	Param     int    `json:"param"`
	ParamName string `json:"param_name,omitempty"`
	Mode      string `json:"mode"`

	DeclEdits      int `json:"decl_edits"`
	CallSites      int `json:"call_sites"`
	ConstructSites int `json:"construct_sites,omitempty"`
	HookCalls      int `json:"hook_calls"`

	// Filled by the call graph cross-check.
	StaticCallers    int      `json:"static_callers,omitempty"`
	UnmatchedCallers []string `json:"unmatched_callers,omitempty"`

	// Sites previews every matched declaration and call on a dry run.
	Sites []Site `json:"sites,omitempty"`

	Files  []string `json:"files,omitempty"`
	DryRun bool     `json:"dry_run,omitempty"`
	Status Status   `json:"status"`
	Error  string   `json:"error,omitempty"`
}

func (r Report) ToJSON() ([]byte, error) {
	return json.Marshal(r)
}

type Site struct {
	Kind string `json:"kind"` // decl|call|construct
	Path string `json:"path"`
	Line int    `json:"line"`
	Code string `json:"code"`
}

// Candidate is a parameter that could be elided.
type Candidate struct {
	Path      string `json:"path"`
	Symbol    string `json:"symbol"`
	Param     int    `json:"param"`
	ParamName string `json:"param_name,omitempty"`
	Unused    bool   `json:"unused"`
	FanIn     int    `json:"fan_in"` // matched call sites
	Line      int    `json:"line"`
}

func (c Candidate) ToJSON() ([]byte, error) {
	return json.Marshal(c)
}

package config

import "slices"

// Behavior controls whether an optional step is asked about or decided
// automatically.
type Behavior string

const (
	BehaviorPrompt  Behavior = "prompt"
	BehaviorAutoYes Behavior = "autoYes"
	BehaviorAutoNo  Behavior = "autoNo"
)

// IsValid reports whether b is one of the known behaviors.
func (b Behavior) IsValid() bool {
	switch b {
	case BehaviorPrompt, BehaviorAutoYes, BehaviorAutoNo:
		return true
	}
	return false
}

// ProjectConfig is the content of reliverse.jsonc.
//
// Scalar fields carry no omitempty so that a defaults document produced
// from this struct names every field it is able to fill.
type ProjectConfig struct {
	ProjectName           string `json:"projectName"`
	ProjectAuthor         string `json:"projectAuthor"`
	ProjectDescription    string `json:"projectDescription"`
	Version               string `json:"version"`
	ProjectLicense        string `json:"projectLicense"`
	ProjectRepository     string `json:"projectRepository"`
	ProjectDomain         string `json:"projectDomain"`
	ProjectState          string `json:"projectState"`
	ProjectCategory       string `json:"projectCategory"`
	ProjectFramework      string `json:"projectFramework"`
	ProjectTemplate       string `json:"projectTemplate"`
	ProjectPackageManager string `json:"projectPackageManager"`
	ProjectGitService     string `json:"projectGitService"`
	ProjectDeployService  string `json:"projectDeployService"`
	RepoBranch            string `json:"repoBranch"`
	RepoPrivacy           string `json:"repoPrivacy"`

	Features           Features          `json:"features"`
	PreferredLibraries map[string]string `json:"preferredLibraries,omitempty"`
	CodeStyle          CodeStyle         `json:"codeStyle"`
	CustomRules        map[string]any    `json:"customRules,omitempty"`

	IgnoreDependencies []string `json:"ignoreDependencies,omitempty"`

	EnvComposerOpenBrowser     bool `json:"envComposerOpenBrowser"`
	SkipPromptsUseAutoBehavior bool `json:"skipPromptsUseAutoBehavior"`

	GitBehavior     Behavior `json:"gitBehavior" validate:"omitempty,behavior"`
	DeployBehavior  Behavior `json:"deployBehavior" validate:"omitempty,behavior"`
	DepsBehavior    Behavior `json:"depsBehavior" validate:"omitempty,behavior"`
	I18nBehavior    Behavior `json:"i18nBehavior" validate:"omitempty,behavior"`
	ScriptsBehavior Behavior `json:"scriptsBehavior" validate:"omitempty,behavior"`

	ConfigLastRevalidate      string `json:"configLastRevalidate"`
	ConfigRevalidateFrequency string `json:"configRevalidateFrequency" validate:"omitempty,frequency"`
}

// Features lists the project capabilities the scaffolder wires up.
type Features struct {
	I18n           bool     `json:"i18n"`
	Analytics      bool     `json:"analytics"`
	ThemeMode      string   `json:"themeMode" validate:"omitempty,oneof=light dark dark-light"`
	Authentication bool     `json:"authentication"`
	API            bool     `json:"api"`
	Database       bool     `json:"database"`
	Testing        bool     `json:"testing"`
	Docker         bool     `json:"docker"`
	CICD           bool     `json:"cicd"`
	Commands       []string `json:"commands,omitempty"`
	Webview        []string `json:"webview,omitempty"`
	Language       []string `json:"language,omitempty"`
	Themes         []string `json:"themes,omitempty"`
}

// CodeStyle holds formatter and linter preferences.
type CodeStyle struct {
	LineWidth       int    `json:"lineWidth" validate:"gte=0"`
	IndentSize      int    `json:"indentSize" validate:"gte=0"`
	IndentStyle     string `json:"indentStyle" validate:"omitempty,oneof=space tab"`
	QuoteMark       string `json:"quoteMark" validate:"omitempty,oneof=single double"`
	Semicolons      bool   `json:"semicolons"`
	TrailingComma   string `json:"trailingComma" validate:"omitempty,oneof=none es5 all"`
	BracketSpacing  bool   `json:"bracketSpacing"`
	ArrowParens     string `json:"arrowParens" validate:"omitempty,oneof=always avoid"`
	TabWidth        int    `json:"tabWidth" validate:"gte=0"`
	JSToTS          bool   `json:"jsToTs"`
	TypeOrInterface string `json:"typeOrInterface" validate:"omitempty,oneof=type interface mixed"`
	ImportOrRequire string `json:"importOrRequire" validate:"omitempty,oneof=import require mixed"`
	CJSToESM        bool   `json:"cjsToEsm"`
	ImportSymbol    string `json:"importSymbol"`
}

// Sub-objects merged key by key rather than replaced wholesale.
const (
	SectionFeatures           = "features"
	SectionPreferredLibraries = "preferredLibraries"
	SectionCodeStyle          = "codeStyle"
	SectionCustomRules        = "customRules"
)

var nestedSections = []string{
	SectionFeatures, SectionPreferredLibraries, SectionCodeStyle, SectionCustomRules,
}

// IsNestedSection reports whether key names a sub-object merged per key.
func IsNestedSection(key string) bool {
	return slices.Contains(nestedSections, key)
}

// FieldLastRevalidate is stamped on every reconcile and ignored when
// deciding whether the merge changed anything.
const FieldLastRevalidate = "configLastRevalidate"

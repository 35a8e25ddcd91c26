package config

// Default value constants to avoid magic numbers and strings.
const (
	DefaultVersion             = "0.1.0"
	DefaultProjectLicense      = "MIT"
	DefaultProjectState        = "creating"
	DefaultProjectCategory     = "website"
	DefaultProjectFramework    = "nextjs"
	DefaultProjectTemplate     = "blefnk/relivator-nextjs-template"
	DefaultPackageManager      = "bun"
	DefaultGitService          = "github"
	DefaultDeployService       = "vercel"
	DefaultRepoBranch          = "main"
	DefaultRepoPrivacy         = "public"
	DefaultThemeMode           = "dark-light"
	DefaultRevalidateFrequency = "2d"

	DefaultLineWidth     = 80
	DefaultIndentSize    = 2
	DefaultIndentStyle   = "space"
	DefaultQuoteMark     = "double"
	DefaultTrailingComma = "all"
	DefaultArrowParens   = "always"
	DefaultTabWidth      = 2
)

// NewDefaultProjectConfig returns a ProjectConfig with compiled defaults.
// Identity fields (name, author, domain) stay empty; they come from
// project detection.
func NewDefaultProjectConfig() *ProjectConfig {
	return &ProjectConfig{
		Version:               DefaultVersion,
		ProjectLicense:        DefaultProjectLicense,
		ProjectState:          DefaultProjectState,
		ProjectCategory:       DefaultProjectCategory,
		ProjectFramework:      DefaultProjectFramework,
		ProjectTemplate:       DefaultProjectTemplate,
		ProjectPackageManager: DefaultPackageManager,
		ProjectGitService:     DefaultGitService,
		ProjectDeployService:  DefaultDeployService,
		RepoBranch:            DefaultRepoBranch,
		RepoPrivacy:           DefaultRepoPrivacy,

		Features:           NewDefaultFeatures(),
		PreferredLibraries: map[string]string{},
		CodeStyle:          NewDefaultCodeStyle(),
		CustomRules:        map[string]any{},

		EnvComposerOpenBrowser:     true,
		SkipPromptsUseAutoBehavior: false,

		GitBehavior:     BehaviorPrompt,
		DeployBehavior:  BehaviorPrompt,
		DepsBehavior:    BehaviorPrompt,
		I18nBehavior:    BehaviorPrompt,
		ScriptsBehavior: BehaviorPrompt,

		ConfigRevalidateFrequency: DefaultRevalidateFrequency,
	}
}

// NewDefaultFeatures returns Features with default values.
func NewDefaultFeatures() Features {
	return Features{
		ThemeMode: DefaultThemeMode,
		Language:  []string{"typescript"},
		Themes:    []string{"default"},
	}
}

// NewDefaultCodeStyle returns CodeStyle with default values.
func NewDefaultCodeStyle() CodeStyle {
	return CodeStyle{
		LineWidth:       DefaultLineWidth,
		IndentSize:      DefaultIndentSize,
		IndentStyle:     DefaultIndentStyle,
		QuoteMark:       DefaultQuoteMark,
		Semicolons:      true,
		TrailingComma:   DefaultTrailingComma,
		BracketSpacing:  true,
		ArrowParens:     DefaultArrowParens,
		TabWidth:        DefaultTabWidth,
		TypeOrInterface: "type",
		ImportOrRequire: "import",
		CJSToESM:        true,
	}
}

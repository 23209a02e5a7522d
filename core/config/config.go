package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"github.com/tristendillon/carve/core/logger"
)

const EnvPrefix = "CARVE"

// FileNames are searched in order inside the project root.
var FileNames = []string{
	"deploy-config.yaml",
	"deploy-config.yml",
	"deploy-config.json",
}

type Config struct {
	DefaultVisibility    string      `mapstructure:"defaultVisibility"`
	BaseFiles            []string    `mapstructure:"baseFiles"`
	AlwaysIncludeFolders []string    `mapstructure:"alwaysIncludeFolders"`
	AlwaysIncludeFiles   []string    `mapstructure:"alwaysIncludeFiles"`
	GithubUsername       string      `mapstructure:"githubUsername"`
	Documentation        []string    `mapstructure:"documentation"`
	GithubPages          GithubPages `mapstructure:"githubPages"`
	Framework            Framework   `mapstructure:"framework"`
	Layout               Layout      `mapstructure:"layout"`
	Scan                 Scan        `mapstructure:"scan"`
	Rewrite              Rewrite     `mapstructure:"rewrite"`
	WorkDir              string      `mapstructure:"workDir"`
	Verify               Verify      `mapstructure:"verify"`
	Poll                 Poll        `mapstructure:"poll"`
	Retry                Retry       `mapstructure:"retry"`
	Rollback             Rollback    `mapstructure:"rollback"`

	// Path of the file the values were read from, empty when only defaults apply.
	Source string `mapstructure:"-"`
}

type GithubPages struct {
	Enabled        bool `mapstructure:"enabled"`
	CreateWorkflow bool `mapstructure:"createWorkflow"`
	Create404      bool `mapstructure:"create404"`
}

type Framework struct {
	Scope        string   `mapstructure:"scope"`
	CorePackages []string `mapstructure:"corePackages"`
	DevPackages  []string `mapstructure:"devPackages"`
	DevPrefixes  []string `mapstructure:"devPrefixes"`
}

type Layout struct {
	AppRoot         string `mapstructure:"appRoot"`
	ComponentsDir   string `mapstructure:"componentsDir"`
	EnvironmentsDir string `mapstructure:"environmentsDir"`
}

// ComponentsRoot is the slash path holding every component, e.g. src/app/components.
func (l Layout) ComponentsRoot() string {
	return l.AppRoot + "/" + l.ComponentsDir
}

type Scan struct {
	SourceExtensions  []string `mapstructure:"sourceExtensions"`
	PackageExtensions []string `mapstructure:"packageExtensions"`
	RewriteExtensions []string `mapstructure:"rewriteExtensions"`
	Exclude           []string `mapstructure:"exclude"`
}

type Rewrite struct {
	RootAliases []string `mapstructure:"rootAliases"`
}

type Verify struct {
	Enabled bool          `mapstructure:"enabled"`
	Install string        `mapstructure:"install"`
	Build   string        `mapstructure:"build"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type Poll struct {
	Interval    time.Duration `mapstructure:"interval"`
	MaxAttempts int           `mapstructure:"maxAttempts"`
}

type Retry struct {
	Attempts  int           `mapstructure:"attempts"`
	BaseDelay time.Duration `mapstructure:"baseDelay"`
}

// Rollback controls remote cleanup. By default the remote repository is only
// deleted when verification fails.
type Rollback struct {
	RemoteOnAnyFailure bool `mapstructure:"remoteOnAnyFailure"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("defaultVisibility", "public")
	v.SetDefault("baseFiles", []string{
		"angular.json",
		"tsconfig.json",
		"tsconfig.app.json",
		"tsconfig.spec.json",
		"src/main.ts",
		"src/index.html",
		"src/styles.css",
		"src/app/app.ts",
		"src/app/app.config.ts",
		"src/app/app.routes.ts",
		"src/app/app.html",
		"src/app/app.css",
		"package.json",
	})
	v.SetDefault("alwaysIncludeFolders", []string{"public"})
	v.SetDefault("alwaysIncludeFiles", []string{})
	v.SetDefault("githubUsername", "")
	v.SetDefault("documentation", []string{"README.md"})

	v.SetDefault("githubPages.enabled", false)
	v.SetDefault("githubPages.createWorkflow", true)
	v.SetDefault("githubPages.create404", true)

	v.SetDefault("framework.scope", "@angular/")
	v.SetDefault("framework.corePackages", []string{
		"@angular/animations",
		"@angular/common",
		"@angular/compiler",
		"@angular/core",
		"@angular/forms",
		"@angular/platform-browser",
		"@angular/platform-browser-dynamic",
		"@angular/router",
		"rxjs",
		"tslib",
		"zone.js",
	})
	v.SetDefault("framework.devPackages", []string{
		"@angular-devkit/build-angular",
		"@angular/build",
		"@angular/cli",
		"@angular/compiler-cli",
		"@angular-devkit/core",
		"@angular-devkit/schematics",
		"@angular-devkit/architect",
		"@schematics/angular",
		"typescript",
		"@types/node",
		"@types/jasmine",
		"jasmine-core",
		"karma",
		"karma-jasmine",
		"karma-chrome-launcher",
		"karma-jasmine-html-reporter",
		"karma-coverage",
		"esbuild",
		"vite",
	})
	v.SetDefault("framework.devPrefixes", []string{"@angular-devkit/", "@angular/", "@schematics/"})

	v.SetDefault("layout.appRoot", "src/app")
	v.SetDefault("layout.componentsDir", "components")
	v.SetDefault("layout.environmentsDir", "src/environments")

	v.SetDefault("scan.sourceExtensions", []string{".ts"})
	v.SetDefault("scan.packageExtensions", []string{".ts", ".html"})
	v.SetDefault("scan.rewriteExtensions", []string{".ts", ".js", ".html"})
	v.SetDefault("scan.exclude", []string{"node_modules", ".git", "dist", ".angular"})

	v.SetDefault("rewrite.rootAliases", []string{"@app", "src/app"})

	v.SetDefault("workDir", "temp-deploy")

	v.SetDefault("verify.enabled", false)
	v.SetDefault("verify.install", "npm install")
	v.SetDefault("verify.build", "npm run build")
	v.SetDefault("verify.timeout", "10m")

	v.SetDefault("poll.interval", "10s")
	v.SetDefault("poll.maxAttempts", 30)

	v.SetDefault("retry.attempts", 3)
	v.SetDefault("retry.baseDelay", "2s")

	v.SetDefault("rollback.remoteOnAnyFailure", false)
}

func Default() *Config {
	v := viper.New()
	setDefaults(v)
	var cfg Config
	// defaults are static, decoding them cannot fail
	_ = v.Unmarshal(&cfg)
	return &cfg
}

// Load reads the deploy configuration for projectRoot. An explicit path wins
// over the search list; with neither present the defaults are returned.
// A .env file in the project root is loaded into the environment first.
func Load(projectRoot, explicitPath string) (*Config, error) {
	_ = godotenv.Load(filepath.Join(projectRoot, ".env"))

	v := viper.New()
	setDefaults(v)

	filePath := explicitPath
	if filePath == "" {
		for _, name := range FileNames {
			p := filepath.Join(projectRoot, name)
			if _, err := os.Stat(p); err == nil {
				filePath = p
				break
			}
		}
	}

	if filePath != "" {
		v.SetConfigFile(filePath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", filePath, err)
		}
		logger.Debug("Config file found: %s", filePath)
	} else {
		logger.Debug("No config file found, using default config")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg.Source = filePath
	logger.Debug("Config: %+v", cfg)

	return &cfg, nil
}

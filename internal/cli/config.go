package cli

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/toyz/proxygen/internal/annotations"
	"github.com/toyz/proxygen/internal/emitter"
	"github.com/toyz/proxygen/internal/errors"
	"github.com/toyz/proxygen/internal/utils"
)

// EnvPrefix prefixes every environment variable the configuration reads
const EnvPrefix = "PROXYGEN_"

// DefaultDebounce is how long watch mode waits for further changes before a pass
const DefaultDebounce = 200 * time.Millisecond

var configFileNames = []string{"proxygen.yaml", "proxygen.yml"}

// Config holds the settings of one proxygen invocation
type Config struct {
	// Inputs are directories, dir/... trees, .cs files or glob patterns to scan
	Inputs []string `koanf:"inputs"`

	// Exclude holds glob patterns of source files that are never scanned
	Exclude []string `koanf:"exclude"`

	// Model is an optional YAML model file merged into the scanned declarations
	Model string `koanf:"model"`

	// Out places every artifact in one directory instead of next to its target
	Out string `koanf:"out"`

	// ImplicitUsings are namespaces every source file imports without a using
	// directive, the project's global usings
	ImplicitUsings []string `koanf:"implicit_usings"`

	Extension     string          `koanf:"extension"`
	Marker        MarkerConfig    `koanf:"marker"`
	Bootstrap     bool            `koanf:"bootstrap"`
	GeneratedCode bool            `koanf:"generated_code"`
	Strict        bool            `koanf:"strict"`
	Verbose       bool            `koanf:"verbose"`
	Quiet         bool            `koanf:"quiet"`
	Watch         WatchConfig     `koanf:"watch"`
	Bindings      []BindingConfig `koanf:"bindings"`

	// ConfigFile is the file the settings were read from, empty when none was found
	ConfigFile string `koanf:"-"`
}

// MarkerConfig names the attribute that marks target types
type MarkerConfig struct {
	Namespace string `koanf:"namespace"`
	Name      string `koanf:"name"`
}

// WatchConfig controls watch mode
type WatchConfig struct {
	Enabled  bool          `koanf:"enabled"`
	Debounce time.Duration `koanf:"debounce"`
}

// BindingConfig binds a target to a contract without an attribute in the source
type BindingConfig struct {
	Target   string `koanf:"target"`
	Contract string `koanf:"contract"`
	Accessor string `koanf:"accessor"`
}

// LoadOptions tells LoadConfig where to look
type LoadOptions struct {
	// ConfigFile is an explicit config path; it must exist when set
	ConfigFile string
	// Dir is searched for proxygen.yaml or proxygen.yml when ConfigFile is empty
	Dir string
	// Overrides are explicitly set flags, keyed by config key
	Overrides map[string]interface{}
	// Environ replaces os.Environ, used by tests
	Environ []string
}

// DefaultValues returns the lowest configuration layer
func DefaultValues() map[string]interface{} {
	return map[string]interface{}{
		"inputs":           []string{"./..."},
		"implicit_usings":  annotations.DefaultImplicitUsings(),
		"extension":        emitter.DefaultExtension,
		"marker.namespace": emitter.DefaultMarkerNamespace,
		"marker.name":      emitter.DefaultMarkerName,
		"bootstrap":        true,
		"generated_code":   false,
		"strict":           false,
		"verbose":          false,
		"quiet":            false,
		"watch.enabled":    false,
		"watch.debounce":   DefaultDebounce.String(),
	}
}

// LoadConfig layers defaults, the config file, PROXYGEN_ environment variables and
// explicitly set flags, in increasing precedence, and validates the result.
func LoadConfig(opts LoadOptions) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(DefaultValues(), "."), nil); err != nil {
		return nil, errors.WrapConfigurationError("defaults", "load", err)
	}

	configFile, err := findConfigFile(opts.ConfigFile, opts.Dir)
	if err != nil {
		return nil, err
	}
	if configFile != "" {
		if err := k.Load(file.Provider(configFile), yaml.Parser()); err != nil {
			return nil, errors.WrapConfigurationError(configFile, "read", err).
				WithLocation(errors.SourceLocation{File: configFile})
		}
	}

	if err := k.Load(envProvider(opts.Environ), nil); err != nil {
		return nil, errors.WrapConfigurationError("environment", "load", err)
	}

	if len(opts.Overrides) > 0 {
		if err := k.Load(confmap.Provider(opts.Overrides, "."), nil); err != nil {
			return nil, errors.WrapConfigurationError("flags", "load", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, errors.WrapConfigurationError("proxygen", "decode", err)
	}
	cfg.ConfigFile = configFile

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func findConfigFile(explicit, dir string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", errors.WrapFileSystemError("read", explicit, err).
				WithSuggestion("Check the path given to -config")
		}
		return explicit, nil
	}
	if dir == "" {
		dir = "."
	}
	for _, name := range configFileNames {
		candidate := filepath.Join(dir, name)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
	}
	return "", nil
}

// envKeys maps environment names, after the prefix is stripped and lowercased, to
// config keys where the two differ
var envKeys = map[string]string{
	"marker_namespace": "marker.namespace",
	"marker_name":      "marker.name",
	"watch":            "watch.enabled",
	"watch_debounce":   "watch.debounce",
}

var listKeys = map[string]bool{"inputs": true, "exclude": true, "implicit_usings": true}

func envProvider(environ []string) koanf.Provider {
	transform := func(name, value string) (string, interface{}) {
		key := strings.ToLower(strings.TrimPrefix(name, EnvPrefix))
		if mapped, ok := envKeys[key]; ok {
			key = mapped
		}
		if key == "bindings" {
			return "", nil
		}
		if listKeys[key] {
			return key, splitList(value)
		}
		return key, value
	}

	if environ == nil {
		return env.ProviderWithValue(EnvPrefix, ".", transform)
	}

	values := make(map[string]interface{})
	for _, kv := range environ {
		name, value, ok := strings.Cut(kv, "=")
		if !ok || !strings.HasPrefix(name, EnvPrefix) {
			continue
		}
		if key, v := transform(name, value); key != "" {
			values[key] = v
		}
	}
	return confmap.Provider(values, ".")
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// flagKeys maps command-line flag names to config keys
var flagKeys = map[string]string{
	"model":            "model",
	"out":              "out",
	"ext":              "extension",
	"marker-namespace": "marker.namespace",
	"marker-name":      "marker.name",
	"generated-code":   "generated_code",
	"strict":           "strict",
	"verbose":          "verbose",
	"quiet":            "quiet",
	"watch":            "watch.enabled",
	"debounce":         "watch.debounce",
}

// FlagOverrides collects the flags that were explicitly set on fs, plus positional
// inputs, as config overrides. -no-bootstrap is stored as bootstrap=false.
func FlagOverrides(fs *flag.FlagSet) map[string]interface{} {
	overrides := make(map[string]interface{})
	fs.Visit(func(f *flag.Flag) {
		getter, ok := f.Value.(flag.Getter)
		if !ok {
			return
		}
		if f.Name == "no-bootstrap" {
			if v, ok := getter.Get().(bool); ok {
				overrides["bootstrap"] = !v
			}
			return
		}
		if key, ok := flagKeys[f.Name]; ok {
			value := getter.Get()
			if d, isDuration := value.(time.Duration); isDuration {
				value = d.String()
			}
			overrides[key] = value
		}
	})
	if fs.NArg() > 0 {
		overrides["inputs"] = append([]string(nil), fs.Args()...)
	}
	return overrides
}

// Validate checks the settings, reporting every problem at once
func (c *Config) Validate() error {
	problems := errors.NewMultipleErrors()
	check := func(err error) {
		if err != nil {
			problems.Add(errors.ConfigurationError(c.source(), err.Error()))
		}
	}

	check(utils.SliceNotEmpty[string]("inputs")(c.Inputs))
	check(utils.Conditional(func(path string) bool { return path != "" },
		utils.MatchesRegex("model", `\.ya?ml$`))(c.Model))
	check(utils.ValidateEach("implicit_usings", utils.IsQualifiedName("namespace", false))(c.ImplicitUsings))
	check(utils.ValidateExtension("extension")(c.Extension))
	check(utils.ValidateMarkerNamespace("marker.namespace")(c.Marker.Namespace))
	check(utils.ValidateMarkerName("marker.name")(c.Marker.Name))
	check(utils.Custom("watch.debounce", "cannot be negative", func(d time.Duration) bool {
		return d >= 0
	})(c.Watch.Debounce))

	for i, b := range c.Bindings {
		field := fmt.Sprintf("bindings[%d]", i)
		check(utils.NewValidatorChain(
			utils.NotEmpty(field+".target"),
			utils.IsQualifiedName(field+".target", false),
		).Validate(b.Target))
		check(utils.NewValidatorChain(
			utils.NotEmpty(field+".contract"),
			utils.IsQualifiedName(field+".contract", true),
		).Validate(b.Contract))
		check(utils.NotEmpty(field + ".accessor")(strings.TrimSpace(b.Accessor)))
	}

	return problems.ErrOrNil()
}

func (c *Config) source() string {
	if c.ConfigFile != "" {
		return c.ConfigFile
	}
	return "proxygen"
}

// EmitterOptions converts the settings for the emitter
func (c *Config) EmitterOptions(version string) emitter.Options {
	return emitter.Options{
		Extension:       c.Extension,
		MarkerNamespace: c.Marker.Namespace,
		MarkerName:      c.Marker.Name,
		GeneratedCode:   c.GeneratedCode,
		ToolVersion:     version,
	}
}

// DiagnosticLevel returns the output level for the -quiet and -verbose settings
func (c *Config) DiagnosticLevel() utils.DiagnosticLevel {
	return utils.LevelFor(c.Quiet, c.Verbose)
}

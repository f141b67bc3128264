package cmd

import (
	"encoding"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"unicode"

	toml "github.com/pelletier/go-toml"
	yaml "gopkg.in/yaml.v3"

	"github.com/dualsense-cmd/dualsense/internal/configpaths"
	"github.com/dualsense-cmd/dualsense/internal/log"
)

// ConfigCommand groups config-related subcommands.
type ConfigCommand struct {
	Init ConfigInit `cmd:"" help:"Write a configuration template with every default"`
}

// ConfigInit scaffolds a configuration file for a command.
type ConfigInit struct {
	Command string `arg:"" name:"command" help:"Command to generate config for" enum:"monitor,list"`
	Format  string `help:"Output format" enum:"json,yaml,toml" default:"json"`
	Output  string `help:"Destination file (defaults to <command>.<format> in the user config directory)"`
	Force   bool   `help:"Overwrite if the file already exists"`
}

// Run builds the template by reflecting over the command struct tags.
func (c *ConfigInit) Run() error {
	data, err := c.Render()
	if err != nil {
		return err
	}

	dest := c.Output
	if dest == "" {
		dest, err = configpaths.DefaultNamedConfigPath(c.Command, c.Format)
		if err != nil {
			return fmt.Errorf("resolve config path: %w", err)
		}
	}
	if !c.Force {
		if _, err := os.Stat(dest); err == nil {
			return fmt.Errorf("%s exists; use --force to overwrite", dest)
		}
	}
	if err := configpaths.EnsureDir(dest); err != nil {
		return err
	}
	if err := os.WriteFile(dest, data, 0o644); err != nil {
		return err
	}
	fmt.Println("Wrote", dest)
	return nil
}

// Render returns the template without writing it.
func (c *ConfigInit) Render() ([]byte, error) {
	var root map[string]any
	switch c.Command {
	case "monitor":
		root = buildMapFromStruct(reflect.TypeOf(Monitor{}))
	case "list":
		root = buildMapFromStruct(reflect.TypeOf(List{}))
	default:
		return nil, errors.New("unknown command; expected 'monitor' or 'list'")
	}
	root["log"] = buildMapFromStruct(reflect.TypeOf(log.Config{}))

	switch configpaths.NormalizeFormat(strings.ToLower(c.Format)) {
	case "yaml":
		return yaml.Marshal(root)
	case "toml":
		return toml.Marshal(root)
	default:
		return json.MarshalIndent(root, "", "  ")
	}
}

// configKey returns the snake_case key kong's resolvers look up for a
// field, including inside prefixed sections: PollRate -> poll_rate.
func configKey(f reflect.StructField) string {
	if name := f.Tag.Get("name"); name != "" {
		return strings.ReplaceAll(name, "-", "_")
	}
	r := []rune(f.Name)
	var b strings.Builder
	for i, c := range r {
		if unicode.IsUpper(c) {
			// A new word starts after a lowercase rune, or at the last
			// capital of an acronym followed by lowercase (JSONFile).
			if i > 0 && (unicode.IsLower(r[i-1]) || (unicode.IsUpper(r[i-1]) && i+1 < len(r) && unicode.IsLower(r[i+1]))) {
				b.WriteByte('_')
			}
			c = unicode.ToLower(c)
		}
		b.WriteRune(c)
	}
	return b.String()
}

var textUnmarshaler = reflect.TypeOf((*encoding.TextUnmarshaler)(nil)).Elem()

func buildMapFromStruct(t reflect.Type) map[string]any {
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	out := map[string]any{}
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() || f.Tag.Get("kong") == "-" {
			continue
		}
		if _, ok := f.Tag.Lookup("cmd"); ok {
			continue
		}

		if _, ok := f.Tag.Lookup("embed"); ok {
			sub := buildMapFromStruct(f.Type)
			if name := strings.TrimSuffix(f.Tag.Get("prefix"), "."); name != "" {
				out[name] = sub
			} else {
				for k, v := range sub {
					out[k] = v
				}
			}
			continue
		}

		if val := defaultValueForField(f.Type, f.Tag.Get("default")); val != nil {
			out[configKey(f)] = val
		}
	}
	return out
}

func defaultValueForField(t reflect.Type, def string) any {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if reflect.PointerTo(t).Implements(textUnmarshaler) {
		return def
	}
	switch t.Kind() {
	case reflect.String:
		return def
	case reflect.Bool:
		b, _ := strconv.ParseBool(def)
		return b
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, _ := strconv.ParseInt(def, 10, 64)
		return n
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, _ := strconv.ParseUint(def, 10, 64)
		return n
	case reflect.Float32, reflect.Float64:
		f, _ := strconv.ParseFloat(def, 64)
		return f
	case reflect.Slice:
		if def == "" {
			return []any{}
		}
		parts := strings.Split(def, ",")
		vals := make([]any, 0, len(parts))
		for _, p := range parts {
			vals = append(vals, defaultValueForField(t.Elem(), strings.TrimSpace(p)))
		}
		return vals
	case reflect.Struct:
		return buildMapFromStruct(t)
	default:
		return nil
	}
}

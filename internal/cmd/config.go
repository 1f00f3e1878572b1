package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"reflect"
	"sort"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/padmotion/padmotion/internal/config"
	"github.com/padmotion/padmotion/internal/configpaths"
	"github.com/padmotion/padmotion/internal/pipeline"

	toml "github.com/pelletier/go-toml"
	yaml "gopkg.in/yaml.v3"
)

// ConfigCommand groups config-related subcommands.
type ConfigCommand struct {
	Init ConfigInit `cmd:"" help:"Generate a configuration template"`
}

// ConfigInit scaffolds a configuration file for the server command or a
// motion profile.
type ConfigInit struct {
	Command string `arg:"" name:"command" help:"What to generate: server or profile" enum:"server,profile"`
	Format  string `help:"Output format" enum:"json,yaml,yml,toml" default:"json"`
	Output  string `help:"Destination file path (defaults to <command>.<format> in the current directory)"`
	Force   bool   `help:"Overwrite if the file already exists"`
}

// entry is one key of a generated template. Entries with children become
// tables.
type entry struct {
	key      string
	help     string
	value    any
	children []entry
}

func (c *ConfigInit) Run() error {
	format := normalizeFormat(c.Format)
	if format == "" {
		return fmt.Errorf("unsupported format: %s", c.Format)
	}

	var entries []entry
	switch c.Command {
	case "server":
		entries = structEntries(reflect.TypeOf(Server{}))
	case "profile":
		m, err := config.ProfileMap(pipeline.DefaultProfile())
		if err != nil {
			return err
		}
		entries = mapEntries(m)
	default:
		return errors.New("unknown command; expected 'server' or 'profile'")
	}

	dest := c.Output
	if dest == "" {
		dest = c.Command + "." + format
	}
	if !c.Force {
		if _, err := os.Stat(dest); err == nil {
			return errors.New("destination exists; use --force to overwrite")
		}
	}
	if err := configpaths.EnsureDir(dest); err != nil {
		return err
	}

	data, err := render(entries, format)
	if err != nil {
		return err
	}
	if err := os.WriteFile(dest, data, 0o644); err != nil {
		return err
	}
	fmt.Println("wrote", dest)
	return nil
}

func normalizeFormat(f string) string {
	switch strings.ToLower(f) {
	case "json":
		return "json"
	case "yaml", "yml":
		return "yaml"
	case "toml":
		return "toml"
	default:
		return ""
	}
}

func render(entries []entry, format string) ([]byte, error) {
	switch format {
	case "yaml":
		return yaml.Marshal(yamlNode(entries))
	case "toml":
		tree, err := toml.TreeFromMap(map[string]any{})
		if err != nil {
			return nil, err
		}
		fillTree(tree, nil, entries)
		return tree.Marshal()
	default:
		return json.MarshalIndent(toMap(entries), "", "  ")
	}
}

func toMap(entries []entry) map[string]any {
	out := make(map[string]any, len(entries))
	for _, e := range entries {
		if e.children != nil {
			out[e.key] = toMap(e.children)
		} else {
			out[e.key] = e.value
		}
	}
	return out
}

// yamlNode keeps field order and carries help texts as comments.
func yamlNode(entries []entry) *yaml.Node {
	n := &yaml.Node{Kind: yaml.MappingNode}
	for _, e := range entries {
		k := &yaml.Node{Kind: yaml.ScalarNode, Value: e.key, HeadComment: e.help}
		var v *yaml.Node
		if e.children != nil {
			v = yamlNode(e.children)
		} else {
			v = &yaml.Node{}
			if err := v.Encode(e.value); err != nil {
				v = &yaml.Node{Kind: yaml.ScalarNode, Value: fmt.Sprint(e.value)}
			}
		}
		n.Content = append(n.Content, k, v)
	}
	return n
}

func fillTree(tree *toml.Tree, prefix []string, entries []entry) {
	for _, e := range entries {
		path := append(append([]string(nil), prefix...), e.key)
		if e.children != nil {
			fillTree(tree, path, e.children)
			continue
		}
		tree.SetPathWithComment(path, e.help, false, e.value)
	}
}

// structEntries walks a kong command struct. Keys follow the names kong's
// config resolvers look up: the flag name in snake_case, nested under the
// embed prefix.
func structEntries(t reflect.Type) []entry {
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	var out []entry
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() || f.Tag.Get("kong") == "-" {
			continue
		}
		if _, ok := f.Tag.Lookup("cmd"); ok {
			continue
		}

		if _, ok := f.Tag.Lookup("embed"); ok {
			sub := structEntries(f.Type)
			name := strings.TrimSuffix(f.Tag.Get("prefix"), ".")
			if name == "" {
				out = append(out, sub...)
			} else {
				out = append(out, entry{key: name, children: sub})
			}
			continue
		}

		key := f.Tag.Get("name")
		if key == "" {
			key = flagName(f.Name)
		}
		def := f.Tag.Get("default")
		if f.Tag.Get("type") == "path" && def == "" {
			// kong expands an empty path to the working directory
			continue
		}
		val := defaultValue(f.Type, def)
		if val == nil {
			continue
		}
		out = append(out, entry{key: strings.ReplaceAll(key, "-", "_"), help: f.Tag.Get("help"), value: val})
	}
	return out
}

// mapEntries turns a decoded document into entries sorted by key.
func mapEntries(m map[string]any) []entry {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]entry, 0, len(keys))
	for _, k := range keys {
		if sub, ok := m[k].(map[string]any); ok {
			out = append(out, entry{key: k, children: mapEntries(sub)})
			continue
		}
		out = append(out, entry{key: k, value: m[k]})
	}
	return out
}

// flagName converts a Go field name to kong's default flag name, e.g.
// ClientTimeout -> client-timeout and IIORoot -> iio-root.
func flagName(field string) string {
	r := []rune(field)
	var b strings.Builder
	for i, c := range r {
		if unicode.IsUpper(c) && i > 0 {
			prevLower := unicode.IsLower(r[i-1]) || unicode.IsDigit(r[i-1])
			nextLower := i+1 < len(r) && unicode.IsLower(r[i+1])
			if prevLower || (unicode.IsUpper(r[i-1]) && nextLower) {
				b.WriteByte('-')
			}
		}
		b.WriteRune(unicode.ToLower(c))
	}
	return b.String()
}

func defaultValue(t reflect.Type, def string) any {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == reflect.TypeOf(time.Duration(0)) {
		if def != "" {
			return def
		}
		return "0s"
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
	default:
		return nil
	}
}

package commands

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/gandaldf/sqlrebuild"
)

// valueFlags are the value-source flags shared by rewrite, split and exec.
type valueFlags struct {
	file string
	sets []string
	args []string
}

func (f *valueFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.file, "values", "", "YAML or JSON file with named: and positional: values")
	cmd.Flags().StringArrayVar(&f.sets, "set", nil, "named value as name=value (repeatable)")
	cmd.Flags().StringArrayVar(&f.args, "arg", nil, "positional value (repeatable, in order)")
}

// valuesFile is the on-disk shape of --values.
type valuesFile struct {
	Named      map[string]any `yaml:"named"`
	Positional []any          `yaml:"positional"`
}

// load merges the values file with --set and --arg. Flags override the
// file for named values and append to its positional values.
func (f *valueFlags) load() (sqlrebuild.Values, error) {
	var vf valuesFile
	if f.file != "" {
		data, err := os.ReadFile(f.file)
		if err != nil {
			return sqlrebuild.Values{}, fmt.Errorf("failed to read values file: %w", err)
		}
		if err := yaml.Unmarshal(data, &vf); err != nil {
			return sqlrebuild.Values{}, fmt.Errorf("failed to parse values file %s: %w", f.file, err)
		}
	}

	named := make(sqlrebuild.P, len(vf.Named)+len(f.sets))
	for k, v := range vf.Named {
		named[k] = v
	}
	for _, s := range f.sets {
		name, raw, ok := strings.Cut(s, "=")
		if !ok || name == "" {
			return sqlrebuild.Values{}, fmt.Errorf("invalid --set %q (want name=value)", s)
		}
		v, err := parseValue(raw)
		if err != nil {
			return sqlrebuild.Values{}, fmt.Errorf("invalid --set %s: %w", name, err)
		}
		named[name] = v
	}

	positional := append([]any(nil), vf.Positional...)
	for _, raw := range f.args {
		v, err := parseValue(raw)
		if err != nil {
			return sqlrebuild.Values{}, fmt.Errorf("invalid --arg %q: %w", raw, err)
		}
		positional = append(positional, v)
	}
	return sqlrebuild.NewValues(named, positional...), nil
}

// parseValue decodes a command-line value as a YAML scalar or flow
// sequence: 5 is an int, [1, 2] a list, null a NULL. An empty value is the
// empty string.
func parseValue(raw string) (any, error) {
	if strings.TrimSpace(raw) == "" {
		return raw, nil
	}
	var v any
	if err := yaml.Unmarshal([]byte(raw), &v); err != nil {
		return nil, err
	}
	if _, isMap := v.(map[string]any); isMap {
		return nil, fmt.Errorf("mappings are not bindable values")
	}
	return v, nil
}

// readInput returns the SQL template from the file argument, or from stdin
// when there is none or it is "-".
func readInput(cmd *cobra.Command, args []string) (string, error) {
	if len(args) == 0 || args[0] == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", fmt.Errorf("failed to read stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", args[0], err)
	}
	return string(data), nil
}

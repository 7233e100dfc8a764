package main

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/olekukonko/tablewriter"
	"gopkg.in/yaml.v3"
)

const (
	outputTable = "table"
	outputJSON  = "json"
	outputYAML  = "yaml"
)

// render writes v in the selected format. table draws the table form.
func (a *app) render(v any, table func(w io.Writer) error) error {
	switch a.outputFormat() {
	case outputJSON:
		enc := json.NewEncoder(a.out)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case outputYAML:
		plain, err := toPlain(v)
		if err != nil {
			return err
		}
		enc := yaml.NewEncoder(a.out)
		defer enc.Close()
		return enc.Encode(plain)
	case outputTable, "":
		return table(a.out)
	default:
		return fmt.Errorf("unknown output format %q", a.outputFormat())
	}
}

// toPlain round-trips v through JSON so yaml sees plain maps and numbers
// instead of json.Number strings.
func toPlain(v any) (any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func renderTable(w io.Writer, header []string, rows [][]string) error {
	table := tablewriter.NewWriter(w)
	table.Header(toAny(header)...)
	for _, row := range rows {
		if err := table.Append(toAny(row)...); err != nil {
			return err
		}
	}
	return table.Render()
}

func toAny(s []string) []any {
	out := make([]any, len(s))
	for i, v := range s {
		out[i] = v
	}
	return out
}

// flattenRows turns a nested response into sorted dotted-path rows.
func flattenRows(v any) [][]string {
	var rows [][]string
	var walk func(prefix string, v any)
	walk = func(prefix string, v any) {
		switch val := v.(type) {
		case map[string]any:
			for k, child := range val {
				walk(join(prefix, k), child)
			}
		case []any:
			for i, child := range val {
				walk(join(prefix, fmt.Sprint(i)), child)
			}
		case nil:
			rows = append(rows, []string{prefix, ""})
		default:
			rows = append(rows, []string{prefix, fmt.Sprint(val)})
		}
	}
	walk("", v)
	sort.Slice(rows, func(i, j int) bool { return rows[i][0] < rows[j][0] })
	return rows
}

func join(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return strings.Join([]string{prefix, key}, ".")
}

package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/olekukonko/tablewriter"
	"gopkg.in/yaml.v3"
)

// Format selects how a result is printed at the end of a run
type Format string

const (
	FormatText  Format = "text"
	FormatJSON  Format = "json"
	FormatYAML  Format = "yaml"
	FormatTable Format = "table"
)

// ParseFormat validates an output format name
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case FormatText, FormatJSON, FormatYAML, FormatTable:
		return f, nil
	case "":
		return FormatText, nil
	default:
		return "", fmt.Errorf("unknown output format %q", s)
	}
}

// Write prints r to w in the given format
func Write(w io.Writer, r *Result, format Format) error {
	switch format {
	case FormatJSON:
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(r)

	case FormatYAML:
		encoder := yaml.NewEncoder(w)
		encoder.SetIndent(2)
		if err := encoder.Encode(r); err != nil {
			return err
		}
		return encoder.Close()

	case FormatTable:
		return writeTable(w, r)

	default:
		_, err := fmt.Fprintln(w, r.Summary())
		return err
	}
}

func writeTable(w io.Writer, r *Result) error {
	table := tablewriter.NewWriter(w)
	table.Header("Property", "Value")

	table.Append([]string{"Run ID", r.RunID})
	table.Append([]string{"PID", fmt.Sprintf("%d", r.PID)})
	table.Append([]string{"Path", r.Path})
	table.Append([]string{"Outcome", string(r.Outcome)})
	table.Append([]string{"Waited", r.Duration.String()})
	table.Append([]string{"Probes", fmt.Sprintf("%d", r.Probes)})
	table.Append([]string{"Teardown", stepCell(r.Teardown)})
	table.Append([]string{"Restore", stepCell(r.Restore)})

	return table.Render()
}

func stepCell(s StepResult) string {
	if s.Error != "" {
		return fmt.Sprintf("%s (%s)", s.Status(), s.Error)
	}
	return s.Status()
}

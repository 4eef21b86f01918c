package catalog

import (
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/matzehuels/toolrack/pkg/errors"
	"github.com/matzehuels/toolrack/pkg/tool"
)

type yamlCatalog struct {
	Tools []yamlTool `yaml:"tools"`
}

type yamlTool struct {
	Name    string   `yaml:"name"`
	Row     *int     `yaml:"row"`
	Col     *int     `yaml:"col"`
	Handle  *float64 `yaml:"handle_d_mm"`
	Shaft   *float64 `yaml:"shaft_d_mm"`
	Enabled *bool    `yaml:"enabled"`
}

// ReadYAML decodes a YAML catalog. Unknown keys are rejected. Errors name the
// 1-based index of the offending entry in the tools list.
func ReadYAML(r io.Reader, opts Options) ([]tool.Tool, error) {
	var doc yamlCatalog
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidCatalog, err, "parse YAML catalog")
	}

	var tools []tool.Tool
	for i, yt := range doc.Tools {
		entry := i + 1
		enabled := yt.Enabled == nil || *yt.Enabled
		if !enabled && !opts.IncludeDisabled {
			continue
		}
		var missing []string
		if yt.Row == nil {
			missing = append(missing, ColRow)
		}
		if yt.Col == nil {
			missing = append(missing, ColCol)
		}
		if yt.Handle == nil {
			missing = append(missing, ColHandle)
		}
		if yt.Shaft == nil {
			missing = append(missing, ColShaft)
		}
		if len(missing) > 0 && enabled {
			return nil, errors.New(errors.ErrCodeInvalidCatalog, "tools[%d]: missing keys: %s", entry, strings.Join(missing, ", ")).
				With("line", entry).With("missing", missing)
		}
		t := tool.Tool{
			Name:    strings.TrimSpace(yt.Name),
			Enabled: enabled,
			Line:    entry,
		}
		if yt.Row != nil {
			t.Row = *yt.Row
		}
		if yt.Col != nil {
			t.Col = *yt.Col
		}
		if yt.Handle != nil {
			t.HandleDiameter = *yt.Handle
		}
		if yt.Shaft != nil {
			t.ShaftDiameter = *yt.Shaft
		}
		tools = append(tools, t)
	}
	return tools, nil
}

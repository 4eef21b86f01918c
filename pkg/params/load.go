package params

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/matzehuels/toolrack/pkg/errors"
)

// Format identifies a parameter file encoding.
type Format string

const (
	FormatTOML Format = "toml"
	FormatYAML Format = "yaml"
)

// FormatFromPath infers the file format from its extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return FormatTOML, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	}
	return "", errors.New(errors.ErrCodeInvalidParams, "unsupported parameter file %q (want .toml, .yaml or .yml)", path)
}

// Load reads a parameter overlay file and applies it on top of Defaults.
// An empty path returns the defaults unchanged.
func Load(path string) (Set, error) {
	if path == "" {
		return Defaults(), nil
	}
	format, err := FormatFromPath(path)
	if err != nil {
		return Set{}, err
	}
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Set{}, errors.New(errors.ErrCodeFileNotFound, "parameter file not found: %s", path)
		}
		return Set{}, errors.Wrap(errors.ErrCodeInvalidParams, err, "open parameter file %q", path)
	}
	defer f.Close()

	set, err := Decode(f, format)
	if err != nil {
		return Set{}, err
	}
	return set, nil
}

// Decode reads an overlay in the given format and applies it on top of
// Defaults. Unknown keys are rejected.
func Decode(r io.Reader, format Format) (Set, error) {
	raw := make(map[string]any)
	switch format {
	case FormatTOML:
		if _, err := toml.NewDecoder(r).Decode(&raw); err != nil {
			return Set{}, errors.Wrap(errors.ErrCodeInvalidParams, err, "parse TOML parameters")
		}
	case FormatYAML:
		if err := yaml.NewDecoder(r).Decode(&raw); err != nil && err != io.EOF {
			return Set{}, errors.Wrap(errors.ErrCodeInvalidParams, err, "parse YAML parameters")
		}
	default:
		return Set{}, errors.New(errors.ErrCodeInvalidParams, "unsupported parameter format %q", format)
	}
	return Overlay(Defaults(), raw)
}

// Overlay applies raw values (numbers, unit expressions or strings keyed by
// parameter name) on top of base. Keys are applied in sorted order so the
// first reported error is deterministic.
func Overlay(base Set, raw map[string]any) (Set, error) {
	out := base
	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		if err := out.set(k, raw[k]); err != nil {
			return Set{}, errors.Wrap(errors.ErrCodeInvalidParams, err, "invalid parameter overlay").
				With("param", k)
		}
	}
	return out, nil
}

// WriteTOML writes s as a commented TOML overlay listing every parameter.
func WriteTOML(w io.Writer, s Set) error {
	if _, err := fmt.Fprintln(w, "# toolrack parameters (lengths in mm, angles in deg)"); err != nil {
		return err
	}
	enc := toml.NewEncoder(w)
	for _, e := range entries {
		v, _ := s.Lookup(e.name)
		if _, err := fmt.Fprintf(w, "\n# %s\n", e.desc); err != nil {
			return err
		}
		if err := enc.Encode(map[string]any{e.name: v.Raw()}); err != nil {
			return fmt.Errorf("encode %s: %w", e.name, err)
		}
	}
	return nil
}

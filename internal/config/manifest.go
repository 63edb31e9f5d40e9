package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/ggoodman/mcp-stdio-server/mcp"
	"github.com/hashicorp/go-multierror"
	"gopkg.in/yaml.v3"
)

// Manifest declares the components a server exposes. It is loaded from TOML
// or YAML.
type Manifest struct {
	Server       ServerSection     `toml:"server" yaml:"server"`
	Capabilities CapabilitySection `toml:"capabilities" yaml:"capabilities"`
	Modules      []string          `toml:"modules" yaml:"modules"`
	Store        StoreSection      `toml:"store" yaml:"store"`
	Prompts      []PromptSpec      `toml:"prompts" yaml:"prompts"`
	Resources    []ResourceSpec    `toml:"resources" yaml:"resources"`

	// dir resolves relative file resource paths. Empty means the working
	// directory.
	dir string
	// undecoded lists keys the decoder did not recognise.
	undecoded []string
}

type ServerSection struct {
	Name         string `toml:"name" yaml:"name"`
	Version      string `toml:"version" yaml:"version"`
	Description  string `toml:"description" yaml:"description"`
	Instructions string `toml:"instructions" yaml:"instructions"`
}

// CapabilitySection overrides the default capability set. Absent sections
// keep their defaults.
type CapabilitySection struct {
	Resources *ResourceCapabilitySpec `toml:"resources" yaml:"resources"`
	Tools     *ListChangedSpec        `toml:"tools" yaml:"tools"`
	Prompts   *ListChangedSpec        `toml:"prompts" yaml:"prompts"`
	Logging   *LoggingCapabilitySpec  `toml:"logging" yaml:"logging"`
}

type ResourceCapabilitySpec struct {
	ListChanged bool `toml:"list_changed" yaml:"list_changed"`
	Subscribe   bool `toml:"subscribe" yaml:"subscribe"`
}

type ListChangedSpec struct {
	ListChanged bool `toml:"list_changed" yaml:"list_changed"`
}

type LoggingCapabilitySpec struct {
	Levels []string `toml:"levels" yaml:"levels"`
}

type StoreSection struct {
	Namespace string `toml:"namespace" yaml:"namespace"`
}

type PromptSpec struct {
	Name        string         `toml:"name" yaml:"name"`
	Description string         `toml:"description" yaml:"description"`
	Arguments   []ArgumentSpec `toml:"arguments" yaml:"arguments"`
	Messages    []MessageSpec  `toml:"messages" yaml:"messages"`
}

type ArgumentSpec struct {
	Name        string `toml:"name" yaml:"name"`
	Description string `toml:"description" yaml:"description"`
	Required    bool   `toml:"required" yaml:"required"`
}

type MessageSpec struct {
	Role string `toml:"role" yaml:"role"`
	Text string `toml:"text" yaml:"text"`
}

// ResourceSpec declares either an inline text resource (Text) or a file
// resource (File), never both.
type ResourceSpec struct {
	URI         string `toml:"uri" yaml:"uri"`
	Name        string `toml:"name" yaml:"name"`
	Description string `toml:"description" yaml:"description"`
	MimeType    string `toml:"mime_type" yaml:"mime_type"`
	Text        string `toml:"text" yaml:"text"`
	File        string `toml:"file" yaml:"file"`
}

// LoadManifest reads a manifest, choosing the format from the extension:
// .toml, .yaml or .yml.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read manifest: %w", err)
	}
	m, err := ParseManifest(data, strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), "."))
	if err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	m.dir = filepath.Dir(path)
	return m, nil
}

// ParseManifest decodes data in the given format ("toml", "yaml" or "yml").
func ParseManifest(data []byte, format string) (*Manifest, error) {
	var m Manifest
	switch format {
	case "toml":
		md, err := toml.Decode(string(data), &m)
		if err != nil {
			return nil, fmt.Errorf("failed to decode TOML: %w", err)
		}
		for _, k := range md.Undecoded() {
			m.undecoded = append(m.undecoded, k.String())
		}
	case "yaml", "yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&m); err != nil {
			return nil, fmt.Errorf("failed to decode YAML: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported manifest format %q", format)
	}
	return &m, nil
}

// Validate checks the manifest against itself and the module registry and
// reports every problem found.
func (m *Manifest) Validate(modules *ModuleRegistry) error {
	var err error
	for _, k := range m.undecoded {
		err = multierror.Append(err, fmt.Errorf("unknown key %q", k))
	}
	if m.Server.Name == "" {
		err = multierror.Append(err, fmt.Errorf("server.name is required"))
	}

	if lc := m.Capabilities.Logging; lc != nil {
		for _, l := range lc.Levels {
			if !mcp.IsValidLoggingLevel(mcp.LoggingLevel(l)) {
				err = multierror.Append(err, fmt.Errorf("capabilities.logging: unknown level %q", l))
			}
		}
	}

	for _, name := range m.Modules {
		if _, ok := modules.Lookup(name); !ok {
			err = multierror.Append(err, fmt.Errorf("modules: unknown module %q", name))
		}
	}

	for i, p := range m.Prompts {
		if p.Name == "" {
			err = multierror.Append(err, fmt.Errorf("prompts[%d]: name is required", i))
		}
		for j, a := range p.Arguments {
			if a.Name == "" {
				err = multierror.Append(err, fmt.Errorf("prompts[%d].arguments[%d]: name is required", i, j))
			}
		}
		for j, msg := range p.Messages {
			if !mcp.IsValidRole(mcp.Role(msg.Role)) {
				err = multierror.Append(err, fmt.Errorf("prompts[%d].messages[%d]: invalid role %q", i, j, msg.Role))
			}
		}
	}

	for i, r := range m.Resources {
		if r.URI == "" {
			err = multierror.Append(err, fmt.Errorf("resources[%d]: uri is required", i))
		}
		if (r.Text == "") == (r.File == "") {
			err = multierror.Append(err, fmt.Errorf("resources[%d]: exactly one of text or file must be set", i))
		}
	}
	return err
}

// ResolvePath resolves a manifest-relative path.
func (m *Manifest) ResolvePath(p string) string {
	if filepath.IsAbs(p) || m.dir == "" {
		return p
	}
	return filepath.Join(m.dir, p)
}

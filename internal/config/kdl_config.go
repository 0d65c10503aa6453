// Package config loads the tree/path configuration the builder needs:
// for a named tree, where its analysis files live, where its source
// lives, and where its generated-object tree lives. This is the
// "configuration loader" collaborator named (but not designed) by the
// cross-reference builder spec — we still give it a real, runnable
// implementation so the module builds end to end.
package config

import (
	"fmt"
	"os"
	"strings"

	kdl "github.com/sblinch/kdl-go"
	"github.com/sblinch/kdl-go/document"

	"github.com/standardbeagle/xref-builder/internal/schemacheck"
)

// TreePaths names the three directories a tree needs. IndexPath is used
// both as input (its "analysis" subdirectory) and as output (the three
// artifact files land directly under it).
type TreePaths struct {
	IndexPath  string
	FilesPath  string
	ObjdirPath string
}

// TreeConfig is one tree's configuration: its paths, plus the include and
// exclude glob patterns internal/discover uses when no filenames file is
// supplied.
type TreeConfig struct {
	Name    string
	Paths   TreePaths
	Include []string
	Exclude []string
}

// Config is the top-level document: every tree this config knows about.
type Config struct {
	Trees map[string]TreeConfig
}

// Tree looks up a tree by name, returning an error the caller should treat
// as a fatal configuration error (spec §7) if the tree is unknown.
func (c *Config) Tree(name string) (TreeConfig, error) {
	t, ok := c.Trees[name]
	if !ok {
		return TreeConfig{}, fmt.Errorf("config: unknown tree %q", name)
	}
	return t, nil
}

// Load reads and parses a KDL config file at path. Missing paths, malformed
// KDL, and schema validation failures are all returned as configuration
// errors — fatal per the builder's error taxonomy.
func Load(path string) (*Config, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}

	cfg, err := parseKDL(string(content))
	if err != nil {
		return nil, fmt.Errorf("config: parsing %s: %w", path, err)
	}

	if err := schemacheck.ValidateConfig(cfg.asValidationDoc()); err != nil {
		return nil, fmt.Errorf("config: %s failed schema validation: %w", path, err)
	}

	return cfg, nil
}

// asValidationDoc flattens Config into the plain map shape schemacheck
// validates against — it mirrors the struct but drops Go-specific types
// so the jsonschema-go validator can walk it directly.
func (c *Config) asValidationDoc() map[string]any {
	trees := make(map[string]any, len(c.Trees))
	for name, t := range c.Trees {
		trees[name] = map[string]any{
			"paths": map[string]any{
				"index_path":  t.Paths.IndexPath,
				"files_path":  t.Paths.FilesPath,
				"objdir_path": t.Paths.ObjdirPath,
			},
		}
	}
	return map[string]any{"trees": trees}
}

// parseKDL walks the KDL document, expecting the shape:
//
//	trees {
//	    mozilla-central {
//	        paths {
//	            index-path "/data/index"
//	            files-path "/data/src"
//	            objdir-path "/data/obj"
//	        }
//	        include "**/*.cpp" "**/*.h"
//	        exclude "**/test/**"
//	    }
//	}
func parseKDL(content string) (*Config, error) {
	doc, err := kdl.Parse(strings.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("failed to parse KDL config: %w", err)
	}

	cfg := &Config{Trees: make(map[string]TreeConfig)}

	for _, n := range doc.Nodes {
		if nodeName(n) != "trees" {
			continue
		}
		for _, treeNode := range n.Children {
			name := nodeName(treeNode)
			if name == "" {
				continue
			}
			tc := TreeConfig{Name: name}
			for _, cn := range treeNode.Children {
				switch nodeName(cn) {
				case "paths":
					for _, pn := range cn.Children {
						switch nodeName(pn) {
						case "index-path":
							if s, ok := firstStringArg(pn); ok {
								tc.Paths.IndexPath = s
							}
						case "files-path":
							if s, ok := firstStringArg(pn); ok {
								tc.Paths.FilesPath = s
							}
						case "objdir-path":
							if s, ok := firstStringArg(pn); ok {
								tc.Paths.ObjdirPath = s
							}
						}
					}
				case "include":
					tc.Include = collectStringArgs(cn)
				case "exclude":
					tc.Exclude = collectStringArgs(cn)
				}
			}
			cfg.Trees[name] = tc
		}
	}

	return cfg, nil
}

// Helper functions over the kdl-go document model: walking nodes and
// pulling out string/int arguments.

func nodeName(n *document.Node) string {
	if n == nil || n.Name == nil {
		return ""
	}
	return n.Name.NodeNameString()
}

func firstStringArg(n *document.Node) (string, bool) {
	if len(n.Arguments) == 0 {
		return "", false
	}
	if s, ok := n.Arguments[0].Value.(string); ok {
		return s, true
	}
	return "", false
}

func firstIntArg(n *document.Node) (int, bool) {
	if len(n.Arguments) == 0 {
		return 0, false
	}
	switch v := n.Arguments[0].Value.(type) {
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	default:
		return 0, false
	}
}

func collectStringArgs(n *document.Node) []string {
	if n == nil {
		return nil
	}
	out := make([]string, 0, len(n.Arguments))
	for _, a := range n.Arguments {
		if s, ok := a.Value.(string); ok {
			out = append(out, s)
		}
	}
	if len(out) == 0 && len(n.Children) > 0 {
		out = make([]string, 0, len(n.Children))
		for _, child := range n.Children {
			if s, ok := firstStringArg(child); ok {
				out = append(out, s)
			} else if child.Name != nil {
				if s, ok := child.Name.Value.(string); ok {
					out = append(out, s)
				}
			}
		}
	}
	return out
}

package config

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Explain returns the effective value at the given YAML path and its source.
//
// Paths use the file's key names joined by dots, for example:
//
//	log_level
//	translation.provider
//	translation.openai.model
//	capture.copy_command
//	window.animation_ms
//	activity_log.max_files
func Explain(res *LoadResult, path string) (any, Source, error) {
	if res == nil || res.Config == nil {
		return nil, Source{}, fmt.Errorf("no config loaded")
	}
	if path == "" {
		return nil, Source{}, fmt.Errorf("path is empty")
	}

	value, err := lookupValue(res.Config, path)
	if err != nil {
		return nil, Source{}, err
	}

	if src, ok := res.Sources[path]; ok {
		return value, src, nil
	}
	return value, Source{Kind: SourceDefault, Name: "defaults"}, nil
}

// Paths lists every leaf path Explain accepts.
func Paths(cfg *Config) []string {
	var root yaml.Node
	if err := root.Encode(cfg); err != nil {
		return nil
	}
	var out []string
	collectPaths(unwrapDocument(&root), "", &out)
	return out
}

func collectPaths(node *yaml.Node, prefix string, out *[]string) {
	if node.Kind != yaml.MappingNode {
		*out = append(*out, prefix)
		return
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		path := node.Content[i].Value
		if prefix != "" {
			path = prefix + "." + path
		}
		collectPaths(node.Content[i+1], path, out)
	}
}

func lookupValue(cfg *Config, path string) (any, error) {
	var node yaml.Node
	if err := node.Encode(cfg); err != nil {
		return nil, fmt.Errorf("failed to encode config: %w", err)
	}

	cur := unwrapDocument(&node)
	for _, part := range strings.Split(path, ".") {
		if cur.Kind != yaml.MappingNode {
			return nil, fmt.Errorf("unknown path: %s", path)
		}
		var next *yaml.Node
		for i := 0; i+1 < len(cur.Content); i += 2 {
			if cur.Content[i].Value == part {
				next = cur.Content[i+1]
				break
			}
		}
		if next == nil {
			return nil, fmt.Errorf("unknown path: %s", path)
		}
		cur = next
	}

	var value any
	if err := cur.Decode(&value); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return value, nil
}

func unwrapDocument(n *yaml.Node) *yaml.Node {
	if n.Kind == yaml.DocumentNode && len(n.Content) > 0 {
		return n.Content[0]
	}
	return n
}

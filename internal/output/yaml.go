package output

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// YAML renders v as block-style YAML, keeping the key order of v's JSON
// encoding.
func YAML(v any) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("converting to yaml: %w", err)
	}
	resetStyle(&doc)
	return yaml.Marshal(&doc)
}

// resetStyle drops the flow and quoting styles inherited from JSON so the
// encoder picks block style and quotes only where needed.
func resetStyle(n *yaml.Node) {
	n.Style = 0
	for _, c := range n.Content {
		resetStyle(c)
	}
}

package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rileyhilliard/sensormon/internal/errors"
	"gopkg.in/yaml.v3"
)

// fileConfig is the on-disk shape of Config. Durations are written as
// strings like "2s" instead of nanosecond integers.
type fileConfig struct {
	Version int `yaml:"version"`
	Serial  struct {
		Port        string   `yaml:"port,omitempty"`
		BaudRate    int      `yaml:"baud_rate"`
		ReadTimeout string   `yaml:"read_timeout"`
		Markers     []string `yaml:"markers,omitempty"`
		VendorIDs   []string `yaml:"vendor_ids,omitempty"`
	} `yaml:"serial"`
	Connect struct {
		Mode             string `yaml:"mode"`
		RetryInterval    string `yaml:"retry_interval"`
		ReconnectDelay   string `yaml:"reconnect_delay"`
		FailureThreshold int    `yaml:"failure_threshold"`
		ErrorBackoff     string `yaml:"error_backoff"`
	} `yaml:"connect"`
	Display DisplayConfig `yaml:"display"`
	Log     LogConfig     `yaml:"log"`
}

func toFileConfig(cfg *Config) fileConfig {
	var f fileConfig
	f.Version = cfg.Version
	f.Serial.Port = cfg.Serial.Port
	f.Serial.BaudRate = cfg.Serial.BaudRate
	f.Serial.ReadTimeout = cfg.Serial.ReadTimeout.String()
	f.Serial.Markers = cfg.Serial.Markers
	f.Serial.VendorIDs = cfg.Serial.VendorIDs
	f.Connect.Mode = cfg.Connect.Mode
	f.Connect.RetryInterval = cfg.Connect.RetryInterval.String()
	f.Connect.ReconnectDelay = cfg.Connect.ReconnectDelay.String()
	f.Connect.FailureThreshold = cfg.Connect.FailureThreshold
	f.Connect.ErrorBackoff = cfg.Connect.ErrorBackoff.String()
	f.Display = cfg.Display
	f.Log = cfg.Log
	return f
}

// Write marshals cfg to path as YAML, creating parent directories.
func Write(path string, cfg *Config) error {
	var buf bytes.Buffer
	encoder := yaml.NewEncoder(&buf)
	encoder.SetIndent(2)
	if err := encoder.Encode(toFileConfig(cfg)); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig, "Failed to encode config", "")
	}
	if err := encoder.Close(); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig, "Failed to encode config", "")
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return errors.WrapWithCode(err, errors.ErrConfig,
				"Can't create config directory "+dir,
				"Check directory permissions")
		}
	}

	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			"Can't write config file "+path,
			"Check file permissions")
	}
	return nil
}

// SetValue sets a scalar at a dotted key path (e.g. "serial.port") in an
// existing config file. It preserves the existing YAML structure and
// comments, creating intermediate mappings as needed.
func SetValue(configPath, key, value string) error {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	if root.Kind == 0 {
		// Empty file.
		root = yaml.Node{
			Kind:    yaml.DocumentNode,
			Content: []*yaml.Node{{Kind: yaml.MappingNode, Tag: "!!map"}},
		}
	}
	if root.Kind != yaml.DocumentNode || len(root.Content) == 0 {
		return fmt.Errorf("invalid YAML document structure")
	}

	node := root.Content[0]
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("expected mapping at document root")
	}

	parts := strings.Split(key, ".")
	for i, part := range parts {
		last := i == len(parts)-1
		child := findMapValue(node, part)

		if last {
			if child == nil {
				node.Content = append(node.Content, scalarNode(part), scalarNode(value))
			} else {
				if child.Kind != yaml.ScalarNode {
					return fmt.Errorf("'%s' is not a scalar value", key)
				}
				child.Value = value
				child.Tag = "!!str"
				child.Style = 0
			}
			break
		}

		if child == nil {
			child = &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
			node.Content = append(node.Content, scalarNode(part), child)
		}
		if child.Kind != yaml.MappingNode {
			return fmt.Errorf("'%s' is not a mapping", strings.Join(parts[:i+1], "."))
		}
		node = child
	}

	var buf strings.Builder
	encoder := yaml.NewEncoder(&buf)
	encoder.SetIndent(2)
	if err := encoder.Encode(&root); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	encoder.Close()

	if err := os.WriteFile(configPath, []byte(buf.String()), 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

func scalarNode(value string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: value}
}

// findMapValue finds a value in a mapping node by key name.
func findMapValue(node *yaml.Node, key string) *yaml.Node {
	if node.Kind != yaml.MappingNode {
		return nil
	}

	for i := 0; i < len(node.Content)-1; i += 2 {
		keyNode := node.Content[i]
		valueNode := node.Content[i+1]

		if keyNode.Kind == yaml.ScalarNode && keyNode.Value == key {
			return valueNode
		}
	}

	return nil
}

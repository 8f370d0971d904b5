package config

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadGeneration reads a YAML generation preset. Fields missing from the
// file keep the values of DefaultGenerationConfig. An empty path returns the
// defaults unchanged.
func LoadGeneration(path string) (GenerationConfig, error) {
	cfg := DefaultGenerationConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read generation config: %w", err)
	}
	return DecodeGeneration(bytes.NewReader(data))
}

// DecodeGeneration parses YAML on top of DefaultGenerationConfig.
func DecodeGeneration(r io.Reader) (GenerationConfig, error) {
	cfg := DefaultGenerationConfig()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && err != io.EOF {
		return cfg, fmt.Errorf("failed to parse generation config: %w", err)
	}
	return cfg, nil
}

// EncodeGeneration writes cfg as YAML.
func EncodeGeneration(w io.Writer, cfg GenerationConfig) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode generation config: %w", err)
	}
	return enc.Close()
}

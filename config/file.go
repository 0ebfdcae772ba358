package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadFile decodes the YAML file at path into the struct pointed to by dst.
// Unknown keys are rejected. An empty file leaves dst unchanged.
func LoadFile(path string, dst any) error {
	if _, err := structPtr(dst); err != nil {
		return err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return decode(data, dst, path)
}

func decode(data []byte, dst any, source string) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("config: %s: %w", source, err)
	}
	return nil
}

// LoadAll populates dst from the YAML file at path, if path is not empty, and
// then overlays environment variables for stage.
func (l Loader) LoadAll(path, stage string, dst any) error {
	if path != "" {
		if err := LoadFile(path, dst); err != nil {
			return err
		}
	}
	return l.Load(stage, dst)
}

// LoadAll is [Loader.LoadAll] with the default Loader.
func LoadAll(path, stage string, dst any) error {
	return Loader{}.LoadAll(path, stage, dst)
}

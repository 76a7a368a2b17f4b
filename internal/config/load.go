package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// LoadJob reads a job file. The format follows the file extension: .yaml and
// .yml are YAML, anything else is JSON.
func LoadJob(path string) (Job, error) {
	var j Job
	if err := decodeFile(path, &j); err != nil {
		return Job{}, fmt.Errorf("load job: %w", err)
	}
	return j, nil
}

// LoadProfileSpec reads a profile file with the same format rules as LoadJob.
func LoadProfileSpec(path string) (ProfileSpec, error) {
	var p ProfileSpec
	if err := decodeFile(path, &p); err != nil {
		return ProfileSpec{}, fmt.Errorf("load profile: %w", err)
	}
	return p, nil
}

func decodeFile(path string, dst any) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return Decode(b, isYAML(path), dst)
}

// Decode unmarshals b as YAML or JSON. Unknown JSON fields are rejected.
func Decode(b []byte, asYAML bool, dst any) error {
	if asYAML {
		dec := yaml.NewDecoder(bytes.NewReader(b))
		dec.KnownFields(true)
		if err := dec.Decode(dst); err != nil {
			return fmt.Errorf("yaml: %w", err)
		}
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("json: %w", err)
	}
	return nil
}

func isYAML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}

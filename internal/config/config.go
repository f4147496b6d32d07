package config

import (
	"io/ioutil"

	"gopkg.in/yaml.v2"
)

type OptLevel int

const (
	OptNone OptLevel = iota
	OptDefault
	OptAggressive
)

type CodegenOptions struct {
	EmitIR   bool
	OptLevel OptLevel
	Target   TargetTriple
}

// Manifest is the `otter.yaml` workspace manifest (SPEC_FULL.md §6.5),
// the OtterLang analogue of tawago's "Tawa Module Information" file.
type Manifest struct {
	Package     string   `yaml:"package"`
	Entry       string   `yaml:"entry"`
	ForceImport []string `yaml:"forceImport"`
	Target      string   `yaml:"target"`
}

func LoadManifest(path string) (*Manifest, error) {
	data, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

func (m *Manifest) Save(path string) error {
	data, err := yaml.Marshal(m)
	if err != nil {
		return err
	}
	return ioutil.WriteFile(path, data, 0o644)
}

func DefaultManifest(pkgName string) *Manifest {
	return &Manifest{
		Package: pkgName,
		Entry:   "main.ot",
		Target:  Native().String(),
	}
}

package main

import (
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"

	"github.com/Masterminds/semver/v3"
	"github.com/ztrue/tracerr"
	"gopkg.in/yaml.v2"
)

const manifestName = "module.yaml"

type minicModule struct {
	Package string   `yaml:"Package"`
	Version string   `yaml:"Version,omitempty"`
	Library bool     `yaml:"Library,omitempty"`
	Imports []string `yaml:"Imports,omitempty"`
}

func (m *minicModule) validate() error {
	if m.Package == "" {
		return fmt.Errorf("%s: Package is required", manifestName)
	}
	if m.Version == "" {
		return nil
	}
	v, err := semver.NewVersion(m.Version)
	if err != nil {
		return fmt.Errorf("%s: invalid Version %q: %w", manifestName, m.Version, err)
	}
	m.Version = v.String()
	return nil
}

func readManifest(dir string) (minicModule, error) {
	data, err := ioutil.ReadFile(filepath.Join(dir, manifestName))
	if err != nil {
		return minicModule{}, tracerr.Wrap(err)
	}

	var doc minicModule
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return minicModule{}, tracerr.Wrap(err)
	}
	if err := doc.validate(); err != nil {
		return minicModule{}, err
	}
	return doc, nil
}

func writeManifest(dir string, doc minicModule) error {
	if err := doc.validate(); err != nil {
		return err
	}

	out, err := yaml.Marshal(doc)
	if err != nil {
		return tracerr.Wrap(err)
	}

	fi, err := os.Create(filepath.Join(dir, manifestName))
	if err != nil {
		return tracerr.Wrap(err)
	}
	defer fi.Close()

	_, err = fi.Write(out)
	return tracerr.Wrap(err)
}

//go:build mage

package main

import (
	"fmt"
	"runtime"
	"strings"

	semver "github.com/Masterminds/semver/v3"
	"github.com/magefile/mage/sh"
	"github.com/pkg/errors"
)

const GO_VERSION_CONSTRAINT = ">= 1.18.0"

func binaryWithExt(name string) string {
	if runtime.GOOS == "windows" {
		return fmt.Sprintf("%s.exe", name)
	}
	return name
}

// Extract the version of go from the output of `go version`, e.g. "go version go1.18.4 linux/amd64".
func goVersion() (*semver.Version, error) {
	output, err := sh.Output("go", "version")
	if err != nil {
		return nil, errors.Errorf("error running version cmd: %v", err)
	}
	fields := strings.Fields(output)
	if len(fields) < 3 {
		return nil, errors.Errorf("unexpected version cmd output: %s", output)
	}
	version, err := semver.NewVersion(strings.TrimPrefix(fields[2], "go"))
	if err != nil {
		return nil, errors.Errorf("error parsing version: %v", err)
	}
	return version, nil
}

func goCheck() error {
	version, err := goVersion()
	if err != nil {
		return errors.Errorf("error getting version: %v", err)
	}
	return checkVersion(version, GO_VERSION_CONSTRAINT)
}

func checkVersion(version *semver.Version, constraint string) error {
	c, err := semver.NewConstraint(constraint)
	if err != nil {
		return errors.Errorf("error parsing constraint: %v", err)
	}
	if !c.Check(version) {
		return errors.Errorf("found version %v but it failed constraint %v", version, c)
	}
	return nil
}

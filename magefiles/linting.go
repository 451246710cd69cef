//go:build mage

package main

import (
	"fmt"
	"strings"

	semver "github.com/Masterminds/semver/v3"
	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
	"github.com/pkg/errors"
)

const GOLANGCI_LINT_VERSION_CONSTRAINT = ">= 1.52.0"

// Extract the version of golangci-lint
func golangciLintVersion() (*semver.Version, error) {
	output, err := golangcilintOutput("--version")
	if err != nil {
		return nil, errors.Errorf("error running version cmd: %v", err)
	}
	fields := strings.Fields(output)
	if len(fields) < 4 {
		return nil, errors.Errorf("unexpected version cmd output: %s", output)
	}
	version, err := semver.NewVersion(strings.TrimPrefix(fields[3], "v"))
	if err != nil {
		return nil, errors.Errorf("error parsing version: %v", err)
	}
	return version, nil
}

func golangciLintCheck() error {
	version, err := golangciLintVersion()
	if err != nil {
		return errors.Errorf("error getting version: %v", err)
	}
	return checkVersion(version, GOLANGCI_LINT_VERSION_CONSTRAINT)
}

// Fixing Linting
func LintFix() error {
	mg.Deps(golangciLintCheck)
	output, err := golangcilintOutput("run", "--fix", "--timeout", "10m")
	fmt.Println(output)
	return err
}

// Linting Check
func CheckLint() error {
	mg.Deps(golangciLintCheck)
	output, err := golangcilintOutput("run", "--timeout", "10m")
	fmt.Println(output)
	return err
}

func golangcilintOutput(args ...string) (string, error) {
	return sh.Output(binaryWithExt("golangci-lint"), args...)
}

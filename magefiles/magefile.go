//go:build mage

// Package main provides build targets for the holdings project using Mage.
//
// Usage:
//
//	mage build      Compile the holdings binary to bin/
//	mage test       Run all tests
//	mage testUnit   Run tests in short mode, without the CLI end-to-end runs
//	mage golden     Regenerate golden files for the delimited writer
//	mage lint       Run golangci-lint
//	mage clean      Remove build artifacts
//	mage install    Install holdings to GOPATH/bin
package main

import (
	"os"
	"path/filepath"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

const (
	binaryName = "holdings"
	binaryDir  = "bin"
	cmdDir     = "./cmd/holdings"
	versionVar = "github.com/mesh-intelligence/holdings/internal/cli.Version"
)

// Build compiles the holdings binary to bin/. HOLDINGS_VERSION, when set,
// is stamped into the version command.
func Build() error {
	if err := os.MkdirAll(binaryDir, 0o755); err != nil {
		return err
	}
	args := []string{"build", "-v", "-o", filepath.Join(binaryDir, binaryName)}
	if v := os.Getenv("HOLDINGS_VERSION"); v != "" {
		args = append(args, "-ldflags", "-X "+versionVar+"="+v)
	}
	return sh.RunV("go", append(args, cmdDir)...)
}

// Test runs all tests.
func Test() error {
	return sh.RunV("go", "test", "./...")
}

// TestUnit runs the package tests in short mode.
func TestUnit() error {
	return sh.RunV("go", "test", "-short", "./pkg/...", "./internal/...")
}

// Golden rewrites testdata/golden files from the current writer output.
func Golden() error {
	return sh.RunV("go", "test", "./internal/delimited/", "-update")
}

// Lint runs golangci-lint.
func Lint() error {
	return sh.RunV("golangci-lint", "run", "./...")
}

// Clean removes build artifacts.
func Clean() error {
	if err := os.RemoveAll(binaryDir); err != nil {
		return err
	}
	return sh.RunV("go", "clean")
}

// Install builds and copies the binary to GOPATH/bin.
func Install() error {
	mg.Deps(Build)
	gopath, err := sh.Output("go", "env", "GOPATH")
	if err != nil {
		return err
	}
	src := filepath.Join(binaryDir, binaryName)
	dst := filepath.Join(gopath, "bin", binaryName)
	return sh.Copy(dst, src)
}

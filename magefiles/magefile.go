//go:build mage

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

const (
	binDir  = "bin"
	pkgMain = "./cmd/sandbox"
)

var Default = Build

func binary() string {
	name := "sandbox"
	if os.Getenv("GOOS") == "windows" {
		name += ".exe"
	}
	return filepath.Join(binDir, name)
}

// Build compiles the sandbox into bin/.
func Build() error {
	mg.Deps(Vet)
	fmt.Println("Building", binary())
	return sh.RunV("go", "build", "-o", binary(), pkgMain)
}

// Test runs every package test.
func Test() error {
	args := []string{"test", "./..."}
	if mg.Verbose() {
		args = append(args, "-v")
	}
	return sh.RunV("go", args...)
}

// Vet runs go vet.
func Vet() error {
	return sh.RunV("go", "vet", "./...")
}

// Run builds and starts the sandbox. Extra flags are read from SANDBOX_ARGS.
func Run() error {
	mg.Deps(Build)
	return sh.RunV(binary(), strings.Fields(os.Getenv("SANDBOX_ARGS"))...)
}

// Clean removes build output.
func Clean() error {
	fmt.Println("Removing", binDir)
	return sh.Rm(binDir)
}

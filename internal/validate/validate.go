// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package validate checks exported documents against their declared DTD
// using xmllint, either from PATH or inside a container.
// Implements: prd003-jats-export (R7: DTD validation);
package validate

import (
	"bytes"
	"fmt"
	"io"
	"os/exec"
	"strings"
)

const (
	binXmllint = "xmllint"
	binDocker  = "docker"
	binPodman  = "podman"
)

// DefaultImage is the container image used when xmllint is not on PATH.
const DefaultImage = "docker.io/library/alpine-xmllint:latest"

// Validator checks a serialized document against the DTD named in its
// DOCTYPE declaration.
type Validator interface {
	// Name identifies the backing strategy ("xmllint", "docker", "podman").
	Name() string

	// Validate runs DTD validation over the document. The returned error
	// carries xmllint's diagnostics when validation fails.
	Validate(document string) error
}

// executor abstracts command execution for testing.
type executor interface {
	LookPath(file string) (string, error)
	RunSilent(name string, args ...string) error
	RunPiped(name string, args []string, stdin io.Reader, stdout, stderr io.Writer) error
}

// osExecutor is the production executor backed by os/exec.
type osExecutor struct{}

func (o *osExecutor) LookPath(file string) (string, error) {
	return exec.LookPath(file)
}

func (o *osExecutor) RunSilent(name string, args ...string) error {
	return exec.Command(name, args...).Run()
}

func (o *osExecutor) RunPiped(name string, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	cmd := exec.Command(name, args...)
	cmd.Stdin = stdin
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	return cmd.Run()
}

// xmllintArgs validate stdin against its DOCTYPE without touching the
// network. The DTDs must be resolvable through the local XML catalog.
var xmllintArgs = []string{"--noout", "--valid", "--nonet", "-"}

// validator implements Validator over one launcher command. A native
// xmllint uses the bin directly; container strategies prepend the run
// incantation.
type validator struct {
	name   string
	bin    string
	prefix []string // args before the xmllint args, e.g. ["run", "--rm", "-i", image]
	exec   executor
}

func (v *validator) Name() string { return v.name }

func (v *validator) Validate(document string) error {
	args := make([]string, 0, len(v.prefix)+len(xmllintArgs))
	args = append(args, v.prefix...)
	args = append(args, xmllintArgs...)

	var stderr bytes.Buffer
	err := v.exec.RunPiped(v.bin, args, strings.NewReader(document), io.Discard, &stderr)
	if err != nil {
		diag := strings.TrimSpace(stderr.String())
		if diag != "" {
			return fmt.Errorf("document is not valid:\n%s", diag)
		}
		return fmt.Errorf("running %s: %w", v.name, err)
	}
	return nil
}

func newNativeValidator(exec executor) *validator {
	return &validator{name: binXmllint, bin: binXmllint, exec: exec}
}

func newContainerValidator(bin, image string, exec executor) *validator {
	return &validator{
		name:   bin,
		bin:    bin,
		prefix: []string{"run", "--rm", "-i", image, binXmllint},
		exec:   exec,
	}
}

var defaultExec = &osExecutor{}

// DetectValidator prefers a native xmllint, then docker, then podman
// running the given image (DefaultImage when empty). Returns an error when
// no strategy is available.
func DetectValidator(image string) (Validator, error) {
	return detectValidator(image, defaultExec)
}

func detectValidator(image string, exec executor) (Validator, error) {
	if image == "" {
		image = DefaultImage
	}

	if _, err := exec.LookPath(binXmllint); err == nil {
		return newNativeValidator(exec), nil
	}

	for _, bin := range []string{binDocker, binPodman} {
		if _, err := exec.LookPath(bin); err != nil {
			continue
		}
		if exec.RunSilent(bin, "info") != nil {
			continue
		}
		return newContainerValidator(bin, image, exec), nil
	}

	return nil, fmt.Errorf(
		"no validation strategy available: %s not on PATH and neither %s nor %s operational",
		binXmllint, binDocker, binPodman,
	)
}

package artifact

import (
	"errors"
	"fmt"
)

// Sentinel errors for artifact declarations and lookups.
var (
	ErrUnknownDependency = errors.New("unknown dependency")
	ErrUnknownArtifact   = errors.New("unknown artifact")
	ErrCyclicDependency  = errors.New("cyclic dependency")
	ErrMissingSource     = errors.New("source file is required")
)

// DependencyError reports a dependency of Artifact that could not be accepted.
type DependencyError struct {
	Artifact   string
	Dependency string
	Err        error
}

func (e *DependencyError) Error() string {
	return fmt.Sprintf("artifact %q: dependency %q: %v", e.Artifact, e.Dependency, e.Err)
}

func (e *DependencyError) Unwrap() error {
	return e.Err
}

// ArtifactError reports a lookup of a name that was never declared.
type ArtifactError struct {
	Name string
	Err  error
}

func (e *ArtifactError) Error() string {
	return fmt.Sprintf("artifact %q: %v", e.Name, e.Err)
}

func (e *ArtifactError) Unwrap() error {
	return e.Err
}

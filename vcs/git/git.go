// Package git reads repository metadata used to label graph output.
package git

// GetRepositoryRoot returns the absolute path to the repository root
func GetRepositoryRoot(repoPath string) (string, error) {
	return runGitCommand(repoPath, "rev-parse", "--show-toplevel")
}

// GetCurrentCommitHash returns the short hash of HEAD
func GetCurrentCommitHash(repoPath string) (string, error) {
	return runGitCommand(repoPath, "rev-parse", "--short", "HEAD")
}

// HasUncommittedChanges checks if there are any uncommitted changes in the repository
func HasUncommittedChanges(repoPath string) (bool, error) {
	status, err := runGitCommand(repoPath, "status", "--porcelain")
	if err != nil {
		return false, err
	}
	return status != "", nil
}

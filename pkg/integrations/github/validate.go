package github

import (
	"errors"
	"regexp"
)

var (
	// 1-39 alphanumerics or hyphens, not starting with a hyphen.
	validOwner = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9-]{0,38}$`)
	// 1-100 alphanumerics, hyphens, underscores or dots.
	validRepo = regexp.MustCompile(`^[a-zA-Z0-9._-]{1,100}$`)
)

// reservedOwners are first path segments on github.com that are site pages
// rather than accounts.
var reservedOwners = map[string]bool{
	"orgs": true, "sponsors": true, "topics": true, "marketplace": true, "apps": true,
}

// ValidateOwner checks a GitHub user or organization name.
func ValidateOwner(owner string) error {
	if owner == "" {
		return errors.New("owner is required")
	}
	if !validOwner.MatchString(owner) {
		return errors.New("invalid owner: must be 1-39 alphanumeric characters or hyphens, not starting with a hyphen")
	}
	if reservedOwners[owner] {
		return errors.New("invalid owner: reserved path " + owner)
	}
	return nil
}

// ValidateRepo checks a GitHub repository name.
func ValidateRepo(repo string) error {
	if repo == "" {
		return errors.New("repo is required")
	}
	if !validRepo.MatchString(repo) {
		return errors.New("invalid repo: must be 1-100 alphanumeric characters, hyphens, underscores or dots")
	}
	return nil
}

// ValidateRepoRef checks both halves of owner/repo.
func ValidateRepoRef(owner, repo string) error {
	if err := ValidateOwner(owner); err != nil {
		return err
	}
	return ValidateRepo(repo)
}

// Package github reads repository activity from the GitHub REST API.
//
//	client, err := github.NewClient(cache, os.Getenv("GITHUB_TOKEN"), "", buildinfo.UserAgent())
//	owner, repo, ok := github.ExtractRepo(info.ProjectURLs, info.HomePage)
//	if ok {
//	    m, err := client.Fetch(ctx, owner, repo, false)
//	    fmt.Println(m.Stars, m.OpenIssues, m.LastCommitAt)
//	}
//
// # Authentication
//
// A token is optional. Anonymous clients get 60 requests per hour, which
// an audit of a large manifest will exhaust; the quota error wraps
// [integrations.ErrRateLimited] and names the reset time.
//
// # Locating repositories
//
// [ExtractRepo] inspects PyPI project URLs. Labels that usually name the
// source (Repository, Source, Source Code, GitHub, Code) win over other
// labels, which win over the homepage and download URLs.
package github

// Package pypi reads project metadata from the Python Package Index JSON
// API (https://pypi.org/pypi/<name>/json).
//
//	client := pypi.NewClient(cache, "", buildinfo.UserAgent())
//	info, err := client.FetchPackage(ctx, "fastapi", false)
//	if errors.Is(err, integrations.ErrNotFound) {
//	    // no such project
//	}
//	fmt.Println(info.Version, info.ReleaseDate)
//
// [Client.FetchRelease] reads a specific version, which is how the
// dependencies of a pinned release are obtained for conflict checks.
// Dependency declarations are returned verbatim; classifying their markers
// is the caller's job.
//
// Names are normalized (lowercase, runs of "-", "_" and "." folded to "-")
// before they reach the URL or the cache key, so "Typing_Extensions" and
// "typing-extensions" share one cache entry.
package pypi

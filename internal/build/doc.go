// Package build writes the static site: every page rendered to
// {url}/index.html with root-relative URLs rewritten to relative ones, the
// static folder copied, assets referenced by pages materialised, and the
// per-language search artifacts.
//
// All execution paths (the build command and tests) route through Builder.
package build

package csharp

import "strings"

// missingSDKMarkers are substrings that, when found in a project's manifest
// text or in a parsed file's diagnostics, indicate a target framework or
// SDK reference this toolchain cannot resolve (spec §4.4, missing-SDK
// detection).
var missingSDKMarkers = []string{
	"netstandard1.",
	".netframework,version=v1.",
	".netframework,version=v2.",
	"microsoft.net.sdk.web",
	"frameworkreference",
	"unresolved metadata reference",
}

// DetectMissingSDK scans a project's manifest text and its files'
// diagnostics for a missing-SDK marker.
func DetectMissingSDK(manifestText string, files []*ParsedFile) bool {
	lower := strings.ToLower(manifestText)
	for _, marker := range missingSDKMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	for _, f := range files {
		for _, d := range f.Diagnostics {
			dl := strings.ToLower(d)
			for _, marker := range missingSDKMarkers {
				if strings.Contains(dl, marker) {
					return true
				}
			}
		}
	}
	return false
}

package handlers

import (
	"net/http"
	"runtime"
)

// VersionResponse reports build information.
type VersionResponse struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildDate string `json:"buildDate"`
	GoVersion string `json:"goVersion"`
}

var versionInfo = VersionResponse{
	Version:   "dev",
	Commit:    "unknown",
	BuildDate: "unknown",
}

// SetVersionInfo is called by the main package with ldflags-injected values.
func SetVersionInfo(version, commit, buildDate string) {
	versionInfo.Version = version
	versionInfo.Commit = commit
	versionInfo.BuildDate = buildDate
}

// VersionHandler returns build information.
func VersionHandler(w http.ResponseWriter, r *http.Request) {
	response := versionInfo
	response.GoVersion = runtime.Version()
	respondJSON(w, http.StatusOK, response)
}

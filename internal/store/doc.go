// Package store persists build and deployment job records as yaml files
// under the data directory.
//
// Records are keyed by id; every write is atomic per id (one file per
// record) and no cross-id transactions exist. Layout:
//
//	<dataDir>/records/builds/<buildId>.yaml
//	<dataDir>/records/deployments/<deploymentId>.yaml
//
// The package also provides a drop-in spec watcher: yaml build requests
// placed into <dataDir>/specs are picked up through fsnotify and handed to
// the pipeline, mirroring how specs arrive from the authoring surface.
package store

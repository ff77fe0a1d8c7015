// Package fileutil holds filesystem helpers shared by placement and cleanup:
// cross-device moves with verified copies, containment checks, and directory
// probes.
package fileutil

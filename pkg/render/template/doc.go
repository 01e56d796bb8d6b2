// Package template defines the engine-agnostic rendering seam. The pongo
// subpackage provides the production implementation; tests can substitute a
// scripted renderer without touching the pipeline.
package template

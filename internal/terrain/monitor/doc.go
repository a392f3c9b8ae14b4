// Package monitor renders run diagnostics: an HTML height-field chart and
// per-structure longitudinal sections.
//
// Nothing here feeds back into the pipeline. Outputs are for inspecting a
// run after the fact.
package monitor

// Package modules holds the module variants composed into view pipelines.
//
// Modules are plain structs embedding view.Base; build them as pointers and
// hand them to view.NewController (or nest them in a Container, Conditional
// or Ajax module). Configuration fields must not change once the pipeline
// serves requests; per-request results go to the view.Context.
package modules

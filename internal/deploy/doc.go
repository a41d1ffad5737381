// Package deploy contains the deployment target strategy layer.
//
// Per-platform branching is modeled as a polymorphic Driver interface
// {GenerateConfig, Deploy} resolved through a registry populated at startup,
// never as conditionals in the pipeline controller. New targets plug in by
// registering another Driver.
//
// Drivers operate on a per-deployment working directory that the pipeline
// copies from the shared Generated artifact, so target-specific augmentation
// never leaks across concurrent jobs.
//
// Three drivers (container-archive, workstation, cloud-bundle) package the
// artifact and return ordered operator setup instructions without any
// network or external-process call. The container-image driver invokes
// `docker build` synchronously; a provider failure carries the docker
// diagnostic verbatim and is never retried by the pipeline.
package deploy

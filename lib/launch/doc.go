// Package launch interprets a launch configuration document: it expands the
// execution topology into per-process specifications, renders the
// environment surface the external training runtime reads, and supervises
// the local worker processes for the lifetime of the job.
//
// The package deliberately stops where the training framework begins. It
// does not implement rendezvous, parameter partitioning, or precision
// casting; it only describes those policies to the runtime through
// environment variables and keeps the worker processes alive.
package launch

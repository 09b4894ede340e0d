// Package config models the launch configuration document consumed by the
// zerolaunch trainer launcher: execution topology (machines, processes,
// rendezvous), precision policy, and the DeepSpeed ZeRO stage-3
// memory-partitioning parameters forwarded to the training runtime.
//
// The document itself is advisory input: every value is interpreted by the
// external training framework, and the file enforces no cross-field
// consistency on its own. Validation of the document is therefore a separate
// operation (Validate/Warnings) owned by the consumer, not by the schema.
//
// Two loading paths are provided. ReadFile/Read decode a document
// schema-exactly with yaml.v3, preserving round-trip fidelity. InitConfig and
// FromViper load through viper with defaults merged underneath, which is what
// the CLI uses to produce an effective configuration.
package config

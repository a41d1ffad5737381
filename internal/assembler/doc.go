// Package assembler materializes generated source files into a build
// artifact directory with an exclusive per-build lifecycle.
//
// Assemble writes into a scratch directory first and promotes it into the
// persistent build store only after every file landed; any write failure
// removes the scratch directory, so a partial artifact is never visible.
// Assembly is mutually exclusive per buildId (singleflight): a concurrent
// duplicate call shares the winner's result, and a replay against an already
// Generated artifact returns it unchanged.
//
// Beyond the generated files the assembler writes flavor-specific auxiliary
// artifacts: install scripts for sh and cmd environments, a README derived
// from the spec, a Dockerfile, and the build-info.yaml metadata document
// that deployment drivers read (path + checksum manifest, server name,
// runtime flavor).
package assembler

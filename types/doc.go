// Package types defines the shared value types of the generation
// pipeline: requests, raw and multi-resolution models, performance
// snapshots, and the structured error taxonomy.
//
// Everything here is a plain value with no behavior beyond cloning and
// normalization; all coordination lives in the pipeline package.
package types

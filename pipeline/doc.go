// Package pipeline coordinates model generation: it accepts requests,
// deduplicates them against the content-addressed cache, drains a FIFO
// queue in bounded concurrent batches, and absorbs every failure
// through a fallback chain ending in a primitive placeholder.
//
// The coordinator owns all shared mutable state (queue, in-flight
// futures); strategies and the LOD builder are pure functions over
// their inputs. There is no cancellation: once a request starts
// generating it runs to completion or to placeholder fallback.
package pipeline

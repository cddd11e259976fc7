// Package llm extracts skill tags for jobs that came in without any, via a
// structured-output call to a chat/completion endpoint. Tagging happens as
// a deferred periodic backfill rather than inline at parse time, keeping
// per-item ingestion latency independent of model latency.
package llm

import "boardsync/internal/llm/providers"

// JobInput is the minimal projection a tag extraction request needs. It is
// an alias of providers.JobInput so every provider implementation satisfies
// TagExtractor without providers importing this package back.
type JobInput = providers.JobInput

// TagExtractor is implemented by each provider (OpenAI, Claude). Every
// returned map key must match an input Link; entries that don't are
// discarded by the caller.
type TagExtractor = providers.TagExtractor

// Package ingestion seeds the dictionary from JSONL exports.
//
// The Pipeline reads one dictionary row per line, normalizes the row's
// usages, embeds entry forms in batches on a worker pool and stores the
// resulting entries in a single partition. Embedding calls are retried with
// exponential backoff and vectors are normalized to unit length before they
// are written, so cosine similarity reduces to a dot product at query time.
//
// Rows without a form and rows that are not valid JSON are skipped and
// counted; a failed batch is logged and counted without aborting the run.
package ingestion

// Package blob provides the object storage boundary for source videos and
// transcript artifacts.
//
// Two backends implement Store: Google Cloud Storage for deployments and a
// local filesystem tree (one directory per bucket) for development and tests.
// Locations are rendered as scheme://bucket/key. Uploads are retried with
// exponential backoff by the wrapper returned from WithRetry.
package blob

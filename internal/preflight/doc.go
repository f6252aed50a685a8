// Package preflight provides readiness checks for the external binaries,
// services and filesystem paths that vidscribe depends on.
//
// These checks run in two contexts:
//   - The daemon calls RunAll at startup and logs every failed check, so an
//     operator sees a broken translation key or unwritable work directory
//     before the first video fails on it.
//   - The CLI "vidscribe preflight" command renders the same results.
//
// Each check is gated by its config toggle -- disabled features are skipped.
package preflight

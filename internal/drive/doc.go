// Package drive persists coaching sessions as markdown documents in a
// dedicated Google Drive folder.
//
// Access tokens are acquired fresh for every operation through the identity
// package and never cached; each Client instance wraps a single short-lived
// token. The folder and the per-session document are resolved with an
// idempotent find-or-create: looking up by name with trashed=false, creating
// only when absent, and overwriting file content in place on save.
//
// Concurrent creators of the same folder or file name may race. That is
// accepted: the runtime dispatches a single agent instance per session in
// practice, and find-or-create plus overwrite-by-name keeps repeated calls
// convergent.
package drive

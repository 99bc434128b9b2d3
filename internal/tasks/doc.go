// Package tasks holds the client-side view state and reconciles it with the subtitle backend.
//
// # View State
//
// [Store] holds what the my-page view renders: the profile, the project entries (titled "자막 N" by position),
// the add-project form and the last alert. Readers take a [Snapshot] copy.
//
// The overall [Phase] moves Idle → Loading → Ready, Loading → Error, or to LoginRequired when no token is stored
// or the server rejects it. The profile and the project list each carry their own [Status], so a list that failed
// to load can be told apart from an empty one.
//
// # Reconciliation
//
// [Reconciler] runs the gateway calls and applies their results:
//  1. [Reconciler.Load] : profile and project list fetched concurrently (errgroup), each slice stored as it resolves
//  2. [Reconciler.Create] : submit the form, then re-fetch the list from the server
//  3. [Reconciler.Delete] : delete by project id, remove exactly that entry, then re-fetch
//  4. [Reconciler.UpdateProfile] : full replacement, then re-fetch the profile
//
// User-initiated failures set the alert to the server's message or a fallback. Load failures are only logged.
// A result that arrives after its context is done is dropped.
//
// # Edit Panel
//
// [EditSession] drives one project's edit page: video link, subtitle generation, LLM check, title/hashtag
// recommendation and translation. Each operation has its own loading flag. Sessions can be saved as drafts
// through a [DraftSaver].
//
// # Progress Reporting
//
// Operations emit [ProgressUpdate] values on an optional channel. Sends never block; updates are dropped when the channel is full.
package tasks

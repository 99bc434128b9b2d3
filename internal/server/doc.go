// Package server implements an in-memory stand-in for the subtitle backend, used for local development and tests.
//
// # Surfaces
//
// The account/project service (default port 3000):
//
//	GET    /user/value        → [profile] (array-wrapped singleton)
//	PUT    /user              → full profile replacement
//	GET    /project/title     → {projectIDs, projectNames}
//	POST   /project           → {id}
//	DELETE /project           → delete by project_id, falling back to title
//	GET    /edit/{projectId}  → embeddable video link
//	POST   /work/generateSub  → marks subtitles as generated
//	POST   /files/readSRT     → SRT text
//
// The LLM service (default port 4000):
//
//	POST /llm/check, /llm/recommend, /llm/translate
//
// /user, /project and /edit require `Authorization: Bearer <token>`. Any non-empty token is accepted
// unless [Options.Tokens] restricts them. Generation, checking, recommendation and translation return
// canned text; they stand in for the real services and implement none of their logic.
//
// # Fault injection
//
// [Backend.FailNext] makes the next matching request fail with a given status and message,
// which is how tests exercise the client's error paths.
package server

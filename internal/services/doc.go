// Package services implements the gateways to the subtitle backend.
//
// # Surfaces
//
// Two HTTP services are involved:
//   - the account/project service (default http://localhost:3000): [ProjectService], [UserService], [EditorService]
//   - the LLM service (default http://localhost:4000): [LLMService]
//
// Every gateway wraps an [APIService], which owns the base URL, the [http.Client] and, for authenticated
// surfaces, the [session.Session]. Authenticated requests carry `Authorization: Bearer <token>`, written by
// [oauth2.Token.SetAuthHeader]. When no token is stored the request is never sent and the call fails with
// [shared.ErrLoginRequired].
//
// # Error Handling
//
// Non-2xx responses become an [*APIError] holding the status, the server's "message" field and the raw body.
// It unwraps to one sentinel of the taxonomy:
//   - [shared.ErrNetwork] : no response (transport failure, cancelled context)
//   - [shared.ErrAuth] : 401 or 403
//   - [shared.ErrServerValidation] : any other 4xx
//   - [shared.ErrServerFault] : 5xx
//
// [UserMessage] picks the text to show the user: the server message when present, a fallback otherwise.
//
// # Wire Quirks
//
//   - GET /user/value answers with a one-element array
//   - project ids may arrive as numbers or strings; both decode to string ids
//   - DELETE /project keys deletion by title on the wire; the client always sends the id too
//   - /llm/recommend is a flat object whose key order carries the hashtag order
//
// No request is retried.
package services

// Package models defines the data types exchanged between the subx gateways, the view state store and the UI.
//
// Server-owned records:
//   - [Project] : a registered video (id assigned by the server, title, link)
//   - [UserProfile] : the signed-in account as returned by GET /user/value
//
// Client-side records:
//   - [SubtitleEntry] : a project as shown in the my-page list
//   - [ModalFormState] : the transient "add project" form
//   - [ProfileUpdate] : full replacement body for PUT /user
//   - [Recommendation] : title and hashtags suggested by the LLM service
//   - [Draft] : an edit session saved locally
package models

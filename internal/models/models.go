// package models defines the data model for the subtitle client
package models

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// DisplayDateLayout renders dates the way the my-page list shows them (e.g. 2024년 8월 1일).
const DisplayDateLayout = "2006년 1월 2일"

// Project is a server-owned video project.
type Project struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	URL   string `json:"url,omitempty"`
}

// SubtitleEntry is a [Project] materialized for the my-page list.
//
// Title is positional ("자막 N") and changes when the list is reordered.
// Date is when this client materialized the entry, not a server creation date.
type SubtitleEntry struct {
	ID      string    `json:"id"`
	Title   string    `json:"title"`
	Summary string    `json:"summary"`
	Date    time.Time `json:"date"`
}

// EntryTitle returns the positional display title for the entry at zero-based index i.
func EntryTitle(i int) string {
	return fmt.Sprintf("자막 %d", i+1)
}

// DisplayDate formats the entry date with [DisplayDateLayout].
func (e SubtitleEntry) DisplayDate() string {
	return e.Date.Format(DisplayDateLayout)
}

// NewEntries materializes projects in server order.
func NewEntries(projects []Project, now time.Time) []SubtitleEntry {
	entries := make([]SubtitleEntry, len(projects))
	for i, p := range projects {
		entries[i] = SubtitleEntry{ID: p.ID, Title: EntryTitle(i), Summary: p.Title, Date: now}
	}
	return entries
}

// VideoID extracts the YouTube video id from a watch, short, embed or youtu.be link.
// It returns "" for other links.
func VideoID(link string) string {
	u, err := url.Parse(strings.TrimSpace(link))
	if err != nil {
		return ""
	}
	switch strings.TrimPrefix(u.Hostname(), "www.") {
	case "youtube.com", "m.youtube.com":
		if v := u.Query().Get("v"); v != "" {
			return v
		}
		for _, prefix := range []string{"/embed/", "/shorts/"} {
			if id, ok := strings.CutPrefix(u.Path, prefix); ok {
				return strings.Trim(id, "/")
			}
		}
	case "youtu.be":
		return strings.Trim(u.Path, "/")
	}
	return ""
}

// UserProfile is the account record. Password and Phone are not always returned by the server.
type UserProfile struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password,omitempty"`
	Phone    string `json:"phone,omitempty"`
}

// ProfileUpdate is the full-replacement body of PUT /user.
type ProfileUpdate struct {
	UserID   string `json:"user_id"`
	Password string `json:"user_password"`
	Name     string `json:"user_name"`
	Email    string `json:"user_email"`
	Phone    string `json:"user_phone"`
}

// UpdateFromProfile seeds a [ProfileUpdate] with the current profile values.
func UpdateFromProfile(p UserProfile) ProfileUpdate {
	return ProfileUpdate{UserID: p.ID, Password: p.Password, Name: p.Name, Email: p.Email, Phone: p.Phone}
}

// Validate requires every field since the server replaces the whole record.
func (u ProfileUpdate) Validate() error {
	var missing []string
	for _, f := range []struct{ name, value string }{
		{"user_id", u.UserID},
		{"user_password", u.Password},
		{"user_name", u.Name},
		{"user_email", u.Email},
		{"user_phone", u.Phone},
	} {
		if strings.TrimSpace(f.value) == "" {
			missing = append(missing, f.name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing fields: %s", strings.Join(missing, ", "))
	}
	return nil
}

// ModalFormState is the "add project" dialog input.
type ModalFormState struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

// Empty reports whether both inputs are blank.
func (f ModalFormState) Empty() bool {
	return strings.TrimSpace(f.Title) == "" && strings.TrimSpace(f.URL) == ""
}

// Validate requires a title and a link.
func (f ModalFormState) Validate() error {
	if strings.TrimSpace(f.Title) == "" {
		return fmt.Errorf("project title is required")
	}
	if strings.TrimSpace(f.URL) == "" {
		return fmt.Errorf("project url is required")
	}
	return nil
}

// Recommendation holds the LLM's suggested video title and hashtags.
type Recommendation struct {
	Title string   `json:"title"`
	Tags  []string `json:"tags"`
}

// Language is a translation target offered by the edit panel.
type Language struct {
	Code  string
	Label string
}

// Languages lists the supported translation targets in display order.
var Languages = []Language{
	{Code: "en", Label: "영어"},
	{Code: "es", Label: "스페인어"},
	{Code: "fr", Label: "프랑스어"},
	{Code: "de", Label: "독일어"},
	{Code: "ja", Label: "일본어"},
	{Code: "zh", Label: "중국어"},
}

// LookupLanguage returns the [Language] for code.
func LookupLanguage(code string) (Language, bool) {
	for _, l := range Languages {
		if l.Code == code {
			return l, true
		}
	}
	return Language{}, false
}

// Draft is an edit session saved on this machine.
type Draft struct {
	ID          string         `json:"id"`
	Sequence    int            `json:"sequence"`
	ProjectID   string         `json:"project_id"`
	Subtitles   string         `json:"subtitles"`
	Checked     string         `json:"checked"`
	Recommended Recommendation `json:"recommended"`
	Translation string         `json:"translation"`
	Language    string         `json:"language"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// Validate checks that the draft is attached to a project.
func (d Draft) Validate() error {
	if strings.TrimSpace(d.ProjectID) == "" {
		return fmt.Errorf("draft requires a project id")
	}
	return nil
}

package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/subx/internal/models"
	"github.com/gorilla/mux"
)

// Options configures a [Backend].
type Options struct {
	// Profile is the signed-in user's record. Password and Phone are returned as stored.
	Profile models.UserProfile
	// Projects seeds the project list in order. Projects without an id are numbered.
	Projects []models.Project
	// Tokens restricts accepted bearer tokens. Empty accepts any non-empty token.
	Tokens []string
	Logger *log.Logger
}

type fault struct {
	status  int
	message string
}

// Backend is the in-memory state behind both service surfaces.
type Backend struct {
	mu        sync.Mutex
	profile   models.UserProfile
	projects  []models.Project
	nextID    int
	generated map[string]bool
	tokens    map[string]bool
	faults    map[string]fault
	logger    *log.Logger
}

// NewBackend creates a [Backend] from opts.
func NewBackend(opts Options) *Backend {
	b := &Backend{
		profile:   opts.Profile,
		generated: make(map[string]bool),
		tokens:    make(map[string]bool),
		faults:    make(map[string]fault),
		logger:    opts.Logger,
	}
	for _, t := range opts.Tokens {
		b.tokens[t] = true
	}
	for _, p := range opts.Projects {
		b.nextID++
		if p.ID == "" {
			p.ID = strconv.Itoa(b.nextID)
		} else if n, err := strconv.Atoi(p.ID); err == nil && n > b.nextID {
			b.nextID = n
		}
		b.projects = append(b.projects, p)
	}
	return b
}

// Projects returns a copy of the stored projects.
func (b *Backend) Projects() []models.Project {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]models.Project(nil), b.projects...)
}

// Profile returns the stored profile.
func (b *Backend) Profile() models.UserProfile {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.profile
}

// FailNext makes the next request matching method and path answer with status and {"message": message}.
func (b *Backend) FailNext(method, path string, status int, message string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.faults[method+" "+path] = fault{status: status, message: message}
}

func (b *Backend) allow(token string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.tokens) == 0 || b.tokens[token]
}

// injectFaults answers pending [Backend.FailNext] requests.
func (b *Backend) injectFaults(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.Method + " " + r.URL.Path
		b.mu.Lock()
		f, ok := b.faults[key]
		delete(b.faults, key)
		b.mu.Unlock()

		if ok {
			writeMessage(w, f.status, f.message)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// AccountHandler serves the account/project surface.
func (b *Backend) AccountHandler() http.Handler {
	r := b.router()
	b.accountRoutes(r)
	return r
}

// LLMHandler serves the LLM surface.
func (b *Backend) LLMHandler() http.Handler {
	r := b.router()
	b.llmRoutes(r)
	return r
}

// Handler serves both surfaces from one router.
func (b *Backend) Handler() http.Handler {
	r := b.router()
	b.accountRoutes(r)
	b.llmRoutes(r)
	return r
}

func (b *Backend) router() *mux.Router {
	r := mux.NewRouter()
	if b.logger != nil {
		r.Use(mux.MiddlewareFunc(Logging(b.logger)))
	}
	r.Use(b.injectFaults)
	return r
}

func (b *Backend) accountRoutes(r *mux.Router) {
	auth := mux.MiddlewareFunc(RequireBearer(b.allow))

	user := r.PathPrefix("/user").Subrouter()
	user.Use(auth)
	user.HandleFunc("/value", b.handleProfile).Methods(http.MethodGet)
	user.HandleFunc("", b.handleUpdateProfile).Methods(http.MethodPut)

	project := r.PathPrefix("/project").Subrouter()
	project.Use(auth)
	project.HandleFunc("/title", b.handleProjectTitles).Methods(http.MethodGet)
	project.HandleFunc("", b.handleCreateProject).Methods(http.MethodPost)
	project.HandleFunc("", b.handleDeleteProject).Methods(http.MethodDelete)

	edit := r.PathPrefix("/edit").Subrouter()
	edit.Use(auth)
	edit.HandleFunc("/{projectId}", b.handleEditLink).Methods(http.MethodGet)

	r.HandleFunc("/work/generateSub", b.handleGenerate).Methods(http.MethodPost)
	r.HandleFunc("/files/readSRT", b.handleReadSRT).Methods(http.MethodPost)
}

func (b *Backend) llmRoutes(r *mux.Router) {
	llm := r.PathPrefix("/llm").Subrouter()
	llm.HandleFunc("/check", b.handleCheck).Methods(http.MethodPost)
	llm.HandleFunc("/recommend", b.handleRecommend).Methods(http.MethodPost)
	llm.HandleFunc("/translate", b.handleTranslate).Methods(http.MethodPost)
}

func (b *Backend) handleProfile(w http.ResponseWriter, r *http.Request) {
	p := b.Profile()
	writeJSON(w, http.StatusOK, []map[string]string{{
		"id":       p.ID,
		"name":     p.Name,
		"email":    p.Email,
		"password": p.Password,
		"phone":    p.Phone,
	}})
}

func (b *Backend) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	var update models.ProfileUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		writeMessage(w, http.StatusBadRequest, "잘못된 요청입니다.")
		return
	}
	if err := update.Validate(); err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	b.mu.Lock()
	b.profile = models.UserProfile{
		ID:       update.UserID,
		Name:     update.Name,
		Email:    update.Email,
		Password: update.Password,
		Phone:    update.Phone,
	}
	b.mu.Unlock()

	writeMessage(w, http.StatusOK, "회원정보가 수정되었습니다.")
}

func (b *Backend) handleProjectTitles(w http.ResponseWriter, r *http.Request) {
	projects := b.Projects()
	ids := make([]int, 0, len(projects))
	names := make([]string, 0, len(projects))
	for _, p := range projects {
		id, _ := strconv.Atoi(p.ID)
		ids = append(ids, id)
		names = append(names, p.Title)
	}
	writeJSON(w, http.StatusOK, map[string]any{"projectIDs": ids, "projectNames": names})
}

func (b *Backend) handleCreateProject(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Title string `json:"project_title"`
		Name  string `json:"project_name"`
		URL   string `json:"project_url"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "잘못된 요청입니다.")
		return
	}

	title := strings.TrimSpace(req.Title)
	if title == "" {
		title = strings.TrimSpace(req.Name)
	}
	if title == "" || strings.TrimSpace(req.URL) == "" {
		writeMessage(w, http.StatusBadRequest, "제목과 링크를 입력해 주세요.")
		return
	}

	b.mu.Lock()
	b.nextID++
	id := b.nextID
	b.projects = append(b.projects, models.Project{ID: strconv.Itoa(id), Title: title, URL: strings.TrimSpace(req.URL)})
	b.mu.Unlock()

	writeJSON(w, http.StatusCreated, map[string]int{"id": id})
}

func (b *Backend) handleDeleteProject(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ProjectID json.RawMessage `json:"project_id"`
		Title     string          `json:"title"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "잘못된 요청입니다.")
		return
	}
	id := strings.Trim(string(req.ProjectID), `"`)
	if id == "null" {
		id = ""
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	for i, p := range b.projects {
		if (id != "" && p.ID == id) || (id == "" && p.Title == req.Title) {
			b.projects = append(b.projects[:i], b.projects[i+1:]...)
			delete(b.generated, p.ID)
			writeMessage(w, http.StatusOK, "삭제되었습니다.")
			return
		}
	}
	writeMessage(w, http.StatusNotFound, "프로젝트를 찾을 수 없습니다.")
}

func (b *Backend) findProject(id string) (models.Project, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, p := range b.projects {
		if p.ID == id {
			return p, true
		}
	}
	return models.Project{}, false
}

func (b *Backend) handleEditLink(w http.ResponseWriter, r *http.Request) {
	p, ok := b.findProject(mux.Vars(r)["projectId"])
	if !ok {
		writeMessage(w, http.StatusNotFound, "프로젝트를 찾을 수 없습니다.")
		return
	}
	writeJSON(w, http.StatusOK, EmbedLink(p.URL))
}

// EmbedLink converts a YouTube link into its embed form. Other links are returned unchanged.
func EmbedLink(raw string) string {
	if id := models.VideoID(raw); id != "" {
		return "https://www.youtube.com/embed/" + id
	}
	return raw
}

type contentRequest struct {
	ProjectID json.RawMessage `json:"content_projectID"`
	Language  string          `json:"content_language"`
	Content   string          `json:"content"`
	Target    string          `json:"language"`
}

func decodeContent(r *http.Request) (contentRequest, string, error) {
	var req contentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return req, "", err
	}
	return req, strings.Trim(string(req.ProjectID), `"`), nil
}

func (b *Backend) handleGenerate(w http.ResponseWriter, r *http.Request) {
	_, id, err := decodeContent(r)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "잘못된 요청입니다.")
		return
	}
	if _, ok := b.findProject(id); !ok {
		writeMessage(w, http.StatusNotFound, "프로젝트를 찾을 수 없습니다.")
		return
	}

	b.mu.Lock()
	b.generated[id] = true
	b.mu.Unlock()

	writeMessage(w, http.StatusOK, "자막이 생성되었습니다.")
}

func (b *Backend) handleReadSRT(w http.ResponseWriter, r *http.Request) {
	_, id, err := decodeContent(r)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "잘못된 요청입니다.")
		return
	}
	p, ok := b.findProject(id)

	b.mu.Lock()
	generated := b.generated[id]
	b.mu.Unlock()

	if !ok || !generated {
		writeMessage(w, http.StatusNotFound, "생성된 자막이 없습니다.")
		return
	}
	writeJSON(w, http.StatusOK, cannedSRT(p.Title))
}

func cannedSRT(title string) string {
	return fmt.Sprintf("1\n00:00:00,000 --> 00:00:02,500\n%s\n\n2\n00:00:02,500 --> 00:00:05,000\n자막 생성 예시입니다.\n", title)
}

func (b *Backend) handleCheck(w http.ResponseWriter, r *http.Request) {
	req, _, err := decodeContent(r)
	if err != nil || strings.TrimSpace(req.Content) == "" {
		writeMessage(w, http.StatusBadRequest, "내용을 입력해 주세요.")
		return
	}
	writeJSON(w, http.StatusOK, "**검사 완료**\n\n"+req.Content)
}

func (b *Backend) handleRecommend(w http.ResponseWriter, r *http.Request) {
	req, _, err := decodeContent(r)
	if err != nil || strings.TrimSpace(req.Content) == "" {
		writeMessage(w, http.StatusBadRequest, "내용을 입력해 주세요.")
		return
	}

	title := firstTextLine(req.Content)
	// Written by hand so the hashtag keys keep their order.
	var buf bytes.Buffer
	buf.WriteByte('{')
	writeField(&buf, "제목", title+" ")
	for i, tag := range []string{"#자막", "#영상", "#추천"} {
		buf.WriteByte(',')
		writeField(&buf, fmt.Sprintf("해시태그%d", i+1), " "+tag)
	}
	buf.WriteByte('}')

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

func writeField(buf *bytes.Buffer, key, value string) {
	k, _ := json.Marshal(key)
	v, _ := json.Marshal(value)
	buf.Write(k)
	buf.WriteByte(':')
	buf.Write(v)
}

// firstTextLine returns the first SRT line that is neither a sequence number nor a timing line.
func firstTextLine(content string) string {
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.Contains(line, "-->") {
			continue
		}
		if _, err := strconv.Atoi(line); err == nil {
			continue
		}
		return line
	}
	return "추천 제목"
}

func (b *Backend) handleTranslate(w http.ResponseWriter, r *http.Request) {
	req, _, err := decodeContent(r)
	if err != nil || strings.TrimSpace(req.Content) == "" {
		writeMessage(w, http.StatusBadRequest, "내용을 입력해 주세요.")
		return
	}
	if _, ok := models.LookupLanguage(req.Target); !ok {
		writeMessage(w, http.StatusBadRequest, "지원하지 않는 언어입니다.")
		return
	}
	writeJSON(w, http.StatusOK, fmt.Sprintf("[%s]\n%s", req.Target, req.Content))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"message": message})
}

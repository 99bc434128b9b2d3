package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/desertthunder/subx/internal/models"
	"github.com/desertthunder/subx/internal/server"
	"github.com/desertthunder/subx/internal/shared"
)

func newBackend(t *testing.T) (*server.Backend, *httptest.Server) {
	t.Helper()
	b := server.NewBackend(server.Options{
		Profile:  models.UserProfile{ID: "u1", Name: "유튜브", Email: "youtube@gmail.com", Password: "pw", Phone: "010-1234-5678"},
		Projects: []models.Project{{ID: "1", Title: "A", URL: "https://www.youtube.com/watch?v=aaa"}, {ID: "2", Title: "B"}},
	})
	srv := httptest.NewServer(b.Handler())
	t.Cleanup(srv.Close)
	return b, srv
}

func TestProjectService(t *testing.T) {
	ctx := context.Background()

	t.Run("ListProjects", func(t *testing.T) {
		t.Run("zips ids with names in server order", func(t *testing.T) {
			_, srv := newBackend(t)
			projects, err := NewProjectService(NewAPIService(srv.URL, nil, loggedIn("tok"))).ListProjects(ctx)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			want := []models.Project{{ID: "1", Title: "A"}, {ID: "2", Title: "B"}}
			if !reflect.DeepEqual(projects, want) {
				t.Errorf("expected %+v, got %+v", want, projects)
			}
		})

		t.Run("mismatched lengths", func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{"projectIDs":[1,2],"projectNames":["A"]}`))
			}))
			defer srv.Close()

			_, err := NewProjectService(NewAPIService(srv.URL, nil, loggedIn("tok"))).ListProjects(ctx)
			if !errors.Is(err, shared.ErrInvalidResponse) {
				t.Errorf("expected ErrInvalidResponse, got %v", err)
			}
		})

		t.Run("empty list", func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{"projectIDs":[],"projectNames":[]}`))
			}))
			defer srv.Close()

			projects, err := NewProjectService(NewAPIService(srv.URL, nil, loggedIn("tok"))).ListProjects(ctx)
			if err != nil || len(projects) != 0 {
				t.Errorf("expected empty list, got %v %v", projects, err)
			}
		})

		t.Run("without token", func(t *testing.T) {
			_, srv := newBackend(t)
			_, err := NewProjectService(NewAPIService(srv.URL, nil, loggedIn(""))).ListProjects(ctx)
			if !errors.Is(err, shared.ErrLoginRequired) {
				t.Errorf("expected ErrLoginRequired, got %v", err)
			}
		})

		t.Run("rejected token", func(t *testing.T) {
			b := server.NewBackend(server.Options{Tokens: []string{"good"}})
			srv := httptest.NewServer(b.Handler())
			defer srv.Close()

			_, err := NewProjectService(NewAPIService(srv.URL, nil, loggedIn("stale"))).ListProjects(ctx)
			if !errors.Is(err, shared.ErrAuth) {
				t.Errorf("expected ErrAuth, got %v", err)
			}
		})
	})

	t.Run("CreateProject", func(t *testing.T) {
		t.Run("sends both title keys and returns the server id", func(t *testing.T) {
			var body map[string]string
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.Method != http.MethodPost || r.URL.Path != "/project" {
					t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
				}
				json.NewDecoder(r.Body).Decode(&body)
				w.Write([]byte(`{"id":42}`))
			}))
			defer srv.Close()

			p, err := NewProjectService(NewAPIService(srv.URL, nil, loggedIn("tok"))).CreateProject(ctx, " My Video ", "https://youtu.be/x")
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if p.ID != "42" || p.Title != "My Video" || p.URL != "https://youtu.be/x" {
				t.Errorf("unexpected project %+v", p)
			}
			if body["project_title"] != "My Video" || body["project_name"] != "My Video" || body["project_url"] != "https://youtu.be/x" {
				t.Errorf("unexpected body %v", body)
			}
		})

		t.Run("response without id", func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`"ok"`))
			}))
			defer srv.Close()

			var logs bytes.Buffer
			svc := NewProjectService(NewAPIService(srv.URL, nil, loggedIn("tok"))).WithLogger(shared.NewLogger(&logs))
			p, err := svc.CreateProject(ctx, "T", "U")
			if err != nil || p.ID != "" || p.Title != "T" {
				t.Errorf("unexpected result %+v %v", p, err)
			}
			if !strings.Contains(logs.String(), "WARN") || !strings.Contains(logs.String(), "no project id") {
				t.Errorf("expected a warning for the missing id, got %q", logs.String())
			}
		})

		t.Run("requires title and url", func(t *testing.T) {
			_, srv := newBackend(t)
			_, err := NewProjectService(NewAPIService(srv.URL, nil, loggedIn("tok"))).CreateProject(ctx, "  ", "url")
			if !errors.Is(err, shared.ErrInvalidInput) {
				t.Errorf("expected ErrInvalidInput, got %v", err)
			}
		})

		t.Run("server message is kept", func(t *testing.T) {
			b, srv := newBackend(t)
			b.FailNext(http.MethodPost, "/project", http.StatusConflict, "이미 등록된 링크입니다.")

			_, err := NewProjectService(NewAPIService(srv.URL, nil, loggedIn("tok"))).CreateProject(ctx, "T", "U")
			if got := UserMessage(err, "fallback"); got != "이미 등록된 링크입니다." {
				t.Errorf("unexpected user message %q", got)
			}
		})
	})

	t.Run("DeleteProject", func(t *testing.T) {
		t.Run("sends id and title", func(t *testing.T) {
			var body map[string]string
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.Method != http.MethodDelete {
					t.Errorf("expected DELETE, got %s", r.Method)
				}
				json.NewDecoder(r.Body).Decode(&body)
			}))
			defer srv.Close()

			err := NewProjectService(NewAPIService(srv.URL, nil, loggedIn("tok"))).DeleteProject(ctx, models.Project{ID: "3", Title: "Same"})
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if body["project_id"] != "3" || body["title"] != "Same" {
				t.Errorf("unexpected body %v", body)
			}
		})

		t.Run("removes from the backend", func(t *testing.T) {
			b, srv := newBackend(t)
			if err := NewProjectService(NewAPIService(srv.URL, nil, loggedIn("tok"))).DeleteProject(ctx, models.Project{ID: "1", Title: "A"}); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if got := b.Projects(); len(got) != 1 || got[0].ID != "2" {
				t.Errorf("unexpected backend projects %+v", got)
			}
		})

		t.Run("requires an id", func(t *testing.T) {
			_, srv := newBackend(t)
			err := NewProjectService(NewAPIService(srv.URL, nil, loggedIn("tok"))).DeleteProject(ctx, models.Project{Title: "A"})
			if !errors.Is(err, shared.ErrInvalidInput) {
				t.Errorf("expected ErrInvalidInput, got %v", err)
			}
		})

		t.Run("server fault", func(t *testing.T) {
			b, srv := newBackend(t)
			b.FailNext(http.MethodDelete, "/project", http.StatusInternalServerError, "")

			err := NewProjectService(NewAPIService(srv.URL, nil, loggedIn("tok"))).DeleteProject(ctx, models.Project{ID: "1"})
			if !errors.Is(err, shared.ErrServerFault) {
				t.Errorf("expected ErrServerFault, got %v", err)
			}
			if len(b.Projects()) != 2 {
				t.Error("expected backend untouched")
			}
		})
	})
}

func TestUserService(t *testing.T) {
	ctx := context.Background()

	t.Run("FetchProfile", func(t *testing.T) {
		t.Run("unwraps the singleton array", func(t *testing.T) {
			_, srv := newBackend(t)
			p, err := NewUserService(NewAPIService(srv.URL, nil, loggedIn("tok"))).FetchProfile(ctx)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if p.Name != "유튜브" || p.Email != "youtube@gmail.com" || p.ID != "u1" {
				t.Errorf("unexpected profile %+v", p)
			}
		})

		t.Run("numeric id", func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`[{"id":7,"name":"n","email":"e"}]`))
			}))
			defer srv.Close()

			p, err := NewUserService(NewAPIService(srv.URL, nil, loggedIn("tok"))).FetchProfile(ctx)
			if err != nil || p.ID != "7" {
				t.Errorf("unexpected result %+v %v", p, err)
			}
		})

		t.Run("empty array", func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`[]`))
			}))
			defer srv.Close()

			_, err := NewUserService(NewAPIService(srv.URL, nil, loggedIn("tok"))).FetchProfile(ctx)
			if !errors.Is(err, shared.ErrEmptyProfile) {
				t.Errorf("expected ErrEmptyProfile, got %v", err)
			}
		})

		t.Run("object instead of array", func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{"name":"n"}`))
			}))
			defer srv.Close()

			_, err := NewUserService(NewAPIService(srv.URL, nil, loggedIn("tok"))).FetchProfile(ctx)
			if !errors.Is(err, shared.ErrInvalidResponse) {
				t.Errorf("expected ErrInvalidResponse, got %v", err)
			}
		})
	})

	t.Run("UpdateProfile", func(t *testing.T) {
		t.Run("full replacement", func(t *testing.T) {
			b, srv := newBackend(t)
			users := NewUserService(NewAPIService(srv.URL, nil, loggedIn("tok")))

			update := models.ProfileUpdate{UserID: "u1", Password: "pw2", Name: "새이름", Email: "new@example.com", Phone: "010"}
			if err := users.UpdateProfile(ctx, update); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if got := b.Profile(); got.Name != "새이름" || got.Password != "pw2" {
				t.Errorf("unexpected backend profile %+v", got)
			}
		})

		t.Run("incomplete update is rejected locally", func(t *testing.T) {
			var hits int
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { hits++ }))
			defer srv.Close()

			err := NewUserService(NewAPIService(srv.URL, nil, loggedIn("tok"))).UpdateProfile(ctx, models.ProfileUpdate{UserID: "u1"})
			if !errors.Is(err, shared.ErrInvalidInput) {
				t.Errorf("expected ErrInvalidInput, got %v", err)
			}
			if hits != 0 {
				t.Error("expected no request")
			}
		})

		t.Run("failure falls back to the update message", func(t *testing.T) {
			b, srv := newBackend(t)
			b.FailNext(http.MethodPut, "/user", http.StatusInternalServerError, "")

			update := models.ProfileUpdate{UserID: "u1", Password: "p", Name: "n", Email: "e", Phone: "p"}
			err := NewUserService(NewAPIService(srv.URL, nil, loggedIn("tok"))).UpdateProfile(ctx, update)
			if got := UserMessage(err, "회원정보 수정 실패. 다시 시도해 주세요."); got != "회원정보 수정 실패. 다시 시도해 주세요." {
				t.Errorf("unexpected message %q", got)
			}
		})
	})
}

func TestEditorService(t *testing.T) {
	ctx := context.Background()

	t.Run("EditLink", func(t *testing.T) {
		_, srv := newBackend(t)
		link, err := NewEditorService(NewAPIService(srv.URL, nil, loggedIn("tok"))).EditLink(ctx, "1")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if link != "https://www.youtube.com/embed/aaa" {
			t.Errorf("unexpected link %q", link)
		}
	})

	t.Run("EditLink requires login", func(t *testing.T) {
		_, srv := newBackend(t)
		_, err := NewEditorService(NewAPIService(srv.URL, nil, loggedIn(""))).EditLink(ctx, "1")
		if !errors.Is(err, shared.ErrLoginRequired) {
			t.Errorf("expected ErrLoginRequired, got %v", err)
		}
	})

	t.Run("generate then read", func(t *testing.T) {
		_, srv := newBackend(t)
		editor := NewEditorService(NewAPIService(srv.URL, nil, loggedIn("tok")))

		if _, err := editor.ReadSubtitles(ctx, "1", ""); !errors.Is(err, shared.ErrServerValidation) {
			t.Errorf("expected not-found before generation, got %v", err)
		}
		if err := editor.GenerateSubtitles(ctx, "1"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		srt, err := editor.ReadSubtitles(ctx, "1", "")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if srt == "" {
			t.Error("expected SRT text")
		}
	})

	t.Run("read sends the kr language", func(t *testing.T) {
		var body map[string]string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			data, _ := io.ReadAll(r.Body)
			json.Unmarshal(data, &body)
			w.Write([]byte("1\n00:00:00,000 --> 00:00:01,000\n안녕\n"))
		}))
		defer srv.Close()

		srt, err := NewEditorService(NewAPIService(srv.URL, nil, nil)).ReadSubtitles(ctx, "9", "")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if body["content_projectID"] != "9" || body["content_language"] != SubtitleLanguage {
			t.Errorf("unexpected body %v", body)
		}
		if srt != "1\n00:00:00,000 --> 00:00:01,000\n안녕\n" {
			t.Errorf("expected plain text body, got %q", srt)
		}
	})
}

func TestLLMService(t *testing.T) {
	ctx := context.Background()

	t.Run("Recommend keeps response order", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"해시태그2":" #둘 ","제목":" 추천 제목 ","기타":"x","해시태그1":"#하나","해시태그3":3}`))
		}))
		defer srv.Close()

		rec, err := NewLLMService(NewAPIService(srv.URL, nil, nil), 0, 1).Recommend(ctx, "content")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if rec.Title != "추천 제목" {
			t.Errorf("unexpected title %q", rec.Title)
		}
		if want := []string{"#둘", "#하나", "3"}; !reflect.DeepEqual(rec.Tags, want) {
			t.Errorf("expected tags %v, got %v", want, rec.Tags)
		}
	})

	t.Run("Recommend without tags", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"제목":"t"}`))
		}))
		defer srv.Close()

		rec, err := NewLLMService(NewAPIService(srv.URL, nil, nil), 0, 1).Recommend(ctx, "c")
		if err != nil || rec.Tags == nil || len(rec.Tags) != 0 {
			t.Errorf("expected empty tag list, got %#v %v", rec.Tags, err)
		}
	})

	t.Run("Recommend rejects non-objects", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`["제목"]`))
		}))
		defer srv.Close()

		_, err := NewLLMService(NewAPIService(srv.URL, nil, nil), 0, 1).Recommend(ctx, "c")
		if !errors.Is(err, shared.ErrInvalidResponse) {
			t.Errorf("expected ErrInvalidResponse, got %v", err)
		}
	})

	t.Run("against the stand-in backend", func(t *testing.T) {
		_, srv := newBackend(t)
		llm := NewLLMService(NewAPIService(srv.URL, nil, nil), 0, 1)

		checked, err := llm.Check(ctx, "자막")
		if err != nil || checked == "" {
			t.Errorf("unexpected check result %q %v", checked, err)
		}

		rec, err := llm.Recommend(ctx, "1\n00:00:00,000 --> 00:00:01,000\n첫 줄\n")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if rec.Title != "첫 줄" || len(rec.Tags) != 3 || rec.Tags[0] != "#자막" {
			t.Errorf("unexpected recommendation %+v", rec)
		}

		translated, err := llm.Translate(ctx, "자막", "ja")
		if err != nil || translated == "" {
			t.Errorf("unexpected translation %q %v", translated, err)
		}
	})

	t.Run("Translate validates the language", func(t *testing.T) {
		var hits int
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { hits++ }))
		defer srv.Close()

		_, err := NewLLMService(NewAPIService(srv.URL, nil, nil), 0, 1).Translate(ctx, "c", "kr")
		if !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
		if hits != 0 {
			t.Error("expected no request")
		}
	})

	t.Run("limiter honours cancellation", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`"ok"`))
		}))
		defer srv.Close()

		llm := NewLLMService(NewAPIService(srv.URL, nil, nil), 0.001, 1)
		if _, err := llm.Check(ctx, "first"); err != nil {
			t.Fatalf("expected first call to pass, got %v", err)
		}

		short, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
		defer cancel()
		if _, err := llm.Check(short, "second"); !errors.Is(err, shared.ErrNetwork) {
			t.Errorf("expected paced call to fail with ErrNetwork, got %v", err)
		}
	})
}

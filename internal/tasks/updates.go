package tasks

import (
	"fmt"

	"github.com/desertthunder/subx/internal/models"
)

// ProgressUpdate represents a progress event during a gateway operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Op      Operation // Operation in flight
	Step    int       // Current step number within the operation
	Total   int       // Total steps in this operation
	Message string    // Human-readable message for display
	Data    any       // Optional operation-specific data for advanced UIs
}

// Operation enumerates what a [ProgressUpdate] reports on.
type Operation int

const (
	LoadProfile Operation = iota
	LoadProjects
	CreateProject
	DeleteProject
	UpdateProfile
	LoadLink
	GenerateSubtitles
	CheckSubtitles
	RecommendTitle
	TranslateSubtitles
	SaveDraft
)

func (o Operation) String() string {
	switch o {
	case LoadProfile:
		return "load_profile"
	case LoadProjects:
		return "load_projects"
	case CreateProject:
		return "create_project"
	case DeleteProject:
		return "delete_project"
	case UpdateProfile:
		return "update_profile"
	case LoadLink:
		return "load_link"
	case GenerateSubtitles:
		return "generate_subtitles"
	case CheckSubtitles:
		return "check_subtitles"
	case RecommendTitle:
		return "recommend_title"
	case TranslateSubtitles:
		return "translate_subtitles"
	case SaveDraft:
		return "save_draft"
	default:
		return ""
	}
}

// sendProgress sends a progress update through the channel without blocking.
func sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

func loadingUpdate(op Operation, step, total int) ProgressUpdate {
	return ProgressUpdate{Op: op, Step: step, Total: total, Message: "불러오는 중..."}
}

func profileLoadedUpdate(step, total int, p models.UserProfile) ProgressUpdate {
	return ProgressUpdate{
		Op:      LoadProfile,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("Profile loaded: %s", p.Name),
		Data:    p,
	}
}

func projectsLoadedUpdate(step, total int, projects []models.Project) ProgressUpdate {
	return ProgressUpdate{
		Op:      LoadProjects,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("Projects loaded: %d", len(projects)),
		Data:    projects,
	}
}

func projectCreatedUpdate(p models.Project) ProgressUpdate {
	return ProgressUpdate{
		Op:      CreateProject,
		Step:    1,
		Total:   2,
		Message: fmt.Sprintf("Project created: %s (ID: %s)", p.Title, p.ID),
		Data:    p,
	}
}

func projectDeletedUpdate(p models.Project) ProgressUpdate {
	return ProgressUpdate{
		Op:      DeleteProject,
		Step:    1,
		Total:   2,
		Message: fmt.Sprintf("Project deleted: %s (ID: %s)", p.Title, p.ID),
		Data:    p,
	}
}

func refetchUpdate(op Operation) ProgressUpdate {
	return ProgressUpdate{Op: op, Step: 2, Total: 2, Message: "Refreshing project list..."}
}

func failedUpdate(op Operation, err error) ProgressUpdate {
	return ProgressUpdate{Op: op, Message: fmt.Sprintf("✗ %s: %v", op, err), Data: err}
}

func doneUpdate(op Operation, message string) ProgressUpdate {
	return ProgressUpdate{Op: op, Step: 1, Total: 1, Message: "✓ " + message}
}

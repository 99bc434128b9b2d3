package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/desertthunder/subx/internal/formatter"
	"github.com/desertthunder/subx/internal/models"
	"github.com/desertthunder/subx/internal/shared"
	"github.com/desertthunder/subx/internal/tasks"
	"github.com/urfave/cli/v3"
)

// ProjectList loads the my-page view (profile and project list) and prints the list.
//
// A failed profile load is only a warning; a failed list load is an error, never an empty list.
func (r *Runner) ProjectList(ctx context.Context, cmd *cli.Command) error {
	format := strings.ToLower(cmd.String("format"))
	output := cmd.String("output")

	rec := r.newReconciler(nil)
	err := rec.Load(ctx)
	snap := rec.Store().Snapshot()
	if snap.ProjectsStatus != tasks.StatusReady {
		return userError(err, "failed to load projects")
	}
	if err != nil {
		r.logger.Warn("profile not loaded", "error", err)
	}

	if cmd.Bool("json") {
		return r.writeJSON(snap.Entries, cmd.Bool("pretty"))
	}

	switch format {
	case "csv":
		if output != "" {
			result, err := formatter.WriteCSVExport(snap.Profile, snap.Entries, output)
			if err != nil {
				return err
			}
			r.writePlain("✓ Projects written to %s\n", result.ProjectsFile)
			if result.ProfileFile != "" {
				r.writePlain("✓ Profile written to %s\n", result.ProfileFile)
			}
			return nil
		}
		data, err := formatter.ExportProjectsToCSV(snap.Entries)
		if err != nil {
			return err
		}
		return r.writePlain("%s", data)
	case "md", "markdown":
		data, err := formatter.ExportProjectsToMarkdown(snap.Profile, snap.Entries)
		if err != nil {
			return err
		}
		return r.writePlain("%s", data)
	case "text", "":
		if output != "" {
			path, err := formatter.WriteTextExport(snap.Entries, output)
			if err != nil {
				return err
			}
			return r.writePlain("✓ Projects written to %s\n", path)
		}
	default:
		return fmt.Errorf("%w: unknown format %q (text, csv, md)", shared.ErrInvalidFlag, format)
	}

	if snap.Profile != nil {
		r.writePlainHeader(fmt.Sprintf("%s (%s)", snap.Profile.Name, snap.Profile.Email))
	}
	if snap.Empty() {
		return r.writePlain("No projects yet. Add one with 'subx project add --title <title> --url <link>'\n")
	}
	r.writeEntries(snap.Entries)
	return r.writePlain("\n%d project(s)\n", len(snap.Entries))
}

// loadProjects creates a reconciler whose store holds the current project list.
func (r *Runner) loadProjects(ctx context.Context) (*tasks.Reconciler, error) {
	rec := r.newReconciler(nil)
	projects, err := r.projects.ListProjects(ctx)
	if err != nil {
		return nil, userError(err, "failed to load projects")
	}
	rec.Store().SetProjects(projects)
	return rec, nil
}

// ProjectAdd submits the add-project form and prints the refreshed list.
func (r *Runner) ProjectAdd(ctx context.Context, cmd *cli.Command) error {
	rec, err := r.loadProjects(ctx)
	if err != nil {
		return err
	}

	rec.SetForm(cmd.String("title"), cmd.String("url"))
	project, err := rec.Create(ctx)
	if err != nil {
		return fmt.Errorf("%s: %w", rec.Store().Snapshot().Alert, err)
	}

	r.logger.Info("project created", "id", project.ID, "title", project.Title)
	r.writePlain("✓ Project created: %s (ID: %s)\n\n", project.Title, project.ID)
	r.writeEntries(rec.Store().Snapshot().Entries)
	return nil
}

// ProjectRemove deletes the project with --id.
func (r *Runner) ProjectRemove(ctx context.Context, cmd *cli.Command) error {
	id := cmd.String("id")

	rec, err := r.loadProjects(ctx)
	if err != nil {
		return err
	}

	entry, ok := rec.Store().Entry(id)
	if !ok {
		return fmt.Errorf("%w: %s", shared.ErrProjectNotFound, id)
	}

	if err := rec.Delete(ctx, id); err != nil {
		return fmt.Errorf("%s: %w", rec.Store().Snapshot().Alert, err)
	}

	r.logger.Info("project deleted", "id", id)
	r.writePlain("✓ Project deleted: %s (ID: %s)\n", entry.Summary, id)
	return r.writePlain("%d project(s) left\n", len(rec.Store().Snapshot().Entries))
}

// findProject looks up a project in the server list. A failed list is logged and reported as not found.
func (r *Runner) findProject(ctx context.Context, id string) (models.Project, bool) {
	projects, err := r.projects.ListProjects(ctx)
	if err != nil {
		r.logger.Warn("failed to list projects", "error", err)
		return models.Project{}, false
	}
	for _, p := range projects {
		if p.ID == id {
			return p, true
		}
	}
	return models.Project{}, false
}

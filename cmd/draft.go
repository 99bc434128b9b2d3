package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/subx/internal/formatter"
	"github.com/desertthunder/subx/internal/models"
	"github.com/desertthunder/subx/internal/shared"
	"github.com/urfave/cli/v3"
)

// DraftList prints the drafts saved on this machine.
func (r *Runner) DraftList(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireDrafts(); err != nil {
		return err
	}

	drafts, err := r.drafts.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list drafts: %w", err)
	}

	if cmd.Bool("json") {
		if drafts == nil {
			drafts = []*models.Draft{}
		}
		return r.writeJSON(drafts, true)
	}

	if len(drafts) == 0 {
		return r.writePlain("No drafts saved. Use --save with 'subx edit generate', check, recommend or translate\n")
	}

	for _, d := range drafts {
		lang := "-"
		if d.Language != "" {
			lang = d.Language
		}
		r.writePlain("#%d [%s] project %s  cues: %d  translation: %s  (updated %s)\n",
			d.Sequence, d.ID, d.ProjectID, len(formatter.ParseSRT(d.Subtitles)), lang,
			d.UpdatedAt.Format(models.DisplayDateLayout))
	}
	return r.writePlain("\n%d draft(s)\n", len(drafts))
}

// DraftShow prints a draft as Markdown, looked up by --id or --project.
func (r *Runner) DraftShow(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireDrafts(); err != nil {
		return err
	}

	id, projectID := cmd.String("id"), cmd.String("project")

	var draft *models.Draft
	var err error
	switch {
	case id != "" && projectID != "":
		return fmt.Errorf("%w: --id and --project are mutually exclusive", shared.ErrInvalidArgument)
	case id != "":
		draft, err = r.drafts.Get(ctx, id)
	case projectID != "":
		draft, err = r.drafts.GetByProject(ctx, projectID)
	default:
		return fmt.Errorf("%w: one of --id or --project must be provided", shared.ErrMissingArgument)
	}
	if err != nil {
		return err
	}

	title := draft.ProjectID
	if project, ok := r.findProject(ctx, draft.ProjectID); ok {
		title = project.Title
	}

	data, err := formatter.ExportDraftToMarkdown(*draft, title, "", "")
	if err != nil {
		return err
	}
	return r.writePlain("%s", data)
}

// DraftRemove deletes a draft.
func (r *Runner) DraftRemove(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireDrafts(); err != nil {
		return err
	}

	id := cmd.String("id")
	if err := r.drafts.Delete(ctx, id); err != nil {
		return err
	}

	r.logger.Info("draft deleted", "draft", id)
	return r.writePlain("✓ Draft deleted: %s\n", id)
}

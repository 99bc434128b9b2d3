package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/desertthunder/subx/internal/formatter"
	"github.com/desertthunder/subx/internal/tasks"
	"github.com/urfave/cli/v3"
)

// editSession creates the edit panel for --id. Subtitles come from --file when given,
// otherwise from the project's saved draft.
func (r *Runner) editSession(ctx context.Context, cmd *cli.Command) (*tasks.EditSession, error) {
	e := r.newEditSession(ctx, cmd.String("id"), nil)

	if path := cmd.String("file"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read subtitles: %w", err)
		}
		e.SetSubtitles(string(data))
		r.logger.Debug("subtitles read from file", "file", path, "cues", len(formatter.ParseSRT(string(data))))
	}
	return e, nil
}

// saveIfRequested stores the session as the project's draft when --save is set.
func (r *Runner) saveIfRequested(ctx context.Context, cmd *cli.Command, e *tasks.EditSession) error {
	if !cmd.Bool("save") {
		return nil
	}
	if err := r.requireDrafts(); err != nil {
		return err
	}

	draft, err := e.Save(ctx)
	if err != nil {
		return fmt.Errorf("failed to save draft: %w", err)
	}
	r.logger.Info("draft saved", "draft", draft.ID, "project", draft.ProjectID)
	fmt.Fprintf(os.Stderr, "✓ Draft saved (ID: %s)\n", draft.ID)
	return nil
}

// EditLink prints the embeddable video link of a project.
func (r *Runner) EditLink(ctx context.Context, cmd *cli.Command) error {
	e := r.newEditSession(ctx, cmd.String("id"), nil)
	link, err := e.LoadLink(ctx)
	if err != nil {
		return userError(err, tasks.ServerErrorMessage)
	}
	return r.writePlain("%s\n", link)
}

// EditOpen opens the project's video in the browser.
func (r *Runner) EditOpen(ctx context.Context, cmd *cli.Command) error {
	e := r.newEditSession(ctx, cmd.String("id"), nil)
	link, err := e.LoadLink(ctx)
	if err != nil {
		return userError(err, tasks.ServerErrorMessage)
	}
	if err := r.openBrowser(link); err != nil {
		r.writePlain("Could not open a browser. Visit:\n%s\n", link)
		return nil
	}
	return r.writePlain("✓ Opened %s\n", link)
}

// EditGenerate asks the server to generate subtitles and prints the SRT.
func (r *Runner) EditGenerate(ctx context.Context, cmd *cli.Command) error {
	e := r.newEditSession(ctx, cmd.String("id"), nil)

	srt, err := e.Generate(ctx)
	if err != nil {
		return userError(err, tasks.ServerErrorMessage)
	}

	if err := r.saveIfRequested(ctx, cmd, e); err != nil {
		return err
	}

	if output := cmd.String("output"); output != "" {
		if err := os.WriteFile(output, []byte(srt), 0644); err != nil {
			return fmt.Errorf("failed to write subtitles: %w", err)
		}
		return r.writePlain("✓ %d cue(s) written to %s\n", len(formatter.ParseSRT(srt)), output)
	}
	return r.writePlain("%s\n", strings.TrimRight(srt, "\n"))
}

// EditCheck sends the subtitles for correction and prints the result.
func (r *Runner) EditCheck(ctx context.Context, cmd *cli.Command) error {
	e, err := r.editSession(ctx, cmd)
	if err != nil {
		return err
	}

	checked, err := e.Check(ctx)
	if err != nil {
		return userError(err, tasks.ServerErrorMessage)
	}
	if err := r.saveIfRequested(ctx, cmd, e); err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(map[string]string{"checked": checked}, true)
	}
	return r.writePlain("%s\n", checked)
}

// EditRecommend prints a suggested video title and hashtags.
func (r *Runner) EditRecommend(ctx context.Context, cmd *cli.Command) error {
	e, err := r.editSession(ctx, cmd)
	if err != nil {
		return err
	}

	rec, err := e.Recommend(ctx)
	if err != nil {
		return userError(err, tasks.ServerErrorMessage)
	}
	if err := r.saveIfRequested(ctx, cmd, e); err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(rec, true)
	}
	r.writePlain("Title: %s\n", rec.Title)
	if len(rec.Tags) > 0 {
		r.writePlain("Tags:  %s\n", strings.Join(rec.Tags, " "))
	}
	return nil
}

// EditTranslate translates the subtitles into --lang.
func (r *Runner) EditTranslate(ctx context.Context, cmd *cli.Command) error {
	e, err := r.editSession(ctx, cmd)
	if err != nil {
		return err
	}

	lang := strings.ToLower(cmd.String("lang"))
	translated, err := e.Translate(ctx, lang)
	if err != nil {
		return userError(err, tasks.ServerErrorMessage)
	}
	if err := r.saveIfRequested(ctx, cmd, e); err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(map[string]string{"language": lang, "translation": translated}, true)
	}
	return r.writePlain("%s\n", translated)
}

// EditExport writes the project's saved draft to a directory.
func (r *Runner) EditExport(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireDrafts(); err != nil {
		return err
	}

	id := cmd.String("id")
	draft, err := r.drafts.GetByProject(ctx, id)
	if err != nil {
		return fmt.Errorf("%w: run `subx edit generate --id %s --save` first", err, id)
	}

	title := id
	project, found := r.findProject(ctx, id)
	if found {
		title = project.Title
	}

	link := project.URL
	if found {
		if l, err := r.newEditSession(ctx, id, nil).LoadLink(ctx); err != nil {
			r.logger.Warn("failed to load video link", "project", id, "error", err)
		} else {
			link = l
		}
	}

	result, err := formatter.WriteDraftExport(*draft, title, link, cmd.String("output"), cmd.Bool("thumbnail"), os.Stderr)
	if err != nil {
		return err
	}

	r.writePlain("✓ Draft exported to %s/\n", result.Directory)
	for _, f := range result.Files {
		r.writePlain("  - %s\n", f)
	}
	return nil
}

package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/desertthunder/subx/internal/models"
	"github.com/desertthunder/subx/internal/tasks"
	"github.com/urfave/cli/v3"
)

// UserShow prints the account profile. The password is never printed.
func (r *Runner) UserShow(ctx context.Context, cmd *cli.Command) error {
	profile, err := r.users.FetchProfile(ctx)
	if err != nil {
		return userError(err, "failed to load profile")
	}
	profile.Password = ""

	if cmd.Bool("json") {
		return r.writeJSON(profile, true)
	}

	r.writePlainHeader("회원 정보")
	r.writePlain("ID:    %s\n", profile.ID)
	r.writePlain("Name:  %s\n", profile.Name)
	r.writePlain("Email: %s\n", profile.Email)
	return r.writePlain("Phone: %s\n", profile.Phone)
}

// UserUpdate replaces the profile. The update starts from the current profile so flags
// left out keep their values; the server requires every field.
func (r *Runner) UserUpdate(ctx context.Context, cmd *cli.Command) error {
	current, err := r.users.FetchProfile(ctx)
	if err != nil {
		return userError(err, "failed to load profile")
	}

	update := models.UpdateFromProfile(current)
	changed := false
	for _, f := range []struct {
		flag  string
		field *string
	}{
		{"name", &update.Name},
		{"email", &update.Email},
		{"password", &update.Password},
		{"phone", &update.Phone},
	} {
		if v := strings.TrimSpace(cmd.String(f.flag)); v != "" {
			*f.field = v
			changed = true
		}
	}
	if !changed {
		return r.writePlain("Nothing to update. Pass --name, --email, --password or --phone\n")
	}

	rec := r.newReconciler(nil)
	if err := rec.UpdateProfile(ctx, update); err != nil {
		alert := rec.Store().Snapshot().Alert
		if alert == "" {
			alert = tasks.ProfileUpdateFailure
		}
		return fmt.Errorf("%s: %w", alert, err)
	}

	profile := rec.Store().Snapshot().Profile
	r.logger.Info("profile updated", "user", update.UserID)
	if profile == nil {
		return r.writePlain("✓ Profile updated\n")
	}
	return r.writePlain("✓ Profile updated: %s (%s)\n", profile.Name, profile.Email)
}

package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/tendant/simple-discover/pkg/discover"
	"github.com/tendant/simple-discover/pkg/discover/config"
)

var (
	seedVisibilities = []discover.Visibility{discover.VisibilityPublic, discover.VisibilityPublic, discover.VisibilityContacts, discover.VisibilityPrivate}
	seedMediaKinds   = []discover.ContentType{discover.ContentTypePhoto, discover.ContentTypeScreenshot, discover.ContentTypeDocument}
)

type seedResult struct {
	Users int `json:"users"`
	Items int `json:"items"`
}

// handleSeed creates demo users and one of each content kind per slot, cycling
// through visibilities so only some of it reaches the feed.
func handleSeed(ctx context.Context, services *config.Services, opts options, out io.Writer) error {
	result := seedResult{}
	for u := 0; u < opts.users; u++ {
		owner := uuid.New()
		handle := "demo-" + owner.String()[:8]
		if err := services.Profiles.UpsertProfile(ctx, &discover.OwnerProfile{
			ID:          owner,
			DisplayName: fmt.Sprintf("Demo User %d", u+1),
			Handle:      handle,
			Bio:         "Seeded by the admin CLI",
		}); err != nil {
			return fmt.Errorf("failed to seed user %s: %w", handle, err)
		}
		result.Users++

		for i := 0; i < opts.perUser; i++ {
			n, err := seedSlot(ctx, services, owner, i)
			result.Items += n
			if err != nil {
				return err
			}
		}
	}

	if opts.json {
		return writeJSON(out, result)
	}
	fmt.Fprintf(out, "Seeded %d users and %d items\n", result.Users, result.Items)
	return nil
}

func seedSlot(ctx context.Context, services *config.Services, owner uuid.UUID, i int) (int, error) {
	record := func() discover.Record {
		return discover.Record{OwnerID: owner, Visibility: seedVisibilities[i%len(seedVisibilities)]}
	}

	project, err := services.Entities.CreateProject(ctx, &discover.Project{
		Record:      record(),
		Name:        fmt.Sprintf("Project %d", i+1),
		Description: "A demo project",
	})
	if err != nil {
		return 0, fmt.Errorf("failed to seed project: %w", err)
	}

	startsAt := time.Now().UTC().Add(time.Duration(i+1) * 24 * time.Hour)
	endsAt := startsAt.Add(time.Hour)
	event, err := services.Entities.CreateEvent(ctx, &discover.Event{
		Record:    record(),
		ProjectID: &project.ID,
		Title:     fmt.Sprintf("Kickoff %d", i+1),
		Location:  "Online",
		StartsAt:  startsAt,
		EndsAt:    &endsAt,
	})
	if err != nil {
		return 1, fmt.Errorf("failed to seed event: %w", err)
	}

	if _, err := services.Entities.CreateTask(ctx, &discover.Task{
		Record:    record(),
		ProjectID: project.ID,
		EventID:   &event.ID,
		Title:     fmt.Sprintf("Prepare agenda %d", i+1),
		Priority:  "medium",
	}); err != nil {
		return 2, fmt.Errorf("failed to seed task: %w", err)
	}

	if _, err := services.Entities.CreateNote(ctx, &discover.Note{
		Record:    record(),
		ProjectID: &project.ID,
		Title:     fmt.Sprintf("Notes %d", i+1),
		Body:      "Seeded note body",
	}); err != nil {
		return 3, fmt.Errorf("failed to seed note: %w", err)
	}

	kind := seedMediaKinds[i%len(seedMediaKinds)]
	if _, err := services.Entities.CreateMediaAsset(ctx, &discover.MediaAsset{
		Record:    record(),
		Kind:      kind,
		ProjectID: &project.ID,
		FileName:  fmt.Sprintf("demo-%d.png", i+1),
		ObjectKey: fmt.Sprintf("demo/%s/%d.png", owner, i+1),
		MimeType:  "image/png",
		SizeBytes: 1024,
	}); err != nil {
		return 4, fmt.Errorf("failed to seed %s: %w", kind, err)
	}
	return 5, nil
}

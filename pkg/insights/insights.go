// Package insights produces short AI-generated commentary over a user's
// task lists, backed by a pluggable text-generation backend.
package insights

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/listd/listd/pkg/api"
	"github.com/listd/listd/pkg/authz"
	"github.com/listd/listd/pkg/storage"
)

// Generator produces model text for a prompt. Implemented by ollama.Client.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// ListStats summarizes one list for the home overview.
type ListStats struct {
	Name  string `json:"name"`
	Total int    `json:"total"`
	Todo  int    `json:"todo"`
	Done  int    `json:"done"`
}

// HomeInsight is the response of the all-lists overview.
type HomeInsight struct {
	Comment string      `json:"comment"`
	Stats   []ListStats `json:"stats"`
}

// ListInsight is the response of the single-list analysis.
type ListInsight struct {
	Comment string `json:"comment"`
}

// Service computes task statistics and asks the backend for commentary.
// Access to a specific list goes through the authorizer, so foreign lists
// surface as not found.
type Service struct {
	gen   Generator
	lists storage.ListStore
	tasks storage.TaskStore
	authz *authz.Authorizer
	now   func() time.Time
}

// New creates a Service.
func New(gen Generator, lists storage.ListStore, tasks storage.TaskStore, az *authz.Authorizer) *Service {
	return &Service{
		gen:   gen,
		lists: lists,
		tasks: tasks,
		authz: az,
		now:   time.Now,
	}
}

// Home returns a short commentary over all of the caller's lists plus the
// per-list statistics the commentary was based on.
func (s *Service) Home(ctx context.Context, callerID string) (*HomeInsight, error) {
	lists, err := s.lists.ListsByOwner(ctx, callerID)
	if err != nil {
		return nil, err
	}

	stats := make([]ListStats, 0, len(lists))
	for _, l := range lists {
		tasks, err := s.tasks.TasksByList(ctx, l.ID)
		if err != nil {
			return nil, err
		}
		st := ListStats{Name: l.Name, Total: len(tasks)}
		for _, t := range tasks {
			if t.Status == api.TaskStatusDone {
				st.Done++
			} else {
				st.Todo++
			}
		}
		stats = append(stats, st)
	}

	data, err := json.Marshal(stats)
	if err != nil {
		return nil, api.NewServerError(fmt.Sprintf("failed to marshal stats: %s", err.Error()))
	}

	prompt := fmt.Sprintf(`You are a productivity assistant.
Write 3 short bullet points (max 15 words each) about the user's global task lists status.
Be concrete and actionable. No emojis.
Data: %s`, data)

	comment, err := s.gen.Generate(ctx, prompt)
	if err != nil {
		return nil, err
	}

	return &HomeInsight{Comment: comment, Stats: stats}, nil
}

// taskDigest is the per-task view handed to the model.
type taskDigest struct {
	Title   string    `json:"title"`
	Status  string    `json:"status"`
	DueDate time.Time `json:"dueDate"`
	Overdue bool      `json:"overdue"`
}

// List returns a short analysis of one list. Lists the caller does not own
// are reported as not found.
func (s *Service) List(ctx context.Context, callerID, listID string) (*ListInsight, error) {
	list, err := s.authz.RequireList(ctx, callerID, listID)
	if err != nil {
		return nil, err
	}

	tasks, err := s.tasks.TasksByList(ctx, list.ID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	digests := make([]taskDigest, 0, len(tasks))
	for _, t := range tasks {
		digests = append(digests, taskDigest{
			Title:   t.Title,
			Status:  string(t.Status),
			DueDate: t.DueDate,
			Overdue: t.Status != api.TaskStatusDone && t.DueDate.Before(now),
		})
	}

	data, err := json.Marshal(digests)
	if err != nil {
		return nil, api.NewServerError(fmt.Sprintf("failed to marshal tasks: %s", err.Error()))
	}

	prompt := fmt.Sprintf(`You are a productivity assistant.
Write:
1) A 1-sentence summary of this list.
2) 2 actionable suggestions (bullets).
Keep it short. No emojis.
List name: %s
Tasks: %s`, list.Name, data)

	comment, err := s.gen.Generate(ctx, prompt)
	if err != nil {
		return nil, err
	}

	return &ListInsight{Comment: comment}, nil
}

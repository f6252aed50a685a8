package api

import (
	"context"

	"vidscribe/internal/store"
)

// ProjectReader abstracts the persistence interactions needed for API queries.
type ProjectReader interface {
	GetProject(ctx context.Context, id string) (*store.Project, error)
	ListProjects(ctx context.Context) ([]*store.Project, error)
	VideoStatusCounts(ctx context.Context, projectID string) (store.StatusCounts, error)
	GetVideo(ctx context.Context, id string) (*store.Video, error)
	ListVideos(ctx context.Context, projectID string, statuses ...store.VideoStatus) ([]*store.Video, error)
	ListTranscripts(ctx context.Context, videoID string) ([]*store.Transcript, error)
}

// ActivityReporter reports which videos an in-process task currently owns.
type ActivityReporter interface {
	ActiveVideoIDs() []string
}

// ProjectService exposes read-only project and video queries returning API DTOs.
type ProjectService struct {
	store    ProjectReader
	activity ActivityReporter
}

// NewProjectService constructs a ProjectService around the provided reader.
// activity may be nil when no orchestrator runs in-process.
func NewProjectService(store ProjectReader, activity ActivityReporter) *ProjectService {
	if store == nil {
		return nil
	}
	return &ProjectService{store: store, activity: activity}
}

// ListProjects returns every project with its status counts.
func (s *ProjectService) ListProjects(ctx context.Context) ([]Project, error) {
	if s == nil || s.store == nil {
		return nil, nil
	}
	projects, err := s.store.ListProjects(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]Project, 0, len(projects))
	for _, p := range projects {
		counts, err := s.store.VideoStatusCounts(ctx, p.ID)
		if err != nil {
			return nil, err
		}
		out = append(out, FromProject(p, counts))
	}
	return out, nil
}

// DescribeProject fetches a project with its videos. It returns nil when the
// project does not exist.
func (s *ProjectService) DescribeProject(ctx context.Context, id string) (*Project, error) {
	if s == nil || s.store == nil {
		return nil, nil
	}
	project, err := s.store.GetProject(ctx, id)
	if err != nil || project == nil {
		return nil, err
	}
	counts, err := s.store.VideoStatusCounts(ctx, id)
	if err != nil {
		return nil, err
	}
	videos, err := s.store.ListVideos(ctx, id)
	if err != nil {
		return nil, err
	}
	dto := FromProject(project, counts)
	dto.Videos = FromVideos(videos)
	active := s.activeSet()
	for i := range dto.Videos {
		_, dto.Videos[i].Active = active[dto.Videos[i].ID]
	}
	return &dto, nil
}

// DescribeVideo fetches a video with its transcripts. It returns nil when the
// video does not exist.
func (s *ProjectService) DescribeVideo(ctx context.Context, id string) (*Video, error) {
	if s == nil || s.store == nil {
		return nil, nil
	}
	video, err := s.store.GetVideo(ctx, id)
	if err != nil || video == nil {
		return nil, err
	}
	transcripts, err := s.store.ListTranscripts(ctx, id)
	if err != nil {
		return nil, err
	}
	dto := FromVideo(video, transcripts)
	_, dto.Active = s.activeSet()[id]
	return &dto, nil
}

func (s *ProjectService) activeSet() map[string]struct{} {
	set := make(map[string]struct{})
	if s.activity == nil {
		return set
	}
	for _, id := range s.activity.ActiveVideoIDs() {
		set[id] = struct{}{}
	}
	return set
}

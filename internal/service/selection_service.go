package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/mtlprog/floatingagent/internal/domain"
)

const (
	stepCreateSelectionBlob = "create blob"
	stepCreateFile          = "create file"
)

// SelectionService turns browser selections into knowledge base files.
type SelectionService struct {
	platform Platform
	runner   *Runner
	now      func() time.Time
}

// NewSelectionService creates a new SelectionService.
func NewSelectionService(platform Platform, runner *Runner) *SelectionService {
	return &SelectionService{
		platform: platform,
		runner:   runner,
		now:      time.Now,
	}
}

// SaveSelection uploads the selection text as a blob, then attaches the blob
// to the target collection. Only the text is persisted; HTML is dropped.
func (s *SelectionService) SaveSelection(ctx context.Context, p SaveSelectionParams) (*domain.KnowledgeFile, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	filename := domain.SelectionFilename(p.Selection.Timestamp, s.now())

	var (
		blob *domain.Blob
		file *domain.KnowledgeFile
	)
	err := s.runner.Execute(ctx, domain.WorkflowSaveSelection, p.KnowledgeBaseID.String(),
		Step{
			Name: stepCreateSelectionBlob,
			Run: func(ctx context.Context) error {
				b, err := s.platform.UploadBlob(ctx, filename, domain.SelectionContentType, []byte(p.Selection.Text))
				if err != nil {
					return err
				}
				blob = b
				return nil
			},
		},
		Step{
			Name: stepCreateFile,
			Run: func(ctx context.Context) error {
				f, err := s.platform.CreateFile(ctx, p.KnowledgeBaseID, filename, blob.ID)
				if err != nil {
					return err
				}
				file = f
				return nil
			},
		},
	)
	if err != nil {
		return nil, err
	}

	slog.Info("selection saved",
		"file_id", file.ID,
		"file_name", file.Name,
		"knowledge_base_id", p.KnowledgeBaseID,
	)

	return file, nil
}

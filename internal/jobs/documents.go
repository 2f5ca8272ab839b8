package jobs

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jobpilot/jobpilot/internal/docx"
	"github.com/jobpilot/jobpilot/internal/schema"
	"github.com/jobpilot/jobpilot/internal/shared/llmutils"
	"github.com/jobpilot/jobpilot/internal/tools"
)

const tailorPrompt = `You are an expert career coach and resume writer.

JOB DESCRIPTION:
%s

CURRENT RESUME:
%s

Task: Rewrite the resume to better match the job description.
Highlight relevant skills and experiences.
Keep the format clean and professional (Markdown).
Do not invent experiences, but rephrase existing ones to match keywords.`

const coverLetterPrompt = `You are an expert career coach.

JOB DESCRIPTION:
%s

RESUME:
%s

Task: Write a compelling, professional cover letter for this job application.
The tone should be enthusiastic but professional.
Do not invent experiences that are not in the resume.
Use Markdown format.`

// DocumentKind selects the document a Generator writes.
type DocumentKind string

const (
	KindResume      DocumentKind = "resume"
	KindCoverLetter DocumentKind = "cover_letter"
)

func (k DocumentKind) filename() string {
	if k == KindCoverLetter {
		return "cover_letter.docx"
	}
	return "tailored_resume.docx"
}

func (k DocumentKind) prompt() string {
	if k == KindCoverLetter {
		return coverLetterPrompt
	}
	return tailorPrompt
}

// Generator writes tailored application documents with an LLM and renders
// them to .docx under outputDir.
type Generator struct {
	provider  schema.LLMProvider
	opts      schema.ChatOptions
	outputDir string
	now       func() time.Time
}

func NewGenerator(provider schema.LLMProvider, model, outputDir string) *Generator {
	if outputDir == "" {
		outputDir = filepath.Join(os.TempDir(), "jobpilot")
	}
	opts := schema.NewChatOptions(model, 4096, 0.4)
	opts.ToolChoice = schema.ToolChoiceNone
	return &Generator{provider: provider, opts: opts, outputDir: outputDir, now: time.Now}
}

// Generate drafts a document of kind from the resume and job description
// and returns the structured payload the tool replies with.
func (g *Generator) Generate(ctx context.Context, kind DocumentKind, resumeText, jobDescription string) (tools.Payload, error) {
	if strings.TrimSpace(resumeText) == "" {
		return tools.Payload{}, errors.New("resume_text is empty")
	}
	if strings.TrimSpace(jobDescription) == "" {
		return tools.Payload{}, errors.New("job_description is empty")
	}

	msgs := schema.NewMessages()
	msgs.AddSystem("You are a helpful assistant.")
	msgs.AddUser(fmt.Sprintf(kind.prompt(), jobDescription, resumeText))

	resp, err := g.provider.Chat(ctx, msgs, nil, g.opts)
	if err != nil {
		return tools.Payload{}, fmt.Errorf("generate %s: %w", kind, err)
	}
	md := llmutils.StripThink(resp.Content)
	md = strings.TrimSpace(md)
	if md == "" {
		return tools.Payload{}, fmt.Errorf("generate %s: model returned no text", kind)
	}

	data, err := docx.Render(md)
	if err != nil {
		return tools.Payload{}, fmt.Errorf("render %s: %w", kind, err)
	}
	path, err := g.write(kind, data)
	if err != nil {
		return tools.Payload{}, err
	}
	slog.Info("Document generated", "kind", kind, "path", path, "bytes", len(data))

	return tools.Payload{
		Preview:     md,
		FilePath:    path,
		FileContent: base64.StdEncoding.EncodeToString(data),
		Filename:    kind.filename(),
	}, nil
}

func (g *Generator) write(kind DocumentKind, data []byte) (string, error) {
	if err := os.MkdirAll(g.outputDir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}
	name := fmt.Sprintf("%s_%s_%s.docx", kind, g.now().Format("20060102-150405"), uuid.NewString()[:8])
	path := filepath.Join(g.outputDir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	return path, nil
}

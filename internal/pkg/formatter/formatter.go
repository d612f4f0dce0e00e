package formatter

import (
	"fmt"
	"time"

	"github.com/futig/quiz-chat/internal/entity"
)

const baseTitle = "Health Assessment Results"

// Report is the printable form of a completed assessment
type Report struct {
	SessionID   string
	CompletedAt time.Time
	Items       []ReportItem
	Transcript  []ReportLine
}

// ReportItem pairs a question prompt with the rendered answer
type ReportItem struct {
	Question string
	Answer   string
}

type ReportLine struct {
	Author entity.Author
	Text   string
}

type Formatter interface {
	Format(report *Report) ([]byte, error)
	ContentType() string
	FileExtension() string
}

type Factory struct{}

func NewFactory() *Factory {
	return &Factory{}
}

func (f *Factory) Create(format entity.ResultFormat) (Formatter, error) {
	switch format {
	case entity.FormatMarkdown:
		return NewMarkdownFormatter(), nil
	case entity.FormatDOCX:
		return NewDOCXFormatter(), nil
	case entity.FormatPDF:
		return NewPDFFormatter(), nil
	default:
		return nil, fmt.Errorf("%w: %s", entity.ErrUnsupportedFormat, format)
	}
}

func authorName(a entity.Author) string {
	if a == entity.AuthorUser {
		return "You"
	}
	return "Assistant"
}

func completedLine(r *Report) string {
	return "Completed: " + r.CompletedAt.UTC().Format("2006-01-02 15:04 MST")
}

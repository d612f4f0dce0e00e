package formatter

import (
	"bytes"
	"fmt"
)

const (
	markdownContentType   = "text/markdown; charset=utf-8"
	markdownFileExtension = ".md"
)

type MarkdownFormatter struct{}

func NewMarkdownFormatter() *MarkdownFormatter {
	return &MarkdownFormatter{}
}

func (mf *MarkdownFormatter) Format(report *Report) ([]byte, error) {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "# %s\n\n", baseTitle)
	fmt.Fprintf(&buf, "Session: `%s`  \n%s\n\n", report.SessionID, completedLine(report))

	fmt.Fprintf(&buf, "## Answers\n\n")
	for _, item := range report.Items {
		fmt.Fprintf(&buf, "**%s**  \n%s\n\n", item.Question, item.Answer)
	}

	if len(report.Transcript) > 0 {
		fmt.Fprintf(&buf, "## Conversation\n\n")
		for _, line := range report.Transcript {
			fmt.Fprintf(&buf, "- **%s:** %s\n", authorName(line.Author), line.Text)
		}
	}

	return buf.Bytes(), nil
}

func (mf *MarkdownFormatter) ContentType() string {
	return markdownContentType
}

func (mf *MarkdownFormatter) FileExtension() string {
	return markdownFileExtension
}

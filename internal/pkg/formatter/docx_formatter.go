package formatter

import (
	"bytes"

	"github.com/unidoc/unioffice/document"
)

const (
	docxContentType   = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	docxFileExtension = ".docx"
)

type DOCXFormatter struct{}

func NewDOCXFormatter() *DOCXFormatter {
	return &DOCXFormatter{}
}

func (mf *DOCXFormatter) Format(report *Report) ([]byte, error) {
	doc := document.New()
	defer doc.Close()

	heading(doc, "Heading1", baseTitle)
	doc.AddParagraph().AddRun().AddText(completedLine(report))

	heading(doc, "Heading2", "Answers")
	for _, item := range report.Items {
		par := doc.AddParagraph()
		q := par.AddRun()
		q.Properties().SetBold(true)
		q.AddText(item.Question)
		q.AddBreak()
		par.AddRun().AddText(item.Answer)
	}

	if len(report.Transcript) > 0 {
		heading(doc, "Heading2", "Conversation")
		for _, line := range report.Transcript {
			par := doc.AddParagraph()
			who := par.AddRun()
			who.Properties().SetBold(true)
			who.AddText(authorName(line.Author) + ": ")
			par.AddRun().AddText(line.Text)
		}
	}

	var buf bytes.Buffer
	if err := doc.Save(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func heading(doc *document.Document, style, text string) {
	par := doc.AddParagraph()
	par.SetStyle(style)
	par.AddRun().AddText(text)
}

func (mf *DOCXFormatter) ContentType() string {
	return docxContentType
}

func (mf *DOCXFormatter) FileExtension() string {
	return docxFileExtension
}

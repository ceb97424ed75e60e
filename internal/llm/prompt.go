package llm

import (
	"encoding/json"
	"strings"

	"github.com/joseph-ayodele/inquiry-intake/constants"
)

// BuildExtractionPrompt asks for a single JSON object carrying exactly the schema's keys.
// A request without document text renders the document section as constants.NotProvided.
func BuildExtractionPrompt(req ExtractRequest, fields []string) string {
	doc := strings.TrimSpace(req.DocumentText)
	if doc == "" {
		doc = constants.NotProvided
	}

	var b strings.Builder
	b.WriteString("Extract the following data points from the email and the attached document (if provided) related to a yacht insurance request.\n")
	b.WriteString("Respond *only* with a structured JSON object, including each field below and no other keys. ")
	b.WriteString(`Fill any information that cannot be determined from the text with "` + constants.Unknown + `".`)
	b.WriteString("\n\n")
	b.WriteString(fieldTemplate(fields))
	b.WriteString("\n\nEmail Content:\n")
	b.WriteString(strings.TrimSpace(req.InquiryText))
	b.WriteString("\n\nPDF/Document Content:\n")
	b.WriteString(doc)
	b.WriteString("\n")
	return b.String()
}

// BuildSummaryPrompt asks for a 1-2 line condensation of retrieved search text.
func BuildSummaryPrompt(content string) string {
	var b strings.Builder
	b.WriteString("Please summarize the following content related to a yacht insurance request in 1-2 lines.\n")
	b.WriteString("Your response should be concise and only include complete and relevant information.\n")
	b.WriteString("Remove any incomplete or excessive details, and do not include extraneous text.\n\n")
	b.WriteString("Content:\n")
	b.WriteString(content)
	b.WriteString("\n")
	return b.String()
}

// fieldTemplate renders {"Field": "", ...} in schema order.
func fieldTemplate(fields []string) string {
	var b strings.Builder
	b.WriteString("{\n")
	for i, f := range fields {
		k, _ := json.Marshal(f)
		b.WriteString("  ")
		b.Write(k)
		b.WriteString(`: ""`)
		if i < len(fields)-1 {
			b.WriteString(",")
		}
		b.WriteString("\n")
	}
	b.WriteString("}")
	return b.String()
}

// Package page holds the static informational content shown by every
// hospitalchat front end.
package page

import (
	"fmt"
	"strings"
)

const (
	Title = "🏥 Hospital System Chatbot"

	AboutHeader = "About 💡"
	About       = "This chatbot interfaces with a " +
		"[LangChain](https://python.langchain.com/docs/get_started/introduction) " +
		"agent designed to answer questions about the hospitals, patients, " +
		"visits, physicians, and insurance payers in a fake hospital system. " +
		"The agent uses retrieval-augment generation (RAG) over both " +
		"structured and unstructured data that has been synthetically generated."

	ExamplesHeader = "Example Questions 📋"

	InfoBanner = "Ask me questions about patients, visits, insurance payers, " +
		"hospitals, physicians, reviews, and wait times!"

	Placeholder      = "What do you want to know?"
	SpinnerText      = "Searching for an answer..."
	ExplanationLabel = "How was this generated"
)

var examples = []string{
	"Which hospitals are in the hospital system?",
	"What is the current wait time at Wallace-Hamilton hospital?",
	"At which hospitals are patients complaining about billing and insurance issues?",
	"What is the average duration in days for closed emergency visits?",
	"What are patients saying about the nursing staff at Castaneda-Hardy?",
	"What was the total billing amount charged to each payer for 2023?",
	"What is the average billing amount for Medicaid visits?",
	"Which physician has the lowest average visit duration in days?",
	"How much was billed for patient 789's stay?",
	"Which state had the largest percent increase in Medicaid visits from 2022 to 2023?",
	"What is the average billing amount per day for Aetna patients?",
	"How many reviews have been written from patients in Florida?",
	"For visits that are not missing chief complaints, what percentage have reviews?",
	"What is the percentage of visits that have reviews for each hospital?",
	"Which physician has received the most reviews for their visits?",
	"What is the ID for physician James Cooper?",
	"List every review for visits treated by physician 270. Don't leave any out.",
}

// Examples returns a copy of the example questions in display order.
func Examples() []string {
	out := make([]string, len(examples))
	copy(out, examples)
	return out
}

// Example returns the 1-based example question n.
func Example(n int) (string, bool) {
	if n < 1 || n > len(examples) {
		return "", false
	}
	return examples[n-1], true
}

// SidebarMarkdown renders the About and Example Questions sections as a
// markdown document.
func SidebarMarkdown() string {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n%s\n\n", AboutHeader, About)
	fmt.Fprintf(&b, "# %s\n\n", ExamplesHeader)
	for _, q := range examples {
		fmt.Fprintf(&b, "- %s\n", q)
	}

	return b.String()
}

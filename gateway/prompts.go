package gateway

import (
	"fmt"

	"github.com/papercomputeco/streamgate/pkg/llm"
)

const ideaPrompt = "Reply with a new business idea for AI Agents, formatted with headings, sub-headings and bullet points"

const welcomePrompt = `You are on a website that has just been deployed to production for the first time!
Please reply with an enthusiastic announcement to welcome visitors to the site, explaining that it is live on production for the first time!`

const consultationSystemPrompt = `You are provided with notes written by a doctor from a patient's visit.
Your job is to summarize the visit for the doctor and provide an email.
Reply with exactly three sections with the headings:
### Summary of visit for the doctor's records
### Next steps for the doctor
### Draft of email to patient in patient-friendly language`

func ideaMessages() []llm.Message {
	return []llm.Message{
		llm.NewMessage(llm.RoleUser, ideaPrompt),
	}
}

func welcomeMessages() []llm.Message {
	return []llm.Message{
		llm.NewMessage(llm.RoleUser, welcomePrompt),
	}
}

func consultationMessages(visit Visit) []llm.Message {
	user := fmt.Sprintf("Create the summary, next steps and draft email for:\nPatient Name: %s\nDate of Visit: %s\nNotes:\n%s",
		visit.PatientName,
		visit.DateOfVisit,
		visit.Notes,
	)

	return []llm.Message{
		llm.NewMessage(llm.RoleSystem, consultationSystemPrompt),
		llm.NewMessage(llm.RoleUser, user),
	}
}

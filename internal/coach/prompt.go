package coach

import (
	"fmt"
	"strings"

	"github.com/sells-group/prospect-cli/internal/model"
)

// pitchStrategies are the cold message angles a pitch rotates through.
var pitchStrategies = []string{
	"THE 'MYSTERY SHOPPER' (pretend you tried to use their service but hit a snag)",
	"THE 'LOST REVENUE' (point out money they are losing right now)",
	"THE 'COMPETITOR ENVY' (mention a competitor doing something better)",
	"THE 'PATTERN INTERRUPT' (open with a weird, hyper-specific question)",
	"THE 'EGO BAIT' (compliment them, then pivot to the one missing piece)",
}

// profileBriefs describe each roleplay persona.
var profileBriefs = map[model.RoleplayProfile]string{
	model.ProfileSkeptic:    "SKEPTIC: thinks this is a scam, asks for proof, answers coldly.",
	model.ProfileCheapskate: "CHEAPSKATE: only cares about price, always asks for a discount.",
	model.ProfileHurried:    `HURRIED: rude and short, replies like "Qual o preço?" and wants to end the chat.`,
}

func pitchPrompt(lead model.Lead, svc *model.ServiceContext, strategy string) string {
	pains := "Problem: general lack of digital optimization."
	if len(lead.PainPoints) > 0 {
		pains = "Specific problems detected: " + strings.Join(lead.PainPoints, ", ")
	}
	reason := lead.MatchReason
	if reason == "" {
		reason = "N/A"
	}
	return fmt.Sprintf(`You are a direct response copywriter known for cold DMs that get replies.

YOUR STRATEGY FOR THIS MESSAGE: %s

The client (receiver):
- Name: %s
- Details: %q
- %s
- Match reason: %s

My service (sender):
- Service: %s
- Offer: %s

Rules for the message:
1. Language: Portuguese (Brazil). Informal but sharp ("Opa", "Fala [Nome]").
2. No subject line. Just the body text.
3. Short and mobile friendly. Max 3-4 sentences.
4. Persuasive. Focus on the problems detected.
5. If they have no website, use that as the main hook.

Output ONLY the message text.`, strategy, lead.Name, lead.Description, pains, reason, svc.ServiceName, svc.Description)
}

func auditPrompt(lead model.Lead, svc *model.ServiceContext) string {
	service := "Digital Marketing"
	if svc.Configured() {
		service = svc.ServiceName
	}
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("ACT AS AN EXPERT AUDITOR FOR: %s.\n", service))
	sb.WriteString(fmt.Sprintf("TARGET: %s (%s).\n", lead.Name, lead.Description))
	if len(lead.PainPoints) > 0 {
		sb.WriteString(fmt.Sprintf("Known issues: %s\n", strings.Join(lead.PainPoints, ", ")))
	}
	if lead.Website != "" {
		sb.WriteString(fmt.Sprintf("Website: %s\n", lead.Website))
	}
	if lead.Instagram != "" {
		sb.WriteString(fmt.Sprintf("Instagram: %s\n", lead.Instagram))
	}
	sb.WriteString(`
TASK: write a mini technical audit with 3 SPECIFIC PROBLEMS in their digital presence that justify buying the service.

FORMAT:
1. ❌ [Problem 1]
2. ❌ [Problem 2]
3. ❌ [Problem 3]

Language: Portuguese (Brazil). Professional and authoritative. Max 3 bullet points.`)
	return sb.String()
}

func insightsPrompt(serviceName, description string) string {
	return fmt.Sprintf(`Act as a business strategist and sales consultant.

The user sells the following service:
Name: %q
Description: %q

Determine the best market strategy for high-ticket sales:
1. The ONE best niche to target (e.g. "Dentistas de Alto Padrão").
2. A recommended high-ticket price in BRL (R$) this niche can afford.
3. Why this niche is the perfect fit (the pain point).
4. The financial potential.

Answer in Portuguese (Brazil). Output JSON ONLY:
{
  "recommendedNiche": "Industry name",
  "suggestedTicket": 2500,
  "reasoning": "Why this niche needs this service urgently...",
  "potential": "Market size and opportunity..."
}`, serviceName, description)
}

func sequencePrompt(svc *model.ServiceContext) string {
	return fmt.Sprintf(`Act as a sales psychologist designing a WhatsApp follow-up cadence.

Service: %s
Offer: %s
Ideal customer: %s

Create a 5-step follow-up sequence for a lead who did not answer the first message.
Each step uses one persuasion trigger (reciprocity, scarcity, social proof, curiosity, loss aversion...).

Messages in Portuguese (Brazil), short, informal, mobile friendly.
Output JSON ONLY, an array:
[
  {"day": 1, "trigger": "Curiosidade", "message": "...", "explanation": "why this works"}
]`, svc.ServiceName, svc.Description, orDash(svc.TargetAudience))
}

func roleplayPrompt(profile model.RoleplayProfile, history []model.RoleplayMessage, svc *model.ServiceContext) string {
	var sb strings.Builder
	sb.WriteString("You are playing a business owner receiving a cold sales message on WhatsApp.\n")
	sb.WriteString(fmt.Sprintf("Persona: %s\n", profileBriefs[profile]))
	if svc.Configured() {
		sb.WriteString(fmt.Sprintf("The salesperson sells: %s (%s)\n", svc.ServiceName, svc.Description))
	}
	sb.WriteString("\nConversation so far:\n")
	for _, m := range history {
		who := "Prospect"
		if m.Sender == model.SenderUser {
			who = "Salesperson"
		}
		sb.WriteString(fmt.Sprintf("%s: %s\n", who, m.Text))
	}
	sb.WriteString(`
Reply as the prospect, staying in character. Then, as a sales coach, judge the salesperson's LAST message.

Portuguese (Brazil). Output JSON ONLY:
{"text": "prospect reply", "feedback": "coaching tip about the last message", "score": 0-10}`)
	return sb.String()
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

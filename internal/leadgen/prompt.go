package leadgen

import (
	"fmt"
	"strings"

	"github.com/sells-group/prospect-cli/internal/model"
)

// systemPrompt is shared by every search call.
const systemPrompt = `You are an elite sales intelligence researcher. You search the web for real, currently operating local businesses and return their public contact details.

Rules:
- Only list businesses you found evidence for in search results
- Every lead MUST have a phone number (mobile/WhatsApp preferred); if you cannot find one, leave the business out
- Use "Not Found" for a missing website or instagram
- Reply with a JSON array inside a single ` + "```json" + ` code block and nothing else`

// sizeHints describes each business size for the prompt.
var sizeHints = map[model.BusinessSize]string{
	model.SizeSmall:  "Small = local business or freelancer",
	model.SizeMedium: "Medium = established business",
	model.SizeLarge:  "Large = market leader",
}

// BuildPrompt renders the user message for one search call.
func BuildPrompt(req model.SearchRequest, phrase string, count int, exclude []string) string {
	var sb strings.Builder

	sb.WriteString("TARGET:\n")
	sb.WriteString(fmt.Sprintf("- Niche: %q\n", req.Niche))
	sb.WriteString(fmt.Sprintf("- Location: %q\n", req.Location))
	if hint, ok := sizeHints[req.Size]; ok {
		sb.WriteString(fmt.Sprintf("- Size: %s\n", hint))
	}
	sb.WriteString(fmt.Sprintf("- Search phrasing: %q\n\n", phrase))

	sb.WriteString(hunterMode(req.Service))

	sb.WriteString("\nREQUIREMENTS:\n")
	sb.WriteString(fmt.Sprintf("1. FIND %d POTENTIAL LEADS.\n", count))
	sb.WriteString("2. STRICT TELEPHONE RULE: you MUST find a valid phone number. If no phone, DO NOT include the business.\n")
	n := 3
	if len(exclude) > 0 {
		sb.WriteString(fmt.Sprintf("%d. EXCLUDE these businesses: %s.\n", n, strings.Join(exclude, ", ")))
		n++
	}
	for _, rule := range filterRules(req.Filters) {
		sb.WriteString(fmt.Sprintf("%d. %s\n", n, rule))
		n++
	}
	if instr := strings.TrimSpace(req.CustomInstruction); instr != "" {
		sb.WriteString(fmt.Sprintf("%d. EXTRA INSTRUCTION FROM THE USER: %s\n", n, instr))
	}

	sb.WriteString(`
FOR EACH LEAD, IDENTIFY:
- "painPoints": specific problems you detected (e.g. ["No Website", "Bad Reviews", "Inactive Instagram"])
- "matchReason": one persuasive sentence on why this lead is likely to buy
- "qualityTier": "opportunity", "high-ticket" or "urgent"

Output format:
` + "```json" + `
[
  {
    "name": "Business Name",
    "phone": "(XX) 9XXXX-XXXX",
    "instagram": "https://instagram.com/... or 'Not Found'",
    "website": "URL or 'Not Found'",
    "description": "Short description of the business.",
    "painPoints": ["No Website", "Low Google Rating"],
    "matchReason": "High foot traffic but zero digital presence.",
    "qualityTier": "opportunity"
  }
]
` + "```")
	return sb.String()
}

func hunterMode(svc *model.ServiceContext) string {
	if !svc.Configured() {
		return "HUNTER MODE: find businesses that look like they need digital modernization (no website, old branding, low reviews).\n"
	}
	var sb strings.Builder
	sb.WriteString("HUNTER MODE: HIGH QUALITY FILTERING\n")
	sb.WriteString(fmt.Sprintf("The user sells: %q\n", svc.ServiceName))
	if svc.Description != "" {
		sb.WriteString(fmt.Sprintf("Offer description: %q\n", svc.Description))
	}
	if svc.TargetAudience != "" {
		sb.WriteString(fmt.Sprintf("Ideal customer: %q\n", svc.TargetAudience))
	}
	sb.WriteString(`Find businesses with a SPECIFIC PAIN POINT this service solves:
- websites: no website, broken or outdated websites
- ads/traffic: low engagement, invisible on Google
- social media: inactive Instagram, poor photos
Do not list random businesses. List easy wins for this service.
`)
	return sb.String()
}

func filterRules(f model.Filters) []string {
	var rules []string
	switch f.WebsiteRule {
	case model.WebsiteMustHave:
		rules = append(rules, "ONLY include businesses that HAVE a website.")
	case model.WebsiteMustNotHave:
		rules = append(rules, "ONLY include businesses WITHOUT a website.")
	}
	if f.InstagramRequired {
		rules = append(rules, "ONLY include businesses with an Instagram profile.")
	}
	if f.MobileOnly {
		rules = append(rules, "ONLY include mobile (WhatsApp) numbers, not landlines.")
	}
	return rules
}

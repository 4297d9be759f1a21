package engine

import "regexp"

var (
	emailPattern = regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`)
	phonePattern = regexp.MustCompile(`(?:\+?1[-.\s]?)?\(?\d{3}\)?[-.\s]?\d{3}[-.\s]?\d{4}`)
	urlPattern   = regexp.MustCompile(`https?://[^\s<>"]+`)

	// Order numbers require an anchor word ("order"/"purchase"/"transaction");
	// a bare numeric token is never treated as one.
	orderPattern = regexp.MustCompile(`(?i)\b(?:order|purchase|transaction)\s*(?:#|number|id|no\.?)?\s*(?:is\s+|:\s*)?([A-Za-z0-9][A-Za-z0-9-]{5,})`)

	amountPattern = regexp.MustCompile(`(?i)\$\s?\d+(?:,\d{3})*(?:\.\d{2})?|\b\d+(?:\.\d{2})?\s?(?:dollars|usd)\b`)
)

// ExtractEntities pulls structured tokens out of free text. Pure regex
// extraction; each field is populated only when a match was found.
func ExtractEntities(message string) Entities {
	var e Entities

	e.Emails = emailPattern.FindAllString(message, -1)
	e.URLs = urlPattern.FindAllString(message, -1)
	e.Amounts = amountPattern.FindAllString(message, -1)
	e.Phones = phonePattern.FindAllString(message, -1)

	for _, sub := range orderPattern.FindAllStringSubmatch(message, -1) {
		if len(sub) > 1 {
			e.OrderNumbers = append(e.OrderNumbers, sub[1])
		}
	}

	return e
}

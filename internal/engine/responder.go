package engine

import (
	"fmt"

	"github.com/osteele/liquid"
)

// responseTemplate pairs a Liquid template with the fixed confidence its
// intent branch reports.
type responseTemplate struct {
	source     string
	confidence float64
}

// defaultTemplates are the per-intent reply templates. Liquid interpolation
// keeps personalization (name, order number, topic) out of the Go code, the
// same way the mail side renders campaign templates.
var defaultTemplates = map[string]struct {
	Text       string
	Confidence float64
}{
	IntentGreeting: {
		Text:       `Hello{% if customer_name != "" %} {{ customer_name }}{% endif %}! Great to hear from you. How can I help today?`,
		Confidence: 0.95,
	},
	IntentQuestion: {
		Text:       `That's a good question{% if topic != "" %} about {{ topic }}{% endif %}. Let me get you the right information — could you share a little more detail so I can be precise?`,
		Confidence: 0.75,
	},
	IntentComplaint: {
		Text:       `I'm sorry to hear you're having trouble{% if topic != "" %} with {{ topic }}{% endif %}. That's not the experience we want you to have. Let me look into this for you right away.`,
		Confidence: 0.8,
	},
	IntentRequest: {
		Text:       `Absolutely, I can help with that. Give me just a moment to pull up what you need.`,
		Confidence: 0.8,
	},
	IntentOrderInquiry: {
		Text:       `Let me check on that for you.{% if order_number != "" %} I found order {{ order_number }} — pulling up its latest status now.{% else %} Could you share your order number so I can look it up?{% endif %}`,
		Confidence: 0.85,
	},
	IntentTechnicalIssue: {
		Text:       `Sorry about the technical trouble. Let's get this fixed — could you tell me what device or browser you're using, and what you see when the problem happens?`,
		Confidence: 0.8,
	},
	IntentSupport: {
		Text:       `Of course — I'm happy to help{% if customer_name != "" %}, {{ customer_name }}{% endif %}. Tell me a bit more about what you're trying to do.`,
		Confidence: 0.8,
	},
	IntentEscalation: {
		Text:       `I understand you'd like to speak with someone from our team{% if customer_name != "" %}, {{ customer_name }}{% endif %}. I'm flagging this conversation for a human agent right now, and they'll pick up with everything we've discussed so far.`,
		Confidence: 0.9,
	},
	IntentGeneral: {
		Text:       `Thanks for reaching out! I want to make sure I point you in the right direction — could you tell me a little more about what you need?`,
		Confidence: 0.6,
	},
}

// Responder generates the contextual reply when no flow or proactive
// trigger fires. Templates are parsed once at construction.
type Responder struct {
	templates map[string]*liquid.Template
	meta      map[string]responseTemplate
}

// NewResponder parses the default per-intent templates.
func NewResponder() (*Responder, error) {
	eng := liquid.NewEngine()
	r := &Responder{
		templates: make(map[string]*liquid.Template, len(defaultTemplates)),
		meta:      make(map[string]responseTemplate, len(defaultTemplates)),
	}
	for intent, tpl := range defaultTemplates {
		parsed, err := eng.ParseString(tpl.Text)
		if err != nil {
			return nil, fmt.Errorf("parse response template %q: %w", intent, err)
		}
		r.templates[intent] = parsed
		r.meta[intent] = responseTemplate{source: SourceContextual, confidence: tpl.Confidence}
	}
	return r, nil
}

// Generate renders the template for the classified intent, falling back to
// the general template for unknown labels.
func (r *Responder) Generate(a *Analysis, convCtx *Context) (*Response, error) {
	intent := a.Intent.Label
	tpl, ok := r.templates[intent]
	if !ok {
		intent = IntentGeneral
		tpl = r.templates[IntentGeneral]
	}

	bindings := liquid.Bindings{
		"customer_name": "",
		"order_number":  "",
		"topic":         "",
	}
	if convCtx != nil {
		bindings["customer_name"] = convCtx.CustomerName
	}
	if len(a.Entities.OrderNumbers) > 0 {
		bindings["order_number"] = a.Entities.OrderNumbers[0]
	}
	if len(a.Topics) > 0 {
		bindings["topic"] = a.Topics[0].Topic
	}

	text, err := tpl.RenderString(bindings)
	if err != nil {
		return nil, fmt.Errorf("render response template %q: %w", intent, err)
	}

	meta := r.meta[intent]
	return &Response{
		Text:       text,
		Confidence: meta.confidence,
		Source:     meta.source,
		Intent:     a.Intent.Label,
	}, nil
}

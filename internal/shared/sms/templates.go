package sms

import "fmt"

// Vars carries the substitution values for one rendered message.
type Vars map[string]string

// Template names.
const (
	TemplateAppointmentConfirmation = "appointment_confirmation"
	TemplateAppointmentReminder     = "appointment_reminder"
	TemplateTechEnRoute             = "tech_en_route"
	TemplateServiceComplete         = "service_complete"
	TemplateEmergencyResponse       = "emergency_response"
)

var templates = map[string]func(Vars) string{
	TemplateAppointmentConfirmation: func(v Vars) string {
		return fmt.Sprintf("Thanks for calling %s! Your %s is scheduled for %s at %s. Reply CONFIRM or call %s to modify.",
			v["business_name"], v["service_type"], v["date"], v["time"], v["business_phone"])
	},
	TemplateAppointmentReminder: func(v Vars) string {
		return fmt.Sprintf("Reminder: %s appointment tomorrow at %s for %s. Reply CONFIRM or RESCHEDULE.",
			v["business_name"], v["time"], v["service_type"])
	},
	TemplateTechEnRoute: func(v Vars) string {
		return fmt.Sprintf("Good news! %s is on the way to your location. ETA: %s minutes.",
			v["tech_name"], v["eta"])
	},
	TemplateServiceComplete: func(v Vars) string {
		return fmt.Sprintf("Your %s is complete! Total: $%s. We can bill you, or call %s to pay.",
			v["service_type"], v["amount"], v["business_phone"])
	},
	TemplateEmergencyResponse: func(v Vars) string {
		return fmt.Sprintf("We received your emergency request. %s will contact you within 15 minutes at %s. Help is on the way!",
			v["tech_name"], v["customer_phone"])
	},
}

// Render produces the message body for a named template.
func Render(name string, vars Vars) (string, error) {
	tmpl, ok := templates[name]
	if !ok {
		return "", fmt.Errorf("unknown sms template %q", name)
	}
	return tmpl(vars), nil
}

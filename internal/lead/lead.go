package lead

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Lead is a prospective customer's contact details captured from the form.
type Lead struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Product string `json:"product"`
}

// ValidationError lists the required fields that were left blank.
type ValidationError struct {
	Missing []string
}

func (e *ValidationError) Error() string {
	return "missing required lead fields: " + strings.Join(e.Missing, ", ")
}

// Validate checks the required fields. Phone is optional.
func (l Lead) Validate() error {
	var missing []string
	if strings.TrimSpace(l.Name) == "" {
		missing = append(missing, "name")
	}
	if strings.TrimSpace(l.Email) == "" {
		missing = append(missing, "email")
	}
	if strings.TrimSpace(l.Product) == "" {
		missing = append(missing, "product")
	}
	if len(missing) > 0 {
		return &ValidationError{Missing: missing}
	}
	return nil
}

// Instruction is the chat message that hands the lead to the bot, e.g.
//
//	Please capture this lead: {"name":"Ann","email":"a@b.com","phone":"","product":"Robe"}
func (l Lead) Instruction() (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(l); err != nil {
		return "", fmt.Errorf("encode lead: %w", err)
	}
	return "Please capture this lead: " + strings.TrimSuffix(buf.String(), "\n"), nil
}

// Confirmation is the bot message shown once the lead was accepted.
func (l Lead) Confirmation() string {
	return fmt.Sprintf("Thank you %s! Your information has been submitted. Our team will contact you soon about %s.", l.Name, l.Product)
}
